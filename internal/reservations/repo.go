package reservations

import (
	"context"

	"github.com/google/uuid"
)

// Get methods return (nil, nil) when the record does not exist.

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByNumber(ctx context.Context, number string) (*Table, error)
	List(ctx context.Context) ([]*Table, error)
	ListByStatus(ctx context.Context, status TableStatus) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReservationRepo interface {
	Create(ctx context.Context, reservation *Reservation) error
	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Reservation, error)
	ListByDateRange(ctx context.Context, from, to string) ([]*Reservation, error)
	ListActiveForTableOnDate(ctx context.Context, tableID uuid.UUID, date string, excludeID *uuid.UUID) ([]*Reservation, error)
	// ListActiveForTable returns active reservations on or after fromDate;
	// an empty fromDate returns all of them.
	ListActiveForTable(ctx context.Context, tableID uuid.UUID, fromDate string) ([]*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Transactor groups repo calls into one atomic unit. Repos must honour the
// context passed to fn so their writes join the unit. Transactors that cannot
// roll back implement Atomic and return false; the service then compensates
// the writes of a failed unit itself.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// LockTableDate makes concurrent units touching the same table and date
	// conflict with each other.
	LockTableDate(ctx context.Context, tableID uuid.UUID, date string) error
}

type atomicTransactor interface {
	Atomic() bool
}

type Repos struct {
	TableRepo       TableRepo
	ReservationRepo ReservationRepo
	Transactor      Transactor
}
