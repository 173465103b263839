package reservations

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsActive reports whether a reservation in this status still holds its slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Source string

const (
	SourceScheduled Source = "scheduled"
	SourceWalkIn    Source = "walk_in"
)

type Reservation struct {
	ID              uuid.UUID  `json:"id" bson:"_id"`
	CustomerID      uuid.UUID  `json:"customer_id" bson:"customer_id"`
	TableID         *uuid.UUID `json:"table_id,omitempty" bson:"table_id,omitempty"`
	ContactName     string     `json:"contact_name,omitempty" bson:"contact_name,omitempty"`
	ContactPhone    string     `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
	ReservationDate string     `json:"reservation_date" bson:"reservation_date"`
	ReservationTime string     `json:"reservation_time" bson:"reservation_time"`
	NumberOfPeople  int        `json:"number_of_people" bson:"number_of_people"`
	Status          Status     `json:"status" bson:"status"`
	Source          Source     `json:"source" bson:"source"`
	Notes           string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy       string     `json:"created_by" bson:"created_by"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy       string     `json:"updated_by" bson:"updated_by"`
}

func (r *Reservation) GetID() uuid.UUID {
	return r.ID
}

func (r *Reservation) ResourceType() string {
	return "reservation"
}

func (r *Reservation) SetID(id uuid.UUID) {
	r.ID = id
}

func NewReservation() *Reservation {
	return &Reservation{
		ID:     apt.GenerateNewID(),
		Status: StatusPending,
		Source: SourceScheduled,
	}
}

func (r *Reservation) EnsureID() {
	if r.ID == uuid.Nil {
		r.ID = apt.GenerateNewID()
	}
}

func (r *Reservation) BeforeCreate() {
	r.EnsureID()
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
}

func (r *Reservation) BeforeUpdate() {
	r.UpdatedAt = time.Now()
}

// Mode is the lead-time policy used whenever the reservation is re-validated.
func (r *Reservation) Mode() Mode {
	if r.Source == SourceWalkIn {
		return ModeWalkIn
	}
	return ModeScheduled
}

func (r *Reservation) tableID() uuid.UUID {
	if r.TableID == nil {
		return uuid.Nil
	}
	return *r.TableID
}

// snapshot holds the fields whose change is worth telling the customer about.
type snapshot struct {
	status  Status
	date    string
	time    string
	tableID uuid.UUID
}

func (r *Reservation) snapshot() snapshot {
	return snapshot{
		status:  r.Status,
		date:    r.ReservationDate,
		time:    r.ReservationTime,
		tableID: r.tableID(),
	}
}

func (s snapshot) differs(r *Reservation) bool {
	return s != r.snapshot()
}
