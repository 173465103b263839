package reservations

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

type TableStatus string

const (
	TableFree     TableStatus = "FREE"
	TableOccupied TableStatus = "OCCUPIED"
)

const (
	DefaultReservationDuration = 90
	DefaultOpenTime            = "00:00"
	DefaultCloseTime           = "23:59"
)

// Table is a seating resource. It holds no reference to its reservations;
// occupancy questions are answered by querying the reservation repo.
type Table struct {
	ID                         uuid.UUID   `json:"id" bson:"_id"`
	Number                     string      `json:"number" bson:"number"`
	Name                       string      `json:"name,omitempty" bson:"name,omitempty"`
	Capacity                   int         `json:"capacity" bson:"capacity"`
	MinCapacity                int         `json:"min_capacity" bson:"min_capacity"`
	Priority                   int         `json:"priority" bson:"priority"`
	OpenTime                   string      `json:"open_time" bson:"open_time"`
	CloseTime                  string      `json:"close_time" bson:"close_time"`
	ReservationDurationMinutes int         `json:"reservation_duration_minutes" bson:"reservation_duration_minutes"`
	BufferBeforeMinutes        int         `json:"buffer_before_minutes" bson:"buffer_before_minutes"`
	BufferAfterMinutes         int         `json:"buffer_after_minutes" bson:"buffer_after_minutes"`
	Status                     TableStatus `json:"status" bson:"status"`
	CreatedAt                  time.Time   `json:"created_at" bson:"created_at"`
	CreatedBy                  string      `json:"created_by" bson:"created_by"`
	UpdatedAt                  time.Time   `json:"updated_at" bson:"updated_at"`
	UpdatedBy                  string      `json:"updated_by" bson:"updated_by"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTable() *Table {
	return &Table{
		ID:                         apt.GenerateNewID(),
		MinCapacity:                1,
		OpenTime:                   DefaultOpenTime,
		CloseTime:                  DefaultCloseTime,
		ReservationDurationMinutes: DefaultReservationDuration,
		Status:                     TableFree,
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	if t.Status == "" {
		t.Status = TableFree
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

// DisplayName is the alias when set, the number otherwise.
func (t *Table) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Number
}

// Fits reports whether a party of the given size is within the table bounds.
func (t *Table) Fits(people int) bool {
	return people > 0 && people >= t.MinCapacity && people <= t.Capacity
}

func (t *Table) IsFree() bool {
	return t.Status == TableFree
}

func (t *Table) SetStatus(status TableStatus) {
	t.Status = status
	t.UpdatedAt = time.Now()
}

func (t *Table) duration() time.Duration {
	minutes := t.ReservationDurationMinutes
	if minutes <= 0 {
		minutes = DefaultReservationDuration
	}
	return time.Duration(minutes) * time.Minute
}

func (t *Table) bufferBefore() time.Duration {
	return time.Duration(t.BufferBeforeMinutes) * time.Minute
}

func (t *Table) bufferAfter() time.Duration {
	return time.Duration(t.BufferAfterMinutes) * time.Minute
}
