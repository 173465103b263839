package reservations

import (
	"github.com/google/uuid"
)

type TableCreateRequest struct {
	Number                     string `json:"number"`
	Name                       string `json:"name,omitempty"`
	Capacity                   int    `json:"capacity"`
	MinCapacity                int    `json:"min_capacity,omitempty"`
	Priority                   int    `json:"priority,omitempty"`
	OpenTime                   string `json:"open_time,omitempty"`
	CloseTime                  string `json:"close_time,omitempty"`
	ReservationDurationMinutes int    `json:"reservation_duration_minutes,omitempty"`
	BufferBeforeMinutes        int    `json:"buffer_before_minutes,omitempty"`
	BufferAfterMinutes         int    `json:"buffer_after_minutes,omitempty"`
}

// TableUpdateRequest has no status field; occupancy only moves with
// reservation transitions.
type TableUpdateRequest struct {
	Number                     *string `json:"number,omitempty"`
	Name                       *string `json:"name,omitempty"`
	Capacity                   *int    `json:"capacity,omitempty"`
	MinCapacity                *int    `json:"min_capacity,omitempty"`
	Priority                   *int    `json:"priority,omitempty"`
	OpenTime                   *string `json:"open_time,omitempty"`
	CloseTime                  *string `json:"close_time,omitempty"`
	ReservationDurationMinutes *int    `json:"reservation_duration_minutes,omitempty"`
	BufferBeforeMinutes        *int    `json:"buffer_before_minutes,omitempty"`
	BufferAfterMinutes         *int    `json:"buffer_after_minutes,omitempty"`
}

type ReservationCreateRequest struct {
	CustomerID     uuid.UUID  `json:"customer_id"`
	TableID        *uuid.UUID `json:"table_id,omitempty"`
	NumberOfPeople int        `json:"number_of_people"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Status         string     `json:"status,omitempty"`
	ContactName    string     `json:"contact_name,omitempty"`
	ContactPhone   string     `json:"contact_phone,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

type WalkInCreateRequest struct {
	CustomerID     uuid.UUID  `json:"customer_id"`
	TableID        *uuid.UUID `json:"table_id,omitempty"`
	NumberOfPeople int        `json:"number_of_people"`
	Notify         *bool      `json:"notify,omitempty"`
	ContactName    string     `json:"contact_name,omitempty"`
	ContactPhone   string     `json:"contact_phone,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

type ReservationUpdateRequest struct {
	CustomerID     *uuid.UUID `json:"customer_id,omitempty"`
	TableID        *uuid.UUID `json:"table_id,omitempty"`
	NumberOfPeople *int       `json:"number_of_people,omitempty"`
	Date           *string    `json:"date,omitempty"`
	Time           *string    `json:"time,omitempty"`
	Status         *string    `json:"status,omitempty"`
	ContactName    *string    `json:"contact_name,omitempty"`
	ContactPhone   *string    `json:"contact_phone,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

func (req ReservationCreateRequest) command(actor string) CreateCommand {
	return CreateCommand{
		CustomerID:    req.CustomerID,
		TableID:       req.TableID,
		People:        req.NumberOfPeople,
		Date:          req.Date,
		Time:          req.Time,
		InitialStatus: Status(req.Status),
		ContactName:   req.ContactName,
		ContactPhone:  req.ContactPhone,
		Notes:         req.Notes,
		Actor:         actor,
	}
}

func (req WalkInCreateRequest) command(actor string) WalkInCommand {
	notify := true
	if req.Notify != nil {
		notify = *req.Notify
	}
	return WalkInCommand{
		CustomerID:   req.CustomerID,
		TableID:      req.TableID,
		People:       req.NumberOfPeople,
		Notify:       notify,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
		Actor:        actor,
	}
}

func (req ReservationUpdateRequest) command(actor string) UpdateCommand {
	cmd := UpdateCommand{
		CustomerID:   req.CustomerID,
		TableID:      req.TableID,
		Date:         req.Date,
		Time:         req.Time,
		People:       req.NumberOfPeople,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
		Actor:        actor,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		cmd.Status = &status
	}
	return cmd
}

// changesPolicy reports whether req touches a field that decides which
// reservations the table can hold.
func (req TableUpdateRequest) changesPolicy() bool {
	return req.Capacity != nil || req.MinCapacity != nil ||
		req.OpenTime != nil || req.CloseTime != nil ||
		req.ReservationDurationMinutes != nil ||
		req.BufferBeforeMinutes != nil || req.BufferAfterMinutes != nil
}

// apply copies the set fields onto table.
func (req TableUpdateRequest) apply(table *Table) {
	if req.Number != nil {
		table.Number = *req.Number
	}
	if req.Name != nil {
		table.Name = *req.Name
	}
	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.MinCapacity != nil {
		table.MinCapacity = *req.MinCapacity
	}
	if req.Priority != nil {
		table.Priority = *req.Priority
	}
	if req.OpenTime != nil {
		table.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		table.CloseTime = *req.CloseTime
	}
	if req.ReservationDurationMinutes != nil {
		table.ReservationDurationMinutes = *req.ReservationDurationMinutes
	}
	if req.BufferBeforeMinutes != nil {
		table.BufferBeforeMinutes = *req.BufferBeforeMinutes
	}
	if req.BufferAfterMinutes != nil {
		table.BufferAfterMinutes = *req.BufferAfterMinutes
	}
}
