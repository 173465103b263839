package reservations

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

func ValidateTableCreate(ctx context.Context, req TableCreateRequest) []string {
	var errors []string

	if strings.TrimSpace(req.Number) == "" {
		errors = append(errors, "number is required")
	}

	if req.Capacity <= 0 {
		errors = append(errors, "capacity must be greater than 0")
	}

	if req.MinCapacity < 0 {
		errors = append(errors, "min_capacity cannot be negative")
	}

	if req.MinCapacity > req.Capacity {
		errors = append(errors, "min_capacity cannot exceed capacity")
	}

	errors = append(errors, validatePolicy(req.OpenTime, req.CloseTime,
		req.ReservationDurationMinutes, req.BufferBeforeMinutes, req.BufferAfterMinutes)...)

	return errors
}

func ValidateTableUpdate(ctx context.Context, id uuid.UUID, req TableUpdateRequest) []string {
	var errors []string

	if id == uuid.Nil {
		errors = append(errors, "invalid table id")
	}

	if req.Number != nil && strings.TrimSpace(*req.Number) == "" {
		errors = append(errors, "number cannot be empty")
	}

	if req.Capacity != nil && *req.Capacity <= 0 {
		errors = append(errors, "capacity must be greater than 0")
	}

	if req.MinCapacity != nil && *req.MinCapacity < 0 {
		errors = append(errors, "min_capacity cannot be negative")
	}

	return errors
}

// ValidateTable checks the invariants of a table after defaults and updates
// have been applied.
func ValidateTable(table *Table) []string {
	var errors []string

	if table.MinCapacity > table.Capacity {
		errors = append(errors, "min_capacity cannot exceed capacity")
	}

	errors = append(errors, validatePolicy(table.OpenTime, table.CloseTime,
		table.ReservationDurationMinutes, table.BufferBeforeMinutes, table.BufferAfterMinutes)...)

	if len(errors) == 0 && table.OpenTime >= table.CloseTime {
		errors = append(errors, "open_time must be before close_time")
	}

	return errors
}

func validatePolicy(openTime, closeTime string, duration, before, after int) []string {
	var errors []string

	if openTime != "" && !ValidClock(openTime) {
		errors = append(errors, "open_time must be HH:MM")
	}

	if closeTime != "" && !ValidClock(closeTime) {
		errors = append(errors, "close_time must be HH:MM")
	}

	if duration < 0 {
		errors = append(errors, "reservation_duration_minutes cannot be negative")
	}

	if before < 0 || after < 0 {
		errors = append(errors, "buffers cannot be negative")
	}

	return errors
}

func ValidateReservationCreate(ctx context.Context, req ReservationCreateRequest) []string {
	var errors []string

	if req.CustomerID == uuid.Nil {
		errors = append(errors, "customer_id is required")
	}

	if req.NumberOfPeople <= 0 {
		errors = append(errors, "number_of_people must be greater than 0")
	}

	if !ValidDate(req.Date) {
		errors = append(errors, "date must be YYYY-MM-DD")
	}

	if !ValidClock(req.Time) {
		errors = append(errors, "time must be HH:MM")
	}

	if req.Status != "" && !Status(req.Status).Valid() {
		errors = append(errors, "invalid status")
	}

	return errors
}

func ValidateWalkInCreate(ctx context.Context, req WalkInCreateRequest) []string {
	var errors []string

	if req.CustomerID == uuid.Nil {
		errors = append(errors, "customer_id is required")
	}

	if req.NumberOfPeople <= 0 {
		errors = append(errors, "number_of_people must be greater than 0")
	}

	return errors
}

func ValidateReservationUpdate(ctx context.Context, id uuid.UUID, req ReservationUpdateRequest) []string {
	var errors []string

	if id == uuid.Nil {
		errors = append(errors, "invalid reservation id")
	}

	if req.CustomerID != nil && *req.CustomerID == uuid.Nil {
		errors = append(errors, "customer_id cannot be empty")
	}

	if req.NumberOfPeople != nil && *req.NumberOfPeople <= 0 {
		errors = append(errors, "number_of_people must be greater than 0")
	}

	if req.Date != nil && !ValidDate(*req.Date) {
		errors = append(errors, "date must be YYYY-MM-DD")
	}

	if req.Time != nil && !ValidClock(*req.Time) {
		errors = append(errors, "time must be HH:MM")
	}

	if req.Status != nil && !Status(*req.Status).Valid() {
		errors = append(errors, "invalid status")
	}

	return errors
}
