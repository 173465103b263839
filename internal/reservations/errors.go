package reservations

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidReservation = errors.New("invalid reservation")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnavailable        = errors.New("no table available")
	ErrInvalidTable       = errors.New("invalid table")
	ErrDuplicateTable     = errors.New("table number already exists")
	ErrTableInUse         = errors.New("table in use")
)

type RejectionReason string

const (
	CapacityExceeded      RejectionReason = "CapacityExceeded"
	InsufficientLeadTime  RejectionReason = "InsufficientLeadTime"
	OutsideOperatingHours RejectionReason = "OutsideOperatingHours"
	TimeSlotOverlap       RejectionReason = "TimeSlotOverlap"
	MalformedSchedule     RejectionReason = "MalformedSchedule"
)

// AvailabilityError is returned when a slot is rejected by the checker.
type AvailabilityError struct {
	Reason RejectionReason
	Detail string
}

func (e *AvailabilityError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidReservation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidReservation, e.Reason, e.Detail)
}

func (e *AvailabilityError) Unwrap() error {
	return ErrInvalidReservation
}

func reject(reason RejectionReason, format string, args ...interface{}) *AvailabilityError {
	return &AvailabilityError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// RejectionReasonOf extracts the checker reason from err, if any.
func RejectionReasonOf(err error) (RejectionReason, bool) {
	var availErr *AvailabilityError
	if errors.As(err, &availErr) {
		return availErr.Reason, true
	}
	return "", false
}
