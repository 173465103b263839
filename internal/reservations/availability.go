package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeScheduled Mode = "SCHEDULED"
	ModeWalkIn    Mode = "WALK_IN"
)

const (
	// ScheduledLeadTime is the minimum notice for a booked reservation.
	ScheduledLeadTime = 15 * time.Minute
	// WalkInTolerance absorbs rounding and clock skew at intake.
	WalkInTolerance = 5 * time.Minute
)

type SlotRequest struct {
	Table     *Table
	Date      string
	Time      string
	People    int
	Mode      Mode
	ExcludeID *uuid.UUID
}

// AvailabilityChecker decides whether a slot on a table is legal. It only
// reads; it never writes and holds no locks.
type AvailabilityChecker struct {
	reservations ReservationRepo
	tables       TableRepo
	location     *time.Location
	now          func() time.Time
}

func NewAvailabilityChecker(reservations ReservationRepo, tables TableRepo, location *time.Location, now func() time.Time) *AvailabilityChecker {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AvailabilityChecker{
		reservations: reservations,
		tables:       tables,
		location:     location,
		now:          now,
	}
}

// Check runs capacity, lead time, operating hours and overlap checks in that
// order. Rejections are *AvailabilityError; anything else is a lookup failure.
func (c *AvailabilityChecker) Check(ctx context.Context, req SlotRequest) error {
	table := req.Table
	if table == nil {
		return fmt.Errorf("%w: table is required", ErrInvalidReservation)
	}

	if !table.Fits(req.People) {
		return reject(CapacityExceeded, "table %s accepts %d to %d people, got %d",
			table.Number, table.MinCapacity, table.Capacity, req.People)
	}

	start, err := At(req.Date, req.Time, c.location)
	if err != nil {
		return reject(MalformedSchedule, "%v", err)
	}

	now := c.Now()
	earliest := now.Add(ScheduledLeadTime)
	if req.Mode == ModeWalkIn {
		earliest = now.Add(-WalkInTolerance)
	}
	if start.Before(earliest) {
		return reject(InsufficientLeadTime, "start %s is before %s",
			start.Format(time.RFC3339), earliest.Format(time.RFC3339))
	}

	candidate, err := c.withinHours(table, req.Date, start)
	if err != nil {
		return err
	}

	return c.checkOverlap(ctx, table, req.Date, candidate, req.ExcludeID)
}

// Revalidate checks that the active reservations of a table still fit its
// policy: party size, operating hours and no overlap between them. Lead time
// is not checked, the reservations are already booked.
func (c *AvailabilityChecker) Revalidate(table *Table, active []*Reservation) error {
	if table == nil {
		return fmt.Errorf("%w: table is required", ErrInvalidReservation)
	}

	held := map[string][]*Reservation{}
	intervals := map[uuid.UUID]Interval{}

	for _, res := range active {
		if !res.Status.IsActive() {
			continue
		}

		if !table.Fits(res.NumberOfPeople) {
			return reject(CapacityExceeded, "table %s would accept %d to %d people, reservation %s has %d",
				table.Number, table.MinCapacity, table.Capacity, res.ID, res.NumberOfPeople)
		}

		start, err := At(res.ReservationDate, res.ReservationTime, c.location)
		if err != nil {
			return fmt.Errorf("reservation %s has a malformed schedule: %w", res.ID, err)
		}

		interval, err := c.withinHours(table, res.ReservationDate, start)
		if err != nil {
			var availErr *AvailabilityError
			if errors.As(err, &availErr) {
				availErr.Detail = fmt.Sprintf("reservation %s: %s", res.ID, availErr.Detail)
			}
			return err
		}

		for _, other := range held[res.ReservationDate] {
			if interval.Overlaps(intervals[other.ID]) {
				return reject(TimeSlotOverlap, "reservations %s at %s and %s at %s would overlap on table %s",
					other.ID, other.ReservationTime, res.ID, res.ReservationTime, table.Number)
			}
		}

		held[res.ReservationDate] = append(held[res.ReservationDate], res)
		intervals[res.ID] = interval
	}

	return nil
}

// withinHours returns the buffered interval of a start on date and rejects it
// when it leaves the table's operating hours.
func (c *AvailabilityChecker) withinHours(table *Table, date string, start time.Time) (Interval, error) {
	open, err := At(date, table.OpenTime, c.location)
	if err != nil {
		return Interval{}, reject(MalformedSchedule, "table %s open time: %v", table.Number, err)
	}
	closing, err := At(date, table.CloseTime, c.location)
	if err != nil {
		return Interval{}, reject(MalformedSchedule, "table %s close time: %v", table.Number, err)
	}

	candidate := BufferedInterval(table, start)
	if candidate.Start.Before(open) || candidate.End.After(closing) {
		return Interval{}, reject(OutsideOperatingHours, "%s-%s is outside %s-%s",
			candidate.Start.Format(ClockLayout), candidate.End.Format(ClockLayout), table.OpenTime, table.CloseTime)
	}
	return candidate, nil
}

func (c *AvailabilityChecker) checkOverlap(ctx context.Context, table *Table, date string, candidate Interval, excludeID *uuid.UUID) error {
	active, err := c.reservations.ListActiveForTableOnDate(ctx, table.ID, date, excludeID)
	if err != nil {
		return fmt.Errorf("cannot list active reservations: %w", err)
	}

	policies := map[uuid.UUID]*Table{table.ID: table}
	for _, other := range active {
		if excludeID != nil && other.ID == *excludeID {
			continue
		}
		if !other.Status.IsActive() {
			continue
		}

		otherTable, err := c.policyFor(ctx, policies, other.tableID())
		if err != nil {
			return err
		}

		otherStart, err := At(other.ReservationDate, other.ReservationTime, c.location)
		if err != nil {
			return fmt.Errorf("reservation %s has a malformed schedule: %w", other.ID, err)
		}

		if candidate.Overlaps(BufferedInterval(otherTable, otherStart)) {
			return reject(TimeSlotOverlap, "table %s is held by reservation %s at %s",
				table.Number, other.ID, other.ReservationTime)
		}
	}

	return nil
}

func (c *AvailabilityChecker) policyFor(ctx context.Context, cache map[uuid.UUID]*Table, id uuid.UUID) (*Table, error) {
	if t, ok := cache[id]; ok {
		return t, nil
	}
	if c.tables == nil {
		return nil, fmt.Errorf("cannot resolve table %s", id)
	}
	t, err := c.tables.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot get table %s: %w", id, err)
	}
	if t == nil {
		return nil, fmt.Errorf("table %s: %w", id, ErrNotFound)
	}
	cache[id] = t
	return t, nil
}

// Now is the current instant in the restaurant time zone.
func (c *AvailabilityChecker) Now() time.Time {
	return c.now().In(c.location)
}

func (c *AvailabilityChecker) Location() *time.Location {
	return c.location
}
