package reservations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

type SelectionRequest struct {
	People int
	Date   string
	Time   string
	Mode   Mode
}

// Selection is the table picked for a request together with the effective
// slot it was validated for.
type Selection struct {
	Table *Table
	Date  string
	Time  string
}

// TableSelector assigns the tightest free table that the checker accepts.
type TableSelector struct {
	tables  TableRepo
	checker *AvailabilityChecker
}

func NewTableSelector(tables TableRepo, checker *AvailabilityChecker) *TableSelector {
	return &TableSelector{
		tables:  tables,
		checker: checker,
	}
}

func (s *TableSelector) Select(ctx context.Context, req SelectionRequest) (*Selection, error) {
	free, err := s.tables.ListByStatus(ctx, TableFree)
	if err != nil {
		return nil, fmt.Errorf("cannot list free tables: %w", err)
	}

	candidates := bestFit(free, req.People)
	now := s.checker.Now()

	for _, table := range candidates {
		date, clock := req.Date, req.Time
		if req.Mode == ModeWalkIn {
			start := laterOf(now, table)
			date, clock = start.Format(DateLayout), start.Format(ClockLayout)
		}

		err := s.checker.Check(ctx, SlotRequest{
			Table:  table,
			Date:   date,
			Time:   clock,
			People: req.People,
			Mode:   req.Mode,
		})
		if err == nil {
			return &Selection{Table: table, Date: date, Time: clock}, nil
		}

		var availErr *AvailabilityError
		if !errors.As(err, &availErr) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %d people at %s", ErrUnavailable, req.People, describeSlot(req, now))
}

// bestFit keeps free tables that fit the party, smallest capacity first,
// then lowest priority value, then table number.
func bestFit(tables []*Table, people int) []*Table {
	var fit []*Table
	for _, t := range tables {
		if t != nil && t.IsFree() && t.Fits(people) {
			fit = append(fit, t)
		}
	}

	sort.SliceStable(fit, func(i, j int) bool {
		if fit[i].Capacity != fit[j].Capacity {
			return fit[i].Capacity < fit[j].Capacity
		}
		if fit[i].Priority != fit[j].Priority {
			return fit[i].Priority < fit[j].Priority
		}
		return fit[i].Number < fit[j].Number
	})

	return fit
}

func describeSlot(req SelectionRequest, now time.Time) string {
	if req.Mode == ModeWalkIn {
		return now.Format(DateLayout + " " + ClockLayout)
	}
	return req.Date + " " + req.Time
}
