package reservations

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// BufferedInterval is the window a reservation starting at start blocks on
// the table, turnover buffers included.
func BufferedInterval(table *Table, start time.Time) Interval {
	return Interval{
		Start: start.Add(-table.bufferBefore()),
		End:   start.Add(table.duration()).Add(table.bufferAfter()),
	}
}

// At resolves a date and a wall clock time in loc.
func At(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return t, nil
}

func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

func ValidClock(clock string) bool {
	_, err := time.Parse(ClockLayout, clock)
	return err == nil
}

// laterOf returns the later of now and the table opening time on now's date.
func laterOf(now time.Time, table *Table) time.Time {
	open, err := At(now.Format(DateLayout), table.OpenTime, now.Location())
	if err != nil || now.After(open) {
		return now
	}
	return open
}
