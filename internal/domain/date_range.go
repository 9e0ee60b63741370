package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its UTC calendar day. Instants read
// back from timestamptz columns carry the server's location, so the day is
// always taken in UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ValidateDateRange checks that start is set and, when end is set, that it
// falls strictly after start. A nil end is an open-ended range.
func ValidateDateRange(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidDateRange)
	}
	if end == nil {
		return nil
	}

	s := DateOnly(start)
	e := DateOnly(*end)
	if e.Before(s) {
		return fmt.Errorf("%w: end date (%s) must be after start date (%s)",
			ErrInvalidDateRange, e.Format(DateLayout), s.Format(DateLayout))
	}
	if e.Equal(s) {
		return fmt.Errorf("%w: start date and end date cannot be the same", ErrInvalidDateRange)
	}
	return nil
}

// Overlaps reports whether two date ranges share at least one day.
// An open-ended range (nil end) is treated as overlapping everything.
func Overlaps(start1 time.Time, end1 *time.Time, start2 time.Time, end2 *time.Time) bool {
	if end1 == nil || end2 == nil {
		return true
	}
	return !DateOnly(start1).After(DateOnly(*end2)) && !DateOnly(start2).After(DateOnly(*end1))
}
