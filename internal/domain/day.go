package domain

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar days at the API boundary.
const DayFormat = "2006-01-02"

// Day truncates a timestamp to its UTC calendar day (midnight UTC).
// All internal date arithmetic goes through this to avoid timezone drift.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC-midnight time.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s): %w", s, DayFormat, err)
	}
	return t, nil
}

// FormatDay renders a time as a YYYY-MM-DD string.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// NextDay returns the calendar day after t.
func NextDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}

// DaysBetween returns the number of whole days from a to b, inclusive of both
// endpoints. Returns 0 when b is before a.
func DaysBetween(a, b time.Time) int {
	a, b = Day(a), Day(b)
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}
