// Package utils provides small time/date helpers used by the report
// engine: converting between a wall-clock Time and the
// host's local calendar date, which is how report day-grouping and the
// CSV export format work (see spec §6, "Timestamps").
package utils

import (
	"fmt"
	"time"
)

// CivilDate is a calendar date in the host's local timezone, with no
// time-of-day component. It is the unit the report engine groups sessions
// by (spec §4.5: "assigned to the date of its clock_in_ts").
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the local calendar date of t.
func DateOf(t time.Time) CivilDate {
	local := t.Local()
	y, m, d := local.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// StartOfDay returns the local midnight instant that begins d.
func (d CivilDate) StartOfDay() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

// Add returns the date n days after d (n may be negative).
func (d CivilDate) Add(days int) CivilDate {
	return DateOf(d.StartOfDay().AddDate(0, 0, days))
}

// Before reports whether d is strictly earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	return d.StartOfDay().Before(other.StartOfDay())
}

// After reports whether d is strictly later than other.
func (d CivilDate) After(other CivilDate) bool {
	return d.StartOfDay().After(other.StartOfDay())
}

// String renders d as YYYY-MM-DD.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseCivilDate parses a YYYY-MM-DD string in the host's local timezone.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return CivilDate{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	return DateOf(t), nil
}

// DateRange returns every CivilDate from start to end inclusive.
func DateRange(start, end CivilDate) []CivilDate {
	if end.Before(start) {
		return nil
	}
	var out []CivilDate
	for d := start; !d.After(end); d = d.Add(1) {
		out = append(out, d)
	}
	return out
}

// FormatISO8601 renders t in RFC3339 form, the format used by the raw
// entries CSV export (spec §6).
func FormatISO8601(t time.Time) string {
	return t.Format(time.RFC3339)
}
