// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-schedule/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and is also the output
	// date format.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a YYYY-MM-DD date. An empty string resolves to the calendar
// day of fallback.
func ParseDate(value string, fallback time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Day(fallback), nil
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s: %w", value, DateLayout, err)
	}
	return t, nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths advances t by the given number of calendar months. When the day
// of month does not exist in the target month it is clamped to the last day
// of that month, so Jan 31 + 1 month is Feb 28 (or 29), never Mar 3.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	if last := DaysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return target.AddDate(0, 0, d-1)
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return AddMonths(t, months).Format(layout), nil
}

// MonthsBetween counts whole calendar months from start to end, ignoring days.
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*constants.MonthsPerYear + int(end.Month()) - int(start.Month())
}
