package model

import (
	"fmt"
	"time"
)

// DateLayout is the persisted form of a calendar date.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t (read in t's own location) as
// midnight UTC. Two instants on the same local day map to the same value.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns every calendar date from start to end inclusive.
// It returns nil when end is before start.
func DaysBetween(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthBounds returns the first and last calendar dates of year/month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
