package util

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only date format exchanged with the remote services.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders the calendar day of t, discarding time of day and zone.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDay returns midnight of t's calendar day in t's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays shifts a calendar day by n days.
func AddDays(t time.Time, n int) time.Time {
	return TruncateDay(t).AddDate(0, 0, n)
}

// AddYears shifts a calendar day by n years. Feb 29 rolls to Mar 1 like time.AddDate.
func AddYears(t time.Time, n int) time.Time {
	return TruncateDay(t).AddDate(n, 0, 0)
}

// AfterDay reports whether a falls on a later calendar day than b.
// b is converted into a's location first.
func AfterDay(a, b time.Time) bool {
	return TruncateDay(a).After(TruncateDay(b.In(a.Location())))
}
