// Package timeutil provides exam-date parsing and formatting helpers.
// Exam dates arrive over the wire as ISO-8601 strings and are stored in UTC.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for exam dates, tried in order.
var examDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseExamDate parses an ISO-8601 exam date. Layouts without an explicit
// offset are interpreted as UTC.
func ParseExamDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("exam date is empty")
	}
	for _, layout := range examDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid exam date %q: expected ISO-8601", value)
}

// FormatExamDate formats an exam date for wire transport (RFC 3339, UTC).
func FormatExamDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseDuration parses an exam duration. Accepts Go duration strings
// ("2h30m") and bare values, which are interpreted as hours ("3", "2.5").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if hours, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(hours * float64(time.Hour)), nil
	}
	return 0, fmt.Errorf("invalid duration %q", value)
}

// FormatDuration formats a duration for wire transport.
func FormatDuration(d time.Duration) string {
	return d.String()
}

// IsPast reports whether the exam date has already passed.
func IsPast(t time.Time) bool {
	return t.Before(time.Now().UTC())
}

// IsSameDay reports whether two instants fall on the same UTC calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.UTC().Date()
	y2, m2, d2 := t2.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
