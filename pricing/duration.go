// Package pricing derives rental length and cost for a booking.
package pricing

import (
	"strings"
	"time"
)

// accepted date inputs, most specific last; RFC 3339 is tried first
var layouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a date or date-time as sent by date pickers and the API.
// Inputs without a zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RentalDurationDays returns the number of billable days between start and
// end: whole elapsed days, but never less than 1. It returns 0 when either
// value is missing or unparseable, meaning the length is not known yet.
func RentalDurationDays(start, end string) int {
	s, ok := ParseDate(start)
	if !ok {
		return 0
	}
	e, ok := ParseDate(end)
	if !ok {
		return 0
	}
	return RentalDays(s, e)
}

// RentalDays is RentalDurationDays for parsed times. A zero time yields 0.
func RentalDays(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	days := int(end.Sub(start) / (24 * time.Hour))
	return max(1, days)
}
