package util

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for trading dates.
const DateLayout = time.DateOnly

// ParseDate parses a YYYY-MM-DD trading date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// TruncateDay drops the clock part of t in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LastWeekday returns t's day, or the Friday before it when t falls on a weekend.
// Exchange holidays are not modelled; a holiday run finds no bars and fails per symbol.
func LastWeekday(t time.Time) time.Time {
	day := TruncateDay(t)
	switch day.Weekday() {
	case time.Saturday:
		return day.AddDate(0, 0, -1)
	case time.Sunday:
		return day.AddDate(0, 0, -2)
	default:
		return day
	}
}

// ResolveRunDate turns an optional request date into the evaluation date.
// An empty string means the latest weekday as of now.
func ResolveRunDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return LastWeekday(now), nil
	}
	return ParseDate(s)
}
