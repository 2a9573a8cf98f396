package storage

import (
	"fmt"
	"time"
)

// DateLayout is the stored form of calendar dates.
const DateLayout = "2006-01-02"

// FormatTime renders t as fixed-width UTC RFC3339 so stored timestamps sort lexically.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// ParseTime parses a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a calendar date; the zero time becomes the empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a stored calendar date; the empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// BoolToInt converts a flag to its stored 0/1 form.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
