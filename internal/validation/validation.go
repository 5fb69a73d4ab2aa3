package validation

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date of birth cannot be parsed
var ErrInvalidDate = errors.New("invalid date")

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDate parses a submitted date or timestamp
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// CalendarDate reduces a timestamp to its UTC calendar date (YYYY-MM-DD)
func CalendarDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SameCalendarDate reports whether two timestamps fall on the same UTC calendar day
func SameCalendarDate(a, b time.Time) bool {
	return CalendarDate(a) == CalendarDate(b)
}

// ParseAge reads a leading integer the way a lenient form parser would:
// surrounding space is ignored, an optional sign is accepted, and parsing stops
// at the first non-digit. It returns nil when no digits are found.
func ParseAge(value string) *int {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return nil
	}
	age, err := strconv.Atoi(value[:end])
	if err != nil {
		return nil
	}
	return &age
}

// NormalizeEmail trims surrounding whitespace. Case is preserved because the
// store matches emails exactly.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
