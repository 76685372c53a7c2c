// Package dateutil provides date parsing and validation utilities.
package dateutil

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// MaxRangeDays bounds a DateRange so a listing cannot walk years of days.
const MaxRangeDays = 31

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
	ErrRangeTooLong       = errors.New("date range is too long")
)

// DateRange represents a validated, inclusive date range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a new DateRange with validation. Both ends accept
// anything ParseDay does; an empty startDate is today and an empty endDate
// is startDate.
func NewDateRange(startDate, endDate string, now time.Time) (*DateRange, error) {
	start, err := ParseDay(startDate, now)
	if err != nil {
		return nil, err
	}

	end := start
	if endDate != "" {
		end, err = ParseDay(endDate, now)
		if err != nil {
			return nil, err
		}
	}

	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}
	// rounded so a DST transition inside the range does not drop a day
	if n := int(math.Round(end.Sub(start).Hours()/24)) + 1; n > MaxRangeDays {
		return nil, fmt.Errorf("%w: %d days, at most %d", ErrRangeTooLong, n, MaxRangeDays)
	}

	return &DateRange{Start: start, End: end}, nil
}

// Days returns every date in the range, inclusive.
func (r *DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ParseDay parses a day relative to now. Accepts "", "today", "tomorrow",
// "yesterday" and absolute YYYY-MM-DD dates. Past dates are allowed since the
// board is used to review earlier days.
// Absolute dates are returned in now's location.
func ParseDay(s string, now time.Time) (time.Time, error) {
	today := TruncateToDay(now)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDay renders a date in YYYY-MM-DD format.
func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

// SameDay returns true if a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
