package appointment

import (
	"fmt"
	"strings"
)

// MinutesPerDay is 24 hours * 60 minutes.
const MinutesPerDay = 24 * 60

// TimeToMinutes converts "HH:MM" or "HH:MM:SS" to minutes since midnight.
// Seconds are dropped. Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	if len(t) < 5 || t[2] != ':' {
		return 0
	}
	if !isDigits(t[0:2]) || !isDigits(t[3:5]) {
		return 0
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	mins := int(t[3]-'0')*10 + int(t[4]-'0')
	return hours*60 + mins
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= MinutesPerDay {
		m = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// NormalizeTime validates a time of day and returns it in canonical "HH:MM" form.
// Accepts "HH:MM" and "HH:MM:SS" (the hosted store returns the latter).
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 5:
	case 8:
		if s[5] != ':' || !isDigits(s[6:8]) {
			return "", ErrInvalidTimeFormat
		}
	default:
		return "", ErrInvalidTimeFormat
	}
	if s[2] != ':' || !isDigits(s[0:2]) || !isDigits(s[3:5]) {
		return "", ErrInvalidTimeFormat
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	mins := int(s[3]-'0')*10 + int(s[4]-'0')
	if hours > 23 || mins > 59 {
		return "", ErrInvalidTimeFormat
	}
	return s[:5], nil
}

// CanonicalTime returns the "HH:MM" prefix of a time string, or the input
// unchanged when it cannot be normalized.
func CanonicalTime(s string) string {
	if norm, err := NormalizeTime(s); err == nil {
		return norm
	}
	return s
}

// WithSeconds returns "HH:MM:00" for a valid time, the form used by the stores.
func WithSeconds(s string) (string, error) {
	norm, err := NormalizeTime(s)
	if err != nil {
		return "", err
	}
	return norm + ":00", nil
}

// IntervalsOverlap returns true if the half-open ranges [s1,e1) and [s2,e2) overlap.
// Touching endpoints do not overlap.
func IntervalsOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
