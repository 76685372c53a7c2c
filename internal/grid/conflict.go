package grid

import (
	"errors"
	"time"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

// ErrOverlap is returned when a candidate overlaps an existing booking.
var ErrOverlap = errors.New("overlaps an existing appointment")

// ConflictDetector finds overlapping bookings on a staff member's timeline.
// DefaultDuration is applied to appointments whose service duration is unknown.
type ConflictDetector struct {
	DefaultDuration int
}

// HasConflict reports whether [start, start+duration) on staffID overlaps any
// other non-cancelled appointment in all. excludeID is skipped so an
// appointment never conflicts with itself. Callers pass a single day's set.
func (d ConflictDetector) HasConflict(staffID string, start, duration int, excludeID string, all []*appointment.Appointment) bool {
	return d.FindConflict(staffID, start, duration, excludeID, all) != nil
}

// FindConflict is like HasConflict but returns the first blocking appointment.
func (d ConflictDetector) FindConflict(staffID string, start, duration int, excludeID string, all []*appointment.Appointment) *appointment.Appointment {
	if staffID == appointment.Unassigned {
		return nil
	}
	end := start + duration
	for _, a := range all {
		if a == nil || a.ID == excludeID || a.IsCancelled() || a.StaffID != staffID {
			continue
		}
		if appointment.IntervalsOverlap(start, end, a.StartMinutes(), a.EndMinutes(d.DefaultDuration)) {
			return a
		}
	}
	return nil
}

// FindConflictOn restricts FindConflict to appointments on date.
func (d ConflictDetector) FindConflictOn(date time.Time, staffID string, start, duration int, excludeID string, all []*appointment.Appointment) *appointment.Appointment {
	var sameDay []*appointment.Appointment
	for _, a := range all {
		if a != nil && a.SameDay(date) {
			sameDay = append(sameDay, a)
		}
	}
	return d.FindConflict(staffID, start, duration, excludeID, sameDay)
}
