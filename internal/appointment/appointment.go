// Package appointment defines the core scheduling types for salonboard.
package appointment

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	ErrEmptyClient       = errors.New("client name cannot be empty")
	ErrInvalidTimeFormat = errors.New("time must be in HH:MM or HH:MM:SS format")
	ErrInvalidStatus     = errors.New("invalid appointment status")
	ErrInvalidDuration   = errors.New("duration must be positive")
)

// Domain errors.
var (
	ErrNotFound         = errors.New("appointment not found")
	ErrOverlap          = errors.New("appointment overlaps with an existing booking")
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrStatusTransition = errors.New("status transition not allowed")
)

// Unassigned is the staff id of an appointment nobody has been assigned to.
const Unassigned = ""

// DefaultDurationMin is used when an appointment's service duration is unknown.
const DefaultDurationMin = 60

// Status represents the lifecycle state of an appointment.
type Status string

const (
	StatusRequested    Status = "requested"
	StatusAccepted     Status = "accepted"
	StatusConfirmed    Status = "confirmed"
	StatusReadyToStart Status = "ready_to_start"
	StatusInProgress   Status = "in_progress"
	StatusCompleted    Status = "completed"
	StatusNoShow       Status = "no_show"
	StatusCancelled    Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusRequested,
	StatusAccepted,
	StatusConfirmed,
	StatusReadyToStart,
	StatusInProgress,
	StatusCompleted,
	StatusNoShow,
	StatusCancelled,
}

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid returns true if the status is one of the known values.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal returns true for statuses that cannot transition further.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	default:
		return false
	}
}

// transitions lists the allowed next statuses for every non-terminal status.
var transitions = map[Status][]Status{
	StatusRequested:    {StatusAccepted, StatusConfirmed, StatusCancelled},
	StatusAccepted:     {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:    {StatusReadyToStart, StatusInProgress, StatusCancelled, StatusNoShow},
	StatusReadyToStart: {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress:   {StatusCompleted},
}

// CanTransition reports whether an appointment may move from one status to another.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StaffMember is a bookable person on the roster.
type StaffMember struct {
	ID           string
	Name         string
	DisplayColor string // "#rrggbb", cosmetic only
}

// Appointment is the scheduling unit shown on the grid.
type Appointment struct {
	ID          string
	StaffID     string // Unassigned when empty
	ClientName  string
	ServiceID   string
	ServiceName string
	Date        time.Time
	StartTime   string // "HH:MM", stores may return "HH:MM:SS"
	DurationMin int    // 0 when the linked service is unknown
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates a new requested Appointment with validation.
func New(clientName, staffID string, date time.Time, start string, durationMin int) (*Appointment, error) {
	if clientName == "" {
		return nil, ErrEmptyClient
	}
	norm, err := NormalizeTime(start)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	if durationMin < 0 {
		return nil, ErrInvalidDuration
	}
	now := time.Now()
	return &Appointment{
		ClientName:  clientName,
		StaffID:     staffID,
		Date:        date,
		StartTime:   norm,
		DurationMin: durationMin,
		Status:      StatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsCancelled returns true if the appointment was soft-deleted.
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// IsAssigned returns true if a staff member owns the appointment.
func (a *Appointment) IsAssigned() bool {
	return a.StaffID != Unassigned
}

// Duration returns the appointment length in minutes, falling back to
// fallback when the linked service did not provide one.
func (a *Appointment) Duration(fallback int) int {
	if a.DurationMin > 0 {
		return a.DurationMin
	}
	return fallback
}

// StartMinutes returns the start time as minutes since midnight.
func (a *Appointment) StartMinutes() int {
	return TimeToMinutes(a.StartTime)
}

// EndMinutes returns start + duration in minutes since midnight.
// The value may exceed 24*60 for malformed records.
func (a *Appointment) EndMinutes(fallback int) int {
	return a.StartMinutes() + a.Duration(fallback)
}

// SameDay returns true if the appointment is scheduled on the given date.
func (a *Appointment) SameDay(date time.Time) bool {
	y1, m1, d1 := a.Date.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Clone returns a shallow copy that can be mutated independently.
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Patch is a partial update. Nil fields are left unchanged; a StaffID pointing
// to Unassigned clears the assignment.
type Patch struct {
	StaffID   *string
	StartTime *string
	Date      *time.Time
}

// IsEmpty returns true if the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.StaffID == nil && p.StartTime == nil && p.Date == nil
}

// ApplyTo returns a copy of a with the patch fields merged in.
func (p Patch) ApplyTo(a *Appointment) *Appointment {
	c := a.Clone()
	if p.StaffID != nil {
		c.StaffID = *p.StaffID
	}
	if p.StartTime != nil {
		c.StartTime = CanonicalTime(*p.StartTime)
	}
	if p.Date != nil {
		c.Date = *p.Date
	}
	return c
}

// Matches reports whether every field present in the patch equals the
// corresponding field of a, comparing times in canonical HH:MM form.
func (p Patch) Matches(a *Appointment) bool {
	if a == nil {
		return false
	}
	if p.StaffID != nil && *p.StaffID != a.StaffID {
		return false
	}
	if p.StartTime != nil && CanonicalTime(*p.StartTime) != CanonicalTime(a.StartTime) {
		return false
	}
	if p.Date != nil && !a.SameDay(*p.Date) {
		return false
	}
	return true
}

// String renders the patch for logs and notices.
func (p Patch) String() string {
	s := "{"
	if p.StaffID != nil {
		staff := *p.StaffID
		if staff == Unassigned {
			staff = "unassigned"
		}
		s += "staff=" + staff + " "
	}
	if p.StartTime != nil {
		s += "start=" + CanonicalTime(*p.StartTime) + " "
	}
	if p.Date != nil {
		s += "date=" + p.Date.Format("2006-01-02") + " "
	}
	if len(s) > 1 {
		s = s[:len(s)-1]
	}
	return s + "}"
}
