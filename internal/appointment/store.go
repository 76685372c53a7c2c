package appointment

import (
	"context"
	"time"
)

// Service is a bookable treatment. Its duration drives appointment length.
type Service struct {
	ID          string
	Name        string
	DurationMin int
}

// Store defines the access interface to the authoritative appointment data.
// Implementations own the data; the grid only proposes changes through it.
type Store interface {
	// ListAppointments returns every appointment on the given date,
	// including cancelled ones.
	ListAppointments(ctx context.Context, date time.Time) ([]*Appointment, error)

	// GetAppointment retrieves an appointment by ID.
	// Returns ErrNotFound if it does not exist.
	GetAppointment(ctx context.Context, id string) (*Appointment, error)

	// UpdateAppointment applies a partial update and returns the record as persisted.
	// Returns ErrNotFound for unknown ids and ErrOverlap if the result would
	// collide with another non-cancelled appointment of the same staff member.
	UpdateAppointment(ctx context.Context, id string, patch Patch) (*Appointment, error)

	// CreateAppointment inserts a new appointment and sets its ID.
	CreateAppointment(ctx context.Context, a *Appointment) error

	// SetStatus moves an appointment through its lifecycle.
	// Returns ErrStatusTransition when the transition table forbids it.
	SetStatus(ctx context.Context, id string, status Status) (*Appointment, error)

	// ListStaff returns the roster in display order.
	ListStaff(ctx context.Context) ([]StaffMember, error)

	// CreateStaff adds a roster entry.
	CreateStaff(ctx context.Context, s *StaffMember) error

	// CreateService adds a service that appointments can link to.
	CreateService(ctx context.Context, s *Service) error

	// Close releases any resources held by the store.
	Close() error
}
