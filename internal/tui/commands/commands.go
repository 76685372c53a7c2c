// Package commands provides board command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/grid"
)

// DayLoadedMsg is sent when a day's roster and appointments are loaded.
type DayLoadedMsg struct {
	Date         time.Time
	Staff        []appointment.StaffMember
	Appointments []*appointment.Appointment
}

// CommitResultMsg is sent when the store answers a move.
// Err is nil on success, and Record holds the persisted appointment.
type CommitResultMsg struct {
	Request grid.CommitRequest
	Record  *appointment.Appointment
	Err     error
}

// StatusChangedMsg is sent after an appointment's status was updated.
type StatusChangedMsg struct {
	Record *appointment.Appointment
}

// ExpireTickMsg drives the pending-move timeout.
type ExpireTickMsg struct {
	At time.Time
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadDay loads the roster and the appointments for date.
func LoadDay(store appointment.Store, date time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		staff, err := store.ListStaff(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading staff: %w", err)}
		}

		apts, err := store.ListAppointments(ctx, date)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading appointments: %w", err)}
		}

		return DayLoadedMsg{Date: date, Staff: staff, Appointments: apts}
	}
}

// Commit sends a proposed move to the store.
func Commit(store appointment.Store, req grid.CommitRequest) tea.Cmd {
	return func() tea.Msg {
		record, err := store.UpdateAppointment(context.Background(), req.ID, req.Patch)
		if err != nil {
			return CommitResultMsg{Request: req, Err: err}
		}
		return CommitResultMsg{Request: req, Record: record}
	}
}

// SetStatus moves an appointment to a new lifecycle status.
func SetStatus(store appointment.Store, id string, status appointment.Status) tea.Cmd {
	return func() tea.Msg {
		record, err := store.SetStatus(context.Background(), id, status)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("setting status: %w", err)}
		}
		return StatusChangedMsg{Record: record}
	}
}

// ExpireTick schedules the next pending-move expiry check.
func ExpireTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return ExpireTickMsg{At: t}
	})
}

// Status shows msg in the status line.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsgCmd{Msg: msg}
	}
}
