package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/grid"
)

// Stats holds the day totals for a listing.
type Stats struct {
	Booked      int // non-cancelled appointments
	BookedMin   int
	Unassigned  int
	Cancelled   int
	PerStaffMin map[string]int
}

// Accumulate adds a placed block to the totals.
func (s *Stats) Accumulate(col grid.Column, b grid.Block) {
	if s.PerStaffMin == nil {
		s.PerStaffMin = make(map[string]int)
	}
	minutes := b.End - b.Start
	s.Booked++
	s.BookedMin += minutes
	if col.IsUnassigned() {
		s.Unassigned++
		return
	}
	s.PerStaffMin[col.Staff.ID] += minutes
}

// Merge adds another day's totals.
func (s *Stats) Merge(o Stats) {
	s.Booked += o.Booked
	s.BookedMin += o.BookedMin
	s.Unassigned += o.Unassigned
	s.Cancelled += o.Cancelled
	for id, m := range o.PerStaffMin {
		if s.PerStaffMin == nil {
			s.PerStaffMin = make(map[string]int)
		}
		s.PerStaffMin[id] += m
	}
}

// PrintOpts configures appointment row printing.
type PrintOpts struct {
	ShowID       bool // print the appointment id
	MaxNameWidth int  // client column width, 0 = auto
}

// nameWidth picks the client column width for the terminal.
func (o PrintOpts) nameWidth() int {
	if o.MaxNameWidth > 0 {
		return o.MaxNameWidth
	}
	// "  ● HH:MM-HH:MM  " + service + duration + status
	available := termWidth() - 60
	switch {
	case available < 12:
		return 12
	case available > 32:
		return 32
	default:
		return available
	}
}

// PrintAppointmentRow prints one appointment with consistent formatting.
func PrintAppointmentRow(w io.Writer, b grid.Block, opts PrintOpts) {
	a := b.Appointment
	width := opts.nameWidth()
	name := ansi.Truncate(a.ClientName, width, "…")
	service := a.ServiceName
	if service == "" {
		service = "-"
	}
	service = ansi.Truncate(service, 16, "…")

	_, _ = fmt.Fprintf(w, "  %s %s-%s  %-*s  %-16s  %5s  %s",
		statusSymbol(a.Status),
		appointment.MinutesToTime(b.Start),
		appointment.MinutesToTime(b.End),
		width, name,
		service,
		formatMuted(FormatDuration(b.End-b.Start)),
		formatStatus(a.Status),
	)
	if opts.ShowID {
		_, _ = fmt.Fprintf(w, "  %s", formatMuted(a.ID))
	}
	_, _ = fmt.Fprintln(w)
}

// PrintStats prints the totals line for a day.
func PrintStats(w io.Writer, s Stats) {
	_, _ = fmt.Fprintf(w, "%s | Booked: %s | Unassigned: %d",
		formatHeader(fmt.Sprintf("%d appointments", s.Booked)),
		formatSuccess(FormatDuration(s.BookedMin)),
		s.Unassigned,
	)
	if s.Cancelled > 0 {
		_, _ = fmt.Fprintf(w, " | %s", formatMuted(fmt.Sprintf("Cancelled: %d", s.Cancelled)))
	}
	_, _ = fmt.Fprintln(w)
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

func statusSymbol(s appointment.Status) string {
	switch s {
	case appointment.StatusRequested:
		return "○"
	case appointment.StatusAccepted:
		return "◔"
	case appointment.StatusConfirmed:
		return "●"
	case appointment.StatusReadyToStart:
		return "◑"
	case appointment.StatusInProgress:
		return "▶"
	case appointment.StatusCompleted:
		return "✓"
	case appointment.StatusNoShow:
		return "✗"
	case appointment.StatusCancelled:
		return "⊘"
	default:
		return "?"
	}
}
