package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/grid"
)

// ErrMoveRejected is returned when a move fails local validation.
var ErrMoveRejected = errors.New("move rejected")

func (a *App) moveCmd() *cobra.Command {
	var (
		staff string
		start string
	)

	cmd := &cobra.Command{
		Use:   "move <appointment-id>",
		Short: "Move an appointment to another time or staff member",
		Long: `Move an appointment within its day.

The new placement is checked the same way the board checks a drop:
the start is snapped to the grid, must lie inside business hours, must
not run past midnight and must not overlap another booking of the
target staff member. Only then is the store updated.`,
		Example: `  salonboard move 3f2c... --time=10:30
  salonboard move 3f2c... --staff=Bruno
  salonboard move 3f2c... --staff=unassigned --time=15:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if staff == "" && start == "" {
				return errors.New("nothing to do: pass --time and/or --staff")
			}
			return a.runMove(cmd, args[0], staff, start)
		},
	}

	cmd.Flags().StringVar(&staff, "staff", "", "Target staff member (name, id or \"unassigned\")")
	cmd.Flags().StringVar(&start, "time", "", "New start time (HH:MM), snapped to the grid")

	return cmd
}

func (a *App) runMove(cmd *cobra.Command, id, staffRef, start string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	current, err := store.GetAppointment(ctx, id)
	if err != nil {
		return fmt.Errorf("loading appointment: %w", err)
	}
	roster, err := store.ListStaff(ctx)
	if err != nil {
		return fmt.Errorf("listing staff: %w", err)
	}
	day, err := store.ListAppointments(ctx, current.Date)
	if err != nil {
		return fmt.Errorf("listing appointments: %w", err)
	}

	opts := grid.OptionsFromConfig(a.config.Grid)
	opts.Now = a.now
	opts.Logger = a.logger
	board := grid.NewBoard(current.Date, opts)
	board.SetRoster(roster)
	board.SetAppointments(day)

	candidate := grid.Candidate{StaffID: current.StaffID, Start: current.StartMinutes()}
	if staffRef != "" {
		if candidate.StaffID, err = resolveStaff(roster, staffRef); err != nil {
			return err
		}
	}
	if start != "" {
		norm, err := appointment.NormalizeTime(start)
		if err != nil {
			return fmt.Errorf("--time: %w", err)
		}
		geom := board.Geometry()
		candidate.Start = geom.ClampToBusinessHours(geom.Snap(appointment.TimeToMinutes(norm)))
		if candidate.Time() != norm {
			_, _ = fmt.Fprintln(out, formatMuted(fmt.Sprintf("%s snapped to %s", norm, candidate.Time())))
		}
	}

	res, req := board.Propose(current.ID, candidate)
	if req == nil {
		if res.Reason == grid.ReasonNoChange {
			_, _ = fmt.Fprintln(out, "Appointment is already there, nothing to do.")
			return nil
		}
		return fmt.Errorf("%w: %s", ErrMoveRejected, res.Message())
	}

	record, err := store.UpdateAppointment(ctx, req.ID, req.Patch)
	if err != nil {
		board.CommitFailed(*req, err)
		return fmt.Errorf("moving appointment: %w", err)
	}
	board.CommitSucceeded(*req, record)
	for _, n := range board.DrainNotices() {
		if n.IsError() {
			return errors.New(n.Message)
		}
	}

	_, _ = fmt.Fprintf(out, "%s %s to %s with %s\n",
		formatSuccess("Moved"),
		record.ClientName,
		appointment.CanonicalTime(record.StartTime),
		staffLabel(roster, record.StaffID),
	)
	return nil
}

func staffLabel(roster []appointment.StaffMember, id string) string {
	if id == appointment.Unassigned {
		return formatWarning("nobody (unassigned)")
	}
	for _, m := range roster {
		if m.ID == id {
			return formatStaff(m)
		}
	}
	return id
}
