package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/dateutil"
	"github.com/javiermolinar/salonboard/internal/grid"
)

func (a *App) listCmd() *cobra.Command {
	var (
		date   string
		to     string
		staff  []string
		showID bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a day's appointments by staff member",
		Long: `List all appointments of a day grouped by staff member, in roster order.

Appointments without a staff member, or whose staff member is no longer
on the roster, are listed under Unassigned. Cancelled appointments are
only counted. With --to every day from --date through --to is listed and
the totals cover the whole range.`,
		Example: `  salonboard list
  salonboard list --date=tomorrow
  salonboard list --date=2025-03-14 --staff=Alma --ids
  salonboard list --date=today --to=2025-03-21`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			days, err := dateutil.NewDateRange(date, to, a.now())
			if err != nil {
				return err
			}
			ctx := context.Background()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			roster, err := store.ListStaff(ctx)
			if err != nil {
				return fmt.Errorf("listing staff: %w", err)
			}
			filter, err := resolveStaffList(roster, staff)
			if err != nil {
				return err
			}

			var stats Stats
			geom := grid.GeometryFromConfig(a.config.Grid)
			for i, day := range days.Days() {
				apts, err := store.ListAppointments(ctx, day)
				if err != nil {
					return fmt.Errorf("listing appointments for %s: %w", dateutil.FormatDay(day), err)
				}
				if i > 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				layout := grid.BuildLayout(apts, roster, geom, grid.LayoutOptions{
					Date:            day,
					Staff:           filter,
					DefaultDuration: a.config.Grid.DefaultDurationMin,
				})
				dayStats := printDay(cmd.OutOrStdout(), layout, PrintOpts{ShowID: showID})
				for _, apt := range apts {
					if apt.IsCancelled() {
						dayStats.Cancelled++
					}
				}
				stats.Merge(dayStats)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			PrintStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to list (YYYY-MM-DD, today, tomorrow, yesterday)")
	cmd.Flags().StringVar(&to, "to", "", "List every day from --date through this day")
	cmd.Flags().StringSliceVar(&staff, "staff", nil, "Only list these staff members (names or ids)")
	cmd.Flags().BoolVar(&showID, "ids", false, "Show appointment ids")

	return cmd
}

// printDay prints every column of layout and returns the day totals.
func printDay(w io.Writer, layout *grid.Layout, opts PrintOpts) Stats {
	var stats Stats
	_, _ = fmt.Fprintf(w, "=== %s ===\n", layout.Date.Format("Mon 02 Jan 2006"))
	for _, col := range layout.Columns {
		if col.IsUnassigned() && len(col.Blocks) == 0 {
			continue
		}
		_, _ = fmt.Fprintln(w)
		name := formatStaff(col.Staff)
		if col.IsUnassigned() {
			name = formatWarning(col.Staff.Name)
		}
		_, _ = fmt.Fprintln(w, name)
		if len(col.Blocks) == 0 {
			_, _ = fmt.Fprintln(w, formatMuted("  (free all day)"))
			continue
		}
		for _, b := range col.Blocks {
			PrintAppointmentRow(w, b, opts)
			stats.Accumulate(col, b)
		}
	}
	return stats
}

func (a *App) staffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "staff",
		Short: "List staff members in roster order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			roster, err := store.ListStaff(ctx)
			if err != nil {
				return fmt.Errorf("listing staff: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(roster) == 0 {
				_, _ = fmt.Fprintln(out, "No staff members yet. Run `salonboard seed` for demo data.")
				return nil
			}
			for _, m := range roster {
				printStaffRow(out, m)
			}
			return nil
		},
	}
}

func printStaffRow(w io.Writer, m appointment.StaffMember) {
	_, _ = fmt.Fprintf(w, "  %s %-20s %s  %s\n", swatch(m.DisplayColor), m.Name, formatMuted(m.DisplayColor), formatMuted(m.ID))
}
