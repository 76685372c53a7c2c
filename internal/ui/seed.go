package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/salonboard/internal/dateutil"
	"github.com/javiermolinar/salonboard/internal/db"
)

// ErrAlreadySeeded is returned when seeding a store that already has staff.
var ErrAlreadySeeded = errors.New("store already has staff members; seed only fills an empty store")

func (a *App) seedCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty store with demo data",
		Long: `Create a demo roster, a few services and a day of appointments.

Works with both the sqlite and the postgres driver. Refuses to run when
the store already has staff members.`,
		Example: `  salonboard seed
  salonboard seed --date=tomorrow`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := dateutil.ParseDay(date, a.now())
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
			if len(roster) > 0 {
				return ErrAlreadySeeded
			}

			res, err := db.Seed(ctx, store, day)
			if err != nil {
				return err
			}
			a.logger.Info("store seeded",
				"date", dateutil.FormatDay(day),
				"staff", len(res.Staff),
				"appointments", len(res.Appointments))

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s %d staff members, %d services and %d appointments on %s\n",
				formatSuccess("Created"),
				len(res.Staff), len(res.Services), len(res.Appointments),
				dateutil.FormatDay(day))
			for _, m := range res.Staff {
				printStaffRow(out, m)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to book the demo appointments on (defaults to today)")
	return cmd
}
