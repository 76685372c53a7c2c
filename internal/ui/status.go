package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/salonboard/internal/appointment"
)

func (a *App) statusCmd() *cobra.Command {
	names := make([]string, len(appointment.Statuses))
	for i, s := range appointment.Statuses {
		names[i] = string(s)
	}

	return &cobra.Command{
		Use:   "status <appointment-id> <status>",
		Short: "Change an appointment's status",
		Long: fmt.Sprintf(`Change an appointment's status.

Valid statuses: %s.
Completed, no_show and cancelled are final.`, strings.Join(names, ", ")),
		Example: `  salonboard status 3f2c... confirmed
  salonboard status 3f2c... cancelled`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := appointment.ParseStatus(strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			ctx := context.Background()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			record, err := store.SetStatus(ctx, args[0], status)
			if err != nil {
				return fmt.Errorf("setting status: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s is now %s\n",
				statusSymbol(record.Status),
				record.ClientName,
				appointment.CanonicalTime(record.StartTime),
				formatStatus(record.Status),
			)
			return nil
		},
	}
}
