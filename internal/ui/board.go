package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/salonboard/internal/dateutil"
	"github.com/javiermolinar/salonboard/internal/tui"
)

// ErrNotInteractive is returned when the board is started without a terminal.
var ErrNotInteractive = errors.New("the board needs an interactive terminal; use `salonboard list` instead")

type boardFlags struct {
	date  string
	staff []string
}

func (a *App) runBoard(cmd *cobra.Command, flags boardFlags) error {
	if !isInteractive() {
		return ErrNotInteractive
	}
	ctx := context.Background()
	out := cmd.OutOrStdout()

	date, err := dateutil.ParseDay(flags.date, a.now())
	if err != nil {
		return err
	}

	state, err := tui.DetectInitState(a.config, a.configPath)
	if err != nil {
		return err
	}
	if state.NeedsInit {
		if err := tui.Initialize(a.config, state); err != nil {
			return err
		}
		if state.ConfigMissing {
			_, _ = fmt.Fprintf(out, "Created %s\n", state.ConfigPath)
		}
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if state.DBMissing {
		_, _ = fmt.Fprintf(out, "Created %s (run `salonboard seed` for demo data)\n", state.DBPath)
	}

	roster, err := store.ListStaff(ctx)
	if err != nil {
		return fmt.Errorf("listing staff: %w", err)
	}
	filter, err := resolveStaffList(roster, flags.staff)
	if err != nil {
		return err
	}

	a.logger.Info("board started", "date", dateutil.FormatDay(date), "staff_filter", len(filter))
	return tui.Run(store, a.config,
		tui.WithLogger(a.logger),
		tui.WithDate(date),
		tui.WithStaffFilter(filter),
		tui.WithClock(a.now),
	)
}
