package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/config"
	"github.com/javiermolinar/salonboard/internal/logging"
	"github.com/javiermolinar/salonboard/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config     *config.Config
	configPath string
	root       *cobra.Command

	store    appointment.Store // opened on first use
	logger   *slog.Logger
	closeLog func() error
	now      func() time.Time

	debug   bool // log at debug level to a temp file
	noColor bool
}

// Option configures an App.
type Option func(*App)

// WithStore uses store instead of opening the configured one.
func WithStore(store appointment.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithConfigPath overrides the config file location.
func WithConfigPath(path string) Option {
	return func(a *App) {
		a.configPath = path
	}
}

// WithLogger overrides the logger built from the [log] config.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithClock overrides the wall clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		config:     cfg,
		configPath: config.DefaultConfigPath(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	var boardOpts boardFlags
	a.root = &cobra.Command{
		Use:   "salonboard",
		Short: "A drag-and-drop scheduling board for salon staff",
		Long: `Salonboard shows one day of appointments as a grid with a column per
staff member. Appointments can be dragged to another time or another
staff member; moves are shown immediately and confirmed by the store
in the background.

Run without a subcommand to open the board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			return a.setupLogging()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBoard(cmd, boardOpts)
		},
	}
	a.root.Flags().StringVar(&boardOpts.date, "date", "", "Day to show (YYYY-MM-DD, today, tomorrow, yesterday)")
	a.root.Flags().StringSliceVar(&boardOpts.staff, "staff", nil, "Only show these staff members (names or ids)")

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to temp file)")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.staffCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.statusCmd())
	a.root.AddCommand(a.seedCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "salonboard %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}

// setupLogging opens the log sink once. --debug wins over [log] file.
func (a *App) setupLogging() error {
	if a.logger != nil {
		return nil
	}
	path, level := a.config.Log.File, a.config.Log.Level
	if a.debug {
		path = filepath.Join(os.TempDir(), "salonboard-debug.log")
		level = "debug"
	}
	logger, closeFn, err := logging.Open(path, level)
	if err != nil {
		return err
	}
	a.logger, a.closeLog = logger, closeFn
	a.logger.Debug("logging started", "path", path, "version", Version)
	return nil
}

// openStore returns the appointment store, opening it on first use.
func (a *App) openStore(ctx context.Context) (appointment.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := tui.OpenStore(ctx, a.config, a.logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// resolveStaff maps names or ids to staff ids. "unassigned" selects the
// unassigned lane.
func resolveStaff(roster []appointment.StaffMember, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	switch strings.ToLower(ref) {
	case "unassigned", "none", "-":
		return appointment.Unassigned, nil
	}
	for _, m := range roster {
		if m.ID == ref {
			return m.ID, nil
		}
	}
	var match []appointment.StaffMember
	for _, m := range roster {
		if strings.EqualFold(m.Name, ref) {
			match = append(match, m)
		}
	}
	switch len(match) {
	case 1:
		return match[0].ID, nil
	case 0:
		return "", fmt.Errorf("%w: %q", appointment.ErrStaffNotFound, ref)
	default:
		return "", fmt.Errorf("staff name %q is ambiguous, use the id", ref)
	}
}

func resolveStaffList(roster []appointment.StaffMember, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveStaff(roster, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
