package ui

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/salonboard/internal/config"
	"github.com/javiermolinar/salonboard/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.
Environment variables (SALONBOARD_*) override the file.

Example:
  salonboard config
  salonboard config --show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if show {
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "Config file: %s\n\n", a.configPath)
				printConfig(w, a.config)
				return nil
			}
			return runConfigInteractive(a.configPath)
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Print the effective configuration and exit")
	return cmd
}

func runConfigInteractive(configPath string) error {
	fmt.Printf("Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	isNew := os.IsNotExist(fileErr)

	if isNew {
		fmt.Println("No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Created %s\n\n", configPath)
	}

	// Display current config
	printConfig(os.Stdout, cfg)

	// Ask if user wants to edit
	if !promptYesNo("\nWould you like to edit the configuration?") {
		return nil
	}

	// Interactive editing
	reader := bufio.NewReader(os.Stdin)

	cfg.Grid.DayStart = promptValue(reader, "Day start", cfg.Grid.DayStart)
	cfg.Grid.LastStart = promptValue(reader, "Last start", cfg.Grid.LastStart)
	cfg.Grid.QuantumMin = promptInt(reader, "Quantum (minutes)", cfg.Grid.QuantumMin)
	cfg.Grid.DefaultDurationMin = promptInt(reader, "Default duration (minutes)", cfg.Grid.DefaultDurationMin)
	cfg.Grid.PendingTimeout = promptDuration(reader, "Pending move timeout", cfg.Grid.PendingTimeout)
	cfg.Storage.Driver = promptChoice(reader, "Storage driver", cfg.Storage.Driver,
		[]string{config.DriverSQLite, config.DriverPostgres})
	if cfg.Storage.Driver == config.DriverPostgres {
		cfg.Storage.DatabaseURL = promptValue(reader, "Database URL", cfg.Storage.DatabaseURL)
	} else {
		cfg.Storage.DBPath = promptValue(reader, "Database path", cfg.Storage.DBPath)
	}
	cfg.UI.Theme = promptTheme(reader, cfg.UI.Theme)
	cfg.Log.Level = promptChoice(reader, "Log level", cfg.Log.Level,
		[]string{"debug", "info", "warn", "error"})
	cfg.Log.File = promptValue(reader, "Log file", cfg.Log.File)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Save
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	p := func(format string, args ...any) {
		_, _ = fmt.Fprintf(w, format, args...)
	}
	p("Current configuration:\n")
	p("──────────────────────\n")
	p("[grid]\n")
	p("  day_start            = %s\n", cfg.Grid.DayStart)
	p("  last_start           = %s\n", cfg.Grid.LastStart)
	p("  quantum_min          = %d\n", cfg.Grid.QuantumMin)
	p("  pixels_per_minute    = %d\n", cfg.Grid.PixelsPerMinute)
	p("  min_block_height     = %d\n", cfg.Grid.MinBlockHeight)
	p("  default_duration_min = %d\n", cfg.Grid.DefaultDurationMin)
	p("  drag_threshold_px    = %d\n", cfg.Grid.DragThresholdPx)
	p("  pending_timeout      = %s\n", cfg.Grid.PendingTimeout.Std())
	p("\n[storage]\n")
	p("  driver               = %s\n", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverPostgres {
		p("  database_url         = %s\n", redactURL(cfg.Storage.DatabaseURL))
	} else {
		p("  db_path              = %s\n", cfg.Storage.DBPath)
	}
	p("\n[ui]\n")
	p("  theme                = %s\n", cfg.UI.Theme)
	p("\n[log]\n")
	p("  level                = %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		p("  file                 = %s\n", cfg.Log.File)
	}
}

// redactURL hides the password of a connection string.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

func promptYesNo(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Printf("  %s: ", label)
	} else {
		fmt.Printf("  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, label string, current int) int {
	for {
		value := promptValue(reader, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			return n
		}
		fmt.Printf("  Invalid number %q\n", value)
	}
}

func promptDuration(reader *bufio.Reader, label string, current config.Duration) config.Duration {
	for {
		value := promptValue(reader, label, current.Std().String())
		var d config.Duration
		if err := d.UnmarshalText([]byte(value)); err == nil && d.Std() > 0 {
			return d
		}
		fmt.Printf("  Invalid duration %q (examples: 30s, 1m)\n", value)
	}
}

func promptChoice(reader *bufio.Reader, label, current string, choices []string) string {
	options := strings.Join(choices, ", ")
	for {
		value := strings.ToLower(promptValue(reader, fmt.Sprintf("%s (%s)", label, options), current))
		for _, c := range choices {
			if value == c {
				return value
			}
		}
		fmt.Printf("  Invalid value %q. Available: %s\n", value, options)
	}
}

func promptTheme(reader *bufio.Reader, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Printf("  Invalid theme %q. Available: %s\n", value, options)
	}
}
