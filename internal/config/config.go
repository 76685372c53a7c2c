// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	Grid    GridConfig    `toml:"grid"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// GridConfig holds the scheduling grid geometry and reconciliation settings.
type GridConfig struct {
	DayStart           string   `toml:"day_start"`            // grid origin, e.g. "08:00"
	LastStart          string   `toml:"last_start"`           // latest allowed start, e.g. "23:45"
	QuantumMin         int      `toml:"quantum_min"`          // snap granularity in minutes
	PixelsPerMinute    int      `toml:"pixels_per_minute"`    // vertical scale
	MinBlockHeight     int      `toml:"min_block_height"`     // pixels, keeps short blocks clickable
	DefaultDurationMin int      `toml:"default_duration_min"` // used when the linked service is unknown
	DragThresholdPx    int      `toml:"drag_threshold_px"`    // movement before a grab becomes a drag
	PendingTimeout     Duration `toml:"pending_timeout"`      // unconfirmed moves are discarded after this
}

// StorageConfig holds appointment store settings.
type StorageConfig struct {
	Driver      string `toml:"driver"`       // "sqlite" or "postgres"
	DBPath      string `toml:"db_path"`      // sqlite file
	DatabaseURL string `toml:"database_url"` // postgres connection string
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "latte"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	File  string `toml:"file"`  // empty disables logging
}

// Duration is a time.Duration that reads and writes as a TOML string ("30s").
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			DayStart:           "08:00",
			LastStart:          "23:45",
			QuantumMin:         15,
			PixelsPerMinute:    2,
			MinBlockHeight:     20,
			DefaultDurationMin: 60,
			DragThresholdPx:    3,
			PendingTimeout:     Duration(30 * time.Second),
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "mocha",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "salonboard.db"
	}
	return filepath.Join(home, ".local", "share", "salonboard", "salonboard.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "salonboard", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SALONBOARD_DAY_START"); v != "" {
		cfg.Grid.DayStart = v
	}
	if v := os.Getenv("SALONBOARD_DEFAULT_DURATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SALONBOARD_DEFAULT_DURATION must be a number of minutes, got %q", v)
		}
		cfg.Grid.DefaultDurationMin = n
	}
	if v := os.Getenv("SALONBOARD_PENDING_TIMEOUT"); v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("SALONBOARD_PENDING_TIMEOUT: %w", err)
		}
		cfg.Grid.PendingTimeout = d
	}

	if v := os.Getenv("SALONBOARD_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("SALONBOARD_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("SALONBOARD_DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}

	if v := os.Getenv("SALONBOARD_THEME"); v != "" {
		cfg.UI.Theme = v
	}

	if v := os.Getenv("SALONBOARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SALONBOARD_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	g := c.Grid
	if err := validateTime(g.DayStart, "day_start"); err != nil {
		return err
	}
	if err := validateTime(g.LastStart, "last_start"); err != nil {
		return err
	}
	if g.DayStart >= g.LastStart {
		return errors.New("day_start must be before last_start")
	}
	if g.QuantumMin <= 0 || 60%g.QuantumMin != 0 {
		return fmt.Errorf("quantum_min must divide 60, got %d", g.QuantumMin)
	}
	if minutesOf(g.DayStart)%g.QuantumMin != 0 || minutesOf(g.LastStart)%g.QuantumMin != 0 {
		return errors.New("day_start and last_start must be aligned to quantum_min")
	}
	if g.PixelsPerMinute <= 0 {
		return errors.New("pixels_per_minute must be positive")
	}
	if g.MinBlockHeight < 0 {
		return errors.New("min_block_height cannot be negative")
	}
	if g.DefaultDurationMin <= 0 {
		return errors.New("default_duration_min must be positive")
	}
	if g.DragThresholdPx < 0 {
		return errors.New("drag_threshold_px cannot be negative")
	}
	if g.PendingTimeout.Std() <= 0 {
		return errors.New("pending_timeout must be positive")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database_url must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if !isDigits(t[0:2]) || !isDigits(t[3:5]) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if minutesOf(t) >= 24*60 || t[3] > '5' {
		return fmt.Errorf("%s is not a valid time of day, got %q", field, t)
	}
	return nil
}

func minutesOf(t string) int {
	h, _ := strconv.Atoi(t[0:2])
	m, _ := strconv.Atoi(t[3:5])
	return h*60 + m
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
