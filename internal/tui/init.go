package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/javiermolinar/salonboard/internal/appointment"
	"github.com/javiermolinar/salonboard/internal/config"
	"github.com/javiermolinar/salonboard/internal/db"
	"github.com/javiermolinar/salonboard/internal/logging"
	"github.com/javiermolinar/salonboard/internal/postgres"
)

// InitState tracks whether startup initialization is required.
type InitState struct {
	NeedsInit     bool
	ConfigMissing bool
	DBMissing     bool // only meaningful for the sqlite driver
	ConfigPath    string
	DBPath        string
}

// DetectInitState checks for missing config or database files.
func DetectInitState(cfg *config.Config, configPath string) (InitState, error) {
	state := InitState{
		ConfigPath: configPath,
		DBPath:     cfg.Storage.DBPath,
	}

	configMissing, err := pathMissing(state.ConfigPath)
	if err != nil {
		return InitState{}, fmt.Errorf("checking config path: %w", err)
	}
	state.ConfigMissing = configMissing

	if cfg.Storage.Driver == config.DriverSQLite {
		dbMissing, err := pathMissing(state.DBPath)
		if err != nil {
			return InitState{}, fmt.Errorf("checking db path: %w", err)
		}
		state.DBMissing = dbMissing
	}

	state.NeedsInit = state.ConfigMissing || state.DBMissing
	return state, nil
}

// Initialize writes the default config file when it is missing.
// The database is created by OpenStore.
func Initialize(cfg *config.Config, state InitState) error {
	if !state.ConfigMissing {
		return nil
	}
	if err := cfg.SaveTo(state.ConfigPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func pathMissing(path string) (bool, error) {
	if path == "" {
		return true, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, err
}

// OpenStore opens the appointment store selected by the storage driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (appointment.Store, error) {
	defaultDuration := cfg.Grid.DefaultDurationMin
	logger = logging.Component(logger, "store")

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.Storage.DatabaseURL, defaultDuration)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		logger.Debug("store opened", "driver", config.DriverPostgres)
		return store, nil

	case config.DriverSQLite, "":
		dbPath := cfg.Storage.DBPath
		if dbPath == "" {
			return nil, fmt.Errorf("db path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		store, err := db.New(dbPath, db.WithDefaultDuration(defaultDuration))
		if err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		logger.Debug("store opened", "driver", config.DriverSQLite, "path", dbPath)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
