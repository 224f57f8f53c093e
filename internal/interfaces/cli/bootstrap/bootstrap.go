package bootstrap

import (
	"fmt"
	"os"

	"github.com/metashield/jirasync/internal/infrastructure/config"
	"github.com/metashield/jirasync/internal/infrastructure/database"
	"github.com/metashield/jirasync/internal/infrastructure/migration"
	"github.com/metashield/jirasync/internal/shared/biztime"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// Options are the flags shared by every command.
type Options struct {
	Env         string
	ConfigPath  string
	AutoMigrate bool
}

// Runtime is the initialized process state of a command.
type Runtime struct {
	Config *config.Config
	Log    logger.Interface
}

// Init loads configuration, then sets up the business timezone, logging and
// the database connection, in that order. Callers must call Close.
func Init(opts Options) (*Runtime, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		opts.Env = envVar
	}

	cfg, err := config.Load(opts.Env, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if opts.AutoMigrate {
		if cfg.Server.Mode == "release" {
			log.Warnw("auto-migration is enabled in release mode")
		}
		if err := migration.NewManager(cfg.Database.Driver).Migrate(database.Get()); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	return &Runtime{Config: cfg, Log: log}, nil
}

// Close releases the database connection and flushes the logger.
func (r *Runtime) Close() {
	if err := database.Close(); err != nil {
		r.Log.Warnw("failed to close database", "error", err)
	}
	_ = logger.Sync()
}
