package migration

import (
	"embed"
	"fmt"

	"gorm.io/gorm"

	"github.com/metashield/jirasync/internal/shared/logger"
)

const scriptsDir = "scripts"

// ScriptsPath is where `migrate create` writes new scripts, relative to the
// repository root.
const ScriptsPath = "./internal/infrastructure/migration/scripts"

//go:embed scripts/*.sql
var embeddedScripts embed.FS

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy for driver: versioned goose scripts for
// mysql, GORM AutoMigrate for sqlite.
func NewManager(driver string) *Manager {
	var strategy Strategy

	switch driver {
	case "sqlite":
		strategy = NewGormAutoMigrateStrategy()
	default:
		strategy = NewEmbeddedGooseStrategy("mysql")
	}

	return NewManagerWithStrategy(strategy)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, AutoMigrateModels()...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully",
		"strategy", m.strategy.GetName())

	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// Goose returns the goose strategy when the manager uses one.
func (m *Manager) Goose() (*GooseStrategy, bool) {
	s, ok := m.strategy.(*GooseStrategy)
	return s, ok
}
