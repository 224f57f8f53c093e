package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// AutoMigrateModels lists every persisted model.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.JiraTicketModel{},
		&models.JiraTicketHistoryModel{},
		&models.SyncRunModel{},
		&models.SyncSettingModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the GORM models. It backs
// the sqlite driver, which the SQL scripts do not target.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		models = AutoMigrateModels()
	}

	s.logger.Infow("starting gorm auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
