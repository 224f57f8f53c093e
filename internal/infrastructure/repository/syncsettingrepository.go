package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/mappers"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
	"github.com/metashield/jirasync/internal/shared/db"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// SyncSettingRepository implements syncsetting.Repository
type SyncSettingRepository struct {
	db     *gorm.DB
	logger logger.Interface
	mapper mappers.SyncSettingMapper
}

// NewSyncSettingRepository creates a new SyncSettingRepository
func NewSyncSettingRepository(db *gorm.DB, logger logger.Interface) *SyncSettingRepository {
	return &SyncSettingRepository{
		db:     db,
		logger: logger,
		mapper: mappers.NewSyncSettingMapper(),
	}
}

var _ syncsetting.Repository = (*SyncSettingRepository)(nil)

// Get retrieves a setting by key
func (r *SyncSettingRepository) Get(ctx context.Context, key string) (*syncsetting.Setting, error) {
	var model models.SyncSettingModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("setting_key = ?", key).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncsetting.ErrSettingNotFound
		}
		r.logger.Errorw("failed to get sync setting", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get sync setting: %w", err)
	}

	return r.mapper.ToDomain(&model), nil
}

// GetAll retrieves all sync settings
func (r *SyncSettingRepository) GetAll(ctx context.Context) ([]*syncsetting.Setting, error) {
	var modelList []*models.SyncSettingModel

	if err := db.GetTxFromContext(ctx, r.db).
		Order("setting_key ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to get all sync settings", "error", err)
		return nil, fmt.Errorf("failed to get all sync settings: %w", err)
	}

	return r.mapper.ToDomainList(modelList), nil
}

// Upsert creates or updates a setting. The description of an existing row
// is kept.
func (r *SyncSettingRepository) Upsert(ctx context.Context, s *syncsetting.Setting) error {
	model := r.mapper.ToModel(s)

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "value_type", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert sync setting", "key", s.Key(), "error", err)
		return fmt.Errorf("failed to upsert sync setting: %w", err)
	}

	if s.ID() == 0 {
		s.SetID(model.ID)
	}

	return nil
}

// InsertIfAbsent stores s unless its key already exists
func (r *SyncSettingRepository) InsertIfAbsent(ctx context.Context, s *syncsetting.Setting) (bool, error) {
	model := r.mapper.ToModel(s)

	result := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		r.logger.Errorw("failed to seed sync setting", "key", s.Key(), "error", result.Error)
		return false, fmt.Errorf("failed to seed sync setting: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	s.SetID(model.ID)
	return true, nil
}

// SetTime stores a time-valued setting such as a checkpoint
func (r *SyncSettingRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	s, err := syncsetting.NewTimeSetting(key, t)
	if err != nil {
		return err
	}
	return r.Upsert(ctx, s)
}
