package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/mappers"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
	"github.com/metashield/jirasync/internal/shared/db"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// SyncRunRepository implements syncrun.Repository
type SyncRunRepository struct {
	db     *gorm.DB
	mapper mappers.SyncRunMapper
	logger logger.Interface
}

// NewSyncRunRepository creates a new SyncRunRepository
func NewSyncRunRepository(db *gorm.DB, logger logger.Interface) *SyncRunRepository {
	return &SyncRunRepository{
		db:     db,
		mapper: mappers.NewSyncRunMapper(),
		logger: logger,
	}
}

var _ syncrun.Repository = (*SyncRunRepository)(nil)

func (r *SyncRunRepository) Create(ctx context.Context, run *syncrun.SyncRun) error {
	model, err := r.mapper.ToModel(run)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create sync run", "sync_type", run.Type(), "error", err)
		return fmt.Errorf("failed to create sync run: %w", err)
	}

	run.SetID(model.ID)
	return nil
}

func (r *SyncRunRepository) Update(ctx context.Context, run *syncrun.SyncRun) error {
	model, err := r.mapper.ToModel(run)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SyncRunModel{}).
		Where("id = ?", run.ID()).
		Select("*").
		Omit("id").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update sync run", "run_id", run.ID(), "error", result.Error)
		return fmt.Errorf("failed to update sync run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return syncrun.ErrRunNotFound
	}

	return nil
}

func (r *SyncRunRepository) GetByID(ctx context.Context, id uint) (*syncrun.SyncRun, error) {
	var model models.SyncRunModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncrun.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get sync run: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *SyncRunRepository) ListRunning(ctx context.Context) ([]*syncrun.SyncRun, error) {
	var modelList []*models.SyncRunModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", string(syncrun.StatusRunning)).
		Order("started_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list running sync runs: %w", err)
	}

	return r.mapper.ToDomainList(modelList)
}

func (r *SyncRunRepository) LastSuccessful(ctx context.Context, syncType syncrun.Type) (*syncrun.SyncRun, error) {
	var model models.SyncRunModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("sync_type = ? AND status IN ?", string(syncType),
			[]string{string(syncrun.StatusCompleted), string(syncrun.StatusPartial)}).
		Order("started_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last successful sync run: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *SyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
	var modelList []*models.SyncRunModel

	query := db.GetTxFromContext(ctx, r.db).Order("started_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&modelList).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent sync runs: %w", err)
	}

	return r.mapper.ToDomainList(modelList)
}
