package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/mappers"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
	"github.com/metashield/jirasync/internal/shared/db"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const historyInsertBatchSize = 200

// JiraTicketHistoryRepository implements ticket.HistoryRepository
type JiraTicketHistoryRepository struct {
	db     *gorm.DB
	mapper mappers.JiraTicketHistoryMapper
	logger logger.Interface
}

// NewJiraTicketHistoryRepository creates a new JiraTicketHistoryRepository
func NewJiraTicketHistoryRepository(db *gorm.DB, logger logger.Interface) *JiraTicketHistoryRepository {
	return &JiraTicketHistoryRepository{
		db:     db,
		mapper: mappers.NewJiraTicketHistoryMapper(),
		logger: logger,
	}
}

var _ ticket.HistoryRepository = (*JiraTicketHistoryRepository)(nil)

// Append stores entries in order
func (r *JiraTicketHistoryRepository) Append(ctx context.Context, entries []*ticket.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.insert(db.GetTxFromContext(ctx, r.db), entries)
}

// ReplaceForKey deletes all history of jiraKey and stores entries in one transaction
func (r *JiraTicketHistoryRepository) ReplaceForKey(ctx context.Context, jiraKey string, entries []*ticket.HistoryEntry) error {
	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("jira_key = ?", jiraKey).Delete(&models.JiraTicketHistoryModel{}).Error; err != nil {
			r.logger.Errorw("failed to delete ticket history", "jira_key", jiraKey, "error", err)
			return fmt.Errorf("failed to delete ticket history: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}
		return r.insert(tx, entries)
	})
}

// ListByKey returns the most recent history of jiraKey, newest first
func (r *JiraTicketHistoryRepository) ListByKey(ctx context.Context, jiraKey string, limit int) ([]*ticket.HistoryEntry, error) {
	var modelList []*models.JiraTicketHistoryModel

	query := db.GetTxFromContext(ctx, r.db).
		Where("jira_key = ?", jiraKey).
		Order("changed_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list ticket history", "jira_key", jiraKey, "error", err)
		return nil, fmt.Errorf("failed to list ticket history: %w", err)
	}

	return r.mapper.ToDomainList(modelList), nil
}

func (r *JiraTicketHistoryRepository) insert(tx *gorm.DB, entries []*ticket.HistoryEntry) error {
	modelList := make([]*models.JiraTicketHistoryModel, 0, len(entries))
	for _, entry := range entries {
		modelList = append(modelList, r.mapper.ToModel(entry))
	}

	if err := tx.CreateInBatches(modelList, historyInsertBatchSize).Error; err != nil {
		r.logger.Errorw("failed to insert ticket history",
			"jira_key", entries[0].JiraKey(),
			"count", len(entries),
			"error", err,
		)
		return fmt.Errorf("failed to insert ticket history: %w", err)
	}

	for i, model := range modelList {
		entries[i].SetID(model.ID)
	}

	return nil
}
