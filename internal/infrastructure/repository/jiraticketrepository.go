package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/mappers"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
	"github.com/metashield/jirasync/internal/shared/db"
	apperrors "github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
)

// maxCASAttempts bounds the read-compare-write loop of a single upsert.
const maxCASAttempts = 3

// allowedTicketOrderByFields defines the whitelist of allowed ORDER BY fields
// to prevent SQL injection attacks.
var allowedTicketOrderByFields = map[string]bool{
	"id":             true,
	"jira_key":       true,
	"project_key":    true,
	"status":         true,
	"priority":       true,
	"severity":       true,
	"created_at":     true,
	"updated_at":     true,
	"detection_time": true,
	"last_synced_at": true,
}

// JiraTicketRepository implements ticket.Repository
type JiraTicketRepository struct {
	db     *gorm.DB
	mapper mappers.JiraTicketMapper
	logger logger.Interface
}

// NewJiraTicketRepository creates a new JiraTicketRepository
func NewJiraTicketRepository(db *gorm.DB, logger logger.Interface) *JiraTicketRepository {
	return &JiraTicketRepository{
		db:     db,
		mapper: mappers.NewJiraTicketMapper(),
		logger: logger,
	}
}

var _ ticket.Repository = (*JiraTicketRepository)(nil)

// Upsert inserts t when its key is unknown and otherwise replaces the stored
// row guarded by the stored sync_version. A write older than the stored
// remote update time is skipped and reported as stale.
func (r *JiraTicketRepository) Upsert(ctx context.Context, t *ticket.Ticket) (*ticket.UpsertResult, error) {
	model, err := r.mapper.ToModel(t)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		tx := db.GetTxFromContext(ctx, r.db)

		existing, err := r.findModelByKey(tx, t.JiraKey())
		if err != nil && !errors.Is(err, ticket.ErrTicketNotFound) {
			return nil, err
		}

		if existing == nil {
			inserted := *model
			inserted.ID = 0
			inserted.SyncVersion = 1
			if err := tx.Create(&inserted).Error; err != nil {
				if apperrors.IsDuplicateError(err) {
					r.logger.Debugw("concurrent insert detected, retrying as update",
						"jira_key", t.JiraKey(),
						"attempt", attempt+1,
					)
					continue
				}
				r.logger.Errorw("failed to insert ticket", "jira_key", t.JiraKey(), "error", err)
				return nil, fmt.Errorf("failed to insert ticket: %w", err)
			}

			current, err := r.mapper.ToDomain(&inserted)
			if err != nil {
				return nil, err
			}
			t.SetID(inserted.ID)
			return &ticket.UpsertResult{IsNew: true, Current: current}, nil
		}

		previous, err := r.mapper.ToDomain(existing)
		if err != nil {
			return nil, err
		}

		if existing.RemoteUpdatedAt.After(model.RemoteUpdatedAt) {
			r.logger.Debugw("skipping stale ticket write",
				"jira_key", t.JiraKey(),
				"stored_updated_at", existing.RemoteUpdatedAt,
				"incoming_updated_at", model.RemoteUpdatedAt,
			)
			return &ticket.UpsertResult{Stale: true, Previous: previous, Current: previous}, nil
		}

		updated := *model
		updated.ID = existing.ID
		updated.SyncVersion = existing.SyncVersion + 1
		updated.IsDeleted = existing.IsDeleted

		result := tx.Model(&models.JiraTicketModel{}).
			Where("id = ? AND sync_version = ?", existing.ID, existing.SyncVersion).
			Select("*").
			Omit("id").
			Updates(&updated)
		if result.Error != nil {
			r.logger.Errorw("failed to update ticket", "jira_key", t.JiraKey(), "error", result.Error)
			return nil, fmt.Errorf("failed to update ticket: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			r.logger.Debugw("ticket version changed concurrently, retrying",
				"jira_key", t.JiraKey(),
				"sync_version", existing.SyncVersion,
				"attempt", attempt+1,
			)
			continue
		}

		current, err := r.mapper.ToDomain(&updated)
		if err != nil {
			return nil, err
		}
		t.SetID(existing.ID)
		return &ticket.UpsertResult{Previous: previous, Current: current}, nil
	}

	r.logger.Warnw("ticket upsert gave up after concurrent modifications",
		"jira_key", t.JiraKey(),
		"attempts", maxCASAttempts,
	)
	return nil, ticket.ErrVersionConflict
}

// ApplyStatusUpdate writes the status-related columns of the ticket with key
// and bumps its sync_version.
func (r *JiraTicketRepository) ApplyStatusUpdate(ctx context.Context, key string, patch ticket.StatusPatch) (*ticket.Ticket, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		tx := db.GetTxFromContext(ctx, r.db)

		existing, err := r.findModelByKey(tx.Scopes(db.NotDeleted()), key)
		if err != nil {
			return nil, err
		}

		status := patch.Status
		if status == "" {
			status = existing.Status
		}
		updatedAt := patch.UpdatedAt.UTC()
		if patch.UpdatedAt.IsZero() {
			updatedAt = existing.RemoteUpdatedAt
		}

		updates := map[string]interface{}{
			"status":         status,
			"resolution":     patch.Resolution,
			"resolved_at":    utcPtr(patch.ResolvedAt),
			"assignee_name":  patch.AssigneeName,
			"assignee_email": patch.AssigneeEmail,
			"updated_at":     updatedAt,
			"last_synced_at": patch.SyncedAt.UTC(),
			"sync_version":   existing.SyncVersion + 1,
		}

		result := tx.Model(&models.JiraTicketModel{}).
			Where("id = ? AND sync_version = ?", existing.ID, existing.SyncVersion).
			Updates(updates)
		if result.Error != nil {
			r.logger.Errorw("failed to apply status update", "jira_key", key, "error", result.Error)
			return nil, fmt.Errorf("failed to apply status update: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			continue
		}

		return r.GetByKey(ctx, key)
	}

	return nil, ticket.ErrVersionConflict
}

// GetByKey retrieves a ticket by its external key
func (r *JiraTicketRepository) GetByKey(ctx context.Context, key string) (*ticket.Ticket, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	model, err := r.findModelByKey(tx.Scopes(db.NotDeleted()), key)
	if err != nil {
		return nil, err
	}

	return r.mapper.ToDomain(model)
}

// ListOpen returns every ticket whose status is outside closedStatuses.
func (r *JiraTicketRepository) ListOpen(ctx context.Context, closedStatuses []string) ([]*ticket.Ticket, error) {
	var modelList []*models.JiraTicketModel

	query := db.GetTxFromContext(ctx, r.db).Scopes(db.NotDeleted())
	if len(closedStatuses) > 0 {
		query = query.Where("status NOT IN ?", closedStatuses)
	}

	if err := query.Order("updated_at DESC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list open tickets", "error", err)
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}

	return r.mapper.ToDomainList(modelList)
}

// List retrieves tickets with filtering and pagination
func (r *JiraTicketRepository) List(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.JiraTicketModel{}).
		Scopes(db.NotDeleted())

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProjectKey != "" {
		query = query.Where("project_key = ?", filter.ProjectKey)
	}
	if filter.OpenOnly {
		query = query.Where("status NOT IN ?", ticket.ClosedStatuses())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count tickets", "error", err)
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	orderBy := "updated_at"
	if filter.SortBy != "" && allowedTicketOrderByFields[strings.ToLower(filter.SortBy)] {
		orderBy = strings.ToLower(filter.SortBy)
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	var modelList []*models.JiraTicketModel
	if err := query.
		Order(fmt.Sprintf("%s %s", orderBy, order)).
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list tickets", "error", err)
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets, err := r.mapper.ToDomainList(modelList)
	if err != nil {
		return nil, 0, err
	}

	return tickets, total, nil
}

// Count returns the number of stored tickets
func (r *JiraTicketRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.JiraTicketModel{}).
		Scopes(db.NotDeleted()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// CountSyncedSince returns the number of tickets written at or after since
func (r *JiraTicketRepository) CountSyncedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.JiraTicketModel{}).
		Scopes(db.NotDeleted()).
		Where("last_synced_at >= ?", since.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count synced tickets: %w", err)
	}
	return count, nil
}

func (r *JiraTicketRepository) findModelByKey(tx *gorm.DB, key string) (*models.JiraTicketModel, error) {
	var model models.JiraTicketModel

	if err := tx.Where("jira_key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ticket.ErrTicketNotFound
		}
		r.logger.Errorw("failed to get ticket by key", "jira_key", key, "error", err)
		return nil, fmt.Errorf("failed to get ticket by key: %w", err)
	}

	return &model, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
