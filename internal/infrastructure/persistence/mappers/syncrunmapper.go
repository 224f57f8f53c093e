package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
)

// SyncRunMapper converts ledger entries between domain and model
type SyncRunMapper interface {
	ToDomain(model *models.SyncRunModel) (*syncrun.SyncRun, error)
	ToModel(run *syncrun.SyncRun) (*models.SyncRunModel, error)
	ToDomainList(modelList []*models.SyncRunModel) ([]*syncrun.SyncRun, error)
}

// SyncRunMapperImpl implements SyncRunMapper
type SyncRunMapperImpl struct{}

// NewSyncRunMapper creates a new SyncRunMapper
func NewSyncRunMapper() SyncRunMapper {
	return &SyncRunMapperImpl{}
}

func (m *SyncRunMapperImpl) ToDomain(model *models.SyncRunModel) (*syncrun.SyncRun, error) {
	if model == nil {
		return nil, nil
	}

	var details map[string]any
	if len(model.Details) > 0 {
		if err := json.Unmarshal(model.Details, &details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sync run details: %w", err)
		}
	}

	counters := syncrun.Counters{
		Processed: model.TicketsProcessed,
		Created:   model.TicketsCreated,
		Updated:   model.TicketsUpdated,
		Failed:    model.TicketsFailed,
		Resolved:  model.TicketsResolved,
	}

	return syncrun.ReconstructSyncRun(
		model.ID,
		syncrun.Type(model.SyncType),
		syncrun.Source(model.SyncSource),
		syncrun.Status(model.Status),
		model.StartedAt.UTC(),
		model.CompletedAt,
		model.DateFrom,
		model.DateTo,
		counters,
		model.ErrorMessage,
		details,
	), nil
}

func (m *SyncRunMapperImpl) ToModel(run *syncrun.SyncRun) (*models.SyncRunModel, error) {
	if run == nil {
		return nil, nil
	}

	c := run.Counters()
	model := &models.SyncRunModel{
		ID:               run.ID(),
		SyncType:         string(run.Type()),
		SyncSource:       string(run.Source()),
		Status:           string(run.Status()),
		StartedAt:        run.StartedAt(),
		CompletedAt:      run.CompletedAt(),
		DateFrom:         run.DateFrom(),
		DateTo:           run.DateTo(),
		TicketsProcessed: c.Processed,
		TicketsCreated:   c.Created,
		TicketsUpdated:   c.Updated,
		TicketsFailed:    c.Failed,
		TicketsResolved:  c.Resolved,
		DurationSeconds:  run.DurationSeconds(),
		ErrorMessage:     run.ErrorMessage(),
	}

	if len(run.Details()) > 0 {
		raw, err := json.Marshal(run.Details())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sync run details: %w", err)
		}
		model.Details = datatypes.JSON(raw)
	}

	return model, nil
}

func (m *SyncRunMapperImpl) ToDomainList(modelList []*models.SyncRunModel) ([]*syncrun.SyncRun, error) {
	runs := make([]*syncrun.SyncRun, 0, len(modelList))
	for _, model := range modelList {
		run, err := m.ToDomain(model)
		if err != nil {
			return nil, err
		}
		if run != nil {
			runs = append(runs, run)
		}
	}
	return runs, nil
}
