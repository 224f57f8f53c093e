package mappers

import (
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
)

// JiraTicketHistoryMapper converts history entries between domain and model
type JiraTicketHistoryMapper interface {
	ToDomain(model *models.JiraTicketHistoryModel) *ticket.HistoryEntry
	ToModel(entry *ticket.HistoryEntry) *models.JiraTicketHistoryModel
	ToDomainList(modelList []*models.JiraTicketHistoryModel) []*ticket.HistoryEntry
}

// JiraTicketHistoryMapperImpl implements JiraTicketHistoryMapper
type JiraTicketHistoryMapperImpl struct{}

// NewJiraTicketHistoryMapper creates a new JiraTicketHistoryMapper
func NewJiraTicketHistoryMapper() JiraTicketHistoryMapper {
	return &JiraTicketHistoryMapperImpl{}
}

func (m *JiraTicketHistoryMapperImpl) ToDomain(model *models.JiraTicketHistoryModel) *ticket.HistoryEntry {
	if model == nil {
		return nil
	}

	return ticket.ReconstructHistoryEntry(
		model.ID,
		model.TicketID,
		model.JiraKey,
		model.FieldName,
		model.FieldType,
		model.OldValue,
		model.NewValue,
		model.ChangedByName,
		model.ChangedByEmail,
		model.ChangedAt.UTC(),
		ticket.ChangeSource(model.ChangeSource),
		model.CreatedAt,
	)
}

func (m *JiraTicketHistoryMapperImpl) ToModel(entry *ticket.HistoryEntry) *models.JiraTicketHistoryModel {
	if entry == nil {
		return nil
	}

	return &models.JiraTicketHistoryModel{
		ID:             entry.ID(),
		TicketID:       entry.TicketID(),
		JiraKey:        entry.JiraKey(),
		FieldName:      entry.FieldName(),
		FieldType:      entry.FieldType(),
		OldValue:       entry.OldValue(),
		NewValue:       entry.NewValue(),
		ChangedByName:  entry.ChangedByName(),
		ChangedByEmail: entry.ChangedByEmail(),
		ChangedAt:      entry.ChangedAt().UTC(),
		ChangeSource:   string(entry.ChangeSource()),
		CreatedAt:      entry.CreatedAt(),
	}
}

func (m *JiraTicketHistoryMapperImpl) ToDomainList(modelList []*models.JiraTicketHistoryModel) []*ticket.HistoryEntry {
	if modelList == nil {
		return nil
	}

	entries := make([]*ticket.HistoryEntry, 0, len(modelList))
	for _, model := range modelList {
		if entry := m.ToDomain(model); entry != nil {
			entries = append(entries, entry)
		}
	}

	return entries
}
