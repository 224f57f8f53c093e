package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
)

// JiraTicketMapper handles the conversion between Ticket domain entities and persistence models.
type JiraTicketMapper interface {
	// ToModel converts a ticket domain entity to a persistence model.
	ToModel(t *ticket.Ticket) (*models.JiraTicketModel, error)

	// ToDomain converts a ticket persistence model to a domain entity.
	ToDomain(model *models.JiraTicketModel) (*ticket.Ticket, error)

	ToDomainList(modelList []*models.JiraTicketModel) ([]*ticket.Ticket, error)
}

// JiraTicketMapperImpl is the concrete implementation of JiraTicketMapper.
type JiraTicketMapperImpl struct{}

// NewJiraTicketMapper creates a new JiraTicketMapper.
func NewJiraTicketMapper() JiraTicketMapper {
	return &JiraTicketMapperImpl{}
}

// ToModel converts a ticket domain entity to a persistence model.
func (m *JiraTicketMapperImpl) ToModel(t *ticket.Ticket) (*models.JiraTicketModel, error) {
	if t == nil {
		return nil, nil
	}
	a := t.Attributes()

	model := &models.JiraTicketModel{
		ID:                 t.ID(),
		JiraKey:            a.JiraKey,
		JiraID:             a.JiraID,
		ProjectKey:         a.ProjectKey,
		ProjectName:        a.ProjectName,
		Summary:            a.Summary,
		Description:        a.Description,
		IssueType:          a.IssueType,
		Status:             a.Status,
		Priority:           a.Priority,
		Resolution:         a.Resolution,
		AssigneeName:       a.AssigneeName,
		AssigneeEmail:      a.AssigneeEmail,
		ReporterName:       a.ReporterName,
		ReporterEmail:      a.ReporterEmail,
		RemoteCreatedAt:    a.CreatedAt.UTC(),
		RemoteUpdatedAt:    a.UpdatedAt.UTC(),
		ResolvedAt:         a.ResolvedAt,
		DueDate:            a.DueDate,
		Customer:           a.Customer,
		CustomerCode:       a.CustomerCode,
		Country:            a.Country,
		Severity:           a.Severity,
		DetectionTime:      a.DetectionTime,
		DetectionDevice:    a.DetectionDevice,
		DetectionDeviceID:  a.DetectionDeviceID,
		SourceIP:           a.SourceIP,
		DestinationIP:      a.DestinationIP,
		AttackType:         a.AttackType,
		AttackCategory:     a.AttackCategory,
		ScenarioName:       a.ScenarioName,
		ActionTaken:        a.ActionTaken,
		ThreatMatched:      a.ThreatMatched,
		ImpactAnalysis:     a.ImpactAnalysis,
		ThreatIntelligence: a.ThreatIntelligence,
		EventCount:         a.EventCount,
		LastSyncedAt:       t.LastSyncedAt().UTC(),
		SyncVersion:        t.SyncVersion(),
		IsDeleted:          t.IsDeleted(),
	}

	if len(a.CustomFields) > 0 {
		raw, err := json.Marshal(a.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal custom fields: %w", err)
		}
		model.CustomFields = datatypes.JSON(raw)
	}

	return model, nil
}

// ToDomain converts a ticket persistence model to a domain entity.
func (m *JiraTicketMapperImpl) ToDomain(model *models.JiraTicketModel) (*ticket.Ticket, error) {
	if model == nil {
		return nil, nil
	}

	var customFields map[string]string
	if len(model.CustomFields) > 0 {
		if err := json.Unmarshal(model.CustomFields, &customFields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom fields of %s: %w", model.JiraKey, err)
		}
	}

	attrs := ticket.Attributes{
		JiraKey:            model.JiraKey,
		JiraID:             model.JiraID,
		ProjectKey:         model.ProjectKey,
		ProjectName:        model.ProjectName,
		Summary:            model.Summary,
		Description:        model.Description,
		IssueType:          model.IssueType,
		Status:             model.Status,
		Priority:           model.Priority,
		Resolution:         model.Resolution,
		AssigneeName:       model.AssigneeName,
		AssigneeEmail:      model.AssigneeEmail,
		ReporterName:       model.ReporterName,
		ReporterEmail:      model.ReporterEmail,
		CreatedAt:          model.RemoteCreatedAt.UTC(),
		UpdatedAt:          model.RemoteUpdatedAt.UTC(),
		ResolvedAt:         model.ResolvedAt,
		DueDate:            model.DueDate,
		Customer:           model.Customer,
		CustomerCode:       model.CustomerCode,
		Country:            model.Country,
		Severity:           model.Severity,
		DetectionTime:      model.DetectionTime,
		DetectionDevice:    model.DetectionDevice,
		DetectionDeviceID:  model.DetectionDeviceID,
		SourceIP:           model.SourceIP,
		DestinationIP:      model.DestinationIP,
		AttackType:         model.AttackType,
		AttackCategory:     model.AttackCategory,
		ScenarioName:       model.ScenarioName,
		ActionTaken:        model.ActionTaken,
		ThreatMatched:      model.ThreatMatched,
		ImpactAnalysis:     model.ImpactAnalysis,
		ThreatIntelligence: model.ThreatIntelligence,
		EventCount:         model.EventCount,
		CustomFields:       customFields,
	}

	return ticket.ReconstructTicket(model.ID, attrs, model.SyncVersion, model.LastSyncedAt.UTC(), model.IsDeleted), nil
}

// ToDomainList converts a list of models, failing on the first undecodable row.
func (m *JiraTicketMapperImpl) ToDomainList(modelList []*models.JiraTicketModel) ([]*ticket.Ticket, error) {
	tickets := make([]*ticket.Ticket, 0, len(modelList))
	for _, model := range modelList {
		t, err := m.ToDomain(model)
		if err != nil {
			return nil, err
		}
		if t != nil {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}
