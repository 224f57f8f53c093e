// Package dto holds the response shapes of the sync API.
package dto

import (
	"time"

	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/ticket"
)

type TicketDTO struct {
	ID            uint              `json:"id"`
	JiraKey       string            `json:"jiraKey"`
	JiraID        string            `json:"jiraId"`
	ProjectKey    string            `json:"projectKey"`
	ProjectName   string            `json:"projectName"`
	Summary       string            `json:"summary"`
	IssueType     string            `json:"issueType"`
	Status        string            `json:"status"`
	Priority      string            `json:"priority"`
	Resolution    *string           `json:"resolution"`
	AssigneeName  *string           `json:"assigneeName"`
	AssigneeEmail *string           `json:"assigneeEmail"`
	ReporterName  *string           `json:"reporterName"`
	Customer      string            `json:"customer"`
	Country       string            `json:"country"`
	Severity      string            `json:"severity"`
	DetectionTime *time.Time        `json:"detectionTime"`
	SourceIP      *string           `json:"sourceIp"`
	DestinationIP string            `json:"destinationIp"`
	AttackType    string            `json:"attackType"`
	ScenarioName  string            `json:"scenarioName"`
	ThreatMatched string            `json:"threatMatched"`
	EventCount    int               `json:"eventCount"`
	CustomFields  map[string]string `json:"customFields,omitempty"`
	IsOpen        bool              `json:"isOpen"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	ResolvedAt    *time.Time        `json:"resolvedAt"`
	LastSyncedAt  time.Time         `json:"lastSyncedAt"`
	SyncVersion   int               `json:"syncVersion"`
}

type HistoryEntryDTO struct {
	ID             uint      `json:"id"`
	JiraKey        string    `json:"jiraKey"`
	FieldName      string    `json:"fieldName"`
	FieldType      string    `json:"fieldType"`
	OldValue       *string   `json:"oldValue"`
	NewValue       *string   `json:"newValue"`
	ChangedByName  string    `json:"changedByName"`
	ChangedByEmail *string   `json:"changedByEmail"`
	ChangedAt      time.Time `json:"changedAt"`
	ChangeSource   string    `json:"changeSource"`
}

type SyncRunDTO struct {
	ID               uint           `json:"id"`
	SyncType         string         `json:"syncType"`
	SyncSource       string         `json:"syncSource"`
	Status           string         `json:"status"`
	StartedAt        time.Time      `json:"startedAt"`
	CompletedAt      *time.Time     `json:"completedAt"`
	DateFrom         *time.Time     `json:"dateFrom,omitempty"`
	DateTo           *time.Time     `json:"dateTo,omitempty"`
	TicketsProcessed int            `json:"ticketsProcessed"`
	TicketsCreated   int            `json:"ticketsCreated"`
	TicketsUpdated   int            `json:"ticketsUpdated"`
	TicketsFailed    int            `json:"ticketsFailed"`
	TicketsResolved  int            `json:"ticketsResolved"`
	DurationSeconds  int            `json:"durationSeconds"`
	ErrorMessage     *string        `json:"errorMessage"`
	Details          map[string]any `json:"details,omitempty"`
}

// RunningSyncDTO is a run still in progress.
type RunningSyncDTO struct {
	SyncRunDTO
	RunningForSeconds int `json:"runningForSeconds"`
}

func ToTicketDTO(t *ticket.Ticket) *TicketDTO {
	if t == nil {
		return nil
	}

	a := t.Attributes()
	return &TicketDTO{
		ID:            t.ID(),
		JiraKey:       a.JiraKey,
		JiraID:        a.JiraID,
		ProjectKey:    a.ProjectKey,
		ProjectName:   a.ProjectName,
		Summary:       a.Summary,
		IssueType:     a.IssueType,
		Status:        a.Status,
		Priority:      a.Priority,
		Resolution:    a.Resolution,
		AssigneeName:  a.AssigneeName,
		AssigneeEmail: a.AssigneeEmail,
		ReporterName:  a.ReporterName,
		Customer:      a.Customer,
		Country:       a.Country,
		Severity:      a.Severity,
		DetectionTime: a.DetectionTime,
		SourceIP:      a.SourceIP,
		DestinationIP: a.DestinationIP,
		AttackType:    a.AttackType,
		ScenarioName:  a.ScenarioName,
		ThreatMatched: a.ThreatMatched,
		EventCount:    a.EventCount,
		CustomFields:  a.CustomFields,
		IsOpen:        t.IsOpen(),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		ResolvedAt:    a.ResolvedAt,
		LastSyncedAt:  t.LastSyncedAt(),
		SyncVersion:   t.SyncVersion(),
	}
}

func ToTicketDTOList(tickets []*ticket.Ticket) []*TicketDTO {
	dtos := make([]*TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		dtos = append(dtos, ToTicketDTO(t))
	}
	return dtos
}

func ToHistoryEntryDTO(h *ticket.HistoryEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:             h.ID(),
		JiraKey:        h.JiraKey(),
		FieldName:      h.FieldName(),
		FieldType:      h.FieldType(),
		OldValue:       h.OldValue(),
		NewValue:       h.NewValue(),
		ChangedByName:  h.ChangedByName(),
		ChangedByEmail: h.ChangedByEmail(),
		ChangedAt:      h.ChangedAt(),
		ChangeSource:   string(h.ChangeSource()),
	}
}

func ToHistoryEntryDTOList(entries []*ticket.HistoryEntry) []HistoryEntryDTO {
	dtos := make([]HistoryEntryDTO, 0, len(entries))
	for _, h := range entries {
		dtos = append(dtos, ToHistoryEntryDTO(h))
	}
	return dtos
}

func ToSyncRunDTO(r *syncrun.SyncRun) *SyncRunDTO {
	if r == nil {
		return nil
	}

	c := r.Counters()
	return &SyncRunDTO{
		ID:               r.ID(),
		SyncType:         string(r.Type()),
		SyncSource:       string(r.Source()),
		Status:           string(r.Status()),
		StartedAt:        r.StartedAt(),
		CompletedAt:      r.CompletedAt(),
		DateFrom:         r.DateFrom(),
		DateTo:           r.DateTo(),
		TicketsProcessed: c.Processed,
		TicketsCreated:   c.Created,
		TicketsUpdated:   c.Updated,
		TicketsFailed:    c.Failed,
		TicketsResolved:  c.Resolved,
		DurationSeconds:  r.DurationSeconds(),
		ErrorMessage:     r.ErrorMessage(),
		Details:          r.Details(),
	}
}

func ToSyncRunDTOList(runs []*syncrun.SyncRun) []*SyncRunDTO {
	dtos := make([]*SyncRunDTO, 0, len(runs))
	for _, r := range runs {
		dtos = append(dtos, ToSyncRunDTO(r))
	}
	return dtos
}

// ToRunningSyncDTO reports how long r has been running at now.
func ToRunningSyncDTO(r *syncrun.SyncRun, now time.Time) RunningSyncDTO {
	return RunningSyncDTO{
		SyncRunDTO:        *ToSyncRunDTO(r),
		RunningForSeconds: int(r.RunningFor(now).Seconds()),
	}
}
