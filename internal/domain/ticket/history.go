package ticket

import (
	"errors"
	"time"
)

// ChangeSource tags which process observed a field change.
type ChangeSource string

const (
	ChangeSourceJira          ChangeSource = "jira"
	ChangeSourceFullSync      ChangeSource = "full_sync"
	ChangeSourceIncremental   ChangeSource = "incremental_sync"
	ChangeSourceRealtime      ChangeSource = "realtime_sync"
	ChangeSourceManualRefresh ChangeSource = "manual_refresh"
)

// Tracked field names. Changelog entries imported from the remote keep the
// remote's own field names.
const (
	FieldSummary    = "summary"
	FieldStatus     = "status"
	FieldPriority   = "priority"
	FieldAssignee   = "assignee_name"
	FieldResolution = "resolution"

	DefaultFieldType = "string"
	SystemAuthor     = "System"
)

// FieldChange is one differing field between two versions of a ticket.
type FieldChange struct {
	Field     string
	FieldType string
	OldValue  *string
	NewValue  *string
}

// Author identifies who or what made a change.
type Author struct {
	Name  string
	Email *string
}

// HistoryEntry is an append-only record of one field change on one ticket.
type HistoryEntry struct {
	id             uint
	ticketID       uint
	jiraKey        string
	fieldName      string
	fieldType      string
	oldValue       *string
	newValue       *string
	changedByName  string
	changedByEmail *string
	changedAt      time.Time
	changeSource   ChangeSource
	createdAt      time.Time
}

// NewHistoryEntry creates an entry for change on the ticket identified by jiraKey.
func NewHistoryEntry(jiraKey string, change FieldChange, author Author, changedAt time.Time, source ChangeSource) (*HistoryEntry, error) {
	if jiraKey == "" {
		return nil, ErrMissingKey
	}
	if change.Field == "" {
		return nil, errors.New("history field name is required")
	}
	if change.FieldType == "" {
		change.FieldType = DefaultFieldType
	}
	if author.Name == "" {
		author.Name = SystemAuthor
	}

	return &HistoryEntry{
		jiraKey:        jiraKey,
		fieldName:      change.Field,
		fieldType:      change.FieldType,
		oldValue:       change.OldValue,
		newValue:       change.NewValue,
		changedByName:  author.Name,
		changedByEmail: author.Email,
		changedAt:      changedAt.UTC(),
		changeSource:   source,
	}, nil
}

// ReconstructHistoryEntry rebuilds an entry from persistence.
func ReconstructHistoryEntry(
	id, ticketID uint,
	jiraKey, fieldName, fieldType string,
	oldValue, newValue *string,
	changedByName string,
	changedByEmail *string,
	changedAt time.Time,
	source ChangeSource,
	createdAt time.Time,
) *HistoryEntry {
	return &HistoryEntry{
		id:             id,
		ticketID:       ticketID,
		jiraKey:        jiraKey,
		fieldName:      fieldName,
		fieldType:      fieldType,
		oldValue:       oldValue,
		newValue:       newValue,
		changedByName:  changedByName,
		changedByEmail: changedByEmail,
		changedAt:      changedAt,
		changeSource:   source,
		createdAt:      createdAt,
	}
}

func (h *HistoryEntry) ID() uint                   { return h.id }
func (h *HistoryEntry) TicketID() uint             { return h.ticketID }
func (h *HistoryEntry) JiraKey() string            { return h.jiraKey }
func (h *HistoryEntry) FieldName() string          { return h.fieldName }
func (h *HistoryEntry) FieldType() string          { return h.fieldType }
func (h *HistoryEntry) OldValue() *string          { return h.oldValue }
func (h *HistoryEntry) NewValue() *string          { return h.newValue }
func (h *HistoryEntry) ChangedByName() string      { return h.changedByName }
func (h *HistoryEntry) ChangedByEmail() *string    { return h.changedByEmail }
func (h *HistoryEntry) ChangedAt() time.Time       { return h.changedAt }
func (h *HistoryEntry) ChangeSource() ChangeSource { return h.changeSource }
func (h *HistoryEntry) CreatedAt() time.Time       { return h.createdAt }

// AttachTo binds the entry to its owning ticket row.
func (h *HistoryEntry) AttachTo(ticketID uint) {
	h.ticketID = ticketID
}

// SetID sets the entry ID (only for persistence layer use)
func (h *HistoryEntry) SetID(id uint) {
	h.id = id
}

// Diff returns the tracked fields whose values differ between prev and next.
// A nil and an empty value are considered equal.
func Diff(prev, next *Ticket) []FieldChange {
	if prev == nil || next == nil {
		return nil
	}

	candidates := []struct {
		field    string
		old, new *string
	}{
		{FieldSummary, ptr(prev.attrs.Summary), ptr(next.attrs.Summary)},
		{FieldStatus, ptr(prev.attrs.Status), ptr(next.attrs.Status)},
		{FieldPriority, ptr(prev.attrs.Priority), ptr(next.attrs.Priority)},
		{FieldAssignee, prev.attrs.AssigneeName, next.attrs.AssigneeName},
		{FieldResolution, prev.attrs.Resolution, next.attrs.Resolution},
	}

	var changes []FieldChange
	for _, c := range candidates {
		if deref(c.old) == deref(c.new) {
			continue
		}
		changes = append(changes, FieldChange{
			Field:     c.field,
			FieldType: DefaultFieldType,
			OldValue:  nonEmpty(c.old),
			NewValue:  nonEmpty(c.new),
		})
	}
	return changes
}

func ptr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
