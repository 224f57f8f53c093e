// Package ticket holds the local mirror of remote security-event tickets and
// their field-level change history.
package ticket

import (
	"maps"
	"strings"
	"time"
)

const (
	UnknownValue         = "Unknown"
	DefaultThreatMatched = "N"
	DefaultEventCount    = 1
)

// Attributes are the columns mirrored from the remote tracker. Nullable
// relations are pointers; free text defaults to the empty string.
type Attributes struct {
	JiraKey     string
	JiraID      string
	ProjectKey  string
	ProjectName string
	Summary     string
	Description string
	IssueType   string
	Status      string
	Priority    string
	Resolution  *string

	AssigneeName  *string
	AssigneeEmail *string
	ReporterName  *string
	ReporterEmail *string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
	DueDate    *time.Time

	Customer           string
	CustomerCode       string
	Country            string
	Severity           string
	DetectionTime      *time.Time
	DetectionDevice    string
	DetectionDeviceID  string
	SourceIP           *string
	DestinationIP      string
	AttackType         string
	AttackCategory     string
	ScenarioName       string
	ActionTaken        string
	ThreatMatched      string
	ImpactAnalysis     string
	ThreatIntelligence string
	EventCount         int

	// CustomFields keeps every non-empty catalog field, normalised to text.
	CustomFields map[string]string
}

// Ticket is one mirrored remote ticket identified by its external key.
type Ticket struct {
	id           uint
	attrs        Attributes
	syncVersion  int
	lastSyncedAt time.Time
	isDeleted    bool
}

// NewTicket builds a freshly mapped ticket. The external key is the only
// required attribute; missing domain fields receive their defaults.
func NewTicket(attrs Attributes, syncedAt time.Time) (*Ticket, error) {
	attrs.JiraKey = strings.TrimSpace(attrs.JiraKey)
	if attrs.JiraKey == "" {
		return nil, ErrMissingKey
	}
	applyDefaults(&attrs)

	return &Ticket{
		attrs:        attrs,
		syncVersion:  1,
		lastSyncedAt: syncedAt.UTC(),
	}, nil
}

// ReconstructTicket rebuilds a ticket from persistence.
func ReconstructTicket(id uint, attrs Attributes, syncVersion int, lastSyncedAt time.Time, isDeleted bool) *Ticket {
	return &Ticket{
		id:           id,
		attrs:        attrs,
		syncVersion:  syncVersion,
		lastSyncedAt: lastSyncedAt,
		isDeleted:    isDeleted,
	}
}

func applyDefaults(a *Attributes) {
	if a.Country == "" {
		a.Country = UnknownValue
	}
	if a.Severity == "" {
		a.Severity = UnknownValue
	}
	if a.ThreatMatched == "" {
		a.ThreatMatched = DefaultThreatMatched
	}
	if a.EventCount < 1 {
		a.EventCount = DefaultEventCount
	}
	if a.CustomerCode == "" {
		a.CustomerCode = a.ProjectKey
	}
}

// Getters
func (t *Ticket) ID() uint                { return t.id }
func (t *Ticket) JiraKey() string         { return t.attrs.JiraKey }
func (t *Ticket) ProjectKey() string      { return t.attrs.ProjectKey }
func (t *Ticket) Summary() string         { return t.attrs.Summary }
func (t *Ticket) Status() string          { return t.attrs.Status }
func (t *Ticket) Priority() string        { return t.attrs.Priority }
func (t *Ticket) Resolution() *string     { return t.attrs.Resolution }
func (t *Ticket) AssigneeName() *string   { return t.attrs.AssigneeName }
func (t *Ticket) UpdatedAt() time.Time    { return t.attrs.UpdatedAt }
func (t *Ticket) SyncVersion() int        { return t.syncVersion }
func (t *Ticket) LastSyncedAt() time.Time { return t.lastSyncedAt }
func (t *Ticket) IsDeleted() bool         { return t.isDeleted }

// Attributes returns a copy of the mirrored columns.
func (t *Ticket) Attributes() Attributes {
	a := t.attrs
	a.CustomFields = maps.Clone(t.attrs.CustomFields)
	return a
}

// SetID sets the ticket ID (only for persistence layer use)
func (t *Ticket) SetID(id uint) {
	t.id = id
}

// IsOpen reports whether the ticket's status is outside the closed set.
func (t *Ticket) IsOpen() bool {
	return !IsClosedStatus(t.attrs.Status)
}

// IsNewerThan reports whether t was updated remotely strictly after other.
func (t *Ticket) IsNewerThan(other *Ticket) bool {
	return t.attrs.UpdatedAt.After(other.attrs.UpdatedAt)
}
