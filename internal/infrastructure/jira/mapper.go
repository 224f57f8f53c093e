package jira

import (
	"strings"
	"time"

	"github.com/andygrunwald/go-jira"
	"golang.org/x/text/unicode/norm"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/biztime"
)

// changelogLayout is the timestamp layout of changelog entries.
const changelogLayout = "2006-01-02T15:04:05.000-0700"

var detectionTimeLayouts = []string{
	time.RFC3339Nano,
	changelogLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Mapper turns remote issues into ticket records.
type Mapper struct {
	catalog FieldCatalog
}

func NewMapper(catalog FieldCatalog) *Mapper {
	return &Mapper{catalog: catalog}
}

// Map converts one issue. Missing optional fields fall back to their
// defaults; only a missing key is an error.
func (m *Mapper) Map(issue *jira.Issue, syncedAt time.Time) (*ticket.Ticket, error) {
	if issue == nil || strings.TrimSpace(issue.Key) == "" {
		return nil, ticket.ErrMissingKey
	}

	f := issue.Fields
	if f == nil {
		f = &jira.IssueFields{}
	}
	custom := m.catalog.Extract(map[string]any(f.Unknowns))

	created := time.Time(f.Created)
	if created.IsZero() {
		created = syncedAt
	}
	updated := time.Time(f.Updated)
	if updated.IsZero() {
		updated = created
	}

	attrs := ticket.Attributes{
		JiraKey:     issue.Key,
		JiraID:      issue.ID,
		ProjectKey:  f.Project.Key,
		ProjectName: f.Project.Name,
		Summary:     f.Summary,
		Description: f.Description,
		IssueType:   f.Type.Name,
		CreatedAt:   created.UTC(),
		UpdatedAt:   updated.UTC(),
		ResolvedAt:  timePtr(time.Time(f.Resolutiondate)),
		DueDate:     timePtr(time.Time(f.Duedate)),

		Customer:           text(custom, FieldCustomer),
		Country:            text(custom, FieldCountry),
		Severity:           text(custom, FieldSeverity),
		DetectionTime:      parseTime(text(custom, FieldDetectionTime)),
		DetectionDevice:    text(custom, FieldDetectionDevice),
		DetectionDeviceID:  text(custom, FieldDetectionDeviceID),
		SourceIP:           optional(text(custom, FieldSourceIP)),
		DestinationIP:      text(custom, FieldDestinationIP),
		AttackType:         text(custom, FieldAttackType),
		AttackCategory:     text(custom, FieldAttackCategory),
		ScenarioName:       text(custom, FieldScenarioName),
		ActionTaken:        text(custom, FieldAction),
		ThreatMatched:      text(custom, FieldThreatMatched),
		ImpactAnalysis:     text(custom, FieldImpactAnalysis),
		ThreatIntelligence: text(custom, FieldThreatIntelligence),
		EventCount:         ticket.DefaultEventCount,
	}

	if f.Status != nil {
		attrs.Status = norm.NFC.String(f.Status.Name)
	}
	if f.Priority != nil {
		attrs.Priority = norm.NFC.String(f.Priority.Name)
	}
	if f.Resolution != nil {
		attrs.Resolution = optional(norm.NFC.String(f.Resolution.Name))
	}
	if f.Assignee != nil {
		attrs.AssigneeName = optional(f.Assignee.DisplayName)
		attrs.AssigneeEmail = optional(f.Assignee.EmailAddress)
	}
	if f.Reporter != nil {
		attrs.ReporterName = optional(f.Reporter.DisplayName)
		attrs.ReporterEmail = optional(f.Reporter.EmailAddress)
	}
	if count, ok := custom[FieldCount]; ok {
		if n, ok := count.Int(); ok {
			attrs.EventCount = n
		}
	}
	if len(custom) > 0 {
		attrs.CustomFields = make(map[string]string, len(custom))
		for name, v := range custom {
			attrs.CustomFields[name] = v.String()
		}
	}

	return ticket.NewTicket(attrs, syncedAt)
}

// MapChangelog converts the issue's changelog into history entries tagged
// with the remote as source. Entries that cannot be built are skipped.
func (m *Mapper) MapChangelog(issue *jira.Issue) []*ticket.HistoryEntry {
	if issue == nil || issue.Changelog == nil {
		return nil
	}

	var entries []*ticket.HistoryEntry
	for _, h := range issue.Changelog.Histories {
		changedAt, err := time.Parse(changelogLayout, h.Created)
		if err != nil {
			if changedAt, err = time.Parse(time.RFC3339, h.Created); err != nil {
				continue
			}
		}
		author := ticket.Author{
			Name:  h.Author.DisplayName,
			Email: optional(h.Author.EmailAddress),
		}
		for _, item := range h.Items {
			entry, err := ticket.NewHistoryEntry(issue.Key, ticket.FieldChange{
				Field:     item.Field,
				FieldType: item.FieldType,
				OldValue:  optional(item.FromString),
				NewValue:  optional(item.ToString),
			}, author, changedAt, ticket.ChangeSourceJira)
			if err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

func text(values map[string]FieldValue, name string) string {
	return values[name].String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// parseTime parses free-form timestamps; values without an offset are read
// in the business timezone. Unparseable input yields nil.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range detectionTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, biztime.Location()); err == nil {
			return timePtr(t)
		}
	}
	return nil
}
