package jira

import (
	"fmt"
	"strings"
	"time"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/biztime"
)

// RenderJQL renders q as a JQL expression restricted to issueType. Absolute
// bounds are written in the business timezone at minute precision.
func RenderJQL(issueType string, q ticket.SearchQuery) string {
	var clauses []string

	if issueType != "" {
		clauses = append(clauses, "issuetype = "+quote(issueType))
	}
	if len(q.Projects) > 0 {
		clauses = append(clauses, "project IN ("+quoteList(q.Projects)+")")
	}
	if len(q.ExcludeStatuses) > 0 {
		clauses = append(clauses, "status NOT IN ("+quoteList(q.ExcludeStatuses)+")")
	}
	if q.CreatedWithin > 0 {
		clauses = append(clauses, "created >= "+relative(q.CreatedWithin))
	}
	if q.CreatedFrom != nil {
		clauses = append(clauses, "created >= "+quote(biztime.FormatQueryTime(*q.CreatedFrom)))
	}
	if q.CreatedTo != nil {
		clauses = append(clauses, "created <= "+quote(biztime.FormatQueryTime(*q.CreatedTo)))
	}
	if q.UpdatedFrom != nil {
		clauses = append(clauses, "updated >= "+quote(biztime.FormatQueryTime(*q.UpdatedFrom)))
	}

	jql := strings.Join(clauses, " AND ")
	if q.OrderBy != "" {
		direction := "DESC"
		if q.Ascending {
			direction = "ASC"
		}
		jql += fmt.Sprintf(" ORDER BY %s %s", q.OrderBy, direction)
	}
	return strings.TrimSpace(jql)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func quoteList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, quote(v))
	}
	return strings.Join(quoted, ", ")
}

// relative renders a window as a JQL relative date, e.g. -24h or -90m.
func relative(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("-%dh", int(d/time.Hour))
	}
	minutes := int(d / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("-%dm", minutes)
}
