package ticketsync

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/utils"
)

// FullSyncRequest is the optional body of POST /api/sync/full-sync.
// Zero values fall back to the configured defaults.
type FullSyncRequest struct {
	BatchSize    int      `json:"batchSize" binding:"omitempty,min=1,max=100"`
	MaxResults   int      `json:"maxResults" binding:"omitempty,min=1,max=50000"`
	DaysLookback int      `json:"daysLookback" binding:"omitempty,min=1,max=3650"`
	Projects     []string `json:"projects" binding:"omitempty,dive,required,max=50"`
}

func (r *FullSyncRequest) ToCommand(source syncrun.Source) usecases.FullSyncCommand {
	return usecases.FullSyncCommand{
		BatchSize:    r.BatchSize,
		MaxResults:   r.MaxResults,
		DaysLookback: r.DaysLookback,
		Projects:     r.Projects,
		Source:       source,
	}
}

type RefreshTicketRequest struct {
	JiraKey string `json:"jiraKey" binding:"required,max=50"`
}

type ListTicketsRequest struct {
	Page      int
	PageSize  int
	Status    string
	Project   string
	OpenOnly  bool
	SortBy    string
	SortOrder string
}

func (r *ListTicketsRequest) ToQuery() usecases.ListTicketsQuery {
	return usecases.ListTicketsQuery{
		Status:     r.Status,
		ProjectKey: r.Project,
		OpenOnly:   r.OpenOnly,
		Page:       r.Page,
		PageSize:   r.PageSize,
		SortBy:     r.SortBy,
		SortOrder:  r.SortOrder,
	}
}

func parseListTicketsRequest(c *gin.Context) (*ListTicketsRequest, error) {
	pagination := utils.ParsePagination(c)

	req := &ListTicketsRequest{
		Page:      pagination.Page,
		PageSize:  pagination.PageSize,
		Status:    c.Query("status"),
		Project:   c.Query("project"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if v := c.Query("open_only"); v != "" {
		openOnly, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.NewValidationError("open_only must be a boolean")
		}
		req.OpenOnly = openOnly
	}

	return req, nil
}

func parseHistoryLimit(c *gin.Context) (int, error) {
	v := c.Query("limit")
	if v == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		return 0, errors.NewValidationError("limit must be a positive integer")
	}
	return limit, nil
}

// runSource tells operator-triggered manual runs apart from API callers.
func runSource(c *gin.Context) syncrun.Source {
	if c.Query("manual") == "true" {
		return syncrun.SourceManual
	}
	return syncrun.SourceAPI
}
