package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/metashield/jirasync/internal/application/ticketsync/dto"
	"github.com/metashield/jirasync/internal/application/ticketsync/services"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const refreshTimeout = 15 * time.Second

type RefreshTicketCommand struct {
	JiraKey string         `json:"jiraKey" binding:"required"`
	Source  syncrun.Source `json:"-"`
}

type RefreshTicketResult struct {
	Ticket  *dto.TicketDTO   `json:"ticket"`
	Changes []FieldChangeDTO `json:"changes"`
}

type FieldChangeDTO struct {
	Field    string  `json:"field"`
	OldValue *string `json:"oldValue"`
	NewValue *string `json:"newValue"`
}

// RefreshTicketUseCase re-reads one ticket from the remote tracker and applies
// its status fields locally.
type RefreshTicketUseCase struct {
	source  ticket.Source
	tickets ticket.Repository
	writer  *services.TicketWriter
	ledger  *services.Ledger
	logger  logger.Interface
}

func NewRefreshTicketUseCase(
	source ticket.Source,
	tickets ticket.Repository,
	writer *services.TicketWriter,
	ledger *services.Ledger,
	logger logger.Interface,
) *RefreshTicketUseCase {
	return &RefreshTicketUseCase{
		source:  source,
		tickets: tickets,
		writer:  writer,
		ledger:  ledger,
		logger:  logger,
	}
}

func (uc *RefreshTicketUseCase) Execute(ctx context.Context, cmd RefreshTicketCommand) (*RefreshTicketResult, error) {
	key := strings.TrimSpace(cmd.JiraKey)
	if key == "" {
		return nil, errors.NewValidationError("jiraKey is required")
	}
	if cmd.Source == "" {
		cmd.Source = syncrun.SourceAPI
	}

	uc.logger.Infow("executing refresh ticket use case", "jira_key", key)

	run, err := uc.ledger.Open(ctx, syncrun.TypeRefresh, cmd.Source)
	if err != nil {
		return nil, errors.NewInternalError("failed to start ticket refresh", err.Error())
	}
	run.SetDetail("jira_key", key)

	res, appErr := uc.refresh(ctx, key)

	status := syncrun.StatusCompleted
	counters := syncrun.Counters{Processed: 1}
	errMsg := ""
	switch {
	case appErr != nil:
		status = syncrun.StatusFailed
		counters.Failed = 1
		errMsg = appErr.Error()
	case !res.Ticket.IsOpen:
		counters.Updated = 1
		counters.Resolved = 1
	default:
		counters.Updated = 1
	}

	if err := uc.ledger.Close(ctx, run, status, counters, errMsg); err != nil {
		uc.logger.Errorw("failed to close refresh run", "jira_key", key, "error", err)
	}

	if appErr != nil {
		return nil, appErr
	}
	return res, nil
}

func (uc *RefreshTicketUseCase) refresh(ctx context.Context, key string) (*RefreshTicketResult, error) {
	rec, err := uc.source.Get(ctx, key, ticket.FetchOptions{Timeout: refreshTimeout})
	if err != nil {
		uc.logger.Warnw("failed to fetch ticket from jira", "jira_key", key, "error", err)
		return nil, sourceError(key, err)
	}
	if rec.Err != nil || rec.Ticket == nil {
		uc.logger.Warnw("failed to map ticket from jira", "jira_key", key, "error", rec.Err)
		return nil, errors.NewUpstreamError(fmt.Sprintf("ticket %s could not be read from jira", key))
	}

	stored, err := uc.tickets.GetByKey(ctx, key)
	if err != nil {
		if stderrors.Is(err, ticket.ErrTicketNotFound) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("ticket %s not found locally", key))
		}
		uc.logger.Errorw("failed to load ticket", "jira_key", key, "error", err)
		return nil, errors.NewInternalError("failed to load ticket")
	}

	out, err := uc.writer.ApplyStatus(ctx, stored, rec.Ticket, ticket.ChangeSourceManualRefresh)
	if err != nil {
		uc.logger.Errorw("failed to apply refreshed status", "jira_key", key, "error", err)
		if stderrors.Is(err, ticket.ErrVersionConflict) {
			return nil, errors.NewConflictError("ticket was modified concurrently, retry the refresh")
		}
		return nil, errors.NewInternalError("failed to update ticket")
	}

	changes := make([]FieldChangeDTO, 0, len(out.Changes))
	for _, c := range out.Changes {
		changes = append(changes, FieldChangeDTO{Field: c.Field, OldValue: c.OldValue, NewValue: c.NewValue})
	}

	uc.logger.Infow("ticket refreshed",
		"jira_key", key,
		"status", out.Ticket.Status(),
		"changes", len(changes),
	)

	return &RefreshTicketResult{
		Ticket:  dto.ToTicketDTO(out.Ticket),
		Changes: changes,
	}, nil
}

// sourceError maps remote tracker failures onto API errors.
func sourceError(key string, err error) error {
	switch {
	case stderrors.Is(err, ticket.ErrSourceNotFound):
		return errors.NewNotFoundError(fmt.Sprintf("ticket %s not found in jira", key))
	case stderrors.Is(err, ticket.ErrSourceTimeout):
		return errors.NewUpstreamTimeoutError("jira request timed out")
	default:
		return errors.NewUpstreamError("jira request failed", err.Error())
	}
}
