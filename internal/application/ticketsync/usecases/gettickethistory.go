package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/metashield/jirasync/internal/application/ticketsync/dto"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
)

const maxHistoryLimit = 500

type GetTicketHistoryQuery struct {
	JiraKey string
	Limit   int
}

type GetTicketHistoryResult struct {
	Ticket  *dto.TicketDTO        `json:"ticket"`
	History []dto.HistoryEntryDTO `json:"history"`
}

type GetTicketHistoryUseCase struct {
	tickets ticket.Repository
	history ticket.HistoryRepository
	logger  logger.Interface
}

func NewGetTicketHistoryUseCase(
	tickets ticket.Repository,
	history ticket.HistoryRepository,
	logger logger.Interface,
) *GetTicketHistoryUseCase {
	return &GetTicketHistoryUseCase{
		tickets: tickets,
		history: history,
		logger:  logger,
	}
}

func (uc *GetTicketHistoryUseCase) Execute(ctx context.Context, query GetTicketHistoryQuery) (*GetTicketHistoryResult, error) {
	key := strings.TrimSpace(query.JiraKey)
	if key == "" {
		return nil, errors.NewValidationError("jira key is required")
	}

	limit := query.Limit
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	t, err := uc.tickets.GetByKey(ctx, key)
	if err != nil {
		if stderrors.Is(err, ticket.ErrTicketNotFound) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("ticket %s not found", key))
		}
		uc.logger.Errorw("failed to get ticket", "jira_key", key, "error", err)
		return nil, errors.NewInternalError("failed to get ticket")
	}

	entries, err := uc.history.ListByKey(ctx, key, limit)
	if err != nil {
		uc.logger.Errorw("failed to list ticket history", "jira_key", key, "error", err)
		return nil, errors.NewInternalError("failed to list ticket history")
	}

	return &GetTicketHistoryResult{
		Ticket:  dto.ToTicketDTO(t),
		History: dto.ToHistoryEntryDTOList(entries),
	}, nil
}
