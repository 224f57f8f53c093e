package usecases

import (
	"context"

	"github.com/metashield/jirasync/internal/application/ticketsync/dto"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
)

type ListTicketsQuery struct {
	Status     string
	ProjectKey string
	OpenOnly   bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

type ListTicketsResult struct {
	Tickets  []*dto.TicketDTO
	Total    int64
	Page     int
	PageSize int
}

type ListTicketsUseCase struct {
	tickets ticket.Repository
	logger  logger.Interface
}

func NewListTicketsUseCase(tickets ticket.Repository, logger logger.Interface) *ListTicketsUseCase {
	return &ListTicketsUseCase{
		tickets: tickets,
		logger:  logger,
	}
}

func (uc *ListTicketsUseCase) Execute(ctx context.Context, query ListTicketsQuery) (*ListTicketsResult, error) {
	if query.SortOrder != "" && query.SortOrder != "asc" && query.SortOrder != "desc" {
		return nil, errors.NewValidationError("sort_order must be asc or desc")
	}

	tickets, total, err := uc.tickets.List(ctx, ticket.ListFilter{
		Status:     query.Status,
		ProjectKey: query.ProjectKey,
		OpenOnly:   query.OpenOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
		SortBy:     query.SortBy,
		SortOrder:  query.SortOrder,
	})
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "error", err)
		return nil, errors.NewInternalError("failed to list tickets")
	}

	return &ListTicketsResult{
		Tickets:  dto.ToTicketDTOList(tickets),
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
