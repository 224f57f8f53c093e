package ticketsync

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
	"github.com/metashield/jirasync/internal/shared/logger"
	"github.com/metashield/jirasync/internal/shared/utils"
)

// TicketHandler serves the read-only ticket views used by the dashboard.
type TicketHandler struct {
	listTicketsUC      usecases.ListTicketsExecutor
	getTicketHistoryUC usecases.GetTicketHistoryExecutor
	logger             logger.Interface
}

func NewTicketHandler(
	listTicketsUC usecases.ListTicketsExecutor,
	getTicketHistoryUC usecases.GetTicketHistoryExecutor,
	logger logger.Interface,
) *TicketHandler {
	return &TicketHandler{
		listTicketsUC:      listTicketsUC,
		getTicketHistoryUC: getTicketHistoryUC,
		logger:             logger,
	}
}

// ListTickets handles GET /api/tickets
func (h *TicketHandler) ListTickets(c *gin.Context) {
	req, err := parseListTicketsRequest(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.listTicketsUC.Execute(c.Request.Context(), req.ToQuery())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Tickets, result.Total, req.Page, req.PageSize)
}

// GetTicketHistory handles GET /api/tickets/:key/history
func (h *TicketHandler) GetTicketHistory(c *gin.Context) {
	limit, err := parseHistoryLimit(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getTicketHistoryUC.Execute(c.Request.Context(), usecases.GetTicketHistoryQuery{
		JiraKey: c.Param("key"),
		Limit:   limit,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
