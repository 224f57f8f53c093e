package ticketsync

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/shared/errors"
	"github.com/metashield/jirasync/internal/shared/logger"
	"github.com/metashield/jirasync/internal/shared/utils"
)

type SyncHandler struct {
	fullSyncUC        usecases.FullSyncExecutor
	incrementalSyncUC usecases.IncrementalSyncExecutor
	realtimeSyncUC    usecases.RealtimeSyncExecutor
	setupUC           usecases.SetupExecutor
	syncStatusUC      usecases.GetSyncStatusExecutor
	refreshTicketUC   usecases.RefreshTicketExecutor
	logger            logger.Interface
}

func NewSyncHandler(
	fullSyncUC usecases.FullSyncExecutor,
	incrementalSyncUC usecases.IncrementalSyncExecutor,
	realtimeSyncUC usecases.RealtimeSyncExecutor,
	setupUC usecases.SetupExecutor,
	syncStatusUC usecases.GetSyncStatusExecutor,
	refreshTicketUC usecases.RefreshTicketExecutor,
	logger logger.Interface,
) *SyncHandler {
	return &SyncHandler{
		fullSyncUC:        fullSyncUC,
		incrementalSyncUC: incrementalSyncUC,
		realtimeSyncUC:    realtimeSyncUC,
		setupUC:           setupUC,
		syncStatusUC:      syncStatusUC,
		refreshTicketUC:   refreshTicketUC,
		logger:            logger,
	}
}

// FullSync handles POST /api/sync/full-sync
func (h *SyncHandler) FullSync(c *gin.Context) {
	var req FullSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		h.logger.Warnw("invalid request body for full sync", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.fullSyncUC.Execute(runContext(c), req.ToCommand(runSource(c)))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.respondRun(c, result, "Full sync completed successfully", "Full sync completed with some errors")
}

// IncrementalSync handles POST /api/sync/incremental-sync
func (h *SyncHandler) IncrementalSync(c *gin.Context) {
	cmd := usecases.IncrementalSyncCommand{Source: runSource(c)}

	result, err := h.incrementalSyncUC.Execute(runContext(c), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.respondRun(c, result, "Incremental sync completed successfully", "Incremental sync completed with some errors")
}

// RealtimeSync handles POST /api/sync/realtime-sync. A remote failure still
// answers 200 with success=false; the run is recorded as failed.
func (h *SyncHandler) RealtimeSync(c *gin.Context) {
	cmd := usecases.RealtimeSyncCommand{Source: runSource(c)}

	result, err := h.realtimeSyncUC.Execute(runContext(c), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "Realtime sync completed"
	if !result.Success {
		message = "Realtime sync failed"
	}
	utils.ResultResponse(c, http.StatusOK, result.Success, message, result)
}

// Setup handles POST /api/sync/setup
func (h *SyncHandler) Setup(c *gin.Context) {
	result, err := h.setupUC.Execute(runContext(c), usecases.SetupCommand{Source: syncrun.SourceAPI})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Sync setup completed", result)
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	result, err := h.syncStatusUC.Execute(c.Request.Context(), usecases.GetSyncStatusQuery{})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// UpdateTicket handles POST /api/sync/update-ticket
func (h *SyncHandler) UpdateTicket(c *gin.Context) {
	var req RefreshTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update ticket", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("jiraKey is required", err.Error()))
		return
	}

	result, err := h.refreshTicketUC.Execute(runContext(c), usecases.RefreshTicketCommand{
		JiraKey: req.JiraKey,
		Source:  runSource(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Ticket updated successfully", result)
}

// respondRun answers 200 for a completed run and 207 Multi-Status for a run
// that finished partially or failed.
func (h *SyncHandler) respondRun(c *gin.Context, result *usecases.SyncResult, okMessage, partialMessage string) {
	if result.Status == string(syncrun.StatusCompleted) {
		utils.ResultResponse(c, http.StatusOK, true, okMessage, result)
		return
	}
	utils.ResultResponse(c, http.StatusMultiStatus, false, partialMessage, result)
}

// runContext detaches a run from the request so a client disconnect does not
// abort it halfway. Request values such as the trace id are kept.
func runContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
