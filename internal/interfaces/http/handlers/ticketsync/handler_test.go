package ticketsync

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metashield/jirasync/internal/application/ticketsync/dto"
	"github.com/metashield/jirasync/internal/application/ticketsync/usecases"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/interfaces/http/handlers/testutil"
	"github.com/metashield/jirasync/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockFullSyncUC struct {
	result *usecases.SyncResult
	err    error
	got    usecases.FullSyncCommand
	ctxErr error
}

func (m *mockFullSyncUC) Execute(ctx context.Context, cmd usecases.FullSyncCommand) (*usecases.SyncResult, error) {
	m.got = cmd
	m.ctxErr = ctx.Err()
	return m.result, m.err
}

type mockIncrementalSyncUC struct {
	result *usecases.SyncResult
	err    error
	got    usecases.IncrementalSyncCommand
}

func (m *mockIncrementalSyncUC) Execute(_ context.Context, cmd usecases.IncrementalSyncCommand) (*usecases.SyncResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockRealtimeSyncUC struct {
	result *usecases.RealtimeSyncResult
	err    error
	got    usecases.RealtimeSyncCommand
}

func (m *mockRealtimeSyncUC) Execute(_ context.Context, cmd usecases.RealtimeSyncCommand) (*usecases.RealtimeSyncResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockSetupUC struct {
	result *usecases.SetupResult
	err    error
}

func (m *mockSetupUC) Execute(_ context.Context, _ usecases.SetupCommand) (*usecases.SetupResult, error) {
	return m.result, m.err
}

type mockSyncStatusUC struct {
	result *usecases.SyncStatusResult
	err    error
}

func (m *mockSyncStatusUC) Execute(_ context.Context, _ usecases.GetSyncStatusQuery) (*usecases.SyncStatusResult, error) {
	return m.result, m.err
}

type mockRefreshTicketUC struct {
	result *usecases.RefreshTicketResult
	err    error
	got    usecases.RefreshTicketCommand
}

func (m *mockRefreshTicketUC) Execute(_ context.Context, cmd usecases.RefreshTicketCommand) (*usecases.RefreshTicketResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockListTicketsUC struct {
	result *usecases.ListTicketsResult
	err    error
	got    usecases.ListTicketsQuery
}

func (m *mockListTicketsUC) Execute(_ context.Context, query usecases.ListTicketsQuery) (*usecases.ListTicketsResult, error) {
	m.got = query
	return m.result, m.err
}

type mockGetTicketHistoryUC struct {
	result *usecases.GetTicketHistoryResult
	err    error
	got    usecases.GetTicketHistoryQuery
}

func (m *mockGetTicketHistoryUC) Execute(_ context.Context, query usecases.GetTicketHistoryQuery) (*usecases.GetTicketHistoryResult, error) {
	m.got = query
	return m.result, m.err
}

// =====================================================================
// Test helper
// =====================================================================

type testDeps struct {
	fullSyncUC        usecases.FullSyncExecutor
	incrementalSyncUC usecases.IncrementalSyncExecutor
	realtimeSyncUC    usecases.RealtimeSyncExecutor
	setupUC           usecases.SetupExecutor
	syncStatusUC      usecases.GetSyncStatusExecutor
	refreshTicketUC   usecases.RefreshTicketExecutor
}

func newTestSyncHandler(deps testDeps) *SyncHandler {
	return NewSyncHandler(
		deps.fullSyncUC,
		deps.incrementalSyncUC,
		deps.realtimeSyncUC,
		deps.setupUC,
		deps.syncStatusUC,
		deps.refreshTicketUC,
		testutil.NewMockLogger(),
	)
}

func completedResult() *usecases.SyncResult {
	return &usecases.SyncResult{
		RunID:     10,
		SyncType:  string(syncrun.TypeFull),
		Status:    string(syncrun.StatusCompleted),
		Success:   true,
		Processed: 3,
		Created:   3,
	}
}

// =====================================================================
// TestSyncHandler_FullSync
// =====================================================================

func TestSyncHandler_FullSync_Completed(t *testing.T) {
	uc := &mockFullSyncUC{result: completedResult()}
	handler := newTestSyncHandler(testDeps{fullSyncUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/full-sync", FullSyncRequest{
		BatchSize: 50,
		Projects:  []string{"GOODRICH"},
	})

	handler.FullSync(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var data usecases.SyncResult
	resp, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Full sync completed successfully", resp.Message)
	assert.Equal(t, 3, data.Created)

	assert.Equal(t, 50, uc.got.BatchSize)
	assert.Equal(t, []string{"GOODRICH"}, uc.got.Projects)
	assert.Equal(t, syncrun.SourceAPI, uc.got.Source)
}

func TestSyncHandler_FullSync_ClientDisconnectDoesNotCancelRun(t *testing.T) {
	uc := &mockFullSyncUC{result: completedResult()}
	handler := newTestSyncHandler(testDeps{fullSyncUC: uc})

	c, _ := testutil.NewTestContext(http.MethodPost, "/api/sync/full-sync", nil)
	ctx, cancel := context.WithCancel(c.Request.Context())
	cancel()
	c.Request = c.Request.WithContext(ctx)

	handler.FullSync(c)

	assert.NoError(t, uc.ctxErr)
	assert.Equal(t, syncrun.SourceAPI, uc.got.Source)
}

func TestSyncHandler_FullSync_EmptyBodyUsesDefaults(t *testing.T) {
	uc := &mockFullSyncUC{result: completedResult()}
	handler := newTestSyncHandler(testDeps{fullSyncUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/full-sync", nil)

	handler.FullSync(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, uc.got.BatchSize)
	assert.Zero(t, uc.got.MaxResults)
}

func TestSyncHandler_FullSync_PartialRunReturnsMultiStatus(t *testing.T) {
	result := completedResult()
	result.Status = string(syncrun.StatusPartial)
	result.Success = true
	result.Failed = 1
	uc := &mockFullSyncUC{result: result}
	handler := newTestSyncHandler(testDeps{fullSyncUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/full-sync", nil)

	handler.FullSync(c)

	assert.Equal(t, http.StatusMultiStatus, w.Code)

	var data usecases.SyncResult
	resp, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, data.Failed)
	assert.Equal(t, "partial", data.Status)
}

func TestSyncHandler_FullSync_InvalidBatchSize(t *testing.T) {
	uc := &mockFullSyncUC{result: completedResult()}
	handler := newTestSyncHandler(testDeps{fullSyncUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/full-sync", map[string]any{"batchSize": 500})

	handler.FullSync(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, uc.got.Source, "use case must not run")
}

func TestSyncHandler_FullSync_LedgerUnavailable(t *testing.T) {
	uc := &mockFullSyncUC{err: errors.NewInternalError("failed to open sync run")}
	handler := newTestSyncHandler(testDeps{fullSyncUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/full-sync", nil)

	handler.FullSync(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal_error", resp.Error.Type)
}

// =====================================================================
// TestSyncHandler_IncrementalSync
// =====================================================================

func TestSyncHandler_IncrementalSync(t *testing.T) {
	tests := []struct {
		name       string
		status     syncrun.Status
		wantCode   int
		wantStatus bool
	}{
		{"completed", syncrun.StatusCompleted, http.StatusOK, true},
		{"partial", syncrun.StatusPartial, http.StatusMultiStatus, false},
		{"failed", syncrun.StatusFailed, http.StatusMultiStatus, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := completedResult()
			result.SyncType = string(syncrun.TypeIncremental)
			result.Status = string(tt.status)
			uc := &mockIncrementalSyncUC{result: result}
			handler := newTestSyncHandler(testDeps{incrementalSyncUC: uc})

			c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/incremental-sync", nil)

			handler.IncrementalSync(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.Equal(t, tt.wantStatus, resp.Success)
			assert.Equal(t, syncrun.SourceAPI, uc.got.Source)
		})
	}
}

// =====================================================================
// TestSyncHandler_RealtimeSync
// =====================================================================

func TestSyncHandler_RealtimeSync_Manual(t *testing.T) {
	uc := &mockRealtimeSyncUC{result: &usecases.RealtimeSyncResult{
		SyncResult: usecases.SyncResult{
			RunID:     4,
			Status:    string(syncrun.StatusCompleted),
			Success:   true,
			Processed: 2,
			Resolved:  1,
		},
		JiraUnresolvedCount: 7,
		DBUnresolvedCount:   8,
	}}
	handler := newTestSyncHandler(testDeps{realtimeSyncUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/realtime-sync?manual=true", nil)

	handler.RealtimeSync(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var data usecases.RealtimeSyncResult
	resp, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, data.Resolved)
	assert.Equal(t, 7, data.JiraUnresolvedCount)
	assert.Equal(t, 8, data.DBUnresolvedCount)
	assert.Equal(t, syncrun.SourceManual, uc.got.Source)
}

func TestSyncHandler_RealtimeSync_RemoteFailureStillOK(t *testing.T) {
	uc := &mockRealtimeSyncUC{result: &usecases.RealtimeSyncResult{
		SyncResult: usecases.SyncResult{
			RunID:        5,
			Status:       string(syncrun.StatusFailed),
			Success:      false,
			ErrorMessage: "jira_api_failure: remote tracker unavailable",
		},
	}}
	handler := newTestSyncHandler(testDeps{realtimeSyncUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/realtime-sync", nil)

	handler.RealtimeSync(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var data usecases.RealtimeSyncResult
	resp, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "failed", data.Status)
	assert.Contains(t, data.ErrorMessage, "jira_api_failure")
}

// =====================================================================
// TestSyncHandler_Setup / Status
// =====================================================================

func TestSyncHandler_Setup(t *testing.T) {
	uc := &mockSetupUC{result: &usecases.SetupResult{
		RunID:             1,
		SeededSettings:    []string{"sync_enabled"},
		TicketCount:       0,
		RecommendedAction: usecases.ActionRunFullSync,
	}}
	handler := newTestSyncHandler(testDeps{setupUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/setup", nil)

	handler.Setup(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var data usecases.SetupResult
	_, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.Equal(t, usecases.ActionRunFullSync, data.RecommendedAction)
}

func TestSyncHandler_Status(t *testing.T) {
	uc := &mockSyncStatusUC{result: &usecases.SyncStatusResult{
		TotalTickets: 42,
		SyncEnabled:  true,
	}}
	handler := newTestSyncHandler(testDeps{syncStatusUC: uc})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/sync/status", nil)

	handler.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var data usecases.SyncStatusResult
	_, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.Equal(t, int64(42), data.TotalTickets)
}

func TestSyncHandler_Status_Error(t *testing.T) {
	uc := &mockSyncStatusUC{err: errors.NewInternalError("failed to read sync status")}
	handler := newTestSyncHandler(testDeps{syncStatusUC: uc})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/sync/status", nil)

	handler.Status(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// =====================================================================
// TestSyncHandler_UpdateTicket
// =====================================================================

func TestSyncHandler_UpdateTicket_Success(t *testing.T) {
	uc := &mockRefreshTicketUC{result: &usecases.RefreshTicketResult{
		Ticket: &dto.TicketDTO{JiraKey: "GOODRICH-1", Status: "완료"},
	}}
	handler := newTestSyncHandler(testDeps{refreshTicketUC: uc})

	c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/update-ticket", RefreshTicketRequest{JiraKey: "GOODRICH-1"})

	handler.UpdateTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GOODRICH-1", uc.got.JiraKey)
	assert.Equal(t, syncrun.SourceAPI, uc.got.Source)
}

func TestSyncHandler_UpdateTicket_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		err      error
		wantCode int
	}{
		{"missing key", map[string]string{}, nil, http.StatusBadRequest},
		{"not found", RefreshTicketRequest{JiraKey: "X-1"}, errors.NewNotFoundError("Ticket not found in Jira"), http.StatusNotFound},
		{"timeout", RefreshTicketRequest{JiraKey: "X-1"}, errors.NewUpstreamTimeoutError("remote timeout"), http.StatusGatewayTimeout},
		{"upstream", RefreshTicketRequest{JiraKey: "X-1"}, errors.NewUpstreamError("remote failure"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockRefreshTicketUC{err: tt.err}
			handler := newTestSyncHandler(testDeps{refreshTicketUC: uc})

			c, w := testutil.NewTestContext(http.MethodPost, "/api/sync/update-ticket", tt.body)

			handler.UpdateTicket(c)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

// =====================================================================
// TestTicketHandler
// =====================================================================

func TestTicketHandler_ListTickets(t *testing.T) {
	uc := &mockListTicketsUC{result: &usecases.ListTicketsResult{
		Tickets:  []*dto.TicketDTO{{JiraKey: "GOODRICH-1"}, {JiraKey: "GOODRICH-2"}},
		Total:    2,
		Page:     1,
		PageSize: 20,
	}}
	handler := NewTicketHandler(uc, &mockGetTicketHistoryUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets", nil)
	testutil.SetQueryParams(c, map[string]string{
		"page_size":  "20",
		"status":     "처리중",
		"project":    "GOODRICH",
		"open_only":  "true",
		"sort_order": "asc",
	})

	handler.ListTickets(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, uc.got.PageSize)
	assert.Equal(t, 1, uc.got.Page)
	assert.Equal(t, "처리중", uc.got.Status)
	assert.Equal(t, "GOODRICH", uc.got.ProjectKey)
	assert.True(t, uc.got.OpenOnly)
	assert.Equal(t, "asc", uc.got.SortOrder)

	var data struct {
		Items []dto.TicketDTO `json:"items"`
		Total int64           `json:"total"`
	}
	_, err := testutil.DecodeData(w, &data)
	require.NoError(t, err)
	assert.Len(t, data.Items, 2)
	assert.Equal(t, int64(2), data.Total)
}

func TestTicketHandler_ListTickets_InvalidOpenOnly(t *testing.T) {
	uc := &mockListTicketsUC{}
	handler := NewTicketHandler(uc, &mockGetTicketHistoryUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets", nil)
	testutil.SetQueryParams(c, map[string]string{"open_only": "maybe"})

	handler.ListTickets(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketHandler_GetTicketHistory(t *testing.T) {
	uc := &mockGetTicketHistoryUC{result: &usecases.GetTicketHistoryResult{
		Ticket:  &dto.TicketDTO{JiraKey: "FINDA-9"},
		History: []dto.HistoryEntryDTO{{FieldName: "status"}},
	}}
	handler := NewTicketHandler(&mockListTicketsUC{}, uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/FINDA-9/history?limit=10", nil)
	testutil.SetURLParam(c, "key", "FINDA-9")

	handler.GetTicketHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FINDA-9", uc.got.JiraKey)
	assert.Equal(t, 10, uc.got.Limit)
}

func TestTicketHandler_GetTicketHistory_NotFound(t *testing.T) {
	uc := &mockGetTicketHistoryUC{err: errors.NewNotFoundError("ticket not found")}
	handler := NewTicketHandler(&mockListTicketsUC{}, uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/NOPE-1/history", nil)
	testutil.SetURLParam(c, "key", "NOPE-1")

	handler.GetTicketHistory(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
