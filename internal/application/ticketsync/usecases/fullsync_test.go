package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metashield/jirasync/internal/application/ticketsync/services"
	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/errors"
)

func TestFullSyncThenIncrementalSync_Scenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	for i, key := range []string{"A-1", "A-2", "A-3"} {
		env.tracker.put(remoteTicket(t, key, "Open", base.Add(time.Duration(i)*time.Minute)))
	}

	full, err := env.fullSync(defaultFullSyncConfig()).Execute(ctx, FullSyncCommand{})
	require.NoError(t, err)
	assert.Equal(t, string(syncrun.StatusCompleted), full.Status)
	assert.True(t, full.Success)
	assert.Equal(t, 3, full.Processed)
	assert.Equal(t, 3, full.Created)
	assert.Equal(t, 0, full.Updated)
	assert.Equal(t, 0, full.Failed)

	count, err := env.tickets.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	checkpoint := base.Add(time.Hour)
	require.NoError(t, env.settings.SetTime(ctx, syncsetting.KeyLastIncrementalSync, checkpoint))

	a2, err := env.tickets.GetByKey(ctx, "A-2")
	require.NoError(t, err)
	env.tracker.put(withStatus(t, a2, "Closed", checkpoint.Add(10*time.Minute)))

	inc, err := env.incrementalSync().Execute(ctx, IncrementalSyncCommand{})
	require.NoError(t, err)
	assert.Equal(t, string(syncrun.StatusCompleted), inc.Status)
	assert.Equal(t, 0, inc.Created)
	assert.Equal(t, 1, inc.Updated)

	stored, err := env.tickets.GetByKey(ctx, "A-2")
	require.NoError(t, err)
	assert.Equal(t, "Closed", stored.Status())
	assert.Equal(t, 2, stored.SyncVersion())

	history, err := env.history.ListByKey(ctx, "A-2", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ticket.FieldStatus, history[0].FieldName())
	assert.Equal(t, "Open", *history[0].OldValue())
	assert.Equal(t, "Closed", *history[0].NewValue())
	assert.Equal(t, ticket.ChangeSourceIncremental, history[0].ChangeSource())
}

func TestFullSyncUseCase_Execute_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC)

	env.tracker.put(remoteTicket(t, "SEC-1", "Open", base))
	env.tracker.put(remoteTicket(t, "SEC-2", "Open", base))

	uc := env.fullSync(defaultFullSyncConfig())
	_, err := uc.Execute(ctx, FullSyncCommand{})
	require.NoError(t, err)

	second, err := uc.Execute(ctx, FullSyncCommand{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)

	count, err := env.tickets.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stored, err := env.tickets.GetByKey(ctx, "SEC-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.SyncVersion())

	history, err := env.history.ListByKey(ctx, "SEC-1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestFullSyncUseCase_Execute_ToleratesRecordFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 3, 9, 0, 0, 0, time.UTC)

	for i := range 19 {
		env.tracker.put(remoteTicket(t, fmt.Sprintf("SEC-%02d", i), "Open", base))
	}
	env.tracker.broken["SEC-99"] = stderrors.New("malformed record")

	result, err := env.fullSync(defaultFullSyncConfig()).Execute(ctx, FullSyncCommand{})
	require.NoError(t, err)

	assert.Equal(t, 20, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 19, result.Created)
	assert.Equal(t, string(syncrun.StatusPartial), result.Status)
	assert.True(t, result.Success)

	count, err := env.tickets.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(19), count)

	run, err := env.runs.GetByID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, syncrun.StatusPartial, run.Status())
	assert.Equal(t, 20, run.Counters().Processed)

	_, err = env.settings.Get(ctx, syncsetting.KeyLastFullSync)
	assert.NoError(t, err)
}

func TestFullSyncUseCase_Execute_PausesEveryFiveBatches(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2026, 10, 4, 9, 0, 0, 0, time.UTC)

	for i := range 6 {
		env.tracker.put(remoteTicket(t, fmt.Sprintf("SEC-%d", i), "Open", base))
	}

	cfg := defaultFullSyncConfig()
	result, err := env.fullSync(cfg).Execute(context.Background(), FullSyncCommand{BatchSize: 1})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Created)
	assert.Equal(t, []time.Duration{time.Second}, env.sleeps)
}

func TestFullSyncUseCase_Execute_StopsAtMaxResults(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2026, 10, 4, 9, 0, 0, 0, time.UTC)

	for i := range 10 {
		env.tracker.put(remoteTicket(t, fmt.Sprintf("SEC-%d", i), "Open", base))
	}

	result, err := env.fullSync(defaultFullSyncConfig()).Execute(context.Background(), FullSyncCommand{
		BatchSize:  3,
		MaxResults: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 1, env.tracker.lastRequest().PageSize)
}

func TestFullSyncUseCase_Execute_FailedBatchFetch(t *testing.T) {
	base := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	log := &mockLogger{}
	runs := &mockSyncRunRepository{}
	tickets := &mockTicketRepository{}

	page := []ticket.RemoteTicket{
		{Key: "SEC-1", Ticket: remoteTicket(t, "SEC-1", "Open", base)},
		{Key: "SEC-2", Ticket: remoteTicket(t, "SEC-2", "Open", base)},
	}
	source := &mockSource{
		SearchFunc: func(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
			switch req.StartAt {
			case 0:
				return &ticket.SearchPage{Tickets: page, Total: 6}, nil
			case 2:
				return nil, ticket.ErrSourceTimeout
			default:
				return &ticket.SearchPage{}, nil
			}
		},
	}

	var checkpointed bool
	settings := &mockSettingRepository{
		SetTimeFunc: func(ctx context.Context, key string, tm time.Time) error {
			checkpointed = true
			return nil
		},
	}

	writer := services.NewTicketWriter(tickets, services.NewHistoryRecorder(&mockHistoryRepository{}, log), log)
	uc := NewFullSyncUseCase(source, writer, services.NewLedger(runs, log), settings, defaultFullSyncConfig(), log)
	uc.sleep = func(context.Context, time.Duration) error { return nil }

	result, err := uc.Execute(context.Background(), FullSyncCommand{BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, string(syncrun.StatusFailed), result.Status)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "batch at 2")
	assert.False(t, checkpointed)
}

func TestFullSyncUseCase_Execute_ImportsChangelog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 6, 9, 0, 0, 0, time.UTC)

	env.tracker.put(remoteTicket(t, "SEC-7", "처리 완료", base))
	entry, err := ticket.NewHistoryEntry("SEC-7", ticket.FieldChange{
		Field:    "status",
		OldValue: strPtr("분석중"),
		NewValue: strPtr("처리 완료"),
	}, ticket.Author{Name: "Park Analyst"}, base.Add(-time.Minute), ticket.ChangeSourceJira)
	require.NoError(t, err)
	env.tracker.changelogs["SEC-7"] = []*ticket.HistoryEntry{entry}

	uc := env.fullSync(defaultFullSyncConfig())
	for range 2 {
		_, err := uc.Execute(ctx, FullSyncCommand{})
		require.NoError(t, err)
	}

	history, err := env.history.ListByKey(ctx, "SEC-7", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Park Analyst", history[0].ChangedByName())
	assert.Equal(t, ticket.ChangeSourceJira, history[0].ChangeSource())
	assert.NotZero(t, history[0].TicketID())
}

func TestFullSyncUseCase_Execute_LedgerOpenFails(t *testing.T) {
	log := &mockLogger{}
	runs := &mockSyncRunRepository{
		CreateFunc: func(ctx context.Context, run *syncrun.SyncRun) error {
			return stderrors.New("database is locked")
		},
	}
	searched := false
	source := &mockSource{
		SearchFunc: func(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
			searched = true
			return &ticket.SearchPage{}, nil
		},
	}

	writer := services.NewTicketWriter(&mockTicketRepository{}, services.NewHistoryRecorder(&mockHistoryRepository{}, log), log)
	uc := NewFullSyncUseCase(source, writer, services.NewLedger(runs, log), &mockSettingRepository{}, defaultFullSyncConfig(), log)

	result, err := uc.Execute(context.Background(), FullSyncCommand{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.False(t, searched)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeInternal, appErr.Type)
}

func TestFullSyncUseCase_Execute_Validation(t *testing.T) {
	log := &mockLogger{}
	writer := services.NewTicketWriter(&mockTicketRepository{}, services.NewHistoryRecorder(&mockHistoryRepository{}, log), log)
	uc := NewFullSyncUseCase(&mockSource{}, writer, services.NewLedger(&mockSyncRunRepository{}, log), &mockSettingRepository{}, defaultFullSyncConfig(), log)

	tests := []struct {
		name string
		cmd  FullSyncCommand
	}{
		{"batch size too large", FullSyncCommand{BatchSize: 101}},
		{"negative lookback", FullSyncCommand{DaysLookback: -1}},
		{"negative max results", FullSyncCommand{MaxResults: -5}},
		{"unknown source", FullSyncCommand{Source: "webhook"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestFullSyncUseCase_Execute_RejectionAbortsRun(t *testing.T) {
	log := &mockLogger{}
	runs := &mockSyncRunRepository{}

	var calls int
	source := &mockSource{
		SearchFunc: func(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
			calls++
			return nil, fmt.Errorf("search: %w", ticket.ErrSourceRejected)
		},
	}

	var checkpointed bool
	settings := &mockSettingRepository{
		SetTimeFunc: func(ctx context.Context, key string, tm time.Time) error {
			checkpointed = true
			return nil
		},
	}

	writer := services.NewTicketWriter(&mockTicketRepository{}, services.NewHistoryRecorder(&mockHistoryRepository{}, log), log)
	uc := NewFullSyncUseCase(source, writer, services.NewLedger(runs, log), settings, defaultFullSyncConfig(), log)
	uc.sleep = func(context.Context, time.Duration) error { return nil }

	result, err := uc.Execute(context.Background(), FullSyncCommand{BatchSize: 10, MaxResults: 1000})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, string(syncrun.StatusFailed), result.Status)
	assert.Contains(t, result.ErrorMessage, "rejected")
	assert.False(t, checkpointed)
}

func TestFullSyncUseCase_Execute_CancelledBetweenBatches(t *testing.T) {
	base := time.Date(2026, 10, 7, 9, 0, 0, 0, time.UTC)
	log := &mockLogger{}
	runs := &mockSyncRunRepository{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	source := &mockSource{
		SearchFunc: func(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
			calls++
			if req.StartAt == 0 {
				return &ticket.SearchPage{Total: 6, Tickets: []ticket.RemoteTicket{
					{Key: "SEC-1", Ticket: remoteTicket(t, "SEC-1", "Open", base)},
					{Key: "SEC-2", Ticket: remoteTicket(t, "SEC-2", "Open", base)},
				}}, nil
			}
			cancel()
			return nil, fmt.Errorf("search: %w: %w", ticket.ErrSourceUnavailable, ctx.Err())
		},
	}

	writer := services.NewTicketWriter(&mockTicketRepository{}, services.NewHistoryRecorder(&mockHistoryRepository{}, log), log)
	uc := NewFullSyncUseCase(source, writer, services.NewLedger(runs, log), &mockSettingRepository{}, defaultFullSyncConfig(), log)
	uc.sleep = func(context.Context, time.Duration) error { return nil }

	result, err := uc.Execute(ctx, FullSyncCommand{BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, string(syncrun.StatusFailed), result.Status)
	assert.Contains(t, result.ErrorMessage, "interrupted")
}

func TestFullSyncUseCase_Execute_CancelledMidBatch(t *testing.T) {
	base := time.Date(2026, 10, 7, 9, 0, 0, 0, time.UTC)
	log := &mockLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &mockSource{
		SearchFunc: func(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
			return &ticket.SearchPage{Total: 3, Tickets: []ticket.RemoteTicket{
				{Key: "SEC-1", Ticket: remoteTicket(t, "SEC-1", "Open", base)},
				{Key: "SEC-2", Ticket: remoteTicket(t, "SEC-2", "Open", base)},
				{Key: "SEC-3", Ticket: remoteTicket(t, "SEC-3", "Open", base)},
			}}, nil
		},
	}
	tickets := &mockTicketRepository{
		UpsertFunc: func(ctx context.Context, tk *ticket.Ticket) (*ticket.UpsertResult, error) {
			if tk.JiraKey() == "SEC-2" {
				cancel()
				return nil, ctx.Err()
			}
			return &ticket.UpsertResult{IsNew: true, Current: tk}, nil
		},
	}

	writer := services.NewTicketWriter(tickets, services.NewHistoryRecorder(&mockHistoryRepository{}, log), log)
	uc := NewFullSyncUseCase(source, writer, services.NewLedger(&mockSyncRunRepository{}, log), &mockSettingRepository{}, defaultFullSyncConfig(), log)

	result, err := uc.Execute(ctx, FullSyncCommand{BatchSize: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, string(syncrun.StatusFailed), result.Status)
	assert.Contains(t, result.ErrorMessage, "interrupted")
}
