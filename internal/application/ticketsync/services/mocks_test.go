package services

import (
	"context"
	"time"

	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/logger"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)                   {}
func (m *mockLogger) Info(msg string, args ...any)                    {}
func (m *mockLogger) Warn(msg string, args ...any)                    {}
func (m *mockLogger) Error(msg string, args ...any)                   {}
func (m *mockLogger) Fatal(msg string, args ...any)                   {}
func (m *mockLogger) With(args ...any) logger.Interface               { return m }
func (m *mockLogger) Named(name string) logger.Interface              { return m }
func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Fatalw(msg string, keysAndValues ...interface{}) {}

type mockTicketRepository struct {
	UpsertFunc            func(ctx context.Context, t *ticket.Ticket) (*ticket.UpsertResult, error)
	ApplyStatusUpdateFunc func(ctx context.Context, key string, patch ticket.StatusPatch) (*ticket.Ticket, error)
	GetByKeyFunc          func(ctx context.Context, key string) (*ticket.Ticket, error)
}

func (m *mockTicketRepository) Upsert(ctx context.Context, t *ticket.Ticket) (*ticket.UpsertResult, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, t)
	}
	return &ticket.UpsertResult{IsNew: true, Current: t}, nil
}

func (m *mockTicketRepository) ApplyStatusUpdate(ctx context.Context, key string, patch ticket.StatusPatch) (*ticket.Ticket, error) {
	if m.ApplyStatusUpdateFunc != nil {
		return m.ApplyStatusUpdateFunc(ctx, key, patch)
	}
	return nil, ticket.ErrTicketNotFound
}

func (m *mockTicketRepository) GetByKey(ctx context.Context, key string) (*ticket.Ticket, error) {
	if m.GetByKeyFunc != nil {
		return m.GetByKeyFunc(ctx, key)
	}
	return nil, ticket.ErrTicketNotFound
}

func (m *mockTicketRepository) ListOpen(ctx context.Context, closedStatuses []string) ([]*ticket.Ticket, error) {
	return nil, nil
}

func (m *mockTicketRepository) List(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, int64, error) {
	return nil, 0, nil
}

func (m *mockTicketRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockTicketRepository) CountSyncedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

type mockHistoryRepository struct {
	AppendFunc        func(ctx context.Context, entries []*ticket.HistoryEntry) error
	ReplaceForKeyFunc func(ctx context.Context, jiraKey string, entries []*ticket.HistoryEntry) error
}

func (m *mockHistoryRepository) Append(ctx context.Context, entries []*ticket.HistoryEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entries)
	}
	return nil
}

func (m *mockHistoryRepository) ReplaceForKey(ctx context.Context, jiraKey string, entries []*ticket.HistoryEntry) error {
	if m.ReplaceForKeyFunc != nil {
		return m.ReplaceForKeyFunc(ctx, jiraKey, entries)
	}
	return nil
}

func (m *mockHistoryRepository) ListByKey(ctx context.Context, jiraKey string, limit int) ([]*ticket.HistoryEntry, error) {
	return nil, nil
}

type mockSyncRunRepository struct {
	CreateFunc func(ctx context.Context, run *syncrun.SyncRun) error
	UpdateFunc func(ctx context.Context, run *syncrun.SyncRun) error
}

func (m *mockSyncRunRepository) Create(ctx context.Context, run *syncrun.SyncRun) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, run)
	}
	run.SetID(7)
	return nil
}

func (m *mockSyncRunRepository) Update(ctx context.Context, run *syncrun.SyncRun) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, run)
	}
	return nil
}

func (m *mockSyncRunRepository) GetByID(ctx context.Context, id uint) (*syncrun.SyncRun, error) {
	return nil, syncrun.ErrRunNotFound
}

func (m *mockSyncRunRepository) ListRunning(ctx context.Context) ([]*syncrun.SyncRun, error) {
	return nil, nil
}

func (m *mockSyncRunRepository) LastSuccessful(ctx context.Context, syncType syncrun.Type) (*syncrun.SyncRun, error) {
	return nil, nil
}

func (m *mockSyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
	return nil, nil
}
