package usecases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metashield/jirasync/internal/domain/syncrun"
	"github.com/metashield/jirasync/internal/domain/syncsetting"
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

type mockSource struct {
	SearchFunc    func(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error)
	SearchAllFunc func(ctx context.Context, req ticket.SearchRequest) ([]ticket.RemoteTicket, error)
	GetFunc       func(ctx context.Context, key string, opts ticket.FetchOptions) (*ticket.RemoteTicket, error)
}

func (m *mockSource) Search(ctx context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return &ticket.SearchPage{}, nil
}

func (m *mockSource) SearchAll(ctx context.Context, req ticket.SearchRequest) ([]ticket.RemoteTicket, error) {
	if m.SearchAllFunc != nil {
		return m.SearchAllFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockSource) Get(ctx context.Context, key string, opts ticket.FetchOptions) (*ticket.RemoteTicket, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, opts)
	}
	return nil, ticket.ErrSourceNotFound
}

type mockTicketRepository struct {
	UpsertFunc            func(ctx context.Context, t *ticket.Ticket) (*ticket.UpsertResult, error)
	ApplyStatusUpdateFunc func(ctx context.Context, key string, patch ticket.StatusPatch) (*ticket.Ticket, error)
	GetByKeyFunc          func(ctx context.Context, key string) (*ticket.Ticket, error)
	ListOpenFunc          func(ctx context.Context, closedStatuses []string) ([]*ticket.Ticket, error)
	ListFunc              func(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, int64, error)
	CountFunc             func(ctx context.Context) (int64, error)
	CountSyncedSinceFunc  func(ctx context.Context, since time.Time) (int64, error)
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
	if m.ListOpenFunc != nil {
		return m.ListOpenFunc(ctx, closedStatuses)
	}
	return nil, nil
}

func (m *mockTicketRepository) List(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockTicketRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockTicketRepository) CountSyncedSince(ctx context.Context, since time.Time) (int64, error) {
	if m.CountSyncedSinceFunc != nil {
		return m.CountSyncedSinceFunc(ctx, since)
	}
	return 0, nil
}

type mockHistoryRepository struct {
	AppendFunc        func(ctx context.Context, entries []*ticket.HistoryEntry) error
	ReplaceForKeyFunc func(ctx context.Context, jiraKey string, entries []*ticket.HistoryEntry) error
	ListByKeyFunc     func(ctx context.Context, jiraKey string, limit int) ([]*ticket.HistoryEntry, error)
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
	if m.ListByKeyFunc != nil {
		return m.ListByKeyFunc(ctx, jiraKey, limit)
	}
	return nil, nil
}

type mockSyncRunRepository struct {
	CreateFunc         func(ctx context.Context, run *syncrun.SyncRun) error
	UpdateFunc         func(ctx context.Context, run *syncrun.SyncRun) error
	GetByIDFunc        func(ctx context.Context, id uint) (*syncrun.SyncRun, error)
	ListRunningFunc    func(ctx context.Context) ([]*syncrun.SyncRun, error)
	LastSuccessfulFunc func(ctx context.Context, syncType syncrun.Type) (*syncrun.SyncRun, error)
	ListRecentFunc     func(ctx context.Context, limit int) ([]*syncrun.SyncRun, error)
}

func (m *mockSyncRunRepository) Create(ctx context.Context, run *syncrun.SyncRun) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, run)
	}
	run.SetID(1)
	return nil
}

func (m *mockSyncRunRepository) Update(ctx context.Context, run *syncrun.SyncRun) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, run)
	}
	return nil
}

func (m *mockSyncRunRepository) GetByID(ctx context.Context, id uint) (*syncrun.SyncRun, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, syncrun.ErrRunNotFound
}

func (m *mockSyncRunRepository) ListRunning(ctx context.Context) ([]*syncrun.SyncRun, error) {
	if m.ListRunningFunc != nil {
		return m.ListRunningFunc(ctx)
	}
	return nil, nil
}

func (m *mockSyncRunRepository) LastSuccessful(ctx context.Context, syncType syncrun.Type) (*syncrun.SyncRun, error) {
	if m.LastSuccessfulFunc != nil {
		return m.LastSuccessfulFunc(ctx, syncType)
	}
	return nil, nil
}

func (m *mockSyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*syncrun.SyncRun, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}

type mockSettingRepository struct {
	GetFunc            func(ctx context.Context, key string) (*syncsetting.Setting, error)
	GetAllFunc         func(ctx context.Context) ([]*syncsetting.Setting, error)
	UpsertFunc         func(ctx context.Context, setting *syncsetting.Setting) error
	InsertIfAbsentFunc func(ctx context.Context, setting *syncsetting.Setting) (bool, error)
	SetTimeFunc        func(ctx context.Context, key string, t time.Time) error
}

func (m *mockSettingRepository) Get(ctx context.Context, key string) (*syncsetting.Setting, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return nil, syncsetting.ErrSettingNotFound
}

func (m *mockSettingRepository) GetAll(ctx context.Context) ([]*syncsetting.Setting, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockSettingRepository) Upsert(ctx context.Context, setting *syncsetting.Setting) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, setting)
	}
	return nil
}

func (m *mockSettingRepository) InsertIfAbsent(ctx context.Context, setting *syncsetting.Setting) (bool, error) {
	if m.InsertIfAbsentFunc != nil {
		return m.InsertIfAbsentFunc(ctx, setting)
	}
	return true, nil
}

func (m *mockSettingRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	if m.SetTimeFunc != nil {
		return m.SetTimeFunc(ctx, key, t)
	}
	return nil
}

// fakeTracker is an in-memory remote tracker. Search pages through every
// ticket ordered by key; SearchAll and Get honour the query fields the
// orchestrators rely on.
type fakeTracker struct {
	mu         sync.Mutex
	tickets    map[string]*ticket.Ticket
	changelogs map[string][]*ticket.HistoryEntry
	broken     map[string]error

	searchAllErr error
	getErr       map[string]error
	requests     []ticket.SearchRequest
	gets         []string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		tickets:    make(map[string]*ticket.Ticket),
		changelogs: make(map[string][]*ticket.HistoryEntry),
		broken:     make(map[string]error),
		getErr:     make(map[string]error),
	}
}

func (f *fakeTracker) put(t *ticket.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets[t.JiraKey()] = t
}

func (f *fakeTracker) sortedKeys() []string {
	keys := make([]string, 0, len(f.tickets)+len(f.broken))
	for k := range f.tickets {
		keys = append(keys, k)
	}
	for k := range f.broken {
		if _, ok := f.tickets[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (f *fakeTracker) record(key string, withChangelog bool) ticket.RemoteTicket {
	if err, ok := f.broken[key]; ok {
		return ticket.RemoteTicket{Key: key, Err: err}
	}
	rec := ticket.RemoteTicket{Key: key, Ticket: f.tickets[key]}
	if withChangelog {
		rec.Changelog = f.changelogs[key]
	}
	return rec
}

func (f *fakeTracker) Search(_ context.Context, req ticket.SearchRequest) (*ticket.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	keys := f.sortedKeys()
	page := &ticket.SearchPage{StartAt: req.StartAt, Total: len(keys)}
	for i := req.StartAt; i < len(keys) && i < req.StartAt+req.PageSize; i++ {
		page.Tickets = append(page.Tickets, f.record(keys[i], req.WithChangelog))
	}
	return page, nil
}

func (f *fakeTracker) SearchAll(_ context.Context, req ticket.SearchRequest) ([]ticket.RemoteTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if f.searchAllErr != nil {
		return nil, f.searchAllErr
	}

	var out []ticket.RemoteTicket
	for _, key := range f.sortedKeys() {
		if t, ok := f.tickets[key]; ok {
			if req.Query.UpdatedFrom != nil && t.UpdatedAt().Before(*req.Query.UpdatedFrom) {
				continue
			}
			if len(req.Query.ExcludeStatuses) > 0 && ticket.IsClosedStatus(t.Status()) {
				continue
			}
		}
		out = append(out, f.record(key, req.WithChangelog))
		if req.MaxResults > 0 && len(out) >= req.MaxResults {
			break
		}
	}
	return out, nil
}

func (f *fakeTracker) Get(_ context.Context, key string, opts ticket.FetchOptions) (*ticket.RemoteTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, key)

	if err, ok := f.getErr[key]; ok {
		return nil, err
	}
	if _, ok := f.tickets[key]; !ok {
		return nil, ticket.ErrSourceNotFound
	}
	rec := f.record(key, opts.WithChangelog)
	return &rec, nil
}

func (f *fakeTracker) lastRequest() ticket.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}
