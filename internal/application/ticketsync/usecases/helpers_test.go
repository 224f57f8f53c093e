package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/metashield/jirasync/internal/application/ticketsync/services"
	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/infrastructure/migration"
	"github.com/metashield/jirasync/internal/infrastructure/repository"
	"github.com/metashield/jirasync/internal/shared/config"
)

// testEnv wires the orchestrators to repositories on an in-memory database.
type testEnv struct {
	db       *gorm.DB
	tickets  *repository.JiraTicketRepository
	history  *repository.JiraTicketHistoryRepository
	runs     *repository.SyncRunRepository
	settings *repository.SyncSettingRepository
	ledger   *services.Ledger
	writer   *services.TicketWriter
	tracker  *fakeTracker
	sleeps   []time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.NewGormAutoMigrateStrategy().Migrate(db))

	log := &mockLogger{}
	env := &testEnv{
		db:       db,
		tickets:  repository.NewJiraTicketRepository(db, log),
		history:  repository.NewJiraTicketHistoryRepository(db, log),
		runs:     repository.NewSyncRunRepository(db, log),
		settings: repository.NewSyncSettingRepository(db, log),
		tracker:  newFakeTracker(),
	}
	env.ledger = services.NewLedger(env.runs, log)
	env.writer = services.NewTicketWriter(env.tickets, services.NewHistoryRecorder(env.history, log), log)
	return env
}

func (e *testEnv) sleep(_ context.Context, d time.Duration) error {
	e.sleeps = append(e.sleeps, d)
	return nil
}

func (e *testEnv) fullSync(cfg config.FullSyncConfig) *FullSyncUseCase {
	uc := NewFullSyncUseCase(e.tracker, e.writer, e.ledger, e.settings, cfg, &mockLogger{})
	uc.sleep = e.sleep
	return uc
}

func (e *testEnv) incrementalSync() *IncrementalSyncUseCase {
	uc := NewIncrementalSyncUseCase(e.tracker, e.writer, e.ledger, e.settings, config.IncrementalSyncConfig{
		BatchSize:  50,
		MaxRecords: 1000,
		Lookback:   24 * time.Hour,
	}, &mockLogger{})
	uc.sleep = e.sleep
	return uc
}

func (e *testEnv) realtimeSync() *RealtimeSyncUseCase {
	return NewRealtimeSyncUseCase(e.tracker, e.tickets, e.writer, e.ledger, e.settings,
		[]string{"GOODRICH", "FINDA"},
		config.RealtimeSyncConfig{MaxResults: 500, Window: 24 * time.Hour, RefetchTimeout: 5 * time.Second},
		&mockLogger{},
	)
}

func defaultFullSyncConfig() config.FullSyncConfig {
	return config.FullSyncConfig{BatchSize: 100, MaxResults: 10000, DaysLookback: 90}
}

func strPtr(s string) *string {
	return &s
}

func remoteTicket(t *testing.T, key, status string, updatedAt time.Time) *ticket.Ticket {
	t.Helper()

	tk, err := ticket.NewTicket(ticket.Attributes{
		JiraKey:      key,
		JiraID:       "100" + key,
		ProjectKey:   "GOODRICH",
		ProjectName:  "Goodrich",
		Summary:      "Port scan detected on " + key,
		IssueType:    "보안이벤트",
		Status:       status,
		Priority:     "Medium",
		AssigneeName: strPtr("Lee Analyst"),
		CreatedAt:    updatedAt.Add(-time.Hour),
		UpdatedAt:    updatedAt,
		CustomFields: map[string]string{"customer": "Goodrich", "attack_type": "scan"},
	}, time.Now().UTC())
	require.NoError(t, err)
	return tk
}

// withStatus returns a copy of tk with a new status and remote update time.
func withStatus(t *testing.T, tk *ticket.Ticket, status string, updatedAt time.Time) *ticket.Ticket {
	t.Helper()

	attrs := tk.Attributes()
	attrs.Status = status
	attrs.UpdatedAt = updatedAt
	next, err := ticket.NewTicket(attrs, time.Now().UTC())
	require.NoError(t, err)
	return next
}

type mockServices struct {
	ledger *services.Ledger
	writer *services.TicketWriter
}

func newMockServices(tickets ticket.Repository, runs *mockSyncRunRepository, log *mockLogger) mockServices {
	return mockServices{
		ledger: services.NewLedger(runs, log),
		writer: services.NewTicketWriter(tickets, services.NewHistoryRecorder(&mockHistoryRepository{}, log), log),
	}
}
