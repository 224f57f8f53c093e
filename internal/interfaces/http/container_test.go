package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/metashield/jirasync/internal/infrastructure/config"
	"github.com/metashield/jirasync/internal/infrastructure/migration"
	"github.com/metashield/jirasync/internal/interfaces/http/handlers/testutil"
	sharedConfig "github.com/metashield/jirasync/internal/shared/config"
)

const testServiceKey = "service-key"

func newTestConfig() *config.Config {
	return &config.Config{
		Server: sharedConfig.ServerConfig{Mode: "test"},
		Jira: sharedConfig.JiraConfig{
			BaseURL:          "http://127.0.0.1:1",
			Email:            "sync@example.com",
			APIToken:         "token",
			IssueType:        "보안이벤트",
			RequestTimeout:   time.Second,
			RealtimeProjects: []string{"GOODRICH"},
			Breaker: sharedConfig.BreakerConfig{
				MaxRequests:  1,
				Interval:     time.Minute,
				Timeout:      time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Sync: sharedConfig.SyncConfig{
			Full:        sharedConfig.FullSyncConfig{BatchSize: 100, MaxResults: 1000, DaysLookback: 90},
			Incremental: sharedConfig.IncrementalSyncConfig{BatchSize: 50, MaxRecords: 1000, Lookback: 24 * time.Hour},
			Realtime: sharedConfig.RealtimeSyncConfig{
				MaxResults:     500,
				Window:         24 * time.Hour,
				RetryAttempts:  1,
				AttemptTimeout: time.Second,
				RefetchTimeout: time.Second,
			},
		},
		Auth: sharedConfig.AuthConfig{ServiceKey: testServiceKey},
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) *Container {
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

	c, err := NewContainer(db, cfg, testutil.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	c.SetupRoutes()
	return c
}

func serve(c *Container, method, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(""))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	c.GetEngine().ServeHTTP(w, req)
	return w
}

func TestNewContainer_RequiresJiraSettings(t *testing.T) {
	cfg := newTestConfig()
	cfg.Jira.APIToken = ""

	_, err := NewContainer(nil, cfg, testutil.NewMockLogger())

	assert.ErrorIs(t, err, config.ErrJiraNotConfigured)
}

func TestContainer_Routes(t *testing.T) {
	c := newTestContainer(t, newTestConfig())

	t.Run("health", func(t *testing.T) {
		w := serve(c, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		w := serve(c, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "go_goroutines")
	})

	t.Run("status needs no credential", func(t *testing.T) {
		w := serve(c, http.MethodGet, "/api/sync/status", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp testutil.APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("trigger without credential", func(t *testing.T) {
		for _, path := range []string{
			"/api/sync/full-sync",
			"/api/sync/incremental-sync",
			"/api/sync/realtime-sync",
			"/api/sync/setup",
			"/api/sync/update-ticket",
		} {
			w := serve(c, http.MethodPost, path, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("setup with credential", func(t *testing.T) {
		w := serve(c, http.MethodPost, "/api/sync/setup", "Bearer "+testServiceKey)
		require.Equal(t, http.StatusOK, w.Code)

		var resp testutil.APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var data struct {
			RecommendedAction string `json:"recommendedAction"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "run_full_sync", data.RecommendedAction)
	})

	t.Run("tickets list", func(t *testing.T) {
		w := serve(c, http.MethodGet, "/api/tickets?page_size=10", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown ticket history", func(t *testing.T) {
		w := serve(c, http.MethodGet, "/api/tickets/NOPE-1/history", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestContainer_SchedulerRegistersSyncJobs(t *testing.T) {
	c := newTestContainer(t, newTestConfig())

	assert.Len(t, c.schedulerManager.Jobs(), 4)
	assert.False(t, c.schedulerManager.IsStarted())
}
