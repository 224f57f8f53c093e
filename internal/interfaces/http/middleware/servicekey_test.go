package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metashield/jirasync/internal/interfaces/http/handlers/testutil"
	"github.com/metashield/jirasync/internal/shared/utils"
)

func newTestEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.APIResponse{Success: true})
	})
	engine.POST("/api/sync/realtime-sync", handlers...)
	return engine
}

func doRequest(engine *gin.Engine, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Type
}

func TestServiceKeyMiddleware_RequireServiceKey(t *testing.T) {
	m := NewServiceKeyMiddleware("s3cret", testutil.NewMockLogger())
	engine := newTestEngine(m.RequireServiceKey())

	tests := []struct {
		name          string
		authorization string
		wantCode      int
	}{
		{"valid bearer", "Bearer s3cret", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(engine, "/api/sync/realtime-sync", tt.authorization)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.Equal(t, "unauthorized", errorType(t, w))
			}
		})
	}
}

func TestServiceKeyMiddleware_NotConfigured(t *testing.T) {
	m := NewServiceKeyMiddleware("", testutil.NewMockLogger())
	engine := newTestEngine(m.RequireServiceKey())

	w := doRequest(engine, "/api/sync/realtime-sync", "Bearer anything")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "configuration_error", errorType(t, w))
}

func TestServiceKeyMiddleware_ManualOverride(t *testing.T) {
	m := NewServiceKeyMiddleware("s3cret", testutil.NewMockLogger())
	engine := newTestEngine(m.RequireServiceKeyUnlessManual())

	assert.Equal(t, http.StatusOK, doRequest(engine, "/api/sync/realtime-sync?manual=true", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(engine, "/api/sync/realtime-sync?manual=false", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(engine, "/api/sync/realtime-sync", "Bearer s3cret").Code)
}

func TestRateLimiter_DisabledWithoutRedis(t *testing.T) {
	rl := NewRateLimiter(nil, 1, time.Minute, testutil.NewMockLogger())
	engine := newTestEngine(rl.Limit())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(engine, "/api/sync/realtime-sync", "").Code)
	}
}

func TestRateLimiter_FailsOpenWhenRedisUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, 1, time.Minute, testutil.NewMockLogger())
	engine := newTestEngine(rl.Limit())

	assert.Equal(t, http.StatusOK, doRequest(engine, "/api/sync/realtime-sync", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(engine, "/api/sync/realtime-sync", "").Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(CORS([]string{"https://dashboard.example.com"}))
	engine.GET("/api/sync/status", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/sync/status", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
