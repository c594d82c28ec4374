package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tressure/backend/internal/cache"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func pingOK() HealthChecker { return pingFunc(func(context.Context) error { return nil }) }

func pingErr(msg string) HealthChecker {
	return pingFunc(func(context.Context) error { return errors.New(msg) })
}

func serveHealth(t *testing.T, h *HealthHandler, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	switch path {
	case "/healthz":
		h.Healthz(rec, req)
	default:
		h.Readyz(rec, req)
	}

	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body
}

func TestHealthz_IgnoresDependencies(t *testing.T) {
	h := NewHealthHandler(pingErr("db down"), pingErr("redis down"))

	code, body := serveHealth(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Checks)
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		cache      HealthChecker
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "postgres and redis up",
			db:         pingOK(),
			cache:      pingOK(),
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name:       "redis disabled",
			db:         pingOK(),
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"postgres": "ok", "redis": "not configured"},
		},
		{
			name:       "postgres down",
			db:         pingErr("connection refused"),
			cache:      pingOK(),
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"postgres": "error: connection refused", "redis": "ok"},
		},
		{
			name:       "redis down",
			db:         pingOK(),
			cache:      pingErr("i/o timeout"),
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"postgres": "ok", "redis": "error: i/o timeout"},
		},
		{
			name:       "both down",
			db:         pingErr("connection refused"),
			cache:      pingErr("i/o timeout"),
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"postgres": "error: connection refused", "redis": "error: i/o timeout"},
		},
		{
			name:       "nothing wired",
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"postgres": "not configured", "redis": "not configured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serveHealth(t, NewHealthHandler(tt.db, tt.cache), "/readyz")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestReadyz_StoppedRedisIsUnhealthy(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	h := NewHealthHandler(pingOK(), cache.NewWithClient(client))

	code, body := serveHealth(t, h, "/readyz")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Checks["redis"])

	s.Close()

	code, body = serveHealth(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Contains(t, body.Checks["redis"], "error: ")
	assert.Equal(t, "ok", body.Checks["postgres"])
}

func TestReadyz_PingHonoursRequestDeadline(t *testing.T) {
	var sawDeadline bool
	db := pingFunc(func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	})

	code, _ := serveHealth(t, NewHealthHandler(db, nil), "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, sawDeadline, "dependency checks run under a timeout")
}
