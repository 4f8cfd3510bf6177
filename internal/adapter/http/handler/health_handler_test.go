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
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func readiness(t *testing.T, h *HealthHandler) (int, map[string]string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthHandler_Readiness(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	healthy := pingerFunc(func(ctx context.Context) error { return nil })
	down := pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	code, body := readiness(t, NewHealthHandler(Postgres(healthy), Redis(client)))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]string{"status": "ready", "postgres": "ok", "redis": "ok"}, body)

	code, body = readiness(t, NewHealthHandler(Postgres(down), Redis(client)))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "connection refused", body["postgres"])
	assert.Equal(t, "ok", body["redis"])

	mr.Close()
	code, body = readiness(t, NewHealthHandler(Postgres(down), Redis(client)))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body["status"])
	assert.NotEqual(t, "ok", body["redis"], "both failures should be reported")
	assert.Equal(t, "connection refused", body["postgres"])
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
