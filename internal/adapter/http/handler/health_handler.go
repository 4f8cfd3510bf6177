package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 5 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency is a backing service the ledger cannot serve without.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

// Postgres reports whether the ledger database answers.
func Postgres(db Pinger) Dependency {
	return Dependency{Name: "postgres", Check: db.Ping}
}

// Redis reports whether the lock and idempotency store answers.
func Redis(client *redis.Client) Dependency {
	return Dependency{Name: "redis", Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps []Dependency
}

// NewHealthHandler creates a HealthHandler that checks deps in order.
func NewHealthHandler(deps ...Dependency) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Liveness returns 200 while the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness checks every dependency and names each one that failed. Transfers
// need both the database and the lock store, so one failure is enough to
// report 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ready"}
	for _, dep := range h.deps {
		if err := dep.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
			body[dep.Name] = err.Error()
			continue
		}
		body[dep.Name] = "ok"
	}

	writeJSON(w, status, body)
}
