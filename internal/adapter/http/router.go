package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/jointledger/internal/adapter/http/handler"
	"github.com/iho/jointledger/internal/adapter/http/middleware"
	"github.com/iho/jointledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	TransferHandler  *handler.TransferHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         *zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Identity)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.Balance)
			r.Post("/{id}/members", cfg.AccountHandler.AddMember)
			r.Post("/{id}/sync", cfg.LedgerHandler.Sync)
			r.Get("/{id}/ledger", cfg.LedgerHandler.ListByAccount)
		})

		r.Post("/transfers", cfg.TransferHandler.Create)

		r.Route("/ledger/entries", func(r chi.Router) {
			r.Patch("/{id}/review", cfg.LedgerHandler.Review)
			r.Get("/{id}/history", cfg.LedgerHandler.History)
		})
	})

	return r
}
