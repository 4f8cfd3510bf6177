package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/jointledger/internal/domain"
)

// Metrics holds all Prometheus metrics. It implements usecase.Recorder
// and bankapi.Observer.
type Metrics struct {
	// Transfer metrics
	TransfersCompleted prometheus.Counter
	TransferDuration   prometheus.Histogram
	TransferFailures   *prometheus.CounterVec

	// Concurrency metrics
	RetryAttempts *prometheus.CounterVec

	// Reconciliation metrics
	SyncsCompleted  prometheus.Counter
	SyncsFailed     prometheus.Counter
	EntriesImported prometheus.Counter
	SyncDuration    prometheus.Histogram

	// Gateway metrics
	GatewayCalls    *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates and registers all Prometheus metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all Prometheus metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransfersCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "jointledger_transfers_completed_total",
			Help: "Total number of transfers whose debit and credit both succeeded",
		}),
		TransferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jointledger_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jointledger_transfer_failures_total",
				Help: "Total number of failed transfers by stage",
			},
			[]string{"stage"},
		),

		RetryAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jointledger_retry_attempts_total",
				Help: "Retries after a lost version check",
			},
			[]string{"operation"},
		),

		SyncsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "jointledger_syncs_completed_total",
			Help: "Total number of completed ledger syncs",
		}),
		SyncsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "jointledger_syncs_failed_total",
			Help: "Total number of failed ledger syncs",
		}),
		EntriesImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "jointledger_entries_imported_total",
			Help: "Total number of ledger entries imported from the bank",
		}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jointledger_sync_duration_seconds",
			Help:    "Duration of ledger syncs",
			Buckets: prometheus.DefBuckets,
		}),

		GatewayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jointledger_gateway_calls_total",
				Help: "Total bank gateway calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		GatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jointledger_gateway_duration_seconds",
				Help:    "Bank gateway call duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jointledger_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "jointledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// TransferCompleted records a successful transfer.
func (m *Metrics) TransferCompleted(d time.Duration) {
	m.TransfersCompleted.Inc()
	m.TransferDuration.Observe(d.Seconds())
}

// TransferFailed records a transfer that stopped at stage.
func (m *Metrics) TransferFailed(stage domain.TransferStage) {
	m.TransferFailures.WithLabelValues(string(stage)).Inc()
}

// RetryAttempted records one retry of operation.
func (m *Metrics) RetryAttempted(operation string) {
	m.RetryAttempts.WithLabelValues(operation).Inc()
}

// SyncCompleted records a finished sync.
func (m *Metrics) SyncCompleted(imported int, d time.Duration) {
	m.SyncsCompleted.Inc()
	m.EntriesImported.Add(float64(imported))
	m.SyncDuration.Observe(d.Seconds())
}

// SyncFailed records a failed sync.
func (m *Metrics) SyncFailed() {
	m.SyncsFailed.Inc()
}

// ObserveGatewayCall records one bank call.
func (m *Metrics) ObserveGatewayCall(op, outcome string, d time.Duration) {
	m.GatewayCalls.WithLabelValues(op, outcome).Inc()
	m.GatewayDuration.WithLabelValues(op).Observe(d.Seconds())
}

// EventPublished records a published outbox event.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RateLimited records a rejected request.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}
