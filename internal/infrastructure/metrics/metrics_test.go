package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/jointledger/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.TransfersCompleted == nil || m.GatewayCalls == nil || m.SyncsCompleted == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.TransferCompleted(time.Second)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecorderMethods(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.TransferCompleted(50 * time.Millisecond)
	m.TransferFailed(domain.StageCredit)
	m.TransferFailed(domain.StageCredit)
	m.RetryAttempted("transfer_claim")
	m.SyncCompleted(3, time.Second)
	m.SyncCompleted(0, time.Second)
	m.SyncFailed()
	m.ObserveGatewayCall("debit", "ok", 10*time.Millisecond)
	m.EventPublished(domain.EventTypeTransferCreditFailed)
	m.RateLimited()

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"transfers completed", testutil.ToFloat64(m.TransfersCompleted), 1},
		{"credit failures", testutil.ToFloat64(m.TransferFailures.WithLabelValues("credit")), 2},
		{"retries", testutil.ToFloat64(m.RetryAttempts.WithLabelValues("transfer_claim")), 1},
		{"syncs completed", testutil.ToFloat64(m.SyncsCompleted), 2},
		{"entries imported", testutil.ToFloat64(m.EntriesImported), 3},
		{"syncs failed", testutil.ToFloat64(m.SyncsFailed), 1},
		{"gateway calls", testutil.ToFloat64(m.GatewayCalls.WithLabelValues("debit", "ok")), 1},
		{"events published", testutil.ToFloat64(m.EventsPublished.WithLabelValues(domain.EventTypeTransferCreditFailed)), 1},
		{"rate limit hits", testutil.ToFloat64(m.RateLimitHits), 1},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}
