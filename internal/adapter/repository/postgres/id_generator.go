package postgres

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator mints the ULIDs used as primary keys for accounts, ledger
// entries, audit rows and outbox events, and as transfer correlation ids.
// IDs minted in the same millisecond still sort in creation order, so a
// ledger page ordered by id matches insertion order.
type IDGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// IDGeneratorOption configures an IDGenerator.
type IDGeneratorOption func(*IDGenerator)

// WithIDClock overrides the timestamp source.
func WithIDClock(now func() time.Time) IDGeneratorOption {
	return func(g *IDGenerator) { g.now = now }
}

// NewIDGenerator creates an IDGenerator backed by crypto/rand.
func NewIDGenerator(opts ...IDGeneratorOption) *IDGenerator {
	g := &IDGenerator{
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new ULID string.
func (g *IDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
