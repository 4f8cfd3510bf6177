package redis

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// CachedDirectory caches joint account lookups in Redis. Only hits are
// cached; a party with no joint account is looked up every time.
// Version and watermark in a cached account may be stale, so callers use it
// for identity only.
type CachedDirectory struct {
	next   usecase.AccountDirectory
	cache  *Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedDirectory wraps next with a Redis cache.
func NewCachedDirectory(next usecase.AccountDirectory, cache *Cache, ttl time.Duration, logger zerolog.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, cache: cache, ttl: ttl, logger: logger}
}

var _ usecase.AccountDirectory = (*CachedDirectory)(nil)

// JointAccountFor implements usecase.AccountDirectory.
// Cache failures fall through to the wrapped directory.
func (d *CachedDirectory) JointAccountFor(ctx context.Context, partyID string) (*domain.Account, error) {
	var cached domain.Account
	hit, err := d.cache.GetJSON(ctx, partyID, &cached)
	if err != nil {
		d.logger.Warn().Err(err).Str("party_id", partyID).Msg("directory cache read failed")
	}
	if hit {
		return &cached, nil
	}

	account, err := d.next.JointAccountFor(ctx, partyID)
	if err != nil {
		return nil, err
	}

	if err := d.cache.SetJSON(ctx, partyID, account, d.ttl); err != nil {
		d.logger.Warn().Err(err).Str("party_id", partyID).Msg("directory cache write failed")
	}

	return account, nil
}

// Forget drops the cached lookup for partyID.
func (d *CachedDirectory) Forget(ctx context.Context, partyID string) error {
	return d.cache.Delete(ctx, partyID)
}
