package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// Locker implements usecase.SyncLocker with a single-try redsync mutex.
// A held lock is reported as domain.ErrSyncInProgress instead of queueing.
type Locker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	prefix string
	logger zerolog.Logger
}

// NewLocker creates a Locker whose locks expire after expiry.
func NewLocker(client *redis.Client, expiry time.Duration, logger zerolog.Logger) *Locker {
	if expiry <= 0 {
		expiry = 30 * time.Second
	}
	return &Locker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
		prefix: "jointledger:lock:",
		logger: logger,
	}
}

var _ usecase.SyncLocker = (*Locker)(nil)

// WithLock implements usecase.SyncLocker.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(
		l.prefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			return fmt.Errorf("%w: %s", domain.ErrSyncInProgress, key)
		}
		return fmt.Errorf("acquire lock %s: %w", key, err)
	}

	defer func() {
		// Release even when ctx is already done.
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			l.logger.Warn().Err(err).Str("lock_key", key).Msg("failed to release lock")
		}
	}()

	return fn(ctx)
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken
	return errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken)
}
