package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/jointledger/internal/domain"
)

// RetryPolicy retries operations that lose an optimistic version check.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, next time.Duration)
}

// DefaultRetryPolicy makes three attempts, sleeping 100ms then 200ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     DefaultRetryMaxAttempts,
		InitialInterval: DefaultRetryInitialInterval,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryMaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryInitialInterval
	}
	return p
}

// newBackOff doubles from InitialInterval without jitter and stops after
// MaxAttempts-1 retries.
func (p RetryPolicy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.InitialInterval << uint(p.MaxAttempts)
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
}

// WithRetry runs op, retrying only on domain.ErrVersionConflict.
// Exhausted retries surface domain.ErrBusy; cancellation surfaces
// domain.ErrInterrupted. Any other error is returned on first sight.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalized()

	var (
		result   T
		zero     T
		attempts int
	)

	notify := func(err error, next time.Duration) {
		if policy.OnRetry != nil {
			policy.OnRetry(attempts, err, next)
		}
	}

	err := backoff.RetryNotify(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempts++
		v, err := op(ctx)
		if err == nil {
			result = v
			return nil
		}

		if errors.Is(err, domain.ErrVersionConflict) {
			return err
		}

		return backoff.Permanent(err)
	}, backoff.WithContext(policy.newBackOff(), ctx), notify)

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return zero, fmt.Errorf("%w after %d attempts: %w", domain.ErrInterrupted, attempts, err)
	case errors.Is(err, domain.ErrVersionConflict):
		return zero, fmt.Errorf("%w (%d attempts): %w", domain.ErrBusy, attempts, err)
	default:
		return zero, err
	}
}
