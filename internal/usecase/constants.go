package usecase

import "time"

const (
	// DefaultRetryMaxAttempts caps attempts of a version-checked write.
	DefaultRetryMaxAttempts = 3

	// DefaultRetryInitialInterval is the first backoff sleep; it doubles on
	// every further retry.
	DefaultRetryInitialInterval = 100 * time.Millisecond

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// syncLockPrefix namespaces per-account reconciliation locks.
	syncLockPrefix = "sync:account:"
)
