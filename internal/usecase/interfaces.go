package usecase

import (
	"context"
	"time"

	"github.com/iho/jointledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// ClaimVersion bumps the version from expected to expected+1.
	// It returns domain.ErrVersionConflict when the row moved on.
	ClaimVersion(ctx context.Context, tx Transaction, id string, expected int64, updatedAt time.Time) error
	// AdvanceWatermark sets LastSyncedAt and bumps the version, with the
	// same conflict semantics as ClaimVersion.
	AdvanceWatermark(ctx context.Context, tx Transaction, id string, expected int64, syncedAt time.Time) error
	AddJointMember(ctx context.Context, tx Transaction, accountID, partyID string, createdAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// AccountDirectory resolves the joint account a party belongs to.
type AccountDirectory interface {
	// JointAccountFor returns domain.ErrNoJointAccount when the party has none.
	JointAccountFor(ctx context.Context, partyID string) (*domain.Account, error)
}

// LedgerRepository defines data access for ledger entries.
type LedgerRepository interface {
	Insert(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ExistsByRemoteID(ctx context.Context, tx Transaction, remoteID string) (bool, error)
	ExistsByFallbackKey(ctx context.Context, tx Transaction, key domain.FallbackKey) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LedgerEntry, error)
	UpdateReview(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// SyncLocker serializes work on one key across processes.
type SyncLocker interface {
	// WithLock runs fn while holding key. It returns domain.ErrSyncInProgress
	// when the lock cannot be acquired.
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// AccountSyncer imports settled bank transactions for one account.
type AccountSyncer interface {
	Sync(ctx context.Context, accountID string) (int, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// Recorder receives operational measurements from the use cases.
type Recorder interface {
	TransferCompleted(d time.Duration)
	TransferFailed(stage domain.TransferStage)
	RetryAttempted(operation string)
	SyncCompleted(imported int, d time.Duration)
	SyncFailed()
}

type nopRecorder struct{}

func (nopRecorder) TransferCompleted(time.Duration) {}
func (nopRecorder) TransferFailed(domain.TransferStage) {}
func (nopRecorder) RetryAttempted(string) {}
func (nopRecorder) SyncCompleted(int, time.Duration) {}
func (nopRecorder) SyncFailed() {}
