package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/jointledger/internal/domain"
)

// LedgerUseCase serves ledger reads and the review workflow.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	directory   AccountDirectory
	syncer      AccountSyncer
	idGen       IDGenerator
	logger      zerolog.Logger
	syncGroup   singleflight.Group
}

// LedgerConfig holds the collaborators of LedgerUseCase.
type LedgerConfig struct {
	TxManager   TransactionManager
	AccountRepo AccountRepository
	LedgerRepo  LedgerRepository
	OutboxRepo  OutboxRepository
	AuditRepo   AuditRepository
	Directory   AccountDirectory
	Syncer      AccountSyncer // optional; refreshes the ledger before reads
	IDGen       IDGenerator
	Logger      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   cfg.TxManager,
		accountRepo: cfg.AccountRepo,
		ledgerRepo:  cfg.LedgerRepo,
		outboxRepo:  cfg.OutboxRepo,
		auditRepo:   cfg.AuditRepo,
		directory:   cfg.Directory,
		syncer:      cfg.Syncer,
		idGen:       cfg.IDGen,
		logger:      cfg.Logger,
	}
}

// LedgerPage is one page of an account's ledger, newest first.
type LedgerPage struct {
	Entries []*domain.LedgerEntry
	Page    int
	Size    int
	Total   int64
}

// ListLedger returns a page of entries after an opportunistic sync.
func (uc *LedgerUseCase) ListLedger(ctx context.Context, caller domain.Caller, accountID string, page, size int) (*LedgerPage, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := authorizeAccount(ctx, uc.directory, caller, account); err != nil {
		return nil, err
	}

	uc.refresh(ctx, accountID)

	page, size = domain.ValidatePagination(page, size)

	entries, err := uc.ledgerRepo.ListByAccount(ctx, accountID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	total, err := uc.ledgerRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &LedgerPage{Entries: entries, Page: page, Size: size, Total: total}, nil
}

// refresh runs one sync per account at a time; concurrent readers share it.
// A failed sync still lets the read proceed.
func (uc *LedgerUseCase) refresh(ctx context.Context, accountID string) {
	if uc.syncer == nil {
		return
	}

	_, err, shared := uc.syncGroup.Do(accountID, func() (any, error) {
		return uc.syncer.Sync(ctx, accountID)
	})
	if err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Bool("shared", shared).Msg("sync before ledger read failed")
	}
}

// ReviewInput represents a review transition request.
type ReviewInput struct {
	Status     domain.ReviewStatus
	CategoryID *string
	Memo       *string // nil keeps the current memo
}

// ReviewEntry marks an entry REVIEWED. Only members of the entry's joint
// account may review it; others get domain.ErrForbidden.
func (uc *LedgerUseCase) ReviewEntry(ctx context.Context, caller domain.Caller, entryID string, input ReviewInput) (*domain.LedgerEntry, error) {
	existing, err := uc.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if err := requireJointAccount(ctx, uc.directory, caller, existing.AccountID); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := uc.ledgerRepo.GetByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(entry)
	now := time.Now().UTC()

	if err := entry.Review(input.Status, input.CategoryID, input.Memo, now); err != nil {
		return nil, err
	}

	if err := uc.ledgerRepo.UpdateReview(ctx, tx, entry); err != nil {
		return nil, err
	}

	if uc.auditRepo != nil {
		audit := &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			PartyID:      caller.PartyID,
			Action:       string(domain.AuditActionLedgerEntryReview),
			ResourceType: domain.AuditResourceLedgerEntry,
			ResourceID:   entry.ID,
			BeforeState:  before,
			AfterState:   domain.MarshalState(entry),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		}
		if err := uc.auditRepo.CreateTx(ctx, tx, audit); err != nil {
			return nil, err
		}
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   entry.ID,
			AggregateType: domain.AggregateTypeLedgerEntry,
			EventType:     domain.EventTypeEntryReviewed,
			Payload: domain.ToPayload(domain.EntryReviewedEvent{
				EntryID:    entry.ID,
				AccountID:  entry.AccountID,
				CategoryID: entry.CategoryID,
				ReviewedBy: caller.PartyID,
			}),
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// EntryHistory returns the audit trail of an entry for members of its
// joint account.
func (uc *LedgerUseCase) EntryHistory(ctx context.Context, caller domain.Caller, entryID string) ([]*domain.AuditLog, error) {
	entry, err := uc.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if err := requireJointAccount(ctx, uc.directory, caller, entry.AccountID); err != nil {
		return nil, err
	}

	if uc.auditRepo == nil {
		return []*domain.AuditLog{}, nil
	}

	return uc.auditRepo.GetByResourceID(ctx, domain.AuditResourceLedgerEntry, entryID)
}
