package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/jointledger/internal/domain"
)

// ReconciliationUseCase imports settled bank transactions into the ledger.
// It is the only writer of ledger entries.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	outboxRepo  OutboxRepository
	directory   AccountDirectory
	gateway     BankGateway
	locker      SyncLocker
	idGen       IDGenerator
	retry       RetryPolicy
	lookback    time.Duration
	location    *time.Location
	now         func() time.Time
	recorder    Recorder
	logger      zerolog.Logger
}

// ReconciliationConfig holds the collaborators of ReconciliationUseCase.
type ReconciliationConfig struct {
	TxManager   TransactionManager
	AccountRepo AccountRepository
	LedgerRepo  LedgerRepository
	OutboxRepo  OutboxRepository
	Directory   AccountDirectory
	Gateway     BankGateway
	Locker      SyncLocker // optional; nil runs unserialized
	IDGen       IDGenerator
	Retry       RetryPolicy
	Lookback    time.Duration  // defaults to domain.DefaultSyncLookback
	Location    *time.Location // zone of the bank's settlement dates
	Clock       func() time.Time
	Recorder    Recorder
	Logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(cfg ReconciliationConfig) *ReconciliationUseCase {
	if cfg.Lookback <= 0 {
		cfg.Lookback = domain.DefaultSyncLookback
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}

	return &ReconciliationUseCase{
		txManager:   cfg.TxManager,
		accountRepo: cfg.AccountRepo,
		ledgerRepo:  cfg.LedgerRepo,
		outboxRepo:  cfg.OutboxRepo,
		directory:   cfg.Directory,
		gateway:     cfg.Gateway,
		locker:      cfg.Locker,
		idGen:       cfg.IDGen,
		retry:       cfg.Retry.normalized(),
		lookback:    cfg.Lookback,
		location:    cfg.Location,
		now:         cfg.Clock,
		recorder:    cfg.Recorder,
		logger:      cfg.Logger,
	}
}

// SyncWindow is the settlement-time range covered by one sync.
type SyncWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside [From, To].
func (w SyncWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// SyncForCaller runs Sync after checking the caller may act on the account.
func (uc *ReconciliationUseCase) SyncForCaller(ctx context.Context, caller domain.Caller, accountID string) (int, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	if err := authorizeAccount(ctx, uc.directory, caller, account); err != nil {
		return 0, err
	}

	return uc.Sync(ctx, accountID)
}

// Sync imports new settled transactions for the account and returns how
// many were inserted. The inserts and the watermark advance commit
// together, so a failed batch leaves the watermark where it was.
func (uc *ReconciliationUseCase) Sync(ctx context.Context, accountID string) (int, error) {
	start := time.Now()

	var imported int
	run := func(ctx context.Context) error {
		n, err := uc.sync(ctx, accountID)
		imported = n
		return err
	}

	var err error
	if uc.locker != nil {
		err = uc.locker.WithLock(ctx, syncLockPrefix+accountID, run)
	} else {
		err = run(ctx)
	}

	log := uc.logger.With().Str("account_id", accountID).Logger()
	if err != nil {
		uc.recorder.SyncFailed()
		log.Warn().Err(err).Msg("ledger sync failed")
		return 0, err
	}

	uc.recorder.SyncCompleted(imported, time.Since(start))
	log.Info().Int("imported", imported).Dur("duration", time.Since(start)).Msg("ledger sync completed")

	return imported, nil
}

func (uc *ReconciliationUseCase) sync(ctx context.Context, accountID string) (int, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}

	now := uc.now().UTC()
	window := SyncWindow{From: account.SyncWindowStart(now, uc.lookback), To: now}

	records, err := uc.fetch(ctx, account, window)
	if err != nil {
		return 0, err
	}

	policy := uc.retry
	policy.OnRetry = func(attempt int, err error, next time.Duration) {
		uc.recorder.RetryAttempted("ledger_sync")
		uc.logger.Warn().Err(err).Str("account_id", accountID).Int("attempt", attempt).Msg("watermark moved, retrying batch")
	}

	return WithRetry(ctx, policy, func(ctx context.Context) (int, error) {
		return uc.importBatch(ctx, accountID, records, window)
	})
}

// fetch asks the bank by calendar date and keeps records settled inside the
// window.
func (uc *ReconciliationUseCase) fetch(ctx context.Context, account *domain.Account, window SyncWindow) ([]domain.RemoteTransaction, error) {
	req := HistoryRequest{
		OwnerSeqNo:    account.OwnerSeqNo,
		BankCode:      account.BankCode,
		AccountNumber: account.AccountNumber,
		FromDate:      window.From.In(uc.location).Format(domain.SettledDateLayout),
		ToDate:        window.To.In(uc.location).Format(domain.SettledDateLayout),
	}

	history, err := uc.gateway.TransactionHistory(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transaction history: %w", err)
	}

	records := make([]domain.RemoteTransaction, 0, len(history))
	for _, rec := range history {
		settledAt, err := rec.SettledAt(uc.location)
		if err != nil {
			// Skipping would let the watermark pass the record for good.
			return nil, err
		}
		if window.Contains(settledAt) {
			records = append(records, rec)
		}
	}

	return records, nil
}

func (uc *ReconciliationUseCase) importBatch(ctx context.Context, accountID string, records []domain.RemoteTransaction, window SyncWindow) (int, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDTx(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}

	seenRemote := make(map[string]struct{})
	seenFallback := make(map[string]struct{})
	imported := 0

	for _, rec := range records {
		dup, err := uc.isDuplicate(ctx, tx, accountID, rec, seenRemote, seenFallback)
		if err != nil {
			return 0, err
		}
		if dup {
			continue
		}

		entry := rec.ToEntry(uc.idGen.Generate(), accountID, window.To)
		if err := uc.ledgerRepo.Insert(ctx, tx, entry); err != nil {
			return 0, fmt.Errorf("insert entry: %w", err)
		}
		imported++
	}

	if err := uc.accountRepo.AdvanceWatermark(ctx, tx, accountID, account.Version, window.To); err != nil {
		return 0, err
	}

	if imported > 0 && uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeLedgerSynced,
			Payload: domain.ToPayload(domain.LedgerSyncedEvent{
				AccountID:   accountID,
				Imported:    imported,
				WindowStart: window.From.Format(time.RFC3339),
				WindowEnd:   window.To.Format(time.RFC3339),
			}),
			CreatedAt: window.To,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return imported, nil
}

// isDuplicate checks the remote id when present, otherwise the fallback
// key. Both the store and the records already seen in this batch count.
func (uc *ReconciliationUseCase) isDuplicate(
	ctx context.Context,
	tx Transaction,
	accountID string,
	rec domain.RemoteTransaction,
	seenRemote, seenFallback map[string]struct{},
) (bool, error) {
	if rec.HasRemoteID() {
		if _, ok := seenRemote[*rec.RemoteID]; ok {
			return true, nil
		}
		seenRemote[*rec.RemoteID] = struct{}{}

		return uc.ledgerRepo.ExistsByRemoteID(ctx, tx, *rec.RemoteID)
	}

	key := rec.FallbackKey(accountID)
	if _, ok := seenFallback[key.String()]; ok {
		return true, nil
	}
	seenFallback[key.String()] = struct{}{}

	return uc.ledgerRepo.ExistsByFallbackKey(ctx, tx, key)
}
