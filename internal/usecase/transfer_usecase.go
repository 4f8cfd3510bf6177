package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
)

// TransferUseCase moves money between the joint account and personal
// accounts as a debit followed by a credit at the bank.
type TransferUseCase struct {
	txManager     TransactionManager
	accountRepo   AccountRepository
	directory     AccountDirectory
	gateway       BankGateway
	outboxRepo    OutboxRepository
	idGen         IDGenerator
	syncer        AccountSyncer
	retry         RetryPolicy
	recorder      Recorder
	logger        zerolog.Logger
	correlationID func() string
}

// TransferConfig holds the collaborators of TransferUseCase.
type TransferConfig struct {
	TxManager   TransactionManager
	AccountRepo AccountRepository
	Directory   AccountDirectory
	Gateway     BankGateway
	OutboxRepo  OutboxRepository
	IDGen       IDGenerator
	Syncer      AccountSyncer // optional; best-effort sync after success
	Retry       RetryPolicy
	Recorder    Recorder
	Logger      zerolog.Logger
	// CorrelationID overrides uuid generation, mainly for tests.
	CorrelationID func() string
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(cfg TransferConfig) *TransferUseCase {
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.CorrelationID == nil {
		cfg.CorrelationID = uuid.NewString
	}

	return &TransferUseCase{
		txManager:     cfg.TxManager,
		accountRepo:   cfg.AccountRepo,
		directory:     cfg.Directory,
		gateway:       cfg.Gateway,
		outboxRepo:    cfg.OutboxRepo,
		idGen:         cfg.IDGen,
		syncer:        cfg.Syncer,
		retry:         cfg.Retry.normalized(),
		recorder:      cfg.Recorder,
		logger:        cfg.Logger,
		correlationID: cfg.CorrelationID,
	}
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Memos                domain.MemoPair
	// Names defaults to the holder names on file when left empty.
	Names domain.NamePair
}

// Transfer debits the source and credits the destination under one
// correlation id. A failed credit after a successful debit is reported as
// domain.ErrCreditFailed and never undone here.
func (uc *TransferUseCase) Transfer(ctx context.Context, caller domain.Caller, input TransferInput) (*domain.TransferResult, error) {
	start := time.Now()

	if input.SourceAccountID == input.DestinationAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	intent, err := uc.resolve(ctx, caller, input)
	if err != nil {
		return nil, err
	}

	log := uc.logger.With().
		Str("correlation_id", intent.CorrelationID).
		Str("source_account_id", intent.Source.ID).
		Str("destination_account_id", intent.Destination.ID).
		Str("amount", intent.Amount.String()).
		Str("party_id", caller.PartyID).
		Logger()

	log.Info().Msg("transfer started")

	// Only the local claim is retried. The bank calls below run once.
	_, err = WithRetry(ctx, uc.retryPolicy(&log), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, uc.claim(ctx, intent)
	})
	if err != nil {
		uc.recorder.TransferFailed(domain.StageClaim)
		log.Warn().Err(err).Msg("transfer rejected before debit")
		return nil, err
	}

	debit := DebitRequest{
		AccountNumber: intent.Source.AccountNumber,
		BankCode:      intent.Source.BankCode,
		OwnerSeqNo:    intent.Source.OwnerSeqNo,
		Amount:        intent.Amount,
		CorrelationID: intent.CorrelationID,
		Memo:          intent.Memos.Debit,
		RequesterName: intent.Names.Requester,
	}
	if _, err := uc.gateway.Debit(ctx, debit); err != nil {
		uc.recorder.TransferFailed(domain.StageDebit)
		log.Warn().Err(err).Msg("debit failed, no credit attempted")
		return nil, &domain.TransferError{Stage: domain.StageDebit, CorrelationID: intent.CorrelationID, Err: err}
	}

	credit := NewCreditRequest(intent.Destination, intent.Names.Holder, intent.Amount, intent.CorrelationID, intent.Memos.Credit)
	if _, err := uc.gateway.Credit(ctx, credit); err != nil {
		uc.recorder.TransferFailed(domain.StageCredit)
		log.Error().Err(err).Msg("credit failed after successful debit, funds in transit")
		uc.alertCreditFailure(ctx, caller, intent, err, &log)
		return nil, &domain.TransferError{Stage: domain.StageCredit, CorrelationID: intent.CorrelationID, Err: err}
	}

	result := &domain.TransferResult{
		Status:        domain.TransferStatusSuccess,
		CorrelationID: intent.CorrelationID,
	}

	balance, err := uc.gateway.Balance(ctx, BalanceRequestFor(intent.Destination))
	if err != nil {
		// The money has moved; a failed read must not look like a failed transfer.
		log.Warn().Err(err).Msg("destination balance unavailable after transfer")
		result.BalanceUnavailable = true
	} else {
		result.BalanceAfter = balance.Balance
	}

	uc.recordCompleted(ctx, caller, intent, result, &log)
	uc.recorder.TransferCompleted(time.Since(start))
	log.Info().Str("balance_after", result.BalanceAfter.String()).Msg("transfer completed")

	uc.syncJointSides(ctx, intent, &log)

	return result, nil
}

func (uc *TransferUseCase) resolve(ctx context.Context, caller domain.Caller, input TransferInput) (*domain.TransferIntent, error) {
	source, err := uc.accountRepo.GetByID(ctx, input.SourceAccountID)
	if err != nil {
		return nil, fmt.Errorf("source account: %w", err)
	}

	destination, err := uc.accountRepo.GetByID(ctx, input.DestinationAccountID)
	if err != nil {
		return nil, fmt.Errorf("destination account: %w", err)
	}

	if err := authorizeAccount(ctx, uc.directory, caller, source); err != nil {
		return nil, err
	}

	if err := authorizeAccount(ctx, uc.directory, caller, destination); err != nil {
		return nil, err
	}

	names := input.Names
	if names.Requester == "" {
		names.Requester = source.HolderName
	}
	if names.Holder == "" {
		names.Holder = destination.HolderName
	}

	intent := &domain.TransferIntent{
		CorrelationID: uc.correlationID(),
		Source:        source,
		Destination:   destination,
		Amount:        input.Amount,
		Memos:         input.Memos,
		Names:         names,
	}

	if err := intent.Validate(); err != nil {
		return nil, err
	}

	return intent, nil
}

// claim re-reads the source account, checks the live balance and commits a
// version bump. Losing the version race returns domain.ErrVersionConflict.
func (uc *TransferUseCase) claim(ctx context.Context, intent *domain.TransferIntent) error {
	current, err := uc.accountRepo.GetByID(ctx, intent.Source.ID)
	if err != nil {
		return err
	}

	balance, err := uc.gateway.Balance(ctx, BalanceRequestFor(current))
	if err != nil {
		return fmt.Errorf("source balance: %w", err)
	}

	if balance.Balance.LessThan(intent.Amount) {
		return fmt.Errorf("%w: balance %s, requested %s", domain.ErrInsufficientFunds, balance.Balance, intent.Amount)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.ClaimVersion(ctx, tx, current.ID, current.Version, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	intent.Source = current
	return nil
}

func (uc *TransferUseCase) retryPolicy(log *zerolog.Logger) RetryPolicy {
	policy := uc.retry
	policy.OnRetry = func(attempt int, err error, next time.Duration) {
		uc.recorder.RetryAttempted("transfer_claim")
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", next).Msg("version conflict, retrying claim")
	}
	return policy
}

// alertCreditFailure writes the outbox alert even if the request context is
// already cancelled.
func (uc *TransferUseCase) alertCreditFailure(ctx context.Context, caller domain.Caller, intent *domain.TransferIntent, cause error, log *zerolog.Logger) {
	ctx = context.WithoutCancel(ctx)

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   intent.CorrelationID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCreditFailed,
		Payload: domain.ToPayload(domain.TransferCreditFailedEvent{
			CorrelationID:        intent.CorrelationID,
			SourceAccountID:      intent.Source.ID,
			DestinationAccountID: intent.Destination.ID,
			Amount:               intent.Amount.String(),
			Reason:               cause.Error(),
			RequestedBy:          caller.PartyID,
		}),
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.writeEvent(ctx, event); err != nil {
		log.Error().Err(err).Msg("failed to record credit failure alert")
	}
}

func (uc *TransferUseCase) recordCompleted(ctx context.Context, caller domain.Caller, intent *domain.TransferIntent, result *domain.TransferResult, log *zerolog.Logger) {
	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   intent.CorrelationID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCompleted,
		Payload: domain.ToPayload(domain.TransferCompletedEvent{
			CorrelationID:        intent.CorrelationID,
			SourceAccountID:      intent.Source.ID,
			DestinationAccountID: intent.Destination.ID,
			Amount:               intent.Amount.String(),
			BalanceAfter:         result.BalanceAfter.String(),
			RequestedBy:          caller.PartyID,
		}),
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.writeEvent(context.WithoutCancel(ctx), event); err != nil {
		log.Warn().Err(err).Msg("failed to record transfer completion event")
	}
}

func (uc *TransferUseCase) writeEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if uc.outboxRepo == nil {
		return nil
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// syncJointSides pulls the settled record for every joint account involved.
// Failures are logged and never fail the transfer.
func (uc *TransferUseCase) syncJointSides(ctx context.Context, intent *domain.TransferIntent, log *zerolog.Logger) {
	if uc.syncer == nil {
		return
	}

	for _, account := range []*domain.Account{intent.Source, intent.Destination} {
		if !account.IsJoint() {
			continue
		}

		imported, err := uc.syncer.Sync(ctx, account.ID)
		if err != nil {
			log.Warn().
				Err(fmt.Errorf("%w: %w", domain.ErrReconciliationPartialFailure, err)).
				Str("account_id", account.ID).
				Msg("post-transfer sync failed")
			continue
		}

		log.Debug().Str("account_id", account.ID).Int("imported", imported).Msg("post-transfer sync done")
	}
}
