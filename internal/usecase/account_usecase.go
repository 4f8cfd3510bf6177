package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/iho/jointledger/internal/domain"
)

// AccountUseCase handles account registration and lookups.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	directory   AccountDirectory
	gateway     BankGateway
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	directory AccountDirectory,
	gateway BankGateway,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		directory:   directory,
		gateway:     gateway,
		idGen:       idGen,
	}
}

// RegisterAccountInput represents input for registering an account.
type RegisterAccountInput struct {
	Kind          domain.AccountKind
	OwnerID       string
	HolderName    string
	AccountNumber string
	BankCode      string
	OwnerSeqNo    string
	// Members lists the parties sharing a joint account.
	Members []string
}

// RegisterAccount stores a bank account and, for joint accounts, its members.
func (uc *AccountUseCase) RegisterAccount(ctx context.Context, input RegisterAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	account := &domain.Account{
		ID:            uc.idGen.Generate(),
		Kind:          input.Kind,
		OwnerID:       strings.TrimSpace(input.OwnerID),
		HolderName:    strings.TrimSpace(input.HolderName),
		AccountNumber: input.AccountNumber,
		BankCode:      input.BankCode,
		OwnerSeqNo:    input.OwnerSeqNo,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if !account.IsJoint() && len(input.Members) > 0 {
		return nil, domain.ErrInvalidAccountKind
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	for _, partyID := range input.Members {
		if err := uc.accountRepo.AddJointMember(ctx, tx, account.ID, strings.TrimSpace(partyID), now); err != nil {
			return nil, err
		}
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountCreated,
			Payload: domain.ToPayload(domain.AccountCreatedEvent{
				AccountID: account.ID,
				Kind:      string(account.Kind),
				OwnerID:   account.OwnerID,
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

	return account, nil
}

// AddJointMember adds a party to an existing joint account.
func (uc *AccountUseCase) AddJointMember(ctx context.Context, accountID, partyID string) error {
	partyID = strings.TrimSpace(partyID)
	if partyID == "" {
		return domain.ErrInvalidOwner
	}

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !account.IsJoint() {
		return domain.ErrInvalidAccountKind
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.AddJointMember(ctx, tx, accountID, partyID, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetAccount retrieves an account the caller may act on.
func (uc *AccountUseCase) GetAccount(ctx context.Context, caller domain.Caller, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeAccount(ctx, uc.directory, caller, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetBalance reads the live balance from the bank.
func (uc *AccountUseCase) GetBalance(ctx context.Context, caller domain.Caller, id string) (*BalanceResponse, error) {
	account, err := uc.GetAccount(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	return uc.gateway.Balance(ctx, BalanceRequestFor(account))
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists registered accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
