package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/infrastructure/postgres/generated"
	"github.com/iho/jointledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository and
// usecase.AccountDirectory.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	err := txQueries(tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:            account.ID,
		Kind:          string(account.Kind),
		OwnerID:       account.OwnerID,
		HolderName:    account.HolderName,
		AccountNumber: account.AccountNumber,
		BankCode:      account.BankCode,
		OwnerSeqNo:    account.OwnerSeqNo,
		Version:       account.Version,
		LastSyncedAt:  timePtrToPgTimestamptz(account.LastSyncedAt),
		CreatedAt:     timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(account.UpdatedAt),
	})

	return translateError(err)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return getAccount(ctx, r.queries, id)
}

// GetByIDTx retrieves an account by ID inside tx.
func (r *AccountRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	return getAccount(ctx, txQueries(tx), id)
}

func getAccount(ctx context.Context, q *generated.Queries, id string) (*domain.Account, error) {
	row, err := q.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// ClaimVersion bumps the version if it still equals expected.
func (r *AccountRepository) ClaimVersion(ctx context.Context, tx usecase.Transaction, id string, expected int64, updatedAt time.Time) error {
	n, err := txQueries(tx).ClaimAccountVersion(ctx, generated.ClaimAccountVersionParams{
		ID:        id,
		Version:   expected,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})

	return versionResult(n, err)
}

// AdvanceWatermark records syncedAt as the last sync and bumps the version.
func (r *AccountRepository) AdvanceWatermark(ctx context.Context, tx usecase.Transaction, id string, expected int64, syncedAt time.Time) error {
	n, err := txQueries(tx).AdvanceAccountWatermark(ctx, generated.AdvanceAccountWatermarkParams{
		ID:           id,
		Version:      expected,
		LastSyncedAt: timeToPgTimestamptz(syncedAt),
	})

	return versionResult(n, err)
}

func versionResult(rows int64, err error) error {
	if err != nil {
		return translateError(err)
	}
	if rows == 0 {
		return domain.ErrVersionConflict
	}
	return nil
}

// AddJointMember links a party to a joint account.
func (r *AccountRepository) AddJointMember(ctx context.Context, tx usecase.Transaction, accountID, partyID string, createdAt time.Time) error {
	err := txQueries(tx).AddJointMember(ctx, generated.AddJointMemberParams{
		PartyID:   partyID,
		AccountID: accountID,
		CreatedAt: timeToPgTimestamptz(createdAt),
	})

	return translateError(err)
}

// JointAccountFor returns the joint account partyID belongs to.
func (r *AccountRepository) JointAccountFor(ctx context.Context, partyID string) (*domain.Account, error) {
	row, err := r.queries.GetJointAccountForParty(ctx, partyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoJointAccount
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:            row.ID,
		Kind:          domain.AccountKind(row.Kind),
		OwnerID:       row.OwnerID,
		HolderName:    row.HolderName,
		AccountNumber: row.AccountNumber,
		BankCode:      row.BankCode,
		OwnerSeqNo:    row.OwnerSeqNo,
		Version:       row.Version,
		LastSyncedAt:  pgTimestamptzToTimePtr(row.LastSyncedAt),
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
