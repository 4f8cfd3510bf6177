package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/infrastructure/postgres/generated"
	"github.com/iho/jointledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository. Entries are only
// ever inserted; updates touch the review fields alone.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepository(pool)
}

func newLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Insert appends an imported entry.
func (r *LedgerRepository) Insert(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	err := txQueries(tx).InsertLedgerEntry(ctx, generated.InsertLedgerEntryParams{
		ID:               entry.ID,
		RemoteID:         stringPtrToPgText(entry.RemoteID),
		AccountID:        entry.AccountID,
		Direction:        string(entry.Direction),
		Amount:           decimalToNumeric(entry.Amount),
		CounterpartyFrom: stringPtrToPgText(entry.CounterpartyFrom),
		CounterpartyTo:   stringPtrToPgText(entry.CounterpartyTo),
		Memo:             entry.Memo,
		SettledDate:      entry.SettledDate,
		SettledTime:      entry.SettledTime,
		BalanceAfter:     decimalToNumeric(entry.BalanceAfter),
		ReviewStatus:     string(entry.ReviewStatus),
		CategoryID:       stringPtrToPgText(entry.CategoryID),
		CreatedAt:        timeToPgTimestamptz(entry.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(entry.UpdatedAt),
	})

	return translateError(err)
}

// ExistsByRemoteID reports whether an entry with remoteID was imported.
func (r *LedgerRepository) ExistsByRemoteID(ctx context.Context, tx usecase.Transaction, remoteID string) (bool, error) {
	return txQueries(tx).LedgerEntryExistsByRemoteID(ctx, pgtype.Text{String: remoteID, Valid: true})
}

// ExistsByFallbackKey reports whether an entry matches key. Amounts compare
// numerically, so 100 and 100.00 match.
func (r *LedgerRepository) ExistsByFallbackKey(ctx context.Context, tx usecase.Transaction, key domain.FallbackKey) (bool, error) {
	return txQueries(tx).LedgerEntryExistsByFallbackKey(ctx, generated.LedgerEntryExistsByFallbackKeyParams{
		AccountID:   key.AccountID,
		SettledDate: key.SettledDate,
		SettledTime: key.SettledTime,
		Amount:      decimalToNumeric(key.Amount),
	})
}

// GetByID retrieves an entry by ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetLedgerEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToLedgerEntry(row), nil
}

// GetByIDForUpdate retrieves an entry by ID with a FOR UPDATE lock.
func (r *LedgerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEntry, error) {
	row, err := txQueries(tx).GetLedgerEntryByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToLedgerEntry(row), nil
}

// UpdateReview persists memo, category and review status.
func (r *LedgerRepository) UpdateReview(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	n, err := txQueries(tx).UpdateLedgerEntryReview(ctx, generated.UpdateLedgerEntryReviewParams{
		ID:           entry.ID,
		Memo:         entry.Memo,
		CategoryID:   stringPtrToPgText(entry.CategoryID),
		ReviewStatus: string(entry.ReviewStatus),
		UpdatedAt:    timeToPgTimestamptz(entry.UpdatedAt),
	})
	if err != nil {
		return translateError(err)
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// ListByAccount lists entries newest first.
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntriesByAccount(ctx, generated.ListLedgerEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToLedgerEntry(row))
	}

	return entries, nil
}

// CountByAccount counts the entries of an account.
func (r *LedgerRepository) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	return r.queries.CountLedgerEntriesByAccount(ctx, accountID)
}

func rowToLedgerEntry(row generated.LedgerEntry) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:               row.ID,
		RemoteID:         pgTextToStringPtr(row.RemoteID),
		AccountID:        row.AccountID,
		Direction:        domain.Direction(row.Direction),
		Amount:           numericToDecimal(row.Amount),
		CounterpartyFrom: pgTextToStringPtr(row.CounterpartyFrom),
		CounterpartyTo:   pgTextToStringPtr(row.CounterpartyTo),
		Memo:             row.Memo,
		SettledDate:      row.SettledDate,
		SettledTime:      row.SettledTime,
		BalanceAfter:     numericToDecimal(row.BalanceAfter),
		ReviewStatus:     domain.ReviewStatus(row.ReviewStatus),
		CategoryID:       pgTextToStringPtr(row.CategoryID),
		CreatedAt:        row.CreatedAt.Time,
		UpdatedAt:        row.UpdatedAt.Time,
	}
}
