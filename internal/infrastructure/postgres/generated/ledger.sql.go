package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countLedgerEntriesByAccount = `-- name: CountLedgerEntriesByAccount :one
SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1
`

func (q *Queries) CountLedgerEntriesByAccount(ctx context.Context, accountID string) (int64, error) {
	row := q.db.QueryRow(ctx, countLedgerEntriesByAccount, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getLedgerEntryByID = `-- name: GetLedgerEntryByID :one
SELECT id, remote_id, account_id, direction, amount, counterparty_from, counterparty_to, memo, settled_date, settled_time, balance_after, review_status, category_id, created_at, updated_at FROM ledger_entries WHERE id = $1
`

func (q *Queries) GetLedgerEntryByID(ctx context.Context, id string) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByID, id)
	var i LedgerEntry
	err := row.Scan(
		&i.ID,
		&i.RemoteID,
		&i.AccountID,
		&i.Direction,
		&i.Amount,
		&i.CounterpartyFrom,
		&i.CounterpartyTo,
		&i.Memo,
		&i.SettledDate,
		&i.SettledTime,
		&i.BalanceAfter,
		&i.ReviewStatus,
		&i.CategoryID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLedgerEntryByIDForUpdate = `-- name: GetLedgerEntryByIDForUpdate :one
SELECT id, remote_id, account_id, direction, amount, counterparty_from, counterparty_to, memo, settled_date, settled_time, balance_after, review_status, category_id, created_at, updated_at FROM ledger_entries WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetLedgerEntryByIDForUpdate(ctx context.Context, id string) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByIDForUpdate, id)
	var i LedgerEntry
	err := row.Scan(
		&i.ID,
		&i.RemoteID,
		&i.AccountID,
		&i.Direction,
		&i.Amount,
		&i.CounterpartyFrom,
		&i.CounterpartyTo,
		&i.Memo,
		&i.SettledDate,
		&i.SettledTime,
		&i.BalanceAfter,
		&i.ReviewStatus,
		&i.CategoryID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertLedgerEntry = `-- name: InsertLedgerEntry :exec
INSERT INTO ledger_entries (id, remote_id, account_id, direction, amount, counterparty_from, counterparty_to, memo, settled_date, settled_time, balance_after, review_status, category_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

type InsertLedgerEntryParams struct {
	ID               string             `json:"id"`
	RemoteID         pgtype.Text        `json:"remote_id"`
	AccountID        string             `json:"account_id"`
	Direction        string             `json:"direction"`
	Amount           pgtype.Numeric     `json:"amount"`
	CounterpartyFrom pgtype.Text        `json:"counterparty_from"`
	CounterpartyTo   pgtype.Text        `json:"counterparty_to"`
	Memo             string             `json:"memo"`
	SettledDate      string             `json:"settled_date"`
	SettledTime      string             `json:"settled_time"`
	BalanceAfter     pgtype.Numeric     `json:"balance_after"`
	ReviewStatus     string             `json:"review_status"`
	CategoryID       pgtype.Text        `json:"category_id"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) InsertLedgerEntry(ctx context.Context, arg InsertLedgerEntryParams) error {
	_, err := q.db.Exec(ctx, insertLedgerEntry,
		arg.ID,
		arg.RemoteID,
		arg.AccountID,
		arg.Direction,
		arg.Amount,
		arg.CounterpartyFrom,
		arg.CounterpartyTo,
		arg.Memo,
		arg.SettledDate,
		arg.SettledTime,
		arg.BalanceAfter,
		arg.ReviewStatus,
		arg.CategoryID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const ledgerEntryExistsByFallbackKey = `-- name: LedgerEntryExistsByFallbackKey :one
SELECT EXISTS (
    SELECT 1 FROM ledger_entries
    WHERE account_id = $1 AND settled_date = $2 AND settled_time = $3 AND amount = $4
)
`

type LedgerEntryExistsByFallbackKeyParams struct {
	AccountID   string         `json:"account_id"`
	SettledDate string         `json:"settled_date"`
	SettledTime string         `json:"settled_time"`
	Amount      pgtype.Numeric `json:"amount"`
}

func (q *Queries) LedgerEntryExistsByFallbackKey(ctx context.Context, arg LedgerEntryExistsByFallbackKeyParams) (bool, error) {
	row := q.db.QueryRow(ctx, ledgerEntryExistsByFallbackKey,
		arg.AccountID,
		arg.SettledDate,
		arg.SettledTime,
		arg.Amount,
	)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const ledgerEntryExistsByRemoteID = `-- name: LedgerEntryExistsByRemoteID :one
SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE remote_id = $1)
`

func (q *Queries) LedgerEntryExistsByRemoteID(ctx context.Context, remoteID pgtype.Text) (bool, error) {
	row := q.db.QueryRow(ctx, ledgerEntryExistsByRemoteID, remoteID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listLedgerEntriesByAccount = `-- name: ListLedgerEntriesByAccount :many
SELECT id, remote_id, account_id, direction, amount, counterparty_from, counterparty_to, memo, settled_date, settled_time, balance_after, review_status, category_id, created_at, updated_at FROM ledger_entries
WHERE account_id = $1
ORDER BY settled_date DESC, settled_time DESC, id DESC
LIMIT $2 OFFSET $3
`

type ListLedgerEntriesByAccountParams struct {
	AccountID string `json:"account_id"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

func (q *Queries) ListLedgerEntriesByAccount(ctx context.Context, arg ListLedgerEntriesByAccountParams) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntriesByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		var i LedgerEntry
		if err := rows.Scan(
			&i.ID,
			&i.RemoteID,
			&i.AccountID,
			&i.Direction,
			&i.Amount,
			&i.CounterpartyFrom,
			&i.CounterpartyTo,
			&i.Memo,
			&i.SettledDate,
			&i.SettledTime,
			&i.BalanceAfter,
			&i.ReviewStatus,
			&i.CategoryID,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateLedgerEntryReview = `-- name: UpdateLedgerEntryReview :execrows
UPDATE ledger_entries SET memo = $2, category_id = $3, review_status = $4, updated_at = $5
WHERE id = $1
`

type UpdateLedgerEntryReviewParams struct {
	ID           string             `json:"id"`
	Memo         string             `json:"memo"`
	CategoryID   pgtype.Text        `json:"category_id"`
	ReviewStatus string             `json:"review_status"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLedgerEntryReview(ctx context.Context, arg UpdateLedgerEntryReviewParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLedgerEntryReview,
		arg.ID,
		arg.Memo,
		arg.CategoryID,
		arg.ReviewStatus,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
