package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const addJointMember = `-- name: AddJointMember :exec
INSERT INTO joint_members (party_id, account_id, created_at)
VALUES ($1, $2, $3)
`

type AddJointMemberParams struct {
	PartyID   string             `json:"party_id"`
	AccountID string             `json:"account_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) AddJointMember(ctx context.Context, arg AddJointMemberParams) error {
	_, err := q.db.Exec(ctx, addJointMember, arg.PartyID, arg.AccountID, arg.CreatedAt)
	return err
}

const advanceAccountWatermark = `-- name: AdvanceAccountWatermark :execrows
UPDATE accounts SET version = version + 1, last_synced_at = $3, updated_at = $3
WHERE id = $1 AND version = $2
`

type AdvanceAccountWatermarkParams struct {
	ID           string             `json:"id"`
	Version      int64              `json:"version"`
	LastSyncedAt pgtype.Timestamptz `json:"last_synced_at"`
}

func (q *Queries) AdvanceAccountWatermark(ctx context.Context, arg AdvanceAccountWatermarkParams) (int64, error) {
	result, err := q.db.Exec(ctx, advanceAccountWatermark, arg.ID, arg.Version, arg.LastSyncedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const claimAccountVersion = `-- name: ClaimAccountVersion :execrows
UPDATE accounts SET version = version + 1, updated_at = $3
WHERE id = $1 AND version = $2
`

type ClaimAccountVersionParams struct {
	ID        string             `json:"id"`
	Version   int64              `json:"version"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) ClaimAccountVersion(ctx context.Context, arg ClaimAccountVersionParams) (int64, error) {
	result, err := q.db.Exec(ctx, claimAccountVersion, arg.ID, arg.Version, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, kind, owner_id, holder_name, account_number, bank_code, owner_seq_no, version, last_synced_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateAccountParams struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	OwnerID       string             `json:"owner_id"`
	HolderName    string             `json:"holder_name"`
	AccountNumber string             `json:"account_number"`
	BankCode      string             `json:"bank_code"`
	OwnerSeqNo    string             `json:"owner_seq_no"`
	Version       int64              `json:"version"`
	LastSyncedAt  pgtype.Timestamptz `json:"last_synced_at"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.Kind,
		arg.OwnerID,
		arg.HolderName,
		arg.AccountNumber,
		arg.BankCode,
		arg.OwnerSeqNo,
		arg.Version,
		arg.LastSyncedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, kind, owner_id, holder_name, account_number, bank_code, owner_seq_no, version, last_synced_at, created_at, updated_at FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.OwnerID,
		&i.HolderName,
		&i.AccountNumber,
		&i.BankCode,
		&i.OwnerSeqNo,
		&i.Version,
		&i.LastSyncedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getJointAccountForParty = `-- name: GetJointAccountForParty :one
SELECT a.id, a.kind, a.owner_id, a.holder_name, a.account_number, a.bank_code, a.owner_seq_no, a.version, a.last_synced_at, a.created_at, a.updated_at
FROM accounts a
JOIN joint_members m ON m.account_id = a.id
WHERE m.party_id = $1 AND a.kind = 'joint'
`

func (q *Queries) GetJointAccountForParty(ctx context.Context, partyID string) (Account, error) {
	row := q.db.QueryRow(ctx, getJointAccountForParty, partyID)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.OwnerID,
		&i.HolderName,
		&i.AccountNumber,
		&i.BankCode,
		&i.OwnerSeqNo,
		&i.Version,
		&i.LastSyncedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccounts = `-- name: ListAccounts :many
SELECT id, kind, owner_id, holder_name, account_number, bank_code, owner_seq_no, version, last_synced_at, created_at, updated_at FROM accounts
ORDER BY id
LIMIT $1 OFFSET $2
`

type ListAccountsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListAccounts(ctx context.Context, arg ListAccountsParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.OwnerID,
			&i.HolderName,
			&i.AccountNumber,
			&i.BankCode,
			&i.OwnerSeqNo,
			&i.Version,
			&i.LastSyncedAt,
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
