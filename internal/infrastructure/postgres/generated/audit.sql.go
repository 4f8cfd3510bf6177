package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAuditLog = `-- name: CreateAuditLog :exec
INSERT INTO audit_logs (id, party_id, action, resource_type, resource_id, before_state, after_state, status, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateAuditLogParams struct {
	ID           string             `json:"id"`
	PartyID      string             `json:"party_id"`
	Action       string             `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	BeforeState  []byte             `json:"before_state"`
	AfterState   []byte             `json:"after_state"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateAuditLog(ctx context.Context, arg CreateAuditLogParams) error {
	_, err := q.db.Exec(ctx, createAuditLog,
		arg.ID,
		arg.PartyID,
		arg.Action,
		arg.ResourceType,
		arg.ResourceID,
		arg.BeforeState,
		arg.AfterState,
		arg.Status,
		arg.ErrorMessage,
		arg.CreatedAt,
	)
	return err
}

const getAuditLogsByResource = `-- name: GetAuditLogsByResource :many
SELECT id, party_id, action, resource_type, resource_id, before_state, after_state, status, error_message, created_at FROM audit_logs
WHERE resource_type = $1 AND resource_id = $2
ORDER BY created_at
`

type GetAuditLogsByResourceParams struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
}

func (q *Queries) GetAuditLogsByResource(ctx context.Context, arg GetAuditLogsByResourceParams) ([]AuditLog, error) {
	rows, err := q.db.Query(ctx, getAuditLogsByResource, arg.ResourceType, arg.ResourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuditLog
	for rows.Next() {
		var i AuditLog
		if err := rows.Scan(
			&i.ID,
			&i.PartyID,
			&i.Action,
			&i.ResourceType,
			&i.ResourceID,
			&i.BeforeState,
			&i.AfterState,
			&i.Status,
			&i.ErrorMessage,
			&i.CreatedAt,
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
