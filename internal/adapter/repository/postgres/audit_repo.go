package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/infrastructure/postgres/generated"
	"github.com/iho/jointledger/internal/usecase"
)

// AuditRepository implements audit log persistence
type AuditRepository struct {
	queries *generated.Queries
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return newAuditRepository(pool)
}

func newAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{queries: generated.New(db)}
}

// CreateTx inserts an audit log entry within a transaction
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	before, err := marshalState(log.BeforeState)
	if err != nil {
		return err
	}

	after, err := marshalState(log.AfterState)
	if err != nil {
		return err
	}

	return txQueries(tx).CreateAuditLog(ctx, generated.CreateAuditLogParams{
		ID:           log.ID,
		PartyID:      log.PartyID,
		Action:       log.Action,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       log.Status,
		ErrorMessage: log.ErrorMessage,
		CreatedAt:    timeToPgTimestamptz(log.CreatedAt),
	})
}

// GetByResourceID retrieves all audit logs for a specific resource
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	rows, err := r.queries.GetAuditLogsByResource(ctx, generated.GetAuditLogsByResourceParams{
		ResourceType: resourceType,
		ResourceID:   resourceID,
	})
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		log := &domain.AuditLog{
			ID:           row.ID,
			PartyID:      row.PartyID,
			Action:       row.Action,
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			Status:       row.Status,
			ErrorMessage: row.ErrorMessage,
			CreatedAt:    row.CreatedAt.Time,
		}

		if row.BeforeState != nil {
			_ = json.Unmarshal(row.BeforeState, &log.BeforeState)
		}

		if row.AfterState != nil {
			_ = json.Unmarshal(row.AfterState, &log.AfterState)
		}

		logs = append(logs, log)
	}

	return logs, nil
}

func marshalState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}
