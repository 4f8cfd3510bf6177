package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/jointledger/internal/domain"
)

// PostgreSQL error codes the repositories translate.
const (
	pgErrUniqueViolation      = "23505"
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
	}
	return false
}

// translateError maps driver errors onto domain errors. Retryable
// failures become domain.ErrVersionConflict so the use case retry policy
// handles them like a lost version check.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if isRetryableError(err) {
		return fmt.Errorf("%w: %v", domain.ErrVersionConflict, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrUniqueViolation {
		return err
	}

	switch pgErr.TableName {
	case "accounts":
		return domain.ErrAccountExists
	case "joint_members":
		return domain.ErrAlreadyJointMember
	case "ledger_entries":
		// A concurrent sync inserted the same remote id first; the retried
		// batch will see it as a duplicate.
		return fmt.Errorf("%w: %v", domain.ErrVersionConflict, err)
	}

	return err
}
