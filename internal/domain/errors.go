package domain

import (
	"errors"
	"fmt"
)

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrNoJointAccount     = errors.New("party has no joint account")
	ErrAlreadyJointMember = errors.New("party already belongs to a joint account")
	ErrInvalidAccountKind = errors.New("invalid account kind")

	// Transfer errors
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDebitFailed       = errors.New("debit failed")
	ErrCreditFailed      = errors.New("credit failed: funds debited but not credited")

	// Concurrency errors
	ErrVersionConflict = errors.New("account version conflict")
	ErrBusy            = errors.New("another transaction is in progress, retry later")
	ErrInterrupted     = errors.New("operation interrupted")

	// Reconciliation errors
	ErrReconciliationPartialFailure = errors.New("reconciliation partially failed")
	ErrSyncInProgress               = errors.New("sync already in progress for account")

	// Ledger errors
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrInvalidReviewStatus = errors.New("invalid review status")

	// Access errors
	ErrForbidden = errors.New("caller is not allowed to act on this account")

	// Gateway errors
	ErrGatewayUnavailable      = errors.New("bank gateway unavailable")
	ErrGatewayRejected         = errors.New("bank gateway rejected request")
	ErrInvalidGatewayRequest   = errors.New("invalid bank gateway request")
	ErrRequesterClientMismatch = errors.New("requester client number must equal the credited account number")
)

// TransferStage names the leg of a transfer that failed.
type TransferStage string

const (
	StageClaim  TransferStage = "claim"
	StageDebit  TransferStage = "debit"
	StageCredit TransferStage = "credit"
)

// TransferError carries the failing leg and correlation id of a transfer.
// It matches both the stage sentinel and the underlying cause with errors.Is.
type TransferError struct {
	Stage         TransferStage
	CorrelationID string
	Err           error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s: %s: %v", e.CorrelationID, e.Stage, e.Err)
}

// Unwrap exposes the stage sentinel and the cause.
func (e *TransferError) Unwrap() []error {
	switch e.Stage {
	case StageDebit:
		return []error{ErrDebitFailed, e.Err}
	case StageCredit:
		return []error{ErrCreditFailed, e.Err}
	default:
		return []error{e.Err}
	}
}

// GatewayError is a 4xx-class rejection returned by the bank.
type GatewayError struct {
	Op      string
	Status  int
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("bank %s rejected (%d %s): %s", e.Op, e.Status, e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	if e.Code == GatewayCodeInsufficientFunds {
		return ErrInsufficientFunds
	}
	return ErrGatewayRejected
}

// Error codes reported by the bank in rejection bodies.
const (
	GatewayCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	GatewayCodeAccountNotFound   = "ACCOUNT_NOT_FOUND"
	GatewayCodeInvalidRequest    = "INVALID_REQUEST"
)
