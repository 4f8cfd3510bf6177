package domain

import (
	"github.com/shopspring/decimal"
)

// TransferStatus is the outcome reported for a completed transfer.
type TransferStatus string

const TransferStatusSuccess TransferStatus = "SUCCESS"

// MemoPair holds the memos printed on each side of the transfer.
type MemoPair struct {
	Debit  string
	Credit string
}

// NamePair holds the display names sent to the bank.
type NamePair struct {
	Requester string // shown on the debit side
	Holder    string // destination holder name on the credit side
}

// TransferIntent is one logical transfer. It is never persisted.
type TransferIntent struct {
	CorrelationID string
	Source        *Account
	Destination   *Account
	Amount        decimal.Decimal
	Memos         MemoPair
	Names         NamePair
}

// Validate checks the preconditions for running the intent.
func (t *TransferIntent) Validate() error {
	if t.Source == nil || t.Destination == nil {
		return ErrAccountNotFound
	}

	if t.Source.ID == t.Destination.ID {
		return ErrSameAccount
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	if err := ValidateTransferMemo(t.Memos.Debit); err != nil {
		return err
	}

	return ValidateTransferMemo(t.Memos.Credit)
}

// TransferResult is returned after both legs succeed.
type TransferResult struct {
	Status        TransferStatus
	CorrelationID string
	BalanceAfter  decimal.Decimal
	// BalanceUnavailable is set when the post-transfer balance read failed.
	BalanceUnavailable bool
}
