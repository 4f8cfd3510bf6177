package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of money movement relative to the owning account.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// ReviewStatus is the state of a ledger entry in the review workflow.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusReviewed ReviewStatus = "REVIEWED"
)

// LedgerEntry is an imported record of a transaction settled at the bank.
// Only Memo, CategoryID and ReviewStatus change after insert.
type LedgerEntry struct {
	ID               string
	RemoteID         *string
	AccountID        string
	Direction        Direction
	Amount           decimal.Decimal
	CounterpartyFrom *string
	CounterpartyTo   *string
	Memo             string
	SettledDate      string // YYYYMMDD
	SettledTime      string // HHMMSS
	BalanceAfter     decimal.Decimal
	ReviewStatus     ReviewStatus
	CategoryID       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FallbackKey is the weak identity used when the bank supplies no remote id.
func (e *LedgerEntry) FallbackKey() FallbackKey {
	return FallbackKey{
		AccountID:   e.AccountID,
		SettledDate: e.SettledDate,
		SettledTime: e.SettledTime,
		Amount:      e.Amount,
	}
}

// Review moves the entry to target. A nil memo keeps the current memo.
// Reviewing an already reviewed entry edits its memo and category.
func (e *LedgerEntry) Review(target ReviewStatus, categoryID, memo *string, now time.Time) error {
	if target != ReviewStatusReviewed {
		return ErrInvalidReviewStatus
	}
	if memo != nil {
		if err := ValidateEntryMemo(*memo); err != nil {
			return err
		}
		e.Memo = *memo
	}
	if categoryID != nil {
		e.CategoryID = categoryID
	}
	e.ReviewStatus = ReviewStatusReviewed
	e.UpdatedAt = now
	return nil
}
