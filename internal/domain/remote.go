package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bank date and time layouts.
const (
	SettledDateLayout = "20060102"
	SettledTimeLayout = "150405"
)

// RemoteTransaction is one row of bank transaction history.
type RemoteTransaction struct {
	RemoteID    *string
	Date        string // YYYYMMDD
	Time        string // HHMMSS
	Direction   Direction
	Amount      decimal.Decimal
	Memo        string
	PostBalance decimal.Decimal
}

// SettledAt parses Date and Time in loc.
func (r RemoteTransaction) SettledAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(SettledDateLayout+SettledTimeLayout, r.Date+r.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse settlement %s %s: %w", r.Date, r.Time, err)
	}
	return t, nil
}

// HasRemoteID reports whether the bank supplied a stable id.
func (r RemoteTransaction) HasRemoteID() bool {
	return r.RemoteID != nil && *r.RemoteID != ""
}

// FallbackKey identifies an id-less record for accountID. It assumes one
// writer per account per day at the bank, so it is an approximation.
func (r RemoteTransaction) FallbackKey(accountID string) FallbackKey {
	return FallbackKey{
		AccountID:   accountID,
		SettledDate: r.Date,
		SettledTime: r.Time,
		Amount:      r.Amount,
	}
}

// ToEntry builds a PENDING, unclassified entry for accountID.
func (r RemoteTransaction) ToEntry(id, accountID string, now time.Time) *LedgerEntry {
	var remoteID *string
	if r.HasRemoteID() {
		v := *r.RemoteID
		remoteID = &v
	}
	return &LedgerEntry{
		ID:           id,
		RemoteID:     remoteID,
		AccountID:    accountID,
		Direction:    r.Direction,
		Amount:       r.Amount,
		Memo:         r.Memo,
		SettledDate:  r.Date,
		SettledTime:  r.Time,
		BalanceAfter: r.PostBalance,
		ReviewStatus: ReviewStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FallbackKey is (settlement date, settlement time, amount, account).
type FallbackKey struct {
	AccountID   string
	SettledDate string
	SettledTime string
	Amount      decimal.Decimal
}

// String normalizes the amount so 100 and 100.00 collide.
func (k FallbackKey) String() string {
	return k.AccountID + "|" + k.SettledDate + "|" + k.SettledTime + "|" + k.Amount.String()
}
