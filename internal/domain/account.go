package domain

import (
	"strings"
	"time"
)

// AccountKind distinguishes the pooled joint account from personal accounts.
type AccountKind string

const (
	AccountKindJoint    AccountKind = "joint"
	AccountKindPersonal AccountKind = "personal"
)

// DefaultSyncLookback bounds how far back a sync looks when the watermark is
// missing or older than this.
const DefaultSyncLookback = 7 * 24 * time.Hour

// Account is the unit of concurrency control. Its balance lives at the bank
// and is always read from the gateway.
type Account struct {
	ID            string
	Kind          AccountKind
	OwnerID       string // party id for personal accounts, group id for joint accounts
	HolderName    string
	AccountNumber string
	BankCode      string
	OwnerSeqNo    string
	Version       int64
	LastSyncedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the fields required to address the account at the bank.
func (a *Account) Validate() error {
	if a.Kind != AccountKindJoint && a.Kind != AccountKindPersonal {
		return ErrInvalidAccountKind
	}
	if err := ValidateAccountNumber(a.AccountNumber); err != nil {
		return err
	}
	if err := ValidateBankCode(a.BankCode); err != nil {
		return err
	}
	if strings.TrimSpace(a.OwnerID) == "" {
		return ErrInvalidOwner
	}
	return ValidateHolderName(a.HolderName)
}

// IsJoint reports whether the account is the shared joint account.
func (a *Account) IsJoint() bool {
	return a.Kind == AccountKindJoint
}

// OwnedBy reports whether a personal account belongs to the party.
func (a *Account) OwnedBy(partyID string) bool {
	return a.Kind == AccountKindPersonal && a.OwnerID == partyID
}

// SyncWindowStart returns max(LastSyncedAt, now-lookback).
func (a *Account) SyncWindowStart(now time.Time, lookback time.Duration) time.Time {
	if lookback <= 0 {
		lookback = DefaultSyncLookback
	}
	floor := now.Add(-lookback)
	if a.LastSyncedAt == nil || a.LastSyncedAt.Before(floor) {
		return floor
	}
	return *a.LastSyncedAt
}
