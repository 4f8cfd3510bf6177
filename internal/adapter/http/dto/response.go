package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string     `json:"id"`
	Kind          string     `json:"kind"`
	OwnerID       string     `json:"owner_id"`
	HolderName    string     `json:"holder_name"`
	AccountNumber string     `json:"account_number"`
	BankCode      string     `json:"bank_code"`
	Version       int64      `json:"version"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		Kind:          string(a.Kind),
		OwnerID:       a.OwnerID,
		HolderName:    a.HolderName,
		AccountNumber: a.AccountNumber,
		BankCode:      a.BankCode,
		Version:       a.Version,
		LastSyncedAt:  a.LastSyncedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// BalanceResponse is the live balance reported by the bank.
type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      time.Time       `json:"as_of"`
}

// BalanceFromUseCase converts a gateway balance to response.
func BalanceFromUseCase(accountID string, b *usecase.BalanceResponse) *BalanceResponse {
	return &BalanceResponse{
		AccountID: accountID,
		Balance:   b.Balance,
		AsOf:      b.AsOf,
	}
}

// TransferResponse reports a completed transfer.
type TransferResponse struct {
	Status             string           `json:"status"`
	CorrelationID      string           `json:"correlation_id"`
	BalanceAfter       *decimal.Decimal `json:"balance_after,omitempty"`
	BalanceUnavailable bool             `json:"balance_unavailable,omitempty"`
}

// TransferFromDomain converts a transfer result to response.
func TransferFromDomain(t *domain.TransferResult) *TransferResponse {
	resp := &TransferResponse{
		Status:             string(t.Status),
		CorrelationID:      t.CorrelationID,
		BalanceUnavailable: t.BalanceUnavailable,
	}
	if !t.BalanceUnavailable {
		balance := t.BalanceAfter
		resp.BalanceAfter = &balance
	}
	return resp
}

// SyncResponse reports how many entries a sync imported.
type SyncResponse struct {
	AccountID string `json:"account_id"`
	Imported  int    `json:"imported"`
}

// LedgerEntryResponse represents a ledger entry in API responses.
type LedgerEntryResponse struct {
	ID               string          `json:"id"`
	RemoteID         *string         `json:"remote_id,omitempty"`
	AccountID        string          `json:"account_id"`
	Direction        string          `json:"direction"`
	Amount           decimal.Decimal `json:"amount"`
	CounterpartyFrom *string         `json:"counterparty_from,omitempty"`
	CounterpartyTo   *string         `json:"counterparty_to,omitempty"`
	Memo             string          `json:"memo"`
	SettledDate      string          `json:"settled_date"`
	SettledTime      string          `json:"settled_time"`
	BalanceAfter     decimal.Decimal `json:"balance_after"`
	ReviewStatus     string          `json:"review_status"`
	CategoryID       *string         `json:"category_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LedgerEntryFromDomain converts domain entry to response.
func LedgerEntryFromDomain(e *domain.LedgerEntry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:               e.ID,
		RemoteID:         e.RemoteID,
		AccountID:        e.AccountID,
		Direction:        string(e.Direction),
		Amount:           e.Amount,
		CounterpartyFrom: e.CounterpartyFrom,
		CounterpartyTo:   e.CounterpartyTo,
		Memo:             e.Memo,
		SettledDate:      e.SettledDate,
		SettledTime:      e.SettledTime,
		BalanceAfter:     e.BalanceAfter,
		ReviewStatus:     string(e.ReviewStatus),
		CategoryID:       e.CategoryID,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// LedgerPageResponse is one page of an account's ledger.
type LedgerPageResponse struct {
	Entries []*LedgerEntryResponse `json:"entries"`
	Page    int                    `json:"page"`
	Size    int                    `json:"size"`
	Total   int64                  `json:"total"`
}

// LedgerPageFromUseCase converts a ledger page to response.
func LedgerPageFromUseCase(p *usecase.LedgerPage) *LedgerPageResponse {
	entries := make([]*LedgerEntryResponse, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = LedgerEntryFromDomain(e)
	}
	return &LedgerPageResponse{
		Entries: entries,
		Page:    p.Page,
		Size:    p.Size,
		Total:   p.Total,
	}
}

// AuditLogResponse represents an audit record in API responses.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	PartyID     string         `json:"party_id"`
	Action      string         `json:"action"`
	BeforeState map[string]any `json:"before_state,omitempty"`
	AfterState  map[string]any `json:"after_state,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:          l.ID,
			PartyID:     l.PartyID,
			Action:      l.Action,
			BeforeState: l.BeforeState,
			AfterState:  l.AfterState,
			Status:      l.Status,
			CreatedAt:   l.CreatedAt,
		}
	}
	return result
}

// Machine-readable codes for failed transfers. A debit failure left both
// accounts untouched; a credit failure means the funds left the source and
// may be in transit.
const (
	ErrorCodeDebitFailed  = "DEBIT_FAILED"
	ErrorCodeCreditFailed = "CREDIT_FAILED"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	Code          string `json:"code,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
