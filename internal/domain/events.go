package domain

import "time"

// Event types
const (
	EventTypeTransferCompleted    = "transfer.completed"
	EventTypeTransferCreditFailed = "transfer.credit_failed"
	EventTypeLedgerSynced         = "ledger.synced"
	EventTypeEntryReviewed        = "ledger_entry.reviewed"
	EventTypeAccountCreated       = "account.created"
)

// Aggregate types
const (
	AggregateTypeTransfer    = "transfer"
	AggregateTypeAccount     = "account"
	AggregateTypeLedgerEntry = "ledger_entry"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransferCompletedEvent payload
type TransferCompletedEvent struct {
	CorrelationID        string `json:"correlation_id"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
	BalanceAfter         string `json:"balance_after"`
	RequestedBy          string `json:"requested_by"`
}

// TransferCreditFailedEvent payload. Funds have left the source account
// and need manual follow-up.
type TransferCreditFailedEvent struct {
	CorrelationID        string `json:"correlation_id"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
	Reason               string `json:"reason"`
	RequestedBy          string `json:"requested_by"`
}

// LedgerSyncedEvent payload
type LedgerSyncedEvent struct {
	AccountID   string `json:"account_id"`
	Imported    int    `json:"imported"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
}

// EntryReviewedEvent payload
type EntryReviewedEvent struct {
	EntryID    string  `json:"entry_id"`
	AccountID  string  `json:"account_id"`
	CategoryID *string `json:"category_id,omitempty"`
	ReviewedBy string  `json:"reviewed_by"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Kind      string `json:"kind"`
	OwnerID   string `json:"owner_id"`
}

// ToPayload converts an event payload struct to a map for the outbox.
func ToPayload(v any) map[string]any {
	return MarshalState(v)
}
