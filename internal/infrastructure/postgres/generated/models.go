package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID            string             `json:"id"`
	Kind          string             `json:"kind"`
	OwnerID       string             `json:"owner_id"`
	HolderName    string             `json:"holder_name"`
	AccountNumber string             `json:"account_number"`
	BankCode      string             `json:"bank_code"`
	OwnerSeqNo    string             `json:"owner_seq_no"`
	Version       int64              `json:"version"`
	LastSyncedAt  pgtype.Timestamptz `json:"last_synced_at"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type AuditLog struct {
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

type JointMember struct {
	PartyID   string             `json:"party_id"`
	AccountID string             `json:"account_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type LedgerEntry struct {
	ID               string             `json:"id"`
	RemoteID         pgtype.Text        `json:"remote_id"`
	AccountID        string             `json:"account_id"`
	Direction        string             `json:"direction"`
	Amount           pgtype.Numeric     `json:"amount"`
	CounterpartyFrom pgtype.Text        `json:"counterparty_from"`
	CounterpartyTo   pgtype.Text        `json:"counterparty_to"`
	Memo             string             `json:"memo"`
	SettledDate      string             `json:"settled_date"`
	SettledTime      string             `json:"settled_time"`
	BalanceAfter     pgtype.Numeric     `json:"balance_after"`
	ReviewStatus     string             `json:"review_status"`
	CategoryID       pgtype.Text        `json:"category_id"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}
