package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	PartyID      string // Who performed the action
	Action       string // What action (ledger_entry.review, account.create, etc.)
	ResourceType string // Type of resource (account, ledger_entry)
	ResourceID   string // ID of the resource
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure, error
	ErrorMessage string // If status=error, the error message
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionJointMemberAdd    AuditAction = "account.member_add"
	AuditActionLedgerEntryReview AuditAction = "ledger_entry.review"
)

// Audited resource types
const (
	AuditResourceAccount     = "account"
	AuditResourceLedgerEntry = "ledger_entry"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}
