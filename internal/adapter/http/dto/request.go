package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// CreateAccountRequest registers a bank account.
type CreateAccountRequest struct {
	Kind          string   `json:"kind"`
	OwnerID       string   `json:"owner_id"`
	HolderName    string   `json:"holder_name"`
	AccountNumber string   `json:"account_number"`
	BankCode      string   `json:"bank_code"`
	OwnerSeqNo    string   `json:"owner_seq_no"`
	Members       []string `json:"members,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.RegisterAccountInput {
	return usecase.RegisterAccountInput{
		Kind:          domain.AccountKind(r.Kind),
		OwnerID:       r.OwnerID,
		HolderName:    r.HolderName,
		AccountNumber: r.AccountNumber,
		BankCode:      r.BankCode,
		OwnerSeqNo:    r.OwnerSeqNo,
		Members:       r.Members,
	}
}

// AddMemberRequest adds a party to a joint account.
type AddMemberRequest struct {
	PartyID string `json:"party_id"`
}

// TransferRequest moves money between the joint account and a personal account.
type TransferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	DebitMemo            string          `json:"debit_memo,omitempty"`
	CreditMemo           string          `json:"credit_memo,omitempty"`
	RequesterName        string          `json:"requester_name,omitempty"`
	HolderName           string          `json:"holder_name,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Memos: domain.MemoPair{
			Debit:  r.DebitMemo,
			Credit: r.CreditMemo,
		},
		Names: domain.NamePair{
			Requester: r.RequesterName,
			Holder:    r.HolderName,
		},
	}
}

// ReviewRequest moves a ledger entry through the review workflow.
type ReviewRequest struct {
	Status     string  `json:"status"`
	CategoryID *string `json:"category_id,omitempty"`
	Memo       *string `json:"memo,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReviewRequest) ToUseCaseInput() usecase.ReviewInput {
	status := r.Status
	if status == "" {
		status = string(domain.ReviewStatusReviewed)
	}
	return usecase.ReviewInput{
		Status:     domain.ReviewStatus(status),
		CategoryID: r.CategoryID,
		Memo:       r.Memo,
	}
}
