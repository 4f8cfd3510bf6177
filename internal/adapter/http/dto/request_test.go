package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		Kind:          "joint",
		OwnerID:       "group-1",
		HolderName:    "Kim & Lee",
		AccountNumber: "1002003004",
		BankCode:      "088",
		OwnerSeqNo:    "seq-1",
		Members:       []string{"alice", "bob"},
	}

	got := req.ToUseCaseInput()

	if got.Kind != domain.AccountKindJoint || got.OwnerID != "group-1" || got.AccountNumber != "1002003004" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if len(got.Members) != 2 || got.Members[1] != "bob" {
		t.Fatalf("expected members to be carried, got %v", got.Members)
	}
}

func TestTransferRequest_DecodesAndConverts(t *testing.T) {
	body := `{
		"source_account_id": "joint-1",
		"destination_account_id": "personal-1",
		"amount": "100000",
		"debit_memo": "to alice",
		"credit_memo": "from joint",
		"holder_name": "Alice"
	}`

	var req TransferRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := req.ToUseCaseInput()

	if !got.Amount.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected amount 100000, got %s", got.Amount)
	}
	if got.Memos.Debit != "to alice" || got.Memos.Credit != "from joint" {
		t.Fatalf("unexpected memos: %+v", got.Memos)
	}
	if got.Names.Holder != "Alice" || got.Names.Requester != "" {
		t.Fatalf("unexpected names: %+v", got.Names)
	}
}

func TestReviewRequest_DefaultsToReviewed(t *testing.T) {
	memo := "rent"
	got := (&ReviewRequest{Memo: &memo}).ToUseCaseInput()

	if got.Status != domain.ReviewStatusReviewed {
		t.Fatalf("expected REVIEWED, got %s", got.Status)
	}
	if got.Memo == nil || *got.Memo != "rent" || got.CategoryID != nil {
		t.Fatalf("unexpected input: %+v", got)
	}

	got = (&ReviewRequest{Status: "PENDING"}).ToUseCaseInput()
	if got.Status != domain.ReviewStatusPending {
		t.Fatalf("expected explicit status to be kept, got %s", got.Status)
	}
}
