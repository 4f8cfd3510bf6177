package usecase_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

func TestCreditRequest_Validate(t *testing.T) {
	dest := &domain.Account{AccountNumber: "2000000001", BankCode: "088"}
	valid := usecase.NewCreditRequest(dest, "Alice", decimal.NewFromInt(10), "corr-1", "memo")

	tests := []struct {
		name   string
		mutate func(r *usecase.CreditRequest)
		want   error
	}{
		{name: "valid", mutate: func(r *usecase.CreditRequest) {}},
		{
			name:   "requester client number differs",
			mutate: func(r *usecase.CreditRequest) { r.RequesterClientNumber = "2000000009" },
			want:   domain.ErrRequesterClientMismatch,
		},
		{
			name:   "missing holder",
			mutate: func(r *usecase.CreditRequest) { r.HolderName = "" },
			want:   domain.ErrInvalidGatewayRequest,
		},
		{
			name:   "missing correlation id",
			mutate: func(r *usecase.CreditRequest) { r.CorrelationID = "" },
			want:   domain.ErrInvalidGatewayRequest,
		},
		{
			name:   "bad bank code",
			mutate: func(r *usecase.CreditRequest) { r.BankCode = "88" },
			want:   domain.ErrInvalidBankCode,
		},
		{
			name:   "negative amount",
			mutate: func(r *usecase.CreditRequest) { r.Amount = decimal.NewFromInt(-1) },
			want:   domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := req.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDebitRequest_Validate(t *testing.T) {
	req := usecase.DebitRequest{
		AccountNumber: "1000000001",
		BankCode:      "088",
		OwnerSeqNo:    "seq-1",
		Amount:        decimal.NewFromInt(10),
		CorrelationID: "corr-1",
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req.OwnerSeqNo = ""
	if err := req.Validate(); !errors.Is(err, domain.ErrInvalidGatewayRequest) {
		t.Errorf("expected ErrInvalidGatewayRequest, got %v", err)
	}
}

func TestHistoryRequest_Validate(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		ok       bool
	}{
		{name: "single day", from: "20260314", to: "20260314", ok: true},
		{name: "range", from: "20260307", to: "20260314", ok: true},
		{name: "inverted", from: "20260314", to: "20260307"},
		{name: "bad format", from: "2026-03-07", to: "20260314"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := usecase.HistoryRequest{AccountNumber: "1000000001", BankCode: "088", FromDate: tt.from, ToDate: tt.to}
			err := req.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, domain.ErrInvalidGatewayRequest) {
				t.Errorf("expected ErrInvalidGatewayRequest, got %v", err)
			}
		})
	}
}
