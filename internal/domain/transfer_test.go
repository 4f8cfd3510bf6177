package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransferIntent_Validate(t *testing.T) {
	src := &Account{ID: "acc-1"}
	dst := &Account{ID: "acc-2"}

	tests := []struct {
		name    string
		intent  TransferIntent
		wantErr error
	}{
		{
			name:   "valid",
			intent: TransferIntent{Source: src, Destination: dst, Amount: decimal.NewFromInt(100)},
		},
		{
			name:    "same account",
			intent:  TransferIntent{Source: src, Destination: src, Amount: decimal.NewFromInt(100)},
			wantErr: ErrSameAccount,
		},
		{
			name:    "zero amount",
			intent:  TransferIntent{Source: src, Destination: dst, Amount: decimal.Zero},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "missing destination",
			intent:  TransferIntent{Source: src, Amount: decimal.NewFromInt(100)},
			wantErr: ErrAccountNotFound,
		},
		{
			name: "credit memo too long",
			intent: TransferIntent{
				Source:      src,
				Destination: dst,
				Amount:      decimal.NewFromInt(100),
				Memos:       MemoPair{Credit: strings.Repeat("x", MaxTransferMemoLength+1)},
			},
			wantErr: ErrInvalidMemo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.intent.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransferError_MatchesStageAndCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: %w", ErrGatewayUnavailable)

	debitErr := &TransferError{Stage: StageDebit, CorrelationID: "c-1", Err: cause}
	if !errors.Is(debitErr, ErrDebitFailed) || !errors.Is(debitErr, ErrGatewayUnavailable) {
		t.Fatalf("expected debit error to match stage and cause")
	}
	if errors.Is(debitErr, ErrCreditFailed) {
		t.Fatalf("debit error must not match ErrCreditFailed")
	}

	creditErr := &TransferError{Stage: StageCredit, CorrelationID: "c-1", Err: cause}
	if !errors.Is(creditErr, ErrCreditFailed) || errors.Is(creditErr, ErrDebitFailed) {
		t.Fatalf("expected credit error to match only ErrCreditFailed")
	}

	if !strings.Contains(creditErr.Error(), "c-1") {
		t.Fatalf("expected correlation id in message, got %q", creditErr.Error())
	}
}

func TestGatewayError_InsufficientFunds(t *testing.T) {
	err := &GatewayError{Op: "debit", Status: 422, Code: GatewayCodeInsufficientFunds}
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds")
	}

	other := &GatewayError{Op: "credit", Status: 400, Code: GatewayCodeInvalidRequest}
	if !errors.Is(other, ErrGatewayRejected) || errors.Is(other, ErrInsufficientFunds) {
		t.Fatalf("expected ErrGatewayRejected only")
	}
}
