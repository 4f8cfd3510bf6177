package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
)

// BankGateway is the remote ledger that owns the money.
type BankGateway interface {
	Debit(ctx context.Context, req DebitRequest) (*DebitResponse, error)
	Credit(ctx context.Context, req CreditRequest) (*CreditResponse, error)
	Balance(ctx context.Context, req BalanceRequest) (*BalanceResponse, error)
	TransactionHistory(ctx context.Context, req HistoryRequest) ([]domain.RemoteTransaction, error)
}

// DebitRequest withdraws Amount from the account.
type DebitRequest struct {
	AccountNumber string
	BankCode      string
	OwnerSeqNo    string
	Amount        decimal.Decimal
	CorrelationID string
	Memo          string
	RequesterName string
}

// Validate checks the request before it leaves the process.
func (r DebitRequest) Validate() error {
	if err := validateAddress(r.AccountNumber, r.BankCode); err != nil {
		return err
	}
	if r.OwnerSeqNo == "" {
		return fmt.Errorf("%w: owner sequence number is required", domain.ErrInvalidGatewayRequest)
	}
	return validateMovement(r.Amount, r.CorrelationID, r.Memo)
}

// DebitResponse is the bank's acknowledgement of a debit.
type DebitResponse struct {
	TransactionID string
	Duplicate     bool // the bank had already applied this correlation id
}

// CreditRequest deposits Amount into the account.
// RequesterClientNumber is read by the bank as the deposit target and must
// equal AccountNumber.
type CreditRequest struct {
	AccountNumber         string
	BankCode              string
	HolderName            string
	Amount                decimal.Decimal
	CorrelationID         string
	RequesterClientNumber string
	Memo                  string
}

// NewCreditRequest builds a credit to dest with the requester client number
// bound to the destination account number.
func NewCreditRequest(dest *domain.Account, holderName string, amount decimal.Decimal, correlationID, memo string) CreditRequest {
	return CreditRequest{
		AccountNumber:         dest.AccountNumber,
		BankCode:              dest.BankCode,
		HolderName:            holderName,
		Amount:                amount,
		CorrelationID:         correlationID,
		RequesterClientNumber: dest.AccountNumber,
		Memo:                  memo,
	}
}

// Validate checks the request before it leaves the process.
func (r CreditRequest) Validate() error {
	if err := validateAddress(r.AccountNumber, r.BankCode); err != nil {
		return err
	}
	if r.RequesterClientNumber != r.AccountNumber {
		return fmt.Errorf("%w: %q != %q", domain.ErrRequesterClientMismatch, r.RequesterClientNumber, r.AccountNumber)
	}
	if r.HolderName == "" {
		return fmt.Errorf("%w: holder name is required", domain.ErrInvalidGatewayRequest)
	}
	return validateMovement(r.Amount, r.CorrelationID, r.Memo)
}

// CreditResponse is the bank's acknowledgement of a credit.
type CreditResponse struct {
	TransactionID string
	Duplicate     bool
}

// BalanceRequest queries the live balance of an account.
type BalanceRequest struct {
	OwnerSeqNo    string
	BankCode      string
	AccountNumber string
}

// Validate checks the request before it leaves the process.
func (r BalanceRequest) Validate() error {
	return validateAddress(r.AccountNumber, r.BankCode)
}

// BalanceResponse is the bank-reported balance.
type BalanceResponse struct {
	Balance decimal.Decimal
	AsOf    time.Time
}

// HistoryRequest lists settled transactions between two calendar dates
// (YYYYMMDD, inclusive).
type HistoryRequest struct {
	OwnerSeqNo    string
	BankCode      string
	AccountNumber string
	FromDate      string
	ToDate        string
}

// Validate checks the request before it leaves the process.
func (r HistoryRequest) Validate() error {
	if err := validateAddress(r.AccountNumber, r.BankCode); err != nil {
		return err
	}
	from, err := time.Parse(domain.SettledDateLayout, r.FromDate)
	if err != nil {
		return fmt.Errorf("%w: from date %q", domain.ErrInvalidGatewayRequest, r.FromDate)
	}
	to, err := time.Parse(domain.SettledDateLayout, r.ToDate)
	if err != nil {
		return fmt.Errorf("%w: to date %q", domain.ErrInvalidGatewayRequest, r.ToDate)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: date range %s..%s is inverted", domain.ErrInvalidGatewayRequest, r.FromDate, r.ToDate)
	}
	return nil
}

// BalanceRequestFor addresses the account's live balance.
func BalanceRequestFor(account *domain.Account) BalanceRequest {
	return BalanceRequest{
		OwnerSeqNo:    account.OwnerSeqNo,
		BankCode:      account.BankCode,
		AccountNumber: account.AccountNumber,
	}
}

func validateAddress(accountNumber, bankCode string) error {
	if err := domain.ValidateAccountNumber(accountNumber); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidGatewayRequest, err)
	}
	if err := domain.ValidateBankCode(bankCode); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidGatewayRequest, err)
	}
	return nil
}

func validateMovement(amount decimal.Decimal, correlationID, memo string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	if correlationID == "" {
		return fmt.Errorf("%w: correlation id is required", domain.ErrInvalidGatewayRequest)
	}
	return domain.ValidateTransferMemo(memo)
}
