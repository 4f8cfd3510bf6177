package bankapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// Paths served by the bank.
const (
	PathDebit   = "/v1/debit"
	PathCredit  = "/v1/credit"
	PathBalance = "/v1/balance"
	PathHistory = "/v1/history"
)

// Headers sent on every call.
const (
	HeaderAPIKey         = "X-Api-Key"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// DebitBody is the JSON body of a debit call.
type DebitBody struct {
	AccountNumber string          `json:"account_number"`
	BankCode      string          `json:"bank_code"`
	OwnerSeqNo    string          `json:"owner_seq_no"`
	Amount        decimal.Decimal `json:"amount"`
	CorrelationID string          `json:"correlation_id"`
	Memo          string          `json:"memo"`
	RequesterName string          `json:"requester_name"`
}

func NewDebitBody(req usecase.DebitRequest) DebitBody {
	return DebitBody{
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		OwnerSeqNo:    req.OwnerSeqNo,
		Amount:        req.Amount,
		CorrelationID: req.CorrelationID,
		Memo:          req.Memo,
		RequesterName: req.RequesterName,
	}
}

func (b DebitBody) Request() usecase.DebitRequest {
	return usecase.DebitRequest{
		AccountNumber: b.AccountNumber,
		BankCode:      b.BankCode,
		OwnerSeqNo:    b.OwnerSeqNo,
		Amount:        b.Amount,
		CorrelationID: b.CorrelationID,
		Memo:          b.Memo,
		RequesterName: b.RequesterName,
	}
}

// CreditBody is the JSON body of a credit call.
type CreditBody struct {
	AccountNumber         string          `json:"account_number"`
	BankCode              string          `json:"bank_code"`
	HolderName            string          `json:"holder_name"`
	Amount                decimal.Decimal `json:"amount"`
	CorrelationID         string          `json:"correlation_id"`
	RequesterClientNumber string          `json:"requester_client_number"`
	Memo                  string          `json:"memo"`
}

func NewCreditBody(req usecase.CreditRequest) CreditBody {
	return CreditBody{
		AccountNumber:         req.AccountNumber,
		BankCode:              req.BankCode,
		HolderName:            req.HolderName,
		Amount:                req.Amount,
		CorrelationID:         req.CorrelationID,
		RequesterClientNumber: req.RequesterClientNumber,
		Memo:                  req.Memo,
	}
}

func (b CreditBody) Request() usecase.CreditRequest {
	return usecase.CreditRequest{
		AccountNumber:         b.AccountNumber,
		BankCode:              b.BankCode,
		HolderName:            b.HolderName,
		Amount:                b.Amount,
		CorrelationID:         b.CorrelationID,
		RequesterClientNumber: b.RequesterClientNumber,
		Memo:                  b.Memo,
	}
}

// MovementReply acknowledges a debit or credit.
type MovementReply struct {
	TransactionID string `json:"transaction_id"`
	Duplicate     bool   `json:"duplicate"`
}

// BalanceBody is the JSON body of a balance call.
type BalanceBody struct {
	OwnerSeqNo    string `json:"owner_seq_no"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
}

func (b BalanceBody) Request() usecase.BalanceRequest {
	return usecase.BalanceRequest{
		OwnerSeqNo:    b.OwnerSeqNo,
		BankCode:      b.BankCode,
		AccountNumber: b.AccountNumber,
	}
}

// BalanceReply carries the live balance.
type BalanceReply struct {
	Balance decimal.Decimal `json:"balance"`
	AsOf    time.Time       `json:"as_of"`
}

// HistoryBody is the JSON body of a history call. Dates are YYYYMMDD.
type HistoryBody struct {
	OwnerSeqNo    string `json:"owner_seq_no"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	FromDate      string `json:"from_date"`
	ToDate        string `json:"to_date"`
}

func (b HistoryBody) Request() usecase.HistoryRequest {
	return usecase.HistoryRequest{
		OwnerSeqNo:    b.OwnerSeqNo,
		BankCode:      b.BankCode,
		AccountNumber: b.AccountNumber,
		FromDate:      b.FromDate,
		ToDate:        b.ToDate,
	}
}

// HistoryRecord is one settled transaction. RemoteID is omitted by banks
// that do not expose stable ids.
type HistoryRecord struct {
	RemoteID    *string         `json:"remote_id,omitempty"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo"`
	PostBalance decimal.Decimal `json:"post_balance"`
}

func NewHistoryRecord(rec domain.RemoteTransaction) HistoryRecord {
	return HistoryRecord{
		RemoteID:    rec.RemoteID,
		Date:        rec.Date,
		Time:        rec.Time,
		Direction:   string(rec.Direction),
		Amount:      rec.Amount,
		Memo:        rec.Memo,
		PostBalance: rec.PostBalance,
	}
}

func (r HistoryRecord) Transaction() domain.RemoteTransaction {
	return domain.RemoteTransaction{
		RemoteID:    r.RemoteID,
		Date:        r.Date,
		Time:        r.Time,
		Direction:   domain.Direction(r.Direction),
		Amount:      r.Amount,
		Memo:        r.Memo,
		PostBalance: r.PostBalance,
	}
}

// HistoryReply lists settled transactions.
type HistoryReply struct {
	Transactions []HistoryRecord `json:"transactions"`
}

// ErrorReply is the body of a rejected call.
type ErrorReply struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
