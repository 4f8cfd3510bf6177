// Package fakebank is an in-memory bank used by tests and cmd/mockbank.
package fakebank

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// Op names a gateway operation.
type Op string

const (
	OpDebit   Op = "debit"
	OpCredit  Op = "credit"
	OpBalance Op = "balance"
	OpHistory Op = "history"
)

type account struct {
	bankCode   string
	number     string
	ownerSeqNo string
	holder     string
	balance    decimal.Decimal
	history    []domain.RemoteTransaction
}

// Bank keeps balances and history per account and applies each
// correlation id at most once per operation.
type Bank struct {
	mu       sync.Mutex
	accounts map[string]*account
	applied  map[string]string // op|correlation id -> transaction id
	failures map[Op]error
	calls    map[Op]int
	seq      int
	clock    func() time.Time
	location *time.Location

	// OmitRemoteIDs makes history records carry no remote id.
	OmitRemoteIDs bool
}

// Option configures a Bank.
type Option func(*Bank)

// WithClock sets the settlement clock.
func WithClock(clock func() time.Time) Option {
	return func(b *Bank) { b.clock = clock }
}

// WithLocation sets the zone settlement dates are written in.
func WithLocation(loc *time.Location) Option {
	return func(b *Bank) { b.location = loc }
}

// New creates an empty bank.
func New(opts ...Option) *Bank {
	b := &Bank{
		accounts: make(map[string]*account),
		applied:  make(map[string]string),
		failures: make(map[Op]error),
		calls:    make(map[Op]int),
		clock:    time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ usecase.BankGateway = (*Bank)(nil)

func key(bankCode, number string) string {
	return bankCode + "/" + number
}

// Open creates an account with an opening balance.
func (b *Bank) Open(bankCode, number, ownerSeqNo, holder string, balance decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[key(bankCode, number)] = &account{
		bankCode:   bankCode,
		number:     number,
		ownerSeqNo: ownerSeqNo,
		holder:     holder,
		balance:    balance,
	}
}

// OpenAccount opens the bank side of a registered account.
func (b *Bank) OpenAccount(a *domain.Account, balance decimal.Decimal) {
	b.Open(a.BankCode, a.AccountNumber, a.OwnerSeqNo, a.HolderName, balance)
}

// Fail makes every later call of op return err until Fail(op, nil).
func (b *Bank) Fail(op Op, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Calls returns how many times op was invoked.
func (b *Bank) Calls(op Op) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// BalanceOf returns the current balance, or zero for unknown accounts.
func (b *Bank) BalanceOf(bankCode, number string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acc, ok := b.accounts[key(bankCode, number)]; ok {
		return acc.balance
	}
	return decimal.Zero
}

// Settle appends a record to the account history without moving money
// through Debit or Credit. It is used to seed history in tests.
func (b *Bank) Settle(bankCode, number string, rec domain.RemoteTransaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acc, ok := b.accounts[key(bankCode, number)]; ok {
		acc.history = append(acc.history, rec)
	}
}

func (b *Bank) enter(op Op) error {
	b.calls[op]++
	return b.failures[op]
}

func (b *Bank) lookup(op Op, bankCode, number string) (*account, error) {
	acc, ok := b.accounts[key(bankCode, number)]
	if !ok {
		return nil, &domain.GatewayError{
			Op:      string(op),
			Status:  http.StatusNotFound,
			Code:    domain.GatewayCodeAccountNotFound,
			Message: fmt.Sprintf("account %s not found", key(bankCode, number)),
		}
	}
	return acc, nil
}

func (b *Bank) settle(acc *account, dir domain.Direction, amount decimal.Decimal, memo string) string {
	b.seq++
	id := fmt.Sprintf("tx-%06d", b.seq)
	now := b.clock().In(b.location)

	rec := domain.RemoteTransaction{
		Date:        now.Format(domain.SettledDateLayout),
		Time:        now.Format(domain.SettledTimeLayout),
		Direction:   dir,
		Amount:      amount,
		Memo:        memo,
		PostBalance: acc.balance,
	}
	if !b.OmitRemoteIDs {
		remoteID := id
		rec.RemoteID = &remoteID
	}
	acc.history = append(acc.history, rec)

	return id
}

func invalid(op Op, err error) error {
	return &domain.GatewayError{
		Op:      string(op),
		Status:  http.StatusBadRequest,
		Code:    domain.GatewayCodeInvalidRequest,
		Message: err.Error(),
	}
}

// Debit implements usecase.BankGateway.
func (b *Bank) Debit(ctx context.Context, req usecase.DebitRequest) (*usecase.DebitResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.enter(OpDebit); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(OpDebit, err)
	}

	dedup := string(OpDebit) + "|" + req.CorrelationID
	if id, ok := b.applied[dedup]; ok {
		return &usecase.DebitResponse{TransactionID: id, Duplicate: true}, nil
	}

	acc, err := b.lookup(OpDebit, req.BankCode, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	if acc.balance.LessThan(req.Amount) {
		return nil, &domain.GatewayError{
			Op:      string(OpDebit),
			Status:  http.StatusUnprocessableEntity,
			Code:    domain.GatewayCodeInsufficientFunds,
			Message: fmt.Sprintf("balance %s below %s", acc.balance, req.Amount),
		}
	}

	acc.balance = acc.balance.Sub(req.Amount)
	id := b.settle(acc, domain.DirectionDebit, req.Amount, req.Memo)
	b.applied[dedup] = id

	return &usecase.DebitResponse{TransactionID: id}, nil
}

// Credit implements usecase.BankGateway.
func (b *Bank) Credit(ctx context.Context, req usecase.CreditRequest) (*usecase.CreditResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.enter(OpCredit); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(OpCredit, err)
	}

	dedup := string(OpCredit) + "|" + req.CorrelationID
	if id, ok := b.applied[dedup]; ok {
		return &usecase.CreditResponse{TransactionID: id, Duplicate: true}, nil
	}

	acc, err := b.lookup(OpCredit, req.BankCode, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	acc.balance = acc.balance.Add(req.Amount)
	id := b.settle(acc, domain.DirectionCredit, req.Amount, req.Memo)
	b.applied[dedup] = id

	return &usecase.CreditResponse{TransactionID: id}, nil
}

// Balance implements usecase.BankGateway.
func (b *Bank) Balance(ctx context.Context, req usecase.BalanceRequest) (*usecase.BalanceResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.enter(OpBalance); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(OpBalance, err)
	}

	acc, err := b.lookup(OpBalance, req.BankCode, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	return &usecase.BalanceResponse{Balance: acc.balance, AsOf: b.clock().UTC()}, nil
}

// TransactionHistory implements usecase.BankGateway.
func (b *Bank) TransactionHistory(ctx context.Context, req usecase.HistoryRequest) ([]domain.RemoteTransaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.enter(OpHistory); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, invalid(OpHistory, err)
	}

	acc, err := b.lookup(OpHistory, req.BankCode, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	var out []domain.RemoteTransaction
	for _, rec := range acc.history {
		if rec.Date >= req.FromDate && rec.Date <= req.ToDate {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date+out[i].Time < out[j].Date+out[j].Time
	})

	return out, nil
}
