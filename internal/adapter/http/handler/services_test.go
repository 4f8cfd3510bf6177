package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/iho/jointledger/internal/adapter/http/middleware"
	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

type transferServiceMock struct{ mock.Mock }

func (m *transferServiceMock) Transfer(ctx context.Context, caller domain.Caller, input usecase.TransferInput) (*domain.TransferResult, error) {
	args := m.Called(ctx, caller, input)
	result, _ := args.Get(0).(*domain.TransferResult)
	return result, args.Error(1)
}

type accountServiceMock struct{ mock.Mock }

func (m *accountServiceMock) RegisterAccount(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
	args := m.Called(ctx, input)
	account, _ := args.Get(0).(*domain.Account)
	return account, args.Error(1)
}

func (m *accountServiceMock) AddJointMember(ctx context.Context, accountID, partyID string) error {
	return m.Called(ctx, accountID, partyID).Error(0)
}

func (m *accountServiceMock) GetAccount(ctx context.Context, caller domain.Caller, id string) (*domain.Account, error) {
	args := m.Called(ctx, caller, id)
	account, _ := args.Get(0).(*domain.Account)
	return account, args.Error(1)
}

func (m *accountServiceMock) GetBalance(ctx context.Context, caller domain.Caller, id string) (*usecase.BalanceResponse, error) {
	args := m.Called(ctx, caller, id)
	balance, _ := args.Get(0).(*usecase.BalanceResponse)
	return balance, args.Error(1)
}

func (m *accountServiceMock) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	args := m.Called(ctx, input)
	accounts, _ := args.Get(0).([]*domain.Account)
	return accounts, args.Error(1)
}

type ledgerServiceMock struct{ mock.Mock }

func (m *ledgerServiceMock) ListLedger(ctx context.Context, caller domain.Caller, accountID string, page, size int) (*usecase.LedgerPage, error) {
	args := m.Called(ctx, caller, accountID, page, size)
	result, _ := args.Get(0).(*usecase.LedgerPage)
	return result, args.Error(1)
}

func (m *ledgerServiceMock) ReviewEntry(ctx context.Context, caller domain.Caller, entryID string, input usecase.ReviewInput) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, caller, entryID, input)
	entry, _ := args.Get(0).(*domain.LedgerEntry)
	return entry, args.Error(1)
}

func (m *ledgerServiceMock) EntryHistory(ctx context.Context, caller domain.Caller, entryID string) ([]*domain.AuditLog, error) {
	args := m.Called(ctx, caller, entryID)
	logs, _ := args.Get(0).([]*domain.AuditLog)
	return logs, args.Error(1)
}

type syncServiceMock struct{ mock.Mock }

func (m *syncServiceMock) SyncForCaller(ctx context.Context, caller domain.Caller, accountID string) (int, error) {
	args := m.Called(ctx, caller, accountID)
	return args.Int(0), args.Error(1)
}

// serve routes a single request through chi so URL params resolve.
func serve(method, pattern string, h http.HandlerFunc, target, partyID, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(middleware.Identity)
	r.Method(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if partyID != "" {
		req.Header.Set(middleware.PartyIDHeader, partyID)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
