package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/jointledger/internal/adapter/http/dto"
	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// AccountService registers accounts and reads them back.
type AccountService interface {
	RegisterAccount(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error)
	AddJointMember(ctx context.Context, accountID, partyID string) error
	GetAccount(ctx context.Context, caller domain.Caller, id string) (*domain.Account, error)
	GetBalance(ctx context.Context, caller domain.Caller, id string) (*usecase.BalanceResponse, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create registers a bank account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accounts.RegisterAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to register account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// AddMember adds a party to a joint account.
func (h *AccountHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.accounts.AddJointMember(r.Context(), accountID, req.PartyID); err != nil {
		writeDomainError(w, r, "failed to add member", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get returns an account the caller may act on.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Balance returns the live balance reported by the bank.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	balance, err := h.accounts.GetBalance(r.Context(), caller, id)
	if err != nil {
		writeDomainError(w, r, "failed to read balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromUseCase(id, balance))
}

// List lists registered accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}
