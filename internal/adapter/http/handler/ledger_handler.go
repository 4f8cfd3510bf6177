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

// LedgerService serves ledger reads and reviews.
type LedgerService interface {
	ListLedger(ctx context.Context, caller domain.Caller, accountID string, page, size int) (*usecase.LedgerPage, error)
	ReviewEntry(ctx context.Context, caller domain.Caller, entryID string, input usecase.ReviewInput) (*domain.LedgerEntry, error)
	EntryHistory(ctx context.Context, caller domain.Caller, entryID string) ([]*domain.AuditLog, error)
}

// SyncService imports settled bank transactions on demand.
type SyncService interface {
	SyncForCaller(ctx context.Context, caller domain.Caller, accountID string) (int, error)
}

// LedgerHandler handles ledger reads, syncs and the review workflow.
type LedgerHandler struct {
	ledger LedgerService
	syncer SyncService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService, syncer SyncService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, syncer: syncer}
}

// ListByAccount returns a page of an account's ledger, newest first.
func (h *LedgerHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	page, err := h.ledger.ListLedger(
		r.Context(),
		caller,
		chi.URLParam(r, "id"),
		parseIntQuery(r, "page", 1),
		parseIntQuery(r, "size", 20),
	)
	if err != nil {
		writeDomainError(w, r, "failed to list ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerPageFromUseCase(page))
}

// Sync imports new settled transactions for an account.
func (h *LedgerHandler) Sync(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	accountID := chi.URLParam(r, "id")
	imported, err := h.syncer.SyncForCaller(r.Context(), caller, accountID)
	if err != nil {
		writeDomainError(w, r, "sync failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SyncResponse{AccountID: accountID, Imported: imported})
}

// Review marks a ledger entry reviewed.
func (h *LedgerHandler) Review(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.ledger.ReviewEntry(r.Context(), caller, chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to review entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerEntryFromDomain(entry))
}

// History returns the audit trail of a ledger entry.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	logs, err := h.ledger.EntryHistory(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to read entry history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
