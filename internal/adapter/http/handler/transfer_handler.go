package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/jointledger/internal/adapter/http/dto"
	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

// TransferService runs transfers on behalf of a caller.
type TransferService interface {
	Transfer(ctx context.Context, caller domain.Caller, input usecase.TransferInput) (*domain.TransferResult, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transfers TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Create runs a transfer.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOrReject(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.transfers.Transfer(r.Context(), caller, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "transfer failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(result))
}
