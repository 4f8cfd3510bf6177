package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/jointledger/internal/adapter/http/dto"
	"github.com/iho/jointledger/internal/adapter/http/middleware"
	"github.com/iho/jointledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and logs server-side failures.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg(message)
	}
	resp := dto.ErrorResponse{Error: message, Message: err.Error()}
	var terr *domain.TransferError
	if errors.As(err, &terr) {
		resp.CorrelationID = terr.CorrelationID
		switch terr.Stage {
		case domain.StageDebit:
			resp.Code = dto.ErrorCodeDebitFailed
		case domain.StageCredit:
			resp.Code = dto.ErrorCodeCreditFailed
		}
	}
	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	// A failed credit also wraps the gateway cause; it must win.
	case errors.Is(err, domain.ErrCreditFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDebitFailed),
		errors.Is(err, domain.ErrGatewayUnavailable),
		errors.Is(err, domain.ErrGatewayRejected):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrNoJointAccount):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrSyncInProgress),
		errors.Is(err, domain.ErrAccountExists),
		errors.Is(err, domain.ErrAlreadyJointMember):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInterrupted):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidMemo),
		errors.Is(err, domain.ErrInvalidReviewStatus),
		errors.Is(err, domain.ErrInvalidAccountKind),
		errors.Is(err, domain.ErrInvalidHolderName),
		errors.Is(err, domain.ErrInvalidAccountNumber),
		errors.Is(err, domain.ErrInvalidBankCode),
		errors.Is(err, domain.ErrInvalidOwner),
		errors.Is(err, domain.ErrInvalidGatewayRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// callerOrReject returns the request's caller or writes 403.
func callerOrReject(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "missing caller identity", "set the "+middleware.PartyIDHeader+" header")
		return domain.Caller{}, false
	}
	return caller, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
