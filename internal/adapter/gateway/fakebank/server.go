package fakebank

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iho/jointledger/internal/adapter/gateway/bankapi"
	"github.com/iho/jointledger/internal/domain"
)

// Handler serves the bank wire protocol spoken by bankapi.Client.
// An empty apiKey disables the key check.
func (b *Bank) Handler(apiKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requireKey(apiKey))

	r.Post(bankapi.PathDebit, func(w http.ResponseWriter, req *http.Request) {
		var body bankapi.DebitBody
		if !decode(w, req, &body) {
			return
		}
		resp, err := b.Debit(req.Context(), body.Request())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bankapi.MovementReply{TransactionID: resp.TransactionID, Duplicate: resp.Duplicate})
	})

	r.Post(bankapi.PathCredit, func(w http.ResponseWriter, req *http.Request) {
		var body bankapi.CreditBody
		if !decode(w, req, &body) {
			return
		}
		resp, err := b.Credit(req.Context(), body.Request())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bankapi.MovementReply{TransactionID: resp.TransactionID, Duplicate: resp.Duplicate})
	})

	r.Post(bankapi.PathBalance, func(w http.ResponseWriter, req *http.Request) {
		var body bankapi.BalanceBody
		if !decode(w, req, &body) {
			return
		}
		resp, err := b.Balance(req.Context(), body.Request())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bankapi.BalanceReply{Balance: resp.Balance, AsOf: resp.AsOf})
	})

	r.Post(bankapi.PathHistory, func(w http.ResponseWriter, req *http.Request) {
		var body bankapi.HistoryBody
		if !decode(w, req, &body) {
			return
		}
		records, err := b.TransactionHistory(req.Context(), body.Request())
		if err != nil {
			writeError(w, err)
			return
		}
		reply := bankapi.HistoryReply{Transactions: make([]bankapi.HistoryRecord, 0, len(records))}
		for _, rec := range records {
			reply.Transactions = append(reply.Transactions, bankapi.NewHistoryRecord(rec))
		}
		writeJSON(w, http.StatusOK, reply)
	})

	return r
}

func requireKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" && r.Header.Get(bankapi.HeaderAPIKey) != apiKey {
				writeJSON(w, http.StatusUnauthorized, bankapi.ErrorReply{Code: "UNAUTHORIZED", Message: "invalid api key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, bankapi.ErrorReply{Code: domain.GatewayCodeInvalidRequest, Message: err.Error()})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		writeJSON(w, gwErr.Status, bankapi.ErrorReply{Code: gwErr.Code, Message: gwErr.Message})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, bankapi.ErrorReply{Code: "UNAVAILABLE", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
