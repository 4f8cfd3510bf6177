package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/iho/jointledger/internal/adapter/http/dto"
	"github.com/iho/jointledger/internal/infrastructure/logger"
)

// Recovery turns a handler panic into a 500 JSON error. It sits outside the
// idempotency middleware, so a transfer that panics leaves its key pending
// until the TTL runs out and a resend gets 409 instead of a second debit.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			l := logger.FromContext(r.Context(), log.Logger)
			event := l.Error().
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Str("method", r.Method).
				Str("path", r.URL.Path)
			if caller, ok := CallerFrom(r.Context()); ok {
				event = event.Str("party_id", caller.PartyID)
			}
			event.Msg("handler panicked")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "internal server error"})
		}()

		next.ServeHTTP(w, r)
	})
}
