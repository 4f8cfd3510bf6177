package middleware

import (
	"context"
	"net/http"

	"github.com/iho/jointledger/internal/domain"
)

// PartyIDHeader carries the authenticated party id set by the upstream auth gateway.
const PartyIDHeader = "X-Party-ID"

type callerKey struct{}

// Identity stores the caller named by PartyIDHeader in the request context.
// Requests without the header pass through with no caller; handlers that
// need one reject them.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := domain.NewCaller(r.Header.Get(PartyIDHeader))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored by Identity.
func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.Caller)
	return caller, ok
}
