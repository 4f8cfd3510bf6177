package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/jointledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"

	pendingMarker = "processing"
)

// IdempotencyMiddleware replays POST responses stored in Redis.
//
// Responses below 500 other than 2xx are rejected before any bank call, so
// their key is released for a retry. Server errors may follow a debit that
// already reached the bank and are kept and replayed like successes.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = scopedKey(r, key)

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, []byte(pendingMarker), m.ttl)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if exists {
			if len(cached) == 0 || string(cached) == pendingMarker {
				http.Error(w, "request with this idempotency key is in progress", http.StatusConflict)
				return
			}
			replay(w, cached)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		log := zerolog.Ctx(r.Context())
		if keepsKey(recorder.statusCode) {
			stored, err := json.Marshal(cachedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
			if err == nil {
				err = m.store.Update(r.Context(), key, stored, m.ttl)
			}
			if err != nil {
				log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotent response")
			}
			return
		}

		if err := m.store.Release(r.Context(), key); err != nil {
			log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
		}
	})
}

// cachedResponse is what a finished request leaves behind its key.
type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

func keepsKey(status int) bool {
	return (status >= 200 && status < 300) || status >= 500
}

// replay writes a stored response. Values without a status are written as
// a bare 200 body.
func replay(w http.ResponseWriter, cached []byte) {
	status, body := http.StatusOK, cached
	var stored cachedResponse
	if err := json.Unmarshal(cached, &stored); err == nil && stored.Status != 0 {
		status, body = stored.Status, stored.Body
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotency-Replay", "true")
	w.WriteHeader(status)
	w.Write(body)
}

// scopedKey keeps keys from different parties apart.
func scopedKey(r *http.Request, key string) string {
	if caller, ok := CallerFrom(r.Context()); ok {
		return caller.PartyID + ":" + key
	}
	return "anonymous:" + key
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
