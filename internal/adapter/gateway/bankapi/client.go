// Package bankapi is the HTTP client for the bank's open-banking gateway.
package bankapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iho/jointledger/internal/domain"
	"github.com/iho/jointledger/internal/usecase"
)

const tracerName = "github.com/iho/jointledger/internal/adapter/gateway/bankapi"

// maxErrorBody bounds how much of a rejection body is read.
const maxErrorBody = 512

// Observer receives one measurement per gateway call.
type Observer interface {
	ObserveGatewayCall(op, outcome string, d time.Duration)
}

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// BreakerFailures is the number of consecutive transport failures that
	// opens the circuit.
	BreakerFailures uint32
	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration
}

// Client implements usecase.BankGateway over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
	observer   Observer
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver reports call latency and outcome.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a new bank gateway client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer(tracerName),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bank-gateway",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A rejection means the bank is up and answering.
		IsSuccessful: func(err error) bool {
			var gwErr *domain.GatewayError
			return err == nil || errors.As(err, &gwErr)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("bank gateway circuit changed state")
		},
	})

	return c
}

var _ usecase.BankGateway = (*Client)(nil)

// Debit withdraws from an account. It is sent once; the correlation id
// travels as the idempotency key.
func (c *Client) Debit(ctx context.Context, req usecase.DebitRequest) (*usecase.DebitResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var reply MovementReply
	if err := c.call(ctx, "debit", PathDebit, req.CorrelationID, NewDebitBody(req), &reply); err != nil {
		return nil, err
	}

	return &usecase.DebitResponse{TransactionID: reply.TransactionID, Duplicate: reply.Duplicate}, nil
}

// Credit deposits into an account.
func (c *Client) Credit(ctx context.Context, req usecase.CreditRequest) (*usecase.CreditResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var reply MovementReply
	if err := c.call(ctx, "credit", PathCredit, req.CorrelationID, NewCreditBody(req), &reply); err != nil {
		return nil, err
	}

	return &usecase.CreditResponse{TransactionID: reply.TransactionID, Duplicate: reply.Duplicate}, nil
}

// Balance reads the live balance.
func (c *Client) Balance(ctx context.Context, req usecase.BalanceRequest) (*usecase.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := BalanceBody{OwnerSeqNo: req.OwnerSeqNo, BankCode: req.BankCode, AccountNumber: req.AccountNumber}

	var reply BalanceReply
	if err := c.call(ctx, "balance", PathBalance, "", body, &reply); err != nil {
		return nil, err
	}

	return &usecase.BalanceResponse{Balance: reply.Balance, AsOf: reply.AsOf}, nil
}

// TransactionHistory lists settled transactions between two dates.
func (c *Client) TransactionHistory(ctx context.Context, req usecase.HistoryRequest) ([]domain.RemoteTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := HistoryBody{
		OwnerSeqNo:    req.OwnerSeqNo,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		FromDate:      req.FromDate,
		ToDate:        req.ToDate,
	}

	var reply HistoryReply
	if err := c.call(ctx, "history", PathHistory, "", body, &reply); err != nil {
		return nil, err
	}

	records := make([]domain.RemoteTransaction, 0, len(reply.Transactions))
	for i, r := range reply.Transactions {
		rec := r.Transaction()
		if !rec.Direction.Valid() {
			return nil, fmt.Errorf("TransactionHistory: record %d: unknown direction %q", i, r.Direction)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (c *Client) call(ctx context.Context, op, path, idempotencyKey string, in, out any) error {
	ctx, span := c.tracer.Start(ctx, "bankapi."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.send(ctx, op, path, idempotencyKey, in, out)
	})

	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "circuit_open"
		err = fmt.Errorf("%s: %w: %w", op, domain.ErrGatewayUnavailable, err)
	case err != nil:
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			outcome = "rejected"
		} else {
			outcome = "error"
		}
	}

	if c.observer != nil {
		c.observer.ObserveGatewayCall(op, outcome, time.Since(start))
	}

	span.SetAttributes(attribute.String("bank.op", op), attribute.String("bank.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	return err
}

func (c *Client) send(ctx context.Context, op, path, idempotencyKey string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(HeaderAPIKey, c.apiKey)
	if idempotencyKey != "" {
		httpReq.Header.Set(HeaderIdempotencyKey, idempotencyKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: send: %w: %w", op, domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("bank response received")

	switch {
	case resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s: %w: status %d: %s", op, domain.ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	case resp.StatusCode >= 400:
		return rejection(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}

	return nil
}

func rejection(op string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	gwErr := &domain.GatewayError{Op: op, Status: resp.StatusCode}

	var reply ErrorReply
	if err := json.Unmarshal(respBody, &reply); err == nil && reply.Code != "" {
		gwErr.Code = reply.Code
		gwErr.Message = reply.Message
	} else {
		gwErr.Message = string(respBody)
	}

	return gwErr
}
