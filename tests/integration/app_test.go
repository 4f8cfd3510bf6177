package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/adapter/gateway/bankapi"
	"github.com/iho/jointledger/internal/adapter/gateway/fakebank"
	adaptershttp "github.com/iho/jointledger/internal/adapter/http"
	"github.com/iho/jointledger/internal/adapter/http/handler"
	"github.com/iho/jointledger/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/jointledger/internal/adapter/repository/redis"
	infraredis "github.com/iho/jointledger/internal/infrastructure/redis"
	"github.com/iho/jointledger/internal/usecase"
	"github.com/iho/jointledger/tests/testutil"
)

// app is the full HTTP stack over Postgres, Redis and an in-process bank.
type app struct {
	db     *testutil.TestDB
	bank   *fakebank.Bank
	sync   *usecase.ReconciliationUseCase
	router http.Handler
}

func newApp(t *testing.T) *app {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(ctx)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })
	if err := redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	bank := fakebank.New()
	bankServer := httptest.NewServer(bank.Handler("test-key"))
	t.Cleanup(bankServer.Close)

	gateway := bankapi.NewClient(bankapi.Config{
		BaseURL: bankServer.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})

	pool := testDB.Pool
	logger := zerolog.Nop()
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewIDGenerator()
	directory := redisrepo.NewCachedDirectory(accountRepo, redisrepo.NewCache(redisClient, "directory"), time.Minute, logger)
	locker := redisrepo.NewLocker(redisClient, 10*time.Second, logger)

	reconciliationUC := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		LedgerRepo:  ledgerRepo,
		OutboxRepo:  outboxRepo,
		Directory:   directory,
		Gateway:     gateway,
		Locker:      locker,
		IDGen:       idGen,
		Retry:       usecase.DefaultRetryPolicy(),
		Logger:      logger,
	})
	transferUC := usecase.NewTransferUseCase(usecase.TransferConfig{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		Directory:   directory,
		Gateway:     gateway,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Syncer:      reconciliationUC,
		Retry:       usecase.DefaultRetryPolicy(),
		Logger:      logger,
	})
	ledgerUC := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		LedgerRepo:  ledgerRepo,
		OutboxRepo:  outboxRepo,
		AuditRepo:   auditRepo,
		Directory:   directory,
		Syncer:      reconciliationUC,
		IDGen:       idGen,
		Logger:      logger,
	})
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, directory, gateway, idGen)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(handler.Postgres(pool), handler.Redis(redisClient)),
		IdempotencyStore: redisrepo.NewIdempotencyStore(redisClient),
	})

	return &app{db: testDB, bank: bank, sync: reconciliationUC, router: router}
}

// household registers a joint account shared by alice and bob plus a
// personal account for each, all opened at the bank.
type household struct {
	joint, alice, bob string
}

func (a *app) seedHousehold(t *testing.T, jointBalance decimal.Decimal) household {
	t.Helper()
	ctx := context.Background()

	joint := a.db.CreateTestAccount(ctx, "joint", "household-1", "Kim Household", "1000000001", "alice", "bob")
	alice := a.db.CreateTestAccount(ctx, "personal", "alice", "Alice Kim", "2000000001")
	bob := a.db.CreateTestAccount(ctx, "personal", "bob", "Bob Kim", "3000000001")

	a.bank.OpenAccount(joint, jointBalance)
	a.bank.OpenAccount(alice, decimal.Zero)
	a.bank.OpenAccount(bob, decimal.Zero)

	return household{joint: joint.ID, alice: alice.ID, bob: bob.ID}
}

func (a *app) do(t *testing.T, method, path, partyID, idempotencyKey string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if partyID != "" {
		req.Header.Set("X-Party-ID", partyID)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rec.Body.String())
	}
}
