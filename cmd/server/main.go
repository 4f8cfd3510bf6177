package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iho/jointledger/internal/adapter/gateway/bankapi"
	httpAdapter "github.com/iho/jointledger/internal/adapter/http"
	"github.com/iho/jointledger/internal/adapter/http/handler"
	"github.com/iho/jointledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/jointledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/jointledger/internal/adapter/repository/redis"
	"github.com/iho/jointledger/internal/infrastructure/config"
	"github.com/iho/jointledger/internal/infrastructure/eventpublisher"
	"github.com/iho/jointledger/internal/infrastructure/logger"
	"github.com/iho/jointledger/internal/infrastructure/metrics"
	"github.com/iho/jointledger/internal/infrastructure/postgres"
	"github.com/iho/jointledger/internal/infrastructure/redis"
	"github.com/iho/jointledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	location, err := cfg.BankLocation()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.BankTimezone).Msg("invalid bank timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, appLogger).Up(); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewIDGenerator()

	directory := redisRepo.NewCachedDirectory(
		accountRepo,
		redisRepo.NewCache(redisClient, "directory"),
		cfg.DirectoryCacheTTL,
		appLogger,
	)
	locker := redisRepo.NewLocker(redisClient, cfg.SyncLockTTL, appLogger)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	gateway := bankapi.NewClient(
		bankapi.Config{
			BaseURL:         cfg.BankAPIURL,
			APIKey:          cfg.BankAPIKey,
			Timeout:         cfg.BankAPITimeout,
			BreakerFailures: cfg.BankBreakerFailures,
			BreakerTimeout:  cfg.BankBreakerTimeout,
		},
		bankapi.WithObserver(appMetrics),
		bankapi.WithLogger(appLogger.With().Str("component", "bankapi").Logger()),
	)

	retry := newRetryPolicy(cfg)

	// Use cases
	reconciliationUC := usecase.NewReconciliationUseCase(usecase.ReconciliationConfig{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		LedgerRepo:  ledgerRepo,
		OutboxRepo:  outboxRepo,
		Directory:   directory,
		Gateway:     gateway,
		Locker:      locker,
		IDGen:       idGen,
		Retry:       retry,
		Lookback:    cfg.SyncLookback,
		Location:    location,
		Recorder:    appMetrics,
		Logger:      appLogger,
	})
	transferUC := usecase.NewTransferUseCase(usecase.TransferConfig{
		TxManager:   txManager,
		AccountRepo: accountRepo,
		Directory:   directory,
		Gateway:     gateway,
		OutboxRepo:  outboxRepo,
		IDGen:       idGen,
		Syncer:      reconciliationUC,
		Retry:       retry,
		Recorder:    appMetrics,
		Logger:      appLogger,
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
		Logger:      appLogger,
	})
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, directory, gateway, idGen)

	// Outbox relay
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  newOutboxPublisher(cfg, redisClient, appLogger),
		Observer:   appMetrics,
		Logger:     appLogger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, appMetrics)
	go cleanupLimiters(ctx, rateLimiter)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(handler.Postgres(pool), handler.Redis(redisClient)),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		MetricsHandler:   promhttp.Handler(),
		Logger:           &appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("bank", cfg.BankAPIURL).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// newRetryPolicy builds the concurrency retry policy from configuration.
func newRetryPolicy(cfg *config.Config) usecase.RetryPolicy {
	policy := usecase.DefaultRetryPolicy()
	if cfg.RetryMaxAttempts > 0 {
		policy.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialInterval > 0 {
		policy.InitialInterval = cfg.RetryInitialInterval
	}
	return policy
}

// newOutboxPublisher publishes to Redis when a channel is configured and
// logs events otherwise.
func newOutboxPublisher(cfg *config.Config, client *goredis.Client, l zerolog.Logger) eventpublisher.Publisher {
	if cfg.EventsChannel != "" && client != nil {
		return eventpublisher.NewRedisPublisher(client, cfg.EventsChannel)
	}
	return eventpublisher.NewLogPublisher(l)
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(time.Hour)
		}
	}
}
