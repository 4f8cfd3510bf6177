package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/iho/jointledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BANK_API_KEY", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.RetryMaxAttempts != 3 || cfg.RetryInitialInterval != 100*time.Millisecond {
		t.Fatalf("expected retry defaults 3/100ms, got %d/%s", cfg.RetryMaxAttempts, cfg.RetryInitialInterval)
	}

	if cfg.SyncLookback != 7*24*time.Hour {
		t.Fatalf("expected 7 day sync lookback, got %s", cfg.SyncLookback)
	}

	if cfg.EventsChannel != "" {
		t.Fatalf("expected events channel to default to empty, got %q", cfg.EventsChannel)
	}

	loc, err := cfg.BankLocation()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC bank location, got %v %v", loc, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("BANK_API_URL", "https://bank.example")
	t.Setenv("BANK_API_KEY", "top-secret")
	t.Setenv("BANK_BREAKER_FAILURES", "2")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("AUTO_MIGRATE", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.BankAPIURL != "https://bank.example" || cfg.BankAPIKey != "top-secret" || cfg.BankBreakerFailures != 2 {
		t.Fatalf("expected bank settings to be set, got %+v", cfg)
	}

	if cfg.RetryMaxAttempts != 5 || !cfg.AutoMigrate {
		t.Fatalf("expected retry and migrate overrides, got %d %v", cfg.RetryMaxAttempts, cfg.AutoMigrate)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestBankLocationInvalid(t *testing.T) {
	t.Setenv("BANK_TIMEZONE", "Nowhere/Special")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if _, err := cfg.BankLocation(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}
