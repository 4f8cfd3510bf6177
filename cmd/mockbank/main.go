package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/iho/jointledger/internal/adapter/gateway/fakebank"
	"github.com/iho/jointledger/internal/infrastructure/logger"
)

type config struct {
	Port     string   `env:"MOCKBANK_PORT"     envDefault:"8090"`
	APIKey   string   `env:"MOCKBANK_API_KEY"  envDefault:""`
	Timezone string   `env:"MOCKBANK_TIMEZONE" envDefault:"UTC"`
	Accounts []string `env:"MOCKBANK_ACCOUNTS" envSeparator:";"`
	LogLevel string   `env:"LOG_LEVEL"         envDefault:"info"`
}

// seedAccount is one MOCKBANK_ACCOUNTS item:
// bank_code,account_number,owner_seq_no,holder,balance.
type seedAccount struct {
	BankCode   string
	Number     string
	OwnerSeqNo string
	Holder     string
	Balance    decimal.Decimal
}

func parseSeed(item string) (seedAccount, error) {
	parts := strings.Split(item, ",")
	if len(parts) != 5 {
		return seedAccount{}, fmt.Errorf("seed %q: want 5 comma-separated fields, got %d", item, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	balance, err := decimal.NewFromString(parts[4])
	if err != nil {
		return seedAccount{}, fmt.Errorf("seed %q: invalid balance: %w", item, err)
	}

	return seedAccount{
		BankCode:   parts[0],
		Number:     parts[1],
		OwnerSeqNo: parts[2],
		Holder:     parts[3],
		Balance:    balance,
	}, nil
}

func newBank(cfg config) (*fakebank.Bank, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	bank := fakebank.New(fakebank.WithLocation(loc))
	for _, item := range cfg.Accounts {
		if strings.TrimSpace(item) == "" {
			continue
		}
		seed, err := parseSeed(item)
		if err != nil {
			return nil, err
		}
		bank.Open(seed.BankCode, seed.Number, seed.OwnerSeqNo, seed.Holder, seed.Balance)
	}

	return bank, nil
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})

	bank, err := newBank(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed bank")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           bank.Handler(cfg.APIKey),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Int("accounts", len(cfg.Accounts)).Msg("starting mock bank")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("mock bank failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mock bank forced to shutdown")
	}
}
