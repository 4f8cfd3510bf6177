package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

// Migrator applies the schema under a migrations directory.
type Migrator struct {
	databaseURL    string
	migrationsPath string
	logger         zerolog.Logger
}

// NewMigrator creates a new Migrator.
func NewMigrator(databaseURL, migrationsPath string, logger zerolog.Logger) *Migrator {
	return &Migrator{
		databaseURL:    databaseURL,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	mg, err := migrate.New("file://"+m.migrationsPath, m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mg, nil
}

// Up runs all pending migrations.
func (m *Migrator) Up() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("database migrations: no change")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.logger.Info().Str("path", m.migrationsPath).Msg("database migrations: applied successfully")
	return nil
}

// Down rolls back the last migration.
func (m *Migrator) Down() error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	m.logger.Info().Msg("database migrations: rolled back successfully")
	return nil
}
