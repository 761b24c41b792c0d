package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// MigrationSource turns a directory into a golang-migrate source URL
func MigrationSource(dir string) string {
	return "file://" + dir
}

// RunMigrations applies all pending up migrations
func RunMigrations(dsn, sourceURL string) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Msg("Database migration: success")
	return nil
}

// RollbackMigrations reverts the given number of migrations
func RollbackMigrations(dsn, sourceURL string, steps int) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database migration: nothing to roll back")
			return nil
		}
		return fmt.Errorf("failed to roll back: %w", err)
	}

	log.Info().Int("steps", steps).Msg("Database migration: rolled back")
	return nil
}
