// Package postgres stores shopper behavior analytics.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/Rrens/shop-assistant/internal/resilience"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const applicationName = "shop-assistant"

var errNoPool = errors.New("postgres pool is not open")

// DB holds the analytics connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// poolConfig maps DatabaseConfig onto pgx pool settings
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= pc.MaxConns {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdle > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdle
	}
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	return pc, nil
}

// NewDB opens the pool and waits for the server with startup retry
func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ping := func() error { return pool.Ping(ctx) }
	if err := resilience.RetryWithBackoff(ctx, resilience.StartupRetry, ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int32("max_conns", pc.MaxConns).
		Msg("Connected to PostgreSQL")
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping reports whether the analytics store is reachable
func (db *DB) Ping(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return errNoPool
	}
	return db.Pool.Ping(ctx)
}
