package postgres

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rrens/shop-assistant/internal/config"
	"github.com/Rrens/shop-assistant/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource(t *testing.T) {
	assert.Equal(t, "file://migrations", MigrationSource("migrations"))
}

func TestPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "shop", Password: "secret",
		Database: "shop_analytics", SSLMode: "disable",
		MaxConns: 8, MinConns: 2, MaxConnIdle: 2 * time.Minute,
	}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 2*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "shop_analytics", pc.ConnConfig.Database)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])

	cfg.MinConns = 20
	pc, err = poolConfig(cfg)
	require.NoError(t, err)
	assert.Zero(t, pc.MinConns)
}

func TestDB_PingWithoutPool(t *testing.T) {
	var db *DB
	assert.ErrorIs(t, db.Ping(context.Background()), errNoPool)
	assert.NotPanics(t, db.Close)
}

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("Requires database connection - set POSTGRES_TEST_DSN to run as integration test")
	}

	dir, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(dsn, MigrationSource(dir)))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "TRUNCATE behavior_events")
		pool.Close()
	})
	return pool
}

func TestBehaviorRepository_RecentViewers(t *testing.T) {
	repo := NewBehaviorRepository(testPool(t))
	ctx := context.Background()
	now := time.Now()

	events := []domain.BehaviorEvent{
		{UserID: "u1", EventType: domain.EventProductView, ProductID: "p1", CreatedAt: now.Add(-5 * time.Minute)},
		{UserID: "u1", EventType: domain.EventProductView, ProductID: "p1", CreatedAt: now.Add(-4 * time.Minute)},
		{UserID: "u2", EventType: domain.EventProductView, ProductID: "p1", CreatedAt: now.Add(-3 * time.Minute)},
		{UserID: "u3", EventType: domain.EventProductView, ProductID: "p1", CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: "u4", EventType: domain.EventCartAbandon, ProductID: "p1", Properties: map[string]any{"total": 1}},
	}
	for _, e := range events {
		require.NoError(t, repo.Track(ctx, e))
	}

	count, err := repo.RecentViewers(ctx, "p1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.RecentViewers(ctx, "p2", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}
