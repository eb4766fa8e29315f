package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultConnectTimeout bounds each new connection attempt.
const DefaultConnectTimeout = 5 * time.Second

// PoolOptions tunes NewPgxPool.
type PoolOptions struct {
	// Ping verifies the server is reachable before the pool is returned.
	Ping           bool
	ConnectTimeout time.Duration
	Logger         *slog.Logger
}

// NewPgxPool creates a PostgreSQL connection pool for the ledger store.
func NewPgxPool(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}
	config.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	if config.ConnConfig.ConnectTimeout <= 0 {
		config.ConnConfig.ConnectTimeout = DefaultConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if opts.Ping {
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Connected to PostgreSQL", slog.String("host", config.ConnConfig.Host), slog.String("database", config.ConnConfig.Database))
	}
	return pool, nil
}

// ClosePgxPool closes the pool; a nil pool is ignored.
func ClosePgxPool(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	pool.Close()
	slog.Info("PostgreSQL connection pool closed")
}
