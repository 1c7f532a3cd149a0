package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tsubasarcs/etf-strategy-automation/pkg/config"
)

// DB wraps the pgxpool.Pool. Database connections are created in this
// package and nowhere else.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(cfg *config.Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Migrate creates the tables this application needs.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS etf_prices (
			etf_code     TEXT        NOT NULL,
			trade_date   DATE        NOT NULL,
			open_price   DOUBLE PRECISION NOT NULL,
			high_price   DOUBLE PRECISION NOT NULL,
			low_price    DOUBLE PRECISION NOT NULL,
			close_price  DOUBLE PRECISION NOT NULL,
			volume       BIGINT      NOT NULL,
			turnover     DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (etf_code, trade_date)
		)`,
		`CREATE TABLE IF NOT EXISTS dividend_dates (
			etf_code  TEXT NOT NULL,
			ex_date   DATE NOT NULL,
			source    TEXT NOT NULL DEFAULT 'manual',
			saved_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (etf_code, ex_date)
		)`,
		`CREATE TABLE IF NOT EXISTS opportunities (
			id              BIGSERIAL PRIMARY KEY,
			run_at          TIMESTAMPTZ NOT NULL,
			evaluation_date DATE        NOT NULL,
			etf_code        TEXT        NOT NULL,
			window_kind     TEXT        NOT NULL,
			action          TEXT,
			confidence      TEXT        NOT NULL,
			detail          JSONB       NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_run_at ON opportunities (run_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
