// Package database provides PostgreSQL connection management and schema
// migration using pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventtix/eventtix/internal/config"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				return pool, nil
			}
			pool.Close()
			err = pingErr
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// Migrate creates the schema if it does not exist. The unique constraint on
// (user_id, event_id) is the real enforcement point for the
// one-registration-per-user-per-event rule; the CHECK on available_seats
// backs the conditional-decrement guard in the repository.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id              UUID PRIMARY KEY,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			event_date      TEXT NOT NULL,
			event_time      TEXT NOT NULL,
			venue           TEXT NOT NULL,
			total_seats     INTEGER NOT NULL,
			available_seats INTEGER NOT NULL,
			created_by      UUID NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL,
			CHECK (available_seats >= 0 AND available_seats <= total_seats)
		)`,
		`CREATE INDEX IF NOT EXISTS events_created_by_idx ON events (created_by)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id            UUID PRIMARY KEY,
			user_id       UUID NOT NULL,
			event_id      UUID NOT NULL,
			ticket_number TEXT NOT NULL UNIQUE,
			ticket_path   TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, event_id)
		)`,
		`CREATE INDEX IF NOT EXISTS registrations_user_id_idx ON registrations (user_id)`,
		`CREATE INDEX IF NOT EXISTS registrations_event_id_idx ON registrations (event_id)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
