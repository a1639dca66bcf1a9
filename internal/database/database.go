// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sijgeria/community-portal/internal/config"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.Settings) (*pgxpool.Pool, error) {
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
			if pingErr := pool.Ping(ctx); pingErr == nil {
				break
			}
			pool.Close()
		}
		log.Printf("db connect attempt %d/5 failed: %v - retrying in 2s", attempt, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// schema is applied at startup. Sub-events and their roles are stored as a
// JSON document on the event row, mirroring their lack of independent
// identity; participants get their own rows so the duplicate guard is a
// single indexed lookup on (event_id, role, email).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id                   UUID PRIMARY KEY,
		name                 TEXT NOT NULL,
		event_date           TIMESTAMPTZ NOT NULL,
		event_time           TEXT NOT NULL,
		registration_closing TIMESTAMPTZ NOT NULL,
		sub_events           JSONB NOT NULL,
		status               TEXT NOT NULL DEFAULT 'active',
		created_by           TEXT NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS participations (
		id             UUID PRIMARY KEY,
		event_id       UUID NOT NULL REFERENCES events(id),
		sub_event_name TEXT NOT NULL,
		registered_by  TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS participants (
		id               BIGSERIAL PRIMARY KEY,
		participation_id UUID NOT NULL REFERENCES participations(id),
		event_id         UUID NOT NULL,
		role             TEXT NOT NULL,
		participant_name TEXT NOT NULL,
		email            TEXT NOT NULL,
		phone            TEXT NOT NULL
	)`,
	// One person per role per event. The registration validator rejects
	// duplicates first; this constraint closes the race window between two
	// concurrent submissions that both pass the check.
	`CREATE UNIQUE INDEX IF NOT EXISTS participants_event_role_email_key
		ON participants (event_id, role, email)`,
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		full_name  TEXT NOT NULL,
		email      TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
