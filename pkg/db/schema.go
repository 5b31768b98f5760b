package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the planner tables. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS travel_plans (
		id         TEXT PRIMARY KEY,
		position   INT NOT NULL,
		body       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS travel_plans_unreadable (
		id       TEXT PRIMARY KEY,
		body     JSONB NOT NULL,
		reason   TEXT NOT NULL,
		moved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS planner_state (
		key   TEXT PRIMARY KEY,
		value JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_items (
		id              TEXT PRIMARY KEY,
		region          TEXT NOT NULL,
		body            JSONB NOT NULL,
		suggested_slots TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_catalog_items_region ON catalog_items (region)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}
