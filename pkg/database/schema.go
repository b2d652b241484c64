package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL for analysis history. Every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS resume_analyses (
		id                   UUID PRIMARY KEY,
		resume_hash          TEXT NOT NULL,
		job_description_hash TEXT NOT NULL,
		keywords             TEXT[] NOT NULL DEFAULT '{}',
		sections             JSONB NOT NULL,
		overall_score        INTEGER NOT NULL,
		source               TEXT NOT NULL DEFAULT 'json',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_resume_analyses_created_at ON resume_analyses (created_at DESC)`,
}

// EnsureSchema applies Schema in order.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range Schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
