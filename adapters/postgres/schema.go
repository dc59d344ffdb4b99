package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the results table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS importance_runs (
			run_id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL,
			target TEXT NOT NULL,
			feature_count INT NOT NULL,
			row_count INT NOT NULL,
			models JSONB NOT NULL,
			iterations INT NOT NULL,
			subsample_fraction DOUBLE PRECISION NOT NULL,
			train_fraction DOUBLE PRECISION NOT NULL,
			seed BIGINT NOT NULL,
			fingerprint TEXT NOT NULL,
			consensus JSONB NOT NULL,
			stability JSONB NOT NULL,
			avg_ranks JSONB NOT NULL,
			method_ranks JSONB NOT NULL,
			agreement JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create importance_runs table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_importance_runs_created_at
		ON importance_runs (created_at DESC)`)
	if err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}
	return nil
}
