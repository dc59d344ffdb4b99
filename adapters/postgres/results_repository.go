// Package postgres persists completed pipeline runs. Nested result tables
// are stored as JSONB alongside the flat manifest columns so a run can be
// reloaded in one query.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"featrank/domain/core"
	"featrank/internal/errors"
	"featrank/models"
	"featrank/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ResultsRepositoryImpl implements ResultsRepository for PostgreSQL
type ResultsRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultsRepository creates a new PostgreSQL results repository
func NewResultsRepository(db *sqlx.DB) ports.ResultsRepository {
	return &ResultsRepositoryImpl{db: db}
}

// SaveRun stores a completed run. Replays with the same run ID overwrite
// the previous record.
func (r *ResultsRepositoryImpl) SaveRun(ctx context.Context, result *models.RunResult) error {
	modelsJSON, err := json.Marshal(result.Manifest.Models)
	if err != nil {
		return fmt.Errorf("marshal models: %w", err)
	}
	consensusJSON, err := json.Marshal(result.Consensus)
	if err != nil {
		return fmt.Errorf("marshal consensus: %w", err)
	}
	stabilityJSON, err := json.Marshal(result.Stability)
	if err != nil {
		return fmt.Errorf("marshal stability: %w", err)
	}
	avgRanksJSON, err := json.Marshal(result.AvgRanks)
	if err != nil {
		return fmt.Errorf("marshal avg ranks: %w", err)
	}
	methodRanksJSON, err := json.Marshal(result.MethodRanks)
	if err != nil {
		return fmt.Errorf("marshal method ranks: %w", err)
	}
	agreementJSON, err := json.Marshal(result.Agreement)
	if err != nil {
		return fmt.Errorf("marshal agreement: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO importance_runs (
			run_id, dataset, target, feature_count, row_count, models,
			iterations, subsample_fraction, train_fraction, seed, fingerprint,
			consensus, stability, avg_ranks, method_ranks, agreement, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (run_id) DO UPDATE SET
			dataset = EXCLUDED.dataset,
			target = EXCLUDED.target,
			feature_count = EXCLUDED.feature_count,
			row_count = EXCLUDED.row_count,
			models = EXCLUDED.models,
			iterations = EXCLUDED.iterations,
			subsample_fraction = EXCLUDED.subsample_fraction,
			train_fraction = EXCLUDED.train_fraction,
			seed = EXCLUDED.seed,
			fingerprint = EXCLUDED.fingerprint,
			consensus = EXCLUDED.consensus,
			stability = EXCLUDED.stability,
			avg_ranks = EXCLUDED.avg_ranks,
			method_ranks = EXCLUDED.method_ranks,
			agreement = EXCLUDED.agreement`,
		result.Manifest.RunID, result.Manifest.Dataset, result.Manifest.Target,
		result.Manifest.FeatureCount, result.Manifest.RowCount, modelsJSON,
		result.Manifest.Iterations, result.Manifest.SubsampleFraction,
		result.Manifest.TrainFraction, result.Manifest.Seed,
		result.Manifest.Fingerprint, consensusJSON, stabilityJSON,
		avgRanksJSON, methodRanksJSON, agreementJSON, result.Manifest.CreatedAt)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// GetRun retrieves one run by ID
func (r *ResultsRepositoryImpl) GetRun(ctx context.Context, runID string) (*models.RunResult, error) {
	return r.scanRun(r.db.QueryRowContext(ctx, `
		SELECT run_id, dataset, target, feature_count, row_count, models,
			   iterations, subsample_fraction, train_fraction, seed, fingerprint,
			   consensus, stability, avg_ranks, method_ranks, agreement, created_at
		FROM importance_runs WHERE run_id = $1`, runID))
}

// LatestRun retrieves the most recently created run
func (r *ResultsRepositoryImpl) LatestRun(ctx context.Context) (*models.RunResult, error) {
	return r.scanRun(r.db.QueryRowContext(ctx, `
		SELECT run_id, dataset, target, feature_count, row_count, models,
			   iterations, subsample_fraction, train_fraction, seed, fingerprint,
			   consensus, stability, avg_ranks, method_ranks, agreement, created_at
		FROM importance_runs ORDER BY created_at DESC LIMIT 1`))
}

func (r *ResultsRepositoryImpl) scanRun(row *sql.Row) (*models.RunResult, error) {
	var result models.RunResult
	var modelsJSON, consensusJSON, stabilityJSON, avgRanksJSON, methodRanksJSON, agreementJSON []byte

	err := row.Scan(
		&result.Manifest.RunID, &result.Manifest.Dataset, &result.Manifest.Target,
		&result.Manifest.FeatureCount, &result.Manifest.RowCount, &modelsJSON,
		&result.Manifest.Iterations, &result.Manifest.SubsampleFraction,
		&result.Manifest.TrainFraction, &result.Manifest.Seed,
		&result.Manifest.Fingerprint, &consensusJSON, &stabilityJSON,
		&avgRanksJSON, &methodRanksJSON, &agreementJSON, &result.Manifest.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan run")
	}

	if err := json.Unmarshal(modelsJSON, &result.Manifest.Models); err != nil {
		return nil, fmt.Errorf("unmarshal models: %w", err)
	}
	if err := json.Unmarshal(consensusJSON, &result.Consensus); err != nil {
		return nil, fmt.Errorf("unmarshal consensus: %w", err)
	}
	if err := json.Unmarshal(stabilityJSON, &result.Stability); err != nil {
		return nil, fmt.Errorf("unmarshal stability: %w", err)
	}
	if err := json.Unmarshal(avgRanksJSON, &result.AvgRanks); err != nil {
		return nil, fmt.Errorf("unmarshal avg ranks: %w", err)
	}
	if err := json.Unmarshal(methodRanksJSON, &result.MethodRanks); err != nil {
		return nil, fmt.Errorf("unmarshal method ranks: %w", err)
	}
	if err := json.Unmarshal(agreementJSON, &result.Agreement); err != nil {
		return nil, fmt.Errorf("unmarshal agreement: %w", err)
	}
	return &result, nil
}

// ListManifests returns run manifests, newest first
func (r *ResultsRepositoryImpl) ListManifests(ctx context.Context, limit int) ([]models.RunManifest, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, dataset, target, feature_count, row_count, models,
			   iterations, subsample_fraction, train_fraction, seed, fingerprint, created_at
		FROM importance_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer rows.Close()

	var manifests []models.RunManifest
	for rows.Next() {
		var m models.RunManifest
		var modelsJSON []byte
		if err := rows.Scan(&m.RunID, &m.Dataset, &m.Target, &m.FeatureCount,
			&m.RowCount, &modelsJSON, &m.Iterations, &m.SubsampleFraction,
			&m.TrainFraction, &m.Seed, &m.Fingerprint, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan manifest: %w", err)
		}
		if err := json.Unmarshal(modelsJSON, &m.Models); err != nil {
			return nil, fmt.Errorf("unmarshal models: %w", err)
		}
		manifests = append(manifests, m)
	}
	return manifests, rows.Err()
}
