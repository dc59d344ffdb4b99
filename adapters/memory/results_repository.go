// Package memory provides an in-process ResultsRepository used when no
// database is configured and by tests.
package memory

import (
	"context"
	"sync"

	"featrank/domain/core"
	"featrank/models"
	"featrank/ports"
)

// ResultsRepositoryImpl keeps runs in memory, insertion-ordered
type ResultsRepositoryImpl struct {
	mu    sync.RWMutex
	runs  map[string]*models.RunResult
	order []string
}

// NewResultsRepository creates an empty in-memory results repository
func NewResultsRepository() ports.ResultsRepository {
	return &ResultsRepositoryImpl{runs: make(map[string]*models.RunResult)}
}

// SaveRun stores a completed run, replacing any run with the same ID
func (r *ResultsRepositoryImpl) SaveRun(ctx context.Context, result *models.RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := result.Manifest.RunID
	if _, exists := r.runs[id]; !exists {
		r.order = append(r.order, id)
	}
	copied := *result
	r.runs[id] = &copied
	return nil
}

// GetRun retrieves one run by ID
func (r *ResultsRepositoryImpl) GetRun(ctx context.Context, runID string) (*models.RunResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.runs[runID]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	copied := *result
	return &copied, nil
}

// LatestRun retrieves the most recently saved run
func (r *ResultsRepositoryImpl) LatestRun(ctx context.Context) (*models.RunResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil, core.ErrRunNotFound
	}
	copied := *r.runs[r.order[len(r.order)-1]]
	return &copied, nil
}

// ListManifests returns manifests newest first
func (r *ResultsRepositoryImpl) ListManifests(ctx context.Context, limit int) ([]models.RunManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	manifests := make([]models.RunManifest, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(manifests) < limit; i-- {
		manifests = append(manifests, r.runs[r.order[i]].Manifest)
	}
	return manifests, nil
}
