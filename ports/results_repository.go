package ports

import (
	"context"

	"featrank/models"
)

// ResultsRepository persists completed pipeline runs and serves them to the
// reporting surfaces. Only whole runs are stored; there is no partial-run
// write path, so a cancelled run leaves nothing behind.
type ResultsRepository interface {
	SaveRun(ctx context.Context, result *models.RunResult) error
	GetRun(ctx context.Context, runID string) (*models.RunResult, error)
	LatestRun(ctx context.Context) (*models.RunResult, error)
	ListManifests(ctx context.Context, limit int) ([]models.RunManifest, error)
}
