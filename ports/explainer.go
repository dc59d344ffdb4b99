package ports

import (
	"context"

	"featrank/domain/dataset"
	"featrank/domain/importance"
)

// ExplainerPort derives post-hoc importance from any trained model,
// independent of the model family's native mechanism. It fills the same
// contract shape as ModelPort.Importance so the aggregation and comparison
// layers treat native and explainer-derived scores identically.
type ExplainerPort interface {
	Name() string

	// Importance scores each feature of the table against the trained model
	Importance(ctx context.Context, m Model, ds *dataset.Table) (importance.Vector, error)
}
