package ports

import (
	"context"

	"featrank/domain/dataset"
	"featrank/domain/importance"
)

// Model is a trained model handle produced by a ModelPort
type Model interface {
	// Predict returns one prediction per input row
	Predict(x [][]float64) []float64
}

// ModelPort wraps one model family behind the uniform
// fit/predict/importance contract. Families report importance on their own
// native scales (coefficient magnitude, impurity reduction, boosting gain);
// cross-model normalization happens downstream, never here.
type ModelPort interface {
	Name() string

	// Fit trains a model on the table's feature matrix and target
	Fit(ctx context.Context, ds *dataset.Table) (Model, error)

	// Importance extracts the raw per-feature importance of a model this
	// port produced. Scores are non-negative on the family's native scale.
	// Families without a native mechanism fail with
	// core.ErrUnsupportedImportance instead of silently returning zeros;
	// callers decide whether to substitute a post-hoc explainer.
	Importance(m Model) (importance.Vector, error)
}
