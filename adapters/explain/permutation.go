// Package explain provides post-hoc, model-agnostic importance explainers
// implementing the same importance contract as the native model families.
package explain

import (
	"context"
	"fmt"
	"math/rand"

	"featrank/domain/core"
	"featrank/domain/dataset"
	"featrank/domain/importance"
	"featrank/ports"
)

// PermutationExplainer scores each feature by how much shuffling its column
// degrades the model's predictions: the mean increase in squared error over
// several independent shuffles. Works against any trained model, including
// families without a native importance mechanism.
type PermutationExplainer struct {
	repeats int
	rng     ports.RNGPort
}

// NewPermutationExplainer creates an explainer with the given shuffle count
// per feature (minimum 1, default 5)
func NewPermutationExplainer(repeats int, rng ports.RNGPort) *PermutationExplainer {
	if repeats < 1 {
		repeats = 5
	}
	return &PermutationExplainer{repeats: repeats, rng: rng}
}

// Name returns the explainer name
func (e *PermutationExplainer) Name() string {
	return "permutation"
}

// Importance computes permutation importance for every table feature.
// Scores are clamped at zero: a shuffle that accidentally improves the fit
// reads as zero importance, keeping the non-negativity invariant.
func (e *PermutationExplainer) Importance(ctx context.Context, m ports.Model, ds *dataset.Table) (importance.Vector, error) {
	if ds.Rows() < 2 {
		return nil, fmt.Errorf("%w: %d rows", core.ErrInsufficientData, ds.Rows())
	}

	baseline := meanSquaredError(m.Predict(ds.X), ds.Y)
	stream := e.rng.SeededStream("permutation-explainer")

	vec := make(importance.Vector, ds.Cols())
	scratch := make([][]float64, ds.Rows())
	for i, row := range ds.X {
		scratch[i] = append([]float64(nil), row...)
	}

	for j, feature := range ds.Features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		total := 0.0
		for r := 0; r < e.repeats; r++ {
			shuffleColumn(scratch, j, stream)
			total += meanSquaredError(m.Predict(scratch), ds.Y) - baseline
		}
		restoreColumn(scratch, ds.X, j)

		score := total / float64(e.repeats)
		if score < 0 {
			score = 0
		}
		vec[feature] = score
	}

	return vec, nil
}

func shuffleColumn(x [][]float64, col int, rng *rand.Rand) {
	n := len(x)
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		x[i][col], x[j][col] = x[j][col], x[i][col]
	}
}

func restoreColumn(dst, src [][]float64, col int) {
	for i := range dst {
		dst[i][col] = src[i][col]
	}
}

func meanSquaredError(predicted, actual []float64) float64 {
	sum := 0.0
	for i := range actual {
		diff := predicted[i] - actual[i]
		sum += diff * diff
	}
	return sum / float64(len(actual))
}
