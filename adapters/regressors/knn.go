package regressors

import (
	"context"
	"fmt"
	"sort"

	"featrank/domain/core"
	"featrank/domain/dataset"
	"featrank/domain/importance"
	"featrank/ports"
)

// KNNPort fits a k-nearest-neighbors regressor. The family has no native
// importance mechanism: Importance always fails with UnsupportedImportance
// so callers substitute a post-hoc explainer instead of receiving silent
// zeros.
type KNNPort struct {
	k int
}

// NewKNNPort creates the k-nearest-neighbors model family
func NewKNNPort(k int) *KNNPort {
	if k <= 0 {
		k = 5
	}
	return &KNNPort{k: k}
}

// Name returns the model family name
func (p *KNNPort) Name() string {
	return "knn"
}

// KNNModel memorizes the training table
type KNNModel struct {
	k        int
	features []string
	x        [][]float64
	y        []float64
}

// Fit stores the training rows
func (p *KNNPort) Fit(ctx context.Context, ds *dataset.Table) (ports.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds.Rows() < p.k {
		return nil, fmt.Errorf("%w: %d rows for k=%d", core.ErrInsufficientData, ds.Rows(), p.k)
	}

	x := make([][]float64, ds.Rows())
	for i, row := range ds.X {
		x[i] = append([]float64(nil), row...)
	}
	return &KNNModel{
		k:        p.k,
		features: ds.Features,
		x:        x,
		y:        append([]float64(nil), ds.Y...),
	}, nil
}

// Predict averages the targets of the k nearest training rows
func (m *KNNModel) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	dists := make([]struct {
		d float64
		i int
	}, len(m.x))

	for qi, query := range x {
		for i, row := range m.x {
			d := 0.0
			for j := range row {
				diff := row[j] - query[j]
				d += diff * diff
			}
			dists[i].d = d
			dists[i].i = i
		}
		sort.Slice(dists, func(a, b int) bool { return dists[a].d < dists[b].d })

		sum := 0.0
		for i := 0; i < m.k; i++ {
			sum += m.y[dists[i].i]
		}
		out[qi] = sum / float64(m.k)
	}
	return out
}

// Importance always fails: nearest-neighbor averaging has no per-feature
// attribution of its own
func (p *KNNPort) Importance(m ports.Model) (importance.Vector, error) {
	return nil, core.NewUnsupportedImportanceError(p.Name())
}
