package regressors

import (
	"context"
	"fmt"

	"featrank/domain/core"
	"featrank/domain/dataset"
	"featrank/domain/importance"
	"featrank/ports"
)

// BoostConfig tunes the gradient-boosted-stumps family
type BoostConfig struct {
	Rounds       int     // boosting rounds (default: 100)
	LearningRate float64 // shrinkage per round (default: 0.1)
	MinLeaf      int     // minimum rows per leaf (default: 3)
}

// BoostPort fits gradient-boosted regression stumps on squared error.
// Native importance is accumulated split gain per feature across rounds.
type BoostPort struct {
	cfg BoostConfig
}

// NewBoostPort creates the gradient boosting model family
func NewBoostPort(cfg BoostConfig) *BoostPort {
	if cfg.Rounds == 0 {
		cfg.Rounds = 100
	}
	if cfg.LearningRate == 0 {
		cfg.LearningRate = 0.1
	}
	if cfg.MinLeaf == 0 {
		cfg.MinLeaf = 3
	}
	return &BoostPort{cfg: cfg}
}

// Name returns the model family name
func (p *BoostPort) Name() string {
	return "boost"
}

// BoostModel is a trained boosting handle
type BoostModel struct {
	features     []string
	base         float64
	learningRate float64
	stumps       []*regressionTree
	gains        []float64
}

// Fit runs gradient boosting: each round fits a depth-1 tree to the
// current residuals and shrinks its contribution by the learning rate
func (p *BoostPort) Fit(ctx context.Context, ds *dataset.Table) (ports.Model, error) {
	n := ds.Rows()
	if n < 2*p.cfg.MinLeaf {
		return nil, fmt.Errorf("%w: %d rows", core.ErrInsufficientData, n)
	}

	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	base := meanOf(ds.Y, rows)
	residuals := make([]float64, n)
	for i, y := range ds.Y {
		residuals[i] = y - base
	}

	gains := make([]float64, ds.Cols())
	stumps := make([]*regressionTree, 0, p.cfg.Rounds)

	for round := 0; round < p.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stump := buildTree(ds.X, residuals, rows, 0, 1, p.cfg.MinLeaf, gains)
		if stump.isLeaf() {
			break // residuals no longer splittable
		}
		stumps = append(stumps, stump)

		for i, row := range ds.X {
			residuals[i] -= p.cfg.LearningRate * stump.predict(row)
		}
	}

	return &BoostModel{
		features:     ds.Features,
		base:         base,
		learningRate: p.cfg.LearningRate,
		stumps:       stumps,
		gains:        gains,
	}, nil
}

// Predict sums the shrunken stump contributions over the base prediction
func (m *BoostModel) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		pred := m.base
		for _, stump := range m.stumps {
			pred += m.learningRate * stump.predict(row)
		}
		out[i] = pred
	}
	return out
}

// Importance reports accumulated boosting gain per feature
func (p *BoostPort) Importance(m ports.Model) (importance.Vector, error) {
	bm, ok := m.(*BoostModel)
	if !ok {
		return nil, fmt.Errorf("model was not trained by the boost family")
	}

	vec := make(importance.Vector, len(bm.features))
	for j, name := range bm.features {
		vec[name] = bm.gains[j]
	}
	return vec, nil
}
