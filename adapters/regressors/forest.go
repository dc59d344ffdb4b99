package regressors

import (
	"context"
	"fmt"
	"math/rand"

	"featrank/domain/core"
	"featrank/domain/dataset"
	"featrank/domain/importance"
	"featrank/ports"
)

// ForestConfig tunes the bagged-trees family
type ForestConfig struct {
	Trees    int   // number of bagged trees (default: 50)
	MaxDepth int   // per-tree depth limit (default: 6)
	MinLeaf  int   // minimum rows per leaf (default: 3)
	Seed     int64 // bootstrap seed (default: 1)
}

// ForestPort fits an ensemble of bagged regression trees. Native importance
// is total impurity (SSE) reduction per feature summed across all trees.
type ForestPort struct {
	cfg ForestConfig
}

// NewForestPort creates the bagged-trees model family
func NewForestPort(cfg ForestConfig) *ForestPort {
	if cfg.Trees == 0 {
		cfg.Trees = 50
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 6
	}
	if cfg.MinLeaf == 0 {
		cfg.MinLeaf = 3
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	return &ForestPort{cfg: cfg}
}

// Name returns the model family name
func (p *ForestPort) Name() string {
	return "forest"
}

// ForestModel is a trained bagged-trees handle
type ForestModel struct {
	features []string
	trees    []*regressionTree
	gains    []float64
}

// Fit grows the ensemble on bootstrap samples of the table.
// Each Fit call uses its own RNG so concurrent fits never share state.
func (p *ForestPort) Fit(ctx context.Context, ds *dataset.Table) (ports.Model, error) {
	n := ds.Rows()
	if n < 2*p.cfg.MinLeaf {
		return nil, fmt.Errorf("%w: %d rows", core.ErrInsufficientData, n)
	}

	rng := rand.New(rand.NewSource(p.cfg.Seed))
	gains := make([]float64, ds.Cols())
	trees := make([]*regressionTree, 0, p.cfg.Trees)

	for t := 0; t < p.cfg.Trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows := make([]int, n)
		for i := range rows {
			rows[i] = rng.Intn(n)
		}
		trees = append(trees, buildTree(ds.X, ds.Y, rows, 0, p.cfg.MaxDepth, p.cfg.MinLeaf, gains))
	}

	return &ForestModel{features: ds.Features, trees: trees, gains: gains}, nil
}

// Predict averages the ensemble's predictions
func (m *ForestModel) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		sum := 0.0
		for _, tree := range m.trees {
			sum += tree.predict(row)
		}
		out[i] = sum / float64(len(m.trees))
	}
	return out
}

// Importance reports accumulated impurity reduction per feature
func (p *ForestPort) Importance(m ports.Model) (importance.Vector, error) {
	fm, ok := m.(*ForestModel)
	if !ok {
		return nil, fmt.Errorf("model was not trained by the forest family")
	}

	vec := make(importance.Vector, len(fm.features))
	for j, name := range fm.features {
		vec[name] = fm.gains[j]
	}
	return vec, nil
}
