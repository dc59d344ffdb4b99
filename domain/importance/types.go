// Package importance holds the core value types of the pipeline: raw and
// normalized importance vectors, consensus rows, and rank vectors. All
// structures are immutable after construction; recomputation produces a
// fresh value rather than patching an old one.
package importance

import (
	"fmt"

	"featrank/domain/core"
)

// Vector maps feature name to a non-negative importance score, scoped to one
// (model, split) pair. A feature missing from the map means score zero, not
// absence from the run.
type Vector map[string]float64

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Validate checks the non-negativity invariant
func (v Vector) Validate() error {
	for name, score := range v {
		if score < 0 {
			return fmt.Errorf("%w: %s=%g", core.ErrNegativeImportance, name, score)
		}
	}
	return nil
}

// ConsensusRow is one feature's cross-model consensus: the normalized score
// each model assigned it, the arithmetic mean across models, and an integer
// rank (1 = most important, ties broken by registry order).
type ConsensusRow struct {
	Feature        string             `json:"feature"`
	ModelScores    map[string]float64 `json:"model_scores"`
	MeanImportance float64            `json:"mean_importance"`
	Rank           int                `json:"rank"`
}

// ConsensusTable is the aggregator output, sorted ascending by rank
type ConsensusTable struct {
	Models []string       `json:"models"`
	Rows   []ConsensusRow `json:"rows"`
}

// TopK returns the k best-ranked rows as a read-only projection.
// Rank assignment of excluded features is untouched.
func (t ConsensusTable) TopK(k int) []ConsensusRow {
	if k > len(t.Rows) {
		k = len(t.Rows)
	}
	if k < 0 {
		k = 0
	}
	out := make([]ConsensusRow, k)
	copy(out, t.Rows[:k])
	return out
}
