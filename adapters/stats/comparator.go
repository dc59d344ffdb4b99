package stats

import (
	"fmt"
	"sort"

	"featrank/domain/core"
	"featrank/domain/registry"
	"featrank/models"
)

// MethodRanks is one methodology's feature ranking. Only defined cells
// appear in the map: a feature the methodology never evaluated is simply
// absent, which the comparator reports explicitly rather than guessing.
type MethodRanks struct {
	Method string
	Ranks  map[string]int
}

// Agreement is the comparator output: a symmetric Spearman matrix over the
// methodologies plus a long-form (feature, method, rank) table for the
// top-ranked feature subset.
type Agreement struct {
	Matrix models.AgreementMatrix
	Rows   []models.MethodRankEntry
}

// Compare correlates the rankings of two or more importance methodologies
// over the same registry. Correlations use pairwise-complete semantics:
// each matrix cell is computed over the features both methodologies have a
// defined rank for; a feature missing from one methodology still
// contributes to every pair where both sides are defined.
//
// topK limits the long-form table to the features any methodology placed in
// its top K; topK <= 0 includes every registry feature.
func Compare(reg *registry.Registry, methods []MethodRanks, topK int) (*Agreement, error) {
	if len(methods) < 2 {
		return nil, fmt.Errorf("comparison requires at least 2 methodologies, got %d", len(methods))
	}
	for _, m := range methods {
		for feature := range m.Ranks {
			if !reg.Contains(feature) {
				return nil, fmt.Errorf("method %s: %w", m.Method, core.NewSchemaMismatchError(feature))
			}
		}
	}

	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Method
	}

	k := len(methods)
	rho := make([][]float64, k)
	for i := range rho {
		rho[i] = make([]float64, k)
		rho[i][i] = 1.0
	}

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			x, y := pairwiseComplete(reg, methods[i].Ranks, methods[j].Ranks)
			r, _ := SpearmanRho(x, y)
			rho[i][j] = r
			rho[j][i] = r
		}
	}

	return &Agreement{
		Matrix: models.AgreementMatrix{Methods: names, Rho: rho},
		Rows:   longForm(reg, methods, topK),
	}, nil
}

// pairwiseComplete collects rank pairs for features both methodologies
// defined, in registry order for determinism
func pairwiseComplete(reg *registry.Registry, a, b map[string]int) (x, y []float64) {
	for _, feature := range reg.Names() {
		ra, okA := a[feature]
		rb, okB := b[feature]
		if okA && okB {
			x = append(x, float64(ra))
			y = append(y, float64(rb))
		}
	}
	return x, y
}

// longForm builds the side-by-side comparison table. Undefined cells carry
// a nil rank: "never evaluated" must stay distinguishable from "rank with
// zero importance".
func longForm(reg *registry.Registry, methods []MethodRanks, topK int) []models.MethodRankEntry {
	selected := reg.Names()
	if topK > 0 {
		keep := make(map[string]bool)
		for _, m := range methods {
			for feature, rank := range m.Ranks {
				if rank <= topK {
					keep[feature] = true
				}
			}
		}
		filtered := make([]string, 0, len(keep))
		for _, feature := range reg.Names() {
			if keep[feature] {
				filtered = append(filtered, feature)
			}
		}
		selected = filtered
	}

	rows := make([]models.MethodRankEntry, 0, len(selected)*len(methods))
	for _, feature := range selected {
		for _, m := range methods {
			entry := models.MethodRankEntry{Feature: feature, Method: m.Method}
			if rank, ok := m.Ranks[feature]; ok {
				r := rank
				entry.Rank = &r
			}
			rows = append(rows, entry)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, _ := reg.Index(rows[i].Feature)
		rj, _ := reg.Index(rows[j].Feature)
		return ri < rj
	})
	return rows
}
