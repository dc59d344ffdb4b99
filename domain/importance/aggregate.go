package importance

import (
	"fmt"
	"sort"

	"featrank/domain/registry"
)

// Aggregate combines normalized per-model importances into a consensus score
// and rank per feature. Each vector must already cover the full registry
// (output of Normalize). Ranks are 1..|registry| by descending mean score;
// ties resolve by registry order so reruns on identical input produce
// identical tables.
func Aggregate(reg *registry.Registry, perModel map[string]Vector) (*ConsensusTable, error) {
	if len(perModel) == 0 {
		return nil, fmt.Errorf("aggregate requires at least one model vector")
	}

	models := make([]string, 0, len(perModel))
	for name := range perModel {
		models = append(models, name)
	}
	sort.Strings(models)

	for _, model := range models {
		vec := perModel[model]
		if err := reg.Validate(vec); err != nil {
			return nil, fmt.Errorf("model %s: %w", model, err)
		}
		if len(vec) != reg.Len() {
			return nil, fmt.Errorf("model %s: vector covers %d of %d registry features, normalize first", model, len(vec), reg.Len())
		}
	}

	names := reg.Names()
	rows := make([]ConsensusRow, len(names))
	for i, feature := range names {
		scores := make(map[string]float64, len(models))
		sum := 0.0
		for _, model := range models {
			s := perModel[model][feature]
			scores[model] = s
			sum += s
		}
		rows[i] = ConsensusRow{
			Feature:        feature,
			ModelScores:    scores,
			MeanImportance: sum / float64(len(models)),
		}
	}

	// Descending mean, registry order breaks ties. SliceStable keeps the
	// registry ordering of rows[] as the tie-break.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MeanImportance > rows[j].MeanImportance
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return &ConsensusTable{Models: models, Rows: rows}, nil
}
