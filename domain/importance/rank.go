package importance

import (
	"sort"

	"featrank/domain/registry"
)

// RankVector converts a raw importance vector into integer ranks over the
// full registry. Features present in the vector are ranked 1..m by
// descending raw score with registry order breaking ties; features the
// model never scored receive the worst-rank sentinel (|registry|) rather
// than being dropped, so every rank distribution keeps one observation per
// feature per iteration.
func RankVector(reg *registry.Registry, raw Vector) (map[string]int, error) {
	if err := reg.Validate(raw); err != nil {
		return nil, err
	}

	type scored struct {
		feature  string
		score    float64
		regIndex int
	}

	present := make([]scored, 0, len(raw))
	for _, name := range reg.Names() {
		if score, ok := raw[name]; ok {
			idx, _ := reg.Index(name)
			present = append(present, scored{feature: name, score: score, regIndex: idx})
		}
	}

	sort.SliceStable(present, func(i, j int) bool {
		if present[i].score != present[j].score {
			return present[i].score > present[j].score
		}
		return present[i].regIndex < present[j].regIndex
	})

	ranks := make(map[string]int, reg.Len())
	for _, name := range reg.Names() {
		ranks[name] = reg.WorstRank() // sentinel for never-scored features
	}
	for i, s := range present {
		ranks[s.feature] = i + 1
	}
	return ranks, nil
}

// RanksFromConsensus projects a consensus table into a feature -> rank map,
// the shape the method-agreement comparator consumes
func RanksFromConsensus(table *ConsensusTable) map[string]int {
	ranks := make(map[string]int, len(table.Rows))
	for _, row := range table.Rows {
		ranks[row.Feature] = row.Rank
	}
	return ranks
}
