// Package models holds the flat, serializable result rows shared by the
// persistence layer, the report renderer, and the HTTP API.
package models

import (
	"time"
)

// RunManifest records the inputs and parameters of one pipeline run so a
// persisted result can be interpreted (and replayed) later.
type RunManifest struct {
	RunID             string    `json:"run_id" db:"run_id"`
	Dataset           string    `json:"dataset" db:"dataset"`
	Target            string    `json:"target" db:"target"`
	FeatureCount      int       `json:"feature_count" db:"feature_count"`
	RowCount          int       `json:"row_count" db:"row_count"`
	Models            []string  `json:"models" db:"-"`
	Iterations        int       `json:"iterations" db:"iterations"`
	SubsampleFraction float64   `json:"subsample_fraction" db:"subsample_fraction"`
	TrainFraction     float64   `json:"train_fraction" db:"train_fraction"`
	Seed              int64     `json:"seed" db:"seed"`
	Fingerprint       string    `json:"fingerprint" db:"fingerprint"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// ConsensusEntry is one row of the cross-model consensus table
type ConsensusEntry struct {
	Feature        string             `json:"feature"`
	ModelScores    map[string]float64 `json:"model_scores"`
	MeanImportance float64            `json:"mean_importance"`
	Rank           int                `json:"rank"`
}

// StabilityEntry summarizes one (feature, model) rank distribution.
// Observations always equals the run's iteration count; sentinel-marked
// failures are counted, never excluded.
type StabilityEntry struct {
	Feature      string  `json:"feature"`
	Model        string  `json:"model"`
	MeanRank     float64 `json:"mean_rank"`
	StdRank      float64 `json:"std_rank"`
	Observations int     `json:"observations"`
}

// AvgRankEntry combines the reference models' mean ranks per feature,
// sorted ascending for reporting (lower = more important)
type AvgRankEntry struct {
	Feature string  `json:"feature"`
	AvgRank float64 `json:"avg_rank"`
}

// MethodRankEntry is one cell of the long-form method comparison table.
// A nil Rank means the methodology never evaluated the feature, which is
// distinct from a feature it scored at zero.
type MethodRankEntry struct {
	Feature string `json:"feature"`
	Method  string `json:"method"`
	Rank    *int   `json:"rank"`
}

// AgreementMatrix is the symmetric Spearman correlation matrix across
// importance methodologies
type AgreementMatrix struct {
	Methods []string    `json:"methods"`
	Rho     [][]float64 `json:"rho"`
}

// RunResult bundles everything one pipeline invocation produced
type RunResult struct {
	Manifest    RunManifest       `json:"manifest"`
	Consensus   []ConsensusEntry  `json:"consensus"`
	Stability   []StabilityEntry  `json:"stability"`
	AvgRanks    []AvgRankEntry    `json:"avg_ranks"`
	MethodRanks []MethodRankEntry `json:"method_ranks"`
	Agreement   AgreementMatrix   `json:"agreement"`
}
