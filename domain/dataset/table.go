package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"featrank/domain/core"

	"github.com/montanaflynn/stats"
)

// Table is the canonical data object for all pipeline computation:
// a dense numeric feature matrix plus one target vector. It is shared
// read-only across parallel stability iterations; resampling always
// produces fresh copies.
type Table struct {
	Features []string    // column names, same order as X columns
	Target   string      // target column name
	X        [][]float64 // rows = observations, cols = features
	Y        []float64   // target values, len == len(X)
}

// New builds a table and checks basic shape invariants
func New(features []string, target string, x [][]float64, y []float64) (*Table, error) {
	if len(features) == 0 {
		return nil, core.ErrEmptyRegistry
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d feature rows vs %d targets", core.ErrDimensionMismatch, len(x), len(y))
	}
	for i, row := range x {
		if len(row) != len(features) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", core.ErrDimensionMismatch, i, len(row), len(features))
		}
	}
	return &Table{Features: features, Target: target, X: x, Y: y}, nil
}

// Rows returns the number of observations
func (t *Table) Rows() int {
	return len(t.X)
}

// Cols returns the number of feature columns
func (t *Table) Cols() int {
	return len(t.Features)
}

// Column returns a copy of one feature column's values
func (t *Table) Column(idx int) []float64 {
	out := make([]float64, len(t.X))
	for i, row := range t.X {
		out[i] = row[idx]
	}
	return out
}

// Subsample returns a fresh table containing the given row indices.
// Rows are deep-copied so iterations never share mutable state.
func (t *Table) Subsample(indices []int) *Table {
	x := make([][]float64, len(indices))
	y := make([]float64, len(indices))
	for i, idx := range indices {
		row := make([]float64, len(t.X[idx]))
		copy(row, t.X[idx])
		x[i] = row
		y[i] = t.Y[idx]
	}
	return &Table{Features: t.Features, Target: t.Target, X: x, Y: y}
}

// SampleFraction draws a random subsample of the given row fraction
// without replacement, using the supplied RNG
func (t *Table) SampleFraction(fraction float64, rng *rand.Rand) *Table {
	n := t.Rows()
	size := int(float64(n) * fraction)
	if size < 1 {
		size = 1
	}
	perm := rng.Perm(n)
	return t.Subsample(perm[:size])
}

// Split partitions rows into train/test tables using the supplied RNG.
// trainFraction of rows go to train; the remainder to test.
func (t *Table) Split(trainFraction float64, rng *rand.Rand) (train, test *Table) {
	n := t.Rows()
	cut := int(float64(n) * trainFraction)
	if cut < 1 {
		cut = 1
	}
	if cut > n {
		cut = n
	}
	perm := rng.Perm(n)
	return t.Subsample(perm[:cut]), t.Subsample(perm[cut:])
}

// ColumnProfile summarizes one column for the run manifest and report
type ColumnProfile struct {
	Name        string  `json:"name"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	MissingRate float64 `json:"missing_rate"`
	SampleSize  int     `json:"sample_size"`
}

// Profile computes per-column summary statistics over the feature columns
// and the target. NaN values count as missing and are excluded from moments.
func (t *Table) Profile() []ColumnProfile {
	profiles := make([]ColumnProfile, 0, t.Cols()+1)
	for i, name := range t.Features {
		profiles = append(profiles, profileValues(name, t.Column(i)))
	}
	profiles = append(profiles, profileValues(t.Target, t.Y))
	return profiles
}

func profileValues(name string, values []float64) ColumnProfile {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			valid = append(valid, v)
		}
	}

	profile := ColumnProfile{
		Name:       name,
		SampleSize: len(values),
	}
	if len(values) > 0 {
		profile.MissingRate = 1.0 - float64(len(valid))/float64(len(values))
	}
	if len(valid) == 0 {
		return profile
	}

	profile.Mean, _ = stats.Mean(valid)
	profile.StdDev, _ = stats.StandardDeviationSample(valid)
	profile.Min, _ = stats.Min(valid)
	profile.Max, _ = stats.Max(valid)
	return profile
}
