// Package stats implements the method-agreement comparator: Spearman rank
// correlation between importance rankings produced by independent
// methodologies.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// SpearmanRho computes Spearman's rank correlation coefficient and a
// two-tailed p-value for paired samples. Ties receive averaged ranks.
// Fewer than 3 pairs cannot support a correlation; the result is rho=0,
// p=1 rather than an error, matching how downstream treats "no signal".
func SpearmanRho(x, y []float64) (rho, pValue float64) {
	n := len(x)
	if n != len(y) || n < 3 {
		return 0, 1.0
	}

	xRanks := tieAveragedRanks(x)
	yRanks := tieAveragedRanks(y)

	// Spearman's rho = 1 - (6 * Σd²) / (n(n²-1))
	sumDiffSq := 0.0
	for i := 0; i < n; i++ {
		diff := xRanks[i] - yRanks[i]
		sumDiffSq += diff * diff
	}

	denominator := float64(n) * (float64(n*n) - 1)
	if denominator == 0 {
		return 0, 1.0
	}
	rho = 1.0 - (6.0 * sumDiffSq / denominator)

	// Clamp to [-1, 1] range (floating point)
	if rho > 1.0 {
		rho = 1.0
	} else if rho < -1.0 {
		rho = -1.0
	}

	if math.Abs(rho) == 1.0 {
		return rho, 0.0
	}

	// t = r * sqrt((n-2)/(1-r²)), two-tailed against Student's t
	df := float64(n - 2)
	tStat := rho * math.Sqrt(df/(1-rho*rho))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * (1 - tDist.CDF(math.Abs(tStat)))
	if pValue > 1 {
		pValue = 1
	}

	return rho, pValue
}

// tieAveragedRanks converts values to ranks, averaging ranks across ties
func tieAveragedRanks(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return []float64{}
	}

	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, n)
	for i, val := range data {
		pairs[i] = pair{value: val, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].value < pairs[j].value
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		groupSize := j - i
		avgRank := float64(i+1) + float64(groupSize-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}
	return ranks
}
