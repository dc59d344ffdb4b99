package stats

import (
	"math"
	"testing"
)

func TestSpearmanRho_PerfectAgreement(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{10, 20, 30, 40, 50}

	rho, p := SpearmanRho(x, y)
	if math.Abs(rho-1.0) > 1e-12 {
		t.Errorf("expected rho 1.0 for monotonic data, got %v", rho)
	}
	if p > 0.05 {
		t.Errorf("expected significant p for perfect agreement, got %v", p)
	}
}

func TestSpearmanRho_PerfectReversal(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{5, 4, 3, 2, 1}

	rho, _ := SpearmanRho(x, y)
	if math.Abs(rho+1.0) > 1e-12 {
		t.Errorf("expected rho -1.0 for reversed ranks, got %v", rho)
	}
}

func TestSpearmanRho_InsufficientPairs(t *testing.T) {
	rho, p := SpearmanRho([]float64{1, 2}, []float64{2, 1})
	if rho != 0 || p != 1.0 {
		t.Errorf("expected rho=0 p=1 for <3 pairs, got rho=%v p=%v", rho, p)
	}
}

func TestSpearmanRho_RobustToMonotoneTransform(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = math.Exp(v) // monotone but nonlinear
	}

	rho, _ := SpearmanRho(x, y)
	if math.Abs(rho-1.0) > 1e-12 {
		t.Errorf("rank correlation must ignore monotone transforms, got %v", rho)
	}
}

func TestTieAveragedRanks(t *testing.T) {
	ranks := tieAveragedRanks([]float64{10, 20, 20, 30})
	expected := []float64{1, 2.5, 2.5, 4}
	for i, want := range expected {
		if math.Abs(ranks[i]-want) > 1e-12 {
			t.Errorf("position %d: expected rank %v, got %v", i, want, ranks[i])
		}
	}
}

func TestSpearmanRho_NoNaNOnConstantInput(t *testing.T) {
	rho, p := SpearmanRho([]float64{3, 3, 3, 3}, []float64{1, 2, 3, 4})
	if math.IsNaN(rho) || math.IsNaN(p) {
		t.Errorf("constant input must not produce NaN: rho=%v p=%v", rho, p)
	}
}
