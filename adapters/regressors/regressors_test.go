package regressors

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"featrank/domain/core"
	"featrank/domain/dataset"
)

// linearTable builds y = 4*a - 2*b + 1 with a small noise term; c is pure noise
func linearTable(t *testing.T, n int, seed int64) *dataset.Table {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := rng.Float64() * 10
		b := rng.Float64() * 10
		c := rng.NormFloat64()
		x[i] = []float64{a, b, c}
		y[i] = 4*a - 2*b + 1 + rng.NormFloat64()*0.01
	}

	table, err := dataset.New([]string{"a", "b", "c"}, "y", x, y)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return table
}

func TestLinear_RecoversCoefficients(t *testing.T) {
	port := NewLinearPort()
	ds := linearTable(t, 200, 1)

	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	vec, err := port.Importance(model)
	if err != nil {
		t.Fatalf("importance: %v", err)
	}

	if math.Abs(vec["a"]-4) > 0.1 {
		t.Errorf("expected |coef a| near 4, got %v", vec["a"])
	}
	if math.Abs(vec["b"]-2) > 0.1 {
		t.Errorf("expected |coef b| near 2, got %v", vec["b"])
	}
	if vec["c"] > 0.1 {
		t.Errorf("noise feature should have near-zero coefficient, got %v", vec["c"])
	}

	preds := model.Predict(ds.X)
	mse := 0.0
	for i := range preds {
		diff := preds[i] - ds.Y[i]
		mse += diff * diff
	}
	mse /= float64(len(preds))
	if mse > 0.01 {
		t.Errorf("expected near-exact fit on linear data, MSE %v", mse)
	}
}

func TestLinear_InsufficientRows(t *testing.T) {
	ds, _ := dataset.New([]string{"a", "b"}, "y", [][]float64{{1, 2}, {3, 4}}, []float64{1, 2})
	_, err := NewLinearPort().Fit(context.Background(), ds)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected insufficient-data error, got %v", err)
	}
}

func TestForest_InformativeFeatureDominates(t *testing.T) {
	port := NewForestPort(ForestConfig{Trees: 30, MaxDepth: 4})
	ds := linearTable(t, 300, 2)

	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	vec, err := port.Importance(model)
	if err != nil {
		t.Fatalf("importance: %v", err)
	}

	if vec["a"] <= vec["c"] {
		t.Errorf("dominant feature a (%v) should outscore noise c (%v)", vec["a"], vec["c"])
	}
	if vec["b"] <= vec["c"] {
		t.Errorf("informative feature b (%v) should outscore noise c (%v)", vec["b"], vec["c"])
	}
	for name, score := range vec {
		if score < 0 {
			t.Errorf("%s: impurity reduction must be non-negative, got %v", name, score)
		}
	}
}

func TestBoost_InformativeFeatureDominates(t *testing.T) {
	port := NewBoostPort(BoostConfig{Rounds: 80, LearningRate: 0.2})
	ds := linearTable(t, 300, 3)

	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	vec, err := port.Importance(model)
	if err != nil {
		t.Fatalf("importance: %v", err)
	}

	if vec["a"] <= vec["c"] {
		t.Errorf("dominant feature a (%v) should outscore noise c (%v)", vec["a"], vec["c"])
	}
}

func TestBoost_PredictionsImproveOverBase(t *testing.T) {
	port := NewBoostPort(BoostConfig{Rounds: 60, LearningRate: 0.2})
	ds := linearTable(t, 200, 4)

	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	// Baseline: predicting the mean everywhere
	mean := 0.0
	for _, y := range ds.Y {
		mean += y
	}
	mean /= float64(len(ds.Y))

	baseSSE, boostSSE := 0.0, 0.0
	preds := model.Predict(ds.X)
	for i := range preds {
		baseDiff := mean - ds.Y[i]
		boostDiff := preds[i] - ds.Y[i]
		baseSSE += baseDiff * baseDiff
		boostSSE += boostDiff * boostDiff
	}

	if boostSSE >= baseSSE/2 {
		t.Errorf("boosting should at least halve the SSE of the mean predictor: base %v, boost %v", baseSSE, boostSSE)
	}
}

func TestKNN_ImportanceUnsupported(t *testing.T) {
	port := NewKNNPort(3)
	ds := linearTable(t, 50, 5)

	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	_, err = port.Importance(model)
	if !core.IsUnsupportedImportance(err) {
		t.Errorf("knn must report UnsupportedImportance, got %v", err)
	}
}

func TestKNN_PredictsLocally(t *testing.T) {
	port := NewKNNPort(3)
	ds := linearTable(t, 200, 6)

	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	// A training point's prediction should land near its own target.
	preds := model.Predict(ds.X[:10])
	for i, p := range preds {
		if math.Abs(p-ds.Y[i]) > 15 {
			t.Errorf("row %d: knn prediction %v too far from target %v", i, p, ds.Y[i])
		}
	}
}

func TestTree_BestSplitSeparatesStepFunction(t *testing.T) {
	// y jumps at a=5: a perfect first split.
	n := 40
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := float64(i) / 4.0
		x[i] = []float64{a}
		if a <= 5 {
			y[i] = 0
		} else {
			y[i] = 100
		}
	}

	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}

	feature, threshold, gain, ok := bestSplit(x, y, rows, 1)
	if !ok {
		t.Fatal("expected a split on step data")
	}
	if feature != 0 {
		t.Errorf("expected split on feature 0, got %d", feature)
	}
	if threshold < 4.9 || threshold > 5.3 {
		t.Errorf("expected threshold near 5, got %v", threshold)
	}
	if gain <= 0 {
		t.Errorf("expected positive gain, got %v", gain)
	}
}
