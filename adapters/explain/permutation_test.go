package explain

import (
	"context"
	"testing"

	"featrank/adapters/regressors"
	"featrank/internal/rng"
	"featrank/internal/testkit"
)

func TestPermutationImportance_RecoversPlantedSignal(t *testing.T) {
	ds := testkit.GenerateTrafficTable(400, 1)

	port := regressors.NewForestPort(regressors.ForestConfig{Trees: 25, MaxDepth: 5})
	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	explainer := NewPermutationExplainer(3, rng.NewFactory(42))
	vec, err := explainer.Importance(context.Background(), model, ds)
	if err != nil {
		t.Fatalf("importance: %v", err)
	}

	if len(vec) != ds.Cols() {
		t.Fatalf("expected one score per feature, got %d", len(vec))
	}
	for feature, score := range vec {
		if score < 0 {
			t.Errorf("%s: permutation importance must be non-negative, got %v", feature, score)
		}
	}

	// hour dominates the planted signal; the pure-noise column must not
	// outscore it.
	if vec["hour"] <= vec["noise"] {
		t.Errorf("hour (%v) should outscore noise (%v)", vec["hour"], vec["noise"])
	}
}

func TestPermutationImportance_WorksForModelsWithoutNativeImportance(t *testing.T) {
	ds := testkit.GenerateTrafficTable(200, 2)

	port := regressors.NewKNNPort(5)
	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	explainer := NewPermutationExplainer(3, rng.NewFactory(7))
	vec, err := explainer.Importance(context.Background(), model, ds)
	if err != nil {
		t.Fatalf("a post-hoc explainer must handle importance-less families: %v", err)
	}
	if len(vec) != ds.Cols() {
		t.Errorf("expected full feature coverage, got %d scores", len(vec))
	}
}

func TestPermutationImportance_CancelledContext(t *testing.T) {
	ds := testkit.GenerateTrafficTable(100, 3)

	port := regressors.NewLinearPort()
	model, err := port.Fit(context.Background(), ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	explainer := NewPermutationExplainer(2, rng.NewFactory(1))
	if _, err := explainer.Importance(ctx, model, ds); err == nil {
		t.Error("expected context error after cancellation")
	}
}
