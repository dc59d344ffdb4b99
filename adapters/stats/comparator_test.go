package stats

import (
	"math"
	"testing"

	"featrank/domain/registry"
)

func testRegistry(t *testing.T, names ...string) *registry.Registry {
	t.Helper()
	reg, err := registry.New(names)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func TestCompare_MatrixSymmetricWithUnitDiagonal(t *testing.T) {
	reg := testRegistry(t, "A", "B", "C", "D")
	methods := []MethodRanks{
		{Method: "native", Ranks: map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}},
		{Method: "permutation", Ranks: map[string]int{"A": 2, "B": 1, "C": 3, "D": 4}},
		{Method: "consensus", Ranks: map[string]int{"A": 1, "B": 3, "C": 2, "D": 4}},
	}

	agreement, err := Compare(reg, methods, 0)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	m := agreement.Matrix.Rho
	for i := range m {
		if m[i][i] != 1.0 {
			t.Errorf("diagonal [%d][%d] = %v, expected 1.0", i, i, m[i][i])
		}
		for j := range m[i] {
			if m[i][j] != m[j][i] {
				t.Errorf("matrix asymmetric at [%d][%d]: %v vs %v", i, j, m[i][j], m[j][i])
			}
			if m[i][j] < -1 || m[i][j] > 1 {
				t.Errorf("rho out of range at [%d][%d]: %v", i, j, m[i][j])
			}
		}
	}
}

func TestCompare_IdenticalRankingsCorrelatePerfectly(t *testing.T) {
	reg := testRegistry(t, "A", "B", "C", "D")
	ranks := map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}
	methods := []MethodRanks{
		{Method: "m1", Ranks: ranks},
		{Method: "m2", Ranks: ranks},
	}

	agreement, err := Compare(reg, methods, 0)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if math.Abs(agreement.Matrix.Rho[0][1]-1.0) > 1e-12 {
		t.Errorf("identical rankings should give rho 1.0, got %v", agreement.Matrix.Rho[0][1])
	}
}

func TestCompare_PairwiseCompleteSemantics(t *testing.T) {
	reg := testRegistry(t, "A", "B", "C", "D", "E")
	methods := []MethodRanks{
		// D is undefined for m1, E undefined for m2. The pair (m1, m2) is
		// computed over {A, B, C} only.
		{Method: "m1", Ranks: map[string]int{"A": 1, "B": 2, "C": 3, "E": 4}},
		{Method: "m2", Ranks: map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}},
	}

	agreement, err := Compare(reg, methods, 0)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if math.Abs(agreement.Matrix.Rho[0][1]-1.0) > 1e-12 {
		t.Errorf("defined pairs agree perfectly, expected rho 1.0, got %v", agreement.Matrix.Rho[0][1])
	}
}

func TestCompare_UndefinedCellsStayUndefined(t *testing.T) {
	reg := testRegistry(t, "A", "B", "C")
	methods := []MethodRanks{
		{Method: "m1", Ranks: map[string]int{"A": 1, "B": 2, "C": 3}},
		{Method: "m2", Ranks: map[string]int{"A": 1, "B": 2}}, // never saw C
	}

	agreement, err := Compare(reg, methods, 0)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	var foundUndefined bool
	for _, row := range agreement.Rows {
		if row.Feature == "C" && row.Method == "m2" {
			if row.Rank != nil {
				t.Errorf("expected nil rank for never-evaluated cell, got %d", *row.Rank)
			}
			foundUndefined = true
		}
		if row.Feature == "C" && row.Method == "m1" {
			if row.Rank == nil || *row.Rank != 3 {
				t.Error("defined cell must keep its rank")
			}
		}
	}
	if !foundUndefined {
		t.Error("long-form table missing the undefined cell")
	}
}

func TestCompare_TopKFiltersLongFormOnly(t *testing.T) {
	reg := testRegistry(t, "A", "B", "C", "D")
	methods := []MethodRanks{
		{Method: "m1", Ranks: map[string]int{"A": 1, "B": 2, "C": 3, "D": 4}},
		{Method: "m2", Ranks: map[string]int{"A": 2, "B": 1, "C": 4, "D": 3}},
	}

	agreement, err := Compare(reg, methods, 2)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	features := map[string]bool{}
	for _, row := range agreement.Rows {
		features[row.Feature] = true
	}
	if features["C"] || features["D"] {
		t.Error("top-2 table should exclude features outside every method's top 2")
	}
	if !features["A"] || !features["B"] {
		t.Error("top-2 table missing top features")
	}

	// The matrix is still computed over all defined pairs.
	if len(agreement.Matrix.Rho) != 2 {
		t.Fatalf("expected 2x2 matrix, got %d", len(agreement.Matrix.Rho))
	}
}

func TestCompare_RequiresTwoMethods(t *testing.T) {
	reg := testRegistry(t, "A")
	_, err := Compare(reg, []MethodRanks{{Method: "m1", Ranks: map[string]int{"A": 1}}}, 0)
	if err == nil {
		t.Error("expected error for fewer than 2 methodologies")
	}
}

func TestCompare_UnknownFeatureAborts(t *testing.T) {
	reg := testRegistry(t, "A", "B")
	methods := []MethodRanks{
		{Method: "m1", Ranks: map[string]int{"A": 1, "B": 2}},
		{Method: "m2", Ranks: map[string]int{"A": 1, "Z": 2}},
	}
	if _, err := Compare(reg, methods, 0); err == nil {
		t.Error("expected schema mismatch for unknown feature")
	}
}
