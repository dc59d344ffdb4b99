package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"featrank/adapters/memory"
	"featrank/models"
	"featrank/ports"
)

func seedRepo(t *testing.T) (ports.ResultsRepository, *models.RunResult) {
	t.Helper()
	repo := memory.NewResultsRepository()
	result := &models.RunResult{
		Manifest: models.RunManifest{
			RunID:        "0190a4a0-0000-7000-8000-000000000001",
			Dataset:      "traffic.csv",
			Target:       "traffic_volume",
			FeatureCount: 2,
			RowCount:     100,
			Models:       []string{"forest", "linear"},
			Iterations:   5,
			CreatedAt:    time.Now().UTC(),
		},
		Consensus: []models.ConsensusEntry{
			{Feature: "hour", ModelScores: map[string]float64{"forest": 1.0, "linear": 0.8}, MeanImportance: 0.9, Rank: 1},
			{Feature: "temp", ModelScores: map[string]float64{"forest": 0.3, "linear": 0.4}, MeanImportance: 0.35, Rank: 2},
		},
		Stability: []models.StabilityEntry{
			{Feature: "hour", Model: "forest", MeanRank: 1.0, StdRank: 0, Observations: 5},
		},
		Agreement: models.AgreementMatrix{
			Methods: []string{"consensus", "permutation"},
			Rho:     [][]float64{{1, 0.9}, {0.9, 1}},
		},
	}
	if err := repo.SaveRun(context.Background(), result); err != nil {
		t.Fatalf("seed repo: %v", err)
	}
	return repo, result
}

func TestGetRun(t *testing.T) {
	repo, seeded := seedRepo(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+seeded.Manifest.RunID, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.RunResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Manifest.RunID != seeded.Manifest.RunID {
		t.Errorf("run_id = %s, want %s", got.Manifest.RunID, seeded.Manifest.RunID)
	}
	if len(got.Consensus) != 2 {
		t.Errorf("consensus rows = %d, want 2", len(got.Consensus))
	}
}

func TestGetRunNotFound(t *testing.T) {
	repo, _ := seedRepo(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLatestRun(t *testing.T) {
	repo, seeded := seedRepo(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/latest", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.RunResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Manifest.RunID != seeded.Manifest.RunID {
		t.Errorf("run_id = %s, want %s", got.Manifest.RunID, seeded.Manifest.RunID)
	}
}

func TestConsensusEndpoint(t *testing.T) {
	repo, seeded := seedRepo(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+seeded.Manifest.RunID+"/consensus", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rows []models.ConsensusEntry
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 || rows[0].Feature != "hour" {
		t.Errorf("unexpected consensus rows: %+v", rows)
	}
}

func TestListRuns(t *testing.T) {
	repo, _ := seedRepo(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var manifests []models.RunManifest
	if err := json.NewDecoder(rec.Body).Decode(&manifests); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("manifests = %d, want 1", len(manifests))
	}
}

func TestReportEndpoint(t *testing.T) {
	repo, seeded := seedRepo(t)
	srv := NewServer(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+seeded.Manifest.RunID+"/report", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %s, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "hour") {
		t.Error("report should mention the top feature")
	}
}
