package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"featrank/domain/dataset"
	"featrank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResult() *models.RunResult {
	rank2 := 2
	return &models.RunResult{
		Manifest: models.RunManifest{
			RunID:             "0190a4a0-0000-7000-8000-000000000001",
			Dataset:           "traffic.csv",
			Target:            "traffic_volume",
			FeatureCount:      3,
			RowCount:          500,
			Models:            []string{"forest", "linear"},
			Iterations:        10,
			SubsampleFraction: 0.8,
			TrainFraction:     0.75,
			Seed:              42,
			Fingerprint:       "abc123",
			CreatedAt:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		Consensus: []models.ConsensusEntry{
			{Feature: "hour", ModelScores: map[string]float64{"forest": 1.0, "linear": 0.9}, MeanImportance: 0.95, Rank: 1},
			{Feature: "temp", ModelScores: map[string]float64{"forest": 0.4, "linear": 0.5}, MeanImportance: 0.45, Rank: 2},
			{Feature: "noise", ModelScores: map[string]float64{"forest": 0.1, "linear": 0.0}, MeanImportance: 0.05, Rank: 3},
		},
		Stability: []models.StabilityEntry{
			{Feature: "hour", Model: "forest", MeanRank: 1.0, StdRank: 0.0, Observations: 10},
			{Feature: "temp", Model: "forest", MeanRank: 2.2, StdRank: 0.42, Observations: 10},
		},
		AvgRanks: []models.AvgRankEntry{
			{Feature: "hour", AvgRank: 1.0},
			{Feature: "temp", AvgRank: 2.1},
		},
		MethodRanks: []models.MethodRankEntry{
			{Feature: "hour", Method: "consensus", Rank: intPtr(1)},
			{Feature: "hour", Method: "permutation", Rank: &rank2},
			{Feature: "noise", Method: "permutation", Rank: nil},
		},
		Agreement: models.AgreementMatrix{
			Methods: []string{"consensus", "permutation"},
			Rho:     [][]float64{{1, 0.85}, {0.85, 1}},
		},
	}
}

func intPtr(v int) *int { return &v }

func TestMarkdownContainsAllSections(t *testing.T) {
	md := Markdown(sampleResult())

	assert.Contains(t, md, "## Consensus Ranking")
	assert.Contains(t, md, "## Rank Stability")
	assert.Contains(t, md, "## Average Rank")
	assert.Contains(t, md, "## Method Comparison")
	assert.Contains(t, md, "## Method Agreement")
	assert.Contains(t, md, "| 1 | hour |")
	assert.Contains(t, md, "traffic_volume")
	assert.Contains(t, md, "seed 42")
}

func TestMarkdownConsensusOrderPreserved(t *testing.T) {
	md := Markdown(sampleResult())
	hourIdx := strings.Index(md, "| 1 | hour |")
	noiseIdx := strings.Index(md, "| 3 | noise |")
	require.GreaterOrEqual(t, hourIdx, 0)
	require.GreaterOrEqual(t, noiseIdx, 0)
	assert.Less(t, hourIdx, noiseIdx)
}

func TestProfileMarkdown(t *testing.T) {
	md := ProfileMarkdown([]dataset.ColumnProfile{
		{Name: "temp", Mean: 281.2, StdDev: 13.3, Min: 243.4, Max: 310.1, MissingRate: 0.02},
	})
	assert.Contains(t, md, "## Dataset Profile")
	assert.Contains(t, md, "| temp | 281.200 |")
	assert.Contains(t, md, "2.0%")
}

func TestMarkdownMethodComparisonMarksUnranked(t *testing.T) {
	md := Markdown(sampleResult())

	assert.Contains(t, md, "| hour | consensus | 1 |")
	assert.Contains(t, md, "| noise | permutation | - |")
}

func TestHTMLRendersTables(t *testing.T) {
	page := string(HTML(sampleResult()))

	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "hour")
}

func TestWriteExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteExcel(sampleResult(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	feature, err := f.GetCellValue("Consensus", "B2")
	require.NoError(t, err)
	assert.Equal(t, "hour", feature)

	rho, err := f.GetCellValue("Agreement", "C2")
	require.NoError(t, err)
	assert.Equal(t, "0.85", rho)

	rank, err := f.GetCellValue("Methods", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1", rank)

	unranked, err := f.GetCellValue("Methods", "C4")
	require.NoError(t, err)
	assert.Equal(t, "-", unranked)

	sheets := f.GetSheetList()
	assert.NotContains(t, sheets, "Sheet1")
}
