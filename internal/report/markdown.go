// Package report renders a completed run into human-readable surfaces:
// a markdown summary, its HTML form, and an Excel workbook.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"featrank/domain/dataset"
	"featrank/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders the run summary as a markdown document
func Markdown(result *models.RunResult) string {
	var b strings.Builder

	m := result.Manifest
	fmt.Fprintf(&b, "# Feature Importance Run %s\n\n", m.RunID)
	fmt.Fprintf(&b, "- Dataset: %s (target `%s`, %d rows, %d features)\n", m.Dataset, m.Target, m.RowCount, m.FeatureCount)
	fmt.Fprintf(&b, "- Models: %s\n", strings.Join(m.Models, ", "))
	fmt.Fprintf(&b, "- Stability: %d iterations, subsample %.2f, train %.2f, seed %d\n", m.Iterations, m.SubsampleFraction, m.TrainFraction, m.Seed)
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n\n", m.Fingerprint)

	writeConsensus(&b, result)
	writeStability(&b, result)
	writeAvgRanks(&b, result.AvgRanks)
	writeMethodRanks(&b, result.MethodRanks)
	writeAgreement(&b, result.Agreement)

	return b.String()
}

// HTML renders the markdown summary as a standalone HTML page
func HTML(result *models.RunResult) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(Markdown(result)))
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Feature Importance Report",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

// ProfileMarkdown renders per-column summary statistics as a markdown table
func ProfileMarkdown(profiles []dataset.ColumnProfile) string {
	var b strings.Builder
	b.WriteString("## Dataset Profile\n\n")
	b.WriteString("| Column | Mean | Std | Min | Max | Missing |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, p := range profiles {
		fmt.Fprintf(&b, "| %s | %.3f | %.3f | %.3f | %.3f | %.1f%% |\n",
			p.Name, p.Mean, p.StdDev, p.Min, p.Max, p.MissingRate*100)
	}
	b.WriteString("\n")
	return b.String()
}

func writeConsensus(b *strings.Builder, result *models.RunResult) {
	if len(result.Consensus) == 0 {
		return
	}
	b.WriteString("## Consensus Ranking\n\n")
	b.WriteString("| Rank | Feature | Mean Importance |")
	for _, model := range result.Manifest.Models {
		fmt.Fprintf(b, " %s |", model)
	}
	b.WriteString("\n|---|---|---|")
	for range result.Manifest.Models {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range result.Consensus {
		fmt.Fprintf(b, "| %d | %s | %.4f |", row.Rank, row.Feature, row.MeanImportance)
		for _, model := range result.Manifest.Models {
			fmt.Fprintf(b, " %.4f |", row.ModelScores[model])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeStability(b *strings.Builder, result *models.RunResult) {
	if len(result.Stability) == 0 {
		return
	}
	b.WriteString("## Rank Stability\n\n")
	b.WriteString("| Feature | Model | Mean Rank | Std Rank | Observations |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range result.Stability {
		fmt.Fprintf(b, "| %s | %s | %.2f | %.2f | %d |\n",
			row.Feature, row.Model, row.MeanRank, row.StdRank, row.Observations)
	}
	b.WriteString("\n")
}

func writeAvgRanks(b *strings.Builder, avgRanks []models.AvgRankEntry) {
	if len(avgRanks) == 0 {
		return
	}
	b.WriteString("## Average Rank (reference models)\n\n")
	b.WriteString("| Feature | Avg Rank |\n")
	b.WriteString("|---|---|\n")
	for _, row := range avgRanks {
		fmt.Fprintf(b, "| %s | %.2f |\n", row.Feature, row.AvgRank)
	}
	b.WriteString("\n")
}

// writeMethodRanks renders the long-form per-method ranks. A nil rank means
// the method never evaluated the feature and is shown as a dash.
func writeMethodRanks(b *strings.Builder, rows []models.MethodRankEntry) {
	if len(rows) == 0 {
		return
	}
	b.WriteString("## Method Comparison\n\n")
	b.WriteString("| Feature | Method | Rank |\n")
	b.WriteString("|---|---|---|\n")
	for _, row := range rows {
		rank := "-"
		if row.Rank != nil {
			rank = strconv.Itoa(*row.Rank)
		}
		fmt.Fprintf(b, "| %s | %s | %s |\n", row.Feature, row.Method, rank)
	}
	b.WriteString("\n")
}

func writeAgreement(b *strings.Builder, agreement models.AgreementMatrix) {
	if len(agreement.Methods) == 0 {
		return
	}
	b.WriteString("## Method Agreement (Spearman rho)\n\n")
	b.WriteString("| |")
	for _, method := range agreement.Methods {
		fmt.Fprintf(b, " %s |", method)
	}
	b.WriteString("\n|---|")
	for range agreement.Methods {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, method := range agreement.Methods {
		fmt.Fprintf(b, "| %s |", method)
		for j := range agreement.Methods {
			fmt.Fprintf(b, " %.3f |", agreement.Rho[i][j])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
