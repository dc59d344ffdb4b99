package report

import (
	"fmt"

	"featrank/models"

	"github.com/xuri/excelize/v2"
)

// WriteExcel exports the run's tables to an xlsx workbook, one sheet per
// table
func WriteExcel(result *models.RunResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeConsensusSheet(f, result); err != nil {
		return err
	}
	if err := writeStabilitySheet(f, result); err != nil {
		return err
	}
	if err := writeMethodRanksSheet(f, result); err != nil {
		return err
	}
	if err := writeAgreementSheet(f, result); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeConsensusSheet(f *excelize.File, result *models.RunResult) error {
	const sheet = "Consensus"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"Rank", "Feature", "Mean Importance"}
	headers = append(headers, result.Manifest.Models...)
	if err := writeRow(f, sheet, 1, toCells(headers)); err != nil {
		return err
	}
	for i, row := range result.Consensus {
		cells := []any{row.Rank, row.Feature, row.MeanImportance}
		for _, model := range result.Manifest.Models {
			cells = append(cells, row.ModelScores[model])
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeStabilitySheet(f *excelize.File, result *models.RunResult) error {
	const sheet = "Stability"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, toCells([]string{"Feature", "Model", "Mean Rank", "Std Rank", "Observations"})); err != nil {
		return err
	}
	for i, row := range result.Stability {
		cells := []any{row.Feature, row.Model, row.MeanRank, row.StdRank, row.Observations}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeMethodRanksSheet(f *excelize.File, result *models.RunResult) error {
	const sheet = "Methods"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, toCells([]string{"Feature", "Method", "Rank"})); err != nil {
		return err
	}
	for i, row := range result.MethodRanks {
		// A nil rank means the method never evaluated the feature.
		var rank any = "-"
		if row.Rank != nil {
			rank = *row.Rank
		}
		if err := writeRow(f, sheet, i+2, []any{row.Feature, row.Method, rank}); err != nil {
			return err
		}
	}
	return nil
}

func writeAgreementSheet(f *excelize.File, result *models.RunResult) error {
	const sheet = "Agreement"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := []any{""}
	for _, method := range result.Agreement.Methods {
		header = append(header, method)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, method := range result.Agreement.Methods {
		cells := []any{method}
		for j := range result.Agreement.Methods {
			cells = append(cells, result.Agreement.Rho[i][j])
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for c, v := range cells {
		cell, _ := excelize.CoordinatesToCellName(c+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
