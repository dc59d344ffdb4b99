// Package tabular loads cleaned xlsx/csv datasets into the pipeline's
// Table shape, dropping identifier columns and coercing cells to float64.
package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"featrank/domain/dataset"
	"featrank/internal"
	"featrank/internal/errors"
)

// ReaderConfig selects the file and the column roles
type ReaderConfig struct {
	FilePath  string
	Target    string   // target column name
	IDColumns []string // identifier columns excluded from the feature set
}

// DataReader handles reading Excel and CSV files into a dataset Table
type DataReader struct {
	cfg      ReaderConfig
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(cfg ReaderConfig, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(cfg.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{cfg: cfg, fileType: fileType, logger: logger}
}

// Read loads the file into a Table
func (r *DataReader) Read() (*dataset.Table, error) {
	if _, err := os.Stat(r.cfg.FilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.cfg.FilePath)
	}

	var headers []string
	var rows [][]string
	var err error

	switch r.fileType {
	case "csv":
		headers, rows, err = r.readCSV()
	case "xlsx":
		headers, rows, err = r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("[DataReader] loaded %s: %d columns, %d rows", r.cfg.FilePath, len(headers), len(rows))
	return r.toTable(headers, rows)
}

func (r *DataReader) readCSV() ([]string, [][]string, error) {
	f, err := os.Open(r.cfg.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse CSV")
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("CSV file has no data rows")
	}
	return records[0], records[1:], nil
}

// toTable maps raw string cells onto the numeric Table, dropping identifier
// columns. Unparseable cells become NaN (missing), not zeros: zero is a
// legitimate value in traffic data.
func (r *DataReader) toTable(headers []string, rows [][]string) (*dataset.Table, error) {
	drop := make(map[string]bool, len(r.cfg.IDColumns))
	for _, col := range r.cfg.IDColumns {
		drop[col] = true
	}

	targetIdx := -1
	featureIdx := make([]int, 0, len(headers))
	features := make([]string, 0, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(h)
		switch {
		case name == r.cfg.Target:
			targetIdx = i
		case drop[name] || name == "":
			// identifier or unnamed column, excluded from the registry
		default:
			featureIdx = append(featureIdx, i)
			features = append(features, name)
		}
	}
	if targetIdx < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("target column %q not found in %s", r.cfg.Target, r.cfg.FilePath))
	}
	if len(features) == 0 {
		return nil, errors.InvalidInput("no feature columns left after dropping identifiers")
	}

	x := make([][]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))
	skipped := 0
	for _, record := range rows {
		if len(record) != len(headers) {
			skipped++
			continue
		}
		target, err := parseCell(record[targetIdx])
		if err != nil || math.IsNaN(target) {
			skipped++
			continue // a row without a target teaches nothing
		}

		row := make([]float64, len(featureIdx))
		for j, idx := range featureIdx {
			v, err := parseCell(record[idx])
			if err != nil {
				v = math.NaN()
			}
			row[j] = v
		}
		x = append(x, row)
		y = append(y, target)
	}

	if skipped > 0 {
		r.logger.Warn("[DataReader] skipped %d malformed rows", skipped)
	}
	r.imputeMissing(features, x)
	return dataset.New(features, r.cfg.Target, x, y)
}

// imputeMissing replaces NaN feature cells with the column mean so model
// fitting never sees missing values. An entirely empty column becomes zero.
func (r *DataReader) imputeMissing(features []string, x [][]float64) {
	for j := range features {
		sum, count, missing := 0.0, 0, 0
		for i := range x {
			if math.IsNaN(x[i][j]) {
				missing++
				continue
			}
			sum += x[i][j]
			count++
		}
		if missing == 0 {
			continue
		}
		mean := 0.0
		if count > 0 {
			mean = sum / float64(count)
		}
		for i := range x {
			if math.IsNaN(x[i][j]) {
				x[i][j] = mean
			}
		}
		r.logger.Info("[DataReader] imputed %d missing values in %q with column mean %.4f", missing, features[j], mean)
	}
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
