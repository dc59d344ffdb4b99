package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readExcel reads Sheet1 of an xlsx workbook into header and data rows.
func (r *DataReader) readExcel() ([]string, [][]string, error) {
	f, err := excelize.OpenFile(r.cfg.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("Excel file has no data rows")
	}

	// excelize drops trailing empty cells, pad short rows to header width
	headers := rows[0]
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		}
		data = append(data, row)
	}
	return headers, data, nil
}
