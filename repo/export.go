package repo

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportFilename is the deterministic name of the export artifact.
const ExportFilename = "data.xlsx"

// ExportResult is a built workbook ready to be sent as a document.
type ExportResult struct {
	Filename string
	Data     []byte
}

// BuildWorkbook renders the submission table as an xlsx workbook, columns in
// header order. With zero data rows it returns (nil, nil): there is nothing
// to export and no artifact should be produced.
func BuildWorkbook(header []string, rows []map[string]string) (*ExportResult, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("error addressing header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("error writing header cell: %w", err)
		}
	}

	for r, row := range rows {
		for col, name := range header {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("error addressing cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, row[name]); err != nil {
				return nil, fmt.Errorf("error writing cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error serializing workbook: %w", err)
	}
	return &ExportResult{Filename: ExportFilename, Data: buf.Bytes()}, nil
}
