package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gosuda/boardexport/internal/domain"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook renders headers and rows into a single-sheet XLSX workbook and
// returns its bytes. Every cell is written as a string so column text such as
// phone numbers keeps its exact form.
func WriteWorkbook(sheet string, headers []string, rows []domain.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it rather than adding a second sheet.
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("export.WriteWorkbook: name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("export.WriteWorkbook: stream writer: %w", err)
	}

	if err := sw.SetRow("A1", stringCells(headers)); err != nil {
		return nil, fmt.Errorf("export.WriteWorkbook: header row: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export.WriteWorkbook: row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, stringCells(row)); err != nil {
			return nil, fmt.Errorf("export.WriteWorkbook: row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("export.WriteWorkbook: flush: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export.WriteWorkbook: write: %w", err)
	}
	return buf.Bytes(), nil
}

func stringCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = excelize.Cell{Value: v}
	}
	return cells
}

// Filename returns "<prefix>_YYYY-MM-DD_HH-MM-SS.xlsx" for t in UTC.
func Filename(prefix string, t time.Time) string {
	return prefix + "_" + t.UTC().Format("2006-01-02_15-04-05") + ".xlsx"
}
