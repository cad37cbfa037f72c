package csvexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pajakos/internal/domain"
)

const xlsxSheet = "Documents"

// WriteXLSX renders a batch of documents as a single-sheet XLSX workbook.
// The column layout matches the CSV export so both formats feed the same
// downstream reconciliation spreadsheets.
func WriteXLSX(w io.Writer, docs []domain.Document) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i := range docs {
		row := documentToRow(&docs[i])
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
