package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// writeWorkbook renders the report as a single-sheet xlsx workbook.
func writeWorkbook(w io.Writer, sheet string, header []string, rows []Row) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet %q: %w", sheet, err)
	}
	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := setSheetRow(f, sheet, 1, headerCells); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setSheetRow(f, sheet, i+2, []any(row.cells())); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setSheetRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
