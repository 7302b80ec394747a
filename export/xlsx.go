// Package export writes extracted tables to spreadsheet files.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jmhart/docweave/extract"
)

// WriteXLSX writes tables to an XLSX workbook at path, one sheet per
// table named by its table id. Tables without headers get the raw data
// rows only.
func WriteXLSX(tables []extract.TableResult, path string) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := sheetName(t, i)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}

		row := 1
		if len(t.Headers) > 0 {
			if err := setRow(f, sheet, row, t.Headers); err != nil {
				return err
			}
			row++
		}
		for _, data := range t.Data {
			if err := setRow(f, sheet, row, data); err != nil {
				return err
			}
			row++
		}
	}

	// Drop the default sheet so the workbook holds only table sheets.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing XLSX: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", row, err)
	}
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d on %s: %w", row, sheet, err)
	}
	return nil
}

// sheetName keeps names unique and inside the 31-character sheet limit.
func sheetName(t extract.TableResult, index int) string {
	name := t.TableID
	if name == "" {
		name = fmt.Sprintf("table_%d", index+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
