package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// hoursFormat is the built-in "0.00" number format.
const hoursFormat = 2

// WriteXLSX writes the timesheet as a single-sheet workbook. Hours are numeric
// cells so they can be summed in the spreadsheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	numeric, err := f.NewStyle(&excelize.Style{NumFmt: hoursFormat})
	if err != nil {
		return fmt.Errorf("create hours style: %w", err)
	}

	for i, r := range rows {
		line := i + 2
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		values := []interface{}{r.Date, r.Employee, r.Project, r.Start, r.Stop}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", line, err)
		}
		if r.Hours == nil {
			continue
		}
		hoursCell, err := excelize.CoordinatesToCellName(6, line)
		if err != nil {
			return err
		}
		if err := f.SetCellFloat(SheetName, hoursCell, *r.Hours, -1, 64); err != nil {
			return fmt.Errorf("write hours %s: %w", hoursCell, err)
		}
		if err := f.SetCellStyle(SheetName, hoursCell, hoursCell, numeric); err != nil {
			return fmt.Errorf("style hours %s: %w", hoursCell, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "C", 22); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
