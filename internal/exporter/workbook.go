package exporter

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"trackstats/pkg/contracts/domain"
)

// sheetNameLimit is the longest sheet name a workbook accepts
const sheetNameLimit = 31

// WriteWorkbook writes one sheet per report series. Cells that hold numbers
// are stored as numbers.
func WriteWorkbook(w io.Writer, res *domain.RunResult) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range ReportSeries(res) {
		name := sheetName(s.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, s); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, s Series) error {
	if err := f.SetSheetRow(sheet, "A1", &s.Headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, record := range s.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = sheetCell(v)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// sheetCell stores numeric text as a number and everything else as text
func sheetCell(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

func sheetName(name string) string {
	if len(name) > sheetNameLimit {
		return name[:sheetNameLimit]
	}
	return name
}
