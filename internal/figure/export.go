package figure

import (
	"fmt"
	"math"
	"slices"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the sheet name written by ExportXLSX.
const ExportSheet = "figure"

// ExportXLSX writes the figure as a spreadsheet: one row per distinct x
// value, one column per trace. Cells without a value are left empty.
func ExportXLSX(f *Figure, path string) error {
	xs := distinctX(f)

	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	header := make([]any, 0, len(f.Traces)+1)
	header = append(header, f.XAxisTitle)
	for _, tr := range f.Traces {
		header = append(header, tr.Name)
	}
	if err := book.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	for i, x := range xs {
		row := make([]any, len(f.Traces)+1)
		row[0] = x
		for j, tr := range f.Traces {
			if y, ok := valueAt(tr, x); ok {
				row[j+1] = y
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
		if err := book.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func distinctX(f *Figure) []float64 {
	var xs []float64
	for _, tr := range f.Traces {
		xs = append(xs, tr.X...)
	}
	slices.Sort(xs)
	return slices.Compact(xs)
}

func valueAt(tr Trace, x float64) (float64, bool) {
	for i, tx := range tr.X {
		if tx == x && i < len(tr.Y) && !math.IsNaN(tr.Y[i]) {
			return tr.Y[i], true
		}
	}
	return 0, false
}
