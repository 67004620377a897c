package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadFile loads a table, choosing the decoder from the file extension.
// Supported: .csv and .xlsx (first sheet).
func LoadFile(name, path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, &LoadError{Table: name, Path: path, Err: err}
		}
		defer f.Close()
		t, err := LoadCSV(name, f)
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				le.Path = path
			}
			return nil, err
		}
		return t, nil
	case ".xlsx":
		return LoadXLSX(name, path)
	default:
		return nil, &LoadError{Table: name, Path: path, Err: fmt.Errorf("unsupported file type %q", filepath.Ext(path))}
	}
}

// LoadCSV reads a table from CSV.
func LoadCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are reported with a line number below

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Table: name, Err: fmt.Errorf("read csv: %w", err)}
	}
	return fromRecords(name, records)
}

// LoadXLSX reads a table from the first sheet of an Excel workbook.
func LoadXLSX(name, path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Table: name, Path: path, Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &LoadError{Table: name, Path: path, Err: errors.New("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Table: name, Path: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}

	// excelize trims trailing empty cells; pad to the header width.
	if len(rows) > 0 {
		width := len(rows[0])
		for i, row := range rows {
			for len(row) < width {
				row = append(row, "")
			}
			rows[i] = row
		}
	}

	t, err := fromRecords(name, rows)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return t, nil
}

// fromRecords converts a header row plus data rows into a Table.
func fromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, &LoadError{Table: name, Err: errors.New("empty file")}
	}
	header := records[0]
	if len(header) < 2 {
		return nil, &LoadError{Table: name, Line: 1, Err: errors.New("no country columns")}
	}

	// Column 0 is the year axis whatever its header says.
	countries := make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		countries = append(countries, h)
	}

	rows := records[1:]
	if len(rows) == 0 {
		return nil, &LoadError{Table: name, Err: errors.New("no data rows")}
	}

	years := make([]int, 0, len(rows))
	values := make([][]float64, len(countries))
	for c := range values {
		values[c] = make([]float64, 0, len(rows))
	}

	for i, row := range rows {
		line := i + 2
		if len(row) != len(header) {
			return nil, &LoadError{Table: name, Line: line, Err: fmt.Errorf("expected %d fields, got %d", len(header), len(row))}
		}
		year, err := parseYear(row[0])
		if err != nil {
			return nil, &LoadError{Table: name, Line: line, Err: err}
		}
		years = append(years, year)
		for c, cell := range row[1:] {
			v, err := parseValue(cell)
			if err != nil {
				return nil, &LoadError{Table: name, Line: line, Err: fmt.Errorf("column %q: %w", countries[c], err)}
			}
			values[c] = append(values[c], v)
		}
	}

	t, err := New(name, years, countries, values)
	if err != nil {
		return nil, &LoadError{Table: name, Err: err}
	}
	return t, nil
}

func parseYear(cell string) (int, error) {
	s := strings.TrimSpace(cell)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", cell)
	}
	return int(f), nil
}

func parseValue(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", cell)
	}
	return v, nil
}
