package table

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Point is one observed (year, value) pair.
type Point struct {
	Year  int
	Value float64
}

// Table is an immutable emission table.
// Years are ascending and contiguous; values[c][y] is the value of
// Countries[c] in Years[y], NaN when missing.
type Table struct {
	name      string
	years     []int
	countries []string
	index     map[string]int
	values    [][]float64
}

// New builds a table from already-validated columns.
// values must hold one slice per country, each len(years) long.
func New(name string, years []int, countries []string, values [][]float64) (*Table, error) {
	if len(countries) != len(values) {
		return nil, fmt.Errorf("table %s: %d countries but %d value columns", name, len(countries), len(values))
	}
	if err := checkYears(years); err != nil {
		return nil, fmt.Errorf("table %s: %w", name, err)
	}

	t := &Table{
		name:      name,
		years:     append([]int(nil), years...),
		countries: make([]string, len(countries)),
		index:     make(map[string]int, len(countries)),
		values:    make([][]float64, len(values)),
	}
	for i, c := range countries {
		key := normalize(c)
		if key == "" {
			return nil, fmt.Errorf("table %s: column %d has an empty country name", name, i+1)
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("table %s: duplicate country %q", name, key)
		}
		if len(values[i]) != len(years) {
			return nil, fmt.Errorf("table %s: country %q has %d values for %d years", name, key, len(values[i]), len(years))
		}
		t.countries[i] = key
		t.index[key] = i
		t.values[i] = append([]float64(nil), values[i]...)
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Years returns a copy of the year axis.
func (t *Table) Years() []int {
	return append([]int(nil), t.years...)
}

// Countries returns the country columns in file order.
func (t *Table) Countries() []string {
	return append([]string(nil), t.countries...)
}

// Len returns the number of years.
func (t *Table) Len() int { return len(t.years) }

// FirstYear returns the first year of the axis.
func (t *Table) FirstYear() int { return t.years[0] }

// LastYear returns the last year of the axis.
func (t *Table) LastYear() int { return t.years[len(t.years)-1] }

// Has reports whether the table has a column for country.
func (t *Table) Has(country string) bool {
	_, ok := t.index[normalize(country)]
	return ok
}

// YearIndex returns the row index of year.
func (t *Table) YearIndex(year int) (int, bool) {
	if len(t.years) == 0 || year < t.years[0] || year > t.years[len(t.years)-1] {
		return 0, false
	}
	return year - t.years[0], true
}

// Column returns every value of country, one per year, NaN where missing.
func (t *Table) Column(country string) ([]float64, error) {
	i, ok := t.index[normalize(country)]
	if !ok {
		return nil, unknownCountry(t.name, country)
	}
	return append([]float64(nil), t.values[i]...), nil
}

// Slice returns the values of country for year indexes [from, to).
func (t *Table) Slice(country string, from, to int) ([]float64, error) {
	if from < 0 || to > len(t.years) || from > to {
		return nil, fmt.Errorf("table %s: year range [%d, %d) out of bounds [0, %d)", t.name, from, to, len(t.years))
	}
	col, err := t.Column(country)
	if err != nil {
		return nil, err
	}
	return col[from:to], nil
}

// History returns the observed points of country, skipping missing values.
func (t *Table) History(country string) ([]Point, error) {
	col, err := t.Column(country)
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			continue
		}
		points = append(points, Point{Year: t.years[i], Value: v})
	}
	return points, nil
}

// checkYears enforces the ascending, contiguous year axis.
func checkYears(years []int) error {
	if len(years) == 0 {
		return fmt.Errorf("no years")
	}
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			return fmt.Errorf("years not contiguous: %d follows %d", years[i], years[i-1])
		}
	}
	return nil
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
