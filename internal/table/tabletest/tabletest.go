// Package tabletest provides emission table fixtures for tests.
//
// Every fixture country is an exact line, so overview and forecast
// results are known in closed form.
package tabletest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/ghgdash/internal/table"
)

// Fixture years: 2000..2021 inclusive.
const (
	FirstYear = 2000
	LastYear  = 2021
	NumYears  = LastYear - FirstYear + 1
)

// Fixture countries. Every country is an exact line so forecasts are known:
//
//	CO2 Germany       900 - 5*(y-2000)
//	CO2 United States 5800 + 10*(y-2000)
//	CO2 China         3400 + 400*(y-2000)
//	CO2 Atlantis      only 2021 = 1.5
//	CH4 Germany       50 + (y-2000)
//	CH4 United States 600 - 2*(y-2000)
//	CH4 China         1000 + 20*(y-2000)
const (
	Germany      = "Germany"
	UnitedStates = "United States"
	China        = "China"
	Atlantis     = "Atlantis"
)

// CO2Germany is the fixture value of Germany's CO2 in year.
func CO2Germany(year int) float64 {
	return float64(900 - 5*(year-FirstYear))
}

// CO2CSV returns the fixture CO2 table.
func CO2CSV() string {
	var b strings.Builder
	b.WriteString(",Germany,United States,China,Atlantis\n")
	for y := FirstYear; y <= LastYear; y++ {
		d := y - FirstYear
		atlantis := ""
		if y == LastYear {
			atlantis = "1.5"
		}
		fmt.Fprintf(&b, "%d,%d,%d,%d,%s\n", y, 900-5*d, 5800+10*d, 3400+400*d, atlantis)
	}
	return b.String()
}

// CH4CSV returns the fixture CH4 table.
func CH4CSV() string {
	var b strings.Builder
	b.WriteString("Unnamed: 0,Germany,United States,China\n")
	for y := FirstYear; y <= LastYear; y++ {
		d := y - FirstYear
		fmt.Fprintf(&b, "%d.0,%d,%d,%d\n", y, 50+d, 600-2*d, 1000+20*d)
	}
	return b.String()
}

// WriteTables writes the fixture tables into a temp dir and returns their paths.
func WriteTables(t testing.TB) (co2Path, ch4Path string) {
	t.Helper()
	dir := t.TempDir()
	co2Path = filepath.Join(dir, "co2.csv")
	ch4Path = filepath.Join(dir, "ch4.csv")
	if err := os.WriteFile(co2Path, []byte(CO2CSV()), 0644); err != nil {
		t.Fatalf("write co2 fixture: %v", err)
	}
	if err := os.WriteFile(ch4Path, []byte(CH4CSV()), 0644); err != nil {
		t.Fatalf("write ch4 fixture: %v", err)
	}
	return co2Path, ch4Path
}

// Tables loads the fixture tables into a store.
func Tables(t testing.TB) *table.Store {
	t.Helper()
	co2, err := table.LoadCSV(table.CO2, strings.NewReader(CO2CSV()))
	if err != nil {
		t.Fatalf("load co2 fixture: %v", err)
	}
	ch4, err := table.LoadCSV(table.CH4, strings.NewReader(CH4CSV()))
	if err != nil {
		t.Fatalf("load ch4 fixture: %v", err)
	}
	s, err := table.NewStore(co2, ch4)
	if err != nil {
		t.Fatalf("build fixture store: %v", err)
	}
	return s
}
