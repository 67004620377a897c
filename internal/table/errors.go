package table

import (
	"errors"
	"fmt"
)

// ErrUnknownCountry is returned when a country has no column in a table.
var ErrUnknownCountry = errors.New("unknown country")

// ErrUnknownTable is returned when a Store has no table with the given name.
var ErrUnknownTable = errors.New("unknown table")

// LoadError describes why a table could not be loaded.
// Load errors are fatal at startup.
type LoadError struct {
	Table string // table name ("co2", "ch4")
	Path  string // source path, empty for readers
	Line  int    // 1-based record number, 0 when not applicable
	Err   error
}

func (e *LoadError) Error() string {
	src := e.Table
	if e.Path != "" {
		src = fmt.Sprintf("%s (%s)", e.Table, e.Path)
	}
	if e.Line > 0 {
		return fmt.Sprintf("load table %s: line %d: %v", src, e.Line, e.Err)
	}
	return fmt.Sprintf("load table %s: %v", src, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// unknownCountry names the missing country and the table it was looked up in.
func unknownCountry(table, country string) error {
	return fmt.Errorf("%w %q in table %s", ErrUnknownCountry, country, table)
}
