package table

import (
	"fmt"
	"sort"
)

// Well-known table names.
const (
	CO2 = "co2"
	CH4 = "ch4"
)

// Store holds the named emission tables of one process.
// It is built once at startup and only read afterwards.
type Store struct {
	tables map[string]*Table
}

// NewStore builds a store from tables, keyed by Table.Name.
func NewStore(tables ...*Table) (*Store, error) {
	s := &Store{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("nil table")
		}
		if _, dup := s.tables[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate table %q", t.Name())
		}
		s.tables[t.Name()] = t
	}
	return s, nil
}

// Open loads every path in sources (name -> path) into a store.
// Any failure is returned as a *LoadError.
func Open(sources map[string]string) (*Store, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		t, err := LoadFile(name, sources[name])
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return NewStore(tables...)
}

// Table returns the table with the given name.
func (s *Store) Table(name string) (*Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTable, name)
	}
	return t, nil
}

// MustTable returns the named table and panics if it is missing.
// Only for tables validated at startup.
func (s *Store) MustTable(name string) *Table {
	t, err := s.Table(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the table names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Require checks that every name is present.
func (s *Store) Require(names ...string) error {
	for _, name := range names {
		if _, err := s.Table(name); err != nil {
			return err
		}
	}
	return nil
}
