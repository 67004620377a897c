// Package table provides the read-only emission tables behind the dashboard.
//
// An Emission Table is a year-indexed, country-columned numeric dataset for
// one gas species. Tables are loaded once at startup from files produced by
// an external data-preparation step and are never mutated afterwards, so a
// *Table (and a *Store of tables) is safe for concurrent readers.
//
// # File Format
//
// The first column is always the year axis, whatever its header says
// (pandas writes "Unnamed: 0" or an empty header for an index column).
// Every other column is one country:
//
//	,Germany,United States,China
//	2000,900.1,5800.3,3400.2
//	2001,905.4,5750.0,3550.9
//
// Years must be integers, ascending and contiguous. Empty cells and the
// literal "NaN" are missing values.
//
// # Name Normalization
//
// Country names are stored and looked up in Unicode NFC so that a selection
// typed on one platform matches a header written on another.
package table
