package dataprocessing

import "fmt"

// SchemaError reports a required column missing from the source table at
// reshape or load time. Missing values are never a SchemaError; only missing
// columns are.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column missing: %s", e.Column)
}

// NewSchemaError creates a SchemaError for the named column.
func NewSchemaError(column string) *SchemaError {
	return &SchemaError{Column: column}
}

// DataIntegrityError reports a duplicate (country, year) pair in a long
// table. This violates the reshaper's output invariant and indicates an
// upstream bug rather than a recoverable runtime condition.
type DataIntegrityError struct {
	CountryCode string
	Year        int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("duplicate record for country %s year %d", e.CountryCode, e.Year)
}

// NewDataIntegrityError creates a DataIntegrityError for the given key.
func NewDataIntegrityError(code string, year int) *DataIntegrityError {
	return &DataIntegrityError{CountryCode: code, Year: year}
}
