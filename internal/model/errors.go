package model

import "fmt"

// SchemaError reports a required column missing from an input table. It
// aborts the whole stage; no partial processing happens after one is raised.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q is missing", e.Column)
}

// NewSchemaError builds a SchemaError for the named column.
func NewSchemaError(column string) error {
	return &SchemaError{Column: column}
}

// ValidationError reports a per-row field constraint violation, such as an
// empty author. Policy is to abort the stage for that record, not to patch
// the row.
type ValidationError struct {
	Field  string
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: field %q %s", e.Row, e.Field, e.Reason)
}

// TransportError reports a page fetch failure during scraping. It is
// contained to the current source; the scan moves on to the next one.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
