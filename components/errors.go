package components

import (
	"fmt"
	"strings"
)

// SchemaError reports canonical fields that are required but absent from the staged data.
type SchemaError struct {
	Collection    string
	MissingFields []string // sorted
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("staged data for %v is missing required fields: %v", e.Collection, strings.Join(e.MissingFields, ", "))
}

// CoercionError reports a required field whose values could not be converted.
type CoercionError struct {
	Field  string
	Type   string
	Rows   []int         // 1-based data row numbers
	Values []interface{} // offending values, aligned with Rows
}

func (e *CoercionError) Error() string {
	const maxShown = 5
	b := strings.Builder{}
	for idx := range e.Rows {
		if idx == maxShown {
			b.WriteString(fmt.Sprintf(", ... (%v more)", len(e.Rows)-maxShown))
			break
		}
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("row %v: %q", e.Rows[idx], fmt.Sprint(e.Values[idx])))
	}
	return fmt.Sprintf("required %v field %v has %v missing or unparseable values: %v", e.Type, e.Field, len(e.Rows), b.String())
}

// PreflightError reports that the destination could not be read.
// DDL holds the definition needed to provision it.
type PreflightError struct {
	Collection string
	DDL        string
	Cause      error
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("destination %v does not exist or is not reachable: %v", e.Collection, e.Cause)
}

func (e *PreflightError) Unwrap() error {
	return e.Cause
}

// BatchSubmitError reports that the store rejected one batch.
type BatchSubmitError struct {
	Batch    int
	FirstRow int
	LastRow  int
	Cause    error
}

func (e *BatchSubmitError) Error() string {
	return fmt.Sprintf("batch %v (rows %v-%v) rejected: %v", e.Batch, e.FirstRow, e.LastRow, e.Cause)
}

func (e *BatchSubmitError) Unwrap() error {
	return e.Cause
}
