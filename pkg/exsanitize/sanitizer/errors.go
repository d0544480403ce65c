package sanitizer

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrSchema indicates the range table lacks a required column.
var ErrSchema = errors.New("invalid range table schema")

// RequiredColumns lists the columns a range table must provide, after
// trimming and lower-casing its headers.
var RequiredColumns = []string{"parameter", "min", "max"}

// SchemaError reports the required range table columns that are absent.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("range table missing required columns: [%s]. Expected columns: %s",
		strings.Join(e.Missing, ", "), strings.Join(RequiredColumns, ", "))
}

// Is makes errors.Is(err, ErrSchema) match any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// NewSchemaError creates a SchemaError with the missing columns sorted.
func NewSchemaError(missing []string) *SchemaError {
	m := slices.Clone(missing)
	slices.Sort(m)
	return &SchemaError{Missing: m}
}
