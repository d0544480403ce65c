package exsanitize

import (
	"errors"
	"fmt"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/parser"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/sanitizer"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx format.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrSheetNotFound indicates the requested sheet does not exist.
var ErrSheetNotFound = parser.ErrSheetNotFound

// ErrSchema indicates the range table lacks a required column.
var ErrSchema = sanitizer.ErrSchema

// SchemaError reports the required range table columns that are absent.
type SchemaError = sanitizer.SchemaError

// ReadError represents an error while reading an input workbook.
type ReadError struct {
	Source    string // file name or upload field
	Sheet     string
	Component string // "data", "ranges"
	Err       error
}

func (e *ReadError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("read error in %s workbook %q (sheet %q): %v", e.Component, e.Source, e.Sheet, e.Err)
	}
	return fmt.Sprintf("read error in %s workbook %q: %v", e.Component, e.Source, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReadError creates a new ReadError.
func NewReadError(source, sheet, component string, err error) *ReadError {
	return &ReadError{
		Source:    source,
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}
