package exsanitize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/parser"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/sanitizer"
	"github.com/xuri/excelize/v2"
)

// Inputs holds the data and range tables of one run.
type Inputs struct {
	Data   *models.Table
	Ranges *models.Table
}

// SanitizeFiles reads the data and range workbooks and sanitizes the data.
func SanitizeFiles(dataPath, rangesPath string, opts Options) (*models.Result, error) {
	in, err := LoadFiles(dataPath, rangesPath, opts)
	if err != nil {
		return nil, err
	}
	return Sanitize(in.Data, in.Ranges, opts)
}

// SanitizeReaders reads the data and range workbooks from r and sanitizes
// the data.
func SanitizeReaders(data, ranges io.Reader, opts Options) (*models.Result, error) {
	in, err := LoadReaders(data, ranges, opts)
	if err != nil {
		return nil, err
	}
	return Sanitize(in.Data, in.Ranges, opts)
}

// Sanitize normalizes ranges into a constraint set and splits data into
// clean and bad rows. A *SchemaError from the range table stops the run
// before any row is checked.
func Sanitize(data, ranges *models.Table, opts Options) (*models.Result, error) {
	bounds, err := sanitizer.NormalizeWithObserver(ranges, opts.observer())
	if err != nil {
		return nil, err
	}

	clean, bad := sanitizer.Validate(data, bounds)
	result := &models.Result{
		Data:   data,
		Clean:  clean,
		Bad:    bad,
		Bounds: bounds,
	}

	s := result.Summary()
	opts.logger().Info("sanitization complete",
		"rows", s.Total,
		"clean", s.Clean,
		"bad", s.Bad,
		"constraints", s.Constraints)

	return result, nil
}

// LoadFiles reads the data and range tables from workbook files.
func LoadFiles(dataPath, rangesPath string, opts Options) (*Inputs, error) {
	data, err := loadFile(dataPath, opts.DataSheet, "data", opts)
	if err != nil {
		return nil, err
	}
	ranges, err := loadFile(rangesPath, opts.RangesSheet, "ranges", opts)
	if err != nil {
		return nil, err
	}
	return &Inputs{Data: data, Ranges: ranges}, nil
}

// LoadReaders reads the data and range tables from workbook streams.
func LoadReaders(data, ranges io.Reader, opts Options) (*Inputs, error) {
	dataTable, err := loadReader(data, opts.DataSheet, "data", opts)
	if err != nil {
		return nil, err
	}
	rangesTable, err := loadReader(ranges, opts.RangesSheet, "ranges", opts)
	if err != nil {
		return nil, err
	}
	return &Inputs{Data: dataTable, Ranges: rangesTable}, nil
}

func loadFile(path, sheet, component string, opts Options) (*models.Table, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, NewReadError(path, sheet, component, fmt.Errorf("%w: %s", ErrFileNotFound, path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewReadError(path, sheet, component, fmt.Errorf("%w: %w", ErrInvalidFormat, err))
	}
	defer f.Close()

	return readTable(f, filepath.Base(path), sheet, component, opts)
}

func loadReader(r io.Reader, sheet, component string, opts Options) (*models.Table, error) {
	if r == nil {
		return nil, NewReadError("upload", sheet, component, ErrFileNotFound)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewReadError("upload", sheet, component, fmt.Errorf("%w: %w", ErrInvalidFormat, err))
	}
	defer f.Close()

	return readTable(f, "upload", sheet, component, opts)
}

func readTable(f *excelize.File, source, sheet, component string, opts Options) (*models.Table, error) {
	table, info, err := parser.ReadTable(f, sheet)
	if err != nil {
		return nil, NewReadError(source, sheet, component, err)
	}

	opts.logger().Debug("read table",
		"component", component,
		"source", source,
		"sheet", info.Sheet,
		"range", info.Ref,
		"density", info.Density,
		"columns", len(table.Columns),
		"rows", table.Len())

	return table, nil
}
