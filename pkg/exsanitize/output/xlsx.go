// Package output serializes tables to xlsx, JSON and terminal tables.
package output

import (
	"fmt"
	"io"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet name used when none is given.
const DefaultSheet = "Sheet1"

// NewWorkbook builds a single-sheet workbook holding t: a header row
// followed by one row per record. Nulls are left as empty cells.
func NewWorkbook(t *models.Table, sheet string) (*excelize.File, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}

	if len(t.Columns) == 0 {
		return f, nil
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i := range t.Records {
		row := t.Row(i)
		for j, v := range row {
			if v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				f.Close()
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	return f, nil
}

// WriteXLSX writes t to w as a single-sheet workbook.
func WriteXLSX(w io.Writer, t *models.Table, sheet string) error {
	f, err := NewWorkbook(t, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// SaveXLSX writes t to a workbook file at path.
func SaveXLSX(path string, t *models.Table, sheet string) error {
	f, err := NewWorkbook(t, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.SaveAs(path)
}

func cellValue(v models.Value) interface{} {
	switch v.Kind() {
	case models.KindInt:
		i, _ := v.Int64()
		return i
	case models.KindFloat:
		f, _ := v.Float64()
		return f
	case models.KindBool:
		b, _ := v.BoolValue()
		return b
	}
	return v.String()
}
