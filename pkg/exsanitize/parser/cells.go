package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound indicates the requested sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrNoSheets indicates the workbook contains no worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// TableInfo describes where a table was read from.
type TableInfo struct {
	// Sheet is the resolved sheet name.
	Sheet string
	// Ref is the A1 range of the table, empty for an empty sheet.
	Ref string
	// Density is the share of non-empty cells within Ref.
	Density float64
}

// ReadWorkbook opens a workbook from r and reads one sheet as a table.
func ReadWorkbook(r io.Reader, sheet string) (*models.Table, TableInfo, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, TableInfo{}, err
	}
	defer f.Close()

	return ReadTable(f, sheet)
}

// ReadTable reads a sheet as a table. An empty sheet name selects the first
// sheet of the workbook.
//
// The first row of the sheet's non-empty bounding box is the header row.
// Blank headers are named "Unnamed: <i>" and repeated headers get ".1",
// ".2" suffixes. Rows with no data are skipped.
func ReadTable(f *excelize.File, sheet string) (*models.Table, TableInfo, error) {
	sheetName, err := resolveSheet(f, sheet)
	if err != nil {
		return nil, TableInfo{}, err
	}
	info := TableInfo{Sheet: sheetName}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, info, err
	}

	rng, ok := DetectTableRange(rows)
	if !ok {
		return models.NewTable(), info, nil
	}
	info.Ref = rng.Ref()
	info.Density = Density(rows, rng)

	header := make([]string, 0, rng.MaxCol-rng.MinCol+1)
	for colIdx := rng.MinCol; colIdx <= rng.MaxCol; colIdx++ {
		header = append(header, cellAt(rows, rng.MinRow, colIdx))
	}
	table := models.NewTable(headerNames(header)...)

	typer := newCellTyper(f, sheetName)
	for rowIdx := rng.MinRow + 1; rowIdx <= rng.MaxRow; rowIdx++ {
		rec := make(models.Record, len(table.Columns))
		hasData := false

		for i, col := range table.Columns {
			colIdx := rng.MinCol + i
			cellValue := cellAt(rows, rowIdx, colIdx)
			if cellValue == "" {
				rec[col] = models.Null()
				continue
			}
			hasData = true

			cellName, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			rec[col] = typer.value(cellName, cellValue)
		}

		if hasData {
			table.Append(rec)
		}
	}

	return table, info, nil
}

func resolveSheet(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return "", ErrNoSheets
		}
		return list[0], nil
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return "", err
	}
	if idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	return sheet, nil
}

func cellAt(rows [][]string, rowIdx, colIdx int) string {
	if rowIdx >= len(rows) || colIdx >= len(rows[rowIdx]) {
		return ""
	}
	return rows[rowIdx][colIdx]
}

// headerNames fills blank header cells and makes repeated names unique.
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// cellTyper assigns value kinds using the stored cell type and, for
// numbers, the cell's number format.
type cellTyper struct {
	f          *excelize.File
	sheet      string
	dateStyles map[int]bool
}

func newCellTyper(f *excelize.File, sheet string) *cellTyper {
	return &cellTyper{f: f, sheet: sheet, dateStyles: make(map[int]bool)}
}

func (c *cellTyper) value(cellName, raw string) models.Value {
	typ, err := c.f.GetCellType(c.sheet, cellName)
	if err != nil {
		return parseValue(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return parseBool(raw)
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return models.Text(raw)
	case excelize.CellTypeDate, excelize.CellTypeError:
		return models.Other(raw)
	}

	if c.isDate(cellName) {
		return models.Other(raw)
	}
	return parseValue(raw)
}

func (c *cellTyper) isDate(cellName string) bool {
	styleID, err := c.f.GetCellStyle(c.sheet, cellName)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := c.dateStyles[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := c.f.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	c.dateStyles[styleID] = isDate
	return isDate
}

// isDateFormat reports whether a number format renders dates or times.
// Built-in formats 14-22 and 45-47 are date/time formats; custom formats are
// matched on their date and time tokens outside quoted literals.
func isDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return hasDateTokens(*custom)
	}
	return (numFmt >= 14 && numFmt <= 22) || (numFmt >= 45 && numFmt <= 47)
}

func hasDateTokens(format string) bool {
	inQuote := false
	inBracket := false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case strings.ContainsRune("ymdhs", r):
			return true
		}
	}
	return false
}

func parseBool(raw string) models.Value {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "1", "TRUE":
		return models.Bool(true)
	case "0", "FALSE":
		return models.Bool(false)
	}
	return models.Other(raw)
}

// parseValue attempts to parse a string value as a number.
// Returns an Int for integers, a Float for decimals, or Text.
func parseValue(s string) models.Value {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.Int(i)
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return models.Float(f)
	}
	// Return as string
	return models.Text(s)
}
