// Package parser reads worksheet data into tables.
package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TableRange is the bounding box of the non-empty cells of a sheet, as
// 0-based row and column indexes into the GetRows grid (inclusive).
type TableRange struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
}

// Ref renders the range in A1 notation, e.g. "B2:D10".
func (r TableRange) Ref() string {
	startCell, _ := excelize.CoordinatesToCellName(r.MinCol+1, r.MinRow+1)
	endCell, _ := excelize.CoordinatesToCellName(r.MaxCol+1, r.MaxRow+1)
	return fmt.Sprintf("%s:%s", startCell, endCell)
}

// DetectTableRange finds the bounding box of non-empty cells in rows.
// It returns false when every cell is empty.
func DetectTableRange(rows [][]string) (TableRange, bool) {
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return TableRange{}, false
	}
	return TableRange{MinRow: minRow, MaxRow: maxRow, MinCol: minCol, MaxCol: maxCol}, true
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells within r.
func countNonEmptyCells(rows [][]string, r TableRange) int {
	count := 0
	for rowIdx := r.MinRow; rowIdx <= r.MaxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := r.MinCol; colIdx <= r.MaxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}

// Density returns the share of non-empty cells within r.
func Density(rows [][]string, r TableRange) float64 {
	total := (r.MaxRow - r.MinRow + 1) * (r.MaxCol - r.MinCol + 1)
	if total <= 0 {
		return 0
	}
	return float64(countNonEmptyCells(rows, r)) / float64(total)
}
