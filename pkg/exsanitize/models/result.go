package models

// IssuesColumn is the column added to bad rows to hold the joined issues.
const IssuesColumn = "issues"

// Result holds the outcome of one sanitization run.
type Result struct {
	// Data is the input table the rows were taken from.
	Data *Table `json:"-"`
	// Clean contains rows with no issues.
	Clean *Table `json:"clean"`
	// Bad contains rows with at least one issue, plus the issues column.
	Bad *Table `json:"bad"`
	// Bounds is the normalized constraint set the rows were checked against.
	Bounds *BoundMap `json:"-"`
}

// Summary counts the rows in each partition.
type Summary struct {
	Total       int `json:"total"`
	Clean       int `json:"clean"`
	Bad         int `json:"bad"`
	Constraints int `json:"constraints"`
}

// Summary returns row and constraint counts for the result.
func (r *Result) Summary() Summary {
	s := Summary{
		Clean:       r.Clean.Len(),
		Bad:         r.Bad.Len(),
		Constraints: r.Bounds.Len(),
	}
	s.Total = s.Clean + s.Bad
	return s
}
