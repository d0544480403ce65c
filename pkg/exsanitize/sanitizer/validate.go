package sanitizer

import (
	"slices"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

// Validate splits data into clean and bad rows.
//
// Every record is checked against every bound in insertion order. Records
// without issues go to clean unchanged. Records with issues are copied into
// bad with models.IssuesColumn set to the joined issue text. Both tables keep
// the input order. Clean declares the data columns; bad declares the data
// columns plus the issues column. A nil data table or BoundMap is treated as
// empty.
func Validate(data *models.Table, bounds *models.BoundMap) (clean, bad *models.Table) {
	var columns []string
	if data != nil {
		columns = data.Columns
	}

	clean = models.NewTable(columns...)
	badColumns := slices.Clone(columns)
	if !slices.Contains(badColumns, models.IssuesColumn) {
		badColumns = append(badColumns, models.IssuesColumn)
	}
	bad = models.NewTable(badColumns...)

	if data == nil {
		return clean, bad
	}

	entries := bounds.Entries()
	for _, rec := range data.Records {
		issues := checkRecord(data, rec, entries)
		if len(issues) == 0 {
			clean.Append(rec)
			continue
		}
		flagged := rec.Clone()
		flagged[models.IssuesColumn] = models.Text(JoinIssues(issues))
		bad.Append(flagged)
	}

	return clean, bad
}

// ValidateRecord returns the issues rec has against bounds. Column presence
// is judged against data's declared columns, not the keys of rec.
func ValidateRecord(data *models.Table, rec models.Record, bounds *models.BoundMap) []Issue {
	return checkRecord(data, rec, bounds.Entries())
}

func checkRecord(data *models.Table, rec models.Record, entries []models.BoundEntry) []Issue {
	var issues []Issue
	for _, e := range entries {
		if !data.HasColumn(e.Parameter) {
			issues = append(issues, Issue{Parameter: e.Parameter, Kind: IssueColumnMissing})
			continue
		}

		v := rec.Get(e.Parameter)
		switch {
		case v.IsNull():
			issues = append(issues, Issue{Parameter: e.Parameter, Kind: IssueMissingValue})
		case !v.IsNumeric():
			issues = append(issues, Issue{Parameter: e.Parameter, Kind: IssueNonNumeric})
		default:
			f, _ := v.Float64()
			if !e.Bound.Contains(f) {
				issues = append(issues, Issue{
					Parameter: e.Parameter,
					Kind:      IssueOutOfRange,
					Value:     v,
					Bound:     e.Bound,
				})
			}
		}
	}
	return issues
}
