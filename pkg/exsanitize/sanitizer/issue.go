package sanitizer

import (
	"fmt"
	"strings"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

// IssueKind classifies a single violation.
type IssueKind int

const (
	// IssueColumnMissing means the data table has no column for the parameter.
	IssueColumnMissing IssueKind = iota + 1
	// IssueMissingValue means the row has no value for the parameter.
	IssueMissingValue
	// IssueNonNumeric means the value is not an integer or a float.
	IssueNonNumeric
	// IssueOutOfRange means the value lies outside the inclusive bound.
	IssueOutOfRange
)

func (k IssueKind) String() string {
	switch k {
	case IssueColumnMissing:
		return "column_missing"
	case IssueMissingValue:
		return "missing_value"
	case IssueNonNumeric:
		return "non_numeric"
	case IssueOutOfRange:
		return "out_of_range"
	}
	return "unknown"
}

// Issue describes one violation of one constraint by one row.
type Issue struct {
	Parameter string
	Kind      IssueKind
	// Value and Bound are set for IssueOutOfRange only.
	Value models.Value
	Bound models.Bound
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueColumnMissing:
		return i.Parameter + ": column missing"
	case IssueMissingValue:
		return i.Parameter + ": missing value"
	case IssueNonNumeric:
		return i.Parameter + ": non-numeric"
	case IssueOutOfRange:
		return fmt.Sprintf("%s: %s outside [%s, %s]", i.Parameter, i.Value,
			models.FormatFloat(i.Bound.Min), models.FormatFloat(i.Bound.Max))
	}
	return i.Parameter + ": unknown issue"
}

// IssueSeparator joins the issues of one row.
const IssueSeparator = "; "

// JoinIssues renders issues in order, separated by IssueSeparator.
func JoinIssues(issues []Issue) string {
	parts := make([]string, len(issues))
	for i, is := range issues {
		parts[i] = is.String()
	}
	return strings.Join(parts, IssueSeparator)
}
