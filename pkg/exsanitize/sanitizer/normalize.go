// Package sanitizer checks table rows against per-column numeric ranges.
//
// Normalize turns a range table with parameter, min and max columns into a
// BoundMap. Validate splits a data table into clean rows and bad rows, the
// latter annotated with an issues column. Both functions are pure: they
// perform no I/O and never mutate their inputs.
package sanitizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

// SkipReason explains why a range row was left out of the BoundMap.
type SkipReason string

const (
	// SkipEmptyParameter marks rows whose parameter is null or blank.
	SkipEmptyParameter SkipReason = "empty parameter"
	// SkipInvalidMin marks rows whose min cannot be read as a finite number.
	SkipInvalidMin SkipReason = "invalid min"
	// SkipInvalidMax marks rows whose max cannot be read as a finite number.
	SkipInvalidMax SkipReason = "invalid max"
)

// Observer receives range rows that Normalize skips. Row is the 0-based
// record index in the range table.
type Observer func(row int, parameter string, reason SkipReason)

// Normalize builds a BoundMap from a range table. See NormalizeWithObserver.
func Normalize(ranges *models.Table) (*models.BoundMap, error) {
	return NormalizeWithObserver(ranges, nil)
}

// NormalizeWithObserver builds a BoundMap from a range table.
//
// Column names are matched case-insensitively after trimming whitespace. A
// *SchemaError is returned when parameter, min or max is absent; extra
// columns are ignored. Rows with a blank parameter or a min/max that is not
// a finite number are skipped and reported to obs when it is non-nil. A
// parameter seen twice keeps its first position and its last bound.
func NormalizeWithObserver(ranges *models.Table, obs Observer) (*models.BoundMap, error) {
	var columns []string
	if ranges != nil {
		columns = ranges.Columns
	}

	// first matching header wins for each required name
	resolved := make(map[string]string, len(RequiredColumns))
	for _, col := range columns {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, seen := resolved[key]; !seen {
			resolved[key] = col
		}
	}

	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := resolved[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, NewSchemaError(missing)
	}

	paramCol, minCol, maxCol := resolved["parameter"], resolved["min"], resolved["max"]
	bounds := models.NewBoundMap()

	for i, rec := range ranges.Records {
		param := parameterName(rec.Get(paramCol))
		if param == "" {
			notify(obs, i, param, SkipEmptyParameter)
			continue
		}

		lo, ok := toFloat(rec.Get(minCol))
		if !ok {
			notify(obs, i, param, SkipInvalidMin)
			continue
		}
		hi, ok := toFloat(rec.Get(maxCol))
		if !ok {
			notify(obs, i, param, SkipInvalidMax)
			continue
		}

		bounds.Set(param, models.Bound{Min: lo, Max: hi})
	}

	return bounds, nil
}

func notify(obs Observer, row int, param string, reason SkipReason) {
	if obs != nil {
		obs(row, param, reason)
	}
}

// parameterName renders a parameter cell as a trimmed string. Null cells
// yield "".
func parameterName(v models.Value) string {
	if v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// toFloat coerces a bound cell to a finite float64. Numbers convert
// directly, booleans become 1 or 0 and decimal text is parsed; nulls and
// anything else fail.
func toFloat(v models.Value) (float64, bool) {
	var f float64
	switch v.Kind() {
	case models.KindInt, models.KindFloat:
		f, _ = v.Float64()
	case models.KindBool:
		if b, _ := v.BoolValue(); b {
			f = 1
		}
	case models.KindText:
		s, _ := v.Str()
		s = strings.TrimSpace(s)
		if isHexLiteral(s) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isHexLiteral reports whether s is a hexadecimal number such as "0x1p4",
// which strconv accepts but a decimal bound never is.
func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
