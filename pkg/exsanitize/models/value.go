// Package models defines the tabular data structures shared by the reader,
// the sanitizer and the writers.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind tags the type of a cell value.
type Kind int

const (
	// KindNull is an empty or absent cell.
	KindNull Kind = iota
	// KindInt is an integer cell.
	KindInt
	// KindFloat is a floating-point cell.
	KindFloat
	// KindText is a string cell.
	KindText
	// KindBool is a boolean cell.
	KindBool
	// KindOther is any cell that is none of the above (dates, error values).
	KindOther
)

var kindNames = [...]string{"null", "int", "float", "text", "bool", "other"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is a tagged cell value.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point value. NaN is stored as null.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Other returns a value of no recognised type, keeping its raw text.
func Other(raw string) Value { return Value{kind: KindOther, s: raw} }

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the value is an integer or a float.
// Booleans are not numeric.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Float64 returns the numeric value as float64 and whether the value is numeric.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Int64 returns the integer payload and whether the value is an integer.
func (v Value) Int64() (int64, bool) { return v.i, v.kind == KindInt }

// Str returns the string payload of text and other values.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindText || v.kind == KindOther }

// BoolValue returns the boolean payload and whether the value is a boolean.
func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

// String renders the value. Nulls render as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindText, KindOther:
		return v.s
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	}
	return ""
}

// Interface returns the value as a plain Go value (nil, int64, float64,
// string or bool).
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText, KindOther:
		return v.s
	case KindBool:
		return v.b
	}
	return nil
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	}
	return v.s == o.s
}

// MarshalJSON encodes nulls as null, numbers as numbers, booleans as
// booleans and everything else as strings. Infinite floats are encoded as
// strings since JSON has no representation for them.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsInf(v.f, 0) {
			return json.Marshal(FormatFloat(v.f))
		}
		return []byte(strconv.FormatFloat(v.f, 'g', -1, 64)), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON decodes null, numbers, booleans and strings. Whole numbers
// without a fraction or exponent decode as integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Null()
	case bool:
		*v = Bool(x)
	case string:
		*v = Text(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			*v = Int(i)
			return nil
		}
		f, err := x.Float64()
		if err != nil {
			return err
		}
		*v = Float(f)
	default:
		*v = Other(string(data))
	}
	return nil
}

// FormatFloat renders f in its natural numeric form: whole numbers keep a
// trailing ".0", magnitudes at or above 1e16 or below 1e-4 use exponent
// notation, everything else uses the shortest decimal that round-trips.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
