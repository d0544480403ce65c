package models

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Record maps column names to cell values. A column missing from the map
// reads as null.
type Record map[string]Value

// Get returns the value for column, or null when the record has no such key.
func (r Record) Get(column string) Value {
	return r[column]
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of declared columns plus an ordered sequence of
// records sharing those columns.
type Table struct {
	// Columns is the declared column set, in display order.
	Columns []string
	// Records holds the rows in their original order.
	Records []Record
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{
		Columns: slices.Clone(columns),
		Records: []Record{},
	}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether name is one of the declared columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	return slices.Contains(t.Columns, name)
}

// Append adds a record to the end of the table.
func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}

// AppendRow adds a record built positionally from values. Values beyond the
// declared columns are dropped; missing trailing values are left absent.
func (t *Table) AppendRow(values ...Value) {
	r := make(Record, len(t.Columns))
	for i, v := range values {
		if i >= len(t.Columns) {
			break
		}
		r[t.Columns[i]] = v
	}
	t.Records = append(t.Records, r)
}

// Row returns the values of record i in column order.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.Columns))
	for j, col := range t.Columns {
		out[j] = t.Records[i].Get(col)
	}
	return out
}

// Equal reports whether two tables declare the same columns and hold equal
// values in every declared cell.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if !slices.Equal(t.Columns, o.Columns) || len(t.Records) != len(o.Records) {
		return false
	}
	for i := range t.Records {
		for _, col := range t.Columns {
			if !t.Records[i].Get(col).Equal(o.Records[i].Get(col)) {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the table as an array of objects whose keys follow the
// declared column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range t.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			val, err := rec.Get(col).MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
