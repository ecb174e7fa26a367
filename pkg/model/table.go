// pkg/model/table.go
package model

import (
	"fmt"
	"math"
)

// Record is a single row as returned by a query source
type Record map[string]interface{}

// RecordSet is an ordered sequence of records returned by a query
type RecordSet struct {
	Fields  []string // Optional column order hint (e.g. from a SQL result set)
	Records []Record
}

// Len returns the number of records
func (rs RecordSet) Len() int {
	return len(rs.Records)
}

// Table is a column-oriented table with named columns and positional rows.
// Steps that transform a table return a new one; the receiver is left as is.
type Table struct {
	columns []string
	data    map[string][]interface{}
	index   []int
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...string) *Table {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		data:    make(map[string][]interface{}, len(columns)),
	}
	for _, col := range columns {
		if _, exists := t.data[col]; exists {
			continue
		}
		t.columns = append(t.columns, col)
		t.data[col] = nil
	}
	return t
}

// AppendRow adds a row in column order with the next index label
func (t *Table) AppendRow(values ...interface{}) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.columns))
	}
	label := 0
	if n := len(t.index); n > 0 {
		label = t.index[n-1] + 1
	}
	for i, col := range t.columns {
		t.data[col] = append(t.data[col], values[i])
	}
	t.index = append(t.index, label)
	return nil
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	return len(t.index)
}

// Columns returns a copy of the column names in order
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// HasColumn reports whether the column exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Column returns a copy of a column's values, or nil if absent
func (t *Table) Column(name string) []interface{} {
	values, ok := t.data[name]
	if !ok {
		return nil
	}
	out := make([]interface{}, len(values))
	copy(out, values)
	return out
}

// Value returns the cell at row i of column name, or nil if the column is
// absent. i must be in range.
func (t *Table) Value(i int, name string) interface{} {
	col, ok := t.data[name]
	if !ok {
		return nil
	}
	return col[i]
}

// Row returns row i as a record
func (t *Table) Row(i int) Record {
	row := make(Record, len(t.columns))
	for _, col := range t.columns {
		row[col] = t.data[col][i]
	}
	return row
}

// Index returns a copy of the row labels
func (t *Table) Index() []int {
	idx := make([]int, len(t.index))
	copy(idx, t.index)
	return idx
}

// Clone returns a deep copy of the table structure (cell values are shared)
func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

// Filter returns a new table holding the rows for which keep returns true.
// Row labels are carried over.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := NewTable(t.columns...)
	for i := range t.index {
		if !keep(i) {
			continue
		}
		for _, col := range t.columns {
			out.data[col] = append(out.data[col], t.data[col][i])
		}
		out.index = append(out.index, t.index[i])
	}
	return out
}

// Select returns a new table restricted to the given columns, in that order
func (t *Table) Select(columns ...string) (*Table, error) {
	for _, col := range columns {
		if !t.HasColumn(col) {
			return nil, &SchemaError{Column: col, Op: "select"}
		}
	}
	out := NewTable(columns...)
	for _, col := range out.columns {
		out.data[col] = append([]interface{}(nil), t.data[col]...)
	}
	out.index = append([]int(nil), t.index...)
	return out, nil
}

// Drop returns a new table without the given columns
func (t *Table) Drop(columns ...string) *Table {
	drop := make(map[string]bool, len(columns))
	for _, col := range columns {
		drop[col] = true
	}
	kept := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		if !drop[col] {
			kept = append(kept, col)
		}
	}
	out, _ := t.Select(kept...)
	return out
}

// WithColumn returns a new table with the column set to values.
// An existing column is replaced in place, a new one is appended.
func (t *Table) WithColumn(name string, values []interface{}) (*Table, error) {
	if len(values) != t.NumRows() {
		return nil, fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), t.NumRows())
	}
	out := t.Clone()
	if !out.HasColumn(name) {
		out.columns = append(out.columns, name)
	}
	out.data[name] = append([]interface{}(nil), values...)
	return out, nil
}

// ResetIndex returns a new table with rows labelled 0..n-1
func (t *Table) ResetIndex() *Table {
	out := t.Clone()
	for i := range out.index {
		out.index[i] = i
	}
	return out
}

// RowHasMissing reports whether any cell of row i is missing
func (t *Table) RowHasMissing(i int) bool {
	for _, col := range t.columns {
		if IsMissing(t.data[col][i]) {
			return true
		}
	}
	return false
}

// IsMissing reports whether a cell value counts as missing (nil or NaN)
func IsMissing(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(val)
	case float32:
		return math.IsNaN(float64(val))
	default:
		return false
	}
}
