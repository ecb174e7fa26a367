// pkg/model/join.go
package model

import "fmt"

// Suffixes applied to non-key columns present on both sides of a join
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// InnerJoin joins left and right on the key column. Output rows follow the
// left table's order; each left row is paired with every matching right row
// in right order. Output columns are the left columns followed by the right
// non-key columns. Rows with a missing key never match.
func InnerJoin(left, right *Table, key string) (*Table, error) {
	if !left.HasColumn(key) {
		return nil, &SchemaError{Column: key, Op: "join (left)"}
	}
	if !right.HasColumn(key) {
		return nil, &SchemaError{Column: key, Op: "join (right)"}
	}

	shared := make(map[string]bool)
	for _, col := range right.columns {
		if col != key && left.HasColumn(col) {
			shared[col] = true
		}
	}

	var outCols, leftCols, rightCols []string
	for _, col := range left.columns {
		name := col
		if shared[col] {
			name = col + LeftSuffix
		}
		outCols = append(outCols, name)
		leftCols = append(leftCols, col)
	}
	for _, col := range right.columns {
		if col == key {
			continue
		}
		name := col
		if shared[col] {
			name = col + RightSuffix
		}
		outCols = append(outCols, name)
		rightCols = append(rightCols, col)
	}

	// Positions of right rows per key, in right order
	lookup := make(map[string][]int)
	for i, v := range right.data[key] {
		if IsMissing(v) {
			continue
		}
		k := KeyString(v)
		lookup[k] = append(lookup[k], i)
	}

	out := NewTable(outCols...)
	for i, v := range left.data[key] {
		if IsMissing(v) {
			continue
		}
		for _, j := range lookup[KeyString(v)] {
			row := make([]interface{}, 0, len(outCols))
			for _, col := range leftCols {
				row = append(row, left.data[col][i])
			}
			for _, col := range rightCols {
				row = append(row, right.data[col][j])
			}
			if err := out.AppendRow(row...); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// KeyString renders a cell as a comparable key
func KeyString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
