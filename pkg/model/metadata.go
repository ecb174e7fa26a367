// pkg/model/metadata.go
package model

import "strings"

// ColumnKind is the value kind inferred for a column
type ColumnKind string

const (
	KindEmpty  ColumnKind = "empty" // Every value missing
	KindInt    ColumnKind = "int64"
	KindFloat  ColumnKind = "float64"
	KindBool   ColumnKind = "bool"
	KindString ColumnKind = "string"
)

// TableMetadata contains the structure information for a table
type TableMetadata struct {
	Dataset string   // Logical dataset name
	Rows    int      // Row count
	Columns []Column // Column definitions in table order
}

// Column represents metadata about a table column
type Column struct {
	Name    string     // Column name
	Kind    ColumnKind // Inferred value kind
	Missing int        // Number of missing cells
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	for i, col := range tm.Columns {
		if strings.EqualFold(col.Name, name) {
			return &tm.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}
