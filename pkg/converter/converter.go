// pkg/converter/converter.go
package converter

import (
	"sort"

	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// IndexColumnNames are the header names recognised as a saved row index
var IndexColumnNames = []string{"", "Unnamed: 0"}

// TypeConverter handles conversion between record sets, tables and CSV text
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for conversion
type TypeConverterConfig struct {
	// Write the row index as a leading unnamed column
	WriteIndex bool
	// Infer int/float/bool column kinds when decoding text
	InferTypes bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		WriteIndex: true,
		InferTypes: true,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// FromRecords materializes a record set into a table. Columns follow the
// record set's field hint, then any remaining keys in sorted order. Keys
// absent from a record become missing cells.
func (c *TypeConverter) FromRecords(rs model.RecordSet) *model.Table {
	columns := recordColumns(rs)
	table := model.NewTable(columns...)

	for _, rec := range rs.Records {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = rec[col]
		}
		// Column count always matches, AppendRow cannot fail here
		_ = table.AppendRow(row...)
	}

	c.logger.Debug("Materialized records",
		zap.Int("records", rs.Len()),
		zap.Int("columns", len(columns)))

	return table
}

func recordColumns(rs model.RecordSet) []string {
	seen := make(map[string]bool)
	columns := make([]string, 0, len(rs.Fields))
	for _, f := range rs.Fields {
		if !seen[f] {
			seen[f] = true
			columns = append(columns, f)
		}
	}

	var extra []string
	for _, rec := range rs.Records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				extra = append(extra, key)
			}
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

func isIndexColumn(name string) bool {
	for _, candidate := range IndexColumnNames {
		if name == candidate {
			return true
		}
	}
	return false
}
