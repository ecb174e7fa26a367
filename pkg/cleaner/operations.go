// pkg/cleaner/operations.go
package cleaner

import (
	"github.com/David-Botos/chembl-prep/pkg/converter"
	"github.com/David-Botos/chembl-prep/pkg/model"
)

// coerceFloat converts each listed column to float64. Missing cells stay missing.
func coerceFloat(t *model.Table, columns []string) (*model.Table, error) {
	out := t
	for _, col := range columns {
		if !out.HasColumn(col) {
			return nil, &model.SchemaError{Column: col, Op: "coerce"}
		}

		values := out.Column(col)
		for i, v := range values {
			if model.IsMissing(v) {
				values[i] = nil
				continue
			}
			if s, ok := v.(string); ok && converter.IsNullString(s) {
				values[i] = nil
				continue
			}
			f, err := converter.ToFloat(v)
			if err != nil {
				return nil, &model.TypeConversionError{Column: col, Row: i, Value: v, Err: err}
			}
			values[i] = f
		}

		next, err := out.WithColumn(col, values)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// dropMissing keeps rows without any missing cell
func dropMissing(t *model.Table) *model.Table {
	return t.Filter(func(i int) bool {
		return !t.RowHasMissing(i)
	})
}

// filterUnits keeps rows whose standard_units equals unit
func filterUnits(t *model.Table, unit string) (*model.Table, error) {
	if !t.HasColumn(model.StandardUnitsColumn) {
		return nil, &model.SchemaError{Column: model.StandardUnitsColumn, Op: "unit filter"}
	}
	return t.Filter(func(i int) bool {
		v := t.Value(i, model.StandardUnitsColumn)
		s, ok := v.(string)
		return ok && s == unit
	}), nil
}

// dropDuplicates keeps the first row for each key value. Missing keys
// compare equal to each other.
func dropDuplicates(t *model.Table, key string) (*model.Table, error) {
	if !t.HasColumn(key) {
		return nil, &model.SchemaError{Column: key, Op: "deduplicate"}
	}
	seen := make(map[string]bool)
	return t.Filter(func(i int) bool {
		v := t.Value(i, key)
		k := "\x00missing"
		if !model.IsMissing(v) {
			k = model.KeyString(v)
		}
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	}), nil
}
