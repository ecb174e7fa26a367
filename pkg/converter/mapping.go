// pkg/converter/mapping.go
package converter

import (
	"strconv"
	"strings"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// inferColumnKind picks the narrowest kind every non-missing cell parses as
func inferColumnKind(cells []string) model.ColumnKind {
	kind := model.KindEmpty
	for _, cell := range cells {
		if IsNullString(cell) {
			continue
		}
		kind = widen(kind, cellKind(strings.TrimSpace(cell)))
		if kind == model.KindString {
			return kind
		}
	}
	return kind
}

func cellKind(s string) model.ColumnKind {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.KindInt
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return model.KindFloat
	}
	if _, ok := parseBool(s); ok {
		return model.KindBool
	}
	return model.KindString
}

// widen combines the kind seen so far with the kind of the next cell
func widen(current, next model.ColumnKind) model.ColumnKind {
	switch {
	case current == model.KindEmpty:
		return next
	case current == next:
		return current
	case (current == model.KindInt && next == model.KindFloat) ||
		(current == model.KindFloat && next == model.KindInt):
		return model.KindFloat
	default:
		return model.KindString
	}
}

// convertCell turns a text cell into a value of the column's kind
func convertCell(cell string, kind model.ColumnKind) interface{} {
	if IsNullString(cell) {
		return nil
	}
	trimmed := strings.TrimSpace(cell)
	switch kind {
	case model.KindInt:
		if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return i
		}
	case model.KindFloat:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case model.KindBool:
		if b, ok := parseBool(trimmed); ok {
			return b
		}
	}
	return cell
}

// Describe builds column metadata for a table
func Describe(dataset string, t *model.Table) model.TableMetadata {
	meta := model.TableMetadata{
		Dataset: dataset,
		Rows:    t.NumRows(),
	}
	for _, name := range t.Columns() {
		col := model.Column{Name: name, Kind: model.KindEmpty}
		for _, v := range t.Column(name) {
			if model.IsMissing(v) {
				col.Missing++
				continue
			}
			col.Kind = widen(col.Kind, valueKind(v))
		}
		meta.Columns = append(meta.Columns, col)
	}
	return meta
}

func valueKind(v interface{}) model.ColumnKind {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return model.KindInt
	case float32, float64:
		return model.KindFloat
	case bool:
		return model.KindBool
	default:
		return model.KindString
	}
}
