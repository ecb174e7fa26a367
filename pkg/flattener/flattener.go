// pkg/flattener/flattener.go
package flattener

import (
	"fmt"

	"github.com/David-Botos/chembl-prep/pkg/converter"
	"github.com/David-Botos/chembl-prep/pkg/model"
)

// Format tells the flattener how structure values are represented
type Format int

const (
	// FormatJSON means structure values are serialized text (as read from a
	// cache file): a JSON object or a Python dict literal
	FormatJSON Format = iota
	// FormatMapping means structure values are already decoded mappings
	FormatMapping
)

// String returns the configuration spelling of the format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMapping:
		return "mapping"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat converts "json" or "mapping" to a Format
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json", "":
		return FormatJSON, nil
	case "mapping":
		return FormatMapping, nil
	}
	return 0, fmt.Errorf("unknown structure format %q", s)
}

// Options selects the structure column and the nested field to extract
type Options struct {
	Format          Format
	StructureColumn string // Default molecule_structures
	Field           string // Default canonical_smiles
}

// DefaultOptions extracts canonical_smiles from serialized text
func DefaultOptions() Options {
	return Options{
		Format:          FormatJSON,
		StructureColumn: model.StructureColumn,
		Field:           model.CanonicalSmilesField,
	}
}

func (o Options) withDefaults() Options {
	if o.StructureColumn == "" {
		o.StructureColumn = model.StructureColumn
	}
	if o.Field == "" {
		o.Field = model.CanonicalSmilesField
	}
	return o
}

// Flatten replaces the structure column with a column holding one nested
// field. Rows whose extracted value is missing are dropped.
func Flatten(t *model.Table, opts Options) (*model.Table, error) {
	if t == nil {
		return nil, model.ErrNilTable
	}
	opts = opts.withDefaults()
	if !t.HasColumn(opts.StructureColumn) {
		return nil, &model.SchemaError{Column: opts.StructureColumn, Op: "flatten"}
	}

	extracted := make([]interface{}, t.NumRows())
	for i, v := range t.Column(opts.StructureColumn) {
		if model.IsMissing(v) {
			continue
		}
		obj, err := structure(v, opts.Format)
		if err != nil {
			return nil, &model.ParseError{Column: opts.StructureColumn, Row: i, Err: err}
		}
		extracted[i] = obj[opts.Field]
	}

	out := t.Drop(opts.StructureColumn)
	out, err := out.WithColumn(opts.Field, extracted)
	if err != nil {
		return nil, err
	}
	return out.Filter(func(i int) bool {
		return !model.IsMissing(out.Value(i, opts.Field))
	}), nil
}

// structure decodes one cell according to format
func structure(v interface{}, format Format) (map[string]interface{}, error) {
	switch format {
	case FormatJSON:
		var text string
		switch s := v.(type) {
		case string:
			text = s
		case []byte:
			text = string(s)
		default:
			return nil, fmt.Errorf("expected serialized text, got %T", v)
		}
		return converter.ParseObject(text)
	case FormatMapping:
		obj, ok := converter.AsObject(v)
		if !ok {
			return nil, fmt.Errorf("expected a mapping, got %T", v)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unknown structure format %v", format)
	}
}
