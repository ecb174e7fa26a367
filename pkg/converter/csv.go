// pkg/converter/csv.go
package converter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// EncodeCSV writes a table as CSV. With WriteIndex set, the row labels are
// written first under an empty header.
func (c *TypeConverter) EncodeCSV(w io.Writer, t *model.Table) error {
	if t == nil {
		return model.ErrNilTable
	}

	cw := csv.NewWriter(w)
	columns := t.Columns()

	header := make([]string, 0, len(columns)+1)
	if c.config.WriteIndex {
		header = append(header, "")
	}
	header = append(header, columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	index := t.Index()
	for i := 0; i < t.NumRows(); i++ {
		record := make([]string, 0, len(header))
		if c.config.WriteIndex {
			record = append(record, strconv.Itoa(index[i]))
		}
		for _, col := range columns {
			text, err := FormatValue(t.Value(i, col))
			if err != nil {
				return fmt.Errorf("failed to format column %s row %d: %w", col, i, err)
			}
			record = append(record, text)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads a table from CSV. A leading index column left by a
// previous save is dropped and rows are labelled 0..n-1. Malformed input
// is reported as a ParseError.
func (c *TypeConverter) DecodeCSV(r io.Reader) (*model.Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.NewTable(), nil
	}
	if err != nil {
		return nil, &model.ParseError{Err: fmt.Errorf("failed to read CSV header: %w", err)}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &model.ParseError{Err: fmt.Errorf("failed to read CSV rows: %w", err)}
	}

	offset := 0
	if len(header) > 0 && isIndexColumn(header[0]) {
		offset = 1
		c.logger.Debug("Dropping saved index column", zap.String("header", header[0]))
	}
	columns := header[offset:]

	kinds := make([]model.ColumnKind, len(columns))
	for j := range columns {
		if !c.config.InferTypes {
			kinds[j] = model.KindString
			continue
		}
		cells := make([]string, len(records))
		for i, rec := range records {
			cells[i] = rec[j+offset]
		}
		kinds[j] = inferColumnKind(cells)
	}

	table := model.NewTable(columns...)
	if len(table.Columns()) != len(columns) {
		return nil, &model.ParseError{Err: errors.New("duplicate column names in CSV header")}
	}
	for _, rec := range records {
		row := make([]interface{}, len(columns))
		for j := range columns {
			row[j] = convertCell(rec[j+offset], kinds[j])
		}
		if err := table.AppendRow(row...); err != nil {
			return nil, &model.ParseError{Err: err}
		}
	}

	return table, nil
}
