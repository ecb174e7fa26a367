// pkg/connector/sql.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// SQLQuery runs a statement against a database and returns every row as a record
type SQLQuery struct {
	db      *sqlx.DB
	query   string
	args    []interface{}
	timeout time.Duration
	logger  *zap.Logger
}

// NewSQLQuery creates a query bound to db. The statement uses '?'
// placeholders and is rebound to the driver's bind style.
func NewSQLQuery(db *sqlx.DB, query string, timeout time.Duration, logger *zap.Logger, args ...interface{}) *SQLQuery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLQuery{
		db:      db,
		query:   db.Rebind(query),
		args:    args,
		timeout: timeout,
		logger:  logger,
	}
}

// Statement returns the rebound SQL text
func (q *SQLQuery) Statement() string {
	return q.query
}

// Fetch executes the statement and scans all rows
func (q *SQLQuery) Fetch(ctx context.Context) (model.RecordSet, error) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := q.db.QueryxContext(ctx, q.query, q.args...)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields, err := rows.Columns()
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to read result columns: %w", err)
	}

	var records []model.Record
	for rows.Next() {
		row := make(map[string]interface{}, len(fields))
		if err := rows.MapScan(row); err != nil {
			return model.RecordSet{}, fmt.Errorf("failed to scan row %d: %w", len(records), err)
		}
		records = append(records, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return model.RecordSet{}, fmt.Errorf("error iterating rows: %w", err)
	}

	q.logger.Debug("SQL query complete",
		zap.Int("rows", len(records)),
		zap.Duration("duration", time.Since(start)))

	return model.RecordSet{Fields: fields, Records: records}, nil
}

// normalizeRow converts driver byte slices to strings
func normalizeRow(row map[string]interface{}) model.Record {
	rec := make(model.Record, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
			continue
		}
		rec[k] = v
	}
	return rec
}
