// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// Query is a remote lookup producing a record set. The pipeline treats it
// as opaque: it is run once on a cache miss and never retried.
type Query interface {
	Fetch(ctx context.Context) (model.RecordSet, error)
}

// QueryFunc adapts a function to the Query interface
type QueryFunc func(ctx context.Context) (model.RecordSet, error)

// Fetch calls f
func (f QueryFunc) Fetch(ctx context.Context) (model.RecordSet, error) {
	return f(ctx)
}

// StaticQuery returns a fixed record set
type StaticQuery struct {
	Fields  []string
	Records []model.Record
}

// Fetch returns a copy of the static records
func (q StaticQuery) Fetch(ctx context.Context) (model.RecordSet, error) {
	if err := ctx.Err(); err != nil {
		return model.RecordSet{}, err
	}
	records := make([]model.Record, len(q.Records))
	copy(records, q.Records)
	return model.RecordSet{Fields: q.Fields, Records: records}, nil
}

// DatabaseConnector defines the interface for database connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sqlx.DB

	// Dialect returns the SQL dialect spoken by the database
	Dialect() Dialect

	// Schema returns the schema qualifying the ChEMBL tables, or ""
	Schema() string

	// Timeout returns the per-query timeout, zero for none
	Timeout() time.Duration

	// Close closes the connection and releases resources
	Close() error
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) sql.DBStats {
	return db.Stats()
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConnections),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}
