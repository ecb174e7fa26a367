// pkg/connector/sqlite.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/chembl-prep/pkg/config"
)

// SQLiteConnector reads a ChEMBL SQLite release
type SQLiteConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SQLiteConfig
}

// NewSQLiteConnector opens the release file read-only
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig, logger *zap.Logger) (*SQLiteConnector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("sqlite configuration is required")
	}
	return OpenSQLite(ctx, cfg.DSN(), cfg, logger)
}

// OpenSQLite opens a SQLite database from an explicit data source name
func OpenSQLite(ctx context.Context, dsn string, cfg *config.SQLiteConfig, logger *zap.Logger) (*SQLiteConnector, error) {
	if cfg == nil {
		cfg = &config.SQLiteConfig{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	// Open connection pool
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps in-memory databases shared
	db.SetMaxOpenConns(1)

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}

	return &SQLiteConnector{db: db, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *SQLiteConnector) DB() *sqlx.DB {
	return c.db
}

// Dialect returns DialectSQLite
func (c *SQLiteConnector) Dialect() Dialect {
	return DialectSQLite
}

// Schema returns an empty string; SQLite releases are unqualified
func (c *SQLiteConnector) Schema() string {
	return ""
}

// Timeout returns the per-query timeout
func (c *SQLiteConnector) Timeout() time.Duration {
	return c.cfg.QueryTimeout
}

// Close closes the database
func (c *SQLiteConnector) Close() error {
	c.logger.Info("Closing SQLite database")
	return c.db.Close()
}
