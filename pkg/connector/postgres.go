// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/config"
)

// PostgresConnector reads a ChEMBL PostgreSQL dump
type PostgresConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgreSQL configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	// Open connection pool
	db, err := sqlx.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	// Configure connection pool
	ApplyConnectionSettings(db.DB, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, 0)

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Statement timeout applies per session; pinning one connection keeps it effective
	if cfg.StatementTimeout > 0 {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds())); err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if cfg.Schema != "" {
		logger.Debug("Using schema", zap.String("schema", cfg.Schema))
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return &PostgresConnector{db: db, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// Dialect returns DialectPostgres
func (c *PostgresConnector) Dialect() Dialect {
	return DialectPostgres
}

// Schema returns the schema holding the ChEMBL tables, if any
func (c *PostgresConnector) Schema() string {
	return c.cfg.Schema
}

// Timeout returns the per-query timeout
func (c *PostgresConnector) Timeout() time.Duration {
	return c.cfg.StatementTimeout
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}
