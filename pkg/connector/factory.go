// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/config"
)

// Queries is the pair of collaborators a dataset build consumes
type Queries struct {
	Bioactivities Query
	Compounds     Query

	// Connector is nil for the web source
	Connector DatabaseConnector
}

// Close releases the database connection, if any
func (q *Queries) Close() error {
	if q == nil || q.Connector == nil {
		return nil
	}
	return q.Connector.Close()
}

// ConnectorFactory creates connectors and queries for the configured source
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Filter returns the activity filter described by the configuration
func (f *ConnectorFactory) Filter() ActivityFilter {
	filter := DefaultActivityFilter(f.cfg.TargetChEMBLID)
	filter.StandardType = f.cfg.StandardType
	filter.AssayType = f.cfg.AssayType
	return filter
}

// WebOptions returns the HTTP settings for the web source
func (f *ConnectorFactory) WebOptions() WebServiceOptions {
	return WebServiceOptions{
		BaseURL:  f.cfg.APIBaseURL,
		PageSize: f.cfg.PageSize,
		Timeout:  f.cfg.HTTPTimeout,
	}
}

// CreateConnector opens the database connector for a SQL source
func (f *ConnectorFactory) CreateConnector(ctx context.Context) (DatabaseConnector, error) {
	f.logger.Info("Creating connector", zap.String("source", f.cfg.Source))

	var (
		conn DatabaseConnector
		err  error
	)
	switch f.cfg.Source {
	case config.SourcePostgres:
		conn, err = NewPostgresConnector(ctx, f.cfg.Postgres, f.logger)
	case config.SourceSQLite:
		conn, err = NewSQLiteConnector(ctx, f.cfg.SQLite, f.logger)
	case config.SourceSnowflake:
		conn, err = NewSnowflakeConnector(ctx, f.cfg.Snowflake, f.logger)
	default:
		return nil, fmt.Errorf("source %q has no database connector", f.cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", f.cfg.Source, err)
	}
	return conn, nil
}

// CreateQueries builds the bioactivity and compound queries. moleculeIDs is
// only used by the web source, whose molecule resource cannot filter by target.
func (f *ConnectorFactory) CreateQueries(ctx context.Context, moleculeIDs func(ctx context.Context) ([]string, error)) (*Queries, error) {
	filter := f.Filter()

	if f.cfg.Source == config.SourceWeb {
		if moleculeIDs == nil {
			return nil, fmt.Errorf("web source requires a molecule ID resolver")
		}
		opts := f.WebOptions()
		return &Queries{
			Bioactivities: NewActivityQuery(opts, filter, f.logger),
			Compounds:     NewMoleculeQuery(opts, moleculeIDs, f.logger),
		}, nil
	}

	conn, err := f.CreateConnector(ctx)
	if err != nil {
		return nil, err
	}
	queries, err := SQLQueries(conn, filter, f.logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return queries, nil
}

// SQLQueries builds both ChEMBL statements against an open connector
func SQLQueries(conn DatabaseConnector, filter ActivityFilter, logger *zap.Logger) (*Queries, error) {
	if filter.Schema == "" {
		filter.Schema = conn.Schema()
	}

	bioSQL, bioArgs := BioactivitySQL(conn.Dialect(), filter)
	compSQL, compArgs, err := CompoundSQL(conn.Dialect(), filter)
	if err != nil {
		return nil, err
	}

	return &Queries{
		Bioactivities: NewSQLQuery(conn.DB(), bioSQL, conn.Timeout(), logger, bioArgs...),
		Compounds:     NewSQLQuery(conn.DB(), compSQL, conn.Timeout(), logger, compArgs...),
		Connector:     conn,
	}, nil
}
