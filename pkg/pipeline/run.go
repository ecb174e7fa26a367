// pkg/pipeline/run.go
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/cache"
	"github.com/David-Botos/chembl-prep/pkg/cleaner"
	"github.com/David-Botos/chembl-prep/pkg/config"
	"github.com/David-Botos/chembl-prep/pkg/connector"
	"github.com/David-Botos/chembl-prep/pkg/converter"
	"github.com/David-Botos/chembl-prep/pkg/flattener"
	"github.com/David-Botos/chembl-prep/pkg/model"
)

// RunSummary describes one configured pipeline run
type RunSummary struct {
	ID            string               `json:"id"`
	Source        string               `json:"source"`
	Target        string               `json:"target"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	Duration      time.Duration        `json:"duration"`
	Bioactivities model.CleaningReport `json:"bioactivities"`
	Compounds     model.CleaningReport `json:"compounds"`
	Verification  *VerificationReport  `json:"verification,omitempty"`
	Rows          int                  `json:"rows"`
	Columns       []model.Column       `json:"columns,omitempty"`
	OutputPath    string               `json:"output_path,omitempty"`
	Success       bool                 `json:"success"`
	ErrorCategory string               `json:"error_category,omitempty"`
	Error         string               `json:"error,omitempty"`
}

func newRunSummary(cfg *config.Config) *RunSummary {
	return &RunSummary{
		ID:        uuid.New().String(),
		Source:    cfg.Source,
		Target:    cfg.TargetName,
		StartTime: time.Now(),
	}
}

// complete records the outcome and end time
func (s *RunSummary) complete(err error) {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	s.Success = err == nil
	if err != nil {
		s.ErrorCategory = Categorize(err).String()
		s.Error = err.Error()
	}
}

// JSON returns the summary as indented JSON
func (s *RunSummary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Log writes the summary at info level, or error level for a failed run.
// The logger is expected to carry the run_id field.
func (s *RunSummary) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("source", s.Source),
		zap.String("target", s.Target),
		zap.Int("bioactivities_removed", s.Bioactivities.TotalRemoved()),
		zap.Int("compounds_removed", s.Compounds.TotalRemoved()),
		zap.Int("rows", s.Rows),
		zap.Duration("duration", s.Duration),
	}
	if s.Success {
		logger.Info("Run complete", fields...)
		return
	}
	fields = append(fields,
		zap.String("error_category", s.ErrorCategory),
		zap.String("error", s.Error))
	logger.Error("Run failed", fields...)
}

// QuerySource builds the queries for a run. moleculeIDs yields the cleaned
// bioactivity keys once they are known.
type QuerySource func(ctx context.Context, moleculeIDs func(ctx context.Context) ([]string, error)) (*connector.Queries, error)

// Runner executes the pipeline described by a configuration
type Runner struct {
	cfg     *config.Config
	logger  *zap.Logger
	queries QuerySource
}

// NewRunner creates a runner whose queries come from the connector factory
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	factory := connector.NewConnectorFactory(cfg, logger)
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		queries: factory.CreateQueries,
	}, nil
}

// WithQuerySource replaces the connector factory
func (r *Runner) WithQuerySource(source QuerySource) *Runner {
	r.queries = source
	return r
}

// Run builds the merged dataset for the configured target. The summary is
// returned on failure as well.
func (r *Runner) Run(ctx context.Context) (*model.Table, *RunSummary, error) {
	summary := newRunSummary(r.cfg)
	logger := r.logger.With(zap.String("run_id", summary.ID))

	table, err := r.run(ctx, summary, logger)
	summary.complete(err)
	summary.Log(logger)
	if err != nil {
		return nil, summary, err
	}
	return table, summary, nil
}

func (r *Runner) run(ctx context.Context, summary *RunSummary, logger *zap.Logger) (*model.Table, error) {
	format, err := flattener.ParseFormat(r.cfg.StructureFormat)
	if err != nil {
		return nil, err
	}
	// Cached tables hold structures as text
	if format != flattener.FormatJSON {
		return nil, fmt.Errorf("structure format %q cannot read cached tables", format)
	}

	conv := converter.NewTypeConverter(logger)
	loader, err := cache.NewLoader(conv, logger)
	if err != nil {
		return nil, err
	}
	dc, err := cleaner.NewDataCleaner(logger)
	if err != nil {
		return nil, err
	}

	// Compound lookups that need the bioactivity keys read them from here
	var keys []string
	opts := DefaultOptions()
	opts.StandardUnit = r.cfg.StandardUnit
	opts.Structure.Format = format
	opts.OnBioactivities = func(t *model.Table) {
		keys = make([]string, 0, t.NumRows())
		for _, v := range t.Column(opts.KeyColumn) {
			if !model.IsMissing(v) {
				keys = append(keys, model.KeyString(v))
			}
		}
	}
	moleculeIDs := func(context.Context) ([]string, error) {
		if keys == nil {
			return nil, errors.New("bioactivities have not been loaded")
		}
		return keys, nil
	}

	builder, err := NewBuilder(loader, dc, opts, logger)
	if err != nil {
		return nil, err
	}

	queries, err := r.queries(ctx, moleculeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create queries: %w", err)
	}
	defer func() {
		if cerr := queries.Close(); cerr != nil {
			logger.Warn("Failed to close connector", zap.Error(cerr))
		}
	}()

	res, err := builder.Build(ctx, queries.Bioactivities, queries.Compounds, r.cfg.DataPath, r.cfg.TargetName)
	if res != nil {
		summary.Bioactivities = res.Bioactivities
		summary.Compounds = res.Compounds
		summary.Verification = res.Verification
	}
	if err != nil {
		return nil, err
	}
	summary.Rows = res.Table.NumRows()
	summary.Columns = res.Metadata.Columns

	if r.cfg.OutputPath != "" {
		if err := loader.Export(res.Table, r.cfg.OutputPath); err != nil {
			return nil, err
		}
		summary.OutputPath = r.cfg.OutputPath
	}
	return res.Table, nil
}
