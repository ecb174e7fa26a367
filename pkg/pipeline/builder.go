// pkg/pipeline/builder.go
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/cache"
	"github.com/David-Botos/chembl-prep/pkg/cleaner"
	"github.com/David-Botos/chembl-prep/pkg/connector"
	"github.com/David-Botos/chembl-prep/pkg/converter"
	"github.com/David-Botos/chembl-prep/pkg/flattener"
	"github.com/David-Botos/chembl-prep/pkg/model"
)

// Dataset names, also used in cache file names
const (
	BioactivitiesDataset = "bioactivities"
	CompoundsDataset     = "compounds"
)

// Options controls how the two datasets are cleaned and merged
type Options struct {
	KeyColumn    string // Join and deduplication key (default molecule_chembl_id)
	StandardUnit string // Bioactivity unit filter (default nM, "all" disables)
	Structure    flattener.Options
	Save         bool // Write cache files on fetch
	Verify       bool // Check the merged table against its inputs

	// OnBioactivities, if set, receives the cleaned bioactivity table
	// before the compound dataset is loaded
	OnBioactivities func(t *model.Table)
}

// DefaultOptions returns the nM, canonical_smiles, cached and verified configuration
func DefaultOptions() Options {
	return Options{
		KeyColumn:    model.MoleculeIDColumn,
		StandardUnit: "nM",
		Structure:    flattener.DefaultOptions(),
		Save:         true,
		Verify:       true,
	}
}

// Builder produces the merged bioactivity/compound dataset
type Builder struct {
	loader  *cache.Loader
	cleaner *cleaner.DataCleaner
	opts    Options
	logger  *zap.Logger
}

// NewBuilder creates a new Builder
func NewBuilder(loader *cache.Loader, dc *cleaner.DataCleaner, opts Options, logger *zap.Logger) (*Builder, error) {
	if loader == nil {
		return nil, errors.New("cache loader cannot be nil")
	}
	if dc == nil {
		return nil, errors.New("cleaner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.KeyColumn == "" {
		opts.KeyColumn = model.MoleculeIDColumn
	}
	if opts.StandardUnit == "" {
		opts.StandardUnit = "nM"
	}
	return &Builder{
		loader:  loader,
		cleaner: dc,
		opts:    opts,
		logger:  logger.Named("pipeline"),
	}, nil
}

// Result is a merged table with the record of how it was produced
type Result struct {
	Table         *model.Table
	Bioactivities model.CleaningReport
	Compounds     model.CleaningReport
	Verification  *VerificationReport
	Metadata      model.TableMetadata
	LoadDuration  time.Duration
	MergeDuration time.Duration
}

// BuildDataset loads, cleans and merges the bioactivity and compound datasets
// of a target. The result holds one row per matching molecule with
// standard_value, standard_units and the extracted structure field.
func (b *Builder) BuildDataset(
	ctx context.Context,
	bioactivityQuery, compoundQuery connector.Query,
	storagePath, targetName string,
) (*model.Table, error) {
	res, err := b.Build(ctx, bioactivityQuery, compoundQuery, storagePath, targetName)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// Build is BuildDataset returning the cleaning and verification reports too.
// On failure the partial result gathered so far is returned with the error;
// its Table is nil.
func (b *Builder) Build(
	ctx context.Context,
	bioactivityQuery, compoundQuery connector.Query,
	storagePath, targetName string,
) (*Result, error) {
	res := &Result{}
	logger := b.logger.With(zap.String("target", targetName))
	key := b.opts.KeyColumn

	loadStart := time.Now()

	// Bioactivities: coerce standard_value, keep the configured unit
	bioRaw, err := b.loader.LoadOrFetch(ctx, bioactivityQuery, BioactivitiesDataset, storagePath, targetName, b.opts.Save)
	if err != nil {
		return res, &DatasetError{Dataset: BioactivitiesDataset, Stage: "load", Err: err}
	}
	bioPolicy := model.DefaultCleaningPolicy()
	bioPolicy.KeyColumn = key
	bioPolicy.ColumnsToFloat = []string{model.StandardValueColumn}
	bioPolicy.StandardUnit = b.opts.StandardUnit
	bio, bioReport, err := b.cleaner.CleanDataset(BioactivitiesDataset, bioRaw, bioPolicy)
	res.Bioactivities = bioReport
	if err != nil {
		return res, &DatasetError{Dataset: BioactivitiesDataset, Stage: "clean", Err: err}
	}

	if b.opts.OnBioactivities != nil {
		b.opts.OnBioactivities(bio)
	}

	// Compounds: default cleaning, then extract the structure field
	compRaw, err := b.loader.LoadOrFetch(ctx, compoundQuery, CompoundsDataset, storagePath, targetName, b.opts.Save)
	if err != nil {
		return res, &DatasetError{Dataset: CompoundsDataset, Stage: "load", Err: err}
	}
	compPolicy := model.DefaultCleaningPolicy()
	compPolicy.KeyColumn = key
	comp, compReport, err := b.cleaner.CleanDataset(CompoundsDataset, compRaw, compPolicy)
	res.Compounds = compReport
	if err != nil {
		return res, &DatasetError{Dataset: CompoundsDataset, Stage: "clean", Err: err}
	}

	comp, err = flattener.Flatten(comp, b.opts.Structure)
	if err != nil {
		return res, &DatasetError{Dataset: CompoundsDataset, Stage: "flatten", Err: err}
	}
	res.LoadDuration = time.Since(loadStart)

	mergeStart := time.Now()
	projected, err := bio.Select(key, model.StandardValueColumn, model.StandardUnitsColumn)
	if err != nil {
		return res, &DatasetError{Dataset: BioactivitiesDataset, Stage: "project", Err: err}
	}
	merged, err := model.InnerJoin(projected, comp, key)
	if err != nil {
		return res, &DatasetError{Dataset: "merged", Stage: "join", Err: err}
	}
	merged = merged.ResetIndex()
	res.MergeDuration = time.Since(mergeStart)

	if b.opts.Verify {
		report, err := Verify(merged, projected, comp, key)
		res.Verification = &report
		if err != nil {
			logger.Error("Merged dataset failed verification",
				zap.Int("merged_rows", report.MergedRows),
				zap.Int("expected_rows", report.ExpectedRows),
				zap.Int("orphan_keys", len(report.OrphanKeys)))
			return res, err
		}
	}

	logger.Info("Built dataset",
		zap.Int("bioactivities", bio.NumRows()),
		zap.Int("compounds", comp.NumRows()),
		zap.Int("merged", merged.NumRows()),
		zap.Duration("load_duration", res.LoadDuration),
		zap.Duration("merge_duration", res.MergeDuration))

	res.Table = merged
	res.Metadata = converter.Describe("merged", merged)
	return res, nil
}
