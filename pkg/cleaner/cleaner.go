// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// DataCleaner applies a cleaning policy to tables
type DataCleaner struct {
	logger *zap.Logger
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &DataCleaner{logger: logger.Named("cleaner")}, nil
}

// Clean applies policy to t and returns the cleaned table. Steps run in a
// fixed order: float coercion, missing-value removal, unit filter,
// deduplication on the key column, reindex. The input is not modified.
func (c *DataCleaner) Clean(t *model.Table, policy model.CleaningPolicy) (*model.Table, model.CleaningReport, error) {
	return c.CleanDataset("", t, policy)
}

// CleanDataset is Clean with a dataset name attached to logs and the report
func (c *DataCleaner) CleanDataset(dataset string, t *model.Table, policy model.CleaningPolicy) (*model.Table, model.CleaningReport, error) {
	report := model.CleaningReport{Dataset: dataset}
	if t == nil {
		return nil, report, model.ErrNilTable
	}

	start := time.Now()
	report.InitialRows = t.NumRows()
	report.FinalRows = t.NumRows()
	logger := c.logger.With(zap.String("dataset", dataset))

	current := t
	step := func(name model.CleaningStep, next *model.Table) {
		report.Add(name, current.NumRows(), next.NumRows())
		last := report.Steps[len(report.Steps)-1]
		logger.Info("Cleaning step applied",
			zap.String("step", string(name)),
			zap.Int("removed", last.Removed),
			zap.Int("remaining", last.Remaining))
		current = next
	}

	if len(policy.ColumnsToFloat) > 0 {
		next, err := coerceFloat(current, policy.ColumnsToFloat)
		if err != nil {
			logger.Error("Float coercion failed", zap.Error(err))
			return nil, report, err
		}
		step(model.StepCoerce, next)
	}

	if policy.DropNA {
		step(model.StepDropNA, dropMissing(current))
	}

	if policy.FiltersUnits() {
		next, err := filterUnits(current, policy.StandardUnit)
		if err != nil {
			logger.Error("Unit filter failed", zap.Error(err))
			return nil, report, err
		}
		step(model.StepUnitFilter, next)
	}

	if policy.DropDuplicates {
		next, err := dropDuplicates(current, policy.Key())
		if err != nil {
			logger.Error("Deduplication failed", zap.Error(err))
			return nil, report, err
		}
		step(model.StepDeduplicate, next)
	}

	if policy.ResetIndex {
		step(model.StepReindex, current.ResetIndex())
	}

	// No step ran; still hand back a distinct table
	if current == t {
		current = t.Clone()
	}

	report.Duration = time.Since(start)
	logger.Info("Cleaning complete",
		zap.Int("initial_rows", report.InitialRows),
		zap.Int("final_rows", report.FinalRows),
		zap.Int("removed", report.TotalRemoved()),
		zap.Duration("duration", report.Duration))

	return current, report, nil
}
