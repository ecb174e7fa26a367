// pkg/model/cleaning.go
package model

import (
	"time"
)

// Well-known column names of the ChEMBL datasets
const (
	MoleculeIDColumn     = "molecule_chembl_id"
	StandardValueColumn  = "standard_value"
	StandardUnitsColumn  = "standard_units"
	StructureColumn      = "molecule_structures"
	CanonicalSmilesField = "canonical_smiles"
)

// AllUnits disables unit filtering when used as a standard unit
const AllUnits = "all"

// CleaningPolicy describes which cleaning steps to apply and their parameters
type CleaningPolicy struct {
	ColumnsToFloat []string // Columns coerced to float64
	DropNA         bool     // Drop rows with any missing value
	DropDuplicates bool     // Drop rows sharing the key column value, first wins
	ResetIndex     bool     // Renumber rows from zero
	StandardUnit   string   // Keep only rows with this standard_units value ("" or "all" to skip)
	KeyColumn      string   // Deduplication key (default molecule_chembl_id)
}

// DefaultCleaningPolicy returns the policy with NA removal, deduplication and reindexing on
func DefaultCleaningPolicy() CleaningPolicy {
	return CleaningPolicy{
		DropNA:         true,
		DropDuplicates: true,
		ResetIndex:     true,
		KeyColumn:      MoleculeIDColumn,
	}
}

// Key returns the deduplication key column, falling back to molecule_chembl_id
func (p CleaningPolicy) Key() string {
	if p.KeyColumn == "" {
		return MoleculeIDColumn
	}
	return p.KeyColumn
}

// FiltersUnits reports whether the unit filter step applies
func (p CleaningPolicy) FiltersUnits() bool {
	return p.StandardUnit != "" && p.StandardUnit != AllUnits
}

// CleaningStep names a cleaning step
type CleaningStep string

const (
	StepCoerce      CleaningStep = "coerce_float"
	StepDropNA      CleaningStep = "drop_na"
	StepUnitFilter  CleaningStep = "unit_filter"
	StepDeduplicate CleaningStep = "deduplicate"
	StepReindex     CleaningStep = "reset_index"
)

// StepReport records the effect of a single cleaning step
type StepReport struct {
	Step      CleaningStep
	Removed   int // Rows removed by this step
	Remaining int // Rows left after this step
}

// CleaningReport summarizes a cleaning run over one table
type CleaningReport struct {
	Dataset     string
	InitialRows int
	FinalRows   int
	Steps       []StepReport
	Duration    time.Duration
}

// Add appends a step report and updates the final row count
func (r *CleaningReport) Add(step CleaningStep, before, after int) {
	r.Steps = append(r.Steps, StepReport{
		Step:      step,
		Removed:   before - after,
		Remaining: after,
	})
	r.FinalRows = after
}

// TotalRemoved returns the number of rows dropped across all steps
func (r *CleaningReport) TotalRemoved() int {
	return r.InitialRows - r.FinalRows
}
