// pkg/pipeline/verifier.go
package pipeline

import (
	"fmt"
	"strings"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// VerificationReport describes how the merged table relates to its inputs
type VerificationReport struct {
	KeyColumn       string
	BioactivityRows int
	CompoundRows    int
	MergedRows      int
	ExpectedRows    int      // Sum over keys of left count times right count
	UniqueKeys      bool     // Both inputs have unique keys
	OrphanKeys      []string // Merged keys absent from either input
}

// OK reports whether every check passed
func (r VerificationReport) OK() bool {
	if len(r.OrphanKeys) > 0 || r.MergedRows != r.ExpectedRows {
		return false
	}
	if r.UniqueKeys {
		return r.MergedRows <= min(r.BioactivityRows, r.CompoundRows)
	}
	return true
}

// VerificationError is returned when the merged table fails verification
type VerificationError struct {
	Report VerificationReport
}

func (e *VerificationError) Error() string {
	r := e.Report
	var problems []string
	if len(r.OrphanKeys) > 0 {
		problems = append(problems, fmt.Sprintf("%d merged keys missing from an input", len(r.OrphanKeys)))
	}
	if r.MergedRows != r.ExpectedRows {
		problems = append(problems, fmt.Sprintf("merged %d rows, expected %d", r.MergedRows, r.ExpectedRows))
	}
	if r.UniqueKeys && r.MergedRows > min(r.BioactivityRows, r.CompoundRows) {
		problems = append(problems, fmt.Sprintf("merged %d rows exceeds min(%d, %d)",
			r.MergedRows, r.BioactivityRows, r.CompoundRows))
	}
	return "merged table verification failed: " + strings.Join(problems, "; ")
}

// Verify checks the merged table against the two join inputs on key
func Verify(merged, bioactivities, compounds *model.Table, key string) (VerificationReport, error) {
	report := VerificationReport{
		KeyColumn:       key,
		BioactivityRows: bioactivities.NumRows(),
		CompoundRows:    compounds.NumRows(),
		MergedRows:      merged.NumRows(),
	}
	for _, t := range []*model.Table{merged, bioactivities, compounds} {
		if !t.HasColumn(key) {
			return report, &model.SchemaError{Column: key, Op: "verify"}
		}
	}

	left := keyCounts(bioactivities, key)
	right := keyCounts(compounds, key)

	report.UniqueKeys = true
	for k, n := range left {
		if n > 1 {
			report.UniqueKeys = false
		}
		report.ExpectedRows += n * right[k]
	}
	for _, n := range right {
		if n > 1 {
			report.UniqueKeys = false
		}
	}

	seen := make(map[string]bool)
	for _, v := range merged.Column(key) {
		k := model.KeyString(v)
		if model.IsMissing(v) || left[k] == 0 || right[k] == 0 {
			if !seen[k] {
				seen[k] = true
				report.OrphanKeys = append(report.OrphanKeys, k)
			}
		}
	}

	if !report.OK() {
		return report, &VerificationError{Report: report}
	}
	return report, nil
}

func keyCounts(t *model.Table, key string) map[string]int {
	counts := make(map[string]int)
	for _, v := range t.Column(key) {
		if model.IsMissing(v) {
			continue
		}
		counts[model.KeyString(v)]++
	}
	return counts
}
