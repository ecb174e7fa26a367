// pkg/connector/chembl.go
package connector

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect identifies the SQL flavour of a ChEMBL database copy
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectSQLite    Dialect = "sqlite"
	DialectSnowflake Dialect = "snowflake"
)

// structureFields are the compound_structures columns packed into molecule_structures
var structureFields = []string{"canonical_smiles", "molfile", "standard_inchi", "standard_inchi_key"}

// ActivityFilter selects bioactivities for a target
type ActivityFilter struct {
	TargetChEMBLID string // e.g. CHEMBL203
	StandardType   string // e.g. IC50; empty for any
	Relation       string // e.g. "="; empty for any
	AssayType      string // e.g. "B" (binding); empty for any
	Schema         string // Optional schema qualifying the ChEMBL tables
}

// DefaultActivityFilter returns the IC50 binding-assay filter for a target
func DefaultActivityFilter(target string) ActivityFilter {
	return ActivityFilter{
		TargetChEMBLID: target,
		StandardType:   "IC50",
		Relation:       "=",
		AssayType:      "B",
	}
}

// table returns a quoted, optionally schema-qualified table name.
// Snowflake stores unquoted identifiers upper-cased.
func (f ActivityFilter) table(d Dialect, name string) string {
	ident := func(s string) string {
		if d == DialectSnowflake {
			s = strings.ToUpper(s)
		}
		return pq.QuoteIdentifier(s)
	}
	if f.Schema == "" {
		return ident(name)
	}
	return ident(f.Schema) + "." + ident(name)
}

// where builds the shared predicate and its arguments
func (f ActivityFilter) where() (string, []interface{}) {
	clauses := []string{"td.chembl_id = ?"}
	args := []interface{}{f.TargetChEMBLID}
	if f.StandardType != "" {
		clauses = append(clauses, "act.standard_type = ?")
		args = append(args, f.StandardType)
	}
	if f.Relation != "" {
		clauses = append(clauses, "act.standard_relation = ?")
		args = append(args, f.Relation)
	}
	if f.AssayType != "" {
		clauses = append(clauses, "a.assay_type = ?")
		args = append(args, f.AssayType)
	}
	return strings.Join(clauses, " AND "), args
}

func (f ActivityFilter) joins(d Dialect) string {
	return fmt.Sprintf(`FROM %s act
	JOIN %s a ON a.assay_id = act.assay_id
	JOIN %s td ON td.tid = a.tid
	JOIN %s md ON md.molregno = act.molregno`,
		f.table(d, "activities"),
		f.table(d, "assays"),
		f.table(d, "target_dictionary"),
		f.table(d, "molecule_dictionary"))
}

// BioactivitySQL returns the bioactivity statement and its arguments
func BioactivitySQL(d Dialect, f ActivityFilter) (string, []interface{}) {
	where, args := f.where()
	query := fmt.Sprintf(`SELECT
	act.activity_id AS %s,
	a.chembl_id AS %s,
	a.description AS %s,
	a.assay_type AS %s,
	md.chembl_id AS %s,
	act.standard_type AS %s,
	act.standard_units AS %s,
	act.standard_relation AS %s,
	act.standard_value AS %s,
	td.chembl_id AS %s,
	td.organism AS %s
%s
WHERE %s
ORDER BY act.activity_id`,
		alias("activity_id"),
		alias("assay_chembl_id"),
		alias("assay_description"),
		alias("assay_type"),
		alias("molecule_chembl_id"),
		alias("type"),
		alias("standard_units"),
		alias("relation"),
		alias("standard_value"),
		alias("target_chembl_id"),
		alias("target_organism"),
		f.joins(d),
		where)
	return query, args
}

// CompoundSQL returns the statement listing compounds measured against the
// target, with molecule_structures packed as a JSON object
func CompoundSQL(d Dialect, f ActivityFilter) (string, []interface{}, error) {
	object, err := structureObject(d)
	if err != nil {
		return "", nil, err
	}
	where, args := f.where()
	query := fmt.Sprintf(`SELECT
	md.chembl_id AS %s,
	CASE WHEN cs.molregno IS NULL THEN NULL ELSE %s END AS %s
FROM %s md
LEFT JOIN %s cs ON cs.molregno = md.molregno
WHERE md.molregno IN (
	SELECT act.molregno
	%s
	WHERE %s
)
ORDER BY md.chembl_id`,
		alias("molecule_chembl_id"),
		object,
		alias("molecule_structures"),
		f.table(d, "molecule_dictionary"),
		f.table(d, "compound_structures"),
		f.joins(d),
		where)
	return query, args, nil
}

// structureObject builds the dialect's JSON object expression over compound_structures
func structureObject(d Dialect) (string, error) {
	pairs := make([]string, 0, len(structureFields))
	for _, field := range structureFields {
		pairs = append(pairs, fmt.Sprintf("'%s', cs.%s", field, field))
	}
	args := strings.Join(pairs, ", ")

	switch d {
	case DialectPostgres:
		return fmt.Sprintf("json_build_object(%s)::text", args), nil
	case DialectSQLite:
		return fmt.Sprintf("json_object(%s)", args), nil
	case DialectSnowflake:
		return fmt.Sprintf("TO_JSON(OBJECT_CONSTRUCT_KEEP_NULL(%s))", args), nil
	default:
		return "", fmt.Errorf("unsupported SQL dialect: %q", d)
	}
}

// alias quotes an output column name so every dialect keeps its case
func alias(name string) string {
	return pq.QuoteIdentifier(name)
}
