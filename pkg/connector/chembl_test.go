package connector

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// chemblFixture is a minimal slice of the ChEMBL schema
const chemblFixture = `
CREATE TABLE target_dictionary (tid INTEGER PRIMARY KEY, chembl_id TEXT, organism TEXT);
CREATE TABLE assays (assay_id INTEGER PRIMARY KEY, chembl_id TEXT, description TEXT, assay_type TEXT, tid INTEGER);
CREATE TABLE molecule_dictionary (molregno INTEGER PRIMARY KEY, chembl_id TEXT);
CREATE TABLE compound_structures (molregno INTEGER PRIMARY KEY, canonical_smiles TEXT, molfile TEXT, standard_inchi TEXT, standard_inchi_key TEXT);
CREATE TABLE activities (
	activity_id INTEGER PRIMARY KEY, assay_id INTEGER, molregno INTEGER,
	standard_type TEXT, standard_relation TEXT, standard_value REAL, standard_units TEXT
);

INSERT INTO target_dictionary VALUES (1, 'CHEMBL203', 'Homo sapiens'), (2, 'CHEMBL999', 'Mus musculus');
INSERT INTO assays VALUES
	(10, 'CHEMBL_A1', 'EGFR binding', 'B', 1),
	(11, 'CHEMBL_A2', 'EGFR cell', 'F', 1),
	(12, 'CHEMBL_A3', 'Other binding', 'B', 2);
INSERT INTO molecule_dictionary VALUES (100, 'CHEMBL1'), (101, 'CHEMBL2'), (102, 'CHEMBL3'), (103, 'CHEMBL4');
INSERT INTO compound_structures VALUES
	(100, 'CCO', NULL, 'InChI=1S/C2H6O', 'LFQSCWFLJHTTHZ-UHFFFAOYSA-N'),
	(101, 'CCN', NULL, NULL, NULL);
INSERT INTO activities VALUES
	(1000, 10, 100, 'IC50', '=', 5.0, 'nM'),
	(1001, 10, 100, 'IC50', '=', 7.0, 'nM'),
	(1002, 10, 101, 'IC50', '=', 3.0, 'uM'),
	(1003, 10, 102, 'IC50', '=', 9.0, 'nM'),
	(1004, 11, 103, 'IC50', '=', 1.0, 'nM'),
	(1005, 10, 103, 'Ki', '=', 2.0, 'nM'),
	(1006, 12, 103, 'IC50', '=', 4.0, 'nM'),
	(1007, 10, 101, 'IC50', '>', 8.0, 'nM');
`

func openFixture(t *testing.T) *SQLiteConnector {
	t.Helper()
	conn, err := OpenSQLite(context.Background(), ":memory:", nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	for _, stmt := range strings.Split(chemblFixture, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := conn.DB().Exec(stmt)
		require.NoError(t, err)
	}
	return conn
}

func TestBioactivitySQL_Filters(t *testing.T) {
	query, args := BioactivitySQL(DialectPostgres, DefaultActivityFilter("CHEMBL203"))
	assert.Equal(t, []interface{}{"CHEMBL203", "IC50", "=", "B"}, args)
	assert.Contains(t, query, `FROM "activities" act`)
	assert.Contains(t, query, `AS "molecule_chembl_id"`)
	assert.Equal(t, 4, strings.Count(query, "?"))

	query, args = BioactivitySQL(DialectSnowflake, ActivityFilter{TargetChEMBLID: "CHEMBL203", Schema: "chembl_33"})
	assert.Equal(t, []interface{}{"CHEMBL203"}, args)
	assert.Contains(t, query, `"CHEMBL_33"."ACTIVITIES"`)
}

func TestCompoundSQL_Dialects(t *testing.T) {
	filter := DefaultActivityFilter("CHEMBL203")

	pg, _, err := CompoundSQL(DialectPostgres, filter)
	require.NoError(t, err)
	assert.Contains(t, pg, "json_build_object(")

	lite, _, err := CompoundSQL(DialectSQLite, filter)
	require.NoError(t, err)
	assert.Contains(t, lite, "json_object(")

	sf, _, err := CompoundSQL(DialectSnowflake, filter)
	require.NoError(t, err)
	assert.Contains(t, sf, "OBJECT_CONSTRUCT_KEEP_NULL(")

	_, _, err = CompoundSQL(Dialect("oracle"), filter)
	assert.Error(t, err)
}

func TestSQLQueries_AgainstSQLite(t *testing.T) {
	conn := openFixture(t)
	queries, err := SQLQueries(conn, DefaultActivityFilter("CHEMBL203"), zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	bio, err := queries.Bioactivities.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, ActivityFields, bio.Fields)
	require.Equal(t, 4, bio.Len())

	ids := make([]interface{}, 0, bio.Len())
	for _, rec := range bio.Records {
		ids = append(ids, rec["activity_id"])
	}
	assert.Equal(t, []interface{}{int64(1000), int64(1001), int64(1002), int64(1003)}, ids)
	first := bio.Records[0]
	assert.Equal(t, "CHEMBL1", first["molecule_chembl_id"])
	assert.Equal(t, 5.0, first["standard_value"])
	assert.Equal(t, "nM", first["standard_units"])
	assert.Equal(t, "Homo sapiens", first["target_organism"])

	comp, err := queries.Compounds.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, MoleculeFields, comp.Fields)
	require.Equal(t, 3, comp.Len())
	assert.Equal(t, "CHEMBL1", comp.Records[0]["molecule_chembl_id"])
	assert.Contains(t, comp.Records[0]["molecule_structures"], `"canonical_smiles":"CCO"`)
	assert.Nil(t, comp.Records[2]["molecule_structures"], "CHEMBL3 has no structure row")
}

func TestSQLQuery_ContextCanceled(t *testing.T) {
	conn := openFixture(t)
	q := NewSQLQuery(conn.DB(), "SELECT chembl_id FROM molecule_dictionary", 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Fetch(ctx)
	assert.Error(t, err)
}

func TestStaticQuery(t *testing.T) {
	q := StaticQuery{
		Fields:  []string{"molecule_chembl_id"},
		Records: []model.Record{{"molecule_chembl_id": "CHEMBL1"}},
	}

	rs, err := q.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())

	rs.Records[0] = model.Record{"molecule_chembl_id": "changed"}
	assert.Equal(t, "CHEMBL1", q.Records[0]["molecule_chembl_id"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = q.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryFunc(t *testing.T) {
	called := false
	var q Query = QueryFunc(func(ctx context.Context) (model.RecordSet, error) {
		called = true
		return model.RecordSet{}, nil
	})
	_, err := q.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
}
