package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/chembl-prep/pkg/connector"
	"github.com/David-Botos/chembl-prep/pkg/model"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader(nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	return loader
}

// countingQuery records how often it is fetched
type countingQuery struct {
	calls int
	rs    model.RecordSet
	err   error
}

func (q *countingQuery) Fetch(ctx context.Context) (model.RecordSet, error) {
	q.calls++
	return q.rs, q.err
}

func bioactivityRecords() model.RecordSet {
	return model.RecordSet{
		Fields: []string{"molecule_chembl_id", "standard_value", "standard_units"},
		Records: []model.Record{
			{"molecule_chembl_id": "CHEMBL1", "standard_value": "5.0", "standard_units": "nM"},
			{"molecule_chembl_id": "CHEMBL2", "standard_value": nil, "standard_units": "nM"},
			{"molecule_chembl_id": "CHEMBL3", "standard_value": 7.25, "standard_units": "uM"},
		},
	}
}

func TestNewLoader_RequiresLogger(t *testing.T) {
	_, err := NewLoader(nil, nil)
	assert.Error(t, err)
}

func TestCachePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "EGFR_bioactivities.csv"), CachePath("data", "EGFR", "bioactivities"))
}

func TestLoadOrFetch_CachesAndIsIdempotent(t *testing.T) {
	loader := newTestLoader(t)
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	query := &countingQuery{rs: bioactivityRecords()}
	ctx := context.Background()

	fetched, err := loader.LoadOrFetch(ctx, query, "bioactivities", dir, "EGFR", true)
	require.NoError(t, err)
	assert.Equal(t, 1, query.calls)
	assert.FileExists(t, CachePath(dir, "EGFR", "bioactivities"))

	cached, err := loader.LoadOrFetch(ctx, query, "bioactivities", dir, "EGFR", true)
	require.NoError(t, err)
	assert.Equal(t, 1, query.calls, "cache hit must not run the query")

	assert.Equal(t, fetched.Columns(), cached.Columns())
	assert.Equal(t, fetched.Index(), cached.Index())
	for _, col := range fetched.Columns() {
		assert.Equal(t, fetched.Column(col), cached.Column(col), col)
	}
	assert.Equal(t, []interface{}{5.0, nil, 7.25}, cached.Column("standard_value"))

	// No stray temp files
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadOrFetch_NoSave(t *testing.T) {
	loader := newTestLoader(t)
	dir := t.TempDir()
	query := &countingQuery{rs: bioactivityRecords()}

	table, err := loader.LoadOrFetch(context.Background(), query, "bioactivities", dir, "EGFR", false)
	require.NoError(t, err)
	assert.Equal(t, 3, table.NumRows())
	assert.NoFileExists(t, CachePath(dir, "EGFR", "bioactivities"))
}

func TestLoadOrFetch_ReadsExistingFileWithIndex(t *testing.T) {
	loader := newTestLoader(t)
	dir := t.TempDir()
	content := "Unnamed: 0,molecule_chembl_id,molecule_structures\n" +
		"4,CHEMBL1,\"{\"\"canonical_smiles\"\": \"\"CCO\"\"}\"\n"
	require.NoError(t, os.WriteFile(CachePath(dir, "EGFR", "compounds"), []byte(content), 0644))

	table, err := loader.LoadOrFetch(context.Background(), nil, "compounds", dir, "EGFR", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"molecule_chembl_id", "molecule_structures"}, table.Columns())
	assert.Equal(t, `{"canonical_smiles": "CCO"}`, table.Value(0, "molecule_structures"))
	assert.Equal(t, []int{0}, table.Index())
}

func TestLoadOrFetch_FetchError(t *testing.T) {
	loader := newTestLoader(t)
	boom := errors.New("service unavailable")
	query := &countingQuery{err: boom}

	_, err := loader.LoadOrFetch(context.Background(), query, "compounds", t.TempDir(), "EGFR", true)

	var fetchErr *model.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "compounds", fetchErr.Dataset)
	assert.ErrorIs(t, err, boom)
}

func TestLoadOrFetch_NilQueryWithoutCache(t *testing.T) {
	loader := newTestLoader(t)
	_, err := loader.LoadOrFetch(context.Background(), nil, "compounds", t.TempDir(), "EGFR", true)

	var fetchErr *model.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestLoadOrFetch_StorageError(t *testing.T) {
	loader := newTestLoader(t)
	dir := t.TempDir()
	// A directory where the cache file should be cannot be opened as a table
	require.NoError(t, os.Mkdir(CachePath(dir, "EGFR", "compounds"), 0755))

	_, err := loader.LoadOrFetch(context.Background(), connector.StaticQuery{}, "compounds", dir, "EGFR", true)

	var storageErr *model.StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestInvalidate(t *testing.T) {
	loader := newTestLoader(t)
	dir := t.TempDir()
	query := &countingQuery{rs: bioactivityRecords()}
	ctx := context.Background()

	_, err := loader.LoadOrFetch(ctx, query, "bioactivities", dir, "EGFR", true)
	require.NoError(t, err)
	require.NoError(t, loader.Invalidate("bioactivities", dir, "EGFR"))
	assert.NoFileExists(t, CachePath(dir, "EGFR", "bioactivities"))

	_, err = loader.LoadOrFetch(ctx, query, "bioactivities", dir, "EGFR", true)
	require.NoError(t, err)
	assert.Equal(t, 2, query.calls)

	// Removing an absent entry is fine
	require.NoError(t, loader.Invalidate("compounds", dir, "EGFR"))
}

func TestExport(t *testing.T) {
	loader := newTestLoader(t)
	table := model.NewTable("molecule_chembl_id", "canonical_smiles")
	require.NoError(t, table.AppendRow("CHEMBL1", "CCO"))
	path := filepath.Join(t.TempDir(), "out", "merged.csv")

	require.NoError(t, loader.Export(table, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ",molecule_chembl_id,canonical_smiles\n0,CHEMBL1,CCO\n", string(data))
}
