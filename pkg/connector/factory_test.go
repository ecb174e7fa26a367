package connector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/chembl-prep/pkg/config"
)

func TestFactory_WebQueries(t *testing.T) {
	cfg := &config.Config{
		Source:         config.SourceWeb,
		TargetChEMBLID: "CHEMBL203",
		StandardType:   "Ki",
		AssayType:      "B",
		APIBaseURL:     "https://example.org/api",
		PageSize:       25,
	}
	factory := NewConnectorFactory(cfg, zaptest.NewLogger(t))

	_, err := factory.CreateQueries(context.Background(), nil)
	assert.Error(t, err, "web source needs a molecule ID resolver")

	queries, err := factory.CreateQueries(context.Background(), func(context.Context) ([]string, error) {
		return []string{"CHEMBL1"}, nil
	})
	require.NoError(t, err)
	assert.Nil(t, queries.Connector)
	assert.NoError(t, queries.Close())

	activity, ok := queries.Bioactivities.(*WebServiceQuery)
	require.True(t, ok)
	assert.Contains(t, activity.URL(), "standard_type=Ki")
	assert.Contains(t, activity.URL(), "limit=25")
	_, ok = queries.Compounds.(*MoleculeQuery)
	assert.True(t, ok)
}

func TestFactory_SQLiteQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chembl.db")
	seed, err := OpenSQLite(context.Background(), path, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = seed.DB().Exec(`CREATE TABLE molecule_dictionary (molregno INTEGER PRIMARY KEY, chembl_id TEXT)`)
	require.NoError(t, err)
	require.NoError(t, seed.Close())

	cfg := &config.Config{
		Source:         config.SourceSQLite,
		TargetChEMBLID: "CHEMBL203",
		StandardType:   "IC50",
		SQLite:         &config.SQLiteConfig{Path: path},
	}
	factory := NewConnectorFactory(cfg, zaptest.NewLogger(t))

	queries, err := factory.CreateQueries(context.Background(), nil)
	require.NoError(t, err)
	defer queries.Close()

	require.NotNil(t, queries.Connector)
	assert.Equal(t, DialectSQLite, queries.Connector.Dialect())
	bio, ok := queries.Bioactivities.(*SQLQuery)
	require.True(t, ok)
	assert.Contains(t, bio.Statement(), `"molecule_dictionary"`)
}

func TestFactory_UnknownSource(t *testing.T) {
	factory := NewConnectorFactory(&config.Config{Source: "oracle"}, nil)
	_, err := factory.CreateConnector(context.Background())
	assert.Error(t, err)
}

func TestFactory_Filter(t *testing.T) {
	factory := NewConnectorFactory(&config.Config{TargetChEMBLID: "CHEMBL203", StandardType: "IC50"}, nil)
	filter := factory.Filter()
	assert.Equal(t, "CHEMBL203", filter.TargetChEMBLID)
	assert.Equal(t, "=", filter.Relation)
	assert.Equal(t, "", filter.AssayType)
}
