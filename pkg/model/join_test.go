package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInnerJoin_LeftOrderAndMatchesOnly(t *testing.T) {
	left := NewTable("molecule_chembl_id", "standard_value")
	require.NoError(t, left.AppendRow("CHEMBL3", 30.0))
	require.NoError(t, left.AppendRow("CHEMBL1", 10.0))
	require.NoError(t, left.AppendRow("CHEMBL2", 20.0))

	right := NewTable("molecule_chembl_id", "canonical_smiles")
	require.NoError(t, right.AppendRow("CHEMBL1", "CCO"))
	require.NoError(t, right.AppendRow("CHEMBL3", "CCN"))
	require.NoError(t, right.AppendRow("CHEMBL9", "CCC"))

	joined, err := InnerJoin(left, right, "molecule_chembl_id")
	require.NoError(t, err)

	assert.Equal(t, []string{"molecule_chembl_id", "standard_value", "canonical_smiles"}, joined.Columns())
	assert.Equal(t, []interface{}{"CHEMBL3", "CHEMBL1"}, joined.Column("molecule_chembl_id"))
	assert.Equal(t, []interface{}{30.0, 10.0}, joined.Column("standard_value"))
	assert.Equal(t, []interface{}{"CCN", "CCO"}, joined.Column("canonical_smiles"))
	assert.Equal(t, []int{0, 1}, joined.Index())
}

func TestInnerJoin_DuplicateKeysAndSuffixes(t *testing.T) {
	left := NewTable("k", "v")
	require.NoError(t, left.AppendRow("a", 1))
	require.NoError(t, left.AppendRow("a", 2))
	require.NoError(t, left.AppendRow(nil, 3))

	right := NewTable("k", "v")
	require.NoError(t, right.AppendRow("a", "x"))
	require.NoError(t, right.AppendRow("a", "y"))
	require.NoError(t, right.AppendRow(nil, "z"))

	joined, err := InnerJoin(left, right, "k")
	require.NoError(t, err)

	assert.Equal(t, []string{"k", "v" + LeftSuffix, "v" + RightSuffix}, joined.Columns())
	assert.Equal(t, 4, joined.NumRows())
	assert.Equal(t, []interface{}{1, 1, 2, 2}, joined.Column("v_x"))
	assert.Equal(t, []interface{}{"x", "y", "x", "y"}, joined.Column("v_y"))
}

func TestInnerJoin_MissingKeyColumn(t *testing.T) {
	left := NewTable("k")
	right := NewTable("other")

	_, err := InnerJoin(left, right, "k")

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "k", schemaErr.Column)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "CHEMBL1", KeyString("CHEMBL1"))
	assert.Equal(t, "42", KeyString(int64(42)))
}
