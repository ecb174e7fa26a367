package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable("id", "value", "unit")
	require.NoError(t, table.AppendRow("A", 1.0, "nM"))
	require.NoError(t, table.AppendRow("B", nil, "nM"))
	require.NoError(t, table.AppendRow("C", 3.0, "uM"))
	return table
}

func TestNewTable_DropsDuplicateColumns(t *testing.T) {
	table := NewTable("a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, table.Columns())
	assert.Equal(t, 0, table.NumRows())
}

func TestAppendRow_WrongWidth(t *testing.T) {
	table := NewTable("a", "b")
	err := table.AppendRow("only one")
	assert.Error(t, err)
	assert.Equal(t, 0, table.NumRows())
}

func TestFilter_KeepsLabelsAndLeavesInputAlone(t *testing.T) {
	table := sampleTable(t)

	filtered := table.Filter(func(i int) bool { return i != 1 })

	assert.Equal(t, 2, filtered.NumRows())
	assert.Equal(t, []int{0, 2}, filtered.Index())
	assert.Equal(t, []interface{}{"A", "C"}, filtered.Column("id"))
	assert.Equal(t, 3, table.NumRows(), "input table must not change")

	reset := filtered.ResetIndex()
	assert.Equal(t, []int{0, 1}, reset.Index())
	assert.Equal(t, []int{0, 2}, filtered.Index())
}

func TestSelect_MissingColumn(t *testing.T) {
	table := sampleTable(t)

	_, err := table.Select("id", "nope")

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "nope", schemaErr.Column)
}

func TestSelectAndDrop(t *testing.T) {
	table := sampleTable(t)

	selected, err := table.Select("unit", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"unit", "id"}, selected.Columns())
	assert.Equal(t, "uM", selected.Value(2, "unit"))

	dropped := table.Drop("value")
	assert.Equal(t, []string{"id", "unit"}, dropped.Columns())
	assert.Equal(t, 3, dropped.NumRows())
}

func TestWithColumn(t *testing.T) {
	table := sampleTable(t)

	added, err := table.WithColumn("flag", []interface{}{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "value", "unit", "flag"}, added.Columns())
	assert.False(t, table.HasColumn("flag"))

	replaced, err := table.WithColumn("value", []interface{}{9.0, 9.0, 9.0})
	require.NoError(t, err)
	assert.Equal(t, table.Columns(), replaced.Columns())
	assert.Equal(t, 9.0, replaced.Value(1, "value"))
	assert.Nil(t, table.Value(1, "value"))

	_, err = table.WithColumn("short", []interface{}{1})
	assert.Error(t, err)
}

func TestRowHasMissing(t *testing.T) {
	table := NewTable("a", "b")
	require.NoError(t, table.AppendRow(1, "x"))
	require.NoError(t, table.AppendRow(math.NaN(), "y"))
	require.NoError(t, table.AppendRow(2, nil))

	assert.False(t, table.RowHasMissing(0))
	assert.True(t, table.RowHasMissing(1))
	assert.True(t, table.RowHasMissing(2))
}

func TestValue_AbsentColumn(t *testing.T) {
	table := NewTable("molecule_chembl_id")
	require.NoError(t, table.AppendRow("CHEMBL1"))

	assert.Equal(t, "CHEMBL1", table.Value(0, "molecule_chembl_id"))
	assert.Nil(t, table.Value(0, "canonical_smiles"))
}

func TestRow(t *testing.T) {
	table := sampleTable(t)
	assert.Equal(t, Record{"id": "C", "value": 3.0, "unit": "uM"}, table.Row(2))
}
