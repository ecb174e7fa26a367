package converter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

func TestEncodeCSV_WritesIndexColumn(t *testing.T) {
	conv := NewTypeConverter(zaptest.NewLogger(t))
	table := model.NewTable("molecule_chembl_id", "standard_value")
	require.NoError(t, table.AppendRow("CHEMBL1", 5.0))
	require.NoError(t, table.AppendRow("CHEMBL2", nil))

	var buf bytes.Buffer
	require.NoError(t, conv.EncodeCSV(&buf, table))

	assert.Equal(t, ",molecule_chembl_id,standard_value\n0,CHEMBL1,5.0\n1,CHEMBL2,\n", buf.String())
}

func TestDecodeCSV_DropsIndexAndInfersKinds(t *testing.T) {
	conv := NewTypeConverter(zaptest.NewLogger(t))
	input := "Unnamed: 0,id,count,value,flag,name\n" +
		"7,A,1,1.5,true,x\n" +
		"9,B,2,,false,NaN\n"

	table, err := conv.DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "count", "value", "flag", "name"}, table.Columns())
	assert.Equal(t, []int{0, 1}, table.Index())
	assert.Equal(t, []interface{}{int64(1), int64(2)}, table.Column("count"))
	assert.Equal(t, []interface{}{1.5, nil}, table.Column("value"))
	assert.Equal(t, []interface{}{true, false}, table.Column("flag"))
	assert.Equal(t, []interface{}{"x", nil}, table.Column("name"))
}

func TestDecodeCSV_IntAndFloatWidenToFloat(t *testing.T) {
	conv := NewTypeConverter(nil)
	table, err := conv.DecodeCSV(strings.NewReader(",v\n0,1\n1,2.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1.0, 2.5}, table.Column("v"))
}

func TestDecodeCSV_Empty(t *testing.T) {
	conv := NewTypeConverter(nil)
	table, err := conv.DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumRows())
	assert.Empty(t, table.Columns())
}

func TestDecodeCSV_Malformed(t *testing.T) {
	conv := NewTypeConverter(nil)
	_, err := conv.DecodeCSV(strings.NewReader(",a,b\n0,1\n"))

	var parseErr *model.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestDecodeCSV_WithoutInference(t *testing.T) {
	conv := NewTypeConverterWithConfig(nil, TypeConverterConfig{WriteIndex: true})
	table, err := conv.DecodeCSV(strings.NewReader(",v\n0,1\n"))
	require.NoError(t, err)
	assert.Equal(t, "1", table.Value(0, "v"))
}

// Writing a decoded table and decoding it again yields identical cells
func TestCSV_ReencodeIsStable(t *testing.T) {
	conv := NewTypeConverter(zaptest.NewLogger(t))
	rs := model.RecordSet{
		Fields: []string{"molecule_chembl_id", "standard_value"},
		Records: []model.Record{
			{"molecule_chembl_id": "CHEMBL1", "standard_value": 5.0, "molecule_structures": map[string]interface{}{"canonical_smiles": "CCO"}},
			{"molecule_chembl_id": "CHEMBL2", "standard_value": "12"},
		},
	}

	var first bytes.Buffer
	require.NoError(t, conv.EncodeCSV(&first, conv.FromRecords(rs)))
	decoded, err := conv.DecodeCSV(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, conv.EncodeCSV(&second, decoded))
	again, err := conv.DecodeCSV(bytes.NewReader(second.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, decoded.Columns(), again.Columns())
	for _, col := range decoded.Columns() {
		assert.Equal(t, decoded.Column(col), again.Column(col), col)
	}
	assert.Equal(t, `{"canonical_smiles":"CCO"}`, decoded.Value(0, "molecule_structures"))
	assert.Equal(t, []interface{}{5.0, 12.0}, decoded.Column("standard_value"))
}

func TestFromRecords_ColumnOrder(t *testing.T) {
	conv := NewTypeConverter(nil)
	rs := model.RecordSet{
		Fields: []string{"b", "a"},
		Records: []model.Record{
			{"a": 1, "b": 2, "z": 3},
			{"a": 4, "b": 5, "c": 6},
		},
	}

	table := conv.FromRecords(rs)

	assert.Equal(t, []string{"b", "a", "c", "z"}, table.Columns())
	assert.Equal(t, []interface{}{nil, 6}, table.Column("c"))
	assert.Equal(t, []interface{}{3, nil}, table.Column("z"))
}

func TestDescribe(t *testing.T) {
	table := model.NewTable("id", "value")
	require.NoError(t, table.AppendRow("A", 1.0))
	require.NoError(t, table.AppendRow("B", nil))

	meta := Describe("bioactivities", table)

	assert.Equal(t, 2, meta.Rows)
	assert.Equal(t, []string{"id", "value"}, meta.ColumnNames())
	col := meta.GetColumnByName("VALUE")
	require.NotNil(t, col)
	assert.Equal(t, model.KindFloat, col.Kind)
	assert.Equal(t, 1, col.Missing)
	assert.Nil(t, meta.GetColumnByName("missing"))
}
