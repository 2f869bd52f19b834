package pgstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/gluedb"
)

func roundTripValue(t *testing.T, v gluedb.Value) gluedb.Value {
	t.Helper()
	w, err := encodeValue(v)
	require.NoError(t, err)
	raw, err := json.Marshal(w)
	require.NoError(t, err)
	var back wireValue
	require.NoError(t, json.Unmarshal(raw, &back))
	out, err := decodeValue(back)
	require.NoError(t, err)
	return out
}

func TestValueCodec_RoundTrip(t *testing.T) {
	cases := []gluedb.Value{
		gluedb.Null,
		gluedb.NewBool(true),
		gluedb.NewI64(-42),
		gluedb.NewU64(42),
		gluedb.NewF64(3.5),
		gluedb.NewStr("hello"),
		gluedb.NewBytes([]byte{1, 2, 3}),
	}
	for _, in := range cases {
		out := roundTripValue(t, in)
		if in.IsNull() {
			assert.True(t, out.IsNull())
			continue
		}
		cmp, isNull, err := in.Compare(out)
		require.NoError(t, err)
		assert.False(t, isNull)
		assert.Equal(t, 0, cmp, "expected %v == %v", in, out)
	}
}

func TestRowCodec_VecRow_RoundTrip(t *testing.T) {
	row := gluedb.VecRow{
		ColumnNames: []string{"id", "name"},
		Values:      []gluedb.Value{gluedb.NewI64(1), gluedb.NewStr("bolt")},
	}
	raw, err := marshalRowWire(row)
	require.NoError(t, err)
	w, err := unmarshalRowWire(raw)
	require.NoError(t, err)
	out, err := decodeRow(w)
	require.NoError(t, err)

	vr, ok := out.(gluedb.VecRow)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, vr.ColumnNames)
	name, _ := vr.Values[1].Str()
	assert.Equal(t, "bolt", name)
}

func TestRowCodec_MapRow_RoundTrip(t *testing.T) {
	row := gluedb.MapRow{Fields: map[string]gluedb.Value{"msg": gluedb.NewStr("hi")}}
	raw, err := marshalRowWire(row)
	require.NoError(t, err)
	w, err := unmarshalRowWire(raw)
	require.NoError(t, err)
	out, err := decodeRow(w)
	require.NoError(t, err)

	mr, ok := out.(gluedb.MapRow)
	require.True(t, ok)
	msg, _ := mr.Fields["msg"].Str()
	assert.Equal(t, "hi", msg)
}

func TestSchemaCodec_RoundTrip(t *testing.T) {
	schema := &gluedb.Schema{
		TableName: "widgets",
		Columns: []gluedb.ColumnDef{
			{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary},
			{Name: "name", Type: gluedb.ColumnTypeText, Nullable: true},
		},
		ForeignKeys: []gluedb.ForeignKey{{Column: "owner_id", ReferencedTable: "users", ReferencedColumn: "id"}},
	}
	raw, err := marshalSchemaWire(schema)
	require.NoError(t, err)
	w, err := unmarshalSchemaWire(raw)
	require.NoError(t, err)
	out := decodeSchema(w)

	assert.Equal(t, "widgets", out.TableName)
	require.Len(t, out.Columns, 2)
	assert.Equal(t, "id", out.Columns[0].Name)
	assert.Equal(t, gluedb.UniquePrimary, out.Columns[0].Unique)
	assert.True(t, out.Columns[1].Nullable)
	require.Len(t, out.ForeignKeys, 1)
	assert.Equal(t, "users", out.ForeignKeys[0].ReferencedTable)
}
