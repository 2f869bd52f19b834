package duckstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

func idColumnExpr() ast.Expr {
	return ast.Expr{Kind: ast.ExprColumnRef, Column: "id"}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func widgetsSchema() *gluedb.Schema {
	return &gluedb.Schema{
		TableName: "widgets",
		Columns: []gluedb.ColumnDef{
			{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary},
			{Name: "name", Type: gluedb.ColumnTypeText},
		},
	}
}

func TestStore_SchemaAndDataCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	fetched, err := s.FetchSchema(ctx, "widgets")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "widgets", fetched.TableName)

	key := gluedb.GeneratedKey(1)
	row := gluedb.MapRow{Fields: map[string]gluedb.Value{
		"id":   gluedb.NewI64(1),
		"name": gluedb.NewStr("bolt"),
	}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))

	got, ok, err := s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	require.True(t, ok)
	name, _ := got.Get("name")
	n, _ := name.Str()
	assert.Equal(t, "bolt", n)

	require.NoError(t, s.DeleteData(ctx, "widgets", []gluedb.Key{key}))
	_, ok, err = s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_AppendData_GeneratesSequentialKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	rows := []gluedb.Row{
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(1), "name": gluedb.NewStr("a")}},
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(2), "name": gluedb.NewStr("b")}},
	}
	keys, err := s.AppendData(ctx, "widgets", rows)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestStore_ScanData_Ordered(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	for i := 3; i >= 1; i-- {
		row := gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(int64(i))}}
		require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: gluedb.GeneratedKey(uint64(i)), Row: row}}))
	}

	iter, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	defer iter.Close()

	var seen []int64
	for {
		k, _, ok, err := iter.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		n, err := k.Value.AsBigInt()
		require.NoError(t, err)
		seen = append(seen, n.Int64())
	}
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

func TestStore_TransactionCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	autocommit, err := s.Begin(ctx, false)
	require.NoError(t, err)
	assert.True(t, autocommit)

	key := gluedb.GeneratedKey(1)
	row := gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(1)}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))
	require.NoError(t, s.Rollback(ctx))

	_, ok, err := s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))
	require.NoError(t, s.Commit(ctx))

	_, ok, err = s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_AlterTable_RenameColumnCarriesRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	key := gluedb.GeneratedKey(1)
	row := gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(1), "name": gluedb.NewStr("bolt")}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))

	require.NoError(t, s.RenameColumn(ctx, "widgets", "name", "label"))

	got, ok, err := s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	require.True(t, ok)
	label, ok := got.Get("label")
	require.True(t, ok)
	s2, _ := label.Str()
	assert.Equal(t, "bolt", s2)
}

func TestStore_Index_CreateScanDrop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	for i := 1; i <= 3; i++ {
		row := gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(int64(i))}}
		require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: gluedb.GeneratedKey(uint64(i)), Row: row}}))
	}

	idx := gluedb.IndexDescriptor{Name: "idx_id", Expr: idColumnExpr()}
	require.NoError(t, s.CreateIndex(ctx, "widgets", idx))

	iter, err := s.ScanIndex(ctx, "widgets", gluedb.IndexRange{IndexName: "idx_id", Operator: gluedb.OpGt, Bound: gluedb.NewI64(1)})
	require.NoError(t, err)
	defer iter.Close()

	count := 0
	for {
		_, _, ok, err := iter.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)

	require.NoError(t, s.DropIndex(ctx, "widgets", "idx_id"))
	schema, err := s.FetchSchema(ctx, "widgets")
	require.NoError(t, err)
	assert.Empty(t, schema.Indexes)
}

func TestStore_CustomFunction(t *testing.T) {
	s := newTestStore(t)
	fn := gluedb.ScalarFunction{Name: "double", Call: func(args []gluedb.Value) (gluedb.Value, error) {
		n, err := args[0].AsBigInt()
		if err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewI64(n.Int64() * 2), nil
	}}
	require.NoError(t, s.RegisterFunction(fn))

	got, ok := s.LookupFunction("double")
	require.True(t, ok)
	out, err := got.Call([]gluedb.Value{gluedb.NewI64(21)})
	require.NoError(t, err)
	n, err := out.AsBigInt()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n.Int64())
}
