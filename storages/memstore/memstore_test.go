package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

func testSchema() *gluedb.Schema {
	return &gluedb.Schema{
		TableName: "widgets",
		Columns: []gluedb.ColumnDef{
			{Name: "id", Type: gluedb.ColumnTypeI64, Nullable: false, Unique: gluedb.UniquePrimary},
			{Name: "name", Type: gluedb.ColumnTypeText, Nullable: false},
		},
	}
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertSchema(ctx, testSchema()))

	key, err := gluedb.NewKey(gluedb.NewI64(1))
	require.NoError(t, err)
	row := gluedb.VecRow{ColumnNames: []string{"id", "name"}, Values: []gluedb.Value{gluedb.NewI64(1), gluedb.NewStr("bolt")}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))

	got, ok, err := s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := got.Get("name")
	name, _ := v.Str()
	assert.Equal(t, "bolt", name)

	row2 := gluedb.VecRow{ColumnNames: []string{"id", "name"}, Values: []gluedb.Value{gluedb.NewI64(1), gluedb.NewStr("nut")}}
	require.NoError(t, s.UpdateData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row2}}))
	got, _, _ = s.FetchData(ctx, "widgets", key)
	v, _ = got.Get("name")
	name, _ = v.Str()
	assert.Equal(t, "nut", name)

	require.NoError(t, s.DeleteData(ctx, "widgets", []gluedb.Key{key}))
	_, ok, _ = s.FetchData(ctx, "widgets", key)
	assert.False(t, ok)
}

func TestStore_ScanData_Ordered(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertSchema(ctx, testSchema()))

	for _, id := range []int64{3, 1, 2} {
		key, err := gluedb.NewKey(gluedb.NewI64(id))
		require.NoError(t, err)
		row := gluedb.VecRow{ColumnNames: []string{"id", "name"}, Values: []gluedb.Value{gluedb.NewI64(id), gluedb.NewStr("x")}}
		require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))
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
		big, _ := k.Value.AsBigInt()
		seen = append(seen, big.Int64())
	}
	assert.Equal(t, []int64{1, 2, 3}, seen)
}

func TestStore_AppendData_GeneratesKeys(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertSchema(ctx, &gluedb.Schema{TableName: "log"}))

	keys, err := s.AppendData(ctx, "log", []gluedb.Row{
		gluedb.MapRow{Fields: map[string]gluedb.Value{"msg": gluedb.NewStr("a")}},
		gluedb.MapRow{Fields: map[string]gluedb.Value{"msg": gluedb.NewStr("b")}},
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestStore_TransactionCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertSchema(ctx, testSchema()))

	ok, err := s.Begin(ctx, false)
	require.NoError(t, err)
	require.True(t, ok)

	key, _ := gluedb.NewKey(gluedb.NewI64(1))
	row := gluedb.VecRow{ColumnNames: []string{"id", "name"}, Values: []gluedb.Value{gluedb.NewI64(1), gluedb.NewStr("bolt")}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))

	require.NoError(t, s.Rollback(ctx))
	_, ok2, _ := s.FetchData(ctx, "widgets", key)
	assert.False(t, ok2, "rolled-back insert must not be visible")

	_, err = s.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))
	require.NoError(t, s.Commit(ctx))

	_, ok3, _ := s.FetchData(ctx, "widgets", key)
	assert.True(t, ok3, "committed insert must be visible after commit")
}

func TestStore_BeginTwice(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Begin(ctx, false)
	require.NoError(t, err)
	_, err = s.Begin(ctx, false)
	assert.Error(t, err)
}

func TestStore_AlterTable(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertSchema(ctx, testSchema()))
	key, _ := gluedb.NewKey(gluedb.NewI64(1))
	row := gluedb.VecRow{ColumnNames: []string{"id", "name"}, Values: []gluedb.Value{gluedb.NewI64(1), gluedb.NewStr("bolt")}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))

	require.NoError(t, s.RenameTable(ctx, "widgets", "parts"))
	sc, err := s.FetchSchema(ctx, "parts")
	require.NoError(t, err)
	assert.Equal(t, "parts", sc.TableName)

	_, ok, err := s.FetchData(ctx, "parts", key)
	require.NoError(t, err)
	assert.True(t, ok, "rows must move along with the table on rename")
}

func TestStore_Index(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.InsertSchema(ctx, testSchema()))
	for _, id := range []int64{1, 2, 3} {
		key, _ := gluedb.NewKey(gluedb.NewI64(id))
		row := gluedb.VecRow{ColumnNames: []string{"id", "name"}, Values: []gluedb.Value{gluedb.NewI64(id), gluedb.NewStr("x")}}
		require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))
	}

	require.NoError(t, s.CreateIndex(ctx, "widgets", gluedb.IndexDescriptor{
		Name:      "idx_id",
		Expr:      ast.Expr{Kind: ast.ExprColumnRef, Column: "id"},
		CreatedAt: time.Now(),
	}))

	iter, err := s.ScanIndex(ctx, "widgets", gluedb.IndexRange{
		IndexName: "idx_id",
		Operator:  gluedb.OpGt,
		Bound:     gluedb.NewI64(1),
	})
	require.NoError(t, err)
	defer iter.Close()
	var count int
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
	sc, _ := s.FetchSchema(ctx, "widgets")
	assert.Empty(t, sc.Indexes)
}

func TestStore_CustomFunction(t *testing.T) {
	s := New()
	require.NoError(t, s.RegisterFunction(gluedb.ScalarFunction{
		Name: "double", Arity: 1, Stateless: true,
		Call: func(args []gluedb.Value) (gluedb.Value, error) {
			n, _ := args[0].AsBigInt()
			return gluedb.NewI64(n.Int64() * 2), nil
		},
	}))
	fn, ok := s.LookupFunction("double")
	require.True(t, ok)
	out, err := fn.Call([]gluedb.Value{gluedb.NewI64(21)})
	require.NoError(t, err)
	n, _ := out.AsBigInt()
	assert.Equal(t, int64(42), n.Int64())
}
