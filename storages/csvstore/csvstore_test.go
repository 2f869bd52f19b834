package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/gluedb"
)

func writeCSV(t *testing.T, dir, table, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, table+".csv"), []byte(content), 0o644))
}

func TestStore_FetchSchema(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "widgets", "id,name\n1,bolt\n2,nut\n")

	ctx := context.Background()
	s, err := Open(ctx, Config{Dir: dir})
	require.NoError(t, err)

	sc, err := s.FetchSchema(ctx, "widgets")
	require.NoError(t, err)
	require.NotNil(t, sc)
	require.Len(t, sc.Columns, 2)
	require.Equal(t, "id", sc.Columns[0].Name)
	require.Equal(t, gluedb.ColumnTypeText, sc.Columns[0].Type)

	sc, err = s.FetchSchema(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, sc)
}

func TestStore_FetchAllSchemas(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "widgets", "id,name\n1,bolt\n")
	writeCSV(t, dir, "gadgets", "id\n1\n")

	ctx := context.Background()
	s, err := Open(ctx, Config{Dir: dir})
	require.NoError(t, err)

	all, err := s.FetchAllSchemas(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "gadgets", all[0].TableName)
	require.Equal(t, "widgets", all[1].TableName)
}

func TestStore_ScanData(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "widgets", "id,name\n1,bolt\n2,nut\n3,washer\n")

	ctx := context.Background()
	s, err := Open(ctx, Config{Dir: dir})
	require.NoError(t, err)

	it, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	defer it.Close()

	var names []string
	var ordinals []uint64
	for {
		key, row, ok, err := it.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		v, _ := row.Get("name")
		n, _ := v.Str()
		names = append(names, n)
		ord, err := rowOrdinal(key)
		require.NoError(t, err)
		ordinals = append(ordinals, ord)
	}
	require.Equal(t, []string{"bolt", "nut", "washer"}, names)
	require.Equal(t, []uint64{0, 1, 2}, ordinals)
}

func TestStore_FetchData(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "widgets", "id,name\n1,bolt\n2,nut\n3,washer\n")

	ctx := context.Background()
	s, err := Open(ctx, Config{Dir: dir})
	require.NoError(t, err)

	row, ok, err := s.FetchData(ctx, "widgets", gluedb.GeneratedKey(1))
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := row.Get("name")
	n, _ := v.Str()
	require.Equal(t, "nut", n)

	_, ok, err = s.FetchData(ctx, "widgets", gluedb.GeneratedKey(99))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_DeclinesOptionalCapabilities(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(context.Background(), Config{Dir: dir})
	require.NoError(t, err)

	_, ok := gluedb.AsStoreMut(s)
	require.False(t, ok)
	_, ok = gluedb.AsIndex(s)
	require.False(t, ok)
	_, ok = gluedb.AsAlterTable(s)
	require.False(t, ok)
	_, ok = gluedb.AsTransaction(s)
	require.False(t, ok)
	_, ok = gluedb.AsCustomFunction(s)
	require.False(t, ok)
	_, ok = gluedb.AsMetadata(s)
	require.True(t, ok)
}
