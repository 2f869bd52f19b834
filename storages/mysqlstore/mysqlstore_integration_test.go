package mysqlstore

import (
	"context"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/lychee-technology/gluedb"
)

// setupMySQL starts a disposable MySQL container, grounded on
// Pieczasz-smf's internal/apply/apply_connector_test.go setupMySQL helper.
func setupMySQL(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("gluedb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Integration_SchemaAndDataCRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	s := setupMySQL(t)

	schema := &gluedb.Schema{
		TableName: "widgets",
		Columns: []gluedb.ColumnDef{
			{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary},
			{Name: "name", Type: gluedb.ColumnTypeText},
		},
	}
	require.NoError(t, s.InsertSchema(ctx, schema))

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
	require.Equal(t, "bolt", n)
}

func TestStore_Integration_TransactionRollback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	s := setupMySQL(t)

	schema := &gluedb.Schema{
		TableName: "widgets",
		Columns:   []gluedb.ColumnDef{{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary}},
	}
	require.NoError(t, s.InsertSchema(ctx, schema))

	_, err := s.Begin(ctx, false)
	require.NoError(t, err)
	key := gluedb.GeneratedKey(1)
	row := gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(1)}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))
	require.NoError(t, s.Rollback(ctx))

	_, ok, err := s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	require.False(t, ok)
}
