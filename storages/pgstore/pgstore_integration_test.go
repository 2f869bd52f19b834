package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lychee-technology/gluedb"
)

// waitForAcceptingConnections pings through database/sql's lib/pq driver
// before any pgx pool is built against the container, the same two-step
// bring-up Lychee-Technology-forma/internal/e2e_harness/harness.go's
// StartPostgres performs (lib/pq ping for readiness, pgx for the real
// workload).
func waitForAcceptingConnections(t *testing.T, dsn string) {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	deadline := time.Now().Add(30 * time.Second)
	var pingErr error
	for time.Now().Before(deadline) {
		if pingErr = db.Ping(); pingErr == nil {
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Fatalf("postgres container never accepted connections: %v", pingErr)
}

// setupPostgres starts a disposable Postgres container, grounded on
// Lychee-Technology-forma/internal/e2e_harness/harness.go's StartPostgres.
func setupPostgres(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://postgres:password@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	waitForAcceptingConnections(t, dsn)

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Integration_SchemaAndDataCRUD(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	s := setupPostgres(t)

	schema := &gluedb.Schema{
		TableName: "widgets",
		Columns: []gluedb.ColumnDef{
			{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary},
			{Name: "name", Type: gluedb.ColumnTypeText},
		},
	}
	require.NoError(t, s.InsertSchema(ctx, schema))

	keys, err := s.AppendData(ctx, "widgets", []gluedb.Row{
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(1), "name": gluedb.NewStr("bolt")}},
	})
	require.NoError(t, err)
	require.Len(t, keys, 1)

	got, ok, err := s.FetchData(ctx, "widgets", keys[0])
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
	s := setupPostgres(t)

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
