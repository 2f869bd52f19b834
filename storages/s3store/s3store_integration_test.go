package s3store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lychee-technology/gluedb"
)

// setupS3 starts a disposable rustfs container, grounded on
// Lychee-Technology-forma/internal/e2e_harness/harness.go's StartS3.
func setupS3(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "rustfs/rustfs:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": "minio",
			"RUSTFS_SECRET_KEY": "minio",
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start rustfs container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)
	endpoint := "http://" + host + ":" + mapped.Port()

	s, err := Open(ctx, Config{
		Bucket: "gluedb-test", Prefix: "t", Region: "us-east-1",
		Endpoint: endpoint, AccessKey: "minio", SecretKey: "minio",
		UsePathStyle: true, CreateBucket: true,
	})
	require.NoError(t, err)
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

func TestStore_Integration_SchemaAndDataCRUD(t *testing.T) {
	ctx := context.Background()
	s := setupS3(t)

	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))
	sc, err := s.FetchSchema(ctx, "widgets")
	require.NoError(t, err)
	require.NotNil(t, sc)
	require.Equal(t, "widgets", sc.TableName)

	key := gluedb.GeneratedKey(1)
	row := gluedb.MapRow{Fields: map[string]gluedb.Value{
		"id": gluedb.NewI64(1), "name": gluedb.NewStr("bolt"),
	}}
	require.NoError(t, s.InsertData(ctx, "widgets", []gluedb.KeyRow{{Key: key, Row: row}}))

	got, ok, err := s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	require.True(t, ok)
	name, _ := got.Get("name")
	n, _ := name.Str()
	require.Equal(t, "bolt", n)

	require.NoError(t, s.DeleteData(ctx, "widgets", []gluedb.Key{key}))
	_, ok, err = s.FetchData(ctx, "widgets", key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.DeleteSchema(ctx, "widgets"))
	sc, err = s.FetchSchema(ctx, "widgets")
	require.NoError(t, err)
	require.Nil(t, sc)
}

func TestStore_Integration_AppendData_GeneratesSequentialKeys(t *testing.T) {
	ctx := context.Background()
	s := setupS3(t)
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	keys, err := s.AppendData(ctx, "widgets", []gluedb.Row{
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(1), "name": gluedb.NewStr("a")}},
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(2), "name": gluedb.NewStr("b")}},
	})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.NotEqual(t, keys[0], keys[1])

	more, err := s.AppendData(ctx, "widgets", []gluedb.Row{
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(3), "name": gluedb.NewStr("c")}},
	})
	require.NoError(t, err)
	require.Len(t, more, 1)
	require.NotContains(t, keys, more[0])
}

func TestStore_Integration_ScanData_Ordered(t *testing.T) {
	ctx := context.Background()
	s := setupS3(t)
	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))

	_, err := s.AppendData(ctx, "widgets", []gluedb.Row{
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(1), "name": gluedb.NewStr("a")}},
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(2), "name": gluedb.NewStr("b")}},
		gluedb.MapRow{Fields: map[string]gluedb.Value{"id": gluedb.NewI64(3), "name": gluedb.NewStr("c")}},
	})
	require.NoError(t, err)

	it, err := s.ScanData(ctx, "widgets")
	require.NoError(t, err)
	defer it.Close()

	var names []string
	for {
		_, row, ok, err := it.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		v, _ := row.Get("name")
		n, _ := v.Str()
		names = append(names, n)
	}
	require.Equal(t, []string{"a", "b", "c"}, names)
}

func TestStore_Integration_FetchAllSchemas(t *testing.T) {
	ctx := context.Background()
	s := setupS3(t)

	require.NoError(t, s.InsertSchema(ctx, widgetsSchema()))
	require.NoError(t, s.InsertSchema(ctx, &gluedb.Schema{
		TableName: "gadgets",
		Columns:   []gluedb.ColumnDef{{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary}},
	}))

	all, err := s.FetchAllSchemas(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "gadgets", all[0].TableName)
	require.Equal(t, "widgets", all[1].TableName)
}
