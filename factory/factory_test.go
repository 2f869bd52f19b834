package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/storages/memstore"
)

func memoryConfig() *gluedb.Config {
	cfg := gluedb.DefaultConfig()
	cfg.Database.Backend = gluedb.BackendMemory
	return cfg
}

func TestOpen_DefaultsToMemoryBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Backend = ""
	eng, err := Open(context.Background(), cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NotNil(t, eng.Store())
	require.IsType(t, &memstore.Store{}, eng.Store())
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Backend = gluedb.Backend("not-a-backend")
	_, err := Open(context.Background(), cfg, zap.NewNop().Sugar())
	require.Error(t, err)
}

func TestEngine_Query_CreateInsertSelect(t *testing.T) {
	ctx := context.Background()
	eng, err := Open(ctx, memoryConfig(), zap.NewNop().Sugar())
	require.NoError(t, err)

	_, err = eng.Query(ctx, "CREATE TABLE widgets (id BIGINT PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	_, err = eng.Query(ctx, "INSERT INTO widgets (id, name) VALUES (1, 'bolt')")
	require.NoError(t, err)

	payload, err := eng.Query(ctx, "SELECT name FROM widgets WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, gluedb.PayloadSelect, payload.Kind)
	require.Len(t, payload.Rows, 1)
	name, _ := payload.Rows[0][0].Str()
	require.Equal(t, "bolt", name)
}

func TestEngine_Query_NoStatements(t *testing.T) {
	ctx := context.Background()
	eng, err := Open(ctx, memoryConfig(), zap.NewNop().Sugar())
	require.NoError(t, err)

	_, err = eng.Query(ctx, "   ")
	require.Error(t, err)
}
