package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/gluedb"
)

func TestConnOptions_Config(t *testing.T) {
	opts := connOptions{backend: "duckdb", path: "/tmp/widgets.db"}
	cfg := opts.config()
	require.Equal(t, gluedb.BackendDuckDB, cfg.Database.Backend)
	require.Equal(t, "/tmp/widgets.db", cfg.Database.Path)
}

func TestRun_MemoryBackendNoSchemas(t *testing.T) {
	require.NoError(t, run([]string{"-backend", "memory"}))
}

func TestRun_UnknownBackend(t *testing.T) {
	require.Error(t, run([]string{"-backend", "bogus"}))
}
