package s3store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/gluedb"
)

// TestStore_DeclinesOptionalCapabilities needs no container: Open only
// reaches the network when CreateBucket is set, and this test is pure
// type assertions against the capability interfaces in storage.go.
func TestStore_DeclinesOptionalCapabilities(t *testing.T) {
	s, err := Open(context.Background(), Config{Bucket: "gluedb-test", Region: "us-east-1"})
	require.NoError(t, err)

	_, ok := gluedb.AsIndex(s)
	require.False(t, ok)
	_, ok = gluedb.AsAlterTable(s)
	require.False(t, ok)
	_, ok = gluedb.AsTransaction(s)
	require.False(t, ok)
	_, ok = gluedb.AsCustomFunction(s)
	require.False(t, ok)
	_, ok = gluedb.AsStoreMut(s)
	require.True(t, ok)
	_, ok = gluedb.AsMetadata(s)
	require.True(t, ok)
}
