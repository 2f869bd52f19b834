package pgstore

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/gluedb"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + systemTable)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	s, err := newStore(context.Background(), mock)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return s, mock
}

func TestStore_FetchSchema_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT schema_json FROM " + systemTable)).
		WithArgs("widgets").
		WillReturnError(pgx.ErrNoRows)

	sc, err := s.FetchSchema(context.Background(), "widgets")
	require.NoError(t, err)
	assert.Nil(t, sc)
}

func TestStore_InsertSchema_CreatesPhysicalTable(t *testing.T) {
	s, mock := newMockStore(t)
	schema := &gluedb.Schema{
		TableName: "widgets",
		Columns:   []gluedb.ColumnDef{{Name: "id", Type: gluedb.ColumnTypeI64, Unique: gluedb.UniquePrimary}},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO " + systemTable)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + tableName("widgets"))).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.InsertSchema(context.Background(), schema))

	cached, err := s.FetchSchema(context.Background(), "widgets")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "widgets", cached.TableName)
}

func TestClassifyError_UniqueViolation(t *testing.T) {
	err := classifyError(&pgconn.PgError{Code: sqlstateUniqueViolation, Message: "duplicate key"})
	gerr, ok := err.(*gluedb.Error)
	require.True(t, ok)
	assert.Equal(t, gluedb.ErrCodeUniqueViolation, gerr.Code)
}

func TestClassifyError_ForeignKeyViolation(t *testing.T) {
	err := classifyError(&pgconn.PgError{Code: sqlstateForeignKeyViolation, Message: "fk violation"})
	gerr, ok := err.(*gluedb.Error)
	require.True(t, ok)
	assert.Equal(t, gluedb.ErrCodeForeignKeyViolation, gerr.Code)
}

func TestClassifyError_WrapsUnknownError(t *testing.T) {
	err := classifyError(assert.AnError)
	gerr, ok := err.(*gluedb.Error)
	require.True(t, ok)
	assert.Equal(t, gluedb.ErrCodeBackendError, gerr.Code)
}
