package pgstore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lychee-technology/gluedb"
)

// SQLSTATE codes used for constraint-violation classification, named the
// way lib/pq's error-code table documents them (lib/pq ships the same
// constants as an unexported map; spelling them out here keeps pgstore
// independent of lib/pq's internals while still matching the standard
// Postgres error catalog lib/pq's e2e harness connects through).
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
	sqlstateNotNullViolation    = "23502"
	sqlstateUndefinedTable      = "42P01"
)

// classifyError turns a pgx/pgconn error into the gluedb.Error shape the
// executor's insert/update validation expects, so a constraint Postgres
// itself enforces (in addition to gluedb's own pre-write validation) still
// surfaces through the same error taxonomy as an in-memory backend would.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeBackendError, Message: err.Error()}
	}
	switch pgErr.Code {
	case sqlstateUniqueViolation:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeUniqueViolation, Message: pgErr.Message}
	case sqlstateForeignKeyViolation:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeForeignKeyViolation, Message: pgErr.Message}
	case sqlstateNotNullViolation:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeNotNullViolation, Message: pgErr.Message}
	case sqlstateUndefinedTable:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTableNotFoundAtExec, Message: pgErr.Message}
	default:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeBackendError, Message: pgErr.Message}
	}
}
