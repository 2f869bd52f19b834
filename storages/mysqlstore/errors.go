package mysqlstore

import (
	"errors"

	driver "github.com/go-sql-driver/mysql"

	"github.com/lychee-technology/gluedb"
)

// MySQL error numbers used for constraint-violation classification, named
// the way MySQL's own error reference documents them.
const (
	erDupEntry        = 1062
	erNoReferencedRow = 1452
	erRowIsReferenced = 1451
	erBadNullError    = 1048
	erNoSuchTable     = 1146
)

// classifyError mirrors storages/pgstore's classifyError: a constraint
// MySQL itself enforces surfaces through the same gluedb.Error taxonomy a
// validating backend (storages/memstore) already uses.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var mysqlErr *driver.MySQLError
	if !errors.As(err, &mysqlErr) {
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeBackendError, Message: err.Error()}
	}
	switch mysqlErr.Number {
	case erDupEntry:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeUniqueViolation, Message: mysqlErr.Message}
	case erNoReferencedRow, erRowIsReferenced:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeForeignKeyViolation, Message: mysqlErr.Message}
	case erBadNullError:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeNotNullViolation, Message: mysqlErr.Message}
	case erNoSuchTable:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTableNotFoundAtExec, Message: mysqlErr.Message}
	default:
		return &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeBackendError, Message: mysqlErr.Message}
	}
}
