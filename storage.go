package gluedb

import "context"

// RowIter streams (Key, Row) pairs in ascending key order (spec §5's
// ordering guarantee). Callers must call Close when done, including on
// early exit (query cancellation, spec §5 "dropping the result stream").
type RowIter interface {
	Next(ctx context.Context) (Key, Row, bool, error)
	Close() error
}

// Store is the read-only half of the storage contract (spec §4.5, §6).
// Every storage backend the executor is handed must implement at least
// this; StoreMut and the rest are independently optional capabilities,
// probed for via type assertion at the point a SQL feature needs them.
type Store interface {
	FetchSchema(ctx context.Context, table string) (*Schema, error)
	FetchAllSchemas(ctx context.Context) ([]*Schema, error)
	FetchData(ctx context.Context, table string, key Key) (Row, bool, error)
	ScanData(ctx context.Context, table string) (RowIter, error)
}

// StoreMut is the write half of the storage contract.
type StoreMut interface {
	Store
	InsertSchema(ctx context.Context, schema *Schema) error
	DeleteSchema(ctx context.Context, table string) error
	// AppendData lets the backend allocate keys, returning them in the
	// same order as rows (spec §6 "storage allocates keys").
	AppendData(ctx context.Context, table string, rows []Row) ([]Key, error)
	// InsertData writes caller-provided keys (spec §6 "caller provides keys").
	InsertData(ctx context.Context, table string, pairs []KeyRow) error
	UpdateData(ctx context.Context, table string, pairs []KeyRow) error
	DeleteData(ctx context.Context, table string, keys []Key) error
}

// KeyRow pairs a Key with the Row stored at it.
type KeyRow struct {
	Key Key
	Row Row
}

// IndexRange constrains a Scan to the portion of an index satisfying a
// single comparison, as selected by the planner (spec §4.3's IndexItem).
type IndexRange struct {
	IndexName string
	Operator  BinaryOp // one of =, <, <=, >, >=; IS NULL/IS NOT NULL handled via IsNullCheck
	IsNullCheck string // "", "IS NULL", or "IS NOT NULL"
	Bound     Value
}

// Index is the optional capability for index-constrained scans.
type Index interface {
	ScanIndex(ctx context.Context, table string, rng IndexRange) (RowIter, error)
}

// IndexMut is the optional capability for index DDL.
type IndexMut interface {
	CreateIndex(ctx context.Context, table string, idx IndexDescriptor) error
	DropIndex(ctx context.Context, table, indexName string) error
}

// ColumnRewriter is supplied by the executor to AlterTable.AddColumn /
// DropColumn so a backend can rewrite every row's encoding in one pass
// (mirroring the teacher's redis-storage alter_table.rs behavior). Every
// AlterTable backend in this module (storages/memstore, storages/pgstore,
// storages/duckstore, storages/mysqlstore) applies it eagerly to every row.
type ColumnRewriter func(old Row) (Row, error)

// AlterTable is the optional capability for schema mutation after creation.
type AlterTable interface {
	RenameTable(ctx context.Context, oldName, newName string) error
	RenameColumn(ctx context.Context, table, oldName, newName string) error
	AddColumn(ctx context.Context, table string, col ColumnDef, rewrite ColumnRewriter) error
	DropColumn(ctx context.Context, table, column string, rewrite ColumnRewriter) error
}

// TxState is the three-state machine of spec §4.4.
type TxState string

const (
	TxIdle        TxState = "IDLE"
	TxActive      TxState = "TRANSACTION"
	TxTerminated  TxState = "TERMINATED"
)

// Transaction is the optional capability for BEGIN/COMMIT/ROLLBACK, with
// at-least snapshot isolation per spec §5.
type Transaction interface {
	Begin(ctx context.Context, autocommit bool) (bool, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Metadata is the optional capability for backend introspection (e.g. the
// file-storage-format-version comment, spec §6/§9).
type Metadata interface {
	BackendName() string
	FormatVersion() int
}

// ScalarFunction is a registered custom scalar function (spec §4.2's
// "custom scalar function" registry, referenced in spec §1's Non-goals as
// the only stored-procedure-adjacent feature in scope).
type ScalarFunction struct {
	Name     string
	Arity    int
	Stateless bool
	Call     func(args []Value) (Value, error)
}

// CustomFunction is the optional capability for reading the registry.
type CustomFunction interface {
	LookupFunction(name string) (ScalarFunction, bool)
}

// CustomFunctionMut is the optional capability for registering functions.
type CustomFunctionMut interface {
	CustomFunction
	RegisterFunction(fn ScalarFunction) error
}

// Capability probes, used by internal/execute to turn a missing capability
// into a structured "not supported" error instead of a panic (spec §4.5).
func AsStoreMut(s Store) (StoreMut, bool)             { sm, ok := s.(StoreMut); return sm, ok }
func AsIndex(s Store) (Index, bool)                   { i, ok := s.(Index); return i, ok }
func AsIndexMut(s Store) (IndexMut, bool)             { i, ok := s.(IndexMut); return i, ok }
func AsAlterTable(s Store) (AlterTable, bool)         { a, ok := s.(AlterTable); return a, ok }
func AsTransaction(s Store) (Transaction, bool)       { t, ok := s.(Transaction); return t, ok }
func AsMetadata(s Store) (Metadata, bool)             { m, ok := s.(Metadata); return m, ok }
func AsCustomFunction(s Store) (CustomFunction, bool) { c, ok := s.(CustomFunction); return c, ok }
func AsCustomFunctionMut(s Store) (CustomFunctionMut, bool) {
	c, ok := s.(CustomFunctionMut)
	return c, ok
}
