package ast

import "github.com/lychee-technology/gluedb"

// StmtKind discriminates the Statement union, matching gluedb.PayloadKind's
// vocabulary one-for-one where an operation produces a payload directly.
type StmtKind string

const (
	StmtSelect           StmtKind = "SELECT"
	StmtInsert           StmtKind = "INSERT"
	StmtUpdate           StmtKind = "UPDATE"
	StmtDelete           StmtKind = "DELETE"
	StmtCreateTable      StmtKind = "CREATE_TABLE"
	StmtDropTable        StmtKind = "DROP_TABLE"
	StmtAlterTable       StmtKind = "ALTER_TABLE"
	StmtCreateIndex      StmtKind = "CREATE_INDEX"
	StmtDropIndex        StmtKind = "DROP_INDEX"
	StmtStartTransaction StmtKind = "START_TRANSACTION"
	StmtCommit           StmtKind = "COMMIT"
	StmtRollback         StmtKind = "ROLLBACK"
	StmtShowColumns      StmtKind = "SHOW_COLUMNS"
	StmtShowIndexes      StmtKind = "SHOW_INDEXES"
	StmtShowVariable     StmtKind = "SHOW_VARIABLE"
)

// JoinKind names the join types spec §4.3 supports.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinCross JoinKind = "CROSS"
)

// TableRef is one FROM-clause entry: either a named table or a derived
// (subquery) table, which spec §4.3 requires to carry an alias.
type TableRef struct {
	Name    string
	Alias   string
	Derived *Statement // non-nil for a derived table; Name/Alias still apply
}

// Join pairs a right-hand TableRef with its join condition.
type Join struct {
	Kind  JoinKind
	Table TableRef
	On    *Expr // nil for CROSS JOIN
}

// OrderByItem is one ORDER BY key.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// AlterKind discriminates an ALTER TABLE action.
type AlterKind string

const (
	AlterRenameTable  AlterKind = "RENAME_TABLE"
	AlterRenameColumn AlterKind = "RENAME_COLUMN"
	AlterAddColumn    AlterKind = "ADD_COLUMN"
	AlterDropColumn   AlterKind = "DROP_COLUMN"
)

// Select is a SELECT statement's parsed form.
type Select struct {
	Projection []Expr // each Expr.Alias is its output column name
	From       *TableRef
	Joins      []Join
	Where      *Expr
	GroupBy    []Expr
	Having     *Expr
	OrderBy    []OrderByItem
	Limit      *Expr
	Offset     *Expr
}

// Assignment is one SET column = expr pair in an UPDATE statement.
type Assignment struct {
	Column string
	Value  Expr
}

// Statement is the root AST node produced by internal/translate and consumed
// by internal/execute. Exactly the fields relevant to Kind are populated.
type Statement struct {
	Kind StmtKind

	// Select
	Select *Select

	// Insert
	Table      string
	Columns    []string
	ValuesRows [][]Expr   // VALUES (...), (...)
	InsertFrom *Statement // INSERT ... SELECT

	// Update
	Assignments []Assignment
	Where       *Expr

	// Delete uses Table + Where above.

	// CreateTable / DropTable
	Schema   *gluedb.Schema
	IfExists bool

	// AlterTable
	AlterKind  AlterKind
	OldName    string
	NewName    string
	NewColumn  gluedb.ColumnDef

	// CreateIndex / DropIndex
	IndexName string
	IndexExpr Expr
	IndexOrd  gluedb.IndexOrder

	// StartTransaction
	Autocommit bool

	// ShowVariable
	VariableName string
}
