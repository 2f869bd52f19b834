package gluedb

// PayloadKind discriminates the Payload union returned by Execute (spec §6).
type PayloadKind string

const (
	PayloadCreate            PayloadKind = "CREATE"
	PayloadInsert            PayloadKind = "INSERT"
	PayloadUpdate            PayloadKind = "UPDATE"
	PayloadDelete            PayloadKind = "DELETE"
	PayloadDropTable         PayloadKind = "DROP_TABLE"
	PayloadAlterTable        PayloadKind = "ALTER_TABLE"
	PayloadStartTransaction  PayloadKind = "START_TRANSACTION"
	PayloadCommit            PayloadKind = "COMMIT"
	PayloadRollback          PayloadKind = "ROLLBACK"
	PayloadSelect            PayloadKind = "SELECT"
	PayloadShowColumns       PayloadKind = "SHOW_COLUMNS"
	PayloadShowIndexes       PayloadKind = "SHOW_INDEXES"
	PayloadShowVariable      PayloadKind = "SHOW_VARIABLE"
)

// ColumnInfo is one row of a SHOW COLUMNS payload.
type ColumnInfo struct {
	Name string
	Type ColumnType
}

// IndexInfo is one row of a SHOW INDEXES payload.
type IndexInfo struct {
	Name  string
	Order IndexOrder
}

// Payload is the discriminated union of spec.md §6. Exactly the fields
// relevant to Kind are populated; the rest are zero values.
type Payload struct {
	Kind PayloadKind

	// Insert/Update/Delete
	AffectedRows int

	// Select
	Labels []string
	Rows   [][]Value

	// ShowColumns
	Columns []ColumnInfo

	// ShowIndexes
	IndexInfos []IndexInfo

	// ShowVariable
	VariableName  string
	VariableValue Value
}
