package gluedb

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// ColumnType is the SQL-visible type name of a column, distinct from the
// runtime Kind of a Value: a column declared INTEGER always holds I32
// Values (or Null), but a schemaless Map row can hold any Kind at all.
type ColumnType string

const (
	ColumnTypeBoolean   ColumnType = "BOOLEAN"
	ColumnTypeI8        ColumnType = "INT8"
	ColumnTypeI16       ColumnType = "INT16"
	ColumnTypeI32       ColumnType = "INTEGER"
	ColumnTypeI64       ColumnType = "BIGINT"
	ColumnTypeI128      ColumnType = "INT128"
	ColumnTypeU8        ColumnType = "UINT8"
	ColumnTypeU16       ColumnType = "UINT16"
	ColumnTypeU32       ColumnType = "UINT32"
	ColumnTypeU64       ColumnType = "UINT64"
	ColumnTypeU128      ColumnType = "UINT128"
	ColumnTypeF32       ColumnType = "FLOAT"
	ColumnTypeF64       ColumnType = "DOUBLE"
	ColumnTypeDecimal   ColumnType = "DECIMAL"
	ColumnTypeText      ColumnType = "TEXT"
	ColumnTypeBytes     ColumnType = "BYTEA"
	ColumnTypeIP        ColumnType = "INET"
	ColumnTypeDate      ColumnType = "DATE"
	ColumnTypeTime      ColumnType = "TIME"
	ColumnTypeTimestamp ColumnType = "TIMESTAMP"
	ColumnTypeInterval  ColumnType = "INTERVAL"
	ColumnTypeUUID      ColumnType = "UUID"
	ColumnTypePoint     ColumnType = "POINT"
	ColumnTypeList      ColumnType = "LIST"
	ColumnTypeMap       ColumnType = "MAP"
	ColumnTypeVector    ColumnType = "VECTOR"
)

// accepts reports whether a runtime Kind is a legal value for a column
// declared with this type. Integer/float widths must match exactly. No
// package inserts an implicit CAST on INSERT or UPDATE, so a value of
// another width (a BIGINT literal written to an INTEGER column, say) is
// rejected as a type violation unless the SQL text casts it explicitly.
func (t ColumnType) accepts(k Kind) bool {
	want := map[ColumnType]Kind{
		ColumnTypeBoolean: KindBool, ColumnTypeI8: KindI8, ColumnTypeI16: KindI16,
		ColumnTypeI32: KindI32, ColumnTypeI64: KindI64, ColumnTypeI128: KindI128,
		ColumnTypeU8: KindU8, ColumnTypeU16: KindU16, ColumnTypeU32: KindU32,
		ColumnTypeU64: KindU64, ColumnTypeU128: KindU128, ColumnTypeF32: KindF32,
		ColumnTypeF64: KindF64, ColumnTypeDecimal: KindDecimal, ColumnTypeText: KindStr,
		ColumnTypeBytes: KindBytes, ColumnTypeIP: KindIP, ColumnTypeDate: KindDate,
		ColumnTypeTime: KindTime, ColumnTypeTimestamp: KindTimestamp,
		ColumnTypeInterval: KindInterval, ColumnTypeUUID: KindUUID,
		ColumnTypePoint: KindPoint, ColumnTypeList: KindList, ColumnTypeMap: KindMap,
		ColumnTypeVector: KindFloatVector,
	}
	return want[t] == k
}

// isApproximate reports the float/approximate types spec §4.4 forbids on a
// UNIQUE constraint ("floats and approximate types are rejected").
func (t ColumnType) isApproximate() bool {
	return t == ColumnTypeF32 || t == ColumnTypeF64
}

// UniqueKind distinguishes an unconstrained column from one backed by a
// UNIQUE or PRIMARY KEY constraint (spec §3 "Column definition").
type UniqueKind string

const (
	UniqueNone    UniqueKind = ""
	UniqueUnique  UniqueKind = "UNIQUE"
	UniquePrimary UniqueKind = "PRIMARY KEY"
)

// ColumnDef is one entry in a Schema's column-def list (spec §3).
type ColumnDef struct {
	Name     string
	Type     ColumnType
	Nullable bool
	// Default is a stateless expression (AST, opaque to this package to
	// avoid an import cycle with internal/ast) evaluated on INSERT when
	// the column is omitted. nil means "no default".
	Default any
	Unique  UniqueKind
	Comment string
}

// IndexOrder is the direction(s) an index maintains.
type IndexOrder string

const (
	IndexAsc  IndexOrder = "ASC"
	IndexDesc IndexOrder = "DESC"
	IndexBoth IndexOrder = "BOTH"
)

// IndexDescriptor pairs a name with an indexed expression and ordering
// (spec §3). Expr is opaque here (an internal/ast.Expr in practice);
// the planner is the only package that inspects it structurally.
type IndexDescriptor struct {
	Name       string
	Expr       any
	Order      IndexOrder
	CreatedAt  time.Time
}

// ForeignKey describes a referencing-column -> referenced-table/column
// relationship (spec §3).
type ForeignKey struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Schema holds everything spec §3 lists: table name, optional column-def
// list (nil = schemaless), indexes, foreign keys, an engine hint, and a
// comment.
type Schema struct {
	TableName   string
	Columns     []ColumnDef // nil => schemaless table, rows are Map
	Indexes     []IndexDescriptor
	ForeignKeys []ForeignKey
	Engine      string
	Comment     string
}

// IsSchemaless reports whether the table accepts any Map row (spec §3).
func (s *Schema) IsSchemaless() bool { return s.Columns == nil }

// ColumnByName looks up a column definition, mirroring
// forma.SchemaAttributeCache's attr_name -> metadata lookup but against a
// real SQL column-def list instead of an EAV attribute cache.
func (s *Schema) ColumnByName(name string) (ColumnDef, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// PrimaryKeyColumns returns the column name(s) marked PRIMARY KEY, in
// declaration order.
func (s *Schema) PrimaryKeyColumns() []string {
	var cols []string
	for _, c := range s.Columns {
		if c.Unique == UniquePrimary {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// UniqueColumns returns every column name with a UNIQUE or PRIMARY KEY
// constraint, used by the executor's insert/update validation (spec §4.4
// step 5).
func (s *Schema) UniqueColumns() []string {
	var cols []string
	for _, c := range s.Columns {
		if c.Unique != UniqueNone {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// IndexFor returns the first index descriptor whose Expr structurally
// matches exprKey (a caller-supplied canonical string for the expression,
// typically produced by internal/ast.CanonicalKey), or false.
func (s *Schema) IndexFor(exprKey string, exprKeyer func(any) string) (IndexDescriptor, bool) {
	for _, idx := range s.Indexes {
		if exprKeyer(idx.Expr) == exprKey {
			return idx, true
		}
	}
	return IndexDescriptor{}, false
}

// Validate applies the DDL-time invariants from spec §4.4's CREATE TABLE
// operation: no duplicate column names, no conflicting primary-key
// declarations, no UNIQUE constraint on an approximate type.
func (s *Schema) Validate() error {
	seen := map[string]bool{}
	pkCount := 0
	for _, c := range s.Columns {
		if seen[c.Name] {
			return (&Error{Type: ErrAlter, Code: ErrCodeDuplicateColumn,
				Message: fmt.Sprintf("duplicate column %q", c.Name)}).WithTable(s.TableName).WithColumn(c.Name)
		}
		seen[c.Name] = true
		if c.Unique == UniquePrimary {
			pkCount++
		}
		if c.Unique != UniqueNone && c.Type.isApproximate() {
			return (&Error{Type: ErrAlter, Code: ErrCodeUnsuitableUniqueType,
				Message: fmt.Sprintf("column %q: %s is not unique-constraint safe", c.Name, c.Type)}).
				WithTable(s.TableName).WithColumn(c.Name)
		}
	}
	if pkCount > 1 {
		return (&Error{Type: ErrAlter, Code: ErrCodeDuplicatePrimaryKey,
			Message: "at most one column (or column tuple) may be PRIMARY KEY"}).WithTable(s.TableName)
	}
	return nil
}

// ToDDL renders the schema's canonical CREATE TABLE text: columns with
// type, NOT NULL and PRIMARY KEY/UNIQUE, then foreign keys and the comment.
// Column defaults, indexes and the engine hint are not rendered.
// internal/translate reads the text back only for the column types it maps
// (INTEGER, BIGINT, FLOAT, DOUBLE, DECIMAL, TEXT, DATE, TIME, TIMESTAMP);
// the other type names printed here do not survive the round trip.
func (s *Schema) ToDDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (", s.TableName)
	if s.IsSchemaless() {
		b.WriteString(")")
		if s.Comment != "" {
			fmt.Fprintf(&b, " COMMENT '%s'", s.Comment)
		}
		return b.String()
	}
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", c.Name, c.Type)
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if c.Unique == UniquePrimary {
			b.WriteString(" PRIMARY KEY")
		} else if c.Unique == UniqueUnique {
			b.WriteString(" UNIQUE")
		}
	}
	for _, fk := range s.ForeignKeys {
		fmt.Fprintf(&b, ", FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.ReferencedTable, fk.ReferencedColumn)
	}
	b.WriteString(")")
	if s.Comment != "" {
		fmt.Fprintf(&b, " COMMENT '%s'", s.Comment)
	}
	return b.String()
}

// DumpYAML renders the schema as YAML for cmd/tools' inspection output; it
// is a debug/export view, not a serialization format any backend reads
// back (that role belongs to ToDDL/internal/translate).
func (s *Schema) DumpYAML() (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("dump schema %q as yaml: %w", s.TableName, err)
	}
	return string(data), nil
}

// FileStorageFormatVersionComment is the schema-comment marker file-based
// backends stamp onto persisted DDL, per spec §6/§9.
const FileStorageFormatVersionComment = "gluedb:file-storage-format-version="

// WithFileStorageFormatVersion appends the version marker to s.Comment,
// used by storages/duckstore, storages/mysqlstore and storages/s3store.
func (s *Schema) WithFileStorageFormatVersion(v int) *Schema {
	marker := fmt.Sprintf("%s%d", FileStorageFormatVersionComment, v)
	if s.Comment == "" {
		s.Comment = marker
	} else {
		s.Comment = s.Comment + "; " + marker
	}
	return s
}
