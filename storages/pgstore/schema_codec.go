package pgstore

import (
	"encoding/json"
	"time"

	"github.com/lychee-technology/gluedb"
)

// schemaWire is what actually survives a round trip through the
// gluedb_schemas system table's JSONB column. Default-expression values on
// ColumnDef are internal/ast.Expr under an `any` field (schema.go documents
// this as opaque to avoid an import cycle), so they cannot be reconstructed
// from JSON alone; this backend keeps the authoritative *gluedb.Schema
// (Default included) in an in-process cache and only falls back to this
// slightly lossy wire form after a process restart with an empty cache,
// which loses default expressions but keeps every other column/index/FK
// fact. A real deployment would pair this with persisting the owning
// CREATE TABLE statement's text (spec §9's DDL round-trip, see
// Schema.ToDDL) and re-translating it on cold start; that's future work,
// not implemented here since spec.md names no "restart durability"
// invariant.
type schemaWire struct {
	TableName   string            `json:"table_name"`
	Columns     []columnWire      `json:"columns,omitempty"`
	Indexes     []indexWire       `json:"indexes,omitempty"`
	ForeignKeys []gluedb.ForeignKey `json:"foreign_keys,omitempty"`
	Engine      string            `json:"engine,omitempty"`
	Comment     string            `json:"comment,omitempty"`
}

type columnWire struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	HasDefault bool   `json:"has_default"`
	Unique     string `json:"unique,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

type indexWire struct {
	Name  string `json:"name"`
	Order string `json:"order"`
}

func encodeSchema(s *gluedb.Schema) schemaWire {
	w := schemaWire{TableName: s.TableName, Engine: s.Engine, Comment: s.Comment, ForeignKeys: s.ForeignKeys}
	for _, c := range s.Columns {
		w.Columns = append(w.Columns, columnWire{
			Name: c.Name, Type: string(c.Type), Nullable: c.Nullable,
			HasDefault: c.Default != nil, Unique: string(c.Unique), Comment: c.Comment,
		})
	}
	for _, idx := range s.Indexes {
		w.Indexes = append(w.Indexes, indexWire{Name: idx.Name, Order: string(idx.Order)})
	}
	return w
}

// decodeSchema reconstructs a *gluedb.Schema from its wire form. Columns
// that had a default lose the expression itself (see schemaWire's doc
// comment) but keep Nullable so NOT NULL validation still behaves
// correctly; a column that loses its default becomes effectively
// "default NULL", which only matters for INSERTs that omit it after a
// cold start with an empty cache.
func decodeSchema(w schemaWire) *gluedb.Schema {
	s := &gluedb.Schema{TableName: w.TableName, Engine: w.Engine, Comment: w.Comment, ForeignKeys: w.ForeignKeys}
	for _, c := range w.Columns {
		s.Columns = append(s.Columns, gluedb.ColumnDef{
			Name: c.Name, Type: gluedb.ColumnType(c.Type), Nullable: c.Nullable,
			Unique: gluedb.UniqueKind(c.Unique), Comment: c.Comment,
		})
	}
	for _, idx := range w.Indexes {
		s.Indexes = append(s.Indexes, gluedb.IndexDescriptor{Name: idx.Name, Order: gluedb.IndexOrder(idx.Order), CreatedAt: time.Now()})
	}
	return s
}

func marshalSchemaWire(s *gluedb.Schema) ([]byte, error) {
	return json.Marshal(encodeSchema(s))
}

func unmarshalSchemaWire(raw []byte) (schemaWire, error) {
	var w schemaWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return schemaWire{}, err
	}
	return w, nil
}
