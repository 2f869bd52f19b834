package s3store

import (
	"encoding/json"
	"time"

	"github.com/lychee-technology/gluedb"
)

// schemaWire mirrors storages/pgstore's schema_codec.go: Default-expression
// values are internal/ast.Expr under ColumnDef.Default's opaque `any` field
// and cannot be reconstructed from JSON, so this wire form only records
// HasDefault. Unlike the SQL-backed stores, s3store keeps no in-process
// schema cache, so a column's Default is lost for good once its schema
// round-trips through S3 once.
type schemaWire struct {
	TableName   string              `json:"table_name"`
	Columns     []columnWire        `json:"columns,omitempty"`
	Indexes     []indexWire         `json:"indexes,omitempty"`
	ForeignKeys []gluedb.ForeignKey `json:"foreign_keys,omitempty"`
	Engine      string              `json:"engine,omitempty"`
	Comment     string              `json:"comment,omitempty"`
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
