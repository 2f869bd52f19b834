package gluedb

import "fmt"

// Row is one of Vec (positional, schema-bound) or Map (schemaless,
// string-keyed), per spec §3. Both satisfy this interface so the executor
// can treat scan/join/aggregate output uniformly; type switches at the
// DML boundary (insert/update validation) distinguish them where the
// distinction matters.
type Row interface {
	// Get looks up a value by column name, regardless of underlying shape.
	Get(column string) (Value, bool)
	// Columns returns the row's visible column names in display order.
	Columns() []string
	isRow()
}

// VecRow is a positional, schema-bound row: column order and count are
// fixed by the owning Schema.
type VecRow struct {
	ColumnNames []string
	Values      []Value
}

func (r VecRow) isRow() {}

func (r VecRow) Get(column string) (Value, bool) {
	for i, c := range r.ColumnNames {
		if c == column {
			return r.Values[i], true
		}
	}
	return Null, false
}

func (r VecRow) Columns() []string { return r.ColumnNames }

// MapRow is a schemaless, string-keyed row; its columns are discovered at
// read time (spec §3, glossary "Schemaless table").
type MapRow struct {
	Fields map[string]Value
}

func (r MapRow) isRow() {}

func (r MapRow) Get(column string) (Value, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

func (r MapRow) Columns() []string {
	cols := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		cols = append(cols, k)
	}
	return cols
}

// ValidateAgainstSchema checks a VecRow's length, names, and per-column
// type/nullability against a Schema's column-def list, per spec §3's Row
// lifecycle: "A row is created by INSERT ... mutated only via UPDATE which
// produces a new row ... destroyed via DELETE".
func ValidateAgainstSchema(row VecRow, schema *Schema) error {
	if schema.Columns == nil {
		return (&Error{Type: ErrExecute, Code: ErrCodeSchemaRowMismatch,
			Message: "schemaless table cannot validate a Vec row"}).WithTable(schema.TableName)
	}
	if len(row.Values) != len(schema.Columns) {
		return (&Error{Type: ErrExecute, Code: ErrCodeSchemaRowMismatch,
			Message: fmt.Sprintf("row has %d values, schema has %d columns", len(row.Values), len(schema.Columns))}).
			WithTable(schema.TableName)
	}
	for i, col := range schema.Columns {
		v := row.Values[i]
		if v.IsNull() {
			if !col.Nullable {
				return (&Error{Type: ErrValidate, Code: ErrCodeNotNullViolation,
					Message: fmt.Sprintf("column %q is not nullable", col.Name)}).
					WithTable(schema.TableName).WithColumn(col.Name)
			}
			continue
		}
		if !col.Type.accepts(v.Kind()) {
			return (&Error{Type: ErrValidate, Code: ErrCodeTypeViolation,
				Message: fmt.Sprintf("column %q expects %s, got %s", col.Name, col.Type, v.Kind()),
				Expected: string(col.Type), Actual: v.Kind().String()}).
				WithTable(schema.TableName).WithColumn(col.Name).WithValue(v)
		}
	}
	return nil
}
