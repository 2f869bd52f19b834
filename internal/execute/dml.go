package execute

import (
	"context"
	"fmt"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
	"github.com/lychee-technology/gluedb/internal/eval"
)

// runInsert implements spec §4.4's seven-step INSERT pipeline: resolve
// schema, align values to columns, fill defaults, validate type/nullability,
// validate uniqueness across the whole batch, validate foreign keys, then
// write.
func (ex *Executor) runInsert(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	schema, err := ex.Store.FetchSchema(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, (&gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTableNotFoundAtExec,
			Message: "table not found"}).WithTable(stmt.Table)
	}

	var sourceRows [][]gluedb.Value
	if stmt.InsertFrom != nil {
		payload, err := ex.runSelect(ctx, stmt.InsertFrom)
		if err != nil {
			return nil, err
		}
		sourceRows = payload.Rows
	} else {
		rc := &rowContext{ex: ex}
		for _, vrow := range stmt.ValuesRows {
			vals := make([]gluedb.Value, len(vrow))
			for i := range vrow {
				v, err := eval.Eval(&vrow[i], rc)
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			sourceRows = append(sourceRows, vals)
		}
	}

	if schema.IsSchemaless() {
		return ex.insertSchemaless(ctx, schema, stmt.Columns, sourceRows)
	}
	return ex.insertSchemaBound(ctx, schema, stmt.Columns, sourceRows)
}

func (ex *Executor) insertSchemaless(ctx context.Context, schema *gluedb.Schema, columns []string, sourceRows [][]gluedb.Value) (*gluedb.Payload, error) {
	if len(columns) == 0 {
		return nil, &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeSingleValueOnly,
			Message: "schemaless insert requires an explicit column list"}
	}
	rows := make([]gluedb.Row, 0, len(sourceRows))
	for _, vals := range sourceRows {
		if len(vals) != len(columns) {
			return nil, (&gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeSchemaRowMismatch,
				Message: "value count does not match column list"}).WithTable(schema.TableName)
		}
		fields := make(map[string]gluedb.Value, len(columns))
		for i, c := range columns {
			fields[c] = vals[i]
		}
		rows = append(rows, gluedb.MapRow{Fields: fields})
	}
	sm, ok := gluedb.AsStoreMut(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "StoreMut")
	}
	if _, err := sm.AppendData(ctx, schema.TableName, rows); err != nil {
		return nil, err
	}
	return &gluedb.Payload{Kind: gluedb.PayloadInsert, AffectedRows: len(rows)}, nil
}

func (ex *Executor) insertSchemaBound(ctx context.Context, schema *gluedb.Schema, columns []string, sourceRows [][]gluedb.Value) (*gluedb.Payload, error) {
	colNames := columns
	if len(colNames) == 0 {
		for _, c := range schema.Columns {
			colNames = append(colNames, c.Name)
		}
	}

	vecRows := make([]gluedb.VecRow, 0, len(sourceRows))
	for _, vals := range sourceRows {
		if len(vals) != len(colNames) {
			return nil, (&gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeSchemaRowMismatch,
				Message: "value count does not match column list"}).WithTable(schema.TableName)
		}
		byName := make(map[string]gluedb.Value, len(colNames))
		for i, c := range colNames {
			byName[c] = vals[i]
		}
		ordered := make([]gluedb.Value, len(schema.Columns))
		for i, col := range schema.Columns {
			v, given := byName[col.Name]
			if !given {
				dv, err := evaluateDefault(col)
				if err != nil {
					return nil, (&gluedb.Error{Type: gluedb.ErrValidate, Code: gluedb.ErrCodeNotNullViolation,
						Message: fmt.Sprintf("column %q omitted and has no default", col.Name)}).
						WithTable(schema.TableName).WithColumn(col.Name)
				}
				v = dv
			}
			ordered[i] = v
		}
		row := gluedb.VecRow{ColumnNames: columnNames(schema), Values: ordered}
		if err := gluedb.ValidateAgainstSchema(row, schema); err != nil {
			return nil, err
		}
		vecRows = append(vecRows, row)
	}

	if err := validateUniqueBatch(ctx, ex.Store, schema, vecRows); err != nil {
		return nil, err
	}
	if err := validateForeignKeysBatch(ctx, ex.Store, schema, vecRows); err != nil {
		return nil, err
	}

	sm, ok := gluedb.AsStoreMut(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "StoreMut")
	}

	pkCols := schema.PrimaryKeyColumns()
	if len(pkCols) == 0 {
		rows := make([]gluedb.Row, len(vecRows))
		for i, r := range vecRows {
			rows[i] = r
		}
		if _, err := sm.AppendData(ctx, schema.TableName, rows); err != nil {
			return nil, err
		}
		return &gluedb.Payload{Kind: gluedb.PayloadInsert, AffectedRows: len(rows)}, nil
	}

	pairs := make([]gluedb.KeyRow, 0, len(vecRows))
	for _, r := range vecRows {
		pkVal, _ := r.Get(pkCols[0])
		key, err := gluedb.NewKey(pkVal)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, gluedb.KeyRow{Key: key, Row: r})
	}
	if err := sm.InsertData(ctx, schema.TableName, pairs); err != nil {
		return nil, err
	}
	return &gluedb.Payload{Kind: gluedb.PayloadInsert, AffectedRows: len(pairs)}, nil
}

func columnNames(schema *gluedb.Schema) []string {
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	return names
}

// evaluateDefault evaluates a column's default expression. Per spec §4.2's
// stateless-ness rule, a default must not reference a column or subquery; it
// is evaluated against an empty row context, so a column reference surfaces
// as an unresolved-column error and a subquery as a not-supported error.
func evaluateDefault(col gluedb.ColumnDef) (gluedb.Value, error) {
	if col.Default == nil {
		if col.Nullable {
			return gluedb.Null, nil
		}
		return gluedb.Null, &gluedb.Error{Type: gluedb.ErrValidate, Code: gluedb.ErrCodeNotNullViolation,
			Message: fmt.Sprintf("column %q requires a value", col.Name)}
	}
	switch expr := col.Default.(type) {
	case ast.Expr:
		return eval.Eval(&expr, &rowContext{})
	case *ast.Expr:
		return eval.Eval(expr, &rowContext{})
	default:
		return gluedb.Null, fmt.Errorf("column %q default is not an ast.Expr", col.Name)
	}
}

// validateUniqueBatch checks spec §4.4 step 5: a new value must not collide
// with any existing row or any prior row in the same batch.
func validateUniqueBatch(ctx context.Context, store gluedb.Store, schema *gluedb.Schema, rows []gluedb.VecRow) error {
	for _, col := range schema.UniqueColumns() {
		seen := map[string]bool{}
		existing, err := scanColumnValues(ctx, store, schema.TableName, col)
		if err != nil {
			return err
		}
		for _, v := range existing {
			seen[v.String()] = true
		}
		for _, r := range rows {
			v, _ := r.Get(col)
			if v.IsNull() {
				continue
			}
			k := v.String()
			if seen[k] {
				return (&gluedb.Error{Type: gluedb.ErrValidate, Code: gluedb.ErrCodeUniqueViolation,
					Message: fmt.Sprintf("duplicate value for unique column %q", col)}).
					WithTable(schema.TableName).WithColumn(col).WithValue(v)
			}
			seen[k] = true
		}
	}
	return nil
}

func scanColumnValues(ctx context.Context, store gluedb.Store, table, column string) ([]gluedb.Value, error) {
	iter, err := store.ScanData(ctx, table)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []gluedb.Value
	for {
		_, row, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if v, ok := row.Get(column); ok && !v.IsNull() {
			out = append(out, v)
		}
	}
	return out, nil
}

// validateForeignKeysBatch checks spec §4.4 step 6: each referencing column
// value must exist in the referenced table's key space, unless Null.
func validateForeignKeysBatch(ctx context.Context, store gluedb.Store, schema *gluedb.Schema, rows []gluedb.VecRow) error {
	for _, fk := range schema.ForeignKeys {
		refVals, err := scanColumnValues(ctx, store, fk.ReferencedTable, fk.ReferencedColumn)
		if err != nil {
			return err
		}
		refSet := map[string]bool{}
		for _, v := range refVals {
			refSet[v.String()] = true
		}
		for _, r := range rows {
			v, _ := r.Get(fk.Column)
			if v.IsNull() {
				continue
			}
			if !refSet[v.String()] {
				return (&gluedb.Error{Type: gluedb.ErrValidate, Code: gluedb.ErrCodeForeignKeyViolation,
					Message: fmt.Sprintf("no row in %q.%q matches foreign key value", fk.ReferencedTable, fk.ReferencedColumn)}).
					WithTable(schema.TableName).WithColumn(fk.Column).WithValue(v)
			}
		}
	}
	return nil
}

// runUpdate fetches matching rows, applies assignments, re-validates
// unique/foreign-key constraints over the changed columns, and writes back.
func (ex *Executor) runUpdate(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	schema, err := ex.Store.FetchSchema(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, (&gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTableNotFoundAtExec,
			Message: "table not found"}).WithTable(stmt.Table)
	}
	iter, err := ex.Store.ScanData(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var pairs []gluedb.KeyRow
	changedCols := map[string]bool{}
	for _, a := range stmt.Assignments {
		changedCols[a.Column] = true
	}

	for {
		key, row, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rc := &rowContext{ex: ex, rows: []boundRow{{alias: stmt.Table, row: row}}}
		if stmt.Where != nil {
			v, err := eval.Eval(stmt.Where, rc)
			if err != nil {
				return nil, err
			}
			if b, ok := v.Bool(); !ok || !b {
				continue
			}
		}
		newRow, err := applyAssignments(schema, row, stmt.Assignments, rc)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, gluedb.KeyRow{Key: key, Row: newRow})
	}

	if !schema.IsSchemaless() && len(pairs) > 0 {
		changedRows := make([]gluedb.VecRow, 0, len(pairs))
		for _, p := range pairs {
			if vr, ok := p.Row.(gluedb.VecRow); ok {
				changedRows = append(changedRows, vr)
			}
		}
		if err := validateUniqueAmongChanged(ctx, ex.Store, schema, changedRows, changedCols); err != nil {
			return nil, err
		}
		if err := validateForeignKeysBatch(ctx, ex.Store, schema, changedRows); err != nil {
			return nil, err
		}
	}

	sm, ok := gluedb.AsStoreMut(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "StoreMut")
	}
	if len(pairs) > 0 {
		if err := sm.UpdateData(ctx, stmt.Table, pairs); err != nil {
			return nil, err
		}
	}
	return &gluedb.Payload{Kind: gluedb.PayloadUpdate, AffectedRows: len(pairs)}, nil
}

// validateUniqueAmongChanged only checks columns actually touched by the
// UPDATE's SET list, per spec §4.4's Update operation note.
func validateUniqueAmongChanged(ctx context.Context, store gluedb.Store, schema *gluedb.Schema, rows []gluedb.VecRow, changedCols map[string]bool) error {
	for _, col := range schema.UniqueColumns() {
		if !changedCols[col] {
			continue
		}
		existing, err := scanColumnValues(ctx, store, schema.TableName, col)
		if err != nil {
			return err
		}
		counts := map[string]int{}
		for _, v := range existing {
			counts[v.String()]++
		}
		for _, r := range rows {
			v, _ := r.Get(col)
			if v.IsNull() {
				continue
			}
			if counts[v.String()] > 1 {
				return (&gluedb.Error{Type: gluedb.ErrValidate, Code: gluedb.ErrCodeUniqueViolation,
					Message: fmt.Sprintf("duplicate value for unique column %q", col)}).
					WithTable(schema.TableName).WithColumn(col).WithValue(v)
			}
		}
	}
	return nil
}

func applyAssignments(schema *gluedb.Schema, row gluedb.Row, assignments []ast.Assignment, rc *rowContext) (gluedb.Row, error) {
	if schema.IsSchemaless() {
		fields := map[string]gluedb.Value{}
		for _, c := range row.Columns() {
			v, _ := row.Get(c)
			fields[c] = v
		}
		for _, a := range assignments {
			v, err := eval.Eval(&a.Value, rc)
			if err != nil {
				return nil, err
			}
			fields[a.Column] = v
		}
		return gluedb.MapRow{Fields: fields}, nil
	}
	values := make([]gluedb.Value, len(schema.Columns))
	for i, col := range schema.Columns {
		v, _ := row.Get(col.Name)
		values[i] = v
	}
	for _, a := range assignments {
		v, err := eval.Eval(&a.Value, rc)
		if err != nil {
			return nil, err
		}
		for i, col := range schema.Columns {
			if col.Name == a.Column {
				values[i] = v
			}
		}
	}
	newRow := gluedb.VecRow{ColumnNames: columnNames(schema), Values: values}
	if err := gluedb.ValidateAgainstSchema(newRow, schema); err != nil {
		return nil, err
	}
	return newRow, nil
}

// runDelete fetches matching keys and issues a single delete_data call.
func (ex *Executor) runDelete(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	schema, err := ex.Store.FetchSchema(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, (&gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTableNotFoundAtExec,
			Message: "table not found"}).WithTable(stmt.Table)
	}
	iter, err := ex.Store.ScanData(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys []gluedb.Key
	for {
		key, row, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if stmt.Where != nil {
			rc := &rowContext{ex: ex, rows: []boundRow{{alias: stmt.Table, row: row}}}
			v, err := eval.Eval(stmt.Where, rc)
			if err != nil {
				return nil, err
			}
			if b, ok := v.Bool(); !ok || !b {
				continue
			}
		}
		keys = append(keys, key)
	}

	sm, ok := gluedb.AsStoreMut(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "StoreMut")
	}
	if len(keys) > 0 {
		if err := sm.DeleteData(ctx, stmt.Table, keys); err != nil {
			return nil, err
		}
	}
	return &gluedb.Payload{Kind: gluedb.PayloadDelete, AffectedRows: len(keys)}, nil
}
