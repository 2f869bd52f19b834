package execute

import (
	"context"
	"fmt"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

func (ex *Executor) runCreateTable(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	if err := stmt.Schema.Validate(); err != nil {
		return nil, err
	}
	sm, ok := gluedb.AsStoreMut(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "StoreMut")
	}
	if err := sm.InsertSchema(ctx, stmt.Schema); err != nil {
		return nil, err
	}
	return &gluedb.Payload{Kind: gluedb.PayloadCreate}, nil
}

func (ex *Executor) runDropTable(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	schema, err := ex.Store.FetchSchema(ctx, stmt.Table)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		if stmt.IfExists {
			return &gluedb.Payload{Kind: gluedb.PayloadDropTable}, nil
		}
		return nil, (&gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTableNotFoundAtExec,
			Message: "table not found"}).WithTable(stmt.Table)
	}
	if err := ex.rejectIfReferenced(ctx, stmt.Table, ""); err != nil {
		return nil, err
	}
	sm, ok := gluedb.AsStoreMut(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "StoreMut")
	}
	if err := sm.DeleteSchema(ctx, stmt.Table); err != nil {
		return nil, err
	}
	return &gluedb.Payload{Kind: gluedb.PayloadDropTable}, nil
}

// rejectIfReferenced implements spec §4.4's ALTER/DROP rule: a table or
// column may not be removed while another table's foreign key still points
// at it. column == "" checks for any foreign key into the whole table.
func (ex *Executor) rejectIfReferenced(ctx context.Context, table, column string) error {
	schemas, err := ex.Store.FetchAllSchemas(ctx)
	if err != nil {
		return err
	}
	for _, s := range schemas {
		for _, fk := range s.ForeignKeys {
			if fk.ReferencedTable != table {
				continue
			}
			if column != "" && fk.ReferencedColumn != column {
				continue
			}
			return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeColumnReferenced,
				Message: fmt.Sprintf("referenced by foreign key from table %q", s.TableName)}).
				WithTable(table).WithColumn(column)
		}
	}
	return nil
}

func (ex *Executor) runAlterTable(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	at, ok := gluedb.AsAlterTable(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "AlterTable")
	}
	switch stmt.AlterKind {
	case ast.AlterRenameTable:
		if err := at.RenameTable(ctx, stmt.Table, stmt.NewName); err != nil {
			return nil, err
		}
	case ast.AlterRenameColumn:
		if err := at.RenameColumn(ctx, stmt.Table, stmt.OldName, stmt.NewName); err != nil {
			return nil, err
		}
	case ast.AlterAddColumn:
		if err := ex.runAddColumn(ctx, at, stmt); err != nil {
			return nil, err
		}
	case ast.AlterDropColumn:
		if err := ex.runDropColumn(ctx, at, stmt); err != nil {
			return nil, err
		}
	default:
		return nil, gluedb.NotSupported("execute", string(stmt.AlterKind))
	}
	return &gluedb.Payload{Kind: gluedb.PayloadAlterTable}, nil
}

// runAddColumn requires a default expression or an explicitly nullable
// column, unless the table is currently empty (spec §4.4: "default or
// nullable required unless the table is empty").
func (ex *Executor) runAddColumn(ctx context.Context, at gluedb.AlterTable, stmt *ast.Statement) error {
	col := stmt.NewColumn
	if col.Default == nil && !col.Nullable {
		empty, err := ex.tableIsEmpty(ctx, stmt.Table)
		if err != nil {
			return err
		}
		if !empty {
			return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeDefaultRequired,
				Message: fmt.Sprintf("column %q needs a default or must be nullable on a non-empty table", col.Name)}).
				WithTable(stmt.Table).WithColumn(col.Name)
		}
	}
	rewrite := func(old gluedb.Row) (gluedb.Row, error) {
		v, err := evaluateDefault(col)
		if err != nil {
			v = gluedb.Null
		}
		fields := map[string]gluedb.Value{}
		for _, c := range old.Columns() {
			fv, _ := old.Get(c)
			fields[c] = fv
		}
		fields[col.Name] = v
		return gluedb.MapRow{Fields: fields}, nil
	}
	return at.AddColumn(ctx, stmt.Table, col, rewrite)
}

func (ex *Executor) runDropColumn(ctx context.Context, at gluedb.AlterTable, stmt *ast.Statement) error {
	if err := ex.rejectIfReferenced(ctx, stmt.Table, stmt.OldName); err != nil {
		return err
	}
	rewrite := func(old gluedb.Row) (gluedb.Row, error) {
		fields := map[string]gluedb.Value{}
		for _, c := range old.Columns() {
			if c == stmt.OldName {
				continue
			}
			fv, _ := old.Get(c)
			fields[c] = fv
		}
		return gluedb.MapRow{Fields: fields}, nil
	}
	return at.DropColumn(ctx, stmt.Table, stmt.OldName, rewrite)
}

func (ex *Executor) tableIsEmpty(ctx context.Context, table string) (bool, error) {
	iter, err := ex.Store.ScanData(ctx, table)
	if err != nil {
		return false, err
	}
	defer iter.Close()
	_, _, ok, err := iter.Next(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
