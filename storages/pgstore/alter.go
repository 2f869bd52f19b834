package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/lychee-technology/gluedb"
)

func (s *Store) RenameTable(ctx context.Context, oldName, newName string) error {
	schema, err := s.FetchSchema(ctx, oldName)
	if err != nil {
		return err
	}
	if schema == nil {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound, Message: "table not found"}).WithTable(oldName)
	}
	q := s.q()
	_, err = q.Exec(ctx, `ALTER TABLE `+pgx.Identifier{tableName(oldName)}.Sanitize()+` RENAME TO `+pgx.Identifier{tableName(newName)}.Sanitize())
	if err != nil {
		return classifyError(err)
	}
	schema.TableName = newName
	if err := s.InsertSchema(ctx, schema); err != nil {
		return err
	}
	_, err = q.Exec(ctx, `DELETE FROM `+systemTable+` WHERE table_name = $1`, oldName)
	if err != nil {
		return classifyError(err)
	}
	s.mu.Lock()
	delete(s.cache, oldName)
	s.mu.Unlock()
	return nil
}

func (s *Store) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return err
	}
	if schema == nil {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound, Message: "table not found"}).WithTable(table)
	}
	found := false
	for i, c := range schema.Columns {
		if c.Name == oldName {
			schema.Columns[i].Name = newName
			found = true
		}
	}
	if !found {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeColumnNotFound, Message: "column not found"}).WithTable(table).WithColumn(oldName)
	}
	if err := s.InsertSchema(ctx, schema); err != nil {
		return err
	}
	return s.rewriteRows(ctx, table, func(row gluedb.Row) (gluedb.Row, error) {
		m, ok := row.(gluedb.MapRow)
		if !ok {
			return row, nil
		}
		fields := make(map[string]gluedb.Value, len(m.Fields))
		for c, v := range m.Fields {
			if c == oldName {
				fields[newName] = v
			} else {
				fields[c] = v
			}
		}
		return gluedb.MapRow{Fields: fields}, nil
	})
}

func (s *Store) AddColumn(ctx context.Context, table string, col gluedb.ColumnDef, rewrite gluedb.ColumnRewriter) error {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return err
	}
	if schema == nil {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound, Message: "table not found"}).WithTable(table)
	}
	schema.Columns = append(schema.Columns, col)
	if err := s.InsertSchema(ctx, schema); err != nil {
		return err
	}
	return s.rewriteRows(ctx, table, rewrite)
}

func (s *Store) DropColumn(ctx context.Context, table, column string, rewrite gluedb.ColumnRewriter) error {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return err
	}
	if schema == nil {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound, Message: "table not found"}).WithTable(table)
	}
	var kept []gluedb.ColumnDef
	for _, c := range schema.Columns {
		if c.Name != column {
			kept = append(kept, c)
		}
	}
	schema.Columns = kept
	if err := s.InsertSchema(ctx, schema); err != nil {
		return err
	}
	return s.rewriteRows(ctx, table, rewrite)
}

// rewriteRows applies a ColumnRewriter to every row of table in place,
// mirroring storages/memstore's eager-rewrite AlterTable behavior (see
// storage.go's ColumnRewriter doc comment) since pgstore's rows are opaque
// JSONB blobs the database itself cannot reshape without knowing gluedb's
// Row encoding.
func (s *Store) rewriteRows(ctx context.Context, table string, rewrite gluedb.ColumnRewriter) error {
	iter, err := s.ScanData(ctx, table)
	if err != nil {
		return err
	}
	defer iter.Close()

	var pairs []gluedb.KeyRow
	for {
		key, row, ok, err := iter.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		nr, err := rewrite(row)
		if err != nil {
			return err
		}
		pairs = append(pairs, gluedb.KeyRow{Key: key, Row: nr})
	}
	if len(pairs) == 0 {
		return nil
	}
	return s.UpdateData(ctx, table, pairs)
}
