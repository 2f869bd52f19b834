package memstore

import (
	"context"

	"github.com/lychee-technology/gluedb"
)

func (s *Store) RenameTable(ctx context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	schema, ok := st.schemas[oldName]
	if !ok {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound,
			Message: "table not found"}).WithTable(oldName)
	}
	cp := *schema
	cp.TableName = newName
	st.schemas[newName] = &cp
	delete(st.schemas, oldName)
	if td, ok := st.tables[oldName]; ok {
		st.tables[newName] = td
		delete(st.tables, oldName)
	}
	return nil
}

func (s *Store) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	schema, ok := st.schemas[table]
	if !ok {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound,
			Message: "table not found"}).WithTable(table)
	}
	cp := *schema
	cols := append([]gluedb.ColumnDef{}, schema.Columns...)
	found := false
	for i, c := range cols {
		if c.Name == oldName {
			cols[i].Name = newName
			found = true
		}
	}
	if !found {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeColumnNotFound,
			Message: "column not found"}).WithTable(table).WithColumn(oldName)
	}
	cp.Columns = cols
	st.schemas[table] = &cp

	td, ok := st.tables[table]
	if !ok {
		return nil
	}
	for k, kr := range td.rows {
		row, ok := kr.Row.(gluedb.MapRow)
		if !ok {
			continue
		}
		fields := make(map[string]gluedb.Value, len(row.Fields))
		for col, v := range row.Fields {
			if col == oldName {
				fields[newName] = v
			} else {
				fields[col] = v
			}
		}
		td.rows[k] = gluedb.KeyRow{Key: kr.Key, Row: gluedb.MapRow{Fields: fields}}
	}
	return nil
}

// AddColumn applies the executor-supplied rewrite to every existing row, so
// a backend with no lazy schema evolution (unlike a real RDBMS's ALTER
// TABLE) stays consistent immediately.
func (s *Store) AddColumn(ctx context.Context, table string, col gluedb.ColumnDef, rewrite gluedb.ColumnRewriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	schema, ok := st.schemas[table]
	if !ok {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound,
			Message: "table not found"}).WithTable(table)
	}
	cp := *schema
	cp.Columns = append(append([]gluedb.ColumnDef{}, schema.Columns...), col)
	st.schemas[table] = &cp

	td, ok := st.tables[table]
	if !ok {
		return nil
	}
	for k, kr := range td.rows {
		nr, err := rewrite(kr.Row)
		if err != nil {
			return err
		}
		td.rows[k] = gluedb.KeyRow{Key: kr.Key, Row: nr}
	}
	return nil
}

func (s *Store) DropColumn(ctx context.Context, table, column string, rewrite gluedb.ColumnRewriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.current()
	schema, ok := st.schemas[table]
	if !ok {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound,
			Message: "table not found"}).WithTable(table)
	}
	cp := *schema
	var kept []gluedb.ColumnDef
	for _, c := range schema.Columns {
		if c.Name != column {
			kept = append(kept, c)
		}
	}
	cp.Columns = kept
	st.schemas[table] = &cp

	td, ok := st.tables[table]
	if !ok {
		return nil
	}
	for k, kr := range td.rows {
		nr, err := rewrite(kr.Row)
		if err != nil {
			return err
		}
		td.rows[k] = gluedb.KeyRow{Key: kr.Key, Row: nr}
	}
	return nil
}
