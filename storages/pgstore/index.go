package pgstore

import (
	"context"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

// ScanIndex filters a full ScanData the same way storages/memstore does.
// A production-grade pgstore would instead maintain a real Postgres
// expression index over (row_data ->> 'column') and let Postgres's planner
// do the range scan; that is future work (spec.md names no requirement
// that a backend's index be algorithmically faster than a scan, only that
// its result set agree with one, invariant 7).
func (s *Store) ScanIndex(ctx context.Context, table string, rng gluedb.IndexRange) (gluedb.RowIter, error) {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, &gluedb.Error{Type: gluedb.ErrPlan, Code: gluedb.ErrCodeSchemaNotFound, Message: "table not found"}
	}
	var idx gluedb.IndexDescriptor
	found := false
	for _, i := range schema.Indexes {
		if i.Name == rng.IndexName {
			idx, found = i, true
			break
		}
	}
	if !found {
		return nil, &gluedb.Error{Type: gluedb.ErrPlan, Code: gluedb.ErrCodeSchemaNotFound, Message: "index not found: " + rng.IndexName}
	}
	column, ok := indexColumnName(idx.Expr)
	if !ok {
		return nil, gluedb.NotSupported("pgstore", "non-column index expression")
	}

	iter, err := s.ScanData(ctx, table)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var matched []gluedb.KeyRow
	for {
		key, row, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		v, ok := row.Get(column)
		if !ok {
			continue
		}
		if rng.IsNullCheck != "" {
			isNull := v.IsNull()
			if rng.IsNullCheck == "IS NULL" && !isNull {
				continue
			}
			if rng.IsNullCheck == "IS NOT NULL" && isNull {
				continue
			}
			matched = append(matched, gluedb.KeyRow{Key: key, Row: row})
			continue
		}
		cmp, isNull, err := v.Compare(rng.Bound)
		if err != nil || isNull {
			continue
		}
		if satisfiesRange(rng.Operator, cmp) {
			matched = append(matched, gluedb.KeyRow{Key: key, Row: row})
		}
	}
	return &memResultIter{pairs: matched}, nil
}

func satisfiesRange(op gluedb.BinaryOp, cmp int) bool {
	switch op {
	case gluedb.OpEq:
		return cmp == 0
	case gluedb.OpLt:
		return cmp < 0
	case gluedb.OpLtEq:
		return cmp <= 0
	case gluedb.OpGt:
		return cmp > 0
	case gluedb.OpGtEq:
		return cmp >= 0
	}
	return false
}

func indexColumnName(expr any) (string, bool) {
	switch e := expr.(type) {
	case ast.Expr:
		if e.Kind == ast.ExprColumnRef {
			return e.Column, true
		}
	case *ast.Expr:
		if e != nil && e.Kind == ast.ExprColumnRef {
			return e.Column, true
		}
	}
	return "", false
}

type memResultIter struct {
	pairs []gluedb.KeyRow
	pos   int
}

func (it *memResultIter) Next(ctx context.Context) (gluedb.Key, gluedb.Row, bool, error) {
	if it.pos >= len(it.pairs) {
		return gluedb.Key{}, nil, false, nil
	}
	p := it.pairs[it.pos]
	it.pos++
	return p.Key, p.Row, true, nil
}

func (it *memResultIter) Close() error { return nil }

func (s *Store) CreateIndex(ctx context.Context, table string, idx gluedb.IndexDescriptor) error {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return err
	}
	if schema == nil {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound, Message: "table not found"}).WithTable(table)
	}
	schema.Indexes = append(schema.Indexes, idx)
	return s.InsertSchema(ctx, schema)
}

func (s *Store) DropIndex(ctx context.Context, table, indexName string) error {
	schema, err := s.FetchSchema(ctx, table)
	if err != nil {
		return err
	}
	if schema == nil {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound, Message: "table not found"}).WithTable(table)
	}
	var kept []gluedb.IndexDescriptor
	for _, i := range schema.Indexes {
		if i.Name != indexName {
			kept = append(kept, i)
		}
	}
	schema.Indexes = kept
	return s.InsertSchema(ctx, schema)
}
