package memstore

import (
	"context"
	"sort"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

// ScanIndex satisfies spec §7 invariant 7 ("for any WHERE the planner
// converts to an index range, the result set equals that of the same query
// executed with the index disabled") the simple way: a full scan filtered by
// the range. memstore keeps no separate index structure; CreateIndex only
// records the descriptor so FetchSchema/ShowIndexes can report it.
func (s *Store) ScanIndex(ctx context.Context, table string, rng gluedb.IndexRange) (gluedb.RowIter, error) {
	s.mu.RLock()
	schema, ok := s.current().schemas[table]
	s.mu.RUnlock()
	if !ok {
		return nil, &gluedb.Error{Type: gluedb.ErrPlan, Code: gluedb.ErrCodeSchemaNotFound,
			Message: "table not found"}
	}
	var idx gluedb.IndexDescriptor
	found := false
	for _, i := range schema.Indexes {
		if i.Name == rng.IndexName {
			found = true
			idx = i
			break
		}
	}
	if !found {
		return nil, &gluedb.Error{Type: gluedb.ErrPlan, Code: gluedb.ErrCodeSchemaNotFound,
			Message: "index not found: " + rng.IndexName}
	}
	column, ok := indexColumnName(idx.Expr)
	if !ok {
		return nil, gluedb.NotSupported("memstore", "non-column index expression")
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
	sort.Slice(matched, func(i, j int) bool {
		c, err := matched[i].Key.Compare(matched[j].Key)
		return err == nil && c < 0
	})
	return &sliceIter{pairs: matched}, nil
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

func (s *Store) CreateIndex(ctx context.Context, table string, idx gluedb.IndexDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.current().schemas[table]
	if !ok {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound,
			Message: "table not found"}).WithTable(table)
	}
	cp := *schema
	cp.Indexes = append(append([]gluedb.IndexDescriptor{}, schema.Indexes...), idx)
	s.current().schemas[table] = &cp
	return nil
}

func (s *Store) DropIndex(ctx context.Context, table, indexName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.current().schemas[table]
	if !ok {
		return (&gluedb.Error{Type: gluedb.ErrAlter, Code: gluedb.ErrCodeTableNotFound,
			Message: "table not found"}).WithTable(table)
	}
	cp := *schema
	var kept []gluedb.IndexDescriptor
	for _, i := range schema.Indexes {
		if i.Name != indexName {
			kept = append(kept, i)
		}
	}
	cp.Indexes = kept
	s.current().schemas[table] = &cp
	return nil
}
