// Package plan resolves an internal/ast.Statement against live schema
// metadata and produces a Plan: the table to scan, which index (if any)
// satisfies one comparison of the WHERE clause, and the residual filter.
// It does not consider ORDER BY or LIMIT, and internal/execute does not
// call Planner.Plan (it uses only EquiJoinKey). Adapted from
// internal/queryoptimizer/optimizer.go's predicate-normalization structure,
// generalized from EAV attribute bindings to plain SQL column resolution.
package plan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

// SchemaLookup resolves table names to their live Schema, the same
// capability internal/execute gets from a gluedb.Store.
type SchemaLookup interface {
	FetchSchema(ctx context.Context, table string) (*gluedb.Schema, error)
}

// Plan is the planner's output: a table to scan (or nil, for a VALUES-only
// SELECT), an optional IndexRange the storage layer can use instead of a
// full scan, and the surviving WHERE residual that must still be evaluated
// row-by-row (because not every predicate maps onto an index).
type Plan struct {
	Statement *ast.Statement
	Schema    *gluedb.Schema
	IndexHint *gluedb.IndexRange
	Residual  *ast.Expr
}

// Planner resolves statements against schema metadata.
type Planner struct {
	store SchemaLookup
	log   *zap.SugaredLogger
}

// New constructs a Planner bound to a schema source and logger, mirroring
// internal/queryoptimizer/optimizer.go's zap.SugaredLogger injection.
func New(store SchemaLookup, log *zap.SugaredLogger) *Planner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Planner{store: store, log: log}
}

// Plan resolves a statement's table reference(s) and selects an index for
// its WHERE clause, if one of the schema's declared indexes matches.
func (p *Planner) Plan(ctx context.Context, stmt *ast.Statement) (*Plan, error) {
	table := tableName(stmt)
	if table == "" {
		return &Plan{Statement: stmt}, nil
	}
	schema, err := p.store.FetchSchema(ctx, table)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, &gluedb.Error{Type: gluedb.ErrPlan, Code: gluedb.ErrCodeSchemaNotFound,
			Message: fmt.Sprintf("table %q not found", table)}
	}
	result := &Plan{Statement: stmt, Schema: schema}

	where := whereExpr(stmt)
	if where == nil {
		return result, nil
	}
	hint, residual := p.selectIndex(schema, where)
	result.IndexHint = hint
	result.Residual = residual
	p.log.Debugw("planned statement", "table", table, "indexed", hint != nil)
	return result, nil
}

func tableName(stmt *ast.Statement) string {
	switch stmt.Kind {
	case ast.StmtSelect:
		if stmt.Select != nil && stmt.Select.From != nil {
			return stmt.Select.From.Name
		}
		return ""
	case ast.StmtInsert, ast.StmtUpdate, ast.StmtDelete, ast.StmtAlterTable:
		return stmt.Table
	default:
		return ""
	}
}

func whereExpr(stmt *ast.Statement) *ast.Expr {
	switch stmt.Kind {
	case ast.StmtSelect:
		if stmt.Select != nil {
			return stmt.Select.Where
		}
	case ast.StmtUpdate, ast.StmtDelete:
		return stmt.Where
	}
	return nil
}

// selectIndex walks the WHERE clause bottom-up (as an AND-tree) looking for
// a single equality/range comparison, or an IS [NOT] NULL check, against an
// indexed expression, per spec §4.3's "the planner may choose an index scan
// when the WHERE clause contains a comparison against an indexed
// expression". Anything not absorbed by the chosen index remains as the
// residual filter.
func (p *Planner) selectIndex(schema *gluedb.Schema, where *ast.Expr) (*gluedb.IndexRange, *ast.Expr) {
	conjuncts := splitConjuncts(where)
	for i, c := range conjuncts {
		if c.Kind == ast.ExprIsNull {
			if c.Operand == nil || c.Operand.Kind != ast.ExprColumnRef {
				continue
			}
			key := ast.CanonicalKey(*c.Operand)
			idx, found := schema.IndexFor(key, ast.CanonicalKey)
			if !found {
				continue
			}
			check := "IS NULL"
			if c.Negated {
				check = "IS NOT NULL"
			}
			rng := &gluedb.IndexRange{IndexName: idx.Name, IsNullCheck: check}
			residual := rejoin(append(conjuncts[:i:i], conjuncts[i+1:]...))
			return rng, residual
		}
		if c.Kind != ast.ExprBinary {
			continue
		}
		if !isIndexableOp(c.Op) {
			continue
		}
		colExpr, boundExpr, ok := splitColumnBound(c)
		if !ok {
			continue
		}
		key := ast.CanonicalKey(colExpr)
		idx, found := schema.IndexFor(key, ast.CanonicalKey)
		if !found {
			continue
		}
		if boundExpr.Kind != ast.ExprLiteral {
			continue
		}
		rng := &gluedb.IndexRange{IndexName: idx.Name, Operator: c.Op, Bound: boundExpr.Literal}
		residual := rejoin(append(conjuncts[:i:i], conjuncts[i+1:]...))
		return rng, residual
	}
	return nil, where
}

func splitConjuncts(e *ast.Expr) []ast.Expr {
	if e == nil {
		return nil
	}
	if e.Kind == ast.ExprFunction && e.FuncName == "AND" {
		var out []ast.Expr
		for i := range e.Args {
			out = append(out, splitConjuncts(&e.Args[i])...)
		}
		return out
	}
	return []ast.Expr{*e}
}

func rejoin(conjuncts []ast.Expr) *ast.Expr {
	if len(conjuncts) == 0 {
		return nil
	}
	result := conjuncts[0]
	for i := 1; i < len(conjuncts); i++ {
		c := conjuncts[i]
		result = ast.Expr{Kind: ast.ExprFunction, FuncName: "AND", Args: []ast.Expr{result, c}}
	}
	return &result
}

func isIndexableOp(op gluedb.BinaryOp) bool {
	switch op {
	case gluedb.OpEq, gluedb.OpLt, gluedb.OpLtEq, gluedb.OpGt, gluedb.OpGtEq:
		return true
	}
	return false
}

// EquiJoinKey marks an ON clause as an equi-join internal/execute's hash
// join can use: a plain `left.col = right.col` (in either operand order)
// comparison against the join's own right-hand table alias. Anything else
// (a composite condition, a non-column operand, CROSS JOIN's nil On) falls
// back to the nested-loop join instead.
func EquiJoinKey(on *ast.Expr, rightAlias string) (leftKey, rightKey *ast.Expr, ok bool) {
	if on == nil || on.Kind != ast.ExprBinary || on.Op != gluedb.OpEq {
		return nil, nil, false
	}
	if on.Left == nil || on.Right == nil ||
		on.Left.Kind != ast.ExprColumnRef || on.Right.Kind != ast.ExprColumnRef {
		return nil, nil, false
	}
	switch {
	case on.Right.Table == rightAlias && on.Left.Table != rightAlias:
		return on.Left, on.Right, true
	case on.Left.Table == rightAlias && on.Right.Table != rightAlias:
		return on.Right, on.Left, true
	default:
		return nil, nil, false
	}
}

func splitColumnBound(e ast.Expr) (colExpr, boundExpr ast.Expr, ok bool) {
	if e.Left.Kind == ast.ExprColumnRef && e.Right.Kind == ast.ExprLiteral {
		return *e.Left, *e.Right, true
	}
	if e.Right.Kind == ast.ExprColumnRef && e.Left.Kind == ast.ExprLiteral {
		return *e.Right, *e.Left, true
	}
	return ast.Expr{}, ast.Expr{}, false
}
