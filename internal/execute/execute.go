// Package execute implements spec §4.4's statement operators: Scan, Filter,
// Join, Aggregate, Projection, Sort, Limit/Offset, Insert, Update, Delete,
// DDL, and the transaction state machine. It is the only package that calls
// into a gluedb.Store/StoreMut and its optional capabilities.
package execute

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
	"github.com/lychee-technology/gluedb/internal/eval"
	"github.com/lychee-technology/gluedb/internal/plan"
)

// Executor runs a translated Statement against a storage backend.
type Executor struct {
	Store   gluedb.Store
	Planner *plan.Planner
	log     *zap.SugaredLogger

	txState    gluedb.TxState
	autocommit bool
}

// New constructs an Executor over a storage backend.
func New(store gluedb.Store, log *zap.SugaredLogger) *Executor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Executor{
		Store:      store,
		Planner:    plan.New(store, log),
		log:        log,
		txState:    gluedb.TxIdle,
		autocommit: true,
	}
}

// Execute runs one statement end to end, wrapping it in an implicit
// transaction when the backend supports one and no explicit transaction is
// already open (spec §4.4's autocommit wrapper).
func (ex *Executor) Execute(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	switch stmt.Kind {
	case ast.StmtStartTransaction:
		return ex.beginTx(ctx)
	case ast.StmtCommit:
		return ex.commitTx(ctx)
	case ast.StmtRollback:
		return ex.rollbackTx(ctx)
	}

	implicit := false
	if tx, ok := gluedb.AsTransaction(ex.Store); ok && ex.txState == gluedb.TxIdle {
		if _, err := tx.Begin(ctx, true); err != nil {
			return nil, err
		}
		ex.txState = gluedb.TxActive
		implicit = true
	}

	payload, execErr := ex.dispatch(ctx, stmt)

	if implicit {
		tx, _ := gluedb.AsTransaction(ex.Store)
		if execErr != nil {
			_ = tx.Rollback(ctx)
		} else {
			execErr = tx.Commit(ctx)
		}
		ex.txState = gluedb.TxIdle
	}
	if execErr != nil {
		return nil, execErr
	}
	return payload, nil
}

func (ex *Executor) dispatch(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	switch stmt.Kind {
	case ast.StmtSelect:
		return ex.runSelect(ctx, stmt)
	case ast.StmtInsert:
		return ex.runInsert(ctx, stmt)
	case ast.StmtUpdate:
		return ex.runUpdate(ctx, stmt)
	case ast.StmtDelete:
		return ex.runDelete(ctx, stmt)
	case ast.StmtCreateTable:
		return ex.runCreateTable(ctx, stmt)
	case ast.StmtDropTable:
		return ex.runDropTable(ctx, stmt)
	case ast.StmtAlterTable:
		return ex.runAlterTable(ctx, stmt)
	case ast.StmtCreateIndex:
		return ex.runCreateIndex(ctx, stmt)
	case ast.StmtDropIndex:
		return ex.runDropIndex(ctx, stmt)
	case ast.StmtShowColumns:
		return ex.runShowColumns(ctx, stmt)
	case ast.StmtShowIndexes:
		return ex.runShowIndexes(ctx, stmt)
	case ast.StmtShowVariable:
		return ex.runShowVariable(ctx, stmt)
	default:
		return nil, gluedb.NotSupported("execute", string(stmt.Kind))
	}
}

func (ex *Executor) beginTx(ctx context.Context) (*gluedb.Payload, error) {
	tx, ok := gluedb.AsTransaction(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "Transaction")
	}
	if ex.txState == gluedb.TxActive {
		return nil, &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "a transaction is already open"}
	}
	if _, err := tx.Begin(ctx, false); err != nil {
		return nil, err
	}
	ex.txState = gluedb.TxActive
	return &gluedb.Payload{Kind: gluedb.PayloadStartTransaction}, nil
}

func (ex *Executor) commitTx(ctx context.Context) (*gluedb.Payload, error) {
	tx, ok := gluedb.AsTransaction(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "Transaction")
	}
	if ex.txState != gluedb.TxActive {
		return nil, &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "no transaction is open"}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ex.txState = gluedb.TxIdle
	return &gluedb.Payload{Kind: gluedb.PayloadCommit}, nil
}

func (ex *Executor) rollbackTx(ctx context.Context) (*gluedb.Payload, error) {
	tx, ok := gluedb.AsTransaction(ex.Store)
	if !ok {
		return nil, gluedb.NotSupported("execute", "Transaction")
	}
	if ex.txState != gluedb.TxActive {
		return nil, &gluedb.Error{Type: gluedb.ErrExecute, Code: gluedb.ErrCodeTransactionState,
			Message: "no transaction is open"}
	}
	if err := tx.Rollback(ctx); err != nil {
		return nil, err
	}
	ex.txState = gluedb.TxIdle
	return &gluedb.Payload{Kind: gluedb.PayloadRollback}, nil
}

// --- SELECT ---

// boundRow pairs a table alias with the Row found at that position of a
// (possibly joined) scan, so rowContext.Column can resolve "t.col" and
// "col" against the right source.
type boundRow struct {
	alias string
	row   gluedb.Row
}

type rowContext struct {
	ex    *Executor
	rows  []boundRow
	outer *rowContext // enclosing row, for correlated subqueries
}

func (rc *rowContext) Column(table, column string) (gluedb.Value, error) {
	for _, b := range rc.rows {
		if table != "" && b.alias != table {
			continue
		}
		if v, ok := b.row.Get(column); ok {
			return v, nil
		}
	}
	if rc.outer != nil {
		return rc.outer.Column(table, column)
	}
	return gluedb.Null, &gluedb.Error{Type: gluedb.ErrPlan, Code: gluedb.ErrCodeUnresolvedColumn,
		Message: fmt.Sprintf("column %q not found", column)}
}

func (rc *rowContext) RunSubquery(stmt *ast.Statement) ([]gluedb.Value, error) {
	if rc.ex == nil {
		return nil, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeNotSupported,
			Message: "subqueries are not permitted here"}
	}
	inner := &rowContext{ex: rc.ex, outer: rc}
	payload, err := rc.ex.runSelectWithParent(context.Background(), stmt, inner)
	if err != nil {
		return nil, err
	}
	out := make([]gluedb.Value, 0, len(payload.Rows))
	for _, row := range payload.Rows {
		if len(row) != 1 {
			return nil, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeScalarSubqueryArity,
				Message: "subquery must return exactly one column"}
		}
		out = append(out, row[0])
	}
	return out, nil
}

func (rc *rowContext) CallFunction(name string, args []gluedb.Value) (gluedb.Value, error) {
	if rc.ex != nil && rc.ex.Store != nil {
		if cf, ok := gluedb.AsCustomFunction(rc.ex.Store); ok {
			if fn, found := cf.LookupFunction(name); found {
				return fn.Call(args)
			}
		}
	}
	if v, ok, err := eval.CallBuiltin(name, args); ok || err != nil {
		return v, err
	}
	return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeUnknownFunction,
		Message: "unknown function " + name}
}

func (ex *Executor) runSelect(ctx context.Context, stmt *ast.Statement) (*gluedb.Payload, error) {
	return ex.runSelectWithParent(ctx, stmt, nil)
}

func (ex *Executor) runSelectWithParent(ctx context.Context, stmt *ast.Statement, parent *rowContext) (*gluedb.Payload, error) {
	sel := stmt.Select
	if sel.From == nil {
		rc := &rowContext{ex: ex, outer: parent}
		row, err := ex.projectRow(sel.Projection, rc)
		if err != nil {
			return nil, err
		}
		return &gluedb.Payload{Kind: gluedb.PayloadSelect, Labels: labelsOf(sel.Projection), Rows: [][]gluedb.Value{row}}, nil
	}

	rows, err := ex.scanJoined(ctx, sel, parent)
	if err != nil {
		return nil, err
	}

	hasAgg := containsAggregate(sel.Projection) || len(sel.GroupBy) > 0
	var outRows [][]gluedb.Value
	var labels []string
	if hasAgg {
		outRows, labels, err = ex.runAggregate(sel, rows)
		if err != nil {
			return nil, err
		}
	} else {
		labels = labelsOf(sel.Projection)
		for _, rc := range rows {
			vals, err := ex.projectRow(sel.Projection, rc)
			if err != nil {
				return nil, err
			}
			outRows = append(outRows, vals)
		}
	}

	if len(sel.OrderBy) > 0 {
		sortRows(outRows, labels, sel.OrderBy)
	}
	outRows, err = applyLimitOffset(outRows, sel, &rowContext{ex: ex, outer: parent})
	if err != nil {
		return nil, err
	}
	return &gluedb.Payload{Kind: gluedb.PayloadSelect, Labels: labels, Rows: outRows}, nil
}

func (ex *Executor) scanJoined(ctx context.Context, sel *ast.Select, parent *rowContext) ([]*rowContext, error) {
	base, err := ex.scanTable(ctx, *sel.From)
	if err != nil {
		return nil, err
	}
	result := make([]*rowContext, 0, len(base))
	for _, row := range base {
		result = append(result, &rowContext{ex: ex, rows: []boundRow{{alias: aliasOf(*sel.From), row: row}}, outer: parent})
	}

	for _, j := range sel.Joins {
		rightRows, err := ex.scanTable(ctx, j.Table)
		if err != nil {
			return nil, err
		}
		rightAlias := aliasOf(j.Table)
		nullRow, err := ex.nullRowFor(ctx, j.Table)
		if err != nil {
			return nil, err
		}
		var next []*rowContext
		if leftKey, rightKey, ok := plan.EquiJoinKey(j.On, rightAlias); ok {
			next, err = ex.hashJoin(parent, result, rightRows, j, leftKey, rightKey, nullRow)
		} else {
			next, err = ex.nestedLoopJoin(parent, result, rightRows, j, nullRow)
		}
		if err != nil {
			return nil, err
		}
		result = next
	}

	if sel.Where != nil {
		var filtered []*rowContext
		for _, rc := range result {
			v, err := eval.Eval(sel.Where, rc)
			if err != nil {
				return nil, err
			}
			if b, ok := v.Bool(); ok && b {
				filtered = append(filtered, rc)
			}
		}
		result = filtered
	}
	return result, nil
}

// nestedLoopJoin probes every right row against every left row, evaluating
// j.On (if any) per pair. Used for CROSS JOIN and any ON clause that is not
// a plain column-to-column equality hashJoin can exploit.
func (ex *Executor) nestedLoopJoin(parent *rowContext, leftRows []*rowContext, rightRows []gluedb.Row, j ast.Join, nullRow gluedb.Row) ([]*rowContext, error) {
	var next []*rowContext
	for _, leftRC := range leftRows {
		matched := false
		for _, rr := range rightRows {
			candidate := &rowContext{ex: ex, outer: parent}
			candidate.rows = append(candidate.rows, leftRC.rows...)
			candidate.rows = append(candidate.rows, boundRow{alias: aliasOf(j.Table), row: rr})
			if j.On != nil {
				v, err := eval.Eval(j.On, candidate)
				if err != nil {
					return nil, err
				}
				b, ok := v.Bool()
				if !ok || !b {
					continue
				}
			}
			matched = true
			next = append(next, candidate)
		}
		if !matched && j.Kind == ast.JoinLeft {
			next = append(next, unmatchedLeft(ex, parent, leftRC, j, nullRow))
		}
	}
	return next, nil
}

// hashJoin builds a hash table over the right side keyed by rightKey's
// evaluated value, then probes it once per left row instead of rescanning
// the right side — the equi-join path spec §4.4 names alongside nested
// loop. Falls back to producing no match (or, for LEFT JOIN, a null-padded
// row) when a key evaluates to NULL, matching SQL's NULL-never-equals-NULL
// join semantics.
func (ex *Executor) hashJoin(parent *rowContext, leftRows []*rowContext, rightRows []gluedb.Row, j ast.Join, leftKey, rightKey *ast.Expr, nullRow gluedb.Row) ([]*rowContext, error) {
	rightAlias := aliasOf(j.Table)
	buckets := make(map[string][]gluedb.Row, len(rightRows))
	for _, rr := range rightRows {
		rc := &rowContext{ex: ex, rows: []boundRow{{alias: rightAlias, row: rr}}, outer: parent}
		v, err := eval.Eval(rightKey, rc)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			continue
		}
		k := v.String()
		buckets[k] = append(buckets[k], rr)
	}

	var next []*rowContext
	for _, leftRC := range leftRows {
		v, err := eval.Eval(leftKey, leftRC)
		if err != nil {
			return nil, err
		}
		matched := false
		if !v.IsNull() {
			for _, rr := range buckets[v.String()] {
				candidate := &rowContext{ex: ex, outer: parent}
				candidate.rows = append(candidate.rows, leftRC.rows...)
				candidate.rows = append(candidate.rows, boundRow{alias: rightAlias, row: rr})
				matched = true
				next = append(next, candidate)
			}
		}
		if !matched && j.Kind == ast.JoinLeft {
			next = append(next, unmatchedLeft(ex, parent, leftRC, j, nullRow))
		}
	}
	return next, nil
}

// unmatchedLeft builds the null-padded right side of a LEFT JOIN row that
// found no match, shared by both join strategies.
func unmatchedLeft(ex *Executor, parent, leftRC *rowContext, j ast.Join, nullRow gluedb.Row) *rowContext {
	candidate := &rowContext{ex: ex, outer: parent}
	candidate.rows = append(candidate.rows, leftRC.rows...)
	candidate.rows = append(candidate.rows, boundRow{alias: aliasOf(j.Table), row: nullRow})
	return candidate
}

// nullRowFor builds the all-NULL placeholder row for a LEFT JOIN's
// right-hand side when no match is found, so a projected column from that
// side evaluates to NULL instead of rowContext.Column failing to resolve
// it. Schemaless tables and derived tables (whose column set isn't known
// without running them) fall back to an empty row; any qualified column
// reference against one is a genuinely unresolvable query in that case.
func (ex *Executor) nullRowFor(ctx context.Context, t ast.TableRef) (gluedb.Row, error) {
	if t.Derived != nil {
		return gluedb.MapRow{Fields: map[string]gluedb.Value{}}, nil
	}
	schema, err := ex.Store.FetchSchema(ctx, t.Name)
	if err != nil {
		return nil, err
	}
	if schema == nil || schema.IsSchemaless() {
		return gluedb.MapRow{Fields: map[string]gluedb.Value{}}, nil
	}
	fields := make(map[string]gluedb.Value, len(schema.Columns))
	for _, c := range schema.Columns {
		fields[c.Name] = gluedb.Null
	}
	return gluedb.MapRow{Fields: fields}, nil
}

func aliasOf(t ast.TableRef) string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

func (ex *Executor) scanTable(ctx context.Context, t ast.TableRef) ([]gluedb.Row, error) {
	if t.Derived != nil {
		payload, err := ex.runSelectWithParent(ctx, t.Derived, nil)
		if err != nil {
			return nil, err
		}
		rows := make([]gluedb.Row, 0, len(payload.Rows))
		for _, vals := range payload.Rows {
			rows = append(rows, gluedb.VecRow{ColumnNames: payload.Labels, Values: vals})
		}
		return rows, nil
	}
	iter, err := ex.Store.ScanData(ctx, t.Name)
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var rows []gluedb.Row
	for {
		_, row, ok, err := iter.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (ex *Executor) projectRow(projection []ast.Expr, rc *rowContext) ([]gluedb.Value, error) {
	var vals []gluedb.Value
	for _, p := range projection {
		if p.Kind == ast.ExprWildcard {
			for _, b := range rc.rows {
				if p.WildcardTable != "" && b.alias != p.WildcardTable {
					continue
				}
				for _, col := range b.row.Columns() {
					v, _ := b.row.Get(col)
					vals = append(vals, v)
				}
			}
			continue
		}
		v, err := eval.Eval(&p, rc)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func labelsOf(projection []ast.Expr) []string {
	var labels []string
	for _, p := range projection {
		if p.Kind == ast.ExprWildcard {
			labels = append(labels, "*")
			continue
		}
		if p.Alias != "" {
			labels = append(labels, p.Alias)
		} else if p.Kind == ast.ExprColumnRef {
			labels = append(labels, p.Column)
		} else {
			labels = append(labels, ast.CanonicalKey(p))
		}
	}
	return labels
}

func containsAggregate(projection []ast.Expr) bool {
	for _, p := range projection {
		if p.Kind == ast.ExprAggregate {
			return true
		}
	}
	return false
}

func sortRows(rows [][]gluedb.Value, labels []string, orderBy []ast.OrderByItem) {
	idx := make([]int, len(orderBy))
	for i, item := range orderBy {
		idx[i] = -1
		if item.Expr.Kind == ast.ExprColumnRef {
			for j, l := range labels {
				if l == item.Expr.Column {
					idx[i] = j
					break
				}
			}
		}
	}
	sort.SliceStable(rows, func(a, b int) bool {
		for i, item := range orderBy {
			if idx[i] < 0 {
				continue
			}
			va, vb := rows[a][idx[i]], rows[b][idx[i]]
			if va.IsNull() && vb.IsNull() {
				continue
			}
			if va.IsNull() {
				return false
			}
			if vb.IsNull() {
				return true
			}
			cmp, isNull, err := va.Compare(vb)
			if err != nil || isNull || cmp == 0 {
				continue
			}
			if item.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func applyLimitOffset(rows [][]gluedb.Value, sel *ast.Select, rc *rowContext) ([][]gluedb.Value, error) {
	offset := 0
	if sel.Offset != nil {
		v, err := eval.Eval(sel.Offset, rc)
		if err != nil {
			return nil, err
		}
		f, _ := v.AsFloat64()
		offset = int(f)
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if sel.Limit != nil {
		v, err := eval.Eval(sel.Limit, rc)
		if err != nil {
			return nil, err
		}
		f, _ := v.AsFloat64()
		limit := int(f)
		if limit < len(rows) {
			rows = rows[:limit]
		}
	}
	return rows, nil
}
