// Package translate turns a parsed SQL statement (by default, a TiDB parser
// ast.StmtNode — see internal/parse) into gluedb's own internal/ast.Statement
// tree. This is the one place external parser output is allowed to leak
// into gluedb; every package downstream of here (internal/plan,
// internal/eval, internal/execute) only ever sees internal/ast types.
package translate

import (
	"fmt"
	"strings"

	tiast "github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"
	titypes "github.com/pingcap/tidb/pkg/parser/types"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

// Translate converts one parsed statement node into a gluedb statement,
// reporting ErrTranslate for SELECT DISTINCT, for derived tables without an
// alias, and for any node or clause it has no lowering for. A
// comma-separated FROM list is lowered to CROSS JOINs, not rejected.
func Translate(stmt tiast.StmtNode) (*ast.Statement, error) {
	switch n := stmt.(type) {
	case *tiast.SelectStmt:
		return translateSelect(n)
	case *tiast.InsertStmt:
		return translateInsert(n)
	case *tiast.UpdateStmt:
		return translateUpdate(n)
	case *tiast.DeleteStmt:
		return translateDelete(n)
	case *tiast.CreateTableStmt:
		return translateCreateTable(n)
	case *tiast.DropTableStmt:
		return translateDropTable(n)
	case *tiast.AlterTableStmt:
		return translateAlterTable(n)
	case *tiast.BeginStmt:
		return &ast.Statement{Kind: ast.StmtStartTransaction, Autocommit: false}, nil
	case *tiast.CommitStmt:
		return &ast.Statement{Kind: ast.StmtCommit}, nil
	case *tiast.RollbackStmt:
		return &ast.Statement{Kind: ast.StmtRollback}, nil
	default:
		return nil, unsupportedSyntax(fmt.Sprintf("statement type %T", stmt))
	}
}

func unsupportedSyntax(what string) error {
	return &gluedb.Error{Type: gluedb.ErrTranslate, Code: gluedb.ErrCodeUnsupportedSyntax,
		Message: "unsupported syntax: " + what}
}

// --- SELECT ---

func translateSelect(n *tiast.SelectStmt) (*ast.Statement, error) {
	if n.Distinct {
		return nil, &gluedb.Error{Type: gluedb.ErrTranslate, Code: gluedb.ErrCodeSelectDistinct,
			Message: "unsupported syntax: SELECT DISTINCT"}
	}
	sel := &ast.Select{}

	for _, f := range n.Fields.Fields {
		if f.WildCard != nil {
			table := ""
			if f.WildCard.Table.L != "" {
				table = f.WildCard.Table.O
			}
			sel.Projection = append(sel.Projection, ast.Expr{Kind: ast.ExprWildcard, WildcardTable: table})
			continue
		}
		e, err := translateExpr(f.Expr)
		if err != nil {
			return nil, err
		}
		if f.AsName.L != "" {
			e.Alias = f.AsName.O
		}
		sel.Projection = append(sel.Projection, e)
	}

	if n.From != nil {
		tr, joins, err := translateTableRefs(n.From.TableRefs)
		if err != nil {
			return nil, err
		}
		sel.From = tr
		sel.Joins = joins
	}

	if n.Where != nil {
		w, err := translateExpr(n.Where)
		if err != nil {
			return nil, err
		}
		sel.Where = &w
	}

	if n.GroupBy != nil {
		for _, item := range n.GroupBy.Items {
			e, err := translateExpr(item.Expr)
			if err != nil {
				return nil, err
			}
			sel.GroupBy = append(sel.GroupBy, e)
		}
	}

	if n.Having != nil {
		h, err := translateExpr(n.Having.Expr)
		if err != nil {
			return nil, err
		}
		sel.Having = &h
	}

	if n.OrderBy != nil {
		for _, item := range n.OrderBy.Items {
			e, err := translateExpr(item.Expr)
			if err != nil {
				return nil, err
			}
			sel.OrderBy = append(sel.OrderBy, ast.OrderByItem{Expr: e, Desc: item.Desc})
		}
	}

	if n.Limit != nil {
		if n.Limit.Count != nil {
			e, err := translateExpr(n.Limit.Count)
			if err != nil {
				return nil, err
			}
			sel.Limit = &e
		}
		if n.Limit.Offset != nil {
			e, err := translateExpr(n.Limit.Offset)
			if err != nil {
				return nil, err
			}
			sel.Offset = &e
		}
	}

	return &ast.Statement{Kind: ast.StmtSelect, Select: sel}, nil
}

func translateTableRefs(join *tiast.Join) (*ast.TableRef, []ast.Join, error) {
	if join.Right == nil {
		tr, err := translateTableSource(join.Left)
		return tr, nil, err
	}
	left, leftJoins, err := translateJoinOperand(join.Left)
	if err != nil {
		return nil, nil, err
	}
	right, err := translateTableSource(join.Right)
	if err != nil {
		return nil, nil, err
	}
	kind := ast.JoinInner
	switch join.Tp {
	case tiast.LeftJoin:
		kind = ast.JoinLeft
	case tiast.RightJoin:
		// gluedb's executor only implements INNER, LEFT and CROSS joins;
		// a RIGHT JOIN is rewritten here by swapping operands,
		// matching how a cost-based planner would normalize it anyway.
		left, right = right, left
		kind = ast.JoinLeft
	case tiast.CrossJoin:
		kind = ast.JoinCross
	}
	var on *ast.Expr
	if join.On != nil {
		e, err := translateExpr(join.On.Expr)
		if err != nil {
			return nil, nil, err
		}
		on = &e
	} else if kind != ast.JoinCross {
		return nil, nil, unsupportedSyntax("JOIN without ON condition")
	}
	leftJoins = append(leftJoins, ast.Join{Kind: kind, Table: *right, On: on})
	return left, leftJoins, nil
}

func translateJoinOperand(node tiast.ResultSetNode) (*ast.TableRef, []ast.Join, error) {
	if j, ok := node.(*tiast.Join); ok {
		return translateTableRefs(j)
	}
	tr, err := translateTableSource(node)
	return tr, nil, err
}

func translateTableSource(node tiast.ResultSetNode) (*ast.TableRef, error) {
	src, ok := node.(*tiast.TableSource)
	if !ok {
		return nil, unsupportedSyntax(fmt.Sprintf("FROM clause element %T", node))
	}
	switch t := src.Source.(type) {
	case *tiast.TableName:
		return &ast.TableRef{Name: t.Name.O, Alias: src.AsName.O}, nil
	case *tiast.SelectStmt:
		if src.AsName.L == "" {
			return nil, unsupportedSyntax("derived table without alias")
		}
		inner, err := translateSelect(t)
		if err != nil {
			return nil, err
		}
		return &ast.TableRef{Alias: src.AsName.O, Derived: inner}, nil
	default:
		return nil, unsupportedSyntax(fmt.Sprintf("FROM clause source %T", t))
	}
}

// --- INSERT / UPDATE / DELETE ---

func translateInsert(n *tiast.InsertStmt) (*ast.Statement, error) {
	tr, err := translateTableSource(n.Table.TableRefs.Left)
	if err != nil {
		return nil, err
	}
	stmt := &ast.Statement{Kind: ast.StmtInsert, Table: tr.Name}
	for _, c := range n.Columns {
		stmt.Columns = append(stmt.Columns, c.Name.O)
	}
	if n.Select != nil {
		sel, ok := n.Select.(*tiast.SelectStmt)
		if !ok {
			return nil, unsupportedSyntax("INSERT ... SELECT source")
		}
		inner, err := translateSelect(sel)
		if err != nil {
			return nil, err
		}
		stmt.InsertFrom = inner
		return stmt, nil
	}
	for _, row := range n.Lists {
		var exprs []ast.Expr
		for _, e := range row {
			v, err := translateExpr(e)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, v)
		}
		stmt.ValuesRows = append(stmt.ValuesRows, exprs)
	}
	return stmt, nil
}

func translateUpdate(n *tiast.UpdateStmt) (*ast.Statement, error) {
	tr, err := translateTableSource(n.TableRefs.TableRefs.Left)
	if err != nil {
		return nil, err
	}
	stmt := &ast.Statement{Kind: ast.StmtUpdate, Table: tr.Name}
	for _, a := range n.List {
		v, err := translateExpr(a.Expr)
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, ast.Assignment{Column: a.Column.Name.O, Value: v})
	}
	if n.Where != nil {
		w, err := translateExpr(n.Where)
		if err != nil {
			return nil, err
		}
		stmt.Where = &w
	}
	return stmt, nil
}

func translateDelete(n *tiast.DeleteStmt) (*ast.Statement, error) {
	tr, err := translateTableSource(n.TableRefs.TableRefs.Left)
	if err != nil {
		return nil, err
	}
	stmt := &ast.Statement{Kind: ast.StmtDelete, Table: tr.Name}
	if n.Where != nil {
		w, err := translateExpr(n.Where)
		if err != nil {
			return nil, err
		}
		stmt.Where = &w
	}
	return stmt, nil
}

// --- DDL ---

func translateCreateTable(n *tiast.CreateTableStmt) (*ast.Statement, error) {
	schema := &gluedb.Schema{TableName: n.Table.Name.O}
	for _, col := range n.Cols {
		cd, err := translateColumnDef(col)
		if err != nil {
			return nil, err
		}
		schema.Columns = append(schema.Columns, cd)
	}
	for _, c := range n.Constraints {
		switch c.Tp {
		case tiast.ConstraintForeignKey:
			if len(c.Keys) != 1 || len(c.Refer.IndexPartSpecifications) != 1 {
				return nil, unsupportedSyntax("composite foreign key")
			}
			schema.ForeignKeys = append(schema.ForeignKeys, gluedb.ForeignKey{
				Column:           c.Keys[0].Column.Name.O,
				ReferencedTable:  c.Refer.Table.Name.O,
				ReferencedColumn: c.Refer.IndexPartSpecifications[0].Column.Name.O,
			})
		case tiast.ConstraintPrimaryKey:
			if len(c.Keys) == 1 {
				markPrimary(schema, c.Keys[0].Column.Name.O)
			}
		case tiast.ConstraintUniq, tiast.ConstraintUniqKey, tiast.ConstraintUniqIndex:
			if len(c.Keys) == 1 {
				markUnique(schema, c.Keys[0].Column.Name.O)
			}
		}
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &ast.Statement{Kind: ast.StmtCreateTable, Schema: schema, IfExists: n.IfNotExists}, nil
}

func markPrimary(s *gluedb.Schema, col string) {
	for i := range s.Columns {
		if s.Columns[i].Name == col {
			s.Columns[i].Unique = gluedb.UniquePrimary
			s.Columns[i].Nullable = false
		}
	}
}

func markUnique(s *gluedb.Schema, col string) {
	for i := range s.Columns {
		if s.Columns[i].Name == col && s.Columns[i].Unique == gluedb.UniqueNone {
			s.Columns[i].Unique = gluedb.UniqueUnique
		}
	}
}

func translateColumnDef(col *tiast.ColumnDef) (gluedb.ColumnDef, error) {
	ct, err := mapColumnType(col.Tp)
	if err != nil {
		return gluedb.ColumnDef{}, err
	}
	cd := gluedb.ColumnDef{Name: col.Name.Name.O, Type: ct, Nullable: true}
	for _, opt := range col.Options {
		switch opt.Tp {
		case tiast.ColumnOptionNotNull:
			cd.Nullable = false
		case tiast.ColumnOptionNull:
			cd.Nullable = true
		case tiast.ColumnOptionPrimaryKey:
			cd.Unique = gluedb.UniquePrimary
			cd.Nullable = false
		case tiast.ColumnOptionUniqKey:
			cd.Unique = gluedb.UniqueUnique
		case tiast.ColumnOptionComment:
			if v, ok := opt.Expr.(*driver.ValueExpr); ok {
				cd.Comment = v.GetString()
			}
		case tiast.ColumnOptionDefaultValue:
			e, err := translateExpr(opt.Expr)
			if err == nil {
				cd.Default = e
			}
		}
	}
	return cd, nil
}

func mapColumnType(tp *titypes.FieldType) (gluedb.ColumnType, error) {
	name := strings.ToUpper(tp.String())
	switch {
	case strings.HasPrefix(name, "BOOL"):
		return gluedb.ColumnTypeBoolean, nil
	case strings.HasPrefix(name, "TINYINT"):
		return gluedb.ColumnTypeI8, nil
	case strings.HasPrefix(name, "SMALLINT"):
		return gluedb.ColumnTypeI16, nil
	case strings.HasPrefix(name, "INT") || strings.HasPrefix(name, "INTEGER") || strings.HasPrefix(name, "MEDIUMINT"):
		return gluedb.ColumnTypeI32, nil
	case strings.HasPrefix(name, "BIGINT"):
		return gluedb.ColumnTypeI64, nil
	case strings.HasPrefix(name, "FLOAT"):
		return gluedb.ColumnTypeF32, nil
	case strings.HasPrefix(name, "DOUBLE"):
		return gluedb.ColumnTypeF64, nil
	case strings.HasPrefix(name, "DECIMAL") || strings.HasPrefix(name, "NUMERIC"):
		return gluedb.ColumnTypeDecimal, nil
	case strings.HasPrefix(name, "VARCHAR") || strings.HasPrefix(name, "TEXT") || strings.HasPrefix(name, "CHAR"):
		return gluedb.ColumnTypeText, nil
	case strings.HasPrefix(name, "BLOB") || strings.HasPrefix(name, "VARBINARY") || strings.HasPrefix(name, "BINARY"):
		return gluedb.ColumnTypeBytes, nil
	case strings.HasPrefix(name, "DATETIME") || strings.HasPrefix(name, "TIMESTAMP"):
		return gluedb.ColumnTypeTimestamp, nil
	case strings.HasPrefix(name, "DATE"):
		return gluedb.ColumnTypeDate, nil
	case strings.HasPrefix(name, "TIME"):
		return gluedb.ColumnTypeTime, nil
	default:
		return "", unsupportedSyntax("column type " + name)
	}
}

func translateDropTable(n *tiast.DropTableStmt) (*ast.Statement, error) {
	if len(n.Tables) != 1 {
		return nil, unsupportedSyntax("multi-table DROP TABLE")
	}
	return &ast.Statement{Kind: ast.StmtDropTable, Table: n.Tables[0].Name.O, IfExists: n.IfExists}, nil
}

func translateAlterTable(n *tiast.AlterTableStmt) (*ast.Statement, error) {
	if len(n.Specs) != 1 {
		return nil, unsupportedSyntax("multiple ALTER TABLE clauses in one statement")
	}
	spec := n.Specs[0]
	stmt := &ast.Statement{Kind: ast.StmtAlterTable, Table: n.Table.Name.O}
	switch spec.Tp {
	case tiast.AlterTableRenameTable:
		stmt.AlterKind = ast.AlterRenameTable
		stmt.NewName = spec.NewTable.Name.O
	case tiast.AlterTableRenameColumn:
		stmt.AlterKind = ast.AlterRenameColumn
		stmt.OldName = spec.OldColumnName.Name.O
		stmt.NewName = spec.NewColumnName.Name.O
	case tiast.AlterTableAddColumns:
		if len(spec.NewColumns) != 1 {
			return nil, unsupportedSyntax("multi-column ADD COLUMN")
		}
		cd, err := translateColumnDef(spec.NewColumns[0])
		if err != nil {
			return nil, err
		}
		stmt.AlterKind = ast.AlterAddColumn
		stmt.NewColumn = cd
	case tiast.AlterTableDropColumn:
		stmt.AlterKind = ast.AlterDropColumn
		stmt.OldName = spec.OldColumnName.Name.O
	default:
		return nil, unsupportedSyntax(fmt.Sprintf("ALTER TABLE clause %v", spec.Tp))
	}
	return stmt, nil
}

// --- expressions ---

func translateExpr(e tiast.ExprNode) (ast.Expr, error) {
	switch n := e.(type) {
	case *driver.ValueExpr:
		return ast.Expr{Kind: ast.ExprLiteral, Literal: valueFromDriver(n)}, nil
	case *tiast.ColumnNameExpr:
		table := ""
		if n.Name.Table.L != "" {
			table = n.Name.Table.O
		}
		return ast.NewColumnRef(table, n.Name.Name.O), nil
	case *tiast.ParenthesesExpr:
		return translateExpr(n.Expr)
	case *tiast.BinaryOperationExpr:
		return translateBinary(n)
	case *tiast.UnaryOperationExpr:
		return translateUnary(n)
	case *tiast.IsNullExpr:
		operand, err := translateExpr(n.Expr)
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprIsNull, Operand: &operand, Negated: n.Not}, nil
	case *tiast.BetweenExpr:
		operand, err := translateExpr(n.Expr)
		if err != nil {
			return ast.Expr{}, err
		}
		low, err := translateExpr(n.Left)
		if err != nil {
			return ast.Expr{}, err
		}
		high, err := translateExpr(n.Right)
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprBetween, Operand: &operand, Low: &low, High: &high, Negated: n.Not}, nil
	case *tiast.PatternInExpr:
		return translateIn(n)
	case *tiast.PatternLikeOrIlikeExpr:
		operand, err := translateExpr(n.Expr)
		if err != nil {
			return ast.Expr{}, err
		}
		pattern, err := translateExpr(n.Pattern)
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprLike, Operand: &operand, Pattern: &pattern, Negated: n.Not}, nil
	case *tiast.CaseExpr:
		return translateCase(n)
	case *tiast.FuncCallExpr:
		return translateFuncCall(n)
	case *tiast.AggregateFuncExpr:
		return translateAggregate(n)
	case *tiast.SubqueryExpr:
		sel, ok := n.Query.(*tiast.SelectStmt)
		if !ok {
			return ast.Expr{}, unsupportedSyntax("non-SELECT subquery")
		}
		inner, err := translateSelect(sel)
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprSubquery, Subquery: inner}, nil
	case *tiast.FuncCastExpr:
		operand, err := translateExpr(n.Expr)
		if err != nil {
			return ast.Expr{}, err
		}
		ct, err := mapColumnType(n.Tp)
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprCast, Operand: &operand, TargetType: ct}, nil
	case *tiast.ExistsSubqueryExpr:
		sel, ok := n.Sel.(*tiast.SubqueryExpr)
		if !ok {
			return ast.Expr{}, unsupportedSyntax("EXISTS operand")
		}
		selStmt, ok := sel.Query.(*tiast.SelectStmt)
		if !ok {
			return ast.Expr{}, unsupportedSyntax("non-SELECT EXISTS subquery")
		}
		inner, err := translateSelect(selStmt)
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprExists, Subquery: inner, Negated: n.Not}, nil
	default:
		return ast.Expr{}, unsupportedSyntax(fmt.Sprintf("expression %T", e))
	}
}

func translateIn(n *tiast.PatternInExpr) (ast.Expr, error) {
	operand, err := translateExpr(n.Expr)
	if err != nil {
		return ast.Expr{}, err
	}
	if n.Sel != nil {
		sub, ok := n.Sel.(*tiast.SubqueryExpr)
		if !ok {
			return ast.Expr{}, unsupportedSyntax("IN subquery operand")
		}
		sel, ok := sub.Query.(*tiast.SelectStmt)
		if !ok {
			return ast.Expr{}, unsupportedSyntax("non-SELECT IN subquery")
		}
		inner, err := translateSelect(sel)
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprInSubquery, Operand: &operand, Subquery: inner, Negated: n.Not}, nil
	}
	var list []ast.Expr
	for _, le := range n.List {
		v, err := translateExpr(le)
		if err != nil {
			return ast.Expr{}, err
		}
		list = append(list, v)
	}
	return ast.Expr{Kind: ast.ExprInList, Operand: &operand, List: list, Negated: n.Not}, nil
}

func translateCase(n *tiast.CaseExpr) (ast.Expr, error) {
	result := ast.Expr{Kind: ast.ExprCase}
	if n.Value != nil {
		v, err := translateExpr(n.Value)
		if err != nil {
			return ast.Expr{}, err
		}
		result.Operand2 = &v
	}
	for _, w := range n.WhenClauses {
		cond, err := translateExpr(w.Expr)
		if err != nil {
			return ast.Expr{}, err
		}
		then, err := translateExpr(w.Result)
		if err != nil {
			return ast.Expr{}, err
		}
		result.Whens = append(result.Whens, ast.CaseWhen{When: cond, Then: then})
	}
	if n.ElseClause != nil {
		e, err := translateExpr(n.ElseClause)
		if err != nil {
			return ast.Expr{}, err
		}
		result.Else = &e
	}
	return result, nil
}

func translateFuncCall(n *tiast.FuncCallExpr) (ast.Expr, error) {
	name := strings.ToUpper(n.FnName.O)
	if name == "CAST" || name == "CONVERT" {
		return ast.Expr{}, unsupportedSyntax("CAST must parse as a dedicated cast expression, not a function call")
	}
	var args []ast.Expr
	for _, a := range n.Args {
		v, err := translateExpr(a)
		if err != nil {
			return ast.Expr{}, err
		}
		args = append(args, v)
	}
	return ast.Expr{Kind: ast.ExprFunction, FuncName: name, Args: args}, nil
}

func translateAggregate(n *tiast.AggregateFuncExpr) (ast.Expr, error) {
	name := strings.ToUpper(n.F)
	agg := ast.AggregateFunc(name)
	switch agg {
	case ast.AggCount, ast.AggSum, ast.AggMin, ast.AggMax, ast.AggAvg:
	case "VAR_SAMP", "VARIANCE", "VAR_POP":
		agg = ast.AggVariance
	case "STD", "STDDEV", "STDDEV_SAMP", "STDDEV_POP", "STDEV":
		agg = ast.AggStdev
	default:
		return ast.Expr{}, unsupportedSyntax("aggregate function " + name)
	}
	var args []ast.Expr
	for _, a := range n.Args {
		if _, ok := a.(*tiast.ColumnNameExpr); !ok {
			if _, ok := a.(*driver.ValueExpr); !ok {
				v, err := translateExpr(a)
				if err != nil {
					return ast.Expr{}, err
				}
				args = append(args, v)
				continue
			}
		}
		v, err := translateExpr(a)
		if err != nil {
			return ast.Expr{}, err
		}
		args = append(args, v)
	}
	return ast.Expr{Kind: ast.ExprAggregate, AggFunc: agg, Args: args, Distinct: n.Distinct}, nil
}

func translateUnary(n *tiast.UnaryOperationExpr) (ast.Expr, error) {
	operand, err := translateExpr(n.V)
	if err != nil {
		return ast.Expr{}, err
	}
	switch n.Op {
	case opcode.Minus:
		return ast.Expr{Kind: ast.ExprUnary, UnaryOp: ast.UnaryNeg, Operand: &operand}, nil
	case opcode.Not, opcode.Not2:
		return ast.Expr{Kind: ast.ExprUnary, UnaryOp: ast.UnaryNot, Operand: &operand}, nil
	case opcode.Plus:
		return operand, nil
	default:
		return ast.Expr{}, unsupportedSyntax(fmt.Sprintf("unary operator %v", n.Op))
	}
}

var binaryOps = map[opcode.Op]gluedb.BinaryOp{
	opcode.Plus:      gluedb.OpAdd,
	opcode.Minus:     gluedb.OpSub,
	opcode.Mul:       gluedb.OpMul,
	opcode.Div:       gluedb.OpDiv,
	opcode.Mod:       gluedb.OpMod,
	opcode.And:       gluedb.OpBitAnd,
	opcode.Or:        gluedb.OpBitOr,
	opcode.Xor:       gluedb.OpBitXor,
	opcode.LeftShift:  gluedb.OpShl,
	opcode.RightShift: gluedb.OpShr,
	opcode.EQ:        gluedb.OpEq,
	opcode.NE:        gluedb.OpNotEq,
	opcode.LT:        gluedb.OpLt,
	opcode.LE:        gluedb.OpLtEq,
	opcode.GT:        gluedb.OpGt,
	opcode.GE:        gluedb.OpGtEq,
}

func translateBinary(n *tiast.BinaryOperationExpr) (ast.Expr, error) {
	left, err := translateExpr(n.L)
	if err != nil {
		return ast.Expr{}, err
	}
	right, err := translateExpr(n.R)
	if err != nil {
		return ast.Expr{}, err
	}
	if op, ok := binaryOps[n.Op]; ok {
		return ast.NewBinary(op, left, right), nil
	}
	switch n.Op {
	case opcode.LogicAnd:
		return ast.Expr{Kind: ast.ExprFunction, FuncName: "AND", Args: []ast.Expr{left, right}}, nil
	case opcode.LogicOr:
		return ast.Expr{Kind: ast.ExprFunction, FuncName: "OR", Args: []ast.Expr{left, right}}, nil
	case opcode.LogicXor:
		return ast.Expr{Kind: ast.ExprFunction, FuncName: "XOR", Args: []ast.Expr{left, right}}, nil
	default:
		return ast.Expr{}, unsupportedSyntax(fmt.Sprintf("binary operator %v", n.Op))
	}
}

func valueFromDriver(v *driver.ValueExpr) gluedb.Value {
	if v.Datum.IsNull() {
		return gluedb.Null
	}
	switch v.Datum.Kind() {
	case titypes.KindInt64:
		return gluedb.NewI64(v.Datum.GetInt64())
	case titypes.KindUint64:
		return gluedb.NewU64(v.Datum.GetUint64())
	case titypes.KindFloat32:
		return gluedb.NewF32(v.Datum.GetFloat32())
	case titypes.KindFloat64:
		return gluedb.NewF64(v.Datum.GetFloat64())
	case titypes.KindString, titypes.KindBytes:
		return gluedb.NewStr(v.Datum.GetString())
	default:
		return gluedb.NewStr(v.Datum.GetString())
	}
}
