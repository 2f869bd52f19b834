// Package ast defines the expression and statement tree gluedb's translator
// produces from a parsed SQL statement, and its evaluator/planner/executor
// consume. It is intentionally decoupled from any particular SQL parser:
// internal/translate is the only package that builds an ast.Statement from
// parser output.
package ast

import "github.com/lychee-technology/gluedb"

// ExprKind discriminates the Expr union, mirroring the kind-tag pattern used
// throughout the package (gluedb.Kind, gluedb.PayloadKind) rather than one
// interface implementation per node type.
type ExprKind string

const (
	ExprLiteral    ExprKind = "LITERAL"
	ExprColumnRef  ExprKind = "COLUMN_REF"
	ExprBinary     ExprKind = "BINARY"
	ExprUnary      ExprKind = "UNARY"
	ExprIsNull     ExprKind = "IS_NULL"
	ExprBetween    ExprKind = "BETWEEN"
	ExprInList     ExprKind = "IN_LIST"
	ExprInSubquery ExprKind = "IN_SUBQUERY"
	ExprLike       ExprKind = "LIKE"
	ExprCase       ExprKind = "CASE"
	ExprCast       ExprKind = "CAST"
	ExprFunction   ExprKind = "FUNCTION"
	ExprAggregate  ExprKind = "AGGREGATE"
	ExprSubquery   ExprKind = "SUBQUERY"
	ExprExists     ExprKind = "EXISTS"
	ExprWildcard   ExprKind = "WILDCARD" // SELECT *, SELECT t.*
)

// UnaryOp is the set of prefix operators spec §4.2 names.
type UnaryOp string

const (
	UnaryNeg UnaryOp = "-"
	UnaryNot UnaryOp = "NOT"
)

// AggregateFunc names the aggregate functions of spec §4.3.
type AggregateFunc string

const (
	AggCount    AggregateFunc = "COUNT"
	AggSum      AggregateFunc = "SUM"
	AggMin      AggregateFunc = "MIN"
	AggMax      AggregateFunc = "MAX"
	AggAvg      AggregateFunc = "AVG"
	AggVariance AggregateFunc = "VARIANCE"
	AggStdev    AggregateFunc = "STDEV"
)

// CaseWhen is one WHEN/THEN arm of a CASE expression.
type CaseWhen struct {
	When Expr
	Then Expr
}

// Expr is a node in the expression tree. Exactly the fields relevant to Kind
// are populated, matching gluedb.Payload's sparse-union convention.
type Expr struct {
	Kind ExprKind

	// Literal
	Literal gluedb.Value

	// ColumnRef
	Table  string // "" if unqualified
	Column string

	// Binary
	Op    gluedb.BinaryOp
	Left  *Expr
	Right *Expr

	// Unary / IsNull
	UnaryOp UnaryOp
	Operand *Expr
	Negated bool // IS NOT NULL, NOT BETWEEN, NOT IN, NOT LIKE

	// Between
	Low, High *Expr

	// InList
	List []Expr

	// InSubquery / Subquery / Exists
	Subquery *Statement

	// Like
	Pattern *Expr

	// Case
	Operand2 *Expr // optional CASE <expr> WHEN form; nil for searched CASE
	Whens    []CaseWhen
	Else     *Expr

	// Cast
	TargetType gluedb.ColumnType

	// Function / Aggregate
	FuncName string
	AggFunc  AggregateFunc
	Args     []Expr
	Distinct bool // COUNT(DISTINCT x)

	// Wildcard
	WildcardTable string // "" for bare *, else "t" for t.*

	// Alias is the display name this expression projects under, set by
	// internal/translate from an explicit `AS` clause; "" when there is none.
	Alias string
}

// NewLiteral builds a literal expression node.
func NewLiteral(v gluedb.Value) Expr { return Expr{Kind: ExprLiteral, Literal: v} }

// NewColumnRef builds an (optionally table-qualified) column reference.
func NewColumnRef(table, column string) Expr {
	return Expr{Kind: ExprColumnRef, Table: table, Column: column}
}

// NewBinary builds a binary expression node.
func NewBinary(op gluedb.BinaryOp, left, right Expr) Expr {
	return Expr{Kind: ExprBinary, Op: op, Left: &left, Right: &right}
}

// CanonicalKey renders a deterministic string for an expression, used by
// gluedb.Schema.IndexFor to match a WHERE-clause predicate against a
// declared index's expression.
func CanonicalKey(e any) string {
	expr, ok := e.(Expr)
	if !ok {
		if p, ok := e.(*Expr); ok && p != nil {
			expr = *p
		} else {
			return ""
		}
	}
	return canonicalKey(expr)
}

func canonicalKey(e Expr) string {
	switch e.Kind {
	case ExprColumnRef:
		if e.Table != "" {
			return e.Table + "." + e.Column
		}
		return e.Column
	case ExprBinary:
		return "(" + canonicalKey(*e.Left) + string(e.Op) + canonicalKey(*e.Right) + ")"
	case ExprUnary:
		return string(e.UnaryOp) + canonicalKey(*e.Operand)
	case ExprFunction:
		s := e.FuncName + "("
		for i, a := range e.Args {
			if i > 0 {
				s += ","
			}
			s += canonicalKey(a)
		}
		return s + ")"
	case ExprLiteral:
		return e.Literal.String()
	default:
		return string(e.Kind)
	}
}
