// Package eval evaluates internal/ast.Expr trees against a row context,
// producing gluedb.Value results. It implements spec §4.2: short-circuit
// boolean logic, three-valued comparison, CASE, CAST, IN/BETWEEN/LIKE, and
// scalar function dispatch. Aggregate expressions are not evaluated here
// (Eval reports them as not supported); internal/execute's aggregate
// operator computes them.
package eval

import (
	"fmt"
	"strings"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
)

// Context resolves column references and correlated-subquery execution
// during evaluation. internal/execute supplies the concrete implementation;
// kept as an interface here to avoid an import cycle.
type Context interface {
	// Column resolves a (possibly table-qualified) column reference against
	// the row currently being evaluated.
	Column(table, column string) (gluedb.Value, error)
	// RunSubquery executes a correlated or uncorrelated subquery, returning
	// its single-column row values (spec §4.3's scalar/IN/EXISTS subquery
	// forms all reduce to this).
	RunSubquery(stmt *ast.Statement) ([]gluedb.Value, error)
	// CallFunction dispatches a scalar function by name, including any
	// functions registered via gluedb.CustomFunction (spec §4.2).
	CallFunction(name string, args []gluedb.Value) (gluedb.Value, error)
}

// Eval evaluates e against ctx, implementing Null-propagation and
// short-circuiting per spec §4.2.
func Eval(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	switch e.Kind {
	case ast.ExprLiteral:
		return e.Literal, nil

	case ast.ExprColumnRef:
		return ctx.Column(e.Table, e.Column)

	case ast.ExprBinary:
		return evalBinary(e, ctx)

	case ast.ExprUnary:
		v, err := Eval(e.Operand, ctx)
		if err != nil {
			return gluedb.Null, err
		}
		switch e.UnaryOp {
		case ast.UnaryNeg:
			return v.Negate()
		case ast.UnaryNot:
			if v.IsNull() {
				return gluedb.Null, nil
			}
			b, err := asBool(v)
			if err != nil {
				return gluedb.Null, err
			}
			return gluedb.NewBool(!b), nil
		}
		return gluedb.Null, fmt.Errorf("unhandled unary op %v", e.UnaryOp)

	case ast.ExprIsNull:
		v, err := Eval(e.Operand, ctx)
		if err != nil {
			return gluedb.Null, err
		}
		result := v.IsNull()
		if e.Negated {
			result = !result
		}
		return gluedb.NewBool(result), nil

	case ast.ExprBetween:
		return evalBetween(e, ctx)

	case ast.ExprInList:
		return evalInList(e, ctx)

	case ast.ExprInSubquery:
		return evalInSubquery(e, ctx)

	case ast.ExprLike:
		return evalLike(e, ctx)

	case ast.ExprCase:
		return evalCase(e, ctx)

	case ast.ExprCast:
		v, err := Eval(e.Operand, ctx)
		if err != nil {
			return gluedb.Null, err
		}
		return Cast(v, e.TargetType)

	case ast.ExprFunction:
		return evalFunction(e, ctx)

	case ast.ExprAggregate:
		return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeNotSupported,
			Message: "aggregate expressions are only evaluated by internal/execute's aggregate operator"}

	case ast.ExprSubquery:
		vals, err := ctx.RunSubquery(e.Subquery)
		if err != nil {
			return gluedb.Null, err
		}
		if len(vals) == 0 {
			return gluedb.Null, nil
		}
		if len(vals) > 1 {
			return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeScalarSubqueryArity,
				Message: "scalar subquery returned more than one row"}
		}
		return vals[0], nil

	case ast.ExprExists:
		vals, err := ctx.RunSubquery(e.Subquery)
		if err != nil {
			return gluedb.Null, err
		}
		exists := len(vals) > 0
		if e.Negated {
			exists = !exists
		}
		return gluedb.NewBool(exists), nil

	default:
		return gluedb.Null, fmt.Errorf("unhandled expression kind %v", e.Kind)
	}
}

func evalBinary(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	l, err := Eval(e.Left, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	r, err := Eval(e.Right, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	switch e.Op {
	case gluedb.OpEq, gluedb.OpNotEq, gluedb.OpLt, gluedb.OpLtEq, gluedb.OpGt, gluedb.OpGtEq:
		cmp, isNull, err := l.Compare(r)
		if err != nil {
			return gluedb.Null, err
		}
		if isNull {
			return gluedb.Null, nil
		}
		return gluedb.NewBool(compareSatisfies(e.Op, cmp)), nil
	default:
		return l.Arith(e.Op, r)
	}
}

func compareSatisfies(op gluedb.BinaryOp, cmp int) bool {
	switch op {
	case gluedb.OpEq:
		return cmp == 0
	case gluedb.OpNotEq:
		return cmp != 0
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

func evalBetween(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	v, err := Eval(e.Operand, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	low, err := Eval(e.Low, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	high, err := Eval(e.High, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	if v.IsNull() || low.IsNull() || high.IsNull() {
		return gluedb.Null, nil
	}
	geLow, isNull1, err := v.Compare(low)
	if err != nil {
		return gluedb.Null, err
	}
	leHigh, isNull2, err := v.Compare(high)
	if err != nil {
		return gluedb.Null, err
	}
	if isNull1 || isNull2 {
		return gluedb.Null, nil
	}
	result := geLow >= 0 && leHigh <= 0
	if e.Negated {
		result = !result
	}
	return gluedb.NewBool(result), nil
}

func evalInList(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	v, err := Eval(e.Operand, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	if v.IsNull() {
		return gluedb.Null, nil
	}
	sawNull := false
	for _, item := range e.List {
		iv, err := Eval(&item, ctx)
		if err != nil {
			return gluedb.Null, err
		}
		if iv.IsNull() {
			sawNull = true
			continue
		}
		cmp, isNull, err := v.Compare(iv)
		if err != nil {
			return gluedb.Null, err
		}
		if !isNull && cmp == 0 {
			return gluedb.NewBool(!e.Negated), nil
		}
	}
	if sawNull {
		return gluedb.Null, nil
	}
	return gluedb.NewBool(e.Negated), nil
}

func evalInSubquery(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	v, err := Eval(e.Operand, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	vals, err := ctx.RunSubquery(e.Subquery)
	if err != nil {
		return gluedb.Null, err
	}
	if v.IsNull() {
		return gluedb.Null, nil
	}
	sawNull := false
	for _, iv := range vals {
		if iv.IsNull() {
			sawNull = true
			continue
		}
		cmp, isNull, err := v.Compare(iv)
		if err != nil {
			return gluedb.Null, err
		}
		if !isNull && cmp == 0 {
			return gluedb.NewBool(!e.Negated), nil
		}
	}
	if sawNull {
		return gluedb.Null, nil
	}
	return gluedb.NewBool(e.Negated), nil
}

func evalLike(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	v, err := Eval(e.Operand, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	p, err := Eval(e.Pattern, ctx)
	if err != nil {
		return gluedb.Null, err
	}
	if v.IsNull() || p.IsNull() {
		return gluedb.Null, nil
	}
	s, err := asStr(v)
	if err != nil {
		return gluedb.Null, err
	}
	pattern, err := asStr(p)
	if err != nil {
		return gluedb.Null, err
	}
	matched := likeMatch(s, pattern)
	if e.Negated {
		matched = !matched
	}
	return gluedb.NewBool(matched), nil
}

// likeMatch implements SQL LIKE's two wildcards (% and _) without regexp
// compilation overhead per call, matching the recursive-descent style
// original_source/core/src/executor/evaluate/mod.rs uses for its own LIKE.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	switch p[0] {
	case '%':
		if likeMatchRunes(s, p[1:]) {
			return true
		}
		for i := range s {
			if likeMatchRunes(s[i+1:], p[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(s) == 0 {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	default:
		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	}
}

func evalCase(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	var operandVal *gluedb.Value
	if e.Operand2 != nil {
		v, err := Eval(e.Operand2, ctx)
		if err != nil {
			return gluedb.Null, err
		}
		operandVal = &v
	}
	for _, w := range e.Whens {
		if operandVal != nil {
			wv, err := Eval(&w.When, ctx)
			if err != nil {
				return gluedb.Null, err
			}
			if wv.IsNull() || operandVal.IsNull() {
				continue
			}
			cmp, isNull, err := operandVal.Compare(wv)
			if err != nil {
				return gluedb.Null, err
			}
			if isNull || cmp != 0 {
				continue
			}
			return Eval(&w.Then, ctx)
		}
		cond, err := Eval(&w.When, ctx)
		if err != nil {
			return gluedb.Null, err
		}
		if cond.IsNull() {
			continue
		}
		b, err := asBool(cond)
		if err != nil {
			return gluedb.Null, err
		}
		if b {
			return Eval(&w.Then, ctx)
		}
	}
	if e.Else != nil {
		return Eval(e.Else, ctx)
	}
	return gluedb.Null, nil
}

func evalFunction(e *ast.Expr, ctx Context) (gluedb.Value, error) {
	name := strings.ToUpper(e.FuncName)
	switch name {
	case "AND":
		return evalLogicalAnd(e.Args, ctx)
	case "OR":
		return evalLogicalOr(e.Args, ctx)
	case "XOR":
		return evalLogicalXor(e.Args, ctx)
	}
	args := make([]gluedb.Value, len(e.Args))
	for i := range e.Args {
		v, err := Eval(&e.Args[i], ctx)
		if err != nil {
			return gluedb.Null, err
		}
		args[i] = v
	}
	return ctx.CallFunction(name, args)
}

// evalLogicalAnd short-circuits on a definite FALSE per spec §4.2's
// three-valued truth table, matching SQL: FALSE AND NULL = FALSE.
func evalLogicalAnd(args []ast.Expr, ctx Context) (gluedb.Value, error) {
	sawNull := false
	for i := range args {
		v, err := Eval(&args[i], ctx)
		if err != nil {
			return gluedb.Null, err
		}
		if v.IsNull() {
			sawNull = true
			continue
		}
		b, err := asBool(v)
		if err != nil {
			return gluedb.Null, err
		}
		if !b {
			return gluedb.NewBool(false), nil
		}
	}
	if sawNull {
		return gluedb.Null, nil
	}
	return gluedb.NewBool(true), nil
}

func evalLogicalOr(args []ast.Expr, ctx Context) (gluedb.Value, error) {
	sawNull := false
	for i := range args {
		v, err := Eval(&args[i], ctx)
		if err != nil {
			return gluedb.Null, err
		}
		if v.IsNull() {
			sawNull = true
			continue
		}
		b, err := asBool(v)
		if err != nil {
			return gluedb.Null, err
		}
		if b {
			return gluedb.NewBool(true), nil
		}
	}
	if sawNull {
		return gluedb.Null, nil
	}
	return gluedb.NewBool(false), nil
}

// evalLogicalXor has no absorbing value: any Null operand makes the result
// indeterminate (DESIGN.md's Open Question decision on XOR null-lifting).
func evalLogicalXor(args []ast.Expr, ctx Context) (gluedb.Value, error) {
	result := false
	for i := range args {
		v, err := Eval(&args[i], ctx)
		if err != nil {
			return gluedb.Null, err
		}
		if v.IsNull() {
			return gluedb.Null, nil
		}
		b, err := asBool(v)
		if err != nil {
			return gluedb.Null, err
		}
		result = result != b
	}
	return gluedb.NewBool(result), nil
}

func asBool(v gluedb.Value) (bool, error) {
	b, ok := v.Bool()
	if !ok {
		return false, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeTypeMismatch,
			Message: "expected BOOLEAN, got " + v.Kind().String()}
	}
	return b, nil
}

func asStr(v gluedb.Value) (string, error) {
	s, ok := v.Str()
	if !ok {
		return "", &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeTypeMismatch,
			Message: "expected TEXT, got " + v.Kind().String()}
	}
	return s, nil
}
