package execute

import (
	"math"

	"github.com/lychee-technology/gluedb"
	"github.com/lychee-technology/gluedb/internal/ast"
	"github.com/lychee-technology/gluedb/internal/eval"
)

// welford accumulates a running mean and sum-of-squares for VARIANCE/STDEV
// without the numerical blowup of the naive sum(x^2) - n*mean^2 formula.
type welford struct {
	n    int64
	mean float64
	m2   float64
}

func (w *welford) push(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
}

func (w *welford) variance() float64 {
	if w.n < 2 {
		return 0
	}
	return w.m2 / float64(w.n-1)
}

type aggState struct {
	count    int64
	sumSet   bool
	sum      gluedb.Value
	min, max gluedb.Value
	hasMin   bool
	hasMax   bool
	wf       welford
}

// runAggregate groups rows (GROUP BY, or a single implicit group when there
// is none) and folds each group's rows through COUNT/SUM/MIN/MAX/AVG/
// VARIANCE/STDEV, per spec §4.3. HAVING is evaluated against the grouped
// row using a groupRowContext so it can reference aggregate results by the
// same projection expressions as the SELECT list.
func (ex *Executor) runAggregate(sel *ast.Select, rows []*rowContext) ([][]gluedb.Value, []string, error) {
	groups := map[string][]*rowContext{}
	var order []string
	for _, rc := range rows {
		key, err := groupKey(sel.GroupBy, rc)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rc)
	}
	if len(rows) == 0 && len(sel.GroupBy) == 0 {
		groups[""] = nil
		order = append(order, "")
	}

	labels := labelsOf(sel.Projection)
	var outRows [][]gluedb.Value
	for _, key := range order {
		members := groups[key]
		vals := make([]gluedb.Value, len(sel.Projection))
		for i, p := range sel.Projection {
			v, err := evalProjectionInGroup(&p, members)
			if err != nil {
				return nil, nil, err
			}
			vals[i] = v
		}
		if sel.Having != nil {
			var rep *rowContext
			if len(members) > 0 {
				rep = members[0]
			} else {
				rep = &rowContext{ex: ex}
			}
			ok, err := evalHaving(sel.Having, members, rep)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
		}
		outRows = append(outRows, vals)
	}
	return outRows, labels, nil
}

func groupKey(groupBy []ast.Expr, rc *rowContext) (string, error) {
	if len(groupBy) == 0 {
		return "", nil
	}
	key := ""
	for _, g := range groupBy {
		v, err := eval.Eval(&g, rc)
		if err != nil {
			return "", err
		}
		key += v.String() + "\x1f"
	}
	return key, nil
}

func evalProjectionInGroup(p *ast.Expr, members []*rowContext) (gluedb.Value, error) {
	if p.Kind == ast.ExprAggregate {
		return evalAggregate(p, members)
	}
	if len(members) == 0 {
		return gluedb.Null, nil
	}
	return eval.Eval(p, members[0])
}

func evalHaving(having *ast.Expr, members []*rowContext, rep *rowContext) (bool, error) {
	v, err := evalHavingExpr(having, members, rep)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	return ok && b, nil
}

func evalHavingExpr(e *ast.Expr, members []*rowContext, rep *rowContext) (gluedb.Value, error) {
	if e.Kind == ast.ExprAggregate {
		return evalAggregate(e, members)
	}
	return eval.Eval(e, rep)
}

func evalAggregate(e *ast.Expr, members []*rowContext) (gluedb.Value, error) {
	st := aggState{}
	for _, rc := range members {
		var arg gluedb.Value
		isStar := len(e.Args) == 0
		if !isStar {
			v, err := eval.Eval(&e.Args[0], rc)
			if err != nil {
				return gluedb.Null, err
			}
			arg = v
		}
		if !isStar && arg.IsNull() {
			continue
		}
		st.count++
		if isStar {
			continue
		}
		if err := foldInto(&st, arg); err != nil {
			return gluedb.Null, err
		}
	}
	return finalizeAggregate(e.AggFunc, st)
}

func foldInto(st *aggState, v gluedb.Value) error {
	if !st.sumSet {
		st.sum = v
		st.sumSet = true
	} else {
		sum, err := st.sum.Arith(gluedb.OpAdd, v)
		if err != nil {
			return err
		}
		st.sum = sum
	}
	if !st.hasMin {
		st.min, st.hasMin = v, true
	} else if cmp, isNull, err := v.Compare(st.min); err == nil && !isNull && cmp < 0 {
		st.min = v
	}
	if !st.hasMax {
		st.max, st.hasMax = v, true
	} else if cmp, isNull, err := v.Compare(st.max); err == nil && !isNull && cmp > 0 {
		st.max = v
	}
	if f, err := v.AsFloat64(); err == nil {
		st.wf.push(f)
	}
	return nil
}

func finalizeAggregate(fn ast.AggregateFunc, st aggState) (gluedb.Value, error) {
	switch fn {
	case ast.AggCount:
		return gluedb.NewI64(st.count), nil
	case ast.AggSum:
		if !st.sumSet {
			return gluedb.Null, nil
		}
		return st.sum, nil
	case ast.AggMin:
		if !st.hasMin {
			return gluedb.Null, nil
		}
		return st.min, nil
	case ast.AggMax:
		if !st.hasMax {
			return gluedb.Null, nil
		}
		return st.max, nil
	case ast.AggAvg:
		if st.count == 0 {
			return gluedb.Null, nil
		}
		return gluedb.NewF64(st.wf.mean), nil
	case ast.AggVariance:
		if st.count == 0 {
			return gluedb.Null, nil
		}
		return gluedb.NewF64(st.wf.variance()), nil
	case ast.AggStdev:
		if st.count == 0 {
			return gluedb.Null, nil
		}
		return gluedb.NewF64(math.Sqrt(st.wf.variance())), nil
	}
	return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeNotSupported,
		Message: "unsupported aggregate function " + string(fn)}
}
