package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/lychee-technology/gluedb"
)

// Builtins is the scalar function registry consulted after a backend's
// gluedb.CustomFunction capability: a backend-registered function of the
// same name is found first and shadows the built-in.
var Builtins = map[string]func(args []gluedb.Value) (gluedb.Value, error){
	"UPPER":       fn1(strUpper),
	"LOWER":       fn1(strLower),
	"LENGTH":      fn1(strLength),
	"TRIM":        fn1(strTrim),
	"LTRIM":       fn1(strLtrim),
	"RTRIM":       fn1(strRtrim),
	"SUBSTR":      fnSubstr,
	"SUBSTRING":   fnSubstr,
	"CONCAT":      fnConcat,
	"ABS":         fn1(fnAbs),
	"CEIL":        fn1(fnCeil),
	"FLOOR":       fn1(fnFloor),
	"ROUND":       fnRound,
	"SQRT":        fn1(fnSqrt),
	"COALESCE":    fnCoalesce,
	"IFNULL":      fnIfNull,
	"NULLIF":      fnNullIf,
	"COS_SIM":     fn2(cosineSimilarity),
	"EUCLID_DIST": fn2(euclideanDistance),
	"MANHATTAN":   fn2(manhattanDistance),
	"CHEBYSHEV":   fn2(chebyshevDistance),
	"JACCARD":     fn2(jaccardDistance),
	"MINKOWSKI":   fnMinkowski,
	"CANBERRA":    fn2(canberraDistance),
	"HAMMING":     fn2(hammingDistance),
}

// CallBuiltin dispatches a function name through Builtins, used by
// internal/execute's Context implementation as the fallback after
// gluedb.CustomFunction lookups per spec §4.2.
func CallBuiltin(name string, args []gluedb.Value) (gluedb.Value, bool, error) {
	fn, ok := Builtins[strings.ToUpper(name)]
	if !ok {
		return gluedb.Null, false, nil
	}
	v, err := fn(args)
	return v, true, err
}

func fn1(f func(gluedb.Value) (gluedb.Value, error)) func([]gluedb.Value) (gluedb.Value, error) {
	return func(args []gluedb.Value) (gluedb.Value, error) {
		if err := arity(args, 1); err != nil {
			return gluedb.Null, err
		}
		if args[0].IsNull() {
			return gluedb.Null, nil
		}
		return f(args[0])
	}
}

func fn2(f func(a, b gluedb.Value) (gluedb.Value, error)) func([]gluedb.Value) (gluedb.Value, error) {
	return func(args []gluedb.Value) (gluedb.Value, error) {
		if err := arity(args, 2); err != nil {
			return gluedb.Null, err
		}
		if args[0].IsNull() || args[1].IsNull() {
			return gluedb.Null, nil
		}
		return f(args[0], args[1])
	}
}

func arity(args []gluedb.Value, want int) error {
	if len(args) != want {
		return &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeArityMismatch,
			Message: fmt.Sprintf("expected %d argument(s), got %d", want, len(args))}
	}
	return nil
}

func strUpper(v gluedb.Value) (gluedb.Value, error) {
	s, err := asStr(v)
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewStr(strings.ToUpper(s)), nil
}

func strLower(v gluedb.Value) (gluedb.Value, error) {
	s, err := asStr(v)
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewStr(strings.ToLower(s)), nil
}

func strLength(v gluedb.Value) (gluedb.Value, error) {
	s, err := asStr(v)
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewI64(int64(len([]rune(s)))), nil
}

func strTrim(v gluedb.Value) (gluedb.Value, error) {
	s, err := asStr(v)
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewStr(strings.TrimSpace(s)), nil
}

func strLtrim(v gluedb.Value) (gluedb.Value, error) {
	s, err := asStr(v)
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewStr(strings.TrimLeft(s, " \t\n\r")), nil
}

func strRtrim(v gluedb.Value) (gluedb.Value, error) {
	s, err := asStr(v)
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewStr(strings.TrimRight(s, " \t\n\r")), nil
}

func fnSubstr(args []gluedb.Value) (gluedb.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeArityMismatch,
			Message: "SUBSTR expects 2 or 3 arguments"}
	}
	for _, a := range args {
		if a.IsNull() {
			return gluedb.Null, nil
		}
	}
	s, err := asStr(args[0])
	if err != nil {
		return gluedb.Null, err
	}
	start, err := args[1].AsFloat64()
	if err != nil {
		return gluedb.Null, err
	}
	runes := []rune(s)
	from := int(start) - 1
	if from < 0 {
		from = 0
	}
	if from > len(runes) {
		from = len(runes)
	}
	to := len(runes)
	if len(args) == 3 {
		length, err := args[2].AsFloat64()
		if err != nil {
			return gluedb.Null, err
		}
		if length < 0 {
			return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeNegativeLength,
				Message: "SUBSTR length must not be negative"}
		}
		to = from + int(length)
		if to > len(runes) {
			to = len(runes)
		}
	}
	return gluedb.NewStr(string(runes[from:to])), nil
}

func fnConcat(args []gluedb.Value) (gluedb.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull() {
			return gluedb.Null, nil
		}
		b.WriteString(a.String())
	}
	return gluedb.NewStr(b.String()), nil
}

func fnAbs(v gluedb.Value) (gluedb.Value, error) {
	f, err := v.AsFloat64()
	if err != nil {
		return gluedb.Null, err
	}
	if v.Kind() == gluedb.KindF32 {
		return gluedb.NewF32(float32(math.Abs(f))), nil
	}
	if v.Kind().String() == "I64" || v.Kind().String() == "I32" || v.Kind().String() == "I16" || v.Kind().String() == "I8" {
		n, _ := v.AsBigInt()
		n.Abs(n)
		return gluedb.NewI64(n.Int64()), nil
	}
	return gluedb.NewF64(math.Abs(f)), nil
}

func fnCeil(v gluedb.Value) (gluedb.Value, error) {
	f, err := v.AsFloat64()
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewF64(math.Ceil(f)), nil
}

func fnFloor(v gluedb.Value) (gluedb.Value, error) {
	f, err := v.AsFloat64()
	if err != nil {
		return gluedb.Null, err
	}
	return gluedb.NewF64(math.Floor(f)), nil
}

func fnRound(args []gluedb.Value) (gluedb.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeArityMismatch,
			Message: "ROUND expects 1 or 2 arguments"}
	}
	if args[0].IsNull() {
		return gluedb.Null, nil
	}
	f, err := args[0].AsFloat64()
	if err != nil {
		return gluedb.Null, err
	}
	places := 0.0
	if len(args) == 2 && !args[1].IsNull() {
		places, err = args[1].AsFloat64()
		if err != nil {
			return gluedb.Null, err
		}
	}
	mult := math.Pow(10, places)
	return gluedb.NewF64(math.Round(f*mult) / mult), nil
}

func fnSqrt(v gluedb.Value) (gluedb.Value, error) {
	f, err := v.AsFloat64()
	if err != nil {
		return gluedb.Null, err
	}
	if f < 0 {
		return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeCastRangeFailure,
			Message: "SQRT of a negative number"}
	}
	return gluedb.NewF64(math.Sqrt(f)), nil
}

func fnCoalesce(args []gluedb.Value) (gluedb.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return gluedb.Null, nil
}

func fnIfNull(args []gluedb.Value) (gluedb.Value, error) {
	if err := arity(args, 2); err != nil {
		return gluedb.Null, err
	}
	if !args[0].IsNull() {
		return args[0], nil
	}
	return args[1], nil
}

func fnNullIf(args []gluedb.Value) (gluedb.Value, error) {
	if err := arity(args, 2); err != nil {
		return gluedb.Null, err
	}
	if args[0].IsNull() || args[1].IsNull() {
		return args[0], nil
	}
	cmp, isNull, err := args[0].Compare(args[1])
	if err != nil {
		return gluedb.Null, err
	}
	if !isNull && cmp == 0 {
		return gluedb.Null, nil
	}
	return args[0], nil
}
