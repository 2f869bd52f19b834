package eval

import (
	"math"

	"github.com/lychee-technology/gluedb"
)

// Vector similarity/distance functions (spec §4.2's VECTOR type support),
// grounded on original_source/core/src/data/value/vector.rs's similarity
// suite. Every function requires two equal-length FloatVector operands.

func vectorPair(a, b gluedb.Value) ([]float32, []float32, error) {
	av, ok := a.FloatVector()
	if !ok {
		return nil, nil, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeTypeMismatch,
			Message: "expected VECTOR, got " + a.Kind().String()}
	}
	bv, ok := b.FloatVector()
	if !ok {
		return nil, nil, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeTypeMismatch,
			Message: "expected VECTOR, got " + b.Kind().String()}
	}
	if len(av) != len(bv) {
		return nil, nil, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeDimensionMismatch,
			Message: "vector dimensions do not match"}
	}
	return av, bv, nil
}

func cosineSimilarity(a, b gluedb.Value) (gluedb.Value, error) {
	av, bv, err := vectorPair(a, b)
	if err != nil {
		return gluedb.Null, err
	}
	var dot, na, nb float64
	for i := range av {
		dot += float64(av[i]) * float64(bv[i])
		na += float64(av[i]) * float64(av[i])
		nb += float64(bv[i]) * float64(bv[i])
	}
	if na == 0 || nb == 0 {
		return gluedb.NewF64(0), nil
	}
	return gluedb.NewF64(dot / (math.Sqrt(na) * math.Sqrt(nb))), nil
}

func euclideanDistance(a, b gluedb.Value) (gluedb.Value, error) {
	av, bv, err := vectorPair(a, b)
	if err != nil {
		return gluedb.Null, err
	}
	var sum float64
	for i := range av {
		d := float64(av[i]) - float64(bv[i])
		sum += d * d
	}
	return gluedb.NewF64(math.Sqrt(sum)), nil
}

func manhattanDistance(a, b gluedb.Value) (gluedb.Value, error) {
	av, bv, err := vectorPair(a, b)
	if err != nil {
		return gluedb.Null, err
	}
	var sum float64
	for i := range av {
		sum += math.Abs(float64(av[i]) - float64(bv[i]))
	}
	return gluedb.NewF64(sum), nil
}

func chebyshevDistance(a, b gluedb.Value) (gluedb.Value, error) {
	av, bv, err := vectorPair(a, b)
	if err != nil {
		return gluedb.Null, err
	}
	var max float64
	for i := range av {
		d := math.Abs(float64(av[i]) - float64(bv[i]))
		if d > max {
			max = d
		}
	}
	return gluedb.NewF64(max), nil
}

func jaccardDistance(a, b gluedb.Value) (gluedb.Value, error) {
	av, bv, err := vectorPair(a, b)
	if err != nil {
		return gluedb.Null, err
	}
	var minSum, maxSum float64
	for i := range av {
		x, y := float64(av[i]), float64(bv[i])
		if x < y {
			minSum += x
			maxSum += y
		} else {
			minSum += y
			maxSum += x
		}
	}
	if maxSum == 0 {
		return gluedb.NewF64(0), nil
	}
	return gluedb.NewF64(1 - minSum/maxSum), nil
}

func fnMinkowski(args []gluedb.Value) (gluedb.Value, error) {
	if err := arity(args, 3); err != nil {
		return gluedb.Null, err
	}
	if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
		return gluedb.Null, nil
	}
	av, bv, err := vectorPair(args[0], args[1])
	if err != nil {
		return gluedb.Null, err
	}
	p, err := args[2].AsFloat64()
	if err != nil {
		return gluedb.Null, err
	}
	if p <= 0 {
		return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeCastRangeFailure,
			Message: "Minkowski order must be positive"}
	}
	var sum float64
	for i := range av {
		sum += math.Pow(math.Abs(float64(av[i])-float64(bv[i])), p)
	}
	return gluedb.NewF64(math.Pow(sum, 1/p)), nil
}

func canberraDistance(a, b gluedb.Value) (gluedb.Value, error) {
	av, bv, err := vectorPair(a, b)
	if err != nil {
		return gluedb.Null, err
	}
	var sum float64
	for i := range av {
		denom := math.Abs(float64(av[i])) + math.Abs(float64(bv[i]))
		if denom == 0 {
			continue
		}
		sum += math.Abs(float64(av[i])-float64(bv[i])) / denom
	}
	return gluedb.NewF64(sum), nil
}

func hammingDistance(a, b gluedb.Value) (gluedb.Value, error) {
	av, bv, err := vectorPair(a, b)
	if err != nil {
		return gluedb.Null, err
	}
	var count float64
	for i := range av {
		if av[i] != bv[i] {
			count++
		}
	}
	return gluedb.NewF64(count), nil
}
