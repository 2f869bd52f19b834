package gluedb

import (
	"fmt"
	"math"
	"math/big"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tags the variant carried by a Value. Every arithmetic and comparison
// operator in this package dispatches on a pair of Kinds, never on the Go
// type of the payload directly, so that widening and coercion stay in one
// place (widerNumeric, below).
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindF32
	KindF64
	KindDecimal
	KindStr
	KindBytes
	KindIP
	KindDate
	KindTime
	KindTimestamp
	KindInterval
	KindUUID
	KindPoint
	KindList
	KindMap
	KindFloatVector
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOLEAN"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindI128:
		return "I128"
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindU128:
		return "U128"
	case KindF32:
		return "F32"
	case KindF64:
		return "F64"
	case KindDecimal:
		return "DECIMAL"
	case KindStr:
		return "TEXT"
	case KindBytes:
		return "BYTEA"
	case KindIP:
		return "INET"
	case KindDate:
		return "DATE"
	case KindTime:
		return "TIME"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindInterval:
		return "INTERVAL"
	case KindUUID:
		return "UUID"
	case KindPoint:
		return "POINT"
	case KindList:
		return "LIST"
	case KindMap:
		return "MAP"
	case KindFloatVector:
		return "VECTOR"
	default:
		return "UNKNOWN"
	}
}

func (k Kind) isNumeric() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128,
		KindU8, KindU16, KindU32, KindU64, KindU128,
		KindF32, KindF64, KindDecimal:
		return true
	}
	return false
}

func (k Kind) isSignedInt() bool {
	switch k {
	case KindI8, KindI16, KindI32, KindI64, KindI128:
		return true
	}
	return false
}

func (k Kind) isUnsignedInt() bool {
	switch k {
	case KindU8, KindU16, KindU32, KindU64, KindU128:
		return true
	}
	return false
}

func (k Kind) isInt() bool { return k.isSignedInt() || k.isUnsignedInt() }

func (k Kind) isFloat() bool { return k == KindF32 || k == KindF64 }

func (k Kind) bitWidth() int {
	switch k {
	case KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32:
		return 32
	case KindI64, KindU64:
		return 64
	case KindI128, KindU128:
		return 128
	}
	return 0
}

// Point is a 2D coordinate, used by geometric columns.
type Point struct{ X, Y float64 }

// Interval is a YEAR-MONTH or DAY-TIME span; exactly one of the two groups
// is meaningful for a given value, matching SQL's interval qualifier rules.
type Interval struct {
	Months int32 // YEAR TO MONTH
	Micros int64 // DAY TO SECOND, in microseconds
}

// String renders an Interval as "<n> MONTH" for a year-month span and as Go's
// time.Duration text (e.g. "1h30m0s") otherwise; CAST to TEXT and diagnostics
// use it. This is not SQL interval literal syntax, and no CAST parses it back.
func (iv Interval) String() string {
	if iv.Months != 0 {
		return fmt.Sprintf("%d MONTH", iv.Months)
	}
	d := time.Duration(iv.Micros) * time.Microsecond
	return d.String()
}

// Value is the tagged scalar described in spec.md §3. A Value is immutable;
// every operation returns a new Value rather than mutating in place.
type Value struct {
	kind Kind

	b    bool
	i64  int64
	u64  uint64
	big  *big.Int // backing store for I128/U128
	f32  float32
	f64  float64
	dec  decimal.Decimal
	str  string
	bs   []byte
	ip   net.IP
	t    time.Time
	ival Interval
	id   uuid.UUID
	pt   Point
	list []Value
	mp   map[string]Value
	vec  []float32
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Null is the absorbing element for arithmetic and comparison (spec §3, §4.1).
var Null = Value{kind: KindNull}

func NewBool(b bool) Value          { return Value{kind: KindBool, b: b} }
func NewI8(n int8) Value            { return Value{kind: KindI8, i64: int64(n)} }
func NewI16(n int16) Value          { return Value{kind: KindI16, i64: int64(n)} }
func NewI32(n int32) Value          { return Value{kind: KindI32, i64: int64(n)} }
func NewI64(n int64) Value          { return Value{kind: KindI64, i64: n} }
func NewI128(n *big.Int) Value      { return Value{kind: KindI128, big: new(big.Int).Set(n)} }
func NewU8(n uint8) Value           { return Value{kind: KindU8, u64: uint64(n)} }
func NewU16(n uint16) Value         { return Value{kind: KindU16, u64: uint64(n)} }
func NewU32(n uint32) Value         { return Value{kind: KindU32, u64: uint64(n)} }
func NewU64(n uint64) Value         { return Value{kind: KindU64, u64: n} }
func NewU128(n *big.Int) Value      { return Value{kind: KindU128, big: new(big.Int).Set(n)} }
func NewF32(n float32) Value        { return Value{kind: KindF32, f32: n} }
func NewF64(n float64) Value        { return Value{kind: KindF64, f64: n} }
func NewDecimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }
func NewStr(s string) Value         { return Value{kind: KindStr, str: s} }
func NewBytes(b []byte) Value       { return Value{kind: KindBytes, bs: append([]byte(nil), b...)} }
func NewIP(ip net.IP) Value         { return Value{kind: KindIP, ip: ip} }
func NewDate(t time.Time) Value     { return Value{kind: KindDate, t: t} }
func NewTime(t time.Time) Value     { return Value{kind: KindTime, t: t} }
func NewTimestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }
func NewInterval(i Interval) Value  { return Value{kind: KindInterval, ival: i} }
func NewUUID(id uuid.UUID) Value    { return Value{kind: KindUUID, id: id} }
func NewPoint(p Point) Value        { return Value{kind: KindPoint, pt: p} }
func NewList(vs []Value) Value      { return Value{kind: KindList, list: vs} }
func NewMap(m map[string]Value) Value { return Value{kind: KindMap, mp: m} }

// NewFloatVector carries its dimension implicitly as len(vec), per spec §3/§9.
func NewFloatVector(vec []float32) Value { return Value{kind: KindFloatVector, vec: vec} }

func (v Value) Bool() (bool, bool)          { return v.b, v.kind == KindBool }
func (v Value) Str() (string, bool)         { return v.str, v.kind == KindStr }
func (v Value) Bytes() ([]byte, bool)       { return v.bs, v.kind == KindBytes }
func (v Value) UUID() (uuid.UUID, bool)     { return v.id, v.kind == KindUUID }
func (v Value) Time() (time.Time, bool)     { return v.t, v.kind == KindDate || v.kind == KindTime || v.kind == KindTimestamp }
func (v Value) Interval() (Interval, bool)  { return v.ival, v.kind == KindInterval }
func (v Value) List() ([]Value, bool)       { return v.list, v.kind == KindList }
func (v Value) Map() (map[string]Value, bool) { return v.mp, v.kind == KindMap }
func (v Value) FloatVector() ([]float32, bool) { return v.vec, v.kind == KindFloatVector }
func (v Value) Decimal() (decimal.Decimal, bool) { return v.dec, v.kind == KindDecimal }

// AsFloat64 converts any numeric Value to float64, lossily for Decimal/I128/U128.
func (v Value) AsFloat64() (float64, error) {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return float64(v.i64), nil
	case KindU8, KindU16, KindU32, KindU64:
		return float64(v.u64), nil
	case KindI128, KindU128:
		f, _ := new(big.Float).SetInt(v.big).Float64()
		return f, nil
	case KindF32:
		return float64(v.f32), nil
	case KindF64:
		return v.f64, nil
	case KindDecimal:
		f, _ := v.dec.Float64()
		return f, nil
	}
	return 0, newValueErr(ErrCodeLiteralCoercion, fmt.Sprintf("cannot convert %s to float64", v.kind))
}

// AsBigInt converts any integer Value to *big.Int, exactly.
func (v Value) AsBigInt() (*big.Int, error) {
	switch v.kind {
	case KindI8, KindI16, KindI32, KindI64:
		return big.NewInt(v.i64), nil
	case KindU8, KindU16, KindU32, KindU64:
		return new(big.Int).SetUint64(v.u64), nil
	case KindI128, KindU128:
		return new(big.Int).Set(v.big), nil
	}
	return nil, newValueErr(ErrCodeLiteralCoercion, fmt.Sprintf("%s is not an integer", v.kind))
}

// widerNumeric picks the "wider of the two operands" result Kind per spec §4.1:
// same-sign integers widen to the larger width; mixed-sign integers widen to
// a signed type at least as wide as both; any float operand wins over any
// integer operand; Decimal wins over everything except float.
func widerNumeric(a, b Kind) (Kind, error) {
	if !a.isNumeric() || !b.isNumeric() {
		return 0, fmt.Errorf("non-numeric operand")
	}
	if a.isFloat() || b.isFloat() {
		if a == KindF64 || b == KindF64 {
			return KindF64, nil
		}
		return KindF32, nil
	}
	if a == KindDecimal || b == KindDecimal {
		return KindDecimal, nil
	}
	wa, wb := a.bitWidth(), b.bitWidth()
	width := wa
	if wb > width {
		width = wb
	}
	signed := a.isSignedInt() || b.isSignedInt()
	if a.isSignedInt() != b.isSignedInt() && width < 128 {
		// mixed sign widens one extra step to keep the signed range safe
		width *= 2
		if width > 128 {
			width = 128
		}
	}
	if signed {
		switch {
		case width <= 8:
			return KindI8, nil
		case width <= 16:
			return KindI16, nil
		case width <= 32:
			return KindI32, nil
		case width <= 64:
			return KindI64, nil
		default:
			return KindI128, nil
		}
	}
	switch {
	case width <= 8:
		return KindU8, nil
	case width <= 16:
		return KindU16, nil
	case width <= 32:
		return KindU32, nil
	case width <= 64:
		return KindU64, nil
	default:
		return KindU128, nil
	}
}

func fromBigInt(kind Kind, n *big.Int) (Value, error) {
	switch kind {
	case KindI128, KindU128:
		return Value{kind: kind, big: n}, nil
	}
	if !n.IsInt64() && kind.isSignedInt() {
		return Null, overflowErr(kind)
	}
	switch kind {
	case KindI8:
		n64 := n.Int64()
		if n64 < math.MinInt8 || n64 > math.MaxInt8 {
			return Null, overflowErr(kind)
		}
		return NewI8(int8(n64)), nil
	case KindI16:
		n64 := n.Int64()
		if n64 < math.MinInt16 || n64 > math.MaxInt16 {
			return Null, overflowErr(kind)
		}
		return NewI16(int16(n64)), nil
	case KindI32:
		n64 := n.Int64()
		if n64 < math.MinInt32 || n64 > math.MaxInt32 {
			return Null, overflowErr(kind)
		}
		return NewI32(int32(n64)), nil
	case KindI64:
		return NewI64(n.Int64()), nil
	case KindU8, KindU16, KindU32, KindU64:
		if n.Sign() < 0 || !n.IsUint64() {
			return Null, overflowErr(kind)
		}
		u := n.Uint64()
		switch kind {
		case KindU8:
			if u > math.MaxUint8 {
				return Null, overflowErr(kind)
			}
			return NewU8(uint8(u)), nil
		case KindU16:
			if u > math.MaxUint16 {
				return Null, overflowErr(kind)
			}
			return NewU16(uint16(u)), nil
		case KindU32:
			if u > math.MaxUint32 {
				return Null, overflowErr(kind)
			}
			return NewU32(uint32(u)), nil
		default:
			return NewU64(u), nil
		}
	}
	return Null, fmt.Errorf("unsupported integer kind %s", kind)
}

func overflowErr(kind Kind) error {
	return &Error{Type: ErrValue, Code: ErrCodeOverflow, Message: fmt.Sprintf("value does not fit in %s", kind)}
}

// BinaryOp enumerates the operators arithmetic/comparison dispatch on.
type BinaryOp string

const (
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpMod    BinaryOp = "%"
	OpBitAnd BinaryOp = "&"
	OpBitOr  BinaryOp = "|"
	OpBitXor BinaryOp = "^"
	OpShl    BinaryOp = "<<"
	OpShr    BinaryOp = ">>"
	OpEq     BinaryOp = "="
	OpNotEq  BinaryOp = "<>"
	OpLt     BinaryOp = "<"
	OpLtEq   BinaryOp = "<="
	OpGt     BinaryOp = ">"
	OpGtEq   BinaryOp = ">="
	OpStrConcat BinaryOp = "||"
)

// Arith evaluates a binary arithmetic operator. Null propagates per spec §3/§4.1:
// any operation with Null yields Null, never an error.
func (v Value) Arith(op BinaryOp, rhs Value) (Value, error) {
	if v.kind == KindNull || rhs.kind == KindNull {
		return Null, nil
	}
	if op == OpStrConcat {
		return v.concat(rhs)
	}
	switch op {
	case OpBitAnd, OpBitOr, OpBitXor, OpShl, OpShr:
		return v.bitwise(op, rhs)
	}
	if !v.kind.isNumeric() || !rhs.kind.isNumeric() {
		return Null, unsupportedBinaryErr(op, v.kind, rhs.kind)
	}
	result, err := widerNumeric(v.kind, rhs.kind)
	if err != nil {
		return Null, unsupportedBinaryErr(op, v.kind, rhs.kind)
	}

	if result.isFloat() {
		a, _ := v.AsFloat64()
		b, _ := rhs.AsFloat64()
		f, err := floatArith(op, a, b)
		if err != nil {
			return Null, err
		}
		if result == KindF32 {
			return NewF32(float32(f)), nil
		}
		return NewF64(f), nil
	}
	if result == KindDecimal {
		ad := v.toDecimal()
		bd := rhs.toDecimal()
		return decimalArith(op, ad, bd)
	}

	a, errA := v.AsBigInt()
	b, errB := rhs.AsBigInt()
	if errA != nil || errB != nil {
		return Null, unsupportedBinaryErr(op, v.kind, rhs.kind)
	}
	n := new(big.Int)
	switch op {
	case OpAdd:
		n.Add(a, b)
	case OpSub:
		n.Sub(a, b)
	case OpMul:
		n.Mul(a, b)
	case OpDiv:
		if b.Sign() == 0 {
			return Null, divisorZeroErr()
		}
		n.Quo(a, b)
	case OpMod:
		if b.Sign() == 0 {
			return Null, divisorZeroErr()
		}
		n.Rem(a, b)
	default:
		return Null, unsupportedBinaryErr(op, v.kind, rhs.kind)
	}
	return fromBigInt(result, n)
}

// Negate implements unary minus: 0 - v, widened the same way binary
// subtraction would be, so -x and 0-x always agree.
func (v Value) Negate() (Value, error) {
	if v.kind == KindNull {
		return Null, nil
	}
	if !v.kind.isNumeric() {
		return Null, unsupportedBinaryErr(OpSub, v.kind, v.kind)
	}
	zero := v
	switch {
	case v.kind.isFloat():
		zero = NewF64(0)
	case v.kind == KindDecimal:
		zero = NewDecimal(decimal.Zero)
	default:
		zero = NewI64(0)
	}
	return zero.Arith(OpSub, v)
}

func floatArith(op BinaryOp, a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, divisorZeroErr()
		}
		return a / b, nil
	case OpMod:
		if b == 0 {
			return 0, divisorZeroErr()
		}
		return math.Mod(a, b), nil
	}
	return 0, fmt.Errorf("unsupported float operator %s", op)
}

func (v Value) toDecimal() decimal.Decimal {
	if v.kind == KindDecimal {
		return v.dec
	}
	if v.kind.isFloat() {
		f, _ := v.AsFloat64()
		return decimal.NewFromFloat(f)
	}
	n, _ := v.AsBigInt()
	return decimal.NewFromBigInt(n, 0)
}

func decimalArith(op BinaryOp, a, b decimal.Decimal) (Value, error) {
	switch op {
	case OpAdd:
		return NewDecimal(a.Add(b)), nil
	case OpSub:
		return NewDecimal(a.Sub(b)), nil
	case OpMul:
		return NewDecimal(a.Mul(b)), nil
	case OpDiv:
		if b.IsZero() {
			return Null, divisorZeroErr()
		}
		return NewDecimal(a.Div(b)), nil
	case OpMod:
		if b.IsZero() {
			return Null, divisorZeroErr()
		}
		return NewDecimal(a.Mod(b)), nil
	}
	return Null, fmt.Errorf("unsupported decimal operator %s", op)
}

func (v Value) concat(rhs Value) (Value, error) {
	if v.kind != KindStr || rhs.kind != KindStr {
		return Null, unsupportedBinaryErr(OpStrConcat, v.kind, rhs.kind)
	}
	return NewStr(v.str + rhs.str), nil
}

func (v Value) bitwise(op BinaryOp, rhs Value) (Value, error) {
	if !v.kind.isInt() || !rhs.kind.isInt() {
		return Null, unsupportedBinaryErr(op, v.kind, rhs.kind)
	}
	a, _ := v.AsBigInt()
	b, _ := rhs.AsBigInt()
	result, err := widerNumeric(v.kind, rhs.kind)
	if err != nil {
		return Null, unsupportedBinaryErr(op, v.kind, rhs.kind)
	}
	n := new(big.Int)
	switch op {
	case OpBitAnd:
		n.And(a, b)
	case OpBitOr:
		n.Or(a, b)
	case OpBitXor:
		n.Xor(a, b)
	case OpShl, OpShr:
		if rhs.kind.isSignedInt() && b.Sign() < 0 {
			return Null, &Error{Type: ErrEvaluate, Code: ErrCodeShiftAmount, Message: "shift amount must be non-negative"}
		}
		if !b.IsInt64() || b.Int64() > math.MaxInt32 {
			return Null, &Error{Type: ErrEvaluate, Code: ErrCodeShiftAmount, Message: "shift amount must fit in 32 bits"}
		}
		shift := uint(b.Int64())
		if int(shift) >= v.kind.bitWidth() {
			return Null, &Error{Type: ErrEvaluate, Code: ErrCodeShiftAmount, Message: "shift amount must be less than operand width"}
		}
		if op == OpShl {
			n.Lsh(a, shift)
		} else {
			n.Rsh(a, shift)
		}
	}
	return fromBigInt(result, n)
}

func divisorZeroErr() error {
	return &Error{Type: ErrEvaluate, Code: ErrCodeDivisorZero, Message: "division or modulo by zero"}
}

func unsupportedBinaryErr(op BinaryOp, a, b Kind) error {
	return &Error{Type: ErrEvaluate, Code: ErrCodeUnsupportedBinaryOp,
		Message: fmt.Sprintf("unsupported binary operation %s between %s and %s", op, a, b)}
}

// Compare implements the ordering contract of spec §4.1: numeric types
// compare after promotion to a common width, temporal/text/bytes compare
// within their own family, NaN sorts last, and cross-family comparison is
// an error. isNull is true when the comparison is not a "definite" true/false
// (i.e. either side is Null), matching the three-valued semantics used by
// Filter and IN.
func (v Value) Compare(rhs Value) (cmp int, isNull bool, err error) {
	if v.kind == KindNull || rhs.kind == KindNull {
		return 0, true, nil
	}
	if v.kind.isNumeric() && rhs.kind.isNumeric() {
		return compareNumeric(v, rhs)
	}
	if v.kind != rhs.kind {
		return 0, false, &Error{Type: ErrEvaluate, Code: ErrCodeUnsupportedBinaryOp,
			Message: fmt.Sprintf("cannot compare %s with %s", v.kind, rhs.kind)}
	}
	switch v.kind {
	case KindBool:
		return boolCmp(v.b, rhs.b), false, nil
	case KindStr:
		return strings.Compare(v.str, rhs.str), false, nil
	case KindBytes:
		c := 0
		switch {
		case string(v.bs) < string(rhs.bs):
			c = -1
		case string(v.bs) > string(rhs.bs):
			c = 1
		}
		return c, false, nil
	case KindDate, KindTime, KindTimestamp:
		switch {
		case v.t.Before(rhs.t):
			return -1, false, nil
		case v.t.After(rhs.t):
			return 1, false, nil
		}
		return 0, false, nil
	case KindUUID:
		return strings.Compare(v.id.String(), rhs.id.String()), false, nil
	case KindIP:
		return strings.Compare(v.ip.String(), rhs.ip.String()), false, nil
	}
	return 0, false, &Error{Type: ErrEvaluate, Code: ErrCodeUnsupportedBinaryOp,
		Message: fmt.Sprintf("%s is not an ordered type", v.kind)}
}

func boolCmp(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

// compareNumeric compares as decimals when either side is a Decimal, as
// float64 when either side is a float, and otherwise exactly via big.Int.
// NaN always sorts last.
func compareNumeric(a, b Value) (int, bool, error) {
	if a.kind == KindDecimal || b.kind == KindDecimal {
		return a.toDecimal().Cmp(b.toDecimal()), false, nil
	}
	if a.kind.isFloat() || b.kind.isFloat() {
		fa, _ := a.AsFloat64()
		fb, _ := b.AsFloat64()
		aNaN, bNaN := math.IsNaN(fa), math.IsNaN(fb)
		switch {
		case aNaN && bNaN:
			return 0, false, nil
		case aNaN:
			return 1, false, nil
		case bNaN:
			return -1, false, nil
		}
		switch {
		case fa < fb:
			return -1, false, nil
		case fa > fb:
			return 1, false, nil
		}
		return 0, false, nil
	}
	ba, _ := a.AsBigInt()
	bb, _ := b.AsBigInt()
	return ba.Cmp(bb), false, nil
}

// SortValues sorts a slice of Values using Compare, placing Null last
// regardless of direction (callers reverse for DESC and re-pin nulls per
// their NULLS FIRST/LAST policy).
func SortValues(vs []Value, desc bool) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.IsNull() {
			return false
		}
		if b.IsNull() {
			return true
		}
		c, isNull, err := a.Compare(b)
		if err != nil || isNull {
			return false
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func newValueErr(code, msg string) error {
	return &Error{Type: ErrValue, Code: code, Message: msg}
}

// String renders a Value for diagnostics, index canonical keys, and CAST's
// text round-trip path (spec §4.2's "CAST to/from TEXT"). It is not a SQL
// literal renderer: strings are not quoted and intervals use
// Interval.String's form.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindI8, KindI16, KindI32, KindI64, KindI128:
		n, _ := v.AsBigInt()
		return n.String()
	case KindU8, KindU16, KindU32, KindU64, KindU128:
		n, _ := v.AsBigInt()
		return n.String()
	case KindF32:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v.f32), "0"), ".")
	case KindF64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v.f64), "0"), ".")
	case KindDecimal:
		return v.dec.String()
	case KindStr:
		return v.str
	case KindBytes:
		return fmt.Sprintf("%x", v.bs)
	case KindIP:
		return v.ip.String()
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindTime:
		return v.t.Format("15:04:05")
	case KindTimestamp:
		return v.t.Format("2006-01-02 15:04:05")
	case KindInterval:
		return v.ival.String()
	case KindUUID:
		return v.id.String()
	case KindPoint:
		return fmt.Sprintf("POINT(%g %g)", v.pt.X, v.pt.Y)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, 0, len(v.mp))
		for k, e := range v.mp {
			parts = append(parts, k+": "+e.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFloatVector:
		parts := make([]string, len(v.vec))
		for i, f := range v.vec {
			parts[i] = fmt.Sprintf("%g", f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<unknown>"
	}
}
