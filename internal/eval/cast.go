package eval

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lychee-technology/gluedb"
)

// Cast converts v to target, distinguishing a parse failure (malformed text,
// spec §4.2's ErrCodeCastParseFailure) from a range failure (well-formed but
// out of the target type's domain, ErrCodeCastRangeFailure), per spec §8's
// CAST text round-trip invariant.
func Cast(v gluedb.Value, target gluedb.ColumnType) (gluedb.Value, error) {
	if v.IsNull() {
		return gluedb.Null, nil
	}
	switch target {
	case gluedb.ColumnTypeText:
		return gluedb.NewStr(v.String()), nil
	case gluedb.ColumnTypeBoolean:
		return castToBool(v)
	case gluedb.ColumnTypeI8, gluedb.ColumnTypeI16, gluedb.ColumnTypeI32, gluedb.ColumnTypeI64, gluedb.ColumnTypeI128,
		gluedb.ColumnTypeU8, gluedb.ColumnTypeU16, gluedb.ColumnTypeU32, gluedb.ColumnTypeU64, gluedb.ColumnTypeU128:
		return castToInt(v, target)
	case gluedb.ColumnTypeF32, gluedb.ColumnTypeF64:
		return castToFloat(v, target)
	case gluedb.ColumnTypeDecimal:
		return castToDecimal(v)
	case gluedb.ColumnTypeDate:
		return castToTime(v, "2006-01-02", gluedb.NewDate)
	case gluedb.ColumnTypeTime:
		return castToTime(v, "15:04:05", gluedb.NewTime)
	case gluedb.ColumnTypeTimestamp:
		return castToTime(v, "2006-01-02 15:04:05", gluedb.NewTimestamp)
	default:
		return gluedb.Null, &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeTypeMismatch,
			Message: fmt.Sprintf("CAST to %s is not supported", target)}
	}
}

func castToBool(v gluedb.Value) (gluedb.Value, error) {
	if b, ok := v.Bool(); ok {
		return gluedb.NewBool(b), nil
	}
	if s, ok := v.Str(); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "t", "1", "yes":
			return gluedb.NewBool(true), nil
		case "false", "f", "0", "no":
			return gluedb.NewBool(false), nil
		}
		return gluedb.Null, castParseErr("BOOLEAN", s)
	}
	if f, err := v.AsFloat64(); err == nil {
		return gluedb.NewBool(f != 0), nil
	}
	return gluedb.Null, castParseErr("BOOLEAN", v.String())
}

func castToInt(v gluedb.Value, target gluedb.ColumnType) (gluedb.Value, error) {
	var n int64
	if s, ok := v.Str(); ok {
		parsed, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return gluedb.Null, castParseErr(string(target), s)
		}
		n = parsed
	} else if f, err := v.AsFloat64(); err == nil {
		n = int64(f)
	} else {
		return gluedb.Null, castParseErr(string(target), v.String())
	}
	switch target {
	case gluedb.ColumnTypeI8:
		if n < -128 || n > 127 {
			return gluedb.Null, castRangeErr(string(target), n)
		}
		return gluedb.NewI8(int8(n)), nil
	case gluedb.ColumnTypeI16:
		if n < -32768 || n > 32767 {
			return gluedb.Null, castRangeErr(string(target), n)
		}
		return gluedb.NewI16(int16(n)), nil
	case gluedb.ColumnTypeI32:
		if n < -2147483648 || n > 2147483647 {
			return gluedb.Null, castRangeErr(string(target), n)
		}
		return gluedb.NewI32(int32(n)), nil
	case gluedb.ColumnTypeI64:
		return gluedb.NewI64(n), nil
	case gluedb.ColumnTypeU8, gluedb.ColumnTypeU16, gluedb.ColumnTypeU32, gluedb.ColumnTypeU64:
		if n < 0 {
			return gluedb.Null, castRangeErr(string(target), n)
		}
		switch target {
		case gluedb.ColumnTypeU8:
			if n > 255 {
				return gluedb.Null, castRangeErr(string(target), n)
			}
			return gluedb.NewU8(uint8(n)), nil
		case gluedb.ColumnTypeU16:
			if n > 65535 {
				return gluedb.Null, castRangeErr(string(target), n)
			}
			return gluedb.NewU16(uint16(n)), nil
		case gluedb.ColumnTypeU32:
			if n > 4294967295 {
				return gluedb.Null, castRangeErr(string(target), n)
			}
			return gluedb.NewU32(uint32(n)), nil
		default:
			return gluedb.NewU64(uint64(n)), nil
		}
	default:
		b, err := v.AsBigInt()
		if err != nil {
			return gluedb.Null, castParseErr(string(target), v.String())
		}
		return gluedb.NewI128(b), nil
	}
}

func castToFloat(v gluedb.Value, target gluedb.ColumnType) (gluedb.Value, error) {
	var f float64
	if s, ok := v.Str(); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return gluedb.Null, castParseErr(string(target), s)
		}
		f = parsed
	} else {
		parsed, err := v.AsFloat64()
		if err != nil {
			return gluedb.Null, castParseErr(string(target), v.String())
		}
		f = parsed
	}
	if target == gluedb.ColumnTypeF32 {
		return gluedb.NewF32(float32(f)), nil
	}
	return gluedb.NewF64(f), nil
}

func castToDecimal(v gluedb.Value) (gluedb.Value, error) {
	if d, ok := v.Decimal(); ok {
		return gluedb.NewDecimal(d), nil
	}
	if s, ok := v.Str(); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return gluedb.Null, castParseErr("DECIMAL", s)
		}
		return gluedb.NewDecimal(d), nil
	}
	f, err := v.AsFloat64()
	if err != nil {
		return gluedb.Null, castParseErr("DECIMAL", v.String())
	}
	return gluedb.NewDecimal(decimal.NewFromFloat(f)), nil
}

func castToTime(v gluedb.Value, layout string, ctor func(time.Time) gluedb.Value) (gluedb.Value, error) {
	if t, ok := v.Time(); ok {
		return ctor(t), nil
	}
	s, ok := v.Str()
	if !ok {
		return gluedb.Null, castParseErr(layout, v.String())
	}
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return gluedb.Null, castParseErr(layout, s)
	}
	return ctor(t), nil
}

func castParseErr(target, text string) error {
	return &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeCastParseFailure,
		Message: fmt.Sprintf("cannot parse %q as %s", text, target)}
}

func castRangeErr(target string, n int64) error {
	return &gluedb.Error{Type: gluedb.ErrEvaluate, Code: gluedb.ErrCodeCastRangeFailure,
		Message: fmt.Sprintf("value %d out of range for %s", n, target)}
}
