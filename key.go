package gluedb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"net"
	"time"

	"github.com/google/uuid"
)

// Key is a row identifier: either derived from a primary-key column (or
// tuple of columns) or an engine-assigned monotone identifier. Keys
// implement a total order via a big-endian byte encoding, per spec §3/§9:
// a one-byte tag followed by the type's natural big-endian representation,
// chosen so that byte-lexicographic order equals value order.
type Key struct {
	Value Value
}

// NewKey wraps a Value as a Key after checking it is encodable.
func NewKey(v Value) (Key, error) {
	if !v.Kind().isKeyEncodable() {
		return Key{}, &Error{Type: ErrValue, Code: ErrCodeUnencodableKey,
			Message: fmt.Sprintf("type %s cannot be used as a key", v.Kind())}
	}
	return Key{Value: v}, nil
}

// GeneratedKey mints a storage-assigned identifier, used by AppendData
// backends that do not derive a key from a primary-key column (spec §6).
func GeneratedKey(id uint64) Key {
	return Key{Value: NewU64(id)}
}

func (k Kind) isKeyEncodable() bool {
	switch k {
	case KindMap, KindList, KindFloatVector, KindDecimal, KindInterval, KindPoint:
		return false
	default:
		return true
	}
}

// tag bytes distinguish the type family so that cross-type keys never
// collide, and encode the sign bit for signed integers so that negative
// numbers sort before positive ones in the big-endian scheme (flipping the
// sign bit turns two's-complement order into unsigned lexicographic order).
const (
	tagNull byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagDecimal
	tagStr
	tagBytes
	tagIP
	tagTime
	tagUUID
)

// Encode produces the canonical comparable byte encoding for a Key, per
// spec §3's invariant: a ≤ b as values iff encode(a) ≤ encode(b)
// lexicographically, for all ordered, encodable types.
func (k Key) Encode() ([]byte, error) {
	v := k.Value
	var buf bytes.Buffer
	switch v.kind {
	case KindNull:
		buf.WriteByte(tagNull)
	case KindBool:
		buf.WriteByte(tagBool)
		if v.b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case KindI8, KindI16, KindI32, KindI64, KindI128:
		buf.WriteByte(tagInt)
		n, _ := v.AsBigInt()
		encodeSignedBigEndian(&buf, n, v.kind.bitWidth())
	case KindU8, KindU16, KindU32, KindU64, KindU128:
		buf.WriteByte(tagUint)
		n, _ := v.AsBigInt()
		width := v.kind.bitWidth() / 8
		b := n.Bytes()
		pad := make([]byte, width-len(b))
		buf.Write(pad)
		buf.Write(b)
	case KindF32, KindF64:
		buf.WriteByte(tagFloat)
		f, _ := v.AsFloat64()
		encodeOrderedFloat(&buf, f, v.kind == KindF64)
	case KindStr:
		buf.WriteByte(tagStr)
		buf.WriteString(v.str)
	case KindBytes:
		buf.WriteByte(tagBytes)
		buf.Write(v.bs)
	case KindIP:
		buf.WriteByte(tagIP)
		buf.Write(v.ip.To16())
	case KindDate, KindTime, KindTimestamp:
		buf.WriteByte(tagTime)
		binary.Write(&buf, binary.BigEndian, v.t.UnixNano())
	case KindUUID:
		buf.WriteByte(tagUUID)
		b, _ := v.id.MarshalBinary()
		buf.Write(b)
	case KindDecimal, KindInterval, KindPoint:
		return nil, &Error{Type: ErrValue, Code: ErrCodeUnencodableKey,
			Message: fmt.Sprintf("type %s cannot be used as a key", v.kind)}
	default:
		return nil, &Error{Type: ErrValue, Code: ErrCodeUnencodableKey,
			Message: fmt.Sprintf("type %s cannot be used as a key", v.kind)}
	}
	return buf.Bytes(), nil
}

// DecodeKey inverts Encode, used by persistent backends (storages/pgstore)
// that only have the encoded bytes on disk and must reconstruct a Key to
// hand back through RowIter. The exact declared width of an integer column
// (I8 vs I64) is not recoverable from the encoding alone, so integers
// decode to the narrowest of I64/I128/U64/U128 that fits the byte length;
// this only affects the Kind reported for a scanned key's Value, never its
// ordering or equality; the same narrowing applies to DATE/TIME/TIMESTAMP,
// which all share one encoding and decode back as TIMESTAMP.
func DecodeKey(buf []byte) (Key, error) {
	if len(buf) == 0 {
		return Key{}, &Error{Type: ErrValue, Code: ErrCodeUnencodableKey, Message: "empty key encoding"}
	}
	tag, rest := buf[0], buf[1:]
	switch tag {
	case tagNull:
		return Key{Value: Null}, nil
	case tagBool:
		return Key{Value: NewBool(len(rest) > 0 && rest[0] == 1)}, nil
	case tagInt:
		n := decodeSignedBigEndian(rest)
		if len(rest) > 8 {
			return Key{Value: NewI128(n)}, nil
		}
		return Key{Value: NewI64(n.Int64())}, nil
	case tagUint:
		n := new(big.Int).SetBytes(rest)
		if len(rest) > 8 {
			return Key{Value: NewU128(n)}, nil
		}
		return Key{Value: NewU64(n.Uint64())}, nil
	case tagFloat:
		f := decodeOrderedFloat(rest)
		if len(rest) <= 4 {
			return Key{Value: NewF32(float32(f))}, nil
		}
		return Key{Value: NewF64(f)}, nil
	case tagStr:
		return Key{Value: NewStr(string(rest))}, nil
	case tagBytes:
		return Key{Value: NewBytes(rest)}, nil
	case tagIP:
		return Key{Value: NewIP(net.IP(append([]byte(nil), rest...)))}, nil
	case tagTime:
		ns := int64(binary.BigEndian.Uint64(rest))
		return Key{Value: NewTimestamp(time.Unix(0, ns).UTC())}, nil
	case tagUUID:
		id, err := uuid.FromBytes(rest)
		if err != nil {
			return Key{}, err
		}
		return Key{Value: NewUUID(id)}, nil
	default:
		return Key{}, &Error{Type: ErrValue, Code: ErrCodeUnencodableKey,
			Message: fmt.Sprintf("unknown key tag %d", tag)}
	}
}

// decodeSignedBigEndian inverts encodeSignedBigEndian's sign-bit-offset trick.
func decodeSignedBigEndian(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	offset := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8-1))
	return n.Sub(n, offset)
}

// decodeOrderedFloat inverts encodeOrderedFloat's bit-flip trick. The
// narrow (F32) encoding only keeps the top 32 bits of the transformed
// float64 pattern, so the low 32 mantissa bits of the recovered float64
// are always zero; the result is only precise to float32 resolution,
// which is why it is narrowed back with float32() before use.
func decodeOrderedFloat(b []byte) float64 {
	var bits uint64
	if len(b) <= 4 {
		bits = uint64(binary.BigEndian.Uint32(b)) << 32
	} else {
		bits = binary.BigEndian.Uint64(b)
	}
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	f := math.Float64frombits(bits)
	if len(b) <= 4 {
		return float64(float32(f))
	}
	return f
}

// encodeSignedBigEndian flips the sign bit so that the resulting bytes sort
// in the same order as the signed integer value (two's complement negative
// numbers would otherwise sort after positive ones byte-lexicographically).
func encodeSignedBigEndian(buf *bytes.Buffer, n *big.Int, bits int) {
	width := bits / 8
	offset := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	shifted := new(big.Int).Add(n, offset)
	b := shifted.Bytes()
	pad := make([]byte, width-len(b))
	buf.Write(pad)
	buf.Write(b)
}

// encodeOrderedFloat maps IEEE-754 bits to an order-preserving unsigned
// integer: flip all bits for negative numbers, flip only the sign bit for
// non-negative ones. NaN is pushed to the end of the domain.
func encodeOrderedFloat(buf *bytes.Buffer, f float64, wide bool) {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	if wide {
		binary.Write(buf, binary.BigEndian, bits)
	} else {
		binary.Write(buf, binary.BigEndian, uint32(bits>>32))
	}
}

// Compare orders two keys by comparing their canonical encodings, which by
// construction equals comparing the underlying Values (spec §3 invariant).
func (k Key) Compare(other Key) (int, error) {
	a, err := k.Encode()
	if err != nil {
		return 0, err
	}
	b, err := other.Encode()
	if err != nil {
		return 0, err
	}
	return bytes.Compare(a, b), nil
}

// String renders a Key for diagnostics/logging only; never used in the
// comparison path.
func (k Key) String() string {
	switch k.Value.kind {
	case KindUUID:
		return k.Value.id.String()
	case KindStr:
		return k.Value.str
	default:
		f, err := k.Value.AsFloat64()
		if err == nil {
			return fmt.Sprintf("%v", f)
		}
		return fmt.Sprintf("%v", k.Value)
	}
}

// NewUUIDKey is a convenience constructor mirroring the teacher's
// uuid.UUID-keyed DataRecord.RowID.
func NewUUIDKey(id uuid.UUID) Key {
	return Key{Value: NewUUID(id)}
}
