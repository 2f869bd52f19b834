package duckstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/lychee-technology/gluedb"
)

// wireValue is the JSON-text-storable form of a gluedb.Value. DuckDB has no
// native JSONB type the way Postgres does (the json extension only adds a
// handful of functions over plain VARCHAR), so duckstore stores this
// encoding as a VARCHAR column rather than a JSONB one; the shape mirrors
// storages/pgstore's codec.go since both are "row as one encoded document"
// backends grounded on the same EAV-as-JSON attribute pattern.
type wireValue struct {
	K string `json:"k"`
	V any    `json:"v,omitempty"`
}

func encodeValue(v gluedb.Value) (wireValue, error) {
	k := v.Kind()
	w := wireValue{K: k.String()}
	switch k {
	case gluedb.KindNull:
		return w, nil
	case gluedb.KindBool:
		b, _ := v.Bool()
		w.V = b
	case gluedb.KindI8, gluedb.KindI16, gluedb.KindI32, gluedb.KindI64,
		gluedb.KindU8, gluedb.KindU16, gluedb.KindU32, gluedb.KindU64,
		gluedb.KindI128, gluedb.KindU128:
		n, err := v.AsBigInt()
		if err != nil {
			return w, err
		}
		w.V = n.String()
	case gluedb.KindF32, gluedb.KindF64:
		f, err := v.AsFloat64()
		if err != nil {
			return w, err
		}
		w.V = f
	case gluedb.KindDecimal:
		d, _ := v.Decimal()
		w.V = d.String()
	case gluedb.KindStr:
		s, _ := v.Str()
		w.V = s
	case gluedb.KindBytes:
		bs, _ := v.Bytes()
		w.V = base64.StdEncoding.EncodeToString(bs)
	case gluedb.KindIP:
		w.V = v.String()
	case gluedb.KindDate, gluedb.KindTime, gluedb.KindTimestamp:
		t, _ := v.Time()
		w.V = t.Format(time.RFC3339Nano)
	case gluedb.KindInterval:
		iv, _ := v.Interval()
		w.V = []int64{int64(iv.Months), iv.Micros}
	case gluedb.KindUUID:
		id, _ := v.UUID()
		w.V = id.String()
	case gluedb.KindPoint:
		w.V = v.String()
	case gluedb.KindList:
		list, _ := v.List()
		out := make([]wireValue, len(list))
		for i, e := range list {
			ew, err := encodeValue(e)
			if err != nil {
				return w, err
			}
			out[i] = ew
		}
		w.V = out
	case gluedb.KindMap:
		m, _ := v.Map()
		out := make(map[string]wireValue, len(m))
		for key, e := range m {
			ew, err := encodeValue(e)
			if err != nil {
				return w, err
			}
			out[key] = ew
		}
		w.V = out
	case gluedb.KindFloatVector:
		vec, _ := v.FloatVector()
		w.V = vec
	default:
		return w, fmt.Errorf("duckstore: unsupported value kind %s", k)
	}
	return w, nil
}

func decodeValue(w wireValue) (gluedb.Value, error) {
	switch w.K {
	case "NULL":
		return gluedb.Null, nil
	case "BOOLEAN":
		return gluedb.NewBool(w.V.(bool)), nil
	case "I8":
		return gluedb.NewI8(int8(mustInt(w.V))), nil
	case "I16":
		return gluedb.NewI16(int16(mustInt(w.V))), nil
	case "I32":
		return gluedb.NewI32(int32(mustInt(w.V))), nil
	case "I64":
		return gluedb.NewI64(mustInt(w.V)), nil
	case "I128":
		return gluedb.NewI128(mustBigInt(w.V)), nil
	case "U8":
		return gluedb.NewU8(uint8(mustInt(w.V))), nil
	case "U16":
		return gluedb.NewU16(uint16(mustInt(w.V))), nil
	case "U32":
		return gluedb.NewU32(uint32(mustInt(w.V))), nil
	case "U64":
		return gluedb.NewU64(uint64(mustInt(w.V))), nil
	case "U128":
		return gluedb.NewU128(mustBigInt(w.V)), nil
	case "F32":
		return gluedb.NewF32(float32(w.V.(float64))), nil
	case "F64":
		return gluedb.NewF64(w.V.(float64)), nil
	case "TEXT":
		return gluedb.NewStr(w.V.(string)), nil
	case "BYTEA":
		bs, err := base64.StdEncoding.DecodeString(w.V.(string))
		if err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewBytes(bs), nil
	case "INET":
		return gluedb.NewIP(net.ParseIP(w.V.(string))), nil
	case "DATE":
		t, err := time.Parse(time.RFC3339Nano, w.V.(string))
		if err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewDate(t), nil
	case "TIME":
		t, err := time.Parse(time.RFC3339Nano, w.V.(string))
		if err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewTime(t), nil
	case "TIMESTAMP":
		t, err := time.Parse(time.RFC3339Nano, w.V.(string))
		if err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewTimestamp(t), nil
	case "INTERVAL":
		pair, ok := w.V.([]any)
		if !ok || len(pair) != 2 {
			return gluedb.Null, fmt.Errorf("duckstore: malformed interval")
		}
		return gluedb.NewInterval(gluedb.Interval{
			Months: int32(mustInt(pair[0])),
			Micros: mustInt(pair[1]),
		}), nil
	case "UUID":
		id, err := uuid.Parse(w.V.(string))
		if err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewUUID(id), nil
	case "POINT":
		var x, y float64
		if _, err := fmt.Sscanf(w.V.(string), "POINT(%g %g)", &x, &y); err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewPoint(gluedb.Point{X: x, Y: y}), nil
	case "LIST":
		raw, err := json.Marshal(w.V)
		if err != nil {
			return gluedb.Null, err
		}
		var items []wireValue
		if err := json.Unmarshal(raw, &items); err != nil {
			return gluedb.Null, err
		}
		vs := make([]gluedb.Value, len(items))
		for i, it := range items {
			vv, err := decodeValue(it)
			if err != nil {
				return gluedb.Null, err
			}
			vs[i] = vv
		}
		return gluedb.NewList(vs), nil
	case "MAP":
		raw, err := json.Marshal(w.V)
		if err != nil {
			return gluedb.Null, err
		}
		var m map[string]wireValue
		if err := json.Unmarshal(raw, &m); err != nil {
			return gluedb.Null, err
		}
		out := make(map[string]gluedb.Value, len(m))
		for k, it := range m {
			vv, err := decodeValue(it)
			if err != nil {
				return gluedb.Null, err
			}
			out[k] = vv
		}
		return gluedb.NewMap(out), nil
	case "VECTOR":
		raw, err := json.Marshal(w.V)
		if err != nil {
			return gluedb.Null, err
		}
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err != nil {
			return gluedb.Null, err
		}
		return gluedb.NewFloatVector(vec), nil
	default:
		return gluedb.Null, fmt.Errorf("duckstore: unknown value kind %q", w.K)
	}
}

func mustInt(v any) int64 {
	switch n := v.(type) {
	case string:
		bi, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return 0
		}
		return bi.Int64()
	case float64:
		return int64(n)
	}
	return 0
}

func mustBigInt(v any) *big.Int {
	s, _ := v.(string)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return n
}

type rowWire struct {
	Columns []string             `json:"columns,omitempty"`
	Fields  map[string]wireValue `json:"fields"`
}

func encodeRow(row gluedb.Row) (rowWire, error) {
	out := rowWire{Fields: make(map[string]wireValue)}
	switch r := row.(type) {
	case gluedb.VecRow:
		out.Columns = append([]string{}, r.ColumnNames...)
		for i, c := range r.ColumnNames {
			w, err := encodeValue(r.Values[i])
			if err != nil {
				return out, err
			}
			out.Fields[c] = w
		}
	case gluedb.MapRow:
		for c, v := range r.Fields {
			w, err := encodeValue(v)
			if err != nil {
				return out, err
			}
			out.Fields[c] = w
		}
	default:
		return out, fmt.Errorf("duckstore: unsupported row type %T", row)
	}
	return out, nil
}

func decodeRow(w rowWire) (gluedb.Row, error) {
	if w.Columns != nil {
		values := make([]gluedb.Value, len(w.Columns))
		for i, c := range w.Columns {
			v, err := decodeValue(w.Fields[c])
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return gluedb.VecRow{ColumnNames: w.Columns, Values: values}, nil
	}
	fields := make(map[string]gluedb.Value, len(w.Fields))
	for c, wv := range w.Fields {
		v, err := decodeValue(wv)
		if err != nil {
			return nil, err
		}
		fields[c] = v
	}
	return gluedb.MapRow{Fields: fields}, nil
}

func marshalRowWire(row gluedb.Row) (string, error) {
	w, err := encodeRow(row)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(w)
	return string(raw), err
}

func unmarshalRowWire(raw string) (rowWire, error) {
	var w rowWire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return rowWire{}, err
	}
	return w, nil
}
