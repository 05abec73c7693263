package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// Value is a sealed interface over the scalar kinds a dictionary cell can hold.
// Only Null, UInt64, Int64, Float64 and String implement it.
type Value interface {
	fieldValue() // Sealed - only these types implement it
}

// Null is an absent value. Columns never hold it; it appears only when a
// source reports a missing cell.
type Null struct{}

func (Null) fieldValue() {}

// UInt64 carries every unsigned integer width.
type UInt64 uint64

func (UInt64) fieldValue() {}

// Int64 carries every signed integer width.
type Int64 int64

func (Int64) fieldValue() {}

// Float64 carries Float32 and Float64.
type Float64 float64

func (Float64) fieldValue() {}

// String is a byte string.
type String string

func (String) fieldValue() {}

// AsUInt64 returns the unsigned integer held by v.
// Non-negative Int64 values are accepted as well.
func AsUInt64(v Value) (uint64, bool) {
	switch val := v.(type) {
	case UInt64:
		return uint64(val), true
	case Int64:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	default:
		return 0, false
	}
}

// Equal reports whether a and b hold the same kind and value.
func Equal(a, b Value) bool {
	return a == b
}

// Describe renders v for error messages, including its kind.
func Describe(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case Null:
		return "NULL"
	case UInt64:
		return "UInt64(" + strconv.FormatUint(uint64(val), 10) + ")"
	case Int64:
		return "Int64(" + strconv.FormatInt(int64(val), 10) + ")"
	case Float64:
		return "Float64(" + strconv.FormatFloat(float64(val), 'g', -1, 64) + ")"
	case String:
		return "String(" + strconv.Quote(string(val)) + ")"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ToAny returns v as a plain Go value for encoding: uint64, int64, float64,
// string, or nil.
func ToAny(v Value) any {
	switch val := v.(type) {
	case UInt64:
		return uint64(val)
	case Int64:
		return int64(val)
	case Float64:
		return float64(val)
	case String:
		return string(val)
	default:
		return nil
	}
}

// FromAny converts a decoded Go value (YAML, JSON, CUE or database/sql) to a
// Value of type t.
func FromAny(t Type, raw any) (Value, error) {
	v, err := ValueOf(raw)
	if err != nil {
		return nil, err
	}
	return t.Convert(v)
}

// ValueOf maps a loosely typed Go value onto the closest Value kind.
func ValueOf(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case int:
		return Int64(val), nil
	case int8:
		return Int64(val), nil
	case int16:
		return Int64(val), nil
	case int32:
		return Int64(val), nil
	case int64:
		return Int64(val), nil
	case uint:
		return UInt64(val), nil
	case uint8:
		return UInt64(val), nil
	case uint16:
		return UInt64(val), nil
	case uint32:
		return UInt64(val), nil
	case uint64:
		return UInt64(val), nil
	case float32:
		return Float64(val), nil
	case float64:
		return Float64(val), nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case bool:
		if val {
			return UInt64(1), nil
		}
		return UInt64(0), nil
	case json.Number:
		return numberValue(string(val))
	case *big.Int:
		if val.IsUint64() {
			return UInt64(val.Uint64()), nil
		}
		if val.IsInt64() {
			return Int64(val.Int64()), nil
		}
		return nil, fmt.Errorf("integer %s out of 64-bit range", val)
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

// numberValue parses a JSON number literal, preferring integers.
func numberValue(s string) (Value, error) {
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return UInt64(u), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int64(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return Float64(f), nil
}

// MarshalJSON encodes v as plain JSON.
func MarshalJSON(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case UInt64:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case Int64:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Float64:
		return json.Marshal(float64(val))
	case String:
		return json.Marshal(string(val))
	default:
		return nil, fmt.Errorf("unknown field value type: %T", v)
	}
}

// UnmarshalJSON decodes a single JSON scalar into a Value. Numbers keep full
// 64-bit precision: integers decode as UInt64 or Int64, others as Float64.
func UnmarshalJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	switch raw.(type) {
	case []any, map[string]any:
		return nil, fmt.Errorf("expected a scalar, got %s", string(data))
	}
	return ValueOf(raw)
}

// DecodeJSONList decodes a JSON array of scalars, or a single scalar as a list
// of one. The second result reports whether the input was a scalar.
func DecodeJSONList(data []byte) ([]Value, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, false, err
	}

	list, ok := raw.([]any)
	if !ok {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, false, err
		}
		return []Value{v}, true, nil
	}

	out := make([]Value, len(list))
	for i, elem := range list {
		v, err := ValueOf(elem)
		if err != nil {
			return nil, false, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, false, nil
}
