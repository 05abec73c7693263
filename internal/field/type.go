package field

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the declared data type of a column or attribute.
type Type uint8

const (
	// TypeInvalid is the zero Type. GetColumn treats it as "use the attribute's type".
	TypeInvalid Type = iota
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString
)

var typeNames = map[Type]string{
	TypeUInt8:   "UInt8",
	TypeUInt16:  "UInt16",
	TypeUInt32:  "UInt32",
	TypeUInt64:  "UInt64",
	TypeInt8:    "Int8",
	TypeInt16:   "Int16",
	TypeInt32:   "Int32",
	TypeInt64:   "Int64",
	TypeFloat32: "Float32",
	TypeFloat64: "Float64",
	TypeString:  "String",
}

// String returns the type name as written in dictionary definitions.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Invalid"
}

// ParseType resolves a type name. Matching is case-insensitive.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return TypeInvalid, fmt.Errorf("unknown data type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Size returns the fixed serialized width in bytes, or 0 for variable width types.
func (t Type) Size() int {
	switch t {
	case TypeUInt8, TypeInt8:
		return 1
	case TypeUInt16, TypeInt16:
		return 2
	case TypeUInt32, TypeInt32, TypeFloat32:
		return 4
	case TypeUInt64, TypeInt64, TypeFloat64:
		return 8
	default:
		return 0
	}
}

// IsUnsigned reports whether t is an unsigned integer type.
func (t Type) IsUnsigned() bool {
	return t >= TypeUInt8 && t <= TypeUInt64
}

// IsSigned reports whether t is a signed integer type.
func (t Type) IsSigned() bool {
	return t >= TypeInt8 && t <= TypeInt64
}

// IsFloat reports whether t is a floating point type.
func (t Type) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// Zero returns the zero value of t, used when an attribute declares no null value.
func (t Type) Zero() Value {
	switch {
	case t.IsUnsigned():
		return UInt64(0)
	case t.IsSigned():
		return Int64(0)
	case t.IsFloat():
		return Float64(0)
	case t == TypeString:
		return String("")
	default:
		return Null{}
	}
}

func (t Type) maxUnsigned() uint64 {
	switch t {
	case TypeUInt8:
		return math.MaxUint8
	case TypeUInt16:
		return math.MaxUint16
	case TypeUInt32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

func (t Type) signedRange() (int64, int64) {
	switch t {
	case TypeInt8:
		return math.MinInt8, math.MaxInt8
	case TypeInt16:
		return math.MinInt16, math.MaxInt16
	case TypeInt32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

// Convert returns v as a value of type t.
//
// Numeric conversions are range checked against the declared width. Floats
// convert to integers only when they hold an integral value. Strings convert
// to numbers by parsing. Null never converts.
func (t Type) Convert(v Value) (Value, error) {
	switch {
	case t.IsUnsigned():
		u, err := toUnsigned(v)
		if err != nil {
			return nil, fmt.Errorf("convert %s to %s: %w", Describe(v), t, err)
		}
		if u > t.maxUnsigned() {
			return nil, fmt.Errorf("convert %s to %s: value out of range", Describe(v), t)
		}
		return UInt64(u), nil
	case t.IsSigned():
		i, err := toSigned(v)
		if err != nil {
			return nil, fmt.Errorf("convert %s to %s: %w", Describe(v), t, err)
		}
		lo, hi := t.signedRange()
		if i < lo || i > hi {
			return nil, fmt.Errorf("convert %s to %s: value out of range", Describe(v), t)
		}
		return Int64(i), nil
	case t.IsFloat():
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("convert %s to %s: %w", Describe(v), t, err)
		}
		if t == TypeFloat32 {
			f = float64(float32(f))
		}
		return Float64(f), nil
	case t == TypeString:
		s, ok := v.(String)
		if !ok {
			return nil, fmt.Errorf("convert %s to %s: not a string", Describe(v), t)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("convert %s: invalid target type", Describe(v))
	}
}

func toUnsigned(v Value) (uint64, error) {
	switch val := v.(type) {
	case UInt64:
		return uint64(val), nil
	case Int64:
		if val < 0 {
			return 0, fmt.Errorf("negative value")
		}
		return uint64(val), nil
	case Float64:
		f := float64(val)
		if f < 0 || f != math.Trunc(f) || f >= math.MaxUint64 {
			return 0, fmt.Errorf("not an unsigned integer")
		}
		return uint64(f), nil
	case String:
		return strconv.ParseUint(string(val), 10, 64)
	default:
		return 0, fmt.Errorf("not a number")
	}
}

func toSigned(v Value) (int64, error) {
	switch val := v.(type) {
	case Int64:
		return int64(val), nil
	case UInt64:
		if uint64(val) > math.MaxInt64 {
			return 0, fmt.Errorf("value out of range")
		}
		return int64(val), nil
	case Float64:
		f := float64(val)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("not an integer")
		}
		return int64(f), nil
	case String:
		return strconv.ParseInt(string(val), 10, 64)
	default:
		return 0, fmt.Errorf("not a number")
	}
}

func toFloat(v Value) (float64, error) {
	switch val := v.(type) {
	case Float64:
		return float64(val), nil
	case UInt64:
		return float64(val), nil
	case Int64:
		return float64(val), nil
	case String:
		return strconv.ParseFloat(string(val), 64)
	default:
		return 0, fmt.Errorf("not a number")
	}
}
