package column

import (
	"fmt"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/field"
)

// Column is a read-only sequence of values of a single type.
type Column interface {
	Type() field.Type
	Len() int
	Value(i int) field.Value

	// SerializeValueIntoArena appends the composite-key encoding of row i to
	// the open span of a.
	SerializeValueIntoArena(i int, a *arena.Arena)
}

// Mutable is a Column that can grow.
type Mutable interface {
	Column
	Append(v field.Value) error
}

// New returns an empty mutable column of type t with room for n values.
func New(t field.Type, n int) (Mutable, error) {
	switch t {
	case field.TypeUInt8:
		return &Vector[uint8]{typ: t, data: make([]uint8, 0, n)}, nil
	case field.TypeUInt16:
		return &Vector[uint16]{typ: t, data: make([]uint16, 0, n)}, nil
	case field.TypeUInt32:
		return &Vector[uint32]{typ: t, data: make([]uint32, 0, n)}, nil
	case field.TypeUInt64:
		return &Vector[uint64]{typ: t, data: make([]uint64, 0, n)}, nil
	case field.TypeInt8:
		return &Vector[int8]{typ: t, data: make([]int8, 0, n)}, nil
	case field.TypeInt16:
		return &Vector[int16]{typ: t, data: make([]int16, 0, n)}, nil
	case field.TypeInt32:
		return &Vector[int32]{typ: t, data: make([]int32, 0, n)}, nil
	case field.TypeInt64:
		return &Vector[int64]{typ: t, data: make([]int64, 0, n)}, nil
	case field.TypeFloat32:
		return &Vector[float32]{typ: t, data: make([]float32, 0, n)}, nil
	case field.TypeFloat64:
		return &Vector[float64]{typ: t, data: make([]float64, 0, n)}, nil
	case field.TypeString:
		return &Strings{data: make([]string, 0, n)}, nil
	default:
		return nil, fmt.Errorf("no column implementation for type %s", t)
	}
}

// FromValues builds a column of type t, converting every value.
func FromValues(t field.Type, vals []field.Value) (Mutable, error) {
	col, err := New(t, len(vals))
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if err := col.Append(v); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return col, nil
}

// Values copies every value of c.
func Values(c Column) []field.Value {
	out := make([]field.Value, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

// Full materializes a Const column. Other columns are returned unchanged.
func Full(c Column) Column {
	if k, ok := c.(*Const); ok {
		return k.ToFull()
	}
	return c
}
