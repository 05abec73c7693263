package column

import (
	"fmt"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/field"
)

// Number is the set of Go types backing numeric columns.
type Number interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Vector is a numeric column. The type tag decides how values are reported
// and serialized; it always matches T.
type Vector[T Number] struct {
	typ  field.Type
	data []T
}

// NewVector wraps data as a column of type t. The slice is not copied.
func NewVector[T Number](t field.Type, data []T) *Vector[T] {
	return &Vector[T]{typ: t, data: data}
}

// UInt64s is shorthand for a UInt64 vector over ids.
func UInt64s(ids ...uint64) *Vector[uint64] {
	return NewVector(field.TypeUInt64, ids)
}

// UInt8s is shorthand for a UInt8 vector.
func UInt8s(vals ...uint8) *Vector[uint8] {
	return NewVector(field.TypeUInt8, vals)
}

func (v *Vector[T]) Type() field.Type { return v.typ }

func (v *Vector[T]) Len() int { return len(v.data) }

// Data returns the backing slice.
func (v *Vector[T]) Data() []T { return v.data }

func (v *Vector[T]) Value(i int) field.Value {
	x := v.data[i]
	switch {
	case v.typ.IsUnsigned():
		return field.UInt64(uint64(x))
	case v.typ.IsSigned():
		return field.Int64(int64(x))
	default:
		return field.Float64(float64(x))
	}
}

// Append converts val to the column type and appends it.
func (v *Vector[T]) Append(val field.Value) error {
	converted, err := v.typ.Convert(val)
	if err != nil {
		return err
	}
	switch c := converted.(type) {
	case field.UInt64:
		v.data = append(v.data, T(c))
	case field.Int64:
		v.data = append(v.data, T(c))
	case field.Float64:
		v.data = append(v.data, T(c))
	default:
		return fmt.Errorf("cannot append %s to %s column", field.Describe(val), v.typ)
	}
	return nil
}

// AppendRaw appends x without conversion.
func (v *Vector[T]) AppendRaw(x T) {
	v.data = append(v.data, x)
}

func (v *Vector[T]) SerializeValueIntoArena(i int, a *arena.Arena) {
	x := v.data[i]
	switch v.typ {
	case field.TypeUInt8, field.TypeInt8:
		a.PutUint8(uint8(x))
	case field.TypeUInt16, field.TypeInt16:
		a.PutUint16(uint16(x))
	case field.TypeUInt32, field.TypeInt32:
		a.PutUint32(uint32(x))
	case field.TypeFloat32:
		a.PutFloat32(float32(x))
	case field.TypeFloat64:
		a.PutFloat64(float64(x))
	default:
		a.PutUint64(uint64(x))
	}
}
