package column

import (
	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/field"
)

// Const is one value repeated n times.
type Const struct {
	typ   field.Type
	value field.Value
	n     int
}

// NewConst returns a constant column. value must already be of type t.
func NewConst(t field.Type, value field.Value, n int) *Const {
	return &Const{typ: t, value: value, n: n}
}

func (c *Const) Type() field.Type { return c.typ }

func (c *Const) Len() int { return c.n }

func (c *Const) Value(int) field.Value { return c.value }

func (c *Const) SerializeValueIntoArena(_ int, a *arena.Arena) {
	full, err := FromValues(c.typ, []field.Value{c.value})
	if err != nil {
		panic(err)
	}
	full.SerializeValueIntoArena(0, a)
}

// ToFull materializes the column. It panics if the value does not fit the
// type, which NewConst callers must guarantee.
func (c *Const) ToFull() Column {
	col, err := New(c.typ, c.n)
	if err != nil {
		panic(err)
	}
	for i := 0; i < c.n; i++ {
		if err := col.Append(c.value); err != nil {
			panic(err)
		}
	}
	return col
}
