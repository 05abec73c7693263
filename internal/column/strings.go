package column

import (
	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/field"
)

// Strings is a String column.
type Strings struct {
	data []string
}

// NewStrings wraps data as a String column. The slice is not copied.
func NewStrings(data ...string) *Strings {
	return &Strings{data: data}
}

func (s *Strings) Type() field.Type { return field.TypeString }

func (s *Strings) Len() int { return len(s.data) }

// Data returns the backing slice.
func (s *Strings) Data() []string { return s.data }

func (s *Strings) Value(i int) field.Value { return field.String(s.data[i]) }

func (s *Strings) Append(v field.Value) error {
	converted, err := field.TypeString.Convert(v)
	if err != nil {
		return err
	}
	s.data = append(s.data, string(converted.(field.String)))
	return nil
}

func (s *Strings) SerializeValueIntoArena(i int, a *arena.Arena) {
	a.PutString(s.data[i])
}
