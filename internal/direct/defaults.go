package direct

import (
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/structure"
)

// defaultProvider supplies the value for requested rows the source did not
// return. Indexes are always requested-key indexes.
type defaultProvider struct {
	column   column.Column
	constant field.Value
}

func newDefaultProvider(attr *structure.Attribute, defaults column.Column) defaultProvider {
	return defaultProvider{column: defaults, constant: attr.NullValue}
}

func (p defaultProvider) defaultFor(row int) field.Value {
	if p.column != nil {
		return p.column.Value(row)
	}
	return p.constant
}
