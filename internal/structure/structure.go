package structure

import (
	"fmt"

	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/field"
)

// Attribute describes one value column of a dictionary.
type Attribute struct {
	Name string
	Type field.Type

	// NullValue is returned for keys the source does not have.
	NullValue field.Value

	// Hierarchical marks the parent-id attribute used by IsIn and ToParent.
	Hierarchical bool

	// Injective marks an attribute whose values are unique per key.
	Injective bool
}

// KeyColumn describes one key column.
type KeyColumn struct {
	Name string
	Type field.Type
}

// Lifetime is the reload interval in seconds. Direct layouts never reload and
// reject a non-zero Lifetime.
type Lifetime struct {
	Min uint64
	Max uint64
}

// IsZero reports whether no lifetime was configured.
func (l Lifetime) IsZero() bool {
	return l.Min == 0 && l.Max == 0
}

// Structure is the full description of a dictionary's columns.
//
// Exactly one of ID and Key is set. ID is a simple UInt64 key; Key is a
// composite key serialized column by column in declaration order.
type Structure struct {
	ID         *KeyColumn
	Key        []KeyColumn
	RangeMin   *KeyColumn
	RangeMax   *KeyColumn
	Attributes []Attribute
}

// Validate checks the structure for internal consistency and fills in
// defaults: the id column is UInt64 and a missing NullValue becomes the
// attribute type's zero value.
func (s *Structure) Validate() error {
	if s.ID == nil && len(s.Key) == 0 {
		return dicterr.New(dicterr.BadArguments, "structure must declare 'id' or 'key'")
	}
	if s.ID != nil && len(s.Key) > 0 {
		return dicterr.New(dicterr.BadArguments, "structure declares both 'id' and 'key'")
	}

	seen := make(map[string]bool)
	if s.ID != nil {
		if s.ID.Name == "" {
			return dicterr.New(dicterr.BadArguments, "id column has no name")
		}
		if s.ID.Type == field.TypeInvalid {
			s.ID.Type = field.TypeUInt64
		}
		if s.ID.Type != field.TypeUInt64 {
			return dicterr.New(dicterr.TypeMismatch, "id column %q must be UInt64, got %s", s.ID.Name, s.ID.Type)
		}
		seen[s.ID.Name] = true
	}
	for i, k := range s.Key {
		if k.Name == "" {
			return dicterr.New(dicterr.BadArguments, "key column %d has no name", i)
		}
		if k.Type == field.TypeInvalid {
			return dicterr.New(dicterr.BadArguments, "key column %q has no type", k.Name)
		}
		if seen[k.Name] {
			return dicterr.New(dicterr.BadArguments, "duplicate column name %q", k.Name)
		}
		seen[k.Name] = true
	}

	hierarchical := ""
	for i := range s.Attributes {
		attr := &s.Attributes[i]
		if attr.Name == "" {
			return dicterr.New(dicterr.BadArguments, "attribute %d has no name", i)
		}
		if attr.Type == field.TypeInvalid {
			return dicterr.New(dicterr.BadArguments, "attribute %q has no type", attr.Name)
		}
		if seen[attr.Name] {
			return dicterr.New(dicterr.BadArguments, "duplicate column name %q", attr.Name)
		}
		seen[attr.Name] = true

		if attr.NullValue == nil {
			attr.NullValue = attr.Type.Zero()
		} else {
			v, err := attr.Type.Convert(attr.NullValue)
			if err != nil {
				return dicterr.New(dicterr.TypeMismatch, "attribute %q null_value: %v", attr.Name, err)
			}
			attr.NullValue = v
		}

		if attr.Hierarchical {
			if hierarchical != "" {
				return dicterr.New(dicterr.BadArguments, "attributes %q and %q are both hierarchical", hierarchical, attr.Name)
			}
			hierarchical = attr.Name
		}
	}
	return nil
}

// IsComposite reports whether the dictionary has a composite key.
func (s *Structure) IsComposite() bool {
	return len(s.Key) > 0
}

// HasRange reports whether range_min or range_max was declared.
func (s *Structure) HasRange() bool {
	return s.RangeMin != nil || s.RangeMax != nil
}

// GetAttribute returns the attribute called name and its position.
func (s *Structure) GetAttribute(name string) (*Attribute, int, error) {
	for i := range s.Attributes {
		if s.Attributes[i].Name == name {
			return &s.Attributes[i], i, nil
		}
	}
	return nil, -1, dicterr.New(dicterr.BadArguments, "no such attribute %q", name)
}

// HierarchicalIndex returns the position of the hierarchical attribute, or -1.
func (s *Structure) HierarchicalIndex() int {
	for i, attr := range s.Attributes {
		if attr.Hierarchical {
			return i
		}
	}
	return -1
}

// KeyNames returns the key column names in declaration order.
func (s *Structure) KeyNames() []string {
	if s.ID != nil {
		return []string{s.ID.Name}
	}
	names := make([]string, len(s.Key))
	for i, k := range s.Key {
		names[i] = k.Name
	}
	return names
}

// KeyTypes returns the key column types in declaration order.
func (s *Structure) KeyTypes() []field.Type {
	if s.ID != nil {
		return []field.Type{field.TypeUInt64}
	}
	types := make([]field.Type, len(s.Key))
	for i, k := range s.Key {
		types[i] = k.Type
	}
	return types
}

// ColumnNames returns key names followed by attribute names, the column
// order sources emit.
func (s *Structure) ColumnNames() []string {
	names := s.KeyNames()
	for _, attr := range s.Attributes {
		names = append(names, attr.Name)
	}
	return names
}

// ValidateKeyTypes checks caller-supplied key column types against the
// composite key.
func (s *Structure) ValidateKeyTypes(types []field.Type) error {
	want := s.KeyTypes()
	if len(types) != len(want) {
		return dicterr.New(dicterr.TypeMismatch, "key structure does not match, expected %d key columns, got %d", len(want), len(types))
	}
	for i := range want {
		if types[i] != want[i] {
			return dicterr.New(dicterr.TypeMismatch, "key type at position %d does not match, expected %s, found %s",
				i, want[i], types[i])
		}
	}
	return nil
}

// String renders the key and attribute columns, for logs.
func (s *Structure) String() string {
	return fmt.Sprintf("keys=%v attributes=%d", s.KeyNames(), len(s.Attributes))
}
