package config

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/directdict/internal/direct"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/structure"
)

// Compile validates the file and builds the dictionary definition.
//
// When the file has no uuid one is taken from gen; a nil gen uses UUIDv7.
// The returned structure has been validated and has its defaults filled in.
func (f *File) Compile(gen structure.IDGenerator) (direct.Definition, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return direct.Definition{}, errs
	}

	s, err := f.buildStructure()
	if err != nil {
		return direct.Definition{}, err
	}
	if err := s.Validate(); err != nil {
		return direct.Definition{}, fmt.Errorf("invalid structure for dictionary %q: %w", f.Name, err)
	}

	id := structure.ID{Database: f.Database, Name: f.Name}
	if f.UUID != "" {
		id.UUID = uuid.MustParse(f.UUID) // checked by Validate
	} else {
		if gen == nil {
			gen = structure.UUIDv7Generator{}
		}
		id.UUID = gen.Generate()
	}

	def := direct.Definition{ID: id, Layout: f.Layout, Structure: s}
	if f.Lifetime != nil {
		def.Lifetime = &structure.Lifetime{Min: f.Lifetime.Min, Max: f.Lifetime.Max}
	}
	return def, nil
}

func (f *File) buildStructure() (*structure.Structure, error) {
	st := f.Structure
	s := &structure.Structure{}

	var err error
	if st.ID != nil {
		if s.ID, err = keyColumn(*st.ID); err != nil {
			return nil, err
		}
	}
	for _, k := range st.Key {
		col, err := keyColumn(k)
		if err != nil {
			return nil, err
		}
		s.Key = append(s.Key, *col)
	}
	if st.RangeMin != nil {
		if s.RangeMin, err = keyColumn(*st.RangeMin); err != nil {
			return nil, err
		}
	}
	if st.RangeMax != nil {
		if s.RangeMax, err = keyColumn(*st.RangeMax); err != nil {
			return nil, err
		}
	}

	for _, a := range st.Attributes {
		t, err := field.ParseType(a.Type)
		if err != nil {
			return nil, err
		}
		attr := structure.Attribute{
			Name:         norm.NFC.String(a.Name),
			Type:         t,
			Hierarchical: a.Hierarchical,
			Injective:    a.Injective,
		}
		if a.NullValue != nil {
			v, err := field.ValueOf(a.NullValue)
			if err != nil {
				return nil, fmt.Errorf("attribute %q null_value: %w", a.Name, err)
			}
			attr.NullValue = v
		}
		s.Attributes = append(s.Attributes, attr)
	}
	return s, nil
}

// keyColumn converts a column spec. An empty type is left invalid so that
// structure.Validate applies the id default or reports the missing type.
func keyColumn(c ColumnSpec) (*structure.KeyColumn, error) {
	col := &structure.KeyColumn{Name: norm.NFC.String(c.Name)}
	if c.Type != "" {
		t, err := field.ParseType(c.Type)
		if err != nil {
			return nil, err
		}
		col.Type = t
	}
	return col, nil
}
