// Package lookup runs dictionary operations on loosely typed inputs, as
// decoded from JSON flags or YAML scenarios.
//
// Keys are a list. A simple dictionary takes a list of ids; a composite
// dictionary takes a list of tuples, one value per key column:
//
//	[1, 2, 3]
//	[["us", 1], ["us", 2]]
//
// Results are plain Go values (uint64, int64, float64, string, bool) so they
// can be encoded directly.
package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/direct"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
)

// Operation names.
const (
	OpGet    = "get"
	OpHas    = "has"
	OpIsIn   = "isin"
	OpParent = "parent"
	OpDump   = "dump"
)

// Ops lists the supported operations.
var Ops = []string{OpGet, OpHas, OpIsIn, OpParent, OpDump}

// Request is one dictionary operation.
type Request struct {
	Op string `yaml:"op" json:"op"`

	// get
	Attribute string `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Type      string `yaml:"type,omitempty" json:"type,omitempty"`
	Defaults  any    `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// get, has
	Keys any `yaml:"keys,omitempty" json:"keys,omitempty"`

	// isin: each side is a list or a single id
	Child    any `yaml:"child,omitempty" json:"child,omitempty"`
	Ancestor any `yaml:"ancestor,omitempty" json:"ancestor,omitempty"`

	// parent
	IDs any `yaml:"ids,omitempty" json:"ids,omitempty"`
}

// Inputs returns the inputs the request sets, keyed by their field names.
func (r Request) Inputs() map[string]any {
	in := make(map[string]any)
	set := func(name string, v any) {
		if v != nil {
			in[name] = v
		}
	}
	if r.Attribute != "" {
		in["attribute"] = r.Attribute
	}
	if r.Type != "" {
		in["type"] = r.Type
	}
	set("defaults", r.Defaults)
	set("keys", r.Keys)
	set("child", r.Child)
	set("ancestor", r.Ancestor)
	set("ids", r.IDs)
	return in
}

// Run dispatches r to the matching operation.
func Run(ctx context.Context, d direct.Dictionary, r Request) ([]any, error) {
	switch r.Op {
	case OpGet:
		resultType := field.TypeInvalid
		if r.Type != "" {
			t, err := field.ParseType(r.Type)
			if err != nil {
				return nil, err
			}
			resultType = t
		}
		return Get(ctx, d, r.Attribute, resultType, r.Keys, r.Defaults)
	case OpHas:
		return Has(ctx, d, r.Keys)
	case OpIsIn:
		return IsIn(ctx, d, r.Child, r.Ancestor)
	case OpParent:
		return Parent(ctx, d, r.IDs)
	case OpDump:
		return Dump(ctx, d)
	default:
		return nil, fmt.Errorf("unknown operation %q: must be one of %v", r.Op, Ops)
	}
}

// Get looks up attribute for every key. resultType field.TypeInvalid means
// the attribute's own type. defaults, when not nil, is a list with one value
// per key.
func Get(ctx context.Context, d direct.Dictionary, attribute string, resultType field.Type, keys, defaults any) ([]any, error) {
	cols, types, err := KeyColumns(d.Structure(), keys)
	if err != nil {
		return nil, err
	}

	var defaultCol column.Column
	if defaults != nil {
		t := resultType
		if t == field.TypeInvalid {
			attr, _, err := d.Structure().GetAttribute(attribute)
			if err != nil {
				return nil, err
			}
			t = attr.Type
		}
		if defaultCol, err = valuesColumn(t, defaults, "defaults"); err != nil {
			return nil, err
		}
	}

	col, err := d.GetColumn(ctx, attribute, resultType, cols, types, defaultCol)
	if err != nil {
		return nil, err
	}
	return plain(col), nil
}

// Has reports 1 for every key the source has and 0 otherwise.
func Has(ctx context.Context, d direct.Dictionary, keys any) ([]any, error) {
	cols, types, err := KeyColumns(d.Structure(), keys)
	if err != nil {
		return nil, err
	}
	col, err := d.HasKeys(ctx, cols, types)
	if err != nil {
		return nil, err
	}
	return plain(col), nil
}

// IsIn checks hierarchy membership. The shapes of child and ancestor pick
// the operation: list and list, list and id, or id and list. Two single ids
// are checked as a list of one.
func IsIn(ctx context.Context, d direct.Dictionary, child, ancestor any) ([]any, error) {
	children, childScalar, err := ids(child, "child")
	if err != nil {
		return nil, err
	}
	ancestors, ancestorScalar, err := ids(ancestor, "ancestor")
	if err != nil {
		return nil, err
	}

	var out []bool
	switch {
	case ancestorScalar:
		out, err = d.IsInVectorConstant(ctx, children, ancestors[0])
	case childScalar:
		out, err = d.IsInConstantVector(ctx, children[0], ancestors)
	default:
		out, err = d.IsInVectorVector(ctx, children, ancestors)
	}
	if err != nil {
		return nil, err
	}

	res := make([]any, len(out))
	for i, b := range out {
		res[i] = b
	}
	return res, nil
}

// Parent returns the parent of every id.
func Parent(ctx context.Context, d direct.Dictionary, raw any) ([]any, error) {
	list, _, err := ids(raw, "ids")
	if err != nil {
		return nil, err
	}
	parents, err := d.ToParent(ctx, list)
	if err != nil {
		return nil, err
	}
	res := make([]any, len(parents))
	for i, p := range parents {
		res[i] = p
	}
	return res, nil
}

// Dump returns every row of the source, key columns first.
func Dump(ctx context.Context, d direct.Dictionary) ([]any, error) {
	stream, err := d.BlockStream(ctx, d.Structure().ColumnNames(), source.DefaultBlockSize)
	if err != nil {
		return nil, err
	}
	blocks, err := source.Drain(ctx, stream)
	if err != nil {
		return nil, err
	}

	rows := []any{}
	for _, b := range blocks {
		for r := 0; r < b.Rows(); r++ {
			row := make([]any, len(b.Columns))
			for c, col := range b.Columns {
				row[c] = field.ToAny(col.Value(r))
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// KeyColumns converts a key list into key columns and their types. The types
// are nil for a simple dictionary.
func KeyColumns(s *structure.Structure, raw any) ([]column.Column, []field.Type, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("keys must be a list, got %T", raw)
	}

	if !s.IsComposite() {
		col, err := valuesColumn(field.TypeUInt64, list, "keys")
		if err != nil {
			return nil, nil, err
		}
		return []column.Column{col}, nil, nil
	}

	types := s.KeyTypes()
	perColumn := make([][]field.Value, len(types))
	for row, item := range list {
		tuple, ok := item.([]any)
		if !ok {
			if len(types) != 1 {
				return nil, nil, fmt.Errorf("keys[%d]: expected a list of %d values, got %T", row, len(types), item)
			}
			tuple = []any{item}
		}
		if len(tuple) != len(types) {
			return nil, nil, fmt.Errorf("keys[%d]: expected %d values, got %d", row, len(types), len(tuple))
		}
		for c, cell := range tuple {
			v, err := field.FromAny(types[c], cell)
			if err != nil {
				return nil, nil, fmt.Errorf("keys[%d][%d]: %w", row, c, err)
			}
			perColumn[c] = append(perColumn[c], v)
		}
	}

	cols := make([]column.Column, len(types))
	for c, t := range types {
		col, err := column.FromValues(t, perColumn[c])
		if err != nil {
			return nil, nil, err
		}
		cols[c] = col
	}
	return cols, types, nil
}

// ParseJSON decodes a JSON document keeping full integer precision.
func ParseJSON(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON %q: %w", s, err)
	}
	return v, nil
}

func valuesColumn(t field.Type, raw any, name string) (column.Column, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list, got %T", name, raw)
	}
	vals := make([]field.Value, len(list))
	for i, item := range list {
		v, err := field.FromAny(t, item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		vals[i] = v
	}
	return column.FromValues(t, vals)
}

// ids reads a list of ids or a single id. The second result reports a
// single id.
func ids(raw any, name string) ([]uint64, bool, error) {
	list, ok := raw.([]any)
	scalar := !ok
	if scalar {
		if raw == nil {
			return nil, false, fmt.Errorf("%s is required", name)
		}
		list = []any{raw}
	}

	out := make([]uint64, len(list))
	for i, item := range list {
		v, err := field.FromAny(field.TypeUInt64, item)
		if err != nil {
			return nil, false, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		out[i] = uint64(v.(field.UInt64))
	}
	return out, scalar, nil
}

func plain(col column.Column) []any {
	out := make([]any, col.Len())
	for i := range out {
		out[i] = field.ToAny(col.Value(i))
	}
	return out
}
