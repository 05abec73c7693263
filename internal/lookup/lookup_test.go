package lookup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/direct"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
)

func regions(t *testing.T) direct.Dictionary {
	t.Helper()
	s := &structure.Structure{
		ID: &structure.KeyColumn{Name: "id"},
		Attributes: []structure.Attribute{
			{Name: "parent", Type: field.TypeUInt64, Hierarchical: true},
			{Name: "name", Type: field.TypeString, NullValue: field.String("unknown")},
		},
	}
	require.NoError(t, s.Validate())
	src, err := source.NewMemory(s, [][]field.Value{
		{field.UInt64(1), field.UInt64(0), field.String("world")},
		{field.UInt64(2), field.UInt64(1), field.String("europe")},
		{field.UInt64(3), field.UInt64(2), field.String("france")},
	})
	require.NoError(t, err)
	d, err := direct.NewSimple(structure.ID{Name: "regions"}, s, src)
	require.NoError(t, err)
	return d
}

func labels(t *testing.T) direct.Dictionary {
	t.Helper()
	s := &structure.Structure{
		Key: []structure.KeyColumn{
			{Name: "country", Type: field.TypeString},
			{Name: "code", Type: field.TypeUInt16},
		},
		Attributes: []structure.Attribute{
			{Name: "label", Type: field.TypeString, NullValue: field.String("none")},
		},
	}
	require.NoError(t, s.Validate())
	src, err := source.NewMemory(s, [][]field.Value{
		{field.String("us"), field.UInt64(1), field.String("one")},
		{field.String("us"), field.UInt64(2), field.String("two")},
	})
	require.NoError(t, err)
	d, err := direct.NewComplexKey(structure.ID{Name: "labels"}, s, src)
	require.NoError(t, err)
	return d
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	d := regions(t)

	got, err := Get(ctx, d, "name", field.TypeInvalid, []any{3, 9, 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"france", "unknown", "world"}, got)

	got, err = Get(ctx, d, "name", field.TypeInvalid, []any{3, 9}, []any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []any{"france", "b"}, got)

	got, err = Get(ctx, d, "parent", field.TypeUInt64, []any{json.Number("3")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(2)}, got)
}

func TestGet_Composite(t *testing.T) {
	got, err := Get(context.Background(), labels(t), "label", field.TypeInvalid,
		[]any{[]any{"us", 2}, []any{"ca", 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"two", "none"}, got)
}

func TestGet_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Get(ctx, regions(t), "missing", field.TypeInvalid, []any{1}, []any{"x"})
	require.Error(t, err)

	_, err = Get(ctx, regions(t), "name", field.TypeInvalid, 1, nil)
	assert.ErrorContains(t, err, "keys must be a list")

	_, err = Get(ctx, regions(t), "name", field.TypeInvalid, []any{-1}, nil)
	assert.ErrorContains(t, err, "keys[0]")

	_, err = Get(ctx, labels(t), "label", field.TypeInvalid, []any{[]any{"us"}}, nil)
	assert.ErrorContains(t, err, "expected 2 values, got 1")

	_, err = Get(ctx, labels(t), "label", field.TypeInvalid, []any{"us"}, nil)
	assert.ErrorContains(t, err, "expected a list of 2 values")

	_, err = Get(ctx, labels(t), "label", field.TypeInvalid, []any{[]any{"us", 70000}}, nil)
	assert.ErrorContains(t, err, "keys[0][1]")

	_, err = Get(ctx, regions(t), "name", field.TypeUInt64, []any{1}, nil)
	assert.True(t, dicterr.Is(err, dicterr.TypeMismatch), "got %v", err)
}

func TestHas(t *testing.T) {
	got, err := Has(context.Background(), labels(t), []any{[]any{"us", 1}, []any{"us", 3}})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1), uint64(0)}, got)
}

func TestIsIn_Shapes(t *testing.T) {
	ctx := context.Background()
	d := regions(t)

	tests := []struct {
		name     string
		child    any
		ancestor any
		want     []any
	}{
		{"vector vector", []any{3, 3}, []any{1, 9}, []any{true, false}},
		{"vector constant", []any{3, 2, 1}, 2, []any{true, true, false}},
		{"constant vector", 3, []any{3, 2, 9}, []any{true, true, false}},
		{"constant constant", 2, 1, []any{true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsIn(ctx, d, tt.child, tt.ancestor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := IsIn(ctx, d, nil, 1)
	assert.ErrorContains(t, err, "child is required")

	_, err = IsIn(ctx, d, []any{1, 2}, []any{1})
	assert.True(t, dicterr.Is(err, dicterr.BadArguments))
}

func TestParent(t *testing.T) {
	got, err := Parent(context.Background(), regions(t), []any{3, 1, 7})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(2), uint64(0), uint64(0)}, got)

	_, err = Parent(context.Background(), labels(t), []any{1})
	assert.True(t, dicterr.Is(err, dicterr.UnsupportedMethod))
}

func TestDump(t *testing.T) {
	got, err := Dump(context.Background(), labels(t))
	require.NoError(t, err)
	assert.Equal(t, []any{
		[]any{"us", uint64(1), "one"},
		[]any{"us", uint64(2), "two"},
	}, got)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	d := regions(t)

	got, err := Run(ctx, d, Request{Op: OpGet, Attribute: "parent", Type: "UInt64", Keys: []any{2}})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1)}, got)

	got, err = Run(ctx, d, Request{Op: OpParent, IDs: []any{2}})
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(1)}, got)

	_, err = Run(ctx, d, Request{Op: OpGet, Attribute: "parent", Type: "Decimal", Keys: []any{2}})
	assert.ErrorContains(t, err, "unknown data type")

	_, err = Run(ctx, d, Request{Op: "scan"})
	assert.ErrorContains(t, err, `unknown operation "scan"`)
}

func TestRequestInputs(t *testing.T) {
	r := Request{Op: OpGet, Attribute: "name", Keys: []any{1}}
	assert.Equal(t, map[string]any{"attribute": "name", "keys": []any{1}}, r.Inputs())
	assert.Empty(t, Request{Op: OpDump}.Inputs())
}

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON(`[18446744073709551615, ["us", 1]]`)
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("18446744073709551615"), []any{"us", json.Number("1")}}, v)

	_, err = ParseJSON(`[1,`)
	assert.Error(t, err)
}
