package direct

import (
	"context"
	"testing"

	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
	"github.com/roach88/directdict/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testID = structure.ID{Database: "test", Name: "dict"}

// valuesStructure is id -> value (UInt64, null 0) plus name (String, null "none").
func valuesStructure(t *testing.T) *structure.Structure {
	t.Helper()
	s := &structure.Structure{
		ID: &structure.KeyColumn{Name: "id"},
		Attributes: []structure.Attribute{
			{Name: "value", Type: field.TypeUInt64},
			{Name: "name", Type: field.TypeString, NullValue: field.String("none"), Injective: true},
		},
	}
	require.NoError(t, s.Validate())
	return s
}

// treeStructure is id -> parent (hierarchical).
func treeStructure(t *testing.T) *structure.Structure {
	t.Helper()
	s := &structure.Structure{
		ID: &structure.KeyColumn{Name: "id"},
		Attributes: []structure.Attribute{
			{Name: "parent", Type: field.TypeUInt64, Hierarchical: true},
		},
	}
	require.NoError(t, s.Validate())
	return s
}

// labelStructure is (region String, code UInt64) -> label (String, null "none").
func labelStructure(t *testing.T) *structure.Structure {
	t.Helper()
	s := &structure.Structure{
		Key: []structure.KeyColumn{
			{Name: "region", Type: field.TypeString},
			{Name: "code", Type: field.TypeUInt64},
		},
		Attributes: []structure.Attribute{
			{Name: "label", Type: field.TypeString, NullValue: field.String("none")},
		},
	}
	require.NoError(t, s.Validate())
	return s
}

func memory(t *testing.T, s *structure.Structure, rows [][]field.Value, opts ...source.MemoryOption) *testutil.CountingSource {
	t.Helper()
	m, err := source.NewMemory(s, rows, opts...)
	require.NoError(t, err)
	return testutil.NewCountingSource(m)
}

func u(v uint64) field.Value { return field.UInt64(v) }

func str(v string) field.Value { return field.String(v) }

func newSimple(t *testing.T, s *structure.Structure, src source.Source, opts ...Option) *SimpleDictionary {
	t.Helper()
	d, err := NewSimple(testID, s, src, opts...)
	require.NoError(t, err)
	return d
}

func newComplex(t *testing.T, s *structure.Structure, src source.Source) *ComplexKeyDictionary {
	t.Helper()
	d, err := NewComplexKey(testID, s, src)
	require.NoError(t, err)
	return d
}

// stubSource serves the same blocks for every request, whatever was asked.
// A non-nil err fails every load instead.
type stubSource struct {
	blocks []*column.Block
	err    error
}

func (s *stubSource) LoadAll(context.Context) (source.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return source.NewSliceStream(s.blocks...), nil
}

func (s *stubSource) LoadIDs(context.Context, []uint64) (source.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return source.NewSliceStream(s.blocks...), nil
}

func (s *stubSource) LoadKeys(context.Context, []column.Column, []int) (source.Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	return source.NewSliceStream(s.blocks...), nil
}

func (s *stubSource) SupportsSelectiveLoad() bool { return true }
func (s *stubSource) Clone() source.Source       { return s }
func (s *stubSource) String() string             { return "stub" }

func block(t *testing.T, names []string, cols ...column.Column) *column.Block {
	t.Helper()
	b, err := column.NewBlock(names, cols)
	require.NoError(t, err)
	return b
}
