package direct

import (
	"context"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
)

// Dictionary is the query surface shared by both direct layouts.
type Dictionary interface {
	ID() structure.ID
	FullName() string
	TypeName() string
	Layout() string
	Structure() *structure.Structure
	Source() source.Source
	Lifetime() structure.Lifetime

	HasHierarchy() bool
	IsInjective(attribute string) bool

	// GetColumn returns attribute for every row of keyColumns. resultType
	// field.TypeInvalid means the attribute's own type. defaults, when not
	// nil, supplies the value for rows the source does not have.
	GetColumn(ctx context.Context, attribute string, resultType field.Type,
		keyColumns []column.Column, keyTypes []field.Type, defaults column.Column) (column.Column, error)

	// HasKeys reports 1 for every row of keyColumns the source has, 0 otherwise.
	HasKeys(ctx context.Context, keyColumns []column.Column, keyTypes []field.Type) (*column.Vector[uint8], error)

	IsInVectorVector(ctx context.Context, child, ancestor []uint64) ([]bool, error)
	IsInVectorConstant(ctx context.Context, child []uint64, ancestor uint64) ([]bool, error)
	IsInConstantVector(ctx context.Context, child uint64, ancestor []uint64) ([]bool, error)
	ToParent(ctx context.Context, ids []uint64) ([]uint64, error)

	// BlockStream streams the whole source. Its arguments are accepted for
	// compatibility and ignored.
	BlockStream(ctx context.Context, columnNames []string, maxBlockSize int) (source.Stream, error)

	QueryCount() uint64
	HitRate() float64
	ElementCount() uint64
	BytesAllocated() uint64
	LoadFactor() float64

	Clone() (Dictionary, error)
}

// dictionary holds everything the two layouts share.
type dictionary[K any] struct {
	id        structure.ID
	structure *structure.Structure
	source    source.Source
	keys      keyMode[K]
	opts      options
	rawOpts   []Option
	queries   queryCounter
}

func newDictionary[K any](id structure.ID, s *structure.Structure, src source.Source, keys keyMode[K], opts []Option) (*dictionary[K], error) {
	d := &dictionary[K]{
		id:        id,
		structure: s,
		source:    src,
		keys:      keys,
		opts:      defaultOptions(),
		rawOpts:   opts,
	}
	for _, opt := range opts {
		opt(&d.opts)
	}

	if s == nil {
		return nil, d.errorf(dicterr.BadArguments, "dictionary has no structure")
	}
	if src == nil {
		return nil, d.errorf(dicterr.BadArguments, "dictionary has no source")
	}
	if !src.SupportsSelectiveLoad() {
		return nil, d.errorf(dicterr.UnsupportedMethod, "selective load is not supported by source %s", src)
	}
	return d, nil
}

// errorf builds a dicterr.Error annotated with this dictionary.
func (d *dictionary[K]) errorf(code dicterr.Code, format string, args ...any) error {
	return dicterr.New(code, format, args...).In(d.id.FullName(), d.keys.layout())
}

// annotate adds dictionary context to an unannotated dicterr.Error.
func (d *dictionary[K]) annotate(err error) error {
	if de, ok := err.(*dicterr.Error); ok && de.Dictionary == "" {
		return de.In(d.id.FullName(), d.keys.layout())
	}
	return err
}

func (d *dictionary[K]) ID() structure.ID { return d.id }

func (d *dictionary[K]) FullName() string { return d.id.FullName() }

func (d *dictionary[K]) TypeName() string { return d.keys.typeName() }

func (d *dictionary[K]) Layout() string { return d.keys.layout() }

func (d *dictionary[K]) Structure() *structure.Structure { return d.structure }

func (d *dictionary[K]) Source() source.Source { return d.source }

// Lifetime is always zero; direct dictionaries never reload.
func (d *dictionary[K]) Lifetime() structure.Lifetime { return structure.Lifetime{} }

func (d *dictionary[K]) HasHierarchy() bool {
	return d.structure.HierarchicalIndex() >= 0
}

func (d *dictionary[K]) IsInjective(attribute string) bool {
	attr, _, err := d.structure.GetAttribute(attribute)
	return err == nil && attr.Injective
}

// QueryCount returns the number of keys requested so far.
func (d *dictionary[K]) QueryCount() uint64 { return d.queries.load() }

// HitRate is 1: every lookup is answered by the source.
func (d *dictionary[K]) HitRate() float64 { return 1.0 }

// ElementCount is 0: nothing is held in memory.
func (d *dictionary[K]) ElementCount() uint64 { return 0 }

func (d *dictionary[K]) BytesAllocated() uint64 { return 0 }

func (d *dictionary[K]) LoadFactor() float64 { return 0 }

func (d *dictionary[K]) BlockStream(ctx context.Context, _ []string, _ int) (source.Stream, error) {
	return d.source.LoadAll(ctx)
}

// SimpleDictionary is the "direct" layout, keyed by UInt64 ids.
type SimpleDictionary struct {
	*dictionary[uint64]
}

var _ Dictionary = (*SimpleDictionary)(nil)

// NewSimple creates a "direct" dictionary. The source must support selective
// loads and a hierarchical attribute, if any, must be UInt64.
func NewSimple(id structure.ID, s *structure.Structure, src source.Source, opts ...Option) (*SimpleDictionary, error) {
	d, err := newDictionary[uint64](id, s, src, simpleKeys{}, opts)
	if err != nil {
		return nil, err
	}
	if s.IsComposite() {
		return nil, d.errorf(dicterr.UnsupportedMethod, "'key' is not supported for simple key dictionaries")
	}
	if idx := s.HierarchicalIndex(); idx >= 0 && s.Attributes[idx].Type != field.TypeUInt64 {
		return nil, d.errorf(dicterr.TypeMismatch, "hierarchical attribute %q must be UInt64, got %s",
			s.Attributes[idx].Name, s.Attributes[idx].Type)
	}
	return &SimpleDictionary{d}, nil
}

// Clone creates an equivalent dictionary over a clone of the source with a
// fresh query counter.
func (d *SimpleDictionary) Clone() (Dictionary, error) {
	return NewSimple(d.id, d.structure, d.source.Clone(), d.rawOpts...)
}

// ComplexKeyDictionary is the "complex_key_direct" layout, keyed by several
// columns.
type ComplexKeyDictionary struct {
	*dictionary[arena.Ref]
}

var _ Dictionary = (*ComplexKeyDictionary)(nil)

// NewComplexKey creates a "complex_key_direct" dictionary. Hierarchical
// attributes are rejected.
func NewComplexKey(id structure.ID, s *structure.Structure, src source.Source, opts ...Option) (*ComplexKeyDictionary, error) {
	d, err := newDictionary[arena.Ref](id, s, src, compositeKeys{}, opts)
	if err != nil {
		return nil, err
	}
	if !s.IsComposite() {
		return nil, d.errorf(dicterr.UnsupportedMethod, "'id' is not supported for complex key dictionaries")
	}
	if idx := s.HierarchicalIndex(); idx >= 0 {
		return nil, d.errorf(dicterr.BadArguments, "hierarchical attributes are not supported for complex key dictionaries, got %q",
			s.Attributes[idx].Name)
	}
	return &ComplexKeyDictionary{d}, nil
}

// Clone creates an equivalent dictionary over a clone of the source with a
// fresh query counter.
func (d *ComplexKeyDictionary) Clone() (Dictionary, error) {
	return NewComplexKey(d.id, d.structure, d.source.Clone(), d.rawOpts...)
}

func (d *ComplexKeyDictionary) IsInVectorVector(context.Context, []uint64, []uint64) ([]bool, error) {
	return nil, d.unsupportedHierarchy()
}

func (d *ComplexKeyDictionary) IsInVectorConstant(context.Context, []uint64, uint64) ([]bool, error) {
	return nil, d.unsupportedHierarchy()
}

func (d *ComplexKeyDictionary) IsInConstantVector(context.Context, uint64, []uint64) ([]bool, error) {
	return nil, d.unsupportedHierarchy()
}

func (d *ComplexKeyDictionary) ToParent(context.Context, []uint64) ([]uint64, error) {
	return nil, d.unsupportedHierarchy()
}

func (d *ComplexKeyDictionary) unsupportedHierarchy() error {
	return d.errorf(dicterr.UnsupportedMethod, "hierarchy is not supported for complex key dictionaries")
}
