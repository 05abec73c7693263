package direct

import (
	"context"
	"fmt"

	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/structure"
)

// IsInVectorVector reports, per row, whether ancestor[i] is child[i] or one
// of its ancestors.
func (d *SimpleDictionary) IsInVectorVector(ctx context.Context, child, ancestor []uint64) ([]bool, error) {
	if len(child) != len(ancestor) {
		return nil, d.errorf(dicterr.BadArguments, "child and ancestor have different lengths: %d and %d", len(child), len(ancestor))
	}
	return d.isIn(ctx, len(child),
		func(i int) uint64 { return child[i] },
		func(i int) uint64 { return ancestor[i] })
}

// IsInVectorConstant checks every child against one ancestor.
func (d *SimpleDictionary) IsInVectorConstant(ctx context.Context, child []uint64, ancestor uint64) ([]bool, error) {
	return d.isIn(ctx, len(child),
		func(i int) uint64 { return child[i] },
		func(int) uint64 { return ancestor })
}

// IsInConstantVector checks one child against every ancestor.
func (d *SimpleDictionary) IsInConstantVector(ctx context.Context, child uint64, ancestor []uint64) ([]bool, error) {
	return d.isIn(ctx, len(ancestor),
		func(int) uint64 { return child },
		func(i int) uint64 { return ancestor[i] })
}

func (d *SimpleDictionary) isIn(ctx context.Context, n int, child, ancestor func(int) uint64) ([]bool, error) {
	attrIdx, attr, err := d.hierarchy()
	if err != nil {
		return nil, err
	}
	null, _ := field.AsUInt64(attr.NullValue)

	out := make([]bool, n)
	for row := range out {
		id, want := child(row), ancestor(row)
		for depth := 0; id != null && id != want && depth < d.opts.maxDepth; depth++ {
			id, err = d.parentOf(ctx, id, attrIdx, null)
			if err != nil {
				return nil, err
			}
		}
		out[row] = id != null && id == want
		d.queries.add(1)
	}
	return out, nil
}

// parentOf asks the source for the parent of id in one round trip. It
// returns null when the source has no row for id.
func (d *SimpleDictionary) parentOf(ctx context.Context, id uint64, attrIdx int, null uint64) (uint64, error) {
	stream, err := d.source.LoadIDs(ctx, []uint64{id})
	if err != nil {
		return 0, fmt.Errorf("load from %s: %w", d.source, err)
	}

	parent := null
	found := false
	err = consume(ctx, stream, func(block *column.Block) error {
		if found {
			return nil
		}
		if len(block.Columns) < 1+attrIdx+1 {
			return d.errorf(dicterr.BadArguments, "source block has %d columns, expected %d", len(block.Columns), attrIdx+2)
		}
		ids, values := block.Columns[0], block.Columns[1+attrIdx]
		for i := 0; i < block.Rows(); i++ {
			if key, ok := field.AsUInt64(ids.Value(i)); ok && key == id {
				if v, ok := field.AsUInt64(values.Value(i)); ok {
					parent = v
				}
				found = true
				return nil
			}
		}
		return nil
	})
	return parent, err
}

// ToParent returns the parent of every id, or the hierarchical attribute's
// null value for ids the source does not have.
func (d *SimpleDictionary) ToParent(ctx context.Context, ids []uint64) ([]uint64, error) {
	_, attr, err := d.hierarchy()
	if err != nil {
		return nil, err
	}
	col, err := d.GetColumn(ctx, attr.Name, field.TypeUInt64, []column.Column{column.UInt64s(ids...)}, nil, nil)
	if err != nil {
		return nil, err
	}
	return col.(*column.Vector[uint64]).Data(), nil
}

func (d *SimpleDictionary) hierarchy() (int, *structure.Attribute, error) {
	idx := d.structure.HierarchicalIndex()
	if idx < 0 {
		return -1, nil, d.errorf(dicterr.BadArguments, "dictionary has no hierarchical attribute")
	}
	return idx, &d.structure.Attributes[idx], nil
}
