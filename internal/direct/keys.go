package direct

import (
	"bytes"
	"context"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
)

// keyMode is what differs between the simple and composite layouts: how keys
// are extracted from columns, compared, and requested from the source.
type keyMode[K any] interface {
	layout() string
	typeName() string

	// extract produces one key per row of cols.
	extract(a *arena.Arena, cols []column.Column) ([]K, error)

	equal(a *arena.Arena, x, y K) bool

	// load opens a stream for keys, which were extracted from cols.
	load(ctx context.Context, src source.Source, keys []K, cols []column.Column) (source.Stream, error)
}

// rowCount checks that cols is non-empty and equally long.
func rowCount(cols []column.Column) (int, error) {
	if len(cols) == 0 {
		return 0, dicterr.New(dicterr.BadArguments, "no key columns")
	}
	n := cols[0].Len()
	for i, c := range cols[1:] {
		if c.Len() != n {
			return 0, dicterr.New(dicterr.BadArguments, "key column %d has %d rows, expected %d", i+1, c.Len(), n)
		}
	}
	return n, nil
}

type simpleKeys struct{}

func (simpleKeys) layout() string   { return LayoutDirect }
func (simpleKeys) typeName() string { return "Direct" }

func (simpleKeys) extract(_ *arena.Arena, cols []column.Column) ([]uint64, error) {
	if _, err := rowCount(cols); err != nil {
		return nil, err
	}
	if len(cols) != 1 {
		return nil, dicterr.New(dicterr.BadArguments, "simple key expects 1 key column, got %d", len(cols))
	}
	vec, ok := column.Full(cols[0]).(*column.Vector[uint64])
	if !ok || vec.Type() != field.TypeUInt64 {
		return nil, dicterr.New(dicterr.TypeMismatch, "column type mismatch for simple key, expected UInt64, got %s", cols[0].Type())
	}
	keys := make([]uint64, vec.Len())
	copy(keys, vec.Data())
	return keys, nil
}

func (simpleKeys) equal(_ *arena.Arena, x, y uint64) bool {
	return x == y
}

func (simpleKeys) load(ctx context.Context, src source.Source, keys []uint64, _ []column.Column) (source.Stream, error) {
	return src.LoadIDs(ctx, keys)
}

type compositeKeys struct{}

func (compositeKeys) layout() string   { return LayoutComplexKeyDirect }
func (compositeKeys) typeName() string { return "ComplexKeyDirect" }

// extract serializes every key column of a row, in column order, into one
// arena span.
func (compositeKeys) extract(a *arena.Arena, cols []column.Column) ([]arena.Ref, error) {
	n, err := rowCount(cols)
	if err != nil {
		return nil, err
	}
	keys := make([]arena.Ref, n)
	for r := range keys {
		for _, c := range cols {
			c.SerializeValueIntoArena(r, a)
		}
		keys[r] = a.Seal()
	}
	return keys, nil
}

func (compositeKeys) equal(a *arena.Arena, x, y arena.Ref) bool {
	return x.Len == y.Len && bytes.Equal(a.Bytes(x), a.Bytes(y))
}

func (compositeKeys) load(ctx context.Context, src source.Source, keys []arena.Ref, cols []column.Column) (source.Stream, error) {
	full := make([]column.Column, len(cols))
	for i, c := range cols {
		full[i] = column.Full(c)
	}
	rows := make([]int, len(keys))
	for i := range rows {
		rows[i] = i
	}
	return src.LoadKeys(ctx, full, rows)
}
