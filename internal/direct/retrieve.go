package direct

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
)

// newArena creates the per-call key arena.
var newArena = arena.New

// GetColumn returns attribute for every requested key, in request order.
func (d *dictionary[K]) GetColumn(ctx context.Context, attribute string, resultType field.Type,
	keyColumns []column.Column, keyTypes []field.Type, defaults column.Column) (column.Column, error) {

	attr, attrIdx, err := d.structure.GetAttribute(attribute)
	if err != nil {
		return nil, d.annotate(err)
	}
	if resultType != field.TypeInvalid && resultType != attr.Type {
		return nil, d.errorf(dicterr.TypeMismatch, "attribute %q has type %s, requested %s", attr.Name, attr.Type, resultType)
	}
	if err := d.validateKeyTypes(keyColumns, keyTypes); err != nil {
		return nil, err
	}

	a := newArena(0)
	defer a.Release()

	requested, err := d.keys.extract(a, keyColumns)
	if err != nil {
		return nil, d.annotate(err)
	}
	if defaults != nil && defaults.Len() < len(requested) {
		return nil, d.errorf(dicterr.BadArguments, "defaults column has %d rows, expected %d", defaults.Len(), len(requested))
	}
	provider := newDefaultProvider(attr, defaults)

	out, err := column.New(attr.Type, len(requested))
	if err != nil {
		return nil, d.errorf(dicterr.TypeMismatch, "attribute %q: %v", attr.Name, err)
	}
	appendDefault := func(row int) error {
		if err := out.Append(provider.defaultFor(row)); err != nil {
			return d.errorf(dicterr.TypeMismatch, "default for row %d: %v", row, err)
		}
		return nil
	}

	keyCount := len(d.structure.KeyNames())
	found := 0
	pos := 0
	err = d.merge(ctx, a, requested, keyColumns, func(block *column.Block, blockKeys []K) error {
		values := block.Columns[keyCount+attrIdx]
		for i, key := range blockKeys {
			for pos < len(requested) && !d.keys.equal(a, requested[pos], key) {
				if err := appendDefault(pos); err != nil {
					return err
				}
				pos++
			}
			if pos == len(requested) {
				// Rows past the request are ignored.
				return nil
			}
			if err := out.Append(values.Value(i)); err != nil {
				return d.errorf(dicterr.TypeMismatch, "attribute %q: %v", attr.Name, err)
			}
			found++
			pos++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for ; pos < len(requested); pos++ {
		if err := appendDefault(pos); err != nil {
			return nil, err
		}
	}

	d.queries.add(len(requested))
	slog.Debug("dictionary get",
		"dictionary", d.id.FullName(),
		"attribute", attr.Name,
		"requested", len(requested),
		"found", found)
	return out, nil
}

// HasKeys reports which requested keys the source has.
func (d *dictionary[K]) HasKeys(ctx context.Context, keyColumns []column.Column, keyTypes []field.Type) (*column.Vector[uint8], error) {
	if err := d.validateKeyTypes(keyColumns, keyTypes); err != nil {
		return nil, err
	}

	a := newArena(0)
	defer a.Release()

	requested, err := d.keys.extract(a, keyColumns)
	if err != nil {
		return nil, d.annotate(err)
	}

	out := make([]uint8, len(requested))
	found := 0
	pos := 0
	err = d.merge(ctx, a, requested, keyColumns, func(_ *column.Block, blockKeys []K) error {
		for _, key := range blockKeys {
			for pos < len(requested) && !d.keys.equal(a, requested[pos], key) {
				pos++
			}
			if pos == len(requested) {
				return nil
			}
			out[pos] = 1
			found++
			pos++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.queries.add(len(requested))
	slog.Debug("dictionary has",
		"dictionary", d.id.FullName(),
		"requested", len(requested),
		"found", found)
	return column.UInt8s(out...), nil
}

// validateKeyTypes checks composite key columns against the structure.
// keyTypes defaults to the column types when nil. Simple keys are checked
// on extraction.
func (d *dictionary[K]) validateKeyTypes(keyColumns []column.Column, keyTypes []field.Type) error {
	if !d.structure.IsComposite() {
		return nil
	}
	actual := make([]field.Type, len(keyColumns))
	for i, c := range keyColumns {
		actual[i] = c.Type()
	}
	if keyTypes == nil {
		keyTypes = actual
	}
	if err := d.structure.ValidateKeyTypes(keyTypes); err != nil {
		return d.annotate(err)
	}
	if err := d.structure.ValidateKeyTypes(actual); err != nil {
		return d.annotate(err)
	}
	return nil
}

// merge opens a stream for requested and calls fn with every block and the
// keys extracted from it. The stream is drained and closed on every path.
func (d *dictionary[K]) merge(ctx context.Context, a *arena.Arena, requested []K, keyColumns []column.Column,
	fn func(block *column.Block, blockKeys []K) error) error {

	stream, err := d.keys.load(ctx, d.source, requested, keyColumns)
	if err != nil {
		return fmt.Errorf("load from %s: %w", d.source, err)
	}

	keyCount := len(d.structure.KeyNames())
	width := keyCount + len(d.structure.Attributes)
	return consume(ctx, stream, func(block *column.Block) error {
		if len(block.Columns) < width {
			return d.errorf(dicterr.BadArguments, "source block has %d columns, expected %d", len(block.Columns), width)
		}
		blockKeys, err := d.keys.extract(a, block.Columns[:keyCount])
		if err != nil {
			return d.annotate(err)
		}
		return fn(block, blockKeys)
	})
}

// consume reads stream to exhaustion and closes it.
func consume(ctx context.Context, stream source.Stream, fn func(*column.Block) error) (err error) {
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close source stream: %w", cerr)
		}
	}()

	for {
		block, err := stream.Read(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read source stream: %w", err)
		}
		if block.Rows() == 0 {
			continue
		}
		if err := fn(block); err != nil {
			return err
		}
	}
}
