// Package source defines how a dictionary reads rows from its backing store.
//
// A Source answers three kinds of requests: every row, the rows for a list of
// UInt64 ids, and the rows for a set of composite keys. Each answer is a
// Stream of column.Blocks whose key columns come first, followed by every
// attribute column in structure order.
//
// Sources may omit keys they do not have. Rows they do return must follow
// the order of the request. Every bundled source reorders its results to
// uphold this.
package source

import (
	"context"
	"errors"
	"io"

	"github.com/roach88/directdict/internal/column"
)

// Stream yields blocks until Read returns io.EOF.
type Stream interface {
	Read(ctx context.Context) (*column.Block, error)
	Close() error
}

// Source loads dictionary rows on demand.
type Source interface {
	LoadAll(ctx context.Context) (Stream, error)
	LoadIDs(ctx context.Context, ids []uint64) (Stream, error)

	// LoadKeys loads the composite keys found at the given rows of keyColumns.
	LoadKeys(ctx context.Context, keyColumns []column.Column, rows []int) (Stream, error)

	// SupportsSelectiveLoad reports whether LoadIDs and LoadKeys are usable.
	SupportsSelectiveLoad() bool

	Clone() Source
	String() string
}

// SliceStream serves blocks from memory.
type SliceStream struct {
	blocks []*column.Block
	pos    int
	closed bool
}

// NewSliceStream returns a stream over blocks.
func NewSliceStream(blocks ...*column.Block) *SliceStream {
	return &SliceStream{blocks: blocks}
}

// Read returns the next block or io.EOF.
func (s *SliceStream) Read(ctx context.Context) (*column.Block, error) {
	if s.closed {
		return nil, errors.New("read from closed stream")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.blocks) {
		return nil, io.EOF
	}
	b := s.blocks[s.pos]
	s.pos++
	return b, nil
}

// Close releases the stream. Close is idempotent.
func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Drain reads every block of s and closes it.
func Drain(ctx context.Context, s Stream) (blocks []*column.Block, err error) {
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		b, err := s.Read(ctx)
		if errors.Is(err, io.EOF) {
			return blocks, nil
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
}
