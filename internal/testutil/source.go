package testutil

import (
	"context"
	"sync/atomic"

	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/source"
)

// CountingSource wraps a source.Source and counts requests and open streams.
//
// Thread-safety: counters are atomic; the wrapped source must itself be safe
// for concurrent use when the CountingSource is shared.
type CountingSource struct {
	source.Source

	loadAll  atomic.Int64
	loadIDs  atomic.Int64
	loadKeys atomic.Int64
	open     atomic.Int64

	// ReadErr, when set, is returned by the first Read of every stream.
	ReadErr error
}

// NewCountingSource wraps src.
func NewCountingSource(src source.Source) *CountingSource {
	return &CountingSource{Source: src}
}

func (c *CountingSource) LoadAll(ctx context.Context) (source.Stream, error) {
	c.loadAll.Add(1)
	return c.wrap(c.Source.LoadAll(ctx))
}

func (c *CountingSource) LoadIDs(ctx context.Context, ids []uint64) (source.Stream, error) {
	c.loadIDs.Add(1)
	return c.wrap(c.Source.LoadIDs(ctx, ids))
}

func (c *CountingSource) LoadKeys(ctx context.Context, keyColumns []column.Column, rows []int) (source.Stream, error) {
	c.loadKeys.Add(1)
	return c.wrap(c.Source.LoadKeys(ctx, keyColumns, rows))
}

// Clone wraps a clone of the underlying source in a fresh CountingSource.
func (c *CountingSource) Clone() source.Source {
	return &CountingSource{Source: c.Source.Clone(), ReadErr: c.ReadErr}
}

// RoundTrips returns the total number of load requests.
func (c *CountingSource) RoundTrips() int64 {
	return c.loadAll.Load() + c.loadIDs.Load() + c.loadKeys.Load()
}

// LoadIDCalls returns the number of LoadIDs requests.
func (c *CountingSource) LoadIDCalls() int64 { return c.loadIDs.Load() }

// LoadKeyCalls returns the number of LoadKeys requests.
func (c *CountingSource) LoadKeyCalls() int64 { return c.loadKeys.Load() }

// LoadAllCalls returns the number of LoadAll requests.
func (c *CountingSource) LoadAllCalls() int64 { return c.loadAll.Load() }

// OpenStreams returns the number of streams opened and not yet closed.
func (c *CountingSource) OpenStreams() int64 { return c.open.Load() }

func (c *CountingSource) wrap(s source.Stream, err error) (source.Stream, error) {
	if err != nil {
		return nil, err
	}
	c.open.Add(1)
	return &countingStream{Stream: s, owner: c}, nil
}

type countingStream struct {
	source.Stream
	owner  *CountingSource
	read   bool
	closed bool
}

func (s *countingStream) Read(ctx context.Context) (*column.Block, error) {
	if !s.read && s.owner.ReadErr != nil {
		s.read = true
		return nil, s.owner.ReadErr
	}
	s.read = true
	return s.Stream.Read(ctx)
}

func (s *countingStream) Close() error {
	if !s.closed {
		s.closed = true
		s.owner.open.Add(-1)
	}
	return s.Stream.Close()
}
