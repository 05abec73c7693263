package direct

import "sync/atomic"

// queryCounter counts requested keys over the dictionary's lifetime.
//
// Thread-safety: safe for concurrent use (atomic operations). It is the only
// state shared between concurrent lookups.
type queryCounter struct {
	n atomic.Uint64
}

// add records n requested keys.
func (c *queryCounter) add(n int) {
	c.n.Add(uint64(n))
}

// load returns the total so far.
func (c *queryCounter) load() uint64 {
	return c.n.Load()
}
