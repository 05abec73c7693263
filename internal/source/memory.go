package source

import (
	"context"
	"fmt"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/structure"
)

// DefaultBlockSize is the number of rows per block when none is configured.
const DefaultBlockSize = 1024

// Memory is a Source over rows held in memory.
//
// Rows are indexed by their serialized key, so lookups by id and by composite
// key behave like those of a real store. When several rows share a key the
// first one wins.
type Memory struct {
	table     *Table
	keyCount  int
	index     map[string]int
	blockSize int
	selective bool
}

// MemoryOption configures a Memory source.
type MemoryOption func(*Memory)

// WithBlockSize sets the maximum number of rows per emitted block.
func WithBlockSize(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.blockSize = n
		}
	}
}

// WithoutSelectiveLoad makes the source report that it cannot load by key.
func WithoutSelectiveLoad() MemoryOption {
	return func(m *Memory) {
		m.selective = false
	}
}

// NewMemory builds a Memory source for s from rows laid out key columns
// first, then attributes in structure order.
func NewMemory(s *structure.Structure, rows [][]field.Value, opts ...MemoryOption) (*Memory, error) {
	table, err := NewTable(s)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := table.Append(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	m := &Memory{
		table:     table,
		keyCount:  len(s.KeyNames()),
		index:     make(map[string]int, len(rows)),
		blockSize: DefaultBlockSize,
		selective: true,
	}
	for _, opt := range opts {
		opt(m)
	}

	a := arena.New(0)
	defer a.Release()
	for r := 0; r < table.Rows(); r++ {
		for k := 0; k < m.keyCount; k++ {
			table.Column(k).SerializeValueIntoArena(r, a)
		}
		key := string(a.Bytes(a.Seal()))
		if _, dup := m.index[key]; !dup {
			m.index[key] = r
		}
	}
	return m, nil
}

// LoadAll streams every row in insertion order.
func (m *Memory) LoadAll(context.Context) (Stream, error) {
	rows := make([]int, m.table.Rows())
	for i := range rows {
		rows[i] = i
	}
	return m.stream(rows)
}

// LoadIDs streams the rows for ids in request order, skipping unknown ids.
func (m *Memory) LoadIDs(_ context.Context, ids []uint64) (Stream, error) {
	if m.keyCount != 1 || m.table.types[0] != field.TypeUInt64 {
		return nil, fmt.Errorf("memory source has a composite key, cannot load by id")
	}
	a := arena.New(8 * len(ids))
	defer a.Release()

	var rows []int
	for _, id := range ids {
		a.PutUint64(id)
		if r, ok := m.index[string(a.Bytes(a.Seal()))]; ok {
			rows = append(rows, r)
		}
	}
	return m.stream(rows)
}

// LoadKeys streams the rows for the requested composite keys in request order.
func (m *Memory) LoadKeys(_ context.Context, keyColumns []column.Column, requested []int) (Stream, error) {
	if len(keyColumns) != m.keyCount {
		return nil, fmt.Errorf("memory source expects %d key columns, got %d", m.keyCount, len(keyColumns))
	}
	a := arena.New(0)
	defer a.Release()

	var rows []int
	for _, r := range requested {
		for _, col := range keyColumns {
			col.SerializeValueIntoArena(r, a)
		}
		if found, ok := m.index[string(a.Bytes(a.Seal()))]; ok {
			rows = append(rows, found)
		}
	}
	return m.stream(rows)
}

func (m *Memory) stream(rows []int) (Stream, error) {
	blocks, err := m.table.Blocks(rows, m.blockSize)
	if err != nil {
		return nil, err
	}
	return NewSliceStream(blocks...), nil
}

// SupportsSelectiveLoad reports whether keyed loads are enabled.
func (m *Memory) SupportsSelectiveLoad() bool {
	return m.selective
}

// Clone returns a source sharing the same immutable rows.
func (m *Memory) Clone() Source {
	c := *m
	return &c
}

func (m *Memory) String() string {
	return fmt.Sprintf("memory(rows=%d)", m.table.Rows())
}
