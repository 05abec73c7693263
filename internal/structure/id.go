package structure

import (
	"sync"

	"github.com/google/uuid"
)

// ID identifies a dictionary.
type ID struct {
	Database string
	Name     string
	UUID     uuid.UUID
}

// FullName is "database.name", or just the name when no database is set.
func (id ID) FullName() string {
	if id.Database == "" {
		return id.Name
	}
	return id.Database + "." + id.Name
}

// IDGenerator supplies UUIDs for dictionaries defined without one.
type IDGenerator interface {
	Generate() uuid.UUID
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7. It panics if the random source fails.
func (UUIDv7Generator) Generate() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// SequenceGenerator returns predetermined UUIDs in order.
//
// Thread-safety: SequenceGenerator is safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu  sync.Mutex
	ids []uuid.UUID
	idx int
}

// NewSequenceGenerator creates a generator that returns ids in order.
func NewSequenceGenerator(ids ...uuid.UUID) *SequenceGenerator {
	return &SequenceGenerator{ids: ids}
}

// Generate returns the next id. It panics once all ids are consumed, which
// catches a test creating more dictionaries than it planned.
func (g *SequenceGenerator) Generate() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
