package testutil

import "github.com/google/uuid"

// DefaultUUID is returned by a FixedIDGenerator created without an id.
var DefaultUUID = uuid.MustParse("00000000-0000-7000-8000-000000000001")

// FixedIDGenerator returns the same UUID every time.
//
// The same scenario with the same FixedIDGenerator produces byte-identical
// traces.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id uuid.UUID
}

// NewFixedIDGenerator creates a generator returning id, or DefaultUUID when
// id is the zero UUID.
func NewFixedIDGenerator(id uuid.UUID) *FixedIDGenerator {
	if id == uuid.Nil {
		id = DefaultUUID
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
//
// Implements structure.IDGenerator.
func (g *FixedIDGenerator) Generate() uuid.UUID {
	return g.id
}
