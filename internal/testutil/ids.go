package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs generates predictable UUIDs for tests.
//
// The n-th id (starting at 1) is 00000000-0000-4000-8000-<n as 12 hex digits>,
// so the same scenario always produces the same ids and golden output stays
// stable.
//
// Thread-safety: SequentialIDs is safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu sync.Mutex
	n  uint64
}

// NewSequentialIDs creates a generator whose first id has sequence 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// NewID returns the next id in sequence.
func (g *SequentialIDs) NewID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return SequentialID(g.n)
}

// Reset restarts the sequence. The next NewID returns SequentialID(1).
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

// SequentialID returns the id SequentialIDs produces at position n.
func SequentialID(n uint64) uuid.UUID {
	var id uuid.UUID
	id[6] = 0x40
	id[8] = 0x80
	var tail [8]byte
	binary.BigEndian.PutUint64(tail[:], n)
	copy(id[10:], tail[2:])
	return id
}

// FixedIDs returns predetermined ids in order.
//
// Panics if all ids have been consumed. This catches a test that generates
// more ids than it expected.
type FixedIDs struct {
	mu  sync.Mutex
	ids []uuid.UUID
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
func NewFixedIDs(ids ...uuid.UUID) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// NewID returns the next predetermined id.
func (g *FixedIDs) NewID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
