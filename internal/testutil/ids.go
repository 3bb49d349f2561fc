package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable call ids: "<prefix>-1", "<prefix>-2", ...
//
// This enables golden comparison of dump filenames, which end in the call id.
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. If prefix is empty, "call" is used.
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "call"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// FixedID returns the same id every time.
type FixedID string

// Generate returns the fixed id.
func (id FixedID) Generate() string {
	return string(id)
}
