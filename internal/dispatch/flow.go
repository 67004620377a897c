package dispatch

import (
	"sync"

	"github.com/google/uuid"
)

// FlowTokenGenerator produces the token that names one interaction.
type FlowTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 flow tokens.
//
// Tokens sort by creation time, so the trace log lists interactions in
// the order they arrived even across restarts.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if the system random source fails.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined flow tokens, in order.
//
//	gen := NewFixedGenerator("flow-1", "flow-2")
//	gen.Generate() // "flow-1"
//	gen.Generate() // "flow-2"
//	gen.Generate() // panic: all tokens exhausted
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next token. It panics once all are used, which
// flags a test that dispatched more interactions than it planned.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
