package testutil

import (
	"fmt"
	"sync"
)

// SequentialFlowGenerator yields "<prefix>-0001", "<prefix>-0002", ...
//
// Tokens are unique per generator and identical across runs, which keeps
// trace logs and golden files stable. An empty prefix means "test-flow".
type SequentialFlowGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialFlowGenerator creates a generator with the given prefix.
func NewSequentialFlowGenerator(prefix string) *SequentialFlowGenerator {
	if prefix == "" {
		prefix = "test-flow"
	}
	return &SequentialFlowGenerator{prefix: prefix}
}

// Generate returns the next token. Implements dispatch.FlowTokenGenerator.
func (g *SequentialFlowGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
