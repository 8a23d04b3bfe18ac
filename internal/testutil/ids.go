package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/memberreg/internal/ir"
)

// SequentialIDGenerator returns "tx-0001", "tx-0002", ... regardless of
// transaction content. It satisfies host.TxIDGenerator.
//
// Golden traces stay readable and do not change when the hash format does.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator with the "tx" prefix.
func NewSequentialIDGenerator() *SequentialIDGenerator {
	return NewSequentialIDGeneratorWithPrefix("tx")
}

// NewSequentialIDGeneratorWithPrefix creates a generator with a custom prefix.
func NewSequentialIDGeneratorWithPrefix(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDGenerator) Generate(ir.Addr, ir.Msg, int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n), nil
}

// Count returns how many IDs have been generated.
func (g *SequentialIDGenerator) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
