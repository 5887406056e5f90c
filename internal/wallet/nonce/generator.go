package nonce

import (
	"sync/atomic"
)

// Generator issues sequential nonces starting at a base millisecond timestamp. It suits
// high-throughput callers that submit many actions in a burst. Safe for concurrent use.
type Generator struct {
	next  atomic.Uint64
	base  atomic.Uint64
	clock Clock
}

// NewGenerator creates a Generator based at the current time.
func NewGenerator(opts ...Option) *Generator {
	o := newOptions(opts)
	g := &Generator{clock: o.clock}
	now := uint64(o.clock().UnixMilli())
	g.base.Store(now)
	g.next.Store(now)
	return g
}

// Next returns base + n for the n-th call since the last rebase.
func (g *Generator) Next() uint64 {
	return g.next.Add(1) - 1
}

// Reset rebases the generator to the current time. Values already issued are never
// repeated: if the clock is behind the sequence, the sequence continues.
func (g *Generator) Reset() {
	now := uint64(g.clock().UnixMilli())

	for {
		cur := g.next.Load()
		base := now
		if cur > base {
			base = cur
		}
		if g.next.CompareAndSwap(cur, base) {
			g.base.Store(base)
			return
		}
	}
}

// Base returns the timestamp the current sequence started from.
func (g *Generator) Base() uint64 {
	return g.base.Load()
}
