// Package tb implements the fetch-decode-emit translation-block loop:
// package decode resolves opcode words, package emit lowers them to IR,
// and Builder here drives the loop and owns the policy decisions
// (chaining, page-boundary and breakpoint stops, search-PC bookkeeping)
// that need to see the whole block rather than one instruction at a time.
package tb

// Breakpoints is the raw-address breakpoint set a Builder consults before
// emitting each instruction. Grounded on go/models.Breakpoint, simplified
// to just the address-match case: this frontend has no symbol table or
// source-line mapping to resolve the sym/source forms go/models.Breakpoint
// parses from a CLI string.
type Breakpoints struct {
	set map[uint64]bool
}

func NewBreakpoints() *Breakpoints {
	return &Breakpoints{set: make(map[uint64]bool)}
}

func (b *Breakpoints) Add(addr uint64) {
	b.set[addr] = true
}

func (b *Breakpoints) Remove(addr uint64) {
	delete(b.set, addr)
}

func (b *Breakpoints) Has(addr uint64) bool {
	return b.set[addr]
}
