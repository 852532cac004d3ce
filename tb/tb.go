package tb

// ExitReason classifies why a Builder stopped emitting a translation
// block, mainly for logging/testing; the CLI's multi-block loop stops on
// ExitFault.
type ExitReason int

const (
	ExitUnknown ExitReason = iota
	ExitMaxInsns
	ExitPageCross
	ExitSingleStep
	ExitBranch // a control-flow instruction redirected execution itself
	ExitStop   // a non-branch side effect (trap, FENCE.I, WFI, ECALL) ended the block
	ExitFault  // the fetch itself failed (unmapped or misaligned instruction address)

	// ExitSearchPC is BuildSearchPC's own stopping condition (spec.md
	// §4.4): the re-pass has regenerated exactly OriginalSize guest bytes,
	// matching the point the original generation faulted at.
	ExitSearchPC
)

func (r ExitReason) String() string {
	switch r {
	case ExitMaxInsns:
		return "max-insns"
	case ExitPageCross:
		return "page-cross"
	case ExitSingleStep:
		return "single-step"
	case ExitBranch:
		return "branch"
	case ExitStop:
		return "stop"
	case ExitFault:
		return "fault"
	case ExitSearchPC:
		return "search-pc"
	default:
		return "unknown"
	}
}

// PCMapEntry records the guest PC that instruction InsnIndex within a
// block started at, the search-PC bookkeeping spec.md's re-pass mechanism
// needs to reconstruct the guest PC from a host PC that faulted mid-block.
// A real backend keys this by host code offset instead of instruction
// index; this frontend has no host code to offset into, so instruction
// index is the closest analogue it can produce and test against.
type PCMapEntry struct {
	InsnIndex int
	GuestPC   uint64
}

// TB describes one emitted translation block.
type TB struct {
	StartPC  uint64
	Len      uint64 // guest bytes covered, StartPC..StartPC+Len
	NumInsns int
	Exit     ExitReason

	// OriginalSize is Len as recorded by the block's first (non-search-PC)
	// generation, the value a later BuildSearchPC re-pass over the same
	// StartPC must stop at (spec.md §4.4, "search_pc && tb.size ==
	// tb.original_size"), mirroring QEMU's tb->size / tb->size on
	// regeneration.
	OriginalSize uint64

	PCMap []PCMapEntry
}

// PCForInsn implements the search-PC lookup: given a host-side execution
// point expressed as "the block had emitted N instructions", returns the
// guest PC execution actually reached. A real backend derives N from a
// host program counter via a binary search over generated code offsets;
// here N is handed in directly since there is no generated code to search.
func (t *TB) PCForInsn(n int) (uint64, bool) {
	for _, e := range t.PCMap {
		if e.InsnIndex == n {
			return e.GuestPC, true
		}
	}
	return 0, false
}
