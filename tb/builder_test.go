package tb

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// memFetcher is a flat little-endian byte buffer implementing Fetcher,
// standing in for the guest address space in these tests.
type memFetcher struct {
	base uint64
	data []byte
}

func (m memFetcher) Fetch16(pc uint64) (uint16, bool) {
	off := pc - m.base
	if off+2 > uint64(len(m.data)) {
		return 0, false
	}
	return uint16(m.data[off]) | uint16(m.data[off+1])<<8, true
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// scenario 1 from spec.md §8, run end to end through the block builder:
// a single ADDI instruction followed by running off the end of the
// buffer, which should surface as a fetch fault rather than a panic.
func TestBuildSingleInsnThenFault(t *testing.T) {
	// ADDI x1, x0, 5
	mem := memFetcher{base: 0x1000, data: le32(0x00500093)}
	rec := ir.NewRecorder()
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true}
	tbl := b.Build(0x1000)

	if tbl.NumInsns != 1 {
		t.Fatalf("expected 1 instruction before the fault, got %d", tbl.NumInsns)
	}
	if tbl.Exit != ExitFault {
		t.Fatalf("expected ExitFault, got %v", tbl.Exit)
	}
	sawWrite := false
	for _, e := range rec.Log {
		if e.Kind == "write_reg" && e.Slot == ir.GPR(1) {
			sawWrite = true
		}
	}
	if !sawWrite {
		t.Fatalf("expected x1 to be written, log: %+v", rec.Log)
	}
}

func TestBuildStopsAtBranch(t *testing.T) {
	// JAL x0, 0 (an infinite self-loop, decoded as an unconditional jump)
	mem := memFetcher{base: 0x2000, data: le32(0x0000006f)}
	rec := ir.NewRecorder()
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true}
	tbl := b.Build(0x2000)

	if tbl.Exit != ExitBranch {
		t.Fatalf("expected ExitBranch, got %v", tbl.Exit)
	}
	if tbl.NumInsns != 1 {
		t.Fatalf("expected exactly 1 instruction, got %d", tbl.NumInsns)
	}
}

func TestBuildStopsAtBreakpoint(t *testing.T) {
	prog := append(le32(0x00500093), le32(0x00100113)...) // ADDI x1,x0,5; ADDI x2,x0,1
	mem := memFetcher{base: 0x3000, data: prog}
	rec := ir.NewRecorder()
	bp := NewBreakpoints()
	bp.Add(0x3004)
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true, Breaks: bp}
	tbl := b.Build(0x3000)

	if tbl.NumInsns != 1 {
		t.Fatalf("expected the loop to stop before the breakpointed instruction, got %d insns", tbl.NumInsns)
	}
	if tbl.Exit != ExitStop {
		t.Fatalf("expected ExitStop, got %v", tbl.Exit)
	}
	last := rec.Log[len(rec.Log)-1]
	if last.Kind != "raise_debug" || last.PC != 0x3008 {
		t.Fatalf("expected a debug exception raised at pc+4, got %+v", last)
	}
}

// A breakpoint set exactly at the block's start PC is always hit on the
// first loop iteration (i == 0); the builder must still check it there
// instead of only from the second instruction onward.
func TestBuildStopsAtBreakpointOnFirstInsn(t *testing.T) {
	prog := le32(0x00500093) // ADDI x1,x0,5
	mem := memFetcher{base: 0x4000, data: prog}
	rec := ir.NewRecorder()
	bp := NewBreakpoints()
	bp.Add(0x4000)
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true, Breaks: bp}
	tbl := b.Build(0x4000)

	if tbl.NumInsns != 0 {
		t.Fatalf("expected the breakpoint to fire before any instruction decoded, got %d insns", tbl.NumInsns)
	}
	if tbl.Exit != ExitStop {
		t.Fatalf("expected ExitStop, got %v", tbl.Exit)
	}
	last := rec.Log[len(rec.Log)-1]
	if last.Kind != "raise_debug" || last.PC != 0x4004 {
		t.Fatalf("expected a debug-exception raise at pc+4, log: %+v", rec.Log)
	}
	for _, e := range rec.Log {
		if e.Kind == "load" || e.Kind == "read_reg" {
			t.Fatalf("expected the breakpoint to fire before any instruction decode/emit, log: %+v", rec.Log)
		}
	}
}

func TestBuildSetsOriginalSize(t *testing.T) {
	// JAL x0, 0
	mem := memFetcher{base: 0x2000, data: le32(0x0000006f)}
	rec := ir.NewRecorder()
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true}
	tbl := b.Build(0x2000)

	if tbl.OriginalSize != tbl.Len {
		t.Fatalf("expected OriginalSize == Len (%d), got %d", tbl.Len, tbl.OriginalSize)
	}
}

// BuildSearchPC must stop as soon as it has regenerated exactly
// originalSize guest bytes, even though the underlying block (an
// unconditional jump) would otherwise still exit via ExitBranch at the
// same point — the size-based stop takes priority.
func TestBuildSearchPCStopsAtOriginalSize(t *testing.T) {
	prog := append(le32(0x00500093), le32(0x0000006f)...) // ADDI x1,x0,5; JAL x0,0
	mem := memFetcher{base: 0x5000, data: prog}

	rec1 := ir.NewRecorder()
	b1 := &Builder{Fetch: mem, B: rec1, XLEN: 64, RVC: true}
	original := b1.Build(0x5000)
	if original.NumInsns != 2 {
		t.Fatalf("expected 2 instructions in the original pass, got %d", original.NumInsns)
	}

	rec2 := ir.NewRecorder()
	b2 := &Builder{Fetch: mem, B: rec2, XLEN: 64, RVC: true}
	_, tbl, err := b2.BuildSearchPC(0x5000, original.OriginalSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Exit != ExitSearchPC {
		t.Fatalf("expected ExitSearchPC, got %v", tbl.Exit)
	}
	if tbl.NumInsns != original.NumInsns {
		t.Fatalf("expected the re-pass to regenerate the same instruction count %d, got %d", original.NumInsns, tbl.NumInsns)
	}
	if tbl.Len != original.OriginalSize {
		t.Fatalf("expected the re-pass to stop at original_size %d, got %d", original.OriginalSize, tbl.Len)
	}
}

// A block with no vsetvli/vsetivli/vsetvl leaves the vector-CSR snapshot
// entirely unknown, and the packed snapshot must still round-trip cleanly
// through struc.
func TestBuildSearchPCSnapshotRoundTripsWhenNothingKnown(t *testing.T) {
	mem := memFetcher{base: 0x6000, data: le32(0x0000006f)} // JAL x0, 0
	rec := ir.NewRecorder()
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true}
	packed, _, err := b.BuildSearchPC(0x6000, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := riscv.UnpackVectorCSR(bytes.NewReader(packed), binary.LittleEndian)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if snap.Known != 0 {
		t.Fatalf("expected no known vector-CSR fields, got Known=0x%x", snap.Known)
	}
}

// vsetvli rd=x1, rs1=x0, e64,m1 requests vlmax (AVL mode "request"), so
// both vtype and vl are statically derivable; vstart is always known
// (every vset* resets it to 0).
func TestBuildTracksVectorCSRThroughSearchPC(t *testing.T) {
	vtypeImm := uint32(0x18) // vsew=64 (field 3), vlmul=1 (field 0)
	word := uint32(riscv.OpOpV) | uint32(1)<<7 | uint32(7)<<12 | uint32(0)<<15 | vtypeImm<<20
	mem := memFetcher{base: 0x7000, data: le32(word)}
	rec := ir.NewRecorder()
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true, VLenb: 16}
	packed, tbl, err := b.BuildSearchPC(0x7000, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.NumInsns != 1 {
		t.Fatalf("expected 1 instruction, got %d", tbl.NumInsns)
	}
	snap, err := riscv.UnpackVectorCSR(bytes.NewReader(packed), binary.LittleEndian)
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if snap.Known&riscv.VCSRVtypeKnown == 0 {
		t.Fatalf("expected vtype to be statically known, snap=%+v", snap)
	}
	if snap.Known&riscv.VCSRVLKnown == 0 {
		t.Fatalf("expected vl to be statically known for a vlmax request, snap=%+v", snap)
	}
	if snap.Known&riscv.VCSRVStartKnown == 0 {
		t.Fatalf("expected vstart to be statically known, snap=%+v", snap)
	}
	wantVL := uint64(16 * 8 / 64) // vlenb*8/vsew * lmul(1)
	if snap.VL != wantVL {
		t.Fatalf("expected vl=%d, got %d", wantVL, snap.VL)
	}
}

func TestBuildStopsAtPageBoundary(t *testing.T) {
	// place a single ADDI two bytes before the 4KiB boundary
	prog := le32(0x00500093)
	mem := memFetcher{base: 0x0ffe, data: prog}
	rec := ir.NewRecorder()
	b := &Builder{Fetch: mem, B: rec, XLEN: 64, RVC: true}
	tbl := b.Build(0x0ffe)

	if tbl.Exit != ExitPageCross {
		t.Fatalf("expected ExitPageCross, got %v", tbl.Exit)
	}
}
