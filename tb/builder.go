package tb

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/emit"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// PageSize is the guest page granularity spec.md's chaining policy checks
// goto_tb targets against: 4KiB, the RISC-V Sv39/Sv48 base page size.
const PageSize = 4096

const pageMask = ^uint64(PageSize - 1)

func pageOf(pc uint64) uint64 { return pc & pageMask }

// DefaultMaxInsns bounds how many guest instructions a single block may
// hold before the builder forces an exit, the same purpose as QEMU TCG's
// per-block instruction cap: keeps IR buffers and host register pressure
// bounded regardless of how long a straight-line guest run is.
const DefaultMaxInsns = 512

// DefaultVLenb is the vector register width in bytes this frontend assumes
// when a Builder doesn't set VLenb: 16 bytes (128-bit VLEN), the smallest
// width the RVV "V" profile requires.
const DefaultVLenb = 16

// Fetcher supplies the raw instruction bytes a Builder decodes. Fetch16
// reads one naturally-aligned halfword; a 16-bit instruction is one
// Fetch16 call and a 32-bit instruction two, so Compressed-extension
// code never requires 4-byte alignment.
type Fetcher interface {
	Fetch16(pc uint64) (word uint16, ok bool)
}

// Builder drives the fetch-decode-emit loop of spec.md §4.4 and owns the
// two block-level policy decisions no single instruction's emitter can
// make on its own: the goto_tb chaining decision (which needs the block's
// start page) and the breakpoint/page-boundary/instruction-count stopping
// conditions.
type Builder struct {
	Fetch      Fetcher
	B          ir.Builder
	XLEN       int
	RVC        bool
	MMUIdx     int
	SingleStep bool
	Breaks     *Breakpoints
	MaxInsns   int

	// VLenb is the vector register width in bytes, used only by
	// BuildSearchPC's vtype/vl re-derivation (riscv.VLMax needs it to
	// resolve vlmax-requesting vsetvli/vsetvl forms). Defaults to
	// DefaultVLenb when zero.
	VLenb int
}

// buildOptions parameterizes the one fetch-decode-emit loop shared by
// Build and BuildSearchPC (spec.md §4.4 step 2: normal generation and the
// search_pc re-pass are the same loop with a different stopping
// condition).
type buildOptions struct {
	searchPC     bool
	originalSize uint64
}

// Build emits one translation block starting at startPC and returns its
// description. All actual IR is appended to b.B; Build never resets or
// rewinds it, so callers wanting a fresh block need a fresh Builder.B (or
// a Builder implementation that supports resetting itself).
func (b *Builder) Build(startPC uint64) *TB {
	t, _ := b.build(startPC, buildOptions{})
	t.OriginalSize = t.Len
	return t
}

// BuildSearchPC re-emits the block at startPC exactly as Build did, but
// stops as soon as it has regenerated originalSize guest bytes (spec.md
// §4.4's "search_pc && tb.size == tb.original_size" condition) instead of
// running to the block's natural end. This is QEMU's search_pc /
// restore_state_to_opc idea: the only way to recover engine-side state
// that isn't part of the live guest register file (here, the vector
// vtype/vl/vstart CSRs) after a mid-block fault is to regenerate the block
// up to the fault point and observe what that regeneration would have set.
//
// Because vl and vstart are frequently sourced from a general register at
// runtime, a static re-pass cannot always recover them; the returned
// snapshot's Known bitmask says which fields this re-pass could actually
// derive; a caller must fall back to its own live engine state for any
// bit that comes back unset; this frontend does not sit on a real
// register file, so it cannot do that fallback itself, hence returning the
// snapshot rather than resolving it fully.
func (b *Builder) BuildSearchPC(startPC uint64, originalSize uint64) ([]byte, *TB, error) {
	t, snap := b.build(startPC, buildOptions{searchPC: true, originalSize: originalSize})
	t.OriginalSize = originalSize

	var buf bytes.Buffer
	if err := riscv.PackVectorCSR(&buf, snap, binary.LittleEndian); err != nil {
		return nil, t, err
	}
	return buf.Bytes(), t, nil
}

func (b *Builder) build(startPC uint64, opts buildOptions) (*TB, riscv.VectorCSRSnapshot) {
	maxInsns := b.MaxInsns
	if maxInsns <= 0 {
		maxInsns = DefaultMaxInsns
	}
	startPage := pageOf(startPC)

	t := &TB{StartPC: startPC}
	var snap riscv.VectorCSRSnapshot
	ctx := &emit.Context{
		B:      b.B,
		XLEN:   b.XLEN,
		RVC:    b.RVC,
		MMUIdx: b.MMUIdx,
	}
	ctx.GotoTB = func(n int, dest uint64) {
		if !b.SingleStep && pageOf(dest) == startPage {
			b.B.GotoTB(n, dest)
			return
		}
		b.B.WriteGuestReg(ir.PCSlot(), b.B.ConstI(b.XLEN, dest))
		b.B.ExitTB()
	}

	pc := startPC
	for i := 0; i < maxInsns; i++ {
		if b.Breaks != nil && b.Breaks.Has(pc) {
			t.Exit = ExitStop
			ctx.RaiseDebugAt(pc + 4)
			break
		}

		lo, ok := b.Fetch.Fetch16(pc)
		if !ok {
			b.B.RaiseExceptionBadAddr(riscv.ExcInstrAddrMisaligned, pc, pc)
			t.Exit = ExitFault
			break
		}

		var in decode.Inst
		if lo&0x3 != 0x3 {
			in = decode.Decode16(lo, b.XLEN)
		} else {
			hi, ok2 := b.Fetch.Fetch16(pc + 2)
			if !ok2 {
				b.B.RaiseExceptionBadAddr(riscv.ExcInstrAddrMisaligned, pc, pc+2)
				t.Exit = ExitFault
				break
			}
			word := uint32(lo) | uint32(hi)<<16
			in = decode.Decode32(word, b.XLEN)
		}

		t.PCMap = append(t.PCMap, PCMapEntry{InsnIndex: i, GuestPC: pc})
		b.trackVectorCSR(&snap, in)

		ctx.PC = pc
		ctx.NextPC = pc + uint64(in.Len)
		ctx.SingleStep = b.SingleStep
		ctx.State = emit.StateNone

		emit.Emit(ctx, in)
		t.NumInsns++

		if !b.B.TempLeakOK() {
			panic(fmt.Sprintf("tb: temp leak detected after instruction at pc 0x%x", pc))
		}

		pc = ctx.NextPC
		if opts.searchPC && pc-startPC == opts.originalSize {
			t.Exit = ExitSearchPC
			break
		}

		if ctx.State == emit.StateBranch {
			t.Exit = ExitBranch
			break
		}
		if ctx.State == emit.StateStop {
			t.Exit = ExitStop
			break
		}
		if b.SingleStep {
			t.Exit = ExitSingleStep
			ctx.RaiseDebugAt(ctx.NextPC)
			break
		}
		if pageOf(ctx.NextPC) != startPage {
			t.Exit = ExitPageCross
			ctx.ExitAt(ctx.NextPC)
			break
		}

		if i == maxInsns-1 {
			t.Exit = ExitMaxInsns
			ctx.ExitAt(pc)
		}
	}

	t.Len = pc - startPC
	return t, snap
}

// trackVectorCSR updates snap with whatever vtype/vl/vstart state in's
// execution statically determines, per the AVL-encoding table spec.md
// §4.3 describes. Only vsetvli/vsetivli/vsetvl instructions touch these
// fields; every other instruction leaves snap untouched.
func (b *Builder) trackVectorCSR(snap *riscv.VectorCSRSnapshot, in decode.Inst) {
	if in.Op != riscv.OpVSETVLI && in.Op != riscv.OpVSETIVLI && in.Op != riscv.OpVSETVL {
		return
	}

	vlenb := b.VLenb
	if vlenb <= 0 {
		vlenb = DefaultVLenb
	}
	snap.VLenb = uint64(vlenb)

	switch in.Op {
	case riscv.OpVSETVLI, riscv.OpVSETIVLI:
		vt := riscv.DecodeVType(uint64(in.CSR), riscv.ELEN)
		snap.Vtype = riscv.EncodeVType(vt, b.XLEN)
		snap.Known |= riscv.VCSRVtypeKnown

		if in.Op == riscv.OpVSETIVLI {
			vl := uint64(in.Rs1)
			if vlmax := uint64(riscv.VLMax(vt, vlenb)); vl > vlmax {
				vl = vlmax
			}
			snap.VL = vl
			snap.Known |= riscv.VCSRVLKnown
		} else {
			switch emit.AVLMode(in.Rd, in.Rs1) {
			case emit.AVLModeRequest:
				snap.VL = uint64(riscv.VLMax(vt, vlenb))
				snap.Known |= riscv.VCSRVLKnown
			case emit.AVLModeKeepVL:
				// vl is unchanged; its Known bit (if any) carries over.
			default:
				snap.Known &^= riscv.VCSRVLKnown
			}
		}

	case riscv.OpVSETVL:
		// vtype comes from a register: never statically known, and with
		// it goes any vlmax-derived vl.
		snap.Known &^= riscv.VCSRVtypeKnown
		if emit.AVLMode(in.Rd, in.Rs1) != emit.AVLModeKeepVL {
			snap.Known &^= riscv.VCSRVLKnown
		}
	}

	// Every vset* form resets vstart to 0, which is therefore always
	// statically known regardless of how vtype/vl were derived.
	snap.VStart = 0
	snap.Known |= riscv.VCSRVStartKnown
}
