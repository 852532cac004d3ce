// Package emit implements the per-operation IR emission routines of
// spec.md §4.3: one routine family per major decoded group, each taking
// the current decoder context plus a decode.Inst and appending IR ops to
// an ir.Builder.
package emit

import (
	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// BState is the block-state enum of spec.md §3: NONE keeps decoding, STOP
// ends the block for a re-entry side effect, BRANCH means control flow was
// already redirected by the emitter.
type BState int

const (
	StateNone BState = iota
	StateStop
	StateBranch
)

// Context is the per-block decoder context of spec.md §3: created once per
// TB emission, mutated only by the emit package, and discarded when the
// block loop terminates. GotoTB is injected by package tb, which alone
// knows the TB's start page and can decide the chaining policy of
// spec.md §4.4; emit never makes that decision itself.
type Context struct {
	B ir.Builder

	PC     uint64
	NextPC uint64 // PC + instruction length
	MMUIdx int
	XLEN   int
	RVC    bool // C extension enabled: relaxes the 4-byte branch/jump alignment check

	SingleStep bool
	State      BState

	// GotoTB implements spec.md §4.4's chaining policy: chain to n/destPC
	// if single-step is off and destPC lies in the TB's start page,
	// otherwise write destPC to the guest PC and exit without chaining.
	GotoTB func(n int, destPC uint64)
}

// ReadGPR implements the register access contract of spec.md §4.3: reading
// x0 always yields a materialized constant zero, never a real register
// read.
func (c *Context) ReadGPR(n uint32) ir.Temp {
	if n == 0 {
		return c.B.ConstI(c.XLEN, 0)
	}
	return c.B.ReadGuestReg(ir.GPR(int(n)))
}

// WriteGPR implements the other half of the contract: writing to x0 is
// elided entirely, since x0 has no physical storage.
func (c *Context) WriteGPR(n uint32, t ir.Temp) {
	if n == 0 {
		return
	}
	c.B.WriteGuestReg(ir.GPR(int(n)), t)
}

func (c *Context) ReadFPR(n uint32) ir.Temp {
	return c.B.ReadGuestReg(ir.FPR(int(n)))
}

func (c *Context) WriteFPR(n uint32, t ir.Temp) {
	c.B.WriteGuestReg(ir.FPR(int(n)), t)
}

// ExitAt writes pc to the guest PC slot and exits the block without
// chaining, the standard finishing sequence for a STOP instruction that
// isn't itself an exception (FENCE.I, WFI), and for the plain
// fallthrough exits (page crossing, block-size limit) package tb
// applies once the loop decides to stop. Exported so package
// tb can reuse it instead of duplicating the write+exit pair.
func (c *Context) ExitAt(pc uint64) {
	c.B.WriteGuestReg(ir.PCSlot(), c.B.ConstI(c.XLEN, pc))
	c.B.ExitTB()
}

// checkAlign emits an instruction-address-misaligned exception (spec.md
// §7's second error category) when RVC is disabled and target's low two
// bits are nonzero, and reports whether the caller should continue
// emitting the taken path. Returns true if the target is fine to jump to.
func (c *Context) checkAlign(target uint64) bool {
	if c.RVC {
		return true
	}
	if target&0x3 == 0 {
		return true
	}
	c.B.RaiseExceptionBadAddr(riscv.ExcInstrAddrMisaligned, c.PC, target)
	c.State = StateBranch
	return false
}

// checkAlignIndirect is checkAlign's JALR counterpart: the target is only
// known at runtime, so the low-bit test and the misaligned raise are
// themselves emitted as guest IR (spec.md §4.3: "if RVC absent, check low
// bit of target after masking and raise misaligned on failure") rather
// than decided here at translate time. The aligned path falls through to
// WriteGuestPCIndirect; the misaligned path's raise is terminal and never
// rejoins it.
func (c *Context) checkAlignIndirect(target ir.Temp) {
	if c.RVC {
		c.WriteGuestPCIndirect(target)
		return
	}
	lowBit := c.B.BinOp(ir.And, c.XLEN, target, c.B.ConstI(c.XLEN, 0x2))
	ok := c.B.NewLabel()
	c.B.BrCond(ir.CondEq, c.XLEN, lowBit, c.B.ConstI(c.XLEN, 0), ok)
	c.B.RaiseExceptionBadAddrTemp(riscv.ExcInstrAddrMisaligned, c.PC, target)
	c.B.SetLabel(ok)
	c.WriteGuestPCIndirect(target)
}

// syncPC writes the current guest PC to the symbolic PC slot without
// exiting the block. Required before any memory op (spec.md §7) so that a
// fault raised during the access reports the faulting instruction's PC
// rather than whatever the PC slot last held.
func (c *Context) syncPC() {
	c.B.WriteGuestReg(ir.PCSlot(), c.B.ConstI(c.XLEN, c.PC))
}

// requireFP emits the mstatus.FS guard spec.md's floating-point section
// requires of every FP op and FP load/store: read mstatus, mask the FS
// field, and raise Illegal-Instruction when it reads as Off (0). The
// guard is itself runtime state, so this always emits both the check and
// (if the check fails) the raise as guest IR; it cannot be decided at
// translate time the way checkAlign's static branch targets can.
func (c *Context) requireFP() {
	status := c.B.Call("csr_read", c.B.ConstI(c.XLEN, riscv.CSRMstatus))
	fs := c.B.BinOp(ir.And, c.XLEN, status, c.B.ConstI(c.XLEN, riscv.MstatusFS))
	ok := c.B.NewLabel()
	c.B.BrCond(ir.CondNe, c.XLEN, fs, c.B.ConstI(c.XLEN, 0), ok)
	c.B.RaiseException(riscv.ExcIllegalInstruction, c.PC)
	c.B.SetLabel(ok)
}

// RaiseDebugAt writes pc to the guest PC slot and raises a debug
// exception there, the finishing sequence for a debug trap (breakpoint
// match, single-step finalize) rather than a plain exit — package tb
// calls this instead of ExitAt when spec.md §4.4 calls for a debug raise.
func (c *Context) RaiseDebugAt(pc uint64) {
	c.B.WriteGuestReg(ir.PCSlot(), c.B.ConstI(c.XLEN, pc))
	c.B.RaiseDebugException(pc)
}

// Emit dispatches a decoded instruction to its emitter routine. It is the
// single entry point package tb calls into.
func Emit(c *Context, in decode.Inst) {
	switch {
	case in.Op == riscv.OpIllegal:
		c.B.RaiseException(riscv.ExcIllegalInstruction, c.PC)
		c.State = StateStop
	case isArith(in.Op):
		emitArith(c, in)
	case isBranch(in.Op):
		emitBranch(c, in)
	case isJump(in.Op):
		emitJump(c, in)
	case isLoadStore(in.Op):
		emitLoadStore(c, in)
	case isFPLoadStore(in.Op):
		emitFPLoadStore(c, in)
	case isAtomic(in.Op):
		emitAtomic(c, in)
	case isFP(in.Op):
		emitFP(c, in)
	case isSystem(in.Op):
		emitSystem(c, in)
	case in.Op == riscv.OpVSETVLI, in.Op == riscv.OpVSETIVLI, in.Op == riscv.OpVSETVL:
		emitVSetVL(c, in)
	case in.Op == riscv.OpVector:
		emitVectorCall(c, in)
	default:
		c.B.RaiseException(riscv.ExcIllegalInstruction, c.PC)
		c.State = StateStop
	}
}
