// Package ir defines the capability interface the decoder/emitter pipeline
// targets, plus a recording reference implementation used by tests and the
// CLI's dump mode. The real code generator that a production backend would
// plug in here is out of scope (spec.md §1); this package only specifies
// the seam, the way go/models/cpu.Cpu specifies the minimum surface the
// teacher requires of any concrete CPU emulator without caring which one
// backs it.
package ir

// Temp is an opaque handle to a host-side temporary value. The builder
// assigns these; callers never inspect their internals.
type Temp int

// Label is an opaque handle to a branch target within the current
// translation block.
type Label int

// RegSlot names a symbolic guest register or PC/reservation slot that
// ReadGuestReg/WriteGuestReg address. Kept distinct from a bare int so a
// Builder implementation can range-check it.
type RegSlot struct {
	Bank Bank
	Idx  int
}

type Bank int

const (
	BankGPR Bank = iota
	BankFPR
	BankPC
	BankLoadRes
)

func GPR(n int) RegSlot     { return RegSlot{BankGPR, n} }
func FPR(n int) RegSlot     { return RegSlot{BankFPR, n} }
func PCSlot() RegSlot       { return RegSlot{Bank: BankPC} }
func LoadResSlot() RegSlot  { return RegSlot{Bank: BankLoadRes} }

// BinOp enumerates the binary ALU primitives spec.md §4.3 requires the
// builder to expose.
type BinOp int

const (
	Add BinOp = iota
	Sub
	And
	Or
	Xor
	Shl
	Shr  // logical (unsigned) right shift
	Sar  // arithmetic (signed) right shift
	MulL // low-word multiply
	MulHS
	MulHU
	DivS
	DivU
	RemS
	RemU
	SetLtS // signed compare-set: 1 if a < b else 0
	SetLtU
	SetEq
)

// Cond enumerates the comparison predicates BrCond supports.
type Cond int

const (
	CondEq Cond = iota
	CondNe
	CondLtS
	CondGeS
	CondLtU
	CondGeU
)

// Builder is the opaque IR-emission capability the decoder/emitter
// pipeline is written against (spec.md §6's "IR-builder" external
// interface). A real backend lowers each call directly to host
// instructions or a further IR; ir.Recorder below lowers each call to a
// log entry for testing.
type Builder interface {
	// ConstI materializes an immediate into a fresh temp of the given
	// bit width (32 or 64).
	ConstI(width int, val uint64) Temp

	// Mov copies src's value and returns the temp that now holds it
	// (implementations may return a fresh temp); emitters treat Mov as a
	// value-producing op the way the other primitives are.
	Mov(src Temp) Temp

	// BinOp applies op to a,b at the given width and returns the result
	// temp.
	BinOp(op BinOp, width int, a, b Temp) Temp

	// Sext32 sign-extends the low 32 bits of t to 64 bits, used by the
	// RV64 "W" instruction forms.
	Sext32(t Temp) Temp

	// Load emits a guest memory load of `width` bits (8/16/32/64) at addr
	// through mmuIdx, sign- or zero-extending per `signed`.
	Load(width int, signed bool, addr Temp, mmuIdx int) Temp

	// Store emits a guest memory store of `width` bits at addr through
	// mmuIdx.
	Store(width int, addr, val Temp, mmuIdx int)

	// ReadGuestReg/WriteGuestReg access the symbolic register file. The
	// x0-is-always-zero and write-to-x0-is-a-no-op contract lives in
	// package emit, not here: Builder implementations perform the raw
	// access unconditionally.
	ReadGuestReg(slot RegSlot) Temp
	WriteGuestReg(slot RegSlot, t Temp)

	NewLabel() Label
	SetLabel(l Label)
	BrCond(cond Cond, width int, a, b Temp, target Label)
	Br(target Label)

	// GotoTB emits the direct-chain terminator: exit slot n of this TB,
	// chaining to the translation whose guest PC is destPC when the
	// backend later discovers (or already knows) it lies in the same
	// page. The page-membership decision itself is made by package tb
	// before calling this, per spec.md §4.4's chaining policy — GotoTB
	// is only ever called once that decision has already resolved to
	// "chain".
	GotoTB(n int, destPC uint64)

	// ExitTB unconditionally returns control to the execution engine
	// without chaining; the guest PC must already have been written via
	// WriteGuestReg(PCSlot(), ...) before this is called.
	ExitTB()

	// Call invokes a named helper (spec.md §6's helper ABI: guest CPU
	// state pointer is implicit/first, these are the "subsequent
	// arguments") and returns its result temp; ir.Recorder allocates one
	// for every call, whether or not the helper produces a value.
	Call(helper string, args ...Temp) Temp

	// RaiseException/RaiseExceptionBadAddr/RaiseDebugException emit the
	// three exception-raise helper shapes spec.md §6 requires to exist.
	RaiseException(code uint32, pc uint64)
	RaiseExceptionBadAddr(code uint32, pc, badAddr uint64)
	RaiseDebugException(pc uint64)

	// RaiseExceptionBadAddrTemp is RaiseExceptionBadAddr's variant for a
	// bad address that is only known at runtime (e.g. JALR's data-
	// dependent target), rather than one the translator can compute at
	// translate time.
	RaiseExceptionBadAddrTemp(code uint32, pc uint64, badAddr Temp)

	// TempLeakOK reports whether the builder's temp allocator balanced
	// to zero outstanding temps since the last check — the host
	// invariant spec.md §4.4 step 5 requires the TB builder to consult
	// after every emitted instruction.
	TempLeakOK() bool
}
