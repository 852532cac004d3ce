package emit

import (
	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// emitSystem lowers FENCE, ECALL/EBREAK, the six CSR forms, and the
// privileged SRET/MRET/WFI/SFENCE.VMA instructions. CSR access always
// goes through the csr_read/csr_write helpers (spec.md §6): a real
// backend's CSR file has side effects (mstatus, mip, counters) this
// frontend has no business modeling directly.
func emitSystem(c *Context, in decode.Inst) {
	switch in.Op {
	case riscv.OpFENCE:
		c.B.Call("fence")
	case riscv.OpFENCE_I:
		c.B.Call("fence_i")
		c.ExitAt(c.NextPC)
		c.State = StateStop
	case riscv.OpECALL:
		c.B.RaiseException(riscv.ExcECallM, c.PC)
		c.State = StateStop
	case riscv.OpEBREAK:
		c.B.RaiseDebugException(c.PC)
		c.State = StateStop
	case riscv.OpCSRRW, riscv.OpCSRRWI:
		emitCSRW(c, in)
		c.terminateAfterCSR()
	case riscv.OpCSRRS, riscv.OpCSRRSI:
		emitCSRSC(c, in, ir.Or)
		c.terminateAfterCSR()
	case riscv.OpCSRRC, riscv.OpCSRRCI:
		emitCSRSC(c, in, ir.And)
		c.terminateAfterCSR()
	case riscv.OpSRET:
		c.B.Call("sret")
		c.B.ExitTB()
		c.State = StateBranch
	case riscv.OpMRET:
		c.B.Call("mret")
		c.B.ExitTB()
		c.State = StateBranch
	case riscv.OpWFI:
		c.B.Call("wfi")
		c.ExitAt(c.NextPC)
		c.State = StateStop
	case riscv.OpSFENCE_VMA:
		c.B.Call("sfence_vma", c.ReadGPR(in.Rs1), c.ReadGPR(in.Rs2))
	}
}

// terminateAfterCSR ends the TB after any CSR read-modify-write, per
// spec.md §4.3: a CSR write may change privilege or memory mapping in a
// way that affects how subsequent instructions in this block should have
// been decoded, so the block cannot simply continue.
func (c *Context) terminateAfterCSR() {
	c.ExitAt(c.NextPC)
	c.State = StateBranch
}

func (c *Context) csrSource(in decode.Inst) ir.Temp {
	switch in.Op {
	case riscv.OpCSRRWI, riscv.OpCSRRSI, riscv.OpCSRRCI:
		return c.B.ConstI(c.XLEN, uint64(in.Rs1)) // Rs1 holds the 5-bit zimm
	default:
		return c.ReadGPR(in.Rs1)
	}
}

func isImmForm(op riscv.Op) bool {
	return op == riscv.OpCSRRWI || op == riscv.OpCSRRSI || op == riscv.OpCSRRCI
}

// emitCSRW lowers CSRRW/CSRRWI: the read is skipped entirely when rd is
// x0, since an unread CSR with side effects (e.g. a FIFO-backed CSR) must
// not be touched.
func emitCSRW(c *Context, in decode.Inst) {
	csr := c.B.ConstI(c.XLEN, uint64(in.CSR))
	src := c.csrSource(in)
	if in.Rd != 0 {
		old := c.B.Call("csr_read", csr)
		c.WriteGPR(in.Rd, old)
	}
	c.B.Call("csr_write", csr, src)
}

// emitCSRSC lowers CSRRS/CSRRC/CSRRSI/CSRRCI: the write is skipped when
// the source operand is x0 (or a zero immediate), matching the RISC-V
// spec's "shall not cause any side effects" carve-out for that case.
func emitCSRSC(c *Context, in decode.Inst, combine ir.BinOp) {
	csr := c.B.ConstI(c.XLEN, uint64(in.CSR))
	old := c.B.Call("csr_read", csr)
	c.WriteGPR(in.Rd, old)

	skip := in.Rs1 == 0
	if skip {
		return
	}
	src := c.csrSource(in)
	var bits ir.Temp
	if combine == ir.And {
		notSrc := c.B.BinOp(ir.Xor, c.XLEN, src, c.B.ConstI(c.XLEN, allOnes(c.XLEN)))
		bits = c.B.BinOp(ir.And, c.XLEN, old, notSrc)
	} else {
		bits = c.B.BinOp(ir.Or, c.XLEN, old, src)
	}
	c.B.Call("csr_write", csr, bits)
}
