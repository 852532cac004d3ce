package emit

import (
	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

func branchCond(op riscv.Op) ir.Cond {
	switch op {
	case riscv.OpBEQ:
		return ir.CondEq
	case riscv.OpBNE:
		return ir.CondNe
	case riscv.OpBLT:
		return ir.CondLtS
	case riscv.OpBGE:
		return ir.CondGeS
	case riscv.OpBLTU:
		return ir.CondLtU
	default: // OpBGEU
		return ir.CondGeU
	}
}

// emitBranch lowers a conditional branch to a two-way goto_tb pair
// (spec.md §4.3): slot 1 is the not-taken fallthrough (`goto_tb(1, pc +
// instr_len)`), slot 0 is the taken target (`goto_tb(0, pc + bimm)`). The
// fallthrough is always aligned, so only the taken target needs the
// misaligned-instruction-address check.
func emitBranch(c *Context, in decode.Inst) {
	rs1 := c.ReadGPR(in.Rs1)
	rs2 := c.ReadGPR(in.Rs2)

	taken := c.B.NewLabel()
	c.B.BrCond(branchCond(in.Op), c.XLEN, rs1, rs2, taken)
	c.GotoTB(1, c.NextPC)

	c.B.SetLabel(taken)
	target := c.PC + uint64(in.Imm)
	if c.checkAlign(target) {
		c.GotoTB(0, target)
	}
	c.State = StateBranch
}

// emitJump lowers JAL/JALR. JAL writes the link register unconditionally
// and exits via a single goto_tb slot. JALR must read rs1 and compute its
// target before writing the link register: rd and rs1 may be the same
// register (e.g. `jalr x1, x1, 0`), and writing rd first would make the
// subsequent rs1 read observe the just-written link value instead of the
// original base.
func emitJump(c *Context, in decode.Inst) {
	if in.Op == riscv.OpJAL_ {
		link := c.B.ConstI(c.XLEN, c.NextPC)
		c.WriteGPR(in.Rd, link)

		target := c.PC + uint64(in.Imm)
		if c.checkAlign(target) {
			c.GotoTB(0, target)
		}
		c.State = StateBranch
		return
	}

	rs1 := c.ReadGPR(in.Rs1)
	offset := c.B.ConstI(c.XLEN, uint64(in.Imm))
	addr := c.B.BinOp(ir.Add, c.XLEN, rs1, offset)
	mask := c.B.ConstI(c.XLEN, ^uint64(1))
	target := c.B.BinOp(ir.And, c.XLEN, addr, mask)

	link := c.B.ConstI(c.XLEN, c.NextPC)
	c.WriteGPR(in.Rd, link)

	c.checkAlignIndirect(target)
	c.State = StateBranch
}

// WriteGuestPCIndirect writes an already-validated target to the guest PC
// and exits without chaining (spec.md §4.4: indirect jumps never chain,
// since the target isn't known until runtime). checkAlignIndirect calls
// this on the aligned path; callers with a translate-time-known target
// should go through checkAlign + GotoTB instead.
func (c *Context) WriteGuestPCIndirect(target ir.Temp) {
	c.B.WriteGuestReg(ir.PCSlot(), target)
	c.B.ExitTB()
}
