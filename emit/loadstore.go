package emit

import (
	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

func loadWidth(op riscv.Op) (bytes int, signed bool) {
	switch op {
	case riscv.OpLB:
		return 1, true
	case riscv.OpLH:
		return 2, true
	case riscv.OpLW:
		return 4, true
	case riscv.OpLD:
		return 8, true
	case riscv.OpLBU:
		return 1, false
	case riscv.OpLHU:
		return 2, false
	case riscv.OpLWU:
		return 4, false
	}
	return 0, false
}

func storeWidth(op riscv.Op) int {
	switch op {
	case riscv.OpSB:
		return 1
	case riscv.OpSH:
		return 2
	case riscv.OpSW:
		return 4
	case riscv.OpSD:
		return 8
	}
	return 0
}

func (c *Context) effectiveAddr(rs1 uint32, imm int64) ir.Temp {
	base := c.ReadGPR(rs1)
	off := c.B.ConstI(c.XLEN, uint64(imm))
	return c.B.BinOp(ir.Add, c.XLEN, base, off)
}

// emitLoadStore lowers the integer load/store forms. The guest PC is
// synced before the memory op so that a fault the engine raises during
// the access reports this instruction's address (spec.md §7).
func emitLoadStore(c *Context, in decode.Inst) {
	addr := c.effectiveAddr(in.Rs1, in.Imm)
	c.syncPC()
	if bytes, signed := loadWidth(in.Op); bytes != 0 {
		c.WriteGPR(in.Rd, c.B.Load(bytes*8, signed, addr, c.MMUIdx))
		return
	}
	if bytes := storeWidth(in.Op); bytes != 0 {
		c.B.Store(bytes*8, addr, c.ReadGPR(in.Rs2), c.MMUIdx)
	}
}

// emitFPLoadStore lowers FLW/FLD/FSW/FSD. Unlike the integer forms these
// have no sign-extension variants; the guest register bank stores the
// value in its native FP width. Guarded by mstatus.FS like every other FP
// op, and syncs the guest PC before the memory op for the same reason
// emitLoadStore does.
func emitFPLoadStore(c *Context, in decode.Inst) {
	c.requireFP()
	addr := c.effectiveAddr(in.Rs1, in.Imm)
	c.syncPC()
	switch in.Op {
	case riscv.OpFLW:
		c.WriteFPR(in.Rd, c.B.Load(32, false, addr, c.MMUIdx))
	case riscv.OpFLD:
		c.WriteFPR(in.Rd, c.B.Load(64, false, addr, c.MMUIdx))
	case riscv.OpFSW:
		c.B.Store(32, addr, c.ReadFPR(in.Rs2), c.MMUIdx)
	case riscv.OpFSD:
		c.B.Store(64, addr, c.ReadFPR(in.Rs2), c.MMUIdx)
	}
}
