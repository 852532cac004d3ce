package emit

import (
	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

func amoBits(op riscv.Op) int {
	switch op {
	case riscv.OpLR_W, riscv.OpSC_W,
		riscv.OpAMOSWAP_W, riscv.OpAMOADD_W, riscv.OpAMOXOR_W, riscv.OpAMOAND_W, riscv.OpAMOOR_W,
		riscv.OpAMOMIN_W, riscv.OpAMOMAX_W, riscv.OpAMOMINU_W, riscv.OpAMOMAXU_W:
		return 32
	default:
		return 64
	}
}

// emitAtomic lowers the A extension. Per spec.md's non-atomic AMO
// simplification, every read-modify-write here is a plain load followed
// by a plain store with no host-side exclusivity: correct for a
// single-threaded guest, unsound for real concurrent access. LR records
// its address in the LoadRes guest slot; SC does not check it, and always
// stores and writes 0 (success) to rd. The guest PC is synced before the first
// memory access for the same fault-address reason emitLoadStore syncs it
// (spec.md §7): every AMO/LR/SC here is still a memory op.
func emitAtomic(c *Context, in decode.Inst) {
	bits := amoBits(in.Op)
	addr := c.ReadGPR(in.Rs1)
	c.syncPC()

	switch in.Op {
	case riscv.OpLR_W, riscv.OpLR_D:
		val := c.B.Load(bits, true, addr, c.MMUIdx)
		c.WriteGPR(in.Rd, val)
		c.B.WriteGuestReg(ir.LoadResSlot(), addr)
		return
	case riscv.OpSC_W, riscv.OpSC_D:
		c.B.Store(bits, addr, c.ReadGPR(in.Rs2), c.MMUIdx)
		c.WriteGPR(in.Rd, c.B.ConstI(c.XLEN, 0)) // always success
		return
	}

	old := c.B.Load(bits, true, addr, c.MMUIdx)
	rs2 := c.ReadGPR(in.Rs2)
	c.WriteGPR(in.Rd, old)

	switch in.Op {
	case riscv.OpAMOSWAP_W, riscv.OpAMOSWAP_D:
		c.B.Store(bits, addr, rs2, c.MMUIdx)
	case riscv.OpAMOADD_W, riscv.OpAMOADD_D:
		c.B.Store(bits, addr, c.B.BinOp(ir.Add, bits, old, rs2), c.MMUIdx)
	case riscv.OpAMOXOR_W, riscv.OpAMOXOR_D:
		c.B.Store(bits, addr, c.B.BinOp(ir.Xor, bits, old, rs2), c.MMUIdx)
	case riscv.OpAMOAND_W, riscv.OpAMOAND_D:
		c.B.Store(bits, addr, c.B.BinOp(ir.And, bits, old, rs2), c.MMUIdx)
	case riscv.OpAMOOR_W, riscv.OpAMOOR_D:
		c.B.Store(bits, addr, c.B.BinOp(ir.Or, bits, old, rs2), c.MMUIdx)
	case riscv.OpAMOMIN_W, riscv.OpAMOMIN_D:
		storeMinMax(c, bits, addr, old, rs2, ir.CondLtS)
	case riscv.OpAMOMAX_W, riscv.OpAMOMAX_D:
		storeMinMax(c, bits, addr, old, rs2, ir.CondGeS)
	case riscv.OpAMOMINU_W, riscv.OpAMOMINU_D:
		storeMinMax(c, bits, addr, old, rs2, ir.CondLtU)
	case riscv.OpAMOMAXU_W, riscv.OpAMOMAXU_D:
		storeMinMax(c, bits, addr, old, rs2, ir.CondGeU)
	}
}

// storeMinMax stores whichever of old/rs2 wins cond(old,rs2) back to addr.
// Each arm performs its own Store rather than trying to merge a Temp
// across the branch, since Builder's temps are single-assignment values,
// not mutable slots a later Mov could redirect.
func storeMinMax(c *Context, width int, addr, old, rs2 ir.Temp, cond ir.Cond) {
	pickOld := c.B.NewLabel()
	done := c.B.NewLabel()
	c.B.BrCond(cond, width, old, rs2, pickOld)
	c.B.Store(width, addr, rs2, c.MMUIdx)
	c.B.Br(done)
	c.B.SetLabel(pickOld)
	c.B.Store(width, addr, old, c.MMUIdx)
	c.B.Br(done)
	c.B.SetLabel(done)
}
