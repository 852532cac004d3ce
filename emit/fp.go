package emit

import (
	"fmt"

	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// fpSuffix names the helper ABI's precision suffix: "s" for single, "d"
// for double, matching riscv.W32/W64.
func fpSuffix(w riscv.Width) string {
	if w == riscv.W64 {
		return "d"
	}
	return "s"
}

func fpBits(w riscv.Width) int {
	if w == riscv.W64 {
		return 64
	}
	return 32
}

func helper(name string, w riscv.Width) string {
	return fmt.Sprintf("fp_%s_%s", name, fpSuffix(w))
}

// emitFP lowers the F/D extension. Every arithmetic, compare, classify,
// and convert form dispatches to a named runtime helper (spec.md §6's
// helper ABI): floating-point rounding and exception flags are not
// something this frontend can express as inline IR. FSGNJ and the FMV
// family are the two exceptions spec.md calls out as pure bit
// manipulation, so those stay inline. All of it, inline or not, guards on
// mstatus.FS first.
func emitFP(c *Context, in decode.Inst) {
	c.requireFP()

	switch in.Op {
	case riscv.OpFSGNJ, riscv.OpFSGNJN, riscv.OpFSGNJX:
		emitFSGNJ(c, in)
		return
	case riscv.OpFMV_X_W:
		c.WriteGPR(in.Rd, c.B.Sext32(c.ReadFPR(in.Rs1)))
		return
	case riscv.OpFMV_W_X:
		c.WriteFPR(in.Rd, c.B.Mov(c.ReadGPR(in.Rs1)))
		return
	case riscv.OpFMV_X_D:
		c.WriteGPR(in.Rd, c.B.Mov(c.ReadFPR(in.Rs1)))
		return
	case riscv.OpFMV_D_X:
		c.WriteFPR(in.Rd, c.B.Mov(c.ReadGPR(in.Rs1)))
		return
	}

	switch in.Op {
	case riscv.OpFADD, riscv.OpFSUB, riscv.OpFMUL, riscv.OpFDIV, riscv.OpFMIN, riscv.OpFMAX:
		name := map[riscv.Op]string{
			riscv.OpFADD: "add", riscv.OpFSUB: "sub", riscv.OpFMUL: "mul",
			riscv.OpFDIV: "div", riscv.OpFMIN: "min", riscv.OpFMAX: "max",
		}[in.Op]
		r := c.B.Call(helper(name, in.Width), c.ReadFPR(in.Rs1), c.ReadFPR(in.Rs2))
		c.WriteFPR(in.Rd, r)
	case riscv.OpFSQRT:
		c.WriteFPR(in.Rd, c.B.Call(helper("sqrt", in.Width), c.ReadFPR(in.Rs1)))
	case riscv.OpFEQ, riscv.OpFLT, riscv.OpFLE:
		name := map[riscv.Op]string{riscv.OpFEQ: "eq", riscv.OpFLT: "lt", riscv.OpFLE: "le"}[in.Op]
		r := c.B.Call(helper(name, in.Width), c.ReadFPR(in.Rs1), c.ReadFPR(in.Rs2))
		c.WriteGPR(in.Rd, r)
	case riscv.OpFCLASS:
		c.WriteGPR(in.Rd, c.B.Call(helper("class", in.Width), c.ReadFPR(in.Rs1)))
	case riscv.OpFCVT_W_F, riscv.OpFCVT_WU_F, riscv.OpFCVT_L_F, riscv.OpFCVT_LU_F:
		name := map[riscv.Op]string{
			riscv.OpFCVT_W_F: "cvt_w", riscv.OpFCVT_WU_F: "cvt_wu",
			riscv.OpFCVT_L_F: "cvt_l", riscv.OpFCVT_LU_F: "cvt_lu",
		}[in.Op]
		rm := c.B.ConstI(c.XLEN, uint64(in.RM))
		r := c.B.Call(helper(name, in.Width), c.ReadFPR(in.Rs1), rm)
		if in.Op == riscv.OpFCVT_W_F || in.Op == riscv.OpFCVT_WU_F {
			r = c.B.Sext32(r)
		}
		c.WriteGPR(in.Rd, r)
	case riscv.OpFCVT_F_W, riscv.OpFCVT_F_WU, riscv.OpFCVT_F_L, riscv.OpFCVT_F_LU:
		name := map[riscv.Op]string{
			riscv.OpFCVT_F_W: "cvt_s_w", riscv.OpFCVT_F_WU: "cvt_s_wu",
			riscv.OpFCVT_F_L: "cvt_s_l", riscv.OpFCVT_F_LU: "cvt_s_lu",
		}[in.Op]
		rm := c.B.ConstI(c.XLEN, uint64(in.RM))
		c.WriteFPR(in.Rd, c.B.Call(helper(name, in.Width), c.ReadGPR(in.Rs1), rm))
	case riscv.OpFCVT_S_D:
		c.WriteFPR(in.Rd, c.B.Call("fp_cvt_s_d", c.ReadFPR(in.Rs1)))
	case riscv.OpFCVT_D_S:
		c.WriteFPR(in.Rd, c.B.Call("fp_cvt_d_s", c.ReadFPR(in.Rs1)))
	case riscv.OpFMADD, riscv.OpFMSUB, riscv.OpFNMSUB, riscv.OpFNMADD:
		name := map[riscv.Op]string{
			riscv.OpFMADD: "madd", riscv.OpFMSUB: "msub",
			riscv.OpFNMSUB: "nmsub", riscv.OpFNMADD: "nmadd",
		}[in.Op]
		r := c.B.Call(helper(name, in.Width), c.ReadFPR(in.Rs1), c.ReadFPR(in.Rs2), c.ReadFPR(in.Rs3))
		c.WriteFPR(in.Rd, r)
	}
}

// emitFSGNJ inlines the sign-injection family as bit manipulation on the
// raw FP bit pattern: no rounding, no exceptions, so no helper call is
// warranted.
func emitFSGNJ(c *Context, in decode.Inst) {
	bits := fpBits(in.Width)
	rs1 := c.ReadFPR(in.Rs1)
	rs2 := c.ReadFPR(in.Rs2)
	signBit := uint64(1) << uint(bits-1)
	signMask := c.B.ConstI(bits, signBit)
	magMask := c.B.ConstI(bits, ^signBit&allOnes(bits))

	mag := c.B.BinOp(ir.And, bits, rs1, magMask)
	var sign ir.Temp
	switch in.Op {
	case riscv.OpFSGNJ:
		sign = c.B.BinOp(ir.And, bits, rs2, signMask)
	case riscv.OpFSGNJN:
		notRs2 := c.B.BinOp(ir.Xor, bits, rs2, c.B.ConstI(bits, allOnes(bits)))
		sign = c.B.BinOp(ir.And, bits, notRs2, signMask)
	case riscv.OpFSGNJX:
		sign = c.B.BinOp(ir.And, bits, c.B.BinOp(ir.Xor, bits, rs1, rs2), signMask)
	}
	c.WriteFPR(in.Rd, c.B.BinOp(ir.Or, bits, mag, sign))
}
