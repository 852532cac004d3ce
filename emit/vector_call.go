package emit

import (
	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
	"github.com/lunixbochs/rvtcg/vector"
)

// isImmVOp reports whether a resolved vector.Op reads its non-vs2 operand
// as a 5-bit sign-extended immediate rather than a second vector register.
func isImmVOp(op vector.Op) bool {
	switch op {
	case vector.OpMvVI, vector.OpMergeVIM, vector.OpAdcVIM, vector.OpMAdcVI, vector.OpMAdcVIM:
		return true
	}
	return false
}

// takesOperand reports whether the op consumes a vs1/rs1/imm operand at
// all; vcompress.vm, vid.v, and viota.m don't.
func takesOperand(op vector.Op) bool {
	switch op {
	case vector.OpCompressVM, vector.OpVID, vector.OpVIOTA:
		return false
	}
	return true
}

// emitVectorCall lowers every element-wise RVV instruction to a single
// call into the vector_exec runtime helper (spec.md §4.3's "vector
// helpers" list). The vector register file is a host-side array the
// helper indexes directly, not a bank ir.Builder's GPR/FPR temps model,
// so vd/vs2/vs1 travel as plain index constants; only a genuine scalar
// operand (an x-register value or immediate) is read as a value.
func emitVectorCall(c *Context, in decode.Inst) {
	vop := c.B.ConstI(c.XLEN, uint64(in.VOp))
	vd := c.B.ConstI(c.XLEN, uint64(in.Rd))
	vs2 := c.B.ConstI(c.XLEN, uint64(in.Rs2))

	var operand ir.Temp
	switch {
	case !takesOperand(in.VOp):
		operand = c.B.ConstI(c.XLEN, 0)
	case isImmVOp(in.VOp):
		operand = c.B.ConstI(c.XLEN, uint64(riscv.Sext(uint64(in.Rs1), 5)))
	default:
		// vs1 is a vector register index for the .vv forms; for the
		// .vx-style ops the same Rs1 field is passed as a register index
		// constant, and the helper tells the two apart by in.VOp.
		operand = c.B.ConstI(c.XLEN, uint64(in.Rs1))
	}

	c.B.Call("vector_exec", vop, vd, vs2, operand)
}
