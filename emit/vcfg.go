package emit

import (
	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// AVL selection modes passed to the vsetvl helper, matching the RVV
// AVL-encoding table spec.md §4.3 describes: normal register/immediate
// AVL, "keep current vl if legal" (rd=x0, rs1=x0), and "request vlmax"
// (rd!=x0, rs1=x0). Exported so package tb's search-PC re-pass can
// classify a vset* instruction's AVL the same way the emitter does,
// rather than re-deriving the rd/rs1 rules independently.
const (
	AVLModeNormal  = 0
	AVLModeKeepVL  = 1
	AVLModeRequest = 2
)

// AVLMode classifies a vsetvl/vsetvli's rd/rs1 pair per the AVL-encoding
// table.
func AVLMode(rd, rs1 uint32) uint64 {
	switch {
	case rd == 0 && rs1 == 0:
		return AVLModeKeepVL
	case rs1 == 0:
		return AVLModeRequest
	default:
		return AVLModeNormal
	}
}

// emitVSetVL lowers all three vsetvl encodings. For the two forms whose
// vtype is a compile-time immediate (vsetvli, vsetivli) the vill check of
// spec.md §"vill detection" runs here, at translate time, raising an
// illegal-instruction exception directly instead of deferring it to the
// runtime helper; only the register-vtype vsetvl form defers vill
// detection to the vsetvl helper, since its vtype isn't known until the
// block actually runs.
func emitVSetVL(c *Context, in decode.Inst) {
	switch in.Op {
	case riscv.OpVSETVLI, riscv.OpVSETIVLI:
		vt := riscv.DecodeVType(uint64(in.CSR), riscv.ELEN)
		if vt.VILL {
			c.B.RaiseException(riscv.ExcIllegalInstruction, c.PC)
			c.State = StateStop
			return
		}
		vtypeConst := c.B.ConstI(c.XLEN, riscv.EncodeVType(vt, c.XLEN))

		var avl ir.Temp
		mode := uint64(AVLModeNormal)
		if in.Op == riscv.OpVSETIVLI {
			avl = c.B.ConstI(c.XLEN, uint64(in.Rs1))
		} else {
			mode = AVLMode(in.Rd, in.Rs1)
			if mode == AVLModeNormal {
				avl = c.ReadGPR(in.Rs1)
			} else {
				avl = c.B.ConstI(c.XLEN, 0)
			}
		}
		result := c.B.Call("vsetvl", avl, vtypeConst, c.B.ConstI(c.XLEN, mode))
		c.WriteGPR(in.Rd, result)

	case riscv.OpVSETVL:
		vtypeRaw := c.ReadGPR(in.Rs2)
		mode := AVLMode(in.Rd, in.Rs1)
		var avl ir.Temp
		if mode == AVLModeNormal {
			avl = c.ReadGPR(in.Rs1)
		} else {
			avl = c.B.ConstI(c.XLEN, 0)
		}
		result := c.B.Call("vsetvl", avl, vtypeRaw, c.B.ConstI(c.XLEN, mode))
		c.WriteGPR(in.Rd, result)
	}
}
