package decode

import (
	"github.com/lunixbochs/rvtcg/riscv"
)

// Decode16 decodes a 16-bit Compressed-extension instruction, dispatching
// on quadrant (bits[1:0]) then funct3, and expanding the result to the
// equivalent 32-bit-style Inst (spec.md §4.2). All-zero (0x0000) and
// quadrant 3 (which means "this is actually a 32-bit instruction") are
// always illegal here; the caller (package tb) is responsible for routing
// by the low two bits before ever calling Decode16.
func Decode16(op uint16, xlen int) Inst {
	in := Inst{Len: 2, Raw: uint32(op)}
	if op == 0 {
		return Inst{Op: riscv.OpIllegal, Len: 2, Raw: 0}
	}
	switch riscv.CQuadrant(op) {
	case 0:
		return decodeC0(op, in)
	case 1:
		return decodeC1(op, in, xlen)
	case 2:
		return decodeC2(op, in, xlen)
	default:
		return Inst{Op: riscv.OpIllegal, Len: 2, Raw: uint32(op)}
	}
}

func illegal16(op uint16) Inst {
	return Inst{Op: riscv.OpIllegal, Len: 2, Raw: uint32(op)}
}

func decodeC0(op uint16, in Inst) Inst {
	rdq := riscv.CRs2Q(op) // rd' of ADDI4SPN/LW/LD is bits[4:2]
	rs2q := riscv.CRs2Q(op)
	switch riscv.CFunct3(op) {
	case 0: // C.ADDI4SPN -> ADDI rd', x2, nzuimm
		nz := riscv.CImmADDI4SPN(op)
		if nz == 0 {
			return illegal16(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpADDI, rdq, riscv.X2, int64(nz)
	case 2: // C.LW -> LW rd', offset(rs1')
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpLW, rdq, riscv.CRdRs1Q(op), int64(riscv.CImmLW(op))
	case 3: // C.LD -> LD rd', offset(rs1')  (RV64/128 only)
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpLD, rdq, riscv.CRdRs1Q(op), int64(riscv.CImmLD(op))
	case 6: // C.SW -> SW rs2', offset(rs1')
		in.Op, in.Rs1, in.Rs2, in.Imm = riscv.OpSW, riscv.CRdRs1Q(op), rs2q, int64(riscv.CImmLW(op))
	case 7: // C.SD -> SD rs2', offset(rs1')
		in.Op, in.Rs1, in.Rs2, in.Imm = riscv.OpSD, riscv.CRdRs1Q(op), rs2q, int64(riscv.CImmLD(op))
	default:
		return illegal16(op)
	}
	return in
}

func decodeC1(op uint16, in Inst, xlen int) Inst {
	rd := riscv.CRdRs1(op)
	switch riscv.CFunct3(op) {
	case 0: // C.ADDI (rd=0 is C.NOP) -> ADDI rd, rd, imm
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpADDI, rd, rd, riscv.CImmI(op)
	case 1: // C.ADDIW (RV64) -> ADDIW rd, rd, imm
		if xlen < 64 || rd == 0 {
			return illegal16(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpADDIW, rd, rd, riscv.CImmI(op)
	case 2: // C.LI -> ADDI rd, x0, imm
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpADDI, rd, riscv.X0, riscv.CImmI(op)
	case 3:
		if rd == 2 {
			// C.ADDI16SP -> ADDI x2, x2, nzimm
			nz := riscv.CImmADDI16SP(op)
			if nz == 0 {
				return illegal16(op)
			}
			in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpADDI, riscv.X2, riscv.X2, nz
		} else {
			// C.LUI -> LUI rd, nzimm
			nz := riscv.CImmLUI(op)
			if nz == 0 || rd == 0 {
				return illegal16(op)
			}
			in.Op, in.Rd, in.Imm = riscv.OpLUIInst, rd, nz
		}
	case 4:
		return decodeC1ArithGroup(op, in, xlen)
	case 5: // C.J -> JAL x0, offset
		in.Op, in.Rd, in.Imm = riscv.OpJAL_, riscv.X0, riscv.CImmJ(op)
	case 6: // C.BEQZ -> BEQ rs1', x0, offset
		in.Op, in.Rs1, in.Rs2, in.Imm = riscv.OpBEQ, riscv.CRdRs1Q(op), riscv.X0, riscv.CImmB(op)
	case 7: // C.BNEZ -> BNE rs1', x0, offset
		in.Op, in.Rs1, in.Rs2, in.Imm = riscv.OpBNE, riscv.CRdRs1Q(op), riscv.X0, riscv.CImmB(op)
	default:
		return illegal16(op)
	}
	return in
}

func decodeC1ArithGroup(op uint16, in Inst, xlen int) Inst {
	rdq := riscv.CRdRs1Q(op)
	switch riscv.CFunct2High(op) {
	case 0: // C.SRLI -> SRLI rd', rd', shamt
		shamt := riscv.CZimm(op)
		if xlen < 64 && riscv.Extract(shamt, 5, 1) != 0 {
			return illegal16(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpSRLI, rdq, rdq, int64(shamt)
	case 1: // C.SRAI -> SRAI rd', rd', shamt
		shamt := riscv.CZimm(op)
		if xlen < 64 && riscv.Extract(shamt, 5, 1) != 0 {
			return illegal16(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpSRAI, rdq, rdq, int64(shamt)
	case 2: // C.ANDI -> ANDI rd', rd', imm
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpANDI, rdq, rdq, riscv.CImmI(op)
	case 3:
		rs2q := riscv.CRs2Q(op)
		isWord := riscv.Extract(uint32(op), 12, 1) != 0
		switch riscv.CFunct2Low(op) {
		case 0:
			in.Op = pickC(isWord, riscv.OpSUB, riscv.OpSUBW)
		case 1:
			if isWord {
				return illegal16(op)
			}
			in.Op = riscv.OpXOR
		case 2:
			if isWord {
				return illegal16(op)
			}
			in.Op = riscv.OpOR
		case 3:
			if isWord {
				if xlen < 64 {
					return illegal16(op)
				}
				in.Op = riscv.OpADDW
			} else {
				in.Op = riscv.OpAND
			}
		}
		in.Rd, in.Rs1, in.Rs2 = rdq, rdq, rs2q
	}
	return in
}

func pickC(isWord bool, base, wForm riscv.Op) riscv.Op {
	if isWord {
		return wForm
	}
	return base
}

func decodeC2(op uint16, in Inst, xlen int) Inst {
	rd := riscv.CRdRs1(op)
	switch riscv.CFunct3(op) {
	case 0: // C.SLLI -> SLLI rd, rd, shamt
		shamt := riscv.CZimm(op)
		if rd == 0 || (xlen < 64 && riscv.Extract(shamt, 5, 1) != 0) {
			return illegal16(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpSLLI, rd, rd, int64(shamt)
	case 2: // C.LWSP -> LW rd, offset(x2)
		if rd == 0 {
			return illegal16(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpLW, rd, riscv.X2, int64(riscv.CImmLWSP(op))
	case 3: // C.LDSP -> LD rd, offset(x2)  (RV64)
		if rd == 0 || xlen < 64 {
			return illegal16(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpLD, rd, riscv.X2, int64(riscv.CImmLDSP(op))
	case 4:
		rs2 := riscv.CRs2(op)
		bit12 := riscv.Extract(uint32(op), 12, 1) != 0
		switch {
		case !bit12 && rs2 == 0:
			// C.JR rd -> JALR x0, rd, 0
			if rd == 0 {
				return illegal16(op)
			}
			in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpJALR_, riscv.X0, rd, 0
		case !bit12 && rs2 != 0:
			// C.MV rd, rs2 -> ADD rd, x0, rs2
			if rd == 0 {
				return illegal16(op)
			}
			in.Op, in.Rd, in.Rs1, in.Rs2 = riscv.OpADD, rd, riscv.X0, rs2
		case bit12 && rd == 0 && rs2 == 0:
			// C.EBREAK
			in.Op = riscv.OpEBREAK
		case bit12 && rs2 == 0:
			// C.JALR rd -> JALR x1, rd, 0
			in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpJALR_, riscv.X1, rd, 0
		default:
			// C.ADD rd, rd, rs2 -> ADD rd, rd, rs2
			if rd == 0 {
				return illegal16(op)
			}
			in.Op, in.Rd, in.Rs1, in.Rs2 = riscv.OpADD, rd, rd, rs2
		}
	case 6: // C.SWSP -> SW rs2, offset(x2)
		in.Op, in.Rs1, in.Rs2, in.Imm = riscv.OpSW, riscv.X2, riscv.CRs2(op), int64(riscv.CImmSWSP(op))
	case 7: // C.SDSP -> SD rs2, offset(x2)  (RV64)
		if xlen < 64 {
			return illegal16(op)
		}
		in.Op, in.Rs1, in.Rs2, in.Imm = riscv.OpSD, riscv.X2, riscv.CRs2(op), int64(riscv.CImmSDSP(op))
	default:
		return illegal16(op)
	}
	return in
}
