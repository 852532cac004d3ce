package decode

import (
	"github.com/lunixbochs/rvtcg/riscv"
)

// Decode32 decodes a 32-bit instruction word, dispatching first on the
// major opcode (bits[6:0]) and then on funct3/funct7/funct12 within each
// group, per spec.md §4.2. xlen selects 32 or 64 to reject RV64-only forms
// on RV32 and vice versa.
func Decode32(op uint32, xlen int) Inst {
	in := Inst{Len: 4, Raw: op}
	rd, rs1, rs2 := riscv.Rd(op), riscv.Rs1(op), riscv.Rs2(op)
	f3 := riscv.Funct3(op)

	switch riscv.Opcode(op) {
	case riscv.OpLUI:
		in.Op, in.Rd, in.Imm = riscv.OpLUIInst, rd, riscv.ImmU(op)
	case riscv.OpAUIPC:
		in.Op, in.Rd, in.Imm = riscv.OpAUIPCInst, rd, riscv.ImmU(op)
	case riscv.OpJAL:
		in.Op, in.Rd, in.Imm = riscv.OpJAL_, rd, riscv.ImmJ(op)
	case riscv.OpJALR:
		if f3 != 0 {
			return illegal(op)
		}
		in.Op, in.Rd, in.Rs1, in.Imm = riscv.OpJALR_, rd, rs1, riscv.ImmI(op)
	case riscv.OpBranch:
		return decodeBranch(op, in, f3, rs1, rs2)
	case riscv.OpLoad:
		return decodeLoad(op, in, f3, rd, rs1, xlen)
	case riscv.OpStore:
		return decodeStore(op, in, f3, rs1, rs2)
	case riscv.OpOpImm:
		return decodeOpImm(op, in, f3, rd, rs1, xlen)
	case riscv.OpOpImm32:
		if xlen < 64 {
			return illegal(op)
		}
		return decodeOpImm32(op, in, f3, rd, rs1)
	case riscv.OpOp:
		return decodeOp(op, in, f3, rd, rs1, rs2)
	case riscv.OpOp32:
		if xlen < 64 {
			return illegal(op)
		}
		return decodeOp32(op, in, f3, rd, rs1, rs2)
	case riscv.OpMiscMem:
		return decodeMiscMem(op, in, f3, rd, rs1)
	case riscv.OpSystem:
		return decodeSystem(op, in, f3, rd, rs1, xlen)
	case riscv.OpAMO:
		return decodeAMO(op, in, f3, rd, rs1, rs2, xlen)
	case riscv.OpLoadFP:
		return decodeLoadFP(op, in, f3, rd, rs1)
	case riscv.OpStoreFP:
		return decodeStoreFP(op, in, f3, rs1, rs2)
	case riscv.OpMAdd, riscv.OpMSub, riscv.OpNMSub, riscv.OpNMAdd:
		return decodeFMA(op, in, rd, rs1, rs2)
	case riscv.OpOpFP:
		return decodeOpFP(op, in, rd, rs1, rs2, xlen)
	case riscv.OpOpV:
		return decodeOpV(op, in, rd, rs1, rs2)
	default:
		return illegal(op)
	}
	return in
}

func illegal(op uint32) Inst {
	return Inst{Op: riscv.OpIllegal, Len: 4, Raw: op}
}

func decodeBranch(op uint32, in Inst, f3, rs1, rs2 uint32) Inst {
	in.Rs1, in.Rs2, in.Imm = rs1, rs2, riscv.ImmB(op)
	switch f3 {
	case 0:
		in.Op = riscv.OpBEQ
	case 1:
		in.Op = riscv.OpBNE
	case 4:
		in.Op = riscv.OpBLT
	case 5:
		in.Op = riscv.OpBGE
	case 6:
		in.Op = riscv.OpBLTU
	case 7:
		in.Op = riscv.OpBGEU
	default:
		return illegal(op)
	}
	return in
}

func decodeLoad(op uint32, in Inst, f3, rd, rs1 uint32, xlen int) Inst {
	in.Rd, in.Rs1, in.Imm = rd, rs1, riscv.ImmI(op)
	switch f3 {
	case 0:
		in.Op = riscv.OpLB
	case 1:
		in.Op = riscv.OpLH
	case 2:
		in.Op = riscv.OpLW
	case 3:
		if xlen < 64 {
			return illegal(op)
		}
		in.Op = riscv.OpLD
	case 4:
		in.Op = riscv.OpLBU
	case 5:
		in.Op = riscv.OpLHU
	case 6:
		if xlen < 64 {
			return illegal(op)
		}
		in.Op = riscv.OpLWU
	default:
		return illegal(op)
	}
	return in
}

func decodeStore(op uint32, in Inst, f3, rs1, rs2 uint32) Inst {
	in.Rs1, in.Rs2, in.Imm = rs1, rs2, riscv.ImmS(op)
	switch f3 {
	case 0:
		in.Op = riscv.OpSB
	case 1:
		in.Op = riscv.OpSH
	case 2:
		in.Op = riscv.OpSW
	case 3:
		in.Op = riscv.OpSD
	default:
		return illegal(op)
	}
	return in
}

func decodeOpImm(op uint32, in Inst, f3, rd, rs1 uint32, xlen int) Inst {
	in.Rd, in.Rs1 = rd, rs1
	shamtBits := uint(5)
	if xlen == 64 {
		shamtBits = 6
	}
	switch f3 {
	case 0:
		in.Op, in.Imm = riscv.OpADDI, riscv.ImmI(op)
	case 2:
		in.Op, in.Imm = riscv.OpSLTI, riscv.ImmI(op)
	case 3:
		in.Op, in.Imm = riscv.OpSLTIU, riscv.ImmI(op)
	case 4:
		in.Op, in.Imm = riscv.OpXORI, riscv.ImmI(op)
	case 6:
		in.Op, in.Imm = riscv.OpORI, riscv.ImmI(op)
	case 7:
		in.Op, in.Imm = riscv.OpANDI, riscv.ImmI(op)
	case 1:
		if riscv.Funct7(op)&^1 != 0 {
			return illegal(op)
		}
		shamt := riscv.Extract(op, 20, shamtBits)
		if riscv.Extract(op, 20+shamtBits, 7-shamtBits) != 0 {
			return illegal(op)
		}
		in.Op, in.Imm = riscv.OpSLLI, int64(shamt)
	case 5:
		top := riscv.Extract(op, 26, 6)
		shamt := riscv.Extract(op, 20, shamtBits)
		if riscv.Extract(op, 20+shamtBits, 7-shamtBits) != 0 {
			return illegal(op)
		}
		switch top {
		case 0:
			in.Op, in.Imm = riscv.OpSRLI, int64(shamt)
		case 0x10:
			in.Op, in.Imm = riscv.OpSRAI, int64(shamt)
		default:
			return illegal(op)
		}
	default:
		return illegal(op)
	}
	return in
}

func decodeOpImm32(op uint32, in Inst, f3, rd, rs1 uint32) Inst {
	in.Rd, in.Rs1 = rd, rs1
	shamt := riscv.Extract(op, 20, 5)
	switch f3 {
	case 0:
		in.Op, in.Imm = riscv.OpADDIW, riscv.ImmI(op)
	case 1:
		if riscv.Funct7(op) != 0 {
			return illegal(op)
		}
		in.Op, in.Imm = riscv.OpSLLIW, int64(shamt)
	case 5:
		switch riscv.Funct7(op) {
		case 0:
			in.Op, in.Imm = riscv.OpSRLIW, int64(shamt)
		case 0x20:
			in.Op, in.Imm = riscv.OpSRAIW, int64(shamt)
		default:
			return illegal(op)
		}
	default:
		return illegal(op)
	}
	return in
}

func decodeOp(op uint32, in Inst, f3, rd, rs1, rs2 uint32) Inst {
	in.Rd, in.Rs1, in.Rs2 = rd, rs1, rs2
	f7 := riscv.Funct7(op)
	if f7 == 1 {
		// M extension
		switch f3 {
		case 0:
			in.Op = riscv.OpMUL
		case 1:
			in.Op = riscv.OpMULH
		case 2:
			in.Op = riscv.OpMULHSU
		case 3:
			in.Op = riscv.OpMULHU
		case 4:
			in.Op = riscv.OpDIV
		case 5:
			in.Op = riscv.OpDIVU
		case 6:
			in.Op = riscv.OpREM
		case 7:
			in.Op = riscv.OpREMU
		}
		return in
	}
	switch f3 {
	case 0:
		if f7 == 0 {
			in.Op = riscv.OpADD
		} else if f7 == 0x20 {
			in.Op = riscv.OpSUB
		} else {
			return illegal(op)
		}
	case 1:
		if f7 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpSLL
	case 2:
		if f7 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpSLT
	case 3:
		if f7 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpSLTU
	case 4:
		if f7 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpXOR
	case 5:
		if f7 == 0 {
			in.Op = riscv.OpSRL
		} else if f7 == 0x20 {
			in.Op = riscv.OpSRA
		} else {
			return illegal(op)
		}
	case 6:
		if f7 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpOR
	case 7:
		if f7 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpAND
	}
	return in
}

func decodeOp32(op uint32, in Inst, f3, rd, rs1, rs2 uint32) Inst {
	in.Rd, in.Rs1, in.Rs2 = rd, rs1, rs2
	f7 := riscv.Funct7(op)
	if f7 == 1 {
		switch f3 {
		case 0:
			in.Op = riscv.OpMULW
		case 4:
			in.Op = riscv.OpDIVW
		case 5:
			in.Op = riscv.OpDIVUW
		case 6:
			in.Op = riscv.OpREMW
		case 7:
			in.Op = riscv.OpREMUW
		default:
			return illegal(op)
		}
		return in
	}
	switch f3 {
	case 0:
		if f7 == 0 {
			in.Op = riscv.OpADDW
		} else if f7 == 0x20 {
			in.Op = riscv.OpSUBW
		} else {
			return illegal(op)
		}
	case 1:
		if f7 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpSLLW
	case 5:
		if f7 == 0 {
			in.Op = riscv.OpSRLW
		} else if f7 == 0x20 {
			in.Op = riscv.OpSRAW
		} else {
			return illegal(op)
		}
	default:
		return illegal(op)
	}
	return in
}

func decodeMiscMem(op uint32, in Inst, f3, rd, rs1 uint32) Inst {
	switch f3 {
	case 0:
		in.Op = riscv.OpFENCE
		in.Pred = riscv.Extract(op, 24, 4)
		in.Succ = riscv.Extract(op, 20, 4)
	case 1:
		if rd != 0 || rs1 != 0 || riscv.Extract(op, 20, 12) != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpFENCE_I
	default:
		return illegal(op)
	}
	return in
}

func decodeSystem(op uint32, in Inst, f3, rd, rs1 uint32, xlen int) Inst {
	if f3 == 0 {
		f12 := riscv.Funct12(op)
		switch {
		case f12 == 0 && rd == 0 && rs1 == 0:
			in.Op = riscv.OpECALL
		case f12 == 1 && rd == 0 && rs1 == 0:
			in.Op = riscv.OpEBREAK
		case f12 == 0x102 && rd == 0 && rs1 == 0:
			in.Op = riscv.OpSRET
		case f12 == 0x302 && rd == 0 && rs1 == 0:
			in.Op = riscv.OpMRET
		case f12 == 0x105 && rd == 0 && rs1 == 0:
			in.Op = riscv.OpWFI
		case riscv.Funct7(op) == 0x09:
			in.Op, in.Rs1, in.Rs2 = riscv.OpSFENCE_VMA, rs1, riscv.Rs2(op)
		default:
			return illegal(op)
		}
		return in
	}
	in.Rd, in.CSR = rd, riscv.Funct12(op)
	switch f3 {
	case 1:
		in.Op, in.Rs1 = riscv.OpCSRRW, rs1
	case 2:
		in.Op, in.Rs1 = riscv.OpCSRRS, rs1
	case 3:
		in.Op, in.Rs1 = riscv.OpCSRRC, rs1
	case 5:
		in.Op, in.Rs1 = riscv.OpCSRRWI, rs1
	case 6:
		in.Op, in.Rs1 = riscv.OpCSRRSI, rs1
	case 7:
		in.Op, in.Rs1 = riscv.OpCSRRCI, rs1
	default:
		return illegal(op)
	}
	return in
}

func decodeAMO(op uint32, in Inst, f3, rd, rs1, rs2 uint32, xlen int) Inst {
	width := f3
	if width != 2 && width != 3 {
		return illegal(op)
	}
	if width == 3 && xlen < 64 {
		return illegal(op)
	}
	in.Rd, in.Rs1, in.Rs2 = rd, rs1, rs2
	in.Rl = riscv.Extract(op, 25, 1) != 0
	in.Aq = riscv.Extract(op, 26, 1) != 0
	funct5 := riscv.Extract(op, 27, 5)
	is64 := width == 3
	switch funct5 {
	case 0x02:
		if rs2 != 0 {
			return illegal(op)
		}
		in.Op = pick(is64, riscv.OpLR_W, riscv.OpLR_D)
	case 0x03:
		in.Op = pick(is64, riscv.OpSC_W, riscv.OpSC_D)
	case 0x01:
		in.Op = pick(is64, riscv.OpAMOSWAP_W, riscv.OpAMOSWAP_D)
	case 0x00:
		in.Op = pick(is64, riscv.OpAMOADD_W, riscv.OpAMOADD_D)
	case 0x04:
		in.Op = pick(is64, riscv.OpAMOXOR_W, riscv.OpAMOXOR_D)
	case 0x0c:
		in.Op = pick(is64, riscv.OpAMOAND_W, riscv.OpAMOAND_D)
	case 0x08:
		in.Op = pick(is64, riscv.OpAMOOR_W, riscv.OpAMOOR_D)
	case 0x10:
		in.Op = pick(is64, riscv.OpAMOMIN_W, riscv.OpAMOMIN_D)
	case 0x14:
		in.Op = pick(is64, riscv.OpAMOMAX_W, riscv.OpAMOMAX_D)
	case 0x18:
		in.Op = pick(is64, riscv.OpAMOMINU_W, riscv.OpAMOMINU_D)
	case 0x1c:
		in.Op = pick(is64, riscv.OpAMOMAXU_W, riscv.OpAMOMAXU_D)
	default:
		return illegal(op)
	}
	return in
}

func pick(is64 bool, w, d riscv.Op) riscv.Op {
	if is64 {
		return d
	}
	return w
}

func decodeLoadFP(op uint32, in Inst, f3, rd, rs1 uint32) Inst {
	in.Rd, in.Rs1, in.Imm = rd, rs1, riscv.ImmI(op)
	switch f3 {
	case 2:
		in.Op, in.Width = riscv.OpFLW, riscv.W32
	case 3:
		in.Op, in.Width = riscv.OpFLD, riscv.W64
	default:
		return illegal(op)
	}
	return in
}

func decodeStoreFP(op uint32, in Inst, f3, rs1, rs2 uint32) Inst {
	in.Rs1, in.Rs2, in.Imm = rs1, rs2, riscv.ImmS(op)
	switch f3 {
	case 2:
		in.Op, in.Width = riscv.OpFSW, riscv.W32
	case 3:
		in.Op, in.Width = riscv.OpFSD, riscv.W64
	default:
		return illegal(op)
	}
	return in
}

func decodeFMA(op uint32, in Inst, rd, rs1, rs2 uint32) Inst {
	in.Rd, in.Rs1, in.Rs2, in.Rs3 = rd, rs1, rs2, riscv.Rs3(op)
	in.RM = riscv.RM(op)
	fmt := riscv.Funct2(op)
	if fmt != 0 && fmt != 1 {
		return illegal(op)
	}
	in.Width = pickWidth(fmt == 1)
	switch riscv.Opcode(op) {
	case riscv.OpMAdd:
		in.Op = riscv.OpFMADD
	case riscv.OpMSub:
		in.Op = riscv.OpFMSUB
	case riscv.OpNMSub:
		in.Op = riscv.OpFNMSUB
	case riscv.OpNMAdd:
		in.Op = riscv.OpFNMADD
	}
	return in
}

func pickWidth(isDouble bool) riscv.Width {
	if isDouble {
		return riscv.W64
	}
	return riscv.W32
}

func decodeOpFP(op uint32, in Inst, rd, rs1, rs2 uint32, xlen int) Inst {
	in.Rd, in.Rs1, in.Rs2, in.RM = rd, rs1, rs2, riscv.RM(op)
	f7 := riscv.Funct7(op)
	fmtBit := f7 & 1
	in.Width = pickWidth(fmtBit == 1)
	group := f7 >> 2
	switch group {
	case 0: // FADD
		in.Op = riscv.OpFADD
	case 1: // FSUB
		in.Op = riscv.OpFSUB
	case 2: // FMUL
		in.Op = riscv.OpFMUL
	case 3: // FDIV
		in.Op = riscv.OpFDIV
	case 5: // FSGNJ / FSGNJN / FSGNJX
		switch riscv.Funct3(op) {
		case 0:
			in.Op = riscv.OpFSGNJ
		case 1:
			in.Op = riscv.OpFSGNJN
		case 2:
			in.Op = riscv.OpFSGNJX
		default:
			return illegal(op)
		}
	case 6: // FMIN / FMAX
		switch riscv.Funct3(op) {
		case 0:
			in.Op = riscv.OpFMIN
		case 1:
			in.Op = riscv.OpFMAX
		default:
			return illegal(op)
		}
	case 11:
		if rs2 != 0 {
			return illegal(op)
		}
		in.Op = riscv.OpFSQRT
	case 20: // FEQ/FLT/FLE
		switch riscv.Funct3(op) {
		case 0:
			in.Op = riscv.OpFLE
		case 1:
			in.Op = riscv.OpFLT
		case 2:
			in.Op = riscv.OpFEQ
		default:
			return illegal(op)
		}
	case 24: // FCVT.{W,WU,L,LU}.{S,D}
		switch rs2 {
		case 0:
			in.Op = riscv.OpFCVT_W_F
		case 1:
			in.Op = riscv.OpFCVT_WU_F
		case 2:
			if xlen < 64 {
				return illegal(op)
			}
			in.Op = riscv.OpFCVT_L_F
		case 3:
			if xlen < 64 {
				return illegal(op)
			}
			in.Op = riscv.OpFCVT_LU_F
		default:
			return illegal(op)
		}
	case 26: // FCVT.{S,D}.{W,WU,L,LU}
		switch rs2 {
		case 0:
			in.Op = riscv.OpFCVT_F_W
		case 1:
			in.Op = riscv.OpFCVT_F_WU
		case 2:
			if xlen < 64 {
				return illegal(op)
			}
			in.Op = riscv.OpFCVT_F_L
		case 3:
			if xlen < 64 {
				return illegal(op)
			}
			in.Op = riscv.OpFCVT_F_LU
		default:
			return illegal(op)
		}
	case 8: // FCVT.S.D / FCVT.D.S
		if rs2 == 1 && fmtBit == 0 {
			in.Op, in.Width = riscv.OpFCVT_S_D, riscv.W32
		} else if rs2 == 0 && fmtBit == 1 {
			in.Op, in.Width = riscv.OpFCVT_D_S, riscv.W64
		} else {
			return illegal(op)
		}
	case 28: // FMV.X.W/D, FCLASS
		switch riscv.Funct3(op) {
		case 0:
			in.Op = pickFmv(fmtBit == 1, riscv.OpFMV_X_W, riscv.OpFMV_X_D)
		case 1:
			in.Op = riscv.OpFCLASS
		default:
			return illegal(op)
		}
	case 30: // FMV.W.X/D.X
		in.Op = pickFmv(fmtBit == 1, riscv.OpFMV_W_X, riscv.OpFMV_D_X)
	default:
		return illegal(op)
	}
	return in
}

func pickFmv(isD bool, w, d riscv.Op) riscv.Op {
	if isD {
		return d
	}
	return w
}
