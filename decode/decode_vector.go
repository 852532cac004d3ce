package decode

import (
	"github.com/lunixbochs/rvtcg/riscv"
	"github.com/lunixbochs/rvtcg/vector"
)

// OP-V funct3 sub-selectors (RVV v1.0 chapter 11): which operand class
// feeds vs1/rs1.
const (
	opivv = 0
	opfvv = 1
	opmvv = 2
	opivi = 3
	opivx = 4
	opfvf = 5
	opmvx = 6
	opcfg = 7
)

// funct6 values for the element-wise ops this frontend resolves into
// package vector helpers (spec.md §4.3's "vector helpers" list). vadc/vsbc
// only exist in the masked (...vm) form so bit 25 (vm) must be 0 for them;
// vmadc/vmsbc encode "with carry-in" vs "overflow of an unsigned add" via
// the same bit.
const (
	funct6MvMerge  = 0x17
	funct6Adc      = 0x20
	funct6Madc     = 0x21
	funct6Sbc      = 0x22
	funct6Msbc     = 0x23
	funct6Compress = 0x2e
	funct6ViotaVid = 0x2a
)

func decodeOpV(op uint32, in Inst, vd, rs1OrVs1, vs2 uint32) Inst {
	f3 := riscv.Funct3(op)
	if f3 == opcfg {
		return decodeVSetVL(op, in, vd, rs1OrVs1, vs2)
	}

	funct6 := riscv.Extract(op, 26, 6)
	vm := riscv.Extract(op, 25, 1) != 0
	in.Op = riscv.OpVector
	in.Rd = vd
	in.Rs2 = vs2
	in.Rs1 = rs1OrVs1 // vs1 index, or a 5-bit immediate/x-register per f3

	switch funct6 {
	case funct6MvMerge:
		isImm := f3 == opivi
		if vm {
			if isImm {
				in.VOp = vector.OpMvVI
			} else {
				in.VOp = vector.OpMvVV
			}
		} else {
			if isImm {
				in.VOp = vector.OpMergeVIM
			} else {
				in.VOp = vector.OpMergeVVM
			}
		}
	case funct6Adc:
		if vm {
			return illegal(op)
		}
		if f3 == opivi {
			in.VOp = vector.OpAdcVIM
		} else {
			in.VOp = vector.OpAdcVVM
		}
	case funct6Sbc:
		if vm {
			return illegal(op)
		}
		in.VOp = vector.OpSbcVVM
	case funct6Madc:
		if f3 == opivi {
			in.VOp = pickVOp(vm, vector.OpMAdcVI, vector.OpMAdcVIM)
		} else {
			in.VOp = pickVOp(vm, vector.OpMAdcVV, vector.OpMAdcVVM)
		}
	case funct6Msbc:
		in.VOp = pickVOp(vm, vector.OpMSbcVV, vector.OpMSbcVVM)
	case funct6Compress:
		if !vm || f3 != opmvv {
			return illegal(op)
		}
		in.VOp = vector.OpCompressVM
	case funct6ViotaVid:
		if f3 != opmvv {
			return illegal(op)
		}
		switch rs1OrVs1 {
		case 0x10:
			in.VOp = vector.OpVIOTA
		case 0x11:
			in.VOp = vector.OpVID
		default:
			return illegal(op)
		}
	default:
		return illegal(op)
	}
	return in
}

func pickVOp(vm bool, withoutCarry, withCarry vector.Op) vector.Op {
	if vm {
		return withoutCarry
	}
	return withCarry
}

// decodeVSetVL handles the three vsetvl encodings, distinguished by the
// top bits of the word (spec.md §4.3's AVL-encoding table). Rs1 carries
// the AVL source (a 5-bit immediate for vsetivli); the vtype is the CSR
// field's immediate for vsetvli/vsetivli and register Rs2 for vsetvl. The
// emitter in emit/vcfg.go only classifies the AVL form; the runtime vsetvl
// helper computes vl.
func decodeVSetVL(op uint32, in Inst, vd, rs1, vs2 uint32) Inst {
	in.Rd = vd
	if riscv.Extract(op, 31, 1) == 0 {
		// vsetvli rd, rs1, zimm[10:0]
		in.Op = riscv.OpVSETVLI
		in.Rs1 = rs1
		in.CSR = riscv.Extract(op, 20, 11)
		return in
	}
	if riscv.Extract(op, 30, 2) == 0b11 {
		// vsetivli rd, uimm[4:0], zimm[9:0]
		in.Op = riscv.OpVSETIVLI
		in.Rs1 = rs1 // 5-bit immediate AVL, not a register index
		in.CSR = riscv.Extract(op, 20, 10)
		return in
	}
	if riscv.Extract(op, 25, 7) == 0b1000000 {
		// vsetvl rd, rs1, rs2
		in.Op = riscv.OpVSETVL
		in.Rs1 = rs1
		in.Rs2 = vs2
		return in
	}
	return illegal(op)
}
