// Package decode implements the hierarchical dispatch from a 16- or 32-bit
// RISC-V opcode word to a fully-resolved operation identifier and operand
// tuple (spec.md §4.2). Nothing here touches guest memory or emits IR;
// Decode32/Decode16 are pure functions of the opcode word (and, for a
// handful of RV64-only forms, the target XLEN).
package decode

import (
	"fmt"
	"strconv"

	"github.com/lunixbochs/rvtcg/riscv"
	"github.com/lunixbochs/rvtcg/vector"
)

// Inst is the decoder's output: an operation id plus whichever operand
// fields that operation uses. Unused fields are zero. This is a flat
// struct rather than a tagged union with per-op payload types, matching
// spec.md's design note that the decoder is "a pure nested match on
// integer fields" with no per-instruction classes.
type Inst struct {
	Op    riscv.Op
	Len   int // 2 or 4, the encoding length in bytes
	Rd    uint32
	Rs1   uint32
	Rs2   uint32
	Rs3   uint32
	Imm   int64
	Width riscv.Width // arithmetic/FP operand width
	RM    uint32       // FP rounding mode / fcvt rs2 selector
	CSR   uint32
	Pred  uint32
	Succ  uint32
	Aq    bool
	Rl    bool
	VOp   vector.Op

	// Raw is the original opcode word, kept for error messages and for
	// String()'s fallback illegal-instruction text.
	Raw uint32
}

// String renders the canonical assembly text for the decoded instruction,
// used by the round-trip disassembly property in spec.md §8. Illegal
// instructions always render as "illegal".
func (in Inst) String() string {
	x := func(n uint32) string { return "x" + strconv.Itoa(int(n)) }
	f := func(n uint32) string { return "f" + strconv.Itoa(int(n)) }
	switch in.Op {
	case riscv.OpIllegal:
		return "illegal"
	case riscv.OpLUIInst:
		return fmt.Sprintf("lui %s, 0x%x", x(in.Rd), uint32(in.Imm)>>12)
	case riscv.OpAUIPCInst:
		return fmt.Sprintf("auipc %s, 0x%x", x(in.Rd), uint32(in.Imm)>>12)
	case riscv.OpADDI:
		return fmt.Sprintf("addi %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSLTI:
		return fmt.Sprintf("slti %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSLTIU:
		return fmt.Sprintf("sltiu %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpXORI:
		return fmt.Sprintf("xori %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpORI:
		return fmt.Sprintf("ori %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpANDI:
		return fmt.Sprintf("andi %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSLLI:
		return fmt.Sprintf("slli %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSRLI:
		return fmt.Sprintf("srli %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSRAI:
		return fmt.Sprintf("srai %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpADD:
		return fmt.Sprintf("add %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSUB:
		return fmt.Sprintf("sub %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSLL:
		return fmt.Sprintf("sll %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSLT:
		return fmt.Sprintf("slt %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSLTU:
		return fmt.Sprintf("sltu %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpXOR:
		return fmt.Sprintf("xor %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSRL:
		return fmt.Sprintf("srl %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSRA:
		return fmt.Sprintf("sra %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpOR:
		return fmt.Sprintf("or %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpAND:
		return fmt.Sprintf("and %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpADDIW:
		return fmt.Sprintf("addiw %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSLLIW:
		return fmt.Sprintf("slliw %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSRLIW:
		return fmt.Sprintf("srliw %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpSRAIW:
		return fmt.Sprintf("sraiw %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpADDW:
		return fmt.Sprintf("addw %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSUBW:
		return fmt.Sprintf("subw %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSLLW:
		return fmt.Sprintf("sllw %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSRLW:
		return fmt.Sprintf("srlw %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpSRAW:
		return fmt.Sprintf("sraw %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpMUL, riscv.OpMULH, riscv.OpMULHSU, riscv.OpMULHU,
		riscv.OpDIV, riscv.OpDIVU, riscv.OpREM, riscv.OpREMU,
		riscv.OpMULW, riscv.OpDIVW, riscv.OpDIVUW, riscv.OpREMW, riscv.OpREMUW:
		return fmt.Sprintf("%s %s, %s, %s", mExtName(in.Op), x(in.Rd), x(in.Rs1), x(in.Rs2))
	case riscv.OpJAL_:
		return fmt.Sprintf("jal %s, %d", x(in.Rd), in.Imm)
	case riscv.OpJALR_:
		return fmt.Sprintf("jalr %s, %s, %d", x(in.Rd), x(in.Rs1), in.Imm)
	case riscv.OpBEQ:
		return fmt.Sprintf("beq %s, %s, %d", x(in.Rs1), x(in.Rs2), in.Imm)
	case riscv.OpBNE:
		return fmt.Sprintf("bne %s, %s, %d", x(in.Rs1), x(in.Rs2), in.Imm)
	case riscv.OpBLT:
		return fmt.Sprintf("blt %s, %s, %d", x(in.Rs1), x(in.Rs2), in.Imm)
	case riscv.OpBGE:
		return fmt.Sprintf("bge %s, %s, %d", x(in.Rs1), x(in.Rs2), in.Imm)
	case riscv.OpBLTU:
		return fmt.Sprintf("bltu %s, %s, %d", x(in.Rs1), x(in.Rs2), in.Imm)
	case riscv.OpBGEU:
		return fmt.Sprintf("bgeu %s, %s, %d", x(in.Rs1), x(in.Rs2), in.Imm)
	case riscv.OpLB:
		return fmt.Sprintf("lb %s, %d(%s)", x(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpLH:
		return fmt.Sprintf("lh %s, %d(%s)", x(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpLW:
		return fmt.Sprintf("lw %s, %d(%s)", x(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpLD:
		return fmt.Sprintf("ld %s, %d(%s)", x(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpLBU:
		return fmt.Sprintf("lbu %s, %d(%s)", x(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpLHU:
		return fmt.Sprintf("lhu %s, %d(%s)", x(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpLWU:
		return fmt.Sprintf("lwu %s, %d(%s)", x(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpSB:
		return fmt.Sprintf("sb %s, %d(%s)", x(in.Rs2), in.Imm, x(in.Rs1))
	case riscv.OpSH:
		return fmt.Sprintf("sh %s, %d(%s)", x(in.Rs2), in.Imm, x(in.Rs1))
	case riscv.OpSW:
		return fmt.Sprintf("sw %s, %d(%s)", x(in.Rs2), in.Imm, x(in.Rs1))
	case riscv.OpSD:
		return fmt.Sprintf("sd %s, %d(%s)", x(in.Rs2), in.Imm, x(in.Rs1))
	case riscv.OpFENCE:
		return "fence"
	case riscv.OpFENCE_I:
		return "fence.i"
	case riscv.OpECALL:
		return "ecall"
	case riscv.OpEBREAK:
		return "ebreak"
	case riscv.OpCSRRW:
		return fmt.Sprintf("csrrw %s, 0x%x, %s", x(in.Rd), in.CSR, x(in.Rs1))
	case riscv.OpCSRRS:
		return fmt.Sprintf("csrrs %s, 0x%x, %s", x(in.Rd), in.CSR, x(in.Rs1))
	case riscv.OpCSRRC:
		return fmt.Sprintf("csrrc %s, 0x%x, %s", x(in.Rd), in.CSR, x(in.Rs1))
	case riscv.OpCSRRWI:
		return fmt.Sprintf("csrrwi %s, 0x%x, %d", x(in.Rd), in.CSR, in.Rs1)
	case riscv.OpCSRRSI:
		return fmt.Sprintf("csrrsi %s, 0x%x, %d", x(in.Rd), in.CSR, in.Rs1)
	case riscv.OpCSRRCI:
		return fmt.Sprintf("csrrci %s, 0x%x, %d", x(in.Rd), in.CSR, in.Rs1)
	case riscv.OpSRET:
		return "sret"
	case riscv.OpMRET:
		return "mret"
	case riscv.OpWFI:
		return "wfi"
	case riscv.OpSFENCE_VMA:
		return fmt.Sprintf("sfence.vma %s, %s", x(in.Rs1), x(in.Rs2))
	case riscv.OpLR_W:
		return fmt.Sprintf("lr.w %s, (%s)", x(in.Rd), x(in.Rs1))
	case riscv.OpLR_D:
		return fmt.Sprintf("lr.d %s, (%s)", x(in.Rd), x(in.Rs1))
	case riscv.OpSC_W:
		return fmt.Sprintf("sc.w %s, %s, (%s)", x(in.Rd), x(in.Rs2), x(in.Rs1))
	case riscv.OpSC_D:
		return fmt.Sprintf("sc.d %s, %s, (%s)", x(in.Rd), x(in.Rs2), x(in.Rs1))
	case riscv.OpAMOSWAP_W, riscv.OpAMOADD_W, riscv.OpAMOXOR_W, riscv.OpAMOAND_W,
		riscv.OpAMOOR_W, riscv.OpAMOMIN_W, riscv.OpAMOMAX_W, riscv.OpAMOMINU_W, riscv.OpAMOMAXU_W,
		riscv.OpAMOSWAP_D, riscv.OpAMOADD_D, riscv.OpAMOXOR_D, riscv.OpAMOAND_D,
		riscv.OpAMOOR_D, riscv.OpAMOMIN_D, riscv.OpAMOMAX_D, riscv.OpAMOMINU_D, riscv.OpAMOMAXU_D:
		return fmt.Sprintf("%s %s, %s, (%s)", amoName(in.Op), x(in.Rd), x(in.Rs2), x(in.Rs1))
	case riscv.OpFLW:
		return fmt.Sprintf("flw %s, %d(%s)", f(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpFLD:
		return fmt.Sprintf("fld %s, %d(%s)", f(in.Rd), in.Imm, x(in.Rs1))
	case riscv.OpFSW:
		return fmt.Sprintf("fsw %s, %d(%s)", f(in.Rs2), in.Imm, x(in.Rs1))
	case riscv.OpFSD:
		return fmt.Sprintf("fsd %s, %d(%s)", f(in.Rs2), in.Imm, x(in.Rs1))
	case riscv.OpVSETVLI:
		return fmt.Sprintf("vsetvli %s, %s, 0x%x", x(in.Rd), x(in.Rs1), in.CSR)
	case riscv.OpVSETIVLI:
		return fmt.Sprintf("vsetivli %s, %d, 0x%x", x(in.Rd), in.Rs1, in.CSR)
	case riscv.OpVSETVL:
		return fmt.Sprintf("vsetvl %s, %s, %s", x(in.Rd), x(in.Rs1), x(in.Rs2))
	default:
		return fmt.Sprintf("<op %d>", in.Op)
	}
}

func mExtName(op riscv.Op) string {
	switch op {
	case riscv.OpMUL:
		return "mul"
	case riscv.OpMULH:
		return "mulh"
	case riscv.OpMULHSU:
		return "mulhsu"
	case riscv.OpMULHU:
		return "mulhu"
	case riscv.OpDIV:
		return "div"
	case riscv.OpDIVU:
		return "divu"
	case riscv.OpREM:
		return "rem"
	case riscv.OpREMU:
		return "remu"
	case riscv.OpMULW:
		return "mulw"
	case riscv.OpDIVW:
		return "divw"
	case riscv.OpDIVUW:
		return "divuw"
	case riscv.OpREMW:
		return "remw"
	case riscv.OpREMUW:
		return "remuw"
	}
	return "?"
}

func amoName(op riscv.Op) string {
	switch op {
	case riscv.OpAMOSWAP_W:
		return "amoswap.w"
	case riscv.OpAMOADD_W:
		return "amoadd.w"
	case riscv.OpAMOXOR_W:
		return "amoxor.w"
	case riscv.OpAMOAND_W:
		return "amoand.w"
	case riscv.OpAMOOR_W:
		return "amoor.w"
	case riscv.OpAMOMIN_W:
		return "amomin.w"
	case riscv.OpAMOMAX_W:
		return "amomax.w"
	case riscv.OpAMOMINU_W:
		return "amominu.w"
	case riscv.OpAMOMAXU_W:
		return "amomaxu.w"
	case riscv.OpAMOSWAP_D:
		return "amoswap.d"
	case riscv.OpAMOADD_D:
		return "amoadd.d"
	case riscv.OpAMOXOR_D:
		return "amoxor.d"
	case riscv.OpAMOAND_D:
		return "amoand.d"
	case riscv.OpAMOOR_D:
		return "amoor.d"
	case riscv.OpAMOMIN_D:
		return "amomin.d"
	case riscv.OpAMOMAX_D:
		return "amomax.d"
	case riscv.OpAMOMINU_D:
		return "amominu.d"
	case riscv.OpAMOMAXU_D:
		return "amomaxu.d"
	}
	return "?"
}
