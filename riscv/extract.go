// Package riscv holds the architecture-level building blocks shared by the
// decoder and emitter: bit-field extraction, immediate reconstruction,
// operation identifiers, and register/CSR naming tables. Nothing here reads
// guest memory or emits IR; every function is a pure transform over an
// opcode word or a field value.
package riscv

// Extract returns the unsigned start..start+len bit field of op.
func Extract(op uint32, start, length uint) uint32 {
	return (op >> start) & ((1 << length) - 1)
}

// Sextract returns the start..start+len bit field of op, sign-extended to
// int32 from its top bit.
func Sextract(op uint32, start, length uint) int32 {
	v := Extract(op, start, length)
	shift := 32 - length
	return int32(v<<shift) >> shift
}

// Sext extends the low `bits`-wide two's complement value in v to a full
// int64, matching the emitter's expectation that immediates arrive at the
// IR layer already widened to XLEN.
func Sext(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// ImmI reconstructs the I-type immediate (loads, JALR, ARITH-IMM).
func ImmI(op uint32) int64 {
	return int64(Sextract(op, 20, 12))
}

// ImmS reconstructs the S-type immediate (stores).
func ImmS(op uint32) int64 {
	imm11_5 := Extract(op, 25, 7)
	imm4_0 := Extract(op, 7, 5)
	raw := (imm11_5 << 5) | imm4_0
	return Sext(uint64(raw), 12)
}

// ImmB reconstructs the B-type immediate (branches). Bit 0 is always 0.
func ImmB(op uint32) int64 {
	imm12 := Extract(op, 31, 1)
	imm10_5 := Extract(op, 25, 6)
	imm4_1 := Extract(op, 8, 4)
	imm11 := Extract(op, 7, 1)
	raw := (imm12 << 12) | (imm11 << 11) | (imm10_5 << 5) | (imm4_1 << 1)
	return Sext(uint64(raw), 13)
}

// ImmU reconstructs the U-type immediate (LUI, AUIPC): top 20 bits, shifted
// into place, low 12 bits zero.
func ImmU(op uint32) int64 {
	return int64(int32(op & 0xfffff000))
}

// ImmJ reconstructs the J-type immediate (JAL). Bit 0 is always 0.
func ImmJ(op uint32) int64 {
	imm20 := Extract(op, 31, 1)
	imm10_1 := Extract(op, 21, 10)
	imm11 := Extract(op, 20, 1)
	imm19_12 := Extract(op, 12, 8)
	raw := (imm20 << 20) | (imm19_12 << 12) | (imm11 << 11) | (imm10_1 << 1)
	return Sext(uint64(raw), 21)
}

// Rd, Rs1, Rs2, Rs3, Funct3, Funct7, Funct12, Opcode extract the standard
// 32-bit instruction fields shared across formats.
func Rd(op uint32) uint32      { return Extract(op, 7, 5) }
func Rs1(op uint32) uint32     { return Extract(op, 15, 5) }
func Rs2(op uint32) uint32     { return Extract(op, 20, 5) }
func Rs3(op uint32) uint32     { return Extract(op, 27, 5) }
func Funct3(op uint32) uint32  { return Extract(op, 12, 3) }
func Funct7(op uint32) uint32  { return Extract(op, 25, 7) }
func Funct12(op uint32) uint32 { return Extract(op, 20, 12) }
func Funct2(op uint32) uint32  { return Extract(op, 25, 2) }
func Opcode(op uint32) uint32  { return Extract(op, 0, 7) }
func Shamt5(op uint32) uint32  { return Extract(op, 20, 5) }
func Shamt6(op uint32) uint32  { return Extract(op, 20, 6) }
func RM(op uint32) uint32      { return Extract(op, 12, 3) }

// -- 16-bit (Compressed) field extraction and immediates --

// CQuadrant returns bits[1:0], selecting C0/C1/C2.
func CQuadrant(op uint16) uint32 { return uint32(op) & 0x3 }

// CFunct3 returns bits[15:13], the C-format's secondary selector.
func CFunct3(op uint16) uint32 { return (uint32(op) >> 13) & 0x7 }

// CFunct2High/CFunct2Low pull the two-bit funct2 fields used by C1's
// arithmetic subgroup, at bits[11:10] and bits[6:5] respectively.
func CFunct2High(op uint16) uint32 { return (uint32(op) >> 10) & 0x3 }
func CFunct2Low(op uint16) uint32  { return (uint32(op) >> 5) & 0x3 }

// CRdRs1 returns the 5-bit rd/rs1 field at bits[11:7] used by full-width
// C1/C2 forms.
func CRdRs1(op uint16) uint32 { return (uint32(op) >> 7) & 0x1f }

// CRdRs1Q / CRs2Q return the compressed 3-bit register fields (x8-x15) at
// bits[9:7] and bits[4:2].
func CRdRs1Q(op uint16) uint32 { return ((uint32(op) >> 7) & 0x7) + 8 }
func CRs2Q(op uint16) uint32   { return ((uint32(op) >> 2) & 0x7) + 8 }

// CRs2 returns the full 5-bit rs2 field at bits[6:2].
func CRs2(op uint16) uint32 { return (uint32(op) >> 2) & 0x1f }

// CImmADDI4SPN reconstructs C.ADDI4SPN's zero-extended, scaled immediate.
func CImmADDI4SPN(op uint16) uint64 {
	b := uint32(op)
	nzuimm := Extract(b, 6, 1) << 2
	nzuimm |= Extract(b, 5, 1) << 3
	nzuimm |= Extract(b, 11, 2) << 4
	nzuimm |= Extract(b, 7, 4) << 6
	return uint64(nzuimm)
}

// CImmADDI16SP reconstructs C.ADDI16SP's sign-extended, scaled immediate.
func CImmADDI16SP(op uint16) int64 {
	b := uint32(op)
	raw := Extract(b, 6, 1) << 4
	raw |= Extract(b, 2, 1) << 5
	raw |= Extract(b, 5, 1) << 6
	raw |= Extract(b, 3, 2) << 7
	raw |= Extract(b, 12, 1) << 9
	return Sext(uint64(raw), 10)
}

// CImmLW reconstructs the C.LW/C.SW word-scaled offset (bits scaled by 4).
func CImmLW(op uint16) uint64 {
	b := uint32(op)
	imm := Extract(b, 6, 1) << 2
	imm |= Extract(b, 10, 3) << 3
	imm |= Extract(b, 5, 1) << 6
	return uint64(imm)
}

// CImmLD reconstructs the C.LD/C.SD doubleword-scaled offset (scaled by 8).
func CImmLD(op uint16) uint64 {
	b := uint32(op)
	imm := Extract(b, 10, 3) << 3
	imm |= Extract(b, 5, 2) << 6
	return uint64(imm)
}

// CImmLDSP reconstructs the stack-relative C.LDSP offset (scaled by 8).
func CImmLDSP(op uint16) uint64 {
	b := uint32(op)
	imm := Extract(b, 5, 2) << 3
	imm |= Extract(b, 12, 1) << 5
	imm |= Extract(b, 2, 3) << 6
	return uint64(imm)
}

// CImmLWSP reconstructs the stack-relative C.LWSP offset (scaled by 4).
func CImmLWSP(op uint16) uint64 {
	b := uint32(op)
	imm := Extract(b, 4, 3) << 2
	imm |= Extract(b, 12, 1) << 5
	imm |= Extract(b, 2, 2) << 6
	return uint64(imm)
}

// CImmSDSP reconstructs the stack-relative C.SDSP offset (scaled by 8).
func CImmSDSP(op uint16) uint64 {
	b := uint32(op)
	imm := Extract(b, 10, 3) << 3
	imm |= Extract(b, 7, 3) << 6
	return uint64(imm)
}

// CImmSWSP reconstructs the stack-relative C.SWSP offset (scaled by 4).
func CImmSWSP(op uint16) uint64 {
	b := uint32(op)
	imm := Extract(b, 9, 4) << 2
	imm |= Extract(b, 7, 2) << 6
	return uint64(imm)
}

// CImmJ reconstructs the C.J/C.JAL 11-bit sign-extended jump offset.
func CImmJ(op uint16) int64 {
	b := uint32(op)
	imm := Extract(b, 3, 3) << 1
	imm |= Extract(b, 11, 1) << 4
	imm |= Extract(b, 2, 1) << 5
	imm |= Extract(b, 7, 1) << 6
	imm |= Extract(b, 6, 1) << 7
	imm |= Extract(b, 9, 2) << 8
	imm |= Extract(b, 8, 1) << 10
	return Sext(uint64(imm), 11)
}

// CImmB reconstructs the C.BEQZ/C.BNEZ 8-bit sign-extended branch offset.
func CImmB(op uint16) int64 {
	b := uint32(op)
	imm := Extract(b, 3, 2) << 1
	imm |= Extract(b, 10, 2) << 3
	imm |= Extract(b, 2, 1) << 5
	imm |= Extract(b, 5, 2) << 6
	imm |= Extract(b, 12, 1) << 8
	return Sext(uint64(imm), 9)
}

// CImmI reconstructs the generic sign-extended CI-format immediate used by
// C.ADDI/C.LI/C.ANDI's non-shift form.
func CImmI(op uint16) int64 {
	b := uint32(op)
	raw := Extract(b, 2, 5)
	raw |= Extract(b, 12, 1) << 5
	return Sext(uint64(raw), 6)
}

// CZimm reconstructs the zero-extended CI-format immediate used by
// shift-amount and CSR-immediate forms.
func CZimm(op uint16) uint32 {
	b := uint32(op)
	raw := Extract(b, 2, 5)
	raw |= Extract(b, 12, 1) << 5
	return raw
}

// CImmLUI reconstructs C.LUI's sign-extended, pre-shifted 18-bit immediate.
func CImmLUI(op uint16) int64 {
	b := uint32(op)
	raw := Extract(b, 2, 5) << 12
	raw |= Extract(b, 12, 1) << 17
	return Sext(uint64(raw), 18)
}
