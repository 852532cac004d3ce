package decode

import (
	"testing"

	"github.com/lunixbochs/rvtcg/riscv"
)

// scenario 1 from spec.md §8: ADDI x1, x0, 5
func TestDecode32ADDI(t *testing.T) {
	in := Decode32(0x00500093, 64)
	if in.Op != riscv.OpADDI {
		t.Fatalf("expected ADDI, got %v", in.Op)
	}
	if in.Rd != 1 || in.Rs1 != 0 || in.Imm != 5 {
		t.Fatalf("bad operands: %+v", in)
	}
	if got, want := in.String(), "addi x1, x0, 5"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

// scenario 2: SLLI x2, x1, 64 on RV64 is illegal (shamt encodes 64, out of
// range for a 6-bit field: it would need bit 26, above shamt[5], set).
func TestDecode32SLLIOverflow(t *testing.T) {
	// 0x04009113 sets funct7=0000010 (bit 26 set), which is not a
	// legal RV64 SLLI top-bits pattern (only funct7 bit 0, shamt[5], may
	// be set); this is
	// exactly the "reserved funct7 bit implies an out-of-range shamt"
	// case spec.md's scenario 2 describes.
	in := Decode32(0x04009113, 64)
	if in.Op != riscv.OpIllegal {
		t.Fatalf("expected illegal, got %v (%s)", in.Op, in.String())
	}
}

func TestDecode32SLLIValid(t *testing.T) {
	// SLLI x2, x1, 5 on RV64: opcode=0x13, funct3=1, funct7=0, shamt=5
	word := uint32(0x13) | (2 << 7) | (1 << 12) | (1 << 15) | (5 << 20)
	in := Decode32(word, 64)
	if in.Op != riscv.OpSLLI || in.Imm != 5 {
		t.Fatalf("bad decode: %+v", in)
	}
}

func TestDecode32BEQMisalignImmediate(t *testing.T) {
	// scenario 5: BEQ x1, x1, +8 — verify immediate reconstruction only;
	// the alignment check itself belongs to package emit.
	// BEQ opcode=0x63 funct3=0, rs1=rs2=1, imm=8 encoded as B-type.
	imm := uint32(8)
	word := uint32(riscv.OpBranch)
	word |= riscv.Extract(imm, 11, 1) << 7
	word |= riscv.Extract(imm, 1, 4) << 8
	word |= 0 << 12 // funct3 = BEQ
	word |= 1 << 15 // rs1
	word |= 1 << 20 // rs2
	word |= riscv.Extract(imm, 5, 6) << 25
	word |= riscv.Extract(imm, 12, 1) << 31
	in := Decode32(word, 32)
	if in.Op != riscv.OpBEQ || in.Imm != 8 {
		t.Fatalf("bad decode: %+v", in)
	}
}

func TestDecode32DivRem(t *testing.T) {
	// DIV x3, x4, x0: opcode=OP, funct3=4, funct7=1 (M ext)
	word := uint32(riscv.OpOp) | (3 << 7) | (4 << 12) | (4 << 15) | (0 << 20) | (1 << 25)
	in := Decode32(word, 64)
	if in.Op != riscv.OpDIV {
		t.Fatalf("expected DIV, got %v", in.Op)
	}
}

func TestDecode32IllegalOpcode(t *testing.T) {
	in := Decode32(0x7f, 64) // opcode 0x7f is reserved/unassigned
	if in.Op != riscv.OpIllegal {
		t.Fatalf("expected illegal for reserved opcode, got %v", in.Op)
	}
	if in.String() != "illegal" {
		t.Fatalf("String() = %q, want illegal", in.String())
	}
}

func TestDecode32JAL(t *testing.T) {
	// JAL x1, 0x100
	imm := uint32(0x100)
	word := uint32(riscv.OpJAL) | (1 << 7)
	word |= riscv.Extract(imm, 12, 8) << 12
	word |= riscv.Extract(imm, 11, 1) << 20
	word |= riscv.Extract(imm, 1, 10) << 21
	word |= riscv.Extract(imm, 20, 1) << 31
	in := Decode32(word, 64)
	if in.Op != riscv.OpJAL_ || in.Rd != 1 || in.Imm != 0x100 {
		t.Fatalf("bad decode: %+v", in)
	}
}

func TestDecode32LoadStoreWidths(t *testing.T) {
	cases := []struct {
		f3   uint32
		xlen int
		want riscv.Op
		ill  bool
	}{
		{0, 64, riscv.OpLB, false},
		{6, 32, 0, true}, // LWU is RV64-only
		{6, 64, riscv.OpLWU, false},
		{3, 32, 0, true}, // LD is RV64-only
	}
	for _, c := range cases {
		word := uint32(riscv.OpLoad) | (1 << 7) | (c.f3 << 12) | (2 << 15)
		in := Decode32(word, c.xlen)
		if c.ill {
			if in.Op != riscv.OpIllegal {
				t.Fatalf("f3=%d xlen=%d: expected illegal, got %v", c.f3, c.xlen, in.Op)
			}
			continue
		}
		if in.Op != c.want {
			t.Fatalf("f3=%d xlen=%d: got %v want %v", c.f3, c.xlen, in.Op, c.want)
		}
	}
}
