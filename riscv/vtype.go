package riscv

import (
	"encoding/binary"
	"io"

	"github.com/lunixbochs/struc"
)

// Frac represents vlmul as a signed power-of-two exponent rather than a
// float64, per spec.md's own open-question resolution (§9, "RVV vflmul as
// floating-point"): vflmul is always a power of two in {1/8, 1/4, ... 8},
// so it is exactly representable as a shift amount with a direction, and
// every computation that would otherwise need a float multiply/divide
// becomes a left or right integer shift.
type Frac struct {
	// Shift is the magnitude; Negative selects division (LMUL < 1).
	Shift    uint
	Negative bool
}

// Mul multiplies x by this fraction using only integer shifts, rounding
// toward zero on the fractional (Negative) path — matching vlmax's use as
// a maximum element count, which QEMU also computes by integer division
// after multiplying by the fixed-point vlmul encoding.
func (f Frac) Mul(x int) int {
	if f.Negative {
		return x >> f.Shift
	}
	return x << f.Shift
}

// vlmulFrac decodes the 3-bit signed vlmul field (two's complement: -4..3)
// into a Frac. Field value 4 decodes to -4 (1/16), which is reserved;
// DecodeVType flags it as vill.
func vlmulFrac(field uint32) Frac {
	signed := int32(field<<29) >> 29 // sign-extend 3-bit field
	if signed < 0 {
		return Frac{Shift: uint(-signed), Negative: true}
	}
	return Frac{Shift: uint(signed), Negative: false}
}

// ELEN is the implementation's maximum vector element width in bits. RVV
// leaves ELEN configurable; this frontend fixes it at 64, matching every
// RVV profile that also implements D (which this frontend already
// requires for FCVT.*.D). Shared by emit.emitVSetVL's translate-time vill
// check and tb.Builder's search-PC vtype re-derivation, so both compute
// vlmax the same way.
const ELEN = 64

// VType is the decoded form of the vtype CSR (RVV 1.0 layout): bits
// [2:0]=vlmul, [5:3]=vsew, [6]=vta, [7]=vma, [XLEN-1]=vill, all other bits
// reserved-must-be-zero.
type VType struct {
	VSEW  int  // element width in bits: 8, 16, 32, or 64
	VLMul Frac // vector register group multiplier
	VTA   bool // tail-agnostic policy
	VMA   bool // mask-agnostic policy
	VILL  bool
}

// DecodeVType parses the raw vtype encoding produced by vsetvl's rs2/imm
// operand, per spec.md §4.3's vsetvl description. elen is the
// implementation's maximum element width (typically 64).
func DecodeVType(raw uint64, elen int) VType {
	vsewField := Extract(uint32(raw), 3, 3)
	vlmulField := Extract(uint32(raw), 0, 3)
	vta := Extract(uint32(raw), 6, 1) != 0
	vma := Extract(uint32(raw), 7, 1) != 0
	reserved := raw &^ 0xff

	vsew := 8 << vsewField
	lmul := vlmulFrac(vlmulField)

	vill := reserved != 0 || vsewField > 3 || vlmulField == 4
	if !vill {
		// vsew must not exceed min(vflmul, 1) * elen.
		capped := elen
		if lmul.Negative {
			capped = lmul.Mul(elen)
		}
		if vsew > capped {
			vill = true
		}
	}

	v := VType{VSEW: vsew, VLMul: lmul, VTA: vta, VMA: vma, VILL: vill}
	if vill {
		v.VILL = true
	}
	return v
}

// VLMax returns vlmax = vlenb*8/vsew * vflmul using only integer
// arithmetic. Returns 0 if v.VILL is set, per spec.md's vsetvl table.
func VLMax(v VType, vlenb int) int {
	if v.VILL {
		return 0
	}
	perReg := (vlenb * 8) / v.VSEW
	return v.VLMul.Mul(perReg)
}

// EncodeVType is the inverse of DecodeVType: it rebuilds the raw CSR value
// from v, setting the high (vill) bit when v.VILL is set.
func EncodeVType(v VType, xlen int) uint64 {
	var lmulField uint32
	if v.VLMul.Negative {
		lmulField = uint32(int32(-int(v.VLMul.Shift)) & 0x7)
	} else {
		lmulField = uint32(v.VLMul.Shift) & 0x7
	}
	vsewField := uint32(0)
	for w := v.VSEW >> 3; w > 1; w >>= 1 {
		vsewField++
	}
	raw := uint64(lmulField) | uint64(vsewField)<<3
	if v.VTA {
		raw |= 1 << 6
	}
	if v.VMA {
		raw |= 1 << 7
	}
	if v.VILL {
		raw |= 1 << uint(xlen-1)
	}
	return raw
}

// Known-field bits for VectorCSRSnapshot.Known: a search-PC re-pass can
// only recover the vtype/vl/vstart fields that are decidable from the
// static instruction stream (immediate-form vset*); a register-sourced
// vtype or AVL is genuinely unknowable without executing the block, so
// the snapshot says so instead of guessing.
const (
	VCSRVtypeKnown uint8 = 1 << iota
	VCSRVLKnown
	VCSRVStartKnown
)

// VectorCSRSnapshot is the fixed-layout wire form of the vector CSR group,
// used by tb.Builder.BuildSearchPC (spec.md §6, "restore_state_to_opc") to
// hand the engine whatever vtype/vl/vstart state a search-PC re-pass could
// statically recover, packed with struc the way go/models/savestate.go
// packs a flat register list rather than hand-rolling byte offsets.
type VectorCSRSnapshot struct {
	Vtype  uint64
	VL     uint64
	VLenb  uint64
	VStart uint64
	Known  uint8
}

// PackVectorCSR writes a VectorCSRSnapshot in the guest's byte order.
func PackVectorCSR(w io.Writer, snap VectorCSRSnapshot, order binary.ByteOrder) error {
	return struc.PackWithOrder(w, &snap, order)
}

// UnpackVectorCSR reads a VectorCSRSnapshot in the guest's byte order.
func UnpackVectorCSR(r io.Reader, order binary.ByteOrder) (VectorCSRSnapshot, error) {
	var snap VectorCSRSnapshot
	err := struc.UnpackWithOrder(r, &snap, order)
	return snap, err
}
