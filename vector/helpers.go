package vector

import "github.com/pkg/errors"

// Sentinel errors matching spec.md's vector-helper contract: a real
// backend routes these to the Illegal-Instruction exception path exactly
// like an emitted RaiseException, since the helper runs at execution
// time, not translate time.
var (
	ErrVecDisabled = errors.New("vector: mstatus.VS disabled")
	ErrVecIdxAlign = errors.New("vector: register index misaligned for LMUL")
	ErrVecBadSEW   = errors.New("vector: unsupported vsew")
)

// State is the RVV runtime helper layer's view of guest vector state. Each
// register is already split into per-element uint64 slots at the active
// SEW, matching the granularity spec.md's vsew field selects, rather than
// a raw byte buffer a real backend would actually use — this frontend's
// helpers describe the arithmetic, not the physical register encoding.
type State struct {
	Regs   [32][]uint64
	Mask   [32]uint64 // Regs[i]'s use as a mask register: bit j of Mask[i] is element j
	VL     int
	VStart int
	VSEW   int  // active element width in bits: 8, 16, 32, or 64
	VS     bool // mstatus.VS != 0; the vector unit is enabled
	LMUL   int  // integer vector register group length (1, 2, 4, or 8); fractional LMUL validates as 1
}

func (s *State) maskActive(vreg, idx int) bool {
	return s.Mask[vreg]&(uint64(1)<<uint(idx)) != 0
}

func setMaskBit(mask *uint64, idx int, v bool) {
	if v {
		*mask |= uint64(1) << uint(idx)
	} else {
		*mask &^= uint64(1) << uint(idx)
	}
}

func boolToU64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (s *State) operandAt(operandIsScalar bool, scalar uint64, vs1 int, idx int) uint64 {
	if operandIsScalar {
		return scalar
	}
	return s.Regs[vs1][idx]
}

func sewMask(sew int) uint64 {
	switch sew {
	case 8:
		return 0xff
	case 16:
		return 0xffff
	case 32:
		return 0xffffffff
	default:
		return ^uint64(0)
	}
}

func validSEW(sew int) bool {
	switch sew {
	case 8, 16, 32, 64:
		return true
	}
	return false
}

func idxAligned(vreg, lmul int) bool {
	if lmul <= 1 {
		return true
	}
	return vreg%lmul == 0
}

// overflowAdd reports whether a+b overflowed the element width implied by
// mask (all-ones at the active SEW). At the full 64-bit width no uint64
// arithmetic above actually overflows the type, so the wraparound test
// (sum < a) is exact; at narrower widths the add never wraps uint64
// itself, so a direct bound check against mask is exact instead.
func overflowAdd(sum, a, mask uint64) bool {
	if mask == ^uint64(0) {
		return sum < a
	}
	return sum > mask
}

// requireVec implements spec.md's per-helper preamble: mstatus.VS must be
// enabled, vsew must be one of the four supported widths, and vd/vs2 (and
// vs1, when it names a vector register rather than a scalar) must be
// aligned to the current LMUL's register group.
func (s *State) requireVec(vd, vs2 int, vs1 int, vs1IsVreg bool) error {
	if !s.VS {
		return ErrVecDisabled
	}
	if !validSEW(s.VSEW) {
		return ErrVecBadSEW
	}
	lmul := s.LMUL
	if lmul < 1 {
		lmul = 1
	}
	if !idxAligned(vd, lmul) || !idxAligned(vs2, lmul) {
		return ErrVecIdxAlign
	}
	if vs1IsVreg && !idxAligned(vs1, lmul) {
		return ErrVecIdxAlign
	}
	return nil
}

// Exec runs op over the active element range [VStart, VL) of s, matching
// the require_vec / body-mask semantics spec.md's vector helpers section
// describes: elements below VStart are left untouched (this frontend
// never models tail-undisturbed vs tail-agnostic distinctly, which is a
// deliberate simplification), and every op here reads its non-vs2
// operand through operandAt so the .vv/.vx/.vi encodings share one loop.
// Every arithmetic result and comparison is masked/evaluated at the
// current vsew width, not a bare 64-bit word, so overflow detection for
// vmadc/vmsbc is correct regardless of element width.
//
// The operand is either vector register vs1 (operandIsScalar false) or
// the already-widened value scalar (operandIsScalar true, matching the .vx/.vi
// forms emit/vector_call.go resolves before calling in). Returns an
// error (never a panic) when require_vec's preconditions fail, since a
// real backend routes that to the Illegal-Instruction exception path
// rather than aborting the helper call outright.
func Exec(s *State, op Op, vd, vs2 int, operandIsScalar bool, scalar uint64, vs1 int) error {
	if err := s.requireVec(vd, vs2, vs1, !operandIsScalar && takesVreg(op)); err != nil {
		return err
	}

	switch op {
	case OpCompressVM:
		execCompress(s, vd, vs2)
		return nil
	case OpVID:
		execVid(s, vd)
		return nil
	case OpVIOTA:
		execViota(s, vd, vs2)
		return nil
	}

	mask := sewMask(s.VSEW)
	dst := s.Regs[vd]
	src2 := s.Regs[vs2]

	for i := s.VStart; i < s.VL; i++ {
		operand := s.operandAt(operandIsScalar, scalar, vs1, i) & mask
		a := src2[i] & mask
		switch op {
		case OpMvVI, OpMvVV:
			dst[i] = operand
		case OpMergeVVM, OpMergeVIM:
			if s.maskActive(0, i) {
				dst[i] = operand
			} else {
				dst[i] = a
			}
		case OpAdcVVM, OpAdcVIM:
			carry := boolToU64(s.maskActive(0, i))
			dst[i] = (a + operand + carry) & mask
		case OpSbcVVM:
			borrow := boolToU64(s.maskActive(0, i))
			dst[i] = (a - operand - borrow) & mask
		case OpMAdcVV, OpMAdcVI:
			sum := a + operand
			setMaskBit(&s.Mask[vd], i, overflowAdd(sum, a, mask))
		case OpMAdcVVM, OpMAdcVIM:
			carry := boolToU64(s.maskActive(0, i))
			sum := a + operand + carry
			overflow := overflowAdd(sum, a, mask) || (mask == ^uint64(0) && carry == 1 && sum == a)
			setMaskBit(&s.Mask[vd], i, overflow)
		case OpMSbcVV:
			setMaskBit(&s.Mask[vd], i, a < operand)
		case OpMSbcVVM:
			var underflow bool
			if s.maskActive(0, i) {
				underflow = a <= operand
			} else {
				underflow = a < operand
			}
			setMaskBit(&s.Mask[vd], i, underflow)
		}
	}
	return nil
}

// takesVreg reports whether op's non-vs2 operand names a vector register
// (a .vv-family form) when it isn't a scalar, and so needs the same LMUL
// alignment check vd/vs2 get. Ops with no operand at all (handled before
// the alignment check ever consults this) return false harmlessly.
func takesVreg(op Op) bool {
	switch op {
	case OpCompressVM, OpVID, OpVIOTA:
		return false
	}
	return true
}

// execCompress packs the elements of vs2 selected by the v0 mask into the
// front of vd, in order (vcompress.vm has no scalar/immediate operand).
func execCompress(s *State, vd, vs2 int) {
	dst := s.Regs[vd]
	src := s.Regs[vs2]
	out := 0
	for i := s.VStart; i < s.VL; i++ {
		if s.maskActive(0, i) {
			dst[out] = src[i]
			out++
		}
	}
}

// execVid writes each active element's own index (vid.v).
func execVid(s *State, vd int) {
	dst := s.Regs[vd]
	for i := s.VStart; i < s.VL; i++ {
		dst[i] = uint64(i)
	}
}

// execViota writes each element the count of mask bits set among all
// preceding elements of vs2, used as a mask register (viota.m).
func execViota(s *State, vd, vs2 int) {
	dst := s.Regs[vd]
	count := uint64(0)
	for i := s.VStart; i < s.VL; i++ {
		dst[i] = count
		if s.maskActive(vs2, i) {
			count++
		}
	}
}
