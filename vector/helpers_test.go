package vector

import "testing"

func newState(vl int) *State {
	s := &State{VL: vl, VS: true, VSEW: 64, LMUL: 1}
	for i := range s.Regs {
		s.Regs[i] = make([]uint64, vl)
	}
	return s
}

func TestExecMvVV(t *testing.T) {
	s := newState(4)
	s.Regs[2] = []uint64{10, 20, 30, 40}
	if err := Exec(s, OpMvVV, 1, 0, false, 0, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{10, 20, 30, 40}
	for i, w := range want {
		if s.Regs[1][i] != w {
			t.Fatalf("elem %d: got %d want %d", i, s.Regs[1][i], w)
		}
	}
}

func TestExecMergeVVM(t *testing.T) {
	s := newState(4)
	s.Regs[2] = []uint64{1, 2, 3, 4}
	s.Regs[3] = []uint64{100, 200, 300, 400}
	s.Mask[0] = 0b0101 // elements 0 and 2 take the vs1 operand
	if err := Exec(s, OpMergeVVM, 1, 2, false, 0, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{100, 2, 300, 4}
	for i, w := range want {
		if s.Regs[1][i] != w {
			t.Fatalf("elem %d: got %d want %d", i, s.Regs[1][i], w)
		}
	}
}

func TestExecAdcVIM(t *testing.T) {
	s := newState(3)
	s.Regs[2] = []uint64{1, 2, 3}
	s.Mask[0] = 0b011 // carry-in set for elements 0 and 1
	if err := Exec(s, OpAdcVIM, 1, 2, true, 5, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{7, 8, 8}
	for i, w := range want {
		if s.Regs[1][i] != w {
			t.Fatalf("elem %d: got %d want %d", i, s.Regs[1][i], w)
		}
	}
}

func TestExecVID(t *testing.T) {
	s := newState(5)
	execVid(s, 0)
	for i := 0; i < 5; i++ {
		if s.Regs[0][i] != uint64(i) {
			t.Fatalf("elem %d: got %d want %d", i, s.Regs[0][i], i)
		}
	}
}

func TestExecVIOTA(t *testing.T) {
	s := newState(5)
	s.Mask[2] = 0b01011 // active at elements 0, 1, 3
	execViota(s, 0, 2)
	want := []uint64{0, 1, 2, 2, 3}
	for i, w := range want {
		if s.Regs[0][i] != w {
			t.Fatalf("elem %d: got %d want %d", i, s.Regs[0][i], w)
		}
	}
}

func TestExecCompressVM(t *testing.T) {
	s := newState(5)
	s.Regs[2] = []uint64{10, 20, 30, 40, 50}
	s.Mask[0] = 0b10101 // elements 0, 2, 4 selected
	execCompress(s, 1, 2)
	want := []uint64{10, 30, 50}
	for i, w := range want {
		if s.Regs[1][i] != w {
			t.Fatalf("elem %d: got %d want %d", i, s.Regs[1][i], w)
		}
	}
}

func TestExecMAdcVV(t *testing.T) {
	s := newState(2)
	s.Regs[2] = []uint64{^uint64(0), 5}
	s.Regs[3] = []uint64{1, 5}
	if err := Exec(s, OpMAdcVV, 1, 2, false, 0, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !((s.Mask[1] & 1) != 0) {
		t.Fatalf("expected overflow flagged at element 0")
	}
	if (s.Mask[1] & 2) != 0 {
		t.Fatalf("expected no overflow at element 1")
	}
}

// spec.md §8: an 8-bit element add that wraps within the byte but not
// within the full 64-bit word must still flag overflow at the true
// element width, not the raw uint64 sum.
func TestExecMAdcVVNarrowSEW(t *testing.T) {
	s := newState(2)
	s.VSEW = 8
	s.Regs[2] = []uint64{0xff, 0x10}
	s.Regs[3] = []uint64{1, 0x10}
	if err := Exec(s, OpMAdcVV, 1, 2, false, 0, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Mask[1]&1 == 0 {
		t.Fatalf("expected overflow flagged at element 0 (0xff+1 wraps a byte)")
	}
	if s.Mask[1]&2 != 0 {
		t.Fatalf("expected no overflow at element 1 (0x10+0x10 fits in a byte)")
	}
}

// TestExecMSbcVVMEqualOperandsWithBorrow reproduces the case a plain
// `a < operand` (or the narrower `operand == mask` patch) misses: a
// borrow-in against equal operands still produces a genuine borrow-out
// (5 - 5 - 1 = -1 at any element width), so the mask bit must be set.
func TestExecMSbcVVMEqualOperandsWithBorrow(t *testing.T) {
	s := newState(1)
	s.VSEW = 8
	s.Regs[2] = []uint64{5}
	s.Regs[3] = []uint64{5}
	s.Mask[0] = 0b1 // borrow-in set
	if err := Exec(s, OpMSbcVVM, 1, 2, false, 0, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Mask[1]&1 == 0 {
		t.Fatalf("expected borrow-out flagged for 5 - 5 - 1")
	}
}

func TestExecRequiresVectorUnitEnabled(t *testing.T) {
	s := newState(2)
	s.VS = false
	s.Regs[2] = []uint64{1, 2}
	if err := Exec(s, OpMvVV, 1, 0, false, 0, 2); err != ErrVecDisabled {
		t.Fatalf("expected ErrVecDisabled, got %v", err)
	}
}

func TestExecRejectsUnsupportedSEW(t *testing.T) {
	s := newState(2)
	s.VSEW = 24
	s.Regs[2] = []uint64{1, 2}
	if err := Exec(s, OpMvVV, 1, 0, false, 0, 2); err != ErrVecBadSEW {
		t.Fatalf("expected ErrVecBadSEW, got %v", err)
	}
}

func TestExecRejectsMisalignedIndexForLMUL(t *testing.T) {
	s := newState(2)
	s.LMUL = 4
	s.Regs[8] = []uint64{1, 2}
	// vd = 1 is not a multiple of LMUL = 4.
	if err := Exec(s, OpMvVV, 1, 0, false, 0, 8); err != ErrVecIdxAlign {
		t.Fatalf("expected ErrVecIdxAlign, got %v", err)
	}
	// vd = 4, vs2 = 0, vs1 = 8 are all multiples of LMUL = 4.
	s.Regs[4] = make([]uint64, 2)
	if err := Exec(s, OpMvVV, 4, 0, false, 0, 8); err != nil {
		t.Fatalf("unexpected error for aligned indices: %v", err)
	}
}
