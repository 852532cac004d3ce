package emit

import (
	"testing"

	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

func newCtx(rec *ir.Recorder) *Context {
	return &Context{
		B:      rec,
		PC:     0x1000,
		NextPC: 0x1004,
		XLEN:   64,
		RVC:    true,
		GotoTB: func(n int, dest uint64) { rec.GotoTB(n, dest) },
	}
}

func lastN(rec *ir.Recorder, n int) []ir.Entry {
	if n > len(rec.Log) {
		n = len(rec.Log)
	}
	return rec.Log[len(rec.Log)-n:]
}

// scenario 3 from spec.md §8: DIV x3, x4, x0 must not trap and must
// produce all-ones (-1), reached via the divide-by-zero special case.
func TestEmitDivByZero(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpDIV, Rd: 3, Rs1: 4, Rs2: 0})

	foundConst := false
	for _, e := range rec.Log {
		if e.Kind == "const" && e.Val == ^uint64(0) {
			foundConst = true
		}
	}
	if !foundConst {
		t.Fatalf("expected an all-ones constant on the divide-by-zero path, log: %+v", rec.Log)
	}
	// the zero-check must precede any real DivS
	sawZeroCheck := false
	for _, e := range rec.Log {
		if e.Kind == "br_cond" && e.Cond == ir.CondEq {
			sawZeroCheck = true
		}
		if e.Kind == "binop" && e.Op == ir.DivS && !sawZeroCheck {
			t.Fatalf("DivS emitted before the zero check")
		}
	}
	if !sawZeroCheck {
		t.Fatalf("expected a zero-check br_cond, log: %+v", rec.Log)
	}
}

// scenario 4: REM x3, x4, x5 with x4=MinInt64, x5=-1 must yield 0 via the
// signed-overflow special case, not trap.
func TestEmitRemOverflow(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpREM, Rd: 3, Rs1: 4, Rs2: 5})

	var zeroTemp ir.Temp = -1
	for _, e := range rec.Log {
		if e.Kind == "const" && e.Val == 0 {
			zeroTemp = e.Result
			break
		}
	}
	if zeroTemp == -1 {
		t.Fatalf("no zero constant emitted, log: %+v", rec.Log)
	}

	labelIdx := -1
	for i, e := range rec.Log {
		if e.Kind == "label" {
			labelIdx = i
			break
		}
	}
	if labelIdx == -1 || labelIdx+1 >= len(rec.Log) {
		t.Fatalf("expected an overflow label, log: %+v", rec.Log)
	}
	next := rec.Log[labelIdx+1]
	if next.Kind != "write_reg" || next.A != zeroTemp {
		t.Fatalf("expected the overflow arm to write back the zero temp, got %+v", next)
	}
}

func TestEmitMULHSU(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpMULHSU, Rd: 1, Rs1: 2, Rs2: 3})

	var ops []ir.BinOp
	for _, e := range rec.Log {
		if e.Kind == "binop" {
			ops = append(ops, e.Op)
		}
	}
	want := []ir.BinOp{ir.MulHU, ir.SetLtS, ir.Sub, ir.And, ir.Sub}
	if len(ops) != len(want) {
		t.Fatalf("got %d binops %v, want %v", len(ops), ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("binop %d: got %v want %v", i, ops[i], want[i])
		}
	}
}

func TestEmitADDIWSextends(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpADDIW, Rd: 1, Rs1: 2, Imm: 1})

	last := lastN(rec, 2)
	if last[0].Kind != "sext32" {
		t.Fatalf("expected sext32 before the writeback, got %s", last[0].Kind)
	}
	if last[1].Kind != "write_reg" {
		t.Fatalf("expected write_reg last, got %s", last[1].Kind)
	}
}

func TestEmitWriteToX0IsElided(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpADDI, Rd: 0, Rs1: 0, Imm: 5})

	for _, e := range rec.Log {
		if e.Kind == "write_reg" {
			t.Fatalf("write to x0 should be elided, got entry: %+v", e)
		}
	}
}
