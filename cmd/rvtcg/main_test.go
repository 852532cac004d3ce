package main

import (
	"testing"

	"github.com/lunixbochs/rvtcg/ir"
)

func TestConstGPRSnapshotOnlyResolvesLiteralWrites(t *testing.T) {
	rec := ir.NewRecorder()
	five := rec.ConstI(64, 5)
	rec.WriteGuestReg(ir.GPR(1), five) // x1 = 5, a literal constant

	loaded := rec.ReadGuestReg(ir.GPR(2))
	sum := rec.BinOp(ir.Add, 64, loaded, five)
	rec.WriteGuestReg(ir.GPR(3), sum) // x3 = x2 + 5, not statically known

	gpr := constGPRSnapshot(rec.Log)
	if gpr[1] != 5 {
		t.Fatalf("expected x1 = 5, got %d", gpr[1])
	}
	if gpr[3] != 0 {
		t.Fatalf("expected x3 to stay 0 (not a literal constant), got %d", gpr[3])
	}
}
