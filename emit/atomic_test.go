package emit

import (
	"testing"

	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// spec.md §7: every memory op, atomics included, must see the guest PC
// synced first so a fault reports this instruction's address.
func TestEmitAMOSyncsPCBeforeAccess(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpAMOADD_W, Rd: 1, Rs1: 2, Rs2: 3})

	pcWriteIdx, loadIdx := -1, -1
	for i, e := range rec.Log {
		if e.Kind == "write_reg" && e.Slot == ir.PCSlot() && pcWriteIdx == -1 {
			pcWriteIdx = i
		}
		if e.Kind == "load" && loadIdx == -1 {
			loadIdx = i
		}
	}
	if pcWriteIdx == -1 || loadIdx == -1 {
		t.Fatalf("expected both a PC write and a load, log: %+v", rec.Log)
	}
	if pcWriteIdx > loadIdx {
		t.Fatalf("PC must be synced before the AMO's load, pc write at %d load at %d", pcWriteIdx, loadIdx)
	}
}
