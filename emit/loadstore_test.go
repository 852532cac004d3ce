package emit

import (
	"testing"

	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// spec.md §7: the guest PC must be written before any memory op is
// emitted, so a faulting access reports the right instruction address.
func TestEmitLoadSyncsPCBeforeLoad(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpLW, Rd: 1, Rs1: 2, Imm: 0})

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
		t.Fatalf("PC must be synced before the load, pc write at %d load at %d", pcWriteIdx, loadIdx)
	}
}

func TestEmitStoreSyncsPCBeforeStore(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpSW, Rs1: 2, Rs2: 3, Imm: 0})

	pcWriteIdx, storeIdx := -1, -1
	for i, e := range rec.Log {
		if e.Kind == "write_reg" && e.Slot == ir.PCSlot() && pcWriteIdx == -1 {
			pcWriteIdx = i
		}
		if e.Kind == "store" && storeIdx == -1 {
			storeIdx = i
		}
	}
	if pcWriteIdx == -1 || storeIdx == -1 {
		t.Fatalf("expected both a PC write and a store, log: %+v", rec.Log)
	}
	if pcWriteIdx > storeIdx {
		t.Fatalf("PC must be synced before the store, pc write at %d store at %d", pcWriteIdx, storeIdx)
	}
}

// spec.md's FP load/store section: FLW/FLD/FSW/FSD guard on mstatus.FS
// like every other FP op.
func TestEmitFPLoadGuardsOnFS(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpFLW, Rd: 1, Rs1: 2, Imm: 0})

	sawMstatusRead := false
	for _, e := range rec.Log {
		if e.Kind == "call" && e.Helper == "csr_read" && len(e.Args) == 1 {
			sawMstatusRead = true
		}
	}
	if !sawMstatusRead {
		t.Fatalf("expected an mstatus csr_read guard before the FP load, log: %+v", rec.Log)
	}
}
