package emit

import (
	"testing"

	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

// spec.md: "All FP ops guard on mstatus.FS." The guard is runtime state,
// so it's always emitted as a read-mask-branch sequence ahead of the real
// op, never skipped at translate time.
func TestEmitFPGuardsOnFS(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpFADD, Rd: 1, Rs1: 2, Rs2: 3, Width: riscv.W32})

	sawMstatusRead, sawBrCond, sawIllegal, sawAdd := false, false, false, false
	for _, e := range rec.Log {
		switch e.Kind {
		case "call":
			if e.Helper == "csr_read" {
				sawMstatusRead = true
			}
			if e.Helper == "fp_add_s" {
				sawAdd = true
			}
		case "br_cond":
			sawBrCond = true
		case "raise":
			if e.Code == riscv.ExcIllegalInstruction {
				sawIllegal = true
			}
		}
	}
	if !sawMstatusRead || !sawBrCond || !sawIllegal || !sawAdd {
		t.Fatalf("expected an FS guard around the fadd.s call, log: %+v", rec.Log)
	}
}

// FSGNJ is emitted inline (no helper call) but still must be guarded.
func TestEmitFSGNJGuardsOnFS(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpFSGNJ, Rd: 1, Rs1: 2, Rs2: 3, Width: riscv.W64})

	if rec.Log[0].Kind != "const" || rec.Log[0].Val != riscv.CSRMstatus {
		t.Fatalf("expected the FS guard's mstatus CSR number first, got %+v", rec.Log[0])
	}
	if rec.Log[1].Kind != "call" || rec.Log[1].Helper != "csr_read" {
		t.Fatalf("expected the FS guard's csr_read second, got %+v", rec.Log[1])
	}
}
