package emit

import (
	"testing"

	"github.com/lunixbochs/rvtcg/decode"
	"github.com/lunixbochs/rvtcg/ir"
	"github.com/lunixbochs/rvtcg/riscv"
)

func TestEmitCSRRWSkipsReadWhenRdIsZero(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpCSRRW, Rd: 0, Rs1: 1, CSR: 0x300})

	for _, e := range rec.Log {
		if e.Kind == "call" && e.Helper == "csr_read" {
			t.Fatalf("CSRRW with rd=x0 must not read the CSR, log: %+v", rec.Log)
		}
	}
	sawWrite := false
	for _, e := range rec.Log {
		if e.Kind == "call" && e.Helper == "csr_write" {
			sawWrite = true
		}
	}
	if !sawWrite {
		t.Fatalf("expected a csr_write call")
	}
}

func TestEmitCSRRSSkipsWriteWhenRs1IsZero(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpCSRRS, Rd: 1, Rs1: 0, CSR: 0x300})

	for _, e := range rec.Log {
		if e.Kind == "call" && e.Helper == "csr_write" {
			t.Fatalf("CSRRS with rs1=x0 must not write the CSR, log: %+v", rec.Log)
		}
	}
}

func TestEmitCSRTerminatesTB(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpCSRRW, Rd: 1, Rs1: 2, CSR: 0x300})

	if c.State != StateBranch {
		t.Fatalf("expected StateBranch after a CSR write, got %v", c.State)
	}
	last := rec.Log[len(rec.Log)-1]
	if last.Kind != "exit_tb" {
		t.Fatalf("expected exit_tb last, got %+v", last)
	}
	sawPCWrite := false
	for _, e := range rec.Log {
		if e.Kind == "write_reg" && e.Slot == ir.PCSlot() {
			sawPCWrite = true
		}
	}
	if !sawPCWrite {
		t.Fatalf("expected the guest PC to be written before exiting, log: %+v", rec.Log)
	}
}

func TestEmitECALLRaisesMMode(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpECALL})

	if len(rec.Log) != 1 || rec.Log[0].Kind != "raise" || rec.Log[0].Code != riscv.ExcECallM {
		t.Fatalf("expected a single M-mode ecall raise, got %+v", rec.Log)
	}
	if c.State != StateStop {
		t.Fatalf("expected StateStop after ECALL")
	}
}

func TestEmitEBREAKRaisesDebug(t *testing.T) {
	rec := ir.NewRecorder()
	c := newCtx(rec)
	Emit(c, decode.Inst{Op: riscv.OpEBREAK})

	if len(rec.Log) != 1 || rec.Log[0].Kind != "raise_debug" {
		t.Fatalf("expected a single raise_debug, got %+v", rec.Log)
	}
}
