package riscv

import (
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
)

// GPR is register x0 (hard-wired zero) through x31.
const (
	X0 = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
	X31
)

// ABI names, in x0..x31 order, matching the calling-convention names used
// throughout the RISC-V ELF psABI (the same table go-delve/delve's
// regnum.RISCV64ToName encodes by number).
var GPRAbiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// FPRAbiNames are the f0..f31 ABI names.
var FPRAbiNames = [32]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1",
	"fa0", "fa1", "fa2", "fa3", "fa4", "fa5", "fa6", "fa7",
	"fs2", "fs3", "fs4", "fs5", "fs6", "fs7", "fs8", "fs9", "fs10", "fs11",
	"ft8", "ft9", "ft10", "ft11",
}

// RegDump is a naturally-sorted (s2 before s10) name/value pair,
// used only by human-facing tooling (the CLI's -dump-regs mode); the
// emitter and decoder never consult it. Mirrors go/models/arch.go's
// regList/RegDump, whose natural sort keeps "t9" ahead of "t10" the way a
// person expects rather than lexicographically.
type RegDump struct {
	Name string
	Val  uint64
}

type regDumpList []RegDump

func (r regDumpList) Len() int           { return len(r) }
func (r regDumpList) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }
func (r regDumpList) Less(i, j int) bool { return sortorder.NaturalLess(r[i].Name, r[j].Name) }

// DumpGPRs returns the 32 general registers as sorted name/value pairs.
func DumpGPRs(gpr [32]uint64) []RegDump {
	out := make(regDumpList, 32)
	for i := 0; i < 32; i++ {
		out[i] = RegDump{GPRAbiNames[i], gpr[i]}
	}
	sort.Sort(out)
	return out
}

// Regs is the guest general-purpose and floating-point register file, laid
// out the way QEMU's CPURISCVState keeps gpr[32]/fpr[32]: fixed arrays, not
// a name-keyed map. x0 has no physical storage requirement architecturally,
// but is kept as array slot 0 for simple indexing; every read/write path
// that reaches this array goes through the zero-register contract in
// package emit instead of relying on slot 0 staying zero.
type Regs struct {
	GPR [32]uint64
	FPR [32]uint64
	PC  uint64

	// LoadRes is the LR/SC reservation address; present per spec.md's data
	// model but never consulted for atomicity (atomics lower to plain
	// load/store sequences, see emit/atomic.go).
	LoadRes uint64
}
