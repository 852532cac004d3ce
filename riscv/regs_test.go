package riscv

import "testing"

// t9/t10 do not exist in the RISC-V ABI, but the same natural-sort
// property applies to s9/s10/s11: a lexicographic sort would put "s10"
// before "s2", which is not what a human reads as an increasing register
// sequence.
func TestDumpGPRsNaturalSort(t *testing.T) {
	var gpr [32]uint64
	gpr[X2] = 0x1000 // sp
	gpr[X28] = 7     // t3

	out := DumpGPRs(gpr)
	if len(out) != 32 {
		t.Fatalf("expected 32 entries, got %d", len(out))
	}

	idx := func(name string) int {
		for i, r := range out {
			if r.Name == name {
				return i
			}
		}
		t.Fatalf("register %q not found in dump", name)
		return -1
	}
	if idx("s2") > idx("s10") {
		t.Fatalf("expected natural sort to place s2 before s10")
	}

	for _, r := range out {
		switch r.Name {
		case "sp":
			if r.Val != 0x1000 {
				t.Fatalf("sp: got 0x%x want 0x1000", r.Val)
			}
		case "t3":
			if r.Val != 7 {
				t.Fatalf("t3: got %d want 7", r.Val)
			}
		}
	}
}
