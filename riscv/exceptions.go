package riscv

// Exception codes, a subset of the RISC-V privileged spec's mcause
// encoding relevant to this frontend (spec.md §7).
const (
	ExcInstrAddrMisaligned = 0
	ExcIllegalInstruction  = 2
	ExcBreakpoint          = 3
	ExcLoadAddrMisaligned  = 4
	ExcStoreAddrMisaligned = 6
	ExcECallU              = 8
	ExcECallS              = 9
	ExcECallM              = 11
)

// mstatus CSR number and its FS (floating-point unit state) field, used by
// the FP-op and FP-load/store mstatus.FS guard (spec.md §4.3).
const (
	CSRMstatus = 0x300
	MstatusFS  = 0x6000 // bits [14:13]: 0 = Off (FPU disabled)
)
