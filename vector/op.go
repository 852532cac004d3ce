// Package vector implements the RVV runtime helper layer of spec.md
// §4.3's "Vector helpers" subsection: these are not emitted inline as IR,
// they are the precompiled helper routines the emitted `Call` IR op
// invokes by name (spec.md §6). Each helper operates directly on a guest
// vector register file snapshot handed to it by the execution engine.
package vector

// Op identifies a specific RVV element-wise helper. The decoder resolves
// one of these from a V-encoded 32-bit instruction and packs it into the
// operand tuple rather than growing riscv.Op per vector instruction, since
// every one of these shares the same vstart/vl iteration and mask-read
// machinery (see Exec in helpers.go).
type Op int

const (
	OpMvVI Op = iota // vmv.v.i
	OpMvVV           // vmv.v.v
	OpMergeVVM
	OpMergeVIM
	OpCompressVM
	OpAdcVVM
	OpAdcVIM
	OpSbcVVM
	OpMAdcVV
	OpMAdcVVM
	OpMAdcVI
	OpMAdcVIM
	OpMSbcVV
	OpMSbcVVM
	OpVID
	OpVIOTA
)
