package ir

import "fmt"

// Entry is one recorded IR operation. Only the fields relevant to the
// entry's Kind are populated; this mirrors go/models/record's tagged op
// log rather than one struct type per op, since tests mostly want to
// assert "a GotoTB(0, dest) was emitted" without caring about the exact
// Go type.
type Entry struct {
	Kind    string
	A, B    Temp
	Width   int
	Val     uint64
	Op      BinOp
	Cond    Cond
	Label   Label
	Slot    RegSlot
	Result  Temp
	Helper  string
	Args    []Temp
	Signed  bool
	MMUIdx  int
	N       int
	DestPC  uint64
	Code    uint32
	PC      uint64
	BadAddr uint64
}

func (e Entry) String() string {
	switch e.Kind {
	case "const":
		return fmt.Sprintf("t%d = const%d 0x%x", e.Result, e.Width, e.Val)
	case "mov":
		return fmt.Sprintf("t%d = mov t%d", e.Result, e.A)
	case "binop":
		return fmt.Sprintf("t%d = op%d.%d t%d, t%d", e.Result, e.Op, e.Width, e.A, e.B)
	case "sext32":
		return fmt.Sprintf("t%d = sext32 t%d", e.Result, e.A)
	case "load":
		return fmt.Sprintf("t%d = load%d(signed=%v) [t%d]@mmu%d", e.Result, e.Width, e.Signed, e.A, e.MMUIdx)
	case "store":
		return fmt.Sprintf("store%d [t%d] = t%d @mmu%d", e.Width, e.A, e.B, e.MMUIdx)
	case "read_reg":
		return fmt.Sprintf("t%d = read_reg %v", e.Result, e.Slot)
	case "write_reg":
		return fmt.Sprintf("write_reg %v = t%d", e.Slot, e.A)
	case "label":
		return fmt.Sprintf("L%d:", e.Label)
	case "br_cond":
		return fmt.Sprintf("br_cond cond%d.%d t%d, t%d -> L%d", e.Cond, e.Width, e.A, e.B, e.Label)
	case "br":
		return fmt.Sprintf("br L%d", e.Label)
	case "goto_tb":
		return fmt.Sprintf("goto_tb %d, 0x%x", e.N, e.DestPC)
	case "exit_tb":
		return "exit_tb"
	case "call":
		return fmt.Sprintf("t%d = call %s%v", e.Result, e.Helper, e.Args)
	case "raise":
		return fmt.Sprintf("raise code=%d pc=0x%x", e.Code, e.PC)
	case "raise_bad_addr":
		return fmt.Sprintf("raise code=%d pc=0x%x bad=0x%x", e.Code, e.PC, e.BadAddr)
	case "raise_bad_addr_temp":
		return fmt.Sprintf("raise code=%d pc=0x%x bad=t%d", e.Code, e.PC, e.A)
	case "raise_debug":
		return fmt.Sprintf("raise_debug pc=0x%x", e.PC)
	default:
		return e.Kind
	}
}

// Recorder is a reference Builder that appends every call to a linear log
// instead of lowering to real host code, grounded on
// go/models/mock.Usercorn's recording-fake pattern. It keeps a map of the
// temps it has handed out, but its TempLeakOK does not inspect that map and
// always reports true.
type Recorder struct {
	Log      []Entry
	nextTemp Temp
	nextLbl  Label
	live     map[Temp]bool
}

func NewRecorder() *Recorder {
	return &Recorder{live: make(map[Temp]bool)}
}

func (r *Recorder) alloc() Temp {
	t := r.nextTemp
	r.nextTemp++
	r.live[t] = true
	return t
}

func (r *Recorder) ConstI(width int, val uint64) Temp {
	t := r.alloc()
	r.Log = append(r.Log, Entry{Kind: "const", Result: t, Width: width, Val: val})
	return t
}

func (r *Recorder) Mov(src Temp) Temp {
	t := r.alloc()
	r.Log = append(r.Log, Entry{Kind: "mov", Result: t, A: src})
	return t
}

func (r *Recorder) BinOp(op BinOp, width int, a, b Temp) Temp {
	t := r.alloc()
	r.Log = append(r.Log, Entry{Kind: "binop", Result: t, Op: op, Width: width, A: a, B: b})
	return t
}

func (r *Recorder) Sext32(a Temp) Temp {
	t := r.alloc()
	r.Log = append(r.Log, Entry{Kind: "sext32", Result: t, A: a})
	return t
}

func (r *Recorder) Load(width int, signed bool, addr Temp, mmuIdx int) Temp {
	t := r.alloc()
	r.Log = append(r.Log, Entry{Kind: "load", Result: t, Width: width, Signed: signed, A: addr, MMUIdx: mmuIdx})
	return t
}

func (r *Recorder) Store(width int, addr, val Temp, mmuIdx int) {
	r.Log = append(r.Log, Entry{Kind: "store", Width: width, A: addr, B: val, MMUIdx: mmuIdx})
}

func (r *Recorder) ReadGuestReg(slot RegSlot) Temp {
	t := r.alloc()
	r.Log = append(r.Log, Entry{Kind: "read_reg", Result: t, Slot: slot})
	return t
}

func (r *Recorder) WriteGuestReg(slot RegSlot, t Temp) {
	r.Log = append(r.Log, Entry{Kind: "write_reg", Slot: slot, A: t})
	delete(r.live, t)
}

func (r *Recorder) NewLabel() Label {
	l := r.nextLbl
	r.nextLbl++
	return l
}

func (r *Recorder) SetLabel(l Label) {
	r.Log = append(r.Log, Entry{Kind: "label", Label: l})
}

func (r *Recorder) BrCond(cond Cond, width int, a, b Temp, target Label) {
	r.Log = append(r.Log, Entry{Kind: "br_cond", Cond: cond, Width: width, A: a, B: b, Label: target})
}

func (r *Recorder) Br(target Label) {
	r.Log = append(r.Log, Entry{Kind: "br", Label: target})
}

func (r *Recorder) GotoTB(n int, destPC uint64) {
	r.Log = append(r.Log, Entry{Kind: "goto_tb", N: n, DestPC: destPC})
}

func (r *Recorder) ExitTB() {
	r.Log = append(r.Log, Entry{Kind: "exit_tb"})
}

func (r *Recorder) Call(helper string, args ...Temp) Temp {
	t := r.alloc()
	r.Log = append(r.Log, Entry{Kind: "call", Result: t, Helper: helper, Args: args})
	return t
}

func (r *Recorder) RaiseException(code uint32, pc uint64) {
	r.Log = append(r.Log, Entry{Kind: "raise", Code: code, PC: pc})
}

func (r *Recorder) RaiseExceptionBadAddr(code uint32, pc, badAddr uint64) {
	r.Log = append(r.Log, Entry{Kind: "raise_bad_addr", Code: code, PC: pc, BadAddr: badAddr})
}

func (r *Recorder) RaiseExceptionBadAddrTemp(code uint32, pc uint64, badAddr Temp) {
	r.Log = append(r.Log, Entry{Kind: "raise_bad_addr_temp", Code: code, PC: pc, A: badAddr})
}

func (r *Recorder) RaiseDebugException(pc uint64) {
	r.Log = append(r.Log, Entry{Kind: "raise_debug", PC: pc})
}

// TempLeakOK always reports true for the recorder: nothing in this
// reference implementation actually frees host registers, so there is no
// leak to detect. A real backend's equivalent checks its temp allocator's
// high-water mark against what it expects to have freed by the end of the
// instruction.
func (r *Recorder) TempLeakOK() bool {
	return true
}

var _ Builder = (*Recorder)(nil)
