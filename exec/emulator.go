// Package exec implements the UFLA-RISC fetch-decode-execute cycle: the
// ALU, control-transfer, and load/store units, wired together by an
// Emulator that owns the memory, register file, and processor state for
// the duration of a run.
package exec

import (
	"fmt"

	"uflarisc/isa"
	"uflarisc/memory"
	"uflarisc/regfile"
	"uflarisc/state"
)

// DefaultMaxCycles is the safety ceiling on step count applied when no
// WithMaxCycles option is given.
const DefaultMaxCycles = 5000

// HaltWord is the instruction word that halts the machine, decoded before
// the operand fields are even extracted.
const HaltWord uint32 = 0xFFFFFFFF

// CycleLimitExceeded reports that a run was stopped by the safety ceiling
// on step count rather than an explicit HALT.
type CycleLimitExceeded struct {
	Limit uint64
}

func (e *CycleLimitExceeded) Error() string {
	return fmt.Sprintf("cycle limit exceeded: %d steps without a HALT", e.Limit)
}

// StepResult reports the outcome of a single fetch-decode-execute cycle.
type StepResult struct {
	PCBefore int
	PCAfter  int
	IR       uint32
	Inst     *isa.Instruction
	Halted   bool
}

// Observer receives a callback after every successfully executed step,
// with a read-only view of the resulting processor state. The trace
// package implements this to drive its cycle log.
type Observer interface {
	Observe(result StepResult, regs *regfile.File, mem *memory.Memory, st *state.State)
}

// Emulator owns the memory, register file, and processor state for a run
// and drives the fetch-decode-execute loop described by the execution
// unit's opcode semantics.
type Emulator struct {
	regs  *regfile.File
	mem   *memory.Memory
	st    *state.State
	dec   *isa.Decoder
	alu   *ALU
	lsu   *LoadStoreUnit
	ctrl  *ControlUnit

	maxCycles  uint64
	cycleCount uint64
	observer   Observer
}

// Option configures an Emulator at construction time.
type Option func(*Emulator)

// WithMaxCycles overrides the default safety ceiling on step count. A
// value of 0 means no ceiling.
func WithMaxCycles(limit uint64) Option {
	return func(e *Emulator) { e.maxCycles = limit }
}

// WithObserver registers an Observer invoked after every step. The trace
// package's logger is the canonical observer.
func WithObserver(o Observer) Option {
	return func(e *Emulator) { e.observer = o }
}

// New creates an Emulator with a zeroed memory, register file, and
// processor state.
func New(opts ...Option) *Emulator {
	e := &Emulator{
		regs:      regfile.New(),
		mem:       memory.New(),
		st:        state.New(),
		dec:       isa.NewDecoder(),
		maxCycles: DefaultMaxCycles,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.alu = NewALU(e.regs, &e.st.Flags)
	e.lsu = NewLoadStoreUnit(e.regs, e.mem)
	e.ctrl = NewControlUnit(e.regs, e.st)
	return e
}

// Registers returns the emulator's register file.
func (e *Emulator) Registers() *regfile.File { return e.regs }

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *memory.Memory { return e.mem }

// State returns the emulator's processor state.
func (e *Emulator) State() *state.State { return e.st }

// CycleCount returns the number of instructions executed since the last
// Reset. The step that fetches the HALT word is not counted.
func (e *Emulator) CycleCount() uint64 { return e.cycleCount }

// Reset zeroes memory, registers, and processor state, and clears the
// cycle count.
func (e *Emulator) Reset() {
	e.regs.Reset()
	e.mem.Reset()
	e.st.Reset()
	e.cycleCount = 0
}

// SeedPC sets the initial program counter, as done by the loader after
// populating memory.
func (e *Emulator) SeedPC(pc int) error {
	return e.st.SetPC(pc)
}

// Step executes one fetch-decode-execute cycle. Once the machine has
// halted, Step changes no state and returns a result with Halted set.
func (e *Emulator) Step() (StepResult, error) {
	if e.st.Halted {
		return StepResult{Halted: true}, nil
	}
	if e.maxCycles > 0 && e.cycleCount >= e.maxCycles {
		e.st.Halt()
		return StepResult{Halted: true}, &CycleLimitExceeded{Limit: e.maxCycles}
	}

	pcBefore := e.st.PC
	word, err := e.mem.Read(e.st.PC)
	if err != nil {
		return StepResult{}, err
	}
	e.st.IR = word
	if err := e.st.IncrPC(1); err != nil {
		return StepResult{}, err
	}

	if word == HaltWord {
		e.st.Halt()
		result := StepResult{PCBefore: pcBefore, PCAfter: e.st.PC, IR: word, Halted: true}
		e.notify(result)
		return result, nil
	}

	inst := e.dec.Decode(word)
	if err := e.dispatch(inst); err != nil {
		return StepResult{}, err
	}

	e.cycleCount++
	result := StepResult{PCBefore: pcBefore, PCAfter: e.st.PC, IR: word, Inst: inst}
	e.notify(result)
	return result, nil
}

func (e *Emulator) notify(result StepResult) {
	if e.observer != nil {
		e.observer.Observe(result, e.regs, e.mem, e.st)
	}
}

// Run steps the emulator until it halts or an error occurs.
func (e *Emulator) Run() error {
	for {
		result, err := e.Step()
		if err != nil {
			return err
		}
		if result.Halted {
			return nil
		}
	}
}

// dispatch performs the side effects of one decoded instruction. Per the
// tolerated-anomalies rule, an opcode absent from the table (Type
// TypeNop with no name) and the explicit NOP opcode are both no-ops.
func (e *Emulator) dispatch(inst *isa.Instruction) error {
	ra, rb, rc := int(inst.A), int(inst.B), int(inst.C)

	switch inst.Op {
	case isa.OpADD:
		return e.alu.Add(rc, ra, rb)
	case isa.OpSUB:
		return e.alu.Sub(rc, ra, rb)
	case isa.OpZEROS:
		return e.alu.Zeros(rc)
	case isa.OpXOR:
		return e.alu.Xor(rc, ra, rb)
	case isa.OpOR:
		return e.alu.Or(rc, ra, rb)
	case isa.OpNOT:
		return e.alu.Not(rc, ra)
	case isa.OpAND:
		return e.alu.And(rc, ra, rb)
	case isa.OpASL:
		return e.alu.Asl(rc, ra, rb)
	case isa.OpASR:
		return e.alu.Asr(rc, ra, rb)
	case isa.OpLSL:
		return e.alu.Lsl(rc, ra, rb)
	case isa.OpLSR:
		return e.alu.Lsr(rc, ra, rb)
	case isa.OpCOPY:
		return e.alu.Copy(rc, ra)
	case isa.OpLCLH:
		return e.alu.Lclh(rc, inst.Imm16)
	case isa.OpLCLL:
		return e.alu.Lcll(rc, inst.Imm16)
	case isa.OpLOAD:
		return e.lsu.Load(rc, ra)
	case isa.OpSTORE:
		return e.lsu.Store(rc, ra)
	case isa.OpJAL:
		return e.ctrl.Jal(inst.Imm24)
	case isa.OpJR:
		return e.ctrl.Jr(rc)
	case isa.OpBEQ:
		return e.ctrl.Beq(ra, rb, inst.C)
	case isa.OpBNE:
		return e.ctrl.Bne(ra, rb, inst.C)
	case isa.OpJ:
		return e.ctrl.J(inst.Imm24)
	case isa.OpMUL:
		return e.alu.Mul(rc, ra, rb)
	case isa.OpDIV:
		return e.alu.Div(rc, ra, rb)
	case isa.OpMOD:
		return e.alu.Mod(rc, ra, rb)
	case isa.OpINC:
		return e.alu.Inc(rc, ra)
	case isa.OpDEC:
		return e.alu.Dec(rc, ra)
	case isa.OpMOVI:
		return e.alu.Movi(rc, inst.Imm16)
	case isa.OpNOTBIT:
		return e.alu.Notbit(rc, ra, rb)
	case isa.OpNOP:
		return nil
	default:
		// Unrecognised opcode: tolerated as a no-op.
		return nil
	}
}
