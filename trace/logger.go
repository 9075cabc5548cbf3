// Package trace implements the execution unit's cycle logger: it observes
// each fetch-decode-execute step and records what changed in the register
// file, flags, and memory, the way the original state logger diffs
// consecutive snapshots.
package trace

import (
	"fmt"
	"io"
	"strings"

	"uflarisc/exec"
	"uflarisc/isa"
	"uflarisc/memory"
	"uflarisc/regfile"
	"uflarisc/state"
)

// RegisterChange records one register's value before and after a cycle.
type RegisterChange struct {
	Reg    int
	Before uint32
	After  uint32
}

// FlagChange records one condition flag's value before and after a cycle.
type FlagChange struct {
	Flag   string
	Before bool
	After  bool
}

// MemoryChange records one memory word's value before and after a cycle.
type MemoryChange struct {
	Address int
	Before  uint32
	After   uint32
}

// CycleRecord is the logger's output for a single executed cycle.
type CycleRecord struct {
	Cycle            int
	PCBefore         int
	PCAfter          int
	IR               uint32
	Instruction      string
	RegistersChanged []RegisterChange
	FlagsChanged     []FlagChange
	MemoryChanged    []MemoryChange
}

// Summary is a final report of an execution run.
type Summary struct {
	TotalCycles int
	FinalPC     int
	FinalFlags  state.Flags
}

// snapshot is the logger's prior-state bookkeeping, compared against the
// current state on every Observe call.
type snapshot struct {
	regs  [regfile.Count]uint32
	flags state.Flags
	mem   map[int]uint32
}

// Logger implements exec.Observer, accumulating one CycleRecord per
// executed step.
type Logger struct {
	prev    snapshot
	cycle   int
	records []CycleRecord
}

// New creates a Logger. CaptureInitial must be called once, before the
// first Step, so the first recorded cycle diffs against the program's
// starting state rather than the zero value.
func New() *Logger {
	return &Logger{prev: snapshot{mem: make(map[int]uint32)}}
}

// CaptureInitial snapshots the state of regs and st before any
// instruction has executed.
func (l *Logger) CaptureInitial(regs *regfile.File, st *state.State) {
	for i := 0; i < regfile.Count; i++ {
		l.prev.regs[i], _ = regs.Read(i)
	}
	l.prev.flags = st.Flags
	l.prev.mem = make(map[int]uint32)
	l.cycle = 0
}

// Observe implements exec.Observer: it diffs the post-step state against
// the previous snapshot and appends one CycleRecord.
func (l *Logger) Observe(result exec.StepResult, regs *regfile.File, mem *memory.Memory, st *state.State) {
	l.cycle++

	record := CycleRecord{
		Cycle:       l.cycle,
		PCBefore:    result.PCBefore,
		PCAfter:     result.PCAfter,
		IR:          result.IR,
		Instruction: formatInstruction(result.Inst, result.Halted),
	}

	for i := 0; i < regfile.Count; i++ {
		current, _ := regs.Read(i)
		if current != l.prev.regs[i] {
			record.RegistersChanged = append(record.RegistersChanged, RegisterChange{
				Reg: i, Before: l.prev.regs[i], After: current,
			})
			l.prev.regs[i] = current
		}
	}

	current := st.Flags
	for _, fc := range []struct {
		name          string
		before, after bool
	}{
		{"N", l.prev.flags.N, current.N},
		{"Z", l.prev.flags.Z, current.Z},
		{"C", l.prev.flags.C, current.C},
		{"V", l.prev.flags.V, current.V},
	} {
		if fc.before != fc.after {
			record.FlagsChanged = append(record.FlagsChanged, FlagChange{
				Flag: fc.name, Before: fc.before, After: fc.after,
			})
		}
	}
	l.prev.flags = current

	for _, addr := range mem.ModifiedAddresses() {
		word, _ := mem.Read(addr)
		if prior, seen := l.prev.mem[addr]; !seen || prior != word {
			record.MemoryChanged = append(record.MemoryChanged, MemoryChange{
				Address: addr, Before: prior, After: word,
			})
			l.prev.mem[addr] = word
		}
	}

	l.records = append(l.records, record)
}

// Records returns every cycle recorded so far.
func (l *Logger) Records() []CycleRecord { return l.records }

// Summary reports the run's final PC, flags, and cycle count.
func (l *Logger) Summary(st *state.State) Summary {
	return Summary{
		TotalCycles: l.cycle,
		FinalPC:     st.PC,
		FinalFlags:  st.Flags,
	}
}

// formatInstruction renders a human-readable mnemonic line for a decoded
// instruction, matching the written operand forms of §4.D.
func formatInstruction(inst *isa.Instruction, halted bool) string {
	if inst == nil {
		if halted {
			return "HALT"
		}
		return ""
	}
	name := inst.Name
	if name == "" {
		name = fmt.Sprintf("UNKNOWN(0x%02X)", uint8(inst.Op))
	}

	switch inst.Type {
	case isa.TypeRRR:
		return fmt.Sprintf("%s R%d, R%d, R%d", name, inst.C, inst.A, inst.B)
	case isa.TypeRR:
		return fmt.Sprintf("%s R%d, R%d", name, inst.C, inst.A)
	case isa.TypeR:
		return fmt.Sprintf("%s R%d", name, inst.C)
	case isa.TypeConst:
		return fmt.Sprintf("%s R%d, %d", name, inst.C, inst.Imm16)
	case isa.TypeBranch:
		return fmt.Sprintf("%s R%d, R%d, %d", name, inst.A, inst.B, inst.C)
	case isa.TypeJ:
		return fmt.Sprintf("%s %d", name, inst.Imm24)
	case isa.TypeNone:
		return "HALT"
	case isa.TypeNop:
		return "NOP"
	default:
		return name
	}
}

// WriteTo renders every recorded cycle as a human-readable log, matching
// the original logger's section-per-cycle text report, followed by a
// total-cycles trailer.
func (l *Logger) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	for _, r := range l.records {
		fmt.Fprintf(&b, "\n%s\n", rule)
		fmt.Fprintf(&b, "CYCLE %d\n", r.Cycle)
		fmt.Fprintf(&b, "%s\n", rule)
		fmt.Fprintf(&b, "PC: %d -> %d\n", r.PCBefore, r.PCAfter)
		fmt.Fprintf(&b, "IR: 0x%08X (%032b)\n", r.IR, r.IR)
		fmt.Fprintf(&b, "Instruction: %s\n", r.Instruction)

		if len(r.RegistersChanged) > 0 {
			fmt.Fprintf(&b, "\n--- Registers changed ---\n")
			for _, rc := range r.RegistersChanged {
				fmt.Fprintf(&b, "  R%d: %d -> %d\n", rc.Reg, rc.Before, rc.After)
			}
		}
		if len(r.FlagsChanged) > 0 {
			fmt.Fprintf(&b, "\n--- Flags changed ---\n")
			for _, fc := range r.FlagsChanged {
				fmt.Fprintf(&b, "  %s: %t -> %t\n", fc.Flag, fc.Before, fc.After)
			}
		}
		if len(r.MemoryChanged) > 0 {
			fmt.Fprintf(&b, "\n--- Memory changed ---\n")
			for _, mc := range r.MemoryChanged {
				fmt.Fprintf(&b, "  MEM[%d]: %d -> %d\n", mc.Address, mc.Before, mc.After)
			}
		}
		if len(r.RegistersChanged) == 0 && len(r.FlagsChanged) == 0 && len(r.MemoryChanged) == 0 {
			fmt.Fprintf(&b, "\n(no state change)\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\nTOTAL CYCLES: %d\n%s\n", rule, l.cycle, rule)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
