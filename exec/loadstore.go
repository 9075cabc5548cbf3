package exec

import (
	"uflarisc/memory"
	"uflarisc/regfile"
)

// LoadStoreUnit implements the two UFLA-RISC memory instructions. Neither
// touches the condition flags.
type LoadStoreUnit struct {
	regs *regfile.File
	mem  *memory.Memory
}

// NewLoadStoreUnit creates a load/store unit connected to the given
// register file and memory.
func NewLoadStoreUnit(regs *regfile.File, mem *memory.Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regs: regs, mem: mem}
}

// Load performs Rc <- mem[Ra]: Ra holds the address, Rc receives the value.
func (l *LoadStoreUnit) Load(rc, ra int) error {
	addr, err := l.regs.Read(ra)
	if err != nil {
		return err
	}
	v, err := l.mem.Read(int(addr))
	if err != nil {
		return err
	}
	return l.regs.Write(rc, v)
}

// Store performs mem[Rc] <- Ra: Rc holds the address, Ra holds the value.
func (l *LoadStoreUnit) Store(rc, ra int) error {
	addr, err := l.regs.Read(rc)
	if err != nil {
		return err
	}
	v, err := l.regs.Read(ra)
	if err != nil {
		return err
	}
	return l.mem.Write(int(addr), v)
}
