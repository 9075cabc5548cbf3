package exec

import (
	"uflarisc/regfile"
	"uflarisc/state"
)

// ControlUnit implements the UFLA-RISC control-transfer instructions. Each
// method overwrites PC, which the caller must already have advanced past
// the fetched word before invoking it (step 1 of the fetch cycle). None of
// these touch the condition flags.
type ControlUnit struct {
	regs  *regfile.File
	state *state.State
}

// NewControlUnit creates a control unit connected to the given register
// file and processor state.
func NewControlUnit(regs *regfile.File, st *state.State) *ControlUnit {
	return &ControlUnit{regs: regs, state: st}
}

// J sets PC to the absolute 24-bit target imm24.
func (c *ControlUnit) J(imm24 uint32) error {
	return c.state.SetPC(int(imm24))
}

// Jal writes the link register with the current (already-incremented) PC,
// then sets PC to imm24.
func (c *ControlUnit) Jal(imm24 uint32) error {
	if err := c.regs.Write(regfile.Link, uint32(c.state.PC)); err != nil {
		return err
	}
	return c.state.SetPC(int(imm24))
}

// Jr sets PC to the low 16 bits of Rc.
func (c *ControlUnit) Jr(rc int) error {
	v, err := c.regs.Read(rc)
	if err != nil {
		return err
	}
	return c.state.SetPC(int(v & 0xFFFF))
}

// Beq sets PC to the absolute 8-bit target imm8 when Ra == Rb, otherwise
// leaves PC unchanged.
func (c *ControlUnit) Beq(ra, rb int, imm8 uint8) error {
	return c.branchIf(ra, rb, imm8, true)
}

// Bne sets PC to the absolute 8-bit target imm8 when Ra != Rb, otherwise
// leaves PC unchanged.
func (c *ControlUnit) Bne(ra, rb int, imm8 uint8) error {
	return c.branchIf(ra, rb, imm8, false)
}

func (c *ControlUnit) branchIf(ra, rb int, imm8 uint8, wantEqual bool) error {
	va, err := c.regs.Read(ra)
	if err != nil {
		return err
	}
	vb, err := c.regs.Read(rb)
	if err != nil {
		return err
	}
	if (va == vb) != wantEqual {
		return nil
	}
	return c.state.SetPC(int(imm8))
}
