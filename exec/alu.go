package exec

import (
	"fmt"

	"uflarisc/regfile"
	"uflarisc/state"
)

// ArithmeticFault reports a division or modulus by zero.
type ArithmeticFault struct {
	Op string
}

func (e *ArithmeticFault) Error() string {
	return fmt.Sprintf("arithmetic fault: %s by zero", e.Op)
}

// ALU implements the UFLA-RISC arithmetic and logic operations. Every
// method reads its operands from the register file, writes the result
// back, and updates the condition flags per the opcode's flag contract.
type ALU struct {
	regs  *regfile.File
	flags *state.Flags
}

// NewALU creates an ALU connected to the given register file and the
// flags register it updates.
func NewALU(regs *regfile.File, flags *state.Flags) *ALU {
	return &ALU{regs: regs, flags: flags}
}

func (a *ALU) read2(ra, rb int) (uint32, uint32, error) {
	va, err := a.regs.Read(ra)
	if err != nil {
		return 0, 0, err
	}
	vb, err := a.regs.Read(rb)
	if err != nil {
		return 0, 0, err
	}
	return va, vb, nil
}

// setNZ sets N and Z from result and leaves C and V untouched.
func (a *ALU) setNZ(result uint32) {
	a.flags.Z = result == 0
	a.flags.N = result>>31 == 1
}

// setNZCVCleared sets N and Z from result and clears C and V, the contract
// for ZEROS and the bitwise operations.
func (a *ALU) setNZCVCleared(result uint32) {
	a.setNZ(result)
	a.flags.C = false
	a.flags.V = false
}

// Add computes Rc = Ra + Rb and sets Z, N, V (signed overflow) and C
// (unsigned overflow).
func (a *ALU) Add(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va + vb
	a.setNZ(result)
	a.flags.C = result < va
	signA, signB, signR := va>>31, vb>>31, result>>31
	a.flags.V = signA == signB && signA != signR
	return a.regs.Write(rc, result)
}

// Sub computes Rc = Ra - Rb and sets Z, N, V (signed overflow) and C
// (borrow: set when Ra < Rb unsigned).
func (a *ALU) Sub(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va - vb
	a.setNZ(result)
	a.flags.C = va < vb
	signA, signB, signR := va>>31, vb>>31, result>>31
	a.flags.V = signA != signB && signB == signR
	return a.regs.Write(rc, result)
}

// Zeros sets Rc = 0 and clears all four flags except Z, which is forced set.
func (a *ALU) Zeros(rc int) error {
	a.flags.Z = true
	a.flags.N = false
	a.flags.C = false
	a.flags.V = false
	return a.regs.Write(rc, 0)
}

// Xor computes Rc = Ra ^ Rb, sets Z/N, clears C/V.
func (a *ALU) Xor(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va ^ vb
	a.setNZCVCleared(result)
	return a.regs.Write(rc, result)
}

// Or computes Rc = Ra | Rb, sets Z/N, clears C/V.
func (a *ALU) Or(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va | vb
	a.setNZCVCleared(result)
	return a.regs.Write(rc, result)
}

// And computes Rc = Ra & Rb, sets Z/N, clears C/V.
func (a *ALU) And(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va & vb
	a.setNZCVCleared(result)
	return a.regs.Write(rc, result)
}

// Not computes Rc = ^Ra and sets Z/N.
func (a *ALU) Not(rc, ra int) error {
	va, err := a.regs.Read(ra)
	if err != nil {
		return err
	}
	result := ^va
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Notbit computes Rc = ^(Ra & Rb) and sets Z/N.
func (a *ALU) Notbit(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := ^(va & vb)
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Asl computes Rc = Ra << (Rb & 0x1F) and sets Z/N.
func (a *ALU) Asl(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va << (vb & 0x1F)
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Asr computes Rc = Ra >> (Rb & 0x1F) with sign extension, and sets Z/N.
func (a *ALU) Asr(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := uint32(int32(va) >> (vb & 0x1F))
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Lsl computes Rc = Ra << (Rb & 0x1F) and sets Z/N. LSL and ASL share the
// same bit pattern; they are distinguished only by mnemonic.
func (a *ALU) Lsl(rc, ra, rb int) error {
	return a.Asl(rc, ra, rb)
}

// Lsr computes Rc = Ra >> (Rb & 0x1F), logical (zero-filling), and sets Z/N.
func (a *ALU) Lsr(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va >> (vb & 0x1F)
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Copy computes Rc = Ra and sets Z/N.
func (a *ALU) Copy(rc, ra int) error {
	va, err := a.regs.Read(ra)
	if err != nil {
		return err
	}
	a.setNZ(va)
	return a.regs.Write(rc, va)
}

// Mul computes Rc = (Ra * Rb) mod 2^32 and sets Z/N.
func (a *ALU) Mul(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	result := va * vb
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Div computes Rc = Ra / Rb as a signed division truncated toward zero,
// and sets Z/N. Division by zero is an ArithmeticFault.
func (a *ALU) Div(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	if vb == 0 {
		return &ArithmeticFault{Op: "division"}
	}
	result := uint32(int32(va) / int32(vb))
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Mod computes Rc = Ra % Rb as a signed remainder with the same sign as
// the dividend, and sets Z/N. Modulus by zero is an ArithmeticFault.
func (a *ALU) Mod(rc, ra, rb int) error {
	va, vb, err := a.read2(ra, rb)
	if err != nil {
		return err
	}
	if vb == 0 {
		return &ArithmeticFault{Op: "modulus"}
	}
	result := uint32(int32(va) % int32(vb))
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Inc computes Rc = Ra + 1 and sets Z/N.
func (a *ALU) Inc(rc, ra int) error {
	va, err := a.regs.Read(ra)
	if err != nil {
		return err
	}
	result := va + 1
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Dec computes Rc = Ra - 1 and sets Z/N.
func (a *ALU) Dec(rc, ra int) error {
	va, err := a.regs.Read(ra)
	if err != nil {
		return err
	}
	result := va - 1
	a.setNZ(result)
	return a.regs.Write(rc, result)
}

// Lclh writes imm16 into Rc bits 31..16, preserving bits 15..0. Flags are
// unchanged.
func (a *ALU) Lclh(rc int, imm16 uint16) error {
	cur, err := a.regs.Read(rc)
	if err != nil {
		return err
	}
	result := uint32(imm16)<<16 | cur&0xFFFF
	return a.regs.Write(rc, result)
}

// Lcll writes imm16 into Rc bits 15..0, preserving bits 31..16. Flags are
// unchanged.
func (a *ALU) Lcll(rc int, imm16 uint16) error {
	cur, err := a.regs.Read(rc)
	if err != nil {
		return err
	}
	result := cur&0xFFFF0000 | uint32(imm16)
	return a.regs.Write(rc, result)
}

// Movi writes imm16 into Rc, clearing bits 31..16. Flags are unchanged.
func (a *ALU) Movi(rc int, imm16 uint16) error {
	return a.regs.Write(rc, uint32(imm16))
}
