// Package regfile provides the UFLA-RISC general-purpose register file.
package regfile

import "fmt"

// Count is the number of general-purpose registers.
const Count = 32

// WordMask masks a value to 32 bits.
const WordMask = 0xFFFFFFFF

// Link is the conventional link register written by JAL and read back by
// JR-style return sequences. Register 0 is the architectural zero register.
const Link = 31

// OutOfRangeError reports an access to a register index outside [0, Count).
type OutOfRangeError struct {
	Index int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("register index out of range: %d (valid 0..%d)", e.Index, Count-1)
}

// File holds the 32 general-purpose 32-bit registers. Register 0 is
// hard-wired to zero: Read always returns 0 for it and Write silently
// discards the value.
type File struct {
	regs [Count]uint32
}

// New creates a zeroed register file.
func New() *File {
	return &File{}
}

// Read returns the value of register i. Register 0 always reads as 0.
func (f *File) Read(i int) (uint32, error) {
	if i < 0 || i >= Count {
		return 0, &OutOfRangeError{Index: i}
	}
	if i == 0 {
		return 0, nil
	}
	return f.regs[i], nil
}

// Write stores v into register i, masked to 32 bits. Writes to register 0
// are silently discarded per the architectural zero-register convention.
func (f *File) Write(i int, v uint32) error {
	if i < 0 || i >= Count {
		return &OutOfRangeError{Index: i}
	}
	if i == 0 {
		return nil
	}
	f.regs[i] = v & WordMask
	return nil
}

// Reset zeroes every register.
func (f *File) Reset() {
	f.regs = [Count]uint32{}
}

// Snapshot returns a copy of all 32 register values, suitable for diffing by
// the trace package.
func (f *File) Snapshot() [Count]uint32 {
	return f.regs
}

// RegisterDump is one row of a register dump: the unsigned value together
// with its two's-complement signed interpretation.
type RegisterDump struct {
	Index    int
	Unsigned uint32
	Signed   int32
}

// Dump returns the full register file as (index, unsigned, signed) triples,
// mirroring the original prototype's dump_registers.
func (f *File) Dump() [Count]RegisterDump {
	var out [Count]RegisterDump
	for i := 0; i < Count; i++ {
		v, _ := f.Read(i)
		out[i] = RegisterDump{Index: i, Unsigned: v, Signed: int32(v)}
	}
	return out
}
