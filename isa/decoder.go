package isa

// Instruction is a decoded UFLA-RISC instruction: the opcode plus every
// field extracted from the 32-bit word, zero-extended per the fixed
// OPC|A|B|C layout. Only the fields relevant to the instruction's Type are
// meaningful; the rest are simply the raw field bits.
type Instruction struct {
	Raw  uint32
	Op   Op
	Name string
	Type Type

	A uint8 // bits 23..16
	B uint8 // bits 15..8
	C uint8 // bits 7..0

	Imm16 uint16 // bits 23..8, zero-extended
	Imm24 uint32 // bits 23..0, zero-extended
}

// Decoder extracts instruction fields from a raw 32-bit word.
type Decoder struct{}

// NewDecoder returns a decoder. It holds no state: decoding is a pure
// function of the instruction word.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode extracts the opcode and every field from word. An opcode absent
// from the table decodes with Type TypeNop and an empty Name; the
// execution unit treats this as a no-op per the tolerated-anomalies rule.
func (d *Decoder) Decode(word uint32) *Instruction {
	op := Op(word >> 24 & 0xFF)
	a := uint8(word >> 16 & 0xFF)
	b := uint8(word >> 8 & 0xFF)
	c := uint8(word & 0xFF)

	inst := &Instruction{
		Raw:   word,
		Op:    op,
		A:     a,
		B:     b,
		C:     c,
		Imm16: uint16(word >> 8 & 0xFFFF),
		Imm24: word & 0xFFFFFF,
	}

	if name, typ, ok := Lookup(op); ok {
		inst.Name = name
		inst.Type = typ
	} else {
		inst.Type = TypeNop
	}

	return inst
}
