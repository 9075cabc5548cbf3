package isa_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"uflarisc/isa"
)

var _ = Describe("Decoder", func() {
	var d *isa.Decoder

	BeforeEach(func() {
		d = isa.NewDecoder()
	})

	It("decodes an R_R_R instruction's fields", func() {
		// ADD rc=3, ra=1, rb=2 -> OPC=0x01 A=1 B=2 C=3
		word := uint32(0x01)<<24 | uint32(1)<<16 | uint32(2)<<8 | uint32(3)
		inst := d.Decode(word)

		Expect(inst.Op).To(Equal(isa.OpADD))
		Expect(inst.Name).To(Equal("ADD"))
		Expect(inst.Type).To(Equal(isa.TypeRRR))
		Expect(inst.A).To(Equal(uint8(1)))
		Expect(inst.B).To(Equal(uint8(2)))
		Expect(inst.C).To(Equal(uint8(3)))
	})

	It("decodes the Imm16 field as bits 23..8", func() {
		// MOVI rc=5, imm16=0x1234 -> OPC=0x25 A=0x12 B=0x34 C=5
		word := uint32(0x25)<<24 | uint32(0x12)<<16 | uint32(0x34)<<8 | uint32(5)
		inst := d.Decode(word)

		Expect(inst.Op).To(Equal(isa.OpMOVI))
		Expect(inst.Imm16).To(Equal(uint16(0x1234)))
		Expect(inst.C).To(Equal(uint8(5)))
	})

	It("decodes the Imm24 field as bits 23..0", func() {
		// J imm24=0x00ABCD -> OPC=0x16 A=0x00 B=0xAB C=0xCD
		word := uint32(0x16)<<24 | uint32(0xABCD)
		inst := d.Decode(word)

		Expect(inst.Op).To(Equal(isa.OpJ))
		Expect(inst.Imm24).To(Equal(uint32(0xABCD)))
	})

	It("decodes HALT from the all-ones word", func() {
		inst := d.Decode(0xFFFFFFFF)
		Expect(inst.Op).To(Equal(isa.OpHALT))
		Expect(inst.Type).To(Equal(isa.TypeNone))
	})

	It("decodes an unrecognised opcode as a no-op with an empty name", func() {
		word := uint32(0x99) << 24
		inst := d.Decode(word)

		Expect(inst.Name).To(BeEmpty())
		Expect(inst.Type).To(Equal(isa.TypeNop))
	})

	It("treats field extraction as zero-extended", func() {
		word := uint32(0x14)<<24 | uint32(7)<<16 | uint32(9)<<8 | uint32(200)
		inst := d.Decode(word)

		Expect(inst.Op).To(Equal(isa.OpBEQ))
		Expect(inst.A).To(Equal(uint8(7)))
		Expect(inst.B).To(Equal(uint8(9)))
		Expect(inst.C).To(Equal(uint8(200)))
	})
})
