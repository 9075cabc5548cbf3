package exec_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"uflarisc/exec"
	"uflarisc/isa"
)

// encode packs fields per the fixed OPC|A|B|C layout.
func encode(op isa.Op, a, b, c uint8) uint32 {
	return uint32(op)<<24 | uint32(a)<<16 | uint32(b)<<8 | uint32(c)
}

// encodeConst packs a CONST-type row: op, rc, imm16.
func encodeConst(op isa.Op, rc uint8, imm16 uint16) uint32 {
	return uint32(op)<<24 | uint32(imm16)<<8 | uint32(rc)
}

// encodeJ packs a J-type row: op, imm24.
func encodeJ(op isa.Op, imm24 uint32) uint32 {
	return uint32(op)<<24 | imm24&0xFFFFFF
}

func loadAt(e *exec.Emulator, addr int, words ...uint32) {
	for i, w := range words {
		Expect(e.Memory().Write(addr+i, w)).To(Succeed())
	}
}

var _ = Describe("Emulator", func() {
	It("ADD: computes R3 = R1 + R2 and halts", func() {
		e := exec.New()
		loadAt(e, 0,
			encodeConst(isa.OpLCLL, 1, 10),
			encodeConst(isa.OpLCLL, 2, 20),
			encode(isa.OpADD, 1, 2, 3),
			exec.HaltWord,
		)
		Expect(e.Run()).To(Succeed())

		r1, _ := e.Registers().Read(1)
		r2, _ := e.Registers().Read(2)
		r3, _ := e.Registers().Read(3)
		Expect(r1).To(Equal(uint32(10)))
		Expect(r2).To(Equal(uint32(20)))
		Expect(r3).To(Equal(uint32(30)))
		Expect(e.State().Flags.Z).To(BeFalse())
		Expect(e.State().Flags.N).To(BeFalse())
		Expect(e.State().Halted).To(BeTrue())
	})

	It("LOAD/STORE: STORE Rc(addr),Ra(value) then LOAD back", func() {
		e := exec.New()
		loadAt(e, 0,
			encodeConst(isa.OpLCLL, 1, 100),
			encodeConst(isa.OpLCLL, 2, 999),
			encode(isa.OpCOPY, 1, 0, 3),
			encode(isa.OpSTORE, 2, 0, 3), // mem[R3] <- R2
			encode(isa.OpLOAD, 1, 0, 4),  // R4 <- mem[R1]
			exec.HaltWord,
		)
		Expect(e.Run()).To(Succeed())

		r4, _ := e.Registers().Read(4)
		Expect(r4).To(Equal(uint32(999)))
		memVal, _ := e.Memory().Read(100)
		Expect(memVal).To(Equal(uint32(999)))
	})

	It("unconditional jump skips an instruction", func() {
		e := exec.New()
		loadAt(e, 0,
			encodeConst(isa.OpLCLL, 1, 10), // 0
			encodeJ(isa.OpJ, 5),            // 1: jump to 5
			encodeConst(isa.OpLCLL, 2, 99), // 2: never reached
		)
		// HALT sits at the jump target, word 5.
		loadAt(e, 5, exec.HaltWord)
		Expect(e.Run()).To(Succeed())

		r1, _ := e.Registers().Read(1)
		r2, _ := e.Registers().Read(2)
		Expect(r1).To(Equal(uint32(10)))
		Expect(r2).To(Equal(uint32(0)))
	})

	It("BNE loop decrements a counter to zero", func() {
		e := exec.New()
		loadAt(e, 0,
			encodeConst(isa.OpLCLL, 1, 10), // 0: R1 = 10
			encode(isa.OpDEC, 1, 0, 1),     // 1: R1 = R1 - 1
			encode(isa.OpBNE, 1, 0, 1),     // 2: branch back to 1 while R1 != R0
			exec.HaltWord,                 // 3
		)
		Expect(e.Run()).To(Succeed())

		r1, _ := e.Registers().Read(1)
		Expect(r1).To(Equal(uint32(0)))
		Expect(e.State().Flags.Z).To(BeTrue())
	})

	It("JAL + JR subroutine call and return", func() {
		e := exec.New()
		loadAt(e, 0,
			encodeConst(isa.OpLCLL, 1, 21), // 0: R1 = 21
			encodeJ(isa.OpJAL, 5),          // 1: call subroutine at 5
			encode(isa.OpCOPY, 2, 0, 3),    // 2: R3 = R2 (after return)
			exec.HaltWord,                 // 3
		)
		loadAt(e, 5,
			encode(isa.OpADD, 1, 1, 2), // 5: R2 = R1 + R1
			encode(isa.OpJR, 0, 0, 31), // 6: return via R31
		)
		Expect(e.Run()).To(Succeed())

		r1, _ := e.Registers().Read(1)
		r2, _ := e.Registers().Read(2)
		r3, _ := e.Registers().Read(3)
		r31, _ := e.Registers().Read(31)
		Expect(r1).To(Equal(uint32(21)))
		Expect(r2).To(Equal(uint32(42)))
		Expect(r3).To(Equal(uint32(42)))
		// The link register holds the already-incremented PC at the JAL
		// instruction's own address (1) plus one, i.e. 2, per the literal
		// fetch-increment rule in the execution unit semantics.
		Expect(r31).To(Equal(uint32(2)))
	})

	It("division and modulo compose back to the dividend", func() {
		e := exec.New()
		loadAt(e, 0,
			encodeConst(isa.OpLCLL, 1, 100),
			encodeConst(isa.OpLCLL, 2, 7),
			encode(isa.OpDIV, 1, 2, 3),
			encode(isa.OpMOD, 1, 2, 4),
			encode(isa.OpMUL, 3, 2, 5),
			encode(isa.OpADD, 5, 4, 6),
			exec.HaltWord,
		)
		Expect(e.Run()).To(Succeed())

		r3, _ := e.Registers().Read(3)
		r4, _ := e.Registers().Read(4)
		r6, _ := e.Registers().Read(6)
		Expect(r3).To(Equal(uint32(14)))
		Expect(r4).To(Equal(uint32(2)))
		Expect(r6).To(Equal(uint32(100)))
	})

	It("HALT is terminal: stepping again reports Halted without change", func() {
		e := exec.New()
		loadAt(e, 0, exec.HaltWord)
		Expect(e.Run()).To(Succeed())

		result, err := e.Step()
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Halted).To(BeTrue())
	})

	It("stops with CycleLimitExceeded when no HALT is ever fetched", func() {
		e := exec.New(exec.WithMaxCycles(3))
		loadAt(e, 0,
			encode(isa.OpNOP, 0, 0, 0),
			encode(isa.OpNOP, 0, 0, 0),
			encodeJ(isa.OpJ, 0),
		)
		err := e.Run()
		Expect(err).To(HaveOccurred())

		var limitErr *exec.CycleLimitExceeded
		Expect(err).To(BeAssignableToTypeOf(limitErr))
	})

	It("treats an unrecognised opcode as a no-op", func() {
		e := exec.New()
		loadAt(e, 0,
			encode(isa.Op(0x99), 1, 2, 3),
			exec.HaltWord,
		)
		Expect(e.Run()).To(Succeed())

		r3, _ := e.Registers().Read(3)
		Expect(r3).To(Equal(uint32(0)))
	})
})
