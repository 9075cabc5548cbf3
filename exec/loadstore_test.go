package exec_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"uflarisc/exec"
	"uflarisc/memory"
	"uflarisc/regfile"
)

var _ = Describe("LoadStoreUnit", func() {
	var (
		regs *regfile.File
		mem  *memory.Memory
		lsu  *exec.LoadStoreUnit
	)

	BeforeEach(func() {
		regs = regfile.New()
		mem = memory.New()
		lsu = exec.NewLoadStoreUnit(regs, mem)
	})

	It("Load reads mem[Ra] into Rc", func() {
		Expect(mem.Write(100, 999)).To(Succeed())
		Expect(regs.Write(1, 100)).To(Succeed())

		Expect(lsu.Load(4, 1)).To(Succeed())

		v, _ := regs.Read(4)
		Expect(v).To(Equal(uint32(999)))
	})

	It("Store writes Ra into mem[Rc]", func() {
		Expect(regs.Write(3, 100)).To(Succeed()) // address
		Expect(regs.Write(2, 999)).To(Succeed()) // value

		Expect(lsu.Store(3, 2)).To(Succeed())

		v, _ := mem.Read(100)
		Expect(v).To(Equal(uint32(999)))
	})

	It("propagates an out-of-range address from Load", func() {
		Expect(regs.Write(1, memory.Size)).To(Succeed())
		err := lsu.Load(2, 1)
		Expect(err).To(HaveOccurred())
	})
})
