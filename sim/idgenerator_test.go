package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	AfterEach(func() {
		UseSequentialIDGenerator()
	})

	It("should count from 1 after switching to sequential ids", func() {
		UseSequentialIDGenerator()

		g := GetIDGenerator()
		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should generate unique ids in parallel mode", func() {
		UseParallelIDGenerator()

		g := GetIDGenerator()
		a, b := g.Generate(), g.Generate()

		Expect(a).To(HaveLen(20))
		Expect(a).NotTo(Equal(b))
	})
})
