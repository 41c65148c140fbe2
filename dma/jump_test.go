package dma

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Jump", func() {
	It("should add the immediate offset", func() {
		Expect(ImmediateJump{Offset: 3}.Next(10, 0xffff)).To(Equal(uint16(13)))
		Expect(ImmediateJump{Offset: -256}.Next(10, 0)).To(Equal(uint16(65290)))
	})

	It("should add the relative offset", func() {
		Expect(RelativeJump{Offset: -1}.Next(0, 0)).To(Equal(uint16(0xffff)))
		Expect(RelativeJump{Offset: 0x7fff}.Next(1, 0)).To(Equal(uint16(0x8000)))
	})

	It("should select the table entry by the low register bits", func() {
		j := TableJump{Entries: [4]int16{1, -2, 30, -400}}

		Expect(j.Next(1000, 0)).To(Equal(uint16(1001)))
		Expect(j.Next(1000, 1)).To(Equal(uint16(998)))
		Expect(j.Next(1000, 2)).To(Equal(uint16(1030)))
		Expect(j.Next(1000, 3)).To(Equal(uint16(600)))
		Expect(j.Next(1000, 0xd)).To(Equal(uint16(998)))
	})

	It("should not depend on register bits above bit 3 for table jumps", func() {
		j := TableJump{Entries: [4]int16{5, -7, 11, 0x7fff}}

		for low := uint64(0); low < 16; low++ {
			expected := j.Next(42, low)
			for _, high := range []uint64{0x10, 0xf0, 0xdead_0000, 1 << 63} {
				Expect(j.Next(42, high|low)).To(Equal(expected))
			}
		}
	})

	It("should replace the index with the register's low byte", func() {
		Expect(AbsoluteJump{}.Next(77, 0x05)).To(Equal(uint16(5)))
		Expect(AbsoluteJump{}.Next(77, 0x1234)).To(Equal(uint16(0x34)))
	})

	It("should branch on the comparison", func() {
		j := ConditionalJump{
			Operand:        0xcafebabe,
			EqualOffset:    4,
			NotEqualOffset: -1,
		}

		Expect(j.Next(10, 0xcafebabe)).To(Equal(uint16(14)))
		Expect(j.Next(10, 0xffff_ffff_cafe_babe)).To(Equal(uint16(14)))
		Expect(j.Next(10, 0xcafebabf)).To(Equal(uint16(9)))
	})
})
