package dma

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Descriptor", func() {
	It("should reject descriptors that are not owned", func() {
		words := [8]uint64{0x7fff_ffff_ffff_ffff, 1, 2, 3, 4, 5, 6, 7}

		d, err := Decode(words)

		Expect(err).To(MatchError(ErrNotOwned))
		Expect(d).To(BeNil())
	})

	It("should decode a get descriptor", func() {
		words := [8]uint64{
			1<<63 | 1<<61 | 1<<60 | 1<<57 | 3<<55 | 9<<50 | 1<<49,
			0x1234_5678 | 0xffc<<32 | 1<<49 | 5<<44,
			0xffffe0 | 0x0ff<<24 | 0x10<<36 | 3<<52,
			0x123 | 5<<13 | 7<<26 | 8<<39 | 2<<47 | 1<<56,
			0x0403_0201 | 0x0807_0605<<32,
			0x0c0b_0a09 | 0x100f_0e0d<<32,
			0xcafe_babe << 32,
			0x0002<<32 | 0xfffe<<48,
		}

		d, err := Decode(words)

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Kind()).To(Equal(KindGet))
		Expect(d.InterruptOnComplete).To(BeTrue())
		Expect(d.StopAfter).To(BeFalse())
		Expect(d.PresyncRequired).To(BeFalse())
		Expect(d.PostsyncRequired).To(BeTrue())
		Expect(d.JumpRegister).To(Equal(9))
		Expect(d.Jump).To(Equal(ConditionalJump{
			Operand:        0xcafebabe,
			EqualOffset:    2,
			NotEqualOffset: -2,
		}))

		body := d.Body.(*GetBody)
		Expect(body.Wide).To(BeTrue())
		Expect(body.Memory).To(Equal(MemorySide{
			Base:         0x12345678,
			StrideX:      -2,
			StrideY:      -4,
			CountX:       0x10,
			CountY:       3,
			BaseRegister: 5,
		}))
		Expect(body.CP2).To(Equal(CP2Side{
			Base:         0x123,
			StrideX:      5,
			StrideY:      7,
			CountX:       8,
			CountY:       2,
			ReverseY:     true,
			BaseRegister: -1,
		}))
		Expect(body.Planes).To(Equal([NumPlanes]Plane{
			{Start: 1, StrideX: 2, CountX: 3, StrideY: 4},
			{Start: 5, StrideX: 6, CountX: 7, StrideY: 8},
			{Start: 9, StrideX: 10, CountX: 11, StrideY: 12},
			{Start: 13, StrideX: 14, CountX: 15, StrideY: 16},
		}))
	})

	It("should decode a put descriptor", func() {
		words := [8]uint64{
			1<<63 | 1<<59 | 1<<58 | 1<<55 | 7<<37 | 0x00ff<<16 | 0xf0f0,
			0, 0, 1<<62 | 3<<57 | 1<<55,
			0, 0,
			0x0004_0003 | 0x1111_2222_0000_0000,
			0xffff_fffe,
		}

		d, err := Decode(words)

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Kind()).To(Equal(KindPut))
		Expect(d.StopAfter).To(BeTrue())
		Expect(d.PresyncRequired).To(BeTrue())
		Expect(d.Jump).To(Equal(TableJump{Entries: [4]int16{3, 4, -2, -1}}))

		body := d.Body.(*PutBody)
		Expect(body.FlowDepth).To(Equal(NumPlanes))
		Expect(body.Mask).To(Equal(uint16(0xf0f0)))
		Expect(body.MaskEnd).To(Equal(uint16(0x00ff)))
		Expect(body.Memory.BaseRegister).To(Equal(-1))
		Expect(body.CP2.BaseRegister).To(Equal(3))
		Expect(body.CP2.ReverseX).To(BeTrue())
	})

	It("should sign extend the immediate jump", func() {
		words := [8]uint64{1<<63 | 0x1ff<<40}

		d, err := Decode(words)

		Expect(err).NotTo(HaveOccurred())
		Expect(d.Jump).To(Equal(ImmediateJump{Offset: -1}))
	})

	It("should decode jump descriptors from words 1 to 3", func() {
		relative := [8]uint64{1<<63 | 1<<62, 0xfff0}
		d, err := Decode(relative)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Kind()).To(Equal(KindJump))
		Expect(d.Jump).To(Equal(RelativeJump{Offset: -16}))

		table := [8]uint64{1<<63 | 1<<62 | 1<<55, 0, 0x0002_0001, 0x0004_0003}
		d, err = Decode(table)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Jump).To(Equal(TableJump{Entries: [4]int16{1, 2, 3, 4}}))

		conditional := [8]uint64{
			1<<63 | 1<<62 | 3<<55 | 4<<50,
			0,
			0x55 << 32,
			0x0010<<32 | 0x0020<<48,
		}
		d, err = Decode(conditional)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.JumpRegister).To(Equal(4))
		Expect(d.Jump).To(Equal(ConditionalJump{
			Operand:        0x55,
			EqualOffset:    0x10,
			NotEqualOffset: 0x20,
		}))
	})

	It("should encode what it decodes", func() {
		d := &Descriptor{
			InterruptOnComplete: true,
			PresyncRequired:     true,
			JumpRegister:        17,
			Jump:                ImmediateJump{Offset: -100},
			Body: &PutBody{
				Transfer: Transfer{
					Memory: MemorySide{
						Base:         0x8000,
						StrideX:      -48,
						StrideY:      0x7ffff,
						CountX:       0xffff,
						CountY:       0xfff,
						BaseRegister: 31,
					},
					CP2: CP2Side{
						Base:         0x1fff,
						StrideX:      0x1000,
						StrideY:      1,
						CountX:       255,
						CountY:       1,
						ReverseX:     true,
						BaseRegister: -1,
					},
				},
				FlowDepth: 3,
				Mask:      0x0ff0,
				MaskEnd:   0x000f,
			},
		}

		decoded, err := DecodeBytes(d.EncodeBytes())

		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(d))
	})

	It("should refuse jumps that the kind cannot carry", func() {
		d := &Descriptor{Jump: ImmediateJump{}, Body: &JumpBody{}}
		Expect(func() { d.Encode() }).To(Panic())

		d = &Descriptor{Jump: RelativeJump{}, Body: &GetBody{}}
		Expect(func() { d.Encode() }).To(Panic())
	})

	It("should reject byte slices of the wrong size", func() {
		_, err := DecodeBytes(make([]byte, 63))

		Expect(err).To(HaveOccurred())
	})
})
