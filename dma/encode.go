package dma

import (
	"encoding/binary"
	"log"
)

// Encode packs the descriptor into its eight words with the own bit set. It
// panics if the jump cannot be expressed by the descriptor kind, for example,
// an ImmediateJump on a Jump descriptor.
func (d *Descriptor) Encode() [8]uint64 {
	var words [8]uint64

	w0 := ownBit |
		setFlag(d.InterruptOnComplete, 60) |
		setFlag(d.StopAfter, 59) |
		setFlag(d.PresyncRequired, 58) |
		setFlag(d.PostsyncRequired, 57) |
		d.Jump.jumpType()<<55 |
		uint64(d.JumpRegister&0x1f)<<50

	switch body := d.Body.(type) {
	case *JumpBody:
		words[0] = w0 | 1<<62
		encodeJumpKindJump(d.Jump, &words)

		return words
	case *GetBody:
		w0 |= 1<<61 | setFlag(body.Wide, 49)
		encodeTransfer(body.Transfer, &words)

		for i, p := range body.Planes {
			words[4+i/2] |= uint64(encodePlane(p)) << (32 * (i % 2))
		}
	case *PutBody:
		w0 |= uint64(min(body.FlowDepth, NumPlanes))<<37 |
			uint64(body.MaskEnd)<<16 |
			uint64(body.Mask)
		encodeTransfer(body.Transfer, &words)
	default:
		log.Panicf("unknown descriptor body %T", d.Body)
	}

	words[0] = w0 | encodeTransferJump(d.Jump, &words)

	return words
}

// EncodeBytes returns the 64-byte little-endian form of the descriptor.
func (d *Descriptor) EncodeBytes() []byte {
	words := d.Encode()
	data := make([]byte, DescriptorSize)

	for i, w := range words {
		binary.LittleEndian.PutUint64(data[i*8:], w)
	}

	return data
}

func setFlag(b bool, bit uint) uint64 {
	if b {
		return 1 << bit
	}

	return 0
}

func encodeRegister(reg int, enableBit uint) uint64 {
	if reg < 0 {
		return 0
	}

	return 1<<enableBit | uint64(reg&0x1f)<<(enableBit-5)
}

func encodeTransfer(t Transfer, words *[8]uint64) {
	m, c := t.Memory, t.CP2

	strideY := uint64(m.StrideY) & 0xfffff

	words[1] = uint64(m.Base) |
		(strideY&0xfff)<<32 |
		encodeRegister(m.BaseRegister, 49)
	words[2] = (uint64(m.StrideX)&0xfffff)<<4 |
		(strideY>>12)<<24 |
		uint64(m.CountX&0xffff)<<36 |
		uint64(m.CountY&0xfff)<<52
	words[3] = uint64(c.Base&0x1fff) |
		uint64(c.StrideX&0x1fff)<<13 |
		uint64(c.StrideY&0x1fff)<<26 |
		uint64(c.CountX&0xff)<<39 |
		uint64(c.CountY&0xff)<<47 |
		setFlag(c.ReverseX, 55) |
		setFlag(c.ReverseY, 56) |
		encodeRegister(c.BaseRegister, 62)
}

func encodePlane(p Plane) uint32 {
	return uint32(p.Start) |
		uint32(p.StrideX)<<8 |
		uint32(p.CountX)<<16 |
		uint32(p.StrideY)<<24
}

func encodeTable(entries [4]int16) (lo, hi uint64) {
	lo = uint64(uint16(entries[0])) | uint64(uint16(entries[1]))<<16
	hi = uint64(uint16(entries[2])) | uint64(uint16(entries[3]))<<16

	return lo, hi
}

func encodeConditional(j ConditionalJump) (operand, offsets uint64) {
	operand = uint64(j.Operand) << 32
	offsets = uint64(uint16(j.EqualOffset))<<32 |
		uint64(uint16(j.NotEqualOffset))<<48

	return operand, offsets
}

// encodeTransferJump fills the jump operands of a Put or Get descriptor and
// returns the bits that go into word 0.
func encodeTransferJump(j Jump, words *[8]uint64) uint64 {
	switch j := j.(type) {
	case ImmediateJump:
		return uint64(j.Offset&0x1ff) << 40
	case TableJump:
		lo, hi := encodeTable(j.Entries)
		words[6] |= lo
		words[7] |= hi
	case AbsoluteJump:
	case ConditionalJump:
		operand, offsets := encodeConditional(j)
		words[6] |= operand
		words[7] |= offsets
	default:
		log.Panicf("jump %T cannot be used by put or get descriptors", j)
	}

	return 0
}

func encodeJumpKindJump(j Jump, words *[8]uint64) {
	switch j := j.(type) {
	case RelativeJump:
		words[1] = uint64(uint16(j.Offset))
	case TableJump:
		words[2], words[3] = encodeTable(j.Entries)
	case AbsoluteJump:
	case ConditionalJump:
		operand, offsets := encodeConditional(j)
		words[2] |= operand
		words[3] |= offsets
	default:
		log.Panicf("jump %T cannot be used by jump descriptors", j)
	}
}
