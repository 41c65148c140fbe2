package dma

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DescriptorSize is the number of bytes that a descriptor takes in the ring.
const DescriptorSize = 64

// ErrNotOwned is returned when decoding a descriptor whose own bit is clear.
// This is the normal condition of an empty ring slot.
var ErrNotOwned = errors.New("descriptor is not owned by the engine")

const ownBit = uint64(1) << 63

// Kind tells what a descriptor does.
type Kind int

// The kinds of descriptors.
const (
	KindPut Kind = iota
	KindGet
	KindJump
)

func (k Kind) String() string {
	switch k {
	case KindPut:
		return "put"
	case KindGet:
		return "get"
	case KindJump:
		return "jump"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// A Descriptor is the decoded form of one 64-byte descriptor.
type Descriptor struct {
	InterruptOnComplete bool
	StopAfter           bool
	PresyncRequired     bool
	PostsyncRequired    bool
	JumpRegister        int

	// Jump decides the index of the descriptor that follows.
	Jump Jump

	// Body is one of *PutBody, *GetBody, or *JumpBody.
	Body Body
}

// Kind returns the kind of the descriptor body.
func (d *Descriptor) Kind() Kind {
	return d.Body.Kind()
}

// Body holds the kind-specific part of a descriptor.
type Body interface {
	Kind() Kind
	isBody()
}

// MemorySide describes how the system memory is walked. Addresses are byte
// offsets relative to the BaseAddr register.
type MemorySide struct {
	Base         uint32
	StrideX      int64
	StrideY      int64
	CountX       uint32
	CountY       uint32
	BaseRegister int // -1 when no register is added to the base
}

// CP2Side describes how the coprocessor local memory is walked. Addresses are
// 16-byte slots within a plane.
type CP2Side struct {
	Base         uint16
	StrideX      uint16
	StrideY      uint16
	CountX       uint16
	CountY       uint16
	ReverseX     bool
	ReverseY     bool
	BaseRegister int // -1 when no register is added to the base
}

// Transfer is the part that Put and Get descriptors share.
type Transfer struct {
	Memory MemorySide
	CP2    CP2Side
}

// PutBody moves data from the coprocessor local memory to system memory.
type PutBody struct {
	Transfer

	// FlowDepth is the number of planes that read the same slot before the
	// coprocessor-side X counter advances. Zero reads plane 0 only.
	FlowDepth int

	// Mask selects the bytes written for every element but the last one of
	// a row. MaskEnd is used for the last element.
	Mask    uint16
	MaskEnd uint16
}

// Kind returns KindPut.
func (*PutBody) Kind() Kind { return KindPut }
func (*PutBody) isBody()    {}

// Plane is the counter that decides which elements of a Get go into one
// plane.
type Plane struct {
	Start   uint8
	StrideX uint8
	CountX  uint8
	StrideY uint8
}

// GetBody moves data from system memory into the coprocessor local memory.
type GetBody struct {
	Transfer

	// Wide selects 16-byte elements. Otherwise, elements are 8 bytes.
	Wide   bool
	Planes [NumPlanes]Plane
}

// Kind returns KindGet.
func (*GetBody) Kind() Kind { return KindGet }
func (*GetBody) isBody()    {}

// JumpBody only selects the next descriptor.
type JumpBody struct{}

// Kind returns KindJump.
func (*JumpBody) Kind() Kind { return KindJump }
func (*JumpBody) isBody()    {}

func field(w uint64, hi, lo uint) uint64 {
	return (w >> lo) & (1<<(hi-lo+1) - 1)
}

func flag(w uint64, bit uint) bool {
	return w&(1<<bit) != 0
}

func signExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

func optionalRegister(w uint64, enableBit uint) int {
	if !flag(w, enableBit) {
		return -1
	}

	return int(field(w, enableBit-1, enableBit-5))
}

// DecodeBytes decodes a descriptor from its 64-byte little-endian form.
func DecodeBytes(data []byte) (*Descriptor, error) {
	if len(data) != DescriptorSize {
		return nil, fmt.Errorf("descriptor must be %d bytes, got %d",
			DescriptorSize, len(data))
	}

	var words [8]uint64
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[i*8:])
	}

	return Decode(words)
}

// Decode parses the eight words of a descriptor.
func Decode(words [8]uint64) (*Descriptor, error) {
	w0 := words[0]
	if w0&ownBit == 0 {
		return nil, ErrNotOwned
	}

	d := &Descriptor{
		InterruptOnComplete: flag(w0, 60),
		StopAfter:           flag(w0, 59),
		PresyncRequired:     flag(w0, 58),
		PostsyncRequired:    flag(w0, 57),
		JumpRegister:        int(field(w0, 54, 50)),
	}
	jumpType := field(w0, 56, 55)

	if flag(w0, 62) {
		d.Body = &JumpBody{}
		d.Jump = decodeJumpKindJump(jumpType, words)

		return d, nil
	}

	d.Jump = decodeTransferJump(jumpType, words)

	transfer := decodeTransfer(words)
	if flag(w0, 61) {
		body := &GetBody{
			Transfer: transfer,
			Wide:     flag(w0, 49),
		}
		for i := range body.Planes {
			body.Planes[i] = decodePlane(uint32(words[4+i/2] >> (32 * (i % 2))))
		}
		d.Body = body

		return d, nil
	}

	d.Body = &PutBody{
		Transfer:  transfer,
		FlowDepth: min(int(field(w0, 39, 37)), NumPlanes),
		Mask:      uint16(field(w0, 15, 0)),
		MaskEnd:   uint16(field(w0, 31, 16)),
	}

	return d, nil
}

func decodeTransfer(words [8]uint64) Transfer {
	w1, w2, w3 := words[1], words[2], words[3]

	strideY := field(w2, 35, 24)<<12 | field(w1, 43, 32)

	return Transfer{
		Memory: MemorySide{
			Base:         uint32(field(w1, 31, 0)),
			StrideX:      signExtend(field(w2, 23, 0)>>4, 20),
			StrideY:      signExtend(strideY, 20),
			CountX:       uint32(field(w2, 51, 36)),
			CountY:       uint32(field(w2, 63, 52)),
			BaseRegister: optionalRegister(w1, 49),
		},
		CP2: CP2Side{
			Base:         uint16(field(w3, 12, 0)),
			StrideX:      uint16(field(w3, 25, 13)),
			StrideY:      uint16(field(w3, 38, 26)),
			CountX:       uint16(field(w3, 46, 39)),
			CountY:       uint16(field(w3, 54, 47)),
			ReverseX:     flag(w3, 55),
			ReverseY:     flag(w3, 56),
			BaseRegister: optionalRegister(w3, 62),
		},
	}
}

func decodePlane(v uint32) Plane {
	return Plane{
		Start:   uint8(v),
		StrideX: uint8(v >> 8),
		CountX:  uint8(v >> 16),
		StrideY: uint8(v >> 24),
	}
}

func decodeTable(lo, hi uint64) [4]int16 {
	return [4]int16{
		int16(field(lo, 15, 0)),
		int16(field(lo, 31, 16)),
		int16(field(hi, 15, 0)),
		int16(field(hi, 31, 16)),
	}
}

func decodeTransferJump(jumpType uint64, words [8]uint64) Jump {
	switch jumpType {
	case 0:
		return ImmediateJump{Offset: int16(signExtend(field(words[0], 48, 40), 9))}
	case 1:
		return TableJump{Entries: decodeTable(words[6], words[7])}
	case 2:
		return AbsoluteJump{}
	default:
		return ConditionalJump{
			Operand:        uint32(field(words[6], 63, 32)),
			EqualOffset:    int16(field(words[7], 47, 32)),
			NotEqualOffset: int16(field(words[7], 63, 48)),
		}
	}
}

func decodeJumpKindJump(jumpType uint64, words [8]uint64) Jump {
	switch jumpType {
	case 0:
		return RelativeJump{Offset: int16(field(words[1], 15, 0))}
	case 1:
		return TableJump{Entries: decodeTable(words[2], words[3])}
	case 2:
		return AbsoluteJump{}
	default:
		return ConditionalJump{
			Operand:        uint32(field(words[2], 63, 32)),
			EqualOffset:    int16(field(words[3], 47, 32)),
			NotEqualOffset: int16(field(words[3], 63, 48)),
		}
	}
}
