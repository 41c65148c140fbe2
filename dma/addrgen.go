package dma

import "math/bits"

// cp2AddrMask keeps coprocessor-side addresses within the 8192 slots of a
// plane.
const cp2AddrMask = 0x1fff

// Reverse13 reverses the order of the 13 low bits of v. Bits above bit 12 are
// dropped.
func Reverse13(v uint16) uint16 {
	return bits.Reverse16(v&cp2AddrMask) >> 3
}

// memoryAddrGen produces the byte offsets of the system-memory side.
type memoryAddrGen struct {
	base    uint64
	strideX int64
	strideY int64
}

func newMemoryAddrGen(side MemorySide, regs RegisterReader) memoryAddrGen {
	base := uint64(side.Base)
	if side.BaseRegister >= 0 {
		base += regs.ReadGeneralRegister(side.BaseRegister)
	}

	return memoryAddrGen{
		base:    base,
		strideX: side.StrideX,
		strideY: side.StrideY,
	}
}

// address returns base + countB*16 + countX*strideX + countY*strideY, plus 8
// when the high half of a 16-byte block is addressed.
func (g memoryAddrGen) address(
	countB, countX, countY uint32,
	highHalf bool,
) uint64 {
	addr := g.base +
		uint64(countB)*16 +
		uint64(int64(countX)*g.strideX) +
		uint64(int64(countY)*g.strideY)

	if highHalf {
		addr += 8
	}

	return addr
}

// cp2AddrGen produces the slots of the coprocessor side.
type cp2AddrGen struct {
	base     uint16
	strideX  uint16
	strideY  uint16
	reverseX bool
	reverseY bool
}

func newCP2AddrGen(
	side CP2Side,
	regs RegisterReader,
	aligned bool,
) cp2AddrGen {
	base := side.Base
	if side.BaseRegister >= 0 {
		base += uint16(regs.ReadGeneralRegister(side.BaseRegister))
	}

	g := cp2AddrGen{
		base:     base & cp2AddrMask,
		strideX:  side.StrideX,
		strideY:  side.StrideY,
		reverseX: side.ReverseX,
		reverseY: side.ReverseY,
	}

	if aligned {
		g.base &^= 1
		g.strideX &^= 1
		g.strideY &^= 1
	}

	return g
}

func (g cp2AddrGen) address(countX, countY uint16) uint16 {
	x := g.strideX * countX
	if g.reverseX {
		x = Reverse13(x)
	}

	y := g.strideY * countY
	if g.reverseY {
		y = Reverse13(y)
	}

	return (g.base + x + y) & cp2AddrMask
}
