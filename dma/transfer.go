package dma

import (
	"bytes"
	"log"
)

// Geometry of the coprocessor local memory.
const (
	NumPlanes     = 4
	SlotSize      = 16
	SlotsPerPlane = 8192
	PlaneSize     = SlotSize * SlotsPerPlane
)

// LocalAddress returns the byte address of a slot in the local memory.
func LocalAddress(plane int, slot uint16) uint64 {
	return uint64(plane)*PlaneSize + uint64(slot&cp2AddrMask)*SlotSize
}

// elementCursor tracks the position of a transfer in the Working state.
type elementCursor struct {
	transfer Transfer
	narrow   bool

	memGen memoryAddrGen
	cp2Gen cp2AddrGen

	memCountB uint32
	memCountX uint32
	memCountY uint32
	highHalf  bool

	cp2CountX uint16
	cp2CountY uint16

	// Put only. The plane that the next element is read from.
	lane int

	// Get only.
	planes      *[NumPlanes]Plane
	dcnt        [NumPlanes]uint32
	dcntX       [NumPlanes]uint32
	dcntBase    [NumPlanes]uint32
	mainCounter uint32
}

func newElementCursor(
	t Transfer,
	regs RegisterReader,
	aligned bool,
	narrow bool,
	planes *[NumPlanes]Plane,
) *elementCursor {
	cur := &elementCursor{
		transfer: t,
		narrow:   narrow,
		memGen:   newMemoryAddrGen(t.Memory, regs),
		cp2Gen:   newCP2AddrGen(t.CP2, regs, aligned),
		planes:   planes,
	}

	if planes != nil {
		for p, plane := range planes {
			cur.dcnt[p] = uint32(plane.Start)
			cur.dcntBase[p] = uint32(plane.Start)
		}
	}

	return cur
}

func (cur *elementCursor) empty() bool {
	return cur.transfer.Memory.CountX == 0 || cur.transfer.Memory.CountY == 0
}

func (cur *elementCursor) memoryAddress() uint64 {
	return cur.memGen.address(
		cur.memCountB, cur.memCountX, cur.memCountY, cur.highHalf)
}

func (cur *elementCursor) slot() uint16 {
	return cur.cp2Gen.address(cur.cp2CountX, cur.cp2CountY)
}

func (cur *elementCursor) lastInRow() bool {
	return cur.cp2CountX+1 >= cur.transfer.CP2.CountX
}

// advance moves the cursor past one element and reports whether the last
// element has been transferred.
func (cur *elementCursor) advance(flowDepth int) bool {
	if cur.narrow && !cur.highHalf {
		cur.highHalf = true
	} else {
		cur.highHalf = false
		cur.memCountB++
	}

	if flowDepth > 0 {
		cur.lane++
		if cur.lane < flowDepth {
			return false
		}

		cur.lane = 0
	}

	cp2 := cur.transfer.CP2

	cur.cp2CountX++
	if cur.cp2CountX < cp2.CountX {
		return false
	}

	cur.cp2CountX = 0
	cur.cp2CountY++

	if cur.cp2CountY < cp2.CountY {
		return false
	}

	cur.cp2CountY = 0
	cur.memCountB = 0
	cur.highHalf = false

	m := cur.transfer.Memory

	cur.memCountX++
	if cur.memCountX < m.CountX {
		return false
	}

	cur.memCountX = 0
	cur.memCountY++

	return cur.memCountY >= m.CountY
}

// matchPlane returns the first plane whose counter equals the main counter,
// or -1.
func (cur *elementCursor) matchPlane() int {
	for p := range cur.dcnt {
		if cur.dcnt[p] == cur.mainCounter {
			return p
		}
	}

	return -1
}

func (cur *elementCursor) advancePlane(p int) {
	plane := cur.planes[p]

	cur.dcntX[p]++
	if cur.dcntX[p] >= uint32(plane.CountX) {
		cur.dcntX[p] = 0
		cur.dcntBase[p] += uint32(plane.StrideY)
	}

	cur.dcnt[p] = cur.dcntBase[p] + cur.dcntX[p]*uint32(plane.StrideX)
}

func (c *Channel) getElement(body *GetBody) bool {
	cur := c.cursor
	if cur.empty() {
		return true
	}

	size := uint64(8)
	if body.Wide {
		size = 16
	}

	data, ok := c.readSystem(cur.memoryAddress(), size)
	if !ok {
		c.raiseCause(CauseLimitExceeded)
		data = bytes.Repeat([]byte{0xff}, int(size))
	}

	if p := cur.matchPlane(); p >= 0 {
		addr := LocalAddress(p, cur.slot())
		if !body.Wide {
			addr += uint64(cur.mainCounter&1) * 8
		}

		c.mustWriteLocal(addr, data)
		cur.advancePlane(p)
	}

	if body.Wide {
		cur.mainCounter += 2
	} else {
		cur.mainCounter++
	}

	return cur.advance(0)
}

func (c *Channel) putElement(body *PutBody) bool {
	cur := c.cursor
	if cur.empty() {
		return true
	}

	data := c.mustReadLocal(LocalAddress(cur.lane, cur.slot()), SlotSize)

	mask := body.Mask
	if cur.lastInRow() {
		mask = body.MaskEnd
	}

	c.writeMasked(cur.memoryAddress(), data, mask)

	return cur.advance(body.FlowDepth)
}

// writeMasked writes the bytes selected by mask, one contiguous run at a
// time. An element that violates the limit is dropped.
func (c *Channel) writeMasked(offset uint64, data []byte, mask uint16) {
	if !c.regs.withinLimit(offset, uint64(len(data))) {
		c.raiseCause(CauseLimitExceeded)
		return
	}

	for start := 0; start < len(data); {
		if mask&(1<<start) == 0 {
			start++
			continue
		}

		end := start
		for end < len(data) && mask&(1<<end) != 0 {
			end++
		}

		addr := c.regs.physicalAddress(offset + uint64(start))

		err := c.sysMem.Write(addr, data[start:end])
		if err != nil {
			c.raiseCause(CauseLimitExceeded)
			return
		}

		start = end
	}
}

func (c *Channel) mustReadLocal(addr, size uint64) []byte {
	data, err := c.localMem.Read(addr, size)
	if err != nil {
		log.Panicf("channel %s cannot read local memory: %v", c.name, err)
	}

	return data
}

func (c *Channel) mustWriteLocal(addr uint64, data []byte) {
	err := c.localMem.Write(addr, data)
	if err != nil {
		log.Panicf("channel %s cannot write local memory: %v", c.name, err)
	}
}
