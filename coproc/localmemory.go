package coproc

import (
	"log"

	"github.com/sarchlab/cp2dma/dma"
	"github.com/sarchlab/cp2dma/mem"
)

// A Slot is the 16-byte unit of the local memory.
type Slot [dma.SlotSize]byte

// LocalMemory is the local memory of the coprocessor. It is organized as
// dma.NumPlanes planes of dma.SlotsPerPlane slots, laid out one plane after
// another.
type LocalMemory struct {
	storage *mem.Storage
}

// NewLocalMemory creates a zeroed local memory.
func NewLocalMemory() *LocalMemory {
	return &LocalMemory{
		storage: mem.NewStorage(dma.NumPlanes * dma.PlaneSize),
	}
}

// Read returns size bytes starting from a byte address.
func (m *LocalMemory) Read(address, size uint64) ([]byte, error) {
	return m.storage.Read(address, size)
}

// Write stores data starting from a byte address.
func (m *LocalMemory) Write(address uint64, data []byte) error {
	return m.storage.Write(address, data)
}

// ReadSlot returns the content of one slot.
func (m *LocalMemory) ReadSlot(plane int, slot uint16) Slot {
	mustBeValidSlot(plane, slot)

	data, err := m.storage.Read(dma.LocalAddress(plane, slot), dma.SlotSize)
	if err != nil {
		log.Panic(err)
	}

	var s Slot
	copy(s[:], data)

	return s
}

// WriteSlot sets the content of one slot.
func (m *LocalMemory) WriteSlot(plane int, slot uint16, s Slot) {
	mustBeValidSlot(plane, slot)

	err := m.storage.Write(dma.LocalAddress(plane, slot), s[:])
	if err != nil {
		log.Panic(err)
	}
}

// Reset clears the local memory.
func (m *LocalMemory) Reset() {
	m.storage = mem.NewStorage(dma.NumPlanes * dma.PlaneSize)
}

func mustBeValidSlot(plane int, slot uint16) {
	if plane < 0 || plane >= dma.NumPlanes {
		log.Panicf("plane %d does not exist", plane)
	}

	if slot >= dma.SlotsPerPlane {
		log.Panicf("slot %d does not exist", slot)
	}
}
