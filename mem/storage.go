// Package mem provides the byte-addressable storage that backs both the
// system memory and the coprocessor local memory.
package mem

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an access touches bytes beyond the capacity
// of a Storage.
var ErrOutOfRange = errors.New("access beyond storage capacity")

// A Storage keeps the data of the guest system.
//
// The storage is managed in units, similar to pages in memory management.
// Units are allocated on the first write. Reading a unit that was never
// written returns zeros.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity
func NewStorage(capacity uint64) *Storage {
	storage := new(Storage)

	storage.unitSize = 4096
	storage.capacity = capacity
	storage.data = make(map[uint64][]byte)

	return storage
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) mustBeInRange(address, size uint64) error {
	end := address + size
	if end < address || end > s.capacity {
		return fmt.Errorf("%w: [0x%x, 0x%x) capacity 0x%x",
			ErrOutOfRange, address, end, s.capacity)
	}

	return nil
}

// createOrGetStorageUnit retrieves a storage unit if the unit has been created
// before. Otherwise it initializes a storage unit in the storage object.
func (s *Storage) createOrGetStorageUnit(address uint64) []byte {
	baseAddr, _ := s.parseAddress(address)

	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns a copy of size bytes starting from address.
func (s *Storage) Read(address uint64, size uint64) ([]byte, error) {
	if err := s.mustBeInRange(address, size); err != nil {
		return nil, err
	}

	res := make([]byte, size)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < size {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToRead := min(size-dataOffset, baseAddr+s.unitSize-currAddr)

		if unit, ok := s.data[baseAddr]; ok {
			copy(res[dataOffset:dataOffset+lenToRead],
				unit[inUnitAddr:inUnitAddr+lenToRead])
		}

		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores data starting from address.
func (s *Storage) Write(address uint64, data []byte) error {
	size := uint64(len(data))
	if err := s.mustBeInRange(address, size); err != nil {
		return err
	}

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < size {
		unit := s.createOrGetStorageUnit(currAddr)
		baseAddr, inUnitAddr := s.parseAddress(currAddr)

		lenToWrite := min(size-dataOffset, baseAddr+s.unitSize-currAddr)
		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])

		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}
