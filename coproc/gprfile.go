// Package coproc models the parts of the vector coprocessor that the DMA
// engine reaches: the general registers and the local memory.
package coproc

import "log"

// NumGeneralRegisters is the number of general registers.
const NumGeneralRegisters = 32

// GPRFile is the general register file of the coprocessor.
type GPRFile struct {
	regs [NumGeneralRegisters]uint64
}

// NewGPRFile creates a register file with all registers set to 0.
func NewGPRFile() *GPRFile {
	return &GPRFile{}
}

// ReadGeneralRegister returns the value of a register.
func (f *GPRFile) ReadGeneralRegister(index int) uint64 {
	mustBeValidIndex(index)
	return f.regs[index]
}

// WriteGeneralRegister sets the value of a register.
func (f *GPRFile) WriteGeneralRegister(index int, value uint64) {
	mustBeValidIndex(index)
	f.regs[index] = value
}

// Reset sets all registers to 0.
func (f *GPRFile) Reset() {
	f.regs = [NumGeneralRegisters]uint64{}
}

func mustBeValidIndex(index int) {
	if index < 0 || index >= NumGeneralRegisters {
		log.Panicf("general register %d does not exist", index)
	}
}
