package dma

// A Jump selects the index of the descriptor to execute next, given the index
// of the descriptor that has just completed and the value of the general
// register named by the descriptor. Indices are 16-bit and wrap around.
type Jump interface {
	Next(current uint16, reg uint64) uint16
	jumpType() uint64
}

// ImmediateJump adds a 9-bit signed offset carried in word 0. Only Put and Get
// descriptors have it.
type ImmediateJump struct {
	Offset int16
}

// Next returns current + Offset.
func (j ImmediateJump) Next(current uint16, _ uint64) uint16 {
	return current + uint16(j.Offset)
}

func (ImmediateJump) jumpType() uint64 { return 0 }

// RelativeJump adds a 16-bit signed offset. Only Jump descriptors have it.
type RelativeJump struct {
	Offset int16
}

// Next returns current + Offset.
func (j RelativeJump) Next(current uint16, _ uint64) uint16 {
	return current + uint16(j.Offset)
}

func (RelativeJump) jumpType() uint64 { return 0 }

// TableJump adds one of four offsets, selected by the low bits of the
// register.
type TableJump struct {
	Entries [4]int16
}

// Next returns current plus the entry selected by the register value.
func (j TableJump) Next(current uint16, reg uint64) uint16 {
	entry := (reg & 0xf) % uint64(len(j.Entries))
	return current + uint16(j.Entries[entry])
}

func (TableJump) jumpType() uint64 { return 1 }

// AbsoluteJump replaces the index with the low 8 bits of the register.
type AbsoluteJump struct{}

// Next returns the low byte of the register value.
func (AbsoluteJump) Next(_ uint16, reg uint64) uint16 {
	return uint16(reg & 0xff)
}

func (AbsoluteJump) jumpType() uint64 { return 2 }

// ConditionalJump compares the low 32 bits of the register with Operand and
// adds EqualOffset or NotEqualOffset.
type ConditionalJump struct {
	Operand        uint32
	EqualOffset    int16
	NotEqualOffset int16
}

// Next returns the index after the comparison.
func (j ConditionalJump) Next(current uint16, reg uint64) uint16 {
	if uint32(reg) == j.Operand {
		return current + uint16(j.EqualOffset)
	}

	return current + uint16(j.NotEqualOffset)
}

func (ConditionalJump) jumpType() uint64 { return 3 }
