package dma

import "fmt"

// Register is the byte offset of a channel register. All registers are 32
// bits wide.
type Register uint32

// The registers of a channel.
const (
	RegControl   Register = 0x00
	RegStatus    Register = 0x04
	RegDescBase  Register = 0x08
	RegDescIndex Register = 0x0c
	RegIntCause  Register = 0x10
	RegIntMask   Register = 0x14
	RegAddrLimit Register = 0x18
	RegBaseAddr  Register = 0x1c
	RegConfig    Register = 0x20
)

// Registers lists all the registers in the order of their offsets.
var Registers = []Register{
	RegControl,
	RegStatus,
	RegDescBase,
	RegDescIndex,
	RegIntCause,
	RegIntMask,
	RegAddrLimit,
	RegBaseAddr,
	RegConfig,
}

func (r Register) String() string {
	switch r {
	case RegControl:
		return "Control"
	case RegStatus:
		return "Status"
	case RegDescBase:
		return "DescBase"
	case RegDescIndex:
		return "DescIndex"
	case RegIntCause:
		return "IntCause"
	case RegIntMask:
		return "IntMask"
	case RegAddrLimit:
		return "AddrLimit"
	case RegBaseAddr:
		return "BaseAddr"
	case RegConfig:
		return "Config"
	default:
		return fmt.Sprintf("Register(0x%02x)", uint32(r))
	}
}

// Bits of the Control register. Writing 1 triggers the action.
const (
	ControlStart           uint32 = 1 << 0
	ControlStop            uint32 = 1 << 1
	ControlPresyncRelease  uint32 = 1 << 2
	ControlPostsyncRelease uint32 = 1 << 3
)

// Bits of the Status register.
const (
	StatusBusy            uint32 = 1 << 0
	StatusPresyncPending  uint32 = 1 << 1
	StatusPostsyncPending uint32 = 1 << 2
	StatusStateShift             = 8
	StatusStateMask       uint32 = 0x7 << StatusStateShift
)

// Cause is a bitmask of interrupt causes.
type Cause uint32

// Interrupt causes.
const (
	CauseLimitExceeded  Cause = 1 << 0
	CauseChannelStopped Cause = 1 << 1
	CauseCompletion     Cause = 1 << 2

	causeMask = CauseLimitExceeded | CauseChannelStopped | CauseCompletion
)

func (c Cause) String() string {
	names := ""
	for _, n := range []struct {
		cause Cause
		name  string
	}{
		{CauseLimitExceeded, "LimitExceeded"},
		{CauseChannelStopped, "ChannelStopped"},
		{CauseCompletion, "Completion"},
	} {
		if c&n.cause == 0 {
			continue
		}

		if names != "" {
			names += "|"
		}
		names += n.name
	}

	if names == "" {
		return "None"
	}

	return names
}

// Bits of the Config register.
const (
	ConfigLimitCheck uint32 = 1 << 0
	ConfigAutoClear  uint32 = 1 << 1

	configMask = ConfigLimitCheck | ConfigAutoClear
)

// regFile holds the registers that software can read and write. The state of
// an ongoing transfer is not part of it.
type regFile struct {
	descBase  uint32
	descIndex uint16
	intCause  Cause
	intMask   Cause
	addrLimit uint32
	baseAddr  uint32
	config    uint32
}

func (r *regFile) limitCheckEnabled() bool {
	return r.config&ConfigLimitCheck != 0
}

// withinLimit tells if the bytes [offset, offset+size) can be accessed.
func (r *regFile) withinLimit(offset, size uint64) bool {
	if !r.limitCheckEnabled() {
		return true
	}

	end := offset + size

	return end >= offset && end <= uint64(r.addrLimit)
}

func (r *regFile) physicalAddress(offset uint64) uint64 {
	return uint64(r.baseAddr) + offset
}

func (r *regFile) unmaskedCause() Cause {
	return r.intCause &^ r.intMask
}

// read returns the value of a software-visible register other than Control
// and Status.
func (r *regFile) read(reg Register) (uint32, bool) {
	switch reg {
	case RegDescBase:
		return r.descBase, true
	case RegDescIndex:
		return uint32(r.descIndex), true
	case RegIntCause:
		v := uint32(r.intCause)
		if r.config&ConfigAutoClear != 0 {
			r.intCause = 0
		}

		return v, true
	case RegIntMask:
		return uint32(r.intMask), true
	case RegAddrLimit:
		return r.addrLimit, true
	case RegBaseAddr:
		return r.baseAddr, true
	case RegConfig:
		return r.config, true
	default:
		return 0, false
	}
}

// write updates a software-writable register other than Control. Writes to
// unknown registers are ignored.
func (r *regFile) write(reg Register, value uint32) {
	switch reg {
	case RegDescBase:
		r.descBase = value
	case RegDescIndex:
		r.descIndex = uint16(value)
	case RegIntCause:
		r.intCause &^= Cause(value)
	case RegIntMask:
		r.intMask = Cause(value) & causeMask
	case RegAddrLimit:
		r.addrLimit = value
	case RegBaseAddr:
		r.baseAddr = value
	case RegConfig:
		r.config = value & configMask
	}
}
