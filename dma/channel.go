package dma

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/sarchlab/cp2dma/sim"
	"github.com/sarchlab/cp2dma/tracing"
)

// Memory is a byte-addressable memory that the channel reads and writes. An
// error means that the address is outside the backing range.
type Memory interface {
	Read(address, size uint64) ([]byte, error)
	Write(address uint64, data []byte) error
}

// RegisterReader provides the general registers of the coprocessor.
type RegisterReader interface {
	ReadGeneralRegister(index int) uint64
}

// State is the phase that a channel is in.
type State int

// The states of a channel.
const (
	StateIdle State = iota
	StateFetchDescriptor
	StatePreSync
	StateWorking
	StatePostSync
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateFetchDescriptor:
		return "FetchDescriptor"
	case StatePreSync:
		return "PreSync"
	case StateWorking:
		return "Working"
	case StatePostSync:
		return "PostSync"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StepResult reports what a call to Step did.
type StepResult struct {
	// Transferring is true if the channel is in the Working state after the
	// step.
	Transferring bool

	// Progressed is false if the step could not do anything, either because
	// the channel is idle or because a sync gate is held.
	Progressed bool
}

const (
	fetchChunkSize  = 16
	fetchChunkCount = DescriptorSize / fetchChunkSize
)

// A Channel is the state machine that executes a chain of descriptors. Every
// call to Step moves the channel by one bounded unit of work.
type Channel struct {
	sim.HookableBase

	name     string
	sysMem   Memory
	localMem Memory
	gprs     RegisterReader

	regs  regFile
	state State

	busy            bool
	startPending    bool
	stopLatched     bool
	presyncPending  bool
	postsyncPending bool

	descOffset  uint64
	fetchCursor int
	words       [8]uint64
	desc        *Descriptor
	cursor      *elementCursor
	taskID      string
}

// NewChannel creates an idle channel.
func NewChannel(
	name string,
	sysMem Memory,
	localMem Memory,
	gprs RegisterReader,
) *Channel {
	return &Channel{
		name:     name,
		sysMem:   sysMem,
		localMem: localMem,
		gprs:     gprs,
	}
}

// Name returns the name of the channel.
func (c *Channel) Name() string {
	return c.name
}

// State returns the current state.
func (c *Channel) State() State {
	return c.state
}

// Descriptor returns the most recently decoded descriptor, or nil.
func (c *Channel) Descriptor() *Descriptor {
	return c.desc
}

// IsTransferring returns true if the channel has been started and has not
// returned to Idle.
func (c *Channel) IsTransferring() bool {
	return c.busy || c.startPending
}

// HasUnmaskedInterruptCause returns true if any cause that is not masked is
// pending.
func (c *Channel) HasUnmaskedInterruptCause() bool {
	return c.regs.unmaskedCause() != 0
}

// ReadRegister returns the value of a register. Control reads as 0. Reading
// IntCause clears it when auto-clear is configured.
func (c *Channel) ReadRegister(reg Register) uint32 {
	switch reg {
	case RegControl:
		return 0
	case RegStatus:
		return c.status()
	}

	v, _ := c.regs.read(reg)

	return v
}

// WriteRegister updates a register. Writes to Status and unknown registers
// are ignored.
func (c *Channel) WriteRegister(reg Register, value uint32) {
	if reg == RegControl {
		c.control(value)
		return
	}

	c.regs.write(reg, value)
}

func (c *Channel) status() uint32 {
	var s uint32

	if c.busy {
		s |= StatusBusy
	}

	if c.presyncPending {
		s |= StatusPresyncPending
	}

	if c.postsyncPending {
		s |= StatusPostsyncPending
	}

	return s | uint32(c.state)<<StatusStateShift&StatusStateMask
}

func (c *Channel) control(value uint32) {
	if value&ControlStart != 0 && !c.busy {
		c.startPending = true
	}

	if value&ControlStop != 0 && c.busy {
		c.stopLatched = true
	}

	if value&ControlPresyncRelease != 0 {
		c.presyncPending = false
	}

	if value&ControlPostsyncRelease != 0 {
		c.postsyncPending = false
	}
}

// Reset returns the channel to the state right after creation. An ongoing
// descriptor is abandoned.
func (c *Channel) Reset() {
	c.endTask()

	c.regs = regFile{}
	c.state = StateIdle
	c.busy = false
	c.startPending = false
	c.stopLatched = false
	c.presyncPending = false
	c.postsyncPending = false
	c.descOffset = 0
	c.fetchCursor = 0
	c.words = [8]uint64{}
	c.desc = nil
	c.cursor = nil
}

// Step performs one phase transition, or one element transfer in the Working
// state.
func (c *Channel) Step() StepResult {
	var progressed bool

	switch c.state {
	case StateIdle:
		progressed = c.stepIdle()
	case StateFetchDescriptor:
		progressed = c.stepFetch()
	case StatePreSync:
		progressed = c.stepPreSync()
	case StateWorking:
		progressed = c.stepWorking()
	case StatePostSync:
		progressed = c.stepPostSync()
	default:
		log.Panicf("channel %s in unknown state %d", c.name, c.state)
	}

	return StepResult{
		Transferring: c.state == StateWorking,
		Progressed:   progressed,
	}
}

func (c *Channel) stepIdle() bool {
	if !c.startPending {
		return false
	}

	c.startPending = false
	c.stopLatched = false
	c.busy = true
	c.beginFetch()

	return true
}

func (c *Channel) beginFetch() {
	c.descOffset = uint64(c.regs.descBase) +
		uint64(c.regs.descIndex)*DescriptorSize
	c.fetchCursor = 0
	c.words = [8]uint64{}
	c.state = StateFetchDescriptor
}

func (c *Channel) stepFetch() bool {
	offset := c.descOffset + uint64(c.fetchCursor*fetchChunkSize)

	data, ok := c.readSystem(offset, fetchChunkSize)
	if !ok {
		c.abort()
		return true
	}

	c.words[2*c.fetchCursor] = binary.LittleEndian.Uint64(data[0:8])
	c.words[2*c.fetchCursor+1] = binary.LittleEndian.Uint64(data[8:16])

	c.fetchCursor++
	if c.fetchCursor < fetchChunkCount {
		return true
	}

	desc, err := Decode(c.words)
	if err != nil {
		c.goIdle()
		return true
	}

	c.desc = desc
	c.presyncPending = desc.PresyncRequired
	c.postsyncPending = desc.PostsyncRequired
	c.state = StatePreSync

	c.taskID = sim.GetIDGenerator().Generate()
	tracing.StartTask(c.taskID, "", c, "dma", desc.Kind().String(), desc)
	tracing.AddTaskStep(c.taskID, c, "presync")

	return true
}

func (c *Channel) stepPreSync() bool {
	if c.presyncPending {
		return false
	}

	switch body := c.desc.Body.(type) {
	case *JumpBody:
		c.enterPostSync()
		return true
	case *PutBody:
		c.cursor = newElementCursor(body.Transfer, c.gprs, true, false, nil)
	case *GetBody:
		c.cursor = newElementCursor(
			body.Transfer, c.gprs, !body.Wide, !body.Wide, &body.Planes)
	default:
		log.Panicf("unknown descriptor body %T", c.desc.Body)
	}

	c.state = StateWorking
	tracing.AddTaskStep(c.taskID, c, "working")

	return true
}

func (c *Channel) stepWorking() bool {
	var done bool

	switch body := c.desc.Body.(type) {
	case *PutBody:
		done = c.putElement(body)
	case *GetBody:
		done = c.getElement(body)
	default:
		log.Panicf("descriptor body %T cannot transfer data", c.desc.Body)
	}

	if done {
		c.enterPostSync()
	}

	return true
}

func (c *Channel) enterPostSync() {
	c.state = StatePostSync
	tracing.AddTaskStep(c.taskID, c, "postsync")
}

func (c *Channel) stepPostSync() bool {
	if c.postsyncPending {
		return false
	}

	d := c.desc
	next := d.Jump.Next(
		c.regs.descIndex, c.gprs.ReadGeneralRegister(d.JumpRegister))

	if d.Kind() != KindJump && !c.releaseDescriptor() {
		c.abort()
		return true
	}

	if d.InterruptOnComplete {
		c.raiseCause(CauseCompletion)
	}

	c.regs.descIndex = next
	c.endTask()

	switch {
	case c.stopLatched:
		c.raiseCause(CauseChannelStopped)
		c.goIdle()
	case d.StopAfter:
		c.goIdle()
	default:
		c.beginFetch()
	}

	return true
}

// releaseDescriptor clears the own bit of the current descriptor in memory.
func (c *Channel) releaseDescriptor() bool {
	if !c.regs.withinLimit(c.descOffset, 8) {
		return false
	}

	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, c.words[0]&^ownBit)

	err := c.sysMem.Write(c.regs.physicalAddress(c.descOffset), data)

	return err == nil
}

// readSystem reads system memory at a limit-checked offset.
func (c *Channel) readSystem(offset, size uint64) ([]byte, bool) {
	if !c.regs.withinLimit(offset, size) {
		return nil, false
	}

	data, err := c.sysMem.Read(c.regs.physicalAddress(offset), size)
	if err != nil {
		return nil, false
	}

	return data, true
}

func (c *Channel) abort() {
	c.raiseCause(CauseLimitExceeded)
	c.endTask()
	c.goIdle()
}

func (c *Channel) goIdle() {
	c.state = StateIdle
	c.busy = false
	c.stopLatched = false
	c.presyncPending = false
	c.postsyncPending = false
}

func (c *Channel) endTask() {
	if c.taskID == "" {
		return
	}

	tracing.EndTask(c.taskID, c)
	c.taskID = ""
}

func (c *Channel) raiseCause(cause Cause) {
	c.regs.intCause |= cause

	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosCauseRaised,
		Item:   cause,
	})
}
