// Package dma implements the descriptor-driven DMA engine that moves data
// between system memory and the local memory of the vector coprocessor.
package dma

import (
	"github.com/sarchlab/cp2dma/sim"
)

// Comp is the DMA engine as a ticking component. Every tick advances the
// channel by one step. The component sleeps while the channel cannot make
// progress and wakes up when a register is written.
type Comp struct {
	*sim.TickingComponent

	channel *Channel
}

// Tick runs one step of the channel.
func (c *Comp) Tick() bool {
	c.Lock()
	defer c.Unlock()

	return c.channel.Step().Progressed
}

// Channel returns the channel that the component drives. Tracers and cause
// loggers are attached to it.
func (c *Comp) Channel() *Channel {
	return c.channel
}

// ReadRegister returns the value of a channel register.
func (c *Comp) ReadRegister(reg Register) uint32 {
	c.Lock()
	defer c.Unlock()

	return c.channel.ReadRegister(reg)
}

// WriteRegister writes a channel register and wakes up the component.
func (c *Comp) WriteRegister(reg Register, value uint32) {
	c.Lock()
	c.channel.WriteRegister(reg, value)
	c.Unlock()

	c.TickLater()
}

// State returns the state of the channel.
func (c *Comp) State() State {
	c.Lock()
	defer c.Unlock()

	return c.channel.State()
}

// IsTransferring tells if the channel is busy with a descriptor chain.
func (c *Comp) IsTransferring() bool {
	c.Lock()
	defer c.Unlock()

	return c.channel.IsTransferring()
}

// HasUnmaskedInterruptCause tells if the coprocessor should be notified.
func (c *Comp) HasUnmaskedInterruptCause() bool {
	c.Lock()
	defer c.Unlock()

	return c.channel.HasUnmaskedInterruptCause()
}

// Reset clears all the registers and returns the channel to Idle.
func (c *Comp) Reset() {
	c.Lock()
	defer c.Unlock()

	c.channel.Reset()
}
