package dma

import (
	"log"

	"github.com/sarchlab/cp2dma/sim"
)

// A Builder can build DMA engines.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	sysMem   Memory
	localMem Memory
	gprs     RegisterReader
}

// MakeBuilder returns a new Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine that drives the component.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency at which the channel steps.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithSystemMemory sets the memory that holds descriptors and the data on the
// system side.
func (b Builder) WithSystemMemory(m Memory) Builder {
	b.sysMem = m
	return b
}

// WithLocalMemory sets the local memory of the coprocessor.
func (b Builder) WithLocalMemory(m Memory) Builder {
	b.localMem = m
	return b
}

// WithGeneralRegisters sets where register-indexed bases and jumps read the
// coprocessor registers from.
func (b Builder) WithGeneralRegisters(r RegisterReader) Builder {
	b.gprs = r
	return b
}

// Build creates a new DMA engine.
func (b Builder) Build(name string) *Comp {
	b.mustBeValid()

	c := new(Comp)
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.channel = NewChannel(name+".Channel", b.sysMem, b.localMem, b.gprs)

	return c
}

func (b Builder) mustBeValid() {
	if b.engine == nil {
		log.Panic("engine is not set")
	}

	if b.freq <= 0 {
		log.Panicf("invalid frequency %v", b.freq)
	}

	if b.sysMem == nil {
		log.Panic("system memory is not set")
	}

	if b.localMem == nil {
		log.Panic("local memory is not set")
	}

	if b.gprs == nil {
		log.Panic("general registers are not set")
	}
}
