package dma

import (
	"log"

	"github.com/sarchlab/cp2dma/sim"
)

// HookPosCauseRaised marks when a channel raises an interrupt cause. The item
// of the hook context is the Cause.
var HookPosCauseRaised = &sim.HookPos{Name: "DMA Cause Raised"}

// CauseLogger is a hook that prints every interrupt cause that a channel
// raises.
type CauseLogger struct {
	sim.LogHookBase
}

// NewCauseLogger creates a CauseLogger that writes into the logger.
func NewCauseLogger(logger *log.Logger) *CauseLogger {
	h := new(CauseLogger)
	h.Logger = logger

	return h
}

// Func writes the cause into the logger.
func (h *CauseLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosCauseRaised {
		return
	}

	cause, ok := ctx.Item.(Cause)
	if !ok {
		return
	}

	name := "unknown"
	if named, ok := ctx.Domain.(sim.Named); ok {
		name = named.Name()
	}

	h.Printf("%s raised %s", name, cause)
}
