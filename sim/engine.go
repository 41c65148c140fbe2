package sim

import "errors"

// ErrDeadlineReached is returned by RunUntil when events are still pending
// after the deadline.
var ErrDeadlineReached = errors.New("events pending after the deadline")

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events that are handled in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine handles scheduled events in time order.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run handles events until none is left.
	Run() error

	// RunUntil handles the events scheduled no later than the deadline. It
	// returns ErrDeadlineReached if later events remain. A descriptor ring
	// that jumps back to itself never runs out of events.
	RunUntil(deadline VTimeInSec) error

	// Pause blocks event handling until Continue is called.
	Pause()
	Continue()

	// EventCount returns the number of events handled so far.
	EventCount() uint64
}
