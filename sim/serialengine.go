package sim

import (
	"log"
	"sync"
	"sync/atomic"
)

// A SerialEngine handles one event at a time on the goroutine that calls Run.
type SerialEngine struct {
	HookableBase

	queueLock sync.Mutex
	now       VTimeInSec
	queue     eventQueue
	handled   atomic.Uint64

	runLock sync.Mutex

	// gate is held while an event is handled, and by a paused engine.
	gate      sync.Mutex
	pauseLock sync.Mutex
	paused    bool
}

// NewSerialEngine creates a SerialEngine at time 0.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{}
}

// Schedule adds an event. Events cannot be scheduled before the current time.
func (e *SerialEngine) Schedule(evt Event) {
	e.queueLock.Lock()
	defer e.queueLock.Unlock()

	if evt.Time() < e.now {
		log.Panicf("event at %.10f scheduled at %.10f, which is in the past",
			evt.Time(), e.now)
	}

	e.queue.add(evt)
}

// CurrentTime returns the time of the event being handled, or of the last
// handled event.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.queueLock.Lock()
	defer e.queueLock.Unlock()

	return e.now
}

// EventCount returns the number of handled events.
func (e *SerialEngine) EventCount() uint64 {
	return e.handled.Load()
}

// Run handles events until the queue is empty or a handler fails.
func (e *SerialEngine) Run() error {
	return e.run(false, 0)
}

// RunUntil handles events up to and including the deadline.
func (e *SerialEngine) RunUntil(deadline VTimeInSec) error {
	return e.run(true, deadline)
}

func (e *SerialEngine) run(bounded bool, deadline VTimeInSec) error {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	for {
		e.gate.Lock()

		evt, err := e.next(bounded, deadline)
		if evt == nil {
			e.gate.Unlock()
			return err
		}

		err = e.handle(evt)

		e.gate.Unlock()

		if err != nil {
			return err
		}
	}
}

func (e *SerialEngine) next(bounded bool, deadline VTimeInSec) (Event, error) {
	e.queueLock.Lock()
	defer e.queueLock.Unlock()

	if e.queue.Len() == 0 {
		return nil, nil
	}

	if bounded && e.queue.first().Time() > deadline {
		return nil, ErrDeadlineReached
	}

	evt := e.queue.removeFirst()
	e.now = evt.Time()

	return evt, nil
}

func (e *SerialEngine) handle(evt Event) error {
	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)
	e.handled.Add(1)

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return err
}

// Pause waits for the event being handled to finish and then stops the engine
// from handling more.
func (e *SerialEngine) Pause() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	if !e.paused {
		e.gate.Lock()
		e.paused = true
	}
}

// Continue lets a paused engine handle events again.
func (e *SerialEngine) Continue() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	if e.paused {
		e.paused = false
		e.gate.Unlock()
	}
}
