package tracing

import (
	"fmt"
	"sync"

	"github.com/sarchlab/cp2dma/sim"
)

// A Tracer receives the tasks that a domain reports.
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}

// CollectTrace attaches the tracer to the domain. Attaching the same tracer
// twice panics, as every task would be counted twice.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, h := range domain.Hooks() {
		if th, ok := h.(*tracerHook); ok && th.tracer == tracer {
			panic(fmt.Sprintf("tracer %T is already attached to %s",
				tracer, domain.Name()))
		}
	}

	domain.AcceptHook(&tracerHook{tracer: tracer})
}

// tracerHook forwards the task hook positions to a tracer.
type tracerHook struct {
	tracer Tracer
}

func (h *tracerHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskStep:
		h.tracer.StepTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}

// KindIs selects the tasks of a kind.
func KindIs(kind string) TaskFilter {
	return func(t Task) bool { return t.Kind == kind }
}

// WhatIs selects the tasks that do one thing, for example "get".
func WhatIs(what string) TaskFilter {
	return func(t Task) bool { return t.What == what }
}

// Filtered passes to the tracer only the tasks that the filter selects. Steps
// and ends only carry the task ID, so the IDs of selected tasks are kept until
// the tasks end.
func Filtered(filter TaskFilter, tracer Tracer) Tracer {
	return &filteredTracer{
		filter:   filter,
		tracer:   tracer,
		selected: make(map[string]struct{}),
	}
}

type filteredTracer struct {
	filter   TaskFilter
	tracer   Tracer
	lock     sync.Mutex
	selected map[string]struct{}
}

func (f *filteredTracer) StartTask(task Task) {
	if !f.filter(task) {
		return
	}

	f.lock.Lock()
	f.selected[task.ID] = struct{}{}
	f.lock.Unlock()

	f.tracer.StartTask(task)
}

func (f *filteredTracer) StepTask(task Task) {
	if f.isSelected(task.ID, false) {
		f.tracer.StepTask(task)
	}
}

func (f *filteredTracer) EndTask(task Task) {
	if f.isSelected(task.ID, true) {
		f.tracer.EndTask(task)
	}
}

func (f *filteredTracer) isSelected(id string, forget bool) bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	_, ok := f.selected[id]
	if ok && forget {
		delete(f.selected, id)
	}

	return ok
}
