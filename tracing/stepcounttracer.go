package tracing

import (
	"sync"
)

type stepStats struct {
	steps uint64
	tasks uint64
}

// StepCountTracer counts how many times each step is reached, and in how many
// distinct tasks.
type StepCountTracer struct {
	lock  sync.Mutex
	order []string
	stats map[string]*stepStats

	// seen holds the step names that each in-flight task has reached.
	seen map[string]map[string]bool
}

// NewStepCountTracer creates a StepCountTracer. Wrap it with Filtered to count
// only some tasks.
func NewStepCountTracer() *StepCountTracer {
	return &StepCountTracer{
		stats: make(map[string]*stepStats),
		seen:  make(map[string]map[string]bool),
	}
}

// GetStepNames returns the step names in the order they were first reached.
func (t *StepCountTracer) GetStepNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.order...)
}

// GetStepCount returns how many times a step was reached.
func (t *StepCountTracer) GetStepCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if s, ok := t.stats[stepName]; ok {
		return s.steps
	}

	return 0
}

// GetTaskCount returns the number of tasks that reached a step.
func (t *StepCountTracer) GetTaskCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if s, ok := t.stats[stepName]; ok {
		return s.tasks
	}

	return 0
}

// StartTask starts tracking the steps of a task.
func (t *StepCountTracer) StartTask(task Task) {
	t.lock.Lock()
	t.seen[task.ID] = make(map[string]bool)
	t.lock.Unlock()
}

// StepTask counts the steps of a tracked task.
func (t *StepCountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	reached, ok := t.seen[task.ID]
	if !ok {
		return
	}

	for _, step := range task.Steps {
		s, ok := t.stats[step.What]
		if !ok {
			s = &stepStats{}
			t.stats[step.What] = s
			t.order = append(t.order, step.What)
		}

		s.steps++

		if !reached[step.What] {
			reached[step.What] = true
			s.tasks++
		}
	}
}

// EndTask stops tracking a task.
func (t *StepCountTracer) EndTask(task Task) {
	t.lock.Lock()
	delete(t.seen, task.ID)
	t.lock.Unlock()
}
