package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/cp2dma/sim"
)

// BusyTimeTracer accumulates the time that a domain spends on tasks, in total
// and per task What. Tasks of one domain are expected to run one after
// another.
type BusyTimeTracer struct {
	timeTeller sim.TimeTeller

	lock     sync.Mutex
	inflight map[string]Task
	total    sim.VTimeInSec
	count    uint64
	perWhat  map[string]*BusyTime
}

// BusyTime is the time spent on the completed tasks of one What.
type BusyTime struct {
	What      string
	Time      sim.VTimeInSec
	TaskCount uint64
}

// NewBusyTimeTracer creates a BusyTimeTracer. Wrap it with Filtered to count
// only some tasks.
func NewBusyTimeTracer(timeTeller sim.TimeTeller) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller: timeTeller,
		inflight:   make(map[string]Task),
		perWhat:    make(map[string]*BusyTime),
	}
}

// BusyTime returns the total time spent on the completed tasks.
func (t *BusyTimeTracer) BusyTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// TaskCount returns the number of completed tasks.
func (t *BusyTimeTracer) TaskCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// Breakdown returns the busy time of each What, sorted by What.
func (t *BusyTimeTracer) Breakdown() []BusyTime {
	t.lock.Lock()
	defer t.lock.Unlock()

	list := make([]BusyTime, 0, len(t.perWhat))
	for _, b := range t.perWhat {
		list = append(list, *b)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].What < list[j].What })

	return list
}

// StartTask records when the task starts.
func (t *BusyTimeTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflight[task.ID] = task
	t.lock.Unlock()
}

// StepTask does nothing.
func (t *BusyTimeTracer) StepTask(_ Task) {}

// EndTask adds the duration of the task.
func (t *BusyTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	started, ok := t.inflight[task.ID]
	if !ok {
		return
	}

	delete(t.inflight, task.ID)

	d := t.timeTeller.CurrentTime() - started.StartTime
	t.total += d
	t.count++

	b, ok := t.perWhat[started.What]
	if !ok {
		b = &BusyTime{What: started.What}
		t.perWhat[started.What] = b
	}

	b.Time += d
	b.TaskCount++
}
