package sim

import "container/heap"

type queuedEvent struct {
	Event
	seq uint64
}

// eventQueue orders events by time. At the same time, primary events come
// before secondary ones and otherwise events leave in the order they came in,
// so that a run is reproducible.
type eventQueue struct {
	entries []queuedEvent
	seq     uint64
}

func (q *eventQueue) Len() int {
	return len(q.entries)
}

func (q *eventQueue) Less(i, j int) bool {
	a, b := q.entries[i], q.entries[j]

	if ta, tb := a.Time(), b.Time(); ta != tb {
		return ta < tb
	}

	if sa, sb := a.IsSecondary(), b.IsSecondary(); sa != sb {
		return sb
	}

	return a.seq < b.seq
}

func (q *eventQueue) Swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
}

// Push and Pop are for container/heap only.
func (q *eventQueue) Push(x any) {
	q.entries = append(q.entries, x.(queuedEvent))
}

func (q *eventQueue) Pop() any {
	last := len(q.entries) - 1
	e := q.entries[last]
	q.entries[last] = queuedEvent{}
	q.entries = q.entries[:last]

	return e
}

func (q *eventQueue) add(evt Event) {
	q.seq++
	heap.Push(q, queuedEvent{Event: evt, seq: q.seq})
}

func (q *eventQueue) first() Event {
	return q.entries[0].Event
}

func (q *eventQueue) removeFirst() Event {
	return heap.Pop(q).(queuedEvent).Event
}
