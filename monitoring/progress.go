package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/cp2dma/tracing"
)

// A ProgressBar tracks how many items of a job have finished. It is also a
// tracer, so that it can count the descriptors that a DMA channel executes.
type ProgressBar struct {
	lock sync.Mutex

	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds to the number of in-progress items.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.InProgress += amount
}

// IncrementFinished adds to the number of finished items.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished moves a number of items from in-progress to
// finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

type progressBarRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (b *ProgressBar) snapshot() progressBarRsp {
	b.lock.Lock()
	defer b.lock.Unlock()

	return progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// StartTask counts a task as in progress.
func (b *ProgressBar) StartTask(_ tracing.Task) {
	b.IncrementInProgress(1)
}

// StepTask does nothing.
func (b *ProgressBar) StepTask(_ tracing.Task) {}

// EndTask counts a task as finished.
func (b *ProgressBar) EndTask(_ tracing.Task) {
	b.MoveInProgressToFinished(1)
}
