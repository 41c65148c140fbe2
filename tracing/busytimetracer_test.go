package tracing

import (
	"github.com/sarchlab/cp2dma/sim"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BusyTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *BusyTimeTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)

		t = NewBusyTimeTracer(timeTeller)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should track busy time, one task", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(1.0)))
		Expect(t.TaskCount()).To(Equal(uint64(1)))
	})

	It("should track busy time, two tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		t.StartTask(Task{ID: "2"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(5))
		t.EndTask(Task{ID: "2"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(3.0)))
		Expect(t.TaskCount()).To(Equal(uint64(2)))
	})

	It("should ignore the end of unknown tasks", func() {
		t.EndTask(Task{ID: "1"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(0)))
		Expect(t.TaskCount()).To(Equal(uint64(0)))
	})

	It("should break the busy time down by what", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1", What: "put"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.StartTask(Task{ID: "2", What: "get"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(5))
		t.EndTask(Task{ID: "2"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(5))
		t.StartTask(Task{ID: "3", What: "put"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(7))
		t.EndTask(Task{ID: "3"})

		Expect(t.Breakdown()).To(Equal([]BusyTime{
			{What: "get", Time: 3, TaskCount: 1},
			{What: "put", Time: 3, TaskCount: 2},
		}))
		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(6)))
	})

	It("should skip filtered tasks", func() {
		filtered := Filtered(WhatIs("put"), t)

		filtered.StartTask(Task{ID: "1", What: "get"})
		filtered.EndTask(Task{ID: "1"})

		Expect(t.TaskCount()).To(Equal(uint64(0)))
	})
})
