package tracing

import (
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Filtered", func() {
	var (
		mockCtrl *gomock.Controller
		inner    *MockTracer
		tracer   Tracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		inner = NewMockTracer(mockCtrl)
		tracer = Filtered(WhatIs("put"), inner)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should forward the whole life of a selected task", func() {
		start := Task{ID: "1", What: "put"}
		step := Task{ID: "1", Steps: []TaskStep{{What: "working"}}}
		end := Task{ID: "1"}

		gomock.InOrder(
			inner.EXPECT().StartTask(start),
			inner.EXPECT().StepTask(step),
			inner.EXPECT().EndTask(end),
		)

		tracer.StartTask(start)
		tracer.StepTask(step)
		tracer.EndTask(end)
	})

	It("should drop the tasks that are not selected", func() {
		tracer.StartTask(Task{ID: "1", What: "get"})
		tracer.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "working"}}})
		tracer.EndTask(Task{ID: "1"})
	})

	It("should forget a task after it ends", func() {
		inner.EXPECT().StartTask(gomock.Any())
		inner.EXPECT().EndTask(gomock.Any())

		tracer.StartTask(Task{ID: "1", What: "put"})
		tracer.EndTask(Task{ID: "1"})
		tracer.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "late"}}})
	})
})

var _ = Describe("Task filters", func() {
	It("should select by kind and by what", func() {
		task := Task{Kind: "dma", What: "get"}

		Expect(KindIs("dma")(task)).To(BeTrue())
		Expect(KindIs("cpu")(task)).To(BeFalse())
		Expect(WhatIs("get")(task)).To(BeTrue())
		Expect(WhatIs("put")(task)).To(BeFalse())
	})
})
