package dma

import (
	"bytes"
	"log"

	"github.com/sarchlab/cp2dma/mem"
	"github.com/sarchlab/cp2dma/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CauseLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *CauseLogger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewCauseLogger(log.New(buf, "", 0))
	})

	It("should log raised causes", func() {
		sysMem := mem.NewStorage(1 << 12)
		c := NewChannel("DMA", sysMem, mem.NewStorage(NumPlanes*PlaneSize),
			&gprValues{})
		c.AcceptHook(logger)

		d := stopJump()
		d.InterruptOnComplete = true
		Expect(sysMem.Write(0, d.EncodeBytes())).To(Succeed())

		c.WriteRegister(RegControl, ControlStart)
		for c.IsTransferring() {
			c.Step()
		}

		Expect(buf.String()).To(Equal("DMA raised Completion\n"))
	})

	It("should ignore other hook positions", func() {
		logger.Func(sim.HookCtx{
			Pos:  sim.HookPosBeforeEvent,
			Item: CauseCompletion,
		})

		Expect(buf.Len()).To(BeZero())
	})

	It("should print combined causes", func() {
		Expect((CauseLimitExceeded | CauseCompletion).String()).
			To(Equal("LimitExceeded|Completion"))
		Expect(Cause(0).String()).To(Equal("None"))
	})
})
