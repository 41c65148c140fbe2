package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/sarchlab/cp2dma/coproc"
	"github.com/sarchlab/cp2dma/dma"
	"github.com/sarchlab/cp2dma/mem"
	"github.com/sarchlab/cp2dma/sim"
	"github.com/sarchlab/cp2dma/tracing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	var (
		engine *sim.SerialEngine
		comp   *dma.Comp
		m      *Monitor
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		comp = dma.MakeBuilder().
			WithEngine(engine).
			WithSystemMemory(mem.NewStorage(1 << 16)).
			WithLocalMemory(coproc.NewLocalMemory()).
			WithGeneralRegisters(coproc.NewGPRFile()).
			Build("DMA")

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterComponent(comp)
	})

	It("should fall back to a random port", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(32000)
		Expect(m.portNumber).To(Equal(32000))
	})

	It("should list components", func() {
		rec := get("/api/list_components")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"DMA"}))
	})

	It("should report the current time", func() {
		rec := get("/api/now")

		rsp := map[string]float64{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp["now"]).To(BeZero())
		Expect(rsp).To(HaveKeyWithValue("events", BeZero()))
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
	})

	It("should report registers without clearing the interrupt cause", func() {
		comp.WriteRegister(dma.RegConfig, dma.ConfigAutoClear)
		comp.WriteRegister(dma.RegDescBase, 0x400)

		rec := get("/api/registers/DMA")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var regs []registerRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &regs)).To(Succeed())
		Expect(regs).To(HaveLen(len(dma.Registers) - 1))
		Expect(regs).To(ContainElement(registerRsp{
			Name:   "DescBase",
			Offset: uint32(dma.RegDescBase),
			Value:  0x400,
		}))
		Expect(regs).NotTo(ContainElement(
			HaveField("Name", "IntCause")))
	})

	It("should return 404 for unknown components", func() {
		Expect(get("/api/registers/GPU").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/component/GPU").Code).To(Equal(http.StatusNotFound))
	})

	It("should count descriptors in progress bars", func() {
		bar := m.CreateProgressBar("Descriptors", 3)
		tracing.CollectTrace(comp.Channel(), bar)

		bar.StartTask(tracing.Task{ID: "1"})
		bar.StartTask(tracing.Task{ID: "2"})
		bar.EndTask(tracing.Task{ID: "1"})

		var bars []progressBarRsp
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Descriptors"))
		Expect(bars[0].Total).To(Equal(uint64(3)))
		Expect(bars[0].Finished).To(Equal(uint64(1)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		Expect(get("/api/progress").Body.String()).To(Equal("[]"))
	})
})
