package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cp2dma/coproc"
	"github.com/sarchlab/cp2dma/datarecording"
	"github.com/sarchlab/cp2dma/dma"
	"github.com/sarchlab/cp2dma/mem"
	"github.com/sarchlab/cp2dma/monitoring"
	"github.com/sarchlab/cp2dma/sim"
	"github.com/sarchlab/cp2dma/tracing"
	"github.com/spf13/cobra"
)

// envBindings maps flags to the environment variables that provide their
// defaults.
var envBindings = map[string]string{
	"freq-mhz":     "CP2DMA_FREQ_MHZ",
	"memory-size":  "CP2DMA_MEMORY_SIZE",
	"record":       "CP2DMA_RECORD",
	"max-cycles":   "CP2DMA_MAX_CYCLES",
	"monitor-port": "CP2DMA_MONITOR_PORT",
}

type runConfig struct {
	ringPath   string
	ringAddr   uint64
	memoryPath string
	memoryAddr uint64
	memorySize uint64
	freqMHz    float64
	index      uint16
	limit      uint32
	gprs       []string
	maxCycles  uint64

	record      bool
	recordPath  string
	monitor     bool
	monitorPort int
	openBrowser bool
	logEvents   bool

	dumpPlane int
	dumpSlot  uint16
	dumpCount int
}

func newRunCmd() *cobra.Command {
	c := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a descriptor ring.",
		Long: "`run --ring ring.bin` loads the descriptor ring into system " +
			"memory, starts the channel at the given descriptor index, and " +
			"runs until the channel stops.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := applyEnv(cmd)
			if err != nil {
				return err
			}

			return c.run(cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.ringPath, "ring", "", "Descriptor ring image.")
	f.Uint64Var(&c.ringAddr, "ring-addr", 0,
		"System memory address that the ring is loaded to.")
	f.StringVar(&c.memoryPath, "memory", "", "System memory image.")
	f.Uint64Var(&c.memoryAddr, "memory-addr", 0x10000,
		"System memory address that the memory image is loaded to.")
	f.Uint64Var(&c.memorySize, "memory-size", 16<<20,
		"Size of the system memory in bytes.")
	f.Float64Var(&c.freqMHz, "freq-mhz", 1000, "Frequency of the engine.")
	f.Uint16Var(&c.index, "index", 0, "First descriptor index.")
	f.Uint32Var(&c.limit, "limit", 0,
		"Address limit. Limit checking is disabled if 0.")
	f.Uint64Var(&c.maxCycles, "max-cycles", 0,
		"Stop after this many cycles. Runs until the channel stops if 0.")
	f.StringArrayVar(&c.gprs, "gpr", nil,
		"Set a general register, as index=value. Can be repeated.")
	f.BoolVar(&c.record, "record", false,
		"Record the executed descriptors into a SQLite database.")
	f.StringVar(&c.recordPath, "record-path", "",
		"Database name without extension. Generated if empty.")
	f.BoolVar(&c.monitor, "monitor", false, "Serve the monitoring API.")
	f.IntVar(&c.monitorPort, "monitor-port", 0,
		"Port of the monitoring API. A random port is used if 0.")
	f.BoolVar(&c.openBrowser, "open-browser", false,
		"Open the monitoring API in a browser.")
	f.BoolVar(&c.logEvents, "log-events", false,
		"Print every event that the engine handles.")
	f.IntVar(&c.dumpPlane, "dump-plane", 0, "Local memory plane to print.")
	f.Uint16Var(&c.dumpSlot, "dump-slot", 0, "First local memory slot to print.")
	f.IntVar(&c.dumpCount, "dump-count", 4, "Number of slots to print.")

	err := cmd.MarkFlagRequired("ring")
	if err != nil {
		log.Panic(err)
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

// applyEnv sets the flags that are not given on the command line from the
// environment.
func applyEnv(cmd *cobra.Command) error {
	for flag, env := range envBindings {
		if cmd.Flags().Changed(flag) {
			continue
		}

		value, ok := os.LookupEnv(env)
		if !ok {
			continue
		}

		err := cmd.Flags().Set(flag, value)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}

	return nil
}

func (c *runConfig) run(out io.Writer) error {
	err := c.validate()
	if err != nil {
		return err
	}

	ring, err := os.ReadFile(c.ringPath)
	if err != nil {
		return err
	}

	if len(ring) == 0 || len(ring)%dma.DescriptorSize != 0 {
		return fmt.Errorf("ring %s has %d bytes, not a multiple of %d",
			c.ringPath, len(ring), dma.DescriptorSize)
	}

	// Recorded traces carry ids that stay unique across runs.
	if c.record {
		sim.UseParallelIDGenerator()
	} else {
		sim.UseSequentialIDGenerator()
	}

	engine := sim.NewSerialEngine()
	if c.logEvents {
		engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	sysMem := mem.NewStorage(c.memorySize)

	err = sysMem.Write(c.ringAddr, ring)
	if err != nil {
		return fmt.Errorf("loading ring: %w", err)
	}

	err = c.loadMemoryImage(sysMem)
	if err != nil {
		return err
	}

	gprs, err := c.generalRegisters()
	if err != nil {
		return err
	}

	localMem := coproc.NewLocalMemory()

	comp := dma.MakeBuilder().
		WithEngine(engine).
		WithFreq(sim.Freq(c.freqMHz) * sim.MHz).
		WithSystemMemory(sysMem).
		WithLocalMemory(localMem).
		WithGeneralRegisters(gprs).
		Build("DMA")
	comp.Channel().AcceptHook(dma.NewCauseLogger(log.New(os.Stderr, "", 0)))

	if c.record {
		stop := c.startRecording(engine, comp)
		defer stop()
	}

	busy := tracing.NewBusyTimeTracer(engine)
	tracing.CollectTrace(comp.Channel(),
		tracing.Filtered(tracing.KindIs("dma"), busy))

	if c.monitor {
		c.startMonitor(engine, comp, uint64(len(ring)/dma.DescriptorSize))
	}

	comp.WriteRegister(dma.RegDescBase, uint32(c.ringAddr))
	comp.WriteRegister(dma.RegDescIndex, uint32(c.index))

	if c.limit > 0 {
		comp.WriteRegister(dma.RegAddrLimit, c.limit)
		comp.WriteRegister(dma.RegConfig, dma.ConfigLimitCheck)
	}

	comp.WriteRegister(dma.RegControl, dma.ControlStart)

	err = c.runEngine(engine)
	if errors.Is(err, sim.ErrDeadlineReached) {
		fmt.Fprintf(out, "Stopped after %d cycles\n", c.maxCycles)
	} else if err != nil {
		return err
	}

	return c.report(out, engine, comp, localMem, busy)
}

func (c *runConfig) runEngine(engine sim.Engine) error {
	if c.maxCycles == 0 {
		return engine.Run()
	}

	freq := sim.Freq(c.freqMHz) * sim.MHz
	deadline := sim.VTimeInSec(float64(c.maxCycles) * float64(freq.Period()))

	return engine.RunUntil(deadline)
}

func (c *runConfig) validate() error {
	if c.freqMHz <= 0 {
		return fmt.Errorf("invalid frequency %g MHz", c.freqMHz)
	}

	if c.ringAddr > 0xffffffff {
		return fmt.Errorf("ring address 0x%x does not fit in DescBase",
			c.ringAddr)
	}

	if c.dumpPlane < 0 || c.dumpPlane >= dma.NumPlanes {
		return fmt.Errorf("invalid plane %d", c.dumpPlane)
	}

	if c.dumpCount < 0 || int(c.dumpSlot)+c.dumpCount > dma.SlotsPerPlane {
		return fmt.Errorf("cannot print %d slots from slot %d",
			c.dumpCount, c.dumpSlot)
	}

	return nil
}

func (c *runConfig) loadMemoryImage(sysMem *mem.Storage) error {
	if c.memoryPath == "" {
		return nil
	}

	data, err := os.ReadFile(c.memoryPath)
	if err != nil {
		return err
	}

	err = sysMem.Write(c.memoryAddr, data)
	if err != nil {
		return fmt.Errorf("loading memory image: %w", err)
	}

	return nil
}

func (c *runConfig) generalRegisters() (*coproc.GPRFile, error) {
	gprs := coproc.NewGPRFile()

	for _, assignment := range c.gprs {
		indexStr, valueStr, ok := strings.Cut(assignment, "=")
		if !ok {
			return nil, fmt.Errorf("invalid register assignment %q", assignment)
		}

		index, err := strconv.Atoi(indexStr)
		if err != nil || index < 0 || index >= coproc.NumGeneralRegisters {
			return nil, fmt.Errorf("invalid register index %q", indexStr)
		}

		value, err := strconv.ParseUint(valueStr, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid register value %q: %w",
				valueStr, err)
		}

		gprs.WriteGeneralRegister(index, value)
	}

	return gprs, nil
}

func (c *runConfig) startRecording(
	engine sim.TimeTeller,
	comp *dma.Comp,
) func() {
	recorder := datarecording.New(c.recordPath)

	execRecorder := datarecording.NewExecRecorder(recorder)
	execRecorder.Start()
	execRecorder.Record("Ring", c.ringPath)
	execRecorder.Record("Memory Image", c.memoryPath)

	tracer := tracing.NewDBTracer(engine, recorder)
	tracing.CollectTrace(comp.Channel(), tracer)

	return func() {
		execRecorder.End()
		tracer.Terminate()
		recorder.Close()
	}
}

func (c *runConfig) startMonitor(
	engine sim.Engine,
	comp *dma.Comp,
	numDescriptors uint64,
) {
	m := monitoring.NewMonitor().
		WithPortNumber(c.monitorPort).
		WithBrowser(c.openBrowser)
	m.RegisterEngine(engine)
	m.RegisterComponent(comp)

	bar := m.CreateProgressBar("Descriptors", numDescriptors)
	tracing.CollectTrace(comp.Channel(), bar)

	m.StartServer()
}

func (c *runConfig) report(
	out io.Writer,
	engine sim.Engine,
	comp *dma.Comp,
	localMem *coproc.LocalMemory,
	busy *tracing.BusyTimeTracer,
) error {
	fmt.Fprintf(out, "Time: %.9fs\n", float64(engine.CurrentTime()))
	fmt.Fprintf(out, "Events: %d\n", engine.EventCount())
	fmt.Fprintf(out, "State: %s\n", comp.State())

	for _, b := range busy.Breakdown() {
		fmt.Fprintf(out, "%-10s %d descriptors, %.9fs\n",
			b.What, b.TaskCount, float64(b.Time))
	}

	for _, reg := range dma.Registers {
		value := comp.ReadRegister(reg)

		switch reg {
		case dma.RegIntCause:
			fmt.Fprintf(out, "%-10s 0x%08x %s\n", reg, value, dma.Cause(value))
		default:
			fmt.Fprintf(out, "%-10s 0x%08x\n", reg, value)
		}
	}

	fmt.Fprintf(out, "Plane %d:\n", c.dumpPlane)

	for i := 0; i < c.dumpCount; i++ {
		slot := c.dumpSlot + uint16(i)
		data := localMem.ReadSlot(c.dumpPlane, slot)
		fmt.Fprintf(out, "%04x: % x\n", slot, data[:])
	}

	return nil
}
