package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTableName = "exec_info"

type execInfo struct {
	Property string
	Value    string
}

// ExecRecorder records the metadata of a program execution, such as when it
// started, the command line, and any user-provided properties.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []execInfo
}

// NewExecRecorder creates an ExecRecorder that writes to the "exec_info" table
// of the given recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(execTableName, execInfo{})

	return &ExecRecorder{
		recorder: recorder,
	}
}

// Start records the start time, the command, and the working directory.
func (e *ExecRecorder) Start() {
	e.Record("Start Time", now())
	e.Record("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	e.Record("Working Directory", cwd)
}

// Record adds a property to the execution information.
func (e *ExecRecorder) Record(property, value string) {
	e.entries = append(e.entries, execInfo{Property: property, Value: value})
}

// End writes all the buffered properties along with the end time.
func (e *ExecRecorder) End() {
	e.Record("End Time", now())

	for _, entry := range e.entries {
		e.recorder.InsertData(execTableName, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
