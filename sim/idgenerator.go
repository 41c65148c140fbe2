package sim

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator produces the ids of events and traced tasks.
type IDGenerator interface {
	Generate() string
}

var (
	idLock      sync.Mutex
	idGenerator IDGenerator = &sequentialIDGenerator{}
)

// UseSequentialIDGenerator restarts ids at 1. Two runs of the same ring then
// produce the same ids.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator makes ids globally unique, so that the traces of
// several runs can be put into one database.
func UseParallelIDGenerator() {
	setIDGenerator(xidGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idLock.Lock()
	idGenerator = g
	idLock.Unlock()
}

// GetIDGenerator returns the generator in use.
func GetIDGenerator() IDGenerator {
	idLock.Lock()
	defer idLock.Unlock()

	return idGenerator
}

type sequentialIDGenerator struct {
	last atomic.Uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(g.last.Add(1), 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
