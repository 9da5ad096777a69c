// Package id generates identifiers for events.
package id

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	Generate() string
}

var (
	defaultGenerator     IDGenerator = NewSequentialIDGenerator()
	defaultGeneratorLock sync.RWMutex
)

// Default returns the generator used by events that are not given one.
func Default() IDGenerator {
	defaultGeneratorLock.RLock()
	defer defaultGeneratorLock.RUnlock()

	return defaultGenerator
}

// UseGenerator replaces the default generator. Events created before the
// call keep their IDs.
func UseGenerator(g IDGenerator) {
	if g == nil {
		panic("id generator cannot be nil")
	}

	defaultGeneratorLock.Lock()
	defaultGenerator = g
	defaultGeneratorLock.Unlock()
}

// Generate returns a new ID from the default generator.
func Generate() string {
	return Default().Generate()
}

// NewSequentialIDGenerator returns a generator that counts up from 1. IDs are
// only unique within the process.
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

// NewXIDGenerator returns a generator that produces globally unique xids.
// Use it when IDs from several processes end up in the same trace.
func NewXIDGenerator() IDGenerator {
	return xidGenerator{}
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
