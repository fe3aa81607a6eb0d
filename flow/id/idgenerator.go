// Package id generates identifiers for pipelines and recorded runs.
package id

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator generates string IDs.
type Generator interface {
	Generate() string
}

// NewSequentialGenerator returns a generator that emits "1", "2", ... which
// keeps test output deterministic.
func NewSequentialGenerator() Generator {
	return &sequentialGenerator{}
}

// NewGlobalGenerator returns a generator of globally unique IDs.
func NewGlobalGenerator() Generator {
	return globalGenerator{}
}

type sequentialGenerator struct {
	nextID uint64
}

func (g *sequentialGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	return strconv.FormatUint(idNumber, 10)
}

type globalGenerator struct{}

func (globalGenerator) Generate() string {
	return xid.New().String()
}
