package flow

import (
	"go.uber.org/zap"

	"github.com/sarchlab/pypes/flow/hooking"
	"github.com/sarchlab/pypes/flow/id"
	"github.com/sarchlab/pypes/flow/naming"
)

// Builder builds pipelines.
type Builder struct {
	logger      *zap.Logger
	stallLimit  int
	hooks       []hooking.Hook
	idGenerator id.Generator
}

// MakeBuilder creates a Builder with default settings: no logging, no stall
// limit and globally unique pipeline IDs.
func MakeBuilder() Builder {
	return Builder{
		logger:      zap.NewNop(),
		idGenerator: id.NewGlobalGenerator(),
	}
}

// WithLogger sets the logger used by the pipeline and its elements.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	if logger == nil {
		logger = zap.NewNop()
	}

	b.logger = logger

	return b
}

// WithStallLimit makes ExecuteContext fail with ErrStalled after n
// consecutive ticks in which no element made progress. Zero disables the
// check.
func (b Builder) WithStallLimit(n int) Builder {
	b.stallLimit = n
	return b
}

// WithHook registers a hook on the pipeline.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// WithIDGenerator sets the generator for the pipeline ID.
func (b Builder) WithIDGenerator(g id.Generator) Builder {
	b.idGenerator = g
	return b
}

// Build creates a new empty pipeline.
func (b Builder) Build(name string) *Pipeline {
	naming.NameMustBeValid(name)

	p := &Pipeline{
		graph:      makeGraph(),
		name:       name,
		id:         b.idGenerator.Generate(),
		logger:     b.logger.Named(name),
		stallLimit: b.stallLimit,
		names:      naming.NewRegistry[ElementID](),
	}

	for _, h := range b.hooks {
		p.AcceptHook(h)
	}

	return p
}
