// Package loader builds pipelines from YAML definitions.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sarchlab/pypes/flow"
)

// Loaded is a pipeline built from a definition.
type Loaded struct {
	Definition *Definition
	Pipeline   *flow.Pipeline

	// Elements maps the names of the definition to the elements.
	Elements map[string]flow.Element
}

// Loader builds pipelines from definitions.
type Loader struct {
	registry *Registry
	builder  flow.Builder
}

// NewLoader creates a Loader that creates elements with registry and
// pipelines with builder.
func NewLoader(registry *Registry, builder flow.Builder) *Loader {
	return &Loader{
		registry: registry,
		builder:  builder,
	}
}

// LoadFile parses and builds a definition file. A definition without a
// name is named after the file.
func (l *Loader) LoadFile(path string) (*Loaded, error) {
	def, err := ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if def.Name == "" {
		base := filepath.Base(path)
		def.Name = strings.Join(
			strings.Fields(strings.TrimSuffix(base, filepath.Ext(base))), "_")
	}

	loaded, err := l.Load(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return loaded, nil
}

// Load builds a parsed definition.
func (l *Loader) Load(def *Definition) (*Loaded, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	name := def.Name
	if name == "" {
		name = "pipeline"
	}

	builder := l.builder
	if def.StallLimit > 0 {
		builder = builder.WithStallLimit(def.StallLimit)
	}

	loaded := &Loaded{
		Definition: def,
		Elements:   make(map[string]flow.Element, len(def.Elements)),
	}

	for _, e := range def.Elements {
		element, err := l.registry.Create(e)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", e.Name, err)
		}

		loaded.Elements[e.Name] = element
	}

	loaded.Pipeline = builder.Build(name)

	for _, c := range def.Connections {
		err := loaded.Pipeline.ConnectPorts(
			loaded.Elements[c.From],
			loaded.Elements[c.To],
			portOr(c.FromPort),
			portOr(c.ToPort),
		)
		if err != nil {
			return nil, fmt.Errorf("connect %s -> %s: %w", c.From, c.To, err)
		}
	}

	return loaded, nil
}

func portOr(port string) string {
	if port == "" {
		return flow.DefaultPort
	}

	return port
}
