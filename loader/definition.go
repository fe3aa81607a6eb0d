package loader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDefinition is returned for pipeline definitions that cannot be
// built.
var ErrInvalidDefinition = errors.New("invalid pipeline definition")

//go:embed schema.json
var schemaJSON string

var definitionSchema = gojsonschema.NewStringLoader(schemaJSON)

// Definition describes a pipeline.
type Definition struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	StallLimit  int             `yaml:"stall_limit"`
	Elements    []ElementDef    `yaml:"elements"`
	Connections []ConnectionDef `yaml:"connections"`
}

// ElementDef describes one element. Config is decoded into the config
// struct of the element type.
type ElementDef struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config"`
}

// ConnectionDef connects an output port of one element to an input port of
// another. Empty ports are the default port.
type ConnectionDef struct {
	From     string `yaml:"from"`
	FromPort string `yaml:"from_port"`
	To       string `yaml:"to"`
	ToPort   string `yaml:"to_port"`
}

// ParseFile reads a definition from a YAML file.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML definition and checks it against the definition
// schema.
func Parse(data []byte) (*Definition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDefinition,
			yaml.FormatError(err, false, true))
	}

	result, err := gojsonschema.Validate(definitionSchema,
		gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidDefinition,
			strings.Join(msgs, "; "))
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDefinition,
			yaml.FormatError(err, false, true))
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// Validate checks the references between elements and connections.
func (d *Definition) Validate() error {
	declared := make(map[string]bool, len(d.Elements))
	for _, e := range d.Elements {
		if declared[e.Name] {
			return fmt.Errorf("%w: element %q declared twice",
				ErrInvalidDefinition, e.Name)
		}

		declared[e.Name] = true
	}

	used := make(map[string]bool, len(d.Elements))
	for _, c := range d.Connections {
		for _, name := range []string{c.From, c.To} {
			if !declared[name] {
				return fmt.Errorf("%w: connection refers to unknown element %q",
					ErrInvalidDefinition, name)
			}

			used[name] = true
		}
	}

	for _, e := range d.Elements {
		if !used[e.Name] {
			return fmt.Errorf("%w: element %q is not connected",
				ErrInvalidDefinition, e.Name)
		}
	}

	return nil
}
