// Package structured provides elements for JSON-like packets: extraction
// with JSONPath and filtering with JSON Schema.
package structured

import (
	"fmt"
	"os"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

// decode turns JSON text packets into values. Other packets are returned as
// they are.
func decode(packet flow.Packet) (any, error) {
	switch v := packet.(type) {
	case []byte:
		return oj.Parse(v)
	case string:
		return oj.ParseString(v)
	default:
		return packet, nil
	}
}

// JSONPathConfig configures a JSONPath.
type JSONPathConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// Multiple emits every match as a []any instead of the first one.
	Multiple bool `yaml:"multiple"`

	// Default is emitted when nothing matches.
	Default any `yaml:"default"`
}

// JSONPath extracts values from packets. String and []byte packets are
// parsed as JSON first.
type JSONPath struct {
	*elements.Transformer

	path     string
	expr     jp.Expr
	multiple bool
	fallback any
}

// NewJSONPath creates a JSONPath. The path is parsed once.
func NewJSONPath(cfg JSONPathConfig) (*JSONPath, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: path not specified", elements.ErrInvalidConfig)
	}

	expr, err := jp.ParseString(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONPath expression: %v",
			elements.ErrInvalidConfig, err)
	}

	if cfg.Name == "" {
		cfg.Name = "JSONPath"
	}

	j := &JSONPath{
		path:     cfg.Path,
		expr:     expr,
		multiple: cfg.Multiple,
		fallback: cfg.Default,
	}

	t, err := elements.NewTransformer(elements.TransformerConfig{
		Name:      cfg.Name,
		Transform: j.extract,
	})
	if err != nil {
		return nil, err
	}

	j.Transformer = t

	return j, nil
}

func (j *JSONPath) extract(packet flow.Packet) (flow.Packet, error) {
	data, err := decode(packet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", elements.ErrUnsupportedPacket, err)
	}

	results := j.expr.Get(data)

	if len(results) == 0 {
		if j.fallback != nil {
			return j.fallback, nil
		}

		if j.multiple {
			return []any{}, nil
		}

		return nil, nil
	}

	if j.multiple {
		return results, nil
	}

	return results[0], nil
}

// SchemaFilterConfig configures a SchemaFilter. Exactly one of Schema and
// SchemaFile is set.
type SchemaFilterConfig struct {
	Name       string `yaml:"name"`
	Schema     string `yaml:"schema"`
	SchemaFile string `yaml:"schema_file"`
}

// SchemaFilter keeps the packets that are valid under a JSON Schema and
// drops the others.
type SchemaFilter struct {
	*elements.Filter

	schema  *gojsonschema.Schema
	dropped int
}

// NewSchemaFilter creates a SchemaFilter. The schema is compiled once.
func NewSchemaFilter(cfg SchemaFilterConfig) (*SchemaFilter, error) {
	schemaText := cfg.Schema

	switch {
	case cfg.Schema != "" && cfg.SchemaFile != "":
		return nil, fmt.Errorf("%w: both schema and schema_file given",
			elements.ErrInvalidConfig)
	case cfg.SchemaFile != "":
		content, err := os.ReadFile(cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("read schema file: %w", err)
		}

		schemaText = string(content)
	case strings.TrimSpace(cfg.Schema) == "":
		return nil, fmt.Errorf("%w: schema not specified",
			elements.ErrInvalidConfig)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaText))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid schema: %v",
			elements.ErrInvalidConfig, err)
	}

	if cfg.Name == "" {
		cfg.Name = "SchemaFilter"
	}

	s := &SchemaFilter{schema: schema}

	f, err := elements.NewFilter(elements.FilterConfig{
		Name:   cfg.Name,
		Filter: s.valid,
	})
	if err != nil {
		return nil, err
	}

	s.Filter = f

	return s, nil
}

// Dropped returns the number of packets rejected so far.
func (s *SchemaFilter) Dropped() int {
	return s.dropped
}

func (s *SchemaFilter) valid(packet flow.Packet) bool {
	data, err := decode(packet)
	if err != nil {
		s.reject(err.Error())
		return false
	}

	result, err := s.schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		s.reject(err.Error())
		return false
	}

	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}

		s.reject(strings.Join(reasons, "; "))

		return false
	}

	return true
}

func (s *SchemaFilter) reject(reason string) {
	s.dropped++

	s.Logger().Debug("packet dropped",
		zap.String("element", s.Name()),
		zap.String("reason", reason))
}
