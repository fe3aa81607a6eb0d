package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/sarchlab/pypes/flow"
)

// ErrUnknownType is returned when a definition uses an element type that
// is not registered.
var ErrUnknownType = errors.New("unknown element type")

// A Constructor creates an element from the config map of its definition.
// The map always carries the element name under "name".
type Constructor func(config map[string]any) (flow.Element, error)

// ElementType describes a registered element type.
type ElementType struct {
	Type        string
	Category    string
	Description string
	New         Constructor
}

// Registry maps element type names to constructors.
type Registry struct {
	types map[string]ElementType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]ElementType),
	}
}

// Register adds an element type. Registering a type name twice panics.
func (r *Registry) Register(t ElementType) {
	if _, found := r.types[t.Type]; found {
		panic(fmt.Sprintf("element type %s registered twice", t.Type))
	}

	if t.New == nil {
		panic(fmt.Sprintf("element type %s has no constructor", t.Type))
	}

	r.types[t.Type] = t
}

// Get returns an element type by name.
func (r *Registry) Get(typeName string) (ElementType, bool) {
	t, found := r.types[typeName]
	return t, found
}

// Types returns every registered type, sorted by category and name.
func (r *Registry) Types() []ElementType {
	list := make([]ElementType, 0, len(r.types))
	for _, t := range r.types {
		list = append(list, t)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}

		return list[i].Type < list[j].Type
	})

	return list
}

// Create builds the element of a definition.
func (r *Registry) Create(def ElementDef) (flow.Element, error) {
	t, found := r.types[def.Type]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, def.Type)
	}

	if strings.ContainsAny(def.Name, " \t\n") {
		return nil, fmt.Errorf("%w: element name %q contains whitespace",
			ErrInvalidDefinition, def.Name)
	}

	config := make(map[string]any, len(def.Config)+1)
	for k, v := range def.Config {
		config[k] = v
	}

	config["name"] = def.Name

	return t.New(config)
}

// Make turns a typed element constructor into a Constructor. The config map
// is decoded into C with the yaml tags of C. Unknown keys are rejected.
func Make[C any, E flow.Element](newElement func(C) (E, error)) Constructor {
	return func(config map[string]any) (flow.Element, error) {
		var cfg C
		if err := Decode(config, &cfg); err != nil {
			return nil, err
		}

		e, err := newElement(cfg)
		if err != nil {
			return nil, err
		}

		return e, nil
	}
}

// Decode converts a generic config map into a config struct.
func Decode(config map[string]any, out any) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	if err := yaml.UnmarshalWithOptions(data, out,
		yaml.DisallowUnknownField()); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDefinition,
			yaml.FormatError(err, false, false))
	}

	return nil
}
