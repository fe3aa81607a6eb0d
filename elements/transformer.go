package elements

import (
	"go.uber.org/zap"

	"github.com/sarchlab/pypes/flow"
)

// TransformFunc maps one packet to another.
type TransformFunc func(packet flow.Packet) (flow.Packet, error)

// TransformerConfig configures a Transformer.
type TransformerConfig struct {
	Name      string
	Transform TransformFunc
}

// A Transformer reads one packet, transforms it and writes the result.
type Transformer struct {
	flow.ElementBase

	transform TransformFunc
}

// NewTransformer creates a Transformer from a custom function.
func NewTransformer(cfg TransformerConfig) (*Transformer, error) {
	if cfg.Transform == nil {
		return nil, invalid("transformer without transform func")
	}

	t := makeTransformer(nameOr(cfg.Name, "Transformer"), cfg.Transform)

	return &t, nil
}

func makeTransformer(name string, f TransformFunc) Transformer {
	return Transformer{
		ElementBase: flow.MakeElementBase(name),
		transform:   f,
	}
}

// Run transforms one packet.
func (t *Transformer) Run() (flow.Step, error) {
	packet, step, err := take(&t.ElementBase, flow.DefaultPort)
	if step != flow.Progressed || err != nil {
		return step, err
	}

	out, err := t.transform(packet)
	if err != nil {
		return flow.Idle, err
	}

	if err := t.Put(out, flow.DefaultPort); err != nil {
		return flow.Idle, err
	}

	return flow.Progressed, nil
}

// AdderConfig configures an Adder.
type AdderConfig struct {
	Name string `yaml:"name"`

	// Amount is a number, or a string for packets that are strings.
	Amount any `yaml:"amount"`
}

// Adder adds a constant to every packet.
type Adder struct {
	Transformer

	amount any
}

// NewAdder creates an Adder.
func NewAdder(cfg AdderConfig) (*Adder, error) {
	amount := cfg.Amount
	if amount == nil {
		amount = 0
	}

	if _, isNumber := asNumber(amount); !isNumber {
		if _, isString := amount.(string); !isString {
			return nil, invalid("adder amount %v is not a number", amount)
		}
	}

	a := &Adder{amount: amount}
	a.Transformer = makeTransformer(nameOr(cfg.Name, "Adder"), a.add)

	return a, nil
}

func (a *Adder) add(packet flow.Packet) (flow.Packet, error) {
	if s, ok := packet.(string); ok {
		suffix, ok := a.amount.(string)
		if !ok {
			return nil, unsupported(packet, "a number")
		}

		return s + suffix, nil
	}

	x, ok := asNumber(packet)
	if !ok {
		return nil, unsupported(packet, "a number")
	}

	y, ok := asNumber(a.amount)
	if !ok {
		return nil, unsupported(packet, "a string")
	}

	if x.isFloat || y.isFloat {
		return x.float() + y.float(), nil
	}

	if _, isInt := packet.(int); isInt {
		return int(x.i + y.i), nil
	}

	return x.i + y.i, nil
}

type number struct {
	i       int64
	f       float64
	isFloat bool
}

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}

	return float64(n.i)
}

func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{i: int64(n)}, true
	case int8:
		return number{i: int64(n)}, true
	case int16:
		return number{i: int64(n)}, true
	case int32:
		return number{i: int64(n)}, true
	case int64:
		return number{i: n}, true
	case uint:
		return number{i: int64(n)}, true
	case uint8:
		return number{i: int64(n)}, true
	case uint16:
		return number{i: int64(n)}, true
	case uint32:
		return number{i: int64(n)}, true
	case uint64:
		return number{i: int64(n)}, true
	case float32:
		return number{f: float64(n), isFloat: true}, true
	case float64:
		return number{f: n, isFloat: true}, true
	default:
		return number{}, false
	}
}

// DictFixerConfig configures a DictFixer.
type DictFixerConfig struct {
	Name   string         `yaml:"name"`
	Values map[string]any `yaml:"values"`

	// Override replaces keys the packet already has.
	Override bool `yaml:"override"`
}

// DictFixer sets default values on map packets. The packet is updated in
// place.
type DictFixer struct {
	Transformer

	values   map[string]any
	override bool
}

// NewDictFixer creates a DictFixer.
func NewDictFixer(cfg DictFixerConfig) (*DictFixer, error) {
	d := &DictFixer{
		values:   cfg.Values,
		override: cfg.Override,
	}
	d.Transformer = makeTransformer(nameOr(cfg.Name, "DictFixer"), d.fix)

	return d, nil
}

func (d *DictFixer) fix(packet flow.Packet) (flow.Packet, error) {
	m, ok := packet.(map[string]any)
	if !ok {
		return nil, unsupported(packet, "map[string]any")
	}

	for k, v := range d.values {
		if _, found := m[k]; found && !d.override {
			continue
		}

		m[k] = v
	}

	return m, nil
}

// DictFilterConfig configures a DictFilter.
type DictFilterConfig struct {
	Name string `yaml:"name"`

	// Keys lists the keys to keep. A nil list keeps everything.
	Keys []string `yaml:"keys"`
}

// DictFilter keeps only the listed keys of map packets.
type DictFilter struct {
	Transformer

	keys map[string]bool
}

// NewDictFilter creates a DictFilter.
func NewDictFilter(cfg DictFilterConfig) (*DictFilter, error) {
	d := &DictFilter{}

	if cfg.Keys != nil {
		d.keys = make(map[string]bool, len(cfg.Keys))
		for _, k := range cfg.Keys {
			d.keys[k] = true
		}
	}

	d.Transformer = makeTransformer(nameOr(cfg.Name, "DictFilter"), d.filter)

	return d, nil
}

func (d *DictFilter) filter(packet flow.Packet) (flow.Packet, error) {
	m, ok := packet.(map[string]any)
	if !ok {
		return nil, unsupported(packet, "map[string]any")
	}

	if d.keys == nil {
		return m, nil
	}

	out := make(map[string]any, len(d.keys))
	for k, v := range m {
		if d.keys[k] {
			out[k] = v
		}
	}

	return out, nil
}

// ProbeConfig configures a Probe.
type ProbeConfig struct {
	Name    string `yaml:"name"`
	Message string `yaml:"message"`
}

// Probe passes packets through unchanged and logs each one at info level
// with the pipeline logger.
type Probe struct {
	Transformer

	message string
	seen    int
}

// NewProbe creates a Probe.
func NewProbe(cfg ProbeConfig) (*Probe, error) {
	p := &Probe{message: cfg.Message}
	if p.message == "" {
		p.message = "packet"
	}

	p.Transformer = makeTransformer(nameOr(cfg.Name, "Probe"), p.log)

	return p, nil
}

// Seen returns the number of packets that went through the probe.
func (p *Probe) Seen() int {
	return p.seen
}

func (p *Probe) log(packet flow.Packet) (flow.Packet, error) {
	p.seen++

	p.Logger().Info(p.message,
		zap.String("element", p.Name()),
		zap.Int("seq", p.seen),
		zap.String("type", typeName(packet)),
		zap.Any("packet", packet))

	return packet, nil
}
