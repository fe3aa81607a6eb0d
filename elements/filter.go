package elements

import (
	"fmt"

	"github.com/sarchlab/pypes/flow"
)

// FilterFunc decides whether a packet passes.
type FilterFunc func(packet flow.Packet) bool

// FilterConfig configures a Filter.
type FilterConfig struct {
	Name   string
	Filter FilterFunc
}

// A Filter passes through the packets its predicate accepts and drops the
// others. Dropping a packet still counts as progress.
type Filter struct {
	flow.ElementBase

	accept FilterFunc
}

// NewFilter creates a Filter from a custom predicate.
func NewFilter(cfg FilterConfig) (*Filter, error) {
	if cfg.Filter == nil {
		return nil, invalid("filter without filter func")
	}

	f := makeFilter(nameOr(cfg.Name, "Filter"), cfg.Filter)

	return &f, nil
}

func makeFilter(name string, accept FilterFunc) Filter {
	return Filter{
		ElementBase: flow.MakeElementBase(name),
		accept:      accept,
	}
}

// Run filters one packet.
func (f *Filter) Run() (flow.Step, error) {
	packet, step, err := take(&f.ElementBase, flow.DefaultPort)
	if step != flow.Progressed || err != nil {
		return step, err
	}

	if !f.accept(packet) {
		return flow.Progressed, nil
	}

	if err := f.Put(packet, flow.DefaultPort); err != nil {
		return flow.Idle, err
	}

	return flow.Progressed, nil
}

// HeadConfig configures a Head.
type HeadConfig struct {
	Name string `yaml:"name"`

	// N is the number of packets to let through. Zero or negative means
	// all, so a Head declared without n passes everything.
	N int `yaml:"n"`
}

// Head lets the first N packets through and drops the rest. It keeps
// draining its input until EOF.
type Head struct {
	Filter

	n    int
	seen int
}

// NewHead creates a Head.
func NewHead(cfg HeadConfig) (*Head, error) {
	h := &Head{n: cfg.N}
	h.Filter = makeFilter(nameOr(cfg.Name, "Head"), h.within)

	return h, nil
}

func (h *Head) within(flow.Packet) bool {
	pass := h.n <= 0 || h.seen < h.n
	h.seen++

	return pass
}

func typeName(packet flow.Packet) string {
	return fmt.Sprintf("%T", packet)
}
