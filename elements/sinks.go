package elements

import "github.com/sarchlab/pypes/flow"

// NullSinkConfig configures a NullSink.
type NullSinkConfig struct {
	Name string `yaml:"name"`
}

// NullSink discards every packet it receives.
type NullSink struct {
	flow.ElementBase
}

// NewNullSink creates a NullSink.
func NewNullSink(cfg NullSinkConfig) (*NullSink, error) {
	return &NullSink{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "NullSink")),
	}, nil
}

// Run drops one packet.
func (s *NullSink) Run() (flow.Step, error) {
	_, step, err := take(&s.ElementBase, flow.DefaultPort)
	return step, err
}

// StoreSinkConfig configures a StoreSink.
type StoreSinkConfig struct {
	Name string `yaml:"name"`
}

// StoreSink keeps every packet it receives.
type StoreSink struct {
	flow.ElementBase

	packets []flow.Packet
}

// NewStoreSink creates a StoreSink.
func NewStoreSink(cfg StoreSinkConfig) (*StoreSink, error) {
	return &StoreSink{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "StoreSink")),
	}, nil
}

// Packets returns the packets received so far, in arrival order.
func (s *StoreSink) Packets() []flow.Packet {
	return s.packets
}

// Run stores one packet.
func (s *StoreSink) Run() (flow.Step, error) {
	packet, step, err := take(&s.ElementBase, flow.DefaultPort)
	if step != flow.Progressed || err != nil {
		return step, err
	}

	s.packets = append(s.packets, packet)

	return step, nil
}

// PackerConfig configures a Packer.
type PackerConfig struct {
	Name string `yaml:"name"`
}

// Packer collects every packet and emits them as one []any at EOF.
type Packer struct {
	flow.ElementBase

	packets []any
}

// NewPacker creates a Packer.
func NewPacker(cfg PackerConfig) (*Packer, error) {
	return &Packer{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "Packer")),
	}, nil
}

// Run collects one packet, or emits the collection at EOF.
func (p *Packer) Run() (flow.Step, error) {
	res, err := p.Get(flow.DefaultPort)
	if err != nil {
		return flow.Idle, err
	}

	switch res.Status {
	case flow.Empty:
		return flow.Idle, nil
	case flow.EOF:
		packets := p.packets
		if packets == nil {
			packets = []any{}
		}

		if err := p.Put(packets, flow.DefaultPort); err != nil {
			return flow.Idle, err
		}

		p.packets = nil

		return p.Finish()
	}

	p.packets = append(p.packets, res.Packet)

	return flow.Progressed, nil
}
