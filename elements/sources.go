package elements

import "github.com/sarchlab/pypes/flow"

// SampleSrcConfig configures a SampleSrc.
type SampleSrcConfig struct {
	Name   string `yaml:"name"`
	Sample []any  `yaml:"sample"`
}

// SampleSrc emits a fixed list of packets in order.
type SampleSrc struct {
	flow.ElementBase

	sample []any
}

// NewSampleSrc creates a SampleSrc. The sample is copied.
func NewSampleSrc(cfg SampleSrcConfig) (*SampleSrc, error) {
	s := &SampleSrc{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "SampleSrc")),
		sample:      append([]any(nil), cfg.Sample...),
	}

	return s, nil
}

// Remaining returns the number of packets not yet emitted.
func (s *SampleSrc) Remaining() int {
	return len(s.sample)
}

// Run emits the next packet of the sample.
func (s *SampleSrc) Run() (flow.Step, error) {
	if len(s.sample) == 0 {
		return s.Finish()
	}

	if err := s.Put(s.sample[0], flow.DefaultPort); err != nil {
		return flow.Idle, err
	}

	s.sample = s.sample[1:]

	return flow.Progressed, nil
}

// NextFunc produces the next packet of a generator. It returns false when
// the generator is exhausted.
type NextFunc func() (any, bool)

// GeneratorSrcConfig configures a GeneratorSrc.
type GeneratorSrcConfig struct {
	Name string
	Next NextFunc

	// Iterations bounds the number of packets emitted. Zero or negative
	// means no bound.
	Iterations int
}

// GeneratorSrc emits the packets produced by a NextFunc.
type GeneratorSrc struct {
	flow.ElementBase

	next       NextFunc
	iterations int
	emitted    int
}

// NewGeneratorSrc creates a GeneratorSrc.
func NewGeneratorSrc(cfg GeneratorSrcConfig) (*GeneratorSrc, error) {
	if cfg.Next == nil {
		return nil, invalid("generator without next func")
	}

	g := &GeneratorSrc{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "GeneratorSrc")),
		next:        cfg.Next,
		iterations:  cfg.Iterations,
	}

	return g, nil
}

// Run emits one generated packet.
func (g *GeneratorSrc) Run() (flow.Step, error) {
	if g.iterations > 0 && g.emitted >= g.iterations {
		return g.Finish()
	}

	packet, ok := g.next()
	if !ok {
		return g.Finish()
	}

	if err := g.Put(packet, flow.DefaultPort); err != nil {
		return flow.Idle, err
	}

	g.emitted++

	return flow.Progressed, nil
}

// NullSrcConfig configures a NullSrc.
type NullSrcConfig struct {
	Name string `yaml:"name"`
}

// NullSrc emits nothing and finishes on its first run.
type NullSrc struct {
	flow.ElementBase
}

// NewNullSrc creates a NullSrc.
func NewNullSrc(cfg NullSrcConfig) (*NullSrc, error) {
	return &NullSrc{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "NullSrc")),
	}, nil
}

// Run finishes.
func (s *NullSrc) Run() (flow.Step, error) {
	return s.Finish()
}
