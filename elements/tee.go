package elements

import (
	"fmt"

	"github.com/mitchellh/copystructure"

	"github.com/sarchlab/pypes/flow"
)

// DefaultTeePattern names the outputs of a Tee.
const DefaultTeePattern = "tee_%02d"

// A Cloner is a packet that knows how to copy itself. Tee prefers Clone over
// the generic deep copy.
type Cloner interface {
	Clone() any
}

// CopyFunc deep-copies a packet.
type CopyFunc func(packet flow.Packet) (flow.Packet, error)

// TeeConfig configures a Tee.
type TeeConfig struct {
	Name    string `yaml:"name"`
	Outputs int    `yaml:"outputs"`
	Pattern string `yaml:"pattern"`

	// Copy overrides how packets are copied for the second and later
	// outputs.
	Copy CopyFunc `yaml:"-"`
}

// Tee writes every packet to several outputs. The first output receives the
// original packet and the others receive deep copies.
type Tee struct {
	flow.ElementBase

	outputs []string
	copy    CopyFunc
}

// NewTee creates a Tee.
func NewTee(cfg TeeConfig) (*Tee, error) {
	if cfg.Outputs == 0 {
		cfg.Outputs = 1
	}

	if cfg.Outputs < 0 {
		return nil, invalid("tee with %d outputs", cfg.Outputs)
	}

	if cfg.Pattern == "" {
		cfg.Pattern = DefaultTeePattern
	}

	if cfg.Copy == nil {
		cfg.Copy = DeepCopy
	}

	t := &Tee{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "Tee")),
		copy:        cfg.Copy,
	}

	for i := 0; i < cfg.Outputs; i++ {
		t.outputs = append(t.outputs, fmt.Sprintf(cfg.Pattern, i))
	}

	return t, nil
}

// OutputPort returns the name of the i-th output.
func (t *Tee) OutputPort(i int) string {
	return t.outputs[i]
}

// NumOutputs returns the number of outputs.
func (t *Tee) NumOutputs() int {
	return len(t.outputs)
}

// Run copies one packet to every output.
func (t *Tee) Run() (flow.Step, error) {
	packet, step, err := take(&t.ElementBase, flow.DefaultPort)
	if step != flow.Progressed || err != nil {
		return step, err
	}

	if err := t.Put(packet, t.outputs[0]); err != nil {
		return flow.Idle, err
	}

	for _, port := range t.outputs[1:] {
		dup, err := t.copy(packet)
		if err != nil {
			return flow.Idle, fmt.Errorf("copy packet for %s: %w", port, err)
		}

		if err := t.Put(dup, port); err != nil {
			return flow.Idle, err
		}
	}

	return flow.Progressed, nil
}

// DeepCopy copies a packet so that no mutable state is shared with the
// original.
func DeepCopy(packet flow.Packet) (flow.Packet, error) {
	if c, ok := packet.(Cloner); ok {
		return c.Clone(), nil
	}

	return copystructure.Copy(packet)
}
