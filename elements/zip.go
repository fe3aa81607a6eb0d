package elements

import (
	"fmt"

	"github.com/sarchlab/pypes/flow"
)

// DefaultZipPattern names the inputs of a Zip.
const DefaultZipPattern = "zip_%02d"

// ZipConfig configures a Zip.
type ZipConfig struct {
	Name    string `yaml:"name"`
	Inputs  int    `yaml:"inputs"`
	Pattern string `yaml:"pattern"`
}

// Zip merges several inputs into its default output. It polls one input per
// run in rotation. An input that reaches EOF leaves the rotation, and Zip
// finishes when no input is left.
type Zip struct {
	flow.ElementBase

	inputs   []string
	rotation []string
}

// NewZip creates a Zip.
func NewZip(cfg ZipConfig) (*Zip, error) {
	if cfg.Inputs == 0 {
		cfg.Inputs = 1
	}

	if cfg.Inputs < 0 {
		return nil, invalid("zip with %d inputs", cfg.Inputs)
	}

	if cfg.Pattern == "" {
		cfg.Pattern = DefaultZipPattern
	}

	z := &Zip{
		ElementBase: flow.MakeElementBase(nameOr(cfg.Name, "Zip")),
	}

	for i := 0; i < cfg.Inputs; i++ {
		z.inputs = append(z.inputs, fmt.Sprintf(cfg.Pattern, i))
	}

	z.rotation = append([]string(nil), z.inputs...)

	return z, nil
}

// InputPort returns the name of the i-th input.
func (z *Zip) InputPort(i int) string {
	return z.inputs[i]
}

// NumInputs returns the number of inputs.
func (z *Zip) NumInputs() int {
	return len(z.inputs)
}

// Pending returns the inputs that have not reached EOF yet, in polling
// order.
func (z *Zip) Pending() []string {
	return append([]string(nil), z.rotation...)
}

// Run polls the input at the head of the rotation.
func (z *Zip) Run() (flow.Step, error) {
	if len(z.rotation) == 0 {
		return z.Finish()
	}

	port := z.rotation[0]
	z.rotation = z.rotation[1:]

	res, err := z.Get(port)
	if err != nil {
		return flow.Idle, err
	}

	switch res.Status {
	case flow.Empty:
		z.rotation = append(z.rotation, port)
		return flow.Idle, nil
	case flow.EOF:
		return flow.Progressed, nil
	}

	if err := z.Put(res.Packet, flow.DefaultPort); err != nil {
		return flow.Idle, err
	}

	z.rotation = append(z.rotation, port)

	return flow.Progressed, nil
}
