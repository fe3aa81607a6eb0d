// Package elements provides the standard library of pipeline elements:
// sources, sinks, transformers, filters and the fan-out/fan-in elements Tee
// and Zip. Every element is built only on the flow.Element contract.
package elements

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pypes/flow"
)

var (
	// ErrInvalidConfig is returned by constructors given a config they
	// cannot build an element from.
	ErrInvalidConfig = errors.New("elements: invalid config")

	// ErrUnsupportedPacket is returned by Run when a packet has a type the
	// element cannot process.
	ErrUnsupportedPacket = errors.New("elements: unsupported packet")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

func unsupported(packet flow.Packet, want string) error {
	return fmt.Errorf("%w: %T, expecting %s", ErrUnsupportedPacket, packet, want)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}

	return name
}

// take reads one packet from the port. The returned step is Progressed when a
// packet was read, Idle when the queue is empty and Finished at EOF. In the
// last two cases the caller returns the step as is.
func take(b *flow.ElementBase, port string) (flow.Packet, flow.Step, error) {
	res, err := b.Get(port)
	if err != nil {
		return nil, flow.Idle, err
	}

	switch res.Status {
	case flow.Empty:
		return nil, flow.Idle, nil
	case flow.EOF:
		step, err := b.Finish()
		return nil, step, err
	}

	return res.Packet, flow.Progressed, nil
}
