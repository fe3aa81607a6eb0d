package flow

import (
	"go.uber.org/zap"

	"github.com/sarchlab/pypes/flow/naming"
)

// ElementID is the handle a pipeline assigns to an element when it is first
// connected.
type ElementID int

// A Container mediates every packet an element reads or writes.
type Container interface {
	GetPacket(id ElementID, port string) (Result, error)
	PutPacket(id ElementID, packet Packet, port string) error
	Logger() *zap.Logger
}

// An Element is a unit of computation with named input and output ports.
//
// Run performs at most one unit of work: read a packet and process it, push a
// previously computed packet, report that nothing can be done right now, or
// report that the element is finished.
type Element interface {
	naming.Named

	// Attach binds the element to its container under the given handle.
	Attach(c Container, id ElementID)

	// Container returns the container the element is attached to, or nil.
	Container() Container

	// ID returns the handle given by Attach.
	ID() ElementID

	Run() (Step, error)
}

// ElementBase implements everything in Element except Run. Concrete elements
// embed it.
type ElementBase struct {
	naming.NamedBase

	container Container
	id        ElementID
}

// MakeElementBase creates an ElementBase with the given name.
func MakeElementBase(name string) ElementBase {
	naming.NameMustBeValid(name)

	return ElementBase{
		NamedBase: naming.MakeNamedBase(name),
		id:        -1,
	}
}

// Attach binds the element to a container.
func (b *ElementBase) Attach(c Container, id ElementID) {
	b.container = c
	b.id = id
}

// Container returns the container the element is attached to.
func (b *ElementBase) Container() Container {
	return b.container
}

// ID returns the handle assigned by the container.
func (b *ElementBase) ID() ElementID {
	return b.id
}

// Get reads a packet from the given input port.
func (b *ElementBase) Get(port string) (Result, error) {
	if b.container == nil {
		return Result{}, ErrUnknownElement
	}

	return b.container.GetPacket(b.id, port)
}

// Put writes a packet to the given output port.
func (b *ElementBase) Put(packet Packet, port string) error {
	if b.container == nil {
		return ErrUnknownElement
	}

	return b.container.PutPacket(b.id, packet, port)
}

// Finish reports that the element is done. Elements return it from Run.
func (b *ElementBase) Finish() (Step, error) {
	return Finished, nil
}

// Logger returns the logger of the container, or a no-op logger when the
// element is not attached.
func (b *ElementBase) Logger() *zap.Logger {
	if b.container == nil {
		return zap.NewNop()
	}

	return b.container.Logger()
}
