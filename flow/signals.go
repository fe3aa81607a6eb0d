package flow

import "errors"

// Packet is an opaque unit of data flowing through a pipeline. The runtime
// never looks inside packets; only elements do.
type Packet = any

// DefaultPort is the port name used when none is given.
const DefaultPort = "default"

// Status tells the reader of a queue whether a packet was obtained.
type Status uint8

const (
	// OK means a packet was read.
	OK Status = iota

	// Empty means no packet is buffered now, but more may arrive. The reader
	// should yield and try again on a later tick.
	Empty

	// EOF means no packet is buffered and none will ever arrive because the
	// write side is closed.
	EOF
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Empty:
		return "Empty"
	case EOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Result is the outcome of reading one packet.
type Result struct {
	Packet Packet
	Status Status
}

// OK returns true if the result carries a packet.
func (r Result) OK() bool {
	return r.Status == OK
}

// Batch is the outcome of draining a queue.
type Batch struct {
	Packets []Packet
	Status  Status
}

// Step is what an element reports after one call to Run.
type Step uint8

const (
	// Idle means the element could not make progress this tick.
	Idle Step = iota

	// Progressed means the element did one unit of work.
	Progressed

	// Finished means the element will never do any more work. The pipeline
	// detaches it at the end of the tick.
	Finished
)

func (s Step) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Progressed:
		return "Progressed"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Errors reported by queues and pipelines. They indicate a malformed graph or
// a faulty element and are never swallowed by the runtime.
var (
	// ErrWrite is returned when writing to a closed or unregistered write
	// side.
	ErrWrite = errors.New("flow: write error")

	// ErrRead is returned when reading from a closed or unregistered read
	// side.
	ErrRead = errors.New("flow: read error")

	// ErrUnknownElement is returned when an operation references an element
	// that is not live in the pipeline.
	ErrUnknownElement = errors.New("flow: unknown element")

	// ErrNotElement is returned by Connect when given a nil element.
	ErrNotElement = errors.New("flow: not an element")

	// ErrForeignElement is returned by Connect when the element is already
	// attached to another pipeline.
	ErrForeignElement = errors.New("flow: element belongs to another pipeline")

	// ErrPortInUse is returned by Connect when a port already has an edge.
	ErrPortInUse = errors.New("flow: port already connected")

	// ErrStalled is returned by ExecuteContext when the configured number of
	// consecutive ticks passed without any element making progress.
	ErrStalled = errors.New("flow: pipeline stalled")
)
