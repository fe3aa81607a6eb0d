package flow

// A Queue is the unbounded FIFO buffer behind one edge of the graph. It has
// two latches, writeable and readable, that can only go from true to false.
// The queue itself is only mutated through its pads.
type Queue struct {
	packets   []Packet
	writeable bool
	readable  bool
}

// NewQueue creates an open, empty queue.
func NewQueue() *Queue {
	return &Queue{
		writeable: true,
		readable:  true,
	}
}

// WritePad is the producer's view of a queue.
type WritePad interface {
	Put(packet Packet) error
	CloseWrite()
	Writeable() bool
}

// ReadPad is the consumer's view of a queue.
type ReadPad interface {
	Get() (Result, error)
	Flush() (Batch, error)
	CloseRead()
	Readable() bool
	Len() int
}

// WritePad returns the write-only view of the queue.
func (q *Queue) WritePad() WritePad {
	return writePad{q: q}
}

// ReadPad returns the read-only view of the queue.
func (q *Queue) ReadPad() ReadPad {
	return readPad{q: q}
}

// Len returns the number of buffered packets.
func (q *Queue) Len() int {
	return len(q.packets)
}

// Writeable returns false once the write side has been closed.
func (q *Queue) Writeable() bool {
	return q.writeable
}

// Readable returns false once the read side has been closed.
func (q *Queue) Readable() bool {
	return q.readable
}

// Finished returns true when the write side is closed and every packet has
// been consumed.
func (q *Queue) Finished() bool {
	return !q.writeable && len(q.packets) == 0
}

func (q *Queue) put(packet Packet) error {
	if !q.writeable {
		return ErrWrite
	}

	q.packets = append(q.packets, packet)

	return nil
}

func (q *Queue) get() (Result, error) {
	if !q.readable {
		return Result{}, ErrRead
	}

	if len(q.packets) == 0 {
		return Result{Status: q.drainedStatus()}, nil
	}

	packet := q.packets[0]
	q.packets[0] = nil
	q.packets = q.packets[1:]

	return Result{Packet: packet, Status: OK}, nil
}

func (q *Queue) flush() (Batch, error) {
	if !q.readable {
		return Batch{}, ErrRead
	}

	if len(q.packets) == 0 {
		return Batch{Status: q.drainedStatus()}, nil
	}

	packets := q.packets
	q.packets = nil

	return Batch{Packets: packets, Status: OK}, nil
}

func (q *Queue) drainedStatus() Status {
	if q.writeable {
		return Empty
	}

	return EOF
}

type writePad struct {
	q *Queue
}

func (p writePad) Put(packet Packet) error {
	return p.q.put(packet)
}

func (p writePad) CloseWrite() {
	p.q.writeable = false
}

func (p writePad) Writeable() bool {
	return p.q.writeable
}

type readPad struct {
	q *Queue
}

func (p readPad) Get() (Result, error) {
	return p.q.get()
}

func (p readPad) Flush() (Batch, error) {
	return p.q.flush()
}

func (p readPad) CloseRead() {
	p.q.readable = false
}

func (p readPad) Readable() bool {
	return p.q.readable
}

func (p readPad) Len() int {
	return len(p.q.packets)
}
