package flow

// EdgeID is the handle of one connection between two ports.
type EdgeID int

// PortKey addresses one port of one element.
type PortKey struct {
	Element ElementID
	Port    string
}

// ElementState is the lifecycle state of an element as seen by a pipeline.
type ElementState uint8

const (
	// StateUnconnected means the pipeline has never seen the element.
	StateUnconnected ElementState = iota

	// StateLive means the element is scheduled on every tick.
	StateLive

	// StateFinished means the element signaled Finish and was disconnected.
	StateFinished
)

func (s ElementState) String() string {
	switch s {
	case StateUnconnected:
		return "Unconnected"
	case StateLive:
		return "Live"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

type slot struct {
	element Element
	name    string
	state   ElementState
}

type edge struct {
	id    EdgeID
	src   PortKey
	sink  PortKey
	queue *Queue
	write WritePad
	read  ReadPad
}

// graph keeps elements and edges in arenas indexed by their handles. The
// four tables only hold entries for ports whose element is still live on
// that side.
type graph struct {
	slots []slot
	edges []*edge

	writeTable map[PortKey]EdgeID
	readTable  map[PortKey]EdgeID
	relations  map[PortKey]PortKey
	inverse    map[PortKey]PortKey
}

func makeGraph() graph {
	return graph{
		writeTable: make(map[PortKey]EdgeID),
		readTable:  make(map[PortKey]EdgeID),
		relations:  make(map[PortKey]PortKey),
		inverse:    make(map[PortKey]PortKey),
	}
}

func (g *graph) addSlot(e Element) ElementID {
	g.slots = append(g.slots, slot{element: e, state: StateLive})
	return ElementID(len(g.slots) - 1)
}

func (g *graph) slotOf(id ElementID) *slot {
	if id < 0 || int(id) >= len(g.slots) {
		return nil
	}

	return &g.slots[id]
}

func (g *graph) isLive(id ElementID) bool {
	s := g.slotOf(id)
	return s != nil && s.state == StateLive
}

func (g *graph) addEdge(src, sink PortKey) *edge {
	q := NewQueue()
	e := &edge{
		id:    EdgeID(len(g.edges)),
		src:   src,
		sink:  sink,
		queue: q,
		write: q.WritePad(),
		read:  q.ReadPad(),
	}

	g.edges = append(g.edges, e)
	g.writeTable[src] = e.id
	g.readTable[sink] = e.id
	g.relations[src] = sink
	g.inverse[sink] = src

	return e
}

func (g *graph) writeEdge(key PortKey) (*edge, bool) {
	id, found := g.writeTable[key]
	if !found {
		return nil, false
	}

	return g.edges[id], true
}

func (g *graph) readEdge(key PortKey) (*edge, bool) {
	id, found := g.readTable[key]
	if !found {
		return nil, false
	}

	return g.edges[id], true
}

// detach closes and forgets every table entry keyed by the element. Queues
// stay reachable from the other side of their edges.
func (g *graph) detach(id ElementID) {
	for key, edgeID := range g.writeTable {
		if key.Element != id {
			continue
		}

		g.edges[edgeID].write.CloseWrite()
		delete(g.writeTable, key)
		delete(g.relations, key)
	}

	for key, edgeID := range g.readTable {
		if key.Element != id {
			continue
		}

		g.edges[edgeID].read.CloseRead()
		delete(g.readTable, key)
		delete(g.inverse, key)
	}

	g.slots[id].state = StateFinished
}
