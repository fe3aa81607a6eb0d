package flow

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sarchlab/pypes/flow/hooking"
	"github.com/sarchlab/pypes/flow/naming"
)

// A Pipeline owns a graph of elements, mediates every packet they exchange
// and schedules them cooperatively.
type Pipeline struct {
	hooking.HookableBase
	graph

	name       string
	id         string
	logger     *zap.Logger
	stallLimit int

	names      *naming.Registry[ElementID]
	tick       uint64
	progressed bool
}

// EdgeInfo is a snapshot of one edge.
type EdgeInfo struct {
	ID        EdgeID
	Src       PortKey
	Sink      PortKey
	SrcName   string
	SinkName  string
	Buffered  int
	Writeable bool
	Readable  bool
}

// Name returns the name of the pipeline.
func (p *Pipeline) Name() string {
	return p.name
}

// ID returns the ID generated for this pipeline instance.
func (p *Pipeline) ID() string {
	return p.id
}

// Logger returns the logger elements should use.
func (p *Pipeline) Logger() *zap.Logger {
	return p.logger
}

// CurrentTick returns the number of scheduling passes run so far.
func (p *Pipeline) CurrentTick() uint64 {
	return p.tick
}

// Connect connects the default output of src to the default input of sink.
func (p *Pipeline) Connect(src, sink Element) error {
	return p.ConnectPorts(src, sink, DefaultPort, DefaultPort)
}

// ConnectPorts connects port srcPort of src to port sinkPort of sink through
// a fresh queue. Elements seen for the first time are attached to the
// pipeline and registered under a de-duplicated name.
func (p *Pipeline) ConnectPorts(
	src, sink Element,
	srcPort, sinkPort string,
) error {
	if src == nil {
		return fmt.Errorf("%w: src is nil", ErrNotElement)
	}

	if sink == nil {
		return fmt.Errorf("%w: sink is nil", ErrNotElement)
	}

	srcID, err := p.insert(src)
	if err != nil {
		return err
	}

	sinkID, err := p.insert(sink)
	if err != nil {
		return err
	}

	srcKey := PortKey{Element: srcID, Port: srcPort}
	sinkKey := PortKey{Element: sinkID, Port: sinkPort}

	if _, found := p.writeTable[srcKey]; found {
		return fmt.Errorf("%w: %s::%s", ErrPortInUse, p.slots[srcID].name, srcPort)
	}

	if _, found := p.readTable[sinkKey]; found {
		return fmt.Errorf("%w: %s::%s", ErrPortInUse, p.slots[sinkID].name, sinkPort)
	}

	e := p.addEdge(srcKey, sinkKey)

	p.logger.Debug("connect",
		zap.String("src", p.slots[srcID].name),
		zap.String("src_port", srcPort),
		zap.String("sink", p.slots[sinkID].name),
		zap.String("sink_port", sinkPort))

	if p.NumHooks() > 0 {
		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosConnect,
			Item:   p.edgeInfo(e),
		})
	}

	return nil
}

// ConnectMany connects each element to the next one on default ports.
func (p *Pipeline) ConnectMany(elements ...Element) error {
	for i := 0; i+1 < len(elements); i++ {
		if err := p.Connect(elements[i], elements[i+1]); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) insert(e Element) (ElementID, error) {
	if c := e.Container(); c != nil {
		if c != Container(p) {
			return 0, fmt.Errorf("%w: %s", ErrForeignElement, e.Name())
		}

		if p.StateOf(e.ID()) == StateFinished {
			return 0, fmt.Errorf("%w: %q has finished",
				ErrUnknownElement, p.NameOf(e.ID()))
		}

		return e.ID(), nil
	}

	id := p.addSlot(e)
	p.slots[id].name = p.names.Register(e.Name(), id)
	e.Attach(p, id)

	return id, nil
}

// Lookup returns the element registered under name. Finished elements can
// still be looked up.
func (p *Pipeline) Lookup(name string) (Element, bool) {
	id, found := p.names.Lookup(name)
	if !found {
		return nil, false
	}

	return p.slots[id].element, true
}

// NameOf returns the registered name of the element.
func (p *Pipeline) NameOf(id ElementID) string {
	s := p.slotOf(id)
	if s == nil {
		return ""
	}

	return s.name
}

// StateOf returns the lifecycle state of the element.
func (p *Pipeline) StateOf(id ElementID) ElementState {
	s := p.slotOf(id)
	if s == nil {
		return StateUnconnected
	}

	return s.state
}

// Elements returns every element ever connected, in handle order.
func (p *Pipeline) Elements() []Element {
	list := make([]Element, 0, len(p.slots))
	for _, s := range p.slots {
		list = append(list, s.element)
	}

	return list
}

// NumLive returns the number of live elements.
func (p *Pipeline) NumLive() int {
	n := 0

	for _, s := range p.slots {
		if s.state == StateLive {
			n++
		}
	}

	return n
}

// WritePadOf returns the write side registered for the element's port.
func (p *Pipeline) WritePadOf(id ElementID, port string) (WritePad, error) {
	e, found := p.writeEdge(PortKey{Element: id, Port: port})
	if !found {
		return nil, fmt.Errorf("%w: queue %q not defined for %q",
			ErrWrite, port, p.NameOf(id))
	}

	return e.write, nil
}

// ReadPadOf returns the read side registered for the element's port.
func (p *Pipeline) ReadPadOf(id ElementID, port string) (ReadPad, error) {
	e, found := p.readEdge(PortKey{Element: id, Port: port})
	if !found {
		return nil, fmt.Errorf("%w: queue %q not defined for %q",
			ErrRead, port, p.NameOf(id))
	}

	return e.read, nil
}

// IsSource returns true if the element's port has a write entry.
func (p *Pipeline) IsSource(id ElementID, port string) bool {
	_, found := p.writeTable[PortKey{Element: id, Port: port}]
	return found
}

// IsSink returns true if the element's port has a read entry.
func (p *Pipeline) IsSink(id ElementID, port string) bool {
	_, found := p.readTable[PortKey{Element: id, Port: port}]
	return found
}

// SourceFor returns the port that feeds the given sink port.
func (p *Pipeline) SourceFor(id ElementID, port string) (PortKey, error) {
	src, found := p.inverse[PortKey{Element: id, Port: port}]
	if !found {
		return PortKey{}, fmt.Errorf(
			"%w: %q and queue %q have no reverse matching",
			ErrUnknownElement, p.NameOf(id), port)
	}

	return src, nil
}

// Edges returns a snapshot of every edge ever created.
func (p *Pipeline) Edges() []EdgeInfo {
	list := make([]EdgeInfo, 0, len(p.edges))
	for _, e := range p.edges {
		list = append(list, p.edgeInfo(e))
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return list
}

func (p *Pipeline) edgeInfo(e *edge) EdgeInfo {
	return EdgeInfo{
		ID:        e.id,
		Src:       e.src,
		Sink:      e.sink,
		SrcName:   p.slots[e.src.Element].name,
		SinkName:  p.slots[e.sink.Element].name,
		Buffered:  e.queue.Len(),
		Writeable: e.queue.Writeable(),
		Readable:  e.queue.Readable(),
	}
}

// PutPacket appends a packet to the queue written by the element's port.
func (p *Pipeline) PutPacket(id ElementID, packet Packet, port string) error {
	if !p.isLive(id) {
		return fmt.Errorf("%w: %q and queue %q have no matching",
			ErrUnknownElement, p.NameOf(id), port)
	}

	e, found := p.writeEdge(PortKey{Element: id, Port: port})
	if !found {
		return fmt.Errorf("%w: queue %q not defined for %q",
			ErrWrite, port, p.NameOf(id))
	}

	if err := e.write.Put(packet); err != nil {
		return fmt.Errorf("%w: %q::%q", err, p.NameOf(id), port)
	}

	if p.NumHooks() > 0 {
		p.invokePacketHook(HookPosPacketPut, id, port, packet)
	}

	return nil
}

// GetPacket takes the oldest packet from the queue read by the element's
// port. When nothing is buffered the result is Empty while the source is
// still connected and EOF once it is gone.
func (p *Pipeline) GetPacket(id ElementID, port string) (Result, error) {
	if !p.isLive(id) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownElement, p.NameOf(id))
	}

	key := PortKey{Element: id, Port: port}

	e, found := p.readEdge(key)
	if !found {
		return Result{}, fmt.Errorf("%w: queue %q not defined for %q",
			ErrRead, port, p.NameOf(id))
	}

	res, err := e.read.Get()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q::%q", err, p.NameOf(id), port)
	}

	if res.Status == Empty {
		src, err := p.SourceFor(id, port)
		if err != nil {
			return Result{}, err
		}

		if !p.IsSource(src.Element, src.Port) {
			res.Status = EOF
		}
	}

	if res.OK() && p.NumHooks() > 0 {
		p.invokePacketHook(HookPosPacketGet, id, port, res.Packet)
	}

	return res, nil
}

func (p *Pipeline) invokePacketHook(
	pos *hooking.HookPos,
	id ElementID,
	port string,
	packet Packet,
) {
	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   packet,
		Detail: PacketDetail{
			Tick:    p.tick,
			Element: id,
			Name:    p.slots[id].name,
			Port:    port,
		},
	})
}

// Disconnect removes every table entry the element owns and takes it out of
// the live set. The queues remain reachable from the other side, so
// downstream elements can drain what is buffered and then observe EOF.
func (p *Pipeline) Disconnect(id ElementID) error {
	if !p.isLive(id) {
		return fmt.Errorf("%w: %q", ErrUnknownElement, p.NameOf(id))
	}

	p.detach(id)

	p.logger.Debug("element finished",
		zap.String("element", p.slots[id].name),
		zap.Uint64("tick", p.tick))

	if p.NumHooks() > 0 {
		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosElementFinish,
			Item:   p.slots[id].element,
			Detail: StepDetail{
				Tick:    p.tick,
				Element: id,
				Name:    p.slots[id].name,
				Step:    Finished,
			},
		})
	}

	return nil
}

// Run gives every live element one chance to run. Elements that finish are
// disconnected after the whole pass. Run returns whether any element is
// still live.
func (p *Pipeline) Run() (bool, error) {
	p.tick++
	p.progressed = false

	var finished []ElementID

	var runErr error

	for i := range p.slots {
		id := ElementID(i)
		if p.slots[i].state != StateLive {
			continue
		}

		step, err := p.slots[i].element.Run()
		if err != nil {
			runErr = fmt.Errorf("element %q: %w", p.slots[i].name, err)
			break
		}

		if step != Idle {
			p.progressed = true
		}

		if step == Finished {
			finished = append(finished, id)
		}

		if p.NumHooks() > 0 {
			p.invokeStepHook(id, step)
		}
	}

	for _, id := range finished {
		if err := p.Disconnect(id); err != nil && runErr == nil {
			runErr = err
		}
	}

	live := p.NumLive()

	if p.NumHooks() > 0 {
		p.InvokeHook(hooking.HookCtx{
			Domain: p,
			Pos:    HookPosTick,
			Detail: TickDetail{
				Tick:       p.tick,
				Progressed: p.progressed,
				Live:       live,
			},
		})
	}

	return live > 0, runErr
}

func (p *Pipeline) invokeStepHook(id ElementID, step Step) {
	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    HookPosElementStep,
		Item:   p.slots[id].element,
		Detail: StepDetail{
			Tick:    p.tick,
			Element: id,
			Name:    p.slots[id].name,
			Step:    step,
		},
	})
}

// Execute runs the pipeline until every element has finished.
func (p *Pipeline) Execute() error {
	return p.ExecuteContext(context.Background())
}

// ExecuteContext runs the pipeline until every element has finished, the
// context is done, or the stall limit is reached.
func (p *Pipeline) ExecuteContext(ctx context.Context) error {
	p.logger.Info("execute",
		zap.String("pipeline", p.name),
		zap.String("id", p.id),
		zap.Int("elements", len(p.slots)),
		zap.Int("edges", len(p.edges)))

	idleTicks := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		more, err := p.Run()
		if err != nil {
			return err
		}

		if !more {
			break
		}

		if p.progressed {
			idleTicks = 0
			continue
		}

		idleTicks++
		if p.stallLimit > 0 && idleTicks >= p.stallLimit {
			p.logger.Warn("pipeline stalled",
				zap.String("pipeline", p.name),
				zap.Uint64("tick", p.tick),
				zap.Int("live", p.NumLive()))

			return fmt.Errorf("%w: %d ticks without progress",
				ErrStalled, idleTicks)
		}
	}

	p.logger.Info("execute done",
		zap.String("pipeline", p.name),
		zap.Uint64("ticks", p.tick))

	return nil
}
