// Package tracing provides hooks that summarize what elements did during a
// run.
package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/pypes/flow"
	"github.com/sarchlab/pypes/flow/hooking"
)

// ElementFilter decides whether an element is traced.
type ElementFilter func(name string) bool

// AllElements traces every element.
func AllElements(string) bool {
	return true
}

type elementCount struct {
	steps        map[flow.Step]uint64
	puts         map[string]uint64
	gets         map[string]uint64
	firstBusy    uint64
	lastBusy     uint64
	finishedTick uint64
}

// StepCounter counts the steps each element returned and the packets that
// went through each of its ports.
type StepCounter struct {
	filter ElementFilter

	lock     sync.Mutex
	names    []string
	counts   map[string]*elementCount
	numTicks uint64
}

// NewStepCounter creates a StepCounter. A nil filter traces every element.
func NewStepCounter(filter ElementFilter) *StepCounter {
	if filter == nil {
		filter = AllElements
	}

	return &StepCounter{
		filter: filter,
		counts: make(map[string]*elementCount),
	}
}

// Func counts one hook invocation.
func (t *StepCounter) Func(ctx hooking.HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	switch ctx.Pos {
	case flow.HookPosElementStep:
		d := ctx.Detail.(flow.StepDetail)
		if c := t.element(d.Name); c != nil {
			t.countStep(c, d)
		}
	case flow.HookPosElementFinish:
		d := ctx.Detail.(flow.StepDetail)
		if c := t.element(d.Name); c != nil {
			c.finishedTick = d.Tick
		}
	case flow.HookPosPacketPut:
		d := ctx.Detail.(flow.PacketDetail)
		if c := t.element(d.Name); c != nil {
			c.puts[d.Port]++
		}
	case flow.HookPosPacketGet:
		d := ctx.Detail.(flow.PacketDetail)
		if c := t.element(d.Name); c != nil {
			c.gets[d.Port]++
		}
	case flow.HookPosTick:
		t.numTicks = ctx.Detail.(flow.TickDetail).Tick
	}
}

func (t *StepCounter) element(name string) *elementCount {
	if !t.filter(name) {
		return nil
	}

	c, found := t.counts[name]
	if !found {
		c = &elementCount{
			steps: make(map[flow.Step]uint64),
			puts:  make(map[string]uint64),
			gets:  make(map[string]uint64),
		}
		t.counts[name] = c
		t.names = append(t.names, name)
	}

	return c
}

func (t *StepCounter) countStep(c *elementCount, d flow.StepDetail) {
	c.steps[d.Step]++

	if d.Step == flow.Idle {
		return
	}

	if c.firstBusy == 0 {
		c.firstBusy = d.Tick
	}

	c.lastBusy = d.Tick
}

// ElementNames returns the traced elements in the order they were first
// seen.
func (t *StepCounter) ElementNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.names...)
}

// StepCount returns how many times the element returned the step.
func (t *StepCounter) StepCount(element string, step flow.Step) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	c, found := t.counts[element]
	if !found {
		return 0
	}

	return c.steps[step]
}

// PutCount returns how many packets the element put to the port.
func (t *StepCounter) PutCount(element, port string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	c, found := t.counts[element]
	if !found {
		return 0
	}

	return c.puts[port]
}

// GetCount returns how many packets the element got from the port.
func (t *StepCounter) GetCount(element, port string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	c, found := t.counts[element]
	if !found {
		return 0
	}

	return c.gets[port]
}

// NumTicks returns the last tick seen.
func (t *StepCounter) NumTicks() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.numTicks
}

// Summary describes one element over a whole run.
type Summary struct {
	Element    string
	Idle       uint64
	Progressed uint64
	FirstBusy  uint64
	LastBusy   uint64
	Finished   uint64

	// Utilization is the share of the element's steps that made progress.
	Utilization float64
}

// Summaries returns one Summary per traced element, busiest first.
func (t *StepCounter) Summaries() []Summary {
	t.lock.Lock()
	defer t.lock.Unlock()

	list := make([]Summary, 0, len(t.names))

	for _, name := range t.names {
		c := t.counts[name]
		s := Summary{
			Element:    name,
			Idle:       c.steps[flow.Idle],
			Progressed: c.steps[flow.Progressed] + c.steps[flow.Finished],
			FirstBusy:  c.firstBusy,
			LastBusy:   c.lastBusy,
			Finished:   c.finishedTick,
		}

		if total := s.Idle + s.Progressed; total > 0 {
			s.Utilization = float64(s.Progressed) / float64(total)
		}

		list = append(list, s)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Progressed > list[j].Progressed
	})

	return list
}
