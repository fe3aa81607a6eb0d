package recording

import (
	"fmt"
	"sync"

	"github.com/rs/xid"

	"github.com/sarchlab/pypes/flow"
	"github.com/sarchlab/pypes/flow/hooking"
)

// Table names used by the Recorder.
const (
	StepTable   = "element_steps"
	PacketTable = "packet_puts"
	RunTable    = "runs"
)

// StepEntry is one row of the element_steps table.
type StepEntry struct {
	RunID    string
	Pipeline string
	Tick     uint64
	Element  string
	Step     string
}

// PacketEntry is one row of the packet_puts table.
type PacketEntry struct {
	RunID    string
	Pipeline string
	Tick     uint64
	Element  string
	Port     string
	Type     string
}

// RunEntry is one row of the runs table.
type RunEntry struct {
	RunID      string
	Pipeline   string
	PipelineID string
}

// A Recorder is a pipeline hook that writes element steps and packet puts
// to a DataRecorder. Idle steps are not recorded unless asked for. A
// Recorder can be shared by pipelines executing concurrently.
type Recorder struct {
	lock       sync.Mutex
	recorder   DataRecorder
	runID      string
	recordIdle bool
	runs       map[string]bool
	err        error
}

// NewRecorder creates the tables and returns a Recorder writing to them.
func NewRecorder(r DataRecorder) (*Recorder, error) {
	tables := []struct {
		name   string
		sample any
	}{
		{RunTable, RunEntry{}},
		{StepTable, StepEntry{}},
		{PacketTable, PacketEntry{}},
	}

	for _, t := range tables {
		if err := r.CreateTable(t.name, t.sample); err != nil {
			return nil, err
		}
	}

	return &Recorder{
		recorder: r,
		runID:    xid.New().String(),
		runs:     make(map[string]bool),
	}, nil
}

// RecordIdle makes the recorder also write steps that made no progress.
func (r *Recorder) RecordIdle(record bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.recordIdle = record
}

// RunID returns the ID written to every row.
func (r *Recorder) RunID() string {
	return r.runID
}

// Err returns the first error met while recording.
func (r *Recorder) Err() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.err
}

// Flush writes all buffered rows.
func (r *Recorder) Flush() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.recorder.Flush(); err != nil {
		return err
	}

	return r.err
}

// Func records one hook invocation.
func (r *Recorder) Func(ctx hooking.HookCtx) {
	p, ok := ctx.Domain.(*flow.Pipeline)
	if !ok {
		return
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if !r.runs[p.ID()] {
		r.runs[p.ID()] = true
		r.insert(RunTable, RunEntry{
			RunID:      r.runID,
			Pipeline:   p.Name(),
			PipelineID: p.ID(),
		})
	}

	switch ctx.Pos {
	case flow.HookPosElementStep:
		d := ctx.Detail.(flow.StepDetail)
		if d.Step == flow.Idle && !r.recordIdle {
			return
		}

		r.insert(StepTable, StepEntry{
			RunID:    r.runID,
			Pipeline: p.Name(),
			Tick:     d.Tick,
			Element:  d.Name,
			Step:     d.Step.String(),
		})
	case flow.HookPosPacketPut:
		d := ctx.Detail.(flow.PacketDetail)
		r.insert(PacketTable, PacketEntry{
			RunID:    r.runID,
			Pipeline: p.Name(),
			Tick:     d.Tick,
			Element:  d.Name,
			Port:     d.Port,
			Type:     fmt.Sprintf("%T", ctx.Item),
		})
	}
}

func (r *Recorder) insert(table string, entry any) {
	if r.err != nil {
		return
	}

	r.err = r.recorder.InsertData(table, entry)
}
