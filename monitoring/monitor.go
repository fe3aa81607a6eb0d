// Package monitoring serves the state of running pipelines over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	// Enable profiling
	_ "net/http/pprof"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"

	"github.com/sarchlab/pypes/flow"
	"github.com/sarchlab/pypes/flow/hooking"
	"github.com/sarchlab/pypes/flow/id"
)

// InspectTimeout bounds how long a request waits for a running pipeline to
// reach the end of its current tick.
var InspectTimeout = 5 * time.Second

// Monitor turns a process running pipelines into a server that reports
// their state.
type Monitor struct {
	portNumber int
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
	idGen      id.Generator

	lock      sync.Mutex
	pipelines map[string]*watched
	order     []string

	server   *http.Server
	listener net.Listener
}

type watched struct {
	pipeline *flow.Pipeline
	progress *ProgressBar
	requests chan inspectRequest

	running      bool
	tick         uint64
	lastProgress uint64
	elements     []ElementStatus
	queues       []QueueStatus
	lastBuffered map[flow.EdgeID]int
	lastChange   map[flow.EdgeID]uint64
}

type inspectRequest struct {
	element string
	reply   chan inspectReply
}

type inspectReply struct {
	data  []byte
	found bool
	err   error
}

// ElementStatus is the state of one element.
type ElementStatus struct {
	ID    flow.ElementID `json:"id"`
	Name  string         `json:"name"`
	State string         `json:"state"`
}

// QueueStatus is the state of one edge. IdleTicks counts the ticks since
// the number of buffered packets last changed while some are buffered.
type QueueStatus struct {
	Edge      flow.EdgeID `json:"edge"`
	Src       string      `json:"src"`
	SrcPort   string      `json:"src_port"`
	Sink      string      `json:"sink"`
	SinkPort  string      `json:"sink_port"`
	Buffered  int         `json:"buffered"`
	Writeable bool        `json:"writeable"`
	Readable  bool        `json:"readable"`
	IdleTicks uint64      `json:"idle_ticks"`
}

type pipelineRsp struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Tick      uint64 `json:"tick"`
	Live      int    `json:"live"`
	Running   bool   `json:"running"`
	IdleTicks uint64 `json:"idle_ticks"`
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		gatherer:  prometheus.DefaultGatherer,
		logger:    zap.NewNop(),
		idGen:     id.NewGlobalGenerator(),
		pipelines: make(map[string]*watched),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithGatherer sets where /metrics reads metrics from.
func (m *Monitor) WithGatherer(g prometheus.Gatherer) *Monitor {
	m.gatherer = g
	return m
}

// WithLogger sets the logger of the monitor.
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterPipeline starts watching a pipeline. It must be called after the
// pipeline is connected and before it executes.
func (m *Monitor) RegisterPipeline(p *flow.Pipeline) {
	w := &watched{
		pipeline: p,
		progress: &ProgressBar{
			ID:        m.idGen.Generate(),
			Name:      p.Name(),
			StartTime: time.Now(),
		},
		requests:     make(chan inspectRequest, 16),
		running:      true,
		lastBuffered: make(map[flow.EdgeID]int),
		lastChange:   make(map[flow.EdgeID]uint64),
	}
	w.progress.IncrementInProgress(uint64(p.NumLive()))

	m.lock.Lock()
	m.refresh(w)
	m.pipelines[p.Name()] = w
	m.order = append(m.order, p.Name())
	m.lock.Unlock()

	p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
		m.onHook(w, ctx)
	}))
}

// Done marks a pipeline as no longer executing. It must be called from the
// goroutine that executed the pipeline.
func (m *Monitor) Done(p *flow.Pipeline) {
	m.lock.Lock()
	w, found := m.pipelines[p.Name()]
	if found {
		m.refresh(w)
		w.running = false
	}
	m.lock.Unlock()

	if found {
		m.serveRequests(w)
	}
}

func (m *Monitor) onHook(w *watched, ctx hooking.HookCtx) {
	switch ctx.Pos {
	case flow.HookPosElementFinish:
		w.progress.MoveInProgressToFinished(1)
	case flow.HookPosTick:
		d := ctx.Detail.(flow.TickDetail)

		m.lock.Lock()
		if d.Progressed {
			w.lastProgress = d.Tick
		}
		m.refresh(w)
		m.lock.Unlock()

		m.serveRequests(w)
	}
}

// refresh copies the state of the pipeline. The caller holds the lock and
// runs on the goroutine that owns the pipeline.
func (m *Monitor) refresh(w *watched) {
	p := w.pipeline
	w.tick = p.CurrentTick()

	w.elements = w.elements[:0]
	for _, e := range p.Elements() {
		w.elements = append(w.elements, ElementStatus{
			ID:    e.ID(),
			Name:  p.NameOf(e.ID()),
			State: p.StateOf(e.ID()).String(),
		})
	}

	w.queues = w.queues[:0]
	for _, e := range p.Edges() {
		if e.Buffered != w.lastBuffered[e.ID] {
			w.lastBuffered[e.ID] = e.Buffered
			w.lastChange[e.ID] = w.tick
		}

		q := QueueStatus{
			Edge:      e.ID,
			Src:       e.SrcName,
			SrcPort:   e.Src.Port,
			Sink:      e.SinkName,
			SinkPort:  e.Sink.Port,
			Buffered:  e.Buffered,
			Writeable: e.Writeable,
			Readable:  e.Readable,
		}

		if e.Buffered > 0 {
			q.IdleTicks = w.tick - w.lastChange[e.ID]
		}

		w.queues = append(w.queues, q)
	}
}

func (m *Monitor) serveRequests(w *watched) {
	for {
		select {
		case req := <-w.requests:
			req.reply <- inspect(w.pipeline, req.element)
		default:
			return
		}
	}
}

func inspect(p *flow.Pipeline, name string) inspectReply {
	e, found := p.Lookup(name)
	if !found {
		return inspectReply{}
	}

	buf := bytes.NewBuffer(nil)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(e)
	serializer.SetMaxDepth(1)

	if err := serializer.Serialize(buf); err != nil {
		return inspectReply{found: true, err: err}
	}

	return inspectReply{data: buf.Bytes(), found: true}
}

// Router returns the HTTP handler of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pipelines", m.listPipelines)
	r.HandleFunc("/api/pipeline/{name}/elements", m.listElements)
	r.HandleFunc("/api/pipeline/{name}/element/{element}", m.elementDetails)
	r.HandleFunc("/api/pipeline/{name}/queues", m.listQueues)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return r
}

// StartServer starts serving in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring pipelines with %s\n", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor server stopped", zap.Error(err))
		}
	}()

	return url, nil
}

// OpenBrowser opens the pipeline list in a browser.
func (m *Monitor) OpenBrowser(url string) error {
	return browser.OpenURL(url + "/api/pipelines")
}

// Shutdown stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(data); err != nil {
		m.logger.Debug("write response", zap.Error(err))
	}
}

func (m *Monitor) listPipelines(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rsp := make([]pipelineRsp, 0, len(m.order))
	for _, name := range m.order {
		wp := m.pipelines[name]

		live := 0
		for _, e := range wp.elements {
			if e.State == flow.StateLive.String() {
				live++
			}
		}

		rsp = append(rsp, pipelineRsp{
			Name:      name,
			ID:        wp.pipeline.ID(),
			Tick:      wp.tick,
			Live:      live,
			Running:   wp.running,
			IdleTicks: wp.tick - wp.lastProgress,
		})
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) findPipelineOr404(
	w http.ResponseWriter,
	r *http.Request,
) *watched {
	name := mux.Vars(r)["name"]

	wp, found := m.pipelines[name]
	if !found {
		http.Error(w, "Pipeline not found", http.StatusNotFound)
		return nil
	}

	return wp
}

func (m *Monitor) listElements(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	wp := m.findPipelineOr404(w, r)
	if wp == nil {
		return
	}

	m.writeJSON(w, wp.elements)
}

func (m *Monitor) elementDetails(w http.ResponseWriter, r *http.Request) {
	m.lock.Lock()
	wp := m.findPipelineOr404(w, r)
	running := wp != nil && wp.running
	m.lock.Unlock()

	if wp == nil {
		return
	}

	name := mux.Vars(r)["element"]

	var rep inspectReply

	if running {
		req := inspectRequest{element: name, reply: make(chan inspectReply, 1)}
		timeout := time.After(InspectTimeout)

		select {
		case wp.requests <- req:
		case <-timeout:
			http.Error(w, "Pipeline busy", http.StatusServiceUnavailable)
			return
		}

		select {
		case rep = <-req.reply:
		case <-timeout:
			http.Error(w, "Pipeline busy", http.StatusServiceUnavailable)
			return
		}
	} else {
		rep = inspect(wp.pipeline, name)
	}

	switch {
	case !rep.found:
		http.Error(w, "Element not found", http.StatusNotFound)
	case rep.err != nil:
		http.Error(w, rep.err.Error(), http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(rep.data)
	}
}

func (m *Monitor) listQueues(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := queuesParseParams(r)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	wp := m.findPipelineOr404(w, r)
	if wp == nil {
		return
	}

	m.writeJSON(w, sortAndSelectQueues(wp.queues, sortMethod, limit, offset))
}

func queuesParseParams(r *http.Request) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "level"
	}

	if sortMethod != "level" && sortMethod != "idle" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method: %s. Allowed values are `level` and `idle`",
			sortMethod)
	}

	limit, err = intParam(r, "limit")
	if err != nil {
		return sortMethod, 0, 0, err
	}

	offset, err = intParam(r, "offset")
	if err != nil {
		return sortMethod, limit, 0, err
	}

	if limit < 0 || offset < 0 {
		return sortMethod, limit, offset, errors.New("limit and offset must not be negative")
	}

	return sortMethod, limit, offset, nil
}

func intParam(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

// sortAndSelectQueues sorts a copy of the queues and pages through it. A
// zero limit means no limit.
func sortAndSelectQueues(
	queues []QueueStatus,
	sortMethod string,
	limit, offset int,
) []QueueStatus {
	sorted := make([]QueueStatus, len(queues))
	copy(sorted, queues)

	primary := func(q QueueStatus) uint64 { return uint64(q.Buffered) }
	secondary := func(q QueueStatus) uint64 { return q.IdleTicks }

	if sortMethod == "idle" {
		primary, secondary = secondary, primary
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if primary(sorted[i]) != primary(sorted[j]) {
			return primary(sorted[i]) > primary(sorted[j])
		}

		return secondary(sorted[i]) > secondary(sorted[j])
	})

	if offset > len(sorted) {
		offset = len(sorted)
	}

	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return sorted[offset:end]
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	bars := make([]progressRsp, 0, len(m.order))
	for _, name := range m.order {
		bars = append(bars, m.pipelines[name].progress.snapshot())
	}
	m.lock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second
	if s := r.URL.Query().Get("ms"); s != "" {
		ms, err := strconv.Atoi(s)
		if err != nil || ms <= 0 {
			http.Error(w, "Error: invalid ms", http.StatusBadRequest)
			return
		}

		duration = time.Duration(ms) * time.Millisecond
	}

	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(duration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, prof)
}
