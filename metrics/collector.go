// Package metrics exports pipeline activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sarchlab/pypes/flow"
	"github.com/sarchlab/pypes/flow/hooking"
)

// Collector is a pipeline hook that updates Prometheus metrics.
type Collector struct {
	steps   *prometheus.CounterVec
	packets *prometheus.CounterVec
	live    *prometheus.GaugeVec
	ticks   *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pypes",
			Name:      "element_steps_total",
			Help:      "Number of element runs, by returned step.",
		}, []string{"pipeline", "element", "step"}),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pypes",
			Name:      "packets_total",
			Help:      "Number of packets put, by element and port.",
		}, []string{"pipeline", "element", "port"}),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pypes",
			Name:      "live_elements",
			Help:      "Number of elements that have not finished.",
		}, []string{"pipeline"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pypes",
			Name:      "ticks_total",
			Help:      "Number of scheduling passes.",
		}, []string{"pipeline"}),
	}

	for _, m := range []prometheus.Collector{c.steps, c.packets, c.live, c.ticks} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Func updates the metrics for one hook invocation.
func (c *Collector) Func(ctx hooking.HookCtx) {
	p, ok := ctx.Domain.(*flow.Pipeline)
	if !ok {
		return
	}

	switch ctx.Pos {
	case flow.HookPosElementStep:
		d := ctx.Detail.(flow.StepDetail)
		c.steps.WithLabelValues(p.Name(), d.Name, d.Step.String()).Inc()
	case flow.HookPosPacketPut:
		d := ctx.Detail.(flow.PacketDetail)
		c.packets.WithLabelValues(p.Name(), d.Name, d.Port).Inc()
	case flow.HookPosTick:
		d := ctx.Detail.(flow.TickDetail)
		c.live.WithLabelValues(p.Name()).Set(float64(d.Live))
		c.ticks.WithLabelValues(p.Name()).Inc()
	}
}
