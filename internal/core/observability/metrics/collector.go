package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports special and physics counters. A nil *Collector is valid
// and records nothing, so callers never need to check.
//
// Metrics:
//   - sectorsim_active_specials: gauge
//   - sectorsim_activations_total{result}: counter (spawned/rejected)
//   - sectorsim_specials_finished_total{kind}: counter
//   - sectorsim_crush_events_total: counter, one per crushed entity per tick
//   - sectorsim_items_destroyed_total: counter
type Collector struct {
	activeSpecials prometheus.Gauge
	activations    *prometheus.CounterVec
	finished       *prometheus.CounterVec
	crushEvents    prometheus.Counter
	itemsDestroyed prometheus.Counter
	blockedMoves   prometheus.Counter
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		activeSpecials: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sectorsim",
			Name:      "active_specials",
			Help:      "Number of specials currently registered.",
		}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sectorsim",
			Name:      "activations_total",
			Help:      "Line activations by result.",
		}, []string{"result"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sectorsim",
			Name:      "specials_finished_total",
			Help:      "Specials that ran to completion, by kind.",
		}, []string{"kind"}),
		crushEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sectorsim",
			Name:      "crush_events_total",
			Help:      "Crush damage applications.",
		}),
		itemsDestroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sectorsim",
			Name:      "items_destroyed_total",
			Help:      "Non-solid items removed by moving planes.",
		}),
		blockedMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sectorsim",
			Name:      "blocked_moves_total",
			Help:      "Plane moves rejected by a blocking entity.",
		}),
	}
	for _, col := range []prometheus.Collector{
		c.activeSpecials, c.activations, c.finished, c.crushEvents, c.itemsDestroyed, c.blockedMoves,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) SetActiveSpecials(n int) {
	if c == nil {
		return
	}
	c.activeSpecials.Set(float64(n))
}

func (c *Collector) Activation(spawned bool) {
	if c == nil {
		return
	}
	result := "rejected"
	if spawned {
		result = "spawned"
	}
	c.activations.WithLabelValues(result).Inc()
}

func (c *Collector) SpecialFinished(kind string) {
	if c == nil {
		return
	}
	c.finished.WithLabelValues(kind).Inc()
}

func (c *Collector) CrushEvents(n int) {
	if c == nil || n == 0 {
		return
	}
	c.crushEvents.Add(float64(n))
}

func (c *Collector) ItemDestroyed() {
	if c == nil {
		return
	}
	c.itemsDestroyed.Inc()
}

func (c *Collector) MoveBlocked() {
	if c == nil {
		return
	}
	c.blockedMoves.Inc()
}
