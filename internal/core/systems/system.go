package systems

import (
	"context"
	"sort"
	"time"

	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// System represents a game logic processor driven once per fixed tick.
type System interface {
	// Name identifies the system in logs and metrics.
	Name() string
	// Tick advances the system by exactly one game tick.
	Tick()
}

// Priority defines execution order inside a phase. Higher runs first.
type Priority uint16

const (
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs within a tick
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
)

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	LastExecutionTime    time.Time
}

type entry struct {
	system   System
	phase    ExecutionPhase
	priority Priority
	order    int
	metrics  Metrics
}

// Loop runs registered systems at a fixed rate. Order is phase, then priority,
// then registration order, so two runs of the same setup tick identically.
type Loop struct {
	entries  []*entry
	tick     uint64
	interval time.Duration
	log      log.Log
}

// NewLoop creates a loop that ticks tickRate times per second in Run.
func NewLoop(tickRate int, logger log.Log) *Loop {
	if tickRate <= 0 {
		tickRate = 35
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loop{
		interval: time.Second / time.Duration(tickRate),
		log:      logger.With(log.String("component", "loop")),
	}
}

// Register adds a system.
func (l *Loop) Register(s System, phase ExecutionPhase, priority Priority) {
	l.entries = append(l.entries, &entry{system: s, phase: phase, priority: priority, order: len(l.entries)})
	sort.SliceStable(l.entries, func(i, j int) bool {
		a, b := l.entries[i], l.entries[j]
		if a.phase != b.phase {
			return a.phase < b.phase
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		return a.order < b.order
	})
}

// Systems returns the registered system names in execution order.
func (l *Loop) Systems() []string {
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.system.Name()
	}
	return names
}

// CurrentTick is the number of completed ticks.
func (l *Loop) CurrentTick() uint64 { return l.tick }

// Step runs a single tick.
func (l *Loop) Step() {
	for _, e := range l.entries {
		start := time.Now()
		e.system.Tick()
		elapsed := time.Since(start)

		m := &e.metrics
		m.ExecutionCount++
		m.TotalExecutionTime += elapsed
		m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
		if elapsed > m.MaxExecutionTime {
			m.MaxExecutionTime = elapsed
		}
		m.LastExecutionTime = start
	}
	l.tick++
}

// RunTicks runs n ticks back to back, as fast as possible.
func (l *Loop) RunTicks(n int) {
	for i := 0; i < n; i++ {
		l.Step()
	}
}

// Run ticks in real time until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info("loop started", log.Int("systems", len(l.entries)), log.Int64("interval_ns", int64(l.interval)))
	for {
		select {
		case <-ctx.Done():
			l.log.Info("loop stopped", log.Uint64("tick", l.tick))
			return ctx.Err()
		case <-ticker.C:
			l.Step()
		}
	}
}

// GetMetrics returns the metrics of a registered system.
func (l *Loop) GetMetrics(name string) (Metrics, bool) {
	for _, e := range l.entries {
		if e.system.Name() == name {
			return e.metrics, true
		}
	}
	return Metrics{}, false
}

// InterpolationSystem snapshots entity positions at the start of each tick.
type InterpolationSystem struct {
	World *world.World
}

func (InterpolationSystem) Name() string { return "interpolation" }

func (s InterpolationSystem) Tick() { s.World.SaveEntityInterpolation() }
