package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/events"
	"github.com/zeusync/sectorsim/internal/core/events/bus"
	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/observability/metrics"
	"github.com/zeusync/sectorsim/internal/core/scenario"
	"github.com/zeusync/sectorsim/internal/core/specials"
	"github.com/zeusync/sectorsim/internal/core/systems"
	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Simulation is everything a command needs to drive one level.
type Simulation struct {
	Runner  *scenario.Runner
	Bus     bus.EventBus
	Metrics *prometheus.Registry
	Log     log.Log
}

func NewSimulation(r *scenario.Runner, b bus.EventBus, m *prometheus.Registry, l log.Log) *Simulation {
	return &Simulation{Runner: r, Bus: b, Metrics: m, Log: l}
}

var SimulationSet = wire.NewSet(
	ProvideLogger,
	ProvidePrometheus,
	ProvideMetrics,
	ProvideWorld,
	physics.New,
	ProvideBus,
	ProvideLoop,
	ProvideNotifier,
	ProvideRegistry,
	scenario.NewRunner,
	NewSimulation,
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(log.ParseLevel(cfg.Simulation.LogLevel))
}

// ProvidePrometheus returns a private registry so concurrent runs do not
// collide on the default one.
func ProvidePrometheus() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func ProvideMetrics(reg *prometheus.Registry) (*metrics.Collector, error) {
	return metrics.NewCollector(reg)
}

func ProvideWorld(level *scenario.Level) *world.World {
	return level.World
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideLoop(cfg config.Config, logger log.Log) *systems.Loop {
	return systems.NewLoop(cfg.Simulation.TickRate, logger)
}

func ProvideNotifier(b bus.EventBus, loop *systems.Loop, logger log.Log) events.Notifier {
	return events.NewBusNotifier(b, loop.CurrentTick, logger)
}

func ProvideRegistry(w *world.World, phys *physics.Physics, cfg config.Config, logger log.Log, n events.Notifier, m *metrics.Collector) *specials.Registry {
	return specials.NewRegistry(w, phys, cfg,
		specials.WithLogger(logger),
		specials.WithNotifier(n),
		specials.WithMetrics(m),
	)
}
