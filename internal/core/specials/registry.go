package specials

import (
	"fmt"
	"math/rand/v2"

	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/events"
	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/observability/metrics"
	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Registry owns the active specials of a world and ticks them in
// registration order.
type Registry struct {
	world    *world.World
	physics  *physics.Physics
	compat   config.Compatibility
	sim      config.Simulation
	table    Table
	log      log.Log
	notifier events.Notifier
	metrics  *metrics.Collector
	pcg      *rand.PCG
	rng      *rand.Rand

	specials  []Special
	compounds []*CompoundSpecial
	switches  map[*world.Line]*SwitchSpecial
	nextGroup int
	tick      uint64
	ticking   bool
}

type Option func(*Registry)

func WithLogger(l log.Log) Option {
	return func(r *Registry) { r.log = l }
}

func WithNotifier(n events.Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithTable replaces the Doom line special table.
func WithTable(t Table) Option {
	return func(r *Registry) { r.table = t }
}

// NewRegistry creates a registry for w. The configuration is copied; changing
// cfg afterwards has no effect.
func NewRegistry(w *world.World, phys *physics.Physics, cfg config.Config, opts ...Option) *Registry {
	r := &Registry{
		world:    w,
		physics:  phys,
		compat:   cfg.Compatibility,
		sim:      cfg.Simulation,
		table:    DoomTable(),
		log:      log.NewNop(),
		notifier: events.NopNotifier{},
		switches: make(map[*world.Line]*SwitchSpecial),
		pcg:      rand.NewPCG(cfg.Simulation.Seed, cfg.Simulation.Seed^0x9e3779b97f4a7c15),
	}
	r.rng = rand.New(r.pcg)
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(log.String("component", "specials"))
	return r
}

func (r *Registry) Name() string              { return "specials" }
func (r *Registry) World() *world.World       { return r.world }
func (r *Registry) Table() Table              { return r.table }
func (r *Registry) CurrentTick() uint64       { return r.tick }
func (r *Registry) Physics() *physics.Physics { return r.physics }

// SetCurrentTick moves the tick counter, used when a snapshot is restored.
func (r *Registry) SetCurrentTick(tick uint64) { r.tick = tick }

// RNGState returns the state of the generator behind randomized start
// directions.
func (r *Registry) RNGState() ([]byte, error) {
	return r.pcg.MarshalBinary()
}

// SetRNGState restores a state returned by RNGState. The generator is left
// unchanged on error.
func (r *Registry) SetRNGState(state []byte) error {
	var pcg rand.PCG
	if err := pcg.UnmarshalBinary(state); err != nil {
		return err
	}
	*r.pcg = pcg
	return nil
}

// Tick saves plane interpolation and advances every special once. Specials
// added during the tick start on the next one.
func (r *Registry) Tick() {
	r.world.SavePlaneInterpolation()

	n := len(r.specials)
	r.ticking = true
	for i := 0; i < n; i++ {
		s := r.specials[i]
		if s == nil {
			continue
		}
		if s.Tick() == TickFinished {
			r.Remove(s)
		}
	}
	r.ticking = false

	for _, s := range r.specials {
		if m, ok := s.(*SectorMoveSpecial); ok {
			m.flushDamage()
		}
	}
	r.compact()
	r.tick++
	r.metrics.SetActiveSpecials(len(r.specials))
}

func (r *Registry) compact() {
	out := r.specials[:0]
	for _, s := range r.specials {
		if s != nil {
			out = append(out, s)
		}
	}
	for i := len(out); i < len(r.specials); i++ {
		r.specials[i] = nil
	}
	r.specials = out
}

// Add registers a special at the end of the tick order.
func (r *Registry) Add(s Special) {
	r.specials = append(r.specials, s)
	r.log.Debug("special added", log.String("kind", s.Kind()), log.Int("active", len(r.specials)))
}

func (r *Registry) indexOf(s Special) int {
	for i, cur := range r.specials {
		if cur == s {
			return i
		}
	}
	return -1
}

// Remove detaches a special. A mover applies its queued crush damage and
// releases its plane before it goes away.
func (r *Registry) Remove(s Special) bool {
	idx := r.indexOf(s)
	if idx < 0 {
		return false
	}
	switch v := s.(type) {
	case *SectorMoveSpecial:
		v.flushDamage()
		v.sector.ClearActiveMove(v.plane.Face, v)
		v.state = StateDone
		r.metrics.SpecialFinished(v.Kind())
		r.log.Debug("mover removed",
			log.String("kind", v.Kind()),
			log.Int("sector", v.sector.ID),
			log.String("plane", v.plane.Face.String()),
			log.Float64("z", v.plane.Z),
		)
		if v.owner != nil {
			v.owner.childEnded(v)
		}
	case *SwitchSpecial:
		if r.switches[v.line] == v {
			delete(r.switches, v.line)
		}
	}
	if r.ticking {
		r.specials[idx] = nil
	} else {
		r.specials = append(r.specials[:idx], r.specials[idx+1:]...)
	}
	return true
}

// RemoveSpecial is Remove for callers holding the mover returned by
// FindSpecialBySector.
func (r *Registry) RemoveSpecial(s Special) bool { return r.Remove(s) }

// Pause suspends a mover without releasing its plane.
func (r *Registry) Pause(s Special) bool {
	m, ok := s.(*SectorMoveSpecial)
	if !ok || r.indexOf(s) < 0 {
		return false
	}
	return m.pause()
}

// Resume continues a paused mover.
func (r *Registry) Resume(s Special) bool {
	m, ok := s.(*SectorMoveSpecial)
	if !ok || r.indexOf(s) < 0 {
		return false
	}
	return m.unpause()
}

// Specials returns the active specials in tick order.
func (r *Registry) Specials() []Special {
	out := make([]Special, 0, len(r.specials))
	for _, s := range r.specials {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// GetSpecials is Specials under the name used by save and tooling code.
func (r *Registry) GetSpecials() []Special { return r.Specials() }

// Movers returns the active plane movers in tick order.
func (r *Registry) Movers() []*SectorMoveSpecial {
	var out []*SectorMoveSpecial
	for _, s := range r.specials {
		if m, ok := s.(*SectorMoveSpecial); ok {
			out = append(out, m)
		}
	}
	return out
}

// Compounds returns the unfinished compound specials.
func (r *Registry) Compounds() []*CompoundSpecial {
	return append([]*CompoundSpecial(nil), r.compounds...)
}

// FindBySector returns the mover attached to the given plane, if any.
func (r *Registry) FindBySector(s *world.Sector, face world.PlaneFace) *SectorMoveSpecial {
	if s == nil {
		return nil
	}
	m, _ := s.ActiveMove(face).(*SectorMoveSpecial)
	return m
}

// FindSpecialBySector returns the floor mover of s, or its ceiling mover.
func (r *Registry) FindSpecialBySector(s *world.Sector) Special {
	if m := r.FindBySector(s, world.Floor); m != nil {
		return m
	}
	if m := r.FindBySector(s, world.Ceiling); m != nil {
		return m
	}
	return nil
}

// StartMover creates a mover for a plane and registers it. It fails with
// ErrPlaneBusy when the plane already moves.
func (r *Registry) StartMover(s *world.Sector, data SectorMoveData, minZ, maxZ float64) (*SectorMoveSpecial, error) {
	m, err := r.newMover(s, data, minZ, maxZ)
	if err != nil {
		return nil, err
	}
	r.Add(m)
	return m, nil
}

func (r *Registry) newMover(s *world.Sector, data SectorMoveData, minZ, maxZ float64) (*SectorMoveSpecial, error) {
	if !r.world.Owns(s) {
		return nil, fmt.Errorf("%w: %d", world.ErrSectorNotFound, s.ID)
	}
	if data.StartDirection == 0 {
		data.StartDirection = Up
	}
	plane := s.Plane(data.Face)
	m := &SectorMoveSpecial{
		reg:       r,
		sector:    s,
		plane:     plane,
		data:      data,
		startZ:    plane.Z,
		minZ:      minZ,
		maxZ:      maxZ,
		direction: data.StartDirection,
		state:     StateMoving,
		legStart:  true,
	}
	if !s.SetActiveMove(data.Face, m) {
		return nil, fmt.Errorf("%w: sector %d %s", ErrPlaneBusy, s.ID, data.Face)
	}
	return m, nil
}

func (r *Registry) newCompound(kind string) *CompoundSpecial {
	r.nextGroup++
	c := &CompoundSpecial{reg: r, id: r.nextGroup, kind: kind}
	r.compounds = append(r.compounds, c)
	return c
}

func (r *Registry) dropCompound(c *CompoundSpecial) {
	for i, cur := range r.compounds {
		if cur == c {
			r.compounds = append(r.compounds[:i], r.compounds[i+1:]...)
			return
		}
	}
}
