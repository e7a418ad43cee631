package physics

import (
	"math"

	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/models"
	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/observability/metrics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Epsilon used for "resting on" comparisons. One fixed-point fraction unit.
const Epsilon = 1.0 / 65536

// MoveResult is the outcome of one MoveSectorZ call.
type MoveResult struct {
	Status MoveStatus
	// Crushed lists the shootable entities caught this tick, including the ones
	// stacked on a caught entity.
	Crushed []*world.Entity
	// Speed is the speed actually used, which differs from the requested one
	// while a slow-down crusher is crushing.
	Speed float64
}

// Physics resolves how plane motion affects the entities around it.
type Physics struct {
	world   *world.World
	compat  config.Compatibility
	sim     config.Simulation
	log     log.Log
	metrics *metrics.Collector
}

// New creates the physics layer. The compatibility snapshot is copied.
func New(w *world.World, cfg config.Config, logger log.Log, m *metrics.Collector) *Physics {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Physics{
		world:   w,
		compat:  cfg.Compatibility,
		sim:     cfg.Simulation,
		log:     logger.With(log.String("component", "physics")),
		metrics: m,
	}
}

func (p *Physics) World() *world.World { return p.world }

// CrushSpeed is the speed used by slow-down crushers while crushing.
func (p *Physics) CrushSpeed() float64 { return p.sim.CrushSpeed }

type entityState struct {
	entity   *world.Entity
	z        float64
	onGround bool
	onFloor  bool
	hanging  bool
}

type moveContext struct {
	plane  *world.SectorPlane
	oldZ   float64
	states []entityState
	index  map[*world.Entity]int
}

// step moves z toward dest by at most speed.
func step(z, dest, speed float64) float64 {
	if dest > z {
		return math.Min(z+speed, dest)
	}
	return math.Max(z-speed, dest)
}

// MoveSectorZ moves plane toward destZ by at most speed and resolves every
// entity the move touches. A blocked move leaves the plane and the entities
// where they were. With instant set the previous heights are overwritten so
// nothing interpolates the jump.
func (p *Physics) MoveSectorZ(plane *world.SectorPlane, speed, destZ float64, crush *CrushData, instant bool) MoveResult {
	speed = math.Abs(speed)
	ctx := p.capture(plane)

	res := p.tryMove(ctx, step(ctx.oldZ, destZ, speed), crush)
	res.Speed = speed

	if res.Status == MoveCrushing && crush.Mode == CrushDoomWithSlowDown && speed > p.sim.CrushSpeed {
		p.restore(ctx)
		res = p.tryMove(ctx, step(ctx.oldZ, destZ, p.sim.CrushSpeed), crush)
		res.Speed = p.sim.CrushSpeed
	}

	switch res.Status {
	case MoveBlocked:
		p.restore(ctx)
		p.metrics.MoveBlocked()
	case MoveCrushing:
		p.metrics.CrushEvents(len(res.Crushed))
		if crush.Mode == CrushHexen {
			p.restore(ctx)
		}
	}

	if instant && plane.Z != ctx.oldZ {
		plane.SnapInterpolation()
		for _, st := range ctx.states {
			if st.entity.Alive() && st.entity.Position.Z != st.z {
				st.entity.PrevPosition.Z = st.entity.Position.Z
			}
		}
	}

	p.RecomputeStacking(p.live(ctx))
	return res
}

// capture records the entities that can be touched by a move of plane: the
// ones linked to the sector and everything stacked on them.
func (p *Physics) capture(plane *world.SectorPlane) *moveContext {
	ctx := &moveContext{plane: plane, oldZ: plane.Z, index: make(map[*world.Entity]int)}
	var add func(e *world.Entity)
	add = func(e *world.Entity) {
		if _, seen := ctx.index[e]; seen {
			return
		}
		floor := p.world.HighestFloorZ(e)
		ceil := p.world.LowestCeilingZ(e)
		ctx.index[e] = len(ctx.states)
		ctx.states = append(ctx.states, entityState{
			entity:   e,
			z:        e.Position.Z,
			onGround: e.OnGround,
			onFloor:  e.OnEntity.IsZero() && math.Abs(e.Position.Z-floor) < Epsilon,
			hanging:  e.Has(world.FlagHanging) && math.Abs(e.Top()-ceil) < Epsilon,
		})
		for _, r := range p.riders(e) {
			add(r)
		}
	}
	for _, e := range plane.Sector.Entities.Slice() {
		add(e)
	}
	return ctx
}

func (p *Physics) restore(ctx *moveContext) {
	ctx.plane.Z = ctx.oldZ
	for _, st := range ctx.states {
		st.entity.Position.Z = st.z
		st.entity.OnGround = st.onGround
	}
}

func (p *Physics) live(ctx *moveContext) []*world.Entity {
	out := make([]*world.Entity, 0, len(ctx.states))
	for _, st := range ctx.states {
		if st.entity.Alive() {
			out = append(out, st.entity)
		}
	}
	return out
}

// riders returns the entities whose OnEntity is e.
func (p *Physics) riders(e *world.Entity) []*world.Entity {
	var out []*world.Entity
	for _, o := range p.world.Neighbors(e) {
		if o.OnEntity == e.Handle {
			out = append(out, o)
		}
	}
	return out
}

// carry puts every rider of e on top of it, recursively.
func (p *Physics) carry(e *world.Entity, visited map[*world.Entity]struct{}) {
	if _, ok := visited[e]; ok {
		return
	}
	visited[e] = struct{}{}
	for _, r := range p.riders(e) {
		r.Position.Z = e.Top()
		p.carry(r, visited)
	}
}

func (p *Physics) tryMove(ctx *moveContext, newZ float64, crush *CrushData) MoveResult {
	plane := ctx.plane
	plane.Z = newZ
	delta := newZ - ctx.oldZ

	visited := make(map[*world.Entity]struct{})
	for _, st := range ctx.states {
		e := st.entity
		if !e.Alive() || len(e.Sectors()) == 0 {
			continue
		}
		if plane.IsFloor() {
			p.followFloor(e, st, ctx.oldZ, delta, visited)
		} else {
			p.followCeiling(e, st, visited)
		}
	}

	var blockers []*world.Entity
	for _, st := range ctx.states {
		e := st.entity
		if !e.Alive() || len(e.Sectors()) == 0 || p.fits(e) {
			continue
		}
		if p.blocks(e) {
			blockers = append(blockers, e)
		}
	}

	if len(blockers) == 0 {
		return MoveResult{Status: MoveSuccess}
	}
	if crush == nil {
		return MoveResult{Status: MoveBlocked}
	}
	for _, b := range blockers {
		if !b.Has(world.FlagShootable) {
			return MoveResult{Status: MoveBlocked}
		}
	}
	return MoveResult{Status: MoveCrushing, Crushed: p.crushSet(blockers)}
}

func (p *Physics) followFloor(e *world.Entity, st entityState, oldZ, delta float64, visited map[*world.Entity]struct{}) {
	floor := p.world.HighestFloorZ(e)
	switch {
	case e.Position.Z < floor || (delta > 0 && e.Position.Z-floor < Epsilon):
		e.Position.Z = floor
		e.OnGround = true
		p.carry(e, visited)
	case delta < 0 && st.onFloor && math.Abs(st.z-oldZ) < Epsilon && !e.Has(world.FlagNoGravity):
		// Only slow floors keep their riders; fast ones drop out from under them.
		if -delta < p.sim.StickSpeed {
			e.Position.Z = floor
			e.OnGround = true
			p.carry(e, visited)
		} else {
			e.OnGround = false
		}
	}
}

func (p *Physics) followCeiling(e *world.Entity, st entityState, visited map[*world.Entity]struct{}) {
	ceil := p.world.LowestCeilingZ(e)
	switch {
	case st.hanging:
		e.Position.Z = ceil - e.Height
		p.carry(e, visited)
	case !st.onFloor && e.OnEntity.IsZero() && e.Top() > ceil:
		floor := p.world.HighestFloorZ(e)
		e.Position.Z = math.Max(ceil-e.Height, floor)
	}
}

func (p *Physics) fits(e *world.Entity) bool {
	return e.Top() <= p.world.LowestCeilingZ(e)+Epsilon
}

// blocks applies the side effects for an entity that no longer fits and
// reports whether it stops the plane.
func (p *Physics) blocks(e *world.Entity) bool {
	switch {
	case e.Has(world.FlagDropped) || !e.Has(world.FlagSolid):
		if e.Has(world.FlagDropped) || e.Has(world.FlagPickup) {
			p.log.Debug("item destroyed by plane", log.String("kind", e.Kind), log.Uint64("handle", uint64(e.Handle.Index)))
			p.RemoveEntity(e)
			p.metrics.ItemDestroyed()
		}
		return false
	case e.IsCorpse():
		e.Flatten()
		return false
	case p.compat.VanillaSectorPhysics && !e.Has(world.FlagShootable):
		return false
	}
	return true
}

// crushSet is the blockers plus every shootable entity stacked on them.
func (p *Physics) crushSet(blockers []*world.Entity) []*world.Entity {
	seen := make(map[*world.Entity]struct{})
	var out []*world.Entity
	var add func(e *world.Entity)
	add = func(e *world.Entity) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		if e.Has(world.FlagShootable) {
			out = append(out, e)
		}
		for _, r := range p.riders(e) {
			add(r)
		}
	}
	for _, b := range blockers {
		add(b)
	}
	return out
}

// ApplyCrushDamage damages every still-living entity and returns how many died.
func (p *Physics) ApplyCrushDamage(entities []*world.Entity, damage int) int {
	killed := 0
	for _, e := range entities {
		if !e.Alive() {
			continue
		}
		if e.Damage(damage) {
			killed++
			p.log.Debug("entity crushed to death", log.String("kind", e.Kind), log.Uint64("handle", uint64(e.Handle.Index)))
		}
	}
	return killed
}

// RemoveEntity disposes of e and fixes up the stacking of its neighbors in
// the same call.
func (p *Physics) RemoveEntity(e *world.Entity) bool {
	neighbors := p.world.Neighbors(e)
	if !p.world.RemoveEntity(e) {
		return false
	}
	p.RecomputeStacking(neighbors)
	return true
}

// Telefrag kills every solid shootable entity overlapping e and returns them.
func (p *Physics) Telefrag(e *world.Entity) []*world.Entity {
	var victims []*world.Entity
	box := e.Box()
	for _, o := range p.world.Neighbors(e) {
		if !o.Has(world.FlagSolid) || !o.Has(world.FlagShootable) {
			continue
		}
		if !o.Box().Overlaps(box) || o.Position.Z >= e.Top() || o.Top() <= e.Position.Z {
			continue
		}
		o.Kill()
		victims = append(victims, o)
		p.log.Debug("telefrag", log.String("kind", o.Kind), log.String("by", e.Kind))
	}
	p.RecomputeStacking(append(p.world.Neighbors(e), e))
	return victims
}

// RecomputeAll rebuilds the stacking relation of the whole world.
func (p *Physics) RecomputeAll() {
	p.RecomputeStacking(p.world.Entities())
}

// RecomputeStacking refreshes OnEntity and OverEntity for the given entities
// and for everything they were or are now stacked on.
func (p *Physics) RecomputeStacking(entities []*world.Entity) {
	set := make([]*world.Entity, 0, len(entities)*2)
	seen := make(map[*world.Entity]struct{})
	add := func(e *world.Entity) {
		if e == nil || !e.Alive() {
			return
		}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		set = append(set, e)
	}
	for _, e := range entities {
		add(e)
	}
	for _, e := range set[:len(set):len(set)] {
		add(e.OnEntityRef())
		add(e.OverEntityRef())
	}

	n := len(set)
	for i := 0; i < n; i++ {
		e := set[i]
		e.OnEntity = p.support(e)
		if !e.OnEntity.IsZero() {
			e.OnGround = true
			sup, _ := p.world.Entity(e.OnEntity)
			add(sup)
		}
	}
	for _, e := range set {
		e.OverEntity = models.Handle{}
		for _, o := range p.world.Neighbors(e) {
			if o.OnEntity == e.Handle {
				e.OverEntity = o.Handle
				break
			}
		}
	}
}

// support finds the solid entity whose top e rests on. Standing on the floor
// wins; among several candidates the lowest handle wins.
func (p *Physics) support(e *world.Entity) models.Handle {
	if len(e.Sectors()) == 0 || e.Position.Z <= p.world.HighestFloorZ(e)+Epsilon {
		return models.Handle{}
	}
	var best *world.Entity
	box := e.Box()
	for _, o := range p.world.Neighbors(e) {
		if !o.Has(world.FlagSolid) || o.Height <= 0 {
			continue
		}
		if math.Abs(o.Top()-e.Position.Z) >= Epsilon || !o.Box().Overlaps(box) {
			continue
		}
		if best == nil || o.Handle.Index < best.Handle.Index {
			best = o
		}
	}
	if best == nil {
		return models.Handle{}
	}
	return best.Handle
}
