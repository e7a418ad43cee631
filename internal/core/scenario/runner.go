package scenario

import (
	"context"

	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/specials"
	"github.com/zeusync/sectorsim/internal/core/systems"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// PlaneHeights is the final state of one sector.
type PlaneHeights struct {
	Sector  int     `json:"sector"`
	Floor   float64 `json:"floor"`
	Ceiling float64 `json:"ceiling"`
}

// Result summarizes a finished run.
type Result struct {
	Name        string         `json:"name"`
	Ticks       uint64         `json:"ticks"`
	Activations int            `json:"activations"`
	Spawned     int            `json:"spawned"`
	Active      int            `json:"active_specials"`
	Planes      []PlaneHeights `json:"planes"`
}

// Runner plays a level's script against a registry, one fixed tick at a time.
type Runner struct {
	level *Level
	reg   *specials.Registry
	loop  *systems.Loop
	log   log.Log

	next        int
	activations int
	spawned     int
}

func NewRunner(level *Level, reg *specials.Registry, loop *systems.Loop, logger log.Log) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	loop.Register(reg, systems.PhaseUpdate, systems.PriorityHigh)
	loop.Register(systems.InterpolationSystem{World: level.World}, systems.PhasePreUpdate, systems.PriorityNormal)
	return &Runner{
		level: level,
		reg:   reg,
		loop:  loop,
		log:   logger.With(log.String("scenario", level.Scenario.Name)),
	}
}

func (r *Runner) Registry() *specials.Registry { return r.reg }
func (r *Runner) Level() *Level                { return r.level }

// Start spawns the sector type specials. Call it once before the first Step.
func (r *Runner) Start() int {
	n := r.reg.SpawnSectorSpecials()
	r.spawned += n
	r.log.Debug("sector specials spawned", log.Int("count", n))
	return n
}

// Step runs the script entries due at the current tick, then advances one
// tick.
func (r *Runner) Step() {
	now := r.loop.CurrentTick()
	script := r.level.Scenario.Script
	for ; r.next < len(script) && script[r.next].Tick <= now; r.next++ {
		r.apply(script[r.next])
	}
	r.loop.Step()
}

func (r *Runner) apply(st Step) {
	var who *world.Entity
	if st.Activator != nil {
		who = r.level.Entities[*st.Activator]
	}
	r.activations++

	var ok bool
	if st.Sector != nil {
		ok = r.reg.ActivateSector(who, r.level.World.Sectors[*st.Sector])
	} else {
		trig, _ := specials.ParseTrigger(st.Trigger)
		ok = r.reg.Activate(who, r.level.World.Lines[*st.Line], trig)
	}
	if ok {
		r.spawned++
	}
	r.log.Debug("script step", log.Uint64("tick", st.Tick), log.Bool("spawned", ok))
}

// Run plays the whole scenario. It stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	r.Start()
	for i := 0; i < r.level.Scenario.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return r.Result(), err
		}
		r.Step()
	}
	res := r.Result()
	r.log.Info("scenario finished",
		log.Uint64("ticks", res.Ticks),
		log.Int("activations", res.Activations),
		log.Int("spawned", res.Spawned),
		log.Int("active_specials", res.Active),
	)
	return res, nil
}

func (r *Runner) Result() Result {
	res := Result{
		Name:        r.level.Scenario.Name,
		Ticks:       r.loop.CurrentTick(),
		Activations: r.activations,
		Spawned:     r.spawned,
		Active:      len(r.reg.Specials()),
	}
	for _, s := range r.level.World.Sectors {
		res.Planes = append(res.Planes, PlaneHeights{Sector: s.ID, Floor: s.Floor.Z, Ceiling: s.Ceiling.Z})
	}
	return res
}
