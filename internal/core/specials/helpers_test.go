package specials

import (
	"testing"

	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

const (
	switchOff = 100
	switchOn  = 101
)

// textures maps a texture handle to its height. Handles 100 and 101 form a
// switch pair.
type textures map[int]int

func (t textures) GetTextureHeight(handle int) (int, int, bool) {
	h, ok := t[handle]
	return 64, h, ok
}

func (t textures) SwitchPair(handle int) (int, bool) {
	switch handle {
	case switchOff:
		return switchOn, true
	case switchOn:
		return switchOff, true
	}
	return 0, false
}

type fixture struct {
	t    *testing.T
	cfg  config.Config
	w    *world.World
	phys *physics.Physics
	reg  *Registry
	// control is a big room holding one-sided trigger lines.
	control *world.Sector
}

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	return newFixtureWith(t, textures{}, nil, opts...)
}

func newFixtureWith(t *testing.T, tex textures, regOpts []Option, opts ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	for _, o := range opts {
		o(&cfg)
	}
	w := world.New(tex)
	phys := physics.New(w, cfg, nil, nil)
	f := &fixture{t: t, cfg: cfg, w: w, phys: phys}
	f.reg = NewRegistry(w, phys, cfg, regOpts...)
	f.control = f.sector(0, 256, 0)
	return f
}

func (f *fixture) sector(floor, ceil float64, tag int) *world.Sector {
	return f.w.AddSector(world.SectorSpec{FloorZ: floor, CeilingZ: ceil, Tag: tag})
}

// join adds a two-sided line with front facing a.
func (f *fixture) join(a, b *world.Sector) *world.Line {
	return f.w.AddLine(&world.Side{Sector: a}, &world.Side{Sector: b}, 0, 0, 0)
}

// trigger adds a one-sided wall in the control room carrying a special.
func (f *fixture) trigger(special, tag int) *world.Line {
	return f.w.AddLine(&world.Side{Sector: f.control, Middle: switchOff}, nil, special, tag, 0)
}

func (f *fixture) tick(n int) {
	for i := 0; i < n; i++ {
		f.reg.Tick()
	}
}

// runIdle ticks until no mover is left and returns the number of ticks used.
func (f *fixture) runIdle(limit int) int {
	f.t.Helper()
	for i := 1; i <= limit; i++ {
		f.reg.Tick()
		if len(f.reg.Movers()) == 0 {
			return i
		}
	}
	f.t.Fatalf("movers still active after %d ticks", limit)
	return limit
}

func player() *world.Entity {
	return &world.Entity{Kind: "player", Player: true, Height: 56, Radius: 16, Health: 100, Flags: world.FlagSolid | world.FlagShootable}
}

func imp() *world.Entity {
	return &world.Entity{Kind: "imp", Height: 56, Radius: 20, Health: 100, Flags: world.FlagSolid | world.FlagShootable}
}

// callbackNotifier runs a hook on every plane change.
type callbackNotifier struct {
	changed func(*world.SectorPlane)
	sounds  []string
	stops   int
}

func (n *callbackNotifier) PlayMovementSound(_ *world.SectorPlane, id string, _ bool) {
	n.sounds = append(n.sounds, id)
}

func (n *callbackNotifier) StopMovementSound(*world.SectorPlane) { n.stops++ }

func (n *callbackNotifier) NotifyPlaneChanged(p *world.SectorPlane) {
	if n.changed != nil {
		n.changed(p)
	}
}
