package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/models"
	"github.com/zeusync/sectorsim/internal/core/world"
)

func room(t *testing.T, floor, ceil float64, mutate ...func(*config.Config)) (*Physics, *world.World, *world.Sector) {
	t.Helper()
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}
	w := world.New(nil)
	s := w.AddSector(world.SectorSpec{FloorZ: floor, CeilingZ: ceil})
	return New(w, cfg, nil, nil), w, s
}

func thing(kind string, z, height float64, flags world.EntityFlags) *world.Entity {
	return &world.Entity{
		Kind:     kind,
		Position: models.Vec3{Z: z},
		Height:   height,
		Radius:   16,
		Health:   100,
		Flags:    flags,
		OnGround: true,
	}
}

const monster = world.FlagSolid | world.FlagShootable

func TestStackingInvariant(t *testing.T) {
	p, w, s := room(t, 0, 256)
	a := w.AddEntity(thing("a", 0, 16, world.FlagSolid), s)
	b := w.AddEntity(thing("b", 16, 16, world.FlagSolid), s)
	c := w.AddEntity(thing("c", 32, 16, world.FlagSolid), s)
	p.RecomputeAll()

	assert.True(t, a.OnEntity.IsZero())
	assert.Equal(t, a, b.OnEntityRef())
	assert.Equal(t, b, c.OnEntityRef())
	assert.Equal(t, b, a.OverEntityRef())
	assert.Equal(t, c, b.OverEntityRef())
	assert.True(t, c.OverEntity.IsZero())

	require.True(t, p.RemoveEntity(a))
	assert.True(t, b.OnEntity.IsZero())
	assert.Nil(t, b.OnEntityRef())
	assert.True(t, a.OverEntity.IsZero())
	assert.Equal(t, b, c.OnEntityRef())
}

func TestStackingFanOut(t *testing.T) {
	p, w, s := room(t, 0, 256)
	base := w.AddEntity(thing("base", 0, 32, world.FlagSolid), s)
	left := thing("left", 32, 8, world.FlagSolid)
	left.Position.X = -10
	right := thing("right", 32, 8, world.FlagSolid)
	right.Position.X = 10
	w.AddEntity(left, s)
	w.AddEntity(right, s)
	p.RecomputeAll()

	assert.Equal(t, base, left.OnEntityRef())
	assert.Equal(t, base, right.OnEntityRef())
	over := base.OverEntityRef()
	require.NotNil(t, over)
	assert.Equal(t, base.Handle, over.OnEntity)
}

func TestFloorCarriesStack(t *testing.T) {
	p, w, s := room(t, 0, 256)
	a := w.AddEntity(thing("a", 0, 16, world.FlagSolid), s)
	b := w.AddEntity(thing("b", 16, 16, world.FlagSolid), s)
	p.RecomputeAll()

	res := p.MoveSectorZ(s.Floor, 8, 64, nil, false)
	assert.Equal(t, MoveSuccess, res.Status)
	assert.Equal(t, 8.0, s.Floor.Z)
	assert.Equal(t, 8.0, a.Z())
	assert.Equal(t, 24.0, b.Z())
	assert.Equal(t, a, b.OnEntityRef())

	p.MoveSectorZ(s.Floor, 4, 0, nil, false)
	assert.Equal(t, 4.0, a.Z())
	assert.Equal(t, 20.0, b.Z())
}

func TestLiftAdherence(t *testing.T) {
	p, w, s := room(t, 64, 256)
	e := w.AddEntity(thing("player", 64, 56, monster), s)

	for s.Floor.Z > 0 {
		p.MoveSectorZ(s.Floor, 4, 0, nil, false)
		require.Equal(t, s.Floor.Z, e.Z())
	}
	for s.Floor.Z < 64 {
		p.MoveSectorZ(s.Floor, 4, 64, nil, false)
		require.Equal(t, s.Floor.Z, e.Z())
	}
}

func TestTurboLiftDropsRiderAndReattaches(t *testing.T) {
	p, w, s := room(t, 64, 256)
	e := w.AddEntity(thing("player", 64, 56, monster), s)

	p.MoveSectorZ(s.Floor, 8, 0, nil, false)
	assert.Equal(t, 56.0, s.Floor.Z)
	assert.Equal(t, 64.0, e.Z())
	assert.False(t, e.OnGround)

	for s.Floor.Z > 0 {
		p.MoveSectorZ(s.Floor, 8, 0, nil, false)
	}
	assert.Equal(t, 64.0, e.Z())

	for s.Floor.Z < 96 {
		p.MoveSectorZ(s.Floor, 8, 96, nil, false)
		if s.Floor.Z >= 64 {
			require.Equal(t, s.Floor.Z, e.Z())
			assert.True(t, e.OnGround)
		}
	}
}

func TestDroppedItemNeverBlocks(t *testing.T) {
	p, w, s := room(t, 0, 64)
	item := w.AddEntity(thing("clip", 0, 16, world.FlagDropped|world.FlagPickup), s)

	for s.Floor.Z < 56 {
		res := p.MoveSectorZ(s.Floor, 1, 56, nil, false)
		require.Equal(t, MoveSuccess, res.Status)
	}
	assert.False(t, item.Alive())
	assert.Equal(t, 0, s.Entities.Len())
}

func TestSolidBlocksWhereItemIsDestroyed(t *testing.T) {
	p, w, s := room(t, 32, 64)
	item := w.AddEntity(thing("clip", 32, 32, world.FlagDropped|world.FlagPickup), s)
	barrel := w.AddEntity(thing("barrel", 32, 32, world.FlagSolid), s)

	res := p.MoveSectorZ(s.Floor, 1, 56, nil, false)
	assert.Equal(t, MoveBlocked, res.Status)
	assert.Equal(t, 32.0, s.Floor.Z)
	assert.Equal(t, 32.0, barrel.Z())
	assert.False(t, item.Alive())
	assert.True(t, barrel.Alive())
}

func TestVanillaNonShootableSolidDoesNotBlock(t *testing.T) {
	p, w, s := room(t, 32, 64, func(c *config.Config) { c.Compatibility.VanillaSectorPhysics = true })
	w.AddEntity(thing("lamp", 32, 32, world.FlagSolid), s)

	res := p.MoveSectorZ(s.Floor, 1, 56, nil, false)
	assert.Equal(t, MoveSuccess, res.Status)
	assert.Equal(t, 33.0, s.Floor.Z)
}

func TestBlockedCeilingRestoresState(t *testing.T) {
	p, w, s := room(t, 0, 57)
	e := w.AddEntity(thing("imp", 0, 56, monster), s)

	res := p.MoveSectorZ(s.Ceiling, 2, 0, nil, false)
	assert.Equal(t, MoveBlocked, res.Status)
	assert.Equal(t, 57.0, s.Ceiling.Z)
	assert.Equal(t, 0.0, e.Z())
	assert.Empty(t, res.Crushed)
}

func TestCrushModes(t *testing.T) {
	tests := []struct {
		name      string
		mode      CrushMode
		wantZ     float64
		wantSpeed float64
	}{
		{"doom keeps moving", CrushDoom, 54.05, 2},
		{"slow down", CrushDoomWithSlowDown, 55.95, 0.1},
		{"hexen holds", CrushHexen, 56.05, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, w, s := room(t, 0, 56.05)
			e := w.AddEntity(thing("imp", 0, 56, monster), s)

			res := p.MoveSectorZ(s.Ceiling, 2, 8, &CrushData{Mode: tt.mode, Damage: 10}, false)
			assert.Equal(t, MoveCrushing, res.Status)
			assert.InDelta(t, tt.wantZ, s.Ceiling.Z, 1e-9)
			assert.Equal(t, tt.wantSpeed, res.Speed)
			assert.Equal(t, []*world.Entity{e}, res.Crushed)
			assert.Equal(t, 0.0, e.Z())
		})
	}
}

func TestCrushIncludesStackedEntities(t *testing.T) {
	cfg := config.Default()
	w := world.New(nil)
	low := w.AddSector(world.SectorSpec{FloorZ: 0, CeilingZ: 40})
	lift := w.AddSector(world.SectorSpec{FloorZ: 0, CeilingZ: 128})
	p := New(w, cfg, nil, nil)

	a := w.AddEntity(thing("a", 0, 32, monster), low, lift)
	b := w.AddEntity(thing("b", 32, 32, monster), lift)
	p.RecomputeAll()
	require.Equal(t, a, b.OnEntityRef())

	res := p.MoveSectorZ(lift.Floor, 10, 64, &CrushData{Mode: CrushDoom, Damage: 10}, false)
	require.Equal(t, MoveCrushing, res.Status)
	assert.Equal(t, []*world.Entity{a, b}, res.Crushed)
	assert.Equal(t, 42.0, b.Z())

	killed := p.ApplyCrushDamage(res.Crushed, 100)
	assert.Equal(t, 2, killed)
	assert.True(t, a.IsCorpse())
	assert.True(t, b.IsCorpse())
}

func TestCorpseIsFlattened(t *testing.T) {
	p, w, s := room(t, 0, 20)
	corpse := thing("corpse", 0, 16, world.FlagSolid|world.FlagCorpse)
	corpse.Health = 0
	w.AddEntity(corpse, s)

	res := p.MoveSectorZ(s.Ceiling, 8, 0, &CrushData{Mode: CrushDoom, Damage: 10}, false)
	assert.Equal(t, MoveSuccess, res.Status)
	assert.Equal(t, 12.0, s.Ceiling.Z)
	assert.Equal(t, 0.0, corpse.Height)
	assert.Equal(t, world.FrameSquashed, corpse.Frame)
	assert.True(t, corpse.Has(world.FlagDontGib))
}

func TestHangingRidesCeiling(t *testing.T) {
	p, w, s := room(t, 0, 128)
	lamp := w.AddEntity(thing("chain", 96, 32, world.FlagHanging|world.FlagNoGravity), s)

	p.MoveSectorZ(s.Ceiling, 4, 0, nil, false)
	assert.Equal(t, 124.0, s.Ceiling.Z)
	assert.Equal(t, 92.0, lamp.Z())
}

func TestInstantMoveSnapsInterpolation(t *testing.T) {
	p, w, s := room(t, 0, 128)
	e := w.AddEntity(thing("imp", 0, 56, monster), s)

	res := p.MoveSectorZ(s.Floor, 64, 32, nil, true)
	assert.Equal(t, MoveSuccess, res.Status)
	assert.Equal(t, 32.0, s.Floor.Z)
	assert.Equal(t, 32.0, s.Floor.PrevZ)
	assert.Equal(t, 32.0, e.Z())
	assert.Equal(t, 32.0, e.PrevPosition.Z)
}

func TestTelefrag(t *testing.T) {
	p, w, s := room(t, 0, 128)
	victim := w.AddEntity(thing("imp", 0, 56, monster), s)
	bystander := thing("far", 0, 56, monster)
	bystander.Position.X = 200
	w.AddEntity(bystander, s)
	player := w.AddEntity(thing("player", 0, 56, monster), s)

	victims := p.Telefrag(player)
	assert.Equal(t, []*world.Entity{victim}, victims)
	assert.True(t, victim.IsCorpse())
	assert.False(t, bystander.IsCorpse())
}
