package specials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// doorRoom builds a room with a closed door sector behind a manual door line.
func doorRoom(f *fixture, special int, roomCeiling float64) (*world.Sector, *world.Line) {
	room := f.sector(0, roomCeiling, 0)
	door := f.sector(0, 0, 0)
	line := f.w.AddLine(&world.Side{Sector: room, Middle: switchOff}, &world.Side{Sector: door}, special, 0, 0)
	return door, line
}

func TestDoorRoundTrip(t *testing.T) {
	f := newFixture(t)
	door, line := doorRoom(f, 1, 128)

	require.True(t, f.reg.Activate(player(), line, TriggerUse))
	m := f.reg.FindBySector(door, world.Ceiling)
	require.NotNil(t, m)
	assert.Equal(t, Up, m.Direction())
	assert.Equal(t, 124.0, m.Destination())

	f.tick(62)
	assert.Equal(t, 124.0, door.Ceiling.Z)
	assert.Equal(t, StateDelayed, m.State())
	assert.Equal(t, DoorWait, m.DelayTics())

	f.tick(DoorWait)
	assert.Equal(t, StateMoving, m.State())
	assert.Equal(t, Down, m.Direction())
	assert.Equal(t, 124.0, door.Ceiling.Z)

	f.tick(61)
	assert.Equal(t, 2.0, door.Ceiling.Z)
	f.tick(1)
	assert.Equal(t, 0.0, door.Ceiling.Z)
	assert.Nil(t, f.reg.FindBySector(door, world.Ceiling))
	assert.False(t, door.IsMoving(world.Ceiling))
	assert.Empty(t, f.reg.Movers())
	assert.Equal(t, StateDone, m.State())
}

func TestDoorSounds(t *testing.T) {
	n := &callbackNotifier{}
	f := newFixtureWith(t, textures{}, []Option{WithNotifier(n)})
	_, line := doorRoom(f, 1, 128)

	require.True(t, f.reg.Activate(player(), line, TriggerUse))
	f.runIdle(400)
	assert.Equal(t, []string{"doropn", "dorcls"}, n.sounds)
	assert.Equal(t, 2, n.stops)
}

func TestInstantDoorSnapsInterpolation(t *testing.T) {
	f := newFixture(t)
	blaze, blazeLine := doorRoom(f, 117, 8)
	slow, slowLine := doorRoom(f, 1, 8)

	require.True(t, f.reg.Activate(player(), blazeLine, TriggerUse))
	require.True(t, f.reg.Activate(player(), slowLine, TriggerUse))
	f.tick(1)

	assert.Equal(t, 4.0, blaze.Ceiling.Z)
	assert.Equal(t, 4.0, blaze.Ceiling.PrevZ)
	assert.Equal(t, 2.0, slow.Ceiling.Z)
	assert.Equal(t, 0.0, slow.Ceiling.PrevZ)
}

func TestDoorKick(t *testing.T) {
	f := newFixture(t)
	door, line := doorRoom(f, 1, 128)
	p, mon := player(), imp()

	require.True(t, f.reg.Activate(p, line, TriggerUse))
	m := f.reg.FindBySector(door, world.Ceiling)
	f.tick(10)
	require.Equal(t, 20.0, door.Ceiling.Z)

	// monsters cannot close an opening door
	assert.False(t, f.reg.Activate(mon, line, TriggerUse))
	assert.Equal(t, Up, m.Direction())

	require.True(t, f.reg.Activate(p, line, TriggerUse))
	assert.Equal(t, Down, m.Direction())
	f.tick(2)
	assert.Equal(t, 16.0, door.Ceiling.Z)

	// anyone can reopen a closing door
	require.True(t, f.reg.Activate(mon, line, TriggerUse))
	assert.Equal(t, Up, m.Direction())
	f.tick(1)
	assert.Equal(t, 18.0, door.Ceiling.Z)
	assert.Len(t, f.reg.Movers(), 1)
}

func TestDoorKickWhileWaiting(t *testing.T) {
	f := newFixture(t)
	door, line := doorRoom(f, 1, 128)

	require.True(t, f.reg.Activate(player(), line, TriggerUse))
	f.tick(70)
	m := f.reg.FindBySector(door, world.Ceiling)
	require.Equal(t, StateDelayed, m.State())

	require.True(t, f.reg.Activate(player(), line, TriggerUse))
	assert.Equal(t, StateMoving, m.State())
	f.tick(1)
	assert.Equal(t, 122.0, door.Ceiling.Z)
}

func TestCrusherSlowsDownWhileCrushing(t *testing.T) {
	f := newFixture(t)
	s := f.sector(0, 72, 5)
	mon := f.w.AddEntity(imp(), s)
	mon.OnGround = true
	require.True(t, f.reg.Activate(player(), f.trigger(25, 5), TriggerCross))
	m := f.reg.FindBySector(s, world.Ceiling)
	require.NotNil(t, m)

	crushTicks := 0
	afterCrush := false
	for i := 0; i < 500 && m.Direction() == Down; i++ {
		prev := s.Ceiling.Z
		f.reg.Tick()
		delta := prev - s.Ceiling.Z
		if m.Crushing() {
			crushTicks++
			assert.InDelta(t, 0.1, delta, 1e-9, "tick %d", i)
			continue
		}
		if crushTicks > 0 && !afterCrush {
			afterCrush = true
			assert.InDelta(t, 1.0, delta, 1e-9, "first tick after the crush")
		}
		if s.Ceiling.Z > 8 {
			assert.InDelta(t, 1.0, delta, 1e-9, "tick %d", i)
		}
	}

	assert.Equal(t, 10, crushTicks)
	assert.True(t, mon.IsCorpse())
	assert.Equal(t, 0.0, mon.Height, "corpse flattened on the way down")
	assert.Equal(t, 8.0, s.Ceiling.Z)
	assert.Equal(t, Up, m.Direction())

	f.tick(1)
	assert.Equal(t, 9.0, s.Ceiling.Z)
}

func TestCrushDamageFlushedOnRemove(t *testing.T) {
	n := &callbackNotifier{}
	f := newFixtureWith(t, textures{}, []Option{WithNotifier(n)})
	s := f.sector(0, 56.5, 5)
	mon := f.w.AddEntity(imp(), s)
	require.True(t, f.reg.Activate(player(), f.trigger(6, 5), TriggerCross))

	m := f.reg.FindBySector(s, world.Ceiling)
	n.changed = func(p *world.SectorPlane) {
		if p == s.Ceiling {
			f.reg.Remove(m)
		}
	}
	f.tick(1)

	assert.Equal(t, 90, mon.Health, "queued damage applied exactly once")
	assert.Empty(t, f.reg.Specials())
	assert.False(t, s.IsMoving(world.Ceiling))
}

func TestLiftCarriesRider(t *testing.T) {
	f := newFixture(t)
	low := f.sector(0, 256, 0)
	lift := f.sector(64, 256, 0)
	line := f.w.AddLine(&world.Side{Sector: low, Middle: switchOff}, &world.Side{Sector: lift}, 62, 0, 0)
	line.Tag = 6
	lift.Tag = 6
	p := player()
	p.Position.Z = 64
	p.OnGround = true
	f.w.AddEntity(p, lift)

	require.True(t, f.reg.Activate(p, line, TriggerUse))
	visitedBottom := false
	for i := 0; i < 400 && len(f.reg.Movers()) > 0; i++ {
		f.reg.Tick()
		require.Equal(t, lift.Floor.Z, p.Z(), "tick %d", i)
		if lift.Floor.Z == 0 {
			visitedBottom = true
		}
	}
	assert.True(t, visitedBottom)
	assert.Equal(t, 64.0, lift.Floor.Z)
	assert.Empty(t, f.reg.Movers())
}

func TestPauseAndResumeCrusher(t *testing.T) {
	f := newFixture(t)
	s := f.sector(0, 72, 5)
	require.True(t, f.reg.Activate(player(), f.trigger(25, 5), TriggerCross))
	f.tick(5)
	require.Equal(t, 67.0, s.Ceiling.Z)

	require.True(t, f.reg.Activate(player(), f.trigger(57, 5), TriggerCross))
	m := f.reg.FindBySector(s, world.Ceiling)
	require.NotNil(t, m)
	assert.True(t, m.IsPaused())
	f.tick(20)
	assert.Equal(t, 67.0, s.Ceiling.Z)
	assert.True(t, s.IsMoving(world.Ceiling), "paused crusher keeps its plane")

	// starting a crusher again wakes the stopped one instead of adding another
	require.True(t, f.reg.Activate(player(), f.trigger(73, 5), TriggerCross))
	assert.False(t, m.IsPaused())
	assert.Len(t, f.reg.Movers(), 1)
	f.tick(1)
	assert.Equal(t, 66.0, s.Ceiling.Z)
}

func TestPerpetualLiftIsSeeded(t *testing.T) {
	build := func(seed uint64) (*fixture, *world.Sector) {
		f := newFixture(t, func(c *config.Config) { c.Simulation.Seed = seed })
		lift := f.sector(64, 256, 6)
		f.join(lift, f.sector(0, 256, 0))
		f.join(lift, f.sector(128, 256, 0))
		require.True(t, f.reg.Activate(player(), f.trigger(87, 6), TriggerCross))
		return f, lift
	}

	a, liftA := build(42)
	b, liftB := build(42)
	ma := a.reg.FindBySector(liftA, world.Floor)
	mb := b.reg.FindBySector(liftB, world.Floor)
	assert.Equal(t, ma.Direction(), mb.Direction())
	for i := 0; i < 300; i++ {
		a.reg.Tick()
		b.reg.Tick()
		require.Equal(t, liftA.Floor.Z, liftB.Floor.Z)
	}

	lowest, highest := liftA.Floor.Z, liftA.Floor.Z
	for i := 0; i < 800; i++ {
		a.reg.Tick()
		lowest = min(lowest, liftA.Floor.Z)
		highest = max(highest, liftA.Floor.Z)
	}
	assert.Equal(t, 0.0, lowest)
	assert.Equal(t, 128.0, highest)

	require.True(t, a.reg.Activate(player(), a.trigger(89, 6), TriggerCross))
	z := liftA.Floor.Z
	a.tick(50)
	assert.Equal(t, z, liftA.Floor.Z)
	require.True(t, a.reg.Activate(player(), a.trigger(87, 6), TriggerCross))
	assert.Len(t, a.reg.Movers(), 1)
}

func TestRNGStateRoundTrip(t *testing.T) {
	a := newFixture(t)
	state, err := a.reg.RNGState()
	require.NoError(t, err)
	first := a.reg.rng.Uint64()

	b := newFixture(t, func(c *config.Config) { c.Simulation.Seed = 7 })
	require.NoError(t, b.reg.SetRNGState(state))
	assert.Equal(t, first, b.reg.rng.Uint64())

	assert.Error(t, b.reg.SetRNGState([]byte("bad")))
	assert.Equal(t, a.reg.rng.Uint64(), b.reg.rng.Uint64())
}

func TestMoverPanicsWhenSectorIsDestroyed(t *testing.T) {
	f := newFixture(t)
	door, line := doorRoom(f, 1, 128)
	require.True(t, f.reg.Activate(player(), line, TriggerUse))
	f.tick(3)

	f.w.DestroySector(door)
	want := LifetimeViolation{SectorID: door.ID, Kind: "door"}
	assert.PanicsWithError(t, want.Error(), f.reg.Tick)
}

func TestStartMoverRejectsBusyPlane(t *testing.T) {
	f := newFixture(t)
	s := f.sector(0, 128, 0)
	data := SectorMoveData{Kind: "floor", Face: world.Floor, Speed: 1}

	_, err := f.reg.StartMover(s, data, 0, 32)
	require.NoError(t, err)
	_, err = f.reg.StartMover(s, data, 0, 64)
	assert.ErrorIs(t, err, ErrPlaneBusy)

	data.Face = world.Ceiling
	_, err = f.reg.StartMover(s, data, 128, 160)
	assert.NoError(t, err, "floor and ceiling move independently")
	assert.Len(t, f.reg.Movers(), 2)
}

func TestBlockedMoverRetriesOrReverses(t *testing.T) {
	f := newFixture(t)
	retry := f.sector(0, 64, 0)
	reverse := f.sector(0, 64, 0)
	f.w.AddEntity(imp(), retry)
	f.w.AddEntity(imp(), reverse)

	down := SectorMoveData{Kind: "ceiling", Face: world.Ceiling, StartDirection: Down, Speed: 4}
	mr, err := f.reg.StartMover(retry, down, 0, 64)
	require.NoError(t, err)
	down.OnBlocked = BlockReverse
	mv, err := f.reg.StartMover(reverse, down, 0, 64)
	require.NoError(t, err)

	f.tick(3)
	assert.Equal(t, 56.0, retry.Ceiling.Z)
	assert.Equal(t, Down, mr.Direction())
	assert.Equal(t, Up, mv.Direction())
	assert.Equal(t, 56.0, reverse.Ceiling.Z)

	f.tick(1)
	assert.Equal(t, 56.0, retry.Ceiling.Z)
	assert.Equal(t, 60.0, reverse.Ceiling.Z)
}
