package specials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// taggedDoor adds a closed door sector with the given tag next to a tall room.
func taggedDoor(f *fixture, tag int) *world.Sector {
	room := f.sector(0, 128, 0)
	door := f.sector(0, 0, tag)
	f.join(room, door)
	return door
}

func switchTimer(r *Registry) *SwitchSpecial {
	for _, s := range r.Specials() {
		if sw, ok := s.(*SwitchSpecial); ok {
			return sw
		}
	}
	return nil
}

func TestSingleUseLineIsSpent(t *testing.T) {
	f := newFixture(t)
	door := taggedDoor(f, 7)
	line := f.trigger(2, 7)

	require.True(t, f.reg.Activate(player(), line, TriggerCross))
	assert.True(t, line.Activated)
	f.runIdle(200)
	assert.Equal(t, 124.0, door.Ceiling.Z)

	door.Ceiling.Z = 0
	assert.False(t, f.reg.Activate(player(), line, TriggerCross))
	assert.Empty(t, f.reg.Movers())
}

func TestRepeatableLineRefusedWhileBusy(t *testing.T) {
	f := newFixture(t)
	taggedDoor(f, 8)
	line := f.trigger(90, 8)

	require.True(t, f.reg.Activate(player(), line, TriggerCross))
	assert.False(t, f.reg.Activate(player(), line, TriggerCross), "busy plane is not taken over")
	assert.Len(t, f.reg.Movers(), 1)
	assert.False(t, line.Activated)

	f.runIdle(400)
	assert.True(t, f.reg.Activate(player(), line, TriggerCross))
}

func TestFailedSingleUseLineStaysArmed(t *testing.T) {
	f := newFixture(t)
	door := taggedDoor(f, 9)
	require.True(t, f.reg.Activate(player(), f.trigger(86, 9), TriggerCross))

	line := f.trigger(103, 9)
	assert.False(t, f.reg.Activate(player(), line, TriggerUse))
	assert.False(t, line.Activated)

	f.runIdle(200)
	require.True(t, f.reg.Activate(player(), line, TriggerUse))
	assert.True(t, line.Activated)
	f.tick(1)
	assert.Equal(t, 124.0, door.Ceiling.Z)
	assert.Empty(t, f.reg.Movers())
}

func TestTriggerMustMatch(t *testing.T) {
	f := newFixture(t)
	taggedDoor(f, 7)
	line := f.trigger(2, 7)

	assert.False(t, f.reg.Activate(player(), line, TriggerUse))
	assert.False(t, f.reg.Activate(player(), line, TriggerShoot))
	assert.False(t, line.Activated)
}

func TestUnknownSpecialIsRefused(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.reg.Activate(player(), f.trigger(9999, 1), TriggerCross))
	assert.False(t, f.reg.Activate(player(), nil, TriggerCross))
}

func TestMonsterActivation(t *testing.T) {
	f := newFixture(t)
	taggedDoor(f, 7)
	taggedDoor(f, 8)
	taggedDoor(f, 9)

	players := f.trigger(2, 7)
	assert.False(t, f.reg.Activate(imp(), players, TriggerCross))
	assert.False(t, players.Activated)

	assert.True(t, f.reg.Activate(imp(), f.trigger(4, 8), TriggerCross))

	flagged := f.trigger(2, 9)
	flagged.Flags |= world.LineMonsterActivate
	assert.True(t, f.reg.Activate(imp(), flagged, TriggerCross))
}

func TestMonstersCannotUseSecretDoors(t *testing.T) {
	f := newFixture(t)
	_, line := doorRoom(f, 1, 128)
	line.Flags |= world.LineSecret

	assert.False(t, f.reg.Activate(imp(), line, TriggerUse))
	assert.True(t, f.reg.Activate(player(), line, TriggerUse))
}

func TestLockedDoor(t *testing.T) {
	f := newFixture(t)
	_, line := doorRoom(f, 26, 128)

	p := player()
	assert.False(t, f.reg.Activate(p, line, TriggerUse))
	assert.False(t, f.reg.Activate(nil, line, TriggerUse))
	p.Keys = world.KeyRed
	assert.False(t, f.reg.Activate(p, line, TriggerUse))

	p.Keys |= world.KeyBlue
	assert.True(t, f.reg.Activate(p, line, TriggerUse))
}

func TestLights(t *testing.T) {
	f := newFixture(t)
	a := f.w.AddSector(world.SectorSpec{CeilingZ: 128, Tag: 3, LightLevel: 100})
	b := f.w.AddSector(world.SectorSpec{CeilingZ: 128, Tag: 4, LightLevel: 100})
	bright := f.w.AddSector(world.SectorSpec{CeilingZ: 128, LightLevel: 200})
	f.join(b, bright)

	require.True(t, f.reg.Activate(player(), f.trigger(13, 3), TriggerCross))
	assert.Equal(t, int16(255), a.LightLevel)
	assert.Equal(t, int16(255), a.Floor.LightLevel)

	require.True(t, f.reg.Activate(player(), f.trigger(80, 4), TriggerCross))
	assert.Equal(t, int16(200), b.LightLevel)
	assert.Equal(t, int16(200), b.Ceiling.LightLevel)
	assert.Empty(t, f.reg.Specials())
}

func TestSectorTypeSpecials(t *testing.T) {
	f := newFixture(t)
	closing := f.w.AddSector(world.SectorSpec{CeilingZ: 64, Type: SectorDoorCloseIn30})
	opening := f.w.AddSector(world.SectorSpec{Type: SectorDoorRaiseIn5})
	f.join(f.sector(0, 128, 0), opening)

	assert.Equal(t, 2, f.reg.SpawnSectorSpecials())
	assert.Zero(t, closing.Type)
	assert.Zero(t, opening.Type)
	assert.Zero(t, f.reg.SpawnSectorSpecials())

	f.tick(closeWaitTics)
	assert.Equal(t, 64.0, closing.Ceiling.Z)
	f.tick(1)
	assert.Equal(t, 62.0, closing.Ceiling.Z)
	f.tick(31)
	assert.Equal(t, 0.0, closing.Ceiling.Z)
	assert.False(t, closing.IsMoving(world.Ceiling))

	f.tick(raiseIn5Tics - closeWaitTics - 32)
	assert.Equal(t, 0.0, opening.Ceiling.Z)
	f.tick(1)
	assert.Equal(t, 2.0, opening.Ceiling.Z)
}

func TestShortestLowerTextureModes(t *testing.T) {
	for _, tc := range []struct {
		name    string
		vanilla bool
		want    float64
	}{
		{name: "fixed", want: 24},
		{name: "vanilla", vanilla: true, want: 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixtureWith(t, textures{0: 8, 5: 24}, nil, func(c *config.Config) {
				c.Compatibility.VanillaShortestTexture = tc.vanilla
			})
			s := f.sector(0, 256, 4)
			f.w.AddLine(&world.Side{Sector: s, Lower: 5}, &world.Side{Sector: f.sector(0, 256, 0)}, 0, 0, 0)

			require.True(t, f.reg.Activate(player(), f.trigger(30, 4), TriggerCross))
			f.runIdle(200)
			assert.Equal(t, tc.want, s.Floor.Z)
		})
	}
}

func TestShortestLowerTextureMissingFails(t *testing.T) {
	f := newFixture(t)
	s := f.sector(0, 256, 4)
	f.join(s, f.sector(0, 256, 0))

	line := f.trigger(30, 4)
	assert.False(t, f.reg.Activate(player(), line, TriggerCross))
	assert.False(t, line.Activated)
	assert.Empty(t, f.reg.Movers())
}

func TestInstantRaiseClamp(t *testing.T) {
	table := DoomTable()
	table[900] = LineSpecial{
		Code: 900, Name: "fast raise by texture", Action: ActionFloor, Trigger: TriggerCross,
		Repeat: true, Target: TargetShortestLowerTexture, Direction: Up, Speed: 512,
	}

	for _, tc := range []struct {
		name  string
		clamp bool
		want  float64
	}{
		{name: "clamped", clamp: true, want: 64},
		{name: "legacy", clamp: false, want: 128},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixtureWith(t, textures{5: 128}, []Option{WithTable(table)}, func(c *config.Config) {
				c.Compatibility.InstantMoveClamp = tc.clamp
			})
			s := f.sector(0, 64, 4)
			f.w.AddLine(&world.Side{Sector: s, Lower: 5}, &world.Side{Sector: f.sector(0, 256, 0)}, 0, 0, 0)

			require.True(t, f.reg.Activate(player(), f.trigger(900, 4), TriggerCross))
			f.tick(1)
			assert.Equal(t, tc.want, s.Floor.Z)
			assert.Equal(t, tc.want, s.Floor.PrevZ)
			assert.Empty(t, f.reg.Movers())
		})
	}
}

func TestSlowRaiseIsNeverClamped(t *testing.T) {
	f := newFixtureWith(t, textures{5: 128}, nil)
	s := f.sector(0, 64, 4)
	f.w.AddLine(&world.Side{Sector: s, Lower: 5}, &world.Side{Sector: f.sector(0, 256, 0)}, 0, 0, 0)

	require.True(t, f.reg.Activate(player(), f.trigger(30, 4), TriggerCross))
	m := f.reg.FindBySector(s, world.Floor)
	require.NotNil(t, m)
	assert.Equal(t, 128.0, m.Destination())
}

func TestRepeatableSwitchResets(t *testing.T) {
	f := newFixture(t)
	lift := f.sector(64, 256, 6)
	f.join(lift, f.sector(0, 256, 0))
	line := f.trigger(62, 6)

	require.True(t, f.reg.Activate(player(), line, TriggerUse))
	assert.Equal(t, switchOn, line.Front.Middle)
	require.NotNil(t, switchTimer(f.reg))

	f.tick(ButtonTime - 1)
	assert.Equal(t, switchOn, line.Front.Middle)
	f.tick(1)
	assert.Equal(t, switchOff, line.Front.Middle)
	assert.Nil(t, switchTimer(f.reg))
}

func TestSingleUseSwitchFlipsEvenWhenNothingStarts(t *testing.T) {
	f := newFixture(t)
	taggedDoor(f, 9)
	require.True(t, f.reg.Activate(player(), f.trigger(86, 9), TriggerCross))

	line := f.trigger(103, 9)
	assert.False(t, f.reg.Activate(player(), line, TriggerUse))
	assert.Equal(t, switchOn, line.Front.Middle)
	assert.Nil(t, switchTimer(f.reg))

	f.tick(100)
	assert.Equal(t, switchOn, line.Front.Middle)
}

func TestQuickSwitch(t *testing.T) {
	for _, tc := range []struct {
		name  string
		quick bool
	}{
		{name: "quick", quick: true},
		{name: "timer restarts", quick: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, func(c *config.Config) { c.Compatibility.QuickSwitch = tc.quick })
			lift := f.sector(64, 256, 6)
			f.join(lift, f.sector(0, 256, 0))
			line := f.trigger(62, 6)

			require.True(t, f.reg.Activate(player(), line, TriggerUse))
			f.tick(5)
			assert.False(t, f.reg.Activate(player(), line, TriggerUse), "lift still busy")

			if tc.quick {
				assert.Equal(t, switchOff, line.Front.Middle)
				assert.Nil(t, switchTimer(f.reg))
				return
			}
			assert.Equal(t, switchOn, line.Front.Middle)
			sw := switchTimer(f.reg)
			require.NotNil(t, sw)
			assert.Equal(t, ButtonTime, sw.Remaining())
		})
	}
}
