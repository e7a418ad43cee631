package specials

import (
	"math"

	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

var (
	doorSounds      = Sounds{Up: "doropn", Down: "dorcls"}
	blazeDoorSounds = Sounds{Up: "bdopn", Down: "bdcls"}
	planeSounds     = Sounds{Up: "stnmov", Down: "stnmov", Looping: true}
	platSounds      = Sounds{Up: "pstart", Down: "pstart"}
)

func doorTop(s *world.Sector) float64 {
	z, ok := world.LowestNeighborCeiling(s)
	if !ok {
		return s.Ceiling.Z
	}
	return z - DoorTopGap
}

func (r *Registry) crushData(ls LineSpecial) *physics.CrushData {
	if !ls.Crush {
		return nil
	}
	return &physics.CrushData{Mode: ls.CrushMode, Damage: r.sim.CrushDamage}
}

// oneShot orders the current height and a destination for a one-way move.
func oneShot(z, dest float64) (dir MoveDirection, minZ, maxZ float64) {
	if dest >= z {
		return Up, z, dest
	}
	return Down, dest, z
}

func (r *Registry) spawnDoor(ls LineSpecial, s *world.Sector) (*SectorMoveSpecial, error) {
	data := SectorMoveData{
		Kind:           "door",
		Face:           world.Ceiling,
		StartDirection: ls.Direction,
		Repetition:     ls.Repetition,
		Speed:          ls.Speed,
		Delay:          ls.Delay,
		OnBlocked:      ls.Blocked,
		Sounds:         doorSounds,
		Door:           ls.Manual && ls.Repeat,
	}
	if ls.Speed >= BlazeDoorSpeed {
		data.Sounds = blazeDoorSounds
	}
	minZ, maxZ := s.Floor.Z, s.Ceiling.Z
	if ls.Direction == Up {
		maxZ = doorTop(s)
	}
	return r.StartMover(s, data, minZ, maxZ)
}

// floorDestination resolves a destination rule for the floor of s. It fails
// when the rule needs data the level does not have.
func (r *Registry) floorDestination(ls LineSpecial, s *world.Sector) (float64, bool) {
	z := s.Floor.Z
	switch ls.Target {
	case TargetLowestNeighborCeiling:
		dest := s.Ceiling.Z
		if c, ok := world.LowestNeighborCeiling(s); ok && c < dest {
			dest = c
		}
		if ls.Crush {
			dest -= CrusherGap
		}
		return dest, true
	case TargetHighestNeighborFloor:
		dest, ok := world.HighestNeighborFloor(s)
		if !ok {
			return z, true
		}
		if ls.Offset != 0 && dest != z {
			dest += ls.Offset
		}
		return dest, true
	case TargetLowestNeighborFloor:
		if f, ok := world.LowestNeighborFloor(s); ok && f < z {
			return f, true
		}
		return z, true
	case TargetNextHigherFloor:
		if f, ok := world.NextHigherNeighborFloor(s, z); ok {
			return f, true
		}
		return z, true
	case TargetShortestLowerTexture:
		h, ok := world.ShortestLowerTexture(s, r.world.Textures, r.compat.VanillaShortestTexture)
		if !ok {
			return 0, false
		}
		return z + h, true
	case TargetRelative:
		return z + ls.Offset, true
	case TargetOwnCeiling:
		return s.Ceiling.Z, true
	}
	return z, true
}

// clampRaise handles a floor raise that would end above the ceiling. An
// instant raise is clamped to the ceiling unless the legacy behavior is on.
func (r *Registry) clampRaise(s *world.Sector, dest, speed float64) float64 {
	if dest <= s.Ceiling.Z {
		return dest
	}
	instant := math.Abs(dest-s.Floor.Z) <= speed
	if instant && r.compat.InstantMoveClamp {
		return s.Ceiling.Z
	}
	return dest
}

func frontFloorChange(line *world.Line, clearDamage bool) TextureChange {
	front := line.FrontSector()
	if front == nil {
		return TextureChange{}
	}
	c := TextureChange{Set: true, Handle: front.Floor.TextureHandle, SetDamage: true, DamageSpecial: front.DamageSpecial}
	if clearDamage {
		c.DamageSpecial = 0
	}
	return c
}

func (r *Registry) spawnFloor(ls LineSpecial, line *world.Line, s *world.Sector) (*SectorMoveSpecial, error) {
	dest, ok := r.floorDestination(ls, s)
	if !ok {
		r.log.Debug("floor destination unresolved", log.Int("code", ls.Code), log.Int("sector", s.ID))
		return nil, nil
	}
	dest = r.clampRaise(s, dest, ls.Speed)
	dir, minZ, maxZ := oneShot(s.Floor.Z, dest)

	data := SectorMoveData{
		Kind:           "floor",
		Face:           world.Floor,
		StartDirection: dir,
		Speed:          ls.Speed,
		Crush:          r.crushData(ls),
		Sounds:         planeSounds,
	}
	switch ls.Change {
	case ChangeFromModel:
		if model := world.NeighborWithFloorZ(s, dest); model != nil {
			data.Change = TextureChange{Set: true, Handle: model.Floor.TextureHandle, SetDamage: true, DamageSpecial: model.DamageSpecial}
		}
	}
	m, err := r.StartMover(s, data, minZ, maxZ)
	if err == nil && (ls.Change == ChangeFromFront || ls.Change == ChangeFromFrontClearDamage) {
		frontFloorChange(line, ls.Change == ChangeFromFrontClearDamage).apply(s.Floor)
	}
	return m, err
}

func (r *Registry) spawnCeiling(ls LineSpecial, s *world.Sector) (*SectorMoveSpecial, error) {
	var dest float64
	switch ls.Target {
	case TargetHighestNeighborCeiling:
		dest = s.Ceiling.Z
		if c, ok := world.HighestNeighborCeiling(s); ok && c > dest {
			dest = c
		}
	case TargetOwnFloor:
		dest = s.Floor.Z + ls.Offset
	default:
		dest = s.Ceiling.Z
	}
	dir, minZ, maxZ := oneShot(s.Ceiling.Z, dest)
	data := SectorMoveData{
		Kind:           "ceiling",
		Face:           world.Ceiling,
		StartDirection: dir,
		Speed:          ls.Speed,
		Crush:          r.crushData(ls),
		Sounds:         planeSounds,
	}
	return r.StartMover(s, data, minZ, maxZ)
}

func (r *Registry) spawnCrusher(ls LineSpecial, s *world.Sector) (*SectorMoveSpecial, error) {
	data := SectorMoveData{
		Kind:           "crusher",
		Face:           world.Ceiling,
		StartDirection: Down,
		Repetition:     RepeatPerpetual,
		Speed:          ls.Speed,
		Crush:          r.crushData(ls),
		Sounds:         planeSounds,
	}
	if ls.Silent {
		data.Sounds = Sounds{}
	}
	return r.StartMover(s, data, s.Floor.Z+CrusherGap, s.Ceiling.Z)
}

func (r *Registry) spawnPlat(ls LineSpecial, line *world.Line, s *world.Sector) (*SectorMoveSpecial, error) {
	z := s.Floor.Z
	data := SectorMoveData{
		Kind:      "plat",
		Face:      world.Floor,
		Speed:     ls.Speed,
		Delay:     ls.Delay,
		OnBlocked: ls.Blocked,
		Sounds:    platSounds,
	}

	if ls.Repetition == RepeatDelayReturn {
		low := z
		if f, ok := world.LowestNeighborFloor(s); ok && f < low {
			low = f
		}
		data.StartDirection = Down
		data.Repetition = RepeatDelayReturn
		return r.StartMover(s, data, low, z)
	}

	dest, ok := r.floorDestination(ls, s)
	if !ok {
		return nil, nil
	}
	dir, minZ, maxZ := oneShot(z, dest)
	data.StartDirection = dir
	m, err := r.StartMover(s, data, minZ, maxZ)
	if err == nil && ls.Change != ChangeNone {
		frontFloorChange(line, ls.Change == ChangeFromFrontClearDamage).apply(s.Floor)
	}
	return m, err
}

func (r *Registry) spawnPerpetualPlat(ls LineSpecial, s *world.Sector) (*SectorMoveSpecial, error) {
	z := s.Floor.Z
	low, high := z, z
	if f, ok := world.LowestNeighborFloor(s); ok && f < low {
		low = f
	}
	if f, ok := world.HighestNeighborFloor(s); ok && f > high {
		high = f
	}
	start := Down
	if r.rng.IntN(2) == 1 {
		start = Up
	}
	data := SectorMoveData{
		Kind:           "perpetual_plat",
		Face:           world.Floor,
		StartDirection: start,
		Repetition:     RepeatPerpetual,
		Speed:          ls.Speed,
		Delay:          ls.Delay,
		OnBlocked:      ls.Blocked,
		Sounds:         platSounds,
	}
	return r.StartMover(s, data, low, high)
}

func (r *Registry) applyLight(ls LineSpecial, s *world.Sector) bool {
	level := ls.Light
	if level < 0 {
		level = s.LightLevel
		for _, n := range world.NeighborSectors(s) {
			if n.LightLevel > level {
				level = n.LightLevel
			}
		}
	}
	s.LightLevel = level
	s.Floor.LightLevel = level
	s.Ceiling.LightLevel = level
	return true
}
