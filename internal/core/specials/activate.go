package specials

import (
	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Sector types that spawn a special when the level starts.
const (
	SectorDoorCloseIn30 = 10
	SectorDoorRaiseIn5  = 14

	raiseIn5Tics = 5 * 60 * 35
)

// Activate runs the special of line for entity e. It reports whether anything
// was started; a refused or spent activation is not an error. A nil entity is
// treated as a script with no keys.
func (r *Registry) Activate(e *world.Entity, line *world.Line, trig Trigger) bool {
	if line == nil || line.Special == 0 {
		return false
	}
	ls, err := r.table.Lookup(line.Special)
	if err != nil {
		r.reject(line, trig, err.Error())
		return false
	}
	repeat := ls.Repeat || line.Has(world.LineRepeat)
	if reason := r.permit(e, line, ls, trig, repeat); reason != "" {
		r.reject(line, trig, reason)
		return false
	}
	if trig != TriggerCross {
		r.toggleSwitch(line, repeat)
	}

	ok := r.dispatch(e, line, ls)
	if ok && !repeat {
		line.Activated = true
	}
	r.metrics.Activation(ok)
	r.log.Debug("line activated",
		log.Int("line", line.ID),
		log.Int("code", ls.Code),
		log.String("trigger", trig.String()),
		log.Bool("spawned", ok),
	)
	return ok
}

func (r *Registry) reject(line *world.Line, trig Trigger, reason string) {
	r.metrics.Activation(false)
	r.log.Debug("activation rejected",
		log.Int("line", line.ID),
		log.Int("code", line.Special),
		log.String("trigger", trig.String()),
		log.String("reason", reason),
	)
}

func (r *Registry) permit(e *world.Entity, line *world.Line, ls LineSpecial, trig Trigger, repeat bool) string {
	if ls.Trigger != trig {
		return "trigger mismatch"
	}
	if line.Activated && !repeat {
		return "line spent"
	}
	if e != nil && !e.Player {
		if trig == TriggerUse && line.Has(world.LineSecret) {
			return "secret line"
		}
		if !ls.Monster && !line.Has(world.LineMonsterActivate) {
			return "monsters not allowed"
		}
	}
	if ls.Lock != 0 && (e == nil || !e.Player || e.Keys&ls.Lock == 0) {
		return "locked"
	}
	return ""
}

func (r *Registry) dispatch(e *world.Entity, line *world.Line, ls LineSpecial) bool {
	switch ls.Action {
	case ActionDoor:
		if ls.Manual {
			return r.manualDoor(e, line, ls)
		}
		return r.eachTagged(line, world.Ceiling, func(s *world.Sector) bool {
			return started(r.spawnDoor(ls, s))
		})
	case ActionFloor:
		return r.eachTagged(line, world.Floor, func(s *world.Sector) bool {
			return started(r.spawnFloor(ls, line, s))
		})
	case ActionCeiling:
		return r.eachTagged(line, world.Ceiling, func(s *world.Sector) bool {
			return started(r.spawnCeiling(ls, s))
		})
	case ActionCrusher:
		resumed := r.resumeTagged(line, world.Ceiling, isCrusher)
		spawned := r.eachTagged(line, world.Ceiling, func(s *world.Sector) bool {
			return started(r.spawnCrusher(ls, s))
		})
		return resumed || spawned
	case ActionPlat:
		return r.eachTagged(line, world.Floor, func(s *world.Sector) bool {
			return started(r.spawnPlat(ls, line, s))
		})
	case ActionPerpetualPlat:
		resumed := r.resumeTagged(line, world.Floor, isPlat)
		spawned := r.eachTagged(line, world.Floor, func(s *world.Sector) bool {
			return started(r.spawnPerpetualPlat(ls, s))
		})
		return resumed || spawned
	case ActionStopCrusher:
		return r.pauseTagged(line, world.Ceiling, isCrusher)
	case ActionStopPlat:
		return r.pauseTagged(line, world.Floor, isPlat)
	case ActionStairs:
		return r.buildStairs(ls, line)
	case ActionDonut:
		return r.donut(ls, line)
	case ActionLight:
		hit := false
		for _, s := range r.world.SectorsByTag(line.Tag) {
			hit = r.applyLight(ls, s) || hit
		}
		return hit
	}
	return false
}

func started(m *SectorMoveSpecial, err error) bool { return err == nil && m != nil }

func isCrusher(m *SectorMoveSpecial) bool {
	return m.data.Repetition == RepeatPerpetual && m.data.Crush != nil
}

func isPlat(m *SectorMoveSpecial) bool {
	return m.data.Kind == "plat" || m.data.Kind == "perpetual_plat"
}

// eachTagged spawns into every tagged sector whose plane is free. Busy planes
// are skipped, never taken over.
func (r *Registry) eachTagged(line *world.Line, face world.PlaneFace, spawn func(*world.Sector) bool) bool {
	hit := false
	for _, s := range r.world.SectorsByTag(line.Tag) {
		if s.IsMoving(face) {
			continue
		}
		if spawn(s) {
			hit = true
		}
	}
	return hit
}

func (r *Registry) pauseTagged(line *world.Line, face world.PlaneFace, match func(*SectorMoveSpecial) bool) bool {
	hit := false
	for _, s := range r.world.SectorsByTag(line.Tag) {
		if m := r.FindBySector(s, face); m != nil && match(m) && r.Pause(m) {
			hit = true
		}
	}
	return hit
}

func (r *Registry) resumeTagged(line *world.Line, face world.PlaneFace, match func(*SectorMoveSpecial) bool) bool {
	hit := false
	for _, s := range r.world.SectorsByTag(line.Tag) {
		if m := r.FindBySector(s, face); m != nil && match(m) && r.Resume(m) {
			hit = true
		}
	}
	return hit
}

// manualDoor acts on the sector behind the line. Using a repeatable door that
// is already moving kicks it instead of starting a new one.
func (r *Registry) manualDoor(e *world.Entity, line *world.Line, ls LineSpecial) bool {
	s := line.BackSector()
	if s == nil {
		return false
	}
	if m := r.FindBySector(s, world.Ceiling); m != nil {
		return m.Use(e)
	}
	if s.IsMoving(world.Ceiling) {
		return false
	}
	return started(r.spawnDoor(ls, s))
}

// ActivateSector spawns the special implied by the sector type, if any, and
// clears the type so it only fires once.
func (r *Registry) ActivateSector(e *world.Entity, s *world.Sector) bool {
	if s == nil || s.IsMoving(world.Ceiling) {
		return false
	}
	var (
		m   *SectorMoveSpecial
		err error
	)
	switch s.Type {
	case SectorDoorCloseIn30:
		m, err = r.StartMover(s, SectorMoveData{
			Kind:           "door",
			Face:           world.Ceiling,
			StartDirection: Down,
			Speed:          DoorSpeed,
			OnBlocked:      BlockReverse,
			Sounds:         doorSounds,
		}, s.Floor.Z, s.Ceiling.Z)
		if err == nil {
			m.hold(closeWaitTics, false)
		}
	case SectorDoorRaiseIn5:
		m, err = r.StartMover(s, SectorMoveData{
			Kind:           "door",
			Face:           world.Ceiling,
			StartDirection: Up,
			Repetition:     RepeatDelayReturn,
			Speed:          DoorSpeed,
			Delay:          DoorWait,
			OnBlocked:      BlockReverse,
			Sounds:         doorSounds,
		}, s.Floor.Z, doorTop(s))
		if err == nil {
			m.hold(raiseIn5Tics, false)
		}
	default:
		return false
	}
	if err != nil {
		return false
	}
	r.log.Debug("sector special spawned", log.Int("sector", s.ID), log.Int("type", s.Type), log.Bool("by_entity", e != nil))
	s.Type = 0
	return true
}

// SpawnSectorSpecials runs ActivateSector over every sector once, at level
// start. It returns the number of specials spawned.
func (r *Registry) SpawnSectorSpecials() int {
	n := 0
	for _, s := range r.world.Sectors {
		if !s.Destroyed() && r.ActivateSector(nil, s) {
			n++
		}
	}
	return n
}
