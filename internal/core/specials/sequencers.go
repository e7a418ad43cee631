package specials

import (
	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// nextStair follows the stair chain from s: the sector behind a two-sided line
// that s fronts, with the same floor texture.
func nextStair(s *world.Sector, texture int, used map[*world.Sector]bool) *world.Sector {
	for _, l := range s.Lines {
		if !l.TwoSided() || l.FrontSector() != s {
			continue
		}
		back := l.BackSector()
		if back == nil || used[back] || back.Floor.TextureHandle != texture {
			continue
		}
		return back
	}
	return nil
}

// buildStairs raises every tagged sector and the chain behind each of them.
// Each step ends one increment above the previous one, so the destinations do
// not depend on which step arrives first.
func (r *Registry) buildStairs(ls LineSpecial, line *world.Line) bool {
	var c *CompoundSpecial
	used := make(map[*world.Sector]bool)
	var height float64
	started := false

	step := func(s *world.Sector) bool {
		dest := height + ls.Offset
		dir, minZ, maxZ := oneShot(s.Floor.Z, dest)
		m, err := r.newMover(s, SectorMoveData{
			Kind:           "stairs",
			Face:           world.Floor,
			StartDirection: dir,
			Speed:          ls.Speed,
			Sounds:         planeSounds,
		}, minZ, maxZ)
		if err != nil {
			return false
		}
		height = dest
		if c == nil {
			c = r.newCompound("stairs")
		}
		c.adopt(m)
		r.Add(m)
		used[s] = true
		return true
	}

	for _, s := range r.world.SectorsByTag(line.Tag) {
		if used[s] || s.IsMoving(world.Floor) {
			continue
		}
		if !started {
			height = s.Floor.Z
			started = true
		}
		if !step(s) {
			continue
		}
		texture := s.Floor.TextureHandle
		for cur := s; ; {
			next := nextStair(cur, texture, used)
			if next == nil || next.IsMoving(world.Floor) || !step(next) {
				break
			}
			cur = next
		}
	}

	if c == nil {
		return false
	}
	r.log.Debug("stairs started", log.Int("group", c.id), log.Int("steps", len(c.children)), log.Float64("top", height))
	return true
}

// donut lowers each tagged pillar to the floor outside its pool and raises
// the pool to the same height. Both legs start together or not at all.
func (r *Registry) donut(ls LineSpecial, line *world.Line) bool {
	started := false
	for _, inner := range r.world.SectorsByTag(line.Tag) {
		if inner.IsMoving(world.Floor) || len(inner.Lines) == 0 {
			continue
		}
		pool := inner.Lines[0].OtherSector(inner)
		if pool == nil || pool.IsMoving(world.Floor) {
			continue
		}
		var outside *world.Sector
		for _, l := range pool.Lines {
			if o := l.OtherSector(pool); o != nil && o != inner {
				outside = o
				break
			}
		}
		if outside == nil {
			continue
		}
		dest := outside.Floor.Z

		dir, minZ, maxZ := oneShot(pool.Floor.Z, dest)
		raise, err := r.newMover(pool, SectorMoveData{
			Kind:           "donut",
			Face:           world.Floor,
			StartDirection: dir,
			Speed:          ls.Speed,
			Sounds:         planeSounds,
			Change: TextureChange{
				Set:           true,
				Handle:        outside.Floor.TextureHandle,
				SetDamage:     true,
				DamageSpecial: outside.DamageSpecial,
			},
		}, minZ, maxZ)
		if err != nil {
			continue
		}
		dir, minZ, maxZ = oneShot(inner.Floor.Z, dest)
		lower, err := r.newMover(inner, SectorMoveData{
			Kind:           "donut",
			Face:           world.Floor,
			StartDirection: dir,
			Speed:          ls.Speed,
			Sounds:         planeSounds,
		}, minZ, maxZ)
		if err != nil {
			pool.ClearActiveMove(world.Floor, raise)
			continue
		}

		c := r.newCompound("donut")
		c.adopt(raise)
		c.adopt(lower)
		r.Add(raise)
		r.Add(lower)
		started = true
	}
	return started
}
