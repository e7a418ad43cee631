package world

import (
	"math"

	"github.com/zeusync/sectorsim/pkg/sequence"
)

// NeighborSectors returns the sectors across the two-sided lines of s, in line
// order, without duplicates.
func NeighborSectors(s *Sector) []*Sector {
	twoSided := sequence.From(s.Lines).Filter(func(l *Line) bool { return l.TwoSided() })
	others := sequence.ToArray(twoSided, func(l *Line) *Sector { return l.OtherSector(s) })
	seen := make(map[*Sector]struct{}, len(others))
	return sequence.From(others).
		Filter(func(o *Sector) bool {
			if o == nil || o == s {
				return false
			}
			if _, dup := seen[o]; dup {
				return false
			}
			seen[o] = struct{}{}
			return true
		}).
		Collect()
}

func neighborExtreme(s *Sector, face PlaneFace, better func(a, b float64) bool) (float64, bool) {
	best, found := 0.0, false
	for _, o := range NeighborSectors(s) {
		z := o.Plane(face).Z
		if !found || better(z, best) {
			best, found = z, true
		}
	}
	return best, found
}

func lower(a, b float64) bool  { return a < b }
func higher(a, b float64) bool { return a > b }

// LowestNeighborFloor returns the lowest floor across the sector's two-sided
// lines.
func LowestNeighborFloor(s *Sector) (float64, bool) { return neighborExtreme(s, Floor, lower) }

// HighestNeighborFloor returns the highest neighboring floor.
func HighestNeighborFloor(s *Sector) (float64, bool) { return neighborExtreme(s, Floor, higher) }

// LowestNeighborCeiling returns the lowest neighboring ceiling.
func LowestNeighborCeiling(s *Sector) (float64, bool) { return neighborExtreme(s, Ceiling, lower) }

// HighestNeighborCeiling returns the highest neighboring ceiling.
func HighestNeighborCeiling(s *Sector) (float64, bool) { return neighborExtreme(s, Ceiling, higher) }

// NextHigherNeighborFloor returns the lowest neighboring floor strictly above z.
func NextHigherNeighborFloor(s *Sector, z float64) (float64, bool) {
	best, found := math.Inf(1), false
	for _, o := range NeighborSectors(s) {
		if o.Floor.Z > z && o.Floor.Z < best {
			best, found = o.Floor.Z, true
		}
	}
	return best, found
}

// NeighborWithFloorZ returns the first neighbor whose floor sits at z. It is the
// texture model for "lower and change" floors.
func NeighborWithFloorZ(s *Sector, z float64) *Sector {
	for _, o := range NeighborSectors(s) {
		if o.Floor.Z == z {
			return o
		}
	}
	return nil
}

// ShortestLowerTexture returns the height of the shortest lower texture on the
// two-sided lines of s.
//
// With vanilla set, an empty lower slot is looked up as texture 0, which is what
// vanilla Doom did; otherwise empty slots are skipped. It returns false
// when no texture height could be resolved.
func ShortestLowerTexture(s *Sector, textures TextureManager, vanilla bool) (float64, bool) {
	if textures == nil {
		return 0, false
	}
	best, found := math.MaxInt, false
	check := func(side *Side) {
		if side == nil {
			return
		}
		if side.Lower == NoTexture && !vanilla {
			return
		}
		_, h, ok := textures.GetTextureHeight(side.Lower)
		if ok && h < best {
			best, found = h, true
		}
	}
	for _, l := range s.Lines {
		if !l.TwoSided() {
			continue
		}
		check(l.Front)
		check(l.Back)
	}
	return float64(best), found
}
