package world

import (
	"fmt"
	"math"

	"github.com/zeusync/sectorsim/internal/core/models"
)

// TextureManager answers texture questions for the movement code. Resource
// loading lives elsewhere; only sizes and switch pairs are needed here.
type TextureManager interface {
	// GetTextureHeight returns the size of a wall texture.
	GetTextureHeight(handle int) (width, height int, ok bool)
	// SwitchPair returns the on/off partner of a switch texture.
	SwitchPair(handle int) (int, bool)
}

// World owns the level geometry and the entities placed in it.
type World struct {
	Sectors  []*Sector
	Lines    []*Line
	Textures TextureManager

	entities *models.Arena[Entity]
}

// New creates an empty world.
func New(textures TextureManager) *World {
	return &World{
		Textures: textures,
		entities: models.NewArena[Entity](),
	}
}

// SectorSpec describes a sector to add.
type SectorSpec struct {
	Tag            int
	FloorZ         float64
	CeilingZ       float64
	FloorTexture   int
	CeilingTexture int
	LightLevel     int16
	DamageSpecial  int
	Type           int
}

// AddSector appends a sector. Sector ids are their index.
func (w *World) AddSector(spec SectorSpec) *Sector {
	s := &Sector{
		ID:            len(w.Sectors),
		Tag:           spec.Tag,
		LightLevel:    spec.LightLevel,
		DamageSpecial: spec.DamageSpecial,
		Type:          spec.Type,
	}
	s.Floor = &SectorPlane{Sector: s, Face: Floor, Z: spec.FloorZ, PrevZ: spec.FloorZ, TextureHandle: spec.FloorTexture, LightLevel: spec.LightLevel}
	s.Ceiling = &SectorPlane{Sector: s, Face: Ceiling, Z: spec.CeilingZ, PrevZ: spec.CeilingZ, TextureHandle: spec.CeilingTexture, LightLevel: spec.LightLevel}
	w.Sectors = append(w.Sectors, s)
	return s
}

// AddLine appends a line and registers it with the sectors on both sides.
// A line with a back side is two-sided.
func (w *World) AddLine(front, back *Side, special, tag int, flags LineFlags) *Line {
	l := &Line{
		ID:      len(w.Lines),
		Front:   front,
		Back:    back,
		Special: special,
		Tag:     tag,
		Flags:   flags,
	}
	if back != nil {
		l.Flags |= LineTwoSided
	}
	if front != nil && front.Sector != nil {
		front.Sector.Lines = append(front.Sector.Lines, l)
	}
	if back != nil && back.Sector != nil && (front == nil || back.Sector != front.Sector) {
		back.Sector.Lines = append(back.Sector.Lines, l)
	}
	w.Lines = append(w.Lines, l)
	return l
}

// Sector returns the sector with the given id.
func (w *World) Sector(id int) (*Sector, error) {
	if id < 0 || id >= len(w.Sectors) {
		return nil, fmt.Errorf("%w: %d", ErrSectorNotFound, id)
	}
	return w.Sectors[id], nil
}

// Line returns the line with the given id.
func (w *World) Line(id int) (*Line, error) {
	if id < 0 || id >= len(w.Lines) {
		return nil, fmt.Errorf("%w: %d", ErrLineNotFound, id)
	}
	return w.Lines[id], nil
}

// Owns reports whether s is a live sector of this world.
func (w *World) Owns(s *Sector) bool {
	return s != nil && !s.destroyed && s.ID >= 0 && s.ID < len(w.Sectors) && w.Sectors[s.ID] == s
}

// DestroySector tears a sector out of the live set. Anything still pointing at
// it is a lifetime bug and movers treat it as fatal.
func (w *World) DestroySector(s *Sector) {
	s.destroyed = true
}

// SectorsByTag returns tagged sectors in id order. Tag 0 never matches.
func (w *World) SectorsByTag(tag int) []*Sector {
	if tag == 0 {
		return nil
	}
	var out []*Sector
	for _, s := range w.Sectors {
		if s.Tag == tag && !s.destroyed {
			out = append(out, s)
		}
	}
	return out
}

// AddEntity takes ownership of e and links it into the given sectors.
func (w *World) AddEntity(e *Entity, sectors ...*Sector) *Entity {
	e.world = w
	e.Handle = w.entities.Add(e)
	e.PrevPosition = e.Position
	w.LinkEntity(e, sectors...)
	return e
}

// Entity resolves a handle.
func (w *World) Entity(h models.Handle) (*Entity, bool) {
	return w.entities.Get(h)
}

// Entities returns live entities in handle order.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, w.entities.Len())
	w.entities.Each(func(_ models.Handle, e *Entity) bool {
		out = append(out, e)
		return true
	})
	return out
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int { return w.entities.Len() }

// LinkEntity replaces the sector links of e.
func (w *World) LinkEntity(e *Entity, sectors ...*Sector) {
	w.UnlinkEntity(e)
	for _, s := range sectors {
		e.links = append(e.links, s.Entities.push(e, s))
	}
}

// UnlinkEntity removes e from every sector list.
func (w *World) UnlinkEntity(e *Entity) {
	for _, n := range e.links {
		if n.list != nil {
			n.list.remove(n)
		}
	}
	e.links = e.links[:0]
}

// RemoveEntity unlinks e and frees its handle. Weak references held by other
// entities stop resolving immediately.
func (w *World) RemoveEntity(e *Entity) bool {
	if !w.entities.Contains(e.Handle) {
		return false
	}
	w.UnlinkEntity(e)
	w.entities.Remove(e.Handle)
	e.OnEntity = models.Handle{}
	e.OverEntity = models.Handle{}
	return true
}

// SavePlaneInterpolation copies every plane height into its previous height.
func (w *World) SavePlaneInterpolation() {
	for _, s := range w.Sectors {
		s.Floor.PrevZ = s.Floor.Z
		s.Ceiling.PrevZ = s.Ceiling.Z
	}
}

// SaveEntityInterpolation copies every entity position into its previous one.
func (w *World) SaveEntityInterpolation() {
	w.entities.Each(func(_ models.Handle, e *Entity) bool {
		e.PrevPosition = e.Position
		return true
	})
}

// HighestFloorZ is the floor an entity rests on: the highest floor among its
// sectors.
func (w *World) HighestFloorZ(e *Entity) float64 {
	z := math.Inf(-1)
	for _, n := range e.links {
		if n.list != nil && n.sector.Floor.Z > z {
			z = n.sector.Floor.Z
		}
	}
	return z
}

// LowestCeilingZ is the lowest ceiling among the entity's sectors.
func (w *World) LowestCeilingZ(e *Entity) float64 {
	z := math.Inf(1)
	for _, n := range e.links {
		if n.list != nil && n.sector.Ceiling.Z < z {
			z = n.sector.Ceiling.Z
		}
	}
	return z
}

// Neighbors returns entities sharing at least one sector with e, excluding e,
// in first-seen order.
func (w *World) Neighbors(e *Entity) []*Entity {
	seen := make(map[models.Handle]struct{})
	var out []*Entity
	for _, n := range e.links {
		if n.list == nil {
			continue
		}
		n.list.Each(func(other *Entity) bool {
			if other == e {
				return true
			}
			if _, dup := seen[other.Handle]; dup {
				return true
			}
			seen[other.Handle] = struct{}{}
			out = append(out, other)
			return true
		})
	}
	return out
}
