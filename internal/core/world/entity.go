package world

import "github.com/zeusync/sectorsim/internal/core/models"

type EntityFlags uint32

const (
	FlagSolid EntityFlags = 1 << iota
	FlagShootable
	// FlagDropped marks an item dropped by a monster.
	FlagDropped
	// FlagPickup marks an item the player can collect.
	FlagPickup
	FlagCorpse
	// FlagCrushGiblets makes a crushed corpse turn into giblets instead of a
	// squashed sprite.
	FlagCrushGiblets
	FlagDontGib
	// FlagHanging marks things attached to the ceiling.
	FlagHanging
	FlagNoGravity
)

type KeyFlags uint8

const (
	KeyBlue KeyFlags = 1 << iota
	KeyRed
	KeyYellow
)

// Frame names used for crushed remains.
const (
	FrameSquashed = "squashed"
	FrameGiblets  = "giblets"
)

type Entity struct {
	Handle       models.Handle
	Kind         string
	Position     models.Vec3
	PrevPosition models.Vec3
	Height       float64
	Radius       float64
	Health       int
	Flags        EntityFlags
	Player       bool
	Keys         KeyFlags
	OnGround     bool
	Frame        string

	// OnEntity is the entity this one stands on; OverEntity is one entity that
	// stands on this one. Both are weak and resolved through the world.
	OnEntity   models.Handle
	OverEntity models.Handle

	world *World
	links []*entityNode
}

func (e *Entity) Has(f EntityFlags) bool { return e.Flags&f != 0 }
func (e *Entity) Set(f EntityFlags)      { e.Flags |= f }
func (e *Entity) Clear(f EntityFlags)    { e.Flags &^= f }

func (e *Entity) Z() float64   { return e.Position.Z }
func (e *Entity) Top() float64 { return e.Position.Z + e.Height }

// Box returns the square footprint of the entity.
func (e *Entity) Box() models.Box {
	return models.BoxAround(e.Position.XY(), e.Radius)
}

func (e *Entity) IsDead() bool { return e.Health <= 0 }

// IsCorpse reports whether the entity is the remains of something killed.
func (e *Entity) IsCorpse() bool { return e.Has(FlagCorpse) }

// IsMonster reports whether the entity is a non-player actor.
func (e *Entity) IsMonster() bool { return !e.Player && e.Has(FlagShootable) }

// Alive reports whether the entity is still owned by its world.
func (e *Entity) Alive() bool {
	return e.world != nil && e.world.entities.Contains(e.Handle)
}

// Sectors returns the sectors the entity is linked into.
func (e *Entity) Sectors() []*Sector {
	out := make([]*Sector, 0, len(e.links))
	for _, n := range e.links {
		if n.list != nil {
			out = append(out, n.sector)
		}
	}
	return out
}

// OnEntityRef resolves OnEntity; nil when unset or when the supporter is gone.
func (e *Entity) OnEntityRef() *Entity {
	if e.world == nil {
		return nil
	}
	other, _ := e.world.entities.Get(e.OnEntity)
	return other
}

// OverEntityRef resolves OverEntity.
func (e *Entity) OverEntityRef() *Entity {
	if e.world == nil {
		return nil
	}
	other, _ := e.world.entities.Get(e.OverEntity)
	return other
}

// Damage subtracts health from a shootable entity and kills it at zero.
// It reports whether this call killed the entity.
func (e *Entity) Damage(amount int) bool {
	if !e.Has(FlagShootable) || e.IsDead() {
		return false
	}
	e.Health -= amount
	if e.Health > 0 {
		return false
	}
	e.Kill()
	return true
}

// Kill turns the entity into a corpse. Corpses keep a quarter of their height.
func (e *Entity) Kill() {
	if e.Health > 0 {
		e.Health = 0
	}
	e.Clear(FlagShootable)
	e.Set(FlagCorpse)
	e.Height /= 4
}

// Flatten crushes a corpse into remains that no longer occupy space.
func (e *Entity) Flatten() {
	e.Height = 0
	e.Set(FlagDontGib)
	e.Clear(FlagSolid)
	if e.Has(FlagCrushGiblets) {
		e.Frame = FrameGiblets
	} else {
		e.Frame = FrameSquashed
	}
}
