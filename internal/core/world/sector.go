package world

// ActiveMove is implemented by whatever animates a plane. The sector only
// keeps a back pointer; the special registry owns the lifetime.
type ActiveMove interface {
	MovePlane() *SectorPlane
}

type Sector struct {
	ID            int
	Tag           int
	Floor         *SectorPlane
	Ceiling       *SectorPlane
	LightLevel    int16
	DamageSpecial int
	// Type is the map sector type that spawns a special at load time.
	Type     int
	Lines    []*Line
	Entities EntityList

	activeFloor   ActiveMove
	activeCeiling ActiveMove
	destroyed     bool
}

// Plane returns the floor or ceiling.
func (s *Sector) Plane(face PlaneFace) *SectorPlane {
	if face == Ceiling {
		return s.Ceiling
	}
	return s.Floor
}

// ActiveMove returns the mover currently attached to the given plane, if any.
func (s *Sector) ActiveMove(face PlaneFace) ActiveMove {
	if face == Ceiling {
		return s.activeCeiling
	}
	return s.activeFloor
}

// IsMoving reports whether a mover is attached to the plane.
func (s *Sector) IsMoving(face PlaneFace) bool {
	return s.ActiveMove(face) != nil
}

// SetActiveMove attaches m. It returns false when the slot is taken by another
// mover, so two movers can never share a plane.
func (s *Sector) SetActiveMove(face PlaneFace, m ActiveMove) bool {
	cur := s.ActiveMove(face)
	if cur != nil && cur != m {
		return false
	}
	if face == Ceiling {
		s.activeCeiling = m
	} else {
		s.activeFloor = m
	}
	return true
}

// ClearActiveMove detaches m if it is the mover in the slot.
func (s *Sector) ClearActiveMove(face PlaneFace, m ActiveMove) {
	if s.ActiveMove(face) != m {
		return
	}
	if face == Ceiling {
		s.activeCeiling = nil
	} else {
		s.activeFloor = nil
	}
}

// Destroyed reports whether the sector was torn down by World.DestroySector.
func (s *Sector) Destroyed() bool { return s.destroyed }

// LineCount is the number of lines bordering the sector.
func (s *Sector) LineCount() int { return len(s.Lines) }

type entityNode struct {
	entity     *Entity
	sector     *Sector
	prev, next *entityNode
	list       *EntityList
}

// EntityList is the set of entities overlapping a sector, in link order.
// Unlinking during Each is allowed: a removed node keeps its next pointer so an
// in-progress walk can step past it.
type EntityList struct {
	head, tail *entityNode
	count      int
}

func (l *EntityList) push(e *Entity, s *Sector) *entityNode {
	n := &entityNode{entity: e, sector: s, prev: l.tail, list: l}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.count++
	return n
}

func (l *EntityList) remove(n *entityNode) {
	if n.list != l {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.list = nil
	n.prev = nil
	l.count--
}

// Len returns the number of linked entities.
func (l *EntityList) Len() int { return l.count }

// Each visits linked entities until fn returns false. Entities unlinked while
// the walk is running are skipped.
func (l *EntityList) Each(fn func(*Entity) bool) {
	for n := l.head; n != nil; {
		next := n.next
		if n.list == l && !fn(n.entity) {
			return
		}
		n = next
	}
}

// Slice copies the linked entities.
func (l *EntityList) Slice() []*Entity {
	out := make([]*Entity, 0, l.count)
	l.Each(func(e *Entity) bool {
		out = append(out, e)
		return true
	})
	return out
}
