package specials

import (
	"fmt"

	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// MoverRecord is the flat, pointer-free state of one mover. Records are
// exported in tick order and imported verbatim.
type MoverRecord struct {
	SectorID  int             `json:"sector"`
	Plane     world.PlaneFace `json:"plane"`
	Kind      string          `json:"kind"`
	Direction MoveDirection   `json:"direction"`
	Speed     float64         `json:"speed"`
	DestZ     float64         `json:"dest_z"`
	DelayTics int             `json:"delay_tics"`
	Paused    bool            `json:"paused"`
	Crush     bool            `json:"crush"`

	StartDirection MoveDirection     `json:"start_direction"`
	Repetition     MoveRepetition    `json:"repetition"`
	ReturnSpeed    float64           `json:"return_speed,omitempty"`
	Delay          int               `json:"delay,omitempty"`
	StartZ         float64           `json:"start_z"`
	MinZ           float64           `json:"min_z"`
	MaxZ           float64           `json:"max_z"`
	State          MoverState        `json:"state"`
	ResumeState    MoverState        `json:"resume_state"`
	ReverseOnWake  bool              `json:"reverse_on_wake,omitempty"`
	LegStart       bool              `json:"leg_start,omitempty"`
	CrushMode      physics.CrushMode `json:"crush_mode,omitempty"`
	CrushDamage    int               `json:"crush_damage,omitempty"`
	OnBlocked      BlockBehavior     `json:"on_blocked,omitempty"`
	Door           bool              `json:"door,omitempty"`
	Change         TextureChange     `json:"change"`
	Sounds         Sounds            `json:"sounds"`
	// Group links the movers of one compound special; zero means none.
	Group     int    `json:"group,omitempty"`
	GroupKind string `json:"group_kind,omitempty"`
}

// Record flattens the mover.
func (m *SectorMoveSpecial) Record() MoverRecord {
	rec := MoverRecord{
		SectorID:       m.sector.ID,
		Plane:          m.plane.Face,
		Kind:           m.data.Kind,
		Direction:      m.direction,
		Speed:          m.data.Speed,
		DestZ:          m.Destination(),
		DelayTics:      m.delayTics,
		Paused:         m.state == StatePaused,
		Crush:          m.data.Crush != nil,
		StartDirection: m.data.StartDirection,
		Repetition:     m.data.Repetition,
		ReturnSpeed:    m.data.ReturnSpeed,
		Delay:          m.data.Delay,
		StartZ:         m.startZ,
		MinZ:           m.minZ,
		MaxZ:           m.maxZ,
		State:          m.state,
		ResumeState:    m.resume,
		ReverseOnWake:  m.reverseOnWake,
		LegStart:       m.legStart,
		OnBlocked:      m.data.OnBlocked,
		Door:           m.data.Door,
		Change:         m.data.Change,
		Sounds:         m.data.Sounds,
	}
	if m.data.Crush != nil {
		rec.CrushMode = m.data.Crush.Mode
		rec.CrushDamage = m.data.Crush.Damage
	}
	if m.owner != nil {
		rec.Group = m.owner.id
		rec.GroupKind = m.owner.kind
	}
	return rec
}

// Export returns a record for every active mover in tick order. Switch timers
// are cosmetic and not exported.
func (r *Registry) Export() []MoverRecord {
	movers := r.Movers()
	out := make([]MoverRecord, 0, len(movers))
	for _, m := range movers {
		out = append(out, m.Record())
	}
	return out
}

// ValidateRecords checks records for an import into a registry whose movers
// have all been removed: references, values and duplicate planes. Planes that
// are busy right now are not checked.
func (r *Registry) ValidateRecords(records []MoverRecord) error {
	return r.validate(records, false)
}

func (r *Registry) validate(records []MoverRecord, checkBusy bool) error {
	type slot struct {
		sector int
		face   world.PlaneFace
	}
	seen := make(map[slot]struct{}, len(records))
	for i, rec := range records {
		s, err := r.world.Sector(rec.SectorID)
		if err != nil {
			return fmt.Errorf("%w: record %d: %w", ErrInvalidRecord, i, err)
		}
		if rec.Plane != world.Floor && rec.Plane != world.Ceiling {
			return fmt.Errorf("%w: record %d: bad plane %d", ErrInvalidRecord, i, rec.Plane)
		}
		if rec.Direction != Up && rec.Direction != Down {
			return fmt.Errorf("%w: record %d: bad direction %d", ErrInvalidRecord, i, rec.Direction)
		}
		if rec.Speed <= 0 || rec.MinZ > rec.MaxZ {
			return fmt.Errorf("%w: record %d: bad speed or bounds", ErrInvalidRecord, i)
		}
		key := slot{rec.SectorID, rec.Plane}
		if _, dup := seen[key]; dup || (checkBusy && s.IsMoving(rec.Plane)) {
			return fmt.Errorf("%w: sector %d %s", ErrPlaneBusy, rec.SectorID, rec.Plane)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Import recreates movers from records. Nothing is created unless every
// record is valid.
func (r *Registry) Import(records []MoverRecord) error {
	if err := r.validate(records, true); err != nil {
		return err
	}
	groups := make(map[int]*CompoundSpecial)
	for _, rec := range records {
		s, _ := r.world.Sector(rec.SectorID)
		data := SectorMoveData{
			Kind:           rec.Kind,
			Face:           rec.Plane,
			StartDirection: rec.StartDirection,
			Repetition:     rec.Repetition,
			Speed:          rec.Speed,
			ReturnSpeed:    rec.ReturnSpeed,
			Delay:          rec.Delay,
			OnBlocked:      rec.OnBlocked,
			Change:         rec.Change,
			Sounds:         rec.Sounds,
			Door:           rec.Door,
		}
		if rec.Crush {
			data.Crush = &physics.CrushData{Mode: rec.CrushMode, Damage: rec.CrushDamage}
		}
		minZ, maxZ := rec.MinZ, rec.MaxZ
		minimal := minZ == 0 && maxZ == 0
		if minimal {
			// Minimal records only carry the destination.
			_, minZ, maxZ = oneShot(s.Plane(rec.Plane).Z, rec.DestZ)
		}
		m, err := r.newMover(s, data, minZ, maxZ)
		if err != nil {
			return err
		}
		if !minimal {
			m.startZ = rec.StartZ
		}
		m.direction = rec.Direction
		m.state = rec.State
		m.resume = rec.ResumeState
		m.delayTics = rec.DelayTics
		m.reverseOnWake = rec.ReverseOnWake
		m.legStart = rec.LegStart
		if rec.Paused && m.state != StatePaused {
			m.resume, m.state = m.state, StatePaused
		}
		if rec.Group != 0 {
			c, ok := groups[rec.Group]
			if !ok {
				c = r.newCompound(rec.GroupKind)
				groups[rec.Group] = c
			}
			c.adopt(m)
		}
		r.Add(m)
	}
	return nil
}
