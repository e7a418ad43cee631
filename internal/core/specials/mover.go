package specials

import (
	"math"

	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// SectorMoveSpecial drives one plane toward its destination. It is created by
// the registry and owns the plane's active move slot until it is removed.
type SectorMoveSpecial struct {
	reg    *Registry
	sector *world.Sector
	plane  *world.SectorPlane
	data   SectorMoveData

	startZ float64
	minZ   float64
	maxZ   float64

	direction MoveDirection
	state     MoverState
	// resume is the state to return to after a pause.
	resume        MoverState
	delayTics     int
	reverseOnWake bool
	legStart      bool

	status    physics.MoveStatus
	lastSpeed float64
	crushing  bool
	pending   []*world.Entity

	owner *CompoundSpecial
}

func (m *SectorMoveSpecial) Kind() string                  { return m.data.Kind }
func (m *SectorMoveSpecial) Sector() *world.Sector         { return m.sector }
func (m *SectorMoveSpecial) MovePlane() *world.SectorPlane { return m.plane }
func (m *SectorMoveSpecial) Data() SectorMoveData          { return m.data }
func (m *SectorMoveSpecial) Direction() MoveDirection      { return m.direction }
func (m *SectorMoveSpecial) State() MoverState             { return m.state }
func (m *SectorMoveSpecial) Status() physics.MoveStatus    { return m.status }
func (m *SectorMoveSpecial) DelayTics() int                { return m.delayTics }
func (m *SectorMoveSpecial) IsPaused() bool                { return m.state == StatePaused }
func (m *SectorMoveSpecial) Crushing() bool                { return m.crushing }
func (m *SectorMoveSpecial) StartZ() float64               { return m.startZ }
func (m *SectorMoveSpecial) Bounds() (minZ, maxZ float64)  { return m.minZ, m.maxZ }
func (m *SectorMoveSpecial) Compound() *CompoundSpecial    { return m.owner }

// LastSpeed is the speed used on the last moving tick.
func (m *SectorMoveSpecial) LastSpeed() float64 { return m.lastSpeed }

// Destination is the end the mover is currently heading for.
func (m *SectorMoveSpecial) Destination() float64 {
	if m.direction == Up {
		return m.maxZ
	}
	return m.minZ
}

// Speed is the configured speed for the current direction.
func (m *SectorMoveSpecial) Speed() float64 {
	if m.direction != m.data.StartDirection && m.data.ReturnSpeed > 0 {
		return m.data.ReturnSpeed
	}
	return m.data.Speed
}

func (m *SectorMoveSpecial) setDirection(d MoveDirection) {
	m.direction = d
	m.legStart = true
}

// hold puts the mover to sleep for tics ticks. With reverse set it turns
// around when it wakes up.
func (m *SectorMoveSpecial) hold(tics int, reverse bool) {
	m.state = StateDelayed
	m.delayTics = tics
	m.reverseOnWake = reverse
}

func (m *SectorMoveSpecial) checkLifetime() {
	if m.reg.world.Owns(m.sector) && m.sector.Plane(m.plane.Face) == m.plane {
		return
	}
	v := LifetimeViolation{SectorID: m.sector.ID, Kind: m.data.Kind}
	m.reg.log.Error("mover outlived its sector", log.Int("sector", m.sector.ID), log.String("kind", m.data.Kind))
	panic(v)
}

func (m *SectorMoveSpecial) Tick() TickStatus {
	m.checkLifetime()

	switch m.state {
	case StateDone:
		return TickFinished
	case StatePaused:
		return TickContinue
	case StateDelayed:
		m.delayTics--
		if m.delayTics > 0 {
			return TickContinue
		}
		m.delayTics = 0
		m.state = StateMoving
		if m.reverseOnWake {
			m.setDirection(m.direction.Reverse())
		} else {
			m.legStart = true
		}
		m.reverseOnWake = false
		return TickContinue
	}

	dest := m.Destination()
	speed := m.Speed()
	instant := m.legStart && math.Abs(dest-m.plane.Z) <= speed
	if m.legStart {
		m.legStart = false
		m.reg.notifier.PlayMovementSound(m.plane, m.data.Sounds.For(m.direction), m.data.Sounds.Looping)
	}

	before := m.plane.Z
	res := m.reg.physics.MoveSectorZ(m.plane, speed, dest, m.data.Crush, instant)
	m.status = res.Status
	m.lastSpeed = res.Speed
	m.crushing = res.Status == physics.MoveCrushing
	if m.crushing {
		m.pending = append(m.pending, res.Crushed...)
	}
	if m.plane.Z != before {
		m.reg.notifier.NotifyPlaneChanged(m.plane)
	}

	if res.Status == physics.MoveBlocked {
		if m.data.OnBlocked == BlockReverse {
			m.setDirection(m.direction.Reverse())
		}
		return TickContinue
	}
	if m.plane.Z == dest {
		return m.arrive()
	}
	return TickContinue
}

func (m *SectorMoveSpecial) arrive() TickStatus {
	m.reg.notifier.StopMovementSound(m.plane)
	farEnd := m.direction == m.data.StartDirection
	switch m.data.Repetition {
	case RepeatDelayReturn:
		if farEnd {
			m.wait()
			return TickContinue
		}
	case RepeatPerpetual:
		m.wait()
		return TickContinue
	}
	m.state = StateDone
	m.data.Change.apply(m.plane)
	return TickFinished
}

func (m *SectorMoveSpecial) wait() {
	if m.data.Delay > 0 {
		m.hold(m.data.Delay, true)
		return
	}
	m.setDirection(m.direction.Reverse())
}

// flushDamage applies the crush damage queued this tick.
func (m *SectorMoveSpecial) flushDamage() {
	if len(m.pending) == 0 {
		return
	}
	dmg := m.reg.sim.CrushDamage
	if m.data.Crush != nil && m.data.Crush.Damage > 0 {
		dmg = m.data.Crush.Damage
	}
	m.reg.physics.ApplyCrushDamage(m.pending, dmg)
	m.pending = m.pending[:0]
}

// Use is a repeated activation of a door that is already moving. A closing
// door goes back up for anyone; only players can send an opening or waiting
// door down.
func (m *SectorMoveSpecial) Use(e *world.Entity) bool {
	if !m.data.Door || m.state == StateDone || m.state == StatePaused {
		return false
	}
	if m.state == StateMoving && m.direction == Down {
		m.setDirection(Up)
		return true
	}
	if e == nil || !e.Player {
		return false
	}
	m.state = StateMoving
	m.delayTics = 0
	m.reverseOnWake = false
	m.setDirection(Down)
	return true
}

func (m *SectorMoveSpecial) pause() bool {
	if m.state == StatePaused || m.state == StateDone {
		return false
	}
	m.resume = m.state
	m.state = StatePaused
	return true
}

func (m *SectorMoveSpecial) unpause() bool {
	if m.state != StatePaused {
		return false
	}
	m.state = m.resume
	if m.state == StateMoving {
		m.legStart = true
	}
	return true
}
