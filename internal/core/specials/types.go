package specials

import (
	"github.com/zeusync/sectorsim/internal/core/systems/physics"
	"github.com/zeusync/sectorsim/internal/core/world"
)

type MoveDirection int8

const (
	Down MoveDirection = -1
	Up   MoveDirection = 1
)

func (d MoveDirection) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

func (d MoveDirection) Reverse() MoveDirection { return -d }

// MoveRepetition decides what a mover does when it reaches its destination.
type MoveRepetition uint8

const (
	// RepeatNone finishes on arrival.
	RepeatNone MoveRepetition = iota
	// RepeatDelayReturn waits at the far end, then returns to the start and
	// finishes there.
	RepeatDelayReturn
	// RepeatPerpetual waits at either end and reverses until stopped.
	RepeatPerpetual
)

func (r MoveRepetition) String() string {
	switch r {
	case RepeatNone:
		return "none"
	case RepeatDelayReturn:
		return "delay_return"
	case RepeatPerpetual:
		return "perpetual"
	}
	return "unknown"
}

// BlockBehavior is what a mover does after a blocked tick.
type BlockBehavior uint8

const (
	// BlockRetry tries the same move again next tick.
	BlockRetry BlockBehavior = iota
	// BlockReverse turns around.
	BlockReverse
)

type MoverState uint8

const (
	StateMoving MoverState = iota
	StateDelayed
	StatePaused
	StateDone
)

func (s MoverState) String() string {
	switch s {
	case StateMoving:
		return "moving"
	case StateDelayed:
		return "delayed"
	case StatePaused:
		return "paused"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// TickStatus is returned by Special.Tick.
type TickStatus uint8

const (
	TickContinue TickStatus = iota
	TickFinished
)

// Special is anything the registry ticks.
type Special interface {
	Kind() string
	Tick() TickStatus
}

// TextureChange is applied to the moving plane when the mover finishes.
type TextureChange struct {
	Set           bool
	Handle        int
	SetDamage     bool
	DamageSpecial int
}

func (c TextureChange) apply(p *world.SectorPlane) {
	if c.Set {
		p.TextureHandle = c.Handle
	}
	if c.SetDamage {
		p.Sector.DamageSpecial = c.DamageSpecial
	}
}

// Sounds names the movement sounds of a mover.
type Sounds struct {
	Up      string
	Down    string
	Looping bool
}

func (s Sounds) For(d MoveDirection) string {
	if d == Up {
		return s.Up
	}
	return s.Down
}

// SectorMoveData describes a plane move. Zero ReturnSpeed means Speed.
type SectorMoveData struct {
	Kind           string
	Face           world.PlaneFace
	StartDirection MoveDirection
	Repetition     MoveRepetition
	Speed          float64
	ReturnSpeed    float64
	Delay          int
	Crush          *physics.CrushData
	OnBlocked      BlockBehavior
	Change         TextureChange
	Sounds         Sounds
	// Door marks movers that can be kicked by a repeated use.
	Door bool
}
