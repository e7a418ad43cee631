package events

import (
	"github.com/zeusync/sectorsim/internal/core/events/bus"
	"github.com/zeusync/sectorsim/internal/core/observability/log"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Event types published by BusNotifier.
const (
	TypeSoundStart   = "plane.sound.start"
	TypeSoundStop    = "plane.sound.stop"
	TypePlaneChanged = "plane.changed"
)

const source = "specials"

// Notifier receives movement notifications for the audio and render
// collaborators. Calls happen inside the tick and must not block.
type Notifier interface {
	PlayMovementSound(plane *world.SectorPlane, soundID string, looping bool)
	StopMovementSound(plane *world.SectorPlane)
	NotifyPlaneChanged(plane *world.SectorPlane)
}

// PlaneEvent is the payload of every plane event.
type PlaneEvent struct {
	SectorID int
	Face     world.PlaneFace
	Z        float64
	PrevZ    float64
	SoundID  string
	Looping  bool
}

func payload(plane *world.SectorPlane) PlaneEvent {
	return PlaneEvent{
		SectorID: plane.Sector.ID,
		Face:     plane.Face,
		Z:        plane.Z,
		PrevZ:    plane.PrevZ,
	}
}

// TickSource returns the current simulation tick.
type TickSource func() uint64

// BusNotifier turns notifications into bus events.
type BusNotifier struct {
	bus  bus.EventBus
	tick TickSource
	log  log.Log
}

// NewBusNotifier publishes on b. tick may be nil.
func NewBusNotifier(b bus.EventBus, tick TickSource, logger log.Log) *BusNotifier {
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &BusNotifier{bus: b, tick: tick, log: logger}
}

func (n *BusNotifier) PlayMovementSound(plane *world.SectorPlane, soundID string, looping bool) {
	if soundID == "" {
		return
	}
	p := payload(plane)
	p.SoundID = soundID
	p.Looping = looping
	n.publish(TypeSoundStart, p)
}

func (n *BusNotifier) StopMovementSound(plane *world.SectorPlane) {
	n.publish(TypeSoundStop, payload(plane))
}

func (n *BusNotifier) NotifyPlaneChanged(plane *world.SectorPlane) {
	n.publish(TypePlaneChanged, payload(plane))
}

// Handler errors are logged and dropped; a listener cannot fail a tick.
func (n *BusNotifier) publish(typ string, p PlaneEvent) {
	if err := n.bus.Publish(bus.NewEvent(typ, source, n.tick(), p)); err != nil {
		n.log.Warn("plane event handler failed",
			log.String("type", typ),
			log.Int("sector", p.SectorID),
			log.Error(err),
		)
	}
}

// NopNotifier drops everything.
type NopNotifier struct{}

func (NopNotifier) PlayMovementSound(*world.SectorPlane, string, bool) {}
func (NopNotifier) StopMovementSound(*world.SectorPlane)               {}
func (NopNotifier) NotifyPlaneChanged(*world.SectorPlane)              {}
