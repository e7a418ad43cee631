package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/sectorsim/internal/core/events/bus"
	"github.com/zeusync/sectorsim/internal/core/world"
)

func TestBusNotifierPublishes(t *testing.T) {
	b := bus.New()
	var got []bus.Event
	for _, typ := range []string{TypeSoundStart, TypeSoundStop, TypePlaneChanged} {
		_, err := b.Subscribe(typ, func(e bus.Event) error {
			got = append(got, e)
			return nil
		})
		require.NoError(t, err)
	}

	w := world.New(nil)
	s := w.AddSector(world.SectorSpec{FloorZ: 8, CeilingZ: 64})
	n := NewBusNotifier(b, func() uint64 { return 42 }, nil)

	n.PlayMovementSound(s.Ceiling, "doorup", false)
	n.PlayMovementSound(s.Ceiling, "", false)
	n.NotifyPlaneChanged(s.Floor)
	n.StopMovementSound(s.Ceiling)

	require.Len(t, got, 3)
	assert.Equal(t, TypeSoundStart, got[0].Type())
	assert.Equal(t, uint64(42), got[0].Tick())
	start := got[0].Data().(PlaneEvent)
	assert.Equal(t, "doorup", start.SoundID)
	assert.Equal(t, world.Ceiling, start.Face)
	assert.Equal(t, 64.0, start.Z)

	changed := got[1].Data().(PlaneEvent)
	assert.Equal(t, world.Floor, changed.Face)
	assert.Equal(t, 8.0, changed.Z)
	assert.Equal(t, TypeSoundStop, got[2].Type())
}

func TestBusNotifierSwallowsHandlerErrors(t *testing.T) {
	b := bus.New()
	_, _ = b.Subscribe(TypePlaneChanged, func(bus.Event) error { return errors.New("boom") })

	w := world.New(nil)
	s := w.AddSector(world.SectorSpec{CeilingZ: 64})
	assert.NotPanics(t, func() {
		NewBusNotifier(b, nil, nil).NotifyPlaneChanged(s.Floor)
	})
	assert.Equal(t, uint64(1), b.GetMetrics().Errors)
}
