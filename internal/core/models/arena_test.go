package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thing struct{ name string }

func TestArenaAddGet(t *testing.T) {
	a := NewArena[thing]()
	h := a.Add(&thing{name: "a"})

	v, ok := a.Get(h)
	require.True(t, ok)
	assert.Equal(t, "a", v.name)
	assert.Equal(t, 1, a.Len())

	_, ok = a.Get(Handle{})
	assert.False(t, ok)
}

func TestArenaRemoveInvalidatesHandle(t *testing.T) {
	a := NewArena[thing]()
	h := a.Add(&thing{name: "a"})
	copyOfH := h

	require.True(t, a.Remove(h))
	assert.False(t, a.Contains(copyOfH))
	assert.False(t, a.Remove(h))

	// slot reuse must not resurrect the old handle
	h2 := a.Add(&thing{name: "b"})
	assert.Equal(t, h.Index, h2.Index)
	assert.NotEqual(t, h.Gen, h2.Gen)
	_, ok := a.Get(h)
	assert.False(t, ok)
	v, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, "b", v.name)
}

func TestArenaEachOrder(t *testing.T) {
	a := NewArena[thing]()
	a.Add(&thing{name: "a"})
	hb := a.Add(&thing{name: "b"})
	a.Add(&thing{name: "c"})
	a.Remove(hb)

	var names []string
	a.Each(func(_ Handle, v *thing) bool {
		names = append(names, v.name)
		return true
	})
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestBoxOverlaps(t *testing.T) {
	a := BoxAround(Vec2{X: 0, Y: 0}, 16)
	assert.True(t, a.Overlaps(BoxAround(Vec2{X: 10, Y: 10}, 16)))
	assert.False(t, a.Overlaps(BoxAround(Vec2{X: 32, Y: 0}, 16)))
}
