package models

// Handle is a weak, generation-checked reference into an Arena.
// The zero Handle never resolves.
type Handle struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether h is the empty handle.
func (h Handle) IsZero() bool { return h.Gen == 0 }

type slot[T any] struct {
	value *T
	gen   uint32
}

// Arena owns values of T and hands out Handles to them. Removing a value bumps
// the generation of its slot, so every outstanding Handle to it stops resolving
// without walking the references.
//
// Slots are reused LIFO, which keeps handle assignment deterministic for a
// given sequence of Add/Remove calls.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Add stores v and returns its handle.
func (a *Arena[T]) Add(v *T) Handle {
	a.count++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].value = v
		return Handle{Index: idx, Gen: a.slots[idx].gen}
	}
	a.slots = append(a.slots, slot[T]{value: v, gen: 1})
	return Handle{Index: uint32(len(a.slots) - 1), Gen: 1}
}

// Get resolves h. It returns false for the zero handle and for stale handles.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.IsZero() || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.Index]
	if s.gen != h.Gen || s.value == nil {
		return nil, false
	}
	return s.value, true
}

// Contains reports whether h still resolves.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Remove drops the value behind h and invalidates every copy of h.
func (a *Arena[T]) Remove(h Handle) bool {
	if !a.Contains(h) {
		return false
	}
	s := &a.slots[h.Index]
	s.value = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, h.Index)
	a.count--
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int { return a.count }

// Each visits live values in slot order until fn returns false.
func (a *Arena[T]) Each(fn func(Handle, *T) bool) {
	for i := range a.slots {
		s := a.slots[i]
		if s.value == nil {
			continue
		}
		if !fn(Handle{Index: uint32(i), Gen: s.gen}, s.value) {
			return
		}
	}
}
