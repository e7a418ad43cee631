package persistence

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/sectorsim/internal/core/specials"
	"github.com/zeusync/sectorsim/internal/core/world"
	"github.com/zeusync/sectorsim/pkg/generic"
)

type digester struct {
	h   *xxhash.Digest
	tmp [8]byte
}

var digesters = generic.NewPool(
	func() *digester { return &digester{h: xxhash.New()} },
	func(d *digester) { d.h.Reset() },
)

func (d *digester) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.tmp[:], v)
	_, _ = d.h.Write(d.tmp[:])
}

func (d *digester) i64(v int64)   { d.u64(uint64(v)) }
func (d *digester) f64(v float64) { d.u64(math.Float64bits(v)) }

func (d *digester) flag(b bool) {
	if b {
		d.u64(1)
		return
	}
	d.u64(0)
}

// Digest hashes plane heights, entity positions and mover state. Two runs of
// the same scenario produce the same digest on every platform.
func Digest(w *world.World, movers []specials.MoverRecord) uint64 {
	d := digesters.Get()
	defer digesters.Put(d)

	for _, s := range w.Sectors {
		d.i64(int64(s.ID))
		d.f64(s.Floor.Z)
		d.f64(s.Ceiling.Z)
		d.i64(int64(s.Floor.TextureHandle))
		d.i64(int64(s.LightLevel))
		d.i64(int64(s.DamageSpecial))
	}
	for _, l := range w.Lines {
		d.flag(l.Activated)
	}
	for _, e := range w.Entities() {
		_, _ = d.h.WriteString(e.Kind)
		d.f64(e.Position.X)
		d.f64(e.Position.Y)
		d.f64(e.Position.Z)
		d.f64(e.Height)
		d.i64(int64(e.Health))
		d.u64(uint64(e.Flags))
	}
	for _, m := range movers {
		d.i64(int64(m.SectorID))
		d.u64(uint64(m.Plane))
		d.i64(int64(m.Direction))
		d.f64(m.DestZ)
		d.i64(int64(m.DelayTics))
		d.u64(uint64(m.State))
		d.flag(m.Paused)
	}
	return d.h.Sum64()
}
