package persistence

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/zeusync/sectorsim/internal/core/models"
	"github.com/zeusync/sectorsim/internal/core/specials"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Version is the snapshot layout written by this package.
const Version = 1

// Header is written as a JSON line in front of the body so tools can read it
// without decoding the rest.
type Header struct {
	ID        uuid.UUID `json:"id"`
	Version   int       `json:"version"`
	Tick      uint64    `json:"tick"`
	CreatedAt time.Time `json:"created_at"`
	Digest    uint64    `json:"digest"`
	Sectors   int       `json:"sectors"`
	Movers    int       `json:"movers"`
}

type SectorState struct {
	ID             int
	FloorZ         float64
	CeilingZ       float64
	FloorTexture   int
	CeilingTexture int
	LightLevel     int16
	DamageSpecial  int
	Type           int
}

// LineState keeps what activations change on a line: the spent flag and the
// front textures flipped by switches.
type LineState struct {
	ID        int
	Activated bool
	Upper     int
	Middle    int
	Lower     int
}

type EntityState struct {
	Kind     string
	Position models.Vec3
	Height   float64
	Radius   float64
	Health   int
	Flags    world.EntityFlags
	Player   bool
	Keys     world.KeyFlags
	OnGround bool
	Frame    string
	Sectors  []int
}

type Snapshot struct {
	Header   Header
	Sectors  []SectorState
	Lines    []LineState
	Entities []EntityState
	Movers   []specials.MoverRecord
	// RNG is the generator state behind randomized lift start directions.
	RNG []byte
}

// Capture copies the mutable state of the registry's world and its movers.
func Capture(reg *specials.Registry) Snapshot {
	w := reg.World()
	snap := Snapshot{
		Sectors: make([]SectorState, 0, len(w.Sectors)),
		Lines:   make([]LineState, 0, len(w.Lines)),
		Movers:  reg.Export(),
	}
	if state, err := reg.RNGState(); err == nil {
		snap.RNG = state
	}
	for _, s := range w.Sectors {
		snap.Sectors = append(snap.Sectors, SectorState{
			ID:             s.ID,
			FloorZ:         s.Floor.Z,
			CeilingZ:       s.Ceiling.Z,
			FloorTexture:   s.Floor.TextureHandle,
			CeilingTexture: s.Ceiling.TextureHandle,
			LightLevel:     s.LightLevel,
			DamageSpecial:  s.DamageSpecial,
			Type:           s.Type,
		})
	}
	for _, l := range w.Lines {
		ls := LineState{ID: l.ID, Activated: l.Activated}
		if l.Front != nil {
			ls.Upper, ls.Middle, ls.Lower = l.Front.Upper, l.Front.Middle, l.Front.Lower
		}
		snap.Lines = append(snap.Lines, ls)
	}
	for _, e := range w.Entities() {
		es := EntityState{
			Kind:     e.Kind,
			Position: e.Position,
			Height:   e.Height,
			Radius:   e.Radius,
			Health:   e.Health,
			Flags:    e.Flags,
			Player:   e.Player,
			Keys:     e.Keys,
			OnGround: e.OnGround,
			Frame:    e.Frame,
		}
		for _, s := range e.Sectors() {
			es.Sectors = append(es.Sectors, s.ID)
		}
		snap.Entities = append(snap.Entities, es)
	}
	snap.Header = Header{
		ID:        uuid.New(),
		Version:   Version,
		Tick:      reg.CurrentTick(),
		CreatedAt: time.Now().UTC(),
		Digest:    Digest(w, snap.Movers),
		Sectors:   len(snap.Sectors),
		Movers:    len(snap.Movers),
	}
	return snap
}

// Restore applies a snapshot to a registry whose world has the same geometry.
// Active movers and entities are replaced. The snapshot is checked in full
// first; on error the registry and its world are left untouched.
func Restore(reg *specials.Registry, snap Snapshot) error {
	if err := check(reg, snap); err != nil {
		return err
	}
	w := reg.World()

	for _, s := range reg.Specials() {
		reg.Remove(s)
	}
	for _, st := range snap.Sectors {
		s := w.Sectors[st.ID]
		s.Floor.Z, s.Floor.PrevZ = st.FloorZ, st.FloorZ
		s.Ceiling.Z, s.Ceiling.PrevZ = st.CeilingZ, st.CeilingZ
		s.Floor.TextureHandle = st.FloorTexture
		s.Ceiling.TextureHandle = st.CeilingTexture
		s.LightLevel = st.LightLevel
		s.Floor.LightLevel = st.LightLevel
		s.Ceiling.LightLevel = st.LightLevel
		s.DamageSpecial = st.DamageSpecial
		s.Type = st.Type
	}
	for _, st := range snap.Lines {
		l := w.Lines[st.ID]
		l.Activated = st.Activated
		if l.Front != nil {
			l.Front.Upper, l.Front.Middle, l.Front.Lower = st.Upper, st.Middle, st.Lower
		}
	}

	for _, e := range w.Entities() {
		w.RemoveEntity(e)
	}
	for _, es := range snap.Entities {
		sectors := make([]*world.Sector, 0, len(es.Sectors))
		for _, id := range es.Sectors {
			sectors = append(sectors, w.Sectors[id])
		}
		w.AddEntity(&world.Entity{
			Kind:     es.Kind,
			Position: es.Position,
			Height:   es.Height,
			Radius:   es.Radius,
			Health:   es.Health,
			Flags:    es.Flags,
			Player:   es.Player,
			Keys:     es.Keys,
			OnGround: es.OnGround,
			Frame:    es.Frame,
		}, sectors...)
	}
	reg.Physics().RecomputeAll()

	if err := reg.Import(snap.Movers); err != nil {
		return err
	}
	if len(snap.RNG) > 0 {
		if err := reg.SetRNGState(snap.RNG); err != nil {
			return fmt.Errorf("%w: rng: %w", ErrBadSnapshot, err)
		}
	}
	reg.SetCurrentTick(snap.Header.Tick)
	return nil
}

func check(reg *specials.Registry, snap Snapshot) error {
	w := reg.World()
	if snap.Header.Version != Version {
		return fmt.Errorf("%w: version %d", ErrBadSnapshot, snap.Header.Version)
	}
	if len(snap.Sectors) != len(w.Sectors) || len(snap.Lines) != len(w.Lines) {
		return fmt.Errorf("%w: geometry mismatch (%d sectors, %d lines)", ErrBadSnapshot, len(snap.Sectors), len(snap.Lines))
	}
	for _, st := range snap.Sectors {
		if _, err := w.Sector(st.ID); err != nil {
			return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
		}
	}
	for _, st := range snap.Lines {
		if _, err := w.Line(st.ID); err != nil {
			return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
		}
	}
	for _, es := range snap.Entities {
		for _, id := range es.Sectors {
			if _, err := w.Sector(id); err != nil {
				return fmt.Errorf("%w: entity %q: %w", ErrBadSnapshot, es.Kind, err)
			}
		}
	}
	if err := reg.ValidateRecords(snap.Movers); err != nil {
		return err
	}
	if len(snap.RNG) > 0 {
		var pcg rand.PCG
		if err := pcg.UnmarshalBinary(snap.RNG); err != nil {
			return fmt.Errorf("%w: rng: %w", ErrBadSnapshot, err)
		}
	}
	return nil
}

// Encode writes the snapshot as a zstd stream: one JSON header line followed
// by the gob encoded snapshot.
func Encode(w io.Writer, snap Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Decode reads a stream written by Encode.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec, err := zstd.NewReader(r)
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("%w: header: %w", ErrBadSnapshot, err)
	}
	var header Header
	if err := json.Unmarshal(line, &header); err != nil {
		return snap, fmt.Errorf("%w: header: %w", ErrBadSnapshot, err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("%w: gob decode: %w", ErrBadSnapshot, err)
	}
	if snap.Header.ID != header.ID {
		return snap, fmt.Errorf("%w: header does not match body", ErrBadSnapshot)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(r io.Reader) (Header, error) {
	var header Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return header, fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return header, fmt.Errorf("%w: header: %w", ErrBadSnapshot, err)
	}
	if err := json.Unmarshal(line, &header); err != nil {
		return header, fmt.Errorf("%w: header: %w", ErrBadSnapshot, err)
	}
	return header, nil
}

func WriteSnapshot(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return Decode(f)
}
