package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/sectorsim/internal/core/models"
	"github.com/zeusync/sectorsim/internal/core/specials"
	"github.com/zeusync/sectorsim/internal/core/world"
)

// Scenario is a small level plus a script of line activations.
type Scenario struct {
	Name     string    `yaml:"name"`
	Ticks    int       `yaml:"ticks"`
	Textures []Texture `yaml:"textures"`
	Sectors  []Sector  `yaml:"sectors"`
	Lines    []Line    `yaml:"lines"`
	Entities []Entity  `yaml:"entities"`
	Script   []Step    `yaml:"script"`
}

type Texture struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// Switch is the other half of a switch texture pair.
	Switch int `yaml:"switch"`
}

type Sector struct {
	Floor          float64 `yaml:"floor"`
	Ceiling        float64 `yaml:"ceiling"`
	Tag            int     `yaml:"tag"`
	FloorTexture   int     `yaml:"floor_texture"`
	CeilingTexture int     `yaml:"ceiling_texture"`
	Light          int16   `yaml:"light"`
	Damage         int     `yaml:"damage"`
	Type           int     `yaml:"type"`
}

type Side struct {
	Sector int `yaml:"sector"`
	Upper  int `yaml:"upper"`
	Middle int `yaml:"middle"`
	Lower  int `yaml:"lower"`
}

type Line struct {
	Front   Side     `yaml:"front"`
	Back    *Side    `yaml:"back"`
	Special int      `yaml:"special"`
	Tag     int      `yaml:"tag"`
	Flags   []string `yaml:"flags"`
}

type Entity struct {
	Kind    string   `yaml:"kind"`
	Player  bool     `yaml:"player"`
	X       float64  `yaml:"x"`
	Y       float64  `yaml:"y"`
	Z       float64  `yaml:"z"`
	Height  float64  `yaml:"height"`
	Radius  float64  `yaml:"radius"`
	Health  int      `yaml:"health"`
	Flags   []string `yaml:"flags"`
	Keys    []string `yaml:"keys"`
	Sectors []int    `yaml:"sectors"`
}

// Step activates a line, or a sector type, at a given tick. Activator is an
// entity index; without one the activation comes from a script.
type Step struct {
	Tick      uint64 `yaml:"tick"`
	Line      *int   `yaml:"line"`
	Sector    *int   `yaml:"sector"`
	Activator *int   `yaml:"activator"`
	Trigger   string `yaml:"trigger"`
}

var entityFlags = map[string]world.EntityFlags{
	"solid":         world.FlagSolid,
	"shootable":     world.FlagShootable,
	"dropped":       world.FlagDropped,
	"pickup":        world.FlagPickup,
	"corpse":        world.FlagCorpse,
	"crush_giblets": world.FlagCrushGiblets,
	"dont_gib":      world.FlagDontGib,
	"hanging":       world.FlagHanging,
	"no_gravity":    world.FlagNoGravity,
}

var keyFlags = map[string]world.KeyFlags{
	"blue":   world.KeyBlue,
	"red":    world.KeyRed,
	"yellow": world.KeyYellow,
}

var lineFlags = map[string]world.LineFlags{
	"repeat":  world.LineRepeat,
	"monster": world.LineMonsterActivate,
	"secret":  world.LineSecret,
}

func parseFlags[F ~uint8 | ~uint16 | ~uint32](names []string, known map[string]F, what string) (F, error) {
	var out F
	for _, n := range names {
		f, ok := known[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("%w: unknown %s flag %q", ErrInvalidScenario, what, n)
		}
		out |= f
	}
	return out, nil
}

// Load decodes and validates a scenario.
func Load(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

// Validate checks every cross reference.
func (s *Scenario) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
	}
	if len(s.Sectors) == 0 {
		return bad("no sectors")
	}
	if s.Ticks < 0 {
		return bad("negative tick count")
	}
	sector := func(id int) bool { return id >= 0 && id < len(s.Sectors) }

	for i, l := range s.Lines {
		if !sector(l.Front.Sector) {
			return bad("line %d: front sector %d out of range", i, l.Front.Sector)
		}
		if l.Back != nil && !sector(l.Back.Sector) {
			return bad("line %d: back sector %d out of range", i, l.Back.Sector)
		}
		if _, err := parseFlags(l.Flags, lineFlags, "line"); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	for i, e := range s.Entities {
		if len(e.Sectors) == 0 {
			return bad("entity %d: not linked to any sector", i)
		}
		for _, id := range e.Sectors {
			if !sector(id) {
				return bad("entity %d: sector %d out of range", i, id)
			}
		}
		if _, err := parseFlags(e.Flags, entityFlags, "entity"); err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		if _, err := parseFlags(e.Keys, keyFlags, "key"); err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
	}
	for i, st := range s.Script {
		if i > 0 && st.Tick < s.Script[i-1].Tick {
			return bad("step %d: script is not in tick order", i)
		}
		switch {
		case st.Line != nil && st.Sector != nil:
			return bad("step %d: both line and sector set", i)
		case st.Line != nil:
			if *st.Line < 0 || *st.Line >= len(s.Lines) {
				return bad("step %d: line %d out of range", i, *st.Line)
			}
			if _, err := specials.ParseTrigger(st.Trigger); err != nil {
				return bad("step %d: %v", i, err)
			}
		case st.Sector != nil:
			if !sector(*st.Sector) {
				return bad("step %d: sector %d out of range", i, *st.Sector)
			}
		default:
			return bad("step %d: nothing to activate", i)
		}
		if st.Activator != nil && (*st.Activator < 0 || *st.Activator >= len(s.Entities)) {
			return bad("step %d: activator %d out of range", i, *st.Activator)
		}
	}
	return nil
}

// Level is a scenario turned into live geometry.
type Level struct {
	Scenario *Scenario
	World    *world.World
	// Entities are in scenario order so script steps can refer to them.
	Entities []*world.Entity
}

// Build creates the world. The scenario must be valid.
func (s *Scenario) Build() (*Level, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	w := world.New(NewTextureTable(s.Textures))
	for _, sec := range s.Sectors {
		w.AddSector(world.SectorSpec{
			Tag:            sec.Tag,
			FloorZ:         sec.Floor,
			CeilingZ:       sec.Ceiling,
			FloorTexture:   sec.FloorTexture,
			CeilingTexture: sec.CeilingTexture,
			LightLevel:     sec.Light,
			DamageSpecial:  sec.Damage,
			Type:           sec.Type,
		})
	}
	side := func(sd Side) *world.Side {
		return &world.Side{Sector: w.Sectors[sd.Sector], Upper: sd.Upper, Middle: sd.Middle, Lower: sd.Lower}
	}
	for _, l := range s.Lines {
		flags, _ := parseFlags(l.Flags, lineFlags, "line")
		var back *world.Side
		if l.Back != nil {
			back = side(*l.Back)
		}
		w.AddLine(side(l.Front), back, l.Special, l.Tag, flags)
	}

	lvl := &Level{Scenario: s, World: w}
	for _, e := range s.Entities {
		flags, _ := parseFlags(e.Flags, entityFlags, "entity")
		keys, _ := parseFlags(e.Keys, keyFlags, "key")
		sectors := make([]*world.Sector, 0, len(e.Sectors))
		for _, id := range e.Sectors {
			sectors = append(sectors, w.Sectors[id])
		}
		ent := w.AddEntity(&world.Entity{
			Kind:     e.Kind,
			Player:   e.Player,
			Position: models.Vec3{X: e.X, Y: e.Y, Z: e.Z},
			Height:   e.Height,
			Radius:   e.Radius,
			Health:   e.Health,
			Flags:    flags,
			Keys:     keys,
		}, sectors...)
		ent.OnGround = ent.Z() <= w.HighestFloorZ(ent)
		lvl.Entities = append(lvl.Entities, ent)
	}
	return lvl, nil
}
