package specials

import "github.com/zeusync/sectorsim/internal/core/world"

// ButtonTime is how long a repeatable switch stays on.
const ButtonTime = 35

// SwitchSpecial turns a pressed switch texture back off after ButtonTime ticks.
type SwitchSpecial struct {
	line     *world.Line
	part     world.WallPart
	original int
	tics     int
}

func (s *SwitchSpecial) Kind() string      { return "switch" }
func (s *SwitchSpecial) Line() *world.Line { return s.line }
func (s *SwitchSpecial) Remaining() int    { return s.tics }

func (s *SwitchSpecial) Tick() TickStatus {
	s.tics--
	if s.tics > 0 {
		return TickContinue
	}
	s.restore()
	return TickFinished
}

func (s *SwitchSpecial) restore() {
	s.line.Front.SetTexture(s.part, s.original)
}

// toggleSwitch flips the first switch texture on the line's front side.
// Repeatable lines get a timer that flips it back.
func (r *Registry) toggleSwitch(line *world.Line, repeat bool) {
	if line.Front == nil || r.world.Textures == nil {
		return
	}
	if sw := r.switches[line]; sw != nil {
		if r.compat.QuickSwitch {
			sw.restore()
			r.Remove(sw)
		} else {
			sw.tics = ButtonTime
		}
		return
	}
	for _, part := range []world.WallPart{world.WallUpper, world.WallMiddle, world.WallLower} {
		tex := line.Front.Texture(part)
		if tex == world.NoTexture {
			continue
		}
		pair, ok := r.world.Textures.SwitchPair(tex)
		if !ok {
			continue
		}
		line.Front.SetTexture(part, pair)
		if repeat {
			sw := &SwitchSpecial{line: line, part: part, original: tex, tics: ButtonTime}
			r.switches[line] = sw
			r.Add(sw)
		}
		return
	}
}
