package world

// NoTexture marks an empty wall or flat texture slot.
const NoTexture = 0

// WallPart names one of the three texture slots of a side.
type WallPart uint8

const (
	WallUpper WallPart = iota
	WallMiddle
	WallLower
)

type Side struct {
	Sector *Sector
	Upper  int
	Middle int
	Lower  int
}

// Texture returns the texture in the given slot.
func (s *Side) Texture(part WallPart) int {
	switch part {
	case WallUpper:
		return s.Upper
	case WallMiddle:
		return s.Middle
	default:
		return s.Lower
	}
}

// SetTexture replaces the texture in the given slot.
func (s *Side) SetTexture(part WallPart, handle int) {
	switch part {
	case WallUpper:
		s.Upper = handle
	case WallMiddle:
		s.Middle = handle
	default:
		s.Lower = handle
	}
}

type LineFlags uint16

const (
	LineTwoSided LineFlags = 1 << iota
	// LineRepeat marks a line whose special may run more than once.
	LineRepeat
	// LineMonsterActivate lets monsters trigger the special regardless of the
	// special's own rules.
	LineMonsterActivate
	// LineSecret hides the line from the automap; monsters cannot use it.
	LineSecret
)

type Line struct {
	ID      int
	Front   *Side
	Back    *Side
	Special int
	Tag     int
	Args    [5]int
	Flags   LineFlags
	// Activated is set once a single-use special has fired.
	Activated bool
}

func (l *Line) TwoSided() bool { return l.Back != nil && l.Flags&LineTwoSided != 0 }

func (l *Line) Has(f LineFlags) bool { return l.Flags&f != 0 }

// FrontSector returns the sector on the front side.
func (l *Line) FrontSector() *Sector {
	if l.Front == nil {
		return nil
	}
	return l.Front.Sector
}

// BackSector returns the sector on the back side, or nil for one-sided lines.
func (l *Line) BackSector() *Sector {
	if l.Back == nil {
		return nil
	}
	return l.Back.Sector
}

// OtherSector returns the sector across the line from s, or nil.
func (l *Line) OtherSector(s *Sector) *Sector {
	if !l.TwoSided() {
		return nil
	}
	if l.Front.Sector == s {
		return l.Back.Sector
	}
	return l.Front.Sector
}
