package physics

// CrushMode selects what a crushing plane does once something is caught.
type CrushMode uint8

const (
	// CrushDoom keeps moving through the victim and damages it every tick.
	CrushDoom CrushMode = iota
	// CrushDoomWithSlowDown behaves like CrushDoom but drops to the crush
	// speed for as long as something is caught.
	CrushDoomWithSlowDown
	// CrushHexen holds the plane in place while damaging the victim.
	CrushHexen
)

func (m CrushMode) String() string {
	switch m {
	case CrushDoom:
		return "doom"
	case CrushDoomWithSlowDown:
		return "doom_slowdown"
	case CrushHexen:
		return "hexen"
	}
	return "unknown"
}

// CrushData turns a move into a crushing move.
type CrushData struct {
	Mode   CrushMode
	Damage int
}

type MoveStatus uint8

const (
	MoveSuccess MoveStatus = iota
	MoveBlocked
	MoveCrushing
)

func (s MoveStatus) String() string {
	switch s {
	case MoveSuccess:
		return "success"
	case MoveBlocked:
		return "blocked"
	case MoveCrushing:
		return "crushing"
	}
	return "unknown"
}
