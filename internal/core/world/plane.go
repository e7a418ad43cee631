package world

// PlaneFace selects the floor or the ceiling of a sector.
type PlaneFace uint8

const (
	Floor PlaneFace = iota
	Ceiling
)

func (f PlaneFace) String() string {
	if f == Ceiling {
		return "ceiling"
	}
	return "floor"
}

// SectorPlane is one of the two horizontal surfaces of a sector.
type SectorPlane struct {
	Sector        *Sector
	Face          PlaneFace
	Z             float64
	PrevZ         float64
	TextureHandle int
	LightLevel    int16
}

func (p *SectorPlane) IsFloor() bool   { return p.Face == Floor }
func (p *SectorPlane) IsCeiling() bool { return p.Face == Ceiling }

// Opposite returns the other plane of the same sector.
func (p *SectorPlane) Opposite() *SectorPlane {
	if p.Face == Floor {
		return p.Sector.Ceiling
	}
	return p.Sector.Floor
}

// SnapInterpolation drops the previous height so the renderer draws the plane
// at its current height with no blending.
func (p *SectorPlane) SnapInterpolation() { p.PrevZ = p.Z }
