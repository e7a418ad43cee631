package models

import "math"

// Vec2 is a point on the map plane.
type Vec2 struct{ X, Y float64 }

// Vec3 is a world position; Z is the vertical axis.
type Vec3 struct{ X, Y, Z float64 }

// XY drops the vertical component.
func (v Vec3) XY() Vec2 { return Vec2{X: v.X, Y: v.Y} }

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(a, b Vec2) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Box is an axis aligned square footprint.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoxAround returns the square footprint of the given radius centered at c.
func BoxAround(c Vec2, radius float64) Box {
	return Box{MinX: c.X - radius, MinY: c.Y - radius, MaxX: c.X + radius, MaxY: c.Y + radius}
}

// Overlaps reports whether the interiors of two boxes intersect.
// Boxes that only touch on an edge do not overlap.
func (b Box) Overlaps(o Box) bool {
	return b.MinX < o.MaxX && o.MinX < b.MaxX && b.MinY < o.MaxY && o.MinY < b.MaxY
}
