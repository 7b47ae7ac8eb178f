package geometry

import "math"

// Side selects one of the two half-planes of a line
type Side int

const (
	SideNegative Side = -1
	SidePositive Side = 1
)

// Segment is an ordered pair of points. Endpoint identity matters for editing,
// distance does not depend on order.
type Segment struct {
	P1 Point
	P2 Point
}

// NewSegment creates a new segment
func NewSegment(p1, p2 Point) Segment {
	return Segment{P1: p1, P2: p2}
}

// Vector returns P2 - P1
func (s Segment) Vector() Point {
	return s.P2.Sub(s.P1)
}

// Length returns the pixel length of the segment
func (s Segment) Length() float64 {
	return s.P1.Distance(s.P2)
}

// IsDegenerate reports whether both endpoints coincide
func (s Segment) IsDegenerate() bool {
	return s.P1 == s.P2
}

// Slope returns dy/dx of the segment, see Slope
func (s Segment) Slope() float64 {
	return Slope(s.P1, s.P2)
}

// Translate returns the segment moved by delta
func (s Segment) Translate(delta Point) Segment {
	return Segment{P1: s.P1.Add(delta), P2: s.P2.Add(delta)}
}

// Reversed returns the segment with its endpoints swapped
func (s Segment) Reversed() Segment {
	return Segment{P1: s.P2, P2: s.P1}
}

// Slope returns dy/dx for the line through a and b.
// A vertical line (dx == 0) yields +Inf regardless of the sign of dy.
func Slope(a, b Point) float64 {
	dx := b.X - a.X
	if dx == 0 {
		return math.Inf(1)
	}
	return (b.Y - a.Y) / dx
}

// IsVertical reports whether slope is the vertical-line sentinel
func IsVertical(slope float64) bool {
	return math.IsInf(slope, 0)
}

// YOnSlope returns the y coordinate at x of the line through pivot with the given finite slope
func YOnSlope(pivot Point, x, slope float64) float64 {
	return pivot.Y + (x-pivot.X)*slope
}

// Project perpendicularly projects p onto the infinite line through a and b.
//
//	t = ((p-a)·d) / (d·d),  d = b-a
//
// A degenerate line (a == b) returns a unchanged.
func Project(p, a, b Point) Point {
	d := b.Sub(a)
	dd := d.Dot(d)
	if dd == 0 {
		return a
	}
	t := p.Sub(a).Dot(d) / dd
	return a.Add(d.Mul(t))
}

// ProjectOnto projects p onto the infinite line carrying the segment
func (s Segment) ProjectOnto(p Point) Point {
	return Project(p, s.P1, s.P2)
}

// Normal returns the unit normal (-dy, dx)/|d| of the line through a and b,
// or the zero vector for a degenerate line
func Normal(a, b Point) Point {
	d := b.Sub(a)
	return Point{X: -d.Y, Y: d.X}.Normalize()
}

// PerpendicularOffset returns the unit normal of the line scaled by magnitude*side.
// It is used to separate overlapping lines visually and is never stored.
func PerpendicularOffset(a, b Point, magnitude float64, side Side) Point {
	return Normal(a, b).Mul(magnitude * float64(side))
}

// DistanceToSegment returns the distance from p to the closest point of segment ab.
// A zero-length segment yields +Inf.
func DistanceToSegment(p, a, b Point) float64 {
	if a == b {
		return math.Inf(1)
	}
	v := b.Sub(a)
	w := p.Sub(a)
	c1 := v.Dot(w)
	if c1 <= 0 {
		return p.Distance(a)
	}
	c2 := v.Dot(v)
	if c2 <= c1 {
		return p.Distance(b)
	}
	closest := a.Add(v.Mul(c1 / c2))
	return p.Distance(closest)
}

// PointNearSegment reports whether p lies within threshold of segment ab.
// A zero-length segment never matches.
func PointNearSegment(p, a, b Point, threshold float64) bool {
	return DistanceToSegment(p, a, b) <= threshold
}

// PhysicalDistance returns the real-world distance between two points where
// one pixel step spans spacingX along x and spacingY along y
func PhysicalDistance(p1, p2 Point, spacingX, spacingY float64) float64 {
	dx := (p2.X - p1.X) * spacingX
	dy := (p2.Y - p1.Y) * spacingY
	return math.Sqrt(dx*dx + dy*dy)
}
