package geometry

import "math"

// Point represents a 2D point or vector in image-pixel coordinates
type Point struct {
	X, Y float64
}

// NewPoint creates a new 2D point
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference between two points
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Mul multiplies the point by a scalar
func (p Point) Mul(scalar float64) Point {
	return Point{X: p.X * scalar, Y: p.Y * scalar}
}

// Dot returns the dot product of two vectors
func (p Point) Dot(other Point) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Cross returns the z component of the cross product of two 2D vectors
func (p Point) Cross(other Point) float64 {
	return p.X*other.Y - p.Y*other.X
}

// Length returns the magnitude of the vector
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the pixel distance between two points
func (p Point) Distance(other Point) float64 {
	return p.Sub(other).Length()
}

// Normalize returns a unit vector in the same direction
func (p Point) Normalize() Point {
	length := p.Length()
	if length == 0 {
		return Point{}
	}
	return p.Mul(1.0 / length)
}

// IsZero reports whether both components are exactly zero
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// ApproxEqual reports whether two points are within tol of each other on both axes
func (p Point) ApproxEqual(other Point, tol float64) bool {
	return math.Abs(p.X-other.X) <= tol && math.Abs(p.Y-other.Y) <= tol
}

// Rect is an axis-aligned rectangle [X0,X1]x[Y0,Y1]
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Contains returns true if the point lies inside the rectangle (inclusive)
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}
