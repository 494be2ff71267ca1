// Package geometry contains the pure coordinate helpers shared by the
// capture layer and the surfaces.
package geometry

import "math"

// Point is an (X, Y) position. Screen coordinates grow rightwards and downwards.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether p lies inside r. Points on the edge are inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Relative returns the location of p relative to the top-left corner of r.
func Relative(p Point, r Rect) Point {
	return Point{X: p.X - r.X, Y: p.Y - r.Y}
}

// Normalize maps p into r's unit square: (0,0) is the top-left corner and
// (1,1) the bottom-right. Points outside r map outside [0,1]. A degenerate
// rect yields NaN or Inf components.
func Normalize(p Point, r Rect) Point {
	return Point{
		X: (p.X - r.X) / r.Width,
		Y: (p.Y - r.Y) / r.Height,
	}
}

// Denormalize is the inverse of Normalize.
func Denormalize(p Point, r Rect) Point {
	return Point{
		X: r.X + p.X*r.Width,
		Y: r.Y + p.Y*r.Height,
	}
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Angle returns the angle in radians of the vector from origin to p,
// measured clockwise from straight up (12 o'clock) in screen coordinates.
// The result lies in (-π, π].
func Angle(origin, p Point) float64 {
	return math.Atan2(p.X-origin.X, origin.Y-p.Y)
}

// NormalizeAngle wraps a into the range (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
