// Package geom holds the small amount of planar vector math the fleet needs
// on top of orb points: headings in degrees, scaling and arrival checks.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance is the straight-line distance between two points.
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Near reports whether a is within tolerance of b.
func Near(a, b orb.Point, tolerance float64) bool {
	return Distance(a, b) <= tolerance
}

func Add(p, v orb.Point) orb.Point {
	return orb.Point{p[0] + v[0], p[1] + v[1]}
}

func Sub(a, b orb.Point) orb.Point {
	return orb.Point{a[0] - b[0], a[1] - b[1]}
}

func Scale(v orb.Point, k float64) orb.Point {
	return orb.Point{v[0] * k, v[1] * k}
}

// Length is the magnitude of v treated as a vector.
func Length(v orb.Point) float64 {
	return math.Hypot(v[0], v[1])
}

// Direction returns the heading of v in degrees, normalised to [0, 360).
// The zero vector has heading 0.
func Direction(v orb.Point) float64 {
	if v[0] == 0 && v[1] == 0 {
		return 0
	}
	return NormaliseAngle(math.Atan2(v[1], v[0]) * 180 / math.Pi)
}

// FromDirection builds a vector of the given length pointing along heading
// (degrees).
func FromDirection(heading, length float64) orb.Point {
	rad := heading * math.Pi / 180
	return orb.Point{math.Cos(rad) * length, math.Sin(rad) * length}
}

// NormaliseAngle folds any angle in degrees into [0, 360).
func NormaliseAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// InBounds reports whether p lies inside b, edges included.
func InBounds(b orb.Bound, p orb.Point) bool {
	return b.Contains(p)
}

// OutsideDistance is how far p lies outside b (0 when inside).
func OutsideDistance(b orb.Bound, p orb.Point) float64 {
	dx := math.Max(0, math.Max(b.Min[0]-p[0], p[0]-b.Max[0]))
	dy := math.Max(0, math.Max(b.Min[1]-p[1], p[1]-b.Max[1]))
	return math.Hypot(dx, dy)
}

// Centre returns the midpoint of b.
func Centre(b orb.Bound) orb.Point {
	return orb.Point{(b.Min[0] + b.Max[0]) / 2, (b.Min[1] + b.Max[1]) / 2}
}
