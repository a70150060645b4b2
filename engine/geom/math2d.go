// Package geom holds the planar vector math shared by the planner, the
// controller and the renderers.
package geom

import (
	"math"
	"math/rand/v2"
)

// Vec2 is a point or direction in the planning plane (x right, y up)
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func V2(x, y float64) Vec2 { return Vec2{x, y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Cross returns the out-of-plane (z) component of v × o.
// Positive when o lies counter-clockwise of v.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rotate turns v counter-clockwise by theta radians
func (v Vec2) Rotate(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// ClampLen scales v down so its length does not exceed max
func (v Vec2) ClampLen(max float64) Vec2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// FromAngle returns the unit vector pointing at theta radians
func FromAngle(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{c, s}
}

// Sign returns -1 for negative values and +1 otherwise (zero counts as positive)
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// AngleBetween returns the unsigned angle between a and b in [0, π].
// Zero-length vectors yield 0.
func AngleBetween(a, b Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la < 1e-12 || lb < 1e-12 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// SignedAngle returns the angle needed to rotate from onto to: the magnitude
// is the angle between the vectors, the sign comes from the cross product
// (counter-clockwise positive).
func SignedAngle(from, to Vec2) float64 {
	return Sign(from.Cross(to)) * AngleBetween(from, to)
}

// Rect is an axis-aligned rectangle
type Rect struct {
	Min Vec2 `json:"min" yaml:"min"`
	Max Vec2 `json:"max" yaml:"max"`
}

func R(minX, minY, maxX, maxY float64) Rect {
	return Rect{Min: Vec2{minX, minY}, Max: Vec2{maxX, maxY}}
}

func (r Rect) Width() float64 { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Center() Vec2 { return r.Min.Lerp(r.Max, 0.5) }
func (r Rect) Empty() bool { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether r and o overlap
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X && r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Expand grows r by d on every side
func (r Rect) Expand(d float64) Rect {
	return Rect{Min: Vec2{r.Min.X - d, r.Min.Y - d}, Max: Vec2{r.Max.X + d, r.Max.Y + d}}
}

// Sample draws a point uniformly inside r
func (r Rect) Sample(rng *rand.Rand) Vec2 {
	return Vec2{
		X: r.Min.X + rng.Float64()*r.Width(),
		Y: r.Min.Y + rng.Float64()*r.Height(),
	}
}
