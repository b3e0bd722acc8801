package game

import "math"

// Vec2 is a 2D vector in playfield coordinates.
type Vec2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) Normalize() Vec2 {
	if v.IsZero() {
		return Vec2{}
	}
	return v.Times(1.0 / v.Magnitude())
}

// WithMagnitude rescales v to length m. A zero vector stays zero.
func (v Vec2) WithMagnitude(m float64) Vec2 {
	return v.Normalize().Times(m)
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// clamp limits n to [lo, hi].
func clamp(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}
