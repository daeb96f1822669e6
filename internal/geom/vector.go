// Package geom provides the small vector type shared by the noise kernels.
package geom

import "math"

// Vector2 is an immutable 2D point or direction.
type Vector2 struct {
	X float64
	Y float64
}

// Vec is shorthand for Vector2{X: x, Y: y}.
func Vec(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// FromAngle returns the unit vector (cos theta, sin theta).
func FromAngle(theta float64) Vector2 {
	return Vector2{X: math.Cos(theta), Y: math.Sin(theta)}
}

func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// SubScalar subtracts s from both components.
func (v Vector2) SubScalar(s float64) Vector2 {
	return Vector2{X: v.X - s, Y: v.Y - s}
}

func (v Vector2) Dot(o Vector2) float64 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vector2) Length() float64 {
	return math.Sqrt(v.Dot(v))
}
