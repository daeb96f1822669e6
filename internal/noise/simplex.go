package noise

import (
	"math"

	"github.com/MeKo-Tech/noisefield/internal/geom"
)

const (
	// (sqrt(3)-1)/2
	skewFactor = 0.36602540378443865
	// (1-1/sqrt(3))/2
	unskewFactor = 0.21132486540518713

	// Squared radius of each vertex's support. Contributions fall off as (r²-d²)^4.
	falloffRadius = 0.5

	// Scale maps the kernel's extreme output for unit gradients onto [-1, 1].
	Scale = 99.83685446303647
)

// Vertex is an integer point of the skewed lattice.
type Vertex struct {
	X int
	Y int
}

// Unskew maps the vertex back into sample space.
func (v Vertex) Unskew() geom.Vector2 {
	t := float64(v.X+v.Y) * unskewFactor
	return geom.Vec(float64(v.X), float64(v.Y)).SubScalar(t)
}

// SimplexVertices returns the three vertices of the triangle enclosing p.
// When p lies on the cell diagonal the upper triangle, (0,1), is chosen.
func SimplexVertices(p geom.Vector2) [3]Vertex {
	s := (p.X + p.Y) * skewFactor
	v0 := Vertex{X: int(math.Floor(p.X + s)), Y: int(math.Floor(p.Y + s))}

	d0 := p.Sub(v0.Unskew())
	v1 := Vertex{X: v0.X, Y: v0.Y + 1}
	if d0.X > d0.Y {
		v1 = Vertex{X: v0.X + 1, Y: v0.Y}
	}

	return [3]Vertex{v0, v1, {X: v0.X + 1, Y: v0.Y + 1}}
}

// Evaluate returns the noise value at lattice-space point p, roughly within [-1, 1].
// It is pure: the same point and field always give the same result.
func Evaluate(p geom.Vector2, gradients GradientField) float64 {
	sum := 0.0
	for _, v := range SimplexVertices(p) {
		sum += contribution(p, v, gradients)
	}
	return Scale * sum
}

func contribution(p geom.Vector2, v Vertex, gradients GradientField) float64 {
	d := p.Sub(v.Unskew())
	t := falloffRadius - d.Dot(d)
	if t <= 0 {
		return 0
	}
	t *= t
	return t * t * d.Dot(gradients.Lookup(v.X, v.Y))
}
