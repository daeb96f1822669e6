package noise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/MeKo-Tech/noisefield/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource replays fixed values, cycling when exhausted.
type sequenceSource struct {
	values []float64
	next   int
}

func (s *sequenceSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func TestGenerateLatticeUnitGradients(t *testing.T) {
	field, err := GenerateLattice(16, 8, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	w, h := field.Size()
	require.Equal(t, 16, w)
	require.Equal(t, 8, h)
	require.Len(t, field.gradients, 16*8)

	for i, g := range field.gradients {
		assert.InDelta(t, 1.0, g.Length(), 1e-12, "gradient %d", i)
	}
}

func TestGenerateLatticeFollowsRandomSequence(t *testing.T) {
	src := &sequenceSource{values: []float64{0, 0.25, 0.5, 0.75}}
	field, err := GenerateLattice(2, 2, src)
	require.NoError(t, err)

	want := []geom.Vector2{geom.Vec(1, 0), geom.Vec(0, 1), geom.Vec(-1, 0), geom.Vec(0, -1)}
	for i, g := range field.gradients {
		assert.InDelta(t, want[i].X, g.X, 1e-12, "gradient %d x", i)
		assert.InDelta(t, want[i].Y, g.Y, 1e-12, "gradient %d y", i)
	}
}

func TestGenerateLatticeDeterministic(t *testing.T) {
	a, err := GenerateLattice(16, 16, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := GenerateLattice(16, 16, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	require.Equal(t, a.gradients, b.gradients)
}

func TestGenerateLatticeInvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 16}, {16, 0}, {-1, 4}} {
		_, err := GenerateLattice(dims[0], dims[1], rand.New(rand.NewSource(1)))
		require.ErrorIs(t, err, ErrInvalidDimensions, "dims %v", dims)
	}

	_, err := GenerateLattice(4, 4, nil)
	require.Error(t, err)
}

func TestLatticeLookupWrapsNegativeVertices(t *testing.T) {
	field, err := GenerateLattice(16, 16, rand.New(rand.NewSource(1337)))
	require.NoError(t, err)

	tests := []struct {
		name   string
		vertex [2]int
		same   [2]int
	}{
		{"negative x", [2]int{-1, 3}, [2]int{15, 3}},
		{"negative y", [2]int{4, -1}, [2]int{4, 15}},
		{"both negative", [2]int{-17, -1}, [2]int{15, 15}},
		{"one past the edge", [2]int{16, 3}, [2]int{0, 3}},
		{"corner past the edge", [2]int{17, 17}, [2]int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := field.Lookup(tt.vertex[0], tt.vertex[1])
			want := field.Lookup(tt.same[0], tt.same[1])
			assert.Equal(t, want, got)
		})
	}
}

func TestLatticeLookupIndex(t *testing.T) {
	src := &sequenceSource{values: []float64{0.0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}}
	field, err := GenerateLattice(3, 3, src)
	require.NoError(t, err)

	// row stride is the grid height
	assert.Equal(t, field.gradients[2+1*3], field.Lookup(2, 1))
	assert.Equal(t, field.gradients[0], field.Lookup(3, 3))
	assert.Equal(t, field.gradients[2+2*3], field.Lookup(-1, -1))
}

func TestFixedFieldDirections(t *testing.T) {
	var f FixedField

	tests := []struct {
		vx, vy int
		angle  float64
	}{
		{0, 0, 0},
		{1, 0, math.Pi / 4},
		{1, 1, math.Pi / 2},
		{-1, 0, 7 * math.Pi / 4},
		{4, 4, 0},
		{-3, -2, 3 * math.Pi / 4},
	}

	for _, tt := range tests {
		g := f.Lookup(tt.vx, tt.vy)
		want := geom.FromAngle(tt.angle)
		assert.InDelta(t, want.X, g.X, 1e-12, "vertex (%d,%d)", tt.vx, tt.vy)
		assert.InDelta(t, want.Y, g.Y, 1e-12, "vertex (%d,%d)", tt.vx, tt.vy)
		assert.InDelta(t, 1.0, g.Length(), 1e-12)
	}
}

func TestMod(t *testing.T) {
	assert.Equal(t, 15, mod(-1, 16))
	assert.Equal(t, 0, mod(-16, 16))
	assert.Equal(t, 3, mod(19, 16))
	assert.Equal(t, 7, mod(-9, 8))
}
