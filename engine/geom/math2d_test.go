package geom

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignedAngle(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec2
		want     float64
	}{
		{"aligned", V2(1, 0), V2(3, 0), 0},
		{"quarter left", V2(1, 0), V2(0, 1), math.Pi / 2},
		{"quarter right", V2(1, 0), V2(0, -1), -math.Pi / 2},
		{"behind", V2(1, 0), V2(-1, 0), math.Pi},
		{"zero vector", V2(0, 0), V2(1, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SignedAngle(tt.from, tt.to), 1e-9)
		})
	}
}

func TestVecOps(t *testing.T) {
	v := V2(3, 4)
	assert.InDelta(t, 5.0, v.Len(), 1e-12)
	assert.InDelta(t, 1.0, v.Normalize().Len(), 1e-12)
	assert.Equal(t, Vec2{}, Vec2{}.Normalize())
	assert.Equal(t, V2(-4, 3), v.Perp())
	assert.InDelta(t, 0, V2(1, 0).Rotate(math.Pi/2).X, 1e-12)
	assert.InDelta(t, 1, V2(1, 0).Rotate(math.Pi/2).Y, 1e-12)
	assert.InDelta(t, 2.5, v.ClampLen(2.5).Len(), 1e-12)
	assert.Equal(t, v, v.ClampLen(10))
	assert.Equal(t, 1.0, Sign(0))
	assert.Equal(t, -1.0, Sign(-0.1))
}

func TestRect(t *testing.T) {
	r := R(0, 0, 100, 50)
	assert.True(t, r.Contains(V2(100, 50)))
	assert.False(t, r.Contains(V2(100.1, 10)))
	assert.True(t, r.Intersects(R(90, 40, 200, 200)))
	assert.False(t, r.Intersects(R(101, 0, 200, 10)))
	assert.True(t, R(1, 1, 1, 5).Empty())

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		assert.True(t, r.Contains(r.Sample(rng)))
	}
}
