package maplib

import (
	"path/filepath"
	"testing"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() *Scene {
	s := NewScene("test", geom.R(0, 0, 100, 100))
	s.AddRect(40, 0, 60, 80)
	s.AddCircle(80, 80, 5)
	return s
}

func TestSceneBlocked(t *testing.T) {
	s := testScene()
	tests := []struct {
		name string
		a, b geom.Vec2
		want bool
	}{
		{"open corridor above wall", geom.V2(10, 90), geom.V2(70, 90), false},
		{"through wall", geom.V2(10, 10), geom.V2(90, 10), true},
		{"ends inside wall", geom.V2(10, 10), geom.V2(50, 10), true},
		{"parallel beside wall", geom.V2(39, 0), geom.V2(39, 100), false},
		{"touching circle", geom.V2(70, 80), geom.V2(90, 80), true},
		{"passing circle", geom.V2(70, 90), geom.V2(90, 90), false},
		{"outside walls", geom.V2(10, 90), geom.V2(-5, 90), true},
		{"zero length", geom.V2(10, 10), geom.V2(10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Blocked(tt.a, tt.b))
			assert.Equal(t, tt.want, s.Blocked(tt.b, tt.a), "blocked must be symmetric")
		})
	}
}

func TestSceneUnwalled(t *testing.T) {
	s := testScene()
	s.Walled = false
	assert.False(t, s.Blocked(geom.V2(10, 90), geom.V2(-5, 90)))
}

func TestSceneOccupancy(t *testing.T) {
	s := testScene()
	assert.True(t, s.Occupied(geom.V2(50, 50)))
	assert.True(t, s.Occupied(geom.V2(82, 82)))
	assert.False(t, s.Occupied(geom.V2(10, 10)))
	assert.True(t, s.OverlapsRect(geom.R(59, 79, 61, 81)))
	assert.True(t, s.OverlapsRect(geom.R(84, 79, 86, 81)))
	assert.False(t, s.OverlapsRect(geom.R(0, 0, 5, 5)))
}

func TestSceneValidate(t *testing.T) {
	s := NewScene("bad", geom.R(0, 0, 0, 10))
	assert.ErrorIs(t, s.Validate(), ErrInvalidScene)

	s = testScene()
	s.Obstacles = append(s.Obstacles, Obstacle{Kind: "hexagon"})
	assert.ErrorIs(t, s.Validate(), ErrInvalidScene)

	s = testScene()
	s.AddCircle(1, 1, 0)
	assert.ErrorIs(t, s.Validate(), ErrInvalidScene)
}

func TestSceneRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := testScene()
	s.Agents = []Spawn{{Position: geom.V2(5, 5), Facing: 1.5}}

	for _, name := range []string{"scene.yaml", "scene.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, s.Save(path))
		loaded, err := LoadScene(path)
		require.NoError(t, err)
		assert.Equal(t, s.Bounds, loaded.Bounds)
		assert.Len(t, loaded.Obstacles, 2)
		assert.True(t, loaded.Walled)
		assert.Equal(t, s.Agents, loaded.Agents)
		assert.True(t, loaded.Blocked(geom.V2(10, 10), geom.V2(90, 10)))
	}
}
