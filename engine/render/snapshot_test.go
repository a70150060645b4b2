package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertColorNear(t *testing.T, want color.RGBA, got color.Color) {
	t.Helper()
	c := color.RGBAModel.Convert(got).(color.RGBA)
	assert.InDelta(t, want.R, c.R, 3, "red")
	assert.InDelta(t, want.G, c.G, 3, "green")
	assert.InDelta(t, want.B, c.B, 3, "blue")
}

func TestSnapshotDrawsScene(t *testing.T) {
	scene := maplib.NewScene("box", geom.R(0, 0, 100, 100))
	scene.AddRect(40, 40, 60, 60)
	scene.AddCircle(20, 80, 5)

	tr := pathfind.NewTree(geom.V2(10, 10), geom.Vec2{}, scene)
	_, err := tr.Insert(geom.V2(30, 10), tr.Root, 20, geom.Vec2{})
	require.NoError(t, err)

	s := NewSnapshot(scene.Bounds, 200, 200)
	s.Scene(scene)
	s.Tree(tr)
	s.Path([]geom.Vec2{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 90, Y: 90}})
	s.Goal(geom.V2(90, 90))

	img := s.Image()
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())

	pixel := func(p geom.Vec2) color.Color {
		x, y := s.cam.WorldToScreen(p)
		return img.At(int(x)/snapshotSupersample, int(y)/snapshotSupersample)
	}
	assertColorNear(t, DefaultPalette.Obstacle, pixel(geom.V2(50, 50)))
	assertColorNear(t, DefaultPalette.Obstacle, pixel(geom.V2(20, 80)))
	assertColorNear(t, DefaultPalette.Background, pixel(geom.V2(75, 25)))
	assertColorNear(t, DefaultPalette.Background, img.At(2, 2))
	assertColorNear(t, DefaultPalette.Goal, pixel(geom.V2(90, 90)))
}

func TestSnapshotPNG(t *testing.T) {
	s := NewSnapshot(geom.R(0, 0, 10, 5), 64, 32)
	var buf bytes.Buffer
	require.NoError(t, s.WritePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	out := filepath.Join(t.TempDir(), "plan.png")
	require.NoError(t, s.SavePNG(out))
	assert.FileExists(t, out)
}
