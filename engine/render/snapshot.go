package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

const (
	snapshotSupersample = 2
	snapshotMargin      = 10 // pixels, before supersampling
	circleSegments      = 24
)

// Snapshot renders a plan to an in-memory image without a window. Shapes
// are rasterized at twice the output size and downsampled for antialiasing.
type Snapshot struct {
	Palette Palette

	width, height int
	cam           *Camera
	img           *image.RGBA
}

// NewSnapshot creates a width x height canvas framing bounds
func NewSnapshot(bounds geom.Rect, width, height int) *Snapshot {
	ss := snapshotSupersample
	cam := NewCamera(width*ss, height*ss)
	cam.MaxZoom = math.Inf(1)
	cam.MinZoom = 0
	cam.FitBounds(bounds, snapshotMargin*ss)

	s := &Snapshot{
		Palette: DefaultPalette,
		width:   width,
		height:  height,
		cam:     cam,
		img:     image.NewRGBA(image.Rect(0, 0, width*ss, height*ss)),
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.Palette.Background), image.Point{}, draw.Src)
	return s
}

// fill rasterizes everything build adds as one layer of clr. Shapes must
// wind counter-clockwise so overlaps add up instead of cancelling.
func (s *Snapshot) fill(clr color.Color, build func(z *vector.Rasterizer)) {
	b := s.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	build(z)
	z.Draw(s.img, b, image.NewUniform(clr), image.Point{})
}

func (s *Snapshot) screen(p geom.Vec2) (float32, float32) { return s.cam.WorldToScreen(p) }

// segment adds a stroke of width pixels (supersampled) from a to b
func (s *Snapshot) segment(z *vector.Rasterizer, a, b geom.Vec2, width float64) {
	ax, ay := s.screen(a)
	bx, by := s.screen(b)
	d := geom.V2(float64(bx-ax), float64(by-ay))
	if d.IsZero() {
		return
	}
	n := d.Perp().Normalize().Scale(width * snapshotSupersample / 2)
	nx, ny := float32(n.X), float32(n.Y)
	z.MoveTo(ax+nx, ay+ny)
	z.LineTo(ax-nx, ay-ny)
	z.LineTo(bx-nx, by-ny)
	z.LineTo(bx+nx, by+ny)
	z.ClosePath()
}

// disc adds a filled circle of radius px pixels (output scale) around c
func (s *Snapshot) disc(z *vector.Rasterizer, c geom.Vec2, px float64) {
	cx, cy := s.screen(c)
	r := px * snapshotSupersample
	for i := 0; i < circleSegments; i++ {
		sn, cs := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
		x, y := cx+float32(r*cs), cy+float32(r*sn)
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

func (s *Snapshot) box(z *vector.Rasterizer, lo, hi geom.Vec2) {
	x0, y1 := s.screen(lo)
	x1, y0 := s.screen(hi)
	z.MoveTo(x0, y0)
	z.LineTo(x1, y0)
	z.LineTo(x1, y1)
	z.LineTo(x0, y1)
	z.ClosePath()
}

// Scene draws the bounds and obstacles
func (s *Snapshot) Scene(sc *maplib.Scene) {
	b := sc.Bounds
	corners := []geom.Vec2{b.Min, geom.V2(b.Max.X, b.Min.Y), b.Max, geom.V2(b.Min.X, b.Max.Y)}
	s.fill(s.Palette.Bounds, func(z *vector.Rasterizer) {
		for i := range corners {
			s.segment(z, corners[i], corners[(i+1)%4], 1.5)
		}
	})
	s.fill(s.Palette.Obstacle, func(z *vector.Rasterizer) {
		for _, o := range sc.Obstacles {
			switch o.Kind {
			case maplib.ObstacleRect:
				s.box(z, o.Min, o.Max)
			case maplib.ObstacleCircle:
				s.disc(z, o.Center, o.Radius*s.cam.Zoom/snapshotSupersample)
			}
		}
	})
}

// Tree draws every edge of a planning tree
func (s *Snapshot) Tree(t *pathfind.Tree[geom.Vec2]) {
	s.fill(s.Palette.TreeEdge, func(z *vector.Rasterizer) {
		for _, n := range t.Nodes() {
			if n.Parent != nil {
				s.segment(z, n.Parent.Pos, n.Pos, 0.75)
			}
		}
	})
}

// Path draws a waypoint polyline with its vertices
func (s *Snapshot) Path(path []geom.Vec2) {
	s.fill(s.Palette.Path, func(z *vector.Rasterizer) {
		for i := 1; i < len(path); i++ {
			s.segment(z, path[i-1], path[i], 2)
		}
	})
	s.fill(s.Palette.Waypoint, func(z *vector.Rasterizer) {
		for _, p := range path {
			s.disc(z, p, 2.5)
		}
	})
}

// Goal marks a goal position
func (s *Snapshot) Goal(p geom.Vec2) {
	s.fill(s.Palette.Goal, func(z *vector.Rasterizer) { s.disc(z, p, 4) })
}

// Image returns the downsampled result
func (s *Snapshot) Image() image.Image {
	out := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	xdraw.CatmullRom.Scale(out, out.Bounds(), s.img, s.img.Bounds(), xdraw.Src, nil)
	return out
}

// WritePNG encodes the image as PNG
func (s *Snapshot) WritePNG(w io.Writer) error {
	return png.Encode(w, s.Image())
}

// SavePNG writes the image to a file
func (s *Snapshot) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
