// Package overlay draws the scene, planning trees and agents with ebiten.
package overlay

import (
	"image/color"

	"github.com/1siamBot/rrt-engine/engine/core"
	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/1siamBot/rrt-engine/engine/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Renderer draws a read-only view of the scene, planning trees and agents
type Renderer struct {
	Camera  *render.Camera
	Palette render.Palette
}

// NewRenderer creates a renderer with the default palette
func NewRenderer(screenW, screenH int) *Renderer {
	return &Renderer{Camera: render.NewCamera(screenW, screenH), Palette: render.DefaultPalette}
}

func (r *Renderer) line(dst *ebiten.Image, a, b geom.Vec2, width float32, clr color.Color) {
	x0, y0 := r.Camera.WorldToScreen(a)
	x1, y1 := r.Camera.WorldToScreen(b)
	vector.StrokeLine(dst, x0, y0, x1, y1, width, clr, true)
}

// DrawScene draws the bounds and obstacles
func (r *Renderer) DrawScene(screen *ebiten.Image, s *maplib.Scene) {
	screen.Fill(r.Palette.Background)

	b := s.Bounds
	corners := []geom.Vec2{b.Min, geom.V2(b.Max.X, b.Min.Y), b.Max, geom.V2(b.Min.X, b.Max.Y)}
	for i := range corners {
		r.line(screen, corners[i], corners[(i+1)%4], 2, r.Palette.Bounds)
	}

	for _, o := range s.Obstacles {
		switch o.Kind {
		case maplib.ObstacleRect:
			// top-left on screen is (min x, max y) in world
			x, y := r.Camera.WorldToScreen(geom.V2(o.Min.X, o.Max.Y))
			w := r.Camera.Length(o.Max.X - o.Min.X)
			h := r.Camera.Length(o.Max.Y - o.Min.Y)
			vector.DrawFilledRect(screen, x, y, w, h, r.Palette.Obstacle, false)
		case maplib.ObstacleCircle:
			cx, cy := r.Camera.WorldToScreen(o.Center)
			vector.DrawFilledCircle(screen, cx, cy, r.Camera.Length(o.Radius), r.Palette.Obstacle, true)
		}
	}
}

// DrawNavGrid shades the blocked cells of an occupancy grid
func (r *Renderer) DrawNavGrid(screen *ebiten.Image, ng *pathfind.NavGrid) {
	size := r.Camera.Length(ng.Cell)
	for y := 0; y < ng.Height; y++ {
		for x := 0; x < ng.Width; x++ {
			if ng.Passable(x, y) {
				continue
			}
			top := ng.Origin.Add(geom.V2(float64(x)*ng.Cell, float64(y+1)*ng.Cell))
			sx, sy := r.Camera.WorldToScreen(top)
			vector.DrawFilledRect(screen, sx, sy, size, size, r.Palette.GridCell, false)
		}
	}
}

// DrawTree draws every tree edge
func (r *Renderer) DrawTree(screen *ebiten.Image, t *pathfind.Tree[geom.Vec2]) {
	if t == nil {
		return
	}
	for _, n := range t.Nodes() {
		if n.Parent != nil {
			r.line(screen, n.Parent.Pos, n.Pos, 1, r.Palette.TreeEdge)
		}
	}
}

// DrawPath draws the remaining waypoints starting from the agent position
func (r *Renderer) DrawPath(screen *ebiten.Image, from geom.Vec2, waypoints []geom.Vec2) {
	prev := from
	for _, wp := range waypoints {
		r.line(screen, prev, wp, 2, r.Palette.Path)
		sx, sy := r.Camera.WorldToScreen(wp)
		vector.DrawFilledCircle(screen, sx, sy, 3, r.Palette.Waypoint, true)
		prev = wp
	}
}

// DrawGoal marks a goal position
func (r *Renderer) DrawGoal(screen *ebiten.Image, goal geom.Vec2) {
	sx, sy := r.Camera.WorldToScreen(goal)
	vector.StrokeCircle(screen, sx, sy, 6, 2, r.Palette.Goal, true)
}

// DrawAgents draws trails, planned trees, paths and bodies of all agents
func (r *Renderer) DrawAgents(screen *ebiten.Image, w *core.World, showTrees bool) {
	for _, id := range w.Query(core.CompPosition) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		p := pos.Vec()

		if tr, ok := w.Get(id, core.CompTrail).(*core.Trail); ok {
			for i := 1; i < len(tr.Points); i++ {
				r.line(screen, tr.Points[i-1], tr.Points[i], 1, r.Palette.Trail)
			}
		}
		if mov, ok := w.Get(id, core.CompMovable).(*core.Movable); ok && mov.Pilot != nil {
			if showTrees {
				r.DrawTree(screen, mov.Pilot.Tree())
			}
			r.DrawPath(screen, p, mov.Pilot.Waypoints())
		}

		radius := 0.5
		if sel, ok := w.Get(id, core.CompSelectable).(*core.Selectable); ok {
			radius = sel.Radius
			if sel.Selected {
				sx, sy := r.Camera.WorldToScreen(p)
				vector.StrokeCircle(screen, sx, sy, r.Camera.Length(radius)+4, 2, r.Palette.Selected, true)
			}
		}
		sx, sy := r.Camera.WorldToScreen(p)
		vector.DrawFilledCircle(screen, sx, sy, r.Camera.Length(radius), r.Palette.Agent, true)
		r.line(screen, p, p.Add(geom.FromAngle(pos.Facing).Scale(radius*2)), 2, color.White)
	}
}

// DrawSelectionBox draws a selection rectangle on screen
func (r *Renderer) DrawSelectionBox(screen *ebiten.Image, x1, y1, x2, y2 int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	selColor := color.RGBA{0, 255, 0, 128}
	fillColor := color.RGBA{0, 255, 0, 30}

	vector.DrawFilledRect(screen, float32(x1), float32(y1), float32(x2-x1), float32(y2-y1), fillColor, false)

	// Border
	vector.StrokeLine(screen, float32(x1), float32(y1), float32(x2), float32(y1), 1, selColor, false)
	vector.StrokeLine(screen, float32(x2), float32(y1), float32(x2), float32(y2), 1, selColor, false)
	vector.StrokeLine(screen, float32(x2), float32(y2), float32(x1), float32(y2), 1, selColor, false)
	vector.StrokeLine(screen, float32(x1), float32(y2), float32(x1), float32(y1), 1, selColor, false)
}
