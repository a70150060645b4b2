package pathfind

import (
	"math"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
)

// NavGrid is an occupancy grid rasterized from a scene. It answers
// visibility queries by walking the cells a segment crosses, which is
// cheaper than exact geometry on obstacle-heavy scenes.
type NavGrid struct {
	Width, Height int
	Cell          float64   // cell edge length in world units
	Origin        geom.Vec2 // world position of cell (0,0)'s lower-left corner
	blocked       []bool
}

// NewNavGrid rasterizes a scene; a cell is blocked if any obstacle overlaps it
func NewNavGrid(s *maplib.Scene, cell float64) *NavGrid {
	if cell <= 0 {
		cell = 1
	}
	w := int(math.Ceil(s.Bounds.Width() / cell))
	h := int(math.Ceil(s.Bounds.Height() / cell))
	ng := &NavGrid{
		Width:   w,
		Height:  h,
		Cell:    cell,
		Origin:  s.Bounds.Min,
		blocked: make([]bool, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ng.blocked[y*w+x] = s.OverlapsRect(ng.cellRect(x, y))
		}
	}
	return ng
}

func (ng *NavGrid) cellRect(x, y int) geom.Rect {
	lo := ng.Origin.Add(geom.V2(float64(x)*ng.Cell, float64(y)*ng.Cell))
	return geom.Rect{Min: lo, Max: lo.Add(geom.V2(ng.Cell, ng.Cell))}
}

// CellOf returns the cell containing p (may be out of range)
func (ng *NavGrid) CellOf(p geom.Vec2) (int, int) {
	d := p.Sub(ng.Origin)
	x := int(math.Floor(d.X / ng.Cell))
	y := int(math.Floor(d.Y / ng.Cell))
	// points on the far edge belong to the last cell
	if x == ng.Width && d.X <= float64(ng.Width)*ng.Cell {
		x--
	}
	if y == ng.Height && d.Y <= float64(ng.Height)*ng.Cell {
		y--
	}
	return x, y
}

// Passable checks if a cell is inside the grid and free
func (ng *NavGrid) Passable(x, y int) bool {
	if x < 0 || y < 0 || x >= ng.Width || y >= ng.Height {
		return false
	}
	return !ng.blocked[y*ng.Width+x]
}

// SetBlocked marks a cell as blocked or free
func (ng *NavGrid) SetBlocked(x, y int, blocked bool) {
	if x >= 0 && y >= 0 && x < ng.Width && y < ng.Height {
		ng.blocked[y*ng.Width+x] = blocked
	}
}

// Blocked implements Visibility
func (ng *NavGrid) Blocked(a, b geom.Vec2) bool {
	ax, ay := ng.CellOf(a)
	bx, by := ng.CellOf(b)
	return !ng.lineOfSight(ax, ay, bx, by)
}

// lineOfSight walks the Bresenham line between two cells
func (ng *NavGrid) lineOfSight(x0, y0, x1, y1 int) bool {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	x, y := x0, y0
	for {
		if !ng.Passable(x, y) {
			return false
		}
		if x == x1 && y == y1 {
			return true
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
