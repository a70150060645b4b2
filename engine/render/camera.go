package render

import (
	"math"

	"github.com/1siamBot/rrt-engine/engine/geom"
)

// Camera is a top-down viewport onto the planar world. World y points up,
// screen y points down.
type Camera struct {
	X, Y    float64 // camera center position (world coords)
	Zoom    float64 // pixels per world unit
	MinZoom float64
	MaxZoom float64
	ScreenW int     // viewport width in pixels
	ScreenH int     // viewport height in pixels
	Speed   float64 // pan speed (pixels per second)
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:    1.0,
		MinZoom: 0.25,
		MaxZoom: 200,
		ScreenW: screenW,
		ScreenH: screenH,
		Speed:   500,
	}
}

// Pan moves the camera by pixel delta (screen directions)
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y -= dy / c.Zoom
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt multiplies the zoom by factor, keeping the world point under the
// screen point fixed
func (c *Camera) ZoomAt(factor float64, screenX, screenY int) {
	before := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom * factor)
	after := c.ScreenToWorld(screenX, screenY)
	c.X += before.X - after.X
	c.Y += before.Y - after.Y
}

// CenterOn centers the camera on a world position
func (c *Camera) CenterOn(p geom.Vec2) {
	c.X, c.Y = p.X, p.Y
}

// FitBounds centers on r and zooms so it fills the viewport, leaving margin
// pixels on every side
func (c *Camera) FitBounds(r geom.Rect, margin int) {
	c.CenterOn(r.Center())
	w := float64(c.ScreenW - 2*margin)
	h := float64(c.ScreenH - 2*margin)
	if r.Empty() || w <= 0 || h <= 0 {
		return
	}
	c.SetZoom(math.Min(w/r.Width(), h/r.Height()))
}

// WorldToScreen converts a world position to screen pixels
func (c *Camera) WorldToScreen(p geom.Vec2) (float32, float32) {
	sx := (p.X-c.X)*c.Zoom + float64(c.ScreenW)/2
	sy := (c.Y-p.Y)*c.Zoom + float64(c.ScreenH)/2
	return float32(sx), float32(sy)
}

// ScreenToWorld converts a screen pixel to world coords
func (c *Camera) ScreenToWorld(sx, sy int) geom.Vec2 {
	return geom.Vec2{
		X: (float64(sx)-float64(c.ScreenW)/2)/c.Zoom + c.X,
		Y: c.Y - (float64(sy)-float64(c.ScreenH)/2)/c.Zoom,
	}
}

// VisibleRect returns the world rectangle covered by the viewport
func (c *Camera) VisibleRect() geom.Rect {
	a := c.ScreenToWorld(0, 0)
	b := c.ScreenToWorld(c.ScreenW, c.ScreenH)
	return geom.R(a.X, b.Y, b.X, a.Y)
}

// Length converts a world distance to pixels
func (c *Camera) Length(d float64) float32 { return float32(d * c.Zoom) }
