package core

import (
	"math"

	"github.com/1siamBot/rrt-engine/engine/control"
	"github.com/1siamBot/rrt-engine/engine/geom"
)

// ---- Position & Transform ----

// Position is a world position with a heading
type Position struct {
	X, Y   float64 // world units, y up
	Facing float64 // direction in radians (0 = east, π/2 = north)
}

func (p *Position) Type() ComponentType { return CompPosition }

func (p *Position) Vec() geom.Vec2 { return geom.V2(p.X, p.Y) }

// Pose returns the controller view of the position
func (p *Position) Pose() control.Pose {
	return control.Pose{Position: p.Vec(), Heading: p.Facing}
}

// DistanceTo returns euclidean distance to another position
func (p *Position) DistanceTo(other *Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AngleTo returns the angle from this position to another
func (p *Position) AngleTo(other *Position) float64 {
	return math.Atan2(other.Y-p.Y, other.X-p.X)
}

// ---- Movement ----

// Movable is an agent driven by a path tracker
type Movable struct {
	VX, VY float64 // velocity from the last tick
	Pilot  *control.Tracker
}

func (m *Movable) Type() ComponentType { return CompMovable }

func (m *Movable) Velocity() geom.Vec2 { return geom.V2(m.VX, m.VY) }

// Speed is the magnitude of the current velocity
func (m *Movable) Speed() float64 { return math.Hypot(m.VX, m.VY) }

// ---- Selection ----

// Selectable marks an entity as selectable in the viewer
type Selectable struct {
	Selected bool
	Radius   float64 // selection hitbox radius
}

func (s *Selectable) Type() ComponentType { return CompSelectable }

// ---- Trail ----

// Trail keeps the most recent positions of an agent for drawing
type Trail struct {
	Points []geom.Vec2
	Max    int // 0 = unbounded
}

func (t *Trail) Type() ComponentType { return CompTrail }

// Push appends p, dropping the oldest point past Max
func (t *Trail) Push(p geom.Vec2) {
	t.Points = append(t.Points, p)
	if t.Max > 0 && len(t.Points) > t.Max {
		t.Points = t.Points[len(t.Points)-t.Max:]
	}
}
