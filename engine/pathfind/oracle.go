package pathfind

import "github.com/1siamBot/rrt-engine/engine/geom"

// Visibility answers whether the straight segment a→b is obstructed.
// Implementations must be pure queries.
type Visibility interface {
	Blocked(a, b geom.Vec2) bool
}

// VisibilityFunc adapts a plain function to Visibility
type VisibilityFunc func(a, b geom.Vec2) bool

func (f VisibilityFunc) Blocked(a, b geom.Vec2) bool { return f(a, b) }

// OpenSpace is a Visibility with no obstacles at all
var OpenSpace Visibility = VisibilityFunc(func(a, b geom.Vec2) bool { return false })

// Visible checks the segment in both directions, so one-sided blockers
// (back-face culled geometry, asymmetric grids) still count.
func Visible(v Visibility, a, b geom.Vec2) bool {
	return !v.Blocked(a, b) && !v.Blocked(b, a)
}
