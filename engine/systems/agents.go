package systems

import (
	"github.com/1siamBot/rrt-engine/engine/control"
	"github.com/1siamBot/rrt-engine/engine/core"
	"github.com/1siamBot/rrt-engine/engine/geom"
)

// trailLength is how many past positions the viewer draws per agent
const trailLength = 600

// SpawnAgent creates a selectable agent driven by pilot
func SpawnAgent(w *core.World, at geom.Vec2, facing float64, pilot *control.Tracker) core.EntityID {
	id := w.Spawn()
	w.Attach(id, &core.Position{X: at.X, Y: at.Y, Facing: facing})
	w.Attach(id, &core.Movable{Pilot: pilot})
	w.Attach(id, &core.Selectable{Radius: 1})
	w.Attach(id, &core.Trail{Max: trailLength})
	return id
}
