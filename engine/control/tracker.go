package control

import (
	"log/slog"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/logging"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
)

// DefaultArrivalTolerance is the distance at which a waypoint counts as reached
const DefaultArrivalTolerance = 1.0

// State of a Tracker
type State uint8

const (
	Idle State = iota
	Moving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	}
	return "unknown"
}

// PathPlanner produces waypoints for a move order. *pathfind.Planner
// implements it.
type PathPlanner interface {
	PlanPath(start, startVel, goal geom.Vec2) ([]geom.Vec2, *pathfind.Tree[geom.Vec2])
}

// Tracker follows a waypoint list for one agent. It is either Idle with no
// waypoints or Moving toward the first one; a new order always replaces the
// list.
type Tracker struct {
	Model     Model
	Planner   PathPlanner
	Tolerance float64 // arrival radius; 0 = DefaultArrivalTolerance
	Logger    *slog.Logger

	state     State
	waypoints []geom.Vec2
	tree      *pathfind.Tree[geom.Vec2]
	elapsed   float64
}

// NewTracker creates an idle tracker
func NewTracker(model Model, planner PathPlanner) *Tracker {
	return &Tracker{Model: model, Planner: planner, Tolerance: DefaultArrivalTolerance}
}

func (t *Tracker) State() State { return t.state }

// Waypoints returns the remaining waypoints; the slice must not be modified
func (t *Tracker) Waypoints() []geom.Vec2 { return t.waypoints }

// Tree returns the tree of the last move order, or nil
func (t *Tracker) Tree() *pathfind.Tree[geom.Vec2] { return t.tree }

// Elapsed is the simulated time spent moving since the last order
func (t *Tracker) Elapsed() float64 { return t.elapsed }

// SetWaypoints replaces the list. An empty list leaves the tracker idle.
func (t *Tracker) SetWaypoints(wps []geom.Vec2) {
	t.waypoints = append(t.waypoints[:0:0], wps...)
	t.elapsed = 0
	if len(t.waypoints) > 0 {
		t.state = Moving
	} else {
		t.state = Idle
	}
}

// MoveOrder plans from the current pose to goal and follows the result
func (t *Tracker) MoveOrder(pose Pose, velocity, goal geom.Vec2) []geom.Vec2 {
	if t.Planner == nil {
		t.tree = nil
		t.SetWaypoints([]geom.Vec2{goal})
		return t.waypoints
	}
	path, tree := t.Planner.PlanPath(pose.Position, velocity, goal)
	t.tree = tree
	t.SetWaypoints(path)
	t.logger().Debug("move order",
		"from", pose.Position,
		"goal", goal,
		"waypoints", len(path),
		"tree_nodes", tree.Len(),
	)
	return t.waypoints
}

// Stop drops the current waypoints
func (t *Tracker) Stop() { t.SetWaypoints(nil) }

// Tick advances the tracker by dt. Every waypoint within tolerance is
// popped first; arrived is true on the tick the list runs out.
func (t *Tracker) Tick(pose Pose, velocity geom.Vec2, dt float64) (cmd Command, arrived bool) {
	if t.state != Moving {
		return Command{}, false
	}
	t.elapsed += dt

	tol := t.Tolerance
	if tol <= 0 {
		tol = DefaultArrivalTolerance
	}
	for len(t.waypoints) > 0 && pose.Position.Dist(t.waypoints[0]) < tol {
		t.waypoints = t.waypoints[1:]
	}
	if len(t.waypoints) == 0 {
		t.state = Idle
		t.logger().Debug("arrived", "position", pose.Position, "elapsed", t.elapsed)
		return Command{}, true
	}
	return t.Model.Command(pose, velocity.Len(), t.waypoints[0]), false
}

func (t *Tracker) logger() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}
