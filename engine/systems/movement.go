package systems

import (
	"math"

	"github.com/1siamBot/rrt-engine/engine/core"
	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
)

// MovementSystem drives every agent with its tracker and integrates
// unicycle kinematics. Moves the oracle rejects are dropped and the agent
// stays where it was.
type MovementSystem struct {
	Bus    *core.EventBus
	Oracle pathfind.Visibility // nil = no collision checks
}

func (s *MovementSystem) Priority() int { return 10 }

func (s *MovementSystem) Update(w *core.World, dt float64) {
	for _, id := range w.Query(core.CompPosition, core.CompMovable) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		mov := w.Get(id, core.CompMovable).(*core.Movable)
		if mov.Pilot == nil {
			continue
		}

		cmd, arrived := mov.Pilot.Tick(pos.Pose(), mov.Velocity(), dt)
		if arrived {
			mov.VX, mov.VY = 0, 0
			s.emit(w, core.EvtArrived, core.AgentPayload{Entity: id, Position: pos.Vec()})
			continue
		}

		pos.Facing = normalizeAngle(pos.Facing + cmd.TurnRate*dt)
		vel := geom.FromAngle(pos.Facing).Scale(cmd.Forward)
		next := pos.Vec().Add(vel.Scale(dt))
		if s.Oracle != nil && !pathfind.Visible(s.Oracle, pos.Vec(), next) {
			mov.VX, mov.VY = 0, 0
			s.emit(w, core.EvtBlocked, core.AgentPayload{Entity: id, Position: pos.Vec()})
			continue
		}
		pos.X, pos.Y = next.X, next.Y
		mov.VX, mov.VY = vel.X, vel.Y

		if tr, ok := w.Get(id, core.CompTrail).(*core.Trail); ok {
			tr.Push(next)
		}
	}
}

func (s *MovementSystem) emit(w *core.World, t core.EventType, payload core.AgentPayload) {
	if s.Bus == nil {
		return
	}
	s.Bus.Emit(core.Event{Type: t, Tick: w.TickCount, Payload: payload})
}

// normalizeAngle wraps a heading into (-π, π]
func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// OrderMove plans a path for an entity to goal and starts following it.
// Returns false if the entity cannot move.
func OrderMove(w *core.World, bus *core.EventBus, id core.EntityID, goal geom.Vec2) bool {
	pos, ok := w.Get(id, core.CompPosition).(*core.Position)
	if !ok {
		return false
	}
	mov, ok := w.Get(id, core.CompMovable).(*core.Movable)
	if !ok || mov.Pilot == nil {
		return false
	}
	if bus != nil {
		bus.Emit(core.Event{Type: core.EvtMoveOrder, Tick: w.TickCount, Payload: core.MoveOrderPayload{Entity: id, Goal: goal}})
	}
	wps := mov.Pilot.MoveOrder(pos.Pose(), mov.Velocity(), goal)
	if bus != nil {
		nodes := 0
		if tree := mov.Pilot.Tree(); tree != nil {
			nodes = tree.Len()
		}
		bus.Emit(core.Event{Type: core.EvtPlanned, Tick: w.TickCount, Payload: core.PlannedPayload{Entity: id, Waypoints: wps, TreeNodes: nodes}})
	}
	return true
}
