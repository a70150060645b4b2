package main

import (
	"fmt"
	"log/slog"

	"github.com/1siamBot/rrt-engine/engine/config"
	"github.com/1siamBot/rrt-engine/engine/core"
	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/input"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/metrics"
	"github.com/1siamBot/rrt-engine/engine/orders"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/1siamBot/rrt-engine/engine/render"
	"github.com/1siamBot/rrt-engine/engine/render/overlay"
	"github.com/1siamBot/rrt-engine/engine/systems"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Game implements ebiten.Game interface
type Game struct {
	cfg      config.Config
	scene    *maplib.Scene
	stack    config.Stack
	logger   *slog.Logger
	renderer *overlay.Renderer
	gameLoop *core.GameLoop
	input    *input.InputState
	eventBus *core.EventBus

	agents []core.EntityID // spawn order
	goals  map[core.EntityID]geom.Vec2

	recorder *orders.Log // nil unless recording
	replay   *orders.Log // nil unless replaying
	next     int         // next replay order

	// UI state
	showTrees bool
	showGrid  bool
	snapshots int
}

func NewGame(cfg config.Config, scene *maplib.Scene, m *metrics.Planner, logger *slog.Logger) *Game {
	g := &Game{
		cfg:       cfg,
		scene:     scene,
		stack:     cfg.Build(scene, pathfind.WithLogger(logger), pathfind.WithMetrics(m)),
		logger:    logger,
		renderer:  overlay.NewRenderer(cfg.Viewer.Width, cfg.Viewer.Height),
		gameLoop:  core.NewGameLoop(cfg.Viewer.TickRate),
		input:     input.NewInputState(),
		eventBus:  core.NewEventBus(),
		goals:     make(map[core.EntityID]geom.Vec2),
		showTrees: true,
	}
	g.gameLoop.World.AddSystem(&systems.MovementSystem{Bus: g.eventBus, Oracle: g.stack.Oracle})
	g.renderer.Camera.FitBounds(scene.Bounds, 20)

	g.eventBus.On(core.EvtMoveOrder, func(e core.Event) {
		p := e.Payload.(core.MoveOrderPayload)
		g.logger.Debug("move order", "entity", p.Entity, "goal", p.Goal)
	})
	g.eventBus.On(core.EvtPlanned, func(e core.Event) {
		p := e.Payload.(core.PlannedPayload)
		g.logger.Info("planned", "entity", p.Entity, "waypoints", len(p.Waypoints), "nodes", p.TreeNodes)
	})
	g.eventBus.On(core.EvtArrived, func(e core.Event) {
		p := e.Payload.(core.AgentPayload)
		delete(g.goals, p.Entity)
		g.logger.Info("arrived", "entity", p.Entity, "tick", e.Tick, "at", p.Position)
	})
	g.eventBus.On(core.EvtBlocked, func(e core.Event) {
		p := e.Payload.(core.AgentPayload)
		g.logger.Warn("blocked", "entity", p.Entity, "tick", e.Tick, "at", p.Position)
	})

	g.spawnAgents()
	g.gameLoop.Play()
	return g
}

// spawnAgents places the scene's agents, or one at the center if it has none
func (g *Game) spawnAgents() {
	spawns := g.scene.Agents
	if len(spawns) == 0 {
		spawns = []maplib.Spawn{{Position: g.scene.Bounds.Center()}}
	}
	for _, sp := range spawns {
		pilot := g.stack.Tracker(g.cfg, g.logger)
		g.agents = append(g.agents, systems.SpawnAgent(g.gameLoop.World, sp.Position, sp.Facing, pilot))
	}
}

func (g *Game) Update() error {
	wasDragging := g.input.Dragging
	g.input.Update()
	a := g.input.Actions(wasDragging)

	if a.Quit {
		return ebiten.Termination
	}
	g.handleCamera(a)

	if a.TogglePause {
		g.gameLoop.Toggle()
	}
	if a.ToggleTrees {
		g.showTrees = !g.showTrees
	}
	if a.ToggleGrid {
		g.showGrid = !g.showGrid
	}

	cursor := g.renderer.Camera.ScreenToWorld(g.input.MouseX, g.input.MouseY)
	switch {
	case a.Click:
		g.selectAt(cursor, a.Additive)
	case a.BoxSelect:
		g.selectBox(dragRect(g.input), a.Additive)
	}
	if g.replay == nil {
		if a.MoveOrder && g.scene.Bounds.Contains(cursor) {
			g.orderSelected(orders.Order{Kind: orders.KindMove, Goal: cursor})
		}
		if a.Stop {
			g.orderSelected(orders.Order{Kind: orders.KindStop})
		}
		if a.Replan {
			for i, id := range g.agents {
				if goal, ok := g.goals[id]; ok {
					g.issue(orders.Order{Agent: uint32(i), Kind: orders.KindMove, Goal: goal})
				}
			}
		}
	} else {
		g.playback()
	}
	if a.Snapshot {
		g.saveSnapshot()
	}

	g.gameLoop.Update()
	g.eventBus.Dispatch()
	return nil
}

func (g *Game) handleCamera(a input.Actions) {
	cam := g.renderer.Camera
	speed := cam.Speed / float64(ebiten.TPS())
	if a.Fast {
		speed *= 3
	}
	cam.Pan(float64(a.PanX)*speed, float64(-a.PanY)*speed)
	if a.DragX != 0 || a.DragY != 0 {
		cam.Pan(float64(-a.DragX), float64(-a.DragY))
	}
	if a.Zoom != 1 {
		cam.ZoomAt(a.Zoom, g.input.MouseX, g.input.MouseY)
	}
}

func dragRect(s *input.InputState) [4]int {
	return [4]int{s.DragStartX, s.DragStartY, s.MouseX, s.MouseY}
}

func (g *Game) selectAt(p geom.Vec2, additive bool) {
	w := g.gameLoop.World
	for _, id := range w.Query(core.CompPosition, core.CompSelectable) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		sel := w.Get(id, core.CompSelectable).(*core.Selectable)
		hit := pos.Vec().Dist(p) <= sel.Radius*1.5
		if hit {
			sel.Selected = !additive || !sel.Selected
		} else if !additive {
			sel.Selected = false
		}
	}
}

func (g *Game) selectBox(r [4]int, additive bool) {
	a := g.renderer.Camera.ScreenToWorld(r[0], r[1])
	b := g.renderer.Camera.ScreenToWorld(r[2], r[3])
	box := geom.R(min(a.X, b.X), min(a.Y, b.Y), max(a.X, b.X), max(a.Y, b.Y))

	w := g.gameLoop.World
	for _, id := range w.Query(core.CompPosition, core.CompSelectable) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		sel := w.Get(id, core.CompSelectable).(*core.Selectable)
		if box.Contains(pos.Vec()) {
			sel.Selected = true
		} else if !additive {
			sel.Selected = false
		}
	}
}

// orderSelected gives o to every selected agent
func (g *Game) orderSelected(o orders.Order) {
	w := g.gameLoop.World
	for i, id := range g.agents {
		if sel, ok := w.Get(id, core.CompSelectable).(*core.Selectable); ok && sel.Selected {
			o.Agent = uint32(i)
			g.issue(o)
		}
	}
}

// issue applies an order at the current tick and records it
func (g *Game) issue(o orders.Order) {
	if int(o.Agent) >= len(g.agents) {
		g.logger.Warn("order for unknown agent", "agent", o.Agent, "kind", o.Kind)
		return
	}
	id := g.agents[o.Agent]
	w := g.gameLoop.World
	switch o.Kind {
	case orders.KindMove:
		if !systems.OrderMove(w, g.eventBus, id, o.Goal) {
			return
		}
		g.goals[id] = o.Goal
	case orders.KindStop:
		if mov, ok := w.Get(id, core.CompMovable).(*core.Movable); ok && mov.Pilot != nil {
			mov.Pilot.Stop()
			mov.VX, mov.VY = 0, 0
		}
		delete(g.goals, id)
	}

	if g.recorder != nil {
		o.Tick = g.gameLoop.CurrentTick()
		if err := g.recorder.Record(o); err != nil {
			g.logger.Error("record order failed", "error", err)
		}
	}
}

// playback issues every replayed order that is due
func (g *Game) playback() {
	tick := g.gameLoop.CurrentTick()
	for g.next < len(g.replay.Orders) && g.replay.Orders[g.next].Tick <= tick {
		g.issue(g.replay.Orders[g.next])
		g.next++
	}
}

// saveSnapshot writes the scene with every agent's tree and remaining path
func (g *Game) saveSnapshot() {
	s := render.NewSnapshot(g.scene.Bounds, g.cfg.Viewer.Width, g.cfg.Viewer.Height)
	s.Scene(g.scene)
	w := g.gameLoop.World
	for _, id := range w.Query(core.CompPosition, core.CompMovable) {
		pos := w.Get(id, core.CompPosition).(*core.Position)
		mov := w.Get(id, core.CompMovable).(*core.Movable)
		if mov.Pilot == nil {
			continue
		}
		if t := mov.Pilot.Tree(); t != nil && g.showTrees {
			s.Tree(t)
		}
		s.Path(append([]geom.Vec2{pos.Vec()}, mov.Pilot.Waypoints()...))
	}
	for _, goal := range g.goals {
		s.Goal(goal)
	}

	g.snapshots++
	out := fmt.Sprintf("snapshot-%03d.png", g.snapshots)
	if err := s.SavePNG(out); err != nil {
		g.logger.Error("snapshot failed", "error", err)
		return
	}
	g.logger.Info("saved snapshot", "path", out)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.DrawScene(screen, g.scene)
	if ng, ok := g.stack.Oracle.(*pathfind.NavGrid); ok && g.showGrid {
		g.renderer.DrawNavGrid(screen, ng)
	}
	g.renderer.DrawAgents(screen, g.gameLoop.World, g.showTrees)
	for _, goal := range g.goals {
		g.renderer.DrawGoal(screen, goal)
	}
	if x1, y1, x2, y2, ok := g.input.DragRect(); ok {
		g.renderer.DrawSelectionBox(screen, x1, y1, x2, y2)
	}

	status := "running"
	if g.gameLoop.State == core.StatePaused {
		status = "paused"
	}
	cursor := g.renderer.Camera.ScreenToWorld(g.input.MouseX, g.input.MouseY)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s | tick %d | agents %d | cursor (%.1f, %.1f) | FPS %.0f",
		status, g.gameLoop.CurrentTick(), g.gameLoop.World.EntityCount(), cursor.X, cursor.Y, ebiten.ActualFPS()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.renderer.Camera.ScreenW = outsideWidth
	g.renderer.Camera.ScreenH = outsideHeight
	return outsideWidth, outsideHeight
}
