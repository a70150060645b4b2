package core

import "time"

// LoopState tells whether the simulation advances
type LoopState uint8

const (
	StatePaused LoopState = iota
	StateRunning
)

// maxFrameTime caps one frame's catch-up work
const maxFrameTime = 0.25

// GameLoop runs the world at a fixed timestep
type GameLoop struct {
	World       *World
	State       LoopState
	TickRate    float64 // fixed ticks per second
	accumulator float64
	lastTime    time.Time
}

// NewGameLoop creates a paused loop with fixed tick rate
func NewGameLoop(tickRate float64) *GameLoop {
	return &GameLoop{
		World:    NewWorld(tickRate),
		TickRate: tickRate,
		lastTime: time.Now(),
	}
}

// Update should be called every render frame. It measures wall time and
// runs the simulation at fixed timestep.
// Returns the interpolation alpha for smooth rendering.
func (gl *GameLoop) Update() float64 {
	now := time.Now()
	frameTime := now.Sub(gl.lastTime).Seconds()
	gl.lastTime = now
	return gl.Advance(frameTime)
}

// Advance feeds frameTime seconds into the accumulator and runs as many
// fixed ticks as fit. It is the deterministic core of Update.
func (gl *GameLoop) Advance(frameTime float64) float64 {
	// Cap frame time to avoid spiral of death
	if frameTime > maxFrameTime {
		frameTime = maxFrameTime
	}

	dt := 1.0 / gl.TickRate
	gl.accumulator += frameTime

	for gl.accumulator >= dt {
		if gl.State == StateRunning {
			gl.World.Tick(dt)
		}
		gl.accumulator -= dt
	}

	return gl.accumulator / dt
}

// Play starts or resumes the simulation
func (gl *GameLoop) Play() {
	gl.State = StateRunning
	gl.lastTime = time.Now()
}

// Pause freezes the simulation
func (gl *GameLoop) Pause() {
	gl.State = StatePaused
}

// Toggle switches between running and paused
func (gl *GameLoop) Toggle() {
	if gl.State == StateRunning {
		gl.Pause()
	} else {
		gl.Play()
	}
}

// CurrentTick returns the current simulation tick
func (gl *GameLoop) CurrentTick() uint64 {
	return gl.World.TickCount
}
