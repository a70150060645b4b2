package pathfind

import (
	"math"

	"github.com/1siamBot/rrt-engine/engine/geom"
)

// AccelerationLaw decides how a simulated agent at pos with velocity vel
// accelerates toward target. limit is the law's actuation bound (max
// acceleration or max turn rate, depending on the model).
type AccelerationLaw interface {
	Acceleration(pos, vel, target geom.Vec2, limit float64) geom.Vec2
}

// AccelerationFunc adapts a plain function to AccelerationLaw
type AccelerationFunc func(pos, vel, target geom.Vec2, limit float64) geom.Vec2

func (f AccelerationFunc) Acceleration(pos, vel, target geom.Vec2, limit float64) geom.Vec2 {
	return f(pos, vel, target, limit)
}

// DoubleIntegrator is a PD law toward the target for a point mass with
// bounded acceleration (limit = max acceleration)
type DoubleIntegrator struct {
	Kp float64
	Kd float64
}

// DefaultDoubleIntegrator is critically damped for unit gain
var DefaultDoubleIntegrator = DoubleIntegrator{Kp: 1, Kd: 2}

func (d DoubleIntegrator) Acceleration(pos, vel, target geom.Vec2, limit float64) geom.Vec2 {
	a := target.Sub(pos).Scale(d.Kp).Sub(vel.Scale(d.Kd))
	return a.ClampLen(limit)
}

// PurePursuit steers a simple car or unicycle: speed is driven toward
// Speed while the heading bends toward the target at no more than limit
// radians per second.
type PurePursuit struct {
	Speed float64
	Gain  float64 // how fast speed and heading errors are corrected
}

func (p PurePursuit) Acceleration(pos, vel, target geom.Vec2, limit float64) geom.Vec2 {
	gain := p.Gain
	if gain <= 0 {
		gain = 1
	}
	toTarget := target.Sub(pos)
	speed := vel.Len()
	if speed < 1e-9 {
		// standing start: push straight at the target
		return toTarget.Normalize().Scale(gain * p.Speed)
	}
	dir := vel.Scale(1 / speed)
	tangential := dir.Scale((p.Speed - speed) * gain)

	omega := geom.SignedAngle(dir, toTarget) * gain
	omega = math.Max(-limit, math.Min(limit, omega))
	centripetal := dir.Perp().Scale(speed * omega)
	return tangential.Add(centripetal)
}
