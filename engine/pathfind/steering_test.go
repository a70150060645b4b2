package pathfind

import (
	"testing"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/stretchr/testify/assert"
)

var coast = AccelerationFunc(func(pos, vel, target geom.Vec2, limit float64) geom.Vec2 {
	return geom.Vec2{}
})

func TestSteerReachesTargetInOpenSpace(t *testing.T) {
	s := NewSteering(OpenSpace, DefaultDoubleIntegrator, 5)
	target := geom.V2(20, 10)
	sr := s.Steer(geom.V2(0, 0), target, geom.Vec2{})

	assert.False(t, sr.Collided)
	assert.LessOrEqual(t, sr.End.Dist(target), s.Tolerance)
	assert.LessOrEqual(t, sr.Steps, s.MaxSteps())
	assert.InDelta(t, float64(sr.Steps)*s.Step, sr.Cost, 1e-9)
}

func TestSteerAlreadyThere(t *testing.T) {
	s := NewSteering(OpenSpace, DefaultDoubleIntegrator, 5)
	sr := s.Steer(geom.V2(3, 3), geom.V2(3.5, 3), geom.V2(1, 1))
	assert.Equal(t, SteerResult{End: geom.V2(3, 3), Velocity: geom.V2(1, 1)}, sr)
}

func TestSteerStopsBeforeObstacle(t *testing.T) {
	scene := maplib.NewScene("wall", geom.R(0, 0, 100, 100))
	scene.AddRect(45, 0, 55, 100)
	s := NewSteering(scene, coast, 0)

	sr := s.Steer(geom.V2(10, 50), geom.V2(90, 50), geom.V2(10, 0))
	assert.True(t, sr.Collided)
	assert.Less(t, sr.End.X, 45.0)
	assert.Greater(t, sr.End.X, 43.0, "should get as close as one micro-step allows")
	assert.False(t, scene.Occupied(sr.End))
	assert.Equal(t, geom.V2(10, 0), sr.Velocity)
}

func TestSteerRespectsBudget(t *testing.T) {
	s := NewSteering(OpenSpace, coast, 0)
	s.CostBudget = 2
	sr := s.Steer(geom.V2(0, 0), geom.V2(1e6, 0), geom.V2(1, 0))

	assert.False(t, sr.Collided, "budget exhaustion is not a collision")
	assert.GreaterOrEqual(t, sr.Cost, 2.0-1e-9)
	assert.LessOrEqual(t, sr.Steps, s.MaxSteps())
	assert.InDelta(t, 2, sr.End.X, 0.11)
}

func TestSteerTerminatesWhenStuck(t *testing.T) {
	// zero velocity and zero acceleration never reach the target
	s := NewSteering(OpenSpace, coast, 0)
	sr := s.Steer(geom.V2(0, 0), geom.V2(50, 0), geom.Vec2{})
	assert.False(t, sr.Collided)
	assert.Equal(t, geom.V2(0, 0), sr.End)
	assert.LessOrEqual(t, sr.Steps, s.MaxSteps())
}

func TestSteerInvalidStepFallsBackToDefault(t *testing.T) {
	s := Steering{Step: -1, Tolerance: 1, Law: coast}
	assert.Equal(t, 1281, s.MaxSteps())
}

func TestSteerZeroValueUsesDefaultTolerance(t *testing.T) {
	var s Steering
	s.Law = coast
	target := geom.V2(5, 0.3)
	sr := s.Steer(geom.V2(0, 0), target, geom.V2(10, 0))

	assert.Equal(t, 5, sr.Steps)
	assert.InDelta(t, 5, sr.End.X, 1e-9)
	assert.True(t, s.Arrived(sr.End, target))
	assert.False(t, s.Arrived(geom.V2(3, 0), target))
}

func TestPurePursuitReachesTarget(t *testing.T) {
	s := NewSteering(OpenSpace, PurePursuit{Speed: 2, Gain: 2}, 1)
	target := geom.V2(10, 10)
	sr := s.Steer(geom.V2(0, 0), target, geom.V2(1, 0))

	assert.False(t, sr.Collided)
	assert.LessOrEqual(t, sr.End.Dist(target), s.Tolerance)
	assert.InDelta(t, 2, sr.Velocity.Len(), 0.3)
}

func TestPurePursuitTurnRateIsBounded(t *testing.T) {
	law := PurePursuit{Speed: 2, Gain: 10}
	vel := geom.V2(2, 0)
	a := law.Acceleration(geom.V2(0, 0), vel, geom.V2(0, 10), 0.5)
	// centripetal only: |a| = speed * omega
	assert.InDelta(t, 0, a.X, 1e-9)
	assert.InDelta(t, 2*0.5, a.Y, 1e-9)
}

func TestDoubleIntegratorClampsAcceleration(t *testing.T) {
	a := DefaultDoubleIntegrator.Acceleration(geom.V2(0, 0), geom.Vec2{}, geom.V2(100, 0), 3)
	assert.InDelta(t, 3, a.Len(), 1e-9)
	assert.Greater(t, a.X, 0.0)
}
