package pathfind

import (
	"math"

	"github.com/1siamBot/rrt-engine/engine/geom"
)

const (
	DefaultSteerStep       = 0.1
	DefaultSteerTolerance  = 1.0
	DefaultSteerCostBudget = 128.0
)

// SteerResult is the outcome of one forward simulation
type SteerResult struct {
	End      geom.Vec2 // last collision-free position reached
	Velocity geom.Vec2 // velocity at End
	Cost     float64   // simulated time spent
	Steps    int
	Collided bool
}

// Steering forward-simulates an agent under an acceleration law, stopping
// on arrival, on budget exhaustion, or right before the first obstructed
// micro-segment.
type Steering struct {
	Step       float64 // simulated seconds per micro-step
	Tolerance  float64 // arrival radius
	CostBudget float64 // max simulated seconds per call
	Limit      float64 // passed through to Law
	Law        AccelerationLaw
	Oracle     Visibility
}

// NewSteering returns a Steering with the default step, tolerance and budget
func NewSteering(oracle Visibility, law AccelerationLaw, limit float64) Steering {
	return Steering{
		Step:       DefaultSteerStep,
		Tolerance:  DefaultSteerTolerance,
		CostBudget: DefaultSteerCostBudget,
		Limit:      limit,
		Law:        law,
		Oracle:     oracle,
	}
}

// MaxSteps is the hard cap on micro-steps for one Steer call
func (s Steering) MaxSteps() int {
	return int(math.Ceil(s.budget()/s.step())) + 1
}

func (s Steering) step() float64 {
	if s.Step <= 0 {
		return DefaultSteerStep
	}
	return s.Step
}

func (s Steering) tolerance() float64 {
	if s.Tolerance <= 0 {
		return DefaultSteerTolerance
	}
	return s.Tolerance
}

func (s Steering) budget() float64 {
	if s.CostBudget <= 0 {
		return DefaultSteerCostBudget
	}
	return s.CostBudget
}

// Arrived reports whether pos is within the arrival radius of target
func (s Steering) Arrived(pos, target geom.Vec2) bool {
	return pos.Dist(target) <= s.tolerance()
}

// Steer simulates from start with initial velocity toward target
func (s Steering) Steer(start, target, velocity geom.Vec2) SteerResult {
	step := s.step()
	tol := s.tolerance()
	budget := s.budget()
	maxSteps := s.MaxSteps()
	oracle := s.Oracle
	if oracle == nil {
		oracle = OpenSpace
	}
	law := s.Law
	if law == nil {
		law = DefaultDoubleIntegrator
	}

	pos := start
	cost := 0.0
	steps := 0
	for pos.Dist(target) > tol && cost < budget && steps < maxSteps {
		next := pos.Add(velocity.Scale(step))
		if !Visible(oracle, pos, next) {
			return SteerResult{End: pos, Velocity: velocity, Cost: cost, Steps: steps, Collided: true}
		}
		velocity = velocity.Add(law.Acceleration(pos, velocity, target, s.Limit).Scale(step))
		pos = next
		cost += step
		steps++
	}
	return SteerResult{End: pos, Velocity: velocity, Cost: cost, Steps: steps}
}
