// Package control turns a waypoint list into per-tick drive commands.
package control

import (
	"math"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
)

// Pose is an agent's planar position and heading (radians, 0 = +x, CCW)
type Pose struct {
	Position geom.Vec2
	Heading  float64
}

// Forward is the unit heading vector
func (p Pose) Forward() geom.Vec2 { return geom.FromAngle(p.Heading) }

// Command is what a controller asks the drive for on one tick
type Command struct {
	Forward  float64 // signed speed along the heading; negative backs up
	TurnRate float64 // radians per second, positive turns left
}

// Model is an interchangeable motion model. Command drives toward a
// waypoint; SteeringLaw is the matching law the planner simulates with.
type Model interface {
	Command(pose Pose, speed float64, waypoint geom.Vec2) Command
	SteeringLaw() (law pathfind.AccelerationLaw, limit float64)
}

// BearingError is the signed angle from the heading to the direction of
// waypoint, positive when the waypoint is to the left
func BearingError(pos, waypoint geom.Vec2, heading float64) float64 {
	return geom.SignedAngle(geom.FromAngle(heading), waypoint.Sub(pos))
}

// ---- Differential drive ----

// Params tunes DifferentialDrive
type Params struct {
	MaxSpeed      float64 `json:"max_speed" yaml:"max_speed"`
	MaxTurnRate   float64 `json:"max_turn_rate" yaml:"max_turn_rate"`
	ReverseCos    float64 `json:"reverse_cos" yaml:"reverse_cos"`     // below this cos(bearing) the agent backs up while turning
	BaseFraction  float64 `json:"base_fraction" yaml:"base_fraction"` // share of MaxSpeed kept when off-axis
	ProbeDistance float64 `json:"probe_distance" yaml:"probe_distance"`
}

// DefaultParams matches a small robot in a 100-unit world
func DefaultParams() Params {
	return Params{
		MaxSpeed:      5,
		MaxTurnRate:   2,
		ReverseCos:    0.4,
		BaseFraction:  0.1,
		ProbeDistance: 1,
	}
}

// DifferentialDrive turns in place as fast as allowed and blends forward
// speed with alignment. Oracle is probed along the heading; nil disables
// the probe.
type DifferentialDrive struct {
	Params
	Oracle pathfind.Visibility
}

func (d DifferentialDrive) Command(pose Pose, _ float64, waypoint geom.Vec2) Command {
	angle := BearingError(pose.Position, waypoint, pose.Heading)
	sign := geom.Sign(angle)
	c := math.Cos(angle)

	var cmd Command
	if c < d.ReverseCos {
		// pointed away: back up while turning around
		cmd = Command{Forward: -d.MaxSpeed, TurnRate: sign * d.MaxTurnRate}
	} else {
		cmd = Command{
			Forward:  d.MaxSpeed * (d.BaseFraction + (1-d.BaseFraction)*c),
			TurnRate: sign * math.Min(math.Abs(angle), d.MaxTurnRate),
		}
	}

	if d.Oracle != nil && d.ProbeDistance > 0 {
		ahead := pose.Position.Add(pose.Forward().Scale(d.ProbeDistance))
		if d.Oracle.Blocked(pose.Position, ahead) {
			cmd.Forward = -d.MaxSpeed * geom.Sign(cmd.Forward)
		}
	}
	return cmd
}

// SteeringLaw simulates the drive as a unicycle at full speed
func (d DifferentialDrive) SteeringLaw() (pathfind.AccelerationLaw, float64) {
	return pathfind.PurePursuit{Speed: d.MaxSpeed, Gain: 1}, d.MaxTurnRate
}

// ---- Kinematic car ----

// KinematicCar drives at constant speed with bounded steering. The turn
// rate scales with the current speed over the car length.
type KinematicCar struct {
	Speed    float64 `json:"speed" yaml:"speed"`
	Length   float64 `json:"length" yaml:"length"`
	MaxSteer float64 `json:"max_steer" yaml:"max_steer"` // radians
	Deadband float64 `json:"deadband" yaml:"deadband"`   // bearing errors below this are not corrected
}

// DefaultKinematicCar returns a car with a one-degree deadband
func DefaultKinematicCar() KinematicCar {
	return KinematicCar{Speed: 4, Length: 1, MaxSteer: math.Pi / 4, Deadband: math.Pi / 180}
}

func (k KinematicCar) Command(pose Pose, speed float64, waypoint geom.Vec2) Command {
	cmd := Command{Forward: k.Speed}
	angle := BearingError(pose.Position, waypoint, pose.Heading)
	if math.Abs(angle) <= k.Deadband || k.Length <= 0 {
		return cmd
	}
	steer := geom.Sign(angle) * math.Min(math.Abs(angle), k.MaxSteer)
	cmd.TurnRate = steer * speed / k.Length
	return cmd
}

// SteeringLaw bounds the simulated turn rate by the tightest circle the car
// can drive at cruise speed
func (k KinematicCar) SteeringLaw() (pathfind.AccelerationLaw, float64) {
	limit := 0.0
	if k.Length > 0 {
		limit = k.MaxSteer * k.Speed / k.Length
	}
	return pathfind.PurePursuit{Speed: k.Speed, Gain: 1}, limit
}
