package maplib

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"gopkg.in/yaml.v3"
)

// ObstacleKind defines the shape of an obstacle
type ObstacleKind string

const (
	ObstacleRect   ObstacleKind = "rect"
	ObstacleCircle ObstacleKind = "circle"
)

var ErrInvalidScene = errors.New("maplib: invalid scene")

// Obstacle is a static blocker. Rectangles use Min/Max, circles Center/Radius.
type Obstacle struct {
	Kind   ObstacleKind `json:"kind" yaml:"kind"`
	Min    geom.Vec2    `json:"min,omitempty" yaml:"min,omitempty"`
	Max    geom.Vec2    `json:"max,omitempty" yaml:"max,omitempty"`
	Center geom.Vec2    `json:"center,omitempty" yaml:"center,omitempty"`
	Radius float64      `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// Spawn defines an agent start pose
type Spawn struct {
	Position geom.Vec2 `json:"position" yaml:"position"`
	Facing   float64   `json:"facing" yaml:"facing"` // radians, 0 = +x
}

// Scene is the planar world the planner and controller query: a bounded
// region with static obstacles.
type Scene struct {
	Name      string     `json:"name" yaml:"name"`
	Bounds    geom.Rect  `json:"bounds" yaml:"bounds"`
	Walled    bool       `json:"walled" yaml:"walled"` // bounds act as walls
	Obstacles []Obstacle `json:"obstacles" yaml:"obstacles"`
	Agents    []Spawn    `json:"agents" yaml:"agents"`
}

// NewScene creates an empty walled scene
func NewScene(name string, bounds geom.Rect) *Scene {
	return &Scene{Name: name, Bounds: bounds, Walled: true}
}

// AddRect adds a rectangular obstacle spanning the two corners
func (s *Scene) AddRect(x1, y1, x2, y2 float64) {
	s.Obstacles = append(s.Obstacles, Obstacle{
		Kind: ObstacleRect,
		Min:  geom.V2(math.Min(x1, x2), math.Min(y1, y2)),
		Max:  geom.V2(math.Max(x1, x2), math.Max(y1, y2)),
	})
}

// AddCircle adds a circular obstacle
func (s *Scene) AddCircle(cx, cy, r float64) {
	s.Obstacles = append(s.Obstacles, Obstacle{Kind: ObstacleCircle, Center: geom.V2(cx, cy), Radius: r})
}

// Validate checks bounds and obstacle shapes
func (s *Scene) Validate() error {
	if s.Bounds.Empty() {
		return fmt.Errorf("%w: empty bounds", ErrInvalidScene)
	}
	for i, o := range s.Obstacles {
		switch o.Kind {
		case ObstacleRect:
			if o.Max.X <= o.Min.X || o.Max.Y <= o.Min.Y {
				return fmt.Errorf("%w: obstacle %d: degenerate rect", ErrInvalidScene, i)
			}
		case ObstacleCircle:
			if o.Radius <= 0 {
				return fmt.Errorf("%w: obstacle %d: radius must be > 0", ErrInvalidScene, i)
			}
		default:
			return fmt.Errorf("%w: obstacle %d: unknown kind %q", ErrInvalidScene, i, o.Kind)
		}
	}
	return nil
}

// Blocked reports whether the straight segment a→b is obstructed.
// Pure query; safe to call thousands of times per plan.
func (s *Scene) Blocked(a, b geom.Vec2) bool {
	if s.Walled && (!s.Bounds.Contains(a) || !s.Bounds.Contains(b)) {
		return true
	}
	for i := range s.Obstacles {
		if s.Obstacles[i].intersectsSegment(a, b) {
			return true
		}
	}
	return false
}

// Occupied reports whether p lies inside an obstacle
func (s *Scene) Occupied(p geom.Vec2) bool {
	for _, o := range s.Obstacles {
		switch o.Kind {
		case ObstacleRect:
			if (geom.Rect{Min: o.Min, Max: o.Max}).Contains(p) {
				return true
			}
		case ObstacleCircle:
			if p.Dist(o.Center) <= o.Radius {
				return true
			}
		}
	}
	return false
}

// OverlapsRect reports whether any obstacle overlaps r
func (s *Scene) OverlapsRect(r geom.Rect) bool {
	for _, o := range s.Obstacles {
		switch o.Kind {
		case ObstacleRect:
			if r.Intersects(geom.Rect{Min: o.Min, Max: o.Max}) {
				return true
			}
		case ObstacleCircle:
			// closest point of r to the circle center
			cx := math.Max(r.Min.X, math.Min(o.Center.X, r.Max.X))
			cy := math.Max(r.Min.Y, math.Min(o.Center.Y, r.Max.Y))
			if o.Center.Dist(geom.V2(cx, cy)) <= o.Radius {
				return true
			}
		}
	}
	return false
}

func (o *Obstacle) intersectsSegment(a, b geom.Vec2) bool {
	switch o.Kind {
	case ObstacleRect:
		return segmentHitsRect(a, b, o.Min, o.Max)
	case ObstacleCircle:
		return segmentPointDist(a, b, o.Center) <= o.Radius
	}
	return false
}

// segmentHitsRect clips a→b against the box (Liang–Barsky)
func segmentHitsRect(a, b, lo, hi geom.Vec2) bool {
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	return clip(-d.X, a.X-lo.X) && clip(d.X, hi.X-a.X) &&
		clip(-d.Y, a.Y-lo.Y) && clip(d.Y, hi.Y-a.Y) && t0 <= t1
}

func segmentPointDist(a, b, p geom.Vec2) float64 {
	d := b.Sub(a)
	l2 := d.LenSq()
	if l2 == 0 {
		return p.Dist(a)
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
	return p.Dist(a.Add(d.Scale(t)))
}

// Save writes the scene as YAML or JSON depending on the extension
func (s *Scene) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadScene loads a scene from a YAML or JSON file
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scene
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
