// Package config loads planner, controller and viewer settings from YAML or
// JSON and turns them into engine components.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/1siamBot/rrt-engine/engine/control"
	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/logging"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Oracle kinds
const (
	OracleExact = "exact"
	OracleGrid  = "grid"
)

// Steering laws
const (
	LawDoubleIntegrator = "double-integrator"
	LawModel            = "model" // pure pursuit matched to the controller model
)

// Controller models
const (
	ModelDifferential = "differential"
	ModelCar          = "car"
)

type OracleConfig struct {
	Kind string  `yaml:"kind" json:"kind"`
	Cell float64 `yaml:"cell" json:"cell"` // grid cell size
}

// DefaultMaxIterations caps planner.iterations and per-request overrides
const DefaultMaxIterations = 20000

type PlannerConfig struct {
	Iterations     int     `yaml:"iterations" json:"iterations"`
	MaxIterations  int     `yaml:"max_iterations" json:"max_iterations"`
	Steal          bool    `yaml:"steal" json:"steal"`
	StealRadius    float64 `yaml:"steal_radius" json:"steal_radius"`
	StealTolerance float64 `yaml:"steal_tolerance" json:"steal_tolerance"`
	MaxStealDepth  int     `yaml:"max_steal_depth" json:"max_steal_depth"`
	MaxStealCopies int     `yaml:"max_steal_copies" json:"max_steal_copies"` // 0 = iterations
	GoalQuery      string  `yaml:"goal_query" json:"goal_query"`
	Seed           uint64  `yaml:"seed" json:"seed"`
}

type SteeringConfig struct {
	Law        string  `yaml:"law" json:"law"`
	Step       float64 `yaml:"step" json:"step"`
	Tolerance  float64 `yaml:"tolerance" json:"tolerance"`
	CostBudget float64 `yaml:"cost_budget" json:"cost_budget"`
	MaxAccel   float64 `yaml:"max_accel" json:"max_accel"` // double-integrator only
}

type ControllerConfig struct {
	Model            string               `yaml:"model" json:"model"`
	ArrivalTolerance float64              `yaml:"arrival_tolerance" json:"arrival_tolerance"`
	Differential     control.Params       `yaml:"differential" json:"differential"`
	Car              control.KinematicCar `yaml:"car" json:"car"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

type ViewerConfig struct {
	Width       int     `yaml:"width" json:"width"`
	Height      int     `yaml:"height" json:"height"`
	TickRate    float64 `yaml:"tick_rate" json:"tick_rate"`
	MetricsAddr string  `yaml:"metrics_addr" json:"metrics_addr"`
}

// Config is the whole settings file. Every section is optional; missing
// values keep their defaults.
type Config struct {
	Scene      string           `yaml:"scene" json:"scene"` // scene file, relative to the config file
	Oracle     OracleConfig     `yaml:"oracle" json:"oracle"`
	Planner    PlannerConfig    `yaml:"planner" json:"planner"`
	Steering   SteeringConfig   `yaml:"steering" json:"steering"`
	Controller ControllerConfig `yaml:"controller" json:"controller"`
	Log        LogConfig        `yaml:"log" json:"log"`
	Viewer     ViewerConfig     `yaml:"viewer" json:"viewer"`
}

// Default returns the stock settings
func Default() Config {
	return Config{
		Oracle: OracleConfig{Kind: OracleExact, Cell: 1},
		Planner: PlannerConfig{
			Iterations:     pathfind.DefaultIterations,
			MaxIterations:  DefaultMaxIterations,
			StealTolerance: pathfind.DefaultStealTolerance,
			MaxStealDepth:  pathfind.DefaultMaxStealDepth,
			GoalQuery:      string(pathfind.GoalNearest),
		},
		Steering: SteeringConfig{
			Law:        LawModel,
			Step:       pathfind.DefaultSteerStep,
			Tolerance:  pathfind.DefaultSteerTolerance,
			CostBudget: pathfind.DefaultSteerCostBudget,
			MaxAccel:   5,
		},
		Controller: ControllerConfig{
			Model:            ModelDifferential,
			ArrivalTolerance: control.DefaultArrivalTolerance,
			Differential:     control.DefaultParams(),
			Car:              control.DefaultKinematicCar(),
		},
		Log:    LogConfig{Level: "info"},
		Viewer: ViewerConfig{Width: 960, Height: 960, TickRate: 60},
	}
}

// Load reads a YAML or JSON file (by extension) over the defaults. A
// relative scene path is resolved against the config file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Scene != "" && !filepath.IsAbs(cfg.Scene) {
		cfg.Scene = filepath.Join(filepath.Dir(path), cfg.Scene)
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerations and ranges
func (c Config) Validate() error {
	switch c.Oracle.Kind {
	case OracleExact:
	case OracleGrid:
		if c.Oracle.Cell <= 0 {
			return fmt.Errorf("%w: oracle.cell must be > 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: oracle.kind %q", ErrInvalidConfig, c.Oracle.Kind)
	}
	switch pathfind.GoalQuery(c.Planner.GoalQuery) {
	case pathfind.GoalNearest, pathfind.GoalCheapestVisible:
	default:
		return fmt.Errorf("%w: planner.goal_query %q", ErrInvalidConfig, c.Planner.GoalQuery)
	}
	if c.Planner.Iterations < 0 {
		return fmt.Errorf("%w: planner.iterations must be >= 0", ErrInvalidConfig)
	}
	if c.Planner.MaxIterations <= 0 {
		return fmt.Errorf("%w: planner.max_iterations must be > 0", ErrInvalidConfig)
	}
	if c.Planner.Iterations > c.Planner.MaxIterations {
		return fmt.Errorf("%w: planner.iterations %d exceeds max_iterations %d",
			ErrInvalidConfig, c.Planner.Iterations, c.Planner.MaxIterations)
	}
	if c.Planner.MaxStealCopies < 0 {
		return fmt.Errorf("%w: planner.max_steal_copies must be >= 0", ErrInvalidConfig)
	}
	switch c.Steering.Law {
	case LawModel, LawDoubleIntegrator:
	default:
		return fmt.Errorf("%w: steering.law %q", ErrInvalidConfig, c.Steering.Law)
	}
	if c.Steering.Step <= 0 || c.Steering.Tolerance <= 0 || c.Steering.CostBudget <= 0 {
		return fmt.Errorf("%w: steering step, tolerance and cost_budget must be > 0", ErrInvalidConfig)
	}
	switch c.Controller.Model {
	case ModelDifferential:
		if c.Controller.Differential.MaxSpeed <= 0 || c.Controller.Differential.MaxTurnRate <= 0 {
			return fmt.Errorf("%w: differential max_speed and max_turn_rate must be > 0", ErrInvalidConfig)
		}
	case ModelCar:
		if c.Controller.Car.Speed <= 0 || c.Controller.Car.Length <= 0 {
			return fmt.Errorf("%w: car speed and length must be > 0", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: controller.model %q", ErrInvalidConfig, c.Controller.Model)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ---- Builders ----

// Logger builds the configured logger; Validate has already checked the level
func (c Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.New(level)
}

// LoadScene loads the configured scene, or an empty 100x100 room when none
// is set
func (c Config) LoadScene() (*maplib.Scene, error) {
	if c.Scene == "" {
		return maplib.NewScene("empty", geom.R(0, 0, 100, 100)), nil
	}
	return maplib.LoadScene(c.Scene)
}

// Visibility builds the oracle for a scene
func (c Config) Visibility(s *maplib.Scene) pathfind.Visibility {
	if c.Oracle.Kind == OracleGrid {
		return pathfind.NewNavGrid(s, c.Oracle.Cell)
	}
	return s
}

// Model builds the controller model; the oracle feeds the obstacle probe
func (c Config) Model(oracle pathfind.Visibility) control.Model {
	if c.Controller.Model == ModelCar {
		return c.Controller.Car
	}
	return control.DifferentialDrive{Params: c.Controller.Differential, Oracle: oracle}
}

// NewSteering builds the simulator the planner connects samples with
func (c Config) NewSteering(oracle pathfind.Visibility, model control.Model) pathfind.Steering {
	var s pathfind.Steering
	if c.Steering.Law == LawDoubleIntegrator {
		s = pathfind.NewSteering(oracle, pathfind.DefaultDoubleIntegrator, c.Steering.MaxAccel)
	} else {
		law, limit := model.SteeringLaw()
		s = pathfind.NewSteering(oracle, law, limit)
	}
	s.Step = c.Steering.Step
	s.Tolerance = c.Steering.Tolerance
	s.CostBudget = c.Steering.CostBudget
	return s
}

// PlannerConfig maps the planner section onto a sampling region
func (c Config) PlannerConfig(bounds geom.Rect) pathfind.Config {
	return pathfind.Config{
		Bounds:         bounds,
		Iterations:     c.Planner.Iterations,
		Steal:          c.Planner.Steal,
		StealRadius:    c.Planner.StealRadius,
		StealTolerance: c.Planner.StealTolerance,
		MaxStealDepth:  c.Planner.MaxStealDepth,
		MaxStealCopies: c.Planner.MaxStealCopies,
		GoalQuery:      pathfind.GoalQuery(c.Planner.GoalQuery),
		Seed:           c.Planner.Seed,
	}
}

// Stack is everything one agent needs to plan and drive in a scene
type Stack struct {
	Oracle  pathfind.Visibility
	Model   control.Model
	Planner *pathfind.Planner
}

// Build wires the oracle, model and planner for a scene
func (c Config) Build(s *maplib.Scene, opts ...pathfind.Option) Stack {
	oracle := c.Visibility(s)
	model := c.Model(oracle)
	planner := pathfind.NewPlanner(c.PlannerConfig(s.Bounds), c.NewSteering(oracle, model), opts...)
	return Stack{Oracle: oracle, Model: model, Planner: planner}
}

// Tracker creates a controller for one agent on this stack
func (st Stack) Tracker(c Config, logger *slog.Logger) *control.Tracker {
	tr := control.NewTracker(st.Model, st.Planner)
	tr.Tolerance = c.Controller.ArrivalTolerance
	tr.Logger = logger
	return tr
}
