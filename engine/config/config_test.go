package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1siamBot/rrt-engine/engine/control"
	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "rrt.yaml", `
scene: scenes/maze.yaml
oracle:
  kind: grid
  cell: 0.5
planner:
  iterations: 300
  steal: true
  goal_query: cheapest-visible
controller:
  model: car
  car:
    speed: 3
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "scenes", "maze.yaml"), cfg.Scene)
	assert.Equal(t, OracleGrid, cfg.Oracle.Kind)
	assert.Equal(t, 0.5, cfg.Oracle.Cell)
	assert.Equal(t, 300, cfg.Planner.Iterations)
	assert.True(t, cfg.Planner.Steal)
	assert.Equal(t, pathfind.DefaultMaxStealDepth, cfg.Planner.MaxStealDepth, "untouched keys keep defaults")
	assert.Equal(t, DefaultMaxIterations, cfg.Planner.MaxIterations)
	assert.Equal(t, ModelCar, cfg.Controller.Model)
	assert.Equal(t, 3.0, cfg.Controller.Car.Speed)
	assert.Equal(t, control.DefaultKinematicCar().Length, cfg.Controller.Car.Length)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadJSON(t *testing.T) {
	p := writeFile(t, t.TempDir(), "rrt.json", `{"log": {"level": "debug"}, "viewer": {"metrics_addr": ":9100"}}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9100", cfg.Viewer.MetricsAddr)
	assert.Equal(t, 960, cfg.Viewer.Width)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	p := writeFile(t, t.TempDir(), "bad.yaml", "planner: [")
	_, err = Load(p)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"oracle kind", func(c *Config) { c.Oracle.Kind = "raycast" }},
		{"grid cell", func(c *Config) { c.Oracle = OracleConfig{Kind: OracleGrid} }},
		{"goal query", func(c *Config) { c.Planner.GoalQuery = "best" }},
		{"iterations", func(c *Config) { c.Planner.Iterations = -1 }},
		{"iterations over max", func(c *Config) { c.Planner.Iterations = c.Planner.MaxIterations + 1 }},
		{"max iterations", func(c *Config) { c.Planner.MaxIterations = 0 }},
		{"steal copies", func(c *Config) { c.Planner.MaxStealCopies = -1 }},
		{"law", func(c *Config) { c.Steering.Law = "bang-bang" }},
		{"step", func(c *Config) { c.Steering.Step = 0 }},
		{"model", func(c *Config) { c.Controller.Model = "tank" }},
		{"differential speed", func(c *Config) { c.Controller.Differential.MaxSpeed = 0 }},
		{"car length", func(c *Config) { c.Controller.Model = ModelCar; c.Controller.Car.Length = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestBuild(t *testing.T) {
	scene := maplib.NewScene("room", geom.R(0, 0, 40, 20))

	cfg := Default()
	st := cfg.Build(scene)
	assert.Same(t, scene, st.Oracle)
	dd, ok := st.Model.(control.DifferentialDrive)
	require.True(t, ok)
	assert.Same(t, scene, dd.Oracle)
	assert.InDelta(t, 60.0/16, st.Planner.Config().StealRadius, 1e-12)

	cfg.Oracle = OracleConfig{Kind: OracleGrid, Cell: 2}
	cfg.Controller.Model = ModelCar
	st = cfg.Build(scene)
	grid, ok := st.Oracle.(*pathfind.NavGrid)
	require.True(t, ok)
	assert.Equal(t, 20, grid.Width)
	assert.IsType(t, control.KinematicCar{}, st.Model)

	tr := st.Tracker(cfg, nil)
	assert.Equal(t, cfg.Controller.ArrivalTolerance, tr.Tolerance)
	assert.Equal(t, control.Idle, tr.State())
}

func TestNewSteering(t *testing.T) {
	cfg := Default()
	cfg.Steering.Step = 0.05
	model := cfg.Model(nil)

	s := cfg.NewSteering(pathfind.OpenSpace, model)
	assert.Equal(t, 0.05, s.Step)
	assert.Equal(t, pathfind.PurePursuit{Speed: 5, Gain: 1}, s.Law)
	assert.Equal(t, 2.0, s.Limit)

	cfg.Steering.Law = LawDoubleIntegrator
	s = cfg.NewSteering(pathfind.OpenSpace, model)
	assert.Equal(t, pathfind.DefaultDoubleIntegrator, s.Law)
	assert.Equal(t, cfg.Steering.MaxAccel, s.Limit)
}

func TestLoadSceneDefault(t *testing.T) {
	s, err := Default().LoadScene()
	require.NoError(t, err)
	assert.Equal(t, geom.R(0, 0, 100, 100), s.Bounds)
}

func TestShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.Planner.Seed)

	scene, err := cfg.LoadScene()
	require.NoError(t, err)
	assert.Equal(t, "maze", scene.Name)
	assert.Len(t, scene.Agents, 2)
	for _, a := range scene.Agents {
		assert.False(t, scene.Occupied(a.Position), "spawn %v", a.Position)
	}
}
