package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/1siamBot/rrt-engine/engine/export"
	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/1siamBot/rrt-engine/engine/render"
	"github.com/1siamBot/rrt-engine/engine/service"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a path from --start to --goal",
	Long: `Builds a planning tree in the configured scene and prints the best path as JSON.
The start defaults to the scene's first agent spawn.`,
	Example: `  rrtplan plan --config configs/default.yaml --goal 90,90 --png plan.png
  rrtplan plan --scene scenes/maze.yaml --start 5,5 --goal 95,95 --steal --tree tree.parquet`,
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.String("scene", "", "Scene file, overrides the config")
	f.String("start", "", "Start position x,y")
	f.String("start-vel", "0,0", "Start velocity x,y")
	f.String("goal", "", "Goal position x,y (required)")
	f.Int("iterations", 0, "Sampling iterations, overrides the config")
	f.Uint64("seed", 0, "Random seed, overrides the config")
	f.Bool("steal", false, "Enable subtree stealing")
	f.String("png", "", "Write a PNG snapshot of the tree and path")
	f.Int("png-size", 800, "Snapshot width in pixels; height follows the scene aspect")
	f.String("tree", "", "Write the planning tree as parquet")
	_ = planCmd.MarkFlagRequired("goal")
	rootCmd.AddCommand(planCmd)
}

// planResult is the JSON printed on stdout
type planResult struct {
	Scene     string      `json:"scene"`
	Start     geom.Vec2   `json:"start"`
	Goal      geom.Vec2   `json:"goal"`
	Reached   bool        `json:"reached"`
	Length    float64     `json:"length"`
	Nodes     int         `json:"nodes"`
	ElapsedMS float64     `json:"elapsed_ms"`
	Path      []geom.Vec2 `json:"path"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if p, _ := f.GetString("scene"); p != "" {
		cfg.Scene = p
	}
	if f.Changed("iterations") {
		cfg.Planner.Iterations, _ = f.GetInt("iterations")
	}
	if f.Changed("seed") {
		cfg.Planner.Seed, _ = f.GetUint64("seed")
	}
	if f.Changed("steal") {
		cfg.Planner.Steal, _ = f.GetBool("steal")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	scene, err := cfg.LoadScene()
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}
	start, err := startOf(f.Lookup("start").Value.String(), scene)
	if err != nil {
		return err
	}
	startVel, err := parseVec(f.Lookup("start-vel").Value.String())
	if err != nil {
		return fmt.Errorf("--start-vel: %w", err)
	}
	goal, err := parseVec(f.Lookup("goal").Value.String())
	if err != nil {
		return fmt.Errorf("--goal: %w", err)
	}
	if !scene.Bounds.Contains(goal) {
		return fmt.Errorf("goal %v is outside the scene bounds", goal)
	}

	st := cfg.Build(scene, pathfind.WithLogger(logger))
	began := time.Now()
	tree := st.Planner.Plan(start, startVel, goal)
	end := st.Planner.BestNode(tree, goal)
	path := end.PathFromRoot()
	elapsed := time.Since(began)
	logger.Info("planned", "scene", scene.Name, "nodes", tree.Len(), "waypoints", len(path), "elapsed", elapsed)

	if out, _ := f.GetString("tree"); out != "" {
		if err := export.WriteTree(out, tree, end); err != nil {
			return err
		}
		logger.Info("wrote tree", "path", out)
	}
	if out, _ := f.GetString("png"); out != "" {
		size, _ := f.GetInt("png-size")
		if err := writeSnapshot(out, size, scene, tree, path, goal); err != nil {
			return err
		}
		logger.Info("wrote snapshot", "path", out)
	}

	return writeResult(cmd.OutOrStdout(), planResult{
		Scene:     scene.Name,
		Start:     start,
		Goal:      goal,
		Reached:   st.Planner.Arrived(end.Pos, goal),
		Length:    service.PathLength(path),
		Nodes:     tree.Len(),
		ElapsedMS: float64(elapsed.Microseconds()) / 1000,
		Path:      path,
	})
}

func writeSnapshot(out string, width int, scene *maplib.Scene, tree *pathfind.Tree[geom.Vec2], path []geom.Vec2, goal geom.Vec2) error {
	if width <= 0 {
		return fmt.Errorf("--png-size must be > 0")
	}
	height := int(float64(width) * scene.Bounds.Height() / scene.Bounds.Width())
	s := render.NewSnapshot(scene.Bounds, width, max(height, 1))
	s.Scene(scene)
	s.Tree(tree)
	s.Path(path)
	s.Goal(goal)
	return s.SavePNG(out)
}

func writeResult(w io.Writer, r planResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// startOf parses --start, falling back to the scene's first spawn
func startOf(flag string, scene *maplib.Scene) (geom.Vec2, error) {
	if flag != "" {
		p, err := parseVec(flag)
		if err != nil {
			return p, fmt.Errorf("--start: %w", err)
		}
		return p, nil
	}
	if len(scene.Agents) == 0 {
		return geom.Vec2{}, fmt.Errorf("--start is required: scene %q has no agents", scene.Name)
	}
	return scene.Agents[0].Position, nil
}

// parseVec parses "x,y"
func parseVec(s string) (geom.Vec2, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Vec2{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Vec2{}, fmt.Errorf("bad x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Vec2{}, fmt.Errorf("bad y in %q: %w", s, err)
	}
	return geom.V2(x, y), nil
}
