package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/1siamBot/rrt-engine/engine/config"
	"github.com/1siamBot/rrt-engine/engine/metrics"
	"github.com/1siamBot/rrt-engine/engine/orders"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "viewer",
	Short: "Interactive viewer for planned and tracked agents",
	Long: `Opens a window on a scene. Select agents with the left mouse button and
right-click to plan and drive them to a goal.

  WASD / arrows  pan (shift: faster)     wheel   zoom
  middle drag    pan                      space   pause
  t              toggle planning trees    g       toggle occupancy grid
  r              replan to current goals  x       stop selected agents
  p              save a PNG snapshot      esc     quit`,
	SilenceUsage: true,
	RunE:         runViewer,
}

func init() {
	f := rootCmd.Flags()
	f.String("config", "", "Config file (YAML or JSON)")
	f.String("scene", "", "Scene file, overrides the config")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100")
	f.String("log-level", "", "Override log level (debug, info, warn, error)")
	f.String("record", "", "Record issued orders to this file")
	f.String("replay", "", "Replay orders from a file recorded with --record")
	rootCmd.MarkFlagsMutuallyExclusive("record", "replay")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runViewer(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	cfg := config.Default()
	if path, _ := f.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	if p, _ := f.GetString("scene"); p != "" {
		cfg.Scene = p
	}
	if addr, _ := f.GetString("metrics-addr"); addr != "" {
		cfg.Viewer.MetricsAddr = addr
	}
	if lvl, _ := f.GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger()

	scene, err := cfg.LoadScene()
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewPlanner(reg)
	if cfg.Viewer.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Viewer.MetricsAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", cfg.Viewer.MetricsAddr)
	}

	g := NewGame(cfg, scene, m, logger)
	if path, _ := f.GetString("record"); path != "" {
		if g.recorder, err = orders.NewRecorder(path); err != nil {
			return fmt.Errorf("failed to create order log: %w", err)
		}
		defer func() {
			if err := g.recorder.Close(); err != nil {
				logger.Error("closing order log", "error", err)
			}
		}()
	}
	if path, _ := f.GetString("replay"); path != "" {
		if g.replay, err = orders.Load(path); err != nil {
			return fmt.Errorf("failed to load order log: %w", err)
		}
		logger.Info("replaying", "orders", len(g.replay.Orders), "last_tick", g.replay.LastTick())
	}
	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("rrt viewer: " + scene.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(cfg.Viewer.TickRate))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
