package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/1siamBot/rrt-engine/engine/config"
	"github.com/1siamBot/rrt-engine/engine/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rrtplan",
	Short: "rrtplan plans kinodynamic paths through 2D scenes",
	Long: `rrtplan grows a rapidly-exploring random tree from a start pose to a goal,
connecting samples with a steering simulator, and prints the resulting path.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log level (debug, info, warn, error)")
}

// loadConfig reads --config (or the defaults) and applies --log-level
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, nil, err
		}
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := logging.ParseLevel(lvl); err != nil {
			return cfg, nil, err
		}
		cfg.Log.Level = lvl
	}
	return cfg, cfg.Logger(), nil
}
