package main

import (
	"fmt"

	"github.com/1siamBot/rrt-engine/engine/export"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file.parquet>",
	Short: "Summarize a planning tree written by plan --tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := export.ReadTree(args[0])
		if err != nil {
			return err
		}
		var (
			depth   int32
			onPath  int
			maxCost float64
		)
		for _, r := range rows {
			depth = max(depth, r.Depth)
			maxCost = max(maxCost, r.FullCost)
			if r.OnPath {
				onPath++
			}
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "nodes:     %d\n", len(rows))
		fmt.Fprintf(out, "depth:     %d\n", depth)
		fmt.Fprintf(out, "on path:   %d\n", onPath)
		fmt.Fprintf(out, "max cost:  %.3f\n", maxCost)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
