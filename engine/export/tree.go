// Package export dumps planning trees to Parquet for offline analysis.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// schemaVersion is stored in the file metadata under "schema"
const schemaVersion = "rrt_tree_v1"

// TreeRow is one node of a planning tree. ParentID is -1 for the root.
// VX/VY is the velocity the node was reached with.
type TreeRow struct {
	ID       int32   `parquet:"id"`
	ParentID int32   `parquet:"parent_id"`
	Depth    int32   `parquet:"depth"`
	X        float64 `parquet:"x"`
	Y        float64 `parquet:"y"`
	VX       float64 `parquet:"vx"`
	VY       float64 `parquet:"vy"`
	EdgeCost float64 `parquet:"edge_cost"`
	FullCost float64 `parquet:"full_cost"`
	OnPath   bool    `parquet:"on_path"`
}

// Rows flattens a tree in node order. end and its ancestors are flagged
// OnPath; a nil end flags nothing.
func Rows(t *pathfind.Tree[geom.Vec2], end *pathfind.Node[geom.Vec2]) []TreeRow {
	onPath := make(map[int]bool)
	for n := end; n != nil; n = n.Parent {
		onPath[n.ID] = true
	}
	rows := make([]TreeRow, 0, t.Len())
	for _, n := range t.Nodes() {
		parent := int32(-1)
		if n.Parent != nil {
			parent = int32(n.Parent.ID)
		}
		rows = append(rows, TreeRow{
			ID:       int32(n.ID),
			ParentID: parent,
			Depth:    int32(n.Depth()),
			X:        n.Pos.X,
			Y:        n.Pos.Y,
			VX:       n.Data.X,
			VY:       n.Data.Y,
			EdgeCost: n.Cost,
			FullCost: n.FullCost(),
			OnPath:   onPath[n.ID],
		})
	}
	return rows
}

// WriteTree writes the tree to outPath with zstd compression. The file is
// written next to outPath and renamed into place.
func WriteTree(outPath string, t *pathfind.Tree[geom.Vec2], end *pathfind.Node[geom.Vec2]) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, Rows(t, end),
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadTree loads rows written by WriteTree
func ReadTree(path string) ([]TreeRow, error) {
	rows, err := parquet.ReadFile[TreeRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
