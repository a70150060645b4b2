package export

import (
	"path/filepath"
	"testing"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree(t *testing.T) (*pathfind.Tree[geom.Vec2], *pathfind.Node[geom.Vec2]) {
	t.Helper()
	tr := pathfind.NewTree(geom.V2(0, 0), geom.Vec2{}, nil)
	a, err := tr.Insert(geom.V2(3, 4), tr.Root, 5, geom.V2(1, 0))
	require.NoError(t, err)
	b, err := tr.Insert(geom.V2(6, 8), a, 5, geom.V2(0, 1))
	require.NoError(t, err)
	_, err = tr.Insert(geom.V2(-2, 0), tr.Root, 2, geom.V2(-1, 0))
	require.NoError(t, err)
	return tr, b
}

func TestRows(t *testing.T) {
	tr, end := sampleTree(t)
	rows := Rows(tr, end)
	require.Len(t, rows, 4)

	assert.Equal(t, TreeRow{ID: 0, ParentID: -1, OnPath: true}, rows[0])
	assert.Equal(t, TreeRow{ID: 2, ParentID: 1, Depth: 2, X: 6, Y: 8, VY: 1, EdgeCost: 5, FullCost: 10, OnPath: true}, rows[2])
	assert.False(t, rows[3].OnPath)
	assert.Equal(t, int32(0), rows[3].ParentID)
}

func TestRowsSharedPositionOffPath(t *testing.T) {
	tr, end := sampleTree(t)
	// zero-cost twin of the path's middle node, hanging off the root
	twin, err := tr.Insert(geom.V2(3, 4), tr.Root, 0, geom.V2(0, 0))
	require.NoError(t, err)

	rows := Rows(tr, end)
	require.Len(t, rows, 5)
	assert.True(t, rows[1].OnPath)
	assert.Equal(t, int32(twin.ID), rows[4].ID)
	assert.False(t, rows[4].OnPath)
}

func TestRowsWithoutPath(t *testing.T) {
	tr, _ := sampleTree(t)
	for _, r := range Rows(tr, nil) {
		assert.False(t, r.OnPath, "node %d", r.ID)
	}
}

func TestWriteReadTree(t *testing.T) {
	tr, end := sampleTree(t)
	out := filepath.Join(t.TempDir(), "dump", "tree.parquet")

	require.NoError(t, WriteTree(out, tr, end))
	assert.NoFileExists(t, out+".tmp")

	rows, err := ReadTree(out)
	require.NoError(t, err)
	assert.Equal(t, Rows(tr, end), rows)
}

func TestReadTreeMissing(t *testing.T) {
	_, err := ReadTree(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}
