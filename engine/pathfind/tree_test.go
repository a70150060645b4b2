package pathfind

import (
	"math/rand/v2"
	"testing"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInsert(t *testing.T, tr *Tree[geom.Vec2], pos geom.Vec2, parent *Node[geom.Vec2], cost float64) *Node[geom.Vec2] {
	t.Helper()
	n, err := tr.Insert(pos, parent, cost, geom.Vec2{})
	require.NoError(t, err)
	return n
}

// assertTreeInvariants checks that every parent chain ends at the root
// without revisiting a node.
func assertTreeInvariants(t *testing.T, tr *Tree[geom.Vec2]) {
	t.Helper()
	require.Nil(t, tr.Root.Parent)
	assert.Zero(t, tr.Root.Cost)
	for _, n := range tr.Nodes() {
		assert.False(t, n.IsParentOf(n), "node %d is its own ancestor", n.ID)
		steps := 0
		cur := n
		for cur.Parent != nil {
			cur = cur.Parent
			steps++
			require.LessOrEqual(t, steps, tr.Len(), "cycle through node %d", n.ID)
		}
		assert.Same(t, tr.Root, cur)
		if n != tr.Root {
			assert.Positive(t, n.Depth())
		}
	}
}

func TestTreeInsert(t *testing.T) {
	tr := NewTree(geom.V2(0, 0), geom.Vec2{}, nil)
	a := mustInsert(t, tr, geom.V2(3, 4), tr.Root, 5)
	b := mustInsert(t, tr, geom.V2(3, 8), a, 4)

	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, []int{0, 1, 2}, []int{tr.Root.ID, a.ID, b.ID})
	assert.InDelta(t, 9, b.FullCost(), 1e-12)
	assert.Equal(t, []geom.Vec2{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 8}}, b.PathFromRoot())
	assert.Equal(t, []geom.Vec2{{X: 0, Y: 0}}, tr.Root.PathFromRoot())
	assert.Equal(t, []*Node[geom.Vec2]{b}, tr.ChildrenOf(a))
	assert.Empty(t, tr.ChildrenOf(b))

	assert.True(t, tr.Root.IsParentOf(b))
	assert.True(t, a.IsParentOf(b))
	assert.False(t, b.IsParentOf(a))
	assert.False(t, a.IsParentOf(a))
}

func TestTreeInsertInvalidParent(t *testing.T) {
	tr := NewTree(geom.V2(0, 0), geom.Vec2{}, nil)
	other := NewTree(geom.V2(1, 1), geom.Vec2{}, nil)

	_, err := tr.Insert(geom.V2(1, 0), nil, 1, geom.Vec2{})
	assert.ErrorIs(t, err, ErrInvalidParent)
	_, err = tr.Insert(geom.V2(1, 0), other.Root, 1, geom.Vec2{})
	assert.ErrorIs(t, err, ErrInvalidParent)
	assert.Equal(t, 1, tr.Len())
}

func TestTreeNearestOfTieGoesToEarliest(t *testing.T) {
	tr := NewTree(geom.V2(10, 10), geom.Vec2{}, nil)
	a := mustInsert(t, tr, geom.V2(1, 0), tr.Root, 1)
	mustInsert(t, tr, geom.V2(-1, 0), tr.Root, 1)
	assert.Same(t, a, tr.NearestOf(geom.V2(0, 0)))
	assert.Same(t, tr.Root, tr.NearestOf(geom.V2(10, 11)))
}

func TestTreeCheapestVisibleOf(t *testing.T) {
	tr := NewTree(geom.V2(0, 0), geom.Vec2{}, nil)
	a := mustInsert(t, tr, geom.V2(10, 0), tr.Root, 10)
	b := mustInsert(t, tr, geom.V2(10, 1), a, 100)

	target := geom.V2(10, 2)
	assert.Same(t, b, tr.NearestOf(target))
	// root: 0 + ~10.2 beats a: 10 + 2 and b: 110 + 1
	assert.Same(t, tr.Root, tr.CheapestVisibleOf(target))
}

func TestTreeCheapestVisibleOfRespectsOracle(t *testing.T) {
	scene := maplib.NewScene("wall", geom.R(0, 0, 100, 100))
	scene.AddRect(45, 0, 55, 100)

	tr := NewTree(geom.V2(10, 50), geom.Vec2{}, scene)
	near := mustInsert(t, tr, geom.V2(40, 50), tr.Root, 30)

	assert.Nil(t, tr.CheapestVisibleOf(geom.V2(90, 50)))
	assert.Same(t, near, tr.NearestOf(geom.V2(90, 50)))
	assert.Same(t, tr.Root, tr.CheapestVisibleOf(geom.V2(20, 50)))
}

func TestTreeVisibleInRadius(t *testing.T) {
	scene := maplib.NewScene("wall", geom.R(0, 0, 100, 100))
	scene.AddRect(45, 0, 55, 100)

	tr := NewTree(geom.V2(40, 50), geom.Vec2{}, scene)
	a := mustInsert(t, tr, geom.V2(42, 52), tr.Root, 1)
	mustInsert(t, tr, geom.V2(46.5, 50), tr.Root, 1) // inside the wall
	mustInsert(t, tr, geom.V2(10, 10), a, 1)          // too far
	b := mustInsert(t, tr, geom.V2(38, 49), a, 1)

	got := tr.VisibleInRadius(geom.V2(40, 50), 7)
	assert.Equal(t, []*Node[geom.Vec2]{tr.Root, a, b}, got)
}

func TestTreeReparent(t *testing.T) {
	tr := NewTree(geom.V2(0, 0), geom.Vec2{}, nil)
	a := mustInsert(t, tr, geom.V2(1, 0), tr.Root, 1)
	b := mustInsert(t, tr, geom.V2(2, 0), a, 1)
	c := mustInsert(t, tr, geom.V2(3, 0), b, 1)
	d := mustInsert(t, tr, geom.V2(0, 3), tr.Root, 0.1)

	assert.ErrorIs(t, tr.Reparent(a, c, 1), ErrCycleRejected)
	assert.ErrorIs(t, tr.Reparent(b, b, 1), ErrCycleRejected)
	assert.ErrorIs(t, tr.Reparent(tr.Root, d, 1), ErrInvalidParent)
	assert.Same(t, tr.Root, a.Parent, "rejected reparent must not mutate")

	require.NoError(t, tr.Reparent(c, d, 0.1))
	assert.Same(t, d, c.Parent)
	assert.InDelta(t, 0.2, c.FullCost(), 1e-12)
	assert.Equal(t, []*Node[geom.Vec2]{c}, tr.ChildrenOf(d))
	assertTreeInvariants(t, tr)

	// cheapest-visible costs stay right when a parent has a larger ID
	assert.Same(t, c, tr.CheapestVisibleOf(geom.V2(3, 0.1)))
}

func TestTreeInvariantsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	tr := NewTree(geom.V2(0, 0), geom.Vec2{}, nil)
	for i := 0; i < 300; i++ {
		nodes := tr.Nodes()
		parent := nodes[rng.IntN(len(nodes))]
		mustInsert(t, tr, geom.V2(rng.Float64()*100, rng.Float64()*100), parent, rng.Float64())

		n := nodes[rng.IntN(len(nodes))]
		p := nodes[rng.IntN(len(nodes))]
		err := tr.Reparent(n, p, rng.Float64())
		if err != nil {
			assert.True(t, n == tr.Root || n == p || n.IsParentOf(p), "unexpected rejection: %v", err)
		}
	}
	assertTreeInvariants(t, tr)
}
