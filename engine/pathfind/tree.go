package pathfind

import (
	"errors"
	"math"
	"sort"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/dhconnelly/rtreego"
)

var (
	// ErrInvalidParent is returned when an insertion references a node
	// that does not belong to the tree.
	ErrInvalidParent = errors.New("pathfind: parent does not belong to this tree")
	// ErrCycleRejected is returned when a reparenting would make a node its
	// own ancestor.
	ErrCycleRejected = errors.New("pathfind: reparenting would create a cycle")
)

// nodeExtent is the half-size of a node's box in the spatial index
const nodeExtent = 1e-6

// Node is a vertex of a Tree. Parent is nil only for the root; Cost is the
// edge cost from Parent.
type Node[P any] struct {
	ID     int
	Pos    geom.Vec2
	Data   P
	Parent *Node[P]
	Cost   float64

	tree *Tree[P]
}

// Bounds implements rtreego.Spatial
func (n *Node[P]) Bounds() rtreego.Rect {
	return rtreego.Point{n.Pos.X, n.Pos.Y}.ToRect(nodeExtent)
}

// FullCost sums edge costs from the root to n
func (n *Node[P]) FullCost() float64 {
	total := 0.0
	for cur := n; cur != nil; cur = cur.Parent {
		total += cur.Cost
	}
	return total
}

// Depth is the number of edges between n and the root
func (n *Node[P]) Depth() int {
	d := 0
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		d++
	}
	return d
}

// IsParentOf reports whether n is a direct or transitive ancestor of other.
// A node is never its own ancestor.
func (n *Node[P]) IsParentOf(other *Node[P]) bool {
	if other == nil {
		return false
	}
	for cur := other.Parent; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// PathFromRoot returns positions from the root to n, both included
func (n *Node[P]) PathFromRoot() []geom.Vec2 {
	path := make([]geom.Vec2, 0, n.Depth()+1)
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur.Pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Tree is a rooted, cost-annotated tree over planar states. P is the
// auxiliary payload carried by each node (a velocity for dynamic planning).
// A Tree is not safe for concurrent mutation.
type Tree[P any] struct {
	Root   *Node[P]
	nodes  []*Node[P]
	index  *rtreego.Rtree
	oracle Visibility
}

// NewTree creates a tree holding only its root. A nil oracle means open space.
func NewTree[P any](root geom.Vec2, data P, oracle Visibility) *Tree[P] {
	if oracle == nil {
		oracle = OpenSpace
	}
	t := &Tree[P]{
		index:  rtreego.NewTree(2, 25, 50),
		oracle: oracle,
	}
	t.Root = t.add(root, nil, 0, data)
	return t
}

func (t *Tree[P]) add(pos geom.Vec2, parent *Node[P], cost float64, data P) *Node[P] {
	n := &Node[P]{ID: len(t.nodes), Pos: pos, Data: data, Parent: parent, Cost: cost, tree: t}
	t.nodes = append(t.nodes, n)
	t.index.Insert(n)
	return n
}

// Insert appends a new child of parent
func (t *Tree[P]) Insert(pos geom.Vec2, parent *Node[P], cost float64, data P) (*Node[P], error) {
	if !t.Owns(parent) {
		return nil, ErrInvalidParent
	}
	return t.add(pos, parent, cost, data), nil
}

// Owns reports whether n belongs to this tree
func (t *Tree[P]) Owns(n *Node[P]) bool {
	return n != nil && n.tree == t
}

// Len returns the number of nodes, root included
func (t *Tree[P]) Len() int { return len(t.nodes) }

// Nodes returns the nodes in insertion order. The slice must not be modified.
func (t *Tree[P]) Nodes() []*Node[P] { return t.nodes }

// NearestOf returns the node closest to target; ties go to the earliest node
func (t *Tree[P]) NearestOf(target geom.Vec2) *Node[P] {
	best := t.Root
	bestD := math.Inf(1)
	for _, n := range t.nodes {
		if d := n.Pos.Dist(target); d < bestD {
			best, bestD = n, d
		}
	}
	return best
}

// CheapestVisibleOf returns the node minimizing FullCost + straight distance
// to target among nodes that can see target, or nil if none can.
func (t *Tree[P]) CheapestVisibleOf(target geom.Vec2) *Node[P] {
	var best *Node[P]
	bestC := math.Inf(1)
	costs := t.fullCosts()
	for _, n := range t.nodes {
		c := costs[n.ID] + n.Pos.Dist(target)
		// cost test first, visibility is the expensive part
		if c < bestC && Visible(t.oracle, n.Pos, target) {
			best, bestC = n, c
		}
	}
	return best
}

// fullCosts computes FullCost for every node in one pass, indexed by ID.
// Parents may have larger IDs than their children after a reparent.
func (t *Tree[P]) fullCosts() []float64 {
	costs := make([]float64, len(t.nodes))
	done := make([]bool, len(t.nodes))
	var chain []*Node[P]
	for _, n := range t.nodes {
		chain = chain[:0]
		cur := n
		for cur != nil && !done[cur.ID] {
			chain = append(chain, cur)
			cur = cur.Parent
		}
		base := 0.0
		if cur != nil {
			base = costs[cur.ID]
		}
		for i := len(chain) - 1; i >= 0; i-- {
			base += chain[i].Cost
			costs[chain[i].ID] = base
			done[chain[i].ID] = true
		}
	}
	return costs
}

// VisibleInRadius returns nodes within r of center that can see center,
// ordered by insertion
func (t *Tree[P]) VisibleInRadius(center geom.Vec2, r float64) []*Node[P] {
	hits := t.index.SearchIntersect(rtreego.Point{center.X, center.Y}.ToRect(r))
	out := make([]*Node[P], 0, len(hits))
	for _, h := range hits {
		n := h.(*Node[P])
		if n.Pos.Dist(center) <= r && Visible(t.oracle, n.Pos, center) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ChildrenOf returns the direct children of n in insertion order
func (t *Tree[P]) ChildrenOf(n *Node[P]) []*Node[P] {
	var out []*Node[P]
	for _, c := range t.nodes {
		if c.Parent == n && c.Parent != nil {
			out = append(out, c)
		}
	}
	return out
}

// Reparent moves n under parent with a new edge cost. The root cannot be
// reparented, and a node may never become its own ancestor.
func (t *Tree[P]) Reparent(n, parent *Node[P], cost float64) error {
	if !t.Owns(n) || !t.Owns(parent) || n == t.Root {
		return ErrInvalidParent
	}
	if n == parent || n.IsParentOf(parent) {
		return ErrCycleRejected
	}
	n.Parent = parent
	n.Cost = cost
	return nil
}
