package pathfind

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/logging"
	"github.com/1siamBot/rrt-engine/engine/metrics"
)

// GoalQuery selects how the final path is pulled out of a finished tree
type GoalQuery string

const (
	// GoalNearest takes the node geometrically nearest to the goal
	GoalNearest GoalQuery = "nearest"
	// GoalCheapestVisible connects the goal to the cheapest node that can
	// see it, falling back to GoalNearest when none can
	GoalCheapestVisible GoalQuery = "cheapest-visible"
)

const (
	DefaultIterations     = 2000
	DefaultStealTolerance = 1.0
	DefaultMaxStealDepth  = 16
)

// Config holds the sampling parameters of a Planner
type Config struct {
	Bounds         geom.Rect // sampling region
	Iterations     int       // sampling rounds per plan
	Steal          bool      // enable neighbor rewiring after each insertion
	StealRadius    float64   // rewiring neighborhood; 0 = (width+height)/16
	StealTolerance float64   // position/velocity match needed to reparent
	MaxStealDepth  int       // recursion cap when copying subtrees
	MaxStealCopies int       // nodes stealing may add per plan; 0 = Iterations
	GoalQuery      GoalQuery
	Seed           uint64 // 0 = random seed
}

// DefaultConfig returns the stock configuration for a region
func DefaultConfig(bounds geom.Rect) Config {
	return Config{
		Bounds:         bounds,
		Iterations:     DefaultIterations,
		StealTolerance: DefaultStealTolerance,
		MaxStealDepth:  DefaultMaxStealDepth,
		GoalQuery:      GoalNearest,
	}
}

// Planner grows trees of reachable states with a sampling loop, using
// Steering to connect each sample. The payload of every node is the
// velocity the agent had when reaching it.
type Planner struct {
	cfg      Config
	steering Steering
	rng      *rand.Rand
	logger   *slog.Logger
	metrics  *metrics.Planner

	copies int // steal-created nodes in the current plan
}

// Option configures a Planner
type Option func(*Planner)

func WithLogger(l *slog.Logger) Option { return func(p *Planner) { p.logger = l } }

func WithMetrics(m *metrics.Planner) Option { return func(p *Planner) { p.metrics = m } }

// WithRand overrides the random source (Config.Seed is then ignored)
func WithRand(r *rand.Rand) Option { return func(p *Planner) { p.rng = r } }

// NewPlanner creates a planner. The steering's oracle is also the tree's
// visibility oracle.
func NewPlanner(cfg Config, steering Steering, opts ...Option) *Planner {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.StealRadius <= 0 {
		cfg.StealRadius = (cfg.Bounds.Width() + cfg.Bounds.Height()) / 16
	}
	if cfg.StealTolerance <= 0 {
		cfg.StealTolerance = DefaultStealTolerance
	}
	if cfg.MaxStealDepth <= 0 {
		cfg.MaxStealDepth = DefaultMaxStealDepth
	}
	if cfg.MaxStealCopies <= 0 {
		cfg.MaxStealCopies = cfg.Iterations
	}
	if cfg.GoalQuery == "" {
		cfg.GoalQuery = GoalNearest
	}
	if steering.Oracle == nil {
		steering.Oracle = OpenSpace
	}
	p := &Planner{cfg: cfg, steering: steering}
	for _, o := range opts {
		o(p)
	}
	if p.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	return p
}

// Config returns the effective configuration
func (p *Planner) Config() Config { return p.cfg }

// Plan builds a tree rooted at start. If goal is directly visible the tree
// is just start→goal; otherwise it is whatever the sampling budget grew,
// which may never get close to the goal.
func (p *Planner) Plan(start, startVel, goal geom.Vec2) *Tree[geom.Vec2] {
	began := time.Now()
	oracle := p.steering.Oracle
	t := NewTree(start, startVel, oracle)
	p.copies = 0

	if Visible(oracle, start, goal) {
		p.mustInsert(t, goal, t.Root, start.Dist(goal), geom.Vec2{})
		p.metrics.ObservePlan("straight", time.Since(began), t.Len())
		p.logger.Debug("straight-line plan", "start", start, "goal", goal)
		return t
	}

	for i := 0; i < p.cfg.Iterations; i++ {
		point := p.cfg.Bounds.Sample(p.rng)
		anchor := t.CheapestVisibleOf(point)
		if anchor == nil {
			p.metrics.Sample(metrics.SampleNoAnchor)
			continue
		}
		sr := p.steer(anchor.Pos, point, anchor.Data)
		if sr.Collided {
			p.metrics.Sample(metrics.SampleCollided)
			continue
		}
		me := p.mustInsert(t, sr.End, anchor, sr.Cost, sr.Velocity)
		p.metrics.Sample(metrics.SampleExtended)

		if p.cfg.Steal {
			for _, n := range t.VisibleInRadius(me.Pos, p.cfg.StealRadius) {
				if n == me {
					continue
				}
				p.trySteal(t, n, me, 0)
			}
		}
	}

	p.metrics.ObservePlan("sampled", time.Since(began), t.Len())
	p.logger.Debug("sampled plan",
		"start", start,
		"goal", goal,
		"nodes", t.Len(),
		"nearest_dist", t.NearestOf(goal).Pos.Dist(goal),
		"elapsed", time.Since(began),
	)
	return t
}

// trySteal re-steers from me to n; if that is cheaper and lands on n, n is
// reparented under me, otherwise the landing state becomes a new node and
// n's children are offered to it. Copies stop once MaxStealCopies nodes
// have been added in the current plan.
func (p *Planner) trySteal(t *Tree[geom.Vec2], n, me *Node[geom.Vec2], depth int) {
	if depth > p.cfg.MaxStealDepth || n == t.Root {
		return
	}
	nCost, meCost := n.FullCost(), me.FullCost()
	if nCost <= meCost {
		return
	}
	sr := p.steer(me.Pos, n.Pos, me.Data)
	if sr.Collided || nCost <= meCost+sr.Cost {
		return
	}
	tol := p.cfg.StealTolerance
	if sr.Velocity.Dist(n.Data) < tol && sr.End.Dist(n.Pos) < tol {
		if err := t.Reparent(n, me, sr.Cost); err != nil {
			p.metrics.Steal(metrics.StealCycleRejected)
			p.logger.Debug("steal rejected", "node", n.ID, "parent", me.ID, "error", err)
			return
		}
		p.metrics.Steal(metrics.StealReparented)
		return
	}
	if p.copies >= p.cfg.MaxStealCopies {
		p.metrics.Steal(metrics.StealOverBudget)
		return
	}
	p.copies++
	m := p.mustInsert(t, sr.End, me, sr.Cost, sr.Velocity)
	p.metrics.Steal(metrics.StealCopied)
	for _, c := range t.ChildrenOf(n) {
		p.trySteal(t, c, m, depth+1)
	}
}

func (p *Planner) steer(from, to, vel geom.Vec2) SteerResult {
	sr := p.steering.Steer(from, to, vel)
	switch {
	case sr.Collided:
		p.metrics.Steer(metrics.SteerCollided)
	case p.steering.Arrived(sr.End, to):
		p.metrics.Steer(metrics.SteerArrived)
	default:
		p.metrics.Steer(metrics.SteerBudget)
	}
	return sr
}

// mustInsert panics on ErrInvalidParent: the planner only ever inserts under
// nodes it just got from the same tree.
func (p *Planner) mustInsert(t *Tree[geom.Vec2], pos geom.Vec2, parent *Node[geom.Vec2], cost float64, vel geom.Vec2) *Node[geom.Vec2] {
	n, err := t.Insert(pos, parent, cost, vel)
	if err != nil {
		panic(fmt.Sprintf("pathfind: planner insert: %v", err))
	}
	return n
}

// BestNode picks the node a path to goal should end at. With
// GoalCheapestVisible the goal itself may be added to the tree.
func (p *Planner) BestNode(t *Tree[geom.Vec2], goal geom.Vec2) *Node[geom.Vec2] {
	near := t.NearestOf(goal)
	if p.cfg.GoalQuery != GoalCheapestVisible || near.Pos == goal {
		return near
	}
	if anchor := t.CheapestVisibleOf(goal); anchor != nil {
		return p.mustInsert(t, goal, anchor, anchor.Pos.Dist(goal), geom.Vec2{})
	}
	return near
}

// BestPath extracts the waypoint list for goal from a finished tree,
// root included
func (p *Planner) BestPath(t *Tree[geom.Vec2], goal geom.Vec2) []geom.Vec2 {
	return p.BestNode(t, goal).PathFromRoot()
}

// Arrived reports whether pos is within the steering arrival radius of goal
func (p *Planner) Arrived(pos, goal geom.Vec2) bool {
	return p.steering.Arrived(pos, goal)
}

// PlanPath plans and extracts the best path in one call. The tree is
// returned for diagnostics.
func (p *Planner) PlanPath(start, startVel, goal geom.Vec2) ([]geom.Vec2, *Tree[geom.Vec2]) {
	t := p.Plan(start, startVel, goal)
	return p.BestPath(t, goal), t
}
