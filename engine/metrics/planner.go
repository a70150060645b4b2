// Package metrics exposes planner counters and histograms to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sample results
const (
	SampleExtended = "extended"
	SampleNoAnchor = "no_anchor"
	SampleCollided = "collided"
)

// Steer outcomes
const (
	SteerArrived  = "arrived"
	SteerBudget   = "budget"
	SteerCollided = "collided"
)

// Steal results
const (
	StealReparented    = "reparented"
	StealCopied        = "copied"
	StealCycleRejected = "cycle_rejected"
	StealOverBudget    = "over_budget"
)

// Planner collects per-plan statistics. A nil *Planner is valid and records
// nothing, so callers never need to check.
type Planner struct {
	PlanDuration prometheus.Histogram
	TreeNodes    prometheus.Histogram
	Plans        *prometheus.CounterVec
	Samples      *prometheus.CounterVec
	Steers       *prometheus.CounterVec
	Steals       *prometheus.CounterVec
}

// NewPlanner creates the collectors and registers them on reg (skipped when
// reg is nil).
func NewPlanner(reg prometheus.Registerer) *Planner {
	m := &Planner{
		PlanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rrt_plan_duration_seconds",
			Help:    "Wall time spent building one planning tree",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		TreeNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rrt_tree_nodes",
			Help:    "Number of nodes in a finished planning tree",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rrt_plans_total",
			Help: "Plans built, by kind (straight or sampled)",
		}, []string{"kind"}),
		Samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rrt_samples_total",
			Help: "Random samples drawn, by result",
		}, []string{"result"}),
		Steers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rrt_steer_total",
			Help: "Steering simulations, by outcome",
		}, []string{"outcome"}),
		Steals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rrt_steal_total",
			Help: "Rewiring attempts that changed the tree, by result",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.PlanDuration, m.TreeNodes, m.Plans, m.Samples, m.Steers, m.Steals)
	}
	return m
}

// ObservePlan records one finished plan
func (m *Planner) ObservePlan(kind string, d time.Duration, nodes int) {
	if m == nil {
		return
	}
	m.Plans.WithLabelValues(kind).Inc()
	m.PlanDuration.Observe(d.Seconds())
	m.TreeNodes.Observe(float64(nodes))
}

func (m *Planner) Sample(result string) {
	if m == nil {
		return
	}
	m.Samples.WithLabelValues(result).Inc()
}

func (m *Planner) Steer(outcome string) {
	if m == nil {
		return
	}
	m.Steers.WithLabelValues(outcome).Inc()
}

func (m *Planner) Steal(result string) {
	if m == nil {
		return
	}
	m.Steals.WithLabelValues(result).Inc()
}

// Handler serves the metrics in g over HTTP
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
