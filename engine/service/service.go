// Package service exposes the planner over HTTP. Every request builds its own
// planner, so requests never share mutable state; scenes are read-only.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/1siamBot/rrt-engine/engine/config"
	"github.com/1siamBot/rrt-engine/engine/geom"
	"github.com/1siamBot/rrt-engine/engine/logging"
	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/metrics"
	"github.com/1siamBot/rrt-engine/engine/pathfind"
	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrUnknownScene = errors.New("service: unknown scene")
	ErrBadRequest   = errors.New("service: bad request")
)

// Cache stores plan responses by request key. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*PlanResponse, bool, error)
	Put(ctx context.Context, key string, resp *PlanResponse) error
}

// PlanRequest is the body of POST /plan. Zero Iterations and Seed keep the
// configured values; Steal overrides the config when set.
type PlanRequest struct {
	Scene      string    `json:"scene"`
	Start      geom.Vec2 `json:"start"`
	StartVel   geom.Vec2 `json:"start_vel"`
	Goal       geom.Vec2 `json:"goal"`
	Iterations int       `json:"iterations,omitempty"`
	Seed       uint64    `json:"seed,omitempty"`
	Steal      *bool     `json:"steal,omitempty"`
}

// PlanResponse is the result of one plan
type PlanResponse struct {
	Scene   string      `json:"scene"`
	Path    []geom.Vec2 `json:"path"`
	Length  float64     `json:"length"`
	Nodes   int         `json:"nodes"`
	Reached bool        `json:"reached"`
	Cached  bool        `json:"cached"`
}

// SceneInfo is one entry of GET /scenes
type SceneInfo struct {
	Name      string    `json:"name"`
	Bounds    geom.Rect `json:"bounds"`
	Obstacles int       `json:"obstacles"`
}

// Service plans paths in a fixed set of scenes
type Service struct {
	cfg     config.Config
	scenes  map[string]*maplib.Scene
	cache   Cache
	metrics *metrics.Planner
	reg     *prometheus.Registry
	logger  *slog.Logger
}

type Option func(*Service)

// WithCache enables response caching for requests with a fixed seed
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithRegistry records planner metrics on reg and serves them on /metrics
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Service) {
		s.reg = reg
		s.metrics = metrics.NewPlanner(reg)
	}
}

// New creates a service over scenes, keyed by scene name
func New(cfg config.Config, scenes []*maplib.Scene, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, scenes: make(map[string]*maplib.Scene, len(scenes))}
	for _, sc := range scenes {
		if _, dup := s.scenes[sc.Name]; dup {
			return nil, fmt.Errorf("duplicate scene name %q", sc.Name)
		}
		s.scenes[sc.Name] = sc
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s, nil
}

// Handler returns the HTTP routes
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/scenes", s.listScenes)
	r.Post("/plan", s.handlePlan)
	r.Get("/plan/stream", s.handleStream)
	if s.reg != nil {
		r.Handle("/metrics", metrics.Handler(s.reg))
	}
	return r
}

func (s *Service) listScenes(w http.ResponseWriter, r *http.Request) {
	out := make([]SceneInfo, 0, len(s.scenes))
	for _, sc := range s.scenes {
		out = append(out, SceneInfo{Name: sc.Name, Bounds: sc.Bounds, Obstacles: len(sc.Obstacles)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := s.Plan(r.Context(), req)
	switch {
	case errors.Is(err, ErrUnknownScene):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, ErrBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Plan answers one request, consulting the cache when the request pins a
// seed. Cache failures are logged and the plan is computed anyway.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	resp, _, err := s.plan(ctx, req, true)
	return resp, err
}

// plan validates req and plans it. The tree is nil when the answer came
// from the cache.
func (s *Service) plan(ctx context.Context, req PlanRequest, useCache bool) (*PlanResponse, *pathfind.Tree[geom.Vec2], error) {
	scene, ok := s.scenes[req.Scene]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScene, req.Scene)
	}
	if !scene.Bounds.Contains(req.Start) || !scene.Bounds.Contains(req.Goal) {
		return nil, nil, fmt.Errorf("%w: start and goal must lie inside the scene bounds", ErrBadRequest)
	}
	if req.Iterations < 0 {
		return nil, nil, fmt.Errorf("%w: iterations must be >= 0", ErrBadRequest)
	}
	if req.Iterations > s.cfg.Planner.MaxIterations {
		return nil, nil, fmt.Errorf("%w: iterations must be <= %d", ErrBadRequest, s.cfg.Planner.MaxIterations)
	}

	cfg := s.cfg
	if req.Iterations > 0 {
		cfg.Planner.Iterations = req.Iterations
	}
	if req.Seed != 0 {
		cfg.Planner.Seed = req.Seed
	}
	if req.Steal != nil {
		cfg.Planner.Steal = *req.Steal
	}

	cacheable := useCache && s.cache != nil && cfg.Planner.Seed != 0
	key := CacheKey(req, cfg)
	if cacheable {
		cached, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("plan cache get failed", "error", err)
		} else if hit {
			cached.Cached = true
			return cached, nil, nil
		}
	}

	st := cfg.Build(scene, pathfind.WithLogger(s.logger), pathfind.WithMetrics(s.metrics))
	began := time.Now()
	tree := st.Planner.Plan(req.Start, req.StartVel, req.Goal)
	end := st.Planner.BestNode(tree, req.Goal)
	path := end.PathFromRoot()
	resp := &PlanResponse{
		Scene:   scene.Name,
		Path:    path,
		Length:  PathLength(path),
		Nodes:   tree.Len(),
		Reached: st.Planner.Arrived(end.Pos, req.Goal),
	}
	s.logger.Info("planned", "scene", scene.Name, "nodes", resp.Nodes, "reached", resp.Reached, "elapsed", time.Since(began))

	if cacheable {
		if err := s.cache.Put(ctx, key, resp); err != nil {
			s.logger.Warn("plan cache put failed", "error", err)
		}
	}
	return resp, tree, nil
}

// CacheKey identifies a request together with the planner settings that
// shape its answer
func CacheKey(req PlanRequest, cfg config.Config) string {
	h := xxhash.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(req)
	_ = enc.Encode(cfg.Planner)
	_ = enc.Encode(cfg.Steering)
	_ = enc.Encode(cfg.Oracle)
	_ = enc.Encode(cfg.Controller)
	return req.Scene + ":" + strconv.FormatUint(h.Sum64(), 16)
}

// PathLength is the polyline length of a path
func PathLength(path []geom.Vec2) float64 {
	var l float64
	for i := 1; i < len(path); i++ {
		l += path[i-1].Dist(path[i])
	}
	return l
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
