package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1siamBot/rrt-engine/engine/maplib"
	"github.com/1siamBot/rrt-engine/engine/service"
	"github.com/1siamBot/rrt-engine/engine/service/rediscache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP planning service",
	Long: `Serves POST /plan, GET /scenes, GET /health and GET /metrics. Scenes come from
--scene (repeatable) plus the config's scene. With --redis-addr, answers to
requests that pin a seed are cached in Redis.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringP("addr", "a", ":8080", "Address to listen on")
	f.StringSlice("scene", nil, "Scene file to serve (repeatable)")
	f.String("redis-addr", "", "Redis address for the plan cache; empty disables caching")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database")
	f.Duration("cache-ttl", time.Hour, "Expiry of cached plans, 0 keeps them forever")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()

	var scenes []*maplib.Scene
	if cfg.Scene != "" {
		s, err := cfg.LoadScene()
		if err != nil {
			return fmt.Errorf("failed to load scene: %w", err)
		}
		scenes = append(scenes, s)
	}
	paths, _ := f.GetStringSlice("scene")
	for _, p := range paths {
		s, err := maplib.LoadScene(p)
		if err != nil {
			return fmt.Errorf("failed to load scene: %w", err)
		}
		scenes = append(scenes, s)
	}
	if len(scenes) == 0 {
		return errors.New("no scenes: pass --scene or set scene in the config")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	opts := []service.Option{service.WithLogger(logger), service.WithRegistry(reg)}

	if addr, _ := f.GetString("redis-addr"); addr != "" {
		password, _ := f.GetString("redis-password")
		db, _ := f.GetInt("redis-db")
		ttl, _ := f.GetDuration("cache-ttl")
		cache := rediscache.New(addr, password, db, rediscache.WithTTL(ttl))
		defer cache.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		err := cache.Ping(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", addr, err)
		}
		opts = append(opts, service.WithCache(cache))
		logger.Info("plan cache enabled", "redis", addr, "ttl", ttl)
	}

	svc, err := service.New(cfg, scenes, opts...)
	if err != nil {
		return err
	}

	addr, _ := f.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr, "scenes", len(scenes))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
	}
	return nil
}
