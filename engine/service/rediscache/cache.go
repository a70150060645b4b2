// Package rediscache stores plan responses in Redis
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/1siamBot/rrt-engine/engine/service"
	backend "github.com/redis/go-redis/v9"
)

// Cache implements service.Cache on a Redis client
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ service.Cache = (*Cache)(nil)

type Option func(*Cache)

// WithTTL sets the expiration for cached plans
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New connects to a Redis server
func New(address, password string, db int, opts ...Option) *Cache {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient wraps an existing client
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: "rrt:plan:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached response for key; a miss is not an error
func (c *Cache) Get(ctx context.Context, key string) (*service.PlanResponse, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get plan: %w", err)
	}
	var resp service.PlanResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &resp, true, nil
}

// Put stores a response under key. A zero TTL keeps it forever.
func (c *Cache) Put(ctx context.Context, key string, resp *service.PlanResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	return nil
}

// Ping checks the connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client
func (c *Cache) Close() error {
	return c.client.Close()
}
