// Package cache provides a redis-backed cache for resolved prospect routes.
// A cached route is only valid until the next quote mutation for the owning
// promise, so every quote status or selection change must invalidate it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no cached route exists for a promise.
var ErrMiss = errors.New("route cache miss")

// RouteCache stores resolved route tags keyed by promise.
type RouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRouteCache creates a route cache from a redis URL. The TTL is a safety
// bound; correctness relies on explicit invalidation, not expiry.
func NewRouteCache(redisURL string, ttl time.Duration) (*RouteCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RouteCache{client: redis.NewClient(opt), ttl: ttl}, nil
}

// NewRouteCacheWithClient wraps an existing redis client (used in tests).
func NewRouteCacheWithClient(client *redis.Client, ttl time.Duration) *RouteCache {
	return &RouteCache{client: client, ttl: ttl}
}

func routeKey(promiseID uuid.UUID) string {
	return "route:promise:" + promiseID.String()
}

// Get returns the cached route tag for a promise, or ErrMiss.
func (c *RouteCache) Get(ctx context.Context, promiseID uuid.UUID) (string, error) {
	val, err := c.client.Get(ctx, routeKey(promiseID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set stores the resolved route tag for a promise.
func (c *RouteCache) Set(ctx context.Context, promiseID uuid.UUID, routeTag string) error {
	return c.client.Set(ctx, routeKey(promiseID), routeTag, c.ttl).Err()
}

// Invalidate drops the cached route for a promise. Called whenever a quote
// belonging to the promise changes status or selection.
func (c *RouteCache) Invalidate(ctx context.Context, promiseID uuid.UUID) error {
	return c.client.Del(ctx, routeKey(promiseID)).Err()
}

// Ping verifies redis connectivity.
func (c *RouteCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying redis client.
func (c *RouteCache) Close() error {
	return c.client.Close()
}
