// Package cache stores the computed leaderboard in Redis so the read API can
// serve it without recomputing on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swipefolio/stockpipe/internal/models"
)

const leaderboardKey = "stockpipe:leaderboard"

// ErrMiss is returned when no leaderboard is cached.
var ErrMiss = errors.New("leaderboard not cached")

// LeaderboardCache is a TTL cache over Redis
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a leaderboard cache
func New(addr, password string, db int, ttl time.Duration) *LeaderboardCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &LeaderboardCache{client: client, ttl: ttl}
}

// Ping verifies the Redis connection
func (c *LeaderboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Set stores the leaderboard with the configured TTL
func (c *LeaderboardCache) Set(ctx context.Context, lb *models.Leaderboard) error {
	data, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	if err := c.client.Set(ctx, leaderboardKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache leaderboard: %w", err)
	}
	return nil
}

// Get retrieves the cached leaderboard, or ErrMiss when absent or expired
func (c *LeaderboardCache) Get(ctx context.Context) (*models.Leaderboard, error) {
	data, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached leaderboard: %w", err)
	}

	var lb models.Leaderboard
	if err := json.Unmarshal(data, &lb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached leaderboard: %w", err)
	}
	return &lb, nil
}

// Close closes the Redis client
func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}
