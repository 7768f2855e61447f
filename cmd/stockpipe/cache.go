package main

import (
	"context"

	"github.com/swipefolio/stockpipe/internal/cache"
	"github.com/swipefolio/stockpipe/internal/models"
)

// openCache returns the leaderboard cache, or nil when Redis is not
// configured.
func openCache() *cache.LeaderboardCache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
}

// writeLeaderboardCache warms the Redis cache after a report is built. Cache
// failures are logged, never fatal.
func writeLeaderboardCache(ctx context.Context, lb *models.Leaderboard) {
	c := openCache()
	if c == nil {
		return
	}
	defer c.Close()

	if err := c.Set(ctx, lb); err != nil {
		logger.Warn("failed to cache leaderboard", "error", err)
	}
}
