package ratelimiter

import (
	"context"
	"time"

	"github.com/SeakMengs/AutoSign/internal/config"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether the request identified by key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NewRateLimiter keeps windows in redis when a client is given so every api
// replica shares the same budget, otherwise in memory.
func NewRateLimiter(limit int, window time.Duration, prefix string, rdb *redis.Client, logger *zap.SugaredLogger) Limiter {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("test")
	}

	if rdb != nil {
		logger.Debugf("Using redis rate limiter %s, %d requests per %s", prefix, limit, window)
		return NewRedisLimiter(rdb, prefix, limit, window)
	}

	logger.Debugf("Using in memory rate limiter %s, %d requests per %s", prefix, limit, window)
	return NewFixedWindowLimiter(limit, window)
}

// NewFromConfig builds the global limiter and the tighter one guarding signer links.
func NewFromConfig(cfg config.RateLimiterConfig, rdb *redis.Client, logger *zap.SugaredLogger) (global Limiter, signer Limiter) {
	global = NewRateLimiter(cfg.RequestsPerTimeFrame, cfg.TimeFrame, "ratelimit:global", rdb, logger)
	signer = NewRateLimiter(cfg.SignerRequestsPerTimeFrame, cfg.TimeFrame, "ratelimit:signer", rdb, logger)
	return global, signer
}
