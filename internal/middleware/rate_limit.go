package middleware

import (
	"errors"
	"net/http"

	ratelimiter "github.com/SeakMengs/AutoSign/internal/rate_limiter"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/gin-gonic/gin"
)

var errRateLimited = errors.New("rate limit exceeded, try again later")

func (m Middleware) limit(ctx *gin.Context, limiter ratelimiter.Limiter, scope string) {
	if limiter == nil || !m.app.Config.RateLimiter.Enabled {
		ctx.Next()
		return
	}

	allowed, err := limiter.Allow(ctx.Request.Context(), ctx.ClientIP())
	if err != nil {
		// a broken limiter store must not take the api down
		m.app.Logger.Errorf("Rate limiter %s failed: %v", scope, err)
		ctx.Next()
		return
	}

	if !allowed {
		m.app.Logger.Debugf("Rate limit %s exceeded for %s", scope, ctx.ClientIP())
		m.app.Metrics.RateLimited(scope)
		util.ResponseFailed(ctx, http.StatusTooManyRequests, "Too many requests", util.GenerateErrorMessages(errRateLimited, "rateLimit"), nil)
		return
	}

	ctx.Next()
}

func (m Middleware) RateLimiterMiddleware(ctx *gin.Context) {
	m.limit(ctx, m.rateLimiter, "global")
}

// SignerRateLimiterMiddleware guards the public token endpoints against guessing.
func (m Middleware) SignerRateLimiterMiddleware(ctx *gin.Context) {
	m.limit(ctx, m.signerRateLimiter, "signer")
}
