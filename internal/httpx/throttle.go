package httpx

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/littlelemon/internal/cache"
	"github.com/MikeMC777/littlelemon/internal/metrics"
)

type ThrottleConfig struct {
	Anon   int // per window, 0 disables
	User   int // per window, 0 disables
	Window time.Duration
}

// Throttle applies fixed-window rate limits keyed by user id for
// authenticated callers and by client IP otherwise. It must run after
// Authenticate. Store failures let the request through.
func Throttle(store cache.Store, cfg ThrottleConfig, log *zap.Logger) gin.HandlerFunc {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return func(c *gin.Context) {
		scope, ident, limit := "anon", c.ClientIP(), cfg.Anon
		if p := CurrentUser(c); p != nil {
			scope, ident, limit = "user", strconv.FormatInt(p.ID, 10), cfg.User
		}
		if limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("throttle:%s:%s", scope, ident)
		n, err := store.Incr(ctx, key, cfg.Window)
		if err != nil {
			log.Warn("throttle store unavailable", zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(int64(limit)-n, 0), 10))
		if n > int64(limit) {
			wait, _ := store.TTL(ctx, key)
			if wait <= 0 {
				wait = cfg.Window
			}
			metrics.ThrottledRequests.WithLabelValues(scope).Inc()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			Abort(c, http.StatusTooManyRequests,
				fmt.Sprintf("request was throttled, expected available in %d seconds", int(math.Ceil(wait.Seconds()))))
			return
		}
		c.Next()
	}
}
