package middlewares

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	admission "github.com/vidgrab/vidgrab/server/admission"
	config "github.com/vidgrab/vidgrab/server/config"
	otel "github.com/vidgrab/vidgrab/server/otel"
	types "github.com/vidgrab/vidgrab/types"
	"go.uber.org/zap"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// RateLimiter rejects clients that exceeded their request budget
type RateLimiter interface {
	Middleware() gin.HandlerFunc
}

// RateLimiterImpl applies an admission.Limiter keyed by client IP
type RateLimiterImpl struct {
	logger    *zap.Logger
	name      string
	limiter   admission.Limiter
	telemetry otel.OpenTelemetry
}

// RateLimiterNoop is used when admission control is disabled
type RateLimiterNoop struct{}

// NewRateLimitMiddleware creates a rate limiting middleware; name labels the limiter in logs and metrics
func NewRateLimitMiddleware(logger *zap.Logger, cfg config.Config, name string, limiter admission.Limiter, telemetry otel.OpenTelemetry) RateLimiter {
	if !cfg.AdmissionConfig.Enable || limiter == nil {
		return &RateLimiterNoop{}
	}

	return &RateLimiterImpl{
		logger:    logger,
		name:      name,
		limiter:   limiter,
		telemetry: telemetry,
	}
}

// Middleware returns the rate limiting handler for RateLimiterImpl
func (rl *RateLimiterImpl) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		decision, err := rl.limiter.Allow(c.Request.Context(), clientIP)
		if err != nil {
			rl.logger.Warn("admission check failed, allowing request",
				zap.String("limiter", rl.name),
				zap.String("client_ip", clientIP),
				zap.Error(err))
			c.Next()
			return
		}

		resetSeconds := strconv.Itoa(int(math.Ceil(decision.ResetAfter.Seconds())))
		c.Header(HeaderRateLimitLimit, strconv.Itoa(decision.Limit))
		c.Header(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))
		c.Header(HeaderRateLimitReset, resetSeconds)

		if !decision.Allowed {
			rl.logger.Info("rate limit exceeded",
				zap.String("limiter", rl.name),
				zap.String("client_ip", clientIP),
				zap.Int("limit", decision.Limit))
			if rl.telemetry != nil {
				rl.telemetry.RecordRateLimited(c.Request.Context(), rl.name)
			}

			c.Header(HeaderRetryAfter, resetSeconds)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Success: false,
				Error:   fmt.Sprintf("Rate limit exceeded: %d per %s", rl.limiter.Limit(), FormatWindow(rl.limiter.Window())),
			})
			return
		}

		c.Next()
	}
}

// Middleware returns a no-op middleware for RateLimiterNoop
func (rl *RateLimiterNoop) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// FormatWindow renders a window as "1 minute", "30 seconds", "2 hours"
func FormatWindow(d time.Duration) string {
	unit := func(n int64, name string) string {
		if n == 1 {
			return "1 " + name
		}
		return fmt.Sprintf("%d %ss", n, name)
	}

	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return unit(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return unit(int64(d/time.Minute), "minute")
	case d >= time.Second && d%time.Second == 0:
		return unit(int64(d/time.Second), "second")
	default:
		return d.String()
	}
}
