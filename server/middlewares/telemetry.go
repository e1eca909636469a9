package middlewares

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	config "github.com/vidgrab/vidgrab/server/config"
	otel "github.com/vidgrab/vidgrab/server/otel"
	"go.uber.org/zap"
)

// apiPrefix marks the routes that are measured
const apiPrefix = "/api/"

// TelemetryMiddleware records request metrics
type TelemetryMiddleware interface {
	Middleware() gin.HandlerFunc
}

// TelemetryMiddlewareImpl implements TelemetryMiddleware on top of OpenTelemetry
type TelemetryMiddlewareImpl struct {
	cfg       config.Config
	telemetry otel.OpenTelemetry
	logger    *zap.Logger
}

// NewTelemetryMiddleware creates a new telemetry middleware
func NewTelemetryMiddleware(cfg config.Config, telemetry otel.OpenTelemetry, logger *zap.Logger) (TelemetryMiddleware, error) {
	return &TelemetryMiddlewareImpl{
		cfg:       cfg,
		telemetry: telemetry,
		logger:    logger,
	}, nil
}

// Middleware returns a gin handler recording count, status and duration of API requests
func (t *TelemetryMiddlewareImpl) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.cfg.TelemetryConfig.Enable || t.telemetry == nil || !strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		ctx := c.Request.Context()
		t.telemetry.RecordRequestCount(ctx, method, path)

		c.Next()

		duration := float64(time.Since(start).Microseconds()) / 1000.0
		t.telemetry.RecordResponseStatus(ctx, method, path, c.Writer.Status())
		t.telemetry.RecordRequestDuration(ctx, method, path, duration)

		t.logger.Debug("request metrics recorded",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Float64("duration_ms", duration))
	}
}
