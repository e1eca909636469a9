package middlewares

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LivenessPath is the route answering liveness probes
const LivenessPath = "/"

// LoggingMiddleware logs every request through zap, optionally skipping the liveness route
func LoggingMiddleware(logger *zap.Logger, disableHealthcheckLog bool) gin.HandlerFunc {
	var skip []string
	if disableHealthcheckLog {
		skip = []string{LivenessPath}
	}

	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    io.Discard,
		SkipPaths: skip,
		Formatter: func(param gin.LogFormatterParams) string {
			fields := []zap.Field{
				zap.String("method", param.Method),
				zap.String("path", param.Path),
				zap.Int("status", param.StatusCode),
				zap.Duration("latency", param.Latency),
				zap.String("client_ip", param.ClientIP),
			}
			if param.ErrorMessage != "" {
				fields = append(fields, zap.String("error", param.ErrorMessage))
			}
			logger.Info("request", fields...)
			return ""
		},
	})
}
