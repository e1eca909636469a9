package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/vidgrab/vidgrab/server/config"
	"github.com/vidgrab/vidgrab/server/middlewares"
	"github.com/vidgrab/vidgrab/server/mocks"
	"go.uber.org/zap"
)

func TestTelemetryMiddleware_Disabled(t *testing.T) {
	cfg := config.Config{
		TelemetryConfig: config.TelemetryConfig{
			Enable: false,
		},
	}
	logger := zap.NewNop()
	mockOtel := &mocks.FakeOpenTelemetry{}

	telemetryMw, err := middlewares.NewTelemetryMiddleware(cfg, mockOtel, logger)
	assert.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(telemetryMw.Middleware())
	router.POST("/api/download", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req, _ := http.NewRequest("POST", "/api/download", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 0, mockOtel.RecordRequestCountCallCount())
	assert.Equal(t, 0, mockOtel.RecordResponseStatusCallCount())
	assert.Equal(t, 0, mockOtel.RecordRequestDurationCallCount())
}

func TestTelemetryMiddleware_Enabled(t *testing.T) {
	cfg := config.Config{
		TelemetryConfig: config.TelemetryConfig{
			Enable: true,
		},
	}
	logger := zap.NewNop()
	mockOtel := &mocks.FakeOpenTelemetry{}

	telemetryMw, err := middlewares.NewTelemetryMiddleware(cfg, mockOtel, logger)
	assert.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(telemetryMw.Middleware())
	router.GET("/api/files/:filename", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})

	req, _ := http.NewRequest("GET", "/api/files/abc.mp4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1, mockOtel.RecordRequestCountCallCount())
	assert.Equal(t, 1, mockOtel.RecordResponseStatusCallCount())
	assert.Equal(t, 1, mockOtel.RecordRequestDurationCallCount())

	_, method, path, status := mockOtel.RecordResponseStatusArgsForCall(0)
	assert.Equal(t, "GET", method)
	assert.Equal(t, "/api/files/:filename", path, "route template keeps label cardinality low")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTelemetryMiddleware_LivenessPath(t *testing.T) {
	cfg := config.Config{
		TelemetryConfig: config.TelemetryConfig{
			Enable: true,
		},
	}
	logger := zap.NewNop()
	mockOtel := &mocks.FakeOpenTelemetry{}

	telemetryMw, err := middlewares.NewTelemetryMiddleware(cfg, mockOtel, logger)
	assert.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(telemetryMw.Middleware())
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 0, mockOtel.RecordRequestCountCallCount())
	assert.Equal(t, 0, mockOtel.RecordResponseStatusCallCount())
	assert.Equal(t, 0, mockOtel.RecordRequestDurationCallCount())
}
