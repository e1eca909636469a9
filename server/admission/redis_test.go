package admission

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/vidgrab/vidgrab/server/config"
	"go.uber.org/zap/zaptest"
)

// Helper function to get Redis URL for testing
func getTestRedisURL() string {
	testURLs := []string{
		"redis://localhost:6379/15",
		"redis://127.0.0.1:6379/15",
	}

	for _, url := range testURLs {
		opt, err := redis.ParseURL(url)
		if err != nil {
			continue
		}
		client := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		_ = client.Close()
		if err == nil {
			return url
		}
	}

	return ""
}

// Helper function to skip test if Redis is not available
func requireRedis(t *testing.T) string {
	url := getTestRedisURL()
	if url == "" {
		t.Skip("Redis not available for integration tests")
	}
	return url
}

func cleanupRedisTestData(t *testing.T, url string) {
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	defer func() { _ = client.Close() }()

	require.NoError(t, client.FlushDB(context.Background()).Err())
}

func TestNewRedisCounterStore_InvalidURL(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewRedisCounterStore(context.Background(), config.AdmissionConfig{Provider: "redis", URL: "not-a-url"}, logger)
	assert.Error(t, err)
}

func TestRedisCounterStore_Get(t *testing.T) {
	url := requireRedis(t)
	defer cleanupRedisTestData(t, url)

	ctx := context.Background()
	store, err := NewRedisCounterStore(ctx, config.AdmissionConfig{Provider: "redis", URL: url}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rate := limiter.Rate{Period: time.Minute, Limit: 2}

	res, err := store.Get(ctx, "test:ip", rate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Remaining)
	assert.False(t, res.Reached)
	assert.Greater(t, res.Reset, time.Now().Unix())

	res, err = store.Get(ctx, "test:ip", rate)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Remaining)

	res, err = store.Get(ctx, "test:ip", rate)
	require.NoError(t, err)
	assert.True(t, res.Reached)
}

func TestRedisCounterStore_WithLimiter(t *testing.T) {
	url := requireRedis(t)
	defer cleanupRedisTestData(t, url)

	ctx := context.Background()
	store, err := NewRedisCounterStore(ctx, config.AdmissionConfig{Provider: "redis", URL: url}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	l := NewFixedWindowLimiter("download", 2, time.Minute, store)

	for range 2 {
		d, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}
