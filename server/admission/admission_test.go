package admission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/vidgrab/vidgrab/server/config"
	"go.uber.org/zap/zaptest"
)

var errStoreDown = errors.New("store down")

type failingStore struct{}

func (failingStore) Get(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}

func (failingStore) Peek(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}

func (failingStore) Reset(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}

func (failingStore) Increment(context.Context, string, int64, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}

func (failingStore) Close() error { return nil }

func TestFixedWindowLimiter_Allow(t *testing.T) {
	store := NewMemoryCounterStore()
	l := NewFixedWindowLimiter("download", 5, time.Minute, store)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		decision, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 5, decision.Limit)
		assert.Equal(t, 5-i, decision.Remaining)
		assert.Greater(t, decision.ResetAfter, time.Duration(0))
		assert.LessOrEqual(t, decision.ResetAfter, time.Minute)
	}

	decision, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "6th request is denied")
	assert.Equal(t, 0, decision.Remaining)

	decision, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "other clients are tracked separately")
}

func TestFixedWindowLimiter_IndependentLimiters(t *testing.T) {
	store := NewMemoryCounterStore()
	info := NewFixedWindowLimiter("info", 1, time.Minute, store)
	download := NewFixedWindowLimiter("download", 1, time.Minute, store)
	ctx := context.Background()

	d, err := info.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = download.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "download budget is not consumed by info requests")

	d, err = info.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestFixedWindowLimiter_FailsOpen(t *testing.T) {
	l := NewFixedWindowLimiter("info", 10, time.Minute, failingStore{})

	decision, err := l.Allow(context.Background(), "ip")

	assert.ErrorIs(t, err, errStoreDown)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 10, l.Limit())
	assert.Equal(t, time.Minute, l.Window())
}

func TestFixedWindowLimiter_DeniedResetIsNeverZero(t *testing.T) {
	l := NewFixedWindowLimiter("download", 1, time.Minute, NewMemoryCounterStore())
	l.now = func() time.Time { return time.Now().Add(time.Hour) }
	ctx := context.Background()

	_, err := l.Allow(ctx, "ip")
	require.NoError(t, err)

	decision, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, time.Second, decision.ResetAfter)
}

func TestFixedWindowLimiter_WindowExpiry(t *testing.T) {
	l := NewFixedWindowLimiter("download", 1, 200*time.Millisecond, NewMemoryCounterStore())
	ctx := context.Background()

	d, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	require.Eventually(t, func() bool {
		d, err := l.Allow(ctx, "ip")
		return err == nil && d.Allowed
	}, 2*time.Second, 50*time.Millisecond, "a new window starts once the old one has expired")
}

func TestFixedWindowLimiter_Concurrent(t *testing.T) {
	l := NewFixedWindowLimiter("download", 1000, time.Minute, NewMemoryCounterStore())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				d, err := l.Allow(ctx, "shared")
				if err == nil && d.Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, allowed)

	d, err := l.Allow(ctx, "shared")
	require.NoError(t, err)
	assert.False(t, d.Allowed, "the 1001st request is denied")
}

func TestNewCounterStore(t *testing.T) {
	logger := zaptest.NewLogger(t)

	store, err := NewCounterStore(context.Background(), config.AdmissionConfig{Provider: "memory"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCounterStore{}, store)
	assert.NoError(t, store.Close())

	_, err = NewCounterStore(context.Background(), config.AdmissionConfig{Provider: "memcached"}, logger)
	assert.Error(t, err)

	_, err = NewCounterStore(context.Background(), config.AdmissionConfig{Provider: "redis"}, logger)
	assert.Error(t, err, "redis requires a url")
}
