// Package admission implements per-client fixed window request limiting.
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/vidgrab/vidgrab/server/config"
	"go.uber.org/zap"
)

// keyPrefix namespaces every counter written by this service
const keyPrefix = "vidgrab:admission"

// Decision is the outcome of a single admission check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Limit() int
	Window() time.Duration
}

// CounterStore is a limiter backend that owns a connection or cache to release at shutdown
type CounterStore interface {
	limiter.Store

	// Close releases any resources held by the store
	Close() error
}

// FixedWindowLimiter allows limit requests per key in each window. The window starts with
// the first request of a key and is never extended.
type FixedWindowLimiter struct {
	name    string
	limit   int
	window  time.Duration
	limiter *limiter.Limiter
	now     func() time.Time
}

var _ Limiter = (*FixedWindowLimiter)(nil)

// NewFixedWindowLimiter creates a limiter; name keeps counters of different limiters apart
func NewFixedWindowLimiter(name string, limit int, window time.Duration, store CounterStore) *FixedWindowLimiter {
	rate := limiter.Rate{
		Period: window,
		Limit:  int64(limit),
	}

	return &FixedWindowLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		limiter: limiter.New(store, rate),
		now:     time.Now,
	}
}

// Allow counts the request and reports whether it fits in the current window
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := l.limiter.Get(ctx, l.name+":"+key)
	if err != nil {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, fmt.Errorf("failed to count request: %w", err)
	}

	resetAfter := time.Unix(res.Reset, 0).Sub(l.now())
	if resetAfter <= 0 {
		// Reset has second resolution; never tell a denied client to retry immediately
		resetAfter = time.Second
	}
	if resetAfter > l.window {
		resetAfter = l.window
	}

	return Decision{
		Allowed:    !res.Reached,
		Limit:      int(res.Limit),
		Remaining:  int(res.Remaining),
		ResetAfter: resetAfter,
	}, nil
}

// Limit returns the number of requests allowed per window
func (l *FixedWindowLimiter) Limit() int {
	return l.limit
}

// Window returns the window length
func (l *FixedWindowLimiter) Window() time.Duration {
	return l.window
}

// NewCounterStore creates the counter store selected by the configuration
func NewCounterStore(ctx context.Context, cfg config.AdmissionConfig, logger *zap.Logger) (CounterStore, error) {
	switch cfg.Provider {
	case "", "memory":
		logger.Debug("using in-memory admission counters")
		return NewMemoryCounterStore(), nil
	case "redis":
		return NewRedisCounterStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported admission provider: %s", cfg.Provider)
	}
}
