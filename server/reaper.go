package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetentionReaper deletes artifacts once they are older than the retention TTL
type RetentionReaper struct {
	logger   *zap.Logger
	store    ArtifactStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	onReaped func(ctx context.Context, removed int)
}

// NewRetentionReaper creates a reaper sweeping store every interval
func NewRetentionReaper(logger *zap.Logger, store ArtifactStore, ttl, interval time.Duration) *RetentionReaper {
	return &RetentionReaper{
		logger:   logger,
		store:    store,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// OnReaped registers a callback invoked after each pass that removed at least one file
func (r *RetentionReaper) OnReaped(fn func(ctx context.Context, removed int)) {
	r.onReaped = fn
}

// Run sweeps immediately and then once per interval until ctx is done. A pass in progress is
// always completed; cancellation only cuts the wait between passes.
func (r *RetentionReaper) Run(ctx context.Context) error {
	r.logger.Info("starting retention reaper",
		zap.Duration("ttl", r.ttl),
		zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.pass(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("retention reaper shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func (r *RetentionReaper) pass(ctx context.Context) {
	removed, err := r.Sweep(ctx)
	if err != nil {
		r.logger.Error("retention pass failed", zap.Error(err))
	}
	if removed > 0 {
		r.logger.Info("retention pass completed", zap.Int("removed_count", removed))
		if r.onReaped != nil {
			r.onReaped(ctx, removed)
		}
	}
}

// Sweep performs a single pass, removing every regular file modified strictly before now - ttl.
// Failures on individual files are logged and skipped.
func (r *RetentionReaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.ttl)
	removed := 0
	var firstErr error

	r.logger.Debug("starting retention pass", zap.Time("cutoff", cutoff))

	for entry, err := range r.store.Entries() {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !entry.Regular || !entry.ModTime.Before(cutoff) {
			continue
		}

		if err := r.store.Delete(entry.Name); err != nil {
			r.logger.Warn("failed to remove expired artifact",
				zap.String("filename", entry.Name),
				zap.Error(err))
			continue
		}

		removed++
		r.logger.Debug("removed expired artifact",
			zap.String("filename", entry.Name),
			zap.Time("mod_time", entry.ModTime))
	}

	return removed, firstErr
}
