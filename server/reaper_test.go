package server

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// stubbornStore refuses to delete one file and delegates everything else
type stubbornStore struct {
	ArtifactStore
	stuck   string
	deleted []string
}

func (s *stubbornStore) Delete(name string) error {
	if name == s.stuck {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
	}
	s.deleted = append(s.deleted, name)
	return s.ArtifactStore.Delete(name)
}

func writeAgedFile(t *testing.T, dir, name string, modTime time.Time) {
	t.Helper()
	path := writeArtifactFile(t, dir, name, "x")
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestRetentionReaper_Sweep(t *testing.T) {
	store := newTestArtifactStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := time.Hour

	writeAgedFile(t, store.Dir(), "old1_a.mp4", now.Add(-2*time.Hour))
	writeAgedFile(t, store.Dir(), "old2_b.webm", now.Add(-61*time.Minute))
	writeAgedFile(t, store.Dir(), "fresh_c.mp4", now.Add(-10*time.Minute))
	writeAgedFile(t, store.Dir(), "edge_d.mp4", now.Add(-ttl))
	require.NoError(t, os.Mkdir(filepath.Join(store.Dir(), "olddir"), 0755))
	require.NoError(t, os.Chtimes(filepath.Join(store.Dir(), "olddir"), now.Add(-5*time.Hour), now.Add(-5*time.Hour)))

	reaper := NewRetentionReaper(zaptest.NewLogger(t), store, ttl, time.Minute)
	reaper.now = func() time.Time { return now }

	removed, err := reaper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var remaining []string
	for entry, err := range store.Entries() {
		require.NoError(t, err)
		remaining = append(remaining, entry.Name)
	}
	assert.ElementsMatch(t, []string{"fresh_c.mp4", "edge_d.mp4", "olddir"}, remaining)

	removed, err = reaper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "second pass finds nothing new")
}

func TestRetentionReaper_Sweep_DeleteFailureContinues(t *testing.T) {
	base := newTestArtifactStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeAgedFile(t, base.Dir(), "a_first.mp4", now.Add(-3*time.Hour))
	writeAgedFile(t, base.Dir(), "b_locked.mp4", now.Add(-3*time.Hour))
	writeAgedFile(t, base.Dir(), "c_last.mp4", now.Add(-3*time.Hour))

	store := &stubbornStore{ArtifactStore: base, stuck: "b_locked.mp4"}
	core, logs := observer.New(zapcore.WarnLevel)
	reaper := NewRetentionReaper(zap.New(core), store, time.Hour, time.Minute)
	reaper.now = func() time.Time { return now }

	removed, err := reaper.Sweep(context.Background())

	require.NoError(t, err, "a single failed delete does not fail the pass")
	assert.Equal(t, 2, removed)
	assert.ElementsMatch(t, []string{"a_first.mp4", "c_last.mp4"}, store.deleted)

	var remaining []string
	for entry, err := range base.Entries() {
		require.NoError(t, err)
		remaining = append(remaining, entry.Name)
	}
	assert.Equal(t, []string{"b_locked.mp4"}, remaining)

	warnings := logs.FilterMessage("failed to remove expired artifact").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "b_locked.mp4", warnings[0].ContextMap()["filename"])
}

func TestRetentionReaper_Sweep_MissingDirectory(t *testing.T) {
	store := newTestArtifactStore(t)
	require.NoError(t, os.RemoveAll(store.Dir()))

	reaper := NewRetentionReaper(zaptest.NewLogger(t), store, time.Hour, time.Minute)

	removed, err := reaper.Sweep(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, removed)
}

func TestRetentionReaper_Run(t *testing.T) {
	store := newTestArtifactStore(t)
	now := time.Now()
	writeAgedFile(t, store.Dir(), "old_a.mp4", now.Add(-3*time.Hour))

	reaper := NewRetentionReaper(zaptest.NewLogger(t), store, time.Hour, time.Hour)
	var reaped atomic.Int64
	reaper.OnReaped(func(_ context.Context, removed int) {
		reaped.Add(int64(removed))
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- reaper.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return reaped.Load() == 1
	}, 2*time.Second, 10*time.Millisecond, "first pass runs immediately")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop after cancellation")
	}

	_, err := os.Stat(filepath.Join(store.Dir(), "old_a.mp4"))
	assert.True(t, os.IsNotExist(err))
}
