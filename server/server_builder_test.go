package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
	limiter "github.com/ulule/limiter/v3"
	server "github.com/vidgrab/vidgrab/server"
	admission "github.com/vidgrab/vidgrab/server/admission"
	config "github.com/vidgrab/vidgrab/server/config"
	mocks "github.com/vidgrab/vidgrab/server/mocks"
	testutils "github.com/vidgrab/vidgrab/server/testutils"
	types "github.com/vidgrab/vidgrab/types"
	zap "go.uber.org/zap"
	zaptest "go.uber.org/zap/zaptest"
)

// countingStore wraps a CounterStore and counts increments and closes
type countingStore struct {
	admission.CounterStore
	increments testutils.Counter
	closes     testutils.Counter
}

func newCountingStore() *countingStore {
	return &countingStore{
		CounterStore: admission.NewMemoryCounterStore(),
		increments:   testutils.NewCounter(),
		closes:       testutils.NewCounter(),
	}
}

func (s *countingStore) Get(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	s.increments.Increment()
	return s.CounterStore.Get(ctx, key, rate)
}

func (s *countingStore) Close() error {
	s.closes.Increment()
	return s.CounterStore.Close()
}

func defaultTestConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.NewWithDefaults(context.Background(), &config.Config{DownloadDir: t.TempDir()})
	require.NoError(t, err)
	return *cfg
}

func TestVideoServerBuilder_Build(t *testing.T) {
	tests := []struct {
		name        string
		setupConfig func(t *testing.T) config.Config
		logger      *zap.Logger
		expectError string
	}{
		{
			name:        "build with valid config",
			setupConfig: defaultTestConfig,
			logger:      zap.NewNop(),
		},
		{
			name:        "nil logger",
			setupConfig: defaultTestConfig,
			logger:      nil,
			expectError: "logger must be configured",
		},
		{
			name: "invalid cleanup hours",
			setupConfig: func(t *testing.T) config.Config {
				cfg := defaultTestConfig(t)
				cfg.FileCleanupHours = 0
				return cfg
			},
			logger:      zap.NewNop(),
			expectError: "invalid configuration",
		},
		{
			name: "unsupported admission provider",
			setupConfig: func(t *testing.T) config.Config {
				cfg := defaultTestConfig(t)
				cfg.AdmissionConfig.Provider = "memcached"
				return cfg
			},
			logger:      zap.NewNop(),
			expectError: "unsupported admission provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := server.NewVideoServerBuilder(tt.setupConfig(t), tt.logger).
				WithFetcher(&mocks.FakeFetcher{}).
				Build(context.Background())

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, srv)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, srv.Handler())
		})
	}
}

func TestVideoServerBuilder_CreatesDownloadDir(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.DownloadDir = filepath.Join(t.TempDir(), "nested", "downloads")

	_, err := server.NewVideoServerBuilder(cfg, zaptest.NewLogger(t)).
		WithFetcher(&mocks.FakeFetcher{}).
		Build(context.Background())

	require.NoError(t, err)
	assert.DirExists(t, cfg.DownloadDir)
}

func TestVideoServerBuilder_WithArtifactStore(t *testing.T) {
	store, err := server.NewFilesystemArtifactStore(t.TempDir())
	require.NoError(t, err)

	fetcher := &mocks.FakeFetcher{}
	fetcher.FetchCalls(writingFetch("Clip", "mp4", "data"))

	srv, err := server.NewVideoServerBuilder(defaultTestConfig(t), zaptest.NewLogger(t)).
		WithFetcher(fetcher).
		WithArtifactStore(store).
		Build(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(`{"url":"https://example.com/v"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	_, _, _, template := fetcher.FetchArgsForCall(0)
	assert.True(t, strings.HasPrefix(template, store.Dir()), "downloads land in the injected store")
}

func TestVideoServerBuilder_WithCounterStore(t *testing.T) {
	counters := newCountingStore()
	fetcher := &mocks.FakeFetcher{}
	fetcher.ProbeReturns(&types.Metadata{Title: "Clip"}, nil)

	srv, err := server.NewVideoServerBuilder(defaultTestConfig(t), zaptest.NewLogger(t)).
		WithFetcher(fetcher).
		WithCounterStore(counters).
		Build(context.Background())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/video-info", strings.NewReader(`{"url":"https://example.com/v"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 3, counters.increments.Get())

	health := httptest.NewRecorder()
	srv.Handler().ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 3, counters.increments.Get(), "liveness is not rate limited")

	require.NoError(t, srv.Stop(context.Background()))
	assert.Equal(t, 1, counters.closes.Get())
}

func TestVideoServerBuilder_AdmissionDisabled(t *testing.T) {
	cfg := defaultTestConfig(t)
	cfg.AdmissionConfig.Enable = false
	cfg.AdmissionConfig.DownloadLimit = 1

	fetcher := &mocks.FakeFetcher{}
	fetcher.FetchCalls(writingFetch("Clip", "mp4", "data"))

	srv, err := server.NewVideoServerBuilder(cfg, zaptest.NewLogger(t)).
		WithFetcher(fetcher).
		Build(context.Background())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(`{"url":"https://example.com/v"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 3, fetcher.FetchCallCount())
}

func TestVideoServerBuilder_WithArchive(t *testing.T) {
	archive := &mocks.FakeArtifactArchive{}
	fetcher := &mocks.FakeFetcher{}
	fetcher.FetchCalls(writingFetch("Clip", "mp4", "data"))

	srv, err := server.NewVideoServerBuilder(defaultTestConfig(t), zaptest.NewLogger(t)).
		WithFetcher(fetcher).
		WithArchive(archive).
		Build(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(`{"url":"https://example.com/v"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, 1, archive.PutCallCount())
	_, artifact := archive.PutArgsForCall(0)
	assert.True(t, strings.HasSuffix(artifact.Filename, "_Clip.mp4"))

	archive.CloseReturns(errors.New("close failed"))
	err = srv.Stop(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, archive.CloseCallCount())
}
