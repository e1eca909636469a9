package server

import (
	"context"
	"fmt"

	admission "github.com/vidgrab/vidgrab/server/admission"
	config "github.com/vidgrab/vidgrab/server/config"
	otel "github.com/vidgrab/vidgrab/server/otel"
	zap "go.uber.org/zap"
)

// VideoServerBuilder provides a fluent interface for building video servers.
// Every component has a default derived from the configuration; the With methods replace it.
//
// Example:
//
//	server, err := NewVideoServerBuilder(cfg, logger).
//	  WithFetcher(fetcher).
//	  Build(ctx)
type VideoServerBuilder interface {
	// WithLogger sets a custom logger for the builder and resulting server.
	WithLogger(logger *zap.Logger) VideoServerBuilder

	// WithFetcher replaces the yt-dlp fetcher.
	WithFetcher(fetcher Fetcher) VideoServerBuilder

	// WithArtifactStore replaces the filesystem store rooted at DOWNLOAD_DIR.
	WithArtifactStore(store ArtifactStore) VideoServerBuilder

	// WithArchive replaces the archive selected by ARCHIVE_PROVIDER.
	WithArchive(archive ArtifactArchive) VideoServerBuilder

	// WithCounterStore replaces the admission counter store selected by ADMISSION_PROVIDER.
	WithCounterStore(store admission.CounterStore) VideoServerBuilder

	// WithTelemetry replaces the OpenTelemetry instance created when TELEMETRY_ENABLE is set.
	WithTelemetry(telemetry otel.OpenTelemetry) VideoServerBuilder

	// Build creates every missing component and returns the server.
	Build(ctx context.Context) (VideoServer, error)
}

var _ VideoServerBuilder = (*VideoServerBuilderImpl)(nil)

// VideoServerBuilderImpl is the concrete implementation of the VideoServerBuilder interface.
type VideoServerBuilderImpl struct {
	cfg          config.Config
	logger       *zap.Logger
	fetcher      Fetcher
	store        ArtifactStore
	archive      ArtifactArchive
	counterStore admission.CounterStore
	telemetry    otel.OpenTelemetry
}

// NewVideoServerBuilder creates a new server builder with required dependencies.
func NewVideoServerBuilder(cfg config.Config, logger *zap.Logger) VideoServerBuilder {
	return &VideoServerBuilderImpl{
		cfg:    cfg,
		logger: logger,
	}
}

func (b *VideoServerBuilderImpl) WithLogger(logger *zap.Logger) VideoServerBuilder {
	b.logger = logger
	return b
}

func (b *VideoServerBuilderImpl) WithFetcher(fetcher Fetcher) VideoServerBuilder {
	b.fetcher = fetcher
	return b
}

func (b *VideoServerBuilderImpl) WithArtifactStore(store ArtifactStore) VideoServerBuilder {
	b.store = store
	return b
}

func (b *VideoServerBuilderImpl) WithArchive(archive ArtifactArchive) VideoServerBuilder {
	b.archive = archive
	return b
}

func (b *VideoServerBuilderImpl) WithCounterStore(store admission.CounterStore) VideoServerBuilder {
	b.counterStore = store
	return b
}

func (b *VideoServerBuilderImpl) WithTelemetry(telemetry otel.OpenTelemetry) VideoServerBuilder {
	b.telemetry = telemetry
	return b
}

// Build creates and returns the configured video server.
func (b *VideoServerBuilderImpl) Build(ctx context.Context) (VideoServer, error) {
	if b.logger == nil {
		return nil, fmt.Errorf("logger must be configured before building the server")
	}

	cfg := b.cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store := b.store
	if store == nil {
		fsStore, err := NewFilesystemArtifactStore(cfg.DownloadDir)
		if err != nil {
			return nil, err
		}
		store = fsStore
	}

	fetcher := b.fetcher
	if fetcher == nil {
		if cfg.FetchConfig.AutoInstall && cfg.FetchConfig.Executable == "" {
			if err := InstallYTDLP(ctx, b.logger); err != nil {
				return nil, err
			}
		}
		fetcher = NewYTDLPFetcher(b.logger, cfg.FetchConfig.Executable)
	}

	archive := b.archive
	if archive == nil && cfg.ArchiveEnabled() {
		a, err := NewMinIOArtifactArchive(ctx,
			cfg.ArchiveConfig.Endpoint,
			cfg.ArchiveConfig.AccessKey,
			cfg.ArchiveConfig.SecretKey,
			cfg.ArchiveConfig.BucketName,
			cfg.ArchiveConfig.Region,
			cfg.ArchiveConfig.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize artifact archive: %w", err)
		}
		b.logger.Info("mirroring downloads to object storage",
			zap.String("endpoint", cfg.ArchiveConfig.Endpoint),
			zap.String("bucket", cfg.ArchiveConfig.BucketName))
		archive = a
	}

	counterStore := b.counterStore
	if counterStore == nil && cfg.AdmissionConfig.Enable {
		cs, err := admission.NewCounterStore(ctx, cfg.AdmissionConfig, b.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize admission store: %w", err)
		}
		counterStore = cs
	}

	telemetry := b.telemetry
	if telemetry == nil && cfg.TelemetryConfig.Enable {
		t, err := otel.NewOpenTelemetry(&cfg, b.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		metricsAddr := cfg.TelemetryConfig.MetricsConfig.Host + ":" + cfg.TelemetryConfig.MetricsConfig.Port
		b.logger.Info("telemetry enabled - metrics will be available", zap.String("metrics_url", metricsAddr+"/metrics"))
		telemetry = t
	}

	opts := []DownloadServiceOption{
		WithMaxFileSizeMB(cfg.MaxFileSizeMB),
		WithMaxConcurrent(cfg.FetchConfig.MaxConcurrent),
	}
	if archive != nil {
		opts = append(opts, WithArchive(archive))
	}
	service := NewDownloadService(b.logger, fetcher, store, opts...)

	server := NewVideoServer(&cfg, b.logger, service, store, telemetry, counterStore)
	if archive != nil {
		server.setArchive(archive)
	}

	return server, nil
}

// NewDefaultVideoServer loads configuration from the environment, creates a logger matching the
// Debug setting and builds a server with every default component.
func NewDefaultVideoServer(ctx context.Context, base *config.Config) (VideoServer, *zap.Logger, error) {
	cfg, err := config.Load(ctx, base)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}

	server, err := NewVideoServerBuilder(*cfg, logger).Build(ctx)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	return server, logger, nil
}

// NewLogger returns a development logger when debug is set and a production logger otherwise
func NewLogger(debug bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
