package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	gin "github.com/gin-gonic/gin"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	admission "github.com/vidgrab/vidgrab/server/admission"
	config "github.com/vidgrab/vidgrab/server/config"
	middlewares "github.com/vidgrab/vidgrab/server/middlewares"
	otel "github.com/vidgrab/vidgrab/server/otel"
	types "github.com/vidgrab/vidgrab/types"
	zap "go.uber.org/zap"
	errgroup "golang.org/x/sync/errgroup"
)

const (
	filesRoutePrefix = "/api/files/"

	msgFileMissingAfterDownload = "Download completed but file not found"
	msgFileNotFound             = "File not found"
	msgNotAFile                 = "Requested path is not a file"
)

// VideoServer serves the video info, download and file routes
type VideoServer interface {
	// Start runs the HTTP listeners and the retention reaper until ctx is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop gracefully stops everything Start launched and releases resources
	Stop(ctx context.Context) error

	// Handler returns the API router
	Handler() http.Handler
}

type VideoServerImpl struct {
	cfg     *config.Config
	logger  *zap.Logger
	service DownloadService
	store   ArtifactStore
	reaper  *RetentionReaper
	otel    otel.OpenTelemetry

	counterStore    admission.CounterStore
	infoLimiter     admission.Limiter
	downloadLimiter admission.Limiter
	archive         ArtifactArchive

	router *gin.Engine

	// Server state
	mu            sync.Mutex
	stopped       bool
	cancel        context.CancelFunc
	done          chan struct{}
	httpServer    *http.Server
	metricsServer *http.Server
}

var _ VideoServer = (*VideoServerImpl)(nil)

// NewVideoServer wires the HTTP surface around an already built service and store
func NewVideoServer(
	cfg *config.Config,
	logger *zap.Logger,
	service DownloadService,
	store ArtifactStore,
	telemetry otel.OpenTelemetry,
	counterStore admission.CounterStore,
) *VideoServerImpl {
	if cfg.ServiceName == "" {
		cfg.ServiceName = BuildServiceName
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = BuildServiceVersion
	}

	s := &VideoServerImpl{
		cfg:          cfg,
		logger:       logger,
		service:      service,
		store:        store,
		otel:         telemetry,
		counterStore: counterStore,
	}

	if counterStore != nil {
		s.infoLimiter = admission.NewFixedWindowLimiter("info", cfg.AdmissionConfig.InfoLimit, cfg.AdmissionConfig.Window, counterStore)
		s.downloadLimiter = admission.NewFixedWindowLimiter("download", cfg.AdmissionConfig.DownloadLimit, cfg.AdmissionConfig.Window, counterStore)
	}

	if cfg.ReaperConfig.Enable {
		s.reaper = NewRetentionReaper(logger, store, cfg.RetentionTTL(), cfg.ReaperConfig.Interval)
		if telemetry != nil {
			s.reaper.OnReaped(telemetry.RecordArtifactsReaped)
		}
	}

	s.router = s.setupRouter()
	return s
}

// setArchive records the archive so Stop can close it
func (s *VideoServerImpl) setArchive(archive ArtifactArchive) {
	s.archive = archive
}

// Handler returns the API router
func (s *VideoServerImpl) Handler() http.Handler {
	return s.router
}

// setupRouter configures the HTTP router with the API endpoints
func (s *VideoServerImpl) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if s.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(s.cfg.ServerConfig.TrustedProxies); err != nil {
		s.logger.Error("invalid trusted proxies, forwarding headers are ignored",
			zap.Strings("trusted_proxies", s.cfg.ServerConfig.TrustedProxies),
			zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(middlewares.LoggingMiddleware(s.logger, s.cfg.ServerConfig.DisableHealthcheckLog))
	r.Use(middlewares.CORSMiddleware(s.cfg.CORSOrigins))

	if s.cfg.TelemetryConfig.Enable && s.otel != nil {
		telemetryMw, err := middlewares.NewTelemetryMiddleware(*s.cfg, s.otel, s.logger)
		if err != nil {
			s.logger.Error("failed to create telemetry middleware", zap.Error(err))
		} else {
			r.Use(telemetryMw.Middleware())
		}
	}

	infoRateLimit := middlewares.NewRateLimitMiddleware(s.logger, *s.cfg, "info", s.infoLimiter, s.otel)
	downloadRateLimit := middlewares.NewRateLimitMiddleware(s.logger, *s.cfg, "download", s.downloadLimiter, s.otel)

	r.GET(middlewares.LivenessPath, s.handleHealth)

	api := r.Group("/api")
	api.POST("/video-info", infoRateLimit.Middleware(), s.handleVideoInfo)
	api.POST("/download", downloadRateLimit.Middleware(), s.handleDownload)
	api.GET("/files/:filename", s.handleFile)

	return r
}

func (s *VideoServerImpl) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:  types.HealthStatusOK,
		Message: types.HealthStatusMessage,
	})
}

func (s *VideoServerImpl) handleVideoInfo(c *gin.Context) {
	var req types.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeInvalidRequest(c, err)
		return
	}

	metadata, err := s.service.GetInfo(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			s.writeInvalidRequest(c, err)
			return
		}
		classified := Classify(err, OperationInfo, s.cfg.MaxFileSizeMB)
		s.recordOutcome(c.Request.Context(), OperationInfo, string(classified.Kind))
		c.JSON(http.StatusOK, types.VideoInfoResponse{
			Success: false,
			Error:   classified.Message,
		})
		return
	}

	s.recordOutcome(c.Request.Context(), OperationInfo, "success")
	c.JSON(http.StatusOK, types.VideoInfoResponse{
		Success: true,
		Data:    metadata,
	})
}

func (s *VideoServerImpl) handleDownload(c *gin.Context) {
	var req types.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeInvalidRequest(c, err)
		return
	}

	result, err := s.service.Download(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			s.writeInvalidRequest(c, err)
		case errors.Is(err, ErrArtifactNotFound):
			s.recordOutcome(c.Request.Context(), OperationDownload, "file_not_found")
			c.JSON(http.StatusOK, types.DownloadResponse{
				Success: false,
				Error:   msgFileMissingAfterDownload,
			})
		default:
			classified := Classify(err, OperationDownload, s.cfg.MaxFileSizeMB)
			s.recordOutcome(c.Request.Context(), OperationDownload, string(classified.Kind))
			c.JSON(http.StatusOK, types.DownloadResponse{
				Success: false,
				Error:   classified.Message,
			})
		}
		return
	}

	s.recordOutcome(c.Request.Context(), OperationDownload, "success")
	c.JSON(http.StatusOK, types.DownloadResponse{
		Success:     true,
		DownloadURL: DownloadURL(result.Artifact.Filename),
		Filename:    result.Artifact.Filename,
		Title:       result.Metadata.Title,
		Duration:    result.Metadata.Duration,
		Filesize:    result.Artifact.Size,
	})
}

func (s *VideoServerImpl) handleFile(c *gin.Context) {
	filename := c.Param("filename")

	file, info, err := s.store.Open(filename)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, types.ErrorResponse{Success: false, Error: msgFileNotFound})
		case errors.Is(err, ErrNotRegularFile):
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Success: false, Error: msgNotAFile})
		default:
			s.logger.Error("failed to open artifact", zap.String("filename", filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{Success: false, Error: "Failed to read file"})
		}
		return
	}
	defer func() {
		_ = file.Close()
	}()

	name := info.Name()
	c.Header("Content-Type", ContentTypeFor(name))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}

func (s *VideoServerImpl) writeInvalidRequest(c *gin.Context, err error) {
	s.logger.Debug("invalid request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
		Success: false,
		Error:   err.Error(),
	})
}

func (s *VideoServerImpl) recordOutcome(ctx context.Context, op Operation, outcome string) {
	if s.otel != nil {
		s.otel.RecordDownloadOutcome(ctx, string(op), outcome)
	}
}

// DownloadURL returns the route serving an artifact
func DownloadURL(filename string) string {
	return filesRoutePrefix + url.PathEscape(filename)
}

// Start runs the API listener, the optional metrics listener and the reaper. It blocks until
// ctx is cancelled, Stop is called, or a listener fails, and always joins every task it started.
// Start after Stop returns nil without listening.
func (s *VideoServerImpl) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.logger.Info("server already stopped, not starting")
		return nil
	}
	if s.done != nil {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ServerConfig.ReadTimeout,
		WriteTimeout: s.cfg.ServerConfig.WriteTimeout,
		IdleTimeout:  s.cfg.ServerConfig.IdleTimeout,
	}
	if s.cfg.TelemetryConfig.Enable && s.otel != nil {
		metricsRouter := gin.New()
		metricsRouter.Use(gin.Recovery())
		metricsRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

		s.metricsServer = &http.Server{
			Addr:         s.cfg.TelemetryConfig.MetricsConfig.Host + ":" + s.cfg.TelemetryConfig.MetricsConfig.Port,
			Handler:      metricsRouter,
			ReadTimeout:  s.cfg.TelemetryConfig.MetricsConfig.ReadTimeout,
			WriteTimeout: s.cfg.TelemetryConfig.MetricsConfig.WriteTimeout,
			IdleTimeout:  s.cfg.TelemetryConfig.MetricsConfig.IdleTimeout,
		}
	}
	httpServer, metricsServer := s.httpServer, s.metricsServer
	s.mu.Unlock()

	defer close(done)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	if s.reaper != nil {
		g.Go(func() error {
			return s.reaper.Run(gctx)
		})
	}

	g.Go(func() error {
		s.logger.Info("starting video server",
			zap.String("port", s.cfg.Port),
			zap.String("download_dir", s.store.Dir()),
			zap.String("service_name", s.cfg.ServiceName),
			zap.String("version", s.cfg.ServiceVersion))

		var err error
		if s.cfg.ServerConfig.TLSConfig.Enable {
			err = httpServer.ListenAndServeTLS(s.cfg.ServerConfig.TLSConfig.CertPath, s.cfg.ServerConfig.TLSConfig.KeyPath)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			s.logger.Info("starting metrics server", zap.String("port", s.cfg.TelemetryConfig.MetricsConfig.Port))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ServerConfig.ShutdownTimeout)
		defer shutdownCancel()

		var err error
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error("error stopping HTTP server", zap.Error(shutdownErr))
			err = shutdownErr
		}
		if metricsServer != nil {
			if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
				s.logger.Error("error stopping metrics server", zap.Error(shutdownErr))
				if err == nil {
					err = shutdownErr
				}
			}
		}
		return err
	})

	return g.Wait()
}

// Stop cancels everything Start launched, waits for it to finish and releases resources
func (s *VideoServerImpl) Stop(ctx context.Context) error {
	s.logger.Info("stopping video server")

	s.mu.Lock()
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	var err error

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("timed out waiting for server tasks: %w", ctx.Err())
		}
	}

	if s.otel != nil {
		if shutdownErr := s.otel.ShutDown(ctx); shutdownErr != nil {
			s.logger.Error("error shutting down telemetry", zap.Error(shutdownErr))
			if err == nil {
				err = shutdownErr
			}
		}
	}

	if s.counterStore != nil {
		if closeErr := s.counterStore.Close(); closeErr != nil {
			s.logger.Error("error closing admission store", zap.Error(closeErr))
			if err == nil {
				err = closeErr
			}
		}
	}

	if s.archive != nil {
		if closeErr := s.archive.Close(); closeErr != nil {
			s.logger.Error("error closing artifact archive", zap.Error(closeErr))
			if err == nil {
				err = closeErr
			}
		}
	}

	defer func() {
		_ = s.logger.Sync()
	}()

	return err
}
