package server

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vidgrab/vidgrab/types"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	defaultInfoTitle     = "Unknown Title"
	defaultDownloadTitle = "Unknown"
)

// DownloadService runs video info and download requests against the engine and the store
type DownloadService interface {
	// GetInfo probes the url and returns its metadata. No file is written.
	GetInfo(ctx context.Context, req types.DownloadRequest) (*types.Metadata, error)

	// Download fetches the url into the store and returns the produced artifact
	Download(ctx context.Context, req types.DownloadRequest) (*DownloadResult, error)
}

// DownloadResult is a finished download
type DownloadResult struct {
	Artifact *Artifact
	Metadata types.Metadata
}

// DownloadServiceImpl is the concrete implementation of DownloadService
type DownloadServiceImpl struct {
	logger        *zap.Logger
	fetcher       Fetcher
	store         ArtifactStore
	archive       ArtifactArchive
	maxFileSizeMB int
	sem           *semaphore.Weighted
}

var _ DownloadService = (*DownloadServiceImpl)(nil)

// DownloadServiceOption configures a DownloadServiceImpl
type DownloadServiceOption func(*DownloadServiceImpl)

// WithArchive mirrors finished artifacts to the given archive
func WithArchive(archive ArtifactArchive) DownloadServiceOption {
	return func(s *DownloadServiceImpl) {
		s.archive = archive
	}
}

// WithMaxConcurrent bounds the number of concurrent engine invocations; n <= 0 means unbounded
func WithMaxConcurrent(n int) DownloadServiceOption {
	return func(s *DownloadServiceImpl) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		} else {
			s.sem = nil
		}
	}
}

// WithMaxFileSizeMB sets the size reported when the engine refuses a file as too large
func WithMaxFileSizeMB(mb int) DownloadServiceOption {
	return func(s *DownloadServiceImpl) {
		s.maxFileSizeMB = mb
	}
}

// NewDownloadService creates a new download service
func NewDownloadService(logger *zap.Logger, fetcher Fetcher, store ArtifactStore, opts ...DownloadServiceOption) *DownloadServiceImpl {
	s := &DownloadServiceImpl{
		logger:        logger,
		fetcher:       fetcher,
		store:         store,
		maxFileSizeMB: 500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetInfo validates the request and probes the url
func (s *DownloadServiceImpl) GetInfo(ctx context.Context, req types.DownloadRequest) (*types.Metadata, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, Classify(err, OperationInfo, s.maxFileSizeMB)
	}
	defer release()

	metadata, err := s.fetcher.Probe(ctx, req.URL)
	if err != nil {
		classified := Classify(err, OperationInfo, s.maxFileSizeMB)
		s.logger.Warn("video info failed",
			zap.String("url", req.URL),
			zap.String("kind", string(classified.Kind)),
			zap.Error(err))
		return nil, classified
	}
	if metadata == nil {
		metadata = &types.Metadata{}
	}

	metadata.TruncateDescription()
	if metadata.Title == "" {
		metadata.Title = defaultInfoTitle
	}

	return metadata, nil
}

// Download validates the request, fetches the media and resolves the produced file
func (s *DownloadServiceImpl) Download(ctx context.Context, req types.DownloadRequest) (*DownloadResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	quality := ParseQuality(req.Quality)
	id := s.store.AllocateID()
	template := s.store.OutputTemplate(id)

	s.logger.Info("starting download",
		zap.String("artifact_id", id),
		zap.String("url", req.URL),
		zap.String("quality", quality.String()))

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, Classify(err, OperationDownload, s.maxFileSizeMB)
	}
	result, err := s.fetcher.Fetch(ctx, req.URL, quality, template)
	release()
	if err != nil {
		classified := Classify(err, OperationDownload, s.maxFileSizeMB)
		s.logger.Warn("download failed",
			zap.String("artifact_id", id),
			zap.String("kind", string(classified.Kind)),
			zap.Error(err))
		return nil, classified
	}
	if result == nil {
		result = &FetchResult{}
	}

	artifact, err := s.store.ResolveProduced(id, result.PathHint)
	if err != nil {
		s.logger.Error("download completed but file not found",
			zap.String("artifact_id", id),
			zap.String("path_hint", result.PathHint),
			zap.Error(err))
		if errors.Is(err, ErrArtifactNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}

	metadata := result.Metadata
	metadata.TruncateDescription()
	if metadata.Title == "" {
		metadata.Title = defaultDownloadTitle
	}

	s.logger.Info("download completed",
		zap.String("artifact_id", id),
		zap.String("filename", artifact.Filename),
		zap.Int64("size", artifact.Size))

	s.mirror(ctx, artifact)

	return &DownloadResult{
		Artifact: artifact,
		Metadata: metadata,
	}, nil
}

// mirror hands the artifact to the archive; failures never fail the download
func (s *DownloadServiceImpl) mirror(ctx context.Context, artifact *Artifact) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Put(ctx, artifact); err != nil {
		s.logger.Warn("failed to archive artifact",
			zap.String("artifact_id", artifact.ID),
			zap.String("filename", artifact.Filename),
			zap.Error(err))
		return
	}
	s.logger.Debug("artifact archived", zap.String("filename", artifact.Filename))
}

func (s *DownloadServiceImpl) acquire(ctx context.Context) (func(), error) {
	if s.sem == nil {
		return func() {}, nil
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a free engine slot: %w", err)
	}
	return func() { s.sem.Release(1) }, nil
}

// ValidateRequest checks that the url is an absolute http or https URI with a host
func ValidateRequest(req types.DownloadRequest) error {
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid url: %v", ErrInvalidRequest, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", ErrInvalidRequest)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url must include a host", ErrInvalidRequest)
	}

	return nil
}
