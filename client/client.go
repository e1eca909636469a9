package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vidgrab/vidgrab/types"
	"go.uber.org/zap"
)

// ErrRateLimited is wrapped by RateLimitError
var ErrRateLimited = errors.New("rate limited")

// VideoClient defines the interface for a vidgrab API client
type VideoClient interface {
	// Liveness
	GetHealth(ctx context.Context) (*types.HealthResponse, error)

	// Video operations
	GetVideoInfo(ctx context.Context, req types.DownloadRequest) (*types.VideoInfoResponse, error)
	Download(ctx context.Context, req types.DownloadRequest) (*types.DownloadResponse, error)
	FetchFile(ctx context.Context, downloadURL string, w io.Writer) (int64, error)

	// Configuration
	SetTimeout(timeout time.Duration)
	SetHTTPClient(client *http.Client)
	GetBaseURL() string

	// Logger configuration
	SetLogger(logger *zap.Logger)
	GetLogger() *zap.Logger
}

var _ VideoClient = (*Client)(nil)

// APIError is returned when the server answers with a non-200 status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Message)
}

// RateLimitError is returned for a 429 answer
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// Config holds configuration options for the client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
	Headers    map[string]string
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// DefaultConfig returns a default configuration. The timeout is generous since a download
// request only returns once the file is on the server.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:    baseURL,
		Timeout:    10 * time.Minute,
		UserAgent:  "vidgrab-go-client/1.0",
		Headers:    make(map[string]string),
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		Logger:     zap.NewNop(),
	}
}

// Client is an HTTP client for the vidgrab API
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new client with default configuration
func NewClient(baseURL string) VideoClient {
	return NewClientWithConfig(DefaultConfig(baseURL))
}

// NewClientWithConfig creates a new client with custom configuration
func NewClientWithConfig(config *Config) VideoClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + path
}

// GetHealth calls the liveness route
func (c *Client) GetHealth(ctx context.Context) (*types.HealthResponse, error) {
	c.logger.Debug("retrieving health", zap.String("endpoint", "/"))

	var resp types.HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/", nil, &resp, true); err != nil {
		c.logger.Error("health check failed", zap.Error(err))
		return nil, err
	}

	if resp.Status != types.HealthStatusOK {
		c.logger.Warn("health response contains unknown status", zap.String("status", resp.Status))
	}
	return &resp, nil
}

// GetVideoInfo asks the server for the metadata of req.URL. A failed extraction is reported in
// the response with Success false, not as an error.
func (c *Client) GetVideoInfo(ctx context.Context, req types.DownloadRequest) (*types.VideoInfoResponse, error) {
	c.logger.Debug("requesting video info", zap.String("url", req.URL))

	var resp types.VideoInfoResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/video-info", req, &resp, true); err != nil {
		c.logger.Error("video info request failed", zap.Error(err), zap.String("url", req.URL))
		return nil, err
	}
	return &resp, nil
}

// Download asks the server to download req.URL. A failed download is reported in the response
// with Success false, not as an error. Download is never retried: a dropped connection may still
// leave a file on the server and count against the client's download budget.
func (c *Client) Download(ctx context.Context, req types.DownloadRequest) (*types.DownloadResponse, error) {
	c.logger.Debug("requesting download", zap.String("url", req.URL), zap.String("quality", req.Quality))

	var resp types.DownloadResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/download", req, &resp, false); err != nil {
		c.logger.Error("download request failed", zap.Error(err), zap.String("url", req.URL))
		return nil, err
	}

	if resp.Success {
		c.logger.Debug("download completed",
			zap.String("filename", resp.Filename),
			zap.Int64("filesize", resp.Filesize))
	}
	return &resp, nil
}

// FetchFile streams a served file into w. downloadURL is the download_url of a DownloadResponse.
func (c *Client) FetchFile(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	target := downloadURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.endpoint(downloadURL)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create file request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("file request failed: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close file response body", zap.Error(closeErr))
		}
	}()

	if httpResp.StatusCode != http.StatusOK {
		return 0, c.statusError(httpResp)
	}

	n, err := io.Copy(w, httpResp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read file: %w", err)
	}

	c.logger.Debug("file fetched", zap.String("url", target), zap.Int64("bytes", n))
	return n, nil
}

// doJSON sends a JSON request and decodes a 200 answer into out. Transport failures are retried
// up to MaxRetries times when retry is set.
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var httpResp *http.Response
	var lastErr error

	maxAttempts := 1
	if retry {
		maxAttempts += max(c.config.MaxRetries, 0)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(attempt)
			c.logger.Debug("waiting before retry",
				zap.String("path", path),
				zap.Duration("delay", delay),
				zap.Int("attempt", attempt+1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(httpReq)

		httpResp, err = c.httpClient.Do(httpReq)
		if err == nil {
			break
		}
		lastErr = err
		c.logger.Warn("request failed",
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if httpResp == nil {
		return fmt.Errorf("failed to send request after %d attempts: %w", maxAttempts, lastErr)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", zap.Error(closeErr))
		}
	}()

	if httpResp.StatusCode != http.StatusOK {
		return c.statusError(httpResp)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError turns a non-200 answer into an APIError or RateLimitError
func (c *Client) statusError(httpResp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(httpResp.Body, 64*1024))

	message := strings.TrimSpace(string(bodyBytes))
	var errResp types.ErrorResponse
	if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error != "" {
		message = errResp.Error
	}

	apiErr := APIError{StatusCode: httpResp.StatusCode, Message: message}
	c.logger.Debug("unexpected status code",
		zap.Int("status_code", httpResp.StatusCode),
		zap.String("message", message))

	if httpResp.StatusCode == http.StatusTooManyRequests {
		rl := &RateLimitError{APIError: apiErr}
		if seconds, err := strconv.Atoi(httpResp.Header.Get("Retry-After")); err == nil {
			rl.RetryAfter = time.Duration(seconds) * time.Second
		}
		return rl
	}
	return &apiErr
}

// setHeaders sets the common headers for HTTP requests
func (c *Client) setHeaders(req *http.Request) {
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}
}

// SetHTTPClient allows customizing the HTTP client
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
	c.config.HTTPClient = client
}

// SetTimeout sets the timeout for HTTP requests
func (c *Client) SetTimeout(timeout time.Duration) {
	c.config.Timeout = timeout
	c.httpClient.Timeout = timeout
}

// GetBaseURL returns the base URL of the server
func (c *Client) GetBaseURL() string {
	return c.config.BaseURL
}

// SetLogger sets the logger for the client
func (c *Client) SetLogger(logger *zap.Logger) {
	c.logger = logger
	c.config.Logger = logger
}

// GetLogger returns the logger used by the client
func (c *Client) GetLogger() *zap.Logger {
	return c.logger
}
