package config

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	ServiceName      string          // Build-time metadata, not configurable via environment
	ServiceVersion   string          // Build-time metadata, not configurable via environment
	Debug            bool            `env:"DEBUG,default=false"`
	Port             string          `env:"PORT,default=8000" description:"HTTP listen port"`
	DownloadDir      string          `env:"DOWNLOAD_DIR,default=./downloads" description:"Directory holding downloaded artifacts"`
	MaxFileSizeMB    int             `env:"MAX_FILE_SIZE,default=500" description:"Maximum file size in MB reported to callers when a download is too large"`
	FileCleanupHours int             `env:"FILE_CLEANUP_HOURS,default=1" description:"Artifacts older than this many hours are removed"`
	CORSOrigins      []string        `env:"CORS_ORIGINS,default=http://localhost:3000" description:"Comma-separated list of origins allowed to call the API from a browser"`
	ServerConfig     ServerConfig    `env:",prefix=SERVER_"`
	FetchConfig      FetchConfig     `env:",prefix=FETCH_"`
	ReaperConfig     ReaperConfig    `env:",prefix=REAPER_"`
	AdmissionConfig  AdmissionConfig `env:",prefix=ADMISSION_"`
	TelemetryConfig  TelemetryConfig `env:",prefix=TELEMETRY_"`
	ArchiveConfig    ArchiveConfig   `env:",prefix=ARCHIVE_"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Enable   bool   `env:"ENABLE,default=false"`
	CertPath string `env:"CERT_PATH" description:"TLS certificate path"`
	KeyPath  string `env:"KEY_PATH" description:"TLS key path"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=30s" description:"HTTP server read timeout"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=0s" description:"HTTP server write timeout (0 = none, downloads can take minutes)"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=120s" description:"HTTP server idle timeout"`
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" description:"Grace period for in-flight requests on shutdown"`
	DisableHealthcheckLog bool          `env:"DISABLE_HEALTHCHECK_LOG,default=true" description:"Disable logging for liveness requests"`
	TrustedProxies        []string      `env:"TRUSTED_PROXIES" description:"Comma-separated proxy IPs or CIDRs whose forwarding headers identify the client (empty = trust none)"`
	TLSConfig             TLSConfig     `env:",prefix=TLS_"`
}

// FetchConfig holds configuration of the external fetch engine
type FetchConfig struct {
	Executable    string `env:"EXECUTABLE" description:"Path to the yt-dlp executable (empty = resolve from PATH or cache)"`
	AutoInstall   bool   `env:"AUTO_INSTALL,default=false" description:"Download a yt-dlp binary at startup when none is available"`
	MaxConcurrent int    `env:"MAX_CONCURRENT,default=0" description:"Maximum concurrent engine invocations (0 = unbounded)"`
}

// ReaperConfig defines artifact retention sweeping
type ReaperConfig struct {
	Enable   bool          `env:"ENABLE,default=true" description:"Enable the background retention reaper"`
	Interval time.Duration `env:"INTERVAL,default=5m" description:"Time between retention passes"`
}

// AdmissionConfig holds per-client rate limiting configuration
type AdmissionConfig struct {
	Enable        bool              `env:"ENABLE,default=true" description:"Enable per-client rate limiting"`
	Provider      string            `env:"PROVIDER,default=memory" description:"Counter store provider (memory, redis)"`
	URL           string            `env:"URL" description:"Connection URL for the counter store"`
	InfoLimit     int               `env:"INFO_LIMIT,default=10" description:"Video info requests allowed per window"`
	DownloadLimit int               `env:"DOWNLOAD_LIMIT,default=5" description:"Download requests allowed per window"`
	Window        time.Duration     `env:"WINDOW,default=1m" description:"Rate limit window"`
	Credentials   map[string]string `env:"CREDENTIALS" description:"Store-specific credentials"`
}

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	Port         string        `env:"PORT,default=9090" description:"Metrics server port"`
	Host         string        `env:"HOST,default=" description:"Metrics server host (empty for all interfaces)"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s" description:"Metrics server read timeout"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s" description:"Metrics server write timeout"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=60s" description:"Metrics server idle timeout"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enable        bool          `env:"ENABLE,default=false" description:"Enable telemetry collection"`
	MetricsConfig MetricsConfig `env:",prefix=METRICS_"`
}

// ArchiveConfig holds configuration of the optional object storage mirror
type ArchiveConfig struct {
	Provider   string `env:"PROVIDER,default=none" description:"Archive provider (none, minio)"`
	Endpoint   string `env:"ENDPOINT" description:"Storage endpoint (host:port)"`
	AccessKey  string `env:"ACCESS_KEY" description:"Storage access key"`
	SecretKey  string `env:"SECRET_KEY" description:"Storage secret key"`
	BucketName string `env:"BUCKET_NAME,default=downloads" description:"Storage bucket name"`
	Region     string `env:"REGION,default=us-east-1" description:"Storage region"`
	UseSSL     bool   `env:"USE_SSL,default=true" description:"Use SSL for storage connections"`
}

// Load loads configuration from environment variables, merging with the provided base config.
func Load(ctx context.Context, baseConfig *Config) (*Config, error) {
	return LoadWithLookuper(ctx, baseConfig, envconfig.OsLookuper())
}

// LoadWithLookuper creates and loads configuration using a custom lookuper and merges with user config
func LoadWithLookuper(ctx context.Context, baseConfig *Config, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config

	if baseConfig != nil {
		cfg = *baseConfig
	}

	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NewWithDefaults creates a new config with defaults applied from struct tags.
func NewWithDefaults(ctx context.Context, baseConfig *Config) (*Config, error) {
	return LoadWithLookuper(ctx, baseConfig, &emptyLookuper{})
}

// emptyLookuper ensures that only default values from struct tags are used
type emptyLookuper struct{}

func (e *emptyLookuper) Lookup(key string) (string, bool) {
	return "", false
}

// Validate validates the configuration and applies corrections for invalid values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DownloadDir) == "" {
		return fmt.Errorf("DOWNLOAD_DIR must not be empty")
	}

	if c.FileCleanupHours < 1 {
		return fmt.Errorf("FILE_CLEANUP_HOURS must be at least 1, got %d", c.FileCleanupHours)
	}

	origins := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	c.CORSOrigins = origins

	proxies := make([]string, 0, len(c.ServerConfig.TrustedProxies))
	for _, proxy := range c.ServerConfig.TrustedProxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}
		if _, err := netip.ParsePrefix(proxy); err != nil {
			if _, err := netip.ParseAddr(proxy); err != nil {
				return fmt.Errorf("SERVER_TRUSTED_PROXIES: invalid IP or CIDR %q", proxy)
			}
		}
		proxies = append(proxies, proxy)
	}
	c.ServerConfig.TrustedProxies = proxies

	if c.FetchConfig.MaxConcurrent < 0 {
		c.FetchConfig.MaxConcurrent = 0
	}

	if c.ReaperConfig.Enable && c.ReaperConfig.Interval <= 0 {
		return fmt.Errorf("REAPER_INTERVAL must be positive when the reaper is enabled")
	}

	switch c.AdmissionConfig.Provider {
	case "memory":
	case "redis":
		if c.AdmissionConfig.Enable && c.AdmissionConfig.URL == "" {
			return fmt.Errorf("ADMISSION_URL is required for the redis provider")
		}
	default:
		return fmt.Errorf("unsupported admission provider: %s", c.AdmissionConfig.Provider)
	}

	if c.AdmissionConfig.InfoLimit < 1 {
		c.AdmissionConfig.InfoLimit = 1
	}
	if c.AdmissionConfig.DownloadLimit < 1 {
		c.AdmissionConfig.DownloadLimit = 1
	}
	if c.AdmissionConfig.Window <= 0 {
		return fmt.Errorf("ADMISSION_WINDOW must be positive")
	}

	switch c.ArchiveConfig.Provider {
	case "", "none":
	case "minio":
		if c.ArchiveConfig.Endpoint == "" {
			return fmt.Errorf("ARCHIVE_ENDPOINT is required for the minio provider")
		}
	default:
		return fmt.Errorf("unsupported archive provider: %s", c.ArchiveConfig.Provider)
	}

	return nil
}

// RetentionTTL returns how long an artifact is kept before the reaper removes it
func (c *Config) RetentionTTL() time.Duration {
	return time.Duration(c.FileCleanupHours) * time.Hour
}

// ArchiveEnabled reports whether downloads are mirrored to object storage
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveConfig.Provider != "" && c.ArchiveConfig.Provider != "none"
}
