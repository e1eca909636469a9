package otel

import (
	"context"
	"fmt"

	config "github.com/vidgrab/vidgrab/server/config"
	otel "go.opentelemetry.io/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	prometheus "go.opentelemetry.io/otel/exporters/prometheus"
	metric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	resource "go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	zap "go.uber.org/zap"
)

//go:generate go tool counterfeiter -o ../mocks/fake_open_telemetry.go . OpenTelemetry

// OpenTelemetry defines the operations for telemetry
type OpenTelemetry interface {
	// HTTP level metrics
	RecordRequestCount(ctx context.Context, requestMethod, requestPath string)
	RecordResponseStatus(ctx context.Context, requestMethod, requestPath string, statusCode int)
	RecordRequestDuration(ctx context.Context, requestMethod, requestPath string, durationMs float64)

	// Application level metrics
	RecordDownloadOutcome(ctx context.Context, operation, outcome string)
	RecordRateLimited(ctx context.Context, limiter string)
	RecordArtifactsReaped(ctx context.Context, count int)

	// Shutdown the telemetry system
	ShutDown(ctx context.Context) error
}

type OpenTelemetryImpl struct {
	logger        *zap.Logger
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter

	// Metrics
	requestCounter           metric.Int64Counter
	responseStatusCounter    metric.Int64Counter
	requestDurationHistogram metric.Float64Histogram
	downloadOutcomeCounter   metric.Int64Counter
	rateLimitedCounter       metric.Int64Counter
	artifactsReapedCounter   metric.Int64Counter
}

// NewOpenTelemetry creates a new OpenTelemetry implementation backed by a Prometheus exporter
func NewOpenTelemetry(cfg *config.Config, logger *zap.Logger) (OpenTelemetry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	o := &OpenTelemetryImpl{
		logger: logger,
	}

	if err := o.initialize(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize opentelemetry: %w", err)
	}

	return o, nil
}

func (o *OpenTelemetryImpl) initialize(cfg *config.Config) error {
	o.logger.Info("initializing opentelemetry",
		zap.String("service_name", cfg.ServiceName),
		zap.String("version", cfg.ServiceVersion))

	exporter, err := prometheus.New()
	if err != nil {
		o.logger.Error("failed to create prometheus exporter", zap.Error(err))
		return err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	// engine calls run from a few hundred ms (info) to many minutes (large downloads)
	histogramBoundaries := []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000, 300000, 600000}

	latencyView := sdkmetric.NewView(
		sdkmetric.Instrument{
			Kind: sdkmetric.InstrumentKindHistogram,
		},
		sdkmetric.Stream{
			Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: histogramBoundaries,
			},
		},
	)

	o.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithView(latencyView),
	)
	otel.SetMeterProvider(o.meterProvider)

	o.meter = o.meterProvider.Meter(cfg.ServiceName)

	if err := o.initializeMetrics(); err != nil {
		o.logger.Error("failed to initialize metrics", zap.Error(err))
		return err
	}

	o.logger.Info("opentelemetry initialized successfully")
	return nil
}

func (o *OpenTelemetryImpl) RecordRequestCount(ctx context.Context, requestMethod, requestPath string) {
	o.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("request_method", requestMethod),
		attribute.String("request_path", requestPath),
	))
}

func (o *OpenTelemetryImpl) RecordResponseStatus(ctx context.Context, requestMethod, requestPath string, statusCode int) {
	o.responseStatusCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("request_method", requestMethod),
		attribute.String("request_path", requestPath),
		attribute.Int("status_code", statusCode),
	))
}

func (o *OpenTelemetryImpl) RecordRequestDuration(ctx context.Context, requestMethod, requestPath string, durationMs float64) {
	o.requestDurationHistogram.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("request_method", requestMethod),
		attribute.String("request_path", requestPath),
	))
}

func (o *OpenTelemetryImpl) RecordDownloadOutcome(ctx context.Context, operation, outcome string) {
	o.downloadOutcomeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func (o *OpenTelemetryImpl) RecordRateLimited(ctx context.Context, limiter string) {
	o.rateLimitedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiter),
	))
}

func (o *OpenTelemetryImpl) RecordArtifactsReaped(ctx context.Context, count int) {
	o.artifactsReapedCounter.Add(ctx, int64(count))
}

func (o *OpenTelemetryImpl) ShutDown(ctx context.Context) error {
	return o.meterProvider.Shutdown(ctx)
}

// initializeMetrics initializes all the OpenTelemetry metrics
func (o *OpenTelemetryImpl) initializeMetrics() error {
	var err error

	o.requestCounter, err = o.meter.Int64Counter(
		"vidgrab.requests.total",
		metric.WithDescription("Total number of API requests received"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request counter: %w", err)
	}

	o.responseStatusCounter, err = o.meter.Int64Counter(
		"vidgrab.response_status.total",
		metric.WithDescription("Total number of responses by status code"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create response status counter: %w", err)
	}

	o.requestDurationHistogram, err = o.meter.Float64Histogram(
		"vidgrab.request_duration",
		metric.WithDescription("Duration of API request processing"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	o.downloadOutcomeCounter, err = o.meter.Int64Counter(
		"vidgrab.outcomes.total",
		metric.WithDescription("Total number of info and download requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create outcome counter: %w", err)
	}

	o.rateLimitedCounter, err = o.meter.Int64Counter(
		"vidgrab.rate_limited.total",
		metric.WithDescription("Total number of requests rejected by admission control"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limited counter: %w", err)
	}

	o.artifactsReapedCounter, err = o.meter.Int64Counter(
		"vidgrab.artifacts_reaped.total",
		metric.WithDescription("Total number of artifacts removed by the retention reaper"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create artifacts reaped counter: %w", err)
	}

	o.logger.Debug("all opentelemetry metrics initialized successfully")
	return nil
}
