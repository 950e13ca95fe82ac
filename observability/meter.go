package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/pipekit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name reported on every metric.
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is the version of the reporting binary.
	ServiceVersion string `mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure allows plain HTTP (for development).
	Insecure bool `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global OpenTelemetry meter provider.
// The returned provider must be shut down on exit to flush pending points.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names.
const (
	MetricRuns          = "pipeline.runs"
	MetricStageExits    = "pipeline.stage.exits"
	MetricStageDuration = "pipeline.stage.duration"
	MetricSpawnFailures = "pipeline.spawn.failures"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	runs          metric.Int64Counter
	stageExits    metric.Int64Counter
	stageDuration metric.Float64Histogram
	spawnFailures metric.Int64Counter
}

// NewMetrics creates the pipeline instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runs, err := meter.Int64Counter(MetricRuns,
		metric.WithDescription("Finished pipeline runs by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRuns, err)
	}

	stageExits, err := meter.Int64Counter(MetricStageExits,
		metric.WithDescription("Collected stage exits by program and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricStageExits, err)
	}

	stageDuration, err := meter.Float64Histogram(MetricStageDuration,
		metric.WithDescription("Time from spawn until a stage's exit was collected"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricStageDuration, err)
	}

	spawnFailures, err := meter.Int64Counter(MetricSpawnFailures,
		metric.WithDescription("Stages that could not be spawned"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricSpawnFailures, err)
	}

	return &Metrics{
		runs:          runs,
		stageExits:    stageExits,
		stageDuration: stageDuration,
		spawnFailures: spawnFailures,
	}, nil
}

// RecordRun counts a finished run. status is "ok" or the error code.
func (m *Metrics) RecordRun(ctx context.Context, status string) {
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordStageExit counts a collected stage and records its duration.
func (m *Metrics) RecordStageExit(ctx context.Context, program, status string, duration time.Duration) {
	m.stageExits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("program", program),
		attribute.String("status", status),
	))
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("program", program),
	))
}

// RecordSpawnFailure counts a stage that failed to start.
func (m *Metrics) RecordSpawnFailure(ctx context.Context, program string) {
	m.spawnFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("program", program),
	))
}
