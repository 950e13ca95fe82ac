package main

import (
	"fmt"
	"sort"

	"github.com/kbukum/pipekit/config"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/process"
)

const serviceName = "pipex"

// pipexConfig is the pipex.yml layout. Every key can be overridden with a
// PIPEX_ variable, e.g. PIPEX_LOGGING_LEVEL=debug.
type pipexConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Echo logs every pipeline before it runs.
	Echo      bool                              `yaml:"echo" mapstructure:"echo"`
	Pipelines map[string]process.PipelineConfig `yaml:"pipelines" mapstructure:"pipelines"`
	Telemetry telemetryConfig                   `yaml:"telemetry" mapstructure:"telemetry"`
}

type telemetryConfig struct {
	Enabled bool                       `yaml:"enabled" mapstructure:"enabled"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

func loadConfig(o options) (*pipexConfig, error) {
	cfg := &pipexConfig{}
	err := config.LoadConfig(serviceName, cfg,
		config.WithConfigFile(o.ConfigFile),
		config.WithEnvFile(o.EnvFile),
		config.WithEnvPrefix("PIPEX"),
	)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if o.Quiet {
		cfg.Logging.Level = "error"
		cfg.Echo = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills the service name and the telemetry identity.
func (c *pipexConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()

	tracing := observability.DefaultTracerConfig(c.Name)
	if c.Telemetry.Tracing.ServiceName == "" {
		c.Telemetry.Tracing.ServiceName = tracing.ServiceName
	}
	if c.Telemetry.Tracing.Endpoint == "" {
		c.Telemetry.Tracing.Endpoint = tracing.Endpoint
	}
	if c.Telemetry.Tracing.Environment == "" {
		c.Telemetry.Tracing.Environment = c.Environment
	}
	// zero is indistinguishable from unset; use telemetry.enabled to turn tracing off
	if c.Telemetry.Tracing.SampleRate <= 0 {
		c.Telemetry.Tracing.SampleRate = tracing.SampleRate
	}

	metrics := observability.DefaultMeterConfig(c.Name)
	if c.Telemetry.Metrics.ServiceName == "" {
		c.Telemetry.Metrics.ServiceName = metrics.ServiceName
	}
	if c.Telemetry.Metrics.Endpoint == "" {
		c.Telemetry.Metrics.Endpoint = metrics.Endpoint
	}
	if c.Telemetry.Metrics.Environment == "" {
		c.Telemetry.Metrics.Environment = c.Environment
	}
	if c.Telemetry.Metrics.Interval == 0 {
		c.Telemetry.Metrics.Interval = metrics.Interval
	}
}

// Validate checks the service fields and every pipeline, in name order.
func (c *pipexConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	names := make([]string, 0, len(c.Pipelines))
	for name := range c.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pc := c.Pipelines[name]
		if err := pc.Validate(); err != nil {
			return fmt.Errorf("pipelines.%s: %w", name, err)
		}
	}
	return nil
}

func (c *pipexConfig) runnerConfig() process.Config {
	return process.Config{
		Name:      c.Name,
		Echo:      c.Echo,
		Pipelines: c.Pipelines,
	}
}
