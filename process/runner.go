package process

import (
	"io"
	"sort"
	"strings"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
)

// Config configures a Runner.
type Config struct {
	// Name identifies this runner in logs.
	Name string `yaml:"name,omitempty" mapstructure:"name"`
	// Echo logs every pipeline at info level before it is spawned.
	Echo bool `yaml:"echo,omitempty" mapstructure:"echo"`
	// Pipelines are the named declarative pipelines.
	Pipelines map[string]PipelineConfig `yaml:"pipelines" mapstructure:"pipelines"`
}

// Runner builds and runs named pipelines, attaching its logger and hooks to
// each one.
type Runner struct {
	config Config
	log    *logger.Logger
	hooks  Hooks
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger attached to every pipeline.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithHooks adds hooks attached to every pipeline.
func WithHooks(h Hooks) Option {
	return func(r *Runner) { r.hooks = ChainHooks(r.hooks, h) }
}

// NewRunner creates a Runner.
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{config: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = defaultLogger()
	}
	if cfg.Name != "" {
		r.log = r.log.WithFields(logger.Fields("runner", cfg.Name))
	}
	if cfg.Echo {
		r.hooks = ChainHooks(LogHooks(r.log), r.hooks)
	}
	return r
}

// Name returns the runner name.
func (r *Runner) Name() string {
	return r.config.Name
}

// Names returns the configured pipeline names, sorted.
func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.config.Pipelines))
	for name := range r.config.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pipeline builds the named pipeline with the runner's logger and hooks
// attached. Names are matched case-insensitively.
func (r *Runner) Pipeline(name string) (*Pipeline, error) {
	cfg, ok := r.config.Pipelines[name]
	if !ok {
		cfg, ok = r.config.Pipelines[strings.ToLower(name)]
	}
	if !ok {
		return nil, errors.NotFound("pipeline", name)
	}
	p, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return r.Prepare(p), nil
}

// Prepare attaches the runner's logger and hooks to p.
func (r *Runner) Prepare(p *Pipeline) *Pipeline {
	return p.WithLogger(r.log).Hooks(r.hooks)
}

// Run runs the named pipeline with its output inherited.
func (r *Runner) Run(name string) (*Status, error) {
	p, err := r.Pipeline(name)
	if err != nil {
		return nil, err
	}
	return p.Run()
}

// Output runs the named pipeline and returns its captured output.
func (r *Runner) Output(name string) ([]byte, error) {
	p, err := r.Pipeline(name)
	if err != nil {
		return nil, err
	}
	return p.Output()
}

// StreamTo runs the named pipeline, streaming its output into w.
func (r *Runner) StreamTo(name string, w io.Writer) (*Status, error) {
	p, err := r.Pipeline(name)
	if err != nil {
		return nil, err
	}
	return p.StreamTo(w)
}
