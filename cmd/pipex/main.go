// Command pipex runs the named pipelines declared in a config file.
//
//	pipex --config pipex.yml upper
//	echo hello | pipex --stdin shout
//
// The exit code is the earliest failing stage's own code, 127 when a stage
// could not be spawned and 128 when one was killed by a signal.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/observability"
	"github.com/kbukum/pipekit/process"
	"github.com/kbukum/pipekit/version"
)

const exitUsage = 2

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := newFlagSet(serviceName, stderr)
	opts, err := parseArgs(fs, argv)
	if stderrors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		fs.Usage()
		return exitUsage
	}

	if opts.Version {
		_, _ = fmt.Fprintln(stdout, version.Get().Banner(serviceName))
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return errors.ExitCode(err)
	}

	if opts.List {
		listPipelines(stdout, cfg)
		return 0
	}

	log := logger.NewWithWriter(&cfg.Logging, stderr, cfg.Name)
	logger.SetGlobalLogger(log)
	logger.RegisterDefaults(process.LoggerName)
	log.Debug("starting", version.Get().Fields())

	ctx := context.Background()
	hooks, shutdown := telemetryHooks(ctx, cfg, log)
	defer shutdown()

	runner := process.NewRunner(cfg.runnerConfig(),
		process.WithLogger(logger.Get(process.LoggerName)),
		process.WithHooks(hooks),
	)
	p, err := runner.Pipeline(opts.Pipeline)
	if err != nil {
		log.Error("cannot build pipeline", logger.MergeWithError(logger.Fields(logger.FieldPipeline, opts.Pipeline), err))
		return errors.ExitCode(err)
	}
	if opts.Stdin {
		p.InputReader(stdin)
	}

	if _, err := p.StreamTo(stdout); err != nil {
		log.Error("pipeline failed", logger.MergeWithError(logger.Fields(logger.FieldPipeline, opts.Pipeline), err))
		return errors.ExitCode(err)
	}
	return 0
}

// telemetryHooks initializes OTLP tracing and metrics when enabled. The
// returned func flushes and shuts the providers down.
func telemetryHooks(ctx context.Context, cfg *pipexConfig, log *logger.Logger) (process.Hooks, func()) {
	if !cfg.Telemetry.Enabled {
		return process.Hooks{}, func() {}
	}

	var (
		hooks   process.Hooks
		closers []func(context.Context) error
	)
	if tp, err := observability.InitTracer(ctx, &cfg.Telemetry.Tracing); err != nil {
		log.Warn("tracing disabled", logger.ErrorFields("init_tracer", err))
	} else {
		closers = append(closers, tp.Shutdown)
		hooks = process.ChainHooks(hooks, observability.TraceHooks(ctx, observability.Tracer(serviceName)))
	}

	if mp, err := observability.InitMeter(ctx, &cfg.Telemetry.Metrics); err != nil {
		log.Warn("metrics disabled", logger.ErrorFields("init_meter", err))
	} else {
		closers = append(closers, mp.Shutdown)
		if m, err := observability.NewMetrics(observability.Meter(serviceName)); err != nil {
			log.Warn("metrics disabled", logger.ErrorFields("new_metrics", err))
		} else {
			hooks = process.ChainHooks(hooks, observability.MetricHooks(ctx, m))
		}
	}

	return hooks, func() {
		for _, closeFn := range closers {
			if err := closeFn(ctx); err != nil {
				log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
			}
		}
	}
}

func listPipelines(w io.Writer, cfg *pipexConfig) {
	runner := process.NewRunner(cfg.runnerConfig(), process.WithLogger(logger.Nop()))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range runner.Names() {
		pc := cfg.Pipelines[name]
		_, _ = fmt.Fprintf(tw, "%s\t%d stages\t%s\n", name, len(pc.Stages), pc.Description)
	}
	_ = tw.Flush()
}
