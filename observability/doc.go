// Package observability wires pipeline runs into OpenTelemetry.
//
// Providers are initialized once per binary and exported over OTLP HTTP:
//
//	tp, err := observability.InitTracer(ctx, &tracerCfg)
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, &meterCfg)
//	defer mp.Shutdown(ctx)
//
// Runs are observed through process hooks. TraceHooks opens a pipeline.run
// span per run and a pipeline.stage child span per spawned stage;
// MetricHooks counts runs, stage exits and spawn failures:
//
//	metrics, err := observability.NewMetrics(observability.Meter("pipex"))
//	hooks := process.ChainHooks(
//		observability.TraceHooks(ctx, observability.Tracer("pipex")),
//		observability.MetricHooks(ctx, metrics),
//	)
//	status, err := pipeline.Hooks(hooks).Run()
package observability
