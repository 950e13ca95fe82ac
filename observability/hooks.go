package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/process"
)

const statusOK = "ok"

// statusOf returns "ok" for nil and the error code otherwise.
func statusOf(err error) string {
	if err == nil {
		return statusOK
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(errors.ErrCodeInternal)
}

type runSpans struct {
	ctx    context.Context
	root   trace.Span
	stages map[int]trace.Span
}

type spanTracker struct {
	ctx    context.Context
	tracer trace.Tracer

	mu   sync.Mutex
	runs map[string]*runSpans
}

// TraceHooks records one pipeline.run span per run with a pipeline.stage
// child span per stage. Spans are parented on ctx. The hooks may be shared
// by concurrent runs.
func TraceHooks(ctx context.Context, tracer trace.Tracer) process.Hooks {
	if tracer == nil {
		tracer = Tracer(defaultTracerName)
	}
	t := &spanTracker{ctx: ctx, tracer: tracer, runs: make(map[string]*runSpans)}
	return process.Hooks{
		OnStart:      t.start,
		OnSpawn:      t.spawn,
		OnSpawnError: t.spawnError,
		OnExit:       t.exit,
		OnFinish:     t.finish,
	}
}

func (t *spanTracker) run(id string) *runSpans {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs[id]
}

func (t *spanTracker) start(id string, p *process.Pipeline) {
	ctx, span := t.tracer.Start(t.ctx, SpanPipelineRun, trace.WithAttributes(
		attribute.String(AttrRunID, id),
		attribute.String(AttrPipeline, p.String()),
		attribute.Int(AttrStages, p.Len()),
	))
	t.mu.Lock()
	t.runs[id] = &runSpans{ctx: ctx, root: span, stages: make(map[int]trace.Span)}
	t.mu.Unlock()
}

func (t *spanTracker) stageSpan(r *runSpans, ev process.StageEvent) trace.Span {
	_, span := t.tracer.Start(r.ctx, SpanPipelineStage, trace.WithAttributes(
		attribute.Int(AttrStage, ev.Stage),
		attribute.String(AttrProgram, ev.Program),
		attribute.StringSlice(AttrArgs, ev.Args),
		attribute.String(AttrMode, ev.Mode.String()),
		attribute.Bool(AttrPiped, ev.Piped),
	))
	return span
}

func (t *spanTracker) spawn(ev process.StageEvent) {
	r := t.run(ev.RunID)
	if r == nil {
		return
	}
	span := t.stageSpan(r, ev)
	span.SetAttributes(attribute.Int(AttrPid, ev.Pid))
	t.mu.Lock()
	r.stages[ev.Stage] = span
	t.mu.Unlock()
}

func (t *spanTracker) spawnError(ev process.StageEvent, err error) {
	r := t.run(ev.RunID)
	if r == nil {
		return
	}
	span := t.stageSpan(r, ev)
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorCode, statusOf(err)))
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func (t *spanTracker) exit(id string, res process.ExitResult) {
	r := t.run(id)
	if r == nil {
		return
	}
	t.mu.Lock()
	span, ok := r.stages[res.Stage]
	delete(r.stages, res.Stage)
	t.mu.Unlock()
	if !ok {
		return
	}

	if res.Signaled {
		span.SetAttributes(attribute.String(AttrSignal, res.Signal))
	} else {
		span.SetAttributes(attribute.Int(AttrExitCode, res.Code))
	}
	if err := res.Err(); err != nil {
		span.SetAttributes(attribute.String(AttrErrorCode, statusOf(err)))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (t *spanTracker) finish(st *process.Status, err error) {
	t.mu.Lock()
	r := t.runs[st.ID()]
	delete(t.runs, st.ID())
	t.mu.Unlock()
	if r == nil {
		return
	}

	// stages still open were never collected
	for _, span := range r.stages {
		span.End()
	}
	if err != nil {
		r.root.RecordError(err)
		r.root.SetAttributes(attribute.String(AttrErrorCode, statusOf(err)))
		r.root.SetStatus(codes.Error, err.Error())
	} else {
		r.root.SetStatus(codes.Ok, "")
	}
	r.root.End()
}

// MetricHooks records every run on m.
func MetricHooks(ctx context.Context, m *Metrics) process.Hooks {
	return process.Hooks{
		OnSpawnError: func(ev process.StageEvent, _ error) {
			m.RecordSpawnFailure(ctx, ev.Program)
		},
		OnExit: func(_ string, res process.ExitResult) {
			m.RecordStageExit(ctx, res.Program, statusOf(res.Err()), res.Duration)
		},
		OnFinish: func(_ *process.Status, err error) {
			m.RecordRun(ctx, statusOf(err))
		},
	}
}
