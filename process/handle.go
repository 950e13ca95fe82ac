package process

import (
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
)

// stage is one spawned process.
type stage struct {
	index   int
	program string
	cmd     *exec.Cmd
	started time.Time
}

// Handle is a spawned pipeline. Every inter-stage pipe is already connected
// and owned by the children; the Handle only keeps the final read end when
// the output was piped.
//
// Wait must be called exactly once to collect the stages and release
// resources.
type Handle struct {
	id     string
	total  int
	stages []*stage
	log    *logger.Logger
	hooks  Hooks

	stdout   *os.File
	taken    bool
	forward  *forwarder
	drained  chan error
	drainErr error

	waited atomic.Bool
}

// ID returns the run id.
func (h *Handle) ID() string { return h.id }

// Len returns the number of spawned stages.
func (h *Handle) Len() int { return len(h.stages) }

// Pids returns the process ids in spawn order.
func (h *Handle) Pids() []int {
	pids := make([]int, len(h.stages))
	for i, s := range h.stages {
		pids[i] = s.cmd.Process.Pid
	}
	return pids
}

// Stdout returns the reader for the last stage's captured stream(s). The
// boolean is false when the output was inherited or is already being
// drained by SpawnStream.
//
// Read it to EOF before calling Wait; Wait closes it.
func (h *Handle) Stdout() (io.Reader, bool) {
	if h.stdout == nil || h.taken {
		return nil, false
	}
	return h.stdout, true
}

// Wait waits for every stage in spawn order and returns the Status.
// The error is Status.Err, or an IO_FAILURE from SpawnStream's drain when
// every stage succeeded. A second call returns a CONSUMED error.
func (h *Handle) Wait() (*Status, error) {
	if !h.waited.CompareAndSwap(false, true) {
		return nil, errors.Consumed("handle")
	}
	st := h.collect()
	return st, h.finish(st)
}

// collect waits on the spawned stages in spawn order. Sequential waiting
// cannot deadlock because every pipe is connected or drained elsewhere.
func (h *Handle) collect() *Status {
	st := &Status{id: h.id, stages: h.total, results: make([]ExitResult, 0, len(h.stages))}
	for _, s := range h.stages {
		st.results = append(st.results, h.waitStage(s))
	}
	return st
}

func (h *Handle) waitStage(s *stage) ExitResult {
	werr := s.cmd.Wait()
	res := ExitResult{
		Stage:    s.index,
		Program:  s.program,
		Pid:      s.cmd.Process.Pid,
		Duration: time.Since(s.started),
	}
	exitStatus(&res, s.cmd.ProcessState)

	fields := logger.Fields(
		logger.FieldStage, res.Stage,
		logger.FieldProgram, res.Program,
		logger.FieldPid, res.Pid,
		logger.FieldExitCode, res.Code,
		logger.FieldDuration, res.Duration.Milliseconds(),
	)
	switch {
	case s.cmd.ProcessState == nil:
		h.log.Warn("stage status unavailable", logger.MergeWithError(fields, werr))
	case res.Signaled:
		fields[logger.FieldSignal] = res.Signal
		h.log.Debug("stage terminated", fields)
	default:
		h.log.Debug("stage exited", fields)
	}

	h.hooks.exit(h.id, res)
	return res
}

// finish joins the forwarding goroutines, releases the output pipe and
// reports the outcome.
func (h *Handle) finish(st *Status) error {
	h.forward.wait()
	if h.drained != nil {
		if err := <-h.drained; err != nil && h.drainErr == nil {
			h.drainErr = err
		}
	}
	if h.stdout != nil {
		_ = h.stdout.Close()
	}

	err := st.Err()
	if err == nil && h.drainErr != nil {
		err = h.drainErr
	}
	h.hooks.finish(st, err)
	return err
}

// abort handles a spawn failure: the stages spawned so far are waited on
// and the partial Status is attached to the returned SPAWN_FAILED error.
func (h *Handle) abort(ev StageEvent, cause error) error {
	spawnErr := errors.SpawnFailure(ev.Stage, ev.Program, cause)
	h.log.Warn("stage failed to spawn", logger.MergeWithError(logger.Fields(
		logger.FieldStage, ev.Stage,
		logger.FieldProgram, ev.Program,
	), cause))
	h.hooks.spawnError(ev, spawnErr)

	h.waited.Store(true)
	st := h.collect()
	st.spawnErr = spawnErr
	spawnErr.WithDetail(statusDetail, st)
	_ = h.finish(st)
	return spawnErr
}
