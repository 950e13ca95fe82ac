package process

import (
	"time"

	"github.com/kbukum/pipekit/errors"
)

// ExitResult holds how one stage finished.
type ExitResult struct {
	// Stage is the zero-based position in the pipeline.
	Stage int
	// Program is the stage's program name.
	Program string
	// Pid is the OS process id.
	Pid int
	// Code is the exit code. -1 if the process was terminated by a signal
	// or its status could not be collected.
	Code int
	// Signaled is true if the process was terminated by a signal.
	Signaled bool
	// Signal is the signal name (e.g. "SIGKILL") when Signaled is true.
	Signal string
	// Duration is the time from spawn until the exit was collected.
	Duration time.Duration
}

// Success reports whether the stage exited normally with code 0.
func (r ExitResult) Success() bool {
	return !r.Signaled && r.Code == 0
}

// Err returns NON_ZERO_EXIT or TERMINATED for a failed stage, nil otherwise.
func (r ExitResult) Err() error {
	switch {
	case r.Signaled:
		return errors.Terminated(r.Stage, r.Program, r.Signal)
	case r.Code != 0:
		return errors.NonZeroExit(r.Stage, r.Program, r.Code)
	default:
		return nil
	}
}
