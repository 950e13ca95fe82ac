package process

import (
	"github.com/kbukum/pipekit/errors"
)

// Status is the outcome of a pipeline run: one ExitResult per spawned stage
// in spawn order.
//
// When a stage failed to spawn, the Status is partial. It holds results for
// the stages spawned before it, and Err reports the spawn failure.
type Status struct {
	id       string
	stages   int
	results  []ExitResult
	spawnErr error
}

// ID returns the run id shared with the Handle and every hook event.
func (s *Status) ID() string { return s.id }

// Stages returns the per-stage results in spawn order.
func (s *Status) Stages() []ExitResult {
	return append([]ExitResult(nil), s.results...)
}

// Complete reports whether every stage of the pipeline was spawned.
func (s *Status) Complete() bool {
	return s.spawnErr == nil && len(s.results) == s.stages
}

// Success is true iff every stage was spawned and exited with code 0.
func (s *Status) Success() bool {
	if !s.Complete() {
		return false
	}
	for _, r := range s.results {
		if !r.Success() {
			return false
		}
	}
	return true
}

// Codes returns the available exit codes in spawn order. Stages terminated
// by a signal contribute none.
func (s *Status) Codes() []int {
	codes := make([]int, 0, len(s.results))
	for _, r := range s.results {
		if r.Signaled {
			continue
		}
		codes = append(codes, r.Code)
	}
	return codes
}

// FirstFailure returns the earliest-spawned stage that did not succeed.
func (s *Status) FirstFailure() (ExitResult, bool) {
	for _, r := range s.results {
		if !r.Success() {
			return r, true
		}
	}
	return ExitResult{}, false
}

// Err returns nil on success. A spawn failure takes precedence; otherwise
// the earliest-spawned failing stage is reported as NON_ZERO_EXIT or
// TERMINATED.
func (s *Status) Err() error {
	if s.spawnErr != nil {
		return s.spawnErr
	}
	if r, ok := s.FirstFailure(); ok {
		return r.Err()
	}
	return nil
}

// StatusOf returns the partial Status attached to a SPAWN_FAILED error
// returned by Spawn, SpawnCapture or SpawnStream.
func StatusOf(err error) (*Status, bool) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return nil, false
	}
	st, ok := appErr.Details[statusDetail].(*Status)
	return st, ok
}

const statusDetail = "status"
