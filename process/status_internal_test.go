package process

import (
	"reflect"
	"testing"

	"github.com/kbukum/pipekit/errors"
)

func TestStatusSuccess(t *testing.T) {
	tests := []struct {
		name    string
		st      *Status
		success bool
		codes   []int
	}{
		{
			name:    "all zero",
			st:      &Status{stages: 2, results: []ExitResult{{Stage: 0}, {Stage: 1}}},
			success: true,
			codes:   []int{0, 0},
		},
		{
			name:    "one non-zero",
			st:      &Status{stages: 2, results: []ExitResult{{Stage: 0, Code: 1}, {Stage: 1}}},
			success: false,
			codes:   []int{1, 0},
		},
		{
			name:    "signaled contributes no code",
			st:      &Status{stages: 2, results: []ExitResult{{Stage: 0}, {Stage: 1, Code: -1, Signaled: true, Signal: "SIGTERM"}}},
			success: false,
			codes:   []int{0},
		},
		{
			name:    "incomplete",
			st:      &Status{stages: 3, results: []ExitResult{{Stage: 0}}, spawnErr: errors.SpawnFailure(1, "x", nil)},
			success: false,
			codes:   []int{0},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.st.Success() != tc.success {
				t.Errorf("Success() = %v, want %v", tc.st.Success(), tc.success)
			}
			if got := tc.st.Codes(); !reflect.DeepEqual(got, tc.codes) {
				t.Errorf("Codes() = %v, want %v", got, tc.codes)
			}
			if (tc.st.Err() == nil) != tc.success {
				t.Errorf("Err() = %v, success %v", tc.st.Err(), tc.success)
			}
		})
	}
}

func TestStatusErrPrecedence(t *testing.T) {
	st := &Status{stages: 3, results: []ExitResult{
		{Stage: 0, Program: "a", Code: 0},
		{Stage: 1, Program: "b", Code: -1, Signaled: true, Signal: "SIGPIPE"},
		{Stage: 2, Program: "c", Code: 4},
	}}
	if !errors.HasCode(st.Err(), errors.ErrCodeTerminated) {
		t.Fatalf("expected earliest failure (TERMINATED), got %v", st.Err())
	}
	if stage, _ := errors.Stage(st.Err()); stage != 1 {
		t.Fatalf("expected stage 1, got %d", stage)
	}

	spawnErr := errors.SpawnFailure(3, "d", nil)
	st.spawnErr = spawnErr
	if st.Err() != error(spawnErr) {
		t.Fatalf("spawn failure must take precedence, got %v", st.Err())
	}
}

func TestStatusStagesCopy(t *testing.T) {
	st := &Status{stages: 1, results: []ExitResult{{Program: "a"}}}
	st.Stages()[0].Program = "mutated"
	if st.results[0].Program != "a" {
		t.Fatal("Stages must return a copy")
	}
}

func TestStatusOf(t *testing.T) {
	st := &Status{id: "run"}
	err := errors.SpawnFailure(0, "x", nil).WithDetail(statusDetail, st)
	got, ok := StatusOf(err)
	if !ok || got != st {
		t.Fatal("expected attached status")
	}
	if _, ok := StatusOf(errors.NonZeroExit(0, "x", 1)); ok {
		t.Fatal("expected no status on other errors")
	}
}

func TestChainHooks(t *testing.T) {
	var calls []string
	a := Hooks{
		OnStart: func(string, *Pipeline) { calls = append(calls, "a.start") },
		OnExit:  func(string, ExitResult) { calls = append(calls, "a.exit") },
	}
	b := Hooks{
		OnStart:  func(string, *Pipeline) { calls = append(calls, "b.start") },
		OnFinish: func(*Status, error) { calls = append(calls, "b.finish") },
	}
	h := ChainHooks(a, Hooks{}, b)

	h.start("id", nil)
	h.spawn(StageEvent{})
	h.exit("id", ExitResult{})
	h.finish(&Status{}, nil)

	want := []string{"a.start", "b.start", "a.exit", "b.finish"}
	if !reflect.DeepEqual(calls, want) {
		t.Fatalf("expected %v, got %v", want, calls)
	}
}

func TestExitResultErr(t *testing.T) {
	if (ExitResult{}).Err() != nil {
		t.Fatal("expected nil for success")
	}
	if !errors.HasCode(ExitResult{Code: 2}.Err(), errors.ErrCodeNonZeroExit) {
		t.Fatal("expected NON_ZERO_EXIT")
	}
	if !errors.HasCode(ExitResult{Code: -1, Signaled: true}.Err(), errors.ErrCodeTerminated) {
		t.Fatal("expected TERMINATED")
	}
}
