package process_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
	"github.com/kbukum/pipekit/process"
)

func runMissingProgram(t *testing.T) {
	t.Helper()
	_, err := process.NewPipeline(process.New("pipekit-no-such-program")).Run()
	if !errors.HasCode(err, errors.ErrCodeSpawnFailed) {
		t.Fatalf("expected SPAWN_FAILED, got %v", err)
	}
}

func TestDefaultLoggerSilent(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.GetGlobalLogger()
	logger.SetGlobalLogger(logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, &buf, "test"))
	t.Cleanup(func() { logger.SetGlobalLogger(prev) })

	runMissingProgram(t)
	if buf.Len() != 0 {
		t.Fatalf("library logged without a configured logger: %s", buf.String())
	}
}

func TestRegisteredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.Register(process.LoggerName, logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, &buf, "test"))
	t.Cleanup(func() { logger.Register(process.LoggerName, logger.Nop()) })

	runMissingProgram(t)
	if !strings.Contains(buf.String(), "stage failed to spawn") {
		t.Fatalf("expected spawn failure logged, got %q", buf.String())
	}

	buf.Reset()
	r := process.NewRunner(process.Config{Name: "test"})
	if _, err := r.Prepare(process.NewPipeline(process.New("pipekit-no-such-program"))).Run(); err == nil {
		t.Fatal("expected spawn failure")
	}
	if !strings.Contains(buf.String(), `"runner":"test"`) {
		t.Fatalf("expected runner to default to the registered logger, got %q", buf.String())
	}
}
