package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNew(t *testing.T) {
	cfg := &Config{
		Level:  "debug",
		Format: "json",
		Output: "stderr",
	}
	l := New(cfg, "my-service")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "my-service" {
		t.Errorf("expected service 'my-service', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, &buf, "svc")
	l.WithComponent("process").WithRunID("run-1").Debug("stage spawned", Fields(FieldStage, 0, FieldPid, 42))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "stage spawned" {
		t.Errorf("unexpected message: %v", entry["message"])
	}
	if entry[FieldComponent] != "process" {
		t.Errorf("expected component=process, got %v", entry[FieldComponent])
	}
	if entry[FieldRunID] != "run-1" {
		t.Errorf("expected run_id=run-1, got %v", entry[FieldRunID])
	}
	if entry[FieldPid] != float64(42) {
		t.Errorf("expected pid=42, got %v", entry[FieldPid])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "json"}, &buf, "svc")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be filtered, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn to be written, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	// Must not panic and must not write anywhere.
	l.Info("nothing", Fields("k", "v"))
	l.WithComponent("x").Error("nothing")
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("handler")
	if cl == nil {
		t.Fatal("expected non-nil logger")
	}
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestWithFields(t *testing.T) {
	l := NewDefault("test")
	fl := l.WithFields(map[string]interface{}{"key": "value"})
	if fl == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithError(t *testing.T) {
	l := NewDefault("test")
	el := l.WithError(nil)
	if el == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestInit(t *testing.T) {
	cfg := Config{
		Level:  "info",
		Format: "console",
	}
	Init(&cfg)
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected Init to apply defaults, got output %q", cfg.Output)
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	SetGlobalLogger(nil)
	l := GetGlobalLogger()
	if l == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	got := GetGlobalLogger()
	if got != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	Init(&Config{Level: "debug", Format: "console"})
	// These should not panic
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestRegistry(t *testing.T) {
	l := Nop()
	Register("pipeline-test", l)
	if Get("pipeline-test") != l {
		t.Error("expected registered logger")
	}
	if Get("unregistered-component") == nil {
		t.Error("expected fallback logger for unknown name")
	}
	if _, ok := Lookup("unregistered-component"); ok {
		t.Error("Lookup must not report unregistered names")
	}
}

func TestRegisterDefaults(t *testing.T) {
	var buf bytes.Buffer
	prev := GetGlobalLogger()
	SetGlobalLogger(NewWithWriter(&Config{Level: "debug", Format: "json"}, &buf, "svc"))
	t.Cleanup(func() { SetGlobalLogger(prev) })

	RegisterDefaults("defaults-a", "defaults-b")
	for _, name := range []string{"defaults-a", "defaults-b"} {
		l, ok := Lookup(name)
		if !ok {
			t.Fatalf("expected %s registered", name)
		}
		buf.Reset()
		l.Info("hello")
		var entry map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
		}
		if entry[FieldComponent] != name {
			t.Errorf("expected component=%s, got %v", name, entry[FieldComponent])
		}
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stderr"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stderr"}, true},
		{"invalid output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLevelTag(t *testing.T) {
	if got := levelTag("info", true); got != "[INF]" {
		t.Errorf("expected [INF], got %q", got)
	}
	if got := levelTag("custom", true); got != "[CUSTOM]" {
		t.Errorf("expected [CUSTOM], got %q", got)
	}
	if got := levelTag("error", false); !strings.Contains(got, "[ERR]") {
		t.Errorf("expected colored [ERR], got %q", got)
	}
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("expected odd trailing key to be dropped, got %v", f)
	}
	ef := ErrorFields("spawn", fmt.Errorf("boom"))
	if ef[FieldError] != "boom" || ef[FieldOperation] != "spawn" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("wait", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}
	m := MergeWithDuration(MergeWithError(nil, fmt.Errorf("x")), time.Second)
	if m[FieldError] != "x" || m[FieldDuration] != int64(1000) {
		t.Errorf("unexpected merged fields: %v", m)
	}
}

func TestOutputWriter(t *testing.T) {
	if outputWriter("stdout") != os.Stdout {
		t.Error("expected stdout")
	}
	if outputWriter("anything") != os.Stderr {
		t.Error("expected stderr fallback")
	}
}
