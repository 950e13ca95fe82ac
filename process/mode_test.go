package process_test

import (
	"testing"

	"github.com/kbukum/pipekit/process"
)

func TestParsePipeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    process.PipeMode
		wantErr bool
	}{
		{"stdout", process.Stdout, false},
		{"", process.Stdout, false},
		{"STDERR", process.Stderr, false},
		{" both ", process.Both, false},
		{"stdin", process.Stdout, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := process.ParsePipeMode(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePipeMode(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParsePipeMode(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestPipeModeRendering(t *testing.T) {
	tests := []struct {
		mode   process.PipeMode
		name   string
		symbol string
	}{
		{process.Stdout, "stdout", "|"},
		{process.Stderr, "stderr", "|&"},
		{process.Both, "both", "|&&"},
		{process.PipeMode(9), "PipeMode(9)", "|?"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.mode.String() != tc.name {
				t.Errorf("String() = %q, want %q", tc.mode.String(), tc.name)
			}
			if tc.mode.Symbol() != tc.symbol {
				t.Errorf("Symbol() = %q, want %q", tc.mode.Symbol(), tc.symbol)
			}
		})
	}
}

func TestPipeModeText(t *testing.T) {
	var m process.PipeMode
	if err := m.UnmarshalText([]byte("both")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != process.Both {
		t.Fatalf("expected Both, got %v", m)
	}
	if err := m.UnmarshalText([]byte("sideways")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if m != process.Both {
		t.Fatal("failed unmarshal must not change the value")
	}

	text, err := process.Stderr.MarshalText()
	if err != nil || string(text) != "stderr" {
		t.Fatalf("MarshalText() = %q, %v", text, err)
	}
	if _, err := process.PipeMode(-1).MarshalText(); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}
