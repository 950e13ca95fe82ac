package process

import (
	"fmt"
	"strings"
)

// PipeMode selects which output stream(s) of a stage feed the next stage,
// or which streams of the last stage are captured.
type PipeMode int

const (
	// Stdout forwards standard output only. Stderr is inherited.
	Stdout PipeMode = iota
	// Stderr forwards standard error only. Stdout is inherited.
	Stderr
	// Both merges stdout and stderr into one pipe. The relative order of
	// bytes from the two streams is unspecified.
	Both
)

var modeNames = [...]string{Stdout: "stdout", Stderr: "stderr", Both: "both"}

var modeSymbols = [...]string{Stdout: "|", Stderr: "|&", Both: "|&&"}

// ParsePipeMode parses "stdout", "stderr" or "both", case-insensitively.
// The empty string parses as Stdout.
func ParsePipeMode(s string) (PipeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stdout":
		return Stdout, nil
	case "stderr":
		return Stderr, nil
	case "both":
		return Both, nil
	default:
		return Stdout, fmt.Errorf("process: unknown pipe mode %q", s)
	}
}

// String returns the lowercase name of the mode.
func (m PipeMode) String() string {
	if m.valid() {
		return modeNames[m]
	}
	return fmt.Sprintf("PipeMode(%d)", int(m))
}

// Symbol returns the display form of the edge: "|", "|&" or "|&&".
func (m PipeMode) Symbol() string {
	if m.valid() {
		return modeSymbols[m]
	}
	return "|?"
}

// MarshalText implements encoding.TextMarshaler.
func (m PipeMode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("process: invalid pipe mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so modes decode
// directly from config files.
func (m *PipeMode) UnmarshalText(text []byte) error {
	mode, err := ParsePipeMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m PipeMode) valid() bool { return m >= Stdout && m <= Both }

func (m PipeMode) stdout() bool { return m == Stdout || m == Both }

func (m PipeMode) stderr() bool { return m == Stderr || m == Both }
