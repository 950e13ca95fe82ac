package process

import (
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/kbukum/pipekit/logger"
)

// input is the source feeding stage 0. Exactly one field is set.
type input struct {
	data   []byte
	reader io.Reader
}

// Pipeline is an ordered list of stages with one PipeMode per edge.
// It always has at least one stage and len(Modes()) == Len()-1.
//
// A Pipeline is single-use: the first Spawn, Run, Output or StreamTo call
// consumes it and later calls return a CONSUMED error.
type Pipeline struct {
	stages []*Command
	modes  []PipeMode
	input  *input
	last   PipeMode
	hooks  Hooks
	log    *logger.Logger

	consumed atomic.Bool
}

// NewPipeline starts a pipeline whose first stage is first. The command is
// copied, so later changes to first do not affect the pipeline.
func NewPipeline(first *Command) *Pipeline {
	return &Pipeline{stages: []*Command{first.clone()}}
}

// Pipe starts a pipeline feeding c's stdout into next.
func (c *Command) Pipe(next *Command) *Pipeline {
	return NewPipeline(c).Pipe(next)
}

// PipeStderr starts a pipeline feeding c's stderr into next.
func (c *Command) PipeStderr(next *Command) *Pipeline {
	return NewPipeline(c).PipeStderr(next)
}

// PipeBoth starts a pipeline feeding c's stdout and stderr into next.
func (c *Command) PipeBoth(next *Command) *Pipeline {
	return NewPipeline(c).PipeBoth(next)
}

// Pipe appends next, fed by the current last stage's stdout.
func (p *Pipeline) Pipe(next *Command) *Pipeline {
	return p.PipeMode(next, Stdout)
}

// PipeStderr appends next, fed by the current last stage's stderr.
func (p *Pipeline) PipeStderr(next *Command) *Pipeline {
	return p.PipeMode(next, Stderr)
}

// PipeBoth appends next, fed by both output streams of the current last stage.
func (p *Pipeline) PipeBoth(next *Command) *Pipeline {
	return p.PipeMode(next, Both)
}

// PipeMode appends next with an explicit edge mode. Unknown modes are
// treated as Stdout.
func (p *Pipeline) PipeMode(next *Command, mode PipeMode) *Pipeline {
	if !mode.valid() {
		mode = Stdout
	}
	p.stages = append(p.stages, next.clone())
	p.modes = append(p.modes, mode)
	return p
}

// Input feeds b to the first stage's stdin. The pipeline takes ownership of
// b; the caller must not modify it afterwards.
func (p *Pipeline) Input(b []byte) *Pipeline {
	p.input = &input{data: b}
	return p
}

// InputString feeds s to the first stage's stdin.
func (p *Pipeline) InputString(s string) *Pipeline {
	return p.Input([]byte(s))
}

// InputReader streams r into the first stage's stdin. An *os.File is handed
// to the child directly; any other reader is copied by a goroutine until it
// returns io.EOF or an error, after which the pipe is closed.
func (p *Pipeline) InputReader(r io.Reader) *Pipeline {
	if r == nil {
		p.input = nil
		return p
	}
	p.input = &input{reader: r}
	return p
}

// LastMode selects which stream(s) of the last stage Output, StreamTo,
// SpawnCapture and SpawnStream read. The default is Stdout.
func (p *Pipeline) LastMode(mode PipeMode) *Pipeline {
	if !mode.valid() {
		mode = Stdout
	}
	p.last = mode
	return p
}

// Hooks attaches observers. Calling Hooks more than once chains them in
// call order.
func (p *Pipeline) Hooks(h Hooks) *Pipeline {
	p.hooks = ChainHooks(p.hooks, h)
	return p
}

// WithLogger sets the logger used for spawn and exit events. The default is
// the "process" logger from the logger registry.
func (p *Pipeline) WithLogger(l *logger.Logger) *Pipeline {
	p.log = l
	return p
}

// Stages returns copies of the stage commands in order.
func (p *Pipeline) Stages() []*Command {
	out := make([]*Command, len(p.stages))
	for i, c := range p.stages {
		out[i] = c.clone()
	}
	return out
}

// Modes returns the edge modes; Modes()[i] connects stage i to stage i+1.
func (p *Pipeline) Modes() []PipeMode {
	return append([]PipeMode(nil), p.modes...)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// CaptureMode returns the mode set by LastMode.
func (p *Pipeline) CaptureMode() PipeMode { return p.last }

// HasInput reports whether an input source was attached.
func (p *Pipeline) HasInput() bool { return p.input != nil }

// Consumed reports whether the pipeline has already been spawned.
func (p *Pipeline) Consumed() bool { return p.consumed.Load() }

// String renders the pipeline in shell-like form, e.g.
// `echo "hello world" | tr "[:lower:]" "[:upper:]"`. Edges use "|" for
// Stdout, "|&" for Stderr and "|&&" for Both.
func (p *Pipeline) String() string {
	var b strings.Builder
	if p.input != nil {
		if p.input.reader == nil {
			b.WriteString("<input:" + strconv.Itoa(len(p.input.data)) + "B> ")
		} else {
			b.WriteString("<input:stream> ")
		}
	}
	for i, c := range p.stages {
		if i > 0 {
			b.WriteString(" " + p.modes[i-1].Symbol() + " ")
		}
		b.WriteString(c.String())
	}
	return b.String()
}

func (p *Pipeline) logOrDefault() *logger.Logger {
	if p.log != nil {
		return p.log
	}
	return defaultLogger()
}

// LoggerName is the registry name the package looks up its logger under.
const LoggerName = "process"

// defaultLogger returns the logger registered as LoggerName, or a no-op
// logger when the binary registered none.
func defaultLogger() *logger.Logger {
	if l, ok := logger.Lookup(LoggerName); ok {
		return l
	}
	return logger.Nop()
}
