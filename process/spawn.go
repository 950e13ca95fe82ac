package process

import (
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
)

// Spawn starts every stage and returns without waiting. The last stage's
// output is inherited from the host.
//
// If a stage fails to spawn, no later stage is started, the stages already
// running are waited on, and a SPAWN_FAILED error is returned. StatusOf
// recovers the partial Status from it.
func (p *Pipeline) Spawn() (*Handle, error) {
	return p.spawn(false)
}

// SpawnCapture is like Spawn but pipes the stream(s) selected by LastMode;
// read them through Handle.Stdout.
func (p *Pipeline) SpawnCapture() (*Handle, error) {
	return p.spawn(true)
}

// SpawnStream is like SpawnCapture but copies the captured output into w
// from a background goroutine. Handle.Wait joins the copy.
func (p *Pipeline) SpawnStream(w io.Writer) (*Handle, error) {
	h, err := p.spawn(true)
	if err != nil {
		return nil, err
	}
	r := h.stdout
	h.taken = true
	h.drained = make(chan error, 1)
	go func() { h.drained <- drain(r, w) }()
	return h, nil
}

// stageFiles tracks the descriptors created while wiring one stage.
type stageFiles struct {
	// childEnds are the parent's copies of descriptors handed to the child;
	// they are closed as soon as the child is started.
	childEnds []*os.File
	// read is the read end of the outgoing pipe: the next stage's stdin,
	// or the caller's reader for the last stage.
	read *os.File
	// input is the write end of stage 0's input pipe.
	input *os.File
}

func (f *stageFiles) closeChildEnds() {
	for _, c := range f.childEnds {
		_ = c.Close()
	}
	f.childEnds = nil
}

func (f *stageFiles) closeAll() {
	f.closeChildEnds()
	for _, c := range []*os.File{f.read, f.input} {
		if c != nil {
			_ = c.Close()
		}
	}
}

// spawn starts the stages left to right. Stage i+1 needs the read end
// created while wiring stage i, so the order is fixed.
func (p *Pipeline) spawn(piped bool) (*Handle, error) {
	if !p.consumed.CompareAndSwap(false, true) {
		return nil, errors.Consumed("pipeline")
	}

	id := uuid.NewString()
	log := p.logOrDefault().WithRunID(id)
	h := &Handle{
		id:     id,
		total:  len(p.stages),
		stages: make([]*stage, 0, len(p.stages)),
		log:    log,
		hooks:  p.hooks,
	}

	p.hooks.start(id, p)
	log.Debug("spawning pipeline", logger.Fields(
		logger.FieldStages, len(p.stages),
		logger.FieldPipeline, p.String(),
	))

	var prev *os.File
	for i, c := range p.stages {
		mode, wired := p.last, piped
		if i < len(p.stages)-1 {
			mode, wired = p.modes[i], true
		}
		ev := StageEvent{
			RunID:   id,
			Stage:   i,
			Program: c.program,
			Args:    c.Arguments(),
			Mode:    mode,
			Piped:   wired,
		}

		cmd := c.command()
		files, err := p.wire(cmd, i, prev, mode, wired)
		if err != nil {
			return nil, h.abort(ev, err)
		}

		started := time.Now()
		err = cmd.Start()
		files.closeChildEnds()
		if err != nil {
			files.closeAll()
			return nil, h.abort(ev, err)
		}

		ev.Pid = cmd.Process.Pid
		h.stages = append(h.stages, &stage{index: i, program: c.program, cmd: cmd, started: started})
		log.Debug("stage spawned", logger.Fields(
			logger.FieldStage, i,
			logger.FieldProgram, c.program,
			logger.FieldPid, ev.Pid,
			logger.FieldMode, mode.String(),
		))
		p.hooks.spawn(ev)

		// Start feeding input only after stage 0 runs, and before later
		// stages are spawned, so a large input cannot stall the loop.
		if files.input != nil {
			h.forward = forwardInput(files.input, p.input, log)
		}
		prev = files.read
	}

	h.stdout = prev
	return h, nil
}

// wire assigns stdio for stage i. prev is the read end produced by stage
// i-1. Streams that are not piped are inherited from the host. On error
// every descriptor involved, prev included, is closed.
func (p *Pipeline) wire(cmd *exec.Cmd, i int, prev *os.File, mode PipeMode, wired bool) (*stageFiles, error) {
	files := &stageFiles{}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	switch {
	case i > 0:
		cmd.Stdin = prev
		files.childEnds = append(files.childEnds, prev)
	case p.input != nil:
		if f, ok := p.input.reader.(*os.File); ok {
			cmd.Stdin = f
			break
		}
		r, w, err := os.Pipe()
		if err != nil {
			return nil, err
		}
		cmd.Stdin = r
		files.childEnds = append(files.childEnds, r)
		files.input = w
	}

	if !wired {
		return files, nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		files.closeAll()
		return nil, err
	}
	files.read = r
	files.childEnds = append(files.childEnds, w)

	errW := w
	if mode == Both {
		d, err := dupFile(w)
		if err != nil {
			files.closeAll()
			return nil, err
		}
		if d != nil {
			errW = d
			files.childEnds = append(files.childEnds, d)
		}
	}
	if mode.stdout() {
		cmd.Stdout = w
	}
	if mode.stderr() {
		cmd.Stderr = errW
	}
	return files, nil
}
