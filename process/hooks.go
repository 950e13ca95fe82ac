package process

import (
	"github.com/kbukum/pipekit/logger"
)

// StageEvent describes one stage as it is spawned.
type StageEvent struct {
	// RunID is the id of the run the stage belongs to.
	RunID string
	// Stage is the zero-based position in the pipeline.
	Stage int
	// Program and Args are what was executed.
	Program string
	Args    []string
	// Pid is the OS process id, or 0 when the spawn failed.
	Pid int
	// Mode is the mode of the outgoing edge, or the capture mode for the
	// last stage.
	Mode PipeMode
	// Piped is false when the stage's output is inherited from the host.
	Piped bool
}

// Hooks observes a pipeline run. Any field may be nil. Hooks are called
// synchronously from the goroutine driving the run and must not block.
//
// OnStart fires exactly once with the fully built pipeline before the first
// process is spawned. OnSpawn or OnSpawnError fire for each stage in spawn
// order, OnExit for each collected stage in spawn order, and OnFinish once
// when the run is over.
type Hooks struct {
	OnStart      func(runID string, p *Pipeline)
	OnSpawn      func(ev StageEvent)
	OnSpawnError func(ev StageEvent, err error)
	OnExit       func(runID string, res ExitResult)
	OnFinish     func(st *Status, err error)
}

// ChainHooks combines hooks so that each callback runs in argument order.
func ChainHooks(hooks ...Hooks) Hooks {
	var c Hooks
	for _, h := range hooks {
		c = chain(c, h)
	}
	return c
}

func chain(a, b Hooks) Hooks {
	c := a
	if b.OnStart != nil {
		if prev := a.OnStart; prev != nil {
			c.OnStart = func(id string, p *Pipeline) { prev(id, p); b.OnStart(id, p) }
		} else {
			c.OnStart = b.OnStart
		}
	}
	if b.OnSpawn != nil {
		if prev := a.OnSpawn; prev != nil {
			c.OnSpawn = func(ev StageEvent) { prev(ev); b.OnSpawn(ev) }
		} else {
			c.OnSpawn = b.OnSpawn
		}
	}
	if b.OnSpawnError != nil {
		if prev := a.OnSpawnError; prev != nil {
			c.OnSpawnError = func(ev StageEvent, err error) { prev(ev, err); b.OnSpawnError(ev, err) }
		} else {
			c.OnSpawnError = b.OnSpawnError
		}
	}
	if b.OnExit != nil {
		if prev := a.OnExit; prev != nil {
			c.OnExit = func(id string, res ExitResult) { prev(id, res); b.OnExit(id, res) }
		} else {
			c.OnExit = b.OnExit
		}
	}
	if b.OnFinish != nil {
		if prev := a.OnFinish; prev != nil {
			c.OnFinish = func(st *Status, err error) { prev(st, err); b.OnFinish(st, err) }
		} else {
			c.OnFinish = b.OnFinish
		}
	}
	return c
}

// LogHooks echoes every pipeline at info level before it runs and logs its
// outcome when it finishes.
func LogHooks(log *logger.Logger) Hooks {
	return Hooks{
		OnStart: func(id string, p *Pipeline) {
			log.Info(p.String(), logger.Fields(logger.FieldRunID, id, logger.FieldStages, p.Len()))
		},
		OnFinish: func(st *Status, err error) {
			fields := logger.Fields(logger.FieldRunID, st.ID(), "codes", st.Codes())
			if err != nil {
				log.Warn("pipeline failed", logger.MergeWithError(fields, err))
				return
			}
			log.Info("pipeline finished", fields)
		},
	}
}

func (h Hooks) start(id string, p *Pipeline) {
	if h.OnStart != nil {
		h.OnStart(id, p)
	}
}

func (h Hooks) spawn(ev StageEvent) {
	if h.OnSpawn != nil {
		h.OnSpawn(ev)
	}
}

func (h Hooks) spawnError(ev StageEvent, err error) {
	if h.OnSpawnError != nil {
		h.OnSpawnError(ev, err)
	}
}

func (h Hooks) exit(id string, res ExitResult) {
	if h.OnExit != nil {
		h.OnExit(id, res)
	}
}

func (h Hooks) finish(st *Status, err error) {
	if h.OnFinish != nil {
		h.OnFinish(st, err)
	}
}
