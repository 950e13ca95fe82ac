package process

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// envOp is one environment edit, applied in the order it was added.
type envOp struct {
	key    string
	val    string
	remove bool
}

// Command describes one process invocation: program, arguments,
// environment edits and working directory.
//
// Nothing is validated while building. An empty or unknown program is
// accepted and fails with SPAWN_FAILED when the pipeline is spawned.
type Command struct {
	program  string
	args     []string
	env      []envOp
	clearEnv bool
	dir      string
}

// New creates a Command for program with optional initial arguments.
// The program is resolved via PATH unless it contains a path separator.
func New(program string, args ...string) *Command {
	return &Command{program: program, args: append([]string(nil), args...)}
}

// Arg appends a single argument.
func (c *Command) Arg(a string) *Command {
	c.args = append(c.args, a)
	return c
}

// Args appends arguments in order.
func (c *Command) Args(a ...string) *Command {
	c.args = append(c.args, a...)
	return c
}

// Env sets an environment variable for the child. The last write wins.
func (c *Command) Env(key, val string) *Command {
	c.env = append(c.env, envOp{key: key, val: val})
	return c
}

// EnvRemove removes key from the child environment, whether inherited or
// set earlier with Env.
func (c *Command) EnvRemove(key string) *Command {
	c.env = append(c.env, envOp{key: key, remove: true})
	return c
}

// EnvClear drops the inherited environment and every earlier edit.
// Env calls made afterwards still apply.
func (c *Command) EnvClear() *Command {
	c.clearEnv = true
	c.env = nil
	return c
}

// Dir sets the working directory of the child.
func (c *Command) Dir(path string) *Command {
	c.dir = path
	return c
}

// Program returns the program name.
func (c *Command) Program() string { return c.program }

// Arguments returns a copy of the argument list.
func (c *Command) Arguments() []string { return append([]string(nil), c.args...) }

// WorkDir returns the working directory override, or "" to inherit.
func (c *Command) WorkDir() string { return c.dir }

// Environ returns the resolved child environment as KEY=VALUE pairs.
// A nil result means the host environment is inherited unchanged.
func (c *Command) Environ() []string {
	if !c.clearEnv && len(c.env) == 0 {
		return nil
	}

	var order []string
	vals := make(map[string]string)
	set := func(k, v string) {
		if _, ok := vals[k]; !ok {
			order = append(order, k)
		}
		vals[k] = v
	}

	if !c.clearEnv {
		for _, kv := range os.Environ() {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				continue
			}
			set(k, v)
		}
	}
	for _, op := range c.env {
		if op.key == "" {
			continue
		}
		if op.remove {
			delete(vals, op.key)
			continue
		}
		set(op.key, op.val)
	}

	env := make([]string, 0, len(vals))
	seen := make(map[string]bool, len(vals))
	for _, k := range order {
		v, ok := vals[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		env = append(env, k+"="+v)
	}
	return env
}

// String renders the command for display, e.g.
// `cd:/tmp env:LC_ALL=C tr "[:lower:]" "[:upper:]"`.
func (c *Command) String() string {
	var b strings.Builder
	if c.dir != "" {
		b.WriteString("cd:" + quoteArg(c.dir) + " ")
	}
	if c.clearEnv {
		b.WriteString("env:clear ")
	}
	for _, op := range c.env {
		if op.remove {
			b.WriteString("env:-" + op.key + " ")
		} else {
			b.WriteString("env:" + op.key + "=" + quoteArg(op.val) + " ")
		}
	}
	b.WriteString(quoteArg(c.program))
	for _, a := range c.args {
		b.WriteByte(' ')
		b.WriteString(quoteArg(a))
	}
	return b.String()
}

// clone returns a deep copy. A nil command clones to an empty one, which
// fails at spawn time like any other unknown program.
func (c *Command) clone() *Command {
	if c == nil {
		return &Command{}
	}
	return &Command{
		program:  c.program,
		args:     append([]string(nil), c.args...),
		env:      append([]envOp(nil), c.env...),
		clearEnv: c.clearEnv,
		dir:      c.dir,
	}
}

// command builds the exec.Cmd for this stage. Stdio is left to the caller.
func (c *Command) command() *exec.Cmd {
	cmd := exec.Command(c.program, c.args...) //nolint:gosec // dynamic args are the purpose of this package
	cmd.Dir = c.dir
	cmd.Env = c.Environ()
	return cmd
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n'\"\\$`|&;<>()*?[]{}!#~") {
		return strconv.Quote(s)
	}
	return s
}
