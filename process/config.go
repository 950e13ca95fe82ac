package process

import (
	"fmt"
	"strings"

	"github.com/kbukum/pipekit/validation"
)

// StageConfig declares one stage in a config file.
type StageConfig struct {
	Program string   `yaml:"program" mapstructure:"program" validate:"required"`
	Args    []string `yaml:"args,omitempty" mapstructure:"args"`
	// Mode is the edge from the previous stage. It must be empty on the
	// first stage and defaults to stdout elsewhere.
	Mode string `yaml:"mode,omitempty" mapstructure:"mode"`
	// Env holds KEY=VALUE pairs. A list is used because config loaders
	// lowercase map keys.
	Env       []string `yaml:"env,omitempty" mapstructure:"env"`
	EnvRemove []string `yaml:"env_remove,omitempty" mapstructure:"env_remove"`
	EnvClear  bool     `yaml:"env_clear,omitempty" mapstructure:"env_clear"`
	Dir       string   `yaml:"dir,omitempty" mapstructure:"dir"`
}

// Command builds the Command for this stage. EnvClear is applied first,
// then removals, then Env.
func (s StageConfig) Command() *Command {
	c := New(s.Program, s.Args...)
	if s.EnvClear {
		c.EnvClear()
	}
	for _, k := range s.EnvRemove {
		c.EnvRemove(k)
	}
	for _, kv := range s.Env {
		k, v, _ := strings.Cut(kv, "=")
		c.Env(k, v)
	}
	if s.Dir != "" {
		c.Dir(s.Dir)
	}
	return c
}

// PipelineConfig declares a pipeline in a config file:
//
//	stages:
//	  - program: echo
//	    args: ["hello world"]
//	  - program: tr
//	    args: ["[:lower:]", "[:upper:]"]
//	    env: ["LC_ALL=C"]
//	capture: stdout
type PipelineConfig struct {
	Description string `yaml:"description,omitempty" mapstructure:"description"`
	// Input is fed to the first stage's stdin when non-empty.
	Input string `yaml:"input,omitempty" mapstructure:"input"`
	// Capture selects the stream(s) of the last stage that are read.
	Capture PipeMode      `yaml:"capture,omitempty" mapstructure:"capture"`
	Stages  []StageConfig `yaml:"stages" mapstructure:"stages" validate:"required,min=1,dive"`
}

// Validate checks the struct tags plus the rules tags cannot express.
func (c *PipelineConfig) Validate() error {
	v := validation.New()
	v.Merge("stages", validation.Validate(c))

	if len(c.Stages) > 0 {
		v.Custom(c.Stages[0].Mode == "", "stages[0].mode", "must be empty on the first stage")
	}
	for i, s := range c.Stages {
		if _, err := ParsePipeMode(s.Mode); err != nil {
			v.AddError(fmt.Sprintf("stages[%d].mode", i), "must be one of: stdout, stderr, both")
		}
		for j, kv := range s.Env {
			k, _, ok := strings.Cut(kv, "=")
			v.Custom(ok && k != "", fmt.Sprintf("stages[%d].env[%d]", i, j), "must be KEY=VALUE")
		}
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Build validates the config and returns a fresh Pipeline.
func (c *PipelineConfig) Build() (*Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := NewPipeline(c.Stages[0].Command())
	for _, s := range c.Stages[1:] {
		mode, err := ParsePipeMode(s.Mode)
		if err != nil {
			return nil, err
		}
		p.PipeMode(s.Command(), mode)
	}
	if c.Input != "" {
		p.InputString(c.Input)
	}
	p.LastMode(c.Capture)
	return p, nil
}
