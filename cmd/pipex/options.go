package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// options are the command-line flags of pipex.
type options struct {
	ConfigFile string
	EnvFile    string
	Stdin      bool
	Quiet      bool
	Version    bool
	List       bool
	Pipeline   string
}

func newFlagSet(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(out, "Usage:")
		_, _ = fmt.Fprintf(out, "  %s [options] <pipeline>\n", name)
		_, _ = fmt.Fprintf(out, "  %s --list\n\n", name)
		_, _ = fmt.Fprintln(out, "Options:")
		fs.PrintDefaults()
	}
	return fs
}

func parseArgs(fs *pflag.FlagSet, argv []string) (options, error) {
	var o options
	fs.StringVarP(&o.ConfigFile, "config", "c", "", "config file (default: search ./pipex.yml, ./cmd/pipex/config.yml, ...)")
	fs.StringVar(&o.EnvFile, "env-file", "", ".env file loaded before PIPEX_* variables are bound")
	fs.BoolVar(&o.Stdin, "stdin", false, "feed this process's stdin to the first stage")
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "only log errors and disable pipeline echo")
	fs.BoolVarP(&o.Version, "version", "v", false, "print version and exit")
	fs.BoolVarP(&o.List, "list", "l", false, "list configured pipelines and exit")

	if err := fs.Parse(argv); err != nil {
		return o, err
	}
	if o.Version || o.List {
		return o, nil
	}

	switch fs.NArg() {
	case 1:
		o.Pipeline = fs.Arg(0)
		return o, nil
	case 0:
		return o, fmt.Errorf("missing pipeline name")
	default:
		return o, fmt.Errorf("expected one pipeline name, got %d arguments", fs.NArg())
	}
}
