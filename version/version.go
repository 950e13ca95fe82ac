package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// Info is the build identity of the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	GitBranch string    `json:"git_branch,omitempty"`
	BuildTime string    `json:"build_time,omitempty"`
	BuildDate time.Time `json:"-"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// Get returns the build identity, filling gaps from the embedded build info.
func Get() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.IsDirty = s.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
		info.BuildDate = t.UTC()
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty && !strings.Contains(info.Version, "dirty")
	return info
}

// Short returns "<version>[-<commit>][-dirty]".
func (i *Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	if i.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
}

// Full returns the short version plus a non-default branch and build date.
func (i *Info) Full() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		parts = append(parts, i.GitBranch)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	v := strings.Join(parts, "-")
	if !i.BuildDate.IsZero() {
		v += fmt.Sprintf(" (built %s)", i.BuildDate.Format(time.RFC3339))
	}
	return v
}

// Banner is the --version line of a program.
func (i *Info) Banner(program string) string {
	return fmt.Sprintf("%s %s %s %s", program, i.Full(), i.GoVersion, i.Platform)
}

// Fields returns the identity as structured log fields.
func (i *Info) Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":  i.Short(),
		"go":       i.GoVersion,
		"platform": i.Platform,
	}
}
