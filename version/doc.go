// Package version reports the build identity of the pipex binary.
//
// Version, commit, branch and build time are stamped at link time; commit
// and build time fall back to the VCS settings the Go toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/pipekit/version.Version=1.0.0" ./cmd/pipex
package version
