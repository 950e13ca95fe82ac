//go:build linux || darwin || freebsd || netbsd || openbsd

package process

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// exitStatus fills the code or signal of r from ps.
func exitStatus(r *ExitResult, ps *os.ProcessState) {
	if ps == nil {
		r.Code = -1
		return
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		r.Code = -1
		r.Signaled = true
		r.Signal = unix.SignalName(ws.Signal())
		if r.Signal == "" {
			r.Signal = ws.Signal().String()
		}
		return
	}
	r.Code = ps.ExitCode()
}
