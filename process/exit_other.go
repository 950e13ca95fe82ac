//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package process

import "os"

// exitStatus fills the code of r from ps. Signal termination is not
// reported on these platforms.
func exitStatus(r *ExitResult, ps *os.ProcessState) {
	if ps == nil {
		r.Code = -1
		return
	}
	r.Code = ps.ExitCode()
}
