//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package process

import "os"

// dupFile returns nil: the caller assigns the same *os.File to stdout and
// stderr, and os/exec hands the child one handle for both.
func dupFile(*os.File) (*os.File, error) {
	return nil, nil
}
