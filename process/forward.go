package process

import (
	"io"
	"os"

	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/logger"
)

// forwarder copies the pipeline input into stage 0's stdin pipe.
type forwarder struct {
	done chan struct{}
}

// forwardInput starts copying in into w and closes w when the source is
// exhausted or the copy fails. Failures, typically EPIPE after stage 0 exits
// without reading everything, end the copy and are logged at debug.
func forwardInput(w *os.File, in *input, log *logger.Logger) *forwarder {
	f := &forwarder{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer w.Close()

		var err error
		if in.reader != nil {
			_, err = io.Copy(w, in.reader)
		} else {
			_, err = w.Write(in.data)
		}
		if err != nil {
			log.Debug("input forwarding stopped", logger.ErrorFields("forward input",
				errors.IOFailure("forwarding input", err)))
		}
	}()
	return f
}

// wait blocks until the copy has finished and the pipe is closed.
func (f *forwarder) wait() {
	if f != nil {
		<-f.done
	}
}

// drain copies r into w until EOF. If w fails, the rest of r is discarded
// so the last stage never blocks on a full pipe.
func drain(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return errors.IOFailure("draining output", err)
	}
	return nil
}
