package process

import (
	"bytes"
	"io"
)

// Run spawns the pipeline with the last stage's output inherited and waits
// for it. On a spawn failure the partial Status is returned with the error.
func (p *Pipeline) Run() (*Status, error) {
	h, err := p.spawn(false)
	if err != nil {
		st, _ := StatusOf(err)
		return st, err
	}
	return h.Wait()
}

// Output runs the pipeline and returns the captured output of the last
// stage. On failure the bytes produced before it are still returned.
func (p *Pipeline) Output() ([]byte, error) {
	var buf bytes.Buffer
	_, err := p.StreamTo(&buf)
	return buf.Bytes(), err
}

// OutputString is Output converted to a string.
func (p *Pipeline) OutputString() (string, error) {
	out, err := p.Output()
	return string(out), err
}

// StreamTo runs the pipeline, copying the last stage's selected stream(s)
// into w as they are produced. The copy runs on the calling goroutine after
// every stage has been spawned.
//
// If w fails, the remaining output is discarded so the pipeline can finish;
// the IO_FAILURE is returned when no stage failed.
func (p *Pipeline) StreamTo(w io.Writer) (*Status, error) {
	h, err := p.spawn(true)
	if err != nil {
		st, _ := StatusOf(err)
		return st, err
	}
	h.drainErr = drain(h.stdout, w)
	return h.Wait()
}
