// Package process builds and runs multi-stage subprocess pipelines, the
// programmatic counterpart of a shell's "|" operator.
//
// A Pipeline is an ordered list of Commands. Each edge between two stages
// carries a PipeMode selecting which output stream of the left stage feeds
// the right stage's stdin: Stdout, Stderr, or Both merged into one pipe.
//
//	out, err := process.New("echo", "hello world").
//	    Pipe(process.New("tr", "[:lower:]", "[:upper:]")).
//	    OutputString()
//	// out == "HELLO WORLD\n"
//
// Every stage is a real OS process connected by os.Pipe. Input for the first
// stage is written by a background goroutine, so inputs far larger than the
// pipe buffer cannot deadlock the spawn loop. Streams that are not wired to a
// pipe are inherited from the host process.
//
// A Pipeline is consumed by the first Spawn, Run, Output or StreamTo call.
// Spawn returns a Handle; Handle.Wait collects a Status holding one
// ExitResult per stage in spawn order. When more than one stage fails,
// Status.Err reports the earliest-spawned one; a spawn failure always takes
// precedence since it is why the run is incomplete.
//
// Errors are *errors.AppError values from github.com/kbukum/pipekit/errors
// with codes SPAWN_FAILED, NON_ZERO_EXIT, TERMINATED, IO_FAILURE and
// CONSUMED.
//
// Spawns, exits and failures are logged at debug and warn level through the
// logger passed to WithLogger, else the one registered in the logger package
// as LoggerName. With neither, the package logs nothing.
//
// The engine does not cancel or time out processes. Callers needing a bound
// race Handle.Wait against a timer and signal the processes listed by
// Handle.Pids themselves.
package process
