// Package errors provides the structured error type used across pipekit.
// Every failure carries a machine-readable code, a human-readable message,
// optional details (stage index, program, exit code) and an underlying cause.
package errors
