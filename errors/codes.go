package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Process errors
const (
	// ErrCodeSpawnFailed indicates the OS could not create a stage's process.
	ErrCodeSpawnFailed ErrorCode = "SPAWN_FAILED"
	// ErrCodeNonZeroExit indicates a stage completed with a non-zero exit code.
	ErrCodeNonZeroExit ErrorCode = "NON_ZERO_EXIT"
	// ErrCodeTerminated indicates a stage was ended by a signal.
	ErrCodeTerminated ErrorCode = "TERMINATED"
	// ErrCodeIOFailure indicates a pipe copy or read failed.
	ErrCodeIOFailure ErrorCode = "IO_FAILURE"
)

// Usage errors
const (
	// ErrCodeConsumed indicates a pipeline or handle was used twice.
	ErrCodeConsumed ErrorCode = "CONSUMED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates a named resource does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// ErrCodeInternal indicates an unexpected failure.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var stageCodes = map[ErrorCode]bool{
	ErrCodeSpawnFailed: true,
	ErrCodeNonZeroExit: true,
	ErrCodeTerminated:  true,
}

// IsStageCode reports whether the code describes the outcome of a single stage.
func IsStageCode(code ErrorCode) bool {
	return stageCodes[code]
}
