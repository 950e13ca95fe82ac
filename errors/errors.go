package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Stage Error Constructors ---

// SpawnFailure creates a new AppError for a stage whose process could not be created.
func SpawnFailure(stage int, program string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSpawnFailed, Message: fmt.Sprintf("stage %d: failed to spawn %q", stage, program),
		Details: map[string]any{"stage": stage, "program": program}, Cause: cause,
	}
}

// NonZeroExit creates a new AppError for a stage that exited with a non-zero code.
func NonZeroExit(stage int, program string, code int) *AppError {
	return &AppError{
		Code: ErrCodeNonZeroExit, Message: fmt.Sprintf("stage %d: %q exited with code %d", stage, program, code),
		Details: map[string]any{"stage": stage, "program": program, "exit_code": code},
	}
}

// Terminated creates a new AppError for a stage that was ended by a signal.
func Terminated(stage int, program, signal string) *AppError {
	return &AppError{
		Code: ErrCodeTerminated, Message: fmt.Sprintf("stage %d: %q terminated by signal %s", stage, program, signal),
		Details: map[string]any{"stage": stage, "program": program, "signal": signal},
	}
}

// IOFailure creates a new AppError for a failed pipe copy.
func IOFailure(context string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeIOFailure, Message: fmt.Sprintf("i/o failure while %s", context),
		Details: map[string]any{"context": context}, Cause: cause,
	}
}

// --- Usage Error Constructors ---

// Consumed creates a new AppError for a value that can only be used once.
func Consumed(what string) *AppError {
	return &AppError{
		Code: ErrCodeConsumed, Message: fmt.Sprintf("%s has already been consumed", what),
		Details: map[string]any{"resource": what},
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q not found", resource, id),
		Details: details,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Stage returns the stage index recorded on a stage error.
func Stage(err error) (int, bool) {
	appErr, ok := AsAppError(err)
	if !ok || !IsStageCode(appErr.Code) {
		return 0, false
	}
	stage, ok := appErr.Details["stage"].(int)
	return stage, ok
}

// ExitCode maps an error to a process exit code: 0 for nil, the stage's own
// code for NON_ZERO_EXIT, 127 for SPAWN_FAILED, 128 for TERMINATED and 1
// for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return 1
	}
	switch appErr.Code {
	case ErrCodeNonZeroExit:
		if code, ok := appErr.Details["exit_code"].(int); ok && code > 0 {
			return code
		}
		return 1
	case ErrCodeSpawnFailed:
		return 127
	case ErrCodeTerminated:
		return 128
	default:
		return 1
	}
}
