package optimizer

import (
	"errors"
	"fmt"
)

// Kind classifies optimizer and generation failures.
type Kind string

const (
	// KindUnreachable means the optimizer is not answering health checks.
	KindUnreachable Kind = "UNREACHABLE"

	// KindRejected means the optimizer refused the job at submit time.
	KindRejected Kind = "REJECTED"

	// KindTimeout means the time budget was exhausted while polling.
	KindTimeout Kind = "TIMEOUT"

	// KindImportFailed means a result could not be reconciled into storage.
	KindImportFailed Kind = "IMPORT_FAILED"

	// KindProcessLaunchFailed means the optimizer executable was missing,
	// unresolvable, or exited before becoming healthy.
	KindProcessLaunchFailed Kind = "PROCESS_LAUNCH_FAILED"

	// KindInternal covers everything else (transport faults, bad responses).
	KindInternal Kind = "INTERNAL"
)

// Error wraps an optimizer API failure with operation context. JobID and
// Elapsed carry enough context for the caller to retry the generation.
type Error struct {
	Kind    Kind
	Op      string
	JobID   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.JobID != "" {
		return fmt.Sprintf("%s: job %s: %s", e.Op, e.JobID, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given kind, operation, and message.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// WrapError wraps an error with kind and operation context.
func WrapError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err, Message: err.Error()}
}

// KindOf returns the kind of err, or KindInternal if err is not an
// optimizer Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsUnreachable returns true if the error indicates the optimizer is not
// answering health checks.
func IsUnreachable(err error) bool { return KindOf(err) == KindUnreachable }

// IsRejected returns true if the optimizer refused the job at submit time.
func IsRejected(err error) bool { return KindOf(err) == KindRejected }

// IsTimeout returns true if a poll loop exhausted its time budget.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsImportFailed returns true if a result could not be imported.
func IsImportFailed(err error) bool { return KindOf(err) == KindImportFailed }

// HTTPError represents an HTTP-level error (non-2xx response).
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsRejection returns true if the status code means the optimizer refused
// the request rather than failing internally.
func (e *HTTPError) IsRejection() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
