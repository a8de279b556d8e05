// Package errors provides centralized error handling for svnbridge.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrToolNotInstalled indicates the external version-control client
	// could not be found or started.
	ErrToolNotInstalled = errors.New("svn client not installed")

	// ErrNotInWorkingCopy indicates that root resolution failed for a path:
	// neither its own directory nor the override root is a working copy.
	ErrNotInWorkingCopy = errors.New("not in a working copy")

	// ErrProcess indicates the external client exited non-zero without
	// writing anything to its error stream, or could not be run to completion.
	ErrProcess = errors.New("svn process failed")

	// ErrToolError indicates the external client exited non-zero and reported
	// a message on its error stream. The message is carried verbatim.
	ErrToolError = errors.New("svn reported an error")

	// ErrCommandTimeout indicates that an external command exceeded its
	// configured timeout. It is always wrapped together with ErrProcess.
	ErrCommandTimeout = errors.New("svn command timed out")

	// ErrOutputTooLarge indicates that command output exceeded the
	// configured buffer ceiling.
	ErrOutputTooLarge = errors.New("svn output exceeded buffer limit")

	// ErrEncodingFailure indicates no candidate encoding decoded a buffer
	// cleanly. Detection degrades to lossy UTF-8, so this is only reported.
	ErrEncodingFailure = errors.New("no encoding decoded content cleanly")

	// ErrUnknownEncoding indicates an encoding name that is not supported.
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrReconciliation indicates that every diff strategy was exhausted.
	ErrReconciliation = errors.New("diff reconciliation failed")

	// ErrViewerFailed indicates the side-by-side view could not be shown.
	ErrViewerFailed = errors.New("side-by-side view failed")

	// ErrMissingMetadata indicates a directory does not contain the
	// version-control metadata marker.
	ErrMissingMetadata = errors.New("directory has no working copy metadata")

	// ErrPathOutsideRoot indicates a path escapes the working-copy root.
	ErrPathOutsideRoot = errors.New("path is outside the working copy root")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidSVN indicates an invalid SVN configuration value.
	ErrConfigInvalidSVN = errors.New("invalid SVN configuration")

	// ErrConfigInvalidEncoding indicates an invalid Encoding configuration value.
	ErrConfigInvalidEncoding = errors.New("invalid Encoding configuration")

	// ErrConfirmationRequired indicates a destructive command ran without a
	// terminal to confirm on and without --yes.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrOperationCanceled indicates the user declined a confirmation prompt.
	ErrOperationCanceled = errors.New("operation canceled")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrStateCorrupted indicates the persisted state file could not be parsed.
	ErrStateCorrupted = errors.New("state file corrupted")

	// ErrWorkingCopyLocked indicates the working copy is locked by another
	// client process or by an interrupted operation.
	ErrWorkingCopyLocked = errors.New("working copy locked")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
// Exit code 2 signals invalid user input rather than an operational failure.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
