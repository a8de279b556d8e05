// Package svn provides Subversion client operations for svnbridge.
// This file defines the classified tool error and sentinel re-exports.
package svn

import (
	"fmt"
	"strings"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

// Sentinel re-exports from internal/errors for convenience.
//
//nolint:gochecknoglobals // Re-exported sentinels
var (
	ErrToolNotInstalled = bridgeerrors.ErrToolNotInstalled
	ErrProcess          = bridgeerrors.ErrProcess
	ErrToolError        = bridgeerrors.ErrToolError
	ErrCommandTimeout   = bridgeerrors.ErrCommandTimeout
)

// ToolError is returned when svn exits non-zero and writes to its error stream.
// Stderr is kept verbatim because it usually carries actionable detail
// (authentication, permissions, cleanup hints).
type ToolError struct {
	Subcommand string
	ExitCode   int
	Stderr     string
	Type       ErrorType
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("svn %s failed (exit %d): %s", e.Subcommand, e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Unwrap exposes ErrToolError plus a more specific sentinel when the
// classification has one, so errors.Is works for both.
func (e *ToolError) Unwrap() []error {
	errs := []error{bridgeerrors.ErrToolError}
	switch e.Type {
	case ErrorTypeLocked:
		errs = append(errs, bridgeerrors.ErrWorkingCopyLocked)
	case ErrorTypeNotWorkingCopy:
		errs = append(errs, bridgeerrors.ErrNotInWorkingCopy)
	case ErrorTypeUnknown, ErrorTypeAuth, ErrorTypeCertificate, ErrorTypeNetwork,
		ErrorTypeOutOfDate, ErrorTypeConflict, ErrorTypeNotFound:
	}
	return errs
}

// Message returns the tool's own message for display to the user.
func (e *ToolError) Message() string {
	return strings.TrimSpace(e.Stderr)
}

// newToolError builds a classified ToolError.
func newToolError(subcommand string, exitCode int, stderr string) *ToolError {
	return &ToolError{
		Subcommand: subcommand,
		ExitCode:   exitCode,
		Stderr:     stderr,
		Type:       ClassifyError(stderr),
	}
}
