// Package svn provides Subversion client operations for svnbridge.
// This file classifies svn error-stream text into actionable categories.
package svn

import "strings"

// ErrorType represents the classification of an svn error.
type ErrorType int

const (
	// ErrorTypeUnknown indicates the error could not be classified.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuth indicates an authentication or authorization error.
	ErrorTypeAuth
	// ErrorTypeCertificate indicates a server certificate could not be verified.
	ErrorTypeCertificate
	// ErrorTypeNetwork indicates the repository could not be reached.
	ErrorTypeNetwork
	// ErrorTypeNotWorkingCopy indicates the target is not under version control.
	ErrorTypeNotWorkingCopy
	// ErrorTypeLocked indicates the working copy is locked.
	ErrorTypeLocked
	// ErrorTypeOutOfDate indicates the working copy must be updated first.
	ErrorTypeOutOfDate
	// ErrorTypeConflict indicates unresolved conflicts block the operation.
	ErrorTypeConflict
	// ErrorTypeNotFound indicates a path or revision does not exist.
	ErrorTypeNotFound
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeUnknown:
		return "unknown"
	case ErrorTypeAuth:
		return "authentication"
	case ErrorTypeCertificate:
		return "certificate"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeNotWorkingCopy:
		return "not_working_copy"
	case ErrorTypeLocked:
		return "locked"
	case ErrorTypeOutOfDate:
		return "out_of_date"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// PatternMatcher checks if a string contains any of a list of patterns.
// It performs case-insensitive matching on the lowercased input.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher creates a new PatternMatcher with the given patterns.
// All patterns should be lowercase for consistent matching.
func NewPatternMatcher(patterns ...string) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// Matches returns true if the input string contains any of the patterns.
func (m *PatternMatcher) Matches(s string) bool {
	return m.MatchesLower(strings.ToLower(s))
}

// MatchesLower checks if an already-lowercased string matches any pattern.
func (m *PatternMatcher) MatchesLower(lower string) bool {
	for _, pattern := range m.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// Error pattern matchers. svn prefixes messages with stable codes (E170001,
// W155010, ...), which are matched alongside the English text because the
// locale is pinned.
//
//nolint:gochecknoglobals // Package-level immutable pattern matchers
var (
	lockedPatterns = NewPatternMatcher(
		"e155004",
		"e155037",
		"working copy locked",
		"is already locked",
		"run 'svn cleanup'",
	)

	authPatterns = NewPatternMatcher(
		"e170001",
		"e215004",
		"e175013",
		"authorization failed",
		"authentication failed",
		"no more credentials",
		"access forbidden",
		"403 forbidden",
	)

	certificatePatterns = NewPatternMatcher(
		"e230001",
		"server certificate verification failed",
		"certificate issued for a different hostname",
	)

	networkPatterns = NewPatternMatcher(
		"e170013",
		"e670002",
		"e670008",
		"e175002",
		"e000110",
		"e000111",
		"unable to connect",
		"could not resolve",
		"connection refused",
		"connection timed out",
		"network is unreachable",
		"no route to host",
	)

	notWorkingCopyPatterns = NewPatternMatcher(
		"e155007",
		"is not a working copy",
		"w155007",
	)

	outOfDatePatterns = NewPatternMatcher(
		"e155011",
		"e160028",
		"e170004",
		"out of date",
		"out-of-date",
	)

	conflictPatterns = NewPatternMatcher(
		"e155015",
		"remains in conflict",
		"tree conflict",
	)

	notFoundPatterns = NewPatternMatcher(
		"e155010",
		"w155010",
		"e160013",
		"e195012",
		"e200009",
		"e200005",
		"not found",
		"does not exist",
		"no such",
		"is not under version control",
	)
)

// ErrorClassifier groups the pattern matchers so custom sets can be tested.
type ErrorClassifier struct {
	locked         *PatternMatcher
	auth           *PatternMatcher
	certificate    *PatternMatcher
	network        *PatternMatcher
	notWorkingCopy *PatternMatcher
	outOfDate      *PatternMatcher
	conflict       *PatternMatcher
	notFound       *PatternMatcher
}

// defaultClassifier is the package-level classifier using standard patterns.
//
//nolint:gochecknoglobals // Singleton classifier for package use
var defaultClassifier = &ErrorClassifier{
	locked:         lockedPatterns,
	auth:           authPatterns,
	certificate:    certificatePatterns,
	network:        networkPatterns,
	notWorkingCopy: notWorkingCopyPatterns,
	outOfDate:      outOfDatePatterns,
	conflict:       conflictPatterns,
	notFound:       notFoundPatterns,
}

// ClassifyError determines the error type from svn error-stream text.
//
// Classification priority (first match wins):
//  1. Locked (retryable, checked first so cleanup hints are not misread)
//  2. Authentication
//  3. Certificate
//  4. Network
//  5. Not a working copy
//  6. Out of date
//  7. Conflict
//  8. Not found
func ClassifyError(errStr string) ErrorType {
	return defaultClassifier.Classify(errStr)
}

// Classify determines the error type from an error string.
func (c *ErrorClassifier) Classify(errStr string) ErrorType {
	lower := strings.ToLower(errStr)
	switch {
	case c.locked.MatchesLower(lower):
		return ErrorTypeLocked
	case c.auth.MatchesLower(lower):
		return ErrorTypeAuth
	case c.certificate.MatchesLower(lower):
		return ErrorTypeCertificate
	case c.network.MatchesLower(lower):
		return ErrorTypeNetwork
	case c.notWorkingCopy.MatchesLower(lower):
		return ErrorTypeNotWorkingCopy
	case c.outOfDate.MatchesLower(lower):
		return ErrorTypeOutOfDate
	case c.conflict.MatchesLower(lower):
		return ErrorTypeConflict
	case c.notFound.MatchesLower(lower):
		return ErrorTypeNotFound
	default:
		return ErrorTypeUnknown
	}
}

// MatchesLockError checks if the error string indicates a locked working copy.
func MatchesLockError(errStr string) bool {
	return lockedPatterns.Matches(errStr)
}

// MatchesAuthError checks if the error string indicates an authentication error.
func MatchesAuthError(errStr string) bool {
	return authPatterns.Matches(errStr)
}

// MatchesNetworkError checks if the error string indicates a network error.
func MatchesNetworkError(errStr string) bool {
	return networkPatterns.Matches(errStr)
}
