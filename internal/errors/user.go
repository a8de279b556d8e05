package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal,
// and ordering matters: ErrCommandTimeout is wrapped together with ErrProcess.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// External client
	// ===================
	{
		err: ErrToolNotInstalled,
		info: ErrorInfo{
			Message: "The svn command-line client could not be found.",
			Action:  "Install Subversion and make sure 'svn' is on your PATH, or set svn.binary in the config.",
		},
	},
	{
		err: ErrCommandTimeout,
		info: ErrorInfo{
			Message: "The svn command did not finish in time.",
			Action:  "Check your network connection or increase svn.timeout in the config.",
		},
	},
	{
		err: ErrOutputTooLarge,
		info: ErrorInfo{
			Message: "The svn command produced more output than allowed.",
			Action:  "Increase svn.max_output_bytes in the config.",
		},
	},
	{
		err: ErrProcess,
		info: ErrorInfo{
			Message: "The svn command failed without an error message.",
			Action:  "Verify the svn installation and configuration (svnbridge config show).",
		},
	},
	{
		err: ErrWorkingCopyLocked,
		info: ErrorInfo{
			Message: "The working copy is locked.",
			Action:  "Wait for other svn operations to finish, or run 'svn cleanup' in the working copy.",
		},
	},

	// ===================
	// Working copy
	// ===================
	{
		err: ErrNotInWorkingCopy,
		info: ErrorInfo{
			Message: "This path is not inside an svn working copy.",
			Action:  "Set an override root with 'svnbridge root set <dir>' if the checkout lives higher up.",
		},
	},
	{
		err: ErrMissingMetadata,
		info: ErrorInfo{
			Message: "The directory does not contain svn metadata (.svn).",
			Action:  "Choose the top-level directory of an svn checkout.",
		},
	},
	{
		err: ErrPathOutsideRoot,
		info: ErrorInfo{
			Message: "The path lies outside the configured working copy root.",
		},
	},

	// ===================
	// Diff
	// ===================
	{
		err: ErrReconciliation,
		info: ErrorInfo{
			Message: "Could not compute a diff with any available strategy.",
			Action:  "Check that the repository is reachable and your credentials are valid.",
		},
	},

	// ===================
	// Configuration & state
	// ===================
	{
		err: ErrConfigInvalidSVN,
		info: ErrorInfo{
			Message: "The svn section of the configuration is invalid.",
			Action:  "Fix the reported value in .svnbridge/config.yaml.",
		},
	},
	{
		err: ErrConfigInvalidEncoding,
		info: ErrorInfo{
			Message: "The encoding section of the configuration is invalid.",
			Action:  "Use supported encoding names such as utf-8, gbk, big5, shift_jis, euc-kr.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Timed out waiting for the state file lock.",
			Action:  "Another svnbridge process may be running. Try again shortly.",
		},
	},
	{
		err: ErrStateCorrupted,
		info: ErrorInfo{
			Message: "The svnbridge state file could not be read.",
			Action:  "Clear it with 'svnbridge root clear'.",
		},
	},
	{
		err: ErrConfirmationRequired,
		info: ErrorInfo{
			Message: "This command discards local changes and needs confirmation.",
			Action:  "Re-run with --yes.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Canceled. Nothing was changed.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Invalid output format.",
			Action:  "Use --output text or --output json.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel errors.
//
//nolint:gochecknoglobals // Pre-built lookup derived from errorInfoEntries
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo finds the first matching entry for err.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for the error.
// Unknown errors fall back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
