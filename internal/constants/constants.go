// Package constants provides centralized constant values used throughout svnbridge.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by svnbridge for state persistence.
const (
	// AppHome is the hidden directory name where svnbridge stores its data.
	// It is created in the user's home directory and, for project config,
	// in the project root.
	AppHome = ".svnbridge"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// ConfigFileName is the name of the global and project config files.
	ConfigFileName = "config.yaml"

	// StateFileName is the name of the file that persists the override root.
	StateFileName = "state.yaml"

	// CLILogFileName is the name of the global CLI log file.
	CLILogFileName = "svnbridge.log"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "SVNBRIDGE"

	// HomeEnvVar overrides the location of AppHome.
	HomeEnvVar = "SVNBRIDGE_HOME"
)

// External client settings.
const (
	// DefaultSVNBinary is the executable name of the Subversion client.
	DefaultSVNBinary = "svn"

	// DefaultDiffBinary is the executable name of the system diff utility.
	DefaultDiffBinary = "diff"

	// MetadataDirName is the working-copy metadata marker directory.
	MetadataDirName = ".svn"

	// DefaultLocale pins the client's language so keywords and dates parse predictably.
	DefaultLocale = "en_US.UTF-8"

	// NonInteractiveEditor is assigned to editor variables so the client never
	// waits on an interactive editor.
	NonInteractiveEditor = "true"

	// DefaultPasswordEnvVar names the environment variable holding the svn password.
	DefaultPasswordEnvVar = "SVNBRIDGE_SVN_PASSWORD"

	// DefaultMaxOutputBytes caps captured stdout/stderr per command (50 MiB).
	DefaultMaxOutputBytes = 50 * 1024 * 1024

	// DefaultStatusConcurrency bounds parallel status queries.
	DefaultStatusConcurrency = 4
)

// Timeout configurations.
const (
	// DefaultCommandTimeout is the per-command timeout for the external client.
	DefaultCommandTimeout = 30 * time.Second

	// StateLockTimeout is how long to wait for the state file lock.
	StateLockTimeout = 5 * time.Second
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the number of days to retain old log files.
	LogMaxAgeDays = 14

	// LogCompress enables gzip compression of rotated files.
	LogCompress = true
)

// File permissions.
const (
	// DirPerm is used for directories svnbridge creates.
	DirPerm = 0o750

	// FilePerm is used for files svnbridge writes.
	FilePerm = 0o600
)
