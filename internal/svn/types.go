// Package svn provides Subversion client operations for svnbridge.
// This file defines types shared by the runner and the parsers.
package svn

import "time"

// FileStatus is the canonical version-control status of a single path.
// It is produced fresh on every query and never cached.
type FileStatus int

// Canonical status values.
const (
	StatusUnknown FileStatus = iota
	StatusUnmodified
	StatusModified
	StatusAdded
	StatusDeleted
	StatusReplaced
	StatusConflicted
	StatusUntracked
	StatusMissing
	StatusIgnored
	StatusTypeChanged
)

// String returns the canonical lowercase name of the status.
func (s FileStatus) String() string {
	switch s {
	case StatusUnmodified:
		return "unmodified"
	case StatusModified:
		return "modified"
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusReplaced:
		return "replaced"
	case StatusConflicted:
		return "conflicted"
	case StatusUntracked:
		return "untracked"
	case StatusMissing:
		return "missing"
	case StatusIgnored:
		return "ignored"
	case StatusTypeChanged:
		return "typechanged"
	case StatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name so JSON output is readable.
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsChange reports whether the status represents local content that differs
// from the repository (Modified, Added, Deleted, Replaced).
func (s FileStatus) IsChange() bool {
	switch s {
	case StatusModified, StatusAdded, StatusDeleted, StatusReplaced:
		return true
	case StatusUnknown, StatusUnmodified, StatusConflicted, StatusUntracked,
		StatusMissing, StatusIgnored, StatusTypeChanged:
		return false
	default:
		return false
	}
}

// StatusEntry pairs a path with its status, as reported for a directory.
type StatusEntry struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`
}

// Outcome is the raw result of one external invocation.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Info describes a working-copy node as reported by `svn info`.
type Info struct {
	Path              string    `json:"path"`
	Kind              string    `json:"kind"`
	Revision          int64     `json:"revision"`
	URL               string    `json:"url"`
	RelativeURL       string    `json:"relative_url,omitempty"`
	RepositoryRoot    string    `json:"repository_root"`
	RepositoryUUID    string    `json:"repository_uuid,omitempty"`
	WorkingCopyRoot   string    `json:"working_copy_root,omitempty"`
	Schedule          string    `json:"schedule,omitempty"`
	LastChangedRev    int64     `json:"last_changed_revision"`
	LastChangedAuthor string    `json:"last_changed_author,omitempty"`
	LastChangedDate   time.Time `json:"last_changed_date"`
}

// LogEntry is one revision from `svn log`.
type LogEntry struct {
	Revision int64         `json:"revision"`
	Author   string        `json:"author"`
	Date     time.Time     `json:"date"`
	Message  string        `json:"message"`
	Paths    []ChangedPath `json:"paths,omitempty"`
}

// ChangedPath is a repository path touched by a revision.
type ChangedPath struct {
	Action string `json:"action"`
	Kind   string `json:"kind,omitempty"`
	Path   string `json:"path"`
}

// CommitResult is the outcome of a commit.
type CommitResult struct {
	// Revision is the new revision, or 0 when nothing was committed.
	Revision int64  `json:"revision"`
	Output   string `json:"output"`
}

// UpdateResult is the outcome of an update.
type UpdateResult struct {
	Revision int64  `json:"revision"`
	Output   string `json:"output"`
}
