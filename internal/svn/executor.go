// Package svn provides Subversion client operations for svnbridge.
// This file implements process spawning behind an interface so tests can fake it.
package svn

import (
	"context"
	"errors"
	"os/exec"
	"sync"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

// ExecRequest describes one process invocation.
type ExecRequest struct {
	// Binary is the executable name or path.
	Binary string
	// Args are passed to the process as-is; no shell is involved.
	Args []string
	// Dir is the working directory.
	Dir string
	// Env is the full environment. A nil Env inherits the current process environment.
	Env []string
	// MaxOutputBytes caps each of stdout and stderr. Zero means unlimited.
	MaxOutputBytes int64
}

// ExecResult holds the captured output of a process that ran to completion.
type ExecResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Executor spawns processes.
// Execute returns a nil error whenever the process ran, including non-zero exits;
// the error is reserved for processes that could not be started or whose output
// exceeded the ceiling.
type Executor interface {
	Execute(ctx context.Context, req ExecRequest) (*ExecResult, error)
}

// ExecExecutor implements Executor using os/exec.
type ExecExecutor struct{}

// Execute runs the process and captures its output.
func (ExecExecutor) Execute(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	cmd := exec.CommandContext(ctx, req.Binary, req.Args...) //#nosec G204 -- args are passed without a shell
	cmd.Dir = req.Dir
	cmd.Env = req.Env

	stdout := &cappedBuffer{limit: req.MaxOutputBytes}
	stderr := &cappedBuffer{limit: req.MaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if stdout.overflowed() || stderr.overflowed() {
		return nil, bridgeerrors.ErrOutputTooLarge
	}

	result := &ExecResult{Stdout: stdout.bytes(), Stderr: stderr.bytes()}
	if err == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return nil, err
}

// cappedBuffer keeps at most limit bytes and silently drops the rest, so the
// child process is never blocked or killed by a short write.
type cappedBuffer struct {
	mu       sync.Mutex
	buf      []byte
	limit    int64
	overflow bool
}

// Write implements io.Writer.
func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limit > 0 {
		remaining := b.limit - int64(len(b.buf))
		if int64(len(p)) > remaining {
			if remaining > 0 {
				b.buf = append(b.buf, p[:remaining]...)
			}
			b.overflow = true
			return len(p), nil
		}
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *cappedBuffer) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf
}

func (b *cappedBuffer) overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}

// Compile-time interface check.
var _ Executor = ExecExecutor{}
