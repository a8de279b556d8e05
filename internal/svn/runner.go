// Package svn provides Subversion client operations for svnbridge.
// This file implements the command runner that wraps the svn CLI.
package svn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/ctxutil"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/logging"
)

// RunOptions tunes a single invocation.
type RunOptions struct {
	// Structured appends --xml so the output can be parsed reliably.
	Structured bool
}

// Runner runs one svn subcommand in a working directory.
// Implementations never retry; fallback policy belongs to callers.
type Runner interface {
	Run(ctx context.Context, dir string, args []string, opts RunOptions) (*Outcome, error)
}

// Credentials are passed through to svn's authentication arguments.
type Credentials struct {
	Username string
	Password string
}

// RunnerOptions configures a CLIRunner.
type RunnerOptions struct {
	Binary         string
	Locale         string
	Timeout        time.Duration
	MaxOutputBytes int64
	Credentials    Credentials
	Executor       Executor
	Logger         zerolog.Logger
}

// CLIRunner implements Runner using the svn command-line client.
type CLIRunner struct {
	binary         string
	locale         string
	timeout        time.Duration
	maxOutputBytes int64
	creds          Credentials
	exec           Executor
	logger         zerolog.Logger
}

// NewCLIRunner creates a CLIRunner, filling unset options with defaults.
func NewCLIRunner(opts RunnerOptions) *CLIRunner {
	r := &CLIRunner{
		binary:         opts.Binary,
		locale:         opts.Locale,
		timeout:        opts.Timeout,
		maxOutputBytes: opts.MaxOutputBytes,
		creds:          opts.Credentials,
		exec:           opts.Executor,
		logger:         opts.Logger.With().Str("component", "svn-runner").Logger(),
	}
	if r.binary == "" {
		r.binary = constants.DefaultSVNBinary
	}
	if r.locale == "" {
		r.locale = constants.DefaultLocale
	}
	if r.timeout <= 0 {
		r.timeout = constants.DefaultCommandTimeout
	}
	if r.maxOutputBytes <= 0 {
		r.maxOutputBytes = constants.DefaultMaxOutputBytes
	}
	if r.exec == nil {
		r.exec = ExecExecutor{}
	}
	return r
}

// Run executes `svn <args...>` in dir and classifies failures:
//   - binary missing: ErrToolNotInstalled
//   - non-zero exit with stderr: *ToolError (wraps ErrToolError)
//   - non-zero exit without stderr, timeout, oversized output: ErrProcess
//
// The returned Outcome is non-nil whenever the process ran, even on failure.
func (r *CLIRunner) Run(ctx context.Context, dir string, args []string, opts RunOptions) (*Outcome, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("svn subcommand cannot be empty: %w", bridgeerrors.ErrEmptyValue)
	}

	subcommand := args[0]
	fullArgs := r.buildArgs(args, opts)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	res, err := r.exec.Execute(runCtx, ExecRequest{
		Binary:         r.binary,
		Args:           fullArgs,
		Dir:            dir,
		Env:            r.buildEnv(os.Environ()),
		MaxOutputBytes: r.maxOutputBytes,
	})

	r.logger.Debug().
		Str("dir", dir).
		Strs("args", logging.SafeArgs(fullArgs)).
		Dur("duration", time.Since(started)).
		Err(err).
		Msg("svn command finished")

	if err != nil {
		return nil, r.classifyExecError(ctx, runCtx, subcommand, err)
	}

	outcome := &Outcome{
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
		ExitCode: res.ExitCode,
	}

	if outcome.ExitCode != 0 {
		if strings.TrimSpace(outcome.Stderr) != "" {
			return outcome, newToolError(subcommand, outcome.ExitCode, outcome.Stderr)
		}
		return outcome, fmt.Errorf("svn %s exited with code %d: %w", subcommand, outcome.ExitCode, bridgeerrors.ErrProcess)
	}

	return outcome, nil
}

// classifyExecError maps a start/IO failure onto the error taxonomy.
func (r *CLIRunner) classifyExecError(parent, runCtx context.Context, subcommand string, err error) error {
	// Caller cancellation is not a process error
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("svn %s timed out after %s: %w: %w", subcommand, r.timeout, bridgeerrors.ErrProcess, bridgeerrors.ErrCommandTimeout)
	}
	if errors.Is(err, bridgeerrors.ErrOutputTooLarge) {
		return fmt.Errorf("svn %s output exceeded %d bytes: %w: %w", subcommand, r.maxOutputBytes, bridgeerrors.ErrProcess, bridgeerrors.ErrOutputTooLarge)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("cannot run %q: %w: %w", r.binary, bridgeerrors.ErrToolNotInstalled, err)
	}
	return fmt.Errorf("svn %s could not run: %w: %w", subcommand, bridgeerrors.ErrProcess, err)
}

// buildArgs appends output, force, interactivity and credential flags.
func (r *CLIRunner) buildArgs(args []string, opts RunOptions) []string {
	out := make([]string, 0, len(args)+8)
	out = append(out, args...)
	if opts.Structured {
		out = append(out, "--xml")
	}
	if args[0] == "diff" {
		// Binary or type-mismatched files would otherwise abort the whole diff
		out = append(out, "--force")
	}
	out = append(out, "--non-interactive")
	if r.creds.Username != "" {
		out = append(out, "--username", r.creds.Username)
		if r.creds.Password != "" {
			out = append(out, "--password", r.creds.Password)
		}
		out = append(out, "--no-auth-cache")
	}
	return out
}

// pinnedEnvKeys are replaced in the child environment.
//
//nolint:gochecknoglobals // Immutable lookup table
var pinnedEnvKeys = map[string]struct{}{
	"LANG":        {},
	"LANGUAGE":    {},
	"LC_ALL":      {},
	"LC_MESSAGES": {},
	"LC_CTYPE":    {},
	"SVN_EDITOR":  {},
	"EDITOR":      {},
	"VISUAL":      {},
}

// buildEnv returns base with locale and editor variables pinned.
// LANGUAGE is dropped because gettext lets it override LC_ALL.
func (r *CLIRunner) buildEnv(base []string) []string {
	env := make([]string, 0, len(base)+7)
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, pinned := pinnedEnvKeys[key]; pinned {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"LANG="+r.locale,
		"LC_ALL="+r.locale,
		"LC_MESSAGES="+r.locale,
		"LC_CTYPE="+r.locale,
		"SVN_EDITOR="+constants.NonInteractiveEditor,
		"EDITOR="+constants.NonInteractiveEditor,
		"VISUAL="+constants.NonInteractiveEditor,
	)
}

// Compile-time interface check.
var _ Runner = (*CLIRunner)(nil)
