// Package svn provides Subversion client operations for svnbridge.
// This file implements the path-level operations built on the runner.
package svn

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/ctxutil"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/wcroot"
)

// PathResolver maps a path to the working-copy root to run commands in.
type PathResolver interface {
	Resolve(ctx context.Context, path string) (wcroot.TrackedPath, error)
}

// Client runs svn operations on individual paths. Every operation resolves
// the root first and then issues its commands sequentially.
type Client struct {
	runner   Runner
	resolver PathResolver
	retry    LockRetryConfig
	logger   zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLockRetry overrides the lock retry policy for mutating commands.
func WithLockRetry(cfg LockRetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client.
func NewClient(runner Runner, resolver PathResolver, opts ...ClientOption) *Client {
	c := &Client{
		runner:   runner,
		resolver: resolver,
		retry:    DefaultLockRetryConfig(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve exposes root resolution for callers that need the tracked path.
func (c *Client) Resolve(ctx context.Context, path string) (wcroot.TrackedPath, error) {
	return c.resolver.Resolve(ctx, path)
}

// Status returns the status of a single path.
func (c *Client) Status(ctx context.Context, path string) (FileStatus, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return StatusUnknown, err
	}

	tracked, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return StatusUnknown, err
	}

	out, err := c.runner.Run(ctx, tracked.Root, []string{"status", "--depth", "empty", pegSafe(tracked.RelativePath)}, RunOptions{Structured: true})
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to get status of %s: %w", tracked.Path, err)
	}
	return ParseStatus(out.Stdout), nil
}

// StatusEntries returns the status of every changed path under a directory.
// Entry paths are absolute.
func (c *Client) StatusEntries(ctx context.Context, path string) ([]StatusEntry, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tracked, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	out, err := c.runner.Run(ctx, tracked.Root, []string{"status", pegSafe(tracked.RelativePath)}, RunOptions{Structured: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get status of %s: %w", tracked.Path, err)
	}

	entries := ParseStatusEntries(out.Stdout)
	for i := range entries {
		if !filepath.IsAbs(entries[i].Path) {
			entries[i].Path = filepath.Join(tracked.Root, filepath.FromSlash(entries[i].Path))
		}
		if entries[i].Status == StatusUnknown {
			c.logger.Warn().Str("path", entries[i].Path).Msg("status could not be determined")
		}
	}
	return entries, nil
}

// StatusMany queries independent paths in parallel with at most concurrency
// commands in flight. Results keep the input order. A path whose status
// cannot be determined is reported as StatusUnknown; only cancellation
// fails the whole call.
func (c *Client) StatusMany(ctx context.Context, paths []string, concurrency int) ([]StatusEntry, error) {
	if concurrency <= 0 {
		concurrency = constants.DefaultStatusConcurrency
	}

	results := make([]StatusEntry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctxutil.Canceled(gctx); err != nil {
				return err
			}
			status, err := c.Status(gctx, p)
			if err != nil {
				if ctxErr := ctxutil.Canceled(gctx); ctxErr != nil {
					return ctxErr
				}
				c.logger.Debug().Err(err).Str("path", p).Msg("status unavailable")
			}
			results[i] = StatusEntry{Path: p, Status: status}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Info returns `svn info` for a path.
func (c *Client) Info(ctx context.Context, path string) (*Info, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tracked, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	out, err := c.runner.Run(ctx, tracked.Root, []string{"info", pegSafe(tracked.RelativePath)}, RunOptions{Structured: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get info for %s: %w", tracked.Path, err)
	}
	return ParseInfo(out.Stdout)
}

// NativeDiff returns svn's own diff against BASE, ignoring whitespace and
// line-ending differences. The text may be empty even when content differs.
func (c *Client) NativeDiff(ctx context.Context, path string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	tracked, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return "", err
	}

	args := []string{"diff", "-x", "-w --ignore-eol-style", pegSafe(tracked.RelativePath)}
	out, err := c.runner.Run(ctx, tracked.Root, args, RunOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", tracked.Path, err)
	}
	return out.Stdout, nil
}

// Cat returns the raw bytes of a path at revision rev (for example "BASE").
func (c *Client) Cat(ctx context.Context, path, rev string) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if rev == "" {
		rev = "BASE"
	}

	tracked, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	out, err := c.runner.Run(ctx, tracked.Root, []string{"cat", "-r", rev, pegSafe(tracked.RelativePath)}, RunOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", tracked.Path, rev, err)
	}
	return []byte(out.Stdout), nil
}

// Add schedules paths for addition, creating intermediate directories.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	return c.mutate(ctx, "add", []string{"--parents"}, paths)
}

// Revert discards local modifications of paths.
func (c *Client) Revert(ctx context.Context, paths ...string) error {
	return c.mutate(ctx, "revert", nil, paths)
}

// mutate runs a mutating subcommand once per root with lock retry.
func (c *Client) mutate(ctx context.Context, subcommand string, flags, paths []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%s needs at least one path: %w", subcommand, bridgeerrors.ErrEmptyValue)
	}

	groups, err := c.groupByRoot(ctx, paths)
	if err != nil {
		return err
	}

	for _, g := range groups {
		args := append([]string{subcommand}, flags...)
		args = append(args, g.targets...)
		err := RunWithLockRetryVoid(ctx, c.retry, c.logger, func(ctx context.Context) error {
			_, runErr := c.runner.Run(ctx, g.root, args, RunOptions{})
			return runErr
		})
		if err != nil {
			return fmt.Errorf("failed to %s in %s: %w", subcommand, g.root, err)
		}
	}
	return nil
}

var (
	committedRevisionPattern = regexp.MustCompile(`Committed revision (\d+)\.`)
	updatedRevisionPattern   = regexp.MustCompile(`(?:Updated to|At) revision (\d+)\.`)
)

// Commit commits paths with message. All paths must resolve to the same root.
// A commit with nothing to send returns Revision 0.
func (c *Client) Commit(ctx context.Context, message string, paths ...string) (*CommitResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("commit message cannot be empty: %w", bridgeerrors.ErrEmptyValue)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("commit needs at least one path: %w", bridgeerrors.ErrEmptyValue)
	}

	groups, err := c.groupByRoot(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(groups) > 1 {
		return nil, fmt.Errorf("paths span %d working copies: %w", len(groups), bridgeerrors.ErrPathOutsideRoot)
	}

	g := groups[0]
	args := append([]string{"commit", "-m", message}, g.targets...)
	out, err := RunWithLockRetry(ctx, c.retry, c.logger, func(ctx context.Context) (*Outcome, error) {
		return c.runner.Run(ctx, g.root, args, RunOptions{})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &CommitResult{
		Revision: parseRevision(committedRevisionPattern, out.Stdout),
		Output:   out.Stdout,
	}, nil
}

// Update brings path up to date with HEAD.
func (c *Client) Update(ctx context.Context, path string) (*UpdateResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tracked, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	args := []string{"update", pegSafe(tracked.RelativePath)}
	out, err := RunWithLockRetry(ctx, c.retry, c.logger, func(ctx context.Context) (*Outcome, error) {
		return c.runner.Run(ctx, tracked.Root, args, RunOptions{})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", tracked.Path, err)
	}

	return &UpdateResult{
		Revision: parseRevision(updatedRevisionPattern, out.Stdout),
		Output:   out.Stdout,
	}, nil
}

// Log returns the raw text log of path, newest first. A limit of zero or
// less returns the full history.
func (c *Client) Log(ctx context.Context, path string, limit int) (string, error) {
	out, err := c.log(ctx, path, limit, RunOptions{})
	if err != nil {
		return "", err
	}
	return out.Stdout, nil
}

// LogEntries returns the parsed log of path including changed paths.
func (c *Client) LogEntries(ctx context.Context, path string, limit int) ([]LogEntry, error) {
	out, err := c.log(ctx, path, limit, RunOptions{Structured: true}, "-v")
	if err != nil {
		return nil, err
	}
	return ParseLog(out.Stdout)
}

func (c *Client) log(ctx context.Context, path string, limit int, opts RunOptions, extra ...string) (*Outcome, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	tracked, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	args := []string{"log"}
	if limit > 0 {
		args = append(args, "-l", strconv.Itoa(limit))
	}
	args = append(args, extra...)
	args = append(args, pegSafe(tracked.RelativePath))

	out, err := c.runner.Run(ctx, tracked.Root, args, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get log of %s: %w", tracked.Path, err)
	}
	return out, nil
}

type rootGroup struct {
	root    string
	targets []string
}

// groupByRoot resolves paths and groups their targets by root, keeping the
// order in which roots first appear.
func (c *Client) groupByRoot(ctx context.Context, paths []string) ([]rootGroup, error) {
	var groups []rootGroup
	index := make(map[string]int)

	for _, p := range paths {
		tracked, err := c.resolver.Resolve(ctx, p)
		if err != nil {
			return nil, err
		}
		i, ok := index[tracked.Root]
		if !ok {
			i = len(groups)
			index[tracked.Root] = i
			groups = append(groups, rootGroup{root: tracked.Root})
		}
		groups[i].targets = append(groups[i].targets, pegSafe(tracked.RelativePath))
	}
	return groups, nil
}

func parseRevision(pattern *regexp.Regexp, output string) int64 {
	m := pattern.FindStringSubmatch(output)
	if m == nil {
		return 0
	}
	rev, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return rev
}

// pegSafe protects targets containing '@' from being read as peg revisions.
func pegSafe(target string) string {
	if strings.Contains(target, "@") {
		return target + "@"
	}
	return target
}

// InfoProber probes paths with `svn info`. It satisfies wcroot.Prober.
type InfoProber struct {
	runner Runner
}

// NewInfoProber creates an InfoProber.
func NewInfoProber(runner Runner) *InfoProber {
	return &InfoProber{runner: runner}
}

// Probe returns nil when svn recognizes target inside dir.
func (p *InfoProber) Probe(ctx context.Context, dir, target string) error {
	out, err := p.runner.Run(ctx, dir, []string{"info", pegSafe(target)}, RunOptions{Structured: true})
	if err != nil {
		return err
	}
	// svn 1.7+ reports unversioned targets as a warning with exit 0 and no entry
	if _, err := ParseInfo(out.Stdout); err != nil {
		if msg := strings.TrimSpace(out.Stderr); msg != "" {
			return fmt.Errorf("%s: %w", msg, bridgeerrors.ErrNotInWorkingCopy)
		}
		return err
	}
	return nil
}

var _ wcroot.Prober = (*InfoProber)(nil)
