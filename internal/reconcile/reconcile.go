// Package reconcile produces a diff between a working file and its
// repository version, falling back through progressively more conservative
// strategies when the client's own diff is empty or fails:
//
//	native -> content-comparison -> system-diff -> summary-only
//
// Each strategy is a stage in an ordered list run by a small driver loop.
// The first stage that yields a result ends the request.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/ctxutil"
	"github.com/mrz1836/svnbridge/internal/encoding"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/svn"
)

// Provenance names the strategy that produced a Result.
type Provenance string

// Strategies, in cascade order.
const (
	ProvenanceNative            Provenance = "native"
	ProvenanceContentComparison Provenance = "content-comparison"
	ProvenanceSystemDiff        Provenance = "system-diff"
	ProvenanceSummary           Provenance = "summary-only"
)

// NoDifferencesMessage is the text of a result whose contents are equal.
const NoDifferencesMessage = "No differences found"

// Result is a diff together with the strategy that produced it.
// It is recomputed on every request.
type Result struct {
	Path       string     `json:"path"`
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
	// Identical is true only when content comparison found equal texts.
	Identical          bool         `json:"identical"`
	RepositoryEncoding encoding.Tag `json:"repository_encoding,omitempty"`
	WorkingEncoding    encoding.Tag `json:"working_encoding,omitempty"`
}

// Source is the version-control side the reconciler reads from.
type Source interface {
	Status(ctx context.Context, path string) (svn.FileStatus, error)
	NativeDiff(ctx context.Context, path string) (string, error)
	Cat(ctx context.Context, path, rev string) ([]byte, error)
}

// Options configures a Reconciler.
type Options struct {
	// DiffBinary is the system diff utility (default "diff").
	DiffBinary string
	// Executor runs DiffBinary. Defaults to svn.ExecExecutor.
	Executor svn.Executor
	// Detector decodes both content sources. Defaults to encoding.DefaultOptions.
	Detector *encoding.Detector
	// ShowEncodingInfo prefixes diffs with the detected encodings.
	ShowEncodingInfo bool
	// Viewer displays side-by-side comparisons. Defaults to a DiffViewer on stdout.
	Viewer Viewer
	// Timeout bounds each run of DiffBinary. Defaults to the svn command timeout.
	Timeout time.Duration
	// TempDir is the parent of per-request temporary directories.
	TempDir string
	Logger  zerolog.Logger
}

// Reconciler computes diffs for working-copy files.
type Reconciler struct {
	source     Source
	diffBinary string
	exec       svn.Executor
	detector   *encoding.Detector
	showInfo   bool
	viewer     Viewer
	timeout    time.Duration
	tempDir    string
	logger     zerolog.Logger
	stages     []stage
}

// New creates a Reconciler.
func New(source Source, opts Options) *Reconciler {
	r := &Reconciler{
		source:     source,
		diffBinary: opts.DiffBinary,
		exec:       opts.Executor,
		detector:   opts.Detector,
		showInfo:   opts.ShowEncodingInfo,
		viewer:     opts.Viewer,
		timeout:    opts.Timeout,
		tempDir:    opts.TempDir,
		logger:     opts.Logger.With().Str("component", "reconcile").Logger(),
	}
	if r.diffBinary == "" {
		r.diffBinary = constants.DefaultDiffBinary
	}
	if r.timeout <= 0 {
		r.timeout = constants.DefaultCommandTimeout
	}
	if r.exec == nil {
		r.exec = svn.ExecExecutor{}
	}
	if r.detector == nil {
		r.detector = encoding.NewDetector(encoding.DefaultOptions(), opts.Logger)
	}
	if r.viewer == nil {
		r.viewer = &DiffViewer{Binary: r.diffBinary, Executor: r.exec, Timeout: r.timeout, Out: os.Stdout}
	}
	r.stages = r.defaultStages()
	return r
}

// request carries state between stages of one GetDiff call.
type request struct {
	id   string
	path string
	name string

	repoRaw []byte
	workRaw []byte
	repo    encoding.Decoded
	work    encoding.Decoded
}

// GetDiff returns the difference between path's working content and its
// BASE revision. It fails only when every strategy is exhausted; the error
// wraps ErrReconciliation and lists each stage's failure.
func (r *Reconciler) GetDiff(ctx context.Context, path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	req := &request{
		id:   uuid.NewString(),
		path: abs,
		name: filepath.Base(abs),
	}
	logger := r.logger.With().Str("request_id", req.id).Str("path", abs).Logger()

	var stageErrs []error
	for _, s := range r.stages {
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}

		res, err := s.run(ctx, req)
		if err != nil {
			if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Debug().Str("stage", s.name).Err(err).Msg("diff stage failed")
			stageErrs = append(stageErrs, fmt.Errorf("%s: %w", s.name, err))
			if s.fatal {
				break
			}
			continue
		}
		if res != nil {
			res.Path = abs
			logger.Debug().Str("provenance", string(res.Provenance)).Msg("diff produced")
			return res, nil
		}
	}

	return nil, reconciliationFailure(abs, stageErrs)
}

// stageErrors joins every stage failure into one message so the root cause
// is never lost.
type stageErrors []error

func (e stageErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e stageErrors) Unwrap() []error {
	return e
}

func reconciliationFailure(path string, errs []error) error {
	if len(errs) == 0 {
		return fmt.Errorf("no diff strategy produced a result for %s: %w", path, bridgeerrors.ErrReconciliation)
	}
	return fmt.Errorf("%w for %s: %w", bridgeerrors.ErrReconciliation, path, stageErrors(errs))
}

// HasChanges reports whether path differs from its repository version.
// The status verdict is trusted first; when status is unavailable or
// unknown, the contents are compared. Any remaining failure reports true.
func (r *Reconciler) HasChanges(ctx context.Context, path string) bool {
	status, err := r.source.Status(ctx, path)
	if err == nil {
		switch status {
		case svn.StatusModified, svn.StatusAdded, svn.StatusDeleted, svn.StatusReplaced,
			svn.StatusConflicted, svn.StatusMissing, svn.StatusTypeChanged, svn.StatusUntracked:
			return true
		case svn.StatusUnmodified, svn.StatusIgnored:
			return false
		case svn.StatusUnknown:
		}
	}

	if ctxutil.Canceled(ctx) != nil {
		return true
	}

	req := &request{path: path, name: filepath.Base(path)}
	if err := r.loadContents(ctx, req); err != nil {
		r.logger.Debug().Err(err).Str("path", path).Msg("content comparison failed, assuming changed")
		return true
	}
	return !req.sameContent()
}
