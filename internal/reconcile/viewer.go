package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/svnbridge/internal/constants"
	"github.com/mrz1836/svnbridge/internal/ctxutil"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/svn"
)

// Viewer presents two files side by side. It returns once the comparison
// has been shown.
type Viewer interface {
	View(ctx context.Context, left, right, title string) error
}

// sideBySideWidth is the output width passed to diff -y.
const sideBySideWidth = 160

// DiffViewer renders comparisons with `diff -y` and writes them to Out.
type DiffViewer struct {
	Binary   string
	Executor svn.Executor
	// Timeout bounds the diff run. Zero uses the svn command timeout.
	Timeout time.Duration
	Out     io.Writer
}

// View implements Viewer.
func (v *DiffViewer) View(ctx context.Context, left, right, title string) error {
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultCommandTimeout
	}
	res, err := runDiff(ctx, v.Executor, timeout, svn.ExecRequest{
		Binary:         v.Binary,
		Args:           []string{"-y", "-W", strconv.Itoa(sideBySideWidth), left, right},
		MaxOutputBytes: constants.DefaultMaxOutputBytes,
	})
	if err != nil {
		return err
	}
	if res.ExitCode > 1 {
		return fmt.Errorf("%s exited with code %d: %s: %w",
			v.Binary, res.ExitCode, strings.TrimSpace(string(res.Stderr)), bridgeerrors.ErrProcess)
	}

	if _, err := fmt.Fprintf(v.Out, "%s\n%s", title, res.Stdout); err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}
	return nil
}

// ShowSideBySide materializes the BASE revision of path in a temporary file
// and hands it with the working file to the viewer. It reports whether the
// comparison was shown.
func (r *Reconciler) ShowSideBySide(ctx context.Context, path string) bool {
	if err := r.showSideBySide(ctx, path); err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("side-by-side comparison unavailable")
		return false
	}
	return true
}

func (r *Reconciler) showSideBySide(ctx context.Context, path string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	req := &request{path: abs, name: filepath.Base(abs)}
	if err := r.loadContents(ctx, req); err != nil {
		return err
	}

	dir, err := os.MkdirTemp(r.tempDir, "svnbridge-view-")
	if err != nil {
		return fmt.Errorf("cannot create temporary directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			r.logger.Warn().Err(rmErr).Str("dir", dir).Msg("failed to remove temporary view files")
		}
	}()

	// Both sides are written decoded so regional encodings line up
	left, err := writeSide(dir, "repository", req.name, req.repo.Text)
	if err != nil {
		return err
	}
	right, err := writeSide(dir, "working", req.name, req.work.Text)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s (repository version) <-> %s (working copy)", req.name, req.name)
	return r.viewer.View(ctx, left, right, title)
}

func writeSide(dir, side, name, text string) (string, error) {
	sideDir := filepath.Join(dir, side)
	if err := os.Mkdir(sideDir, constants.DirPerm); err != nil {
		return "", fmt.Errorf("cannot create %s directory: %w", side, err)
	}
	path := filepath.Join(sideDir, name)
	if err := os.WriteFile(path, []byte(text), constants.FilePerm); err != nil {
		return "", fmt.Errorf("cannot write %s version: %w", side, err)
	}
	return path, nil
}
