package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mrz1836/svnbridge/internal/constants"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/svn"
)

// stage is one strategy of the cascade. run returns a terminal result, or
// (nil, nil) to hand over to the next stage. An error from a fatal stage
// ends the request.
type stage struct {
	name  string
	fatal bool
	run   func(ctx context.Context, req *request) (*Result, error)
}

func (r *Reconciler) defaultStages() []stage {
	return []stage{
		{name: string(ProvenanceNative), run: r.nativeStage},
		{name: string(ProvenanceContentComparison), fatal: true, run: r.compareStage},
		{name: string(ProvenanceSystemDiff), run: r.systemDiffStage},
		{name: string(ProvenanceSummary), fatal: true, run: r.summaryStage},
	}
}

// nativeStage accepts the client's own diff when it is non-empty.
func (r *Reconciler) nativeStage(ctx context.Context, req *request) (*Result, error) {
	out, err := r.source.NativeDiff(ctx, req.path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}
	text := r.detector.NormalizeOutput(out)
	if r.showInfo {
		text = annotate("diff output="+r.detector.Detect([]byte(out)).String(), text)
	}
	return &Result{
		Text:       text,
		Provenance: ProvenanceNative,
	}, nil
}

// compareStage fetches and decodes both versions. Equal texts end the
// request; different texts hand over to the diff stages.
func (r *Reconciler) compareStage(ctx context.Context, req *request) (*Result, error) {
	if err := r.loadContents(ctx, req); err != nil {
		return nil, err
	}
	if !req.sameContent() {
		return nil, nil
	}
	return &Result{
		Text:               r.withEncodingInfo(req, NoDifferencesMessage),
		Provenance:         ProvenanceContentComparison,
		Identical:          true,
		RepositoryEncoding: req.repo.Tag,
		WorkingEncoding:    req.work.Tag,
	}, nil
}

// loadContents reads the BASE revision and the working file. A working file
// that no longer exists counts as empty.
func (r *Reconciler) loadContents(ctx context.Context, req *request) error {
	repoRaw, err := r.source.Cat(ctx, req.path, "BASE")
	if err != nil {
		return fmt.Errorf("cannot fetch repository content: %w", err)
	}

	workRaw, err := os.ReadFile(req.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot read working copy: %w", err)
		}
		workRaw = nil
	}

	req.repoRaw = repoRaw
	req.workRaw = workRaw
	req.repo = r.detector.DecodeAuto(repoRaw)
	req.work = r.detector.DecodeAuto(workRaw)
	return nil
}

// sameContent compares the decoded texts exactly. Lossy decoding maps
// distinct invalid bytes to U+FFFD, so the raw bytes decide instead.
func (req *request) sameContent() bool {
	if req.repo.Lossy || req.work.Lossy {
		return bytes.Equal(req.repoRaw, req.workRaw)
	}
	return req.repo.Text == req.work.Text
}

// systemDiffStage writes both texts to a temporary directory and runs the
// system diff utility over them. The directory is always removed.
func (r *Reconciler) systemDiffStage(ctx context.Context, req *request) (*Result, error) {
	dir, err := os.MkdirTemp(r.tempDir, "svnbridge-diff-")
	if err != nil {
		return nil, fmt.Errorf("cannot create temporary directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			r.logger.Warn().Err(rmErr).Str("dir", dir).Msg("failed to remove temporary diff files")
		}
	}()

	repoFile := filepath.Join(dir, "repository")
	workFile := filepath.Join(dir, "working")
	if err := os.WriteFile(repoFile, []byte(req.repo.Text), constants.FilePerm); err != nil {
		return nil, fmt.Errorf("cannot write repository version: %w", err)
	}
	if err := os.WriteFile(workFile, []byte(req.work.Text), constants.FilePerm); err != nil {
		return nil, fmt.Errorf("cannot write working copy: %w", err)
	}

	res, err := runDiff(ctx, r.exec, r.timeout, svn.ExecRequest{
		Binary:         r.diffBinary,
		Args:           []string{"-u", repoFile, workFile},
		Dir:            dir,
		MaxOutputBytes: constants.DefaultMaxOutputBytes,
	})
	if err != nil {
		return nil, err
	}

	// diff exits 0 for equal input, 1 for differences and 2 for trouble
	switch res.ExitCode {
	case 0, 1:
	default:
		return nil, fmt.Errorf("%s exited with code %d: %s: %w",
			r.diffBinary, res.ExitCode, strings.TrimSpace(string(res.Stderr)), bridgeerrors.ErrProcess)
	}

	text := string(res.Stdout)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	text = strings.ReplaceAll(text, repoFile, req.name+" (repository version)")
	text = strings.ReplaceAll(text, workFile, req.name+" (working copy)")

	return &Result{
		Text:               r.withEncodingInfo(req, text),
		Provenance:         ProvenanceSystemDiff,
		RepositoryEncoding: req.repo.Tag,
		WorkingEncoding:    req.work.Tag,
	}, nil
}

// summaryStage describes the difference without a line diff.
func (r *Reconciler) summaryStage(_ context.Context, req *request) (*Result, error) {
	repoLen, workLen := len(req.repoRaw), len(req.workRaw)
	added, removed := lineStats(req.repo.Text, req.work.Text)

	var b strings.Builder
	fmt.Fprintf(&b, "Summary of differences for %s\n", req.name)
	fmt.Fprintf(&b, "Repository version: %d bytes, %d characters (%s)\n",
		repoLen, utf8.RuneCountInString(req.repo.Text), req.repo.Tag)
	fmt.Fprintf(&b, "Working copy: %d bytes, %d characters (%s)\n",
		workLen, utf8.RuneCountInString(req.work.Text), req.work.Tag)
	fmt.Fprintf(&b, "Size delta: %+d bytes\n", workLen-repoLen)
	fmt.Fprintf(&b, "Lines: %d added, %d removed\n", added, removed)
	if req.repo.Tag != req.work.Tag && (!req.repo.Tag.IsUnicode() || !req.work.Tag.IsUnicode()) {
		fmt.Fprintf(&b, "Encoding changed from %s to %s; line counts compare decoded text\n", req.repo.Tag, req.work.Tag)
	}
	if req.repo.Lossy || req.work.Lossy {
		b.WriteString("Warning: some bytes could not be decoded and were replaced\n")
	}
	b.WriteString("Note: the contents differ, but a line-by-line diff could not be produced because the system diff utility is unavailable.\n")

	return &Result{
		Text:               b.String(),
		Provenance:         ProvenanceSummary,
		RepositoryEncoding: req.repo.Tag,
		WorkingEncoding:    req.work.Tag,
	}, nil
}

// lineStats counts whole lines added and removed between two texts.
func lineStats(oldText, newText string) (added, removed int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		case diffmatchpatch.DiffEqual:
		}
	}
	return added, removed
}

// countLines counts lines, including a final line without a newline.
func countLines(s string) int {
	n := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// runDiff runs the system diff utility with a bounded timeout. A deadline
// maps to ErrCommandTimeout so the cascade moves on.
func runDiff(ctx context.Context, exec svn.Executor, timeout time.Duration, req svn.ExecRequest) (*svn.ExecResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := exec.Execute(runCtx, req)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s timed out after %s: %w: %w", req.Binary, timeout, bridgeerrors.ErrProcess, bridgeerrors.ErrCommandTimeout)
	}
	return nil, fmt.Errorf("cannot run %s: %w", req.Binary, err)
}

func (r *Reconciler) withEncodingInfo(req *request, text string) string {
	if !r.showInfo {
		return text
	}
	return annotate(fmt.Sprintf("repository=%s, working copy=%s", req.repo.Tag, req.work.Tag), text)
}

func annotate(encodings, text string) string {
	return "# Encoding: " + encodings + "\n" + text
}
