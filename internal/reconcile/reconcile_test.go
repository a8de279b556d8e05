package reconcile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/mrz1836/svnbridge/internal/encoding"
	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
	"github.com/mrz1836/svnbridge/internal/svn"
)

// fakeSource serves canned client responses.
type fakeSource struct {
	status    svn.FileStatus
	statusErr error
	native    string
	nativeErr error
	base      []byte
	catErr    error
	catCalls  int
}

func (f *fakeSource) Status(_ context.Context, _ string) (svn.FileStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeSource) NativeDiff(_ context.Context, _ string) (string, error) {
	return f.native, f.nativeErr
}

func (f *fakeSource) Cat(_ context.Context, _, _ string) ([]byte, error) {
	f.catCalls++
	return f.base, f.catErr
}

// fakeDiff answers system diff invocations.
type fakeDiff struct {
	result *svn.ExecResult
	err    error
	args   []string
}

func (f *fakeDiff) Execute(_ context.Context, req svn.ExecRequest) (*svn.ExecResult, error) {
	f.args = req.Args
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func writeWorking(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func newTestReconciler(t *testing.T, source Source, opts Options) (*Reconciler, string) {
	t.Helper()
	tmp := t.TempDir()
	opts.TempDir = tmp
	opts.Logger = zerolog.Nop()
	return New(source, opts), tmp
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files must be removed")
}

func TestGetDiff_NativeSuccess(t *testing.T) {
	src := &fakeSource{native: "Index: file.txt\n===\n-a\n+b\n"}
	r, _ := newTestReconciler(t, src, Options{})

	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("b\n")))
	require.NoError(t, err)
	assert.Equal(t, ProvenanceNative, res.Provenance)
	assert.Contains(t, res.Text, "+b")
	assert.Zero(t, src.catCalls, "later stages must not run")
}

func TestGetDiff_NativeOutputNormalizedToUTF8(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String("-旧\n+新\n")
	require.NoError(t, err)

	r, _ := newTestReconciler(t, &fakeSource{native: gbk}, Options{})
	res, err := r.GetDiff(context.Background(), writeWorking(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "-旧\n+新\n", res.Text)
}

func TestGetDiff_ContentComparison(t *testing.T) {
	tests := []struct {
		name      string
		base      []byte
		working   []byte
		identical bool
	}{
		{"same bytes", []byte("same\ntext\n"), []byte("same\ntext\n"), true},
		{"byte-order mark only", []byte("\xef\xbb\xbfsame\n"), []byte("same\n"), true},
		{"line endings changed", []byte("same\r\ntext\r\n"), []byte("same\ntext\n"), false},
		{"trailing whitespace", []byte("same\n"), []byte("same \n"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{base: tt.base}
			r, _ := newTestReconciler(t, src, Options{Executor: &fakeDiff{err: errors.New("unavailable")}})

			res, err := r.GetDiff(context.Background(), writeWorking(t, tt.working))
			require.NoError(t, err)
			assert.Equal(t, tt.identical, res.Identical)
			if tt.identical {
				assert.Equal(t, ProvenanceContentComparison, res.Provenance)
				assert.Equal(t, NoDifferencesMessage, res.Text)
				return
			}
			assert.Equal(t, ProvenanceSummary, res.Provenance)
			assert.NotEqual(t, NoDifferencesMessage, res.Text)
		})
	}
}

func TestGetDiff_UndecodableContentComparesRawBytes(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		working   string
		identical bool
	}{
		{"ff vs 80", "v=\xff\n", "v=\x80\n", false},
		{"fe vs a0", "v=\xfe\n", "v=\xa0\n", false},
		{"ff vs fe", "v=\xff\n", "v=\xfe\n", false},
		{"same invalid bytes", "v=\xff\n", "v=\xff\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{base: []byte(tt.base)}
			r, _ := newTestReconciler(t, src, Options{Executor: &fakeDiff{err: errors.New("unavailable")}})

			res, err := r.GetDiff(context.Background(), writeWorking(t, []byte(tt.working)))
			require.NoError(t, err)
			assert.Equal(t, tt.identical, res.Identical)
			if !tt.identical {
				assert.Equal(t, ProvenanceSummary, res.Provenance)
				assert.Contains(t, res.Text, "could not be decoded")
			}
		})
	}
}

func TestGetDiff_EncodingInfoOnEveryResult(t *testing.T) {
	t.Run("native", func(t *testing.T) {
		r, _ := newTestReconciler(t, &fakeSource{native: "-a\n+b\n"}, Options{ShowEncodingInfo: true})
		res, err := r.GetDiff(context.Background(), writeWorking(t, nil))
		require.NoError(t, err)
		assert.Equal(t, "# Encoding: diff output=utf-8\n-a\n+b\n", res.Text)
	})

	t.Run("no differences", func(t *testing.T) {
		r, _ := newTestReconciler(t, &fakeSource{base: []byte("x\n")}, Options{ShowEncodingInfo: true})
		res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("x\n")))
		require.NoError(t, err)
		assert.True(t, res.Identical)
		assert.Equal(t, "# Encoding: repository=utf-8, working copy=utf-8\n"+NoDifferencesMessage, res.Text)
	})
}

func TestGetDiff_SystemDiffWithRealUtility(t *testing.T) {
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff utility not available")
	}

	src := &fakeSource{base: []byte("one\ntwo\nthree\n")}
	r, tmp := newTestReconciler(t, src, Options{})
	path := writeWorking(t, []byte("one\n2\nthree\n"))

	res, err := r.GetDiff(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceSystemDiff, res.Provenance)
	assert.False(t, res.Identical)
	assert.Contains(t, res.Text, "--- file.txt (repository version)")
	assert.Contains(t, res.Text, "+++ file.txt (working copy)")
	assert.Contains(t, res.Text, "-two")
	assert.Contains(t, res.Text, "+2")
	assert.NotContains(t, res.Text, tmp)
	assert.Equal(t, path, res.Path)
	assertEmptyDir(t, tmp)
}

func TestGetDiff_SystemDiffFake(t *testing.T) {
	// Echo the temp paths back the way diff -u prints them
	echo := executorFunc(func(_ context.Context, req svn.ExecRequest) (*svn.ExecResult, error) {
		out := "--- " + req.Args[1] + "\n+++ " + req.Args[2] + "\n@@ -1 +1 @@\n-a\n+b\n"
		return &svn.ExecResult{Stdout: []byte(out), ExitCode: 1}, nil
	})
	src := &fakeSource{native: "   \n", base: []byte("a\n")}
	r, tmp := newTestReconciler(t, src, Options{Executor: echo, ShowEncodingInfo: true})

	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("b\n")))
	require.NoError(t, err)
	assert.Equal(t, ProvenanceSystemDiff, res.Provenance)
	assert.True(t, strings.HasPrefix(res.Text, "# Encoding: repository=utf-8, working copy=utf-8\n"))
	assert.Contains(t, res.Text, "--- file.txt (repository version)\n+++ file.txt (working copy)\n")
	assertEmptyDir(t, tmp)
}

type executorFunc func(ctx context.Context, req svn.ExecRequest) (*svn.ExecResult, error)

func (f executorFunc) Execute(ctx context.Context, req svn.ExecRequest) (*svn.ExecResult, error) {
	return f(ctx, req)
}

func TestGetDiff_MissingDiffUtilityFallsBackToSummary(t *testing.T) {
	src := &fakeSource{base: []byte("repository text\n")}
	r, tmp := newTestReconciler(t, src, Options{DiffBinary: "svnbridge-no-such-diff-binary"})

	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("working\n")))
	require.NoError(t, err)
	assert.Equal(t, ProvenanceSummary, res.Provenance)
	assert.Contains(t, res.Text, "Repository version: 16 bytes")
	assert.Contains(t, res.Text, "Working copy: 8 bytes")
	assert.Contains(t, res.Text, "Size delta: -8 bytes")
	assert.Contains(t, res.Text, "Lines: 1 added, 1 removed")
	assert.Contains(t, res.Text, "Note:")
	assertEmptyDir(t, tmp)
}

func TestGetDiff_DiffUtilityTroubleFallsBackToSummary(t *testing.T) {
	diff := &fakeDiff{result: &svn.ExecResult{ExitCode: 2, Stderr: []byte("diff: memory exhausted")}}
	src := &fakeSource{base: []byte("a")}
	r, _ := newTestReconciler(t, src, Options{Executor: diff})

	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("bb")))
	require.NoError(t, err)
	assert.Equal(t, ProvenanceSummary, res.Provenance)
	assert.Contains(t, res.Text, "Size delta: +1 bytes")
	require.Len(t, diff.args, 3)
	assert.Equal(t, "-u", diff.args[0])
}

// blockingExecutor waits until its context ends, like a hung process.
func blockingExecutor() executorFunc {
	return func(ctx context.Context, _ svn.ExecRequest) (*svn.ExecResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func TestGetDiff_HungDiffUtilityTimesOutToSummary(t *testing.T) {
	src := &fakeSource{base: []byte("a\n")}
	r, tmp := newTestReconciler(t, src, Options{Executor: blockingExecutor(), Timeout: 20 * time.Millisecond})

	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("b\n")))
	require.NoError(t, err)
	assert.Equal(t, ProvenanceSummary, res.Provenance)
	assertEmptyDir(t, tmp)
}

func TestRunDiff_Timeout(t *testing.T) {
	_, err := runDiff(context.Background(), blockingExecutor(), 10*time.Millisecond, svn.ExecRequest{Binary: "diff"})
	require.ErrorIs(t, err, bridgeerrors.ErrProcess)
	require.ErrorIs(t, err, bridgeerrors.ErrCommandTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runDiff(ctx, blockingExecutor(), time.Second, svn.ExecRequest{Binary: "diff"})
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, bridgeerrors.ErrCommandTimeout)
}

func TestLineStats(t *testing.T) {
	tests := []struct {
		name           string
		before, after  string
		added, removed int
	}{
		{"equal", "a\nb\n", "a\nb\n", 0, 0},
		{"one changed", "a\nb\nc\n", "a\nB\nc\n", 1, 1},
		{"appended", "a\n", "a\nb\nc\n", 2, 0},
		{"emptied", "a\nb", "", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, removed := lineStats(tt.before, tt.after)
			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.removed, removed)
		})
	}
}

func TestGetDiff_NativeEmptyButContentDiffersIsNeverNoDifference(t *testing.T) {
	pairs := []struct {
		base    string
		working string
	}{
		{"a\n", "b\n"},
		{"a b\n", "a  b\n"},
		{"", "new\n"},
		{"old\n", ""},
		{"x", "x\n"},
		{"a\r\n", "a\n"},
		{"v=\xff\n", "v=\x80\n"},
	}

	for _, p := range pairs {
		for _, native := range []struct {
			out string
			err error
		}{{"", nil}, {"", errors.New("svn: E195002: diff failed")}} {
			src := &fakeSource{native: native.out, nativeErr: native.err, base: []byte(p.base)}
			r, _ := newTestReconciler(t, src, Options{Executor: &fakeDiff{err: errors.New("exec: not found")}})

			res, err := r.GetDiff(context.Background(), writeWorking(t, []byte(p.working)))
			require.NoError(t, err)
			assert.False(t, res.Identical, "%q vs %q", p.base, p.working)
			assert.NotEqual(t, NoDifferencesMessage, res.Text)
		}
	}
}

func TestGetDiff_GBKRepositoryContent(t *testing.T) {
	repo, err := simplifiedchinese.GBK.NewEncoder().String("héllo\n")
	require.NoError(t, err)

	src := &fakeSource{base: []byte(repo)}
	r, _ := newTestReconciler(t, src, Options{Executor: &fakeDiff{err: errors.New("unavailable")}})

	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("hello\n")))
	require.NoError(t, err)
	assert.False(t, res.Identical)
	assert.Equal(t, encoding.GBK, res.RepositoryEncoding)
	assert.Equal(t, encoding.UTF8, res.WorkingEncoding)
	assert.Contains(t, res.Text, "(gbk)")
	assert.Contains(t, res.Text, "Encoding changed from gbk to utf-8")
}

func TestGetDiff_GBKIdenticalAcrossEncodings(t *testing.T) {
	repo, err := simplifiedchinese.GBK.NewEncoder().String("你好，世界\n")
	require.NoError(t, err)

	r, _ := newTestReconciler(t, &fakeSource{base: []byte(repo)}, Options{})
	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("你好，世界\n")))
	require.NoError(t, err)
	assert.True(t, res.Identical)
	assert.Equal(t, encoding.GBK, res.RepositoryEncoding)
}

func TestGetDiff_MissingWorkingFileCountsAsEmpty(t *testing.T) {
	src := &fakeSource{base: []byte("gone\n")}
	r, _ := newTestReconciler(t, src, Options{Executor: &fakeDiff{err: errors.New("unavailable")}})

	path := filepath.Join(t.TempDir(), "deleted.txt")
	res, err := r.GetDiff(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceSummary, res.Provenance)
	assert.Contains(t, res.Text, "Working copy: 0 bytes")
}

func TestGetDiff_FailureConcatenatesStageErrors(t *testing.T) {
	src := &fakeSource{
		nativeErr: errors.New("native boom"),
		catErr:    errors.New("svn: E170013: Unable to connect to a repository"),
	}
	r, _ := newTestReconciler(t, src, Options{})

	res, err := r.GetDiff(context.Background(), writeWorking(t, []byte("x")))
	require.Error(t, err)
	assert.Nil(t, res)
	require.ErrorIs(t, err, bridgeerrors.ErrReconciliation)
	require.ErrorIs(t, err, src.catErr)
	assert.Contains(t, err.Error(), "native: native boom")
	assert.Contains(t, err.Error(), "content-comparison: cannot fetch repository content")
	assert.Contains(t, err.Error(), "Unable to connect")
}

func TestGetDiff_Canceled(t *testing.T) {
	src := &fakeSource{native: "diff"}
	r, _ := newTestReconciler(t, src, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GetDiff(ctx, writeWorking(t, nil))
	require.ErrorIs(t, err, context.Canceled)
}

func TestHasChanges(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		work   string
		want   bool
	}{
		{"modified", &fakeSource{status: svn.StatusModified}, "", true},
		{"added", &fakeSource{status: svn.StatusAdded}, "", true},
		{"deleted", &fakeSource{status: svn.StatusDeleted}, "", true},
		{"replaced", &fakeSource{status: svn.StatusReplaced}, "", true},
		{"conflicted", &fakeSource{status: svn.StatusConflicted}, "", true},
		{"untracked", &fakeSource{status: svn.StatusUntracked}, "", true},
		{"unmodified", &fakeSource{status: svn.StatusUnmodified}, "", false},
		{"ignored", &fakeSource{status: svn.StatusIgnored}, "", false},
		{"unknown compares equal content", &fakeSource{status: svn.StatusUnknown, base: []byte("x\n")}, "x\n", false},
		{"unknown compares different content", &fakeSource{status: svn.StatusUnknown, base: []byte("x\n")}, "y\n", true},
		{"status error falls back to content", &fakeSource{statusErr: errors.New("boom"), base: []byte("x")}, "x", false},
		{"unknown with changed line endings", &fakeSource{status: svn.StatusUnknown, base: []byte("x\r\n")}, "x\n", true},
		{"unknown with different undecodable bytes", &fakeSource{status: svn.StatusUnknown, base: []byte("v=\xff\n")}, "v=\x80\n", true},
		{"unknown with same undecodable bytes", &fakeSource{status: svn.StatusUnknown, base: []byte("v=\xff\n")}, "v=\xff\n", false},
		{"total failure assumes changed", &fakeSource{statusErr: errors.New("boom"), catErr: errors.New("boom")}, "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestReconciler(t, tt.source, Options{})
			assert.Equal(t, tt.want, r.HasChanges(context.Background(), writeWorking(t, []byte(tt.work))))
		})
	}
}

func TestHasChanges_TrueForEveryChangeStatus(t *testing.T) {
	for s := svn.StatusUnknown; s <= svn.StatusTypeChanged; s++ {
		if !s.IsChange() {
			continue
		}
		r, _ := newTestReconciler(t, &fakeSource{status: s}, Options{})
		assert.True(t, r.HasChanges(context.Background(), "/unused"), s.String())
	}
}

// recordingViewer captures what it was asked to show.
type recordingViewer struct {
	left, right string
	leftText    string
	rightText   string
	title       string
	err         error
}

func (v *recordingViewer) View(_ context.Context, left, right, title string) error {
	v.left, v.right, v.title = left, right, title
	l, _ := os.ReadFile(left)
	r, _ := os.ReadFile(right)
	v.leftText, v.rightText = string(l), string(r)
	return v.err
}

func TestShowSideBySide(t *testing.T) {
	repo, err := simplifiedchinese.GBK.NewEncoder().String("旧\n")
	require.NoError(t, err)

	viewer := &recordingViewer{}
	r, tmp := newTestReconciler(t, &fakeSource{base: []byte(repo)}, Options{Viewer: viewer})

	assert.True(t, r.ShowSideBySide(context.Background(), writeWorking(t, []byte("新\n"))))
	assert.Equal(t, "旧\n", viewer.leftText)
	assert.Equal(t, "新\n", viewer.rightText)
	assert.Equal(t, "file.txt", filepath.Base(viewer.left))
	assert.Equal(t, "file.txt", filepath.Base(viewer.right))
	assert.Contains(t, viewer.title, "file.txt (repository version)")
	assertEmptyDir(t, tmp)
}

func TestShowSideBySide_Failures(t *testing.T) {
	t.Run("viewer error", func(t *testing.T) {
		viewer := &recordingViewer{err: errors.New("no display")}
		r, tmp := newTestReconciler(t, &fakeSource{base: []byte("a")}, Options{Viewer: viewer})
		assert.False(t, r.ShowSideBySide(context.Background(), writeWorking(t, []byte("b"))))
		assertEmptyDir(t, tmp)
	})

	t.Run("repository content unavailable", func(t *testing.T) {
		viewer := &recordingViewer{}
		r, _ := newTestReconciler(t, &fakeSource{catErr: errors.New("offline")}, Options{Viewer: viewer})
		assert.False(t, r.ShowSideBySide(context.Background(), writeWorking(t, []byte("b"))))
		assert.Empty(t, viewer.left)
	})
}

func TestDiffViewer(t *testing.T) {
	var out bytes.Buffer
	fake := &fakeDiff{result: &svn.ExecResult{Stdout: []byte("a   |   b\n"), ExitCode: 1}}
	v := &DiffViewer{Binary: "diff", Executor: fake, Out: &out}

	require.NoError(t, v.View(context.Background(), "/l", "/r", "title"))
	assert.Equal(t, "title\na   |   b\n", out.String())
	assert.Equal(t, []string{"-y", "-W", "160", "/l", "/r"}, fake.args)

	fake.result = &svn.ExecResult{ExitCode: 2}
	require.ErrorIs(t, v.View(context.Background(), "/l", "/r", "title"), bridgeerrors.ErrProcess)

	fake.err = errors.New("not found")
	require.Error(t, v.View(context.Background(), "/l", "/r", "title"))

	hung := &DiffViewer{Binary: "diff", Executor: blockingExecutor(), Timeout: 10 * time.Millisecond, Out: &out}
	require.ErrorIs(t, hung.View(context.Background(), "/l", "/r", "title"), bridgeerrors.ErrCommandTimeout)
}
